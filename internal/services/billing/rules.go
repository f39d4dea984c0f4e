package billing

import (
	"fmt"
	"time"

	"agency-billing-backend/internal/models"

	"github.com/google/uuid"
)

// DerivePaymentStatus maps amount and paid amount onto a bill payment status.
func DerivePaymentStatus(amount, paid float64) string {
	switch {
	case paid >= amount:
		return models.PaymentPaid
	case paid > 0:
		return models.PaymentPartiallyPaid
	default:
		return models.PaymentUnpaid
	}
}

// UpdatePaymentStatus recomputes the bill's payment status after its paid
// amount changed. A fully paid bill gets now as paid date, an unpaid bill
// loses it, and a partial payment leaves the paid date untouched.
func UpdatePaymentStatus(bill *models.Bill, now time.Time) {
	bill.PaymentStatus = DerivePaymentStatus(bill.Amount, bill.PaidAmount)
	switch bill.PaymentStatus {
	case models.PaymentPaid:
		paid := now
		bill.PaidDate = &paid
	case models.PaymentUnpaid:
		bill.PaidDate = nil
	}
}

// ServiceRef identifies what a bill charges for.
type ServiceRef interface {
	ServiceType() string
	// ServiceID is nil for EimsFee.
	ServiceID() *uuid.UUID
}

type DomainRef struct{ ID uuid.UUID }

type HostingRef struct{ ID uuid.UUID }

type SslRef struct{ ID uuid.UUID }

// EimsFee has no backing service record; students and billing months are the
// billable basis instead.
type EimsFee struct{}

func (r DomainRef) ServiceType() string  { return models.ServiceTypeDomain }
func (r HostingRef) ServiceType() string { return models.ServiceTypeHosting }
func (r SslRef) ServiceType() string     { return models.ServiceTypeSSL }
func (EimsFee) ServiceType() string      { return models.ServiceTypeEimsFee }

func (r DomainRef) ServiceID() *uuid.UUID  { return &r.ID }
func (r HostingRef) ServiceID() *uuid.UUID { return &r.ID }
func (r SslRef) ServiceID() *uuid.UUID     { return &r.ID }
func (EimsFee) ServiceID() *uuid.UUID      { return nil }

// NewServiceRef builds a reference from the stored type and id.
func NewServiceRef(serviceType string, id *uuid.UUID) (ServiceRef, error) {
	if serviceType == models.ServiceTypeEimsFee {
		return EimsFee{}, nil
	}
	if id == nil || *id == uuid.Nil {
		return nil, fmt.Errorf("service_id is required for service type %q", serviceType)
	}
	switch serviceType {
	case models.ServiceTypeDomain:
		return DomainRef{ID: *id}, nil
	case models.ServiceTypeHosting:
		return HostingRef{ID: *id}, nil
	case models.ServiceTypeSSL:
		return SslRef{ID: *id}, nil
	}
	return nil, fmt.Errorf("unknown service type %q", serviceType)
}

// RefOf returns the service reference stored on a bill.
func RefOf(bill *models.Bill) (ServiceRef, error) {
	return NewServiceRef(bill.ServiceType, bill.ServiceID)
}

// ValidBillingMonth reports whether s is a YYYY-MM month.
func ValidBillingMonth(s string) bool {
	if len(s) != 7 {
		return false
	}
	_, err := time.Parse("2006-01", s)
	return err == nil
}

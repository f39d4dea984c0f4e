package catalog

import (
	"context"
	"strings"
	"time"

	"agency-billing-backend/internal/models"
	"agency-billing-backend/internal/services"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type DomainInput struct {
	ClientID         uuid.UUID
	Name             string
	Registrar        string
	RegistrationDate time.Time
	ExpiryDate       time.Time
	AutoRenew        bool
	Status           string
	Price            float64
	PaymentStatus    string
}

// DomainRow is a domain as shown on list pages.
type DomainRow struct {
	models.Domain
	HasHosting     bool `json:"has_hosting"`
	HasSsl         bool `json:"has_ssl"`
	IsExpiringSoon bool `json:"is_expiring_soon"`
}

func (s *CatalogService) ListDomains(ctx context.Context, clientID *uuid.UUID) ([]DomainRow, error) {
	domains, err := s.domains.List(ctx, clientID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	rows := make([]DomainRow, 0, len(domains))
	for i := range domains {
		rows = append(rows, domainRow(&domains[i], now))
	}
	return rows, nil
}

func (s *CatalogService) GetDomain(ctx context.Context, id uuid.UUID) (*DomainRow, error) {
	d, err := s.domains.GetByID(ctx, id, "Client", "HostingService", "SslCertificate")
	if err != nil {
		return nil, notFound(err, "domain")
	}
	row := domainRow(d, s.now())
	return &row, nil
}

func (s *CatalogService) CreateDomain(ctx context.Context, in DomainInput) (*models.Domain, error) {
	if err := s.validateDomain(ctx, in); err != nil {
		return nil, err
	}
	domain := &models.Domain{}
	applyDomain(domain, in)
	if err := s.domains.Create(ctx, domain); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"domain_id": domain.ID, "client_id": domain.ClientID}).Info("domain created")
	return domain, nil
}

func (s *CatalogService) UpdateDomain(ctx context.Context, id uuid.UUID, in DomainInput) (*models.Domain, error) {
	domain, err := s.domains.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "domain")
	}
	if err := s.validateDomain(ctx, in); err != nil {
		return nil, err
	}
	applyDomain(domain, in)
	if err := s.domains.Save(ctx, domain); err != nil {
		return nil, err
	}
	return domain, nil
}

// DeleteDomain removes the domain along with its hosting and SSL records.
func (s *CatalogService) DeleteDomain(ctx context.Context, id uuid.UUID) error {
	if err := s.domains.Delete(ctx, id); err != nil {
		return notFound(err, "domain")
	}
	return nil
}

func (s *CatalogService) validateDomain(ctx context.Context, in DomainInput) error {
	var v services.Validator
	v.Check(strings.TrimSpace(in.Name) != "", "name", "The name field is required.")
	v.Check(len(in.Name) <= 255, "name", "The name may not be greater than 255 characters.")
	v.Check(strings.TrimSpace(in.Registrar) != "", "registrar", "The registrar field is required.")
	v.Check(!in.RegistrationDate.IsZero(), "registration_date", "The registration date field is required.")
	v.Check(in.ExpiryDate.After(in.RegistrationDate), "expiry_date", "The expiry date must be a date after registration date.")
	v.Check(oneOf(in.Status, models.StatusActive, models.StatusInactive), "status", "The selected status is invalid.")
	v.Check(in.Price >= 0, "price", "The price must be at least 0.")
	v.Check(oneOf(in.PaymentStatus, models.PaymentPaid, models.PaymentUnpaid, models.PaymentPartial), "payment_status", "The selected payment status is invalid.")

	exists, err := s.clients.Exists(ctx, in.ClientID)
	if err != nil {
		return err
	}
	v.Check(exists, "client_id", "The selected client is invalid.")
	return v.Err()
}

func applyDomain(d *models.Domain, in DomainInput) {
	d.ClientID = in.ClientID
	d.Name = strings.TrimSpace(in.Name)
	d.Registrar = strings.TrimSpace(in.Registrar)
	d.RegistrationDate = in.RegistrationDate
	d.ExpiryDate = in.ExpiryDate
	d.AutoRenew = in.AutoRenew
	d.Status = in.Status
	d.Price = in.Price
	d.PaymentStatus = in.PaymentStatus
}

func domainRow(d *models.Domain, now time.Time) DomainRow {
	row := DomainRow{
		HasHosting:     d.HostingService != nil,
		HasSsl:         d.SslCertificate != nil,
		IsExpiringSoon: d.IsExpiringSoon(now),
	}
	if d.HostingService != nil {
		h := d.HostingService.WithoutCredentials()
		d.HostingService = &h
	}
	row.Domain = *d
	return row
}

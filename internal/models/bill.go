package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ServiceTypeDomain  = "domain"
	ServiceTypeHosting = "hosting"
	ServiceTypeSSL     = "ssl_certificate"
	ServiceTypeEimsFee = "eims_fee"
)

// ServiceTypes in the order reports list them.
var ServiceTypes = []string{ServiceTypeDomain, ServiceTypeHosting, ServiceTypeSSL, ServiceTypeEimsFee}

const (
	BillStatusDraft     = "draft"
	BillStatusSent      = "sent"
	BillStatusOverdue   = "overdue"
	BillStatusCancelled = "cancelled"
)

type Bill struct {
	ID            uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	BillNumber    string                      `gorm:"uniqueIndex;not null" json:"bill_number"`
	ClientID      uuid.UUID                   `gorm:"type:uuid;index;not null" json:"client_id"`
	ServiceType   string                      `gorm:"index:idx_bills_service;not null" json:"service_type"`
	ServiceID     *uuid.UUID                  `gorm:"type:uuid;index:idx_bills_service" json:"service_id"`
	Description   string                      `gorm:"not null" json:"description"`
	Amount        float64                     `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaidAmount    float64                     `gorm:"type:decimal(10,2);default:0" json:"paid_amount"`
	PaymentStatus string                      `gorm:"index;default:unpaid" json:"payment_status"`
	DueDate       time.Time                   `gorm:"type:date;index" json:"due_date"`
	PaidDate      *time.Time                  `gorm:"type:date" json:"paid_date"`
	Status        string                      `gorm:"index;default:draft" json:"status"`
	CreatedBy     uuid.UUID                   `gorm:"type:uuid;index;not null" json:"created_by"`
	ApprovedBy    *uuid.UUID                  `gorm:"type:uuid;index" json:"approved_by"`
	ApprovedAt    *time.Time                  `json:"approved_at"`
	Notes         *string                     `gorm:"type:text" json:"notes"`
	TotalStudents *int                        `json:"total_students"`
	BillingMonths datatypes.JSONSlice[string] `json:"billing_months"`
	CreatedAt     time.Time                   `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`

	Client   *Client `json:"client,omitempty"`
	Creator  *User   `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Approver *User   `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
}

func (b *Bill) BeforeCreate(tx *gorm.DB) error {
	ensureID(&b.ID)
	return nil
}

// RemainingAmount is always recomputed from amount and paid amount.
func (b *Bill) RemainingAmount() float64 {
	return b.Amount - b.PaidAmount
}

// IsOverdue is the live overdue flag, independent of the stored status.
func (b *Bill) IsOverdue(now time.Time) bool {
	return b.DueDate.Before(now) && b.PaymentStatus != PaymentPaid
}

func (b *Bill) IsDraft() bool {
	return b.Status == BillStatusDraft
}

// DaysOverdue counts whole days between the due date and now, 0 if not yet due.
func (b *Bill) DaysOverdue(now time.Time) int {
	if !b.DueDate.Before(now) {
		return 0
	}
	return int(now.Sub(b.DueDate).Hours() / 24)
}

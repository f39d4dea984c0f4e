package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SslCertificate struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID      uuid.UUID `gorm:"type:uuid;index;not null" json:"client_id"`
	DomainID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"domain_id"`
	Provider      string    `json:"provider"`
	Type          string    `json:"type"`
	IssueDate     time.Time `gorm:"type:date" json:"issue_date"`
	ExpiryDate    time.Time `gorm:"type:date;index" json:"expiry_date"`
	Price         float64   `gorm:"type:decimal(10,2)" json:"price"`
	PaymentStatus string    `gorm:"index;default:unpaid" json:"payment_status"`
	Status        string    `gorm:"default:active" json:"status"`
	AutoRenew     bool      `gorm:"default:false" json:"auto_renew"`
	PaymentApproval
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Client *Client `json:"client,omitempty"`
	Domain *Domain `json:"domain,omitempty"`
}

func (s *SslCertificate) BeforeCreate(tx *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

func (s *SslCertificate) IsExpiringSoon(now time.Time) bool {
	return expiringSoon(s.ExpiryDate, now)
}

func (s *SslCertificate) ServiceClientID() uuid.UUID { return s.ClientID }

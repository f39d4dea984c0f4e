package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Domain struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID         uuid.UUID `gorm:"type:uuid;index;not null" json:"client_id"`
	Name             string    `gorm:"index;not null" json:"name"`
	Registrar        string    `json:"registrar"`
	RegistrationDate time.Time `gorm:"type:date" json:"registration_date"`
	ExpiryDate       time.Time `gorm:"type:date;index" json:"expiry_date"`
	AutoRenew        bool      `gorm:"default:false" json:"auto_renew"`
	Status           string    `gorm:"default:active" json:"status"`
	Price            float64   `gorm:"type:decimal(10,2)" json:"price"`
	PaymentStatus    string    `gorm:"index;default:unpaid" json:"payment_status"`
	PaymentApproval
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Client         *Client         `json:"client,omitempty"`
	HostingService *HostingService `gorm:"constraint:OnDelete:CASCADE" json:"hosting_service,omitempty"`
	SslCertificate *SslCertificate `gorm:"constraint:OnDelete:CASCADE" json:"ssl_certificate,omitempty"`
}

func (d *Domain) BeforeCreate(tx *gorm.DB) error {
	ensureID(&d.ID)
	return nil
}

func (d *Domain) IsExpiringSoon(now time.Time) bool {
	return expiringSoon(d.ExpiryDate, now)
}

func (d *Domain) IsExpired(now time.Time) bool {
	return d.ExpiryDate.Before(now)
}

func (d *Domain) ServiceClientID() uuid.UUID { return d.ClientID }

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Client struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"index;not null" json:"name"`
	Email     string    `gorm:"not null" json:"email"`
	Phone     string    `json:"phone"`
	Company   string    `json:"company"`
	Address   string    `gorm:"type:text" json:"address"`
	Status    string    `gorm:"index;default:active" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Domains         []Domain         `gorm:"constraint:OnDelete:CASCADE" json:"domains,omitempty"`
	HostingServices []HostingService `gorm:"constraint:OnDelete:CASCADE" json:"hosting_services,omitempty"`
	SslCertificates []SslCertificate `gorm:"constraint:OnDelete:CASCADE" json:"ssl_certificates,omitempty"`
	Bills           []Bill           `gorm:"constraint:OnDelete:CASCADE" json:"bills,omitempty"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

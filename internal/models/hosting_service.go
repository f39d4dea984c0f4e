package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HostingService keeps the control panel credentials exactly as entered.
// Username and Password are stored in plaintext (see DESIGN.md, security
// review note) and are only returned on the detail endpoint.
type HostingService struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID        uuid.UUID `gorm:"type:uuid;index;not null" json:"client_id"`
	DomainID        uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"domain_id"`
	Provider        string    `json:"provider"`
	PackageName     string    `json:"package_name"`
	StartDate       time.Time `gorm:"type:date" json:"start_date"`
	RenewalDate     time.Time `gorm:"type:date;index" json:"renewal_date"`
	Price           float64   `gorm:"type:decimal(10,2)" json:"price"`
	PaymentStatus   string    `gorm:"index;default:unpaid" json:"payment_status"`
	Status          string    `gorm:"default:active" json:"status"`
	ServerIP        *string   `json:"server_ip"`
	ControlPanelURL *string   `json:"control_panel_url"`
	Username        string    `json:"username,omitempty"`
	Password        string    `json:"password,omitempty"`
	PaymentApproval
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Client *Client `json:"client,omitempty"`
	Domain *Domain `json:"domain,omitempty"`
}

func (h *HostingService) BeforeCreate(tx *gorm.DB) error {
	ensureID(&h.ID)
	return nil
}

// IsDueForRenewal reports whether the renewal date falls within ExpiryWindow.
func (h *HostingService) IsDueForRenewal(now time.Time) bool {
	return expiringSoon(h.RenewalDate, now)
}

// WithoutCredentials returns a copy safe for list payloads.
func (h HostingService) WithoutCredentials() HostingService {
	h.Username = ""
	h.Password = ""
	return h
}

func (h *HostingService) ServiceClientID() uuid.UUID { return h.ClientID }

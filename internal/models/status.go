package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Service payment statuses. Domains historically use "partial" while
// hosting, SSL and bills use "partially_paid"; both are kept as stored.
const (
	PaymentPaid          = "paid"
	PaymentUnpaid        = "unpaid"
	PaymentPartial       = "partial"
	PaymentPartiallyPaid = "partially_paid"
)

// ExpiryWindow is how far ahead a service counts as expiring soon.
const ExpiryWindow = 30 * 24 * time.Hour

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// expiringSoon reports whether expiry is in the future and within ExpiryWindow.
func expiringSoon(expiry, now time.Time) bool {
	left := expiry.Sub(now)
	return left >= 0 && left <= ExpiryWindow
}

// PaymentApproval is the two-step payment sign-off carried by service records.
type PaymentApproval struct {
	PaymentApprovedLevel1 bool `gorm:"column:payment_approved_level1;default:false" json:"payment_approved_level1"`
	PaymentApprovedLevel2 bool `gorm:"column:payment_approved_level2;default:false" json:"payment_approved_level2"`
}

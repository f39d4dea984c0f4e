package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	BillActionCreated   = "created"
	BillActionUpdated   = "updated"
	BillActionApproved  = "approved"
	BillActionPayment   = "payment"
	BillActionCancelled = "cancelled"
	BillActionDeleted   = "deleted"
)

type BillAuditLog struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	BillID      uuid.UUID      `gorm:"type:uuid;index" json:"bill_id"`
	BillNumber  string         `json:"bill_number"`
	Action      string         `json:"action"`
	PerformedBy uuid.UUID      `gorm:"type:uuid" json:"performed_by"`
	Details     datatypes.JSON `json:"details"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (l *BillAuditLog) BeforeCreate(tx *gorm.DB) error {
	ensureID(&l.ID)
	return nil
}

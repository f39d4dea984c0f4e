package models

import "time"

// BillSequence is the per-month counter behind bill numbers. Period is
// formatted YYYYMM.
type BillSequence struct {
	Period    string `gorm:"primaryKey;size:6"`
	LastValue int    `gorm:"not null"`
	UpdatedAt time.Time
}

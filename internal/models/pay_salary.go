package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SalaryState is the single payment state of a salary entry. Exactly one
// state applies to every row.
type SalaryState string

const (
	SalaryPaid    SalaryState = "paid"
	SalaryPartial SalaryState = "partial"
	SalaryDue     SalaryState = "due"
	SalaryAdvance SalaryState = "advance"
)

var SalaryStates = []SalaryState{SalaryPaid, SalaryPartial, SalaryDue, SalaryAdvance}

func (s SalaryState) Valid() bool {
	for _, st := range SalaryStates {
		if s == st {
			return true
		}
	}
	return false
}

// Salary sources are the three paying companies.
const (
	SourceCodeGaon = "CodeGaon"
	SourceMSBJBD   = "MSBJBD"
	SourceSinhdBD  = "SinhdBD"
)

var SalarySources = []string{SourceCodeGaon, SourceMSBJBD, SourceSinhdBD}

type PaySalary struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	EmployeeID   uuid.UUID   `gorm:"type:uuid;index;not null" json:"employee_id"`
	SalaryAmount float64     `gorm:"type:decimal(10,2);not null" json:"salary_amount"`
	MonthYear    string      `gorm:"size:7;index" json:"month_year"`
	SalarySource string      `gorm:"index" json:"salary_source"`
	PaymentState SalaryState `gorm:"index;not null" json:"payment_state"`
	Notes        *string     `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`

	Employee *Employee `json:"employee,omitempty"`
}

func (p *PaySalary) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

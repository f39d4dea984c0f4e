package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Employee struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string     `gorm:"not null" json:"name"`
	Email       string     `json:"email"`
	Designation string     `json:"designation"`
	Salary      float64    `gorm:"type:decimal(10,2)" json:"salary"`
	JoinDate    time.Time  `gorm:"type:date" json:"join_date"`
	EndDate     *time.Time `gorm:"type:date" json:"end_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	PaySalaries []PaySalary `gorm:"constraint:OnDelete:CASCADE" json:"pay_salaries,omitempty"`
}

func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	ensureID(&e.ID)
	return nil
}

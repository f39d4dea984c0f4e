package repository

import (
	"context"

	"agency-billing-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EmployeeRepository struct {
	crud[models.Employee]
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{crud: crud[models.Employee]{db: db}, db: db}
}

func (r *EmployeeRepository) List(ctx context.Context) ([]models.Employee, error) {
	var employees []models.Employee
	err := r.db.WithContext(ctx).Order("name ASC").Find(&employees).Error
	return employees, err
}

// Delete removes the employee and every salary entry recorded for them.
func (r *EmployeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("employee_id = ?", id).Delete(&models.PaySalary{}).Error; err != nil {
			return err
		}
		return deleteByID(ctx, tx, &models.Employee{}, id)
	})
}

type PaySalaryRepository struct {
	crud[models.PaySalary]
	db *gorm.DB
}

func NewPaySalaryRepository(db *gorm.DB) *PaySalaryRepository {
	return &PaySalaryRepository{crud: crud[models.PaySalary]{db: db}, db: db}
}

type PaySalaryFilter struct {
	MonthYear    string             `json:"month_year,omitempty"`
	EmployeeID   *uuid.UUID         `json:"employee_id,omitempty"`
	SalarySource string             `json:"salary_source,omitempty"`
	PaymentState models.SalaryState `json:"payment_state,omitempty"`
}

// List returns salary entries with their employee, latest month first.
func (r *PaySalaryRepository) List(ctx context.Context, f PaySalaryFilter) ([]models.PaySalary, error) {
	q := r.db.WithContext(ctx).Preload("Employee")
	if f.MonthYear != "" {
		q = q.Where("month_year = ?", f.MonthYear)
	}
	if f.EmployeeID != nil {
		q = q.Where("employee_id = ?", *f.EmployeeID)
	}
	if f.SalarySource != "" {
		q = q.Where("salary_source = ?", f.SalarySource)
	}
	if f.PaymentState != "" {
		q = q.Where("payment_state = ?", f.PaymentState)
	}
	var entries []models.PaySalary
	err := q.Order("month_year DESC").Order("created_at DESC").Find(&entries).Error
	return entries, err
}

func (r *PaySalaryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &models.PaySalary{}, id)
}

package payroll

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"agency-billing-backend/internal/models"
	"agency-billing-backend/internal/repository"
	"agency-billing-backend/internal/services"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type PayrollService struct {
	employees *repository.EmployeeRepository
	salaries  *repository.PaySalaryRepository
	log       *logrus.Logger
}

func NewPayrollService(employees *repository.EmployeeRepository, salaries *repository.PaySalaryRepository, log *logrus.Logger) *PayrollService {
	return &PayrollService{employees: employees, salaries: salaries, log: log}
}

var errStateFlags = errors.New("exactly one of is_paid, is_partial, is_due and is_advance must be set")

// StateFromFlags converts the one-hot payment flags older clients send into
// a SalaryState. Zero or several set flags are rejected.
func StateFromFlags(paid, partial, due, advance bool) (models.SalaryState, error) {
	var state models.SalaryState
	set := 0
	for _, f := range []struct {
		on    bool
		state models.SalaryState
	}{
		{paid, models.SalaryPaid},
		{partial, models.SalaryPartial},
		{due, models.SalaryDue},
		{advance, models.SalaryAdvance},
	} {
		if f.on {
			set++
			state = f.state
		}
	}
	if set != 1 {
		return "", errStateFlags
	}
	return state, nil
}

// ---- employees ----

type EmployeeInput struct {
	Name        string
	Email       string
	Designation string
	Salary      float64
	JoinDate    time.Time
	EndDate     *time.Time
}

func (s *PayrollService) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	return s.employees.List(ctx)
}

func (s *PayrollService) GetEmployee(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	e, err := s.employees.GetByID(ctx, id, "PaySalaries")
	if err != nil {
		return nil, notFound(err, "employee")
	}
	return e, nil
}

func (s *PayrollService) CreateEmployee(ctx context.Context, in EmployeeInput) (*models.Employee, error) {
	if err := validateEmployee(in); err != nil {
		return nil, err
	}
	e := &models.Employee{}
	applyEmployee(e, in)
	if err := s.employees.Create(ctx, e); err != nil {
		return nil, err
	}
	s.log.WithField("employee_id", e.ID).Info("employee created")
	return e, nil
}

func (s *PayrollService) UpdateEmployee(ctx context.Context, id uuid.UUID, in EmployeeInput) (*models.Employee, error) {
	if err := validateEmployee(in); err != nil {
		return nil, err
	}
	e, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "employee")
	}
	applyEmployee(e, in)
	if err := s.employees.Save(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteEmployee removes the employee and their salary history.
func (s *PayrollService) DeleteEmployee(ctx context.Context, id uuid.UUID) error {
	if err := s.employees.Delete(ctx, id); err != nil {
		return notFound(err, "employee")
	}
	return nil
}

func validateEmployee(in EmployeeInput) error {
	var v services.Validator
	v.Check(strings.TrimSpace(in.Name) != "", "name", "The name field is required.")
	v.Check(in.Salary >= 0, "salary", "The salary must be at least 0.")
	v.Check(!in.JoinDate.IsZero(), "join_date", "The join date field is required.")
	if in.EndDate != nil {
		v.Check(!in.EndDate.Before(in.JoinDate), "end_date", "The end date must be a date after or equal to join date.")
	}
	return v.Err()
}

func applyEmployee(e *models.Employee, in EmployeeInput) {
	e.Name = strings.TrimSpace(in.Name)
	e.Email = strings.TrimSpace(in.Email)
	e.Designation = in.Designation
	e.Salary = in.Salary
	e.JoinDate = in.JoinDate
	e.EndDate = in.EndDate
}

// ---- salary entries ----

type PaySalaryInput struct {
	EmployeeID   uuid.UUID
	SalaryAmount float64
	MonthYear    string
	SalarySource string
	PaymentState models.SalaryState
	Notes        *string
}

func (s *PayrollService) ListSalaries(ctx context.Context, filter repository.PaySalaryFilter) ([]models.PaySalary, error) {
	return s.salaries.List(ctx, filter)
}

func (s *PayrollService) GetSalary(ctx context.Context, id uuid.UUID) (*models.PaySalary, error) {
	p, err := s.salaries.GetByID(ctx, id, "Employee")
	if err != nil {
		return nil, notFound(err, "salary payment")
	}
	return p, nil
}

func (s *PayrollService) CreateSalary(ctx context.Context, in PaySalaryInput) (*models.PaySalary, error) {
	if err := s.validateSalary(ctx, in); err != nil {
		return nil, err
	}
	p := &models.PaySalary{}
	applySalary(p, in)
	if err := s.salaries.Create(ctx, p); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"salary_id":     p.ID,
		"employee_id":   p.EmployeeID,
		"month_year":    p.MonthYear,
		"payment_state": p.PaymentState,
	}).Info("salary payment recorded")
	return p, nil
}

func (s *PayrollService) UpdateSalary(ctx context.Context, id uuid.UUID, in PaySalaryInput) (*models.PaySalary, error) {
	p, err := s.salaries.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "salary payment")
	}
	if err := s.validateSalary(ctx, in); err != nil {
		return nil, err
	}
	applySalary(p, in)
	if err := s.salaries.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PayrollService) DeleteSalary(ctx context.Context, id uuid.UUID) error {
	if err := s.salaries.Delete(ctx, id); err != nil {
		return notFound(err, "salary payment")
	}
	return nil
}

func (s *PayrollService) validateSalary(ctx context.Context, in PaySalaryInput) error {
	var v services.Validator
	v.Check(in.SalaryAmount >= 0, "salary_amount", "The salary amount must be at least 0.")
	_, err := time.Parse("2006-01", in.MonthYear)
	v.Check(len(in.MonthYear) == 7 && err == nil, "month_year", "The month year must use the YYYY-MM format.")
	v.Check(isSource(in.SalarySource), "salary_source", "The selected salary source is invalid.")
	v.Check(in.PaymentState.Valid(), "payment_state", "The selected payment state is invalid.")

	if _, err := s.employees.GetByID(ctx, in.EmployeeID); err != nil {
		if !repository.IsNotFound(err) {
			return err
		}
		v.Add("employee_id", "The selected employee is invalid.")
	}
	return v.Err()
}

func applySalary(p *models.PaySalary, in PaySalaryInput) {
	p.EmployeeID = in.EmployeeID
	p.SalaryAmount = in.SalaryAmount
	p.MonthYear = in.MonthYear
	p.SalarySource = in.SalarySource
	p.PaymentState = in.PaymentState
	p.Notes = in.Notes
	p.Employee = nil
}

func isSource(src string) bool {
	for _, s := range models.SalarySources {
		if src == s {
			return true
		}
	}
	return false
}

// ---- report ----

type ReportSummary struct {
	TotalAmount   float64 `json:"total_amount"`
	PaidAmount    float64 `json:"paid_amount"`
	DueAmount     float64 `json:"due_amount"`
	PartialAmount float64 `json:"partial_amount"`
	AdvanceAmount float64 `json:"advance_amount"`
}

type GroupTotal struct {
	Key   string  `json:"key"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

type Report struct {
	Salaries []models.PaySalary         `json:"pay_salaries"`
	Summary  ReportSummary              `json:"summary"`
	BySource []GroupTotal               `json:"by_source"`
	ByMonth  []GroupTotal               `json:"by_month"`
	Filters  repository.PaySalaryFilter `json:"filters"`
}

// Report lists the filtered salary entries with totals per payment state,
// per source and per month. Months are listed newest first.
func (s *PayrollService) Report(ctx context.Context, filter repository.PaySalaryFilter) (*Report, error) {
	entries, err := s.salaries.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	report := &Report{Salaries: entries, Filters: filter}
	bySource := map[string]*GroupTotal{}
	byMonth := map[string]*GroupTotal{}

	for _, e := range entries {
		report.Summary.TotalAmount += e.SalaryAmount
		switch e.PaymentState {
		case models.SalaryPaid:
			report.Summary.PaidAmount += e.SalaryAmount
		case models.SalaryDue:
			report.Summary.DueAmount += e.SalaryAmount
		case models.SalaryPartial:
			report.Summary.PartialAmount += e.SalaryAmount
		case models.SalaryAdvance:
			report.Summary.AdvanceAmount += e.SalaryAmount
		}
		addTo(bySource, e.SalarySource, e.SalaryAmount)
		addTo(byMonth, e.MonthYear, e.SalaryAmount)
	}

	report.BySource = flatten(bySource, func(a, b string) bool { return a < b })
	report.ByMonth = flatten(byMonth, func(a, b string) bool { return a > b })
	return report, nil
}

func addTo(groups map[string]*GroupTotal, key string, amount float64) {
	g, ok := groups[key]
	if !ok {
		g = &GroupTotal{Key: key}
		groups[key] = g
	}
	g.Total += amount
	g.Count++
}

func flatten(groups map[string]*GroupTotal, less func(a, b string) bool) []GroupTotal {
	out := make([]GroupTotal, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i].Key, out[j].Key) })
	return out
}

func notFound(err error, resource string) error {
	if repository.IsNotFound(err) {
		return services.NotFound(resource)
	}
	return err
}

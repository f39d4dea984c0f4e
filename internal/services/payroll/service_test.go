package payroll

import (
	"context"
	"testing"
	"time"

	"agency-billing-backend/internal/logging"
	"agency-billing-backend/internal/models"
	"agency-billing-backend/internal/repository"
	"agency-billing-backend/internal/services"
	"agency-billing-backend/internal/testdb"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var joined = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func newService(t *testing.T) *PayrollService {
	t.Helper()
	db := testdb.Open(t)
	return NewPayrollService(
		repository.NewEmployeeRepository(db),
		repository.NewPaySalaryRepository(db),
		logging.Discard(),
	)
}

func createEmployee(t *testing.T, s *PayrollService, name string) *models.Employee {
	t.Helper()
	e, err := s.CreateEmployee(context.Background(), EmployeeInput{Name: name, Salary: 40000, JoinDate: joined})
	require.NoError(t, err)
	return e
}

func TestStateFromFlags(t *testing.T) {
	state, err := StateFromFlags(true, false, false, false)
	require.NoError(t, err)
	assert.Equal(t, models.SalaryPaid, state)

	state, err = StateFromFlags(false, false, false, true)
	require.NoError(t, err)
	assert.Equal(t, models.SalaryAdvance, state)

	_, err = StateFromFlags(false, false, false, false)
	assert.Error(t, err)

	_, err = StateFromFlags(true, false, true, false)
	assert.Error(t, err)
}

func TestEmployee_Validation(t *testing.T) {
	s := newService(t)
	end := joined.AddDate(0, 0, -1)

	_, err := s.CreateEmployee(context.Background(), EmployeeInput{Name: " ", Salary: -1, JoinDate: joined, EndDate: &end})
	verr, ok := services.IsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "salary")
	assert.Contains(t, verr.Fields, "end_date")
}

func TestSalary_Validation(t *testing.T) {
	s := newService(t)

	_, err := s.CreateSalary(context.Background(), PaySalaryInput{
		EmployeeID:   uuid.New(),
		SalaryAmount: 100,
		MonthYear:    "2026-3",
		SalarySource: "Acme",
		PaymentState: "pending",
	})
	verr, ok := services.IsValidationError(err)
	require.True(t, ok)
	assert.Len(t, verr.Fields, 4)
}

func TestSalary_CRUD(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	e := createEmployee(t, s, "Rahim")

	entry, err := s.CreateSalary(ctx, PaySalaryInput{
		EmployeeID:   e.ID,
		SalaryAmount: 40000,
		MonthYear:    "2026-02",
		SalarySource: models.SourceCodeGaon,
		PaymentState: models.SalaryDue,
	})
	require.NoError(t, err)

	updated, err := s.UpdateSalary(ctx, entry.ID, PaySalaryInput{
		EmployeeID:   e.ID,
		SalaryAmount: 40000,
		MonthYear:    "2026-02",
		SalarySource: models.SourceCodeGaon,
		PaymentState: models.SalaryPaid,
	})
	require.NoError(t, err)
	assert.Equal(t, models.SalaryPaid, updated.PaymentState)

	got, err := s.GetSalary(ctx, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Employee)
	assert.Equal(t, "Rahim", got.Employee.Name)

	require.NoError(t, s.DeleteSalary(ctx, entry.ID))
	_, err = s.GetSalary(ctx, entry.ID)
	_, ok := services.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestReport(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	rahim := createEmployee(t, s, "Rahim")
	sadia := createEmployee(t, s, "Sadia")

	for _, in := range []PaySalaryInput{
		{EmployeeID: rahim.ID, SalaryAmount: 100, MonthYear: "2026-01", SalarySource: models.SourceCodeGaon, PaymentState: models.SalaryPaid},
		{EmployeeID: rahim.ID, SalaryAmount: 100, MonthYear: "2026-02", SalarySource: models.SourceCodeGaon, PaymentState: models.SalaryDue},
		{EmployeeID: sadia.ID, SalaryAmount: 80, MonthYear: "2026-02", SalarySource: models.SourceMSBJBD, PaymentState: models.SalaryPartial},
		{EmployeeID: sadia.ID, SalaryAmount: 20, MonthYear: "2026-02", SalarySource: models.SourceSinhdBD, PaymentState: models.SalaryAdvance},
	} {
		_, err := s.CreateSalary(ctx, in)
		require.NoError(t, err)
	}

	report, err := s.Report(ctx, repository.PaySalaryFilter{})
	require.NoError(t, err)
	assert.Len(t, report.Salaries, 4)
	assert.Equal(t, ReportSummary{
		TotalAmount:   300,
		PaidAmount:    100,
		DueAmount:     100,
		PartialAmount: 80,
		AdvanceAmount: 20,
	}, report.Summary)

	require.Len(t, report.BySource, 3)
	assert.Equal(t, GroupTotal{Key: models.SourceCodeGaon, Total: 200, Count: 2}, report.BySource[0])
	assert.Equal(t, models.SourceMSBJBD, report.BySource[1].Key)

	require.Len(t, report.ByMonth, 2)
	assert.Equal(t, GroupTotal{Key: "2026-02", Total: 200, Count: 3}, report.ByMonth[0])
	assert.Equal(t, "2026-01", report.ByMonth[1].Key)

	filtered, err := s.Report(ctx, repository.PaySalaryFilter{EmployeeID: &sadia.ID})
	require.NoError(t, err)
	assert.Equal(t, 100.0, filtered.Summary.TotalAmount)
	assert.Equal(t, &sadia.ID, filtered.Filters.EmployeeID)
}

func TestDeleteEmployee_RemovesSalaries(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	e := createEmployee(t, s, "Rahim")
	_, err := s.CreateSalary(ctx, PaySalaryInput{
		EmployeeID: e.ID, SalaryAmount: 1, MonthYear: "2026-01",
		SalarySource: models.SourceCodeGaon, PaymentState: models.SalaryPaid,
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteEmployee(ctx, e.ID))

	entries, err := s.ListSalaries(ctx, repository.PaySalaryFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = s.GetEmployee(ctx, e.ID)
	_, ok := services.IsNotFoundError(err)
	assert.True(t, ok)
}

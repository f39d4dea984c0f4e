package export

import (
	"bytes"
	"testing"
	"time"

	"agency-billing-backend/internal/models"
	"agency-billing-backend/internal/services/analytics"
	"agency-billing-backend/internal/services/payroll"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func open(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestBillingReport(t *testing.T) {
	report := &analytics.BillingReport{
		GeneratedAt: time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC),
		Overview:    analytics.Overview{TotalBills: 3, TotalBilled: 2000, CollectionRate: 60},
		MonthlyTrend: []analytics.TrendPoint{
			{Month: "Feb 2026", Count: 1, Billed: 500},
			{Month: "Mar 2026", Count: 2, Billed: 1500, Paid: 1200},
		},
		ServiceBreakdown: []analytics.ServiceBreakdown{
			{ServiceType: "domain", Count: 1, TotalAmount: 1000, PaidAmount: 1000},
		},
		OverdueBills: []analytics.OverdueBill{
			{BillNumber: "BILL-202603-0002", ClientName: "Acme", Amount: 500, RemainingAmount: 300,
				DueDate: time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), DaysOverdue: 4},
		},
	}

	data, err := BillingReport(report)
	require.NoError(t, err)

	f := open(t, data)
	assert.Equal(t, []string{"Overview", "Monthly Trend", "Service Breakdown", "Overdue Bills"}, f.GetSheetList())

	v, err := f.GetCellValue("Overview", "B3")
	require.NoError(t, err)
	assert.Equal(t, "3", v)

	v, err = f.GetCellValue("Monthly Trend", "A3")
	require.NoError(t, err)
	assert.Equal(t, "Mar 2026", v)

	rows, err := f.GetRows("Overdue Bills")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Bill Number", "Client", "Amount", "Remaining", "Due Date", "Days Overdue"}, rows[0])
	assert.Equal(t, "2026-03-16", rows[1][4])
}

func TestPayrollReport(t *testing.T) {
	note := "bonus included"
	report := &payroll.Report{
		Salaries: []models.PaySalary{
			{MonthYear: "2026-02", SalarySource: models.SourceCodeGaon, PaymentState: models.SalaryPaid,
				SalaryAmount: 100, Notes: &note, Employee: &models.Employee{Name: "Rahim"}},
		},
		Summary:  payroll.ReportSummary{TotalAmount: 100, PaidAmount: 100},
		BySource: []payroll.GroupTotal{{Key: models.SourceCodeGaon, Total: 100, Count: 1}},
		ByMonth:  []payroll.GroupTotal{{Key: "2026-02", Total: 100, Count: 1}},
	}

	data, err := PayrollReport(report)
	require.NoError(t, err)

	f := open(t, data)
	assert.Equal(t, []string{"Salaries", "Summary"}, f.GetSheetList())

	rows, err := f.GetRows("Salaries")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Rahim", rows[1][0])
	assert.Equal(t, "bonus included", rows[1][5])

	rows, err = f.GetRows("Summary")
	require.NoError(t, err)
	assert.Len(t, rows, 1+5+1+1)
}

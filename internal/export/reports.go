package export

import (
	"agency-billing-backend/internal/services/analytics"
	"agency-billing-backend/internal/services/payroll"
)

const dateLayout = "2006-01-02"

// BillingReport renders the billing report with one sheet per section.
func BillingReport(r *analytics.BillingReport) ([]byte, error) {
	o := r.Overview
	overview := sheet{
		name:   "Overview",
		header: []string{"Metric", "Value"},
		widths: []float64{28, 18},
		rows: [][]any{
			{"Generated At", r.GeneratedAt.Format("2006-01-02 15:04")},
			{"Total Bills", o.TotalBills},
			{"Total Billed", o.TotalBilled},
			{"Total Paid", o.TotalPaid},
			{"Total Outstanding", o.TotalOutstanding},
			{"Paid Bills", o.PaidBills},
			{"Unpaid Bills", o.UnpaidBills},
			{"Partially Paid Bills", o.PartiallyPaidBills},
			{"Overdue Bills", o.OverdueCount},
			{"Collection Rate (%)", o.CollectionRate},
			{"This Month Bills", r.CurrentMonth.TotalBills},
			{"This Month Billed", r.CurrentMonth.TotalAmount},
			{"This Month Paid", r.CurrentMonth.TotalPaid},
			{"Last Month Bills", r.LastMonth.TotalBills},
			{"Last Month Billed", r.LastMonth.TotalAmount},
			{"Last Month Paid", r.LastMonth.TotalPaid},
		},
	}

	trend := sheet{
		name:   "Monthly Trend",
		header: []string{"Month", "Bills", "Billed", "Paid"},
		widths: []float64{14, 10, 16, 16},
	}
	for _, p := range r.MonthlyTrend {
		trend.rows = append(trend.rows, []any{p.Month, p.Count, p.Billed, p.Paid})
	}

	services := sheet{
		name:   "Service Breakdown",
		header: []string{"Service Type", "Bills", "Total Amount", "Paid Amount", "Outstanding"},
		widths: []float64{18, 10, 16, 16, 16},
	}
	for _, b := range r.ServiceBreakdown {
		services.rows = append(services.rows, []any{b.ServiceType, b.Count, b.TotalAmount, b.PaidAmount, b.Outstanding})
	}

	overdue := sheet{
		name:   "Overdue Bills",
		header: []string{"Bill Number", "Client", "Amount", "Remaining", "Due Date", "Days Overdue"},
		widths: []float64{20, 28, 14, 14, 14, 14},
	}
	for _, b := range r.OverdueBills {
		overdue.rows = append(overdue.rows, []any{b.BillNumber, b.ClientName, b.Amount, b.RemainingAmount, b.DueDate.Format(dateLayout), b.DaysOverdue})
	}

	return build(overview, trend, services, overdue)
}

// PayrollReport renders the salary entries and their totals.
func PayrollReport(r *payroll.Report) ([]byte, error) {
	entries := sheet{
		name:   "Salaries",
		header: []string{"Employee", "Month", "Source", "State", "Amount", "Notes"},
		widths: []float64{28, 10, 14, 10, 14, 40},
	}
	for _, p := range r.Salaries {
		name, notes := "", ""
		if p.Employee != nil {
			name = p.Employee.Name
		}
		if p.Notes != nil {
			notes = *p.Notes
		}
		entries.rows = append(entries.rows, []any{name, p.MonthYear, p.SalarySource, string(p.PaymentState), p.SalaryAmount, notes})
	}

	s := r.Summary
	summary := sheet{
		name:   "Summary",
		header: []string{"Group", "Key", "Count", "Total"},
		widths: []float64{12, 14, 10, 16},
		rows: [][]any{
			{"state", "total", len(r.Salaries), s.TotalAmount},
			{"state", "paid", nil, s.PaidAmount},
			{"state", "partial", nil, s.PartialAmount},
			{"state", "due", nil, s.DueAmount},
			{"state", "advance", nil, s.AdvanceAmount},
		},
	}
	for _, g := range r.BySource {
		summary.rows = append(summary.rows, []any{"source", g.Key, g.Count, g.Total})
	}
	for _, g := range r.ByMonth {
		summary.rows = append(summary.rows, []any{"month", g.Key, g.Count, g.Total})
	}

	return build(entries, summary)
}

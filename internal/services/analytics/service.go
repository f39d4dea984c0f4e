package analytics

import (
	"context"
	"time"

	"agency-billing-backend/internal/models"
	"agency-billing-backend/internal/repository"
	"agency-billing-backend/internal/services"

	"github.com/google/uuid"
)

const (
	trendMonths = 6
	unpaidLimit = 10
	trendLabel  = "Jan 2006"
)

type AnalyticsService struct {
	bills   *repository.BillRepository
	clients *repository.ClientRepository
	domains *repository.DomainRepository
	hosting *repository.HostingServiceRepository
	ssl     *repository.SslCertificateRepository
	now     services.Clock
}

func NewAnalyticsService(
	bills *repository.BillRepository,
	clients *repository.ClientRepository,
	domains *repository.DomainRepository,
	hosting *repository.HostingServiceRepository,
	ssl *repository.SslCertificateRepository,
	clock services.Clock,
) *AnalyticsService {
	if clock == nil {
		clock = services.SystemClock
	}
	return &AnalyticsService{
		bills:   bills,
		clients: clients,
		domains: domains,
		hosting: hosting,
		ssl:     ssl,
		now:     clock,
	}
}

type Overview struct {
	TotalBills         int64   `json:"total_bills"`
	TotalBilled        float64 `json:"total_billed"`
	TotalPaid          float64 `json:"total_paid"`
	TotalOutstanding   float64 `json:"total_outstanding"`
	PaidBills          int64   `json:"paid_bills"`
	UnpaidBills        int64   `json:"unpaid_bills"`
	PartiallyPaidBills int64   `json:"partially_paid_bills"`
	OverdueCount       int     `json:"overdue_count"`
	CollectionRate     float64 `json:"collection_rate"`
}

type MonthSnapshot struct {
	TotalBills   int64   `json:"total_bills"`
	TotalAmount  float64 `json:"total_amount"`
	TotalPaid    float64 `json:"total_paid"`
	PaidCount    int64   `json:"paid_count"`
	UnpaidCount  int64   `json:"unpaid_count"`
	PartialCount int64   `json:"partial_count"`
}

type LastMonth struct {
	TotalBills  int64   `json:"total_bills"`
	TotalAmount float64 `json:"total_amount"`
	TotalPaid   float64 `json:"total_paid"`
}

type TrendPoint struct {
	Month  string  `json:"month"`
	Count  int64   `json:"count"`
	Billed float64 `json:"billed"`
	Paid   float64 `json:"paid"`
}

type ServiceBreakdown struct {
	ServiceType string  `json:"service_type"`
	Count       int64   `json:"count"`
	TotalAmount float64 `json:"total_amount"`
	PaidAmount  float64 `json:"paid_amount"`
	Outstanding float64 `json:"outstanding"`
}

type UnpaidBill struct {
	ID              uuid.UUID `json:"id"`
	BillNumber      string    `json:"bill_number"`
	ClientName      string    `json:"client_name"`
	Amount          float64   `json:"amount"`
	PaidAmount      float64   `json:"paid_amount"`
	RemainingAmount float64   `json:"remaining_amount"`
	DueDate         time.Time `json:"due_date"`
	PaymentStatus   string    `json:"payment_status"`
	ServiceType     string    `json:"service_type"`
	IsOverdue       bool      `json:"is_overdue"`
}

type OverdueBill struct {
	ID              uuid.UUID `json:"id"`
	BillNumber      string    `json:"bill_number"`
	ClientName      string    `json:"client_name"`
	Amount          float64   `json:"amount"`
	RemainingAmount float64   `json:"remaining_amount"`
	DueDate         time.Time `json:"due_date"`
	DaysOverdue     int       `json:"days_overdue"`
}

type BillingReport struct {
	GeneratedAt      time.Time          `json:"generated_at"`
	Overview         Overview           `json:"overview"`
	CurrentMonth     MonthSnapshot      `json:"current_month"`
	LastMonth        LastMonth          `json:"last_month"`
	MonthlyTrend     []TrendPoint       `json:"monthly_trend"`
	ServiceBreakdown []ServiceBreakdown `json:"service_breakdown"`
	RecentUnpaid     []UnpaidBill       `json:"recent_unpaid"`
	OverdueBills     []OverdueBill      `json:"overdue_bills"`
}

// BillingReport aggregates every bill into the report shown on the dashboard
// and exported as a spreadsheet.
func (s *AnalyticsService) BillingReport(ctx context.Context) (*BillingReport, error) {
	return s.billingReport(ctx, s.now())
}

func (s *AnalyticsService) billingReport(ctx context.Context, now time.Time) (*BillingReport, error) {
	report := &BillingReport{GeneratedAt: now}

	all, err := s.bills.Totals(ctx, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	overdue, err := s.bills.Overdue(ctx, now)
	if err != nil {
		return nil, err
	}

	report.Overview = Overview{
		TotalBills:         all.TotalBills,
		TotalBilled:        all.TotalAmount,
		TotalPaid:          all.TotalPaid,
		TotalOutstanding:   all.TotalAmount - all.TotalPaid,
		PaidBills:          all.PaidCount,
		UnpaidBills:        all.UnpaidCount,
		PartiallyPaidBills: all.PartialCount,
		OverdueCount:       len(overdue),
		CollectionRate:     CollectionRate(all.TotalPaid, all.TotalAmount),
	}

	monthStart := services.StartOfMonth(now)
	current, err := s.bills.Totals(ctx, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}
	report.CurrentMonth = MonthSnapshot{
		TotalBills:   current.TotalBills,
		TotalAmount:  current.TotalAmount,
		TotalPaid:    current.TotalPaid,
		PaidCount:    current.PaidCount,
		UnpaidCount:  current.UnpaidCount,
		PartialCount: current.PartialCount,
	}

	last, err := s.bills.Totals(ctx, monthStart.AddDate(0, -1, 0), monthStart)
	if err != nil {
		return nil, err
	}
	report.LastMonth = LastMonth{
		TotalBills:  last.TotalBills,
		TotalAmount: last.TotalAmount,
		TotalPaid:   last.TotalPaid,
	}

	report.MonthlyTrend = make([]TrendPoint, 0, trendMonths)
	for i := trendMonths - 1; i >= 0; i-- {
		start := monthStart.AddDate(0, -i, 0)
		t, err := s.bills.Totals(ctx, start, start.AddDate(0, 1, 0))
		if err != nil {
			return nil, err
		}
		report.MonthlyTrend = append(report.MonthlyTrend, TrendPoint{
			Month:  start.Format(trendLabel),
			Count:  t.TotalBills,
			Billed: t.TotalAmount,
			Paid:   t.TotalPaid,
		})
	}

	rows, err := s.bills.ServiceBreakdown(ctx)
	if err != nil {
		return nil, err
	}
	report.ServiceBreakdown = breakdown(rows)

	unpaid, err := s.bills.Unpaid(ctx, unpaidLimit)
	if err != nil {
		return nil, err
	}
	report.RecentUnpaid = make([]UnpaidBill, 0, len(unpaid))
	for i := range unpaid {
		b := &unpaid[i]
		report.RecentUnpaid = append(report.RecentUnpaid, UnpaidBill{
			ID:              b.ID,
			BillNumber:      b.BillNumber,
			ClientName:      clientName(b),
			Amount:          b.Amount,
			PaidAmount:      b.PaidAmount,
			RemainingAmount: b.RemainingAmount(),
			DueDate:         b.DueDate,
			PaymentStatus:   b.PaymentStatus,
			ServiceType:     b.ServiceType,
			IsOverdue:       b.IsOverdue(now),
		})
	}

	report.OverdueBills = make([]OverdueBill, 0, len(overdue))
	for i := range overdue {
		b := &overdue[i]
		report.OverdueBills = append(report.OverdueBills, OverdueBill{
			ID:              b.ID,
			BillNumber:      b.BillNumber,
			ClientName:      clientName(b),
			Amount:          b.Amount,
			RemainingAmount: b.RemainingAmount(),
			DueDate:         b.DueDate,
			DaysOverdue:     b.DaysOverdue(now),
		})
	}

	return report, nil
}

// CollectionRate is paid as a percentage of billed, 0 when nothing was billed.
func CollectionRate(paid, billed float64) float64 {
	if billed <= 0 {
		return 0
	}
	return paid / billed * 100
}

// breakdown lists every known service type in a fixed order, zero-filled,
// followed by any unknown types found in storage.
func breakdown(rows []repository.ServiceTypeRow) []ServiceBreakdown {
	byType := make(map[string]repository.ServiceTypeRow, len(rows))
	for _, r := range rows {
		byType[r.ServiceType] = r
	}

	out := make([]ServiceBreakdown, 0, len(models.ServiceTypes))
	add := func(t string, r repository.ServiceTypeRow) {
		out = append(out, ServiceBreakdown{
			ServiceType: t,
			Count:       r.Count,
			TotalAmount: r.TotalAmount,
			PaidAmount:  r.PaidAmount,
			Outstanding: r.TotalAmount - r.PaidAmount,
		})
	}
	for _, t := range models.ServiceTypes {
		add(t, byType[t])
		delete(byType, t)
	}
	for _, r := range rows {
		if _, ok := byType[r.ServiceType]; ok {
			add(r.ServiceType, r)
		}
	}
	return out
}

func clientName(b *models.Bill) string {
	if b.Client == nil {
		return ""
	}
	return b.Client.Name
}

type Summary struct {
	TotalClients         int64 `json:"total_clients"`
	TotalDomains         int64 `json:"total_domains"`
	TotalSslCertificates int64 `json:"total_ssl_certificates"`
	TotalHostingServices int64 `json:"total_hosting_services"`
	ExpiringDomainsCount int   `json:"expiring_domains_count"`
	ExpiringSslCount     int   `json:"expiring_ssl_count"`
	DueHostingCount      int   `json:"due_hosting_count"`
}

// ServiceCounts holds one figure per service kind.
type ServiceCounts struct {
	Domains int64 `json:"domains"`
	Ssl     int64 `json:"ssl"`
	Hosting int64 `json:"hosting"`
}

type ServiceRevenue struct {
	Domains float64 `json:"domains"`
	Ssl     float64 `json:"ssl"`
	Hosting float64 `json:"hosting"`
}

type Dashboard struct {
	Summary                 Summary                 `json:"summary"`
	ExpiringDomains         []models.Domain         `json:"expiring_domains"`
	ExpiringSslCertificates []models.SslCertificate `json:"expiring_ssl_certificates"`
	DueHostingServices      []models.HostingService `json:"due_hosting_services"`
	UnpaidSummary           ServiceCounts           `json:"unpaid_summary"`
	MonthlyRevenue          ServiceRevenue          `json:"monthly_revenue"`
	BillingReport           *BillingReport          `json:"billing_report"`
}

// Dashboard collects service expiries, unpaid counts and this month's
// service revenue alongside the billing report.
func (s *AnalyticsService) Dashboard(ctx context.Context) (*Dashboard, error) {
	now := s.now()
	until := now.Add(models.ExpiryWindow)
	d := &Dashboard{}

	var err error
	if d.ExpiringDomains, err = s.domains.DueBetween(ctx, "expiry_date", now, until, "Client"); err != nil {
		return nil, err
	}
	if d.ExpiringSslCertificates, err = s.ssl.DueBetween(ctx, "expiry_date", now, until, "Client", "Domain"); err != nil {
		return nil, err
	}
	hosting, err := s.hosting.DueBetween(ctx, "renewal_date", now, until, "Client", "Domain")
	if err != nil {
		return nil, err
	}
	d.DueHostingServices = make([]models.HostingService, 0, len(hosting))
	for _, h := range hosting {
		d.DueHostingServices = append(d.DueHostingServices, h.WithoutCredentials())
	}

	if d.Summary.TotalClients, err = s.clients.Count(ctx); err != nil {
		return nil, err
	}
	if d.Summary.TotalDomains, err = s.domains.Count(ctx); err != nil {
		return nil, err
	}
	if d.Summary.TotalSslCertificates, err = s.ssl.Count(ctx); err != nil {
		return nil, err
	}
	if d.Summary.TotalHostingServices, err = s.hosting.Count(ctx); err != nil {
		return nil, err
	}
	d.Summary.ExpiringDomainsCount = len(d.ExpiringDomains)
	d.Summary.ExpiringSslCount = len(d.ExpiringSslCertificates)
	d.Summary.DueHostingCount = len(d.DueHostingServices)

	if d.UnpaidSummary.Domains, err = s.domains.CountWhere(ctx, "payment_status", models.PaymentUnpaid); err != nil {
		return nil, err
	}
	if d.UnpaidSummary.Ssl, err = s.ssl.CountWhere(ctx, "payment_status", models.PaymentUnpaid); err != nil {
		return nil, err
	}
	if d.UnpaidSummary.Hosting, err = s.hosting.CountWhere(ctx, "payment_status", models.PaymentUnpaid); err != nil {
		return nil, err
	}

	from := services.StartOfMonth(now)
	to := from.AddDate(0, 1, 0)
	if d.MonthlyRevenue.Domains, err = s.domains.SumPriceCreatedBetween(ctx, from, to); err != nil {
		return nil, err
	}
	if d.MonthlyRevenue.Ssl, err = s.ssl.SumPriceCreatedBetween(ctx, from, to); err != nil {
		return nil, err
	}
	if d.MonthlyRevenue.Hosting, err = s.hosting.SumPriceCreatedBetween(ctx, from, to); err != nil {
		return nil, err
	}

	if d.BillingReport, err = s.billingReport(ctx, now); err != nil {
		return nil, err
	}
	return d, nil
}

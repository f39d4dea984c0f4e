package analytics

import (
	"context"
	"testing"
	"time"

	"agency-billing-backend/internal/models"
	"agency-billing-backend/internal/repository"
	"agency-billing-backend/internal/services"
	"agency-billing-backend/internal/testdb"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var now = time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*AnalyticsService, *gorm.DB) {
	t.Helper()
	db := testdb.Open(t)
	svc := NewAnalyticsService(
		repository.NewBillRepository(db),
		repository.NewClientRepository(db),
		repository.NewDomainRepository(db),
		repository.NewHostingServiceRepository(db),
		repository.NewSslCertificateRepository(db),
		services.FixedClock(now),
	)
	return svc, db
}

func insertBill(t *testing.T, db *gorm.DB, clientID uuid.UUID, number string, amount, paid float64, created, due time.Time, serviceType string) {
	t.Helper()
	bill := &models.Bill{
		BillNumber:    number,
		ClientID:      clientID,
		ServiceType:   serviceType,
		Description:   "service",
		Amount:        amount,
		PaidAmount:    paid,
		PaymentStatus: derive(amount, paid),
		Status:        models.BillStatusSent,
		DueDate:       due,
		CreatedBy:     uuid.New(),
		CreatedAt:     created,
	}
	require.NoError(t, db.Create(bill).Error)
}

func derive(amount, paid float64) string {
	switch {
	case paid >= amount:
		return models.PaymentPaid
	case paid > 0:
		return models.PaymentPartiallyPaid
	}
	return models.PaymentUnpaid
}

func TestCollectionRate(t *testing.T) {
	assert.Zero(t, CollectionRate(0, 0))
	assert.Zero(t, CollectionRate(100, 0))
	assert.Equal(t, 50.0, CollectionRate(500, 1000))
}

func TestBillingReport_Empty(t *testing.T) {
	svc, _ := newService(t)

	report, err := svc.BillingReport(context.Background())
	require.NoError(t, err)

	assert.Zero(t, report.Overview.TotalBills)
	assert.Zero(t, report.Overview.CollectionRate)
	require.Len(t, report.MonthlyTrend, trendMonths)
	assert.Equal(t, "Oct 2025", report.MonthlyTrend[0].Month)
	assert.Equal(t, "Mar 2026", report.MonthlyTrend[5].Month)
	for _, p := range report.MonthlyTrend {
		assert.Zero(t, p.Count)
		assert.Zero(t, p.Billed)
	}

	require.Len(t, report.ServiceBreakdown, len(models.ServiceTypes))
	for i, row := range report.ServiceBreakdown {
		assert.Equal(t, models.ServiceTypes[i], row.ServiceType)
		assert.Zero(t, row.Count)
	}
	assert.Empty(t, report.RecentUnpaid)
	assert.Empty(t, report.OverdueBills)
}

func TestBillingReport_Aggregates(t *testing.T) {
	svc, db := newService(t)
	client := &models.Client{Name: "Acme", Email: "a@acme.test"}
	require.NoError(t, db.Create(client).Error)

	insertBill(t, db, client.ID, "BILL-202603-0001", 1000, 1000, now.AddDate(0, 0, -5), now.AddDate(0, 0, 10), models.ServiceTypeDomain)
	insertBill(t, db, client.ID, "BILL-202603-0002", 500, 200, now.AddDate(0, 0, -2), now.AddDate(0, 0, -4), models.ServiceTypeHosting)
	insertBill(t, db, client.ID, "BILL-202602-0001", 500, 0, now.AddDate(0, -1, 0), now.AddDate(0, 0, 3), models.ServiceTypeEimsFee)

	report, err := svc.BillingReport(context.Background())
	require.NoError(t, err)

	o := report.Overview
	assert.Equal(t, int64(3), o.TotalBills)
	assert.Equal(t, 2000.0, o.TotalBilled)
	assert.Equal(t, 1200.0, o.TotalPaid)
	assert.Equal(t, 800.0, o.TotalOutstanding)
	assert.Equal(t, int64(1), o.PaidBills)
	assert.Equal(t, int64(1), o.UnpaidBills)
	assert.Equal(t, int64(1), o.PartiallyPaidBills)
	assert.Equal(t, 1, o.OverdueCount)
	assert.InDelta(t, 60.0, o.CollectionRate, 0.001)

	assert.Equal(t, int64(2), report.CurrentMonth.TotalBills)
	assert.Equal(t, 1500.0, report.CurrentMonth.TotalAmount)
	assert.Equal(t, int64(1), report.LastMonth.TotalBills)
	assert.Equal(t, 500.0, report.LastMonth.TotalAmount)

	assert.Equal(t, int64(1), report.MonthlyTrend[4].Count)
	assert.Equal(t, int64(2), report.MonthlyTrend[5].Count)

	assert.Equal(t, 300.0, report.ServiceBreakdown[1].Outstanding)
	assert.Zero(t, report.ServiceBreakdown[2].Count, "ssl has no bills")

	require.Len(t, report.RecentUnpaid, 2)
	assert.Equal(t, "BILL-202603-0002", report.RecentUnpaid[0].BillNumber)
	assert.True(t, report.RecentUnpaid[0].IsOverdue)
	assert.Equal(t, "Acme", report.RecentUnpaid[0].ClientName)

	require.Len(t, report.OverdueBills, 1)
	assert.Equal(t, 4, report.OverdueBills[0].DaysOverdue)
	assert.Equal(t, 300.0, report.OverdueBills[0].RemainingAmount)
}

func TestBreakdown_KeepsUnknownTypes(t *testing.T) {
	rows := breakdown([]repository.ServiceTypeRow{
		{ServiceType: "legacy", Count: 2, TotalAmount: 50, PaidAmount: 10},
		{ServiceType: models.ServiceTypeSSL, Count: 1, TotalAmount: 20},
	})

	require.Len(t, rows, len(models.ServiceTypes)+1)
	assert.Equal(t, models.ServiceTypeSSL, rows[2].ServiceType)
	assert.Equal(t, int64(1), rows[2].Count)
	assert.Equal(t, "legacy", rows[4].ServiceType)
	assert.Equal(t, 40.0, rows[4].Outstanding)
}

func TestDashboard(t *testing.T) {
	svc, db := newService(t)
	client := &models.Client{Name: "Acme", Email: "a@acme.test"}
	require.NoError(t, db.Create(client).Error)

	expiring := &models.Domain{ClientID: client.ID, Name: "soon.test", ExpiryDate: now.AddDate(0, 0, 7), Price: 12, CreatedAt: now}
	later := &models.Domain{ClientID: client.ID, Name: "later.test", ExpiryDate: now.AddDate(1, 0, 0), Price: 20, PaymentStatus: models.PaymentPaid, CreatedAt: now.AddDate(0, -2, 0)}
	require.NoError(t, db.Create(expiring).Error)
	require.NoError(t, db.Create(later).Error)
	require.NoError(t, db.Create(&models.HostingService{
		ClientID:    client.ID,
		DomainID:    expiring.ID,
		RenewalDate: now.AddDate(0, 0, 20),
		Price:       60,
		Username:    "root",
		Password:    "secret",
		CreatedAt:   now,
	}).Error)

	d, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), d.Summary.TotalClients)
	assert.Equal(t, int64(2), d.Summary.TotalDomains)
	assert.Equal(t, int64(1), d.Summary.TotalHostingServices)
	assert.Equal(t, 1, d.Summary.ExpiringDomainsCount)
	assert.Equal(t, 1, d.Summary.DueHostingCount)
	require.Len(t, d.ExpiringDomains, 1)
	assert.Equal(t, expiring.ID, d.ExpiringDomains[0].ID)

	require.Len(t, d.DueHostingServices, 1)
	assert.Empty(t, d.DueHostingServices[0].Password)

	assert.Equal(t, int64(1), d.UnpaidSummary.Domains)
	assert.Equal(t, int64(1), d.UnpaidSummary.Hosting)
	assert.Equal(t, 12.0, d.MonthlyRevenue.Domains)
	assert.Equal(t, 60.0, d.MonthlyRevenue.Hosting)
	require.NotNil(t, d.BillingReport)
}

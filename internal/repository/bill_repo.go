package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"agency-billing-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// maxNumberAttempts bounds retries when a generated bill number collides
// with one already stored.
const maxNumberAttempts = 3

type BillRepository struct {
	crud[models.Bill]
	db *gorm.DB
}

func NewBillRepository(db *gorm.DB) *BillRepository {
	return &BillRepository{crud: crud[models.Bill]{db: db}, db: db}
}

// BillPeriod is the YYYYMM key a bill created at t is numbered under.
func BillPeriod(t time.Time) string {
	return t.Format("200601")
}

// FormatBillNumber renders BILL-YYYYMM-NNNN.
func FormatBillNumber(period string, seq int) string {
	return fmt.Sprintf("BILL-%s-%04d", period, seq)
}

// ParseBillSequence extracts the sequence after the last dash. Sequences past
// 9999 simply grow a fifth digit.
func ParseBillSequence(number string) (int, bool) {
	i := strings.LastIndex(number, "-")
	if i < 0 || i == len(number)-1 {
		return 0, false
	}
	seq, err := strconv.Atoi(number[i+1:])
	if err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}

// NextBillNumber increments the counter for the period of now and returns the
// formatted number. It must run inside the transaction that inserts the bill
// so the counter row stays locked until the bill is committed. The counter
// never falls behind the highest number stored for the period.
func (r *BillRepository) NextBillNumber(tx *gorm.DB, now time.Time) (string, error) {
	period := BillPeriod(now)

	seed, err := r.highestSequence(tx, period)
	if err != nil {
		return "", err
	}

	var value int
	err = tx.Raw(`INSERT INTO bill_sequences (period, last_value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (period) DO UPDATE SET
			last_value = CASE WHEN bill_sequences.last_value + 1 > excluded.last_value
				THEN bill_sequences.last_value + 1 ELSE excluded.last_value END,
			updated_at = excluded.updated_at
		RETURNING last_value`, period, seed+1, now).Scan(&value).Error
	if err != nil {
		return "", fmt.Errorf("advance bill sequence %s: %w", period, err)
	}
	return FormatBillNumber(period, value), nil
}

// highestSequence finds the largest sequence already used in the period, so
// a fresh counter continues after bills stored before it existed.
func (r *BillRepository) highestSequence(tx *gorm.DB, period string) (int, error) {
	var numbers []string
	err := tx.Model(&models.Bill{}).
		Where("bill_number LIKE ?", "BILL-"+period+"-%").
		Order("LENGTH(bill_number) DESC, bill_number DESC").
		Limit(1).
		Pluck("bill_number", &numbers).Error
	if err != nil || len(numbers) == 0 {
		return 0, err
	}
	seq, _ := ParseBillSequence(numbers[0])
	return seq, nil
}

// CreateNumbered assigns the next bill number and inserts the bill in one
// transaction, retrying when the unique index rejects the number.
func (r *BillRepository) CreateNumbered(ctx context.Context, bill *models.Bill, now time.Time) error {
	var err error
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			number, err := r.NextBillNumber(tx, now)
			if err != nil {
				return err
			}
			bill.BillNumber = number
			return tx.Create(bill).Error
		})
		if err == nil || !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		bill.ID = uuid.Nil
	}
	return fmt.Errorf("bill number still taken after %d attempts: %w", maxNumberAttempts, err)
}

// BillFilter narrows List.
type BillFilter struct {
	PaymentStatus string
	Status        string
	ServiceType   string
	ClientID      *uuid.UUID
	Search        string
	Page          int
	PageSize      int
}

// List returns a page of bills, newest first, and the total match count.
func (r *BillRepository) List(ctx context.Context, f BillFilter) ([]models.Bill, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Bill{})

	if f.PaymentStatus != "" {
		q = q.Where("bills.payment_status = ?", f.PaymentStatus)
	}
	if f.Status != "" {
		q = q.Where("bills.status = ?", f.Status)
	}
	if f.ServiceType != "" {
		q = q.Where("bills.service_type = ?", f.ServiceType)
	}
	if f.ClientID != nil {
		q = q.Where("bills.client_id = ?", *f.ClientID)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Joins("LEFT JOIN clients ON clients.id = bills.client_id").
			Where("LOWER(bills.bill_number) LIKE ? OR LOWER(bills.description) LIKE ? OR LOWER(clients.name) LIKE ?", like, like, like)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.PageSize <= 0 {
		f.PageSize = 15
	}
	if f.Page <= 0 {
		f.Page = 1
	}

	var bills []models.Bill
	err := q.Preload("Client").Preload("Creator").Preload("Approver").
		Order("bills.created_at DESC").
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&bills).Error
	return bills, total, err
}

// Delete removes a bill row.
func (r *BillRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &models.Bill{}, id)
}

// CountByUser counts bills the user created plus bills the user approved.
func (r *BillRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var created, approved int64
	if err := r.db.WithContext(ctx).Model(&models.Bill{}).Where("created_by = ?", userID).Count(&created).Error; err != nil {
		return 0, err
	}
	if err := r.db.WithContext(ctx).Model(&models.Bill{}).Where("approved_by = ?", userID).Count(&approved).Error; err != nil {
		return 0, err
	}
	return created + approved, nil
}

// ---- analytics queries ----

// BillTotals is one aggregate row over a set of bills.
type BillTotals struct {
	TotalBills   int64
	TotalAmount  float64
	TotalPaid    float64
	PaidCount    int64
	UnpaidCount  int64
	PartialCount int64
}

// Totals aggregates bills created in [from, to). A zero from and to covers
// every bill.
func (r *BillRepository) Totals(ctx context.Context, from, to time.Time) (BillTotals, error) {
	var totals BillTotals
	q := r.db.WithContext(ctx).Model(&models.Bill{})
	if !from.IsZero() || !to.IsZero() {
		q = q.Where("created_at >= ? AND created_at < ?", from, to)
	}
	err := q.Select(`COUNT(*) AS total_bills,
		COALESCE(SUM(amount),0) AS total_amount,
		COALESCE(SUM(paid_amount),0) AS total_paid,
		COALESCE(SUM(CASE WHEN payment_status = ? THEN 1 ELSE 0 END),0) AS paid_count,
		COALESCE(SUM(CASE WHEN payment_status = ? THEN 1 ELSE 0 END),0) AS unpaid_count,
		COALESCE(SUM(CASE WHEN payment_status = ? THEN 1 ELSE 0 END),0) AS partial_count`,
		models.PaymentPaid, models.PaymentUnpaid, models.PaymentPartiallyPaid).
		Scan(&totals).Error
	return totals, err
}

type ServiceTypeRow struct {
	ServiceType string
	Count       int64
	TotalAmount float64
	PaidAmount  float64
}

func (r *BillRepository) ServiceBreakdown(ctx context.Context) ([]ServiceTypeRow, error) {
	var rows []ServiceTypeRow
	err := r.db.WithContext(ctx).Model(&models.Bill{}).
		Select("service_type, COUNT(*) AS count, COALESCE(SUM(amount),0) AS total_amount, COALESCE(SUM(paid_amount),0) AS paid_amount").
		Group("service_type").
		Scan(&rows).Error
	return rows, err
}

// Unpaid returns up to limit bills that are not fully paid, soonest due first.
func (r *BillRepository) Unpaid(ctx context.Context, limit int) ([]models.Bill, error) {
	var bills []models.Bill
	err := r.db.WithContext(ctx).Preload("Client").
		Where("payment_status <> ?", models.PaymentPaid).
		Order("due_date ASC").
		Limit(limit).
		Find(&bills).Error
	return bills, err
}

// Overdue returns every bill due before now that is not fully paid.
func (r *BillRepository) Overdue(ctx context.Context, now time.Time) ([]models.Bill, error) {
	var bills []models.Bill
	err := r.db.WithContext(ctx).Preload("Client").
		Where("due_date < ? AND payment_status <> ?", now, models.PaymentPaid).
		Order("due_date ASC").
		Find(&bills).Error
	return bills, err
}

// ---- audit log ----

func (r *BillRepository) AddAudit(ctx context.Context, entry *models.BillAuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *BillRepository) AuditTrail(ctx context.Context, billID uuid.UUID) ([]models.BillAuditLog, error) {
	var logs []models.BillAuditLog
	err := r.db.WithContext(ctx).Where("bill_id = ?", billID).Order("created_at ASC").Find(&logs).Error
	return logs, err
}

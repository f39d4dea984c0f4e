package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = gorm.ErrRecordNotFound

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// crud holds the operations every entity repository shares.
type crud[T any] struct {
	db *gorm.DB
}

func (r crud[T]) Create(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Create(entity).Error
}

func (r crud[T]) Save(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Save(entity).Error
}

// GetByID loads one row with the given associations preloaded.
func (r crud[T]) GetByID(ctx context.Context, id uuid.UUID, preloads ...string) (*T, error) {
	var entity T
	q := r.db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.First(&entity, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r crud[T]) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(new(T)).Count(&n).Error
	return n, err
}

// CountWhere counts rows matching a single equality condition.
func (r crud[T]) CountWhere(ctx context.Context, column string, value any) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(new(T)).Where(column+" = ?", value).Count(&n).Error
	return n, err
}

// DueBetween lists rows whose date column falls in [from, to], soonest first.
func (r crud[T]) DueBetween(ctx context.Context, column string, from, to time.Time, preloads ...string) ([]T, error) {
	var out []T
	q := r.db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	err := q.Where(column+" BETWEEN ? AND ?", from, to).Order(column + " ASC").Find(&out).Error
	return out, err
}

// SumPriceCreatedBetween sums the price column for rows created in [from, to).
func (r crud[T]) SumPriceCreatedBetween(ctx context.Context, from, to time.Time) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(new(T)).
		Where("created_at >= ? AND created_at < ?", from, to).
		Select("COALESCE(SUM(price),0)").
		Scan(&total).Error
	return total, err
}

// SetApprovalLevel flips one of the payment approval flags to true.
func (r crud[T]) SetApprovalLevel(ctx context.Context, id uuid.UUID, level int) error {
	column := "payment_approved_level1"
	if level == 2 {
		column = "payment_approved_level2"
	}
	res := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Update(column, true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

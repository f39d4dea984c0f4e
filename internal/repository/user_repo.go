package repository

import (
	"context"
	"strings"

	"agency-billing-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository struct {
	crud[models.User]
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{crud: crud[models.User]{db: db}, db: db}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "LOWER(email) = ?", strings.ToLower(email)).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// EmailTaken reports whether another user already uses the address.
func (r *UserRepository) EmailTaken(ctx context.Context, email string, exclude *uuid.UUID) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&models.User{}).Where("LOWER(email) = ?", strings.ToLower(email))
	if exclude != nil {
		q = q.Where("id <> ?", *exclude)
	}
	err := q.Count(&n).Error
	return n > 0, err
}

type UserFilter struct {
	UserType string
	IsActive *bool
	Search   string
	Page     int
	PageSize int
}

func (r *UserRepository) List(ctx context.Context, f UserFilter) ([]models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if f.UserType != "" {
		q = q.Where("user_type = ?", f.UserType)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
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

	var users []models.User
	err := q.Order("created_at DESC").Offset((f.Page - 1) * f.PageSize).Limit(f.PageSize).Find(&users).Error
	return users, total, err
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &models.User{}, id)
}

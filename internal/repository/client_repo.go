package repository

import (
	"context"
	"strings"
	"time"

	"agency-billing-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClientRepository struct {
	crud[models.Client]
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{crud: crud[models.Client]{db: db}, db: db}
}

// ClientRow is a client with its service counts for list pages.
type ClientRow struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Company      string    `json:"company"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	DomainsCount int64     `json:"domains_count"`
	HostingCount int64     `json:"hosting_count"`
	SslCount     int64     `json:"ssl_count"`
}

// List returns clients newest first with per-client service counts.
func (r *ClientRepository) List(ctx context.Context, search string) ([]ClientRow, error) {
	var rows []ClientRow
	q := r.db.WithContext(ctx).Model(&models.Client{}).
		Select(`clients.id, clients.name, clients.email, clients.phone, clients.company, clients.status, clients.created_at,
			(SELECT COUNT(*) FROM domains WHERE domains.client_id = clients.id) AS domains_count,
			(SELECT COUNT(*) FROM hosting_services WHERE hosting_services.client_id = clients.id) AS hosting_count,
			(SELECT COUNT(*) FROM ssl_certificates WHERE ssl_certificates.client_id = clients.id) AS ssl_count`)
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(clients.name) LIKE ? OR LOWER(clients.email) LIKE ? OR LOWER(clients.company) LIKE ?", like, like, like)
	}
	err := q.Order("clients.created_at DESC").Scan(&rows).Error
	return rows, err
}

// Exists reports whether a client with the id is stored.
func (r *ClientRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Client{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// Delete removes the client together with its services and bills.
func (r *ClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&models.Bill{}, &models.SslCertificate{}, &models.HostingService{}, &models.Domain{}} {
			if err := tx.Where("client_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.Client{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// TotalSpent sums the price of paid services owned by the client.
func (r *ClientRepository) TotalSpent(ctx context.Context, id uuid.UUID) (float64, error) {
	var total float64
	for _, m := range []any{&models.Domain{}, &models.SslCertificate{}, &models.HostingService{}} {
		var part float64
		err := r.db.WithContext(ctx).Model(m).
			Where("client_id = ? AND payment_status = ?", id, models.PaymentPaid).
			Select("COALESCE(SUM(price),0)").
			Scan(&part).Error
		if err != nil {
			return 0, err
		}
		total += part
	}
	return total, nil
}

// ActiveServicesCount counts active domains, SSL certificates and hosting.
func (r *ClientRepository) ActiveServicesCount(ctx context.Context, id uuid.UUID) (int64, error) {
	var total int64
	for _, m := range []any{&models.Domain{}, &models.SslCertificate{}, &models.HostingService{}} {
		var part int64
		err := r.db.WithContext(ctx).Model(m).
			Where("client_id = ? AND status = ?", id, models.StatusActive).
			Count(&part).Error
		if err != nil {
			return 0, err
		}
		total += part
	}
	return total, nil
}

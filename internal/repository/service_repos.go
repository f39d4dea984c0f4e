package repository

import (
	"context"

	"agency-billing-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DomainRepository struct {
	crud[models.Domain]
	db *gorm.DB
}

func NewDomainRepository(db *gorm.DB) *DomainRepository {
	return &DomainRepository{crud: crud[models.Domain]{db: db}, db: db}
}

// List returns domains newest first with client, hosting and SSL preloaded.
func (r *DomainRepository) List(ctx context.Context, clientID *uuid.UUID) ([]models.Domain, error) {
	var domains []models.Domain
	q := r.db.WithContext(ctx).Preload("Client").Preload("HostingService").Preload("SslCertificate")
	if clientID != nil {
		q = q.Where("client_id = ?", *clientID)
	}
	err := q.Order("created_at DESC").Find(&domains).Error
	return domains, err
}

// Delete removes the domain and the hosting and SSL records attached to it.
func (r *DomainRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("domain_id = ?", id).Delete(&models.HostingService{}).Error; err != nil {
			return err
		}
		if err := tx.Where("domain_id = ?", id).Delete(&models.SslCertificate{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Domain{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

type HostingServiceRepository struct {
	crud[models.HostingService]
	db *gorm.DB
}

func NewHostingServiceRepository(db *gorm.DB) *HostingServiceRepository {
	return &HostingServiceRepository{crud: crud[models.HostingService]{db: db}, db: db}
}

func (r *HostingServiceRepository) List(ctx context.Context, clientID *uuid.UUID) ([]models.HostingService, error) {
	var services []models.HostingService
	q := r.db.WithContext(ctx).Preload("Client").Preload("Domain")
	if clientID != nil {
		q = q.Where("client_id = ?", *clientID)
	}
	err := q.Order("created_at DESC").Find(&services).Error
	return services, err
}

// ExistsForDomain reports whether the domain already has hosting, ignoring
// the record identified by exclude.
func (r *HostingServiceRepository) ExistsForDomain(ctx context.Context, domainID uuid.UUID, exclude *uuid.UUID) (bool, error) {
	return existsForDomain(ctx, r.db, &models.HostingService{}, domainID, exclude)
}

func (r *HostingServiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &models.HostingService{}, id)
}

type SslCertificateRepository struct {
	crud[models.SslCertificate]
	db *gorm.DB
}

func NewSslCertificateRepository(db *gorm.DB) *SslCertificateRepository {
	return &SslCertificateRepository{crud: crud[models.SslCertificate]{db: db}, db: db}
}

func (r *SslCertificateRepository) List(ctx context.Context, clientID *uuid.UUID) ([]models.SslCertificate, error) {
	var certs []models.SslCertificate
	q := r.db.WithContext(ctx).Preload("Client").Preload("Domain")
	if clientID != nil {
		q = q.Where("client_id = ?", *clientID)
	}
	err := q.Order("created_at DESC").Find(&certs).Error
	return certs, err
}

func (r *SslCertificateRepository) ExistsForDomain(ctx context.Context, domainID uuid.UUID, exclude *uuid.UUID) (bool, error) {
	return existsForDomain(ctx, r.db, &models.SslCertificate{}, domainID, exclude)
}

func (r *SslCertificateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &models.SslCertificate{}, id)
}

func existsForDomain(ctx context.Context, db *gorm.DB, model any, domainID uuid.UUID, exclude *uuid.UUID) (bool, error) {
	var n int64
	q := db.WithContext(ctx).Model(model).Where("domain_id = ?", domainID)
	if exclude != nil {
		q = q.Where("id <> ?", *exclude)
	}
	err := q.Count(&n).Error
	return n > 0, err
}

func deleteByID(ctx context.Context, db *gorm.DB, model any, id uuid.UUID) error {
	res := db.WithContext(ctx).Delete(model, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

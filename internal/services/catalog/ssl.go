package catalog

import (
	"context"
	"strings"
	"time"

	"agency-billing-backend/internal/models"
	"agency-billing-backend/internal/repository"
	"agency-billing-backend/internal/services"

	"github.com/google/uuid"
)

type SslInput struct {
	DomainID      uuid.UUID
	Provider      string
	Type          string
	IssueDate     time.Time
	ExpiryDate    time.Time
	Price         float64
	PaymentStatus string
	Status        string
	AutoRenew     bool
}

type SslRow struct {
	models.SslCertificate
	IsExpiringSoon bool `json:"is_expiring_soon"`
}

func (s *CatalogService) ListSsl(ctx context.Context, clientID *uuid.UUID) ([]SslRow, error) {
	certs, err := s.ssl.List(ctx, clientID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	rows := make([]SslRow, 0, len(certs))
	for i := range certs {
		rows = append(rows, SslRow{SslCertificate: certs[i], IsExpiringSoon: certs[i].IsExpiringSoon(now)})
	}
	return rows, nil
}

func (s *CatalogService) GetSsl(ctx context.Context, id uuid.UUID) (*SslRow, error) {
	cert, err := s.ssl.GetByID(ctx, id, "Client", "Domain")
	if err != nil {
		return nil, notFound(err, "ssl certificate")
	}
	return &SslRow{SslCertificate: *cert, IsExpiringSoon: cert.IsExpiringSoon(s.now())}, nil
}

func (s *CatalogService) CreateSsl(ctx context.Context, in SslInput) (*models.SslCertificate, error) {
	domain, err := s.validateSsl(ctx, in, nil)
	if err != nil {
		return nil, err
	}
	cert := &models.SslCertificate{}
	applySsl(cert, in, domain)
	if err := s.ssl.Create(ctx, cert); err != nil {
		return nil, err
	}
	s.log.WithField("ssl_id", cert.ID).Info("ssl certificate created")
	return cert, nil
}

func (s *CatalogService) UpdateSsl(ctx context.Context, id uuid.UUID, in SslInput) (*models.SslCertificate, error) {
	cert, err := s.ssl.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "ssl certificate")
	}
	domain, err := s.validateSsl(ctx, in, &cert.ID)
	if err != nil {
		return nil, err
	}
	applySsl(cert, in, domain)
	if err := s.ssl.Save(ctx, cert); err != nil {
		return nil, err
	}
	return cert, nil
}

func (s *CatalogService) DeleteSsl(ctx context.Context, id uuid.UUID) error {
	if err := s.ssl.Delete(ctx, id); err != nil {
		return notFound(err, "ssl certificate")
	}
	return nil
}

func (s *CatalogService) validateSsl(ctx context.Context, in SslInput, exclude *uuid.UUID) (*models.Domain, error) {
	var v services.Validator
	v.Check(strings.TrimSpace(in.Provider) != "", "provider", "The provider field is required.")
	v.Check(strings.TrimSpace(in.Type) != "", "type", "The type field is required.")
	v.Check(!in.ExpiryDate.IsZero(), "expiry_date", "The expiry date field is required.")
	if !in.IssueDate.IsZero() {
		v.Check(in.ExpiryDate.After(in.IssueDate), "expiry_date", "The expiry date must be a date after issue date.")
	}
	v.Check(oneOf(in.Status, models.StatusActive, models.StatusInactive), "status", "The selected status is invalid.")
	v.Check(in.Price >= 0, "price", "The price must be at least 0.")
	if in.PaymentStatus != "" {
		v.Check(oneOf(in.PaymentStatus, models.PaymentPaid, models.PaymentUnpaid, models.PaymentPartiallyPaid), "payment_status", "The selected payment status is invalid.")
	}

	domain, err := s.domains.GetByID(ctx, in.DomainID)
	if err != nil {
		if !repository.IsNotFound(err) {
			return nil, err
		}
		v.Add("domain_id", "The selected domain is invalid.")
		return nil, v.Err()
	}

	taken, err := s.ssl.ExistsForDomain(ctx, in.DomainID, exclude)
	if err != nil {
		return nil, err
	}
	v.Check(!taken, "domain_id", "The domain already has an SSL certificate.")

	if err := v.Err(); err != nil {
		return nil, err
	}
	return domain, nil
}

func applySsl(c *models.SslCertificate, in SslInput, domain *models.Domain) {
	c.DomainID = domain.ID
	c.ClientID = domain.ClientID
	c.Provider = strings.TrimSpace(in.Provider)
	c.Type = strings.TrimSpace(in.Type)
	c.IssueDate = in.IssueDate
	c.ExpiryDate = in.ExpiryDate
	c.Price = in.Price
	c.PaymentStatus = in.PaymentStatus
	if c.PaymentStatus == "" {
		c.PaymentStatus = models.PaymentUnpaid
	}
	c.Status = in.Status
	c.AutoRenew = in.AutoRenew
}

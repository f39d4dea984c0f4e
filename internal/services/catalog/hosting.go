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

type HostingInput struct {
	DomainID        uuid.UUID
	Provider        string
	PackageName     string
	StartDate       time.Time
	RenewalDate     time.Time
	Status          string
	Price           float64
	PaymentStatus   string
	ServerIP        *string
	ControlPanelURL *string
	Username        string
	Password        string
}

// HostingRow is a hosting package as shown on list pages, without credentials.
type HostingRow struct {
	models.HostingService
	IsDueForRenewal bool `json:"is_due_for_renewal"`
}

func (s *CatalogService) ListHosting(ctx context.Context, clientID *uuid.UUID) ([]HostingRow, error) {
	list, err := s.hosting.List(ctx, clientID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	rows := make([]HostingRow, 0, len(list))
	for i := range list {
		rows = append(rows, HostingRow{
			HostingService:  list[i].WithoutCredentials(),
			IsDueForRenewal: list[i].IsDueForRenewal(now),
		})
	}
	return rows, nil
}

// GetHosting returns the full record, credentials included.
func (s *CatalogService) GetHosting(ctx context.Context, id uuid.UUID) (*models.HostingService, error) {
	h, err := s.hosting.GetByID(ctx, id, "Client", "Domain")
	if err != nil {
		return nil, notFound(err, "hosting service")
	}
	return h, nil
}

func (s *CatalogService) CreateHosting(ctx context.Context, in HostingInput) (*models.HostingService, error) {
	domain, err := s.validateHosting(ctx, in, nil)
	if err != nil {
		return nil, err
	}
	h := &models.HostingService{}
	applyHosting(h, in, domain)
	if err := s.hosting.Create(ctx, h); err != nil {
		return nil, err
	}
	s.log.WithField("hosting_id", h.ID).Info("hosting service created")
	return h, nil
}

func (s *CatalogService) UpdateHosting(ctx context.Context, id uuid.UUID, in HostingInput) (*models.HostingService, error) {
	h, err := s.hosting.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "hosting service")
	}
	domain, err := s.validateHosting(ctx, in, &h.ID)
	if err != nil {
		return nil, err
	}
	applyHosting(h, in, domain)
	if err := s.hosting.Save(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *CatalogService) DeleteHosting(ctx context.Context, id uuid.UUID) error {
	if err := s.hosting.Delete(ctx, id); err != nil {
		return notFound(err, "hosting service")
	}
	return nil
}

// validateHosting checks the input and returns the domain the package is
// attached to. exclude is the record being updated.
func (s *CatalogService) validateHosting(ctx context.Context, in HostingInput, exclude *uuid.UUID) (*models.Domain, error) {
	var v services.Validator
	v.Check(strings.TrimSpace(in.Provider) != "", "provider", "The provider field is required.")
	v.Check(strings.TrimSpace(in.PackageName) != "", "package_name", "The package name field is required.")
	v.Check(!in.StartDate.IsZero(), "start_date", "The start date field is required.")
	v.Check(!in.RenewalDate.IsZero(), "renewal_date", "The renewal date field is required.")
	v.Check(oneOf(in.Status, models.StatusActive, models.StatusInactive), "status", "The selected status is invalid.")
	v.Check(in.Price >= 0, "price", "The price must be at least 0.")
	v.Check(oneOf(in.PaymentStatus, models.PaymentPaid, models.PaymentUnpaid, models.PaymentPartiallyPaid), "payment_status", "The selected payment status is invalid.")
	v.Check(strings.TrimSpace(in.Username) != "", "username", "The username field is required.")
	v.Check(in.Password != "", "password", "The password field is required.")
	if in.ControlPanelURL != nil {
		v.CheckTag(*in.ControlPanelURL, "omitempty,url,max=255", "control_panel_url", "The control panel url format is invalid.")
	}

	domain, err := s.domains.GetByID(ctx, in.DomainID)
	if err != nil {
		if !repository.IsNotFound(err) {
			return nil, err
		}
		v.Add("domain_id", "The selected domain is invalid.")
		return nil, v.Err()
	}

	taken, err := s.hosting.ExistsForDomain(ctx, in.DomainID, exclude)
	if err != nil {
		return nil, err
	}
	v.Check(!taken, "domain_id", "The domain already has a hosting service.")

	if err := v.Err(); err != nil {
		return nil, err
	}
	return domain, nil
}

func applyHosting(h *models.HostingService, in HostingInput, domain *models.Domain) {
	h.DomainID = domain.ID
	h.ClientID = domain.ClientID
	h.Provider = strings.TrimSpace(in.Provider)
	h.PackageName = strings.TrimSpace(in.PackageName)
	h.StartDate = in.StartDate
	h.RenewalDate = in.RenewalDate
	h.Status = in.Status
	h.Price = in.Price
	h.PaymentStatus = in.PaymentStatus
	h.ServerIP = in.ServerIP
	h.ControlPanelURL = in.ControlPanelURL
	h.Username = in.Username
	h.Password = in.Password
}

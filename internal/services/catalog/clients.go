package catalog

import (
	"context"
	"strings"

	"agency-billing-backend/internal/models"
	"agency-billing-backend/internal/repository"
	"agency-billing-backend/internal/services"

	"github.com/google/uuid"
)

type ClientInput struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Address string
	Status  string
}

// ClientDetail is a client with its services and spending figures.
type ClientDetail struct {
	models.Client
	TotalSpent          float64 `json:"total_spent"`
	ActiveServicesCount int64   `json:"active_services_count"`
}

func (s *CatalogService) ListClients(ctx context.Context, search string) ([]repository.ClientRow, error) {
	return s.clients.List(ctx, strings.TrimSpace(search))
}

func (s *CatalogService) GetClient(ctx context.Context, id uuid.UUID) (*ClientDetail, error) {
	client, err := s.clients.GetByID(ctx, id, "Domains", "HostingServices", "SslCertificates", "Bills")
	if err != nil {
		return nil, notFound(err, "client")
	}
	for i := range client.HostingServices {
		client.HostingServices[i] = client.HostingServices[i].WithoutCredentials()
	}

	detail := &ClientDetail{Client: *client}
	if detail.TotalSpent, err = s.clients.TotalSpent(ctx, id); err != nil {
		return nil, err
	}
	if detail.ActiveServicesCount, err = s.clients.ActiveServicesCount(ctx, id); err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *CatalogService) CreateClient(ctx context.Context, in ClientInput) (*models.Client, error) {
	if err := validateClient(in); err != nil {
		return nil, err
	}
	client := &models.Client{}
	applyClient(client, in)
	if err := s.clients.Create(ctx, client); err != nil {
		return nil, err
	}
	s.log.WithField("client_id", client.ID).Info("client created")
	return client, nil
}

func (s *CatalogService) UpdateClient(ctx context.Context, id uuid.UUID, in ClientInput) (*models.Client, error) {
	if err := validateClient(in); err != nil {
		return nil, err
	}
	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "client")
	}
	applyClient(client, in)
	if err := s.clients.Save(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// DeleteClient removes the client with every domain, hosting package, SSL
// certificate and bill it owns.
func (s *CatalogService) DeleteClient(ctx context.Context, id uuid.UUID) error {
	if err := s.clients.Delete(ctx, id); err != nil {
		return notFound(err, "client")
	}
	s.log.WithField("client_id", id).Info("client deleted")
	return nil
}

func validateClient(in ClientInput) error {
	var v services.Validator
	v.Check(strings.TrimSpace(in.Name) != "", "name", "The name field is required.")
	v.Check(len(in.Name) <= 255, "name", "The name may not be greater than 255 characters.")
	v.CheckTag(strings.TrimSpace(in.Email), "required,email,max=255", "email", "The email must be a valid email address.")
	v.Check(oneOf(in.Status, models.StatusActive, models.StatusInactive), "status", "The selected status is invalid.")
	return v.Err()
}

func applyClient(c *models.Client, in ClientInput) {
	c.Name = strings.TrimSpace(in.Name)
	c.Email = strings.TrimSpace(in.Email)
	c.Phone = in.Phone
	c.Company = in.Company
	c.Address = in.Address
	c.Status = in.Status
}

package catalog

import (
	"context"
	"testing"
	"time"

	"agency-billing-backend/internal/logging"
	"agency-billing-backend/internal/models"
	"agency-billing-backend/internal/repository"
	"agency-billing-backend/internal/services"
	"agency-billing-backend/internal/testdb"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

var (
	manager  = &models.User{ID: uuid.New(), UserType: models.UserTypeAccountManager, IsActive: true}
	approver = &models.User{ID: uuid.New(), UserType: models.UserTypeApprover, IsActive: true}
)

func newService(t *testing.T) *CatalogService {
	t.Helper()
	db := testdb.Open(t)
	return NewCatalogService(
		repository.NewClientRepository(db),
		repository.NewDomainRepository(db),
		repository.NewHostingServiceRepository(db),
		repository.NewSslCertificateRepository(db),
		logging.Discard(),
		services.FixedClock(now),
	)
}

func createClient(t *testing.T, s *CatalogService) *models.Client {
	t.Helper()
	c, err := s.CreateClient(context.Background(), ClientInput{
		Name:   " Acme Ltd ",
		Email:  "billing@acme.test",
		Status: models.StatusActive,
	})
	require.NoError(t, err)
	return c
}

func createDomain(t *testing.T, s *CatalogService, clientID uuid.UUID, name string) *models.Domain {
	t.Helper()
	d, err := s.CreateDomain(context.Background(), DomainInput{
		ClientID:         clientID,
		Name:             name,
		Registrar:        "Namecheap",
		RegistrationDate: now.AddDate(-1, 0, 0),
		ExpiryDate:       now.AddDate(0, 0, 20),
		Status:           models.StatusActive,
		Price:            15,
		PaymentStatus:    models.PaymentUnpaid,
	})
	require.NoError(t, err)
	return d
}

func hostingInput(domainID uuid.UUID) HostingInput {
	panel := "https://panel.acme.test:2083"
	return HostingInput{
		DomainID:        domainID,
		Provider:        "Hetzner",
		PackageName:     "Business",
		StartDate:       now.AddDate(0, -11, 0),
		RenewalDate:     now.AddDate(0, 1, 0),
		Status:          models.StatusActive,
		Price:           120,
		PaymentStatus:   models.PaymentUnpaid,
		ControlPanelURL: &panel,
		Username:        "acme",
		Password:        "s3cret",
	}
}

func TestClients_CreateValidateGet(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	_, err := s.CreateClient(ctx, ClientInput{Name: "", Email: "nope", Status: "archived"})
	verr, ok := services.IsValidationError(err)
	require.True(t, ok)
	assert.Len(t, verr.Fields, 3)

	c := createClient(t, s)
	assert.Equal(t, "Acme Ltd", c.Name)
	createDomain(t, s, c.ID, "acme.test")

	detail, err := s.GetClient(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Domains, 1)
	assert.Equal(t, int64(1), detail.ActiveServicesCount)
	assert.Zero(t, detail.TotalSpent)

	_, err = s.GetClient(ctx, uuid.New())
	_, ok = services.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestDomains_Validation(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	_, err := s.CreateDomain(ctx, DomainInput{
		ClientID:         uuid.New(),
		Name:             "ghost.test",
		Registrar:        "Namecheap",
		RegistrationDate: now,
		ExpiryDate:       now.AddDate(0, 0, -1),
		Status:           models.StatusActive,
		PaymentStatus:    models.PaymentPartiallyPaid,
	})
	verr, ok := services.IsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "client_id")
	assert.Contains(t, verr.Fields, "expiry_date")
	assert.Contains(t, verr.Fields, "payment_status", "domains use partial, not partially_paid")
}

func TestDomains_ListFlags(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	c := createClient(t, s)
	d := createDomain(t, s, c.ID, "acme.test")
	_, err := s.CreateHosting(ctx, hostingInput(d.ID))
	require.NoError(t, err)

	rows, err := s.ListDomains(ctx, &c.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].HasHosting)
	assert.False(t, rows[0].HasSsl)
	assert.True(t, rows[0].IsExpiringSoon)
	require.NotNil(t, rows[0].HostingService)
	assert.Empty(t, rows[0].HostingService.Password)
}

func TestHosting_OnePerDomain(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	c := createClient(t, s)
	d := createDomain(t, s, c.ID, "acme.test")

	h, err := s.CreateHosting(ctx, hostingInput(d.ID))
	require.NoError(t, err)
	assert.Equal(t, c.ID, h.ClientID, "client comes from the domain")

	_, err = s.CreateHosting(ctx, hostingInput(d.ID))
	verr, ok := services.IsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "domain_id")

	in := hostingInput(d.ID)
	in.Price = 150
	updated, err := s.UpdateHosting(ctx, h.ID, in)
	require.NoError(t, err, "updating the same record is not a duplicate")
	assert.Equal(t, 150.0, updated.Price)
}

func TestHosting_CredentialsOnlyOnDetail(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	c := createClient(t, s)
	d := createDomain(t, s, c.ID, "acme.test")
	h, err := s.CreateHosting(ctx, hostingInput(d.ID))
	require.NoError(t, err)

	rows, err := s.ListHosting(ctx, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].Username)
	assert.Empty(t, rows[0].Password)

	full, err := s.GetHosting(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", full.Password)
}

func TestHosting_RejectsBadPanelURL(t *testing.T) {
	s := newService(t)
	c := createClient(t, s)
	d := createDomain(t, s, c.ID, "acme.test")

	in := hostingInput(d.ID)
	for _, bad := range []string{"not a url", "cpanel.acme.test"} {
		in.ControlPanelURL = &bad
		_, err := s.CreateHosting(context.Background(), in)
		verr, ok := services.IsValidationError(err)
		require.True(t, ok, bad)
		assert.Contains(t, verr.Fields, "control_panel_url")
	}

	good := "https://cpanel.acme.test:2083"
	in.ControlPanelURL = &good
	h, err := s.CreateHosting(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, &good, h.ControlPanelURL)
}

func TestSsl_DefaultsAndUniqueness(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	c := createClient(t, s)
	d := createDomain(t, s, c.ID, "acme.test")

	in := SslInput{
		DomainID:   d.ID,
		Provider:   "Sectigo",
		Type:       "DV",
		ExpiryDate: now.AddDate(1, 0, 0),
		Status:     models.StatusActive,
	}
	cert, err := s.CreateSsl(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentUnpaid, cert.PaymentStatus)
	assert.Equal(t, c.ID, cert.ClientID)

	_, err = s.CreateSsl(ctx, in)
	_, ok := services.IsValidationError(err)
	assert.True(t, ok)
}

func TestDeleteDomain_RemovesServices(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	c := createClient(t, s)
	d := createDomain(t, s, c.ID, "acme.test")
	h, err := s.CreateHosting(ctx, hostingInput(d.ID))
	require.NoError(t, err)

	require.NoError(t, s.DeleteDomain(ctx, d.ID))

	_, err = s.GetHosting(ctx, h.ID)
	_, ok := services.IsNotFoundError(err)
	assert.True(t, ok)

	err = s.DeleteDomain(ctx, d.ID)
	_, ok = services.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestApproval_LevelTwoRequiresLevelOne(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	c := createClient(t, s)
	d := createDomain(t, s, c.ID, "acme.test")

	err := s.ApproveLevel2(ctx, approver, KindDomain, d.ID)
	_, ok := services.IsStateConflictError(err)
	require.True(t, ok)

	row, err := s.GetDomain(ctx, d.ID)
	require.NoError(t, err)
	assert.False(t, row.PaymentApprovedLevel2, "refused approval leaves level 2 untouched")

	require.NoError(t, s.ApproveLevel1(ctx, manager, KindDomain, d.ID))

	err = s.ApproveLevel2(ctx, manager, KindDomain, d.ID)
	_, ok = services.IsAuthorizationError(err)
	assert.True(t, ok, "account managers cannot give final approval")

	require.NoError(t, s.ApproveLevel2(ctx, approver, KindDomain, d.ID))
	row, err = s.GetDomain(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, row.PaymentApprovedLevel1)
	assert.True(t, row.PaymentApprovedLevel2)
}

func TestApproval_HostingAndSsl(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	c := createClient(t, s)
	d := createDomain(t, s, c.ID, "acme.test")
	h, err := s.CreateHosting(ctx, hostingInput(d.ID))
	require.NoError(t, err)

	require.NoError(t, s.ApproveLevel1(ctx, approver, KindHosting, h.ID))
	full, err := s.GetHosting(ctx, h.ID)
	require.NoError(t, err)
	assert.True(t, full.PaymentApprovedLevel1)

	err = s.ApproveLevel1(ctx, manager, KindSsl, uuid.New())
	_, ok := services.IsNotFoundError(err)
	assert.True(t, ok)
}

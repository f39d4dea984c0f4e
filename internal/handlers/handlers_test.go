package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agency-billing-backend/internal/logging"
	"agency-billing-backend/internal/middleware"
	"agency-billing-backend/internal/models"
	"agency-billing-backend/internal/repository"
	"agency-billing-backend/internal/services"
	"agency-billing-backend/internal/services/analytics"
	"agency-billing-backend/internal/services/billing"
	"agency-billing-backend/internal/services/catalog"
	"agency-billing-backend/internal/services/payroll"
	"agency-billing-backend/internal/testdb"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var today = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
}

// tokenAuth maps fixed bearer tokens to users.
type tokenAuth map[string]*models.User

func (a tokenAuth) Authenticate(_ context.Context, token string) (*models.User, error) {
	if u, ok := a[token]; ok {
		return u, nil
	}
	return nil, errors.New("unknown token")
}

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	client *models.Client
	domain *models.Domain
}

func setupTestRouter(t *testing.T) *testServer {
	t.Helper()
	db := testdb.Open(t)
	log := logging.Discard()
	clock := services.FixedClock(today)

	bills := repository.NewBillRepository(db)
	clients := repository.NewClientRepository(db)
	domains := repository.NewDomainRepository(db)
	hosting := repository.NewHostingServiceRepository(db)
	ssl := repository.NewSslCertificateRepository(db)

	billHandler := NewBillHandler(billing.NewBillingService(bills, clients, domains, hosting, ssl, log, clock), log)
	catalogHandler := NewCatalogHandler(catalog.NewCatalogService(clients, domains, hosting, ssl, log, clock), log)
	reportHandler := NewReportHandler(analytics.NewAnalyticsService(bills, clients, domains, hosting, ssl, clock), log)
	payrollHandler := NewPayrollHandler(payroll.NewPayrollService(
		repository.NewEmployeeRepository(db),
		repository.NewPaySalaryRepository(db),
		log,
	), log)

	auth := tokenAuth{
		"manager":  {ID: uuid.New(), UserType: models.UserTypeAccountManager, IsActive: true},
		"approver": {ID: uuid.New(), UserType: models.UserTypeApprover, IsActive: true},
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	api := router.Group("/api", middleware.RequireAuth(auth))
	api.GET("/bills/:id", billHandler.Get)
	api.POST("/bills", billHandler.Create)
	api.PUT("/bills/:id", billHandler.Update)
	api.PATCH("/bills/:id/approve", billHandler.Approve)
	api.PATCH("/bills/:id/payment", billHandler.RecordPayment)
	api.PATCH("/domains/:id/approve-level2", catalogHandler.ApproveLevel2(catalog.KindDomain))
	api.POST("/hosting-services", catalogHandler.CreateHosting)
	api.GET("/reports/billing", reportHandler.BillingReport)
	api.GET("/reports/billing/export", reportHandler.ExportBillingReport)
	api.POST("/payroll", payrollHandler.CreateSalary)

	s := &testServer{router: router, db: db}
	s.client = &models.Client{Name: "Acme", Email: "billing@acme.test"}
	require.NoError(t, db.Create(s.client).Error)
	s.domain = &models.Domain{ClientID: s.client.ID, Name: "acme.test", ExpiryDate: today.AddDate(1, 0, 0)}
	require.NoError(t, db.Create(s.domain).Error)
	return s
}

type envelope struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Data      json.RawMessage   `json:"data"`
	Errors    map[string]string `json:"errors"`
	RequestID string            `json:"request_id"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "test-request-id")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (s *testServer) billBody(amount float64) gin.H {
	return gin.H{
		"client_id":    s.client.ID,
		"service_type": "domain",
		"service_id":   s.domain.ID,
		"description":  "Domain renewal",
		"amount":       amount,
		"due_date":     "2026-03-24",
	}
}

func (s *testServer) createBill(t *testing.T) uuid.UUID {
	t.Helper()
	w, env := s.do(t, http.MethodPost, "/api/bills", "manager", s.billBody(1000))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var bill models.Bill
	require.NoError(t, json.Unmarshal(env.Data, &bill))
	return bill.ID
}

func TestRequiresBearerToken(t *testing.T) {
	s := setupTestRouter(t)

	w, env := s.do(t, http.MethodGet, "/api/bills/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)

	w, _ = s.do(t, http.MethodGet, "/api/bills/"+uuid.NewString(), "forged", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateBill(t *testing.T) {
	s := setupTestRouter(t)

	w, env := s.do(t, http.MethodPost, "/api/bills", "manager", s.billBody(1000))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, env.Success)
	assert.Equal(t, "test-request-id", env.RequestID)
	assert.Equal(t, "test-request-id", w.Header().Get("X-Request-ID"))

	var bill models.Bill
	require.NoError(t, json.Unmarshal(env.Data, &bill))
	assert.Equal(t, "BILL-202603-0001", bill.BillNumber)
	assert.Equal(t, models.BillStatusDraft, bill.Status)
}

func TestCreateBill_BindingErrors(t *testing.T) {
	s := setupTestRouter(t)

	body := s.billBody(-1)
	delete(body, "description")
	body["service_type"] = "mailbox"
	w, env := s.do(t, http.MethodPost, "/api/bills", "manager", body)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	assert.Contains(t, env.Errors, "description")
	assert.Contains(t, env.Errors, "service_type")
	assert.Contains(t, env.Errors, "amount")

	req, _ := http.NewRequest(http.MethodPost, "/api/bills", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer manager")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBill_InvalidDueDate(t *testing.T) {
	s := setupTestRouter(t)
	body := s.billBody(10)
	body["due_date"] = "next week"

	w, env := s.do(t, http.MethodPost, "/api/bills", "manager", body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, env.Errors, "due_date")
}

func TestCreateBill_ForeignService(t *testing.T) {
	s := setupTestRouter(t)
	body := s.billBody(10)
	body["service_id"] = uuid.New()

	w, env := s.do(t, http.MethodPost, "/api/bills", "manager", body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, env.Message, "does not belong")
}

func TestBillWorkflow(t *testing.T) {
	s := setupTestRouter(t)
	id := s.createBill(t).String()

	w, _ := s.do(t, http.MethodPatch, "/api/bills/"+id+"/approve", "manager", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(t, http.MethodPatch, "/api/bills/"+id+"/approve", "approver", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = s.do(t, http.MethodPut, "/api/bills/"+id, "manager", s.billBody(2000))
	assert.Equal(t, http.StatusConflict, w.Code, "sent bills cannot be edited")

	w, env := s.do(t, http.MethodPatch, "/api/bills/"+id+"/payment", "manager", gin.H{"paid_amount": 400})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var bill models.Bill
	require.NoError(t, json.Unmarshal(env.Data, &bill))
	assert.Equal(t, models.PaymentPartiallyPaid, bill.PaymentStatus)

	w, env = s.do(t, http.MethodPatch, "/api/bills/"+id+"/payment", "manager", gin.H{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, env.Errors, "paid_amount")

	w, env = s.do(t, http.MethodGet, "/api/bills/"+id, "manager", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		RemainingAmount float64 `json:"remaining_amount"`
		CanEdit         bool    `json:"can_edit"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, 600.0, detail.RemainingAmount)
	assert.False(t, detail.CanEdit)
}

func TestGetBill_NotFoundAndBadID(t *testing.T) {
	s := setupTestRouter(t)

	w, _ := s.do(t, http.MethodGet, "/api/bills/"+uuid.NewString(), "manager", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/bills/42", "manager", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApproveLevel2_BeforeLevel1(t *testing.T) {
	s := setupTestRouter(t)

	w, env := s.do(t, http.MethodPatch, "/api/domains/"+s.domain.ID.String()+"/approve-level2", "approver", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Level 1 approval required first.", env.Message)
}

func TestCreateHosting_ControlPanelURL(t *testing.T) {
	s := setupTestRouter(t)
	body := gin.H{
		"domain_id":         s.domain.ID,
		"provider":          "Hetzner",
		"package_name":      "Business",
		"start_date":        "2026-01-01",
		"renewal_date":      "2027-01-01",
		"status":            "active",
		"price":             120,
		"payment_status":    "unpaid",
		"control_panel_url": "cpanel.acme.test",
		"username":          "acme",
		"password":          "s3cret",
	}

	w, env := s.do(t, http.MethodPost, "/api/hosting-services", "manager", body)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	assert.Equal(t, "The control panel url format is invalid.", env.Errors["control_panel_url"])

	body["control_panel_url"] = ""
	w, _ = s.do(t, http.MethodPost, "/api/hosting-services", "manager", body)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestBillingReportExport(t *testing.T) {
	s := setupTestRouter(t)
	s.createBill(t)

	w, env := s.do(t, http.MethodGet, "/api/reports/billing", "manager", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var report analytics.BillingReport
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, int64(1), report.Overview.TotalBills)

	w, _ = s.do(t, http.MethodGet, "/api/reports/billing/export", "approver", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=billing-report-2026-03-10.xlsx", w.Header().Get("Content-Disposition"))
	assert.NotZero(t, w.Body.Len())
}

func TestCreateSalary_PaymentState(t *testing.T) {
	s := setupTestRouter(t)
	e := &models.Employee{Name: "Rahim", JoinDate: today}
	require.NoError(t, s.db.Create(e).Error)

	body := gin.H{
		"employee_id":   e.ID,
		"salary_amount": 100,
		"month_year":    "2026-02",
		"salary_source": "CodeGaon",
		"is_due":        true,
	}
	w, env := s.do(t, http.MethodPost, "/api/payroll", "manager", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var entry models.PaySalary
	require.NoError(t, json.Unmarshal(env.Data, &entry))
	assert.Equal(t, models.SalaryDue, entry.PaymentState)

	body["is_paid"] = true
	w, env = s.do(t, http.MethodPost, "/api/payroll", "manager", body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, env.Errors, "payment_state")

	body = gin.H{
		"employee_id":   e.ID,
		"salary_amount": 100,
		"month_year":    "Feb 2026",
		"salary_source": "CodeGaon",
		"payment_state": "paid",
	}
	w, env = s.do(t, http.MethodPost, "/api/payroll", "manager", body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, env.Errors, "month_year")
}

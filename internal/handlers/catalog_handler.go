package handler

import (
	"net/http"

	"agency-billing-backend/internal/middleware"
	"agency-billing-backend/internal/services/catalog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CatalogHandler struct {
	service *catalog.CatalogService
	log     *logrus.Logger
}

func NewCatalogHandler(s *catalog.CatalogService, log *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{service: s, log: log}
}

// ---- clients ----

type clientPayload struct {
	Name    string `json:"name" binding:"required,max=255"`
	Email   string `json:"email" binding:"required,email,max=255"`
	Phone   string `json:"phone" binding:"max=50"`
	Company string `json:"company" binding:"max=255"`
	Address string `json:"address"`
	Status  string `json:"status" binding:"required,oneof=active inactive"`
}

func (p clientPayload) input() catalog.ClientInput {
	return catalog.ClientInput{
		Name:    p.Name,
		Email:   p.Email,
		Phone:   p.Phone,
		Company: p.Company,
		Address: p.Address,
		Status:  p.Status,
	}
}

func (h *CatalogHandler) ListClients(c *gin.Context) {
	clients, err := h.service.ListClients(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "clients retrieved", clients)
}

func (h *CatalogHandler) GetClient(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	client, err := h.service.GetClient(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "client retrieved", client)
}

func (h *CatalogHandler) CreateClient(c *gin.Context) {
	var payload clientPayload
	if !bind(c, h.log, &payload) {
		return
	}
	client, err := h.service.CreateClient(c.Request.Context(), payload.input())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusCreated, "Client created successfully.", client)
}

func (h *CatalogHandler) UpdateClient(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var payload clientPayload
	if !bind(c, h.log, &payload) {
		return
	}
	client, err := h.service.UpdateClient(c.Request.Context(), id, payload.input())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Client updated successfully.", client)
}

func (h *CatalogHandler) DeleteClient(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteClient(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Client deleted successfully.", nil)
}

// ---- domains ----

type domainPayload struct {
	ClientID         uuid.UUID `json:"client_id" binding:"required"`
	Name             string    `json:"name" binding:"required,max=255"`
	Registrar        string    `json:"registrar" binding:"required,max=255"`
	RegistrationDate string    `json:"registration_date" binding:"required"`
	ExpiryDate       string    `json:"expiry_date" binding:"required"`
	AutoRenew        bool      `json:"auto_renew"`
	Status           string    `json:"status" binding:"required,oneof=active inactive"`
	Price            float64   `json:"price" binding:"gte=0"`
	PaymentStatus    string    `json:"payment_status" binding:"required,oneof=paid unpaid partial"`
}

func (p domainPayload) input() (catalog.DomainInput, error) {
	var d dateFields
	in := catalog.DomainInput{
		ClientID:         p.ClientID,
		Name:             p.Name,
		Registrar:        p.Registrar,
		RegistrationDate: d.parse("registration_date", p.RegistrationDate),
		ExpiryDate:       d.parse("expiry_date", p.ExpiryDate),
		AutoRenew:        p.AutoRenew,
		Status:           p.Status,
		Price:            p.Price,
		PaymentStatus:    p.PaymentStatus,
	}
	return in, d.err()
}

func (h *CatalogHandler) ListDomains(c *gin.Context) {
	clientID, ok := optionalUUID(c, "client_id")
	if !ok {
		return
	}
	domains, err := h.service.ListDomains(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "domains retrieved", domains)
}

func (h *CatalogHandler) GetDomain(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	domain, err := h.service.GetDomain(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "domain retrieved", domain)
}

func (h *CatalogHandler) CreateDomain(c *gin.Context) {
	var payload domainPayload
	if !bind(c, h.log, &payload) {
		return
	}
	in, err := payload.input()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	domain, err := h.service.CreateDomain(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusCreated, "Domain created successfully.", domain)
}

func (h *CatalogHandler) UpdateDomain(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var payload domainPayload
	if !bind(c, h.log, &payload) {
		return
	}
	in, err := payload.input()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	domain, err := h.service.UpdateDomain(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Domain updated successfully.", domain)
}

func (h *CatalogHandler) DeleteDomain(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteDomain(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Domain deleted successfully.", nil)
}

// ---- hosting ----

type hostingPayload struct {
	DomainID        uuid.UUID `json:"domain_id" binding:"required"`
	Provider        string    `json:"provider" binding:"required,max=255"`
	PackageName     string    `json:"package_name" binding:"required,max=255"`
	StartDate       string    `json:"start_date" binding:"required"`
	RenewalDate     string    `json:"renewal_date" binding:"required"`
	Status          string    `json:"status" binding:"required,oneof=active inactive"`
	Price           float64   `json:"price" binding:"gte=0"`
	PaymentStatus   string    `json:"payment_status" binding:"required,oneof=paid unpaid partially_paid"`
	ServerIP        *string   `json:"server_ip" binding:"omitempty,max=255"`
	ControlPanelURL string    `json:"control_panel_url" binding:"omitempty,url,max=255"`
	Username        string    `json:"username" binding:"required,max=255"`
	Password        string    `json:"password" binding:"required,max=255"`
}

func (p hostingPayload) input() (catalog.HostingInput, error) {
	var d dateFields
	in := catalog.HostingInput{
		DomainID:        p.DomainID,
		Provider:        p.Provider,
		PackageName:     p.PackageName,
		StartDate:       d.parse("start_date", p.StartDate),
		RenewalDate:     d.parse("renewal_date", p.RenewalDate),
		Status:          p.Status,
		Price:           p.Price,
		PaymentStatus:   p.PaymentStatus,
		ServerIP:        p.ServerIP,
		Username:        p.Username,
		Password:        p.Password,
	}
	if p.ControlPanelURL != "" {
		in.ControlPanelURL = &p.ControlPanelURL
	}
	return in, d.err()
}

func (h *CatalogHandler) ListHosting(c *gin.Context) {
	clientID, ok := optionalUUID(c, "client_id")
	if !ok {
		return
	}
	list, err := h.service.ListHosting(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "hosting services retrieved", list)
}

func (h *CatalogHandler) GetHosting(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	hosting, err := h.service.GetHosting(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "hosting service retrieved", hosting)
}

func (h *CatalogHandler) CreateHosting(c *gin.Context) {
	var payload hostingPayload
	if !bind(c, h.log, &payload) {
		return
	}
	in, err := payload.input()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	hosting, err := h.service.CreateHosting(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusCreated, "Hosting service created successfully.", hosting.WithoutCredentials())
}

func (h *CatalogHandler) UpdateHosting(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var payload hostingPayload
	if !bind(c, h.log, &payload) {
		return
	}
	in, err := payload.input()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	hosting, err := h.service.UpdateHosting(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Hosting service updated successfully.", hosting.WithoutCredentials())
}

func (h *CatalogHandler) DeleteHosting(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteHosting(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Hosting service deleted successfully.", nil)
}

// ---- ssl certificates ----

type sslPayload struct {
	DomainID      uuid.UUID `json:"domain_id" binding:"required"`
	Provider      string    `json:"provider" binding:"required,max=255"`
	Type          string    `json:"type" binding:"required,max=255"`
	IssueDate     *string   `json:"issue_date"`
	ExpiryDate    string    `json:"expiry_date" binding:"required"`
	Status        string    `json:"status" binding:"required,oneof=active inactive"`
	Price         float64   `json:"price" binding:"gte=0"`
	PaymentStatus string    `json:"payment_status" binding:"omitempty,oneof=paid unpaid partially_paid"`
	AutoRenew     bool      `json:"auto_renew"`
}

func (p sslPayload) input() (catalog.SslInput, error) {
	var d dateFields
	in := catalog.SslInput{
		DomainID:      p.DomainID,
		Provider:      p.Provider,
		Type:          p.Type,
		ExpiryDate:    d.parse("expiry_date", p.ExpiryDate),
		Status:        p.Status,
		Price:         p.Price,
		PaymentStatus: p.PaymentStatus,
		AutoRenew:     p.AutoRenew,
	}
	if issued := d.optional("issue_date", p.IssueDate); issued != nil {
		in.IssueDate = *issued
	}
	return in, d.err()
}

func (h *CatalogHandler) ListSsl(c *gin.Context) {
	clientID, ok := optionalUUID(c, "client_id")
	if !ok {
		return
	}
	certs, err := h.service.ListSsl(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "ssl certificates retrieved", certs)
}

func (h *CatalogHandler) GetSsl(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	cert, err := h.service.GetSsl(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "ssl certificate retrieved", cert)
}

func (h *CatalogHandler) CreateSsl(c *gin.Context) {
	var payload sslPayload
	if !bind(c, h.log, &payload) {
		return
	}
	in, err := payload.input()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	cert, err := h.service.CreateSsl(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusCreated, "SSL certificate created successfully.", cert)
}

func (h *CatalogHandler) UpdateSsl(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var payload sslPayload
	if !bind(c, h.log, &payload) {
		return
	}
	in, err := payload.input()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	cert, err := h.service.UpdateSsl(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "SSL certificate updated successfully.", cert)
}

func (h *CatalogHandler) DeleteSsl(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteSsl(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "SSL certificate deleted successfully.", nil)
}

// ---- payment approvals ----

// ApproveLevel1 returns a handler granting first-level payment approval on
// the given kind of service record.
func (h *CatalogHandler) ApproveLevel1(kind catalog.ServiceKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		if err := h.service.ApproveLevel1(c.Request.Context(), middleware.CurrentUser(c), kind, id); err != nil {
			respondError(c, h.log, err)
			return
		}
		respondSuccess(c, http.StatusOK, "Level 1 payment approval granted.", nil)
	}
}

func (h *CatalogHandler) ApproveLevel2(kind catalog.ServiceKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		if err := h.service.ApproveLevel2(c.Request.Context(), middleware.CurrentUser(c), kind, id); err != nil {
			respondError(c, h.log, err)
			return
		}
		respondSuccess(c, http.StatusOK, "Level 2 payment approval granted.", nil)
	}
}

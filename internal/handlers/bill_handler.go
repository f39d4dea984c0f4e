package handler

import (
	"net/http"

	"agency-billing-backend/internal/middleware"
	"agency-billing-backend/internal/repository"
	"agency-billing-backend/internal/services/billing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type BillHandler struct {
	service *billing.BillingService
	log     *logrus.Logger
}

func NewBillHandler(s *billing.BillingService, log *logrus.Logger) *BillHandler {
	return &BillHandler{service: s, log: log}
}

type billPayload struct {
	ClientID      uuid.UUID  `json:"client_id" binding:"required"`
	ServiceType   string     `json:"service_type" binding:"required,oneof=domain hosting ssl_certificate eims_fee"`
	ServiceID     *uuid.UUID `json:"service_id"`
	Description   string     `json:"description" binding:"required,max=255"`
	Amount        float64    `json:"amount" binding:"gte=0"`
	DueDate       string     `json:"due_date" binding:"required"`
	Notes         *string    `json:"notes" binding:"omitempty,max=1000"`
	TotalStudents *int       `json:"total_students" binding:"omitempty,min=1"`
	BillingMonths []string   `json:"billing_months" binding:"omitempty,dive,yearmonth"`
}

func (p billPayload) input() (billing.BillInput, error) {
	var d dateFields
	due := d.parse("due_date", p.DueDate)
	if err := d.err(); err != nil {
		return billing.BillInput{}, err
	}
	return billing.BillInput{
		ClientID:      p.ClientID,
		ServiceType:   p.ServiceType,
		ServiceID:     p.ServiceID,
		Description:   p.Description,
		Amount:        p.Amount,
		DueDate:       due,
		Notes:         p.Notes,
		TotalStudents: p.TotalStudents,
		BillingMonths: p.BillingMonths,
	}, nil
}

func (h *BillHandler) List(c *gin.Context) {
	clientID, ok := optionalUUID(c, "client_id")
	if !ok {
		return
	}
	page, err := h.service.List(c.Request.Context(), middleware.CurrentUser(c), repository.BillFilter{
		PaymentStatus: c.Query("payment_status"),
		Status:        c.Query("status"),
		ServiceType:   c.Query("service_type"),
		ClientID:      clientID,
		Search:        c.Query("search"),
		Page:          queryInt(c, "page", 1),
		PageSize:      queryInt(c, "per_page", 15),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "bills retrieved", page)
}

func (h *BillHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	bill, err := h.service.Get(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "bill retrieved", bill)
}

func (h *BillHandler) Create(c *gin.Context) {
	var payload billPayload
	if !bind(c, h.log, &payload) {
		return
	}
	in, err := payload.input()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	bill, err := h.service.Create(c.Request.Context(), middleware.CurrentUser(c), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusCreated, "Bill created successfully.", bill)
}

func (h *BillHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var payload billPayload
	if !bind(c, h.log, &payload) {
		return
	}
	in, err := payload.input()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	bill, err := h.service.Update(c.Request.Context(), middleware.CurrentUser(c), id, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Bill updated successfully.", bill)
}

func (h *BillHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Bill deleted successfully.", nil)
}

func (h *BillHandler) Approve(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	bill, err := h.service.Approve(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Bill approved successfully.", bill)
}

func (h *BillHandler) Cancel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	bill, err := h.service.Cancel(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Bill cancelled successfully.", bill)
}

func (h *BillHandler) RecordPayment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var payload struct {
		PaidAmount *float64 `json:"paid_amount" binding:"required"`
		Notes      *string  `json:"notes" binding:"omitempty,max=1000"`
	}
	if !bind(c, h.log, &payload) {
		return
	}
	bill, err := h.service.RecordPayment(c.Request.Context(), middleware.CurrentUser(c), id, *payload.PaidAmount, payload.Notes)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Payment status updated successfully.", bill)
}

func (h *BillHandler) AuditTrail(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	logs, err := h.service.AuditTrail(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "audit trail retrieved", logs)
}

package handler

import (
	"fmt"
	"net/http"

	"agency-billing-backend/internal/export"
	"agency-billing-backend/internal/middleware"
	"agency-billing-backend/internal/services"
	"agency-billing-backend/internal/services/analytics"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ReportHandler struct {
	service *analytics.AnalyticsService
	log     *logrus.Logger
}

func NewReportHandler(s *analytics.AnalyticsService, log *logrus.Logger) *ReportHandler {
	return &ReportHandler{service: s, log: log}
}

func (h *ReportHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "dashboard", dashboard)
}

// BillingReport is limited to users who may manage bills.
func (h *ReportHandler) BillingReport(c *gin.Context) {
	if !middleware.CurrentUser(c).CanManageBills() {
		respondError(c, h.log, services.Forbidden("Unauthorized to access bills."))
		return
	}
	report, err := h.service.BillingReport(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "billing report", report)
}

func (h *ReportHandler) ExportBillingReport(c *gin.Context) {
	if !middleware.CurrentUser(c).CanManageBills() {
		respondError(c, h.log, services.Forbidden("Unauthorized to access bills."))
		return
	}
	report, err := h.service.BillingReport(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	data, err := export.BillingReport(report)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	filename := fmt.Sprintf("billing-report-%s.xlsx", report.GeneratedAt.Format("2006-01-02"))
	sendXLSX(c, filename, data)
}

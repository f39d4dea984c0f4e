package handler

import (
	"net/http"

	"agency-billing-backend/internal/export"
	"agency-billing-backend/internal/models"
	"agency-billing-backend/internal/repository"
	"agency-billing-backend/internal/services"
	"agency-billing-backend/internal/services/payroll"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type PayrollHandler struct {
	service *payroll.PayrollService
	log     *logrus.Logger
}

func NewPayrollHandler(s *payroll.PayrollService, log *logrus.Logger) *PayrollHandler {
	return &PayrollHandler{service: s, log: log}
}

// ---- employees ----

type employeePayload struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Email       string  `json:"email" binding:"omitempty,email,max=255"`
	Designation string  `json:"designation" binding:"max=255"`
	Salary      float64 `json:"salary" binding:"gte=0"`
	JoinDate    string  `json:"join_date" binding:"required"`
	EndDate     *string `json:"end_date"`
}

func (p employeePayload) input() (payroll.EmployeeInput, error) {
	var d dateFields
	in := payroll.EmployeeInput{
		Name:        p.Name,
		Email:       p.Email,
		Designation: p.Designation,
		Salary:      p.Salary,
		JoinDate:    d.parse("join_date", p.JoinDate),
		EndDate:     d.optional("end_date", p.EndDate),
	}
	return in, d.err()
}

func (h *PayrollHandler) ListEmployees(c *gin.Context) {
	employees, err := h.service.ListEmployees(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "employees retrieved", employees)
}

func (h *PayrollHandler) GetEmployee(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	employee, err := h.service.GetEmployee(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "employee retrieved", employee)
}

func (h *PayrollHandler) CreateEmployee(c *gin.Context) {
	var payload employeePayload
	if !bind(c, h.log, &payload) {
		return
	}
	in, err := payload.input()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	employee, err := h.service.CreateEmployee(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusCreated, "Employee created successfully.", employee)
}

func (h *PayrollHandler) UpdateEmployee(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var payload employeePayload
	if !bind(c, h.log, &payload) {
		return
	}
	in, err := payload.input()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	employee, err := h.service.UpdateEmployee(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Employee updated successfully.", employee)
}

func (h *PayrollHandler) DeleteEmployee(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteEmployee(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Employee deleted successfully.", nil)
}

// ---- salary payments ----

// salaryPayload accepts either payment_state or the legacy one-hot flags.
type salaryPayload struct {
	EmployeeID   uuid.UUID `json:"employee_id" binding:"required"`
	SalaryAmount float64   `json:"salary_amount" binding:"gte=0"`
	MonthYear    string    `json:"month_year" binding:"required,yearmonth"`
	SalarySource string    `json:"salary_source" binding:"required,oneof=CodeGaon MSBJBD SinhdBD"`
	PaymentState string    `json:"payment_state" binding:"omitempty,oneof=paid partial due advance"`
	IsPaid       bool      `json:"is_paid"`
	IsPartial    bool      `json:"is_partial"`
	IsDue        bool      `json:"is_due"`
	IsAdvance    bool      `json:"is_advance"`
	Notes        *string   `json:"notes"`
}

func (p salaryPayload) input() (payroll.PaySalaryInput, error) {
	state := models.SalaryState(p.PaymentState)
	flagged := p.IsPaid || p.IsPartial || p.IsDue || p.IsAdvance
	switch {
	case state != "" && flagged:
		return payroll.PaySalaryInput{}, services.NewValidationError("payment_state", "Send either payment_state or the payment flags, not both.")
	case state == "":
		var err error
		if state, err = payroll.StateFromFlags(p.IsPaid, p.IsPartial, p.IsDue, p.IsAdvance); err != nil {
			return payroll.PaySalaryInput{}, services.NewValidationError("payment_state", "Exactly one payment state must be selected.")
		}
	}
	return payroll.PaySalaryInput{
		EmployeeID:   p.EmployeeID,
		SalaryAmount: p.SalaryAmount,
		MonthYear:    p.MonthYear,
		SalarySource: p.SalarySource,
		PaymentState: state,
		Notes:        p.Notes,
	}, nil
}

func (h *PayrollHandler) salaryFilter(c *gin.Context) (repository.PaySalaryFilter, bool) {
	employeeID, ok := optionalUUID(c, "employee_id")
	if !ok {
		return repository.PaySalaryFilter{}, false
	}
	return repository.PaySalaryFilter{
		MonthYear:    c.Query("month_year"),
		EmployeeID:   employeeID,
		SalarySource: c.Query("salary_source"),
		PaymentState: models.SalaryState(c.Query("payment_state")),
	}, true
}

func (h *PayrollHandler) ListSalaries(c *gin.Context) {
	filter, ok := h.salaryFilter(c)
	if !ok {
		return
	}
	entries, err := h.service.ListSalaries(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "salary payments retrieved", entries)
}

func (h *PayrollHandler) GetSalary(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	entry, err := h.service.GetSalary(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "salary payment retrieved", entry)
}

func (h *PayrollHandler) CreateSalary(c *gin.Context) {
	var payload salaryPayload
	if !bind(c, h.log, &payload) {
		return
	}
	in, err := payload.input()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	entry, err := h.service.CreateSalary(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusCreated, "Salary payment recorded successfully.", entry)
}

func (h *PayrollHandler) UpdateSalary(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var payload salaryPayload
	if !bind(c, h.log, &payload) {
		return
	}
	in, err := payload.input()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	entry, err := h.service.UpdateSalary(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Salary payment updated successfully.", entry)
}

func (h *PayrollHandler) DeleteSalary(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteSalary(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Salary payment deleted successfully.", nil)
}

func (h *PayrollHandler) Report(c *gin.Context) {
	filter, ok := h.salaryFilter(c)
	if !ok {
		return
	}
	report, err := h.service.Report(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "payroll report", report)
}

func (h *PayrollHandler) ExportReport(c *gin.Context) {
	filter, ok := h.salaryFilter(c)
	if !ok {
		return
	}
	report, err := h.service.Report(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	data, err := export.PayrollReport(report)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	sendXLSX(c, "payroll-report.xlsx", data)
}

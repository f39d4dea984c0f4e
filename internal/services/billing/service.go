package billing

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"agency-billing-backend/internal/models"
	"agency-billing-backend/internal/monitoring"
	"agency-billing-backend/internal/repository"
	"agency-billing-backend/internal/services"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type BillingService struct {
	bills   *repository.BillRepository
	clients *repository.ClientRepository
	domains *repository.DomainRepository
	hosting *repository.HostingServiceRepository
	ssl     *repository.SslCertificateRepository
	log     *logrus.Logger
	now     services.Clock
}

func NewBillingService(
	bills *repository.BillRepository,
	clients *repository.ClientRepository,
	domains *repository.DomainRepository,
	hosting *repository.HostingServiceRepository,
	ssl *repository.SslCertificateRepository,
	log *logrus.Logger,
	clock services.Clock,
) *BillingService {
	if clock == nil {
		clock = services.SystemClock
	}
	return &BillingService{
		bills:   bills,
		clients: clients,
		domains: domains,
		hosting: hosting,
		ssl:     ssl,
		log:     log,
		now:     clock,
	}
}

// BillInput is the editable part of a bill.
type BillInput struct {
	ClientID      uuid.UUID
	ServiceType   string
	ServiceID     *uuid.UUID
	Description   string
	Amount        float64
	DueDate       time.Time
	Notes         *string
	TotalStudents *int
	BillingMonths []string
}

// BillDetail is a bill with its derived fields and resolved service.
type BillDetail struct {
	models.Bill
	RemainingAmount float64 `json:"remaining_amount"`
	IsOverdue       bool    `json:"is_overdue"`
	Service         any     `json:"service"`
	CanEdit         bool    `json:"can_edit"`
	CanApprove      bool    `json:"can_approve"`
}

type BillPage struct {
	Bills      []BillDetail `json:"bills"`
	Total      int64        `json:"total"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	CanApprove bool         `json:"can_approve"`
}

// ownedService is any service record a bill may reference.
type ownedService interface {
	ServiceClientID() uuid.UUID
}

var errServiceMismatch = &services.ReferentialIntegrityError{
	Message: "The selected service does not exist or does not belong to the specified client.",
}

func requireManager(actor *models.User, message string) error {
	if actor == nil || !actor.CanManageBills() {
		return services.Forbidden(message)
	}
	return nil
}

func requireApprover(actor *models.User, message string) error {
	if actor == nil || !actor.CanApproveBills() {
		return services.Forbidden(message)
	}
	return nil
}

// List returns a filtered page of bills.
func (s *BillingService) List(ctx context.Context, actor *models.User, filter repository.BillFilter) (*BillPage, error) {
	if err := requireManager(actor, "Unauthorized to access bills."); err != nil {
		return nil, err
	}
	bills, total, err := s.bills.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	now := s.now()
	page := &BillPage{
		Bills:      make([]BillDetail, 0, len(bills)),
		Total:      total,
		Page:       max(filter.Page, 1),
		PageSize:   filter.PageSize,
		CanApprove: actor.CanApproveBills(),
	}
	if page.PageSize <= 0 {
		page.PageSize = 15
	}
	for i := range bills {
		page.Bills = append(page.Bills, s.detail(&bills[i], actor, now, nil))
	}
	return page, nil
}

// Get loads one bill with its referenced service.
func (s *BillingService) Get(ctx context.Context, actor *models.User, id uuid.UUID) (*BillDetail, error) {
	if err := requireManager(actor, "Unauthorized to view bills."); err != nil {
		return nil, err
	}
	bill, err := s.load(ctx, id, "Client", "Creator", "Approver")
	if err != nil {
		return nil, err
	}

	var service any
	if ref, err := RefOf(bill); err == nil {
		resolved, err := s.resolve(ctx, ref)
		switch {
		case err == nil && resolved != nil:
			service = resolved
		case err != nil && !repository.IsNotFound(err):
			return nil, err
		}
	}

	detail := s.detail(bill, actor, s.now(), service)
	return &detail, nil
}

// Create validates the input, numbers the bill and stores it as a draft.
func (s *BillingService) Create(ctx context.Context, actor *models.User, in BillInput) (*models.Bill, error) {
	if err := requireManager(actor, "Unauthorized to create bills."); err != nil {
		return nil, err
	}
	now := s.now()
	ref, err := s.validate(ctx, in, now, 0)
	if err != nil {
		return nil, err
	}

	bill := &models.Bill{
		CreatedBy:     actor.ID,
		Status:        models.BillStatusDraft,
		PaymentStatus: models.PaymentUnpaid,
		CreatedAt:     now,
	}
	applyInput(bill, in, ref)

	if err := s.bills.CreateNumbered(ctx, bill, now); err != nil {
		return nil, err
	}

	monitoring.BillsCreated.WithLabelValues(bill.ServiceType).Inc()
	s.audit(ctx, bill, models.BillActionCreated, actor, map[string]any{
		"amount":       bill.Amount,
		"service_type": bill.ServiceType,
	})
	s.log.WithFields(logrus.Fields{
		"bill_id":     bill.ID,
		"bill_number": bill.BillNumber,
		"client_id":   bill.ClientID,
		"created_by":  actor.ID,
	}).Info("bill created")
	return bill, nil
}

// Update edits a draft bill.
func (s *BillingService) Update(ctx context.Context, actor *models.User, id uuid.UUID, in BillInput) (*models.Bill, error) {
	if err := requireManager(actor, "Unauthorized to edit this bill."); err != nil {
		return nil, err
	}
	bill, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !bill.IsDraft() {
		return nil, services.Conflict("Only draft bills can be edited.")
	}

	now := s.now()
	ref, err := s.validate(ctx, in, now, bill.PaidAmount)
	if err != nil {
		return nil, err
	}
	applyInput(bill, in, ref)
	if DerivePaymentStatus(bill.Amount, bill.PaidAmount) != bill.PaymentStatus {
		UpdatePaymentStatus(bill, now)
	}
	bill.Client, bill.Creator, bill.Approver = nil, nil, nil

	if err := s.bills.Save(ctx, bill); err != nil {
		return nil, err
	}
	s.audit(ctx, bill, models.BillActionUpdated, actor, map[string]any{"amount": bill.Amount})
	return bill, nil
}

// Delete removes a draft bill.
func (s *BillingService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	if err := requireManager(actor, "Unauthorized to delete this bill."); err != nil {
		return err
	}
	bill, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !bill.IsDraft() {
		return services.Conflict("Only draft bills can be deleted.")
	}
	if err := s.bills.Delete(ctx, bill.ID); err != nil {
		if repository.IsNotFound(err) {
			return services.NotFound("bill")
		}
		return err
	}
	monitoring.BillTransitions.WithLabelValues(models.BillActionDeleted).Inc()
	s.audit(ctx, bill, models.BillActionDeleted, actor, nil)
	return nil
}

// Approve moves a draft bill to sent.
func (s *BillingService) Approve(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Bill, error) {
	if err := requireApprover(actor, "Unauthorized to approve bills."); err != nil {
		return nil, err
	}
	bill, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !bill.IsDraft() {
		return nil, services.Conflict("Only draft bills can be approved.")
	}

	now := s.now()
	approver := actor.ID
	bill.Status = models.BillStatusSent
	bill.ApprovedBy = &approver
	bill.ApprovedAt = &now
	if err := s.bills.Save(ctx, bill); err != nil {
		return nil, err
	}

	monitoring.BillTransitions.WithLabelValues(models.BillActionApproved).Inc()
	s.audit(ctx, bill, models.BillActionApproved, actor, nil)
	s.log.WithFields(logrus.Fields{
		"bill_number": bill.BillNumber,
		"approved_by": actor.ID,
	}).Info("bill approved")
	return bill, nil
}

// Cancel withdraws a bill that has already been sent.
func (s *BillingService) Cancel(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Bill, error) {
	if err := requireApprover(actor, "Unauthorized to cancel bills."); err != nil {
		return nil, err
	}
	bill, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill.Status != models.BillStatusSent && bill.Status != models.BillStatusOverdue {
		return nil, services.Conflict("Only sent bills can be cancelled.")
	}
	bill.Status = models.BillStatusCancelled
	if err := s.bills.Save(ctx, bill); err != nil {
		return nil, err
	}
	monitoring.BillTransitions.WithLabelValues(models.BillActionCancelled).Inc()
	s.audit(ctx, bill, models.BillActionCancelled, actor, nil)
	return bill, nil
}

// RecordPayment sets the paid amount and re-derives the payment status.
func (s *BillingService) RecordPayment(ctx context.Context, actor *models.User, id uuid.UUID, paidAmount float64, notes *string) (*models.Bill, error) {
	if err := requireManager(actor, "Unauthorized to update payment status."); err != nil {
		return nil, err
	}
	bill, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill.Status == models.BillStatusCancelled {
		return nil, services.Conflict("Payments cannot be recorded on a cancelled bill.")
	}

	var v services.Validator
	v.Check(paidAmount >= 0, "paid_amount", "The paid amount must be at least 0.")
	v.Check(paidAmount <= bill.Amount, "paid_amount", "The paid amount may not be greater than the bill amount.")
	if notes != nil {
		v.Check(len(*notes) <= 1000, "notes", "The notes may not be greater than 1000 characters.")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	previous := bill.PaidAmount
	bill.PaidAmount = paidAmount
	if notes != nil {
		bill.Notes = notes
	}
	UpdatePaymentStatus(bill, s.now())

	if err := s.bills.Save(ctx, bill); err != nil {
		return nil, err
	}

	monitoring.BillPayments.WithLabelValues(bill.PaymentStatus).Inc()
	s.audit(ctx, bill, models.BillActionPayment, actor, map[string]any{
		"previous_paid_amount": previous,
		"paid_amount":          bill.PaidAmount,
		"payment_status":       bill.PaymentStatus,
	})
	return bill, nil
}

// AuditTrail lists the recorded actions for a bill, oldest first.
func (s *BillingService) AuditTrail(ctx context.Context, actor *models.User, id uuid.UUID) ([]models.BillAuditLog, error) {
	if err := requireManager(actor, "Unauthorized to view bills."); err != nil {
		return nil, err
	}
	return s.bills.AuditTrail(ctx, id)
}

func (s *BillingService) load(ctx context.Context, id uuid.UUID, preloads ...string) (*models.Bill, error) {
	bill, err := s.bills.GetByID(ctx, id, preloads...)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, services.NotFound("bill")
		}
		return nil, err
	}
	return bill, nil
}

// validate checks the input fields and that the referenced service belongs
// to the client. paid is the amount already paid on an existing bill.
func (s *BillingService) validate(ctx context.Context, in BillInput, now time.Time, paid float64) (ServiceRef, error) {
	var v services.Validator

	v.Check(in.ClientID != uuid.Nil, "client_id", "The client field is required.")
	v.Check(isServiceType(in.ServiceType), "service_type", "The selected service type is invalid.")
	v.Check(strings.TrimSpace(in.Description) != "", "description", "The description field is required.")
	v.Check(len(in.Description) <= 255, "description", "The description may not be greater than 255 characters.")
	v.Check(in.Amount >= 0, "amount", "The amount must be at least 0.")
	v.Check(in.Amount >= paid, "amount", "The amount may not be less than the amount already paid.")
	v.Check(!in.DueDate.IsZero(), "due_date", "The due date field is required.")
	v.Check(in.DueDate.IsZero() || !in.DueDate.Before(services.StartOfDay(now)), "due_date", "The due date must be a date after or equal to today.")
	if in.Notes != nil {
		v.Check(len(*in.Notes) <= 1000, "notes", "The notes may not be greater than 1000 characters.")
	}

	if in.ServiceType == models.ServiceTypeEimsFee {
		v.Check(in.TotalStudents != nil && *in.TotalStudents >= 1, "total_students", "The total students must be at least 1.")
		v.Check(len(in.BillingMonths) > 0, "billing_months", "At least one billing month is required.")
		for _, m := range in.BillingMonths {
			if !ValidBillingMonth(m) {
				v.Add("billing_months", "Billing months must use the YYYY-MM format.")
				break
			}
		}
	} else if isServiceType(in.ServiceType) {
		v.Check(in.ServiceID != nil && *in.ServiceID != uuid.Nil, "service_id", "The service field is required.")
	}

	if in.ClientID != uuid.Nil {
		exists, err := s.clients.Exists(ctx, in.ClientID)
		if err != nil {
			return nil, err
		}
		v.Check(exists, "client_id", "The selected client is invalid.")
	}

	if err := v.Err(); err != nil {
		return nil, err
	}

	ref, err := NewServiceRef(in.ServiceType, in.ServiceID)
	if err != nil {
		return nil, services.NewValidationError("service_id", err.Error())
	}
	if err := s.checkOwnership(ctx, ref, in.ClientID); err != nil {
		return nil, err
	}
	return ref, nil
}

// checkOwnership confirms the referenced service exists and belongs to the
// client. EIMS fees reference nothing.
func (s *BillingService) checkOwnership(ctx context.Context, ref ServiceRef, clientID uuid.UUID) error {
	if _, ok := ref.(EimsFee); ok {
		return nil
	}
	svc, err := s.resolve(ctx, ref)
	if err != nil {
		if repository.IsNotFound(err) {
			return errServiceMismatch
		}
		return err
	}
	if svc.ServiceClientID() != clientID {
		return errServiceMismatch
	}
	return nil
}

// resolve loads the service record a reference points at. EimsFee resolves
// to nil.
func (s *BillingService) resolve(ctx context.Context, ref ServiceRef) (ownedService, error) {
	switch r := ref.(type) {
	case DomainRef:
		return s.domains.GetByID(ctx, r.ID)
	case HostingRef:
		h, err := s.hosting.GetByID(ctx, r.ID, "Domain")
		if err != nil {
			return nil, err
		}
		clean := h.WithoutCredentials()
		return &clean, nil
	case SslRef:
		return s.ssl.GetByID(ctx, r.ID, "Domain")
	case EimsFee:
		return nil, nil
	}
	return nil, errors.New("unhandled service reference")
}

func (s *BillingService) detail(bill *models.Bill, actor *models.User, now time.Time, service any) BillDetail {
	return BillDetail{
		Bill:            *bill,
		RemainingAmount: bill.RemainingAmount(),
		IsOverdue:       bill.IsOverdue(now),
		Service:         service,
		CanEdit:         bill.IsDraft(),
		CanApprove:      actor.CanApproveBills() && bill.IsDraft(),
	}
}

func (s *BillingService) audit(ctx context.Context, bill *models.Bill, action string, actor *models.User, details map[string]any) {
	entry := &models.BillAuditLog{
		BillID:      bill.ID,
		BillNumber:  bill.BillNumber,
		Action:      action,
		PerformedBy: actor.ID,
	}
	if details != nil {
		raw, _ := json.Marshal(details)
		entry.Details = raw
	}
	if err := s.bills.AddAudit(ctx, entry); err != nil {
		s.log.WithError(err).WithField("bill_id", bill.ID).Warn("failed to write bill audit entry")
	}
}

func applyInput(bill *models.Bill, in BillInput, ref ServiceRef) {
	bill.ClientID = in.ClientID
	bill.ServiceType = ref.ServiceType()
	bill.ServiceID = ref.ServiceID()
	bill.Description = strings.TrimSpace(in.Description)
	bill.Amount = in.Amount
	bill.DueDate = in.DueDate
	bill.Notes = in.Notes
	if _, ok := ref.(EimsFee); ok {
		bill.TotalStudents = in.TotalStudents
		bill.BillingMonths = in.BillingMonths
	} else {
		bill.TotalStudents = nil
		bill.BillingMonths = nil
	}
}

func isServiceType(t string) bool {
	for _, st := range models.ServiceTypes {
		if t == st {
			return true
		}
	}
	return false
}

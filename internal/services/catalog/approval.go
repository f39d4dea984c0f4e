package catalog

import (
	"context"
	"fmt"
	"strconv"

	"agency-billing-backend/internal/models"
	"agency-billing-backend/internal/monitoring"
	"agency-billing-backend/internal/services"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ServiceKind names a record carrying the two-step payment approval.
type ServiceKind string

const (
	KindDomain  ServiceKind = "domain"
	KindHosting ServiceKind = "hosting_service"
	KindSsl     ServiceKind = "ssl_certificate"
)

// approvable is the slice of a repository the approval flow needs.
type approvable interface {
	SetApprovalLevel(ctx context.Context, id uuid.UUID, level int) error
}

func (s *CatalogService) approvalTarget(ctx context.Context, kind ServiceKind, id uuid.UUID) (approvable, *models.PaymentApproval, error) {
	switch kind {
	case KindDomain:
		d, err := s.domains.GetByID(ctx, id)
		if err != nil {
			return nil, nil, notFound(err, "domain")
		}
		return s.domains, &d.PaymentApproval, nil
	case KindHosting:
		h, err := s.hosting.GetByID(ctx, id)
		if err != nil {
			return nil, nil, notFound(err, "hosting service")
		}
		return s.hosting, &h.PaymentApproval, nil
	case KindSsl:
		c, err := s.ssl.GetByID(ctx, id)
		if err != nil {
			return nil, nil, notFound(err, "ssl certificate")
		}
		return s.ssl, &c.PaymentApproval, nil
	}
	return nil, nil, fmt.Errorf("unknown service kind %q", kind)
}

// ApproveLevel1 records the first payment sign-off.
func (s *CatalogService) ApproveLevel1(ctx context.Context, actor *models.User, kind ServiceKind, id uuid.UUID) error {
	if actor == nil || !actor.CanManageBills() {
		return services.Forbidden("Unauthorized to approve payments.")
	}
	repo, _, err := s.approvalTarget(ctx, kind, id)
	if err != nil {
		return err
	}
	return s.setLevel(ctx, actor, repo, kind, id, 1)
}

// ApproveLevel2 records the final sign-off. It is refused until level 1 has
// been granted, and the level 2 flag is left untouched in that case.
func (s *CatalogService) ApproveLevel2(ctx context.Context, actor *models.User, kind ServiceKind, id uuid.UUID) error {
	if actor == nil || !actor.CanApproveBills() {
		return services.Forbidden("Unauthorized to give final payment approval.")
	}
	repo, approval, err := s.approvalTarget(ctx, kind, id)
	if err != nil {
		return err
	}
	if !approval.PaymentApprovedLevel1 {
		return services.Conflict("Level 1 approval required first.")
	}
	return s.setLevel(ctx, actor, repo, kind, id, 2)
}

func (s *CatalogService) setLevel(ctx context.Context, actor *models.User, repo approvable, kind ServiceKind, id uuid.UUID, level int) error {
	if err := repo.SetApprovalLevel(ctx, id, level); err != nil {
		return notFound(err, string(kind))
	}
	monitoring.ServiceApprovals.WithLabelValues(string(kind), strconv.Itoa(level)).Inc()
	s.log.WithFields(logrus.Fields{
		"service":     kind,
		"service_id":  id,
		"level":       level,
		"approved_by": actor.ID,
	}).Info("payment approved")
	return nil
}

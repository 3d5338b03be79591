// internal/services/status_service.go
package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/rights-backend/internal/metrics"
	"github.com/javajoker/rights-backend/internal/models"
	"github.com/javajoker/rights-backend/internal/repository"
	"github.com/javajoker/rights-backend/internal/utils"
)

// DeriveStatus returns the effective lifecycle status of a contract on the
// given day. Stored Terminated and In Perpetuity are terminal; auto-renewing
// contracts never expire by date; otherwise an end date strictly before
// today means Expired. Missing values degrade to Active rather than failing.
func DeriveStatus(c *models.Contract, today time.Time) models.ContractStatus {
	switch c.Status {
	case models.ContractStatusTerminated, models.ContractStatusInPerpetuity:
		return c.Status
	}

	stored := c.Status
	if stored == "" {
		stored = models.ContractStatusActive
	}

	if c.AutoRenew {
		return stored
	}

	if c.EndDate != nil && utils.DateOnly(*c.EndDate).Before(utils.DateOnly(today)) {
		return models.ContractStatusExpired
	}

	return stored
}

// StatusService keeps the stored status column in step with DeriveStatus.
type StatusService struct {
	repo  repository.ContractRepository
	now   func() time.Time
	audit *AuditService
}

func NewStatusService(repo repository.ContractRepository, audit *AuditService) *StatusService {
	return &StatusService{
		repo:  repo,
		now:   time.Now,
		audit: audit,
	}
}

// Today is the calendar day status derivation runs against.
func (s *StatusService) Today() time.Time {
	return utils.DateOnly(s.now())
}

func (s *StatusService) Derive(c *models.Contract) models.ContractStatus {
	return DeriveStatus(c, s.Today())
}

// Annotate fills EffectiveStatus on each contract in place.
func (s *StatusService) Annotate(contracts []models.Contract) {
	today := s.Today()
	for i := range contracts {
		contracts[i].EffectiveStatus = DeriveStatus(&contracts[i], today)
	}
}

// ReconcileExpiredStatuses moves stored Active, non-auto-renewing contracts
// whose end date has passed to Expired. Idempotent.
func (s *StatusService) ReconcileExpiredStatuses(ctx context.Context) (int64, error) {
	today := s.Today()
	changed, err := s.repo.MarkExpired(ctx, today)
	if err != nil {
		return 0, err
	}

	metrics.AddReconciled(changed)
	if changed > 0 {
		logrus.WithFields(logrus.Fields{
			"changed": changed,
			"today":   utils.FormatDate(today),
		}).Info("Reconciled expired contract statuses")

		if s.audit != nil {
			s.audit.Record(ctx, AuditEntry{
				Action:     "contracts.reconcile_expired",
				EntityType: "contract",
				NewValues:  models.JSONB{"changed": changed, "today": utils.FormatDate(today)},
			})
		}
	}
	return changed, nil
}

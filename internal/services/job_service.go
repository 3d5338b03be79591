// internal/services/job_service.go
package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// JobService runs the maintenance tasks invoked by the external scheduler.
type JobService struct {
	status        *StatusService
	contracts     *ContractService
	notifications *NotificationService
}

type JobResult struct {
	Job      string `json:"job"`
	Affected int64  `json:"affected"`
}

func NewJobService(status *StatusService, contracts *ContractService, notifications *NotificationService) *JobService {
	return &JobService{
		status:        status,
		contracts:     contracts,
		notifications: notifications,
	}
}

func (s *JobService) Run(ctx context.Context, job string) (*JobResult, error) {
	switch job {
	case "reconcile":
		return s.Reconcile(ctx)
	case "notify-expiring":
		return s.NotifyExpiring(ctx)
	default:
		return nil, fmt.Errorf("unknown job %q", job)
	}
}

func (s *JobService) Reconcile(ctx context.Context) (*JobResult, error) {
	changed, err := s.status.ReconcileExpiredStatuses(ctx)
	if err != nil {
		return nil, err
	}
	return &JobResult{Job: "reconcile", Affected: changed}, nil
}

// NotifyExpiring reconciles first so already-expired contracts drop out,
// then mails the digest of contracts ending within the configured window.
func (s *JobService) NotifyExpiring(ctx context.Context) (*JobResult, error) {
	if _, err := s.status.ReconcileExpiredStatuses(ctx); err != nil {
		return nil, err
	}

	expiring, err := s.contracts.GetExpiringContracts(ctx, 0)
	if err != nil {
		return nil, err
	}

	notified, err := s.notifications.NotifyExpiringContracts(ctx, expiring)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"contracts":  len(expiring),
		"recipients": notified,
	}).Info("Expiring contract digest sent")

	return &JobResult{Job: "notify-expiring", Affected: int64(notified)}, nil
}

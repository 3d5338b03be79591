// internal/services/admin_service.go
package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/javajoker/rights-backend/internal/models"
)

type AdminService struct {
	db        *gorm.DB
	contracts *ContractService
}

type AdminDashboardStats struct {
	Contracts          *StatusSummary `json:"contracts"`
	ExpiringSoon       int            `json:"expiring_soon"`
	ExpiryWindowDays   int            `json:"expiry_window_days"`
	ContentItems       int64          `json:"content_items"`
	PendingRoyalties   int64          `json:"pending_royalties"`
	ApprovedRoyalties  int64          `json:"approved_royalties"`
	OutstandingAmount  float64        `json:"outstanding_amount"`
	PaidAmount         float64        `json:"paid_amount"`
	TotalUsers         int64          `json:"total_users"`
	ActiveUsers        int64          `json:"active_users"`
	PendingInvitations int64          `json:"pending_invitations"`
}

func NewAdminService(db *gorm.DB, contracts *ContractService) *AdminService {
	return &AdminService{
		db:        db,
		contracts: contracts,
	}
}

// GetDashboardStats summarises the catalogue, royalty pipeline and users.
func (s *AdminService) GetDashboardStats(ctx context.Context) (*AdminDashboardStats, error) {
	stats := &AdminDashboardStats{}
	db := s.db.WithContext(ctx)

	summary, err := s.contracts.GetStatusSummary(ctx)
	if err != nil {
		return nil, err
	}
	stats.Contracts = summary

	expiring, err := s.contracts.GetExpiringContracts(ctx, 0)
	if err != nil {
		return nil, err
	}
	stats.ExpiringSoon = len(expiring)
	stats.ExpiryWindowDays = s.contracts.cfg.Notifications.ExpiryWindowDays

	counts := []struct {
		query *gorm.DB
		dest  *int64
	}{
		{db.Model(&models.ContentItem{}), &stats.ContentItems},
		{db.Model(&models.Royalty{}).Where("status = ?", models.RoyaltyStatusPending), &stats.PendingRoyalties},
		{db.Model(&models.Royalty{}).Where("status = ?", models.RoyaltyStatusApproved), &stats.ApprovedRoyalties},
		{db.Model(&models.User{}), &stats.TotalUsers},
		{db.Model(&models.User{}).Where("is_active = ?", true), &stats.ActiveUsers},
		{db.Model(&models.User{}).Where("password_hash IS NULL"), &stats.PendingInvitations},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to load dashboard counts: %w", err)
		}
	}

	if err := db.Model(&models.Royalty{}).
		Where("status IN ?", []models.RoyaltyStatus{models.RoyaltyStatusPending, models.RoyaltyStatusApproved}).
		Select("COALESCE(SUM(royalty_amount), 0)").Scan(&stats.OutstandingAmount).Error; err != nil {
		return nil, fmt.Errorf("failed to sum outstanding royalties: %w", err)
	}
	if err := db.Model(&models.Royalty{}).
		Where("status = ?", models.RoyaltyStatusPaid).
		Select("COALESCE(SUM(royalty_amount), 0)").Scan(&stats.PaidAmount).Error; err != nil {
		return nil, fmt.Errorf("failed to sum paid royalties: %w", err)
	}

	return stats, nil
}

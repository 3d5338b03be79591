// internal/repository/contract_repository.go
package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/javajoker/rights-backend/internal/models"
	"github.com/javajoker/rights-backend/internal/utils"
)

// ContractRepository is the read/maintenance surface the status model and
// availability engine need from contract storage.
type ContractRepository interface {
	List(ctx context.Context) ([]models.Contract, error)
	Find(ctx context.Context, filter ContractFilter) ([]models.Contract, error)
	// MarkExpired sets stored status to Expired for Active, non-auto-renewing
	// contracts whose end date is before today. Returns rows changed.
	MarkExpired(ctx context.Context, today time.Time) (int64, error)
}

// StoredStatusSQL reads an unset status column as Active, matching
// DeriveStatus.
const StoredStatusSQL = "COALESCE(NULLIF(status, ''), 'Active')"

type gormContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) ContractRepository {
	return &gormContractRepository{db: db}
}

func (r *gormContractRepository) List(ctx context.Context) ([]models.Contract, error) {
	var contracts []models.Contract
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&contracts).Error; err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	return contracts, nil
}

func (r *gormContractRepository) Find(ctx context.Context, filter ContractFilter) ([]models.Contract, error) {
	query := r.db.WithContext(ctx).Model(&models.Contract{})

	if filter.Partner != "" {
		query = query.Where("partner = ?", filter.Partner)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where(StoredStatusSQL+" IN ?", filter.Statuses)
	}
	if filter.Exclusivity != "" {
		query = query.Where("exclusivity = ?", filter.Exclusivity)
	}
	if filter.Territory != "" {
		query = query.Where("territory ILIKE ?", utils.LikePattern(filter.Territory))
	}
	if filter.Platform != "" {
		query = query.Where("platform ILIKE ?", utils.LikePattern(filter.Platform))
	}
	if filter.WindowEnd != nil {
		query = query.Where("start_date <= ?", utils.FormatDate(*filter.WindowEnd))
	}
	if filter.WindowStart != nil {
		query = query.Where("(end_date >= ? OR end_date IS NULL)", utils.FormatDate(*filter.WindowStart))
	}

	var contracts []models.Contract
	if err := query.Order("created_at DESC").Find(&contracts).Error; err != nil {
		return nil, fmt.Errorf("failed to query contracts: %w", err)
	}
	return contracts, nil
}

func (r *gormContractRepository) MarkExpired(ctx context.Context, today time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Contract{}).
		Where(StoredStatusSQL+" = ? AND end_date < ? AND (auto_renew = ? OR auto_renew IS NULL)",
			models.ContractStatusActive, utils.FormatDate(today), false).
		Update("status", models.ContractStatusExpired)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to reconcile contract statuses: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// internal/services/contract_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/rights-backend/internal/config"
	"github.com/javajoker/rights-backend/internal/models"
	"github.com/javajoker/rights-backend/internal/repository"
	"github.com/javajoker/rights-backend/internal/utils"
)

type ContractService struct {
	db     *gorm.DB
	repo   repository.ContractRepository
	status *StatusService
	audit  *AuditService
	cfg    *config.Config
}

type ContractRequest struct {
	Partner            string                    `json:"partner" validate:"required,max=255"`
	Licensor           string                    `json:"licensor,omitempty" validate:"omitempty,max=255"`
	Licensee           string                    `json:"licensee,omitempty" validate:"omitempty,max=255"`
	Territory          string                    `json:"territory,omitempty"`
	Platform           string                    `json:"platform,omitempty"`
	StartDate          string                    `json:"start_date" validate:"required,iso_date"`
	EndDate            string                    `json:"end_date,omitempty" validate:"omitempty,iso_date"`
	AutoRenew          bool                      `json:"auto_renew"`
	RoyaltyType        models.RoyaltyType        `json:"royalty_type,omitempty" validate:"omitempty,royalty_type"`
	RoyaltyRate        *float64                  `json:"royalty_rate,omitempty"`
	FlatFeeAmount      *float64                  `json:"flat_fee_amount,omitempty"`
	MinimumPayment     *float64                  `json:"minimum_payment,omitempty" validate:"omitempty,gte=0"`
	PaymentTerms       models.PaymentTerms       `json:"payment_terms,omitempty" validate:"omitempty,payment_terms"`
	ReportingFrequency models.ReportingFrequency `json:"reporting_frequency,omitempty" validate:"omitempty,reporting_frequency"`
	Exclusivity        models.Exclusivity        `json:"exclusivity" validate:"required,exclusivity"`
	Status             models.ContractStatus     `json:"status,omitempty" validate:"omitempty,contract_status"`
	Notes              string                    `json:"notes,omitempty"`
}

type ContractListFilter struct {
	utils.PaginationParams
	Partner     string                `json:"partner,omitempty"`
	Status      models.ContractStatus `json:"status,omitempty"`
	Territory   string                `json:"territory,omitempty"`
	Platform    string                `json:"platform,omitempty"`
	Exclusivity models.Exclusivity    `json:"exclusivity,omitempty"`
}

type TerminateContractRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

type StatusSummary struct {
	Total    int64                           `json:"total"`
	ByStatus map[models.ContractStatus]int64 `json:"by_status"`
}

var contractSortFields = []string{"created_at", "updated_at", "start_date", "end_date", "partner", "status"}

func NewContractService(db *gorm.DB, repo repository.ContractRepository, status *StatusService, audit *AuditService, cfg *config.Config) *ContractService {
	return &ContractService{
		db:     db,
		repo:   repo,
		status: status,
		audit:  audit,
		cfg:    cfg,
	}
}

// applyContractRequest validates req and writes it onto c. existing is the
// stored record on update and nil on create.
func applyContractRequest(c *models.Contract, existing *models.Contract, req *ContractRequest, today time.Time) error {
	if err := validateRequest(req); err != nil {
		return err
	}

	verr := &ValidationError{}
	start, _ := utils.ParseDate(req.StartDate)

	var end *time.Time
	switch {
	case req.EndDate == "":
	case req.AutoRenew:
		verr.add("end_date", "excluded_with", "end_date must be empty when auto_renew is set")
	default:
		parsed, _ := utils.ParseDate(req.EndDate)
		if parsed.Before(start) {
			verr.add("end_date", "date_order", "end_date must not be before start_date")
		}
		end = &parsed
	}

	switch req.RoyaltyType {
	case models.RoyaltyTypeRevenueShare:
		if req.RoyaltyRate == nil || *req.RoyaltyRate <= 0 || *req.RoyaltyRate > 100 {
			verr.add("royalty_rate", "royalty_rate", "royalty_rate must be greater than 0 and at most 100 for Revenue Share")
		}
	case models.RoyaltyTypeFlatFee:
		if req.FlatFeeAmount == nil || *req.FlatFeeAmount <= 0 {
			verr.add("flat_fee_amount", "flat_fee_amount", "flat_fee_amount must be greater than 0 for Flat Fee")
		}
	}
	if err := verr.errOrNil(); err != nil {
		return err
	}

	status := req.Status
	if status == "" {
		status = models.ContractStatusActive
		if existing != nil && existing.Status != "" {
			status = existing.Status
		}
	}

	if existing != nil && existing.Status == models.ContractStatusTerminated &&
		status != models.ContractStatusTerminated {
		return fmt.Errorf("contract is terminated and cannot become %s: %w", status, ErrInvalidTransition)
	}

	if end == nil && !req.AutoRenew &&
		status != models.ContractStatusInPerpetuity && status != models.ContractStatusTerminated {
		return integrityError("end_date is required unless auto_renew is set or the contract is perpetual")
	}

	// A stored Expired contract that no longer expires by date is live again.
	if status == models.ContractStatusExpired &&
		(req.AutoRenew || (end != nil && !utils.DateOnly(*end).Before(utils.DateOnly(today)))) {
		status = models.ContractStatusActive
	}

	c.Partner = strings.TrimSpace(req.Partner)
	c.Licensor = strings.TrimSpace(req.Licensor)
	c.Licensee = strings.TrimSpace(req.Licensee)
	c.Territory = strings.TrimSpace(req.Territory)
	c.Platform = strings.TrimSpace(req.Platform)
	c.StartDate = start
	c.EndDate = end
	c.AutoRenew = req.AutoRenew
	c.RoyaltyType = req.RoyaltyType
	c.RoyaltyRate = nil
	c.FlatFeeAmount = nil
	switch req.RoyaltyType {
	case models.RoyaltyTypeRevenueShare:
		c.RoyaltyRate = req.RoyaltyRate
	case models.RoyaltyTypeFlatFee:
		c.FlatFeeAmount = req.FlatFeeAmount
	}
	c.MinimumPayment = req.MinimumPayment
	c.PaymentTerms = req.PaymentTerms
	c.ReportingFrequency = req.ReportingFrequency
	if c.ReportingFrequency == "" {
		c.ReportingFrequency = models.ReportingFrequencyNone
	}
	c.Exclusivity = req.Exclusivity
	c.Status = status
	c.Notes = req.Notes

	return nil
}

func (s *ContractService) CreateContract(ctx context.Context, actor Actor, req *ContractRequest) (*models.Contract, error) {
	return s.create(ctx, actor, nil, req)
}

// CreateAmendment records a new contract that amends parentID.
func (s *ContractService) CreateAmendment(ctx context.Context, actor Actor, parentID uuid.UUID, req *ContractRequest) (*models.Contract, error) {
	parent, err := s.findContract(ctx, s.db, parentID)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, actor, &parent.ID, req)
}

func (s *ContractService) create(ctx context.Context, actor Actor, parentID *uuid.UUID, req *ContractRequest) (*models.Contract, error) {
	contract := &models.Contract{
		ParentContractID: parentID,
		CreatedBy:        actor.UserID,
	}
	if err := applyContractRequest(contract, nil, req, s.status.Today()); err != nil {
		return nil, err
	}

	action := "contract.create"
	if parentID != nil {
		action = "contract.amend"
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(contract).Error; err != nil {
			return fmt.Errorf("failed to create contract: %w", err)
		}
		return s.audit.RecordTx(tx, actor.entry(action, "contract", contract.ID, nil, contract))
	})
	if err != nil {
		return nil, err
	}

	contract.EffectiveStatus = s.status.Derive(contract)
	return contract, nil
}

func (s *ContractService) GetContract(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	if err := s.db.WithContext(ctx).
		Preload("Contents.ContentItem").
		Preload("Documents").
		Preload("Amendments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&contract, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("contract %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	contract.EffectiveStatus = s.status.Derive(&contract)
	s.status.Annotate(contract.Amendments)
	return &contract, nil
}

func (s *ContractService) UpdateContract(ctx context.Context, actor Actor, id uuid.UUID, req *ContractRequest) (*models.Contract, error) {
	var contract models.Contract
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.findContract(ctx, tx, id)
		if err != nil {
			return err
		}
		before := *existing
		contract = *existing

		if err := applyContractRequest(&contract, existing, req, s.status.Today()); err != nil {
			return err
		}
		if err := tx.Save(&contract).Error; err != nil {
			return fmt.Errorf("failed to update contract: %w", err)
		}
		return s.audit.RecordTx(tx, actor.entry("contract.update", "contract", contract.ID, before, contract))
	})
	if err != nil {
		return nil, err
	}

	contract.EffectiveStatus = s.status.Derive(&contract)
	return &contract, nil
}

// TerminateContract ends a contract early. Terminated is terminal.
func (s *ContractService) TerminateContract(ctx context.Context, actor Actor, id uuid.UUID, req *TerminateContractRequest) (*models.Contract, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var contract models.Contract
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.findContract(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing.Status == models.ContractStatusTerminated {
			return fmt.Errorf("contract is already terminated: %w", ErrInvalidTransition)
		}

		before := *existing
		contract = *existing
		contract.Status = models.ContractStatusTerminated
		if contract.Notes != "" {
			contract.Notes += "\n"
		}
		contract.Notes += fmt.Sprintf("Terminated %s: %s", utils.FormatDate(s.status.Today()), req.Reason)

		if err := tx.Model(&contract).Updates(map[string]interface{}{
			"status": contract.Status,
			"notes":  contract.Notes,
		}).Error; err != nil {
			return fmt.Errorf("failed to terminate contract: %w", err)
		}
		return s.audit.RecordTx(tx, actor.entry("contract.terminate", "contract", contract.ID, before, contract))
	})
	if err != nil {
		return nil, err
	}

	contract.EffectiveStatus = s.status.Derive(&contract)
	return &contract, nil
}

// DeleteContract soft-deletes a contract and drops its content links.
// Contracts that still have amendments cannot be deleted.
func (s *ContractService) DeleteContract(ctx context.Context, actor Actor, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.findContract(ctx, tx, id)
		if err != nil {
			return err
		}

		var amendments int64
		if err := tx.Model(&models.Contract{}).Where("parent_contract_id = ?", id).Count(&amendments).Error; err != nil {
			return fmt.Errorf("failed to check amendments: %w", err)
		}
		if amendments > 0 {
			return fmt.Errorf("contract has %d amendment(s): %w", amendments, ErrConflict)
		}

		if err := tx.Where("contract_id = ?", id).Delete(&models.ContractContent{}).Error; err != nil {
			return fmt.Errorf("failed to unlink content: %w", err)
		}
		if err := tx.Delete(existing).Error; err != nil {
			return fmt.Errorf("failed to delete contract: %w", err)
		}
		return s.audit.RecordTx(tx, actor.entry("contract.delete", "contract", id, existing, nil))
	})
}

// ListContracts reconciles stored statuses first so the status filter agrees
// with the effective status shown on each row.
func (s *ContractService) ListContracts(ctx context.Context, filter ContractListFilter) ([]models.Contract, int64, error) {
	if _, err := s.status.ReconcileExpiredStatuses(ctx); err != nil {
		logrus.WithError(err).Warn("Status reconciliation before listing failed")
	}

	query := s.db.WithContext(ctx).Model(&models.Contract{})
	if filter.Partner != "" {
		query = query.Where("partner = ?", filter.Partner)
	}
	if filter.Status != "" {
		query = query.Where(repository.StoredStatusSQL+" = ?", filter.Status)
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
	if filter.Search != "" {
		pattern := utils.LikePattern(filter.Search)
		query = query.Where("partner ILIKE ? OR licensor ILIKE ? OR licensee ILIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count contracts: %w", err)
	}

	params := utils.NormalizePagination(filter.PaginationParams)
	query = utils.ApplySort(query, params, contractSortFields)
	query = utils.ApplyPagination(query, params)

	var contracts []models.Contract
	if err := query.Find(&contracts).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch contracts: %w", err)
	}

	s.status.Annotate(contracts)
	return contracts, total, nil
}

// GetAmendmentChain returns the root contract of id's chain and every
// descendant amendment, oldest first.
func (s *ContractService) GetAmendmentChain(ctx context.Context, id uuid.UUID) ([]models.Contract, error) {
	db := s.db.WithContext(ctx)

	current, err := s.findContract(ctx, db, id)
	if err != nil {
		return nil, err
	}

	seen := map[uuid.UUID]bool{current.ID: true}
	for current.ParentContractID != nil && !seen[*current.ParentContractID] {
		parent, err := s.findContract(ctx, db, *current.ParentContractID)
		if errors.Is(err, ErrNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		seen[parent.ID] = true
		current = parent
	}

	chain := []models.Contract{*current}
	visited := map[uuid.UUID]bool{current.ID: true}
	frontier := []uuid.UUID{current.ID}
	for len(frontier) > 0 {
		var children []models.Contract
		if err := db.Where("parent_contract_id IN ?", frontier).Find(&children).Error; err != nil {
			return nil, fmt.Errorf("failed to fetch amendments: %w", err)
		}

		frontier = frontier[:0]
		for _, child := range children {
			if visited[child.ID] {
				continue
			}
			visited[child.ID] = true
			chain = append(chain, child)
			frontier = append(frontier, child.ID)
		}
	}

	sortChain(chain)
	s.status.Annotate(chain)
	return chain, nil
}

// sortChain orders by creation time, keeping the root first.
func sortChain(chain []models.Contract) {
	if len(chain) < 2 {
		return
	}
	rest := chain[1:]
	sort.SliceStable(rest, func(i, j int) bool {
		return rest[i].CreatedAt.Before(rest[j].CreatedAt)
	})
}

// GetStatusSummary counts contracts by effective status.
func (s *ContractService) GetStatusSummary(ctx context.Context) (*StatusSummary, error) {
	contracts, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return summarize(contracts, s.status.Today()), nil
}

func summarize(contracts []models.Contract, today time.Time) *StatusSummary {
	summary := &StatusSummary{
		Total: int64(len(contracts)),
		ByStatus: map[models.ContractStatus]int64{
			models.ContractStatusActive:       0,
			models.ContractStatusExpired:      0,
			models.ContractStatusInPerpetuity: 0,
			models.ContractStatusTerminated:   0,
		},
	}
	for i := range contracts {
		summary.ByStatus[DeriveStatus(&contracts[i], today)]++
	}
	return summary
}

// GetExpiringContracts lists non-auto-renewing contracts whose end date
// falls within the next days days, soonest first.
func (s *ContractService) GetExpiringContracts(ctx context.Context, days int) ([]models.Contract, error) {
	if days <= 0 {
		days = s.cfg.Notifications.ExpiryWindowDays
	}

	today := s.status.Today()
	var contracts []models.Contract
	if err := s.db.WithContext(ctx).
		Where(repository.StoredStatusSQL+" = ? AND (auto_renew = ? OR auto_renew IS NULL)", models.ContractStatusActive, false).
		Where("end_date >= ? AND end_date <= ?", utils.FormatDate(today), utils.FormatDate(today.AddDate(0, 0, days))).
		Order("end_date ASC").
		Find(&contracts).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch expiring contracts: %w", err)
	}

	return expiringWithin(contracts, today, days), nil
}

// expiringWithin keeps contracts that are still Active today and end within days.
func expiringWithin(contracts []models.Contract, today time.Time, days int) []models.Contract {
	limit := utils.DateOnly(today).AddDate(0, 0, days)
	result := make([]models.Contract, 0, len(contracts))
	for _, c := range contracts {
		if c.AutoRenew || c.EndDate == nil || utils.DateOnly(*c.EndDate).After(limit) {
			continue
		}
		if status := DeriveStatus(&c, today); status == models.ContractStatusActive {
			c.EffectiveStatus = status
			result = append(result, c)
		}
	}
	return result
}

func (s *ContractService) findContract(ctx context.Context, db *gorm.DB, id uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	if err := db.WithContext(ctx).First(&contract, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("contract %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &contract, nil
}

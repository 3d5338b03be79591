// internal/services/royalty_service.go
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/javajoker/rights-backend/internal/models"
	"github.com/javajoker/rights-backend/internal/utils"
)

type RoyaltyService struct {
	db      *gorm.DB
	payouts PayoutProvider
	audit   *AuditService
	now     func() time.Time
}

type CreateRoyaltyRequest struct {
	ContractID      uuid.UUID `json:"contract_id" validate:"required"`
	ReportingPeriod string    `json:"reporting_period" validate:"required,max=20"`
	Revenue         float64   `json:"revenue" validate:"gte=0"`
	Notes           string    `json:"notes,omitempty"`
}

type MarkPaidRequest struct {
	// DestinationAccount is a Stripe connected account. When empty the payment
	// is recorded as made outside the system using Reference.
	DestinationAccount string `json:"destination_account,omitempty"`
	Reference          string `json:"reference,omitempty" validate:"omitempty,max=255"`
}

type RoyaltyListFilter struct {
	utils.PaginationParams
	ContractID *uuid.UUID           `json:"contract_id,omitempty"`
	Partner    string               `json:"partner,omitempty"`
	Status     models.RoyaltyStatus `json:"status,omitempty"`
	PeriodFrom string               `json:"period_from,omitempty"`
	PeriodTo   string               `json:"period_to,omitempty"`
}

var royaltySortFields = []string{"created_at", "reporting_period", "revenue", "royalty_amount", "status"}

// royaltyTransitions is the forward-only workflow.
var royaltyTransitions = map[models.RoyaltyStatus]models.RoyaltyStatus{
	models.RoyaltyStatusPending:  models.RoyaltyStatusApproved,
	models.RoyaltyStatusApproved: models.RoyaltyStatusPaid,
}

func NewRoyaltyService(db *gorm.DB, payouts PayoutProvider, audit *AuditService) *RoyaltyService {
	return &RoyaltyService{
		db:      db,
		payouts: payouts,
		audit:   audit,
		now:     time.Now,
	}
}

// CalculateRoyalty applies the contract's commercial terms to revenue.
// Revenue Share takes rate percent of revenue, Flat Fee is the fixed amount,
// and a minimum payment, when set, is a floor. Amounts round to cents.
func CalculateRoyalty(c *models.Contract, revenue float64) (float64, error) {
	if revenue < 0 {
		verr := &ValidationError{}
		verr.add("revenue", "gte", "revenue must not be negative")
		return 0, verr
	}

	var amount float64
	switch c.RoyaltyType {
	case models.RoyaltyTypeRevenueShare:
		if c.RoyaltyRate == nil {
			return 0, integrityError("contract %s has no royalty rate", c.ID)
		}
		amount = revenue * *c.RoyaltyRate / 100
	case models.RoyaltyTypeFlatFee:
		if c.FlatFeeAmount == nil {
			return 0, integrityError("contract %s has no flat fee amount", c.ID)
		}
		amount = *c.FlatFeeAmount
	default:
		return 0, integrityError("contract %s has no royalty terms", c.ID)
	}

	if c.MinimumPayment != nil && amount < *c.MinimumPayment {
		amount = *c.MinimumPayment
	}

	return math.Round(amount*100) / 100, nil
}

// NextRoyaltyStatus returns the only status a royalty in from may move to.
func NextRoyaltyStatus(from models.RoyaltyStatus) (models.RoyaltyStatus, error) {
	next, ok := royaltyTransitions[from]
	if !ok {
		return "", fmt.Errorf("royalty in status %q cannot advance: %w", from, ErrInvalidTransition)
	}
	return next, nil
}

func (s *RoyaltyService) CreateRoyalty(ctx context.Context, actor Actor, req *CreateRoyaltyRequest) (*models.Royalty, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var royalty models.Royalty
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var contract models.Contract
		if err := tx.First(&contract, "id = ?", req.ContractID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("contract %s: %w", req.ContractID, ErrNotFound)
			}
			return fmt.Errorf("database error: %w", err)
		}

		amount, err := CalculateRoyalty(&contract, req.Revenue)
		if err != nil {
			return err
		}

		royalty = models.Royalty{
			ContractID:      contract.ID,
			ReportingPeriod: req.ReportingPeriod,
			Revenue:         req.Revenue,
			RoyaltyAmount:   amount,
			Status:          models.RoyaltyStatusPending,
			Notes:           req.Notes,
			CreatedBy:       actor.UserID,
		}
		if err := tx.Create(&royalty).Error; err != nil {
			return fmt.Errorf("failed to create royalty: %w", err)
		}
		return s.audit.RecordTx(tx, actor.entry("royalty.create", "royalty", royalty.ID, nil, royalty))
	})
	if err != nil {
		return nil, err
	}
	return &royalty, nil
}

func (s *RoyaltyService) GetRoyalty(ctx context.Context, id uuid.UUID) (*models.Royalty, error) {
	var royalty models.Royalty
	if err := s.db.WithContext(ctx).Preload("Contract").First(&royalty, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("royalty %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &royalty, nil
}

func (s *RoyaltyService) ListRoyalties(ctx context.Context, filter RoyaltyListFilter) ([]models.Royalty, int64, error) {
	query := s.filteredRoyalties(ctx, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count royalties: %w", err)
	}

	params := utils.NormalizePagination(filter.PaginationParams)
	query = utils.ApplySort(query, params, royaltySortFields)
	query = utils.ApplyPagination(query, params)

	var royalties []models.Royalty
	if err := query.Preload("Contract").Find(&royalties).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch royalties: %w", err)
	}
	return royalties, total, nil
}

func (s *RoyaltyService) filteredRoyalties(ctx context.Context, filter RoyaltyListFilter) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Royalty{})

	if filter.ContractID != nil {
		query = query.Where("royalties.contract_id = ?", *filter.ContractID)
	}
	if filter.Partner != "" {
		query = query.Where("royalties.contract_id IN (?)",
			s.db.Model(&models.Contract{}).Select("id").Where("partner = ?", filter.Partner))
	}
	if filter.Status != "" {
		query = query.Where("royalties.status = ?", filter.Status)
	}
	if filter.PeriodFrom != "" {
		query = query.Where("royalties.reporting_period >= ?", filter.PeriodFrom)
	}
	if filter.PeriodTo != "" {
		query = query.Where("royalties.reporting_period <= ?", filter.PeriodTo)
	}
	return query
}

// ApproveRoyalty moves a Pending royalty to Approved.
func (s *RoyaltyService) ApproveRoyalty(ctx context.Context, actor Actor, id uuid.UUID) (*models.Royalty, error) {
	return s.advance(ctx, actor, id, models.RoyaltyStatusApproved, func(r *models.Royalty) error {
		now := s.now()
		r.ApprovedAt = &now
		r.ApprovedBy = actor.UserID
		return nil
	})
}

// MarkPaid moves an Approved royalty to Paid, transferring the amount first
// when a destination account is given.
func (s *RoyaltyService) MarkPaid(ctx context.Context, actor Actor, id uuid.UUID, req *MarkPaidRequest) (*models.Royalty, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	return s.advance(ctx, actor, id, models.RoyaltyStatusPaid, func(r *models.Royalty) error {
		reference := req.Reference
		if req.DestinationAccount != "" {
			if s.payouts == nil {
				return ErrPaymentsDisabled
			}
			transferID, err := s.payouts.Transfer(ctx, PayoutRequest{
				Amount:      r.RoyaltyAmount,
				Destination: req.DestinationAccount,
				Description: fmt.Sprintf("Royalty %s for period %s", r.ID, r.ReportingPeriod),
				Metadata: map[string]string{
					"royalty_id":  r.ID.String(),
					"contract_id": r.ContractID.String(),
				},
			})
			if err != nil {
				return err
			}
			reference = transferID
			logrus.WithFields(logrus.Fields{
				"royalty_id":  r.ID,
				"transfer_id": transferID,
			}).Info("Royalty payout transferred")
		}

		now := s.now()
		r.PaidAt = &now
		r.PaymentReference = reference
		return nil
	})
}

func (s *RoyaltyService) advance(ctx context.Context, actor Actor, id uuid.UUID, target models.RoyaltyStatus, apply func(*models.Royalty) error) (*models.Royalty, error) {
	var royalty models.Royalty
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&royalty, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("royalty %s: %w", id, ErrNotFound)
			}
			return fmt.Errorf("database error: %w", err)
		}

		next, err := NextRoyaltyStatus(royalty.Status)
		if err != nil {
			return err
		}
		if next != target {
			return fmt.Errorf("royalty in status %q cannot move to %q: %w", royalty.Status, target, ErrInvalidTransition)
		}

		before := royalty
		if err := apply(&royalty); err != nil {
			return err
		}
		royalty.Status = next

		if err := tx.Save(&royalty).Error; err != nil {
			return fmt.Errorf("failed to update royalty: %w", err)
		}
		return s.audit.RecordTx(tx, actor.entry("royalty."+statusAction(next), "royalty", royalty.ID, before, royalty))
	})
	if err != nil {
		return nil, err
	}
	return &royalty, nil
}

func statusAction(status models.RoyaltyStatus) string {
	switch status {
	case models.RoyaltyStatusApproved:
		return "approve"
	case models.RoyaltyStatusPaid:
		return "pay"
	default:
		return "update"
	}
}

// ExportStatement renders the filtered royalties as an XLSX workbook.
func (s *RoyaltyService) ExportStatement(ctx context.Context, filter RoyaltyListFilter) ([]byte, error) {
	var royalties []models.Royalty
	if err := s.filteredRoyalties(ctx, filter).
		Preload("Contract").
		Order("royalties.reporting_period ASC, royalties.created_at ASC").
		Find(&royalties).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch royalties for export: %w", err)
	}

	return BuildStatement(royalties)
}

var statementHeaders = []string{
	"Partner", "Contract", "Reporting Period", "Revenue", "Royalty Type", "Rate (%)", "Royalty Amount", "Status", "Paid At", "Reference",
}

const statementSheet = "Statement"

// BuildStatement writes one row per royalty followed by a totals row.
func BuildStatement(royalties []models.Royalty) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", statementSheet); err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}

	for i, header := range statementHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(statementSheet, cell, header)
	}

	var totalRevenue, totalRoyalty float64
	for i, r := range royalties {
		row := i + 2
		f.SetCellValue(statementSheet, fmt.Sprintf("A%d", row), r.Contract.Partner)
		f.SetCellValue(statementSheet, fmt.Sprintf("B%d", row), r.ContractID.String())
		f.SetCellValue(statementSheet, fmt.Sprintf("C%d", row), r.ReportingPeriod)
		f.SetCellValue(statementSheet, fmt.Sprintf("D%d", row), r.Revenue)
		f.SetCellValue(statementSheet, fmt.Sprintf("E%d", row), string(r.Contract.RoyaltyType))
		if r.Contract.RoyaltyRate != nil {
			f.SetCellValue(statementSheet, fmt.Sprintf("F%d", row), *r.Contract.RoyaltyRate)
		}
		f.SetCellValue(statementSheet, fmt.Sprintf("G%d", row), r.RoyaltyAmount)
		f.SetCellValue(statementSheet, fmt.Sprintf("H%d", row), string(r.Status))
		if r.PaidAt != nil {
			f.SetCellValue(statementSheet, fmt.Sprintf("I%d", row), utils.FormatDate(*r.PaidAt))
		}
		f.SetCellValue(statementSheet, fmt.Sprintf("J%d", row), r.PaymentReference)

		totalRevenue += r.Revenue
		totalRoyalty += r.RoyaltyAmount
	}

	totalRow := len(royalties) + 2
	f.SetCellValue(statementSheet, fmt.Sprintf("A%d", totalRow), "Total")
	f.SetCellValue(statementSheet, fmt.Sprintf("D%d", totalRow), math.Round(totalRevenue*100)/100)
	f.SetCellValue(statementSheet, fmt.Sprintf("G%d", totalRow), math.Round(totalRoyalty*100)/100)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write statement: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}

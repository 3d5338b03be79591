// internal/services/content_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/rights-backend/internal/models"
	"github.com/javajoker/rights-backend/internal/utils"
)

type ContentService struct {
	db     *gorm.DB
	status *StatusService
	audit  *AuditService
}

type ContentRequest struct {
	Title        string             `json:"title" validate:"required,max=255"`
	ContentType  models.ContentType `json:"content_type" validate:"required,content_type"`
	Description  string             `json:"description,omitempty"`
	Genre        string             `json:"genre,omitempty" validate:"omitempty,max=100"`
	ReleaseYear  *int               `json:"release_year,omitempty" validate:"omitempty,gte=1870,lte=2200"`
	RuntimeMins  *int               `json:"runtime_minutes,omitempty" validate:"omitempty,gt=0"`
	Season       *int               `json:"season,omitempty" validate:"omitempty,gt=0"`
	EpisodeCount *int               `json:"episode_count,omitempty" validate:"omitempty,gt=0"`
	Tags         []string           `json:"tags,omitempty" validate:"omitempty,dive,max=50"`
}

type ContentListFilter struct {
	utils.PaginationParams
	ContentType models.ContentType `json:"content_type,omitempty"`
	Genre       string             `json:"genre,omitempty"`
	Tag         string             `json:"tag,omitempty"`
}

type LinkContentRequest struct {
	ContentItemID uuid.UUID `json:"content_item_id" validate:"required"`
	Notes         string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

var contentSortFields = []string{"created_at", "updated_at", "title", "release_year", "content_type"}

func NewContentService(db *gorm.DB, status *StatusService, audit *AuditService) *ContentService {
	return &ContentService{
		db:     db,
		status: status,
		audit:  audit,
	}
}

// applyContentRequest writes req onto item. Season and episode count only
// apply to TV series and are dropped for every other type.
func applyContentRequest(item *models.ContentItem, req *ContentRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}

	item.Title = strings.TrimSpace(req.Title)
	item.ContentType = req.ContentType
	item.Description = req.Description
	item.Genre = strings.TrimSpace(req.Genre)
	item.ReleaseYear = req.ReleaseYear
	item.RuntimeMins = req.RuntimeMins
	item.Season = nil
	item.EpisodeCount = nil
	if req.ContentType == models.ContentTypeTVSeries {
		item.Season = req.Season
		item.EpisodeCount = req.EpisodeCount
	}

	tags := make(pq.StringArray, 0, len(req.Tags))
	for _, tag := range req.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	item.Tags = tags
	return nil
}

func (s *ContentService) CreateContent(ctx context.Context, actor Actor, req *ContentRequest) (*models.ContentItem, error) {
	item := &models.ContentItem{CreatedBy: actor.UserID}
	if err := applyContentRequest(item, req); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return fmt.Errorf("failed to create content: %w", err)
		}
		return s.audit.RecordTx(tx, actor.entry("content.create", "content", item.ID, nil, item))
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ContentService) GetContent(ctx context.Context, id uuid.UUID) (*models.ContentItem, error) {
	var item models.ContentItem
	if err := s.db.WithContext(ctx).Preload("Contracts.Contract").First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("content %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	today := s.status.Today()
	for i := range item.Contracts {
		if c := item.Contracts[i].Contract; c != nil {
			c.EffectiveStatus = DeriveStatus(c, today)
		}
	}
	return &item, nil
}

func (s *ContentService) UpdateContent(ctx context.Context, actor Actor, id uuid.UUID, req *ContentRequest) (*models.ContentItem, error) {
	var item models.ContentItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.findContent(tx, id)
		if err != nil {
			return err
		}
		before := *existing
		item = *existing

		if err := applyContentRequest(&item, req); err != nil {
			return err
		}
		if err := tx.Save(&item).Error; err != nil {
			return fmt.Errorf("failed to update content: %w", err)
		}
		return s.audit.RecordTx(tx, actor.entry("content.update", "content", item.ID, before, item))
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteContent removes the item and its contract links in one transaction.
func (s *ContentService) DeleteContent(ctx context.Context, actor Actor, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.findContent(tx, id)
		if err != nil {
			return err
		}

		if err := tx.Where("content_item_id = ?", id).Delete(&models.ContractContent{}).Error; err != nil {
			return fmt.Errorf("failed to unlink contracts: %w", err)
		}
		if err := tx.Delete(existing).Error; err != nil {
			return fmt.Errorf("failed to delete content: %w", err)
		}
		return s.audit.RecordTx(tx, actor.entry("content.delete", "content", id, existing, nil))
	})
}

func (s *ContentService) ListContent(ctx context.Context, filter ContentListFilter) ([]models.ContentItem, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.ContentItem{})

	if filter.ContentType != "" {
		query = query.Where("content_type = ?", filter.ContentType)
	}
	if filter.Genre != "" {
		query = query.Where("genre ILIKE ?", filter.Genre)
	}
	if filter.Tag != "" {
		query = query.Where("? = ANY(tags)", filter.Tag)
	}
	if filter.Search != "" {
		pattern := utils.LikePattern(filter.Search)
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count content: %w", err)
	}

	params := utils.NormalizePagination(filter.PaginationParams)
	query = utils.ApplySort(query, params, contentSortFields)
	query = utils.ApplyPagination(query, params)

	var items []models.ContentItem
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch content: %w", err)
	}
	return items, total, nil
}

// LinkContent attaches a content item to a contract. Re-linking updates the notes.
func (s *ContentService) LinkContent(ctx context.Context, actor Actor, contractID uuid.UUID, req *LinkContentRequest) (*models.ContractContent, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	link := &models.ContractContent{
		ContractID:    contractID,
		ContentItemID: req.ContentItemID,
		Notes:         req.Notes,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var contract models.Contract
		if err := tx.Select("id").First(&contract, "id = ?", contractID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("contract %s: %w", contractID, ErrNotFound)
			}
			return fmt.Errorf("database error: %w", err)
		}
		if _, err := s.findContent(tx, req.ContentItemID); err != nil {
			return err
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "contract_id"}, {Name: "content_item_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"notes"}),
		}).Create(link).Error; err != nil {
			return fmt.Errorf("failed to link content: %w", err)
		}
		return s.audit.RecordTx(tx, actor.entry("contract.link_content", "contract", contractID, nil, link))
	})
	if err != nil {
		return nil, err
	}
	return link, nil
}

func (s *ContentService) UnlinkContent(ctx context.Context, actor Actor, contractID, contentID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("contract_id = ? AND content_item_id = ?", contractID, contentID).
			Delete(&models.ContractContent{})
		if result.Error != nil {
			return fmt.Errorf("failed to unlink content: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("content link: %w", ErrNotFound)
		}
		return s.audit.RecordTx(tx, actor.entry("contract.unlink_content", "contract", contractID,
			models.JSONB{"content_item_id": contentID.String()}, nil))
	})
}

func (s *ContentService) ListContractContent(ctx context.Context, contractID uuid.UUID) ([]models.ContractContent, error) {
	var links []models.ContractContent
	if err := s.db.WithContext(ctx).
		Preload("ContentItem").
		Where("contract_id = ?", contractID).
		Order("created_at ASC").
		Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch contract content: %w", err)
	}
	return links, nil
}

func (s *ContentService) findContent(db *gorm.DB, id uuid.UUID) (*models.ContentItem, error) {
	var item models.ContentItem
	if err := db.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("content %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &item, nil
}

// internal/services/audit_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/rights-backend/internal/models"
	"github.com/javajoker/rights-backend/internal/utils"
)

type AuditService struct {
	db *gorm.DB
}

type AuditEntry struct {
	UserID     *uuid.UUID
	Action     string
	EntityType string
	EntityID   uuid.UUID
	OldValues  models.JSONB
	NewValues  models.JSONB
	IPAddress  string
}

type AuditFilter struct {
	utils.PaginationParams
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	EntityType string     `json:"entity_type,omitempty"`
	EntityID   *uuid.UUID `json:"entity_id,omitempty"`
	Action     string     `json:"action,omitempty"`
	From       *time.Time `json:"from,omitempty"`
	To         *time.Time `json:"to,omitempty"`
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

func (e AuditEntry) toModel() *models.AuditLog {
	return &models.AuditLog{
		UserID:     e.UserID,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		OldValues:  e.OldValues,
		NewValues:  e.NewValues,
		IPAddress:  e.IPAddress,
	}
}

// RecordTx appends an entry inside the caller's transaction.
func (s *AuditService) RecordTx(tx *gorm.DB, entry AuditEntry) error {
	if err := tx.Create(entry.toModel()).Error; err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// Record appends an entry outside any transaction. Failures are logged and
// do not fail the calling operation.
func (s *AuditService) Record(ctx context.Context, entry AuditEntry) {
	if s == nil || s.db == nil {
		return
	}
	if err := s.RecordTx(s.db.WithContext(ctx), entry); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"action":      entry.Action,
			"entity_type": entry.EntityType,
			"entity_id":   entry.EntityID,
		}).Error("Audit write failed")
	}
}

func (s *AuditService) List(ctx context.Context, filter AuditFilter) ([]models.AuditLog, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.AuditLog{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != nil {
		query = query.Where("entity_id = ?", *filter.EntityID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", filter.To.AddDate(0, 0, 1))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	var logs []models.AuditLog
	params := utils.NormalizePagination(filter.PaginationParams)
	if err := utils.ApplyPagination(query.Preload("User").Order("created_at DESC"), params).
		Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}

	return logs, total, nil
}

// snapshot captures the JSON form of v for before/after audit values.
func snapshot(v interface{}) models.JSONB {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out models.JSONB
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// Actor identifies who performed a mutation, for the audit trail.
type Actor struct {
	UserID    *uuid.UUID
	IPAddress string
}

func (a Actor) entry(action, entityType string, entityID uuid.UUID, oldValues, newValues interface{}) AuditEntry {
	return AuditEntry{
		UserID:     a.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		OldValues:  snapshot(oldValues),
		NewValues:  snapshot(newValues),
		IPAddress:  a.IPAddress,
	}
}

// internal/services/document_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/rights-backend/internal/models"
)

const downloadURLExpiry = 15 * time.Minute

type DocumentService struct {
	db      *gorm.DB
	storage *StorageService
	audit   *AuditService
}

type DocumentDownload struct {
	Document  *models.ContractDocument `json:"document"`
	URL       string                   `json:"url"`
	ExpiresAt *time.Time               `json:"expires_at,omitempty"`
}

func NewDocumentService(db *gorm.DB, storage *StorageService, audit *AuditService) *DocumentService {
	logStorageMode(storage)
	return &DocumentService{
		db:      db,
		storage: storage,
		audit:   audit,
	}
}

func (s *DocumentService) UploadDocument(ctx context.Context, actor Actor, contractID uuid.UUID, file io.Reader, fileName string, size int64) (*models.ContractDocument, error) {
	var contract models.Contract
	if err := s.db.WithContext(ctx).Select("id").First(&contract, "id = ?", contractID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("contract %s: %w", contractID, ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	result, err := s.storage.Upload(ctx, file, fileName, size, ContractDocumentOptions)
	if err != nil {
		verr := &ValidationError{}
		verr.add("file", "file", err.Error())
		return nil, verr
	}

	doc := &models.ContractDocument{
		ContractID: contractID,
		FileName:   fileName,
		StorageKey: result.Key,
		URL:        result.URL,
		Size:       result.Size,
		MimeType:   result.MimeType,
		UploadedBy: actor.UserID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return fmt.Errorf("failed to save document: %w", err)
		}
		return s.audit.RecordTx(tx, actor.entry("document.upload", "contract", contractID, nil, doc))
	})
	if err != nil {
		// Don't leave an orphaned object behind.
		_ = s.storage.DeleteFile(ctx, result.Key)
		return nil, err
	}
	return doc, nil
}

func (s *DocumentService) ListDocuments(ctx context.Context, contractID uuid.UUID) ([]models.ContractDocument, error) {
	var docs []models.ContractDocument
	if err := s.db.WithContext(ctx).Where("contract_id = ?", contractID).
		Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch documents: %w", err)
	}
	return docs, nil
}

func (s *DocumentService) GetDownload(ctx context.Context, contractID, id uuid.UUID) (*DocumentDownload, error) {
	doc, err := s.findDocument(ctx, contractID, id)
	if err != nil {
		return nil, err
	}

	url, expires, err := s.storage.DownloadURL(doc.StorageKey, doc.URL, downloadURLExpiry)
	if err != nil {
		return nil, err
	}
	return &DocumentDownload{Document: doc, URL: url, ExpiresAt: expires}, nil
}

func (s *DocumentService) DeleteDocument(ctx context.Context, actor Actor, contractID, id uuid.UUID) error {
	doc, err := s.findDocument(ctx, contractID, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(doc).Error; err != nil {
			return fmt.Errorf("failed to delete document: %w", err)
		}
		return s.audit.RecordTx(tx, actor.entry("document.delete", "contract", contractID, doc, nil))
	})
	if err != nil {
		return err
	}

	return s.storage.DeleteFile(ctx, doc.StorageKey)
}

func (s *DocumentService) findDocument(ctx context.Context, contractID, id uuid.UUID) (*models.ContractDocument, error) {
	var doc models.ContractDocument
	if err := s.db.WithContext(ctx).
		Where("id = ? AND contract_id = ?", id, contractID).
		First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &doc, nil
}

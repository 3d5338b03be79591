// internal/models/content.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type ContentItem struct {
	BaseModel
	Title        string         `json:"title" gorm:"size:255;not null;index"`
	ContentType  ContentType    `json:"content_type" gorm:"type:varchar(20);not null;index"`
	Description  string         `json:"description" gorm:"type:text"`
	Genre        string         `json:"genre" gorm:"size:100"`
	ReleaseYear  *int           `json:"release_year"`
	RuntimeMins  *int           `json:"runtime_minutes"`
	Season       *int           `json:"season,omitempty"`
	EpisodeCount *int           `json:"episode_count,omitempty"`
	Tags         pq.StringArray `json:"tags" gorm:"type:text[]"`
	CreatedBy    *uuid.UUID     `json:"created_by" gorm:"type:uuid"`

	// Relationships
	Contracts []ContractContent `json:"contracts,omitempty" gorm:"foreignKey:ContentItemID;constraint:OnDelete:CASCADE"`
}

// ContractContent links a contract to a catalog entry.
type ContractContent struct {
	ContractID    uuid.UUID `json:"contract_id" gorm:"type:uuid;primaryKey"`
	ContentItemID uuid.UUID `json:"content_item_id" gorm:"type:uuid;primaryKey"`
	Notes         string    `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt     time.Time `json:"created_at"`

	// Relationships
	Contract    *Contract    `json:"contract,omitempty" gorm:"foreignKey:ContractID"`
	ContentItem *ContentItem `json:"content_item,omitempty" gorm:"foreignKey:ContentItemID"`
}

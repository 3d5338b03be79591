// internal/models/admin.go
package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrAuditLogImmutable = errors.New("audit log entries are immutable")

// AuditLog is append-only; the hooks below refuse updates and deletes.
type AuditLog struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID     *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	Action     string     `json:"action" gorm:"size:100;not null;index"`
	EntityType string     `json:"entity_type" gorm:"size:50;not null;index"`
	EntityID   uuid.UUID  `json:"entity_id" gorm:"type:uuid;index"`
	OldValues  JSONB      `json:"old_values" gorm:"type:jsonb"`
	NewValues  JSONB      `json:"new_values" gorm:"type:jsonb"`
	IPAddress  string     `json:"ip_address,omitempty" gorm:"size:45"`
	CreatedAt  time.Time  `json:"created_at" gorm:"index"`

	// Relationships
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
}

func (a *AuditLog) BeforeUpdate(tx *gorm.DB) error {
	return ErrAuditLogImmutable
}

func (a *AuditLog) BeforeDelete(tx *gorm.DB) error {
	return ErrAuditLogImmutable
}

type Notification struct {
	BaseModel
	UserID              *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	Type                string     `json:"type" gorm:"type:varchar(50);not null;index"`
	Title               string     `json:"title" gorm:"size:255;not null"`
	Message             string     `json:"message" gorm:"type:text;not null"`
	Priority            string     `json:"priority" gorm:"type:varchar(20);default:'medium'"`
	Status              string     `json:"status" gorm:"type:varchar(20);default:'unread';index"`
	RelatedResourceType string     `json:"related_resource_type,omitempty" gorm:"size:50"`
	RelatedResourceID   *uuid.UUID `json:"related_resource_id" gorm:"type:uuid"`
	ReadAt              *time.Time `json:"read_at"`
}

// RolePermission grants one capability to one role.
type RolePermission struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	Role       UserRole   `json:"role" gorm:"type:varchar(20);not null;uniqueIndex:idx_role_capability"`
	Capability string     `json:"capability" gorm:"size:64;not null;uniqueIndex:idx_role_capability"`
	UpdatedBy  *uuid.UUID `json:"updated_by" gorm:"type:uuid"`
	CreatedAt  time.Time  `json:"created_at"`
}

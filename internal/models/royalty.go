// internal/models/royalty.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Royalty struct {
	BaseModel
	ContractID       uuid.UUID     `json:"contract_id" gorm:"type:uuid;not null;index"`
	ReportingPeriod  string        `json:"reporting_period" gorm:"size:20;not null;index"`
	Revenue          float64       `json:"revenue" gorm:"type:decimal(14,2);not null"`
	RoyaltyAmount    float64       `json:"royalty_amount" gorm:"type:decimal(14,2);not null"`
	Status           RoyaltyStatus `json:"status" gorm:"type:varchar(20);default:'Pending';index"`
	Notes            string        `json:"notes,omitempty" gorm:"type:text"`
	ApprovedAt       *time.Time    `json:"approved_at"`
	ApprovedBy       *uuid.UUID    `json:"approved_by" gorm:"type:uuid"`
	PaidAt           *time.Time    `json:"paid_at"`
	PaymentReference string        `json:"payment_reference,omitempty" gorm:"size:255"`
	CreatedBy        *uuid.UUID    `json:"created_by" gorm:"type:uuid"`

	// Relationships
	Contract Contract `json:"contract,omitempty" gorm:"foreignKey:ContractID"`
}

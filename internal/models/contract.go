// internal/models/contract.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Contract struct {
	BaseModel
	Partner            string             `json:"partner" gorm:"size:255;not null;index"`
	Licensor           string             `json:"licensor" gorm:"size:255"`
	Licensee           string             `json:"licensee" gorm:"size:255"`
	Territory          string             `json:"territory" gorm:"type:text"`
	Platform           string             `json:"platform" gorm:"type:text"`
	StartDate          time.Time          `json:"start_date" gorm:"type:date;not null"`
	EndDate            *time.Time         `json:"end_date" gorm:"type:date"`
	AutoRenew          bool               `json:"auto_renew" gorm:"default:false"`
	RoyaltyType        RoyaltyType        `json:"royalty_type" gorm:"type:varchar(20)"`
	RoyaltyRate        *float64           `json:"royalty_rate" gorm:"type:decimal(5,2)"`
	FlatFeeAmount      *float64           `json:"flat_fee_amount" gorm:"type:decimal(12,2)"`
	MinimumPayment     *float64           `json:"minimum_payment" gorm:"type:decimal(12,2)"`
	PaymentTerms       PaymentTerms       `json:"payment_terms" gorm:"type:varchar(10)"`
	ReportingFrequency ReportingFrequency `json:"reporting_frequency" gorm:"type:varchar(20);default:'None'"`
	Exclusivity        Exclusivity        `json:"exclusivity" gorm:"type:varchar(20);not null;index"`
	Status             ContractStatus     `json:"status" gorm:"type:varchar(20);default:'Active';index"`
	ParentContractID   *uuid.UUID         `json:"parent_contract_id" gorm:"type:uuid;index"`
	Notes              string             `json:"notes,omitempty" gorm:"type:text"`
	CreatedBy          *uuid.UUID         `json:"created_by" gorm:"type:uuid"`

	// Derived at read time, never persisted.
	EffectiveStatus ContractStatus `json:"effective_status,omitempty" gorm:"-"`

	// Relationships
	Parent     *Contract          `json:"parent,omitempty" gorm:"foreignKey:ParentContractID"`
	Amendments []Contract         `json:"amendments,omitempty" gorm:"foreignKey:ParentContractID"`
	Contents   []ContractContent  `json:"contents,omitempty" gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE"`
	Documents  []ContractDocument `json:"documents,omitempty" gorm:"foreignKey:ContractID"`
}

type ContractDocument struct {
	BaseModel
	ContractID uuid.UUID  `json:"contract_id" gorm:"type:uuid;not null;index"`
	FileName   string     `json:"file_name" gorm:"size:255;not null"`
	StorageKey string     `json:"storage_key" gorm:"size:512;not null"`
	URL        string     `json:"url" gorm:"type:text"`
	Size       int64      `json:"size"`
	MimeType   string     `json:"mime_type" gorm:"size:100"`
	UploadedBy *uuid.UUID `json:"uploaded_by" gorm:"type:uuid"`
}

// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type ContractStatus string

const (
	ContractStatusActive       ContractStatus = "Active"
	ContractStatusExpired      ContractStatus = "Expired"
	ContractStatusInPerpetuity ContractStatus = "In Perpetuity"
	ContractStatusTerminated   ContractStatus = "Terminated"
)

// LiveContractStatuses are the statuses under which a contract still encumbers rights.
var LiveContractStatuses = []ContractStatus{ContractStatusActive, ContractStatusInPerpetuity}

func (s ContractStatus) IsLive() bool {
	return s == ContractStatusActive || s == ContractStatusInPerpetuity
}

type Exclusivity string

const (
	ExclusivityExclusive        Exclusivity = "Exclusive"
	ExclusivityNonExclusive     Exclusivity = "Non-Exclusive"
	ExclusivityLimitedExclusive Exclusivity = "Limited Exclusive"
)

type RoyaltyType string

const (
	RoyaltyTypeRevenueShare RoyaltyType = "Revenue Share"
	RoyaltyTypeFlatFee      RoyaltyType = "Flat Fee"
)

type PaymentTerms string

const (
	PaymentTermsNet30 PaymentTerms = "Net 30"
	PaymentTermsNet60 PaymentTerms = "Net 60"
	PaymentTermsNet90 PaymentTerms = "Net 90"
)

type ReportingFrequency string

const (
	ReportingFrequencyNone      ReportingFrequency = "None"
	ReportingFrequencyMonthly   ReportingFrequency = "Monthly"
	ReportingFrequencyQuarterly ReportingFrequency = "Quarterly"
	ReportingFrequencyAnnually  ReportingFrequency = "Annually"
)

type ContentType string

const (
	ContentTypeFilm      ContentType = "Film"
	ContentTypeTVSeries  ContentType = "TV Series"
	ContentTypeTBNFAST   ContentType = "TBN FAST"
	ContentTypeTBNLinear ContentType = "TBN Linear"
	ContentTypeWoFFAST   ContentType = "WoF FAST"
)

type RoyaltyStatus string

const (
	RoyaltyStatusPending  RoyaltyStatus = "Pending"
	RoyaltyStatusApproved RoyaltyStatus = "Approved"
	RoyaltyStatusPaid     RoyaltyStatus = "Paid"
)

type UserRole string

const (
	UserRoleAdmin        UserRole = "Admin"
	UserRoleLegal        UserRole = "Legal"
	UserRoleFinance      UserRole = "Finance"
	UserRoleSalesManager UserRole = "Sales Manager"
	UserRoleSales        UserRole = "Sales"
)

var AllUserRoles = []UserRole{
	UserRoleAdmin,
	UserRoleLegal,
	UserRoleFinance,
	UserRoleSalesManager,
	UserRoleSales,
}

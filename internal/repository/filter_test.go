package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/javajoker/rights-backend/internal/models"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func datePtr(s string) *time.Time {
	t := date(s)
	return &t
}

func TestContractFilterMatches(t *testing.T) {
	contract := models.Contract{
		Partner:     "Acme",
		Territory:   "US, Canada",
		Platform:    "SVOD, AVOD",
		StartDate:   date("2025-01-01"),
		EndDate:     datePtr("2025-12-31"),
		Exclusivity: models.ExclusivityExclusive,
		Status:      models.ContractStatusActive,
	}

	tests := []struct {
		name   string
		filter ContractFilter
		want   bool
	}{
		{"empty filter", ContractFilter{}, true},
		{"exact partner", ContractFilter{Partner: "Acme"}, true},
		{"partner is not a substring match", ContractFilter{Partner: "Acm"}, false},
		{"territory substring", ContractFilter{Territory: "us"}, true},
		{"second territory", ContractFilter{Territory: "Canada"}, true},
		{"territory miss", ContractFilter{Territory: "UK"}, false},
		{"platform substring", ContractFilter{Platform: "avod"}, true},
		{"platform miss", ContractFilter{Platform: "FAST"}, false},
		{"live statuses", ContractFilter{Statuses: models.LiveContractStatuses}, true},
		{"other status", ContractFilter{Statuses: []models.ContractStatus{models.ContractStatusTerminated}}, false},
		{"exclusivity", ContractFilter{Exclusivity: models.ExclusivityNonExclusive}, false},
		{"overlapping window", ContractFilter{WindowStart: datePtr("2025-06-01"), WindowEnd: datePtr("2026-06-01")}, true},
		{"window touching start", ContractFilter{WindowStart: datePtr("2024-01-01"), WindowEnd: datePtr("2025-01-01")}, true},
		{"window touching end", ContractFilter{WindowStart: datePtr("2025-12-31"), WindowEnd: datePtr("2026-01-31")}, true},
		{"window before", ContractFilter{WindowStart: datePtr("2024-01-01"), WindowEnd: datePtr("2024-12-31")}, false},
		{"window after", ContractFilter{WindowStart: datePtr("2026-01-01"), WindowEnd: datePtr("2026-12-31")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(&contract))
		})
	}
}

func TestContractFilterOpenEndedContract(t *testing.T) {
	contract := models.Contract{
		Partner:   "Acme",
		StartDate: date("2020-01-01"),
		AutoRenew: true,
	}

	filter := ContractFilter{WindowStart: datePtr("2030-01-01"), WindowEnd: datePtr("2030-12-31")}
	assert.True(t, filter.Matches(&contract))
}

func TestContractFilterUnsetStatusReadsAsActive(t *testing.T) {
	contract := models.Contract{Partner: "Acme", StartDate: date("2025-01-01"), AutoRenew: true}

	assert.True(t, ContractFilter{Statuses: models.LiveContractStatuses}.Matches(&contract))
	assert.False(t, ContractFilter{Statuses: []models.ContractStatus{models.ContractStatusExpired}}.Matches(&contract))
}

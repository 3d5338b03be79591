// internal/repository/filter.go
package repository

import (
	"slices"
	"strings"
	"time"

	"github.com/javajoker/rights-backend/internal/models"
	"github.com/javajoker/rights-backend/internal/utils"
)

// ContractFilter selects contracts by partner, lifecycle, grant scope and
// date window. Zero-valued fields do not filter.
type ContractFilter struct {
	// Partner is matched exactly.
	Partner string
	// Territory and Platform are case-insensitive substring matches against
	// the stored (possibly comma-joined) field.
	Territory   string
	Platform    string
	Exclusivity models.Exclusivity
	Statuses    []models.ContractStatus
	// WindowStart/WindowEnd select contracts overlapping [WindowStart, WindowEnd].
	// An existing contract with no end date extends indefinitely.
	WindowStart *time.Time
	WindowEnd   *time.Time
}

// Matches reports whether c satisfies the filter. The SQL built by the gorm
// repository must agree with this predicate.
func (f ContractFilter) Matches(c *models.Contract) bool {
	if f.Partner != "" && c.Partner != f.Partner {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, storedStatus(c)) {
		return false
	}
	if f.Exclusivity != "" && c.Exclusivity != f.Exclusivity {
		return false
	}
	if f.Territory != "" && !containsFold(c.Territory, f.Territory) {
		return false
	}
	if f.Platform != "" && !containsFold(c.Platform, f.Platform) {
		return false
	}
	if f.WindowEnd != nil && utils.DateOnly(c.StartDate).After(utils.DateOnly(*f.WindowEnd)) {
		return false
	}
	if f.WindowStart != nil && c.EndDate != nil && utils.DateOnly(*c.EndDate).Before(utils.DateOnly(*f.WindowStart)) {
		return false
	}
	return true
}

func containsFold(field, needle string) bool {
	return strings.Contains(strings.ToLower(field), strings.ToLower(needle))
}

func storedStatus(c *models.Contract) models.ContractStatus {
	if c.Status == "" {
		return models.ContractStatusActive
	}
	return c.Status
}

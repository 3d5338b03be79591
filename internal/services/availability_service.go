// internal/services/availability_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/javajoker/rights-backend/internal/config"
	"github.com/javajoker/rights-backend/internal/metrics"
	"github.com/javajoker/rights-backend/internal/models"
	"github.com/javajoker/rights-backend/internal/repository"
	"github.com/javajoker/rights-backend/internal/utils"
)

type AvailabilityService struct {
	repo            repository.ContractRepository
	status          *StatusService
	territories     []string
	platforms       []string
	splitMultiValue bool
}

type AvailabilityRequest struct {
	Partner   string `json:"partner" validate:"required"`
	Territory string `json:"territory,omitempty"`
	Platform  string `json:"platform,omitempty"`
	StartDate string `json:"start_date" validate:"required,iso_date"`
	EndDate   string `json:"end_date" validate:"required,iso_date"`
}

// Suggestions are territories and platforms not encumbered by an exclusive
// grant for the same partner and window. Empty slices are meaningful.
type Suggestions struct {
	Territories []string `json:"territories"`
	Platforms   []string `json:"platforms"`
}

type AvailabilityResult struct {
	Available   bool              `json:"available"`
	Conflicts   []models.Contract `json:"conflicts"`
	Suggestions *Suggestions      `json:"suggestions,omitempty"`
}

func NewAvailabilityService(repo repository.ContractRepository, status *StatusService, cfg config.AvailabilityConfig) *AvailabilityService {
	territories := cfg.Territories
	if len(territories) == 0 {
		territories = config.DefaultTerritories
	}
	platforms := cfg.Platforms
	if len(platforms) == 0 {
		platforms = config.DefaultPlatforms
	}

	return &AvailabilityService{
		repo:            repo,
		status:          status,
		territories:     territories,
		platforms:       platforms,
		splitMultiValue: cfg.SplitMultiValue,
	}
}

func (r *AvailabilityRequest) normalize() {
	r.Partner = strings.TrimSpace(r.Partner)
	r.Territory = strings.TrimSpace(r.Territory)
	r.Platform = strings.TrimSpace(r.Platform)
	r.StartDate = strings.TrimSpace(r.StartDate)
	r.EndDate = strings.TrimSpace(r.EndDate)
}

func (r *AvailabilityRequest) validate() error {
	verr := &ValidationError{}
	if err := validateRequest(r); err != nil {
		if !errors.As(err, &verr) {
			return err
		}
	}

	// Fixed-width ISO dates order lexically.
	if !verr.hasField("start_date") && !verr.hasField("end_date") && r.StartDate > r.EndDate {
		verr.add("end_date", "date_order", "end_date must not be before start_date")
	}
	return verr.errOrNil()
}

// CheckAvailability reports whether the partner can be granted the requested
// territory and platform for the window. Any overlapping live grant blocks
// the request; an exclusive one additionally yields suggestions.
func (s *AvailabilityService) CheckAvailability(ctx context.Context, req *AvailabilityRequest) (*AvailabilityResult, error) {
	req.normalize()
	if err := req.validate(); err != nil {
		return nil, err
	}

	start, _ := utils.ParseDate(req.StartDate)
	end, _ := utils.ParseDate(req.EndDate)
	today := s.status.Today()

	conflicts, err := s.liveContracts(ctx, repository.ContractFilter{
		Partner:     req.Partner,
		Territory:   req.Territory,
		Platform:    req.Platform,
		Statuses:    models.LiveContractStatuses,
		WindowStart: &start,
		WindowEnd:   &end,
	}, today)
	if err != nil {
		metrics.ObserveAvailability(metrics.OutcomeError)
		return nil, fmt.Errorf("failed to check availability: %w", err)
	}

	result := &AvailabilityResult{
		Available: len(conflicts) == 0,
		Conflicts: conflicts,
	}

	if !hasExclusive(conflicts) {
		if result.Available {
			metrics.ObserveAvailability(metrics.OutcomeAvailable)
		} else {
			metrics.ObserveAvailability(metrics.OutcomeConflict)
		}
		return result, nil
	}

	suggestions, err := s.suggest(ctx, req.Partner, start, end, today)
	if err != nil {
		metrics.ObserveAvailability(metrics.OutcomeError)
		return nil, fmt.Errorf("failed to check availability: %w", err)
	}
	result.Suggestions = suggestions
	metrics.ObserveAvailability(metrics.OutcomeExclusiveConflict)

	return result, nil
}

// liveContracts narrows the repository's stored-status match to contracts
// whose derived status is live on today.
func (s *AvailabilityService) liveContracts(ctx context.Context, filter repository.ContractFilter, today time.Time) ([]models.Contract, error) {
	found, err := s.repo.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	live := make([]models.Contract, 0, len(found))
	for _, c := range found {
		effective := DeriveStatus(&c, today)
		if !effective.IsLive() {
			continue
		}
		c.EffectiveStatus = effective
		live = append(live, c)
	}
	return live, nil
}

func (s *AvailabilityService) suggest(ctx context.Context, partner string, start, end, today time.Time) (*Suggestions, error) {
	exclusive, err := s.liveContracts(ctx, repository.ContractFilter{
		Partner:     partner,
		Exclusivity: models.ExclusivityExclusive,
		Statuses:    models.LiveContractStatuses,
		WindowStart: &start,
		WindowEnd:   &end,
	}, today)
	if err != nil {
		return nil, err
	}

	territories := make([]string, 0, len(exclusive))
	platforms := make([]string, 0, len(exclusive))
	for _, c := range exclusive {
		territories = append(territories, s.tokens(c.Territory)...)
		platforms = append(platforms, s.tokens(c.Platform)...)
	}

	return &Suggestions{
		Territories: s.remaining(s.territories, territories),
		Platforms:   s.remaining(s.platforms, platforms),
	}, nil
}

// tokens returns the encumbered values a stored field contributes. By default
// the whole field is one token, so "US, Canada" never matches "US".
func (s *AvailabilityService) tokens(field string) []string {
	if !s.splitMultiValue {
		return []string{field}
	}

	var tokens []string
	for _, part := range strings.Split(field, ",") {
		if part = strings.TrimSpace(part); part != "" {
			tokens = append(tokens, part)
		}
	}
	return tokens
}

func (s *AvailabilityService) remaining(universe, encumbered []string) []string {
	result := make([]string, 0, len(universe))
	for _, candidate := range universe {
		if !s.contains(encumbered, candidate) {
			result = append(result, candidate)
		}
	}
	return result
}

func (s *AvailabilityService) contains(values []string, candidate string) bool {
	for _, v := range values {
		if v == candidate || (s.splitMultiValue && strings.EqualFold(v, candidate)) {
			return true
		}
	}
	return false
}

func hasExclusive(contracts []models.Contract) bool {
	for _, c := range contracts {
		if c.Exclusivity == models.ExclusivityExclusive {
			return true
		}
	}
	return false
}

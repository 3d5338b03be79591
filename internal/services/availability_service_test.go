package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/javajoker/rights-backend/internal/config"
	"github.com/javajoker/rights-backend/internal/models"
	"github.com/javajoker/rights-backend/internal/repository"
)

type AvailabilityServiceTestSuite struct {
	suite.Suite
	repo    *repository.MemoryContractRepository
	service *AvailabilityService
}

func (suite *AvailabilityServiceTestSuite) SetupTest() {
	suite.repo = repository.NewMemoryContractRepository()
	suite.service = suite.newService(false)
}

func (suite *AvailabilityServiceTestSuite) newService(split bool) *AvailabilityService {
	return NewAvailabilityService(suite.repo, fixedStatus(suite.repo, "2025-06-01"), config.AvailabilityConfig{
		Territories:     config.DefaultTerritories,
		Platforms:       config.DefaultPlatforms,
		SplitMultiValue: split,
	})
}

func (suite *AvailabilityServiceTestSuite) check(req AvailabilityRequest) *AvailabilityResult {
	result, err := suite.service.CheckAvailability(context.Background(), &req)
	suite.Require().NoError(err)
	return result
}

func acmeUSSVOD2025() AvailabilityRequest {
	return AvailabilityRequest{
		Partner:   "Acme",
		Territory: "US",
		Platform:  "SVOD",
		StartDate: "2025-01-01",
		EndDate:   "2025-12-31",
	}
}

func (suite *AvailabilityServiceTestSuite) TestEmptyCatalogueIsAvailable() {
	result := suite.check(acmeUSSVOD2025())

	suite.True(result.Available)
	suite.NotNil(result.Conflicts)
	suite.Empty(result.Conflicts)
	suite.Nil(result.Suggestions)

	raw, err := json.Marshal(result)
	suite.Require().NoError(err)
	suite.JSONEq(`{"available":true,"conflicts":[]}`, string(raw))
}

func (suite *AvailabilityServiceTestSuite) TestNonOverlappingDatesAreIgnored() {
	suite.repo.Put(contract("Acme", "US", "SVOD", models.ExclusivityExclusive, "2020-01-01", "2020-12-31"))

	result := suite.check(acmeUSSVOD2025())

	suite.True(result.Available)
	suite.Empty(result.Conflicts)
}

func (suite *AvailabilityServiceTestSuite) TestExclusiveConflictSuggestsAlternatives() {
	existing := suite.repo.Put(contract("Acme", "US", "SVOD", models.ExclusivityExclusive, "2025-01-01", "2025-12-31"))

	result := suite.check(acmeUSSVOD2025())

	suite.False(result.Available)
	suite.Require().Len(result.Conflicts, 1)
	suite.Equal(existing.ID, result.Conflicts[0].ID)
	suite.Equal(models.ContractStatusActive, result.Conflicts[0].EffectiveStatus)
	suite.Require().NotNil(result.Suggestions)
	suite.Equal([]string{"Global", "Canada", "UK"}, result.Suggestions.Territories)
	suite.Equal([]string{"TVOD", "AVOD", "FAST", "Linear"}, result.Suggestions.Platforms)
}

func (suite *AvailabilityServiceTestSuite) TestNonExclusiveConflictHasNoSuggestions() {
	suite.repo.Put(contract("Acme", "US", "SVOD", models.ExclusivityNonExclusive, "2025-01-01", "2025-12-31"))

	result := suite.check(acmeUSSVOD2025())

	suite.False(result.Available)
	suite.Len(result.Conflicts, 1)
	suite.Nil(result.Suggestions)

	raw, err := json.Marshal(result)
	suite.Require().NoError(err)
	suite.NotContains(string(raw), "suggestions")
}

func (suite *AvailabilityServiceTestSuite) TestLimitedExclusiveDoesNotTriggerSuggestions() {
	suite.repo.Put(contract("Acme", "US", "SVOD", models.ExclusivityLimitedExclusive, "2025-01-01", "2025-12-31"))

	result := suite.check(acmeUSSVOD2025())

	suite.False(result.Available)
	suite.Nil(result.Suggestions)
}

func (suite *AvailabilityServiceTestSuite) TestOtherPartnersNeverConflict() {
	suite.repo.Put(contract("Globex", "US", "SVOD", models.ExclusivityExclusive, "2025-01-01", "2025-12-31"))
	suite.repo.Put(contract("acme", "US", "SVOD", models.ExclusivityExclusive, "2025-01-01", "2025-12-31"))

	result := suite.check(acmeUSSVOD2025())

	suite.True(result.Available)
	suite.Empty(result.Conflicts)
}

func (suite *AvailabilityServiceTestSuite) TestTerritorySubstringMatch() {
	suite.repo.Put(contract("Acme", "US, Canada", "SVOD", models.ExclusivityNonExclusive, "2025-01-01", "2025-12-31"))

	for _, territory := range []string{"US", "Canada", "canada"} {
		req := acmeUSSVOD2025()
		req.Territory = territory
		result := suite.check(req)
		suite.False(result.Available, territory)
		suite.Len(result.Conflicts, 1, territory)
	}

	req := acmeUSSVOD2025()
	req.Territory = "UK"
	suite.True(suite.check(req).Available)
}

func (suite *AvailabilityServiceTestSuite) TestOmittedFiltersMatchAnyScope() {
	suite.repo.Put(contract("Acme", "UK", "FAST", models.ExclusivityNonExclusive, "2025-01-01", "2025-12-31"))

	req := acmeUSSVOD2025()
	req.Territory = ""
	req.Platform = ""
	suite.False(suite.check(req).Available)

	req.Platform = "SVOD"
	suite.True(suite.check(req).Available)
}

func (suite *AvailabilityServiceTestSuite) TestOpenEndedAutoRenewConflicts() {
	renewing := contract("Acme", "US", "SVOD", models.ExclusivityNonExclusive, "2019-01-01", "")
	renewing.AutoRenew = true
	suite.repo.Put(renewing)

	req := acmeUSSVOD2025()
	req.StartDate, req.EndDate = "2040-01-01", "2040-12-31"
	suite.False(suite.check(req).Available)
}

func (suite *AvailabilityServiceTestSuite) TestUsesDerivedStatus() {
	// Stored Active but ended before today: not yet reconciled.
	suite.repo.Put(contract("Acme", "US", "SVOD", models.ExclusivityExclusive, "2025-01-01", "2025-03-31"))
	terminated := contract("Acme", "US", "SVOD", models.ExclusivityExclusive, "2025-01-01", "2025-12-31")
	terminated.Status = models.ContractStatusTerminated
	suite.repo.Put(terminated)

	result := suite.check(acmeUSSVOD2025())

	suite.True(result.Available)
	suite.Empty(result.Conflicts)
}

func (suite *AvailabilityServiceTestSuite) TestPerpetualContractConflicts() {
	perpetual := contract("Acme", "US", "SVOD", models.ExclusivityExclusive, "2010-01-01", "2011-01-01")
	perpetual.Status = models.ContractStatusInPerpetuity
	perpetual.EndDate = nil
	suite.repo.Put(perpetual)

	result := suite.check(acmeUSSVOD2025())

	suite.False(result.Available)
	suite.Require().NotNil(result.Suggestions)
	suite.Equal(models.ContractStatusInPerpetuity, result.Conflicts[0].EffectiveStatus)
}

func (suite *AvailabilityServiceTestSuite) TestSuggestionsScanBeyondRequestedScope() {
	suite.repo.Put(contract("Acme", "US", "SVOD", models.ExclusivityExclusive, "2025-01-01", "2025-12-31"))
	suite.repo.Put(contract("Acme", "UK", "FAST", models.ExclusivityExclusive, "2025-06-01", "2026-06-01"))
	suite.repo.Put(contract("Acme", "Canada", "AVOD", models.ExclusivityNonExclusive, "2025-01-01", "2025-12-31"))

	result := suite.check(acmeUSSVOD2025())

	suite.Require().NotNil(result.Suggestions)
	suite.Equal([]string{"Global", "Canada"}, result.Suggestions.Territories)
	suite.Equal([]string{"TVOD", "AVOD", "Linear"}, result.Suggestions.Platforms)
}

func (suite *AvailabilityServiceTestSuite) TestMultiValueFieldsAreOneTokenByDefault() {
	suite.repo.Put(contract("Acme", "US, Canada", "SVOD, AVOD", models.ExclusivityExclusive, "2025-01-01", "2025-12-31"))

	result := suite.check(acmeUSSVOD2025())

	suite.Require().NotNil(result.Suggestions)
	suite.Equal(config.DefaultTerritories, result.Suggestions.Territories)
	suite.Equal(config.DefaultPlatforms, result.Suggestions.Platforms)
}

func (suite *AvailabilityServiceTestSuite) TestSplitMultiValueExcludesEachToken() {
	suite.service = suite.newService(true)
	suite.repo.Put(contract("Acme", "US, canada", "SVOD, AVOD", models.ExclusivityExclusive, "2025-01-01", "2025-12-31"))

	result := suite.check(acmeUSSVOD2025())

	suite.Require().NotNil(result.Suggestions)
	suite.Equal([]string{"Global", "UK"}, result.Suggestions.Territories)
	suite.Equal([]string{"TVOD", "FAST", "Linear"}, result.Suggestions.Platforms)
}

func (suite *AvailabilityServiceTestSuite) TestEmptySuggestionsAreValid() {
	suite.repo.Put(contract("Acme", "Global", "SVOD", models.ExclusivityExclusive, "2025-01-01", "2025-12-31"))
	suite.repo.Put(contract("Acme", "US", "TVOD", models.ExclusivityExclusive, "2025-01-01", "2025-12-31"))
	suite.repo.Put(contract("Acme", "Canada", "AVOD", models.ExclusivityExclusive, "2025-01-01", "2025-12-31"))
	suite.repo.Put(contract("Acme", "UK", "FAST", models.ExclusivityExclusive, "2025-01-01", "2025-12-31"))
	suite.repo.Put(contract("Acme", "UK", "Linear", models.ExclusivityExclusive, "2025-01-01", "2025-12-31"))

	req := acmeUSSVOD2025()
	req.Territory, req.Platform = "", ""
	result := suite.check(req)

	suite.Require().NotNil(result.Suggestions)
	suite.NotNil(result.Suggestions.Territories)
	suite.Empty(result.Suggestions.Territories)
	suite.Empty(result.Suggestions.Platforms)

	raw, err := json.Marshal(result.Suggestions)
	suite.Require().NoError(err)
	suite.JSONEq(`{"territories":[],"platforms":[]}`, string(raw))
}

func (suite *AvailabilityServiceTestSuite) TestValidationNamesEveryField() {
	req := AvailabilityRequest{Partner: "   ", StartDate: "2025-13-01", EndDate: "31/12/2025"}
	result, err := suite.service.CheckAvailability(context.Background(), &req)

	suite.Nil(result)
	var verr *ValidationError
	suite.Require().ErrorAs(err, &verr)

	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	suite.ElementsMatch([]string{"partner", "start_date", "end_date"}, fields)
}

func (suite *AvailabilityServiceTestSuite) TestValidationRejectsReversedWindow() {
	req := acmeUSSVOD2025()
	req.StartDate, req.EndDate = "2025-12-31", "2025-01-01"

	_, err := suite.service.CheckAvailability(context.Background(), &req)

	var verr *ValidationError
	suite.Require().ErrorAs(err, &verr)
	suite.Require().Len(verr.Fields, 1)
	suite.Equal("end_date", verr.Fields[0].Field)
}

func (suite *AvailabilityServiceTestSuite) TestSingleDayWindow() {
	suite.repo.Put(contract("Acme", "US", "SVOD", models.ExclusivityNonExclusive, "2025-12-31", "2026-12-31"))

	req := acmeUSSVOD2025()
	req.StartDate = "2025-12-31"
	suite.False(suite.check(req).Available)
}

func TestAvailabilityServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AvailabilityServiceTestSuite))
}

func TestAvailabilityPropagatesConflictQueryFailure(t *testing.T) {
	boom := errors.New("connection refused")
	repo := &flakyRepo{MemoryContractRepository: repository.NewMemoryContractRepository(), failAfter: 0, err: boom}
	service := NewAvailabilityService(repo, fixedStatus(repo, "2025-06-01"), config.AvailabilityConfig{})

	req := acmeUSSVOD2025()
	result, err := service.CheckAvailability(context.Background(), &req)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to check availability")
}

func TestAvailabilityPropagatesSuggestionQueryFailure(t *testing.T) {
	boom := errors.New("statement timeout")
	memory := repository.NewMemoryContractRepository(
		contract("Acme", "US", "SVOD", models.ExclusivityExclusive, "2025-01-01", "2025-12-31"),
	)
	repo := &flakyRepo{MemoryContractRepository: memory, failAfter: 1, err: boom}
	service := NewAvailabilityService(repo, fixedStatus(repo, "2025-06-01"), config.AvailabilityConfig{})

	req := acmeUSSVOD2025()
	result, err := service.CheckAvailability(context.Background(), &req)

	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, repo.calls)
}

func TestAvailabilityDefaultsUniverses(t *testing.T) {
	service := NewAvailabilityService(repository.NewMemoryContractRepository(), nil, config.AvailabilityConfig{})

	assert.Equal(t, config.DefaultTerritories, service.territories)
	assert.Equal(t, config.DefaultPlatforms, service.platforms)
	assert.False(t, service.splitMultiValue)
}

// internal/handlers/contract_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/javajoker/rights-backend/internal/config"
	"github.com/javajoker/rights-backend/internal/models"
	"github.com/javajoker/rights-backend/internal/repository"
	"github.com/javajoker/rights-backend/internal/services"
	"github.com/javajoker/rights-backend/internal/utils"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string                  `json:"code"`
		Details []utils.ValidationError `json:"details"`
	} `json:"error"`
}

type ContractHandlerTestSuite struct {
	suite.Suite
	repo   *repository.MemoryContractRepository
	router *gin.Engine
}

func (suite *ContractHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	suite.repo = repository.NewMemoryContractRepository()
	statusService := services.NewStatusService(suite.repo, nil)
	availabilityService := services.NewAvailabilityService(suite.repo, statusService, config.AvailabilityConfig{})
	handler := NewContractHandler(nil, availabilityService, statusService)

	suite.router = gin.New()
	suite.router.POST("/contracts/availability", handler.CheckAvailability)
	suite.router.POST("/contracts/reconcile", handler.ReconcileStatuses)
}

func (suite *ContractHandlerTestSuite) post(path string, body []byte) (*httptest.ResponseRecorder, envelope) {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var resp envelope
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func (suite *ContractHandlerTestSuite) putExclusive(partner, territory, platform string) {
	end := time.Date(2099, 12, 31, 0, 0, 0, 0, time.UTC)
	suite.repo.Put(models.Contract{
		Partner:     partner,
		Territory:   territory,
		Platform:    platform,
		Exclusivity: models.ExclusivityExclusive,
		Status:      models.ContractStatusActive,
		StartDate:   time.Date(2090, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     &end,
	})
}

func availabilityBody(partner string) []byte {
	body, _ := json.Marshal(map[string]string{
		"partner":    partner,
		"territory":  "US",
		"platform":   "SVOD",
		"start_date": "2095-01-01",
		"end_date":   "2095-12-31",
	})
	return body
}

func (suite *ContractHandlerTestSuite) TestAvailable() {
	w, resp := suite.post("/contracts/availability", availabilityBody("Acme"))

	suite.Equal(http.StatusOK, w.Code)
	suite.True(resp.Success)
	suite.JSONEq(`{"available":true,"conflicts":[]}`, string(resp.Data))
}

func (suite *ContractHandlerTestSuite) TestExclusiveConflict() {
	suite.putExclusive("Acme", "US", "SVOD")

	w, resp := suite.post("/contracts/availability", availabilityBody("Acme"))

	suite.Equal(http.StatusOK, w.Code)
	var result services.AvailabilityResult
	suite.Require().NoError(json.Unmarshal(resp.Data, &result))
	suite.False(result.Available)
	suite.Len(result.Conflicts, 1)
	suite.Require().NotNil(result.Suggestions)
	suite.Equal([]string{"Global", "Canada", "UK"}, result.Suggestions.Territories)
	suite.Equal([]string{"TVOD", "AVOD", "FAST", "Linear"}, result.Suggestions.Platforms)
}

func (suite *ContractHandlerTestSuite) TestOtherPartnerIsUnaffected() {
	suite.putExclusive("Globex", "US", "SVOD")

	_, resp := suite.post("/contracts/availability", availabilityBody("Acme"))

	suite.JSONEq(`{"available":true,"conflicts":[]}`, string(resp.Data))
}

func (suite *ContractHandlerTestSuite) TestValidationErrorListsFields() {
	w, resp := suite.post("/contracts/availability", []byte(`{"territory":"US","start_date":"2095-13-01"}`))

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.False(resp.Success)
	suite.Require().NotNil(resp.Error)
	suite.Equal("VALIDATION_ERROR", resp.Error.Code)

	fields := make([]string, 0, len(resp.Error.Details))
	for _, d := range resp.Error.Details {
		fields = append(fields, d.Field)
	}
	suite.Contains(fields, "partner")
	suite.Contains(fields, "start_date")
	suite.Contains(fields, "end_date")
}

func (suite *ContractHandlerTestSuite) TestMalformedBody() {
	w, resp := suite.post("/contracts/availability", []byte(`{"partner":`))

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Require().NotNil(resp.Error)
	suite.Equal("BAD_REQUEST", resp.Error.Code)
}

func (suite *ContractHandlerTestSuite) TestReconcile() {
	end := time.Date(2001, 1, 31, 0, 0, 0, 0, time.UTC)
	suite.repo.Put(models.Contract{
		Partner:     "Acme",
		Territory:   "US",
		Platform:    "SVOD",
		Exclusivity: models.ExclusivityNonExclusive,
		Status:      models.ContractStatusActive,
		StartDate:   time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     &end,
	})

	w, resp := suite.post("/contracts/reconcile", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"updated":1}`, string(resp.Data))

	_, resp = suite.post("/contracts/reconcile", nil)
	suite.JSONEq(`{"updated":0}`, string(resp.Data))
}

func TestContractHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ContractHandlerTestSuite))
}

func TestRespondErrorStatusCodes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", &services.ValidationError{Fields: []utils.ValidationError{{Field: "partner", Tag: "required"}}}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"not found", services.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"credentials", services.ErrInvalidCredentials, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", services.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"conflict", services.ErrConflict, http.StatusConflict, "CONFLICT"},
		{"transition", services.ErrInvalidTransition, http.StatusConflict, "CONFLICT"},
		{"integrity", services.ErrDataIntegrity, http.StatusUnprocessableEntity, "INTEGRITY_VIOLATION"},
		{"payments", services.ErrPaymentsDisabled, http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown", assert.AnError, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, tt.err, "contract.not_found")

			assert.Equal(t, tt.status, w.Code)
			var resp envelope
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			if assert.NotNil(t, resp.Error) {
				assert.Equal(t, tt.code, resp.Error.Code)
			}
		})
	}
}

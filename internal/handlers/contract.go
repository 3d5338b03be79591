// internal/handlers/contract.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/rights-backend/internal/i18n"
	"github.com/javajoker/rights-backend/internal/models"
	"github.com/javajoker/rights-backend/internal/services"
	"github.com/javajoker/rights-backend/internal/utils"
)

type ContractHandler struct {
	contractService     *services.ContractService
	availabilityService *services.AvailabilityService
	statusService       *services.StatusService
}

func NewContractHandler(contractService *services.ContractService, availabilityService *services.AvailabilityService, statusService *services.StatusService) *ContractHandler {
	return &ContractHandler{
		contractService:     contractService,
		availabilityService: availabilityService,
		statusService:       statusService,
	}
}

// GET /contracts
func (h *ContractHandler) ListContracts(c *gin.Context) {
	filter := services.ContractListFilter{
		PaginationParams: utils.GetPaginationParams(c),
		Partner:          c.Query("partner"),
		Status:           models.ContractStatus(c.Query("status")),
		Territory:        c.Query("territory"),
		Platform:         c.Query("platform"),
		Exclusivity:      models.Exclusivity(c.Query("exclusivity")),
	}

	contracts, total, err := h.contractService.ListContracts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, i18n.KeyContractNotFound)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(contracts, total, filter.PaginationParams))
}

// POST /contracts
func (h *ContractHandler) CreateContract(c *gin.Context) {
	var req services.ContractRequest
	if !bindJSON(c, &req) {
		return
	}

	contract, err := h.contractService.CreateContract(c.Request.Context(), actor(c), &req)
	if err != nil {
		respondError(c, err, i18n.KeyContractNotFound)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(utils.GetLangFromContext(c), i18n.KeyContractCreated),
		"contract": contract,
	})
}

// GET /contracts/:id
func (h *ContractHandler) GetContract(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	contract, err := h.contractService.GetContract(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, i18n.KeyContractNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{"contract": contract})
}

// PUT /contracts/:id
func (h *ContractHandler) UpdateContract(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req services.ContractRequest
	if !bindJSON(c, &req) {
		return
	}

	contract, err := h.contractService.UpdateContract(c.Request.Context(), actor(c), id, &req)
	if err != nil {
		respondError(c, err, i18n.KeyContractNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(utils.GetLangFromContext(c), i18n.KeyContractUpdated),
		"contract": contract,
	})
}

// POST /contracts/:id/terminate
func (h *ContractHandler) TerminateContract(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req services.TerminateContractRequest
	if !bindJSON(c, &req) {
		return
	}

	contract, err := h.contractService.TerminateContract(c.Request.Context(), actor(c), id, &req)
	if err != nil {
		respondError(c, err, i18n.KeyContractNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(utils.GetLangFromContext(c), i18n.KeyContractTerminated),
		"contract": contract,
	})
}

// DELETE /contracts/:id
func (h *ContractHandler) DeleteContract(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.contractService.DeleteContract(c.Request.Context(), actor(c), id); err != nil {
		respondError(c, err, i18n.KeyContractNotFound)
		return
	}

	messageResponse(c, i18n.KeyContractDeleted)
}

// POST /contracts/:id/amendments
func (h *ContractHandler) CreateAmendment(c *gin.Context) {
	parentID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req services.ContractRequest
	if !bindJSON(c, &req) {
		return
	}

	contract, err := h.contractService.CreateAmendment(c.Request.Context(), actor(c), parentID, &req)
	if err != nil {
		respondError(c, err, i18n.KeyContractNotFound)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(utils.GetLangFromContext(c), i18n.KeyContractCreated),
		"contract": contract,
	})
}

// GET /contracts/:id/chain
func (h *ContractHandler) GetAmendmentChain(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	chain, err := h.contractService.GetAmendmentChain(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, i18n.KeyContractNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{"contracts": chain})
}

// GET /contracts/summary
func (h *ContractHandler) GetStatusSummary(c *gin.Context) {
	summary, err := h.contractService.GetStatusSummary(c.Request.Context())
	if err != nil {
		respondError(c, err, i18n.KeyContractNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{"summary": summary})
}

// GET /contracts/expiring?days=30
func (h *ContractHandler) GetExpiringContracts(c *gin.Context) {
	days, _ := strconv.Atoi(c.Query("days"))

	contracts, err := h.contractService.GetExpiringContracts(c.Request.Context(), days)
	if err != nil {
		respondError(c, err, i18n.KeyContractNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{"contracts": contracts})
}

// POST /contracts/availability
func (h *ContractHandler) CheckAvailability(c *gin.Context) {
	var req services.AvailabilityRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.availabilityService.CheckAvailability(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, i18n.KeyAvailabilityFailed)
		return
	}

	utils.SuccessResponse(c, result)
}

// POST /contracts/reconcile
func (h *ContractHandler) ReconcileStatuses(c *gin.Context) {
	changed, err := h.statusService.ReconcileExpiredStatuses(c.Request.Context())
	if err != nil {
		respondError(c, err, i18n.KeyContractNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{"updated": changed})
}

// internal/handlers/royalty.go
package handlers

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/rights-backend/internal/i18n"
	"github.com/javajoker/rights-backend/internal/models"
	"github.com/javajoker/rights-backend/internal/services"
	"github.com/javajoker/rights-backend/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type RoyaltyHandler struct {
	royaltyService *services.RoyaltyService
}

func NewRoyaltyHandler(royaltyService *services.RoyaltyService) *RoyaltyHandler {
	return &RoyaltyHandler{
		royaltyService: royaltyService,
	}
}

func royaltyFilter(c *gin.Context) services.RoyaltyListFilter {
	filter := services.RoyaltyListFilter{
		PaginationParams: utils.GetPaginationParams(c),
		Partner:          c.Query("partner"),
		Status:           models.RoyaltyStatus(c.Query("status")),
		PeriodFrom:       c.Query("period_from"),
		PeriodTo:         c.Query("period_to"),
	}
	if contractID := c.Query("contract_id"); contractID != "" {
		if id, err := uuid.Parse(contractID); err == nil {
			filter.ContractID = &id
		}
	}
	return filter
}

// GET /royalties
func (h *RoyaltyHandler) ListRoyalties(c *gin.Context) {
	filter := royaltyFilter(c)

	royalties, total, err := h.royaltyService.ListRoyalties(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, i18n.KeyRoyaltyNotFound)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(royalties, total, filter.PaginationParams))
}

// POST /royalties
func (h *RoyaltyHandler) CreateRoyalty(c *gin.Context) {
	var req services.CreateRoyaltyRequest
	if !bindJSON(c, &req) {
		return
	}

	royalty, err := h.royaltyService.CreateRoyalty(c.Request.Context(), actor(c), &req)
	if err != nil {
		respondError(c, err, i18n.KeyContractNotFound)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyRoyaltyCreated),
		"royalty": royalty,
	})
}

// GET /royalties/:id
func (h *RoyaltyHandler) GetRoyalty(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	royalty, err := h.royaltyService.GetRoyalty(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, i18n.KeyRoyaltyNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{"royalty": royalty})
}

// POST /royalties/:id/approve
func (h *RoyaltyHandler) ApproveRoyalty(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	royalty, err := h.royaltyService.ApproveRoyalty(c.Request.Context(), actor(c), id)
	if err != nil {
		respondError(c, err, i18n.KeyRoyaltyNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyRoyaltyUpdated),
		"royalty": royalty,
	})
}

// POST /royalties/:id/pay
func (h *RoyaltyHandler) MarkPaid(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req services.MarkPaidRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	royalty, err := h.royaltyService.MarkPaid(c.Request.Context(), actor(c), id, &req)
	if err != nil {
		respondError(c, err, i18n.KeyRoyaltyNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyRoyaltyUpdated),
		"royalty": royalty,
	})
}

// GET /royalties/export
func (h *RoyaltyHandler) ExportStatement(c *gin.Context) {
	data, err := h.royaltyService.ExportStatement(c.Request.Context(), royaltyFilter(c))
	if err != nil {
		respondError(c, err, i18n.KeyRoyaltyNotFound)
		return
	}

	filename := fmt.Sprintf("royalty-statement-%s.xlsx", time.Now().Format("20060102"))
	utils.AttachmentResponse(c, filename, xlsxContentType, data)
}

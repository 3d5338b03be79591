// internal/handlers/content.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/rights-backend/internal/i18n"
	"github.com/javajoker/rights-backend/internal/models"
	"github.com/javajoker/rights-backend/internal/services"
	"github.com/javajoker/rights-backend/internal/utils"
)

type ContentHandler struct {
	contentService *services.ContentService
}

func NewContentHandler(contentService *services.ContentService) *ContentHandler {
	return &ContentHandler{
		contentService: contentService,
	}
}

// GET /content
func (h *ContentHandler) ListContent(c *gin.Context) {
	filter := services.ContentListFilter{
		PaginationParams: utils.GetPaginationParams(c),
		ContentType:      models.ContentType(c.Query("content_type")),
		Genre:            c.Query("genre"),
		Tag:              c.Query("tag"),
	}

	items, total, err := h.contentService.ListContent(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, i18n.KeyContentNotFound)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(items, total, filter.PaginationParams))
}

// POST /content
func (h *ContentHandler) CreateContent(c *gin.Context) {
	var req services.ContentRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.contentService.CreateContent(c.Request.Context(), actor(c), &req)
	if err != nil {
		respondError(c, err, i18n.KeyContentNotFound)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyContentCreated),
		"content": item,
	})
}

// GET /content/:id
func (h *ContentHandler) GetContent(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	item, err := h.contentService.GetContent(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, i18n.KeyContentNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{"content": item})
}

// PUT /content/:id
func (h *ContentHandler) UpdateContent(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req services.ContentRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.contentService.UpdateContent(c.Request.Context(), actor(c), id, &req)
	if err != nil {
		respondError(c, err, i18n.KeyContentNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyContentUpdated),
		"content": item,
	})
}

// DELETE /content/:id
func (h *ContentHandler) DeleteContent(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.contentService.DeleteContent(c.Request.Context(), actor(c), id); err != nil {
		respondError(c, err, i18n.KeyContentNotFound)
		return
	}

	messageResponse(c, i18n.KeyContentDeleted)
}

// GET /contracts/:id/content
func (h *ContentHandler) ListContractContent(c *gin.Context) {
	contractID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	links, err := h.contentService.ListContractContent(c.Request.Context(), contractID)
	if err != nil {
		respondError(c, err, i18n.KeyContractNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{"content": links})
}

// POST /contracts/:id/content
func (h *ContentHandler) LinkContent(c *gin.Context) {
	contractID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req services.LinkContentRequest
	if !bindJSON(c, &req) {
		return
	}

	link, err := h.contentService.LinkContent(c.Request.Context(), actor(c), contractID, &req)
	if err != nil {
		respondError(c, err, i18n.KeyContentNotFound)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyContentLinked),
		"link":    link,
	})
}

// DELETE /contracts/:id/content/:contentId
func (h *ContentHandler) UnlinkContent(c *gin.Context) {
	contractID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	contentID, ok := uuidParam(c, "contentId")
	if !ok {
		return
	}

	if err := h.contentService.UnlinkContent(c.Request.Context(), actor(c), contractID, contentID); err != nil {
		respondError(c, err, i18n.KeyContentNotFound)
		return
	}

	messageResponse(c, i18n.KeyContentUnlinked)
}

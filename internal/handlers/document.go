// internal/handlers/document.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/rights-backend/internal/i18n"
	"github.com/javajoker/rights-backend/internal/services"
	"github.com/javajoker/rights-backend/internal/utils"
)

type DocumentHandler struct {
	documentService *services.DocumentService
}

func NewDocumentHandler(documentService *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
	}
}

// POST /contracts/:id/documents (multipart field "file")
func (h *DocumentHandler) UploadDocument(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	contractID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "file"), err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "file"), err.Error())
		return
	}
	defer file.Close()

	doc, err := h.documentService.UploadDocument(c.Request.Context(), actor(c), contractID, file, fileHeader.Filename, fileHeader.Size)
	if err != nil {
		respondError(c, err, i18n.KeyContractNotFound)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyDocumentUploaded),
		"document": doc,
	})
}

// GET /contracts/:id/documents
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	contractID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	docs, err := h.documentService.ListDocuments(c.Request.Context(), contractID)
	if err != nil {
		respondError(c, err, i18n.KeyContractNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{"documents": docs})
}

// GET /contracts/:id/documents/:docId
func (h *DocumentHandler) GetDownload(c *gin.Context) {
	contractID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	docID, ok := uuidParam(c, "docId")
	if !ok {
		return
	}

	download, err := h.documentService.GetDownload(c.Request.Context(), contractID, docID)
	if err != nil {
		respondError(c, err, i18n.KeyDocumentNotFound)
		return
	}

	utils.SuccessResponse(c, download)
}

// DELETE /contracts/:id/documents/:docId
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	contractID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	docID, ok := uuidParam(c, "docId")
	if !ok {
		return
	}

	if err := h.documentService.DeleteDocument(c.Request.Context(), actor(c), contractID, docID); err != nil {
		respondError(c, err, i18n.KeyDocumentNotFound)
		return
	}

	messageResponse(c, i18n.KeyDocumentDeleted)
}

// internal/handlers/notification.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/rights-backend/internal/i18n"
	"github.com/javajoker/rights-backend/internal/services"
	"github.com/javajoker/rights-backend/internal/utils"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// GET /notifications?unread=true
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	notifications, err := h.notificationService.ListNotifications(c.Request.Context(), userID, c.Query("unread") == "true")
	if err != nil {
		respondError(c, err, i18n.KeyNotificationNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{"notifications": notifications})
}

// PUT /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.notificationService.MarkNotificationRead(c.Request.Context(), userID, id); err != nil {
		respondError(c, err, i18n.KeyNotificationNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{"id": id})
}

// internal/handlers/admin.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/rights-backend/internal/i18n"
	"github.com/javajoker/rights-backend/internal/models"
	"github.com/javajoker/rights-backend/internal/services"
	"github.com/javajoker/rights-backend/internal/utils"
)

type AdminHandler struct {
	adminService         *services.AdminService
	auditService         *services.AuditService
	authorizationService *services.AuthorizationService
}

func NewAdminHandler(adminService *services.AdminService, auditService *services.AuditService, authorizationService *services.AuthorizationService) *AdminHandler {
	return &AdminHandler{
		adminService:         adminService,
		auditService:         auditService,
		authorizationService: authorizationService,
	}
}

// GET /admin/dashboard/stats
func (h *AdminHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.adminService.GetDashboardStats(c.Request.Context())
	if err != nil {
		respondError(c, err, i18n.KeyContractNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{"stats": stats})
}

// GET /admin/audit-logs
func (h *AdminHandler) GetAuditLogs(c *gin.Context) {
	filter := services.AuditFilter{
		PaginationParams: utils.GetPaginationParams(c),
		EntityType:       c.Query("entity_type"),
		Action:           c.Query("action"),
	}
	if userID := c.Query("user_id"); userID != "" {
		if id, err := uuid.Parse(userID); err == nil {
			filter.UserID = &id
		}
	}
	if entityID := c.Query("entity_id"); entityID != "" {
		if id, err := uuid.Parse(entityID); err == nil {
			filter.EntityID = &id
		}
	}
	if from := c.Query("from"); from != "" {
		if t, err := utils.ParseDate(from); err == nil {
			filter.From = &t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := utils.ParseDate(to); err == nil {
			// Inclusive of the whole day.
			end := t.Add(24*time.Hour - time.Nanosecond)
			filter.To = &end
		}
	}

	logs, total, err := h.auditService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, i18n.KeyContractNotFound)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(logs, total, filter.PaginationParams))
}

// GET /admin/roles
func (h *AdminHandler) GetRoles(c *gin.Context) {
	roles := make(map[models.UserRole][]string, len(models.AllUserRoles))
	for _, role := range models.AllUserRoles {
		capabilities, err := h.authorizationService.RoleCapabilities(c.Request.Context(), role)
		if err != nil {
			respondError(c, err, i18n.KeyUserNotFound)
			return
		}
		roles[role] = capabilities
	}

	utils.SuccessResponse(c, gin.H{
		"roles":        roles,
		"capabilities": services.AllCapabilities,
	})
}

// PUT /admin/roles/:role
func (h *AdminHandler) SetRoleCapabilities(c *gin.Context) {
	role := models.UserRole(c.Param("role"))

	var req services.RoleCapabilitiesRequest
	if !bindJSON(c, &req) {
		return
	}

	capabilities, err := h.authorizationService.SetRoleCapabilities(c.Request.Context(), actor(c), role, &req)
	if err != nil {
		respondError(c, err, i18n.KeyUserNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{"role": role, "capabilities": capabilities})
}

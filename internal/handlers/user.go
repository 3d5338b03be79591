// internal/handlers/user.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/rights-backend/internal/i18n"
	"github.com/javajoker/rights-backend/internal/models"
	"github.com/javajoker/rights-backend/internal/services"
	"github.com/javajoker/rights-backend/internal/utils"
)

type UserHandler struct {
	userService *services.UserService
	authService *services.AuthService
}

func NewUserHandler(userService *services.UserService, authService *services.AuthService) *UserHandler {
	return &UserHandler{
		userService: userService,
		authService: authService,
	}
}

// GET /users
func (h *UserHandler) ListUsers(c *gin.Context) {
	filter := services.UserListFilter{
		PaginationParams: utils.GetPaginationParams(c),
		Role:             models.UserRole(c.Query("role")),
	}
	if active := c.Query("is_active"); active != "" {
		if v, err := strconv.ParseBool(active); err == nil {
			filter.IsActive = &v
		}
	}

	users, total, err := h.userService.ListUsers(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, i18n.KeyUserNotFound)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(users, total, filter.PaginationParams))
}

// GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, i18n.KeyUserNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{"user": user})
}

// POST /users/invite
func (h *UserHandler) InviteUser(c *gin.Context) {
	var req services.InviteUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.InviteUser(c.Request.Context(), actor(c), &req)
	if err != nil {
		respondError(c, err, i18n.KeyUserNotFound)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyUserInvited),
		"user":    user,
	})
}

// PUT /users/:id/role
func (h *UserHandler) UpdateRole(c *gin.Context) {
	userID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateRole(c.Request.Context(), actor(c), userID, &req)
	if err != nil {
		respondError(c, err, i18n.KeyUserNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyUserUpdated),
		"user":    user,
	})
}

// PUT /users/:id/status
func (h *UserHandler) SetActive(c *gin.Context) {
	userID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req services.SetActiveRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.SetActive(c.Request.Context(), actor(c), userID, &req)
	if err != nil {
		respondError(c, err, i18n.KeyUserNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyUserUpdated),
		"user":    user,
	})
}

// DELETE /users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), actor(c), userID); err != nil {
		respondError(c, err, i18n.KeyUserNotFound)
		return
	}

	messageResponse(c, i18n.KeyUserDeleted)
}

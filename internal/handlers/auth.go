// internal/handlers/auth.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/rights-backend/internal/i18n"
	"github.com/javajoker/rights-backend/internal/services"
	"github.com/javajoker/rights-backend/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
}

func NewAuthHandler(authService *services.AuthService, userService *services.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

func tokenResponse(c *gin.Context, messageKey string, resp *services.AuthResponse) {
	body := gin.H{
		"user":          resp.User,
		"token":         resp.AccessToken,
		"refresh_token": resp.RefreshToken,
		"token_type":    resp.TokenType,
		"expires_in":    resp.ExpiresIn,
	}
	if messageKey != "" {
		body["message"] = i18n.T(utils.GetLangFromContext(c), messageKey)
	}
	utils.SuccessResponse(c, body)
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	authResponse, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, i18n.KeyUserNotFound)
		return
	}

	tokenResponse(c, i18n.KeyAuthLoginSuccess, authResponse)
}

// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	// Tokens are stateless; the client discards them.
	messageResponse(c, i18n.KeyAuthLogoutSuccess)
}

// POST /auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	authResponse, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err, i18n.KeyUserNotFound)
		return
	}

	tokenResponse(c, "", authResponse)
}

// POST /auth/accept-invite
func (h *AuthHandler) AcceptInvite(c *gin.Context) {
	var req services.AcceptInviteRequest
	if !bindJSON(c, &req) {
		return
	}

	authResponse, err := h.authService.AcceptInvite(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, i18n.KeyUserNotFound)
		return
	}

	tokenResponse(c, i18n.KeyAuthInviteAccepted, authResponse)
}

// POST /auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req services.ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), &req); err != nil {
		respondError(c, err, i18n.KeyUserNotFound)
		return
	}

	// Same answer whether or not the account exists.
	messageResponse(c, i18n.KeyAuthResetRequested)
}

// POST /auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req services.ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), &req); err != nil {
		respondError(c, err, i18n.KeyUserNotFound)
		return
	}

	messageResponse(c, i18n.KeyAuthPasswordReset)
}

// GET /auth/me
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, i18n.KeyUserNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{"user": user})
}

// PUT /auth/me
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err, i18n.KeyUserNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyUserUpdated),
		"user":    user,
	})
}

// PUT /auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		respondError(c, err, i18n.KeyUserNotFound)
		return
	}

	messageResponse(c, i18n.KeyAuthPasswordReset)
}

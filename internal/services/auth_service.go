// internal/services/auth_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/rights-backend/internal/config"
	"github.com/javajoker/rights-backend/internal/models"
	"github.com/javajoker/rights-backend/internal/utils"
)

type AuthService struct {
	db            *gorm.DB
	cfg           *config.Config
	notifications *NotificationService
	audit         *AuditService
	now           func() time.Time
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type InviteUserRequest struct {
	Email string          `json:"email" validate:"required,email"`
	Name  string          `json:"name,omitempty" validate:"omitempty,max=255"`
	Role  models.UserRole `json:"role" validate:"required,user_role"`
}

type AcceptInviteRequest struct {
	Token    string `json:"token" validate:"required"`
	Name     string `json:"name,omitempty" validate:"omitempty,max=255"`
	Password string `json:"password" validate:"required,strong_password"`
}

type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,strong_password"`
}

func NewAuthService(db *gorm.DB, cfg *config.Config, notifications *NotificationService, audit *AuditService) *AuthService {
	return &AuthService{
		db:            db,
		cfg:           cfg,
		notifications: notifications,
		audit:         audit,
		now:           time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// InviteUser creates a user without a password and emails a one-time link.
func (s *AuthService) InviteUser(ctx context.Context, actor Actor, req *InviteUserRequest) (*models.User, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	token, hash, err := utils.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invite token: %w", err)
	}
	expires := s.now().Add(time.Duration(s.cfg.Auth.InviteTTL) * time.Hour)

	user := &models.User{
		Email:           req.Email,
		Name:            strings.TrimSpace(req.Name),
		Role:            req.Role,
		IsActive:        true,
		InviteTokenHash: hash,
		InviteExpiresAt: &expires,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Unscoped().Model(&models.User{}).Where("email = ?", req.Email).Count(&existing).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if existing > 0 {
			return fmt.Errorf("user with email %s: %w", req.Email, ErrConflict)
		}

		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return s.audit.RecordTx(tx, actor.entry("user.invite", "user", user.ID, nil, user))
	})
	if err != nil {
		return nil, err
	}

	go func() {
		if err := s.notifications.SendInviteEmail(user, token); err != nil {
			logrus.WithError(err).WithField("email", user.Email).Error("Failed to send invite email")
		}
	}()

	return user, nil
}

// AcceptInvite sets the first password of an invited user and signs them in.
func (s *AuthService) AcceptInvite(ctx context.Context, req *AcceptInviteRequest) (*AuthResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("invite_token_hash = ?", utils.HashString(req.Token)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if user.InviteExpiresAt == nil || s.now().After(*user.InviteExpiresAt) || !user.IsActive {
		return nil, ErrTokenExpired
	}

	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	user.InviteTokenHash = ""
	user.InviteExpiresAt = nil
	now := s.now()
	user.LastLoginAt = &now

	if err := s.db.WithContext(ctx).Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to accept invite: %w", err)
	}

	return s.issueTokens(&user)
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if user.InvitePending() {
		return nil, ErrInvalidCredentials
	}
	if err := user.CheckPassword(req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, fmt.Errorf("account is deactivated: %w", ErrForbidden)
	}

	now := s.now()
	user.LastLoginAt = &now
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login_at", now).Error; err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("Failed to record login time")
	}

	return s.issueTokens(&user)
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	userIDStr, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrTokenExpired
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, ErrTokenExpired
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrTokenExpired
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("account is deactivated: %w", ErrForbidden)
	}

	return s.issueTokens(user)
}

// ForgotPassword never reveals whether the email is registered.
func (s *AuthService) ForgotPassword(ctx context.Context, req *ForgotPasswordRequest) error {
	req.Email = normalizeEmail(req.Email)
	if err := validateRequest(req); err != nil {
		return err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ? AND is_active = ?", req.Email, true).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithError(err).Error("Password reset lookup failed")
		}
		return nil
	}

	token, hash, err := utils.GenerateToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	expires := s.now().Add(time.Duration(s.cfg.Auth.ResetTTL) * time.Hour)

	if err := s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"reset_token_hash": hash,
		"reset_expires_at": expires,
	}).Error; err != nil {
		return fmt.Errorf("failed to save reset token: %w", err)
	}

	go func() {
		if err := s.notifications.SendPasswordResetEmail(&user, token); err != nil {
			logrus.WithError(err).WithField("email", user.Email).Error("Failed to send password reset email")
		}
	}()

	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, req *ResetPasswordRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("reset_token_hash = ?", utils.HashString(req.Token)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTokenExpired
		}
		return fmt.Errorf("database error: %w", err)
	}
	if user.ResetExpiresAt == nil || s.now().After(*user.ResetExpiresAt) {
		return ErrTokenExpired
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.ResetTokenHash = ""
	user.ResetExpiresAt = nil
	// A reset also completes a pending invite.
	user.InviteTokenHash = ""
	user.InviteExpiresAt = nil

	if err := s.db.WithContext(ctx).Save(&user).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.audit.Record(ctx, AuditEntry{UserID: &user.ID, Action: "user.password_reset", EntityType: "user", EntityID: user.ID})
	return nil
}

func (s *AuthService) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

func (s *AuthService) issueTokens(user *models.User) (*AuthResponse, error) {
	accessToken, err := utils.GenerateJWT(user.ID, user.Email, string(user.Role), s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := utils.GenerateRefreshToken(user.ID, s.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.cfg.JWT.AccessTokenTTL * 3600, // Convert hours to seconds
	}, nil
}

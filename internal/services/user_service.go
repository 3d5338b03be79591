// internal/services/user_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/rights-backend/internal/models"
	"github.com/javajoker/rights-backend/internal/utils"
)

type UserService struct {
	db    *gorm.DB
	audit *AuditService
}

type UserListFilter struct {
	utils.PaginationParams
	Role     models.UserRole `json:"role,omitempty"`
	IsActive *bool           `json:"is_active,omitempty"`
}

type UpdateProfileRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,strong_password"`
}

type UpdateRoleRequest struct {
	Role models.UserRole `json:"role" validate:"required,user_role"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

var userSortFields = []string{"created_at", "email", "name", "role", "last_login_at"}

func NewUserService(db *gorm.DB, audit *AuditService) *UserService {
	return &UserService{
		db:    db,
		audit: audit,
	}
}

func (s *UserService) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return findUser(s.db.WithContext(ctx), userID)
}

func (s *UserService) ListUsers(ctx context.Context, filter UserListFilter) ([]models.User, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.User{})

	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.Search != "" {
		pattern := utils.LikePattern(strings.ToLower(filter.Search))
		query = query.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	params := utils.NormalizePagination(filter.PaginationParams)
	query = utils.ApplySort(query, params, userSortFields)
	query = utils.ApplyPagination(query, params)

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}
	return users, total, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *UpdateProfileRequest) (*models.User, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	user, err := findUser(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}

	user.Name = strings.TrimSpace(req.Name)
	if err := s.db.WithContext(ctx).Model(user).Update("name", user.Name).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, req *ChangePasswordRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}

	user, err := findUser(s.db.WithContext(ctx), userID)
	if err != nil {
		return err
	}
	if err := user.CheckPassword(req.CurrentPassword); err != nil {
		return ErrInvalidCredentials
	}
	if err := user.SetPassword(req.NewPassword); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(user).Update("password_hash", user.PasswordHash).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	s.audit.Record(ctx, AuditEntry{UserID: &user.ID, Action: "user.password_change", EntityType: "user", EntityID: user.ID})
	return nil
}

func (s *UserService) UpdateRole(ctx context.Context, actor Actor, userID uuid.UUID, req *UpdateRoleRequest) (*models.User, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var user *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if user, err = findUser(tx, userID); err != nil {
			return err
		}
		if user.Role == req.Role {
			return nil
		}
		if user.Role == models.UserRoleAdmin {
			if err := ensureAnotherAdmin(tx, user.ID); err != nil {
				return err
			}
		}

		before := *user
		user.Role = req.Role
		if err := tx.Model(user).Update("role", user.Role).Error; err != nil {
			return fmt.Errorf("failed to update role: %w", err)
		}
		return s.audit.RecordTx(tx, actor.entry("user.role", "user", user.ID,
			models.JSONB{"role": before.Role}, models.JSONB{"role": user.Role}))
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) SetActive(ctx context.Context, actor Actor, userID uuid.UUID, req *SetActiveRequest) (*models.User, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	active := *req.IsActive

	var user *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if user, err = findUser(tx, userID); err != nil {
			return err
		}
		if user.IsActive == active {
			return nil
		}
		if !active {
			if actor.UserID != nil && *actor.UserID == user.ID {
				return fmt.Errorf("cannot deactivate your own account: %w", ErrForbidden)
			}
			if user.Role == models.UserRoleAdmin {
				if err := ensureAnotherAdmin(tx, user.ID); err != nil {
					return err
				}
			}
		}

		user.IsActive = active
		if err := tx.Model(user).Update("is_active", active).Error; err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		return s.audit.RecordTx(tx, actor.entry("user.active", "user", user.ID,
			models.JSONB{"is_active": !active}, models.JSONB{"is_active": active}))
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes the user row. Audit entries keep their history with a
// NULL user reference.
func (s *UserService) DeleteUser(ctx context.Context, actor Actor, userID uuid.UUID) error {
	if actor.UserID != nil && *actor.UserID == userID {
		return fmt.Errorf("cannot delete your own account: %w", ErrForbidden)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := findUser(tx, userID)
		if err != nil {
			return err
		}
		if user.Role == models.UserRoleAdmin {
			if err := ensureAnotherAdmin(tx, user.ID); err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.Notification{}).Error; err != nil {
			return fmt.Errorf("failed to delete notifications: %w", err)
		}
		// audit_logs.user_id is ON DELETE SET NULL
		if err := tx.Unscoped().Delete(user).Error; err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return s.audit.RecordTx(tx, actor.entry("user.delete", "user", userID,
			models.JSONB{"email": user.Email, "role": user.Role}, nil))
	})
}

func ensureAnotherAdmin(tx *gorm.DB, excluding uuid.UUID) error {
	var admins int64
	if err := tx.Model(&models.User{}).
		Where("role = ? AND is_active = ? AND id <> ?", models.UserRoleAdmin, true, excluding).
		Count(&admins).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if admins == 0 {
		return fmt.Errorf("at least one active admin must remain: %w", ErrConflict)
	}
	return nil
}

func findUser(db *gorm.DB, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

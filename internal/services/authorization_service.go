// internal/services/authorization_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/rights-backend/internal/models"
)

// Capabilities checked by the route layer.
const (
	CapContractsRead    = "contracts.read"
	CapContractsWrite   = "contracts.write"
	CapContractsDelete  = "contracts.delete"
	CapAvailability     = "availability.check"
	CapContentRead      = "content.read"
	CapContentWrite     = "content.write"
	CapRoyaltiesRead    = "royalties.read"
	CapRoyaltiesWrite   = "royalties.write"
	CapRoyaltiesApprove = "royalties.approve"
	CapRoyaltiesPay     = "royalties.pay"
	CapDocumentsRead    = "documents.read"
	CapDocumentsWrite   = "documents.write"
	CapUsersManage      = "users.manage"
	CapRolesManage      = "roles.manage"
	CapAuditRead        = "audit.read"
)

var AllCapabilities = []string{
	CapContractsRead, CapContractsWrite, CapContractsDelete, CapAvailability,
	CapContentRead, CapContentWrite,
	CapRoyaltiesRead, CapRoyaltiesWrite, CapRoyaltiesApprove, CapRoyaltiesPay,
	CapDocumentsRead, CapDocumentsWrite,
	CapUsersManage, CapRolesManage, CapAuditRead,
}

// DefaultCapabilities applies to any role with no stored permissions.
var DefaultCapabilities = map[models.UserRole][]string{
	models.UserRoleAdmin: AllCapabilities,
	models.UserRoleLegal: {
		CapContractsRead, CapContractsWrite, CapContractsDelete, CapAvailability,
		CapContentRead, CapContentWrite, CapRoyaltiesRead,
		CapDocumentsRead, CapDocumentsWrite, CapAuditRead,
	},
	models.UserRoleFinance: {
		CapContractsRead, CapAvailability, CapContentRead,
		CapRoyaltiesRead, CapRoyaltiesWrite, CapRoyaltiesApprove, CapRoyaltiesPay,
		CapDocumentsRead,
	},
	models.UserRoleSalesManager: {
		CapContractsRead, CapContractsWrite, CapAvailability,
		CapContentRead, CapContentWrite, CapRoyaltiesRead,
		CapDocumentsRead, CapDocumentsWrite,
	},
	models.UserRoleSales: {
		CapContractsRead, CapAvailability, CapContentRead, CapDocumentsRead,
	},
}

// CapabilityChecker answers whether a role holds a capability.
type CapabilityChecker interface {
	Can(ctx context.Context, role models.UserRole, capability string) (bool, error)
}

type AuthorizationService struct {
	db    *gorm.DB
	cache *redis.Client
	ttl   time.Duration
	audit *AuditService
}

type RoleCapabilitiesRequest struct {
	Capabilities []string `json:"capabilities" validate:"required,min=1,dive,required"`
}

func NewAuthorizationService(db *gorm.DB, cache *redis.Client, ttl time.Duration, audit *AuditService) *AuthorizationService {
	return &AuthorizationService{
		db:    db,
		cache: cache,
		ttl:   ttl,
		audit: audit,
	}
}

func cacheKey(role models.UserRole) string {
	return "capabilities:" + string(role)
}

func (s *AuthorizationService) Can(ctx context.Context, role models.UserRole, capability string) (bool, error) {
	// Admin keeps every capability so the matrix can't lock everyone out.
	if role == models.UserRoleAdmin {
		return true, nil
	}
	if !slices.Contains(models.AllUserRoles, role) {
		return false, nil
	}

	capabilities, err := s.RoleCapabilities(ctx, role)
	if err != nil {
		return false, err
	}
	return slices.Contains(capabilities, capability), nil
}

// RoleCapabilities returns the stored capability set of a role, falling back
// to the default matrix when none is stored.
func (s *AuthorizationService) RoleCapabilities(ctx context.Context, role models.UserRole) ([]string, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey(role)).Result()
		if err == nil {
			var capabilities []string
			if json.Unmarshal([]byte(cached), &capabilities) == nil {
				return capabilities, nil
			}
			logrus.WithField("role", role).Warn("Discarding malformed cached capabilities")
		} else if !errors.Is(err, redis.Nil) {
			logrus.WithError(err).WithField("role", role).Error("Redis GET failed")
		}
	}

	var capabilities []string
	if err := s.db.WithContext(ctx).Model(&models.RolePermission{}).
		Where("role = ?", role).
		Order("capability ASC").
		Pluck("capability", &capabilities).Error; err != nil {
		return nil, fmt.Errorf("failed to load role capabilities: %w", err)
	}
	if len(capabilities) == 0 {
		capabilities = append([]string(nil), DefaultCapabilities[role]...)
		sort.Strings(capabilities)
	}

	if s.cache != nil {
		if data, err := json.Marshal(capabilities); err == nil {
			if err := s.cache.Set(ctx, cacheKey(role), data, s.ttl).Err(); err != nil {
				logrus.WithError(err).WithField("role", role).Error("Redis SET failed")
			}
		}
	}
	return capabilities, nil
}

// SetRoleCapabilities replaces the stored capability set of a role.
func (s *AuthorizationService) SetRoleCapabilities(ctx context.Context, actor Actor, role models.UserRole, req *RoleCapabilitiesRequest) ([]string, error) {
	verr := &ValidationError{}
	if !slices.Contains(models.AllUserRoles, role) {
		verr.add("role", "user_role", "role must be one of Admin, Legal, Finance, Sales Manager, Sales")
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	for _, capability := range req.Capabilities {
		if !slices.Contains(AllCapabilities, capability) {
			verr.add("capabilities", "capability", fmt.Sprintf("unknown capability %q", capability))
		}
	}
	if err := verr.errOrNil(); err != nil {
		return nil, err
	}

	capabilities := append([]string(nil), req.Capabilities...)
	sort.Strings(capabilities)
	capabilities = slices.Compact(capabilities)

	before, err := s.RoleCapabilities(ctx, role)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role = ?", role).Delete(&models.RolePermission{}).Error; err != nil {
			return fmt.Errorf("failed to clear role capabilities: %w", err)
		}
		rows := make([]models.RolePermission, 0, len(capabilities))
		for _, capability := range capabilities {
			rows = append(rows, models.RolePermission{Role: role, Capability: capability, UpdatedBy: actor.UserID})
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("failed to store role capabilities: %w", err)
			}
		}
		return s.audit.RecordTx(tx, AuditEntry{
			UserID:     actor.UserID,
			Action:     "role.capabilities",
			EntityType: "role",
			OldValues:  models.JSONB{"role": role, "capabilities": before},
			NewValues:  models.JSONB{"role": role, "capabilities": capabilities},
			IPAddress:  actor.IPAddress,
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, role)
	return capabilities, nil
}

// EnsureDefaults stores the default matrix for roles with no stored rows.
func (s *AuthorizationService) EnsureDefaults(ctx context.Context) error {
	for _, role := range models.AllUserRoles {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.RolePermission{}).Where("role = ?", role).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count role capabilities: %w", err)
		}
		if count > 0 {
			continue
		}

		rows := make([]models.RolePermission, 0, len(DefaultCapabilities[role]))
		for _, capability := range DefaultCapabilities[role] {
			rows = append(rows, models.RolePermission{Role: role, Capability: capability})
		}
		if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to seed capabilities for %s: %w", role, err)
		}
		logrus.WithField("role", role).Info("Seeded default capabilities")
	}
	return nil
}

func (s *AuthorizationService) invalidate(ctx context.Context, role models.UserRole) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cacheKey(role)).Err(); err != nil {
		logrus.WithError(err).WithField("role", role).Error("Redis DEL failed")
	}
}

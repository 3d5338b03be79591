// internal/database/connection.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/javajoker/rights-backend/internal/config"
	"github.com/javajoker/rights-backend/internal/models"
)

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	default:
		return logger.Info
	}
}

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"host":     cfg.Host,
		"database": cfg.Database,
	}).Info("Database connection established")
	return db, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
		return
	}
	logrus.Info("Database connection closed")
}

func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations")

	// gen_random_uuid() is built in from PostgreSQL 13; pgcrypto covers older servers.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		return fmt.Errorf("failed to create pgcrypto extension: %w", err)
	}

	err := db.AutoMigrate(
		&models.User{},
		&models.Contract{},
		&models.ContentItem{},
		&models.ContractContent{},
		&models.ContractDocument{},
		&models.Royalty{},
		&models.AuditLog{},
		&models.Notification{},
		&models.RolePermission{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	createIndexes(db)

	logrus.Info("Database migrations completed")
	return nil
}

// createIndexes adds composite and expression indexes AutoMigrate can't
// express. Failures are logged and skipped.
func createIndexes(db *gorm.DB) {
	indexes := []string{
		// Conflict lookups: partner + live status, then date window.
		"CREATE INDEX IF NOT EXISTS idx_contracts_partner_status ON contracts(partner, status) WHERE deleted_at IS NULL",
		"CREATE INDEX IF NOT EXISTS idx_contracts_window ON contracts(start_date, end_date)",
		"CREATE INDEX IF NOT EXISTS idx_contracts_expiry ON contracts(status, auto_renew, end_date)",
		"CREATE INDEX IF NOT EXISTS idx_contracts_created_at ON contracts(created_at DESC)",

		"CREATE INDEX IF NOT EXISTS idx_content_items_tags ON content_items USING GIN(tags)",
		"CREATE INDEX IF NOT EXISTS idx_contract_contents_content ON contract_contents(content_item_id)",

		"CREATE INDEX IF NOT EXISTS idx_royalties_contract_period ON royalties(contract_id, reporting_period)",

		"CREATE INDEX IF NOT EXISTS idx_audit_logs_entity ON audit_logs(entity_type, entity_id)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_notifications_user_status ON notifications(user_id, status, created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			logrus.WithError(err).WithField("statement", index).Warn("Failed to create index")
		}
	}
}

// SeedInitialData creates the bootstrap admin when no Admin user exists.
func SeedInitialData(db *gorm.DB, auth config.AuthConfig) error {
	var adminCount int64
	if err := db.Model(&models.User{}).Where("role = ?", models.UserRoleAdmin).Count(&adminCount).Error; err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if adminCount > 0 {
		return nil
	}

	if auth.AdminPassword == "" {
		logrus.Warn("No admin user exists and ADMIN_PASSWORD is not set; skipping admin seed")
		return nil
	}

	admin := &models.User{
		Email:    auth.AdminEmail,
		Name:     "System Administrator",
		Role:     models.UserRoleAdmin,
		IsActive: true,
	}
	if err := admin.SetPassword(auth.AdminPassword); err != nil {
		return fmt.Errorf("failed to set admin password: %w", err)
	}
	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logrus.WithField("email", admin.Email).Info("Default admin user created")
	return nil
}

// WithTransaction runs fn in a transaction, rolling back on error or panic.
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AVAILABILITY_TERRITORIES", "")
	t.Setenv("AVAILABILITY_PLATFORMS", "")
	t.Setenv("AVAILABILITY_SPLIT_MULTI_VALUE", "")
	t.Setenv("ENVIRONMENT", "test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"Global", "US", "Canada", "UK"}, cfg.Availability.Territories)
	assert.Equal(t, []string{"SVOD", "TVOD", "AVOD", "FAST", "Linear"}, cfg.Availability.Platforms)
	assert.False(t, cfg.Availability.SplitMultiValue)
	assert.Equal(t, 72, cfg.Auth.InviteTTL)
}

func TestLoadAvailabilityOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("AVAILABILITY_TERRITORIES", " US , Mexico,,")
	t.Setenv("AVAILABILITY_SPLIT_MULTI_VALUE", "TRUE")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"US", "Mexico"}, cfg.Availability.Territories)
	assert.True(t, cfg.Availability.SplitMultiValue)
}

func TestValidateProduction(t *testing.T) {
	cfg := &Config{
		Environment: "production",
		JWT:         JWTConfig{SecretKey: "your-secret-key-change-in-production"},
		Database:    DatabaseConfig{Password: "secret"},
	}
	assert.Error(t, cfg.Validate())

	cfg.JWT.SecretKey = "rotated"
	cfg.Availability = AvailabilityConfig{Territories: DefaultTerritories, Platforms: DefaultPlatforms}
	cfg.Notifications.ExpiryWindowDays = 30
	assert.NoError(t, cfg.Validate())

	cfg.Database.Password = ""
	assert.Error(t, cfg.Validate())
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Database: "rights", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=rights sslmode=disable", d.DSN())
}

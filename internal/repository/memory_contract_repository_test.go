package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/rights-backend/internal/models"
)

func TestMemoryRepositoryFindOrdersNewestFirst(t *testing.T) {
	repo := NewMemoryContractRepository()
	older := repo.Put(models.Contract{Partner: "Acme", StartDate: date("2025-01-01"), BaseModel: models.BaseModel{CreatedAt: time.Now().Add(-time.Hour)}})
	newer := repo.Put(models.Contract{Partner: "Acme", StartDate: date("2025-01-01")})
	repo.Put(models.Contract{Partner: "Globex", StartDate: date("2025-01-01")})

	found, err := repo.Find(context.Background(), ContractFilter{Partner: "Acme"})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, newer.ID, found[0].ID)
	assert.Equal(t, older.ID, found[1].ID)
}

func TestMemoryRepositoryMarkExpiredIsIdempotent(t *testing.T) {
	today := date("2025-06-15")
	repo := NewMemoryContractRepository()
	expired := repo.Put(models.Contract{Partner: "Acme", Status: models.ContractStatusActive, StartDate: date("2024-01-01"), EndDate: datePtr("2025-06-14")})
	endsToday := repo.Put(models.Contract{Partner: "Acme", Status: models.ContractStatusActive, StartDate: date("2024-01-01"), EndDate: datePtr("2025-06-15")})
	renewing := repo.Put(models.Contract{Partner: "Acme", Status: models.ContractStatusActive, AutoRenew: true, StartDate: date("2024-01-01"), EndDate: datePtr("2024-12-31")})
	terminated := repo.Put(models.Contract{Partner: "Acme", Status: models.ContractStatusTerminated, StartDate: date("2024-01-01"), EndDate: datePtr("2024-12-31")})

	changed, err := repo.MarkExpired(context.Background(), today)
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	changed, err = repo.MarkExpired(context.Background(), today)
	require.NoError(t, err)
	assert.Equal(t, int64(0), changed)

	status := func(c models.Contract) models.ContractStatus {
		stored, ok := repo.Get(c.ID)
		require.True(t, ok)
		return stored.Status
	}
	assert.Equal(t, models.ContractStatusExpired, status(expired))
	assert.Equal(t, models.ContractStatusActive, status(endsToday))
	assert.Equal(t, models.ContractStatusActive, status(renewing))
	assert.Equal(t, models.ContractStatusTerminated, status(terminated))
}

func TestMemoryRepositoryHonoursContext(t *testing.T) {
	repo := NewMemoryContractRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Find(ctx, ContractFilter{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryRepositoryMarkExpiredUnsetStatus(t *testing.T) {
	repo := NewMemoryContractRepository()
	unset := repo.Put(models.Contract{Partner: "Acme", StartDate: date("2024-01-01"), EndDate: datePtr("2024-12-31")})

	changed, err := repo.MarkExpired(context.Background(), date("2025-06-15"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	stored, ok := repo.Get(unset.ID)
	require.True(t, ok)
	assert.Equal(t, models.ContractStatusExpired, stored.Status)
}

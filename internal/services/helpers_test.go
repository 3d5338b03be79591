package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/javajoker/rights-backend/internal/models"
	"github.com/javajoker/rights-backend/internal/repository"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

func floatPtr(v float64) *float64 {
	return &v
}

func fixedStatus(repo repository.ContractRepository, today string) *StatusService {
	s := NewStatusService(repo, nil)
	now := day(today).Add(15 * time.Hour)
	s.now = func() time.Time { return now }
	return s
}

func contract(partner, territory, platform string, exclusivity models.Exclusivity, start, end string) models.Contract {
	c := models.Contract{
		Partner:     partner,
		Territory:   territory,
		Platform:    platform,
		Exclusivity: exclusivity,
		Status:      models.ContractStatusActive,
		StartDate:   day(start),
	}
	if end != "" {
		c.EndDate = dayPtr(end)
	}
	return c
}

// flakyRepo serves from memory until failAfter Find calls have succeeded.
type flakyRepo struct {
	*repository.MemoryContractRepository
	failAfter int
	calls     int
	err       error
}

func (r *flakyRepo) Find(ctx context.Context, filter repository.ContractFilter) ([]models.Contract, error) {
	r.calls++
	if r.calls > r.failAfter {
		return nil, r.err
	}
	return r.MemoryContractRepository.Find(ctx, filter)
}

func (r *flakyRepo) List(ctx context.Context) ([]models.Contract, error) {
	if r.failAfter == 0 {
		return nil, r.err
	}
	return r.MemoryContractRepository.List(ctx)
}

func (r *flakyRepo) MarkExpired(ctx context.Context, today time.Time) (int64, error) {
	if r.failAfter == 0 {
		return 0, r.err
	}
	return r.MemoryContractRepository.MarkExpired(ctx, today)
}

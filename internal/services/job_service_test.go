package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/rights-backend/internal/models"
	"github.com/javajoker/rights-backend/internal/repository"
)

func TestJobRunReconcile(t *testing.T) {
	repo := repository.NewMemoryContractRepository(
		contract("Acme", "US", "SVOD", models.ExclusivityExclusive, "2024-01-01", "2024-12-31"),
		contract("Acme", "UK", "SVOD", models.ExclusivityExclusive, "2025-01-01", "2025-12-31"),
	)
	jobs := NewJobService(fixedStatus(repo, "2025-06-01"), nil, nil)

	result, err := jobs.Run(context.Background(), "reconcile")
	require.NoError(t, err)
	assert.Equal(t, &JobResult{Job: "reconcile", Affected: 1}, result)

	result, err = jobs.Run(context.Background(), "reconcile")
	require.NoError(t, err)
	assert.Zero(t, result.Affected)
}

func TestJobRunUnknown(t *testing.T) {
	jobs := NewJobService(nil, nil, nil)

	_, err := jobs.Run(context.Background(), "vacuum")

	assert.EqualError(t, err, `unknown job "vacuum"`)
}

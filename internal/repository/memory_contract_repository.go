// internal/repository/memory_contract_repository.go
package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/rights-backend/internal/models"
	"github.com/javajoker/rights-backend/internal/utils"
)

// MemoryContractRepository keeps contracts in process. It backs local
// tooling and tests and applies exactly the ContractFilter predicate.
type MemoryContractRepository struct {
	mu        sync.RWMutex
	contracts map[uuid.UUID]models.Contract
}

func NewMemoryContractRepository(contracts ...models.Contract) *MemoryContractRepository {
	r := &MemoryContractRepository{contracts: make(map[uuid.UUID]models.Contract)}
	for _, c := range contracts {
		r.Put(c)
	}
	return r
}

// Put inserts or replaces a contract, assigning an id and timestamps when missing.
func (r *MemoryContractRepository) Put(c models.Contract) models.Contract {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	r.contracts[c.ID] = c
	return c
}

func (r *MemoryContractRepository) Get(id uuid.UUID) (models.Contract, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.contracts[id]
	return c, ok
}

func (r *MemoryContractRepository) List(ctx context.Context) ([]models.Contract, error) {
	return r.Find(ctx, ContractFilter{})
}

func (r *MemoryContractRepository) Find(ctx context.Context, filter ContractFilter) ([]models.Contract, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	contracts := make([]models.Contract, 0, len(r.contracts))
	for _, c := range r.contracts {
		if filter.Matches(&c) {
			contracts = append(contracts, c)
		}
	}
	sort.Slice(contracts, func(i, j int) bool {
		return contracts[i].CreatedAt.After(contracts[j].CreatedAt)
	})
	return contracts, nil
}

func (r *MemoryContractRepository) MarkExpired(ctx context.Context, today time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := utils.DateOnly(today)
	var changed int64
	for id, c := range r.contracts {
		if storedStatus(&c) != models.ContractStatusActive || c.AutoRenew || c.EndDate == nil {
			continue
		}
		if utils.DateOnly(*c.EndDate).Before(cutoff) {
			c.Status = models.ContractStatusExpired
			c.UpdatedAt = time.Now()
			r.contracts[id] = c
			changed++
		}
	}
	return changed, nil
}

package instances

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory Repository for tests and for running without
// a configured database.
type MemoryRepo struct {
	mu        sync.Mutex
	Instances map[string]Instance
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{Instances: map[string]Instance{}}
}

func (r *MemoryRepo) Put(inst Instance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Instances[inst.ID] = inst
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Instance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.Instances[id]
	if !ok {
		return Instance{}, ErrNotFound
	}
	return inst, nil
}

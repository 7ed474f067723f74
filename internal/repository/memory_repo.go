package repository

import (
	"context"
	"sync"

	"promptbattle/internal/model"
)

// memoryRecapRepo keeps recaps in-process, for running without MongoDB and
// for tests.
type memoryRecapRepo struct {
	mu     sync.RWMutex
	recaps []model.GameRecap
}

func NewMemoryRecapRepo() RecapRepo {
	return &memoryRecapRepo{}
}

func (r *memoryRecapRepo) Create(_ context.Context, recap *model.GameRecap) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recaps = append(r.recaps, *recap)
	return nil
}

func (r *memoryRecapRepo) ListByCode(_ context.Context, code string, limit int) ([]model.GameRecap, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.GameRecap
	// Newest first.
	for i := len(r.recaps) - 1; i >= 0 && len(out) < limit; i-- {
		if r.recaps[i].RoomCode == code {
			out = append(out, r.recaps[i])
		}
	}
	return out, nil
}

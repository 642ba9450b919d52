// Package repository stores the resumes saved through the backend API.
package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	apperrors "resumeforge/internal/errors"
	"resumeforge/internal/types"

	"github.com/google/uuid"
)

// Repository keeps every saved resume per owner. Latest returns the most
// recently saved one.
type Repository interface {
	Save(ctx context.Context, owner string, doc json.RawMessage) (types.ResumeRecord, error)
	Latest(ctx context.Context, owner string) (types.ResumeRecord, error)
	Close() error
}

func notFound(owner string) error {
	return apperrors.NewStorageError(apperrors.ErrCodeNotFound, "no resume saved yet", nil).
		WithContext("owner", owner)
}

// Memory is an in-process repository. Records are lost on restart.
type Memory struct {
	mu      sync.RWMutex
	records map[string][]types.ResumeRecord
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		records: make(map[string][]types.ResumeRecord),
		now:     time.Now,
	}
}

func (m *Memory) Save(ctx context.Context, owner string, doc json.RawMessage) (types.ResumeRecord, error) {
	now := m.now().UTC()
	rec := types.ResumeRecord{
		ID:        uuid.NewString(),
		OwnerID:   owner,
		Document:  append(json.RawMessage(nil), doc...),
		CreatedAt: now,
		UpdatedAt: now,
	}

	m.mu.Lock()
	m.records[owner] = append(m.records[owner], rec)
	m.mu.Unlock()
	return rec, nil
}

func (m *Memory) Latest(ctx context.Context, owner string) (types.ResumeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	recs := m.records[owner]
	if len(recs) == 0 {
		return types.ResumeRecord{}, notFound(owner)
	}
	return recs[len(recs)-1], nil
}

// Count returns how many records are kept for owner.
func (m *Memory) Count(owner string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records[owner])
}

func (m *Memory) Close() error { return nil }

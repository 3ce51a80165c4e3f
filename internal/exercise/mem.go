package exercise

import (
	"context"
	"sort"
	"sync"
)

// MemStore is an in-memory Store for tests and local experiments.
type MemStore struct {
	mu        sync.RWMutex
	exercises map[string]Exercise
}

func NewMemStore() *MemStore {
	return &MemStore{exercises: map[string]Exercise{}}
}

func (m *MemStore) Insert(_ context.Context, e Exercise) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exercises[e.ID] = e
	return nil
}

func (m *MemStore) Update(_ context.Context, e Exercise) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.exercises[e.ID]; !ok {
		return ErrNotFound
	}
	m.exercises[e.ID] = e
	return nil
}

func (m *MemStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.exercises[id]; !ok {
		return ErrNotFound
	}
	delete(m.exercises, id)
	return nil
}

func (m *MemStore) GetByID(_ context.Context, id string) (Exercise, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.exercises[id]
	if !ok {
		return Exercise{}, ErrNotFound
	}
	return e, nil
}

func (m *MemStore) List(_ context.Context, opts ListOpts) ([]Exercise, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Exercise{}
	for _, e := range m.exercises {
		if opts.CourseID != "" && e.CourseID != opts.CourseID {
			continue
		}
		if opts.Difficulty != "" && e.Difficulty != opts.Difficulty {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

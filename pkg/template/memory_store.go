package template

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of the Store interface.
// Suitable for development and testing.
type MemoryStore struct {
	templates map[string]Template
	mu        sync.RWMutex
}

// NewMemoryStore creates a new in-memory template store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		templates: make(map[string]Template),
	}
}

func (s *MemoryStore) GetByName(ctx context.Context, name string) (*Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tmpl, ok := s.templates[name]
	if !ok {
		return nil, ErrTemplateNotFound
	}
	// Return a copy to prevent external mutation of stored data
	out := tmpl
	return &out, nil
}

// Upsert stores or replaces a template by name.
func (s *MemoryStore) Upsert(ctx context.Context, tmpl Template) error {
	if tmpl.Name == "" {
		return ErrTemplateNameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmpl.UpdatedAt = time.Now()
	s.templates[tmpl.Name] = tmpl
	return nil
}

// Delete removes a template by name. Deleting an unknown name is a no-op.
func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.templates, name)
	return nil
}

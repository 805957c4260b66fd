package schema

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/lekton/lekton/internal/apperr"
)

// MemoryRepo is an in-memory Repository used for unit tests. Each write holds
// the mutex for its whole check-and-modify, matching the single-document
// atomicity of the Mongo implementation.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*Schema
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*Schema)}
}

func cloneSchema(s *Schema) *Schema {
	cp := *s
	cp.Versions = slices.Clone(s.Versions)
	return &cp
}

func (m *MemoryRepo) Upsert(ctx context.Context, s *Schema) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[s.Name] = cloneSchema(s)
	return nil
}

func (m *MemoryRepo) Ensure(ctx context.Context, name, schemaType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.store[name]; ok {
		s.Type = schemaType
		return nil
	}
	m.store[name] = &Schema{Name: name, Type: schemaType, Versions: []Version{}}
	return nil
}

func (m *MemoryRepo) FindByName(ctx context.Context, name string) (*Schema, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.store[name]
	if !ok {
		return nil, nil
	}
	return cloneSchema(s), nil
}

func (m *MemoryRepo) List(ctx context.Context) ([]*Schema, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*Schema{}
	for _, s := range m.store {
		out = append(out, cloneSchema(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryRepo) AppendVersion(ctx context.Context, name string, v Version) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[name]
	if !ok {
		return fmt.Errorf("schema %q: %w", name, apperr.ErrNotFound)
	}
	if _, found := FindVersion(s, v.Version); found {
		return fmt.Errorf("schema %q already has version %s: %w", name, v.Version, apperr.ErrValidation)
	}
	s.Versions = append(s.Versions, v)
	return nil
}

func (m *MemoryRepo) ReplaceVersion(ctx context.Context, name string, v Version) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[name]
	if !ok {
		return fmt.Errorf("schema %q version %s: %w", name, v.Version, apperr.ErrNotFound)
	}
	for i := range s.Versions {
		if s.Versions[i].Version == v.Version {
			s.Versions[i] = v
			return nil
		}
	}
	return fmt.Errorf("schema %q version %s: %w", name, v.Version, apperr.ErrNotFound)
}

func (m *MemoryRepo) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[name]; !ok {
		return fmt.Errorf("schema %q: %w", name, apperr.ErrNotFound)
	}
	delete(m.store, name)
	return nil
}

package repository

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/lekton/lekton/internal/access"
	"github.com/lekton/lekton/internal/apperr"
	"github.com/lekton/lekton/internal/document"
)

// MemoryRepo is an in-memory DocumentRepository used for unit tests. It
// reproduces the Mongo implementation's semantics: Upsert writes every field
// except the backlink set under the mutex, and backlinks change only through
// the set mutations.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*document.Document
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*document.Document)}
}

func clone(d *document.Document) *document.Document {
	cp := *d
	cp.Tags = slices.Clone(d.Tags)
	cp.LinksOut = slices.Clone(d.LinksOut)
	cp.Backlinks = slices.Clone(d.Backlinks)
	return &cp
}

func (m *MemoryRepo) Upsert(ctx context.Context, doc *document.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := clone(doc)
	if existing, ok := m.store[doc.Slug]; ok {
		cp.Backlinks = slices.Clone(existing.Backlinks)
	} else {
		cp.Backlinks = []string{}
	}
	m.store[doc.Slug] = cp
	return nil
}

func (m *MemoryRepo) FindBySlug(ctx context.Context, slug string) (*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.store[slug]
	if !ok {
		return nil, nil
	}
	return clone(d), nil
}

func (m *MemoryRepo) ListAccessible(ctx context.Context, maxLevel access.Level) ([]*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*document.Document{}
	for _, d := range m.store {
		if d.Hidden || !d.AccessLevel.AtMost(maxLevel) {
			continue
		}
		out = append(out, clone(d))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].Slug < out[j].Slug
	})
	return out, nil
}

func (m *MemoryRepo) AddBacklink(ctx context.Context, target, source string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.store[target]
	if !ok {
		return nil
	}
	if !slices.Contains(d.Backlinks, source) {
		d.Backlinks = append(d.Backlinks, source)
	}
	return nil
}

func (m *MemoryRepo) RemoveBacklink(ctx context.Context, target, source string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.store[target]
	if !ok {
		return nil
	}
	d.Backlinks = slices.DeleteFunc(d.Backlinks, func(s string) bool { return s == source })
	return nil
}

func (m *MemoryRepo) FindReferencing(ctx context.Context, slug string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []string{}
	for _, d := range m.store {
		if slices.Contains(d.LinksOut, slug) {
			out = append(out, d.Slug)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *MemoryRepo) Delete(ctx context.Context, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[slug]; !ok {
		return fmt.Errorf("document %q: %w", slug, apperr.ErrNotFound)
	}
	delete(m.store, slug)
	return nil
}

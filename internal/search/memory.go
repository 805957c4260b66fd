package search

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/lekton/lekton/internal/access"
)

// MemorySearcher is an in-memory Searcher used for unit tests. Matching is
// a case-insensitive substring check over the searchable fields.
type MemorySearcher struct {
	mu   sync.RWMutex
	docs map[string]*SearchDocument
}

func NewMemorySearcher() *MemorySearcher {
	return &MemorySearcher{docs: make(map[string]*SearchDocument)}
}

func (m *MemorySearcher) ConfigureIndex(ctx context.Context) error { return nil }

func (m *MemorySearcher) IndexDocument(ctx context.Context, doc *SearchDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *doc
	m.docs[doc.ID] = &cp
	return nil
}

func (m *MemorySearcher) DeleteDocument(ctx context.Context, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, DocumentID(slug))
	return nil
}

func (m *MemorySearcher) Search(ctx context.Context, query string, maxLevel access.Level) ([]SearchHit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q := strings.ToLower(query)
	hits := []SearchHit{}
	for _, d := range m.docs {
		if d.AccessLevel > int(maxLevel) {
			continue
		}
		if !matches(d, q) {
			continue
		}
		hits = append(hits, SearchHit{
			Slug:           d.Slug,
			Title:          d.Title,
			ServiceOwner:   d.ServiceOwner,
			Tags:           d.Tags,
			ContentPreview: d.ContentPreview,
		})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Slug < hits[j].Slug })
	return hits, nil
}

func matches(d *SearchDocument, q string) bool {
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(d.Title), q) ||
		strings.Contains(strings.ToLower(d.ContentPreview), q) ||
		strings.Contains(strings.ToLower(d.Slug), q) {
		return true
	}
	for _, tag := range d.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// Len reports the number of indexed records.
func (m *MemorySearcher) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

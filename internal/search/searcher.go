package search

import (
	"context"

	"github.com/lekton/lekton/internal/access"
)

// Searcher is the capability over the search engine.
type Searcher interface {
	// ConfigureIndex applies the index settings (filterable, searchable and
	// sortable attributes). Called once at startup; safe to repeat.
	ConfigureIndex(ctx context.Context) error

	// IndexDocument adds or replaces a record in the index.
	IndexDocument(ctx context.Context, doc *SearchDocument) error

	// DeleteDocument removes the record for slug from the index. Removing an
	// absent record is not an error.
	DeleteDocument(ctx context.Context, slug string) error

	// Search runs a full-text query, returning only records whose access
	// level is at or below maxLevel.
	Search(ctx context.Context, query string, maxLevel access.Level) ([]SearchHit, error)
}

package search

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/meilisearch/meilisearch-go"

	"github.com/lekton/lekton/internal/access"
	"github.com/lekton/lekton/internal/apperr"
)

const searchLimit = 20

// MeiliSearcher implements Searcher against a Meilisearch instance.
type MeiliSearcher struct {
	client meilisearch.ServiceManager
	index  string
}

func NewMeiliSearcher(url, apiKey, index string) *MeiliSearcher {
	return &MeiliSearcher{
		client: meilisearch.New(url, meilisearch.WithAPIKey(apiKey)),
		index:  index,
	}
}

func (m *MeiliSearcher) ConfigureIndex(ctx context.Context) error {
	idx := m.client.Index(m.index)

	filterable := []string{"access_level", "service_owner", "tags"}
	if _, err := idx.UpdateFilterableAttributesWithContext(ctx, &filterable); err != nil {
		return fmt.Errorf("update filterable attributes: %v: %w", err, apperr.ErrStorage)
	}
	searchable := []string{"title", "content_preview", "slug", "tags"}
	if _, err := idx.UpdateSearchableAttributesWithContext(ctx, &searchable); err != nil {
		return fmt.Errorf("update searchable attributes: %v: %w", err, apperr.ErrStorage)
	}
	sortable := []string{"last_updated"}
	if _, err := idx.UpdateSortableAttributesWithContext(ctx, &sortable); err != nil {
		return fmt.Errorf("update sortable attributes: %v: %w", err, apperr.ErrStorage)
	}
	return nil
}

func (m *MeiliSearcher) IndexDocument(ctx context.Context, doc *SearchDocument) error {
	_, err := m.client.Index(m.index).AddDocumentsWithContext(ctx, []*SearchDocument{doc}, "id")
	if err != nil {
		return fmt.Errorf("index document %q: %v: %w", doc.Slug, err, apperr.ErrStorage)
	}
	return nil
}

func (m *MeiliSearcher) DeleteDocument(ctx context.Context, slug string) error {
	_, err := m.client.Index(m.index).DeleteDocumentWithContext(ctx, DocumentID(slug))
	if err != nil {
		return fmt.Errorf("delete document %q from index: %v: %w", slug, err, apperr.ErrStorage)
	}
	return nil
}

func (m *MeiliSearcher) Search(ctx context.Context, query string, maxLevel access.Level) ([]SearchHit, error) {
	res, err := m.client.Index(m.index).SearchWithContext(ctx, query, &meilisearch.SearchRequest{
		Filter: fmt.Sprintf("access_level <= %d", int(maxLevel)),
		Limit:  searchLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("search %q: %v: %w", query, err, apperr.ErrStorage)
	}

	hits := []SearchHit{}
	for _, raw := range res.Hits {
		// hits come back as generic maps; round-trip through JSON to get
		// typed records
		buf, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("decode search hit: %v: %w", err, apperr.ErrStorage)
		}
		var sd SearchDocument
		if err := json.Unmarshal(buf, &sd); err != nil {
			return nil, fmt.Errorf("decode search hit: %v: %w", err, apperr.ErrStorage)
		}
		hits = append(hits, SearchHit{
			Slug:           sd.Slug,
			Title:          sd.Title,
			ServiceOwner:   sd.ServiceOwner,
			Tags:           sd.Tags,
			ContentPreview: sd.ContentPreview,
		})
	}
	return hits, nil
}

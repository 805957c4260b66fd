package search

import (
	"strings"

	"github.com/lekton/lekton/internal/document"
	"github.com/lekton/lekton/internal/links"
)

const previewLength = 200

// SearchDocument is the denormalized record pushed to the search index.
// AccessLevel is stored as an integer so the engine can filter with a
// numeric comparison. The ID is derived from the slug with slashes
// replaced, since the engine restricts primary key characters.
type SearchDocument struct {
	ID             string   `json:"id"`
	Slug           string   `json:"slug"`
	Title          string   `json:"title"`
	AccessLevel    int      `json:"access_level"`
	ServiceOwner   string   `json:"service_owner"`
	Tags           []string `json:"tags"`
	ContentPreview string   `json:"content_preview"`
	LastUpdated    int64    `json:"last_updated"`
}

// SearchHit is a single result returned to API clients.
type SearchHit struct {
	Slug           string   `json:"slug"`
	Title          string   `json:"title"`
	ServiceOwner   string   `json:"service_owner,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	ContentPreview string   `json:"content_preview,omitempty"`
}

// DocumentID maps a slug to a search-safe primary key.
func DocumentID(slug string) string {
	return strings.ReplaceAll(slug, "/", "_")
}

// FromDocument builds the index record for a document and its raw markdown
// content.
func FromDocument(doc *document.Document, content string) *SearchDocument {
	return &SearchDocument{
		ID:             DocumentID(doc.Slug),
		Slug:           doc.Slug,
		Title:          doc.Title,
		AccessLevel:    int(doc.AccessLevel),
		ServiceOwner:   doc.ServiceOwner,
		Tags:           doc.Tags,
		ContentPreview: links.Preview(content, previewLength),
		LastUpdated:    doc.LastUpdated.Unix(),
	}
}

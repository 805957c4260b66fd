package document

import (
	"time"

	"github.com/lekton/lekton/internal/access"
)

// Document is a documentation entry as stored in the metadata collection.
// The record is replaced wholesale on every successful ingest for its slug;
// Backlinks is the only field mutated from outside, by ingestion of other
// documents that reference it.
type Document struct {
	// Slug is the URL-safe path identifying the document (primary key),
	// e.g. `engineering/deployment-guide`.
	Slug  string `json:"slug" bson:"slug"`
	Title string `json:"title" bson:"title"`
	// ContentKey locates the raw markdown in the blob store.
	ContentKey string `json:"content_key" bson:"content_key"`
	// AccessLevel is the minimum clearance required to view this document.
	AccessLevel  access.Level `json:"access_level" bson:"access_level"`
	ServiceOwner string       `json:"service_owner" bson:"service_owner"`
	Tags         []string     `json:"tags" bson:"tags"`
	// LinksOut holds the document's outbound internal references as of its
	// last successful ingestion.
	LinksOut []string `json:"links_out" bson:"links_out"`
	// Backlinks is the set of documents referencing this one. Computed,
	// never client-supplied.
	Backlinks []string `json:"backlinks" bson:"backlinks"`
	// ParentSlug is an optional explicit hierarchy parent; empty means top-level.
	ParentSlug string `json:"parent_slug,omitempty" bson:"parent_slug,omitempty"`
	// Order sorts siblings in navigation; lower numbers first.
	Order int `json:"order" bson:"order"`
	// Hidden documents are excluded from navigation listings but remain
	// directly addressable.
	Hidden      bool      `json:"is_hidden" bson:"is_hidden"`
	LastUpdated time.Time `json:"last_updated" bson:"last_updated"`
}

// IngestRequest is the payload accepted by POST /api/v1/ingest.
type IngestRequest struct {
	ServiceToken string   `json:"service_token"`
	Slug         string   `json:"slug"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	AccessLevel  string   `json:"access_level"`
	ServiceOwner string   `json:"service_owner"`
	Tags         []string `json:"tags"`
	ParentSlug   string   `json:"parent_slug,omitempty"`
	Order        int      `json:"order,omitempty"`
	Hidden       bool     `json:"is_hidden,omitempty"`
}

// IngestResponse reports where an ingested document landed.
type IngestResponse struct {
	Message    string `json:"message"`
	Slug       string `json:"slug"`
	ContentKey string `json:"content_key"`
}

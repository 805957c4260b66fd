package repository

import (
	"context"

	"github.com/lekton/lekton/internal/access"
	"github.com/lekton/lekton/internal/document"
)

// DocumentRepository is the capability the orchestrator has over the document
// metadata store. Find methods return (nil, nil) when no record exists.
//
// Concurrency contract: Upsert sets every field except `backlinks` in one
// atomic operation (two concurrent ingests of the same slug serialize; the
// stored record is always one caller's full write). The backlink set is only
// ever touched by AddBacklink/RemoveBacklink, which are atomic set mutations
// against the target record. An Upsert can therefore never erase a backlink
// that a concurrent ingest of a referencing document just added.
type DocumentRepository interface {
	// Upsert creates or updates the record stored under doc.Slug, writing
	// every field except the backlink set. On first create the backlink set
	// starts empty; doc.Backlinks is ignored.
	Upsert(ctx context.Context, doc *document.Document) error

	// FindBySlug returns the document for slug, or nil if absent.
	FindBySlug(ctx context.Context, slug string) (*document.Document, error)

	// ListAccessible returns all non-hidden documents at or below maxLevel,
	// sorted by navigation order then slug.
	ListAccessible(ctx context.Context, maxLevel access.Level) ([]*document.Document, error)

	// AddBacklink adds source to the backlink set of target. A missing
	// target is a no-op, not an error: the backlink is recovered when the
	// target is eventually ingested (see FindReferencing).
	AddBacklink(ctx context.Context, target, source string) error

	// RemoveBacklink removes source from the backlink set of target.
	RemoveBacklink(ctx context.Context, target, source string) error

	// FindReferencing returns the slugs of all documents whose links_out
	// contains slug. Used to retroactively populate backlinks when a
	// previously dangling target is created.
	FindReferencing(ctx context.Context, slug string) ([]string, error)

	// Delete removes the record for slug. Returns apperr.ErrNotFound when
	// no record exists.
	Delete(ctx context.Context, slug string) error
}

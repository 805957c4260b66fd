package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lekton/lekton/internal/access"
	"github.com/lekton/lekton/internal/apperr"
	"github.com/lekton/lekton/internal/document"
	"github.com/lekton/lekton/internal/document/repository"
	"github.com/lekton/lekton/internal/links"
	"github.com/lekton/lekton/internal/schema"
	"github.com/lekton/lekton/internal/search"
	"github.com/lekton/lekton/internal/storage"
	"github.com/lekton/lekton/pkg/logger"
	"github.com/lekton/lekton/pkg/metrics"
)

// Submitter accepts documents for asynchronous search indexing.
type Submitter interface {
	Submit(doc *search.SearchDocument)
}

// Service orchestrates document and schema ingestion: authentication,
// validation, blob write, metadata commit, backlink reconciliation and
// search index submission, in that order. The blob write always precedes
// the metadata commit so a stored record never points at missing content;
// an orphaned blob from a failed run is overwritten by the retry.
type Service struct {
	serviceToken string
	docs         repository.DocumentRepository
	schemas      schema.Repository
	blobs        storage.BlobStore
	indexer      Submitter
	now          func() time.Time
}

func NewService(serviceToken string, docs repository.DocumentRepository, schemas schema.Repository, blobs storage.BlobStore, indexer Submitter) *Service {
	return &Service{
		serviceToken: serviceToken,
		docs:         docs,
		schemas:      schemas,
		blobs:        blobs,
		indexer:      indexer,
		now:          time.Now,
	}
}

// authorize checks the shared service token. An unset token rejects every
// request: ingestion fails closed rather than open.
func (s *Service) authorize(provided string) error {
	if s.serviceToken == "" || provided != s.serviceToken {
		metrics.IngestRejected.WithLabelValues("auth").Inc()
		return fmt.Errorf("invalid service token: %w", apperr.ErrAuth)
	}
	return nil
}

// validSlug accepts URL-safe slugs: alphanumerics, '-', '_', '.' and '/'
// as path separator, with no empty or dot-only segments.
func validSlug(slug string) bool {
	if slug == "" || strings.HasPrefix(slug, "/") || strings.HasSuffix(slug, "/") {
		return false
	}
	for _, seg := range strings.Split(slug, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
		for _, r := range seg {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
				r == '-', r == '_', r == '.':
			default:
				return false
			}
		}
	}
	return true
}

// IngestDocument runs the full document ingestion pipeline. The operation is
// idempotent: re-sending the same payload converges on the same blob key and
// the same metadata record.
func (s *Service) IngestDocument(ctx context.Context, req *document.IngestRequest) (*document.IngestResponse, error) {
	if err := s.authorize(req.ServiceToken); err != nil {
		return nil, err
	}
	if !validSlug(req.Slug) {
		metrics.IngestRejected.WithLabelValues("validation").Inc()
		return nil, fmt.Errorf("invalid slug %q: %w", req.Slug, apperr.ErrValidation)
	}
	if strings.TrimSpace(req.Title) == "" {
		metrics.IngestRejected.WithLabelValues("validation").Inc()
		return nil, fmt.Errorf("title must not be empty: %w", apperr.ErrValidation)
	}
	level, err := access.Parse(req.AccessLevel)
	if err != nil {
		metrics.IngestRejected.WithLabelValues("validation").Inc()
		return nil, err
	}

	contentKey := storage.DocumentKey(req.Slug)
	if err := s.blobs.Put(ctx, contentKey, []byte(req.Content), "text/markdown"); err != nil {
		return nil, err
	}

	linksOut := links.Extract(req.Content)
	validation, err := links.Validate(ctx, s.docs, linksOut)
	if err != nil {
		return nil, err
	}
	for _, slug := range validation.Dangling {
		logger.Warnf("document %s links to unknown document %s", req.Slug, slug)
		metrics.DanglingLinks.Inc()
	}

	prev, err := s.docs.FindBySlug(ctx, req.Slug)
	if err != nil {
		return nil, err
	}
	var prevLinks []string
	if prev != nil {
		prevLinks = prev.LinksOut
	}

	// Upsert writes every field except backlinks; the stored backlink set is
	// only ever changed through the atomic AddBacklink/RemoveBacklink
	// mutations below, so a concurrent ingest of a referencing document can
	// never be erased by this write.
	doc := &document.Document{
		Slug:         req.Slug,
		Title:        req.Title,
		ContentKey:   contentKey,
		AccessLevel:  level,
		ServiceOwner: req.ServiceOwner,
		Tags:         req.Tags,
		LinksOut:     linksOut,
		ParentSlug:   req.ParentSlug,
		Order:        req.Order,
		Hidden:       req.Hidden,
		LastUpdated:  s.now(),
	}
	if err := s.docs.Upsert(ctx, doc); err != nil {
		return nil, err
	}

	// First ingest: pick up backlinks from documents that referenced this
	// slug before it existed. The scan runs after the record exists, so a
	// referencing document ingested concurrently either shows up in the scan
	// or lands its own AddBacklink on the now-present record; $addToSet
	// semantics make the overlap harmless.
	if prev == nil {
		refs, err := s.docs.FindReferencing(ctx, req.Slug)
		if err != nil {
			return nil, err
		}
		for _, src := range refs {
			if src == req.Slug {
				continue
			}
			if err := s.docs.AddBacklink(ctx, req.Slug, src); err != nil {
				return nil, err
			}
		}
	}

	if err := s.reconcileBacklinks(ctx, req.Slug, prevLinks, linksOut); err != nil {
		return nil, err
	}

	s.indexer.Submit(search.FromDocument(doc, req.Content))
	metrics.DocumentsIngested.Inc()
	logger.Infof("ingested document %s (level %s, %d links)", req.Slug, level, len(linksOut))

	return &document.IngestResponse{
		Message:    "document ingested",
		Slug:       req.Slug,
		ContentKey: contentKey,
	}, nil
}

// IngestSchema stores a schema version: content to the blob store, then the
// version entry into the schema record. Re-sending an existing version
// replaces that version in place.
func (s *Service) IngestSchema(ctx context.Context, req *schema.IngestRequest) (*schema.IngestResponse, error) {
	if err := s.authorize(req.ServiceToken); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Name) == "" || !validSlug(req.Name) {
		metrics.IngestRejected.WithLabelValues("validation").Inc()
		return nil, fmt.Errorf("invalid schema name %q: %w", req.Name, apperr.ErrValidation)
	}
	if !schema.IsValidVersion(req.Version) {
		metrics.IngestRejected.WithLabelValues("validation").Inc()
		return nil, fmt.Errorf("invalid version %q: %w", req.Version, apperr.ErrValidation)
	}
	if !contains(schema.ValidTypes, req.Type) {
		metrics.IngestRejected.WithLabelValues("validation").Inc()
		return nil, fmt.Errorf("invalid schema type %q: %w", req.Type, apperr.ErrValidation)
	}
	if !contains(schema.ValidStatuses, req.Status) {
		metrics.IngestRejected.WithLabelValues("validation").Inc()
		return nil, fmt.Errorf("invalid status %q: %w", req.Status, apperr.ErrValidation)
	}

	contentKey := storage.SchemaKey(req.Name, req.Version, req.Content)
	if err := s.blobs.Put(ctx, contentKey, []byte(req.Content), contentTypeFor(contentKey)); err != nil {
		return nil, err
	}

	version := schema.Version{Version: req.Version, ContentKey: contentKey, Status: req.Status}

	// Ensure the record exists, then append; a duplicate version string means
	// a re-ingest, which replaces that entry in place. Each step is a single
	// atomic repository write, so concurrent ingests of the same schema never
	// lose a version.
	if err := s.schemas.Ensure(ctx, req.Name, req.Type); err != nil {
		return nil, err
	}
	if err := s.schemas.AppendVersion(ctx, req.Name, version); err != nil {
		if !errors.Is(err, apperr.ErrValidation) {
			return nil, err
		}
		if err := s.schemas.ReplaceVersion(ctx, req.Name, version); err != nil {
			return nil, err
		}
	}

	metrics.SchemasIngested.Inc()
	logger.Infof("ingested schema %s version %s (%s)", req.Name, req.Version, req.Status)

	return &schema.IngestResponse{
		Message:    "schema ingested",
		Name:       req.Name,
		Version:    req.Version,
		ContentKey: contentKey,
	}, nil
}

func contentTypeFor(key string) string {
	if strings.HasSuffix(key, ".json") {
		return "application/json"
	}
	return "application/yaml"
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

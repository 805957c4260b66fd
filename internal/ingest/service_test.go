package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lekton/lekton/internal/access"
	"github.com/lekton/lekton/internal/apperr"
	"github.com/lekton/lekton/internal/document"
	"github.com/lekton/lekton/internal/document/repository"
	"github.com/lekton/lekton/internal/schema"
	"github.com/lekton/lekton/internal/search"
	"github.com/lekton/lekton/internal/storage"
)

const testToken = "secret-token"

// syncSubmitter indexes synchronously, avoiding worker timing in tests.
type syncSubmitter struct {
	searcher search.Searcher
}

func (s *syncSubmitter) Submit(doc *search.SearchDocument) {
	_ = s.searcher.IndexDocument(context.Background(), doc)
}

type fixture struct {
	svc      *Service
	docs     *repository.MemoryRepo
	schemas  *schema.MemoryRepo
	blobs    *storage.MemoryStore
	searcher *search.MemorySearcher
}

func newFixture() *fixture {
	docs := repository.NewMemoryRepo()
	schemas := schema.NewMemoryRepo()
	blobs := storage.NewMemoryStore()
	searcher := search.NewMemorySearcher()
	svc := NewService(testToken, docs, schemas, blobs, &syncSubmitter{searcher: searcher})
	return &fixture{svc: svc, docs: docs, schemas: schemas, blobs: blobs, searcher: searcher}
}

func docRequest(slug, content string) *document.IngestRequest {
	return &document.IngestRequest{
		ServiceToken: testToken,
		Slug:         slug,
		Title:        "Title of " + slug,
		Content:      content,
		AccessLevel:  "public",
		ServiceOwner: "platform",
	}
}

func TestIngestDocument(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, err := f.svc.IngestDocument(ctx, docRequest("guide", "# Guide\n\nHello."))
	require.NoError(t, err)
	require.Equal(t, "guide", resp.Slug)
	require.Equal(t, "docs/guide.md", resp.ContentKey)

	content, ok, err := f.blobs.Get(ctx, "docs/guide.md")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "# Guide\n\nHello.", string(content))

	doc, err := f.docs.FindBySlug(ctx, "guide")
	require.NoError(t, err)
	require.NotNil(t, doc)
	require.Equal(t, access.Public, doc.AccessLevel)
	require.Equal(t, 1, f.searcher.Len())
}

func TestIngestDocumentIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	req := docRequest("guide", "body")

	first, err := f.svc.IngestDocument(ctx, req)
	require.NoError(t, err)
	second, err := f.svc.IngestDocument(ctx, req)
	require.NoError(t, err)

	require.Equal(t, first.ContentKey, second.ContentKey)
	require.Equal(t, 1, f.blobs.Len())
	require.Equal(t, 1, f.searcher.Len())
}

func TestIngestDocumentRejectsBadToken(t *testing.T) {
	f := newFixture()
	req := docRequest("guide", "body")
	req.ServiceToken = "wrong"

	_, err := f.svc.IngestDocument(context.Background(), req)
	require.True(t, errors.Is(err, apperr.ErrAuth))

	// nothing was written anywhere
	require.Equal(t, 0, f.blobs.Len())
	doc, _ := f.docs.FindBySlug(context.Background(), "guide")
	require.Nil(t, doc)
}

func TestIngestFailsClosedWithoutConfiguredToken(t *testing.T) {
	f := newFixture()
	f.svc.serviceToken = ""
	req := docRequest("guide", "body")
	req.ServiceToken = ""

	_, err := f.svc.IngestDocument(context.Background(), req)
	require.True(t, errors.Is(err, apperr.ErrAuth))
}

func TestIngestDocumentValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	bad := docRequest("../etc", "body")
	_, err := f.svc.IngestDocument(ctx, bad)
	require.True(t, errors.Is(err, apperr.ErrValidation))

	noTitle := docRequest("ok", "body")
	noTitle.Title = "  "
	_, err = f.svc.IngestDocument(ctx, noTitle)
	require.True(t, errors.Is(err, apperr.ErrValidation))

	badLevel := docRequest("ok", "body")
	badLevel.AccessLevel = "root"
	_, err = f.svc.IngestDocument(ctx, badLevel)
	require.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestBacklinksFollowLinks(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.IngestDocument(ctx, docRequest("a", "no links"))
	require.NoError(t, err)
	_, err = f.svc.IngestDocument(ctx, docRequest("b", "see [a](/docs/a)"))
	require.NoError(t, err)

	a, err := f.docs.FindBySlug(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, a.Backlinks)

	// re-ingesting b without the link removes the backlink
	_, err = f.svc.IngestDocument(ctx, docRequest("b", "no more links"))
	require.NoError(t, err)
	a, err = f.docs.FindBySlug(ctx, "a")
	require.NoError(t, err)
	require.Empty(t, a.Backlinks)
}

func TestDanglingLinkResolvedOnCreate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// x links to z before z exists; ingestion succeeds anyway
	_, err := f.svc.IngestDocument(ctx, docRequest("x", "[z](/docs/z)"))
	require.NoError(t, err)

	x, err := f.docs.FindBySlug(ctx, "x")
	require.NoError(t, err)
	require.Equal(t, []string{"z"}, x.LinksOut)

	// when z arrives it picks up the backlink retroactively
	_, err = f.svc.IngestDocument(ctx, docRequest("z", "target"))
	require.NoError(t, err)

	z, err := f.docs.FindBySlug(ctx, "z")
	require.NoError(t, err)
	require.Equal(t, []string{"x"}, z.Backlinks)
}

// interleavedRepo fires a one-shot hook after a record read, simulating a
// write that lands between the read and the following upsert.
type interleavedRepo struct {
	*repository.MemoryRepo
	hook func()
}

func (r *interleavedRepo) FindBySlug(ctx context.Context, slug string) (*document.Document, error) {
	d, err := r.MemoryRepo.FindBySlug(ctx, slug)
	if h := r.hook; h != nil {
		r.hook = nil
		h()
	}
	return d, err
}

func TestReingestKeepsBacklinkAddedMeanwhile(t *testing.T) {
	docs := &interleavedRepo{MemoryRepo: repository.NewMemoryRepo()}
	svc := NewService(testToken, docs, schema.NewMemoryRepo(), storage.NewMemoryStore(),
		&syncSubmitter{searcher: search.NewMemorySearcher()})
	ctx := context.Background()

	_, err := svc.IngestDocument(ctx, docRequest("z", "target"))
	require.NoError(t, err)

	// while z is being re-ingested, x arrives referencing z: x's record and
	// the z backlink land between z's read and z's metadata write
	docs.hook = func() {
		x := &document.Document{Slug: "x", Title: "X", LinksOut: []string{"z"}}
		require.NoError(t, docs.MemoryRepo.Upsert(ctx, x))
		require.NoError(t, docs.AddBacklink(ctx, "z", "x"))
	}
	_, err = svc.IngestDocument(ctx, docRequest("z", "target again"))
	require.NoError(t, err)

	z, err := docs.FindBySlug(ctx, "z")
	require.NoError(t, err)
	require.Equal(t, []string{"x"}, z.Backlinks)
}

func TestConcurrentIngestsSameTarget(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.IngestDocument(ctx, docRequest("z", "target"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, slug := range []string{"x", "y"} {
		wg.Add(1)
		go func(slug string) {
			defer wg.Done()
			_, err := f.svc.IngestDocument(ctx, docRequest(slug, "[z](/docs/z)"))
			errs <- err
		}(slug)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	z, err := f.docs.FindBySlug(ctx, "z")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"x", "y"}, z.Backlinks)
}

func TestIngestSchema(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, err := f.svc.IngestSchema(ctx, &schema.IngestRequest{
		ServiceToken: testToken,
		Name:         "payment-api",
		Type:         schema.TypeOpenAPI,
		Version:      "1.0.0",
		Status:       schema.StatusStable,
		Content:      "openapi: 3.0.0",
	})
	require.NoError(t, err)
	require.Equal(t, "schemas/payment-api/1.0.0.yaml", resp.ContentKey)

	// a second version appends
	_, err = f.svc.IngestSchema(ctx, &schema.IngestRequest{
		ServiceToken: testToken,
		Name:         "payment-api",
		Type:         schema.TypeOpenAPI,
		Version:      "2.0.0",
		Status:       schema.StatusBeta,
		Content:      `{"openapi": "3.1.0"}`,
	})
	require.NoError(t, err)

	rec, err := f.schemas.FindByName(ctx, "payment-api")
	require.NoError(t, err)
	require.Len(t, rec.Versions, 2)
	require.Equal(t, "schemas/payment-api/2.0.0.json", rec.Versions[1].ContentKey)

	// re-sending an existing version replaces it in place
	_, err = f.svc.IngestSchema(ctx, &schema.IngestRequest{
		ServiceToken: testToken,
		Name:         "payment-api",
		Type:         schema.TypeOpenAPI,
		Version:      "2.0.0",
		Status:       schema.StatusStable,
		Content:      `{"openapi": "3.1.0"}`,
	})
	require.NoError(t, err)

	rec, err = f.schemas.FindByName(ctx, "payment-api")
	require.NoError(t, err)
	require.Len(t, rec.Versions, 2)
	require.Equal(t, schema.StatusStable, rec.Versions[1].Status)
}

func TestIngestSchemaValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	cases := []*schema.IngestRequest{
		{ServiceToken: testToken, Name: "", Type: schema.TypeOpenAPI, Version: "1.0.0", Status: schema.StatusStable},
		{ServiceToken: testToken, Name: "a", Type: schema.TypeOpenAPI, Version: "not-semver", Status: schema.StatusStable},
		{ServiceToken: testToken, Name: "a", Type: "soap", Version: "1.0.0", Status: schema.StatusStable},
		{ServiceToken: testToken, Name: "a", Type: schema.TypeOpenAPI, Version: "1.0.0", Status: "final"},
	}
	for _, req := range cases {
		_, err := f.svc.IngestSchema(ctx, req)
		require.True(t, errors.Is(err, apperr.ErrValidation), "request %+v", req)
	}
}

func TestSearchVisibilityByLevel(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	pub := docRequest("intro", "# Intro\n\nwelcome")
	_, err := f.svc.IngestDocument(ctx, pub)
	require.NoError(t, err)

	dev := docRequest("internals", "# Internals\n\nwelcome inside")
	dev.AccessLevel = "developer"
	_, err = f.svc.IngestDocument(ctx, dev)
	require.NoError(t, err)

	hits, err := f.searcher.Search(ctx, "welcome", access.Public)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "intro", hits[0].Slug)

	hits, err = f.searcher.Search(ctx, "welcome", access.Developer)
	require.NoError(t, err)
	require.Len(t, hits, 2)
}

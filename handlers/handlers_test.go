package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/lekton/lekton/internal/config"
	"github.com/lekton/lekton/internal/document/repository"
	"github.com/lekton/lekton/internal/ingest"
	"github.com/lekton/lekton/internal/schema"
	"github.com/lekton/lekton/internal/search"
	"github.com/lekton/lekton/internal/storage"
)

const testToken = "test-service-token"

// syncSubmitter indexes synchronously so tests can assert on search results
// immediately after ingesting.
type syncSubmitter struct {
	searcher search.Searcher
}

func (s *syncSubmitter) Submit(doc *search.SearchDocument) {
	_ = s.searcher.IndexDocument(context.Background(), doc)
}

type testServer struct {
	engine   *gin.Engine
	docs     *repository.MemoryRepo
	schemas  *schema.MemoryRepo
	blobs    *storage.MemoryStore
	searcher *search.MemorySearcher
}

// newTestServer wires the full API without an identity provider, so the
// access_level query parameter is honored.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newServer(t, true)
}

// newClaimsOnlyServer wires the API the way a deployment with OIDC runs it:
// level comes from verified claims only. The X-Test-Level header stands in
// for the auth middleware and injects claims for that level.
func newClaimsOnlyServer(t *testing.T) *testServer {
	t.Helper()
	return newServer(t, false)
}

func newServer(t *testing.T, trustParam bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	docs := repository.NewMemoryRepo()
	schemas := schema.NewMemoryRepo()
	blobs := storage.NewMemoryStore()
	searcher := search.NewMemorySearcher()
	svc := ingest.NewService(testToken, docs, schemas, blobs, &syncSubmitter{searcher: searcher})

	engine := gin.New()
	api := engine.Group("/api/v1")
	if !trustParam {
		api.Use(func(c *gin.Context) {
			if level := c.GetHeader("X-Test-Level"); level != "" {
				c.Set("claims", map[string]interface{}{"access_level": level})
			}
			c.Next()
		})
	}
	NewIngestHandler(svc).Register(api)
	NewSchemaHandler(svc, schemas, blobs).Register(api)
	NewSearchHandler(searcher, config.MeiliConfig{
		APIKey:    "engine-key",
		APIKeyUID: "uid-1",
		Index:     "documents",
		TokenTTL:  3600000000000,
	}, trustParam).Register(api)
	NewDocumentHandler(docs, blobs, trustParam).Register(api)
	NewUploadHandler(blobs, testToken).Register(api)
	RegisterSwagger(engine)

	return &testServer{engine: engine, docs: docs, schemas: schemas, blobs: blobs, searcher: searcher}
}

func (s *testServer) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) ingestDoc(t *testing.T, slug, level, content string) {
	t.Helper()
	body := `{"service_token":"` + testToken + `","slug":"` + slug + `","title":"Title ` + slug + `","content":` + jsonString(content) + `,"access_level":"` + level + `","service_owner":"platform"}`
	w := s.do(http.MethodPost, "/api/v1/ingest", body, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func jsonString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}

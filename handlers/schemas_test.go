package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func ingestSchema(t *testing.T, s *testServer, version, status, content string) {
	t.Helper()
	body := `{"service_token":"` + testToken + `","name":"payment-api","schema_type":"openapi","version":"` + version + `","status":"` + status + `","content":` + jsonString(content) + `}`
	w := s.do(http.MethodPost, "/api/v1/schemas", body, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestSchemaCatalog(t *testing.T) {
	s := newTestServer(t)

	ingestSchema(t, s, "1.0.0", "stable", "openapi: 3.0.0")
	ingestSchema(t, s, "1.10.0", "stable", "openapi: 3.0.0")
	ingestSchema(t, s, "2.0.0", "beta", `{"openapi": "3.1.0"}`)

	w := s.do(http.MethodGet, "/api/v1/schemas", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list []SchemaSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.Equal(t, "payment-api", list[0].Name)
	// latest stable wins over the newer beta
	require.Equal(t, "1.10.0", list[0].LatestVersion)
	require.Equal(t, "stable", list[0].LatestStatus)
	require.Equal(t, 3, list[0].VersionCount)
}

func TestSchemaCatalogFallsBackToLatest(t *testing.T) {
	s := newTestServer(t)
	ingestSchema(t, s, "0.1.0", "beta", "openapi: 3.0.0")

	w := s.do(http.MethodGet, "/api/v1/schemas", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list []SchemaSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Equal(t, "0.1.0", list[0].LatestVersion)
	require.Equal(t, "beta", list[0].LatestStatus)
}

func TestSchemaDetail(t *testing.T) {
	s := newTestServer(t)
	ingestSchema(t, s, "1.0.0", "stable", "openapi: 3.0.0")

	w := s.do(http.MethodGet, "/api/v1/schemas/payment-api", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var detail map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	require.Equal(t, "payment-api", detail["name"])

	w = s.do(http.MethodGet, "/api/v1/schemas/unknown", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSchemaVersionContent(t *testing.T) {
	s := newTestServer(t)
	ingestSchema(t, s, "1.0.0", "stable", `{"openapi": "3.1.0"}`)

	w := s.do(http.MethodGet, "/api/v1/schemas/payment-api/1.0.0", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))
	require.Equal(t, `{"openapi": "3.1.0"}`, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/schemas/payment-api/9.9.9", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

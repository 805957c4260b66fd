package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIngestEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/ingest",
		`{"service_token":"`+testToken+`","slug":"getting-started","title":"Getting Started","content":"# Hi","access_level":"public"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "getting-started", resp["slug"])
	require.Equal(t, "docs/getting-started.md", resp["content_key"])
}

func TestIngestEndpointRejectsBadToken(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/ingest",
		`{"service_token":"wrong","slug":"x","title":"X","content":"c","access_level":"public"}`, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIngestEndpointRejectsBadLevel(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/ingest",
		`{"service_token":"`+testToken+`","slug":"x","title":"X","content":"c","access_level":"superuser"}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngestEndpointRejectsMalformedBody(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/ingest", `{not json`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

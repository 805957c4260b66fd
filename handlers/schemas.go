package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lekton/lekton/internal/ingest"
	"github.com/lekton/lekton/internal/schema"
	"github.com/lekton/lekton/internal/storage"
)

// SchemaHandler serves the schema registry: ingestion, catalog listing and
// raw version content.
type SchemaHandler struct {
	svc   *ingest.Service
	repo  schema.Repository
	blobs storage.BlobStore
}

func NewSchemaHandler(svc *ingest.Service, repo schema.Repository, blobs storage.BlobStore) *SchemaHandler {
	return &SchemaHandler{svc: svc, repo: repo, blobs: blobs}
}

func (h *SchemaHandler) Register(rg *gin.RouterGroup) {
	s := rg.Group("/schemas")
	s.POST("", h.IngestSchema)
	s.GET("", h.ListSchemas)
	s.GET("/:name", h.GetSchema)
	s.GET("/:name/:version", h.GetVersionContent)
}

// SchemaSummary is one row of the catalog listing. LatestVersion is the
// highest stable version, falling back to the highest version of any status
// when no stable one exists.
type SchemaSummary struct {
	Name          string `json:"name"`
	Type          string `json:"schema_type"`
	LatestVersion string `json:"latest_version"`
	LatestStatus  string `json:"latest_status"`
	VersionCount  int    `json:"version_count"`
}

func (h *SchemaHandler) IngestSchema(c *gin.Context) {
	var req schema.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resp, err := h.svc.IngestSchema(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SchemaHandler) ListSchemas(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]SchemaSummary, 0, len(list))
	for _, s := range list {
		summary := SchemaSummary{Name: s.Name, Type: s.Type, VersionCount: len(s.Versions)}
		latest, ok := schema.LatestStable(s)
		if !ok {
			latest, ok = schema.Latest(s)
		}
		if ok {
			summary.LatestVersion = latest.Version
			summary.LatestStatus = latest.Status
		}
		out = append(out, summary)
	}
	c.JSON(http.StatusOK, out)
}

func (h *SchemaHandler) GetSchema(c *gin.Context) {
	name := c.Param("name")
	s, err := h.repo.FindByName(c.Request.Context(), name)
	if err != nil {
		writeError(c, err)
		return
	}
	if s == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "schema not found"})
		return
	}
	c.JSON(http.StatusOK, s)
}

// GetVersionContent streams the raw spec file for one schema version.
func (h *SchemaHandler) GetVersionContent(c *gin.Context) {
	name, version := c.Param("name"), c.Param("version")
	s, err := h.repo.FindByName(c.Request.Context(), name)
	if err != nil {
		writeError(c, err)
		return
	}
	if s == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "schema not found"})
		return
	}
	v, ok := schema.FindVersion(s, version)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "version not found"})
		return
	}
	content, ok, err := h.blobs.Get(c.Request.Context(), v.ContentKey)
	if err != nil {
		writeError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "schema content missing"})
		return
	}
	contentType := "application/yaml"
	if strings.HasSuffix(v.ContentKey, ".json") {
		contentType = "application/json"
	}
	c.Data(http.StatusOK, contentType, content)
}

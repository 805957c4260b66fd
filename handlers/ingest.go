package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lekton/lekton/internal/document"
	"github.com/lekton/lekton/internal/ingest"
)

// IngestHandler exposes the CI/CD write path.
type IngestHandler struct {
	svc *ingest.Service
}

func NewIngestHandler(svc *ingest.Service) *IngestHandler {
	return &IngestHandler{svc: svc}
}

func (h *IngestHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/ingest", h.IngestDocument)
}

// IngestDocument accepts a full document payload and runs the ingestion
// pipeline.
func (h *IngestHandler) IngestDocument(c *gin.Context) {
	var req document.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resp, err := h.svc.IngestDocument(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

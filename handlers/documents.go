package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lekton/lekton/internal/document/repository"
	"github.com/lekton/lekton/internal/storage"
)

// DocumentHandler serves the read side of the documentation portal.
type DocumentHandler struct {
	repo       repository.DocumentRepository
	blobs      storage.BlobStore
	trustParam bool
}

// NewDocumentHandler builds the handler. trustParam allows the access_level
// query parameter to widen visibility; pass it only when no identity
// provider is configured.
func NewDocumentHandler(repo repository.DocumentRepository, blobs storage.BlobStore, trustParam bool) *DocumentHandler {
	return &DocumentHandler{repo: repo, blobs: blobs, trustParam: trustParam}
}

func (h *DocumentHandler) Register(rg *gin.RouterGroup) {
	d := rg.Group("/docs")
	d.GET("", h.ListDocuments)
	d.GET("/*slug", h.GetDocument)
}

// ListDocuments returns the navigation listing: non-hidden documents at or
// below the caller's level, in navigation order.
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	level, ok := callerLevel(c, h.trustParam)
	if !ok {
		return
	}
	docs, err := h.repo.ListAccessible(c.Request.Context(), level)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// GetDocument returns one document's metadata plus its raw markdown. Hidden
// documents stay directly addressable; documents above the caller's level
// are refused, and absence is only reported for documents the caller could
// see in the first place.
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	slug := strings.TrimPrefix(c.Param("slug"), "/")
	level, ok := callerLevel(c, h.trustParam)
	if !ok {
		return
	}
	doc, err := h.repo.FindBySlug(c.Request.Context(), slug)
	if err != nil {
		writeError(c, err)
		return
	}
	if doc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}
	if !doc.AccessLevel.AtMost(level) {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient access level"})
		return
	}
	content, found, err := h.blobs.Get(c.Request.Context(), doc.ContentKey)
	if err != nil {
		writeError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "document content missing"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"document": doc, "content": string(content)})
}

package handlers

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lekton/lekton/internal/apperr"
	"github.com/lekton/lekton/internal/storage"
)

const maxImageSize = 8 << 20 // 8 MiB

// UploadHandler stores images referenced from documentation pages.
type UploadHandler struct {
	blobs        storage.BlobStore
	serviceToken string
	now          func() time.Time
}

func NewUploadHandler(blobs storage.BlobStore, serviceToken string) *UploadHandler {
	return &UploadHandler{blobs: blobs, serviceToken: serviceToken, now: time.Now}
}

func (h *UploadHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/upload-image", h.UploadImage)
	rg.GET("/image/:filename", h.GetImage)
}

// UploadImage accepts a multipart image upload from the ingestion pipeline
// and returns the key it was stored under.
func (h *UploadHandler) UploadImage(c *gin.Context) {
	if h.serviceToken == "" || c.GetHeader("X-Service-Token") != h.serviceToken {
		writeError(c, apperr.ErrAuth)
		return
	}
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only image uploads are accepted"})
		return
	}
	content, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
		return
	}
	if len(content) > maxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds size limit"})
		return
	}

	key := storage.ImageKey(header.Filename, h.now())
	if err := h.blobs.Put(c.Request.Context(), key, content, contentType); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "url": "/api/v1/image/" + strings.TrimPrefix(key, "images/")})
}

// GetImage serves a stored image by its file name component.
func (h *UploadHandler) GetImage(c *gin.Context) {
	filename := c.Param("filename")
	content, ok, err := h.blobs.Get(c.Request.Context(), "images/"+filename)
	if err != nil {
		writeError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
		return
	}
	c.Data(http.StatusOK, contentTypeForImage(filename), content)
}

func contentTypeForImage(filename string) string {
	switch {
	case strings.HasSuffix(filename, ".png"):
		return "image/png"
	case strings.HasSuffix(filename, ".gif"):
		return "image/gif"
	case strings.HasSuffix(filename, ".svg"):
		return "image/svg+xml"
	case strings.HasSuffix(filename, ".webp"):
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

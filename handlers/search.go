package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lekton/lekton/internal/config"
	"github.com/lekton/lekton/internal/search"
)

// SearchHandler serves full-text queries and scoped tenant tokens. Visibility
// is bounded by the caller's access level on both paths.
type SearchHandler struct {
	searcher   search.Searcher
	meili      config.MeiliConfig
	trustParam bool
	now        func() time.Time
}

// NewSearchHandler builds the handler. trustParam allows the access_level
// query parameter to widen visibility; pass it only when no identity
// provider is configured.
func NewSearchHandler(searcher search.Searcher, meili config.MeiliConfig, trustParam bool) *SearchHandler {
	return &SearchHandler{searcher: searcher, meili: meili, trustParam: trustParam, now: time.Now}
}

func (h *SearchHandler) Register(rg *gin.RouterGroup) {
	s := rg.Group("/search")
	s.GET("", h.Search)
	s.GET("/token", h.Token)
}

// Search runs a query against the index, filtered to the caller's level. An
// empty query is a browse: it lists every indexed document the caller may
// see.
func (h *SearchHandler) Search(c *gin.Context) {
	query := c.Query("q")
	level, ok := callerLevel(c, h.trustParam)
	if !ok {
		return
	}
	hits, err := h.searcher.Search(c.Request.Context(), query, level)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hits": hits, "count": len(hits)})
}

// Token issues a short-lived search token the frontend can use to query the
// engine directly. The embedded filter pins the caller's level, so the token
// grants no wider visibility than this API would.
func (h *SearchHandler) Token(c *gin.Context) {
	if h.meili.APIKey == "" || h.meili.APIKeyUID == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search tokens not configured"})
		return
	}
	level, ok := callerLevel(c, h.trustParam)
	if !ok {
		return
	}
	token, err := search.TenantToken(h.meili.APIKey, h.meili.APIKeyUID, h.meili.Index, level, h.meili.TokenTTL, h.now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_in": int(h.meili.TokenTTL.Seconds()),
	})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lekton/lekton/internal/access"
	"github.com/lekton/lekton/internal/apperr"
	"github.com/lekton/lekton/internal/oidc"
)

// writeError maps application errors onto HTTP responses.
func writeError(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
}

// callerLevel resolves the caller's access level. Verified token claims win.
// The `access_level` query parameter (strictly parsed) is honored only when
// trustParam is set, which deployments do only while no identity provider is
// configured; with one configured, an unauthenticated caller cannot raise
// their own level. Anonymous callers get public visibility.
func callerLevel(c *gin.Context, trustParam bool) (access.Level, bool) {
	if v, ok := c.Get("claims"); ok {
		if claims, ok2 := v.(map[string]interface{}); ok2 {
			return oidc.LevelFromClaims(claims), true
		}
	}
	if raw := c.Query("access_level"); raw != "" && trustParam {
		level, err := access.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return access.Public, false
		}
		return level, true
	}
	return access.Public, true
}

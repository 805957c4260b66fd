package oidc

import (
	"github.com/lekton/lekton/internal/access"
)

// LevelFromClaims resolves the caller's access level from verified token
// claims. The identity provider sets an `access_level` claim with one of the
// level names; absent or malformed claims resolve to public visibility.
func LevelFromClaims(claims map[string]interface{}) access.Level {
	raw, ok := claims["access_level"].(string)
	if !ok {
		return access.Public
	}
	level, err := access.Parse(raw)
	if err != nil {
		return access.Public
	}
	return level
}

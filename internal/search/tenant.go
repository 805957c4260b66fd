package search

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lekton/lekton/internal/access"
)

// TenantToken issues a short-lived search token scoped to maxLevel. The
// token is a JWT signed with the engine API key; the engine enforces the
// embedded searchRules filter on every query made with it, so a client
// holding the token can never widen its visibility.
func TenantToken(apiKey, apiKeyUID, index string, maxLevel access.Level, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"searchRules": map[string]any{
			index: map[string]any{
				"filter": fmt.Sprintf("access_level <= %d", int(maxLevel)),
			},
		},
		"apiKeyUid": apiKeyUID,
		"exp":       now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(apiKey))
	if err != nil {
		return "", fmt.Errorf("sign search token: %w", err)
	}
	return signed, nil
}

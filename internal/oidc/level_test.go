package oidc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lekton/lekton/internal/access"
)

func TestLevelFromClaims(t *testing.T) {
	require.Equal(t, access.Architect, LevelFromClaims(map[string]interface{}{"access_level": "architect"}))
	require.Equal(t, access.Public, LevelFromClaims(map[string]interface{}{"access_level": "wizard"}))
	require.Equal(t, access.Public, LevelFromClaims(map[string]interface{}{}))
	require.Equal(t, access.Public, LevelFromClaims(map[string]interface{}{"access_level": 3}))
}

func TestInsecureVerifier(t *testing.T) {
	payload, _ := json.Marshal(map[string]interface{}{"sub": "u1", "access_level": "admin"})
	raw := "hdr." + base64.RawURLEncoding.EncodeToString(payload) + ".sig"

	tok, err := NewInsecureVerifier().Verify(context.Background(), raw)
	require.NoError(t, err)

	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	require.Equal(t, access.Admin, LevelFromClaims(claims))
}

func TestInsecureVerifierRejectsGarbage(t *testing.T) {
	_, err := NewInsecureVerifier().Verify(context.Background(), "not-a-jwt")
	require.Error(t, err)
}

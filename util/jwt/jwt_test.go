package jwt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	tok, err := Issue("secret", 42, "testuser1", 1)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := ParseAuth("Bearer "+tok, "secret")
	require.NoError(t, err)
	require.Equal(t, float64(42), claims["sub"])
	require.Equal(t, "testuser1", claims["username"])

	// Raw token without the scheme prefix also parses.
	claims, err = Parse(tok, "secret")
	require.NoError(t, err)
	require.Equal(t, "testuser1", claims["username"])
}

func TestParse_WrongSecret(t *testing.T) {
	tok, err := Issue("secret", 42, "testuser1", 1)
	require.NoError(t, err)

	_, err = Parse(tok, "other-secret")
	require.Error(t, err)
}

func TestParseAuth_Missing(t *testing.T) {
	_, err := ParseAuth("", "secret")
	require.Error(t, err)

	_, err = ParseAuth("Bearer ", "secret")
	require.Error(t, err)
}

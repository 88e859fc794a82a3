package cryptox

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	for _, size := range []int{TokenSize128, TokenSize256, 24} {
		token, err := GenerateToken(size)
		require.NoError(t, err)

		raw, err := base64.RawURLEncoding.DecodeString(token)
		require.NoError(t, err, "token must be url-safe base64")
		require.Len(t, raw, size)

		other, err := GenerateToken(size)
		require.NoError(t, err)
		require.NotEqual(t, token, other)
	}
}

func TestGenerateToken_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		token, err := GenerateToken(size)
		require.Error(t, err)
		require.Empty(t, token)
	}
}

func TestMustGenerateToken_Panics(t *testing.T) {
	require.NotPanics(t, func() { MustGenerateToken(TokenSize256) })
	require.Panics(t, func() { MustGenerateToken(0) })
}

func TestFingerprintToken(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		require.Equal(t, FingerprintToken("abc"), FingerprintToken("abc"))
	})

	t.Run("differs per input", func(t *testing.T) {
		require.NotEqual(t, FingerprintToken("abc"), FingerprintToken("abd"))
	})

	t.Run("never the raw value", func(t *testing.T) {
		token := MustGenerateToken(TokenSize256)
		require.NotEqual(t, token, FingerprintToken(token))
		require.Len(t, FingerprintToken(token), 43)
	})
}

func TestMatchFingerprint(t *testing.T) {
	token := MustGenerateToken(TokenSize256)
	fp := FingerprintToken(token)

	require.True(t, MatchFingerprint(token, fp))
	require.False(t, MatchFingerprint(token+"x", fp))
	require.False(t, MatchFingerprint("", fp))
}

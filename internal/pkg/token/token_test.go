package token

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShape(t *testing.T) {
	tok, err := New()
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}$`), tok)
}

func TestNewDoesNotRepeat(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 100; i++ {
		tok, err := New()
		require.NoError(t, err)
		_, dup := seen[tok]
		require.False(t, dup)
		seen[tok] = struct{}{}
	}
}

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskvault/duskvault/pkg/vaulterr"
)

func TestSanitizeIdentifier_Accepts(t *testing.T) {
	tests := []string{"main", "wallet1", "ABC123", "0"}
	for _, raw := range tests {
		clean, err := sanitizeIdentifier("wallet", raw)
		require.NoError(t, err)
		assert.Equal(t, raw, clean)
	}
}

func TestSanitizeIdentifier_RejectsTraversal(t *testing.T) {
	tests := []string{
		"../../etc/passwd",
		"../secret",
		"a/b",
		"a b",
		"wallet.json",
		"",
		"wallet;rm -rf",
	}
	for _, raw := range tests {
		_, err := sanitizeIdentifier("wallet", raw)
		require.Error(t, err)
		assert.True(t, vaulterr.Is(err, vaulterr.KindInvalidInput))
	}
}

func TestSanitizeIdentifier_MessageNamesKind(t *testing.T) {
	_, err := sanitizeIdentifier("group", "../x")
	require.Error(t, err)
	var ve *vaulterr.Error
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Message, "group id")
}

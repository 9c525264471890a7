package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starfrom/agentos-gateway/internal/model"
)

func TestIssue_APIKeyShape(t *testing.T) {
	s := Issue(model.CredentialKindAPIKey)

	assert.Regexp(t, `^sk-[a-f0-9]{64}$`, s.Plaintext)
	assert.Len(t, s.Plaintext, 67)
	assert.Equal(t, s.Plaintext[:12], s.Prefix)
	assert.True(t, strings.HasPrefix(s.Prefix, "sk-"))
	assert.Len(t, s.Hash, 64)
}

func TestIssue_MCPTokenShape(t *testing.T) {
	s := Issue(model.CredentialKindMCPToken)

	assert.Regexp(t, `^mcp-[a-f0-9]{64}$`, s.Plaintext)
	assert.Equal(t, "mcp-", s.Prefix[:4])
	assert.Len(t, s.Prefix, PrefixLength)
}

func TestIssue_HashMatchesPlaintext(t *testing.T) {
	s := Issue(model.CredentialKindAPIKey)
	assert.Equal(t, HashSecret(s.Plaintext), s.Hash)
	assert.NotContains(t, s.Hash, s.Plaintext)
}

func TestIssue_NeverRepeats(t *testing.T) {
	seen := make(map[string]bool, 200)
	for i := 0; i < 200; i++ {
		s := Issue(model.CredentialKindMCPToken)
		require.False(t, seen[s.Plaintext], "duplicate secret generated")
		seen[s.Plaintext] = true
	}
}

func TestHashSecret_KnownVector(t *testing.T) {
	// sha256("abc")
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", HashSecret("abc"))
}

func TestParseSecret(t *testing.T) {
	hex64 := strings.Repeat("ab", 32)
	tests := []struct {
		name   string
		secret string
		kind   model.CredentialKind
		ok     bool
	}{
		{"api key", "sk-" + hex64, model.CredentialKindAPIKey, true},
		{"mcp token", "mcp-" + hex64, model.CredentialKindMCPToken, true},
		{"uppercase hex", "sk-" + strings.ToUpper(hex64), "", false},
		{"short", "sk-" + hex64[:63], "", false},
		{"long", "sk-" + hex64 + "a", "", false},
		{"unknown tag", "pk-" + hex64, "", false},
		{"non hex", "sk-" + strings.Repeat("zz", 32), "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := ParseSecret(tt.secret)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.kind, kind)
		})
	}
}

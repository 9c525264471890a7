package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"regexp"

	"github.com/starfrom/agentos-gateway/internal/model"
)

// PrefixLength is how many leading plaintext characters are kept for display.
const PrefixLength = 12

const secretBytes = 32

// IssuedSecret is a freshly generated bearer secret. Plaintext must be handed
// to the caller once and then dropped.
type IssuedSecret struct {
	Plaintext string
	Prefix    string
	Hash      string
}

// Issue generates a new secret for the given kind: the kind tag, a dash, and
// 64 lowercase hex characters from crypto/rand. It panics if the system
// randomness source fails.
func Issue(kind model.CredentialKind) IssuedSecret {
	raw := make([]byte, secretBytes)
	if _, err := rand.Read(raw); err != nil {
		panic("crypto/rand: " + err.Error())
	}
	plaintext := kind.Tag() + "-" + hex.EncodeToString(raw)
	return IssuedSecret{
		Plaintext: plaintext,
		Prefix:    plaintext[:PrefixLength],
		Hash:      HashSecret(plaintext),
	}
}

// HashSecret returns the hex SHA-256 digest used as the credential lookup key.
func HashSecret(plaintext string) string {
	h := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(h[:])
}

var secretPattern = regexp.MustCompile(`^(sk|mcp)-[a-f0-9]{64}$`)

// ParseSecret validates the shape of a plaintext secret and returns its kind.
// It performs no lookup.
func ParseSecret(secret string) (model.CredentialKind, bool) {
	m := secretPattern.FindStringSubmatch(secret)
	if m == nil {
		return "", false
	}
	switch m[1] {
	case "sk":
		return model.CredentialKindAPIKey, true
	case "mcp":
		return model.CredentialKindMCPToken, true
	}
	return "", false
}

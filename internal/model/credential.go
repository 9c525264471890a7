package model

import (
	"net/netip"
	"time"
)

// CredentialKind distinguishes the two bearer secret families. The kind is
// also the plaintext tag, so a secret's kind can be read off its first chars.
type CredentialKind string

const (
	CredentialKindAPIKey   CredentialKind = "api_key"
	CredentialKindMCPToken CredentialKind = "mcp_token"
)

// Tag returns the plaintext prefix tag for the kind ("sk" or "mcp").
func (k CredentialKind) Tag() string {
	switch k {
	case CredentialKindAPIKey:
		return "sk"
	case CredentialKindMCPToken:
		return "mcp"
	}
	return ""
}

// Valid reports whether k is a known kind.
func (k CredentialKind) Valid() bool {
	return k.Tag() != ""
}

// Scope names granted to credentials.
const (
	ScopeRead  = "read"
	ScopeWrite = "write"
)

// DefaultScopes are granted when issuance does not name any.
var DefaultScopes = []string{ScopeRead, ScopeWrite}

// DefaultRateLimitRPM is the per-credential quota stored when none is given.
const DefaultRateLimitRPM = 60

// Credential is one issued bearer secret. Only the SHA-256 digest of the
// plaintext is stored; Prefix is safe to display.
type Credential struct {
	ID           string         `json:"id"`
	WorkspaceID  string         `json:"workspace_id"`
	Kind         CredentialKind `json:"kind"`
	Name         string         `json:"name"`
	SecretHash   string         `json:"-"`
	Prefix       string         `json:"prefix"`
	Scopes       []string       `json:"scopes"`
	IsActive     bool           `json:"is_active"`
	ExpiresAt    *time.Time     `json:"expires_at,omitempty"`
	AllowedIPs   []string       `json:"allowed_ips"`
	RateLimitRPM int            `json:"rate_limit_rpm"`
	LastUsedAt   *time.Time     `json:"last_used_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Expired reports whether the credential has an expiry at or before now.
func (c *Credential) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !c.ExpiresAt.After(now)
}

// HasScope reports whether the credential grants scope.
func (c *Credential) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// IPAllowed reports whether ip may use the credential. An empty allow-list
// means unrestricted. Addresses are compared by value, so case, zero
// compression and IPv4-mapped IPv6 forms do not matter.
func (c *Credential) IPAllowed(ip string) bool {
	if len(c.AllowedIPs) == 0 {
		return true
	}
	client, clientErr := netip.ParseAddr(ip)
	for _, allowed := range c.AllowedIPs {
		if clientErr != nil {
			if allowed == ip && ip != "" {
				return true
			}
			continue
		}
		if addr, err := netip.ParseAddr(allowed); err == nil && addr.Unmap() == client.Unmap() {
			return true
		}
	}
	return false
}

// CanonicalIP returns the canonical text form of ip, or ip unchanged when it
// does not parse.
func CanonicalIP(ip string) string {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return ip
	}
	return addr.Unmap().String()
}

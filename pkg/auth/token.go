// Package auth manages the runtime's authentication tokens: the process-wide
// bot token and the tenant-scoped graph token cache.
package auth

import "time"

// Token is an issued access token with its expiry.
type Token struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the token is past (or within a small skew of)
// its expiry. Tokens without an expiry never expire.
func (t *Token) IsExpired() bool {
	if t == nil {
		return true
	}
	if t.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().Add(expirySkew).After(t.ExpiresAt)
}

// expirySkew refreshes tokens slightly before their hard expiry so that
// outbound calls made with a just-fetched token don't race it.
const expirySkew = 30 * time.Second

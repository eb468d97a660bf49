package auth

// ClientCredentials is a client-id/secret pair, optionally scoped to a
// tenant. The zero TenantID means the app-only / multi-tenant default.
type ClientCredentials struct {
	ClientID     string
	ClientSecret string
	TenantID     string
}

// Configured reports whether credentials are usable for token issuance.
func (c ClientCredentials) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// ForTenant returns a copy of c scoped to the given tenant. The receiver is
// never mutated; token refreshes for a specific tenant always go through a
// derived copy.
func (c ClientCredentials) ForTenant(tenantID string) ClientCredentials {
	if tenantID == "" {
		return c
	}
	derived := c
	derived.TenantID = tenantID
	return derived
}

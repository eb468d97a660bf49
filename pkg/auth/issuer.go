package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/clientcredentials"
)

const (
	botTokenScope   = "https://api.botframework.com/.default"
	graphTokenScope = "https://graph.microsoft.com/.default"

	defaultBotTenant   = "botframework.com"
	defaultGraphTenant = "common"

	// DefaultAuthority is the token authority used when none is configured.
	DefaultAuthority = "https://login.microsoftonline.com"
)

// ClientCredentialsIssuer issues tokens through the OAuth 2.0 client
// credentials flow.
type ClientCredentialsIssuer struct {
	authority string
}

// IssuerOption configures a ClientCredentialsIssuer.
type IssuerOption func(*ClientCredentialsIssuer)

// WithAuthority overrides the token authority base URL.
func WithAuthority(authority string) IssuerOption {
	return func(i *ClientCredentialsIssuer) {
		i.authority = authority
	}
}

// NewClientCredentialsIssuer creates an issuer against the default (or
// configured) authority.
func NewClientCredentialsIssuer(opts ...IssuerOption) *ClientCredentialsIssuer {
	i := &ClientCredentialsIssuer{authority: DefaultAuthority}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// IssueBotToken acquires a bot-framework scoped token.
func (i *ClientCredentialsIssuer) IssueBotToken(ctx context.Context, creds ClientCredentials) (*Token, error) {
	return i.issue(ctx, creds, botTokenScope, defaultBotTenant)
}

// IssueGraphToken acquires a graph scoped token for the credential's tenant.
func (i *ClientCredentialsIssuer) IssueGraphToken(ctx context.Context, creds ClientCredentials) (*Token, error) {
	return i.issue(ctx, creds, graphTokenScope, defaultGraphTenant)
}

func (i *ClientCredentialsIssuer) issue(ctx context.Context, creds ClientCredentials, scope, fallbackTenant string) (*Token, error) {
	if !creds.Configured() {
		return nil, ErrNoCredentials
	}

	tenant := creds.TenantID
	if tenant == "" {
		tenant = fallbackTenant
	}

	cfg := clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     fmt.Sprintf("%s/%s/oauth2/v2.0/token", i.authority, tenant),
		Scopes:       []string{scope},
	}

	tok, err := cfg.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring token for scope %s: %w", scope, err)
	}

	return &Token{Value: tok.AccessToken, ExpiresAt: tok.Expiry}, nil
}

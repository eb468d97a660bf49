package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/relaykit/relay/pkg/observability"
)

// Issuer is the external token-issuance collaborator.
type Issuer interface {
	IssueBotToken(ctx context.Context, creds ClientCredentials) (*Token, error)
	IssueGraphToken(ctx context.Context, creds ClientCredentials) (*Token, error)
}

// GetUserTokenParams identifies a user-delegated token lookup.
type GetUserTokenParams struct {
	ConnectionName string
	ChannelID      string
	UserID         string
}

// UserTokenClient is the external OAuth-connection collaborator.
type UserTokenClient interface {
	GetUserToken(ctx context.Context, params GetUserTokenParams) (*Token, error)
}

// Manager obtains, caches, and refreshes the bot token and per-tenant graph
// tokens. It never retries failed issuance itself; callers wanting retries
// wrap the calls in a retry policy.
//
// The manager takes no per-key locks: two concurrent refreshes for the same
// key may both hit the issuer, and the second result overwrites the first.
// Token issuance is idempotent, so this is harmless.
type Manager struct {
	creds             ClientCredentials
	issuer            Issuer
	userTokens        UserTokenClient
	defaultConnection string
	store             TokenStore
	logger            *slog.Logger

	botMu sync.Mutex
	bot   *Token
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithIssuer sets the token-issuance client.
func WithIssuer(issuer Issuer) ManagerOption {
	return func(m *Manager) {
		m.issuer = issuer
	}
}

// WithUserTokenClient sets the OAuth-connection client used for
// user-delegated tokens.
func WithUserTokenClient(client UserTokenClient) ManagerOption {
	return func(m *Manager) {
		m.userTokens = client
	}
}

// WithDefaultConnection sets the OAuth connection name used by GetUserToken.
func WithDefaultConnection(name string) ManagerOption {
	return func(m *Manager) {
		m.defaultConnection = name
	}
}

// WithStore replaces the graph token store (default: bounded in-memory).
func WithStore(store TokenStore) ManagerOption {
	return func(m *Manager) {
		m.store = store
	}
}

// WithLogger sets the manager's logger.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a token manager for the given base credentials.
// Unconfigured credentials are allowed: token operations then no-op with a
// nil token rather than failing, matching unauthenticated deployments.
func NewManager(creds ClientCredentials, opts ...ManagerOption) *Manager {
	m := &Manager{
		creds:  creds,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.store == nil {
		m.store = NewMemoryStore(DefaultGraphCacheSize)
	}
	return m
}

// RefreshBotToken returns the cached bot token when it is present, not
// expired, and force is false; otherwise it calls the issuer and caches the
// result. Without configured credentials it returns (nil, nil).
func (m *Manager) RefreshBotToken(ctx context.Context, force bool) (*Token, error) {
	if !m.creds.Configured() {
		m.logger.Warn("no credentials configured, skipping bot token refresh")
		return nil, nil
	}
	if m.issuer == nil {
		return nil, fmt.Errorf("refreshing bot token: %w", ErrNoIssuer)
	}

	m.botMu.Lock()
	cached := m.bot
	m.botMu.Unlock()

	if !force && cached != nil && !cached.IsExpired() {
		return cached, nil
	}

	if cached != nil {
		m.logger.Debug("refreshing bot token")
	}

	token, err := m.issuer.IssueBotToken(ctx, m.creds)
	if err != nil {
		return nil, fmt.Errorf("refreshing bot token: %w", err)
	}
	observability.TokenRefreshes.WithLabelValues("bot").Inc()

	m.botMu.Lock()
	m.bot = token
	m.botMu.Unlock()

	m.logger.Debug("bot token refreshed")
	return token, nil
}

// GetOrRefreshGraphToken returns the cached graph token for tenantID (empty
// for the default/app-only token), refreshing it through the issuer when
// missing, expired, or forced. The refresh uses a tenant-scoped copy of the
// base credential; the base credential is never mutated.
func (m *Manager) GetOrRefreshGraphToken(ctx context.Context, tenantID string, force bool) (*Token, error) {
	if !m.creds.Configured() {
		m.logger.Warn("no credentials configured, skipping graph token refresh", "tenant_id", tenantID)
		return nil, nil
	}
	if m.issuer == nil {
		return nil, fmt.Errorf("refreshing graph token: %w", ErrNoIssuer)
	}

	cached, err := m.store.Get(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("reading graph token cache: %w", err)
	}
	if !force && cached != nil && !cached.IsExpired() {
		return cached, nil
	}

	token, err := m.issuer.IssueGraphToken(ctx, m.creds.ForTenant(tenantID))
	if err != nil {
		return nil, fmt.Errorf("refreshing graph token for tenant %q: %w", tenantID, err)
	}
	observability.TokenRefreshes.WithLabelValues("graph").Inc()

	if err := m.store.Set(ctx, tenantID, token); err != nil {
		return nil, fmt.Errorf("caching graph token: %w", err)
	}

	m.logger.Debug("graph token refreshed", "tenant_id", tenantID)
	return token, nil
}

// GetUserToken looks up a user-delegated token through the OAuth-connection
// collaborator using the statically configured default connection name.
func (m *Manager) GetUserToken(ctx context.Context, channelID, userID string) (*Token, error) {
	if m.defaultConnection == "" {
		return nil, ErrNoConnectionName
	}
	if m.userTokens == nil {
		return nil, fmt.Errorf("getting user token: %w", ErrNoIssuer)
	}

	token, err := m.userTokens.GetUserToken(ctx, GetUserTokenParams{
		ConnectionName: m.defaultConnection,
		ChannelID:      channelID,
		UserID:         userID,
	})
	if err != nil {
		return nil, fmt.Errorf("getting user token: %w", err)
	}
	return token, nil
}

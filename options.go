package relay

import (
	"log/slog"

	"github.com/relaykit/relay/pkg/auth"
	"github.com/relaykit/relay/pkg/plugin"
	"github.com/relaykit/relay/pkg/retry"
)

// Option defines a functional option for configuring the App.
type Option func(*App)

// WithLogger sets a custom structured logger for the app and everything it
// constructs.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithCredentials sets the bot's client credentials.
func WithCredentials(creds auth.ClientCredentials) Option {
	return func(a *App) {
		a.creds = creds
	}
}

// WithIssuer sets the token issuer backing the token manager.
func WithIssuer(issuer auth.Issuer) Option {
	return func(a *App) {
		a.authOpts = append(a.authOpts, auth.WithIssuer(issuer))
	}
}

// WithUserTokenClient sets the OAuth-connection collaborator for user
// sign-in lookups.
func WithUserTokenClient(client auth.UserTokenClient) Option {
	return func(a *App) {
		a.authOpts = append(a.authOpts, auth.WithUserTokenClient(client))
	}
}

// WithConnectionName sets the default OAuth connection used for user
// sign-in.
func WithConnectionName(name string) Option {
	return func(a *App) {
		a.authOpts = append(a.authOpts, auth.WithDefaultConnection(name))
	}
}

// WithTokenStore sets the cache backing graph token lookups.
func WithTokenStore(store auth.TokenStore) Option {
	return func(a *App) {
		a.authOpts = append(a.authOpts, auth.WithStore(store))
	}
}

// WithRetryPolicy sets the policy used for startup token refresh.
func WithRetryPolicy(policy retry.Policy) Option {
	return func(a *App) {
		a.retry = policy
	}
}

// WithPlugins registers plugins. Order matters: injection and start run in
// this order, stop runs in reverse.
func WithPlugins(plugins ...plugin.Plugin) Option {
	return func(a *App) {
		a.plugins = append(a.plugins, plugins...)
	}
}

// WithProvider exposes a value to plugins as an injectable dependency.
func WithProvider(name string, value any) Option {
	return func(a *App) {
		a.providers[name] = value
	}
}

// WithoutDefaultRoutes disables the built-in catch-all debug route.
func WithoutDefaultRoutes() Option {
	return func(a *App) {
		a.skipCatch = true
	}
}

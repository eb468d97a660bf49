package auth

import "errors"

// ErrNoCredentials is returned by operations that require configured client
// credentials in a deployment that has none.
var ErrNoCredentials = errors.New("no credentials configured")

// ErrNoConnectionName is returned by user-token lookups when no default
// OAuth connection name was configured.
var ErrNoConnectionName = errors.New("no default connection name configured")

// ErrNoIssuer is returned when credentials are configured but no token
// issuance client was provided.
var ErrNoIssuer = errors.New("no token issuer configured")

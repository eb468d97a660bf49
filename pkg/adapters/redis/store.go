// Package redis provides a TokenStore backed by Redis, for deployments that
// share a graph-token cache across processes.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/relaykit/relay/pkg/auth"
	backend "github.com/redis/go-redis/v9"
)

// Store implements auth.TokenStore using Redis. Values are stored as JSON
// with a TTL aligned to the token's expiry, so expired tokens age out of
// Redis on their own.
type Store struct {
	client *backend.Client
	prefix string
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets the key prefix for token entries.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a Redis token store with its own client.
func New(address, password string, db int, opts ...Option) *Store {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a Redis token store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "relay:token:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(tenantID string) string {
	return s.prefix + tenantID
}

// Get returns the token cached for the tenant, or nil when absent.
func (s *Store) Get(ctx context.Context, tenantID string) (*auth.Token, error) {
	data, err := s.client.Get(ctx, s.key(tenantID)).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token %q: %w", tenantID, err)
	}

	var token auth.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("unmarshaling token %q: %w", tenantID, err)
	}
	return &token, nil
}

// Set stores the token under the tenant key. Tokens carrying an expiry get a
// matching TTL; tokens without one persist until overwritten or deleted.
func (s *Store) Set(ctx context.Context, tenantID string, token *auth.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("marshaling token %q: %w", tenantID, err)
	}

	var ttl time.Duration
	if !token.ExpiresAt.IsZero() {
		ttl = time.Until(token.ExpiresAt)
		if ttl <= 0 {
			// Already expired; don't resurrect it.
			return s.Delete(ctx, tenantID)
		}
	}

	if err := s.client.Set(ctx, s.key(tenantID), data, ttl).Err(); err != nil {
		return fmt.Errorf("writing token %q: %w", tenantID, err)
	}
	return nil
}

// Delete removes the tenant's token.
func (s *Store) Delete(ctx context.Context, tenantID string) error {
	if err := s.client.Del(ctx, s.key(tenantID)).Err(); err != nil {
		return fmt.Errorf("deleting token %q: %w", tenantID, err)
	}
	return nil
}

// Verify interface compliance at compile time.
var _ auth.TokenStore = (*Store)(nil)

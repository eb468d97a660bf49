// Package storetest provides a reusable contract suite for TokenStore
// implementations.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/relaykit/relay/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises the TokenStore contract against the given store.
func Run(t *testing.T, store auth.TokenStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key is absent", func(t *testing.T) {
		token, err := store.Get(ctx, "absent-tenant")
		require.NoError(t, err)
		assert.Nil(t, token)
	})

	t.Run("set then get round-trips", func(t *testing.T) {
		want := &auth.Token{Value: "tok", ExpiresAt: time.Now().Add(time.Hour).UTC().Truncate(time.Second)}
		require.NoError(t, store.Set(ctx, "tenant-a", want))

		got, err := store.Get(ctx, "tenant-a")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, want.Value, got.Value)
		assert.WithinDuration(t, want.ExpiresAt, got.ExpiresAt, time.Second)
	})

	t.Run("empty key holds the default token", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "", &auth.Token{Value: "app-only"}))

		got, err := store.Get(ctx, "")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "app-only", got.Value)
	})

	t.Run("overwrite replaces the value", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "tenant-b", &auth.Token{Value: "old"}))
		require.NoError(t, store.Set(ctx, "tenant-b", &auth.Token{Value: "new"}))

		got, err := store.Get(ctx, "tenant-b")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "new", got.Value)
	})

	t.Run("delete removes the key", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "tenant-c", &auth.Token{Value: "tok"}))
		require.NoError(t, store.Delete(ctx, "tenant-c"))

		got, err := store.Get(ctx, "tenant-c")
		require.NoError(t, err)
		assert.Nil(t, got)

		// Deleting again is a no-op.
		require.NoError(t, store.Delete(ctx, "tenant-c"))
	})
}

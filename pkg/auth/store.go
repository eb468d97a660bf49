package auth

import (
	"context"
	"sync"

	"github.com/relaykit/relay/pkg/cache"
)

// TokenStore persists graph tokens keyed by tenant id (empty string for the
// default/app-only token). A nil token with a nil error means "absent".
type TokenStore interface {
	Get(ctx context.Context, key string) (*Token, error)
	Set(ctx context.Context, key string, token *Token) error
	Delete(ctx context.Context, key string) error
}

// DefaultGraphCacheSize bounds the in-memory tenant token cache. It is
// large enough to be effectively unbounded for realistic tenant counts.
const DefaultGraphCacheSize = 50000

// MemoryStore is a TokenStore over the bounded LRU cache. The cache itself
// is not goroutine-safe, so the store serializes access; concurrent
// refreshes for the same key remain last-write-wins.
type MemoryStore struct {
	mu    sync.Mutex
	cache *cache.Cache[string, *Token]
}

// NewMemoryStore creates a bounded in-memory token store. A maxSize of zero
// falls back to DefaultGraphCacheSize.
func NewMemoryStore(maxSize int) *MemoryStore {
	if maxSize <= 0 {
		maxSize = DefaultGraphCacheSize
	}
	return &MemoryStore{
		cache: cache.New[string, *Token](cache.WithMaxSize(maxSize)),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.cache.Get(key)
	if !ok {
		return nil, nil
	}
	return token, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, token *Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Set(key, token)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Delete(key)
	return nil
}

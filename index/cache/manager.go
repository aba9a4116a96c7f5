package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/toncenter/ton-activity-go/index/activity"
	"github.com/toncenter/ton-activity-go/index/models"
)

const tokenTTL = 24 * time.Hour

// Manager holds the typed caches of the service. A nil *Manager is valid and
// caches nothing.
type Manager struct {
	// Tokens: jetton master (raw) -> Token, filled from response metadata
	Tokens *Cache[activity.Token]

	// WalletInit: network:address -> true once the wallet is deployed. Only
	// positive answers are stored.
	WalletInit *Cache[bool]
}

func NewManager(client redis.UniversalClient) *Manager {
	return &Manager{
		Tokens: New(Options[activity.Token]{
			Client: client,
			Prefix: "tok",
		}),
		WalletInit: New(Options[bool]{
			Client: client,
			Prefix: "winit",
		}),
	}
}

// RememberTokens stores every jetton master described by a response.
func (m *Manager) RememberTokens(ctx context.Context, book models.AddressBook, meta models.Metadata) error {
	if m == nil || len(meta) == 0 {
		return nil
	}
	items := make(map[string]activity.Token)
	for master := range meta {
		if token, ok := activity.TokenFromMetadata(models.AccountAddress(master), book, meta); ok {
			items[master] = token
		}
	}
	return m.Tokens.MSet(ctx, items, tokenTTL)
}

// TokenLookup returns a resolver reading the token cache. Every address of
// book is fetched up front in one round trip; other masters are read one by
// one.
func (m *Manager) TokenLookup(ctx context.Context, book models.AddressBook) func(master models.AccountAddress) (activity.Token, bool) {
	if m == nil {
		return nil
	}
	keys := make([]string, 0, len(book))
	for addr := range book {
		keys = append(keys, addr)
	}
	prefetched, err := m.Tokens.MGet(ctx, keys...)
	if err != nil {
		prefetched = nil
	}
	return func(master models.AccountAddress) (activity.Token, bool) {
		if token, ok := prefetched[string(master)]; ok {
			return token, true
		}
		token, err := m.Tokens.GetEx(ctx, string(master), tokenTTL)
		return token, err == nil
	}
}

// WalletInitialized answers from the cache, or asks load and remembers a
// deployed wallet forever.
func (m *Manager) WalletInitialized(ctx context.Context, network models.Network, address string,
	load func(ctx context.Context) (bool, error)) (bool, error) {
	var c *Cache[bool]
	if m != nil {
		c = m.WalletInit
	}
	return WithCache(ctx, c, string(network)+":"+address, 0, load, func(ok bool) bool { return ok })
}

package price

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"transferScope/internal/config"
)

type cacheEntry struct {
	price decimal.Decimal
	err   error
}

// CachedOracle memoizes prices for the duration of one cycle so a token's
// price is looked up once no matter how many records it has. Failures are
// cached too: a token whose oracle call failed is not retried within the
// same cycle.
type CachedOracle struct {
	inner Oracle

	mu      sync.Mutex
	entries map[string]cacheEntry
}

func NewCachedOracle(inner Oracle) *CachedOracle {
	return &CachedOracle{
		inner:   inner,
		entries: make(map[string]cacheEntry),
	}
}

func (c *CachedOracle) UnitPrice(ctx context.Context, token config.TokenConfig) (decimal.Decimal, error) {
	key := token.CoingeckoID
	if key == "" {
		key = strings.ToLower(token.Contract)
	}

	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()
	if ok {
		return entry.price, entry.err
	}

	price, err := c.inner.UnitPrice(ctx, token)

	c.mu.Lock()
	c.entries[key] = cacheEntry{price: price, err: err}
	c.mu.Unlock()

	return price, err
}

package prices

import (
	"sync"
	"time"
)

// quoteCache holds the most recent quote per symbol for a fixed TTL.
// Concurrent writers for the same symbol simply race last-writer-wins;
// both wrote a fresh quote, so either outcome is acceptable.
type quoteCache struct {
	mu      sync.RWMutex
	entries map[string]Quote
	ttl     time.Duration
	now     func() time.Time
}

func newQuoteCache(ttl time.Duration, now func() time.Time) *quoteCache {
	return &quoteCache{
		entries: make(map[string]Quote),
		ttl:     ttl,
		now:     now,
	}
}

// Get returns the cached quote for symbol while it is still fresh.
// Freshness is measured against the quote's AsOf timestamp.
func (c *quoteCache) Get(symbol string) (Quote, bool) {
	c.mu.RLock()
	q, ok := c.entries[symbol]
	c.mu.RUnlock()

	if !ok || c.now().Sub(q.AsOf) >= c.ttl {
		return Quote{}, false
	}
	return q, true
}

// Put stores a quote, replacing any previous entry for its symbol.
func (c *quoteCache) Put(q Quote) {
	c.mu.Lock()
	c.entries[q.Symbol] = q
	c.mu.Unlock()
}

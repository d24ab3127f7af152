package prices

import (
	"testing"
	"time"
)

func TestQuoteCache_GetWhileFresh(t *testing.T) {
	current := time.Unix(1700000000, 0)
	cache := newQuoteCache(10*time.Second, func() time.Time { return current })

	q := Quote{Symbol: "BTC", Price: 50000, AsOf: current, Source: SourceLive}
	cache.Put(q)

	got, ok := cache.Get("BTC")
	if !ok {
		t.Fatal("expected cache hit immediately after Put")
	}
	if got.Price != 50000 || !got.AsOf.Equal(current) {
		t.Errorf("cached quote mutated: %+v", got)
	}

	current = current.Add(9 * time.Second)
	if _, ok := cache.Get("BTC"); !ok {
		t.Error("expected hit inside the TTL window")
	}
}

func TestQuoteCache_ExpiresAtTTL(t *testing.T) {
	current := time.Unix(1700000000, 0)
	cache := newQuoteCache(10*time.Second, func() time.Time { return current })

	cache.Put(Quote{Symbol: "BTC", Price: 50000, AsOf: current, Source: SourceLive})

	current = current.Add(10 * time.Second)
	if _, ok := cache.Get("BTC"); ok {
		t.Error("expected miss once quote age reaches the TTL")
	}
}

func TestQuoteCache_MissForUnknownSymbol(t *testing.T) {
	cache := newQuoteCache(10*time.Second, time.Now)
	if _, ok := cache.Get("ETH"); ok {
		t.Error("expected miss for a symbol never stored")
	}
}

func TestQuoteCache_PutReplaces(t *testing.T) {
	current := time.Unix(1700000000, 0)
	cache := newQuoteCache(10*time.Second, func() time.Time { return current })

	cache.Put(Quote{Symbol: "BTC", Price: 50000, AsOf: current, Source: SourceLive})
	current = current.Add(5 * time.Second)
	cache.Put(Quote{Symbol: "BTC", Price: 51000, AsOf: current, Source: SourceLive})

	got, ok := cache.Get("BTC")
	if !ok {
		t.Fatal("expected hit after replacement")
	}
	if got.Price != 51000 {
		t.Errorf("expected the most recent quote to win, got price %v", got.Price)
	}
}

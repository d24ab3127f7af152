package prices

import (
	"context"
	"sync"
	"time"

	"cryptofolio/internal/logger"
)

// Defaults for FetcherOptions zero values.
const (
	DefaultCacheTTL    = 10 * time.Second
	DefaultMaxAttempts = 3
	DefaultBackoffBase = time.Second
	DefaultTimeout     = 5 * time.Second

	batchConcurrency = 4
)

// FetcherOptions tunes a Fetcher. Zero values select the defaults above,
// which lets tests inject a fake clock and sleep to drive the retry loop
// synchronously.
type FetcherOptions struct {
	CacheTTL    time.Duration
	MaxAttempts int           // tries against the primary source
	BackoffBase time.Duration // doubled after each failed primary attempt
	Timeout     time.Duration // per-attempt budget
	Generator   *Generator
	Now         func() time.Time
	Sleep       func(ctx context.Context, d time.Duration)
}

// Fetcher resolves quotes through a TTL cache, an ordered list of live
// sources, and a synthetic generator of last resort.
//
// The first source is the primary and gets MaxAttempts tries with
// exponential backoff (a 429 Retry-After overrides the backoff for that
// wait). The remaining sources are one-shot fallbacks tried in order. If
// everything fails the generator supplies a synthetic quote, so GetPrice
// always returns a usable Quote and never an error.
type Fetcher struct {
	sources     []Source
	synth       *Generator
	cache       *quoteCache
	maxAttempts int
	backoffBase time.Duration
	timeout     time.Duration
	now         func() time.Time
	sleep       func(ctx context.Context, d time.Duration)
}

// NewFetcher creates a fetcher over an ordered list of live sources.
// The slice may be empty, in which case every quote is synthetic.
func NewFetcher(sources []Source, opts FetcherOptions) *Fetcher {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = DefaultBackoffBase
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Generator == nil {
		opts.Generator = NewGenerator(time.Now().UnixNano())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}

	return &Fetcher{
		sources:     sources,
		synth:       opts.Generator,
		cache:       newQuoteCache(opts.CacheTTL, opts.Now),
		maxAttempts: opts.MaxAttempts,
		backoffBase: opts.BackoffBase,
		timeout:     opts.Timeout,
		now:         opts.Now,
		sleep:       opts.Sleep,
	}
}

// GetPrice returns the current quote for a symbol. It never fails: when
// every live source is exhausted it returns a synthetic quote instead.
func (f *Fetcher) GetPrice(ctx context.Context, symbol string) Quote {
	symbol = normalizeSymbol(symbol)

	// 1. Serve from cache while fresh. Live quotes are re-tagged so the
	// caller can tell they were not fetched during this call; synthetic
	// quotes keep their tag to avoid laundering degraded data.
	if q, ok := f.cache.Get(symbol); ok {
		if q.Source != SourceSynthetic {
			q.Source = SourceCached
		}
		return q
	}

	// 2. Walk the live sources.
	if q, ok := f.fetchLive(ctx, symbol); ok {
		f.cache.Put(q)
		return q
	}

	// 3. Degrade to a synthetic quote.
	logger.Get().Warnw("all live price sources failed, serving synthetic quote", "symbol", symbol)
	q := Quote{
		Symbol: symbol,
		Price:  f.synth.Price(symbol),
		AsOf:   f.now(),
		Source: SourceSynthetic,
	}
	f.cache.Put(q)
	return q
}

// GetPrices fetches quotes for all symbols concurrently with a bounded
// number of in-flight fetches. Duplicates and blank symbols are skipped.
// Every requested symbol is present in the returned map.
func (f *Fetcher) GetPrices(ctx context.Context, symbols []string) map[string]Quote {
	quotes := make(map[string]Quote, len(symbols))
	if len(symbols) == 0 {
		return quotes
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, batchConcurrency)

	seen := make(map[string]struct{}, len(symbols))
	for _, raw := range symbols {
		symbol := normalizeSymbol(raw)
		if symbol == "" {
			continue
		}
		if _, dup := seen[symbol]; dup {
			continue
		}
		seen[symbol] = struct{}{}

		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			q := f.GetPrice(ctx, symbol)
			mu.Lock()
			quotes[symbol] = q
			mu.Unlock()
		}(symbol)
	}
	wg.Wait()

	return quotes
}

// fetchLive runs the retry and fallback state machine over the live sources.
func (f *Fetcher) fetchLive(ctx context.Context, symbol string) (Quote, bool) {
	if len(f.sources) == 0 {
		return Quote{}, false
	}
	log := logger.Get()

	// Primary source with retries.
	primary := f.sources[0]
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		res := f.fetchOnce(ctx, primary, symbol)
		if res.Status == StatusOK {
			return f.liveQuote(symbol, res), true
		}

		switch res.Status {
		case StatusRateLimited:
			log.Warnw("price source rate limited",
				"source", primary.Name(), "symbol", symbol,
				"attempt", attempt, "retry_after", res.RetryAfter)
		case StatusFailed:
			log.Warnw("price fetch failed",
				"source", primary.Name(), "symbol", symbol,
				"attempt", attempt, "error", res.Err)
		}

		if attempt == f.maxAttempts {
			break
		}
		wait := f.backoffBase << uint(attempt-1)
		if res.Status == StatusRateLimited && res.RetryAfter > 0 {
			wait = res.RetryAfter
		}
		f.sleep(ctx, wait)
	}

	// Fallback sources, one try each, first success wins.
	for _, src := range f.sources[1:] {
		res := f.fetchOnce(ctx, src, symbol)
		if res.Status == StatusOK {
			return f.liveQuote(symbol, res), true
		}
		log.Warnw("fallback price source failed",
			"source", src.Name(), "symbol", symbol, "error", res.Err)
	}

	return Quote{}, false
}

// fetchOnce runs a single attempt against one source under the per-attempt timeout.
func (f *Fetcher) fetchOnce(ctx context.Context, src Source, symbol string) Result {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	return src.FetchQuote(ctx, symbol)
}

func (f *Fetcher) liveQuote(symbol string, res Result) Quote {
	return Quote{
		Symbol:    symbol,
		Price:     res.Price,
		Change24h: res.Change24h,
		AsOf:      f.now(),
		Source:    SourceLive,
	}
}

// sleepContext waits for d or until ctx is cancelled, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

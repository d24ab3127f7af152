package integration

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"cryptofolio/internal/prices"
)

func TestPriceFailover_ProxyFallback(t *testing.T) {
	client := &http.Client{Timeout: 2 * time.Second}

	// Primary is down
	primary := newQuoteServer(t, 50000)
	primary.setStatus(http.StatusInternalServerError)

	// The CORS proxy answers with the upstream body
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"price":42000,"previousPrice":40000}`)
	}))
	t.Cleanup(proxy.Close)

	app := setupApp(t,
		prices.NewDirectSource(client, primary.URL),
		prices.NewProxySource(client, proxy.URL+"/?url=", primary.URL),
	)

	token, _ := app.registerUser(t, "failover@test.com", "password123")

	rec := app.request("GET", "/api/v1/prices/BTC", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	quote := parseJSON(t, rec)["quote"].(map[string]interface{})
	if quote["source"] != "live" {
		t.Errorf("expected live quote through the proxy, got %v", quote["source"])
	}
	if !almostEqual(quote["price"].(float64), 42000) {
		t.Errorf("expected price 42000, got %v", quote["price"])
	}
	if !almostEqual(quote["change24hPercent"].(float64), 5) {
		t.Errorf("expected 5%% change, got %v", quote["change24hPercent"])
	}

	// The primary saw every retry before the proxy was consulted
	if got := primary.requests.Load(); got != int64(prices.DefaultMaxAttempts) {
		t.Errorf("expected %d primary attempts, got %d", prices.DefaultMaxAttempts, got)
	}
}

func TestPriceFailover_RateLimitRetry(t *testing.T) {
	client := &http.Client{Timeout: 2 * time.Second}

	// 429 twice, then recover
	var calls atomic.Int64
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"price":3500,"previousPrice":0}`)
	}))
	t.Cleanup(upstream.Close)

	app := setupApp(t, prices.NewDirectSource(client, upstream.URL))
	token, _ := app.registerUser(t, "ratelimit@test.com", "password123")

	rec := app.request("GET", "/api/v1/prices/ETH", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	quote := parseJSON(t, rec)["quote"].(map[string]interface{})
	if quote["source"] != "live" {
		t.Errorf("expected live quote after retries, got %v", quote["source"])
	}
	if !almostEqual(quote["price"].(float64), 3500) {
		t.Errorf("expected price 3500, got %v", quote["price"])
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 upstream calls, got %d", calls.Load())
	}
}

func TestPriceFailover_SyntheticDegradation(t *testing.T) {
	client := &http.Client{Timeout: 2 * time.Second}

	primary := newQuoteServer(t, 50000)
	primary.setStatus(http.StatusServiceUnavailable)

	app := setupApp(t, prices.NewDirectSource(client, primary.URL))
	token, _ := app.registerUser(t, "degraded@test.com", "password123")

	rec := app.request("GET", "/api/v1/prices/BTC", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 even with all sources down, got %d: %s", rec.Code, rec.Body.String())
	}
	quote := parseJSON(t, rec)["quote"].(map[string]interface{})
	if quote["source"] != "synthetic" {
		t.Errorf("expected synthetic quote, got %v", quote["source"])
	}
	if quote["price"].(float64) <= 0 {
		t.Errorf("expected positive synthetic price, got %v", quote["price"])
	}

	// Orders still execute against synthetic quotes
	app.seedCoin(t, "BTC", "Bitcoin")
	rec = app.request("POST", "/api/v1/orders/buy", `{"symbol":"BTC","quantity":1}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected buy to succeed on synthetic quote, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPriceFailover_BatchQuotes(t *testing.T) {
	client := &http.Client{Timeout: 2 * time.Second}
	qs := newQuoteServer(t, 777)

	app := setupApp(t, prices.NewDirectSource(client, qs.URL))
	token, _ := app.registerUser(t, "batch@test.com", "password123")

	rec := app.request("GET", "/api/v1/prices?symbols=BTC,ETH,SOL", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	quotes := parseJSON(t, rec)["quotes"].(map[string]interface{})
	for _, sym := range []string{"BTC", "ETH", "SOL"} {
		q, ok := quotes[sym].(map[string]interface{})
		if !ok {
			t.Fatalf("missing quote for %s: %v", sym, quotes)
		}
		if !almostEqual(q["price"].(float64), 777) {
			t.Errorf("expected price 777 for %s, got %v", sym, q["price"])
		}
	}

	// Blank symbol list is rejected
	rec = app.request("GET", "/api/v1/prices?symbols=", "", token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty symbols, got %d", rec.Code)
	}
}

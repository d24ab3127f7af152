package prices

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// newQuoteServer serves a fixed JSON body with a fixed status code.
func newQuoteServer(status int, body string, header http.Header) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		for key, values := range header {
			for _, v := range values {
				w.Header().Add(key, v)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestDirectSource_FetchQuote_Success(t *testing.T) {
	server := newQuoteServer(http.StatusOK, `{"price": 110, "previousPrice": 100}`, nil)
	defer server.Close()

	s := NewDirectSource(server.Client(), server.URL)
	res := s.FetchQuote(context.Background(), "BTC")

	if res.Status != StatusOK {
		t.Fatalf("expected StatusOK, got %v (err: %v)", res.Status, res.Err)
	}
	if res.Price != 110 {
		t.Errorf("expected price 110, got %v", res.Price)
	}
	if res.Change24h != 10 {
		t.Errorf("expected 24h change 10%%, got %v", res.Change24h)
	}
}

func TestDirectSource_FetchQuote_NoPreviousPrice(t *testing.T) {
	server := newQuoteServer(http.StatusOK, `{"price": 42.5}`, nil)
	defer server.Close()

	s := NewDirectSource(server.Client(), server.URL)
	res := s.FetchQuote(context.Background(), "SOL")

	if res.Status != StatusOK {
		t.Fatalf("expected StatusOK, got %v (err: %v)", res.Status, res.Err)
	}
	if res.Change24h != 0 {
		t.Errorf("expected 24h change 0 without history, got %v", res.Change24h)
	}
}

func TestDirectSource_FetchQuote_QueryContainsSymbol(t *testing.T) {
	var captured string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.URL.Query().Get("symbol")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"price": 1}`))
	}))
	defer server.Close()

	s := NewDirectSource(server.Client(), server.URL)
	res := s.FetchQuote(context.Background(), "ETH")

	if res.Status != StatusOK {
		t.Fatalf("expected StatusOK, got %v (err: %v)", res.Status, res.Err)
	}
	if captured != "ETH" {
		t.Errorf("expected symbol query ETH, got %q", captured)
	}
}

func TestDirectSource_FetchQuote_RateLimited(t *testing.T) {
	header := http.Header{}
	header.Set("Retry-After", "7")
	server := newQuoteServer(http.StatusTooManyRequests, `{"error": "slow down"}`, header)
	defer server.Close()

	s := NewDirectSource(server.Client(), server.URL)
	res := s.FetchQuote(context.Background(), "BTC")

	if res.Status != StatusRateLimited {
		t.Fatalf("expected StatusRateLimited, got %v", res.Status)
	}
	if res.RetryAfter != 7*time.Second {
		t.Errorf("expected RetryAfter 7s, got %v", res.RetryAfter)
	}
}

func TestDirectSource_FetchQuote_RateLimitedWithoutHeader(t *testing.T) {
	server := newQuoteServer(http.StatusTooManyRequests, ``, nil)
	defer server.Close()

	s := NewDirectSource(server.Client(), server.URL)
	res := s.FetchQuote(context.Background(), "BTC")

	if res.Status != StatusRateLimited {
		t.Fatalf("expected StatusRateLimited, got %v", res.Status)
	}
	if res.RetryAfter != 0 {
		t.Errorf("expected RetryAfter 0 without header, got %v", res.RetryAfter)
	}
}

func TestDirectSource_FetchQuote_ServerError(t *testing.T) {
	server := newQuoteServer(http.StatusInternalServerError, ``, nil)
	defer server.Close()

	s := NewDirectSource(server.Client(), server.URL)
	res := s.FetchQuote(context.Background(), "BTC")

	if res.Status != StatusFailed {
		t.Fatalf("expected StatusFailed, got %v", res.Status)
	}
	if !strings.Contains(res.Err.Error(), "500") {
		t.Errorf("expected error to mention 500, got: %v", res.Err)
	}
}

func TestDirectSource_FetchQuote_MalformedJSON(t *testing.T) {
	server := newQuoteServer(http.StatusOK, `{"price": `, nil)
	defer server.Close()

	s := NewDirectSource(server.Client(), server.URL)
	res := s.FetchQuote(context.Background(), "BTC")

	if res.Status != StatusFailed {
		t.Fatalf("expected StatusFailed for malformed body, got %v", res.Status)
	}
}

func TestDirectSource_FetchQuote_NonPositivePrice(t *testing.T) {
	server := newQuoteServer(http.StatusOK, `{"price": 0}`, nil)
	defer server.Close()

	s := NewDirectSource(server.Client(), server.URL)
	res := s.FetchQuote(context.Background(), "BTC")

	if res.Status != StatusFailed {
		t.Fatalf("expected StatusFailed for zero price, got %v", res.Status)
	}
	if !strings.Contains(res.Err.Error(), "non-positive price") {
		t.Errorf("expected error about non-positive price, got: %v", res.Err)
	}
}

func TestParseRetryAfter(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"empty", "", 0},
		{"seconds", "30", 30 * time.Second},
		{"zero seconds", "0", 0},
		{"negative seconds", "-5", 0},
		{"garbage", "soon", 0},
		{"past http date", "Mon, 02 Jan 2006 15:04:05 GMT", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := parseRetryAfter(tc.value); got != tc.want {
				t.Errorf("parseRetryAfter(%q) = %v, want %v", tc.value, got, tc.want)
			}
		})
	}

	t.Run("future http date", func(t *testing.T) {
		at := time.Now().Add(90 * time.Second).UTC()
		got := parseRetryAfter(at.Format(http.TimeFormat))
		if got <= 0 || got > 90*time.Second {
			t.Errorf("expected duration in (0, 90s], got %v", got)
		}
	})
}

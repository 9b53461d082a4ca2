package fetcher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestP2PFetchMissingURL(t *testing.T) {
	p := NewP2P(P2POptions{}, noopLogger())
	if _, err := p.FetchQuote(context.Background()); err == nil {
		t.Fatal("未配置 URL 时应返回错误")
	}
}

func TestP2PFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewP2P(P2POptions{URL: srv.URL, Timeout: time.Second}, noopLogger())
	if _, err := p.FetchQuote(context.Background()); err == nil {
		t.Fatal("HTTP 503 应返回错误")
	}
}

func TestP2PFetchMissingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"ask": 100.5})
	}))
	defer srv.Close()

	p := NewP2P(P2POptions{URL: srv.URL, Timeout: time.Second}, noopLogger())
	if _, err := p.FetchQuote(context.Background()); err == nil {
		t.Fatal("缺少 bid 字段应返回错误")
	}
}

func TestP2PFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ask":  100.5,
			"bid":  99.5,
			"time": 1700000000,
		})
	}))
	defer srv.Close()

	p := NewP2P(P2POptions{URL: srv.URL, Timeout: time.Second, UserAgent: "test"}, noopLogger())

	quote, err := p.FetchQuote(context.Background())
	if err != nil {
		t.Fatalf("成功响应不应报错: %v", err)
	}
	if !quote.Ask.Equal(decimal.NewFromFloat(100.5)) {
		t.Fatalf("期望 ask 100.5, 实际 %s", quote.Ask)
	}
	if !quote.Bid.Equal(decimal.NewFromFloat(99.5)) {
		t.Fatalf("期望 bid 99.5, 实际 %s", quote.Bid)
	}
	if quote.Time.Unix() != 1700000000 {
		t.Fatalf("应使用响应中的 time 字段")
	}
}

func TestP2PFetchNoSourceTime(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"ask": 100, "bid": 98})
	}))
	defer srv.Close()

	p := NewP2P(P2POptions{URL: srv.URL, Timeout: time.Second}, noopLogger())

	quote, err := p.FetchQuote(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !quote.Time.IsZero() {
		t.Fatal("time 缺失时应返回零值")
	}
}

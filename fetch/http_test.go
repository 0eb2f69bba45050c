package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPFetcher_ParsesDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><div data-marker="item"><a itemprop="url" href="/ad/1">ad</a></div></body></html>`))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.Client(), nil)
	doc, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if doc.Find(`div[data-marker=item]`).Length() != 1 {
		t.Fatalf("expected 1 item card in parsed document")
	}
}

func TestHTTPFetcher_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.Client(), nil)
	_, err := f.Fetch(context.Background(), srv.URL)
	if !IsRateLimited(err) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	var rl *RateLimitError
	if !errors.As(err, &rl) || rl.Code != 429 {
		t.Fatalf("expected code 429, got %v", err)
	}
}

func TestHTTPFetcher_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.Client(), nil)
	_, err := f.Fetch(context.Background(), srv.URL)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPacer_BatchPause(t *testing.T) {
	p := NewPacer(time.Millisecond, 10*time.Millisecond, 3)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := p.Wait(ctx); err != nil {
			t.Fatalf("wait failed: %v", err)
		}
	}
	elapsed := time.Since(start)
	if elapsed < 13*time.Millisecond {
		t.Fatalf("expected batch pause on 3rd wait, elapsed %v", elapsed)
	}
	if p.Count() != 3 {
		t.Fatalf("expected count 3, got %d", p.Count())
	}
}

func TestPacer_CancelledContext(t *testing.T) {
	p := NewPacer(time.Minute, 0, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := p.Wait(ctx); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

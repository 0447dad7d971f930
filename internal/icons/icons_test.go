package icons

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"dexboard/internal/domain"
)

func TestChecksumAddress(t *testing.T) {
	// Reference vectors from EIP-55.
	cases := map[string]string{
		"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed": "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359": "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		"0xdbf03b407c01e7cd3cbea99509d93f8dddc8c6fb": "0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
	}
	for input, want := range cases {
		if got := ChecksumAddress(input); got != want {
			t.Errorf("ChecksumAddress(%s) = %s, want %s", input, got, want)
		}
	}
}

func TestIconURL_FoundAndCached(t *testing.T) {
	var probes atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		probes.Add(1)
		if strings.Contains(r.URL.Path, "ethereum") {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	cache := NewCache()
	resolver := NewResolver(cache, WithBaseURL(server.URL))
	ctx := context.Background()

	url, ok := resolver.IconURL(ctx, domain.NetworkMainnet, "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	if !ok {
		t.Fatal("Expected icon to resolve")
	}
	if !strings.Contains(url, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed") {
		t.Errorf("Expected checksummed address in URL, got %s", url)
	}

	// Second lookup must hit the cache.
	if _, ok := resolver.IconURL(ctx, domain.NetworkMainnet, "0x5AAEB6053F3E94C9B9A09F33669435E7EF1BEAED"); !ok {
		t.Fatal("Expected cached icon to resolve")
	}
	if probes.Load() != 1 {
		t.Errorf("Expected 1 probe, got %d", probes.Load())
	}
}

func TestIconURL_NegativeResultCached(t *testing.T) {
	var probes atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		probes.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	cache := NewCache()
	resolver := NewResolver(cache, WithBaseURL(server.URL))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, ok := resolver.IconURL(ctx, domain.NetworkGnosis, "0xdbf03b407c01e7cd3cbea99509d93f8dddc8c6fb"); ok {
			t.Fatal("Expected no icon")
		}
	}
	if probes.Load() != 1 {
		t.Errorf("Expected negative result to be cached after 1 probe, got %d", probes.Load())
	}
}

func TestIconURL_TransientErrorNotCached(t *testing.T) {
	var probes atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		probes.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cache := NewCache()
	resolver := NewResolver(cache, WithBaseURL(server.URL))
	ctx := context.Background()

	resolver.IconURL(ctx, domain.NetworkMainnet, "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	resolver.IconURL(ctx, domain.NetworkMainnet, "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")

	if probes.Load() != 2 {
		t.Errorf("Expected transient failures to retry, got %d probes", probes.Load())
	}
	if cache.Len() != 0 {
		t.Errorf("Expected nothing cached after failures, got %d entries", cache.Len())
	}
}

func TestIconURL_CancelledContextDiscardsResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cancel() // caller gives up while the probe is in flight
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cache := NewCache()
	resolver := NewResolver(cache, WithBaseURL(server.URL))

	if _, ok := resolver.IconURL(ctx, domain.NetworkMainnet, "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"); ok {
		t.Error("Expected cancelled lookup to return nothing")
	}
	if cache.Len() != 0 {
		t.Errorf("Expected cancelled result to be discarded, got %d cached entries", cache.Len())
	}
}

func TestIconURL_UnknownNetwork(t *testing.T) {
	resolver := NewResolver(NewCache())
	if _, ok := resolver.IconURL(context.Background(), domain.Network("bogus"), "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"); ok {
		t.Error("Expected unknown network to resolve nothing")
	}
}

func TestCacheInvalidate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cache := NewCache()
	resolver := NewResolver(cache, WithBaseURL(server.URL))
	ctx := context.Background()

	resolver.IconURL(ctx, domain.NetworkMainnet, "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	if cache.Len() != 1 {
		t.Fatalf("Expected 1 cached entry, got %d", cache.Len())
	}

	cache.Invalidate()
	if cache.Len() != 0 {
		t.Errorf("Expected empty cache after invalidate, got %d", cache.Len())
	}
}

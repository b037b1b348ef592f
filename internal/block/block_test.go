package block

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// TestNonceAcceptsNumberAndString checks both wire encodings decode to
// the same value.
func TestNonceAcceptsNumberAndString(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{`2083236893`, "2083236893"},
		{`"2083236893"`, "2083236893"},
		{`"0x7c2bac1d"`, "0x7c2bac1d"},
		{`4294967295`, "4294967295"},
	}

	for _, tc := range cases {
		var n Nonce
		if err := json.Unmarshal([]byte(tc.raw), &n); err != nil {
			t.Fatalf("unmarshal %s returned error: %v", tc.raw, err)
		}
		if n.String() != tc.want {
			t.Fatalf("nonce %s = %q, want %q", tc.raw, n, tc.want)
		}
	}
}

// TestNonceUint64 checks decimal and hex parsing agree on the genesis
// nonce.
func TestNonceUint64(t *testing.T) {
	dec, err := Nonce("2083236893").Uint64()
	if err != nil {
		t.Fatalf("decimal parse returned error: %v", err)
	}
	hex, err := Nonce("0x7c2bac1d").Uint64()
	if err != nil {
		t.Fatalf("hex parse returned error: %v", err)
	}
	if dec != hex || dec != 2083236893 {
		t.Fatalf("nonce parses disagree: dec=%d hex=%d", dec, hex)
	}

	if _, err := Nonce("not-a-nonce").Uint64(); err == nil {
		t.Fatal("expected error for malformed nonce")
	}
}

func newTestServer(t *testing.T, tipHeight int64, blocks map[string]apiBlock, heightToHash map[int64]string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/blocks/tip/height", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "%d", tipHeight)
	})
	mux.HandleFunc("/block-height/", func(w http.ResponseWriter, r *http.Request) {
		var height int64
		fmt.Sscanf(r.URL.Path, "/block-height/%d", &height)
		hash, ok := heightToHash[height]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, hash)
	})
	mux.HandleFunc("/block/", func(w http.ResponseWriter, r *http.Request) {
		hash := r.URL.Path[len("/block/"):]
		blk, ok := blocks[hash]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(blk)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// TestClientFetchByHeight walks the full height -> hash -> block ->
// confirmations round trip against a stub API.
func TestClientFetchByHeight(t *testing.T) {
	genesisHash := "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f"
	server := newTestServer(t, 900_000,
		map[string]apiBlock{
			genesisHash: {ID: genesisHash, Height: 0, Timestamp: 1231006505, Nonce: "2083236893"},
		},
		map[int64]string{0: genesisHash},
	)

	client := NewClient(ClientOptions{
		APIURL:       server.URL,
		FetchTimeout: 5 * time.Second,
		MaxRetries:   3,
		RetryBackoff: time.Millisecond,
	}, slog.Default())

	data, err := client.FetchByHeight(context.Background(), 0)
	if err != nil {
		t.Fatalf("FetchByHeight returned error: %v", err)
	}

	if data.Hash != genesisHash {
		t.Fatalf("hash = %s, want genesis hash", data.Hash)
	}
	if data.Timestamp != 1231006505 {
		t.Fatalf("timestamp = %d, want 1231006505", data.Timestamp)
	}
	if data.Nonce.String() != "2083236893" {
		t.Fatalf("nonce = %s, want 2083236893", data.Nonce)
	}
	if data.Confirmations != 900_001 {
		t.Fatalf("confirmations = %d, want 900001", data.Confirmations)
	}
}

// TestClientRejectsInvalidInput checks validation happens before any
// network traffic.
func TestClientRejectsInvalidInput(t *testing.T) {
	client := NewClient(ClientOptions{
		APIURL:       "http://127.0.0.1:0",
		FetchTimeout: time.Second,
		MaxRetries:   1,
		RetryBackoff: time.Millisecond,
	}, slog.Default())

	if _, err := client.FetchByHeight(context.Background(), -1); err == nil {
		t.Fatal("expected error for negative height")
	}
	if _, err := client.FetchByHash(context.Background(), "short"); err == nil {
		t.Fatal("expected error for short hash")
	}
}

// TestClientRetriesTransientFailures verifies the client retries and
// eventually succeeds when the API recovers.
func TestClientRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "flaky", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, "812345")
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientOptions{
		APIURL:       server.URL,
		FetchTimeout: time.Second,
		MaxRetries:   3,
		RetryBackoff: time.Millisecond,
	}, slog.Default())

	height, err := client.fetchTipHeight(context.Background())
	if err != nil {
		t.Fatalf("fetchTipHeight returned error after retries: %v", err)
	}
	if height != 812345 {
		t.Fatalf("tip height = %d, want 812345", height)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

// TestClientExhaustsRetries checks a persistent failure surfaces as an
// error after the configured attempts.
func TestClientExhaustsRetries(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientOptions{
		APIURL:       server.URL,
		FetchTimeout: time.Second,
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
	}, slog.Default())

	if _, err := client.fetchTipHeight(context.Background()); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls.Load())
	}
}

// countingFetcher tracks upstream hits for cache tests.
type countingFetcher struct {
	calls int
	data  *Data
}

func (f *countingFetcher) FetchByHeight(_ context.Context, height int64) (*Data, error) {
	f.calls++
	return f.data, nil
}

func (f *countingFetcher) FetchByHash(_ context.Context, hash string) (*Data, error) {
	f.calls++
	return f.data, nil
}

// TestCachedClientMemoryFallback checks the in-memory cache absorbs
// repeat lookups and honors expiry.
func TestCachedClientMemoryFallback(t *testing.T) {
	fetcher := &countingFetcher{data: &Data{
		Height: 100, Hash: "abcdef1234", Nonce: "42", Timestamp: 1, Confirmations: 10,
	}}
	cached := NewCachedClient(fetcher, nil, 50*time.Millisecond, slog.Default())

	for i := 0; i < 3; i++ {
		if _, err := cached.FetchByHeight(context.Background(), 100); err != nil {
			t.Fatalf("FetchByHeight returned error: %v", err)
		}
	}
	if fetcher.calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", fetcher.calls)
	}

	// Fetching by hash hits the cross-filled hash key.
	if _, err := cached.FetchByHash(context.Background(), "abcdef1234"); err != nil {
		t.Fatalf("FetchByHash returned error: %v", err)
	}
	if fetcher.calls != 1 {
		t.Fatalf("hash lookup should hit cache, got %d upstream calls", fetcher.calls)
	}

	time.Sleep(60 * time.Millisecond)
	if _, err := cached.FetchByHeight(context.Background(), 100); err != nil {
		t.Fatalf("FetchByHeight returned error: %v", err)
	}
	if fetcher.calls != 2 {
		t.Fatalf("expected refetch after TTL expiry, got %d upstream calls", fetcher.calls)
	}
}

package subgraph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// gqlServer answers every query with the given data payload.
func gqlServer(t *testing.T, data string) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprintf(w, `{"data":%s}`, data)
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func testClient(endpoint string) *Client {
	return NewClient(endpoint, WithMaxRetries(2), WithRetryDelay(time.Millisecond))
}

func TestNativePrice(t *testing.T) {
	srv, _ := gqlServer(t, `{"bundle":{"nativeCurrencyPrice":"3150.25"}}`)
	c := testClient(srv.URL)

	price, err := c.NativePrice(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price != 3150.25 {
		t.Errorf("expected 3150.25, got %f", price)
	}
}

func TestNativePrice_MissingBundle(t *testing.T) {
	srv, requests := gqlServer(t, `{"bundle":null}`)
	c := testClient(srv.URL)

	_, err := c.NativePrice(context.Background())
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
	if requests.Load() != 1 {
		t.Errorf("shape errors must not retry, saw %d requests", requests.Load())
	}
}

func TestQuery_RetriesServerErrors(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	c := testClient(srv.URL)

	_, err := c.NativePrice(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if requests.Load() != 3 {
		t.Errorf("expected 3 attempts, saw %d", requests.Load())
	}
}

func TestQuery_RecoversAfterTransientFailure(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"data":{"bundle":{"nativeCurrencyPrice":"2.5"}}}`)
	}))
	t.Cleanup(srv.Close)
	c := testClient(srv.URL)

	price, err := c.NativePrice(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price != 2.5 {
		t.Errorf("expected 2.5, got %f", price)
	}
}

func TestQuery_GraphQLErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"errors":[{"message":"indexing in progress"}]}`)
	}))
	t.Cleanup(srv.Close)
	c := testClient(srv.URL)

	_, err := c.NativePrice(context.Background())
	if err == nil || !strings.Contains(err.Error(), "indexing in progress") {
		t.Fatalf("expected the graphql error message, got %v", err)
	}
}

func TestPairsByIDs_ParsesWire(t *testing.T) {
	srv, _ := gqlServer(t, `{"pairs":[{
		"id":"0xAbC0000000000000000000000000000000000001",
		"token0":{"id":"0xT0","symbol":"WETH","name":"Wrapped Ether","decimals":"18"},
		"token1":{"id":"0xT1","symbol":"USDC","name":"USD Coin","decimals":"6"},
		"reserve0":"12.5",
		"reserve1":"40000",
		"reserveUSD":"80000",
		"trackedReserveNativeCurrency":"25",
		"volumeUSD":"123456.78",
		"untrackedVolumeUSD":"130000",
		"totalSupply":"500",
		"txCount":"4242",
		"token0Price":"0.0003125",
		"token1Price":"3200",
		"createdAtBlockNumber":"1000000",
		"createdAtTimestamp":"1600000000"
	}]}`)
	c := testClient(srv.URL)

	snaps, err := c.PairsByIDs(context.Background(), []string{"0xabc0000000000000000000000000000000000001"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snaps))
	}
	s := snaps[0]
	if s.Address != "0xabc0000000000000000000000000000000000001" {
		t.Errorf("expected lowercased address, got %s", s.Address)
	}
	if s.Token0.Symbol != "WETH" || s.Token0.Decimals != 18 {
		t.Errorf("unexpected token0: %+v", s.Token0)
	}
	if s.VolumeQuote != 123456.78 {
		t.Errorf("expected volume 123456.78, got %f", s.VolumeQuote)
	}
	if s.CreatedAtBlock != 1000000 {
		t.Errorf("expected creation block 1000000, got %d", s.CreatedAtBlock)
	}
	if s.TxCount != 4242 {
		t.Errorf("expected tx count 4242, got %d", s.TxCount)
	}
}

func TestPairsByIDs_BadDecimalIsMalformed(t *testing.T) {
	srv, requests := gqlServer(t, `{"pairs":[{
		"id":"0xa",
		"token0":{"id":"0xt0","symbol":"A","name":"A","decimals":"18"},
		"token1":{"id":"0xt1","symbol":"B","name":"B","decimals":"18"},
		"reserveUSD":"not-a-number"
	}]}`)
	c := testClient(srv.URL)

	_, err := c.PairsByIDs(context.Background(), []string{"0xa"})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
	if requests.Load() != 1 {
		t.Errorf("expected no retries on a parse failure, saw %d requests", requests.Load())
	}
}

func TestPairAtBlock_MissingPairIsNil(t *testing.T) {
	srv, _ := gqlServer(t, `{"pair":null}`)
	c := testClient(srv.URL)

	snap, err := c.PairAtBlock(context.Background(), "0xa", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap != nil {
		t.Errorf("expected nil for a pair that did not exist, got %+v", snap)
	}
}

func TestSyncedBlock(t *testing.T) {
	srv, _ := gqlServer(t, `{"_meta":{"block":{"number":19000000}}}`)
	c := testClient(srv.URL)

	num, err := c.SyncedBlock(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != 19000000 {
		t.Errorf("expected 19000000, got %d", num)
	}
}

func TestBlocksForTimestamps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query string `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		// t200 deliberately unresolvable.
		fmt.Fprint(w, `{"data":{
			"t100":[{"number":"10"}],
			"t200":[],
			"t300":[{"number":"30"}]
		}}`)
	}))
	t.Cleanup(srv.Close)
	c := NewBlocksClient(srv.URL, WithMaxRetries(0))

	out, err := c.BlocksForTimestamps(context.Background(), []int64{100, 200, 300})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[100] != 10 || out[300] != 30 {
		t.Errorf("unexpected result: %v", out)
	}
	if _, ok := out[200]; ok {
		t.Error("unresolvable timestamp must be absent from the result")
	}
}

func TestPairRatesAtBlocks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// b1001 omitted: pair did not exist at that block.
		fmt.Fprint(w, `{"data":{
			"b1000":{"token0Price":"1.5","token1Price":"0.666"},
			"b1002":{"token0Price":"1.6","token1Price":"0.625"}
		}}`)
	}))
	t.Cleanup(srv.Close)
	c := testClient(srv.URL)

	rates, err := c.PairRatesAtBlocks(context.Background(), "0xa", []uint64{1000, 1001, 1002})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rates) != 2 {
		t.Fatalf("expected 2 rate pairs, got %d", len(rates))
	}
	if rates[0].Block != 1000 || rates[0].Rate0 != 1.5 {
		t.Errorf("unexpected first rate: %+v", rates[0])
	}
}

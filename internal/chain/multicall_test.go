package chain

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSelector_KnownSignatures(t *testing.T) {
	cases := map[string]string{
		"transfer(address,uint256)":    "a9059cbb",
		"balanceOf(address)":           "70a08231",
		"aggregate((address,bytes)[])": "252dba42",
	}
	for sig, want := range cases {
		if got := hex.EncodeToString(Selector(sig)); got != want {
			t.Errorf("%s: expected selector %s, got %s", sig, want, got)
		}
	}
}

func TestParseAddress(t *testing.T) {
	addr, err := parseAddress("0x5BA1e12693Dc8F9c48aAD8770482f4739bEeD696")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(addr) != 20 {
		t.Errorf("expected 20 bytes, got %d", len(addr))
	}

	if _, err := parseAddress("0x1234"); err == nil {
		t.Error("expected error for a short address")
	}
	if _, err := parseAddress("0xzz"); err == nil {
		t.Error("expected error for non-hex input")
	}
}

// encodeAggregateResult ABI-encodes the (uint256, bytes[]) return value of
// aggregate, mirroring what the contract produces.
func encodeAggregateResult(blockNumber uint64, blobs [][]byte) []byte {
	var out []byte
	out = append(out, encodeWord(blockNumber)...)
	out = append(out, encodeWord(2*wordSize)...) // offset of bytes[]

	out = append(out, encodeWord(uint64(len(blobs)))...)
	off := uint64(len(blobs)) * wordSize
	for _, blob := range blobs {
		out = append(out, encodeWord(off)...)
		padded := uint64(len(padRight(blob)))
		off += wordSize + padded
	}
	for _, blob := range blobs {
		out = append(out, encodeWord(uint64(len(blob)))...)
		out = append(out, padRight(blob)...)
	}
	return out
}

func TestDecodeAggregate_RoundTrip(t *testing.T) {
	blobs := [][]byte{
		encodeWord(25),
		{},
		bytes.Repeat([]byte{0xab}, 33), // forces padding
	}
	raw := encodeAggregateResult(19000000, blobs)

	out, err := decodeAggregate(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 blobs, got %d", len(out))
	}
	if !bytes.Equal(out[0], encodeWord(25)) {
		t.Errorf("unexpected blob 0: %x", out[0])
	}
	if len(out[1]) != 0 {
		t.Errorf("expected empty blob 1, got %x", out[1])
	}
	if !bytes.Equal(out[2], blobs[2]) {
		t.Errorf("unexpected blob 2: %x", out[2])
	}
}

func TestDecodeAggregate_Truncated(t *testing.T) {
	if _, err := decodeAggregate(make([]byte, 16)); err == nil {
		t.Fatal("expected error for truncated return data")
	}
}

// rpcServer serves eth_call with a fixed hex result.
func rpcServer(t *testing.T, result []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     uint64 `json:"id"`
			Method string `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Method != "eth_call" {
			t.Errorf("expected eth_call, got %s", req.Method)
		}
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":"0x%s"}`, req.ID, hex.EncodeToString(result))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const (
	pairA = "0x00000000000000000000000000000000000000A1"
	pairB = "0x00000000000000000000000000000000000000b2"
)

func TestSwapFees(t *testing.T) {
	// Pair A answers 25 bps, pair B reverts (empty blob) and stays absent.
	result := encodeAggregateResult(100, [][]byte{encodeWord(25), {}})
	srv := rpcServer(t, result)

	rpc := NewRPCClient(srv.URL, WithMaxRetries(0))
	mc := NewMulticall(rpc, "0x5ba1e12693dc8f9c48aad8770482f4739beed696")

	fees, err := mc.SwapFees(context.Background(), []string{pairA, pairB})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fees) != 1 {
		t.Fatalf("expected 1 fee, got %v", fees)
	}
	fee, ok := fees["0x00000000000000000000000000000000000000a1"]
	if !ok {
		t.Fatalf("expected fee under lowercased address, got %v", fees)
	}
	if fee != 25 {
		t.Errorf("expected fee 25, got %f", fee)
	}
}

func TestAggregate_LengthMismatch(t *testing.T) {
	// Two calls in, one blob out.
	result := encodeAggregateResult(100, [][]byte{encodeWord(25)})
	srv := rpcServer(t, result)

	rpc := NewRPCClient(srv.URL, WithMaxRetries(0))
	mc := NewMulticall(rpc, "0x5ba1e12693dc8f9c48aad8770482f4739beed696")

	_, err := mc.Aggregate(context.Background(), []Call{
		{Target: pairA, Data: swapFeeSelector},
		{Target: pairB, Data: swapFeeSelector},
	})
	if !errors.Is(err, ErrReturnLengthMismatch) {
		t.Fatalf("expected ErrReturnLengthMismatch, got %v", err)
	}
}

func TestAggregate_Empty(t *testing.T) {
	mc := NewMulticall(nil, "0x5ba1e12693dc8f9c48aad8770482f4739beed696")
	out, err := mc.Aggregate(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != nil {
		t.Errorf("expected nil for no calls, got %v", out)
	}
}

func TestEthCall_RPCErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"execution reverted"}}`)
	}))
	t.Cleanup(srv.Close)

	rpc := NewRPCClient(srv.URL, WithMaxRetries(0))
	_, err := rpc.EthCall(context.Background(), pairA, swapFeeSelector)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestEncodeAggregate_Layout(t *testing.T) {
	data, err := encodeAggregate([]Call{{Target: pairA, Data: swapFeeSelector}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(data[:4], aggregateSelector) {
		t.Errorf("expected aggregate selector prefix, got %x", data[:4])
	}
	// Word 0 after the selector points at the array argument.
	off, err := wordAt(data[4:], 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if off != wordSize {
		t.Errorf("expected array offset %d, got %d", wordSize, off)
	}
}

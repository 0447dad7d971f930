package chain

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// ErrReturnLengthMismatch is an integrity failure: the multicall contract
// returned a different number of blobs than calls submitted. Truncating
// silently would misattribute results, so this is raised as a hard error.
var ErrReturnLengthMismatch = errors.New("multicall return length mismatch")

// Call is one (target, calldata) pair submitted to the multicall contract.
type Call struct {
	Target string // 0x address
	Data   []byte
}

// Multicall batches read-only contract calls through the aggregate endpoint
// of a deployed multicall contract.
type Multicall struct {
	rpc     *RPCClient
	address string // multicall contract address
}

// NewMulticall creates a multicall reader bound to one contract address.
func NewMulticall(rpc *RPCClient, address string) *Multicall {
	return &Multicall{rpc: rpc, address: address}
}

// Aggregate submits all calls in one eth_call round trip and returns the raw
// return blobs in input order. len(output) always equals len(input); a
// mismatch from the contract is ErrReturnLengthMismatch.
func (m *Multicall) Aggregate(ctx context.Context, calls []Call) ([][]byte, error) {
	if len(calls) == 0 {
		return nil, nil
	}

	data, err := encodeAggregate(calls)
	if err != nil {
		return nil, err
	}

	raw, err := m.rpc.EthCall(ctx, m.address, data)
	if err != nil {
		return nil, err
	}

	blobs, err := decodeAggregate(raw)
	if err != nil {
		return nil, err
	}
	if len(blobs) != len(calls) {
		return nil, fmt.Errorf("%w: sent %d, got %d", ErrReturnLengthMismatch, len(calls), len(blobs))
	}
	return blobs, nil
}

// Selector returns the 4-byte function selector for a canonical signature.
func Selector(signature string) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	return h.Sum(nil)[:4]
}

var aggregateSelector = Selector("aggregate((address,bytes)[])")

const wordSize = 32

// encodeAggregate ABI-encodes aggregate((address,bytes)[]).
func encodeAggregate(calls []Call) ([]byte, error) {
	var tail []byte

	// Per-tuple offsets relative to the start of the element area.
	offsets := make([]uint64, len(calls))
	var tuples []byte
	for i, c := range calls {
		offsets[i] = uint64(len(calls))*wordSize + uint64(len(tuples))
		tuple, err := encodeCallTuple(c)
		if err != nil {
			return nil, err
		}
		tuples = append(tuples, tuple...)
	}

	tail = append(tail, encodeWord(uint64(len(calls)))...)
	for _, off := range offsets {
		tail = append(tail, encodeWord(off)...)
	}
	tail = append(tail, tuples...)

	data := make([]byte, 0, 4+wordSize+len(tail))
	data = append(data, aggregateSelector...)
	data = append(data, encodeWord(wordSize)...) // offset of the array argument
	data = append(data, tail...)
	return data, nil
}

// encodeCallTuple encodes one (address,bytes) tuple.
func encodeCallTuple(c Call) ([]byte, error) {
	addr, err := parseAddress(c.Target)
	if err != nil {
		return nil, err
	}

	var out []byte
	out = append(out, encodeAddressWord(addr)...)
	out = append(out, encodeWord(2*wordSize)...) // offset of the bytes member
	out = append(out, encodeWord(uint64(len(c.Data)))...)
	out = append(out, padRight(c.Data)...)
	return out, nil
}

// decodeAggregate decodes the (uint256 blockNumber, bytes[] returnData)
// return value, discarding the block number.
func decodeAggregate(raw []byte) ([][]byte, error) {
	// word 0: block number, word 1: offset of the bytes[] array
	arrayOff, err := wordAt(raw, wordSize)
	if err != nil {
		return nil, err
	}
	count, err := wordAt(raw, arrayOff)
	if err != nil {
		return nil, err
	}

	elemBase := arrayOff + wordSize
	blobs := make([][]byte, 0, count)
	for i := uint64(0); i < count; i++ {
		elemOff, err := wordAt(raw, elemBase+i*wordSize)
		if err != nil {
			return nil, err
		}
		blobLen, err := wordAt(raw, elemBase+elemOff)
		if err != nil {
			return nil, err
		}
		start := elemBase + elemOff + wordSize
		if start+blobLen > uint64(len(raw)) {
			return nil, fmt.Errorf("multicall return blob %d out of bounds", i)
		}
		blobs = append(blobs, raw[start:start+blobLen])
	}
	return blobs, nil
}

func encodeWord(v uint64) []byte {
	word := make([]byte, wordSize)
	binary.BigEndian.PutUint64(word[wordSize-8:], v)
	return word
}

func encodeAddressWord(addr []byte) []byte {
	word := make([]byte, wordSize)
	copy(word[wordSize-len(addr):], addr)
	return word
}

func padRight(b []byte) []byte {
	rem := len(b) % wordSize
	if rem == 0 {
		return b
	}
	return append(append([]byte{}, b...), make([]byte, wordSize-rem)...)
}

// wordAt reads a uint64-sized ABI word at the given byte offset.
func wordAt(raw []byte, off uint64) (uint64, error) {
	if off+wordSize > uint64(len(raw)) {
		return 0, fmt.Errorf("multicall return truncated at offset %d", off)
	}
	return binary.BigEndian.Uint64(raw[off+wordSize-8 : off+wordSize]), nil
}

func parseAddress(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	addr, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("parse address: %w", err)
	}
	if len(addr) != 20 {
		return nil, fmt.Errorf("parse address: want 20 bytes, got %d", len(addr))
	}
	return addr, nil
}

func hexPrefix(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

func parseHexBytes(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("parse hex data: %w", err)
	}
	return b, nil
}

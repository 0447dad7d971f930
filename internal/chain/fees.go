package chain

import (
	"context"
	"strings"
)

var swapFeeSelector = Selector("swapFee()")

// SwapFees reads every pair's on-chain swap fee (basis points) in a single
// aggregate round trip. Pairs whose return blob is empty or undecodable are
// absent from the result; callers keep the default fee for those.
func (m *Multicall) SwapFees(ctx context.Context, pairAddrs []string) (map[string]float64, error) {
	calls := make([]Call, len(pairAddrs))
	for i, addr := range pairAddrs {
		calls[i] = Call{Target: addr, Data: swapFeeSelector}
	}

	blobs, err := m.Aggregate(ctx, calls)
	if err != nil {
		return nil, err
	}

	fees := make(map[string]float64, len(pairAddrs))
	for i, blob := range blobs {
		if len(blob) < wordSize {
			continue
		}
		fee, err := wordAt(blob, 0)
		if err != nil {
			continue
		}
		fees[strings.ToLower(pairAddrs[i])] = float64(fee)
	}
	return fees, nil
}

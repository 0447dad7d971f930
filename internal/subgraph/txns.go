package subgraph

import (
	"context"
	"sort"

	"dexboard/internal/domain"
)

// PairTxns fetches the pair's most recent swaps, mints and burns merged into
// one list, newest first.
func (c *Client) PairTxns(ctx context.Context, id string) ([]domain.Transaction, error) {
	var out struct {
		Swaps []txnWire `json:"swaps"`
		Mints []txnWire `json:"mints"`
		Burns []txnWire `json:"burns"`
	}
	vars := map[string]any{"id": id, "n": TxnPageSize}
	if err := c.query(ctx, pairTxnsQuery, vars, &out); err != nil {
		return nil, err
	}

	txns := make([]domain.Transaction, 0, len(out.Swaps)+len(out.Mints)+len(out.Burns))
	for _, w := range out.Swaps {
		t, err := w.txn(domain.TxnSwap)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	for _, w := range out.Mints {
		t, err := w.txn(domain.TxnMint)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	for _, w := range out.Burns {
		t, err := w.txn(domain.TxnBurn)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}

	sort.Slice(txns, func(i, j int) bool { return txns[i].Timestamp > txns[j].Timestamp })
	return txns, nil
}

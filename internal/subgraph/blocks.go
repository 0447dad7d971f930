package subgraph

import (
	"context"
	"fmt"
	"strings"
)

// BlocksClient queries the block-index subgraph, which maps timestamps to
// block numbers. It lives on a separate endpoint from the protocol subgraph.
type BlocksClient struct {
	*Client
}

// NewBlocksClient creates a client for the block-index subgraph.
func NewBlocksClient(endpoint string, opts ...ClientOption) *BlocksClient {
	return &BlocksClient{Client: NewClient(endpoint, opts...)}
}

// blockWindow bounds the at-or-before search per timestamp. The index has a
// block well inside ten minutes of any timestamp on every supported chain.
const blockWindow = 600

// BlocksForTimestamps maps each unix timestamp to the closest block at or
// before it, batching BlockChunkSize timestamps per request. Timestamps the
// index cannot resolve are simply absent from the result map.
func (c *BlocksClient) BlocksForTimestamps(ctx context.Context, timestamps []int64) (map[int64]uint64, error) {
	result := make(map[int64]uint64, len(timestamps))
	for start := 0; start < len(timestamps); start += BlockChunkSize {
		end := start + BlockChunkSize
		if end > len(timestamps) {
			end = len(timestamps)
		}
		if err := c.blocksChunk(ctx, timestamps[start:end], result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (c *BlocksClient) blocksChunk(ctx context.Context, timestamps []int64, result map[int64]uint64) error {
	var sb strings.Builder
	sb.WriteString("query BlocksForTimestamps {")
	for _, ts := range timestamps {
		fmt.Fprintf(&sb, `
			t%d: blocks(
				first: 1
				orderBy: timestamp
				orderDirection: desc
				where: { timestamp_lte: %d, timestamp_gt: %d }
			) {
				number
			}`, ts, ts, ts-blockWindow)
	}
	sb.WriteString("\n}")

	out := map[string][]struct {
		Number string `json:"number"`
	}{}
	if err := c.query(ctx, sb.String(), nil, &out); err != nil {
		return err
	}

	for _, ts := range timestamps {
		rows, ok := out[fmt.Sprintf("t%d", ts)]
		if !ok || len(rows) == 0 {
			continue
		}
		var p decParser
		n := p.int(rows[0].Number)
		if p.err != nil {
			return p.err
		}
		result[ts] = uint64(n)
	}
	return nil
}

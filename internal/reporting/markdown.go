package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("# Market Report: %s\n\n", r.Network))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Pairs | %d |\n", r.Summary.PairCount))
	sb.WriteString(fmt.Sprintf("| Tokens | %d |\n", r.Summary.TokenCount))
	sb.WriteString(fmt.Sprintf("| Total Liquidity | %.2f |\n", r.Summary.TotalLiquidityQuote))
	sb.WriteString(fmt.Sprintf("| 24h Volume | %.2f |\n", r.Summary.TotalOneDayVolume))
	sb.WriteString(fmt.Sprintf("| 24h Fees | %.2f |\n", r.Summary.TotalOneDayFees))
	sb.WriteString("\n")

	// Top pairs
	sb.WriteString("## Top Pairs\n\n")
	if len(r.TopPairs) > 0 {
		sb.WriteString("| # | Pair | Liquidity | 24h Volume | 7d Volume | 24h Change | 24h Fees | Fee (bps) | 24h Txns |\n")
		sb.WriteString("|---|------|-----------|------------|-----------|------------|----------|-----------|----------|\n")
		for i, p := range r.TopPairs {
			sb.WriteString(fmt.Sprintf("| %d | %s | %.2f | %.2f | %.2f | %+.2f%% | %.2f | %.0f | %d |\n",
				i+1, p.Name, p.LiquidityQuote, p.OneDayVolume, p.OneWeekVolume,
				p.VolumeChange, p.OneDayFees, p.SwapFeeBps, p.OneDayTxns))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("No pairs archived.\n\n")
	}

	// Top tokens
	sb.WriteString("## Top Tokens\n\n")
	if len(r.TopTokens) > 0 {
		sb.WriteString("| # | Token | Price | 24h Price Change | Liquidity | 24h Volume | 24h Volume Change |\n")
		sb.WriteString("|---|-------|-------|------------------|-----------|------------|-------------------|\n")
		for i, t := range r.TopTokens {
			sb.WriteString(fmt.Sprintf("| %d | %s | %.4f | %+.2f%% | %.2f | %.2f | %+.2f%% |\n",
				i+1, t.Symbol, t.PriceQuote, t.PriceChange, t.LiquidityQuote,
				t.OneDayVolume, t.VolumeChange))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("No tokens archived.\n\n")
	}

	return sb.String()
}

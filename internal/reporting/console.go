package reporting

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// RenderConsole prints the report as formatted tables.
func RenderConsole(w io.Writer, r *Report) {
	fmt.Fprintf(w, "Market report for %s, generated %s\n\n",
		r.Network, r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Pairs: %d | Tokens: %d | Liquidity: %.2f | 24h Volume: %.2f | 24h Fees: %.2f\n\n",
		r.Summary.PairCount, r.Summary.TokenCount, r.Summary.TotalLiquidityQuote,
		r.Summary.TotalOneDayVolume, r.Summary.TotalOneDayFees)

	if len(r.TopPairs) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetTitle("Top Pairs")
		t.AppendHeader(table.Row{"#", "Pair", "Liquidity", "24h Volume", "7d Volume", "24h Change", "Fee (bps)", "24h Txns"})
		for i, p := range r.TopPairs {
			t.AppendRow(table.Row{
				i + 1,
				p.Name,
				fmt.Sprintf("%.2f", p.LiquidityQuote),
				fmt.Sprintf("%.2f", p.OneDayVolume),
				fmt.Sprintf("%.2f", p.OneWeekVolume),
				fmt.Sprintf("%+.2f%%", p.VolumeChange),
				fmt.Sprintf("%.0f", p.SwapFeeBps),
				p.OneDayTxns,
			})
		}
		t.Render()
		fmt.Fprintln(w)
	}

	if len(r.TopTokens) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetTitle("Top Tokens")
		t.AppendHeader(table.Row{"#", "Token", "Price", "24h Price Change", "Liquidity", "24h Volume"})
		for i, tok := range r.TopTokens {
			t.AppendRow(table.Row{
				i + 1,
				tok.Symbol,
				fmt.Sprintf("%.4f", tok.PriceQuote),
				fmt.Sprintf("%+.2f%%", tok.PriceChange),
				fmt.Sprintf("%.2f", tok.LiquidityQuote),
				fmt.Sprintf("%.2f", tok.OneDayVolume),
			})
		}
		t.Render()
	}
}

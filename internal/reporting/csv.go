package reporting

import (
	"fmt"
	"strings"
)

// RenderPairsCSV renders the top-pairs table as CSV string.
func RenderPairsCSV(rows []PairRow) string {
	var sb strings.Builder

	sb.WriteString("pair,address,liquidity_quote,one_day_volume,one_week_volume,")
	sb.WriteString("volume_change_pct,one_day_fees,swap_fee_bps,one_day_txns\n")

	for _, p := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%.6f,%.6f,%.6f,%.6f,%.6f,%.2f,%d\n",
			p.Name,
			p.Address,
			p.LiquidityQuote,
			p.OneDayVolume,
			p.OneWeekVolume,
			p.VolumeChange,
			p.OneDayFees,
			p.SwapFeeBps,
			p.OneDayTxns,
		))
	}

	return sb.String()
}

// RenderTokensCSV renders the top-tokens table as CSV string.
func RenderTokensCSV(rows []TokenRow) string {
	var sb strings.Builder

	sb.WriteString("token,address,price_quote,price_change_pct,liquidity_quote,")
	sb.WriteString("one_day_volume,volume_change_pct\n")

	for _, t := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%.6f,%.6f,%.6f,%.6f,%.6f\n",
			t.Symbol,
			t.Address,
			t.PriceQuote,
			t.PriceChange,
			t.LiquidityQuote,
			t.OneDayVolume,
			t.VolumeChange,
		))
	}

	return sb.String()
}

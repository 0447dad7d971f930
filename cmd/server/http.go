package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"dexboard/internal/board"
	"dexboard/internal/cache"
	"dexboard/internal/domain"
	"dexboard/internal/icons"
	"dexboard/internal/observability"
)

// api serves the consumer-facing read surface over HTTP. Every data endpoint
// is non-blocking: it returns whatever the cache holds and lets the board
// schedule refreshes for missing keys.
type api struct {
	board     *board.Board
	icons     *icons.Resolver
	iconCache *icons.Cache
	store     *cache.Store
	logger    *log.Logger
}

func newAPI(b *board.Board, resolver *icons.Resolver, iconCache *icons.Cache, store *cache.Store, logger *log.Logger) *api {
	return &api{
		board:     b,
		icons:     resolver,
		iconCache: iconCache,
		store:     store,
		logger:    logger,
	}
}

func (a *api) serve(addr string) {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", observability.Handler())
	mux.HandleFunc("GET /status", a.handleStatus)

	mux.HandleFunc("GET /api/pairs", a.handleBulkPairs)
	mux.HandleFunc("GET /api/pairs/{id}", a.handlePair)
	mux.HandleFunc("GET /api/pairs/{id}/daily", a.handlePairDaily)
	mux.HandleFunc("GET /api/pairs/{id}/hourly", a.handlePairHourly)
	mux.HandleFunc("GET /api/pairs/{id}/txns", a.handlePairTxns)
	mux.HandleFunc("GET /api/tokens", a.handleBulkTokens)
	mux.HandleFunc("GET /api/tokens/{id}", a.handleToken)
	mux.HandleFunc("GET /api/tokens/{id}/daily", a.handleTokenDaily)
	mux.HandleFunc("GET /api/tokens/{id}/icon", a.handleTokenIcon)
	mux.HandleFunc("GET /api/top/pairs", a.handleTopPairs)
	mux.HandleFunc("GET /api/top/tokens", a.handleTopTokens)
	mux.HandleFunc("GET /api/campaigns", a.handleCampaigns)
	mux.HandleFunc("POST /api/network/{network}", a.handleSetNetwork)
	mux.HandleFunc("POST /api/cache/reset", a.handleCacheReset)

	a.logger.Printf("Starting HTTP server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		a.logger.Printf("HTTP server error: %v", err)
	}
}

func (a *api) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Printf("encode response: %v", err)
	}
}

func (a *api) handleStatus(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, map[string]any{
		"status":      "running",
		"network":     a.board.Network(),
		"cacheCounts": a.store.Counts(),
		"iconEntries": a.iconCache.Len(),
	})
}

func (a *api) handlePair(w http.ResponseWriter, r *http.Request) {
	id := strings.ToLower(r.PathValue("id"))
	rec, ok := a.board.GetPair(id)
	if !ok {
		// Refresh is already scheduled; the consumer retries.
		w.WriteHeader(http.StatusAccepted)
		a.writeJSON(w, map[string]string{"status": "pending"})
		return
	}
	a.writeJSON(w, pairJSON(rec))
}

func (a *api) handleBulkPairs(w http.ResponseWriter, r *http.Request) {
	ids := splitIDs(r.URL.Query().Get("ids"))
	if len(ids) == 0 {
		http.Error(w, "ids query parameter required", http.StatusBadRequest)
		return
	}

	records := a.board.GetBulkPairs(ids)
	out := make(map[string]any, len(records))
	for id, rec := range records {
		out[id] = pairJSON(rec)
	}
	a.writeJSON(w, out)
}

func (a *api) handlePairDaily(w http.ResponseWriter, r *http.Request) {
	id := strings.ToLower(r.PathValue("id"))
	a.writeJSON(w, dailyJSON(a.board.GetDailySeries(id)))
}

func (a *api) handlePairHourly(w http.ResponseWriter, r *http.Request) {
	id := strings.ToLower(r.PathValue("id"))

	window := domain.Window(r.URL.Query().Get("window"))
	if window == "" {
		window = domain.WindowDay
	}
	if window.Seconds() == 0 {
		http.Error(w, "unknown window", http.StatusBadRequest)
		return
	}

	series, ok := a.board.GetHourlySeries(id, window)
	if !ok {
		w.WriteHeader(http.StatusAccepted)
		a.writeJSON(w, map[string]string{"status": "pending"})
		return
	}
	a.writeJSON(w, map[string]any{
		"token0": candleJSON(series[0]),
		"token1": candleJSON(series[1]),
	})
}

func (a *api) handlePairTxns(w http.ResponseWriter, r *http.Request) {
	id := strings.ToLower(r.PathValue("id"))

	txns := a.board.GetTxns(id)
	out := make([]map[string]any, 0, len(txns))
	for _, txn := range txns {
		out = append(out, map[string]any{
			"hash":        txn.Hash,
			"kind":        txn.Kind,
			"timestamp":   txn.Timestamp,
			"amountQuote": txn.AmountQuote,
			"account":     txn.Account,
		})
	}
	a.writeJSON(w, out)
}

func (a *api) handleToken(w http.ResponseWriter, r *http.Request) {
	id := strings.ToLower(r.PathValue("id"))
	rec, ok := a.board.GetToken(id)
	if !ok {
		w.WriteHeader(http.StatusAccepted)
		a.writeJSON(w, map[string]string{"status": "pending"})
		return
	}
	a.writeJSON(w, tokenJSON(rec))
}

func (a *api) handleBulkTokens(w http.ResponseWriter, r *http.Request) {
	ids := splitIDs(r.URL.Query().Get("ids"))
	if len(ids) == 0 {
		http.Error(w, "ids query parameter required", http.StatusBadRequest)
		return
	}

	out := make(map[string]any, len(ids))
	for _, id := range ids {
		if rec, ok := a.board.GetToken(id); ok {
			out[id] = tokenJSON(rec)
		}
	}
	a.writeJSON(w, out)
}

func (a *api) handleTokenDaily(w http.ResponseWriter, r *http.Request) {
	id := strings.ToLower(r.PathValue("id"))
	a.writeJSON(w, dailyJSON(a.board.GetTokenDailySeries(id)))
}

func (a *api) handleTokenIcon(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	network := a.board.Network()
	if q := r.URL.Query().Get("network"); q != "" {
		network = domain.Network(q)
	}

	url, ok := a.icons.IconURL(r.Context(), network, id)
	if !ok {
		http.Error(w, "no icon", http.StatusNotFound)
		return
	}
	a.writeJSON(w, map[string]string{"url": url})
}

func (a *api) handleTopPairs(w http.ResponseWriter, r *http.Request) {
	network := a.board.Network()
	if q := r.URL.Query().Get("network"); q != "" {
		network = domain.Network(q)
		if !network.Valid() {
			http.Error(w, "unknown network", http.StatusBadRequest)
			return
		}
	}

	records := a.board.GetTopPairs(network)
	out := make(map[string]any, len(records))
	for id, rec := range records {
		out[id] = pairJSON(rec)
	}
	a.writeJSON(w, out)
}

func (a *api) handleTopTokens(w http.ResponseWriter, r *http.Request) {
	network := a.board.Network()
	if q := r.URL.Query().Get("network"); q != "" {
		network = domain.Network(q)
		if !network.Valid() {
			http.Error(w, "unknown network", http.StatusBadRequest)
			return
		}
	}

	records := a.board.GetTopTokens(network)
	out := make(map[string]any, len(records))
	for id, rec := range records {
		out[id] = tokenJSON(rec)
	}
	a.writeJSON(w, out)
}

func (a *api) handleCampaigns(w http.ResponseWriter, r *http.Request) {
	status := domain.CampaignActive
	if q := r.URL.Query().Get("status"); q != "" {
		status = domain.CampaignStatus(q)
		if status != domain.CampaignActive && status != domain.CampaignExpired {
			http.Error(w, "unknown status", http.StatusBadRequest)
			return
		}
	}

	campaigns := a.board.GetCampaigns(status)
	out := make([]map[string]any, 0, len(campaigns))
	for _, c := range campaigns {
		rewards := make([]map[string]any, 0, len(c.RewardTokens))
		for _, t := range c.RewardTokens {
			rewards = append(rewards, map[string]any{
				"address":  t.Address,
				"symbol":   t.Symbol,
				"name":     t.Name,
				"decimals": t.Decimals,
			})
		}
		out = append(out, map[string]any{
			"id":               c.ID,
			"pair":             pairJSON(c.Pair),
			"rewardTokens":     rewards,
			"rewardAmounts":    c.RewardAmounts,
			"stakedAmountLP":   c.StakedAmountLP,
			"stakedValueQuote": c.StakedValueQuote,
			"startsAt":         c.StartsAt,
			"endsAt":           c.EndsAt,
			"locked":           c.Locked,
		})
	}
	a.writeJSON(w, out)
}

func (a *api) handleSetNetwork(w http.ResponseWriter, r *http.Request) {
	network := domain.Network(r.PathValue("network"))
	if !network.Valid() {
		http.Error(w, "unknown network", http.StatusBadRequest)
		return
	}

	a.board.SetNetwork(network)
	a.writeJSON(w, map[string]any{"network": network})
}

func (a *api) handleCacheReset(w http.ResponseWriter, r *http.Request) {
	preserve := r.URL.Query().Get("preserve-top") == "true"
	a.board.ResetCache(preserve)
	a.writeJSON(w, map[string]any{"reset": true, "preservedTopSets": preserve})
}

func splitIDs(raw string) []string {
	if raw == "" {
		return nil
	}
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}

func pairJSON(rec domain.PairRecord) map[string]any {
	return map[string]any{
		"address": rec.Address,
		"token0": map[string]any{
			"address":  rec.Token0.Address,
			"symbol":   rec.Token0.Symbol,
			"name":     rec.Token0.Name,
			"decimals": rec.Token0.Decimals,
		},
		"token1": map[string]any{
			"address":  rec.Token1.Address,
			"symbol":   rec.Token1.Symbol,
			"name":     rec.Token1.Name,
			"decimals": rec.Token1.Decimals,
		},
		"reserve0":            rec.Reserve0,
		"reserve1":            rec.Reserve1,
		"reserveQuote":        rec.ReserveQuote,
		"trackedReserveQuote": rec.TrackedReserveQuote,
		"volumeQuote":         rec.VolumeQuote,
		"oneDayVolume":        rec.OneDayVolume,
		"oneWeekVolume":       rec.OneWeekVolume,
		"volumeChange":        rec.VolumeChange,
		"oneDayTxns":          rec.OneDayTxns,
		"liquidityChange":     rec.LiquidityChange,
		"totalSupplyLP":       rec.TotalSupplyLP,
		"txCount":             rec.TxCount,
		"token0PriceNative":   rec.Token0PriceNative,
		"token1PriceNative":   rec.Token1PriceNative,
		"swapFeeBps":          rec.SwapFeeBps,
		"createdAtTimestamp":  rec.CreatedAtTimestamp,
	}
}

func tokenJSON(rec domain.TokenRecord) map[string]any {
	return map[string]any{
		"address":         rec.Address,
		"symbol":          rec.Symbol,
		"name":            rec.Name,
		"decimals":        rec.Decimals,
		"priceQuote":      rec.PriceQuote,
		"priceChange":     rec.PriceChange,
		"liquidityQuote":  rec.LiquidityQuote,
		"liquidityChange": rec.LiquidityChange,
		"oneDayVolume":    rec.OneDayVolume,
		"oneWeekVolume":   rec.OneWeekVolume,
		"volumeChange":    rec.VolumeChange,
		"oneDayTxns":      rec.OneDayTxns,
		"txCount":         rec.TxCount,
		"derivedNative":   rec.DerivedNative,
	}
}

func dailyJSON(points []domain.DailyPoint) []map[string]any {
	out := make([]map[string]any, 0, len(points))
	for _, p := range points {
		out = append(out, map[string]any{
			"date":        p.Date,
			"volume":      p.Volume,
			"reserve":     p.Reserve,
			"utilization": p.Utilization,
		})
	}
	return out
}

func candleJSON(candles []domain.CandlePoint) []map[string]any {
	out := make([]map[string]any, 0, len(candles))
	for _, c := range candles {
		out = append(out, map[string]any{
			"timestamp": c.Timestamp,
			"open":      c.Open,
			"close":     c.Close,
		})
	}
	return out
}

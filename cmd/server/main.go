// Package main provides the unified dashboard backend:
// - Coalescing refresher (continuous): drains stale cache keys into batched fetches
// - HTTP API: cached derived records, series and campaigns
// - Archival: derived records to Postgres, series to ClickHouse
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"dexboard/internal/blocks"
	"dexboard/internal/board"
	"dexboard/internal/cache"
	"dexboard/internal/chain"
	"dexboard/internal/domain"
	"dexboard/internal/fetcher"
	"dexboard/internal/icons"
	"dexboard/internal/observability"
	"dexboard/internal/series"
	"dexboard/internal/storage"
	chstore "dexboard/internal/storage/clickhouse"
	"dexboard/internal/storage/memory"
	"dexboard/internal/storage/migrations"
	pgstore "dexboard/internal/storage/postgres"
	"dexboard/internal/subgraph"
)

// defaultMulticall is the Multicall2 deployment shared across the supported
// networks.
const defaultMulticall = "0x5ba1e12693dc8f9c48aad8770482f4739beed696"

func main() {
	// Load .env file if exists
	loadEnvFile()

	networksFlag := flag.String("networks", "mainnet", "Comma-separated networks to serve (mainnet, gnosis, arbitrum-one)")
	activeNetwork := flag.String("active-network", "", "Initially active network (defaults to first of --networks)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string for record snapshots")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string for series archive")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	apiAddr := flag.String("api-addr", ":8080", "HTTP API address")
	tick := flag.Duration("tick", board.DefaultTick, "Coalescing refresher tick")
	refreshInterval := flag.Duration("refresh-interval", board.DefaultRefreshInterval, "Full refresh interval")
	topN := flag.Int("top-n", board.DefaultTopN, "Number of top entities to track per network")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	networks, err := parseNetworks(*networksFlag)
	if err != nil {
		logger.Fatal(err)
	}
	initial := networks[0]
	if *activeNetwork != "" {
		initial = domain.Network(*activeNetwork)
		if !initial.Valid() {
			logger.Fatalf("unknown --active-network %q", *activeNetwork)
		}
	}
	if !*useMemory && *postgresDSN == "" && *clickhouseDSN == "" {
		logger.Fatal("--postgres-dsn or --clickhouse-dsn required (use --use-memory to run without storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics("dexboard")

	archive, cleanup, err := createArchive(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create storage: %v", err)
	}
	defer cleanup()

	store := cache.New()
	warmStart(ctx, store, archive, networks, initial, *topN, logger)

	deps, closeDeps, err := buildNetworkDeps(ctx, networks, logger, metrics)
	if err != nil {
		logger.Fatalf("Failed to build network dependencies: %v", err)
	}
	defer closeDeps()

	b := board.New(board.Options{
		Store:           store,
		Deps:            deps,
		Network:         initial,
		Logger:          logger,
		Metrics:         metrics,
		Persist:         archive,
		Tick:            *tick,
		RefreshInterval: *refreshInterval,
		TopN:            *topN,
	})

	iconCache := icons.NewCache()
	iconResolver := icons.NewResolver(iconCache, icons.WithLogger(logger))

	api := newAPI(b, iconResolver, iconCache, store, logger)
	go api.serve(*apiAddr)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		}
	}()

	logger.Printf("Serving networks %v, active %s", networks, initial)
	b.Run(ctx)
	logger.Println("Shutdown complete")
}

// parseNetworks validates the comma-separated network list.
func parseNetworks(list string) ([]domain.Network, error) {
	var networks []domain.Network
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n := domain.Network(part)
		if !n.Valid() {
			return nil, fmt.Errorf("unknown network %q", part)
		}
		networks = append(networks, n)
	}
	if len(networks) == 0 {
		return nil, fmt.Errorf("no networks specified")
	}
	return networks, nil
}

// createArchive connects the persistence backends. Either DSN may be empty,
// which disables the corresponding stores.
func createArchive(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*storage.Archive, func(), error) {
	if useMemory {
		archive := &storage.Archive{
			Pairs:   memory.NewPairRecordStore(),
			Tokens:  memory.NewTokenRecordStore(),
			Daily:   memory.NewDailySeriesStore(),
			Candles: memory.NewCandleStore(),
		}
		return archive, func() {}, nil
	}

	archive := &storage.Archive{}
	var closers []func()
	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}

	if postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, postgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		closers = append(closers, pool.Close)

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			cleanup()
			return nil, nil, err
		}
		archive.Pairs = pgstore.NewPairRecordStore(pool)
		archive.Tokens = pgstore.NewTokenRecordStore(pool)
	}

	if clickhouseDSN != "" {
		conn, err := chstore.Bootstrap(ctx, clickhouseDSN)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		closers = append(closers, func() { conn.Close() })

		archive.Daily = chstore.NewDailySeriesStore(conn)
		archive.Candles = chstore.NewCandleStore(conn)
	}

	return archive, cleanup, nil
}

// warmStart seeds the cache from archived records so the API serves data
// before the first refresh cycle completes.
func warmStart(ctx context.Context, store *cache.Store, archive *storage.Archive, networks []domain.Network, initial domain.Network, topN int, logger *log.Logger) {
	if archive.Pairs == nil {
		return
	}

	for _, network := range networks {
		pairs, err := archive.Pairs.GetByNetwork(ctx, network)
		if err != nil {
			logger.Printf("warm start pairs %s: %v", network, err)
			continue
		}
		if len(pairs) == 0 {
			continue
		}

		n := len(pairs)
		if n > topN {
			n = topN
		}
		top := make(map[string]domain.PairRecord, n)
		for _, rec := range pairs[:n] {
			top[rec.Address] = rec
		}
		store.PutTopPairs(network, top)

		if network == initial {
			for _, rec := range pairs {
				store.PutPair(rec.Address, rec)
			}
		}
		logger.Printf("warm start: %d pairs for %s", len(pairs), network)
	}

	if archive.Tokens == nil {
		return
	}
	for _, network := range networks {
		tokens, err := archive.Tokens.GetByNetwork(ctx, network)
		if err != nil {
			logger.Printf("warm start tokens %s: %v", network, err)
			continue
		}
		if len(tokens) == 0 {
			continue
		}

		n := len(tokens)
		if n > topN {
			n = topN
		}
		top := make(map[string]domain.TokenRecord, n)
		for _, rec := range tokens[:n] {
			top[rec.Address] = rec
		}
		store.PutTopTokens(network, top)

		if network == initial {
			for _, rec := range tokens {
				store.PutToken(rec.Address, rec)
			}
		}
		logger.Printf("warm start: %d tokens for %s", len(tokens), network)
	}
}

// buildNetworkDeps wires the upstream clients for each served network.
// Endpoints come from per-network environment variables, e.g.
// SUBGRAPH_ENDPOINT_MAINNET and BLOCKS_ENDPOINT_MAINNET.
func buildNetworkDeps(ctx context.Context, networks []domain.Network, logger *log.Logger, metrics *observability.Metrics) (map[domain.Network]board.NetworkDeps, func(), error) {
	deps := make(map[domain.Network]board.NetworkDeps, len(networks))
	var closers []func()
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	for _, network := range networks {
		subgraphEndpoint := networkEnv("SUBGRAPH_ENDPOINT", network)
		blocksEndpoint := networkEnv("BLOCKS_ENDPOINT", network)
		rpcEndpoint := networkEnv("RPC_ENDPOINT", network)
		wsEndpoint := networkEnv("WS_ENDPOINT", network)
		if subgraphEndpoint == "" || blocksEndpoint == "" || rpcEndpoint == "" {
			closeAll()
			return nil, nil, fmt.Errorf("network %s: SUBGRAPH_ENDPOINT, BLOCKS_ENDPOINT and RPC_ENDPOINT are required", network)
		}

		multicallAddr := networkEnv("MULTICALL_ADDRESS", network)
		if multicallAddr == "" {
			multicallAddr = defaultMulticall
		}

		graph := subgraph.NewClient(subgraphEndpoint,
			subgraph.WithLatencyObserver(metrics.QueryLatency.WithLabelValues("subgraph").Observe))
		blocksClient := subgraph.NewBlocksClient(blocksEndpoint,
			subgraph.WithLatencyObserver(metrics.QueryLatency.WithLabelValues("blocks").Observe))
		blockResolver := blocks.NewResolver(blocksClient, blocks.WithMetrics(metrics))
		rpc := chain.NewRPCClient(rpcEndpoint,
			chain.WithLatencyObserver(metrics.QueryLatency.WithLabelValues("rpc").Observe))
		multicall := chain.NewMulticall(rpc, multicallAddr)

		f := fetcher.New(fetcher.Options{
			Network: network,
			Graph:   graph,
			Fees:    multicall,
			Refs:    blockResolver,
			Logger:  logger,
			Metrics: metrics,
		})

		nd := board.NetworkDeps{
			Fetcher: f,
			Hourly:  series.NewHourlyBuilder(blockResolver, graph),
		}

		if wsEndpoint != "" {
			watcher, err := chain.NewHeadWatcher(ctx, wsEndpoint, nil, logger)
			if err != nil {
				logger.Printf("head watcher %s: %v, running without synced-head filter", network, err)
			} else {
				closers = append(closers, watcher.Close)
				nd.Head = watcher
			}
		}

		deps[network] = nd
	}

	return deps, closeAll, nil
}

// networkEnv reads a per-network environment variable such as
// SUBGRAPH_ENDPOINT_ARBITRUM_ONE.
func networkEnv(prefix string, network domain.Network) string {
	suffix := strings.ToUpper(strings.ReplaceAll(string(network), "-", "_"))
	return os.Getenv(prefix + "_" + suffix)
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

package icons

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/sha3"

	"dexboard/internal/domain"
)

// DefaultBaseURL points at the Trust Wallet asset repository, which keys
// icons by chain directory and checksummed token address.
const DefaultBaseURL = "https://raw.githubusercontent.com/trustwallet/assets/master/blockchains"

// chainDirs maps networks to asset repository directory names.
var chainDirs = map[domain.Network]string{
	domain.NetworkMainnet:  "ethereum",
	domain.NetworkGnosis:   "xdai",
	domain.NetworkArbitrum: "arbitrum",
}

type cacheKey struct {
	network domain.Network
	address string
}

type cacheEntry struct {
	url   string
	found bool
}

// Cache holds resolved icon URLs, including negative results. It is created
// once per process and injected into every consumer; Invalidate is the only
// way to drop entries.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]cacheEntry
}

// NewCache creates an empty icon cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]cacheEntry)}
}

func (c *Cache) get(k cacheKey) (cacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[k]
	return e, ok
}

func (c *Cache) put(k cacheKey, e cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[k] = e
}

// Invalidate drops every cached entry, positive and negative.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey]cacheEntry)
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Resolver probes the asset repository for token icons and records the
// outcome in an injected Cache.
type Resolver struct {
	cache   *Cache
	client  *http.Client
	baseURL string
	logger  *log.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithBaseURL overrides the asset repository root.
func WithBaseURL(url string) ResolverOption {
	return func(r *Resolver) {
		r.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ResolverOption {
	return func(r *Resolver) {
		r.client = client
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *log.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver backed by the given cache.
func NewResolver(cache *Cache, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		cache:   cache,
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: DefaultBaseURL,
		logger:  log.New(os.Stdout, "[icons] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IconURL resolves the icon for a token, serving from the cache when
// possible. Returns false when the token has no icon or the network is
// unknown. A context cancelled while the probe is in flight discards the
// result instead of caching it, so an abandoned caller never populates the
// cache with a response it no longer wants.
func (r *Resolver) IconURL(ctx context.Context, network domain.Network, address string) (string, bool) {
	dir, ok := chainDirs[network]
	if !ok {
		return "", false
	}

	key := cacheKey{network: network, address: strings.ToLower(address)}
	if e, ok := r.cache.get(key); ok {
		return e.url, e.found
	}

	url := fmt.Sprintf("%s/%s/assets/%s/logo.png", r.baseURL, dir, ChecksumAddress(address))
	found, err := r.probe(ctx, url)
	if err != nil {
		r.logger.Printf("icon probe %s: %v", address, err)
		return "", false
	}
	if ctx.Err() != nil {
		return "", false
	}

	r.cache.put(key, cacheEntry{url: url, found: found})
	if !found {
		return "", false
	}
	return url, true
}

// probe checks whether an icon exists without downloading it.
func (r *Resolver) probe(ctx context.Context, url string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("probe icon: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return true, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("probe icon: unexpected status %d", resp.StatusCode)
	}
}

// ChecksumAddress converts a 0x address to its EIP-55 mixed-case form, which
// the asset repository uses for directory names.
func ChecksumAddress(address string) string {
	addr := strings.ToLower(strings.TrimPrefix(address, "0x"))

	hash := sha3.NewLegacyKeccak256()
	hash.Write([]byte(addr))
	digest := hash.Sum(nil)

	out := make([]byte, len(addr))
	for i := 0; i < len(addr); i++ {
		c := addr[i]
		if c >= 'a' && c <= 'f' {
			nibble := digest[i/2]
			if i%2 == 0 {
				nibble >>= 4
			}
			if nibble&0x0f >= 8 {
				c = c - 'a' + 'A'
			}
		}
		out[i] = c
	}
	return "0x" + string(out)
}

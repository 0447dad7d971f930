package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// HeadWatcherConfig configures reconnect behavior.
type HeadWatcherConfig struct {
	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
}

// DefaultHeadWatcherConfig returns default watcher configuration.
func DefaultHeadWatcherConfig() HeadWatcherConfig {
	return HeadWatcherConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// HeadWatcher subscribes to new chain heads over websocket and tracks the
// latest seen block number. The number caps speculative candle boundaries
// and overrides wall-clock block resolution when the indexer lags.
type HeadWatcher struct {
	endpoint string
	config   HeadWatcherConfig
	logger   *log.Logger

	conn   *websocket.Conn
	connMu sync.Mutex
	head   atomic.Uint64
	closed atomic.Bool

	done chan struct{}
	wg   sync.WaitGroup
}

// NewHeadWatcher connects to the websocket endpoint and starts tracking
// heads until Close is called.
func NewHeadWatcher(ctx context.Context, endpoint string, config *HeadWatcherConfig, logger *log.Logger) (*HeadWatcher, error) {
	cfg := DefaultHeadWatcherConfig()
	if config != nil {
		cfg = *config
	}

	w := &HeadWatcher{
		endpoint: endpoint,
		config:   cfg,
		logger:   logger,
		done:     make(chan struct{}),
	}

	if err := w.connect(ctx); err != nil {
		return nil, err
	}

	w.wg.Add(1)
	go w.readLoop()
	return w, nil
}

// Head returns the latest seen block number, 0 before the first notification.
func (w *HeadWatcher) Head() uint64 {
	return w.head.Load()
}

// Close stops the watcher and closes the connection.
func (w *HeadWatcher) Close() {
	if !w.closed.CompareAndSwap(false, true) {
		return
	}
	close(w.done)
	w.connMu.Lock()
	if w.conn != nil {
		w.conn.Close()
	}
	w.connMu.Unlock()
	w.wg.Wait()
}

func (w *HeadWatcher) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: w.config.WriteTimeout}
	conn, _, err := dialer.DialContext(ctx, w.endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", w.endpoint, err)
	}

	sub := map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "eth_subscribe",
		"params":  []any{"newHeads"},
	}
	conn.SetWriteDeadline(time.Now().Add(w.config.WriteTimeout))
	if err := conn.WriteJSON(sub); err != nil {
		conn.Close()
		return fmt.Errorf("subscribe newHeads: %w", err)
	}

	w.connMu.Lock()
	w.conn = conn
	w.connMu.Unlock()
	return nil
}

type headNotification struct {
	Params struct {
		Result struct {
			Number string `json:"number"`
		} `json:"result"`
	} `json:"params"`
}

func (w *HeadWatcher) readLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		default:
		}

		w.connMu.Lock()
		conn := w.conn
		w.connMu.Unlock()

		conn.SetReadDeadline(time.Now().Add(w.config.ReadTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if w.closed.Load() {
				return
			}
			w.logger.Printf("headwatch: read error: %v, reconnecting", err)
			w.reconnect()
			continue
		}

		var note headNotification
		if err := json.Unmarshal(msg, &note); err != nil {
			continue
		}
		numHex := strings.TrimPrefix(note.Params.Result.Number, "0x")
		if numHex == "" {
			continue
		}
		num, err := strconv.ParseUint(numHex, 16, 64)
		if err != nil {
			continue
		}
		w.head.Store(num)
	}
}

func (w *HeadWatcher) reconnect() {
	delay := w.config.ReconnectDelay
	for {
		select {
		case <-w.done:
			return
		case <-time.After(delay):
		}

		ctx, cancel := context.WithTimeout(context.Background(), w.config.WriteTimeout)
		err := w.connect(ctx)
		cancel()
		if err == nil {
			return
		}
		w.logger.Printf("headwatch: reconnect failed: %v", err)

		delay *= 2
		if delay > w.config.MaxReconnectDelay {
			delay = w.config.MaxReconnectDelay
		}
	}
}

package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mr-tron/base58"
	"github.com/rs/zerolog"

	"solana-agent-swarm/internal/domain"
)

// WSFeedConfig configures WebSocket feed behavior.
type WSFeedConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
	// BufferSize bounds the number of candidates held between cycles.
	// When full, the oldest buffered candidate is dropped.
	BufferSize int
}

// DefaultWSFeedConfig returns default WebSocket feed configuration.
func DefaultWSFeedConfig() WSFeedConfig {
	return WSFeedConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		BufferSize:        1000,
	}
}

// WSCandidateFeed implements CandidateSource over a WebSocket stream of
// JSON candidate frames. The feed buffers incoming candidates between
// cycles; Candidates drains the buffer without blocking on the socket.
type WSCandidateFeed struct {
	endpoint string
	config   WSFeedConfig
	log      zerolog.Logger

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	buffer chan *domain.TokenCandidate

	done chan struct{}
	wg   sync.WaitGroup

	reconnecting atomic.Bool
	dropped      atomic.Uint64
}

// Compile-time interface check.
var _ CandidateSource = (*WSCandidateFeed)(nil)

// NewWSCandidateFeed connects to the endpoint and starts reading frames.
func NewWSCandidateFeed(ctx context.Context, endpoint string, config *WSFeedConfig, log zerolog.Logger) (*WSCandidateFeed, error) {
	cfg := DefaultWSFeedConfig()
	if config != nil {
		cfg = *config
	}

	f := &WSCandidateFeed{
		endpoint: endpoint,
		config:   cfg,
		log:      log.With().Str("component", "ws_candidate_feed").Logger(),
		buffer:   make(chan *domain.TokenCandidate, cfg.BufferSize),
		done:     make(chan struct{}),
	}

	if err := f.connect(ctx); err != nil {
		return nil, err
	}

	f.wg.Add(1)
	go f.readLoop()

	f.wg.Add(1)
	go f.pingLoop()

	return f, nil
}

// connect establishes WebSocket connection.
func (f *WSCandidateFeed) connect(ctx context.Context) error {
	f.connMu.Lock()
	defer f.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, f.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	f.conn = conn
	return nil
}

// Candidates drains the buffered candidates accumulated since the last call.
func (f *WSCandidateFeed) Candidates(ctx context.Context) ([]*domain.TokenCandidate, error) {
	if f.closed.Load() {
		return nil, fmt.Errorf("feed closed")
	}

	var result []*domain.TokenCandidate
	for {
		select {
		case c := <-f.buffer:
			result = append(result, c)
		case <-ctx.Done():
			return result, ctx.Err()
		default:
			return result, nil
		}
	}
}

// Dropped returns the number of candidates discarded due to a full buffer.
func (f *WSCandidateFeed) Dropped() uint64 {
	return f.dropped.Load()
}

// Close closes the WebSocket connection.
func (f *WSCandidateFeed) Close() error {
	if f.closed.Swap(true) {
		return nil // Already closed
	}

	close(f.done)

	f.connMu.Lock()
	if f.conn != nil {
		f.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		f.conn.Close()
	}
	f.connMu.Unlock()

	f.wg.Wait()
	return nil
}

// readLoop reads frames from WebSocket and buffers parsed candidates.
func (f *WSCandidateFeed) readLoop() {
	defer f.wg.Done()

	reconnectDelay := f.config.ReconnectDelay

	for !f.closed.Load() {
		f.connMu.Lock()
		conn := f.conn
		f.connMu.Unlock()

		if conn == nil {
			select {
			case <-f.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(f.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if f.closed.Load() {
				return
			}

			// Connection error - attempt reconnect with exponential backoff
			if !f.reconnecting.Swap(true) {
				go f.reconnect(reconnectDelay)
			}

			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > f.config.MaxReconnectDelay {
				reconnectDelay = f.config.MaxReconnectDelay
			}

			select {
			case <-f.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		// Reset delay on successful read
		reconnectDelay = f.config.ReconnectDelay

		f.handleMessage(message)
	}
}

// reconnect attempts to re-establish the connection after delay.
func (f *WSCandidateFeed) reconnect(delay time.Duration) {
	defer f.reconnecting.Store(false)

	if f.closed.Load() {
		return
	}

	select {
	case <-f.done:
		return
	case <-time.After(delay):
	}

	f.connMu.Lock()
	if f.conn != nil {
		f.conn.Close()
		f.conn = nil
	}
	f.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := f.connect(ctx); err != nil {
		f.log.Warn().Err(err).Msg("reconnect failed, will retry")
		return
	}

	f.log.Info().Msg("reconnected")
}

// handleMessage parses one frame and buffers valid candidates. Frames may
// carry a single candidate object or an array of them.
func (f *WSCandidateFeed) handleMessage(message []byte) {
	var frames []candidateFrame

	if len(message) > 0 && message[0] == '[' {
		if err := json.Unmarshal(message, &frames); err != nil {
			f.log.Debug().Err(err).Msg("skipping unparsable frame batch")
			return
		}
	} else {
		var frame candidateFrame
		if err := json.Unmarshal(message, &frame); err != nil {
			f.log.Debug().Err(err).Msg("skipping unparsable frame")
			return
		}
		frames = append(frames, frame)
	}

	now := time.Now()
	for i := range frames {
		candidate, err := frames[i].toCandidate(now)
		if err != nil {
			f.log.Debug().Err(err).Str("mint", frames[i].Mint).Msg("skipping invalid candidate")
			continue
		}
		f.push(candidate)
	}
}

// push buffers a candidate, evicting the oldest when full.
func (f *WSCandidateFeed) push(c *domain.TokenCandidate) {
	for {
		select {
		case f.buffer <- c:
			return
		default:
		}

		select {
		case <-f.buffer:
			f.dropped.Add(1)
		default:
		}
	}
}

// candidateFrame is the wire format of one discovered token.
type candidateFrame struct {
	Mint           string  `json:"mint"`
	Symbol         string  `json:"symbol"`
	Name           string  `json:"name"`
	PriceUSD       float64 `json:"price_usd"`
	MarketCapUSD   float64 `json:"market_cap_usd"`
	LiquidityUSD   float64 `json:"liquidity_usd"`
	Volume24hUSD   float64 `json:"volume_24h_usd"`
	PriceChange5m  float64 `json:"price_change_5m"`
	PriceChange1h  float64 `json:"price_change_1h"`
	PriceChange24h float64 `json:"price_change_24h"`
}

// toCandidate validates the frame and converts it to a domain candidate.
func (fr *candidateFrame) toCandidate(discoveredAt time.Time) (*domain.TokenCandidate, error) {
	if err := validateMint(fr.Mint); err != nil {
		return nil, err
	}
	if fr.PriceUSD < 0 || fr.LiquidityUSD < 0 || fr.Volume24hUSD < 0 {
		return nil, fmt.Errorf("negative market fields")
	}

	return &domain.TokenCandidate{
		Mint:           fr.Mint,
		Symbol:         fr.Symbol,
		Name:           fr.Name,
		PriceUSD:       fr.PriceUSD,
		MarketCapUSD:   fr.MarketCapUSD,
		LiquidityUSD:   fr.LiquidityUSD,
		Volume24hUSD:   fr.Volume24hUSD,
		PriceChange5m:  fr.PriceChange5m,
		PriceChange1h:  fr.PriceChange1h,
		PriceChange24h: fr.PriceChange24h,
		DiscoveredAt:   discoveredAt,
	}, nil
}

// validateMint checks that a mint is a base58-encoded 32-byte public key.
func validateMint(mint string) error {
	if mint == "" {
		return fmt.Errorf("empty mint")
	}
	raw, err := base58.Decode(mint)
	if err != nil {
		return fmt.Errorf("decode mint: %w", err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("mint is %d bytes, want 32", len(raw))
	}
	return nil
}

// pingLoop sends periodic ping frames to keep connection alive.
func (f *WSCandidateFeed) pingLoop() {
	defer f.wg.Done()

	ticker := time.NewTicker(f.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-f.done:
			return
		case <-ticker.C:
			f.connMu.Lock()
			if f.conn != nil {
				f.conn.SetWriteDeadline(time.Now().Add(f.config.WriteTimeout))
				if err := f.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					// Connection might be dead, reader will handle reconnect
				}
			}
			f.connMu.Unlock()
		}
	}
}

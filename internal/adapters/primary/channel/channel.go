package channel

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lorrc/service-desk-console/internal/core/ports"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 8192
)

// EventJoinUserRoom is the room-join handshake emitted after every
// (re)connection. Room membership is not persisted by the transport; a
// server-side disconnect drops the affiliation, so the join must repeat.
const EventJoinUserRoom = "join-user-room"

// Frame is the wire format for channel messages in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Config holds channel configuration.
type Config struct {
	// URL of the event-push endpoint (ws:// or wss://).
	URL         string
	DialTimeout time.Duration
	// MaxAttempts bounds consecutive failed dials before the channel stays
	// down until Reconnect is called. Zero means unbounded.
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultConfig returns the default reconnect policy: five attempts with
// exponential backoff and jitter starting at one second.
func DefaultConfig(url string) Config {
	return Config{
		URL:         url,
		DialTimeout: 10 * time.Second,
		MaxAttempts: 5,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
	}
}

// Channel maintains exactly one live connection per session to the desk's
// event-push endpoint, re-establishing it automatically on drop and
// re-issuing the room-join handshake after every (re)connection. Connection
// errors are logged, never raised to callers; the channel is a best-effort
// side layer whose failure must not block any list query or mutation.
type Channel struct {
	cfg    Config
	dialer *websocket.Dialer
	logger *slog.Logger

	mu        sync.Mutex
	running   bool
	connected bool
	userID    string
	cancel    context.CancelFunc
	conn      *websocket.Conn

	writeMu sync.Mutex

	handlerMu sync.Mutex
	handlers  map[string]map[int]ports.EventHandler
	nextID    int

	kick chan struct{}
}

var _ ports.EventChannel = (*Channel)(nil)

// New creates a channel. It does not connect until Connect is called.
func New(cfg Config, logger *slog.Logger) *Channel {
	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 10 * time.Second
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 30 * time.Second
	}
	return &Channel{
		cfg:      cfg,
		dialer:   &websocket.Dialer{HandshakeTimeout: dialTimeout},
		logger:   logger.With("component", "event_channel"),
		handlers: make(map[string]map[int]ports.EventHandler),
		kick:     make(chan struct{}, 1),
	}
}

// Connect starts the connect loop for the given user. Idempotent: a running
// loop for the same user is reused; a loop for a different user is torn down
// first. Failures land in the retry loop, not with the caller.
func (c *Channel) Connect(ctx context.Context, userID string) {
	c.mu.Lock()
	if c.running && c.userID == userID {
		c.mu.Unlock()
		return
	}
	if c.running {
		c.stopLocked()
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.userID = userID
	c.running = true
	c.mu.Unlock()

	go c.run(runCtx, userID)
}

// Reconnect restarts the retry loop after the bounded attempts were
// exhausted. A no-op while the channel is live or already retrying.
func (c *Channel) Reconnect() {
	select {
	case c.kick <- struct{}{}:
	default:
	}
}

// On registers a handler for a named event; the returned func removes it.
func (c *Channel) On(event string, handler ports.EventHandler) (off func()) {
	c.handlerMu.Lock()
	id := c.nextID
	c.nextID++
	if c.handlers[event] == nil {
		c.handlers[event] = make(map[int]ports.EventHandler)
	}
	c.handlers[event][id] = handler
	c.handlerMu.Unlock()

	return func() {
		c.handlerMu.Lock()
		delete(c.handlers[event], id)
		c.handlerMu.Unlock()
	}
}

// Connected reports whether a live connection exists right now.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Close tears the channel down for good.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	return nil
}

// stopLocked cancels the run loop and closes the connection. Caller holds
// c.mu.
func (c *Channel) stopLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.running = false
	c.connected = false
}

// run dials, joins the user room, and pumps events until the context is
// cancelled. Every dial failure backs off exponentially with jitter; after
// MaxAttempts consecutive failures the loop parks until Reconnect.
func (c *Channel) run(ctx context.Context, userID string) {
	attempt := 0

	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := c.dialer.DialContext(ctx, c.cfg.URL, nil)
		if err != nil {
			attempt++
			c.logger.Warn("dial failed",
				"attempt", attempt,
				"error", err,
			)
			if c.cfg.MaxAttempts > 0 && attempt >= c.cfg.MaxAttempts {
				c.logger.Error("reconnect attempts exhausted, channel down until explicit reconnect")
				select {
				case <-ctx.Done():
					return
				case <-c.kick:
					attempt = 0
					continue
				}
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.backoff(attempt)):
			}
			continue
		}

		attempt = 0
		c.setConn(conn)
		c.logger.Info("channel connected", "user_id", userID)

		// Room membership does not survive a disconnect; join on every
		// (re)connection.
		if err := c.emit(EventJoinUserRoom, map[string]string{"userId": userID}); err != nil {
			c.logger.Warn("join-room handshake failed", "error", err)
			c.dropConn(conn)
			continue
		}

		c.readLoop(ctx, conn)
		c.dropConn(conn)
		c.logger.Info("channel disconnected", "user_id", userID)
	}
}

// backoff returns the delay before the given (1-based) attempt, with jitter.
func (c *Channel) backoff(attempt int) time.Duration {
	delay := c.cfg.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= c.cfg.MaxDelay {
			delay = c.cfg.MaxDelay
			break
		}
	}
	half := delay / 2
	return half + rand.N(half+1)
}

func (c *Channel) setConn(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()
}

// dropConn marks the channel down. Already-received data remains valid; the
// notification store is never cleared from here.
func (c *Channel) dropConn(conn *websocket.Conn) {
	_ = conn.Close()
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
		c.connected = false
	}
	c.mu.Unlock()
}

// readLoop pumps inbound frames until the connection drops, keeping the
// connection alive with pings.
func (c *Channel) readLoop(ctx context.Context, conn *websocket.Conn) {
	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error("failed to set read deadline", "error", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	pingDone := make(chan struct{})
	defer close(pingDone)
	go c.pingLoop(conn, pingDone)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("read error", "error", err)
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(message, &frame); err != nil {
			c.logger.Warn("dropping malformed frame", "error", err)
			continue
		}
		c.dispatch(frame)
	}
}

// pingLoop keeps the connection alive until it drops or done closes.
func (c *Channel) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// dispatch fans a frame out to the registered handlers. Handlers run outside
// the lock.
func (c *Channel) dispatch(frame Frame) {
	c.handlerMu.Lock()
	fns := make([]ports.EventHandler, 0, len(c.handlers[frame.Event]))
	for _, fn := range c.handlers[frame.Event] {
		fns = append(fns, fn)
	}
	c.handlerMu.Unlock()

	if len(fns) == 0 {
		c.logger.Debug("no handler for event", "event", frame.Event)
		return
	}
	for _, fn := range fns {
		fn(frame.Data)
	}
}

// emit writes one frame to the live connection.
func (c *Channel) emit(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return websocket.ErrCloseSent
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(Frame{Event: event, Data: payload})
}

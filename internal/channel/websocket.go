package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// frame is the wire format: one JSON object per websocket text message
type frame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// WebSocket is a Channel over a single websocket connection. Events are
// JSON frames {event, payload}. Inbound frames are dispatched sequentially
// from one read loop goroutine.
type WebSocket struct {
	url string
	log *slog.Logger

	handlers map[string][]Handler

	mu   sync.Mutex // guards conn and writes
	conn *websocket.Conn

	closeOnce sync.Once
	done      chan struct{}
}

var _ Channel = (*WebSocket)(nil)

// NewWebSocket creates a disconnected channel for the given peer URL
func NewWebSocket(url string, log *slog.Logger) *WebSocket {
	if log == nil {
		log = slog.Default()
	}
	return &WebSocket{
		url:      url,
		log:      log,
		handlers: make(map[string][]Handler),
		done:     make(chan struct{}),
	}
}

// On registers a handler. Call before Connect.
func (c *WebSocket) On(event string, handler Handler) {
	c.handlers[event] = append(c.handlers[event], handler)
}

// Connect dials the peer, dispatches the connect event and starts the read
// loop. On dial failure the connect_error event is dispatched and the error
// returned.
func (c *WebSocket) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		c.dispatch(EventConnectError, nil)
		return fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.log.Info("channel connected", "url", c.url)
	c.dispatch(EventConnect, nil)

	go c.readLoop(conn)
	return nil
}

// Emit sends an event frame to the peer
func (c *WebSocket) Emit(event string, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("channel not connected")
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload for %s: %w", event, err)
	}

	return c.conn.WriteJSON(frame{Event: event, Payload: raw})
}

// Close tears down the connection. The read loop dispatches the disconnect
// event when it notices.
func (c *WebSocket) Close() error {
	c.closeOnce.Do(func() { close(c.done) })

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Done is closed once the channel has been closed locally
func (c *WebSocket) Done() <-chan struct{} {
	return c.done
}

func (c *WebSocket) readLoop(conn *websocket.Conn) {
	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			select {
			case <-c.done:
				// Closed locally
			default:
				c.log.Warn("channel read failed", "err", err)
			}
			c.mu.Lock()
			if c.conn == conn {
				c.conn = nil
			}
			c.mu.Unlock()
			c.dispatch(EventDisconnect, nil)
			return
		}
		c.dispatch(f.Event, f.Payload)
	}
}

func (c *WebSocket) dispatch(event string, payload json.RawMessage) {
	for _, h := range c.handlers[event] {
		h(payload)
	}
}

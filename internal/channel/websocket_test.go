package channel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPeer struct {
	server   *httptest.Server
	received chan frame
	send     chan frame

	mu    sync.Mutex
	conns []*websocket.Conn
}

func newTestPeer(t *testing.T) *testPeer {
	t.Helper()
	p := &testPeer{
		received: make(chan frame, 16),
		send:     make(chan frame, 16),
	}

	upgrader := websocket.Upgrader{}
	p.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		p.mu.Lock()
		p.conns = append(p.conns, conn)
		p.mu.Unlock()

		go func() {
			for f := range p.send {
				if err := conn.WriteJSON(f); err != nil {
					return
				}
			}
		}()

		for {
			var f frame
			if err := conn.ReadJSON(&f); err != nil {
				return
			}
			p.received <- f
		}
	}))
	t.Cleanup(p.server.Close)

	return p
}

func (p *testPeer) url() string {
	return "ws" + strings.TrimPrefix(p.server.URL, "http")
}

// closeConnections closes the upgraded websocket connections directly.
// httptest's CloseClientConnections cannot be used for this: the server
// stops tracking a connection once it is hijacked for the websocket
// upgrade, so it never gets closed.
func (p *testPeer) closeConnections() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.conns {
		c.Close()
	}
}

func waitFrame(t *testing.T, ch chan frame) frame {
	t.Helper()
	select {
	case f := <-ch:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return frame{}
	}
}

func TestConnectAndEmit(t *testing.T) {
	peer := newTestPeer(t)

	connected := make(chan struct{}, 1)
	c := NewWebSocket(peer.url(), nil)
	c.On(EventConnect, func(json.RawMessage) { connected <- struct{}{} })

	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	select {
	case <-connected:
	case <-time.After(2 * time.Second):
		t.Fatal("connect event not dispatched")
	}

	require.NoError(t, c.Emit("addAddress", map[string]any{
		"blockchain": "eth",
		"address":    "0xabc",
		"version":    2,
	}))

	f := waitFrame(t, peer.received)
	assert.Equal(t, "addAddress", f.Event)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(f.Payload, &payload))
	assert.Equal(t, "eth", payload["blockchain"])
	assert.Equal(t, float64(2), payload["version"])
}

func TestInboundDispatch(t *testing.T) {
	peer := newTestPeer(t)

	got := make(chan json.RawMessage, 1)
	c := NewWebSocket(peer.url(), nil)
	c.On("addressAuthChallengeSuccess", func(p json.RawMessage) { got <- p })

	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	raw, _ := json.Marshal(map[string]any{"payload": map[string]any{"address": "0xabc"}})
	peer.send <- frame{Event: "addressAuthChallengeSuccess", Payload: raw}

	select {
	case p := <-got:
		assert.Contains(t, string(p), "0xabc")
	case <-time.After(2 * time.Second):
		t.Fatal("inbound event not dispatched")
	}
}

func TestDisconnectDispatchedOnPeerClose(t *testing.T) {
	peer := newTestPeer(t)

	disconnected := make(chan struct{}, 1)
	c := NewWebSocket(peer.url(), nil)
	c.On(EventDisconnect, func(json.RawMessage) { disconnected <- struct{}{} })

	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	peer.closeConnections()

	select {
	case <-disconnected:
	case <-time.After(2 * time.Second):
		t.Fatal("disconnect event not dispatched")
	}

	assert.Error(t, c.Emit("addAddress", nil))
}

func TestConnectError(t *testing.T) {
	failed := make(chan struct{}, 1)
	c := NewWebSocket("ws://127.0.0.1:1/nowhere", nil)
	c.On(EventConnectError, func(json.RawMessage) { failed <- struct{}{} })

	err := c.Connect(context.Background())
	require.Error(t, err)

	select {
	case <-failed:
	default:
		t.Fatal("connect_error event not dispatched")
	}
}

package channel

import "encoding/json"

// Synthetic local events, dispatched by implementations on connection state
// changes. Remote events carry the name sent by the peer.
const (
	EventConnect      = "connect"
	EventDisconnect   = "disconnect"
	EventConnectError = "connect_error"
)

// Handler processes one inbound event payload
type Handler func(payload json.RawMessage)

// Channel is a bidirectional named-event connection to the registry peer.
// Implementations dispatch inbound events sequentially, one at a time.
type Channel interface {
	// Emit sends an event to the peer
	Emit(event string, payload any) error

	// On registers a handler for an inbound event name. Multiple handlers
	// per event are allowed; registration is not safe after Connect.
	On(event string, handler Handler)

	// Close tears the connection down
	Close() error
}

// Discard is an offline Channel for local-only operations: emitted events
// are dropped and no inbound events ever arrive. Announcements for any
// change made offline happen on the next live connect, which re-announces
// the full address set.
type Discard struct{}

func (Discard) Emit(string, any) error { return nil }
func (Discard) On(string, Handler)     {}
func (Discard) Close() error           { return nil }

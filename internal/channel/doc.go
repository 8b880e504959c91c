// Package channel provides the bidirectional named-event connection used to
// synchronize the account registry with its remote peer.
//
// The wire format is one JSON frame per message: {"event": ..., "payload":
// ...}. The connect, disconnect and connect_error events are synthesized
// locally on connection state changes and never travel over the wire.
//
// Reconnection is the caller's policy: the sync loop redials and the
// registry re-announces every address on each connect event, so duplicate
// announcements across reconnects are expected and harmless.
package channel

// Package registry keeps the wallet's account list encrypted at rest and
// its per-address authorization status synchronized with a remote peer.
//
// The account list lives in an encrypted vault store whose codec persists
// only private keys. The status map (AUTHORIZING, UNAUTHORIZED, ONLINE,
// keyed by lower-cased address) is held in memory only and rebuilt through
// the challenge handshake: every connect re-announces all addresses, the
// peer challenges each one, and the registry signs the challenge with the
// account's key.
//
// All status transitions are driven by inbound peer events. A disconnect
// clears every status; a stuck AUTHORIZING address is only retried through
// the explicit reconnect operations.
package registry

// Package storage provides the BBolt database interface for walletvault.
//
// Database structure uses two buckets:
//   - config: format version, timestamps, vault ID (unencrypted)
//   - slots: encrypted store blobs, keyed by store name
//
// Slot names are visible without a password so that walletvault status can
// work unauthenticated; slot contents are opaque encrypted blobs.
//
// BBolt provides ACID transactions, file locking, and corruption detection.
package storage

// Package crypto provides the password-based encryption used for vault slots.
//
// Every blob is self-describing:
//   - 16-byte random salt, generated fresh per encryption
//   - 12-byte random GCM nonce
//   - AES-256-GCM ciphertext with a 16-byte authentication tag
//
// Key derivation uses PBKDF2-HMAC-SHA256 with a fixed 1000 iterations. The
// iteration count is part of the blob format: raising it would make existing
// blobs unreadable, so it stays fixed until a format version bump.
//
// Because the salt lives inside the blob, keys are derived fresh on every
// call and never cached. Use ClearBytes() to zero sensitive data after use.
package crypto

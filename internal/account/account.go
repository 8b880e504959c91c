// Package account provides blockchain accounts: a secp256k1 private key, the
// address derived from it, and the ability to sign authorization challenges.
package account

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"
)

var ErrInvalidPrivateKey = errors.New("invalid private key")

// Account wraps a private key together with its derived address.
// The address is the last 20 bytes of the Keccak-256 hash of the
// uncompressed public key, hex-encoded with an 0x prefix.
type Account struct {
	Address string
	key     *secp256k1.PrivateKey
}

// New creates an account with a freshly generated random key
func New() (*Account, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate private key: %w", err)
	}
	return fromKey(key), nil
}

// FromPrivateKey restores an account from a hex-encoded 32-byte private key
func FromPrivateKey(privateKey string) (*Account, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(privateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("%w: expected 32 bytes, got %d", ErrInvalidPrivateKey, len(raw))
	}
	return fromKey(secp256k1.PrivKeyFromBytes(raw)), nil
}

// Create is the account factory used by the registry: an empty privateKey
// generates a fresh random key, otherwise the key is restored.
func Create(privateKey string) (*Account, error) {
	if privateKey == "" {
		return New()
	}
	return FromPrivateKey(privateKey)
}

func fromKey(key *secp256k1.PrivateKey) *Account {
	pub := key.PubKey().SerializeUncompressed()

	h := sha3.NewLegacyKeccak256()
	h.Write(pub[1:]) // drop the 0x04 format byte
	digest := h.Sum(nil)

	return &Account{
		Address: "0x" + hex.EncodeToString(digest[12:]),
		key:     key,
	}
}

// PrivateKey returns the hex-encoded private key for persistence
func (a *Account) PrivateKey() string {
	return hex.EncodeToString(a.key.Serialize())
}

// Sign signs an authorization challenge payload. The payload is hashed with
// Keccak-256 and signed with the account's key; the signature is returned
// hex-encoded.
func (a *Account) Sign(data []byte) (string, error) {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	digest := h.Sum(nil)

	sig := ecdsa.Sign(a.key, digest)
	return hex.EncodeToString(sig.Serialize()), nil
}

// Verify checks a hex-encoded signature produced by Sign against this
// account's public key.
func (a *Account) Verify(data []byte, signature string) bool {
	raw, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	sig, err := ecdsa.ParseDERSignature(raw)
	if err != nil {
		return false
	}

	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	digest := h.Sum(nil)

	return sig.Verify(digest, a.key.PubKey())
}

// NormalizeAddress lower-cases an address for case-insensitive comparison.
// Account identity is the lower-cased address.
func NormalizeAddress(address string) string {
	return strings.ToLower(address)
}

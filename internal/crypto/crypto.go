package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	SaltSize   = 16   // Salt size in bytes, embedded in every blob
	KeySize    = 32   // AES-256 key size
	NonceSize  = 12   // GCM nonce size
	TagSize    = 16   // GCM authentication tag size
	Iterations = 1000 // PBKDF2 iterations, fixed for blob compatibility

	// HeaderSize is the length of the fixed salt || nonce prefix. A blob
	// shorter than this cannot be parsed at all.
	HeaderSize = SaltSize + NonceSize

	// BlobOverhead is the blob length for an empty plaintext:
	// salt || nonce || tag.
	BlobOverhead = HeaderSize + TagSize
)

var (
	ErrMalformedBlob = errors.New("malformed encrypted blob")
	ErrAuthFailed    = errors.New("authentication failed")
	ErrKeyDerivation = errors.New("key derivation failed")
)

// DeriveKey derives a 32-byte encryption key from a password and salt using
// PBKDF2-HMAC-SHA256. The same (password, salt) pair always produces the
// same key.
func DeriveKey(password []byte, salt []byte) ([]byte, error) {
	if len(password) == 0 {
		return nil, fmt.Errorf("%w: empty password", ErrKeyDerivation)
	}
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("%w: salt must be %d bytes, got %d", ErrKeyDerivation, SaltSize, len(salt))
	}
	return pbkdf2.Key(password, salt, Iterations, KeySize, sha256.New), nil
}

// Encrypt encrypts plaintext under a password-derived key using AES-256-GCM.
//
// Every call generates a fresh random salt and nonce, so encrypting the same
// plaintext twice never yields the same blob. The output layout is
// salt(16) || nonce(12) || ciphertext+tag.
func Encrypt(plaintext []byte, password []byte) ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	key, err := DeriveKey(password, salt)
	if err != nil {
		return nil, err
	}
	defer ClearBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	blob := make([]byte, 0, SaltSize+NonceSize+len(ciphertext))
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, ciphertext...)

	return blob, nil
}

// Decrypt reverses Encrypt. The key is re-derived from the salt embedded in
// the blob and the supplied password.
//
// Returns ErrMalformedBlob if the blob is too short to contain the salt and
// nonce, and ErrAuthFailed if the tag does not verify. A blob with a full
// header but truncated ciphertext, a wrong password and corrupted ciphertext
// are indistinguishable from each other.
func Decrypt(blob []byte, password []byte) ([]byte, error) {
	if len(blob) < HeaderSize {
		return nil, ErrMalformedBlob
	}

	salt := blob[:SaltSize]
	nonce := blob[SaltSize : SaltSize+NonceSize]
	ciphertext := blob[SaltSize+NonceSize:]

	key, err := DeriveKey(password, salt)
	if err != nil {
		return nil, err
	}
	defer ClearBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}

	return plaintext, nil
}

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ConstantTimeCompare performs a constant-time comparison of two byte slices
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// GenerateRandom generates n random bytes
func GenerateRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}

package crypto

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	password := []byte("correct-horse")
	plaintexts := [][]byte{
		[]byte(""),
		[]byte("a"),
		[]byte(`["0x1234"]`),
		bytes.Repeat([]byte{0xff}, 4096),
	}

	for _, plaintext := range plaintexts {
		blob, err := Encrypt(plaintext, password)
		if err != nil {
			t.Fatalf("Encrypt failed: %v", err)
		}
		if len(blob) != BlobOverhead+len(plaintext) {
			t.Errorf("blob length = %d, want %d", len(blob), BlobOverhead+len(plaintext))
		}

		decrypted, err := Decrypt(blob, password)
		if err != nil {
			t.Fatalf("Decrypt failed: %v", err)
		}
		if !bytes.Equal(decrypted, plaintext) {
			t.Errorf("round trip mismatch: got %q, want %q", decrypted, plaintext)
		}
	}
}

func TestEncryptNonDeterministic(t *testing.T) {
	password := []byte("correct-horse")
	plaintext := []byte("same plaintext")

	blob1, err := Encrypt(plaintext, password)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	blob2, err := Encrypt(plaintext, password)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	if bytes.Equal(blob1, blob2) {
		t.Error("two encryptions of the same plaintext produced identical blobs")
	}
	if bytes.Equal(blob1[:SaltSize], blob2[:SaltSize]) {
		t.Error("salt reused across encryptions")
	}
}

func TestDecryptTamperDetection(t *testing.T) {
	password := []byte("correct-horse")
	blob, err := Encrypt([]byte("secret payload"), password)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	// Flipping any single byte must fail authentication, never return
	// altered plaintext. Flipping a salt byte changes the derived key,
	// flipping nonce/ciphertext/tag bytes breaks GCM verification.
	for i := range blob {
		tampered := append([]byte(nil), blob...)
		tampered[i] ^= 0x01

		_, err := Decrypt(tampered, password)
		if !errors.Is(err, ErrAuthFailed) {
			t.Fatalf("byte %d: expected ErrAuthFailed, got %v", i, err)
		}
	}
}

func TestDecryptWrongPassword(t *testing.T) {
	blob, err := Encrypt([]byte("secret"), []byte("password-one"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	_, err = Decrypt(blob, []byte("password-two"))
	if !errors.Is(err, ErrAuthFailed) {
		t.Errorf("expected ErrAuthFailed, got %v", err)
	}
}

func TestDecryptMalformedBlob(t *testing.T) {
	password := []byte("correct-horse")

	for size := 0; size < HeaderSize; size++ {
		blob := make([]byte, size)
		_, err := Decrypt(blob, password)
		if !errors.Is(err, ErrMalformedBlob) {
			t.Fatalf("size %d: expected ErrMalformedBlob, got %v", size, err)
		}
	}
}

func TestDecryptTruncatedCiphertext(t *testing.T) {
	password := []byte("correct-horse")

	// A full salt||nonce header with a ciphertext too short to carry a
	// valid tag parses fine but must fail authentication, same as any
	// other unverifiable blob
	for size := HeaderSize; size < BlobOverhead; size++ {
		blob := make([]byte, size)
		_, err := Decrypt(blob, password)
		if !errors.Is(err, ErrAuthFailed) {
			t.Fatalf("size %d: expected ErrAuthFailed, got %v", size, err)
		}
	}
}

func TestDeriveKeyDeterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := bytes.Repeat([]byte{0x42}, SaltSize)

	key1, err := DeriveKey(password, salt)
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}
	key2, err := DeriveKey(password, salt)
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}

	if !bytes.Equal(key1, key2) {
		t.Error("same inputs produced different keys")
	}
	if len(key1) != KeySize {
		t.Errorf("key length = %d, want %d", len(key1), KeySize)
	}
}

func TestDeriveKeyValidation(t *testing.T) {
	salt := bytes.Repeat([]byte{0x42}, SaltSize)

	if _, err := DeriveKey(nil, salt); !errors.Is(err, ErrKeyDerivation) {
		t.Errorf("empty password: expected ErrKeyDerivation, got %v", err)
	}
	if _, err := DeriveKey([]byte("pw"), salt[:8]); !errors.Is(err, ErrKeyDerivation) {
		t.Errorf("short salt: expected ErrKeyDerivation, got %v", err)
	}
	if _, err := DeriveKey([]byte("pw"), append(salt, 0x00)); !errors.Is(err, ErrKeyDerivation) {
		t.Errorf("long salt: expected ErrKeyDerivation, got %v", err)
	}
}

func TestClearBytes(t *testing.T) {
	b := []byte("sensitive")
	ClearBytes(b)
	for i, v := range b {
		if v != 0 {
			t.Fatalf("byte %d not cleared", i)
		}
	}
}

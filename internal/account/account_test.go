package account

import (
	"errors"
	"strings"
	"testing"
)

func TestNewAccount(t *testing.T) {
	acc, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if !strings.HasPrefix(acc.Address, "0x") {
		t.Errorf("address missing 0x prefix: %s", acc.Address)
	}
	if len(acc.Address) != 42 {
		t.Errorf("address length = %d, want 42", len(acc.Address))
	}
	if len(acc.PrivateKey()) != 64 {
		t.Errorf("private key hex length = %d, want 64", len(acc.PrivateKey()))
	}
}

func TestFromPrivateKeyRoundTrip(t *testing.T) {
	acc, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	restored, err := FromPrivateKey(acc.PrivateKey())
	if err != nil {
		t.Fatalf("FromPrivateKey failed: %v", err)
	}

	if restored.Address != acc.Address {
		t.Errorf("restored address %s, want %s", restored.Address, acc.Address)
	}
	if restored.PrivateKey() != acc.PrivateKey() {
		t.Error("restored key differs from original")
	}
}

func TestFromPrivateKeyInvalid(t *testing.T) {
	cases := []string{"", "zz", "abcd", strings.Repeat("ab", 33)}
	for _, c := range cases {
		if _, err := FromPrivateKey(c); !errors.Is(err, ErrInvalidPrivateKey) {
			t.Errorf("FromPrivateKey(%q): expected ErrInvalidPrivateKey, got %v", c, err)
		}
	}
}

func TestCreateFactory(t *testing.T) {
	// Empty key means a fresh random account
	fresh, err := Create("")
	if err != nil {
		t.Fatalf("Create(\"\") failed: %v", err)
	}

	// Non-empty key restores the same account
	restored, err := Create(fresh.PrivateKey())
	if err != nil {
		t.Fatalf("Create(key) failed: %v", err)
	}
	if restored.Address != fresh.Address {
		t.Errorf("factory restore mismatch: %s != %s", restored.Address, fresh.Address)
	}
}

func TestSignVerify(t *testing.T) {
	acc, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	challenge := []byte("challenge-payload-1234")

	sig, err := acc.Sign(challenge)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if sig == "" {
		t.Fatal("empty signature")
	}

	if !acc.Verify(challenge, sig) {
		t.Error("signature did not verify")
	}
	if acc.Verify([]byte("different payload"), sig) {
		t.Error("signature verified against wrong payload")
	}

	other, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if other.Verify(challenge, sig) {
		t.Error("signature verified under wrong key")
	}
}

func TestNormalizeAddress(t *testing.T) {
	if NormalizeAddress("0xABcD12") != "0xabcd12" {
		t.Error("NormalizeAddress did not lower-case")
	}
}

package vault

import (
	"errors"
	"fmt"
	"testing"

	"github.com/illarion/walletvault/internal/session"
)

type settings struct {
	Network string   `json:"network"`
	Peers   []string `json:"peers"`
}

func newTestVault(t *testing.T, password string) *Vault {
	t.Helper()
	sess := session.New()
	v := New(t.TempDir(), sess)
	t.Cleanup(func() { v.Close() })

	if err := v.Init([]byte(password)); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return v
}

func TestOpenWithoutPassword(t *testing.T) {
	v := newTestVault(t, "correct-horse")
	v.Session().Clear()

	_, err := Open(v, "settings", settings{}, JSONCodec[settings]{})
	if !errors.Is(err, session.ErrNoPassword) {
		t.Fatalf("expected ErrNoPassword, got %v", err)
	}
}

func TestOpenMissingSlotUsesDefault(t *testing.T) {
	v := newTestVault(t, "correct-horse")

	def := settings{Network: "mainnet"}
	s, err := Open(v, "settings", def, JSONCodec[settings]{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if s.State() != StateReady {
		t.Errorf("state = %v, want ready", s.State())
	}
	if s.Value().Network != "mainnet" {
		t.Errorf("value = %+v, want default", s.Value())
	}
}

func TestUpdatePersistsAndReloads(t *testing.T) {
	v := newTestVault(t, "correct-horse")

	s, err := Open(v, "settings", settings{}, JSONCodec[settings]{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	err = s.Update(func(value *settings) error {
		value.Network = "testnet"
		value.Peers = append(value.Peers, "peer-1")
		return nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	// A second store over the same slot must see the exact committed value
	s2, err := Open(v, "settings", settings{}, JSONCodec[settings]{})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	got := s2.Value()
	if got.Network != "testnet" || len(got.Peers) != 1 || got.Peers[0] != "peer-1" {
		t.Errorf("reloaded value = %+v", got)
	}
}

// countingCodec counts encode calls to verify exactly one write-back per
// discrete mutation.
type countingCodec struct {
	JSONCodec[settings]
	encodes int
}

func (c *countingCodec) Encode(value settings) ([]byte, error) {
	c.encodes++
	return c.JSONCodec.Encode(value)
}

func TestUpdateEncodesExactlyOnce(t *testing.T) {
	v := newTestVault(t, "correct-horse")

	codec := &countingCodec{}
	s, err := Open(v, "settings", settings{}, codec)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		err := s.Update(func(value *settings) error {
			value.Peers = append(value.Peers, fmt.Sprintf("peer-%d", i))
			return nil
		})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}

	if codec.encodes != 3 {
		t.Errorf("encode count = %d, want 3 (one per mutation)", codec.encodes)
	}
}

func TestUpdateMutateErrorSkipsPersist(t *testing.T) {
	v := newTestVault(t, "correct-horse")

	codec := &countingCodec{}
	s, err := Open(v, "settings", settings{}, codec)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	wantErr := errors.New("mutation rejected")
	err = s.Update(func(value *settings) error {
		value.Network = "half-written"
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Update error = %v, want %v", err, wantErr)
	}
	if codec.encodes != 0 {
		t.Errorf("encode count = %d, want 0", codec.encodes)
	}
}

func TestOpenWrongPasswordFallsBack(t *testing.T) {
	v := newTestVault(t, "correct-horse")

	s, err := Open(v, "settings", settings{}, JSONCodec[settings]{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.Update(func(value *settings) error {
		value.Network = "testnet"
		return nil
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	// Wrong password: the store must fall back to the default and record
	// the failure instead of returning an error
	v.Session().SetPassword([]byte("wrong-password"))

	def := settings{Network: "mainnet"}
	s2, err := Open(v, "settings", def, JSONCodec[settings]{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if s2.State() != StateLoadFailed {
		t.Errorf("state = %v, want load failed", s2.State())
	}
	if s2.LoadErr() == nil {
		t.Error("expected a recorded load error")
	}
	if s2.Value().Network != "mainnet" {
		t.Errorf("value = %+v, want default", s2.Value())
	}
}

func TestVerifyPassword(t *testing.T) {
	v := newTestVault(t, "correct-horse")

	if err := v.VerifyPassword([]byte("correct-horse")); err != nil {
		t.Errorf("VerifyPassword failed for correct password: %v", err)
	}
	if err := v.VerifyPassword([]byte("wrong")); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("expected ErrWrongPassword, got %v", err)
	}
}

func TestInitAlreadyExists(t *testing.T) {
	sess := session.New()
	dir := t.TempDir()
	v := New(dir, sess)
	defer v.Close()

	if err := v.Init([]byte("pw")); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	v.Close()

	v2 := New(dir, session.New())
	defer v2.Close()
	if err := v2.Init([]byte("pw")); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	v := newTestVault(t, "old-password")

	s, err := Open(v, "settings", settings{}, JSONCodec[settings]{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.Update(func(value *settings) error {
		value.Network = "testnet"
		return nil
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if err := v.ChangePassword([]byte("old-password"), []byte("new-password")); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}

	// Old password no longer verifies, new one does, data survives
	if err := v.VerifyPassword([]byte("old-password")); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("old password still accepted: %v", err)
	}
	if err := v.VerifyPassword([]byte("new-password")); err != nil {
		t.Errorf("new password rejected: %v", err)
	}

	v.Session().SetPassword([]byte("new-password"))
	s2, err := Open(v, "settings", settings{}, JSONCodec[settings]{})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if s2.State() != StateReady || s2.Value().Network != "testnet" {
		t.Errorf("state=%v value=%+v after password change", s2.State(), s2.Value())
	}
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	v := newTestVault(t, "old-password")

	err := v.ChangePassword([]byte("not-the-password"), []byte("new-password"))
	if !errors.Is(err, ErrWrongPassword) {
		t.Errorf("expected ErrWrongPassword, got %v", err)
	}
}

func TestStatus(t *testing.T) {
	v := newTestVault(t, "correct-horse")

	s, err := Open(v, "eth-accounts", settings{}, JSONCodec[settings]{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.Persist(); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	info, err := v.Status()
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if info.FormatVersion != 2 {
		t.Errorf("format version = %d, want 2", info.FormatVersion)
	}
	if len(info.Slots) != 1 || info.Slots[0] != "eth-accounts" {
		t.Errorf("slots = %v, want [eth-accounts]", info.Slots)
	}
}

func TestDiffText(t *testing.T) {
	diff, changed := DiffText("a\nb\nc\n", "a\nb\nc\n")
	if changed || diff != "" {
		t.Errorf("expected no change, got %q", diff)
	}

	diff, changed = DiffText("a\nb\nc\n", "a\nx\nc\n")
	if !changed {
		t.Fatal("expected change")
	}
	if diff == "" {
		t.Fatal("empty diff for changed content")
	}
}

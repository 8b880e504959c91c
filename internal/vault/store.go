package vault

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/illarion/walletvault/internal/crypto"
	"github.com/illarion/walletvault/internal/storage"
)

// Codec converts between a store's in-memory value and its plaintext
// serialized form. Callers supply domain-specific codecs, e.g. the account
// registry persists only a private-key list instead of full account objects.
type Codec[T any] interface {
	Encode(value T) ([]byte, error)
	Decode(data []byte) (T, error)
}

// JSONCodec is the default codec, serializing the value as JSON
type JSONCodec[T any] struct{}

func (JSONCodec[T]) Encode(value T) ([]byte, error) {
	return json.Marshal(value)
}

func (JSONCodec[T]) Decode(data []byte) (T, error) {
	var value T
	err := json.Unmarshal(data, &value)
	return value, err
}

// State tracks a store's position in its load/write lifecycle
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateLoadFailed  // existing blob could not be decrypted or decoded
	StateWriteFailed // last write-back failed, in-memory value still valid
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateLoadFailed:
		return "load failed"
	case StateWriteFailed:
		return "write failed"
	default:
		return "unknown"
	}
}

// Store binds an in-memory value to a named encrypted slot. The value is
// the single source of truth while open; every Update re-encrypts and writes
// it back before returning.
type Store[T any] struct {
	vault *Vault
	name  string
	codec Codec[T]

	value    T
	state    State
	loadErr  error
	writeErr error
}

// Open loads a store from its slot. If the session has no password it fails
// with session.ErrNoPassword before any I/O. If no slot exists the store
// starts from defaultValue. If the slot exists but cannot be decrypted or
// decoded (wrong password, corruption), the store falls back to defaultValue
// and records the failure in LoadErr. The caller surfaces it to the user,
// nothing crashes.
func Open[T any](v *Vault, name string, defaultValue T, codec Codec[T]) (*Store[T], error) {
	password, err := v.session.Password()
	if err != nil {
		return nil, err
	}

	if err := v.Open(); err != nil {
		return nil, err
	}

	s := &Store[T]{
		vault: v,
		name:  name,
		codec: codec,
		state: StateLoading,
	}

	blob, err := v.db.GetSlot(name)
	switch {
	case errors.Is(err, storage.ErrSlotNotFound):
		s.value = defaultValue
		s.state = StateReady
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read slot %s: %w", name, err)
	}

	plaintext, err := crypto.Decrypt(blob, password)
	if err != nil {
		s.value = defaultValue
		s.state = StateLoadFailed
		s.loadErr = fmt.Errorf("failed to decrypt slot %s: %w", name, err)
		return s, nil
	}

	value, err := codec.Decode(plaintext)
	if err != nil {
		s.value = defaultValue
		s.state = StateLoadFailed
		s.loadErr = fmt.Errorf("failed to decode slot %s: %w", name, err)
		return s, nil
	}

	s.value = value
	s.state = StateReady
	return s, nil
}

// Name returns the slot name this store is bound to
func (s *Store[T]) Name() string {
	return s.name
}

// Value returns the current in-memory value
func (s *Store[T]) Value() T {
	return s.value
}

// State returns the store's lifecycle state
func (s *Store[T]) State() State {
	return s.state
}

// LoadErr returns the recorded hydration failure, if any. A store with a
// LoadErr serves its default value; writing to it overwrites the old blob.
func (s *Store[T]) LoadErr() error {
	return s.loadErr
}

// WriteErr returns the most recent write-back failure, if any
func (s *Store[T]) WriteErr() error {
	return s.writeErr
}

// Update applies mutate to the in-memory value, then runs exactly one
// encode+encrypt+write back to the slot. If mutate returns an error nothing
// is persisted. If the write-back fails the in-memory mutation is kept, the
// store enters StateWriteFailed and the error is returned for surfacing; the
// next successful Update clears it.
func (s *Store[T]) Update(mutate func(value *T) error) error {
	if err := mutate(&s.value); err != nil {
		return err
	}
	return s.persist()
}

// Persist re-encrypts and writes the current value without mutating it
func (s *Store[T]) Persist() error {
	return s.persist()
}

func (s *Store[T]) persist() error {
	plaintext, err := s.codec.Encode(s.value)
	if err != nil {
		s.state = StateWriteFailed
		s.writeErr = fmt.Errorf("failed to encode slot %s: %w", s.name, err)
		return s.writeErr
	}

	if err := s.vault.WriteSlot(s.name, plaintext); err != nil {
		s.state = StateWriteFailed
		s.writeErr = fmt.Errorf("failed to write slot %s: %w", s.name, err)
		return s.writeErr
	}

	s.state = StateReady
	s.writeErr = nil
	return nil
}

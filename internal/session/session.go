// Package session holds the vault password for the lifetime of a process.
//
// The password is set once by explicit user action (prompt, environment
// variable or OS keyring), read by every encrypt/decrypt call, and never
// persisted itself. Changing it does not re-encrypt existing slots; that is
// an explicit operation (vault.ChangePassword).
package session

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/illarion/walletvault/internal/crypto"
	"golang.org/x/term"
)

// EnvPassword is the environment variable checked before prompting
const EnvPassword = "WALLETVAULT_PASSWORD"

var ErrNoPassword = errors.New("no password set")

// Session is an explicit password cell passed to every store operation,
// instead of process-global state.
type Session struct {
	password []byte
}

// New creates an empty session with no password set
func New() *Session {
	return &Session{}
}

// SetPassword stores a copy of the password in the session
func (s *Session) SetPassword(password []byte) {
	s.Clear()
	s.password = append([]byte(nil), password...)
}

// Password returns the current password, or ErrNoPassword if none is set
func (s *Session) Password() ([]byte, error) {
	if len(s.password) == 0 {
		return nil, ErrNoPassword
	}
	return s.password, nil
}

// HasPassword reports whether a password is set
func (s *Session) HasPassword() bool {
	return len(s.password) > 0
}

// Clear wipes the password from memory, ending the session
func (s *Session) Clear() {
	crypto.ClearBytes(s.password)
	s.password = nil
}

// ReadPassword reads a password from the terminal without echoing
func ReadPassword(prompt string) ([]byte, error) {
	fmt.Print(prompt)

	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // New line after password

	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	return password, nil
}

// ReadPasswordConfirm reads a password twice and ensures they match
func ReadPasswordConfirm() ([]byte, error) {
	password1, err := ReadPassword("Enter password: ")
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(password1)

	password2, err := ReadPassword("Confirm password: ")
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(password2)

	if !crypto.ConstantTimeCompare(password1, password2) {
		return nil, fmt.Errorf("passwords do not match")
	}

	result := make([]byte, len(password1))
	copy(result, password1)
	return result, nil
}

// PasswordFromEnv reads the password from the WALLETVAULT_PASSWORD
// environment variable, or nil if unset
func PasswordFromEnv() []byte {
	password := os.Getenv(EnvPassword)
	if password == "" {
		return nil
	}
	// Return a copy to avoid issues when clearing the bytes
	result := make([]byte, len(password))
	copy(result, []byte(password))
	return result
}

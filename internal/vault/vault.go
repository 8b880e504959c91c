package vault

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/illarion/walletvault/internal/crypto"
	"github.com/illarion/walletvault/internal/session"
	"github.com/illarion/walletvault/internal/storage"
)

const (
	VaultFile      = ".walletvault"
	FilePermSecure = 0600 // File: owner rw only

	checkSlot           = "password-check"
	passwordCheckString = "walletvault-password-check"
)

var (
	ErrNotInitialized = errors.New("vault not initialized")
	ErrAlreadyExists  = errors.New("vault already exists")
	ErrWrongPassword  = errors.New("wrong password")
)

// Vault manages encrypted slot storage bound to a session password
type Vault struct {
	path    string
	db      *storage.Storage
	session *session.Session
}

// New creates a Vault instance rooted at the given directory. The database
// is not opened until Open or Init is called.
func New(dir string, sess *session.Session) *Vault {
	return &Vault{
		path:    filepath.Join(dir, VaultFile),
		session: sess,
	}
}

// Path returns the vault database file path
func (v *Vault) Path() string {
	return v.path
}

// Session returns the password session this vault reads from
func (v *Vault) Session() *session.Session {
	return v.session
}

// Close releases the underlying database
func (v *Vault) Close() error {
	if v.db != nil {
		err := v.db.Close()
		v.db = nil
		return err
	}
	return nil
}

// Init creates a new vault encrypted under the given password
func (v *Vault) Init(password []byte) error {
	if _, err := os.Stat(v.path); err == nil {
		return ErrAlreadyExists
	}

	db, err := storage.Open(v.path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	v.db = db

	if err := db.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// Encrypted well-known plaintext, used to verify the password without
	// touching any real slot
	check, err := crypto.Encrypt([]byte(passwordCheckString), password)
	if err != nil {
		return fmt.Errorf("failed to encrypt password check: %w", err)
	}
	if err := db.PutSlot(checkSlot, check); err != nil {
		return fmt.Errorf("failed to store password check: %w", err)
	}

	v.session.SetPassword(password)
	return nil
}

// Open opens an existing vault database
func (v *Vault) Open() error {
	if v.db != nil {
		return nil
	}
	if _, err := os.Stat(v.path); err != nil {
		return ErrNotInitialized
	}

	db, err := storage.Open(v.path)
	if err != nil {
		return ErrNotInitialized
	}
	v.db = db
	return nil
}

// VerifyPassword checks the given password against the vault's check slot
func (v *Vault) VerifyPassword(password []byte) error {
	if err := v.Open(); err != nil {
		return err
	}

	check, err := v.db.GetSlot(checkSlot)
	if err != nil {
		return ErrNotInitialized
	}

	plaintext, err := crypto.Decrypt(check, password)
	if err != nil {
		return ErrWrongPassword
	}
	if !crypto.ConstantTimeCompare(plaintext, []byte(passwordCheckString)) {
		return ErrWrongPassword
	}
	return nil
}

// ReadSlot decrypts a slot with the session password and returns the
// plaintext. The caller owns the returned bytes.
func (v *Vault) ReadSlot(name string) ([]byte, error) {
	password, err := v.session.Password()
	if err != nil {
		return nil, err
	}
	if err := v.Open(); err != nil {
		return nil, err
	}

	blob, err := v.db.GetSlot(name)
	if err != nil {
		return nil, err
	}
	return crypto.Decrypt(blob, password)
}

// WriteSlot encrypts plaintext with the session password and persists it
func (v *Vault) WriteSlot(name string, plaintext []byte) error {
	password, err := v.session.Password()
	if err != nil {
		return err
	}
	if err := v.Open(); err != nil {
		return err
	}

	blob, err := crypto.Encrypt(plaintext, password)
	if err != nil {
		return fmt.Errorf("failed to encrypt slot %s: %w", name, err)
	}
	return v.db.PutSlot(name, blob)
}

// ChangePassword re-encrypts every slot under a new password. This is the
// only operation that migrates existing blobs; merely setting a new session
// password never re-encrypts anything.
func (v *Vault) ChangePassword(currentPassword, newPassword []byte) error {
	if err := v.VerifyPassword(currentPassword); err != nil {
		return err
	}

	names, err := v.db.ListSlots()
	if err != nil {
		return fmt.Errorf("failed to list slots: %w", err)
	}

	type slotData struct {
		name string
		data []byte
	}
	var slots []slotData
	// Ensure all decrypted slot data is cleared from memory on all exit paths
	defer func() {
		for i := range slots {
			crypto.ClearBytes(slots[i].data)
		}
	}()

	// Decrypt everything first so a wrong blob aborts before any rewrite
	for _, name := range names {
		blob, err := v.db.GetSlot(name)
		if err != nil {
			return fmt.Errorf("failed to read slot %s: %w", name, err)
		}
		data, err := crypto.Decrypt(blob, currentPassword)
		if err != nil {
			return fmt.Errorf("failed to decrypt slot %s: %w", name, err)
		}
		slots = append(slots, slotData{name: name, data: data})
	}

	for _, slot := range slots {
		blob, err := crypto.Encrypt(slot.data, newPassword)
		if err != nil {
			return fmt.Errorf("failed to re-encrypt slot %s: %w", slot.name, err)
		}
		if err := v.db.PutSlot(slot.name, blob); err != nil {
			return fmt.Errorf("failed to store re-encrypted slot %s: %w", slot.name, err)
		}
	}

	v.session.SetPassword(newPassword)
	return nil
}

// StatusInfo describes vault state visible without a password
type StatusInfo struct {
	FormatVersion int
	Modified      time.Time
	Slots         []string
}

// Status reports vault state. No password required.
func (v *Vault) Status() (*StatusInfo, error) {
	if err := v.Open(); err != nil {
		return nil, err
	}

	version, err := v.db.GetFormatVersion()
	if err != nil {
		return nil, err
	}
	modified, err := v.db.GetModified()
	if err != nil {
		return nil, err
	}
	names, err := v.db.ListSlots()
	if err != nil {
		return nil, err
	}

	// The password check slot is an implementation detail
	slots := names[:0:0]
	for _, name := range names {
		if name != checkSlot {
			slots = append(slots, name)
		}
	}

	return &StatusInfo{
		FormatVersion: version,
		Modified:      modified,
		Slots:         slots,
	}, nil
}

// VaultID retrieves the vault ID from storage
func (v *Vault) VaultID() (string, error) {
	if err := v.Open(); err != nil {
		return "", err
	}
	return v.db.GetVaultID()
}

// GetOrCreateVaultID retrieves the existing vault ID or generates a new one
func (v *Vault) GetOrCreateVaultID() (string, error) {
	if err := v.Open(); err != nil {
		return "", err
	}
	return v.db.GetOrCreateVaultID()
}

// Compact compacts the database to reclaim unused space
func (v *Vault) Compact() error {
	if err := v.Open(); err != nil {
		return err
	}
	return v.db.Compact()
}

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/illarion/walletvault/internal/account"
	"github.com/illarion/walletvault/internal/channel"
	"github.com/illarion/walletvault/internal/crypto"
	"github.com/illarion/walletvault/internal/keyring"
	"github.com/illarion/walletvault/internal/registry"
	"github.com/illarion/walletvault/internal/session"
	"github.com/illarion/walletvault/internal/vault"
)

// OpenVault creates a Vault over the current directory with a fresh session
func OpenVault() *vault.Vault {
	return vault.New(".", session.New())
}

// UnlockVault resolves the password (environment variable, OS keyring, then
// prompt), verifies it against the vault and stores it in the session.
func UnlockVault(v *vault.Vault) {
	// Environment variable first
	if password := session.PasswordFromEnv(); password != nil {
		defer crypto.ClearBytes(password)
		if err := v.VerifyPassword(password); err != nil {
			HandleError(err)
		}
		v.Session().SetPassword(password)
		return
	}

	// OS keyring, keyed by vault ID
	if vaultID, err := v.VaultID(); err == nil {
		if stored, err := keyring.GetPassword(vaultID); err == nil {
			password := []byte(stored)
			if v.VerifyPassword(password) == nil {
				v.Session().SetPassword(password)
				crypto.ClearBytes(password)
				return
			}
			// Stale keyring entry, fall through to the prompt
			crypto.ClearBytes(password)
		}
	}

	password, err := session.ReadPassword("Enter password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer crypto.ClearBytes(password)

	if err := v.VerifyPassword(password); err != nil {
		HandleError(err)
	}
	v.Session().SetPassword(password)
}

// GetPasswordForInit retrieves the password for the init command: the
// environment variable if set, otherwise a prompt with confirmation
func GetPasswordForInit() ([]byte, error) {
	if password := session.PasswordFromEnv(); password != nil {
		return password, nil
	}
	return session.ReadPasswordConfirm()
}

// OpenRegistry opens the account registry over the given channel, surfacing
// any hydration failure as a warning
func OpenRegistry(v *vault.Vault, ch channel.Channel) *registry.Registry {
	r, err := registry.Open(v, registry.DefaultStoreName, account.Create, ch, nil)
	if err != nil {
		HandleError(err)
	}
	SurfaceStoreErrors(r)
	return r
}

// SurfaceStoreErrors prints recorded load failures without aborting; a store
// that failed to decode serves defaults and the user needs to know why
func SurfaceStoreErrors(r *registry.Registry) {
	if err := r.LoadErr(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not decrypt stored accounts, starting from an empty list\n")
		fmt.Fprintf(os.Stderr, "         (%s)\n", err)
	}
}

// HandleError handles common errors consistently
func HandleError(err error) {
	switch {
	case errors.Is(err, vault.ErrNotInitialized):
		fmt.Fprintf(os.Stderr, "Error: no vault in this directory\n")
		fmt.Fprintf(os.Stderr, "Run 'walletvault init' to create one\n")
	case errors.Is(err, vault.ErrWrongPassword):
		fmt.Fprintf(os.Stderr, "Error: wrong password\n")
	case errors.Is(err, session.ErrNoPassword):
		fmt.Fprintf(os.Stderr, "Error: no password set for this session\n")
	case errors.Is(err, registry.ErrAddressNotFound):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	os.Exit(1)
}

func formatSize(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(size)/(1<<10))
	default:
		return fmt.Sprintf("%d B", size)
	}
}

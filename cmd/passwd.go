package cmd

import (
	"fmt"
	"os"

	"github.com/illarion/walletvault/internal/crypto"
	"github.com/illarion/walletvault/internal/keyring"
	"github.com/illarion/walletvault/internal/session"
)

// Passwd changes the vault password, re-encrypting every slot. This is the
// only operation that migrates existing blobs to a new password.
func Passwd() {
	v := OpenVault()
	defer v.Close()

	// Get vault ID for keyring lookup
	vaultID, _ := v.VaultID()

	currentPassword, err := session.ReadPassword("Enter current password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer crypto.ClearBytes(currentPassword)

	newPassword, err := session.ReadPasswordConfirm()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer crypto.ClearBytes(newPassword)

	if err := v.ChangePassword(currentPassword, newPassword); err != nil {
		HandleError(err)
	}

	// Keep the keyring entry in step with the new password
	if vaultID != "" {
		if err := keyring.SavePassword(vaultID, string(newPassword)); err == nil {
			fmt.Println("Keyring updated with new password")
		}
	}

	// Compact database after rewriting all slots
	if err := v.Compact(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: compaction failed: %s\n", err)
	}

	fmt.Println("password changed successfully")
}

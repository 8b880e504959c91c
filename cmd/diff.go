package cmd

import (
	"fmt"
	"os"

	"github.com/illarion/walletvault/internal/crypto"
	"github.com/illarion/walletvault/internal/registry"
	"github.com/illarion/walletvault/internal/vault"
)

// Diff compares a store's current decrypted content against an exported
// snapshot file
func Diff(name, snapshotPath string) {
	if snapshotPath == "" {
		fmt.Fprintf(os.Stderr, "Error: diff requires a snapshot file\n")
		fmt.Fprintf(os.Stderr, "Usage: walletvault diff -snapshot <file> [store]\n")
		os.Exit(1)
	}
	if name == "" {
		name = registry.DefaultStoreName
	}

	snapshot, err := os.ReadFile(snapshotPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot read snapshot: %s\n", err)
		os.Exit(1)
	}

	v := OpenVault()
	defer v.Close()
	UnlockVault(v)

	plaintext, err := v.ReadSlot(name)
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(plaintext)

	diff, changed := vault.DiffText(string(snapshot), string(formatSnapshot(plaintext)))
	if !changed {
		fmt.Printf("%s matches the snapshot\n", name)
		return
	}

	fmt.Print(diff)
	os.Exit(1)
}

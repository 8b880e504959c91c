package cmd

import (
	"fmt"
	"os"

	"github.com/illarion/walletvault/internal/channel"
)

// Remove removes an account from the vault
func Remove(addresses []string) {
	if len(addresses) == 0 {
		fmt.Fprintf(os.Stderr, "Error: rm requires at least one address argument\n")
		fmt.Fprintf(os.Stderr, "Usage: walletvault rm <address> [address...]\n")
		os.Exit(1)
	}

	v := OpenVault()
	defer v.Close()

	UnlockVault(v)
	r := OpenRegistry(v, channel.Discard{})

	for _, address := range addresses {
		if err := r.RemoveAddress(address); err != nil {
			HandleError(err)
		}
		fmt.Printf("✓ Removed %s\n", address)
	}

	// Compact database to reclaim space
	if err := v.Compact(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: compaction failed: %s\n", err)
	}
}

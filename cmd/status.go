package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/illarion/walletvault/internal/vault"
)

// Status shows the current state of the vault
func Status() {
	v := OpenVault()
	defer v.Close()

	if _, err := os.Stat(vault.VaultFile); err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No .walletvault file found in current directory")
			fmt.Println("Run 'walletvault init' to create one")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		return
	}

	// No password required
	status, err := v.Status()
	if err != nil {
		HandleError(err)
	}

	fmt.Println("Stores:")
	if len(status.Slots) == 0 {
		fmt.Println("  (none)")
	} else {
		for _, name := range status.Slots {
			fmt.Printf("  %s\n", name)
		}
	}

	fmt.Printf("\n.walletvault: format v%d (last modified: %s)\n",
		status.FormatVersion, status.Modified.Format(time.RFC3339))
}

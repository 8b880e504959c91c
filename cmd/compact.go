package cmd

import (
	"fmt"
	"os"

	"github.com/illarion/walletvault/internal/vault"
)

// Compact compacts the .walletvault database to reclaim unused space
func Compact() {
	v := OpenVault()
	defer v.Close()

	// Get file size before
	info, err := os.Stat(vault.VaultFile)
	if err != nil {
		HandleError(err)
	}
	sizeBefore := info.Size()

	if err := v.Compact(); err != nil {
		HandleError(err)
	}

	info, err = os.Stat(vault.VaultFile)
	if err != nil {
		HandleError(err)
	}
	sizeAfter := info.Size()

	fmt.Printf("Compacted: %s -> %s\n", formatSize(sizeBefore), formatSize(sizeAfter))
}

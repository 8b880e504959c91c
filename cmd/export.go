package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/illarion/walletvault/internal/crypto"
	"github.com/illarion/walletvault/internal/registry"
)

// Export decrypts a store slot and writes its plaintext JSON snapshot. The
// snapshot contains secrets (private keys), so the output file is created
// owner-readable only.
func Export(name, outPath string) {
	if name == "" {
		name = registry.DefaultStoreName
	}

	v := OpenVault()
	defer v.Close()
	UnlockVault(v)

	plaintext, err := v.ReadSlot(name)
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(plaintext)

	snapshot := formatSnapshot(plaintext)

	if outPath == "" {
		fmt.Print(string(snapshot))
		return
	}

	if err := os.WriteFile(outPath, snapshot, 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to write snapshot: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Exported %s to %s\n", name, outPath)
}

// formatSnapshot pretty-prints JSON plaintext for stable line diffs, and
// passes non-JSON content through untouched
func formatSnapshot(plaintext []byte) []byte {
	var buf bytes.Buffer
	if err := json.Indent(&buf, plaintext, "", "  "); err != nil {
		return append([]byte(nil), plaintext...)
	}
	buf.WriteString("\n")
	return buf.Bytes()
}

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/illarion/walletvault/internal/crypto"
	"github.com/illarion/walletvault/internal/vault"
)

// Init creates a new .walletvault file
func Init() {
	v := OpenVault()
	defer v.Close()

	// Read password (env var or prompt with confirmation)
	password, err := GetPasswordForInit()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer crypto.ClearBytes(password)

	if err := v.Init(password); err != nil {
		if errors.Is(err, vault.ErrAlreadyExists) {
			fmt.Fprintf(os.Stderr, "Error: .walletvault already exists in this directory\n")
			fmt.Fprintf(os.Stderr, "Use 'walletvault status' to see current state\n")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}

	fmt.Println("✓ Initialized .walletvault")
}

package cmd

import (
	"fmt"

	"github.com/illarion/walletvault/internal/channel"
)

// Create adds a new account with a freshly generated key
func Create() {
	v := OpenVault()
	defer v.Close()

	UnlockVault(v)
	r := OpenRegistry(v, channel.Discard{})

	acc, err := r.CreateAddress()
	if err != nil {
		// The account exists in memory but the write-back failed; without
		// a persisted key it would be lost, so treat this as fatal
		HandleError(err)
	}

	fmt.Printf("✓ Created %s\n", acc.Address)
	fmt.Println("Run 'walletvault sync' to authorize it with the peer")
}

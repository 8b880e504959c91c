package cmd

import (
	"fmt"

	"github.com/illarion/walletvault/internal/account"
	"github.com/illarion/walletvault/internal/channel"
)

// Ls shows accounts stored in .walletvault
func Ls() {
	v := OpenVault()
	defer v.Close()

	UnlockVault(v)
	r := OpenRegistry(v, channel.Discard{})

	accounts := r.Accounts()
	if len(accounts) == 0 {
		fmt.Println("No accounts in .walletvault")
		return
	}

	fmt.Println("Accounts in .walletvault:")
	for _, acc := range accounts {
		status := "untracked"
		if s, ok := r.Status(account.NormalizeAddress(acc.Address)); ok {
			status = string(s)
		}
		fmt.Printf("  %s (%s)\n", acc.Address, status)
	}
}

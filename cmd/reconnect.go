package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/illarion/walletvault/internal/account"
	"github.com/illarion/walletvault/internal/channel"
)

// Reconnect connects to the peer, re-announces addresses and reports the
// authorization outcome. With no addresses every known one is re-announced.
func Reconnect(ctx context.Context, peerURL string, addresses []string, wait time.Duration) {
	if peerURL == "" {
		fmt.Fprintf(os.Stderr, "Error: reconnect requires a peer URL\n")
		fmt.Fprintf(os.Stderr, "Usage: walletvault reconnect -peer ws://host:port/registry [address...]\n")
		os.Exit(1)
	}

	v := OpenVault()
	defer v.Close()
	UnlockVault(v)

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ch := channel.NewWebSocket(peerURL, log)
	defer ch.Close()

	r := OpenRegistry(v, ch)

	if err := ch.Connect(ctx); err != nil {
		HandleError(err)
	}

	// The connect event already re-announced everything; narrow the set if
	// specific addresses were requested
	for _, address := range addresses {
		if err := r.ReconnectAddress(address); err != nil {
			HandleError(err)
		}
	}

	// Give the peer a moment to run its challenges
	select {
	case <-ctx.Done():
	case <-time.After(wait):
	}

	show := addresses
	if len(show) == 0 {
		for _, acc := range r.Accounts() {
			show = append(show, acc.Address)
		}
	}
	for _, address := range show {
		status := "untracked"
		if s, ok := r.Status(account.NormalizeAddress(address)); ok {
			status = string(s)
		}
		fmt.Printf("  %s (%s)\n", address, status)
	}
}

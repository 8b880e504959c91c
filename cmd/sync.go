package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/illarion/walletvault/internal/channel"
)

const reconnectBackoff = 5 * time.Second

// Sync connects to the registry peer and runs the liveness handshake until
// the context is cancelled, reconnecting with a fixed backoff.
func Sync(ctx context.Context, peerURL string) {
	if peerURL == "" {
		fmt.Fprintf(os.Stderr, "Error: sync requires a peer URL\n")
		fmt.Fprintf(os.Stderr, "Usage: walletvault sync -peer ws://host:port/registry\n")
		os.Exit(1)
	}

	v := OpenVault()
	defer v.Close()
	UnlockVault(v)

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ch := channel.NewWebSocket(peerURL, log)
	defer ch.Close()

	disconnected := make(chan struct{}, 1)
	ch.On(channel.EventDisconnect, func(json.RawMessage) {
		select {
		case disconnected <- struct{}{}:
		default:
		}
	})

	// The registry binds its handlers before the first connect, so every
	// connect event re-announces the hydrated account set
	OpenRegistry(v, ch)

	for {
		if err := ch.Connect(ctx); err != nil {
			log.Warn("connect failed, retrying", "peer", peerURL, "backoff", reconnectBackoff)
		} else {
			select {
			case <-ctx.Done():
				return
			case <-disconnected:
				log.Info("peer connection lost, reconnecting", "backoff", reconnectBackoff)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectBackoff):
		}
	}
}

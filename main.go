package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/illarion/walletvault/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		runInit(ctx, os.Args[2:])
	case "create":
		runCreate(ctx, os.Args[2:])
	case "ls":
		runLs(ctx, os.Args[2:])
	case "rm":
		runRm(ctx, os.Args[2:])
	case "reconnect":
		runReconnect(ctx, os.Args[2:])
	case "sync":
		runSync(ctx, os.Args[2:])
	case "status":
		runStatus(ctx, os.Args[2:])
	case "passwd":
		runPasswd(ctx, os.Args[2:])
	case "diff":
		runDiff(ctx, os.Args[2:])
	case "export":
		runExport(ctx, os.Args[2:])
	case "compact":
		runCompact(ctx, os.Args[2:])
	case "keyring":
		runKeyring(ctx, os.Args[2:])
	case "completion":
		runCompletion(ctx, os.Args[2:])
	case "help", "-h", "--help":
		if len(os.Args) <= 2 {
			printUsage()
			return
		}
		printCommandHelp(os.Args[2])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runInit(_ context.Context, args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Init()
}

func runCreate(_ context.Context, args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Create()
}

func runLs(_ context.Context, args []string) {
	fs := flag.NewFlagSet("ls", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Ls()
}

func runRm(_ context.Context, args []string) {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Remove(fs.Args())
}

func runReconnect(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("reconnect", flag.ExitOnError)
	peer := fs.String("peer", os.Getenv("WALLETVAULT_PEER"), "Peer websocket URL")
	wait := fs.Duration("wait", 3*time.Second, "How long to wait for authorization outcomes")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Reconnect(ctx, *peer, fs.Args(), *wait)
}

func runSync(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	peer := fs.String("peer", os.Getenv("WALLETVAULT_PEER"), "Peer websocket URL")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Sync(ctx, *peer)
}

func runStatus(_ context.Context, args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Status()
}

func runPasswd(_ context.Context, args []string) {
	fs := flag.NewFlagSet("passwd", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Passwd()
}

func runDiff(_ context.Context, args []string) {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	snapshot := fs.String("snapshot", "", "Snapshot file to compare against")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	name := ""
	if len(fs.Args()) > 0 {
		name = fs.Args()[0]
	}
	cmd.Diff(name, *snapshot)
}

func runExport(_ context.Context, args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("o", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	name := ""
	if len(fs.Args()) > 0 {
		name = fs.Args()[0]
	}
	cmd.Export(name, *out)
}

func runCompact(_ context.Context, args []string) {
	fs := flag.NewFlagSet("compact", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Compact()
}

func runKeyring(_ context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: walletvault keyring <save|rm|status>\n")
		os.Exit(1)
	}

	switch args[0] {
	case "save":
		cmd.KeyringSave()
	case "rm":
		cmd.KeyringDelete()
	case "status":
		cmd.KeyringStatus()
	default:
		fmt.Fprintf(os.Stderr, "Unknown keyring action: %s\n", args[0])
		fmt.Fprintf(os.Stderr, "Usage: walletvault keyring <save|rm|status>\n")
		os.Exit(1)
	}
}

func runCompletion(_ context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: walletvault completion <bash|zsh|fish>\n")
		os.Exit(1)
	}

	cmd.Completion(args[0])
}

func printUsage() {
	fmt.Println("walletvault - encrypted account vault with peer synchronization")
	fmt.Println()
	fmt.Println("Usage: walletvault <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  init        Create a new .walletvault in this directory")
	fmt.Println("  create      Create a new account with a fresh key")
	fmt.Println("  ls          List accounts and their status")
	fmt.Println("  rm          Remove accounts by address")
	fmt.Println("  reconnect   Re-announce addresses to the peer")
	fmt.Println("  sync        Keep the registry synchronized with the peer")
	fmt.Println("  status      Show vault status (no password required)")
	fmt.Println("  passwd      Change the vault password")
	fmt.Println("  diff        Diff a store against an exported snapshot")
	fmt.Println("  export      Export a decrypted store snapshot")
	fmt.Println("  compact     Compact the vault database")
	fmt.Println("  keyring     Manage the OS keyring password entry")
	fmt.Println("  completion  Output shell completion scripts")
	fmt.Println("  help        Show help for a command")
	fmt.Println()
	fmt.Println("Run 'walletvault help <command>' for details.")
}

func printCommandHelp(command string) {
	switch command {
	case "init":
		fmt.Println("walletvault init")
		fmt.Println()
		fmt.Println("Creates a new .walletvault database in the current directory.")
		fmt.Println("Prompts for a password (or reads WALLETVAULT_PASSWORD).")
	case "create":
		fmt.Println("walletvault create")
		fmt.Println()
		fmt.Println("Generates a new account key, derives its address and stores it")
		fmt.Println("encrypted in the vault. The address is announced to the peer on")
		fmt.Println("the next sync.")
	case "ls":
		fmt.Println("walletvault ls")
		fmt.Println()
		fmt.Println("Lists stored accounts with their authorization status.")
	case "rm":
		fmt.Println("walletvault rm <address> [address...]")
		fmt.Println()
		fmt.Println("Removes accounts from the vault. Address lookup is")
		fmt.Println("case-insensitive. The peer is notified on the next sync.")
	case "reconnect":
		fmt.Println("walletvault reconnect -peer <url> [address...]")
		fmt.Println()
		fmt.Println("Connects to the peer, re-announces the given addresses (all, if")
		fmt.Println("none given) and reports the authorization outcome.")
	case "sync":
		fmt.Println("walletvault sync -peer <url>")
		fmt.Println()
		fmt.Println("Connects to the registry peer and answers authorization")
		fmt.Println("challenges until interrupted. Reconnects automatically.")
		fmt.Println()
		fmt.Println("The peer URL can also be set via WALLETVAULT_PEER.")
	case "status":
		fmt.Println("walletvault status")
		fmt.Println()
		fmt.Println("Shows vault presence, format version and store names.")
		fmt.Println()
		fmt.Println("Does not require a password.")
	case "passwd":
		fmt.Println("walletvault passwd")
		fmt.Println()
		fmt.Println("Changes the vault password, re-encrypting every stored slot")
		fmt.Println("under the new one.")
	case "diff":
		fmt.Println("walletvault diff -snapshot <file> [store]")
		fmt.Println()
		fmt.Println("Compares the current decrypted content of a store (default:")
		fmt.Println("eth-accounts) against a snapshot produced by 'export'.")
		fmt.Println("Exits non-zero when they differ.")
	case "export":
		fmt.Println("walletvault export [-o file] [store]")
		fmt.Println()
		fmt.Println("Decrypts a store (default: eth-accounts) and writes its JSON")
		fmt.Println("snapshot. The snapshot contains private keys - handle with care.")
	case "compact":
		fmt.Println("walletvault compact")
		fmt.Println()
		fmt.Println("Compacts the .walletvault database to reclaim unused disk")
		fmt.Println("space. Runs automatically after 'rm' and 'passwd'.")
		fmt.Println()
		fmt.Println("Does not require a password.")
	case "keyring":
		fmt.Println("walletvault keyring <save|rm|status>")
		fmt.Println()
		fmt.Println("Stores, removes or checks the vault password in the OS keyring,")
		fmt.Println("keyed by the vault ID.")
	case "completion":
		fmt.Println("walletvault completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs a shell completion script for the specified shell.")
		fmt.Println()
		fmt.Println("  # Bash - add to ~/.bashrc")
		fmt.Println("  eval \"$(walletvault completion bash)\"")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}

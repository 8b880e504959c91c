package cmd

import (
	"fmt"
	"os"
)

// Completion outputs shell completion scripts
func Completion(shell string) {
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\nSupported: bash, zsh, fish\n", shell)
		os.Exit(1)
	}
}

const bashCompletion = `_walletvault() {
    local cur prev words cword
    _init_completion || return

    local commands="init create ls rm reconnect sync status passwd diff export compact keyring help completion"

    if [[ $cword -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        return
    fi

    local cmd="${words[1]}"
    case "$cmd" in
        sync|reconnect)
            COMPREPLY=($(compgen -W "-peer" -- "$cur"))
            ;;
        diff)
            if [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "-snapshot" -- "$cur"))
            else
                _filedir
            fi
            ;;
        export)
            COMPREPLY=($(compgen -W "-o" -- "$cur"))
            ;;
        keyring)
            COMPREPLY=($(compgen -W "save rm status" -- "$cur"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
    esac
}
complete -F _walletvault walletvault
`

const zshCompletion = `#compdef walletvault

_walletvault() {
    local -a commands
    commands=(
        'init:Create a new vault'
        'create:Create a new account'
        'ls:List accounts'
        'rm:Remove an account'
        'reconnect:Re-announce addresses to the peer'
        'sync:Run the registry sync loop'
        'status:Show vault status'
        'passwd:Change vault password'
        'diff:Diff a store against a snapshot'
        'export:Export a decrypted store snapshot'
        'compact:Compact the vault database'
        'keyring:Manage the OS keyring entry'
        'completion:Output shell completion'
        'help:Show help'
    )

    if (( CURRENT == 2 )); then
        _describe 'command' commands
        return
    fi

    case "${words[2]}" in
        keyring)
            _values 'action' save rm status
            ;;
        completion)
            _values 'shell' bash zsh fish
            ;;
        diff)
            _files
            ;;
    esac
}

_walletvault
`

const fishCompletion = `complete -c walletvault -f

complete -c walletvault -n '__fish_use_subcommand' -a init -d 'Create a new vault'
complete -c walletvault -n '__fish_use_subcommand' -a create -d 'Create a new account'
complete -c walletvault -n '__fish_use_subcommand' -a ls -d 'List accounts'
complete -c walletvault -n '__fish_use_subcommand' -a rm -d 'Remove an account'
complete -c walletvault -n '__fish_use_subcommand' -a reconnect -d 'Re-announce addresses to the peer'
complete -c walletvault -n '__fish_use_subcommand' -a sync -d 'Run the registry sync loop'
complete -c walletvault -n '__fish_use_subcommand' -a status -d 'Show vault status'
complete -c walletvault -n '__fish_use_subcommand' -a passwd -d 'Change vault password'
complete -c walletvault -n '__fish_use_subcommand' -a diff -d 'Diff a store against a snapshot'
complete -c walletvault -n '__fish_use_subcommand' -a export -d 'Export a decrypted store snapshot'
complete -c walletvault -n '__fish_use_subcommand' -a compact -d 'Compact the vault database'
complete -c walletvault -n '__fish_use_subcommand' -a keyring -d 'Manage the OS keyring entry'
complete -c walletvault -n '__fish_use_subcommand' -a completion -d 'Output shell completion'
complete -c walletvault -n '__fish_seen_subcommand_from keyring' -a 'save rm status'
complete -c walletvault -n '__fish_seen_subcommand_from completion' -a 'bash zsh fish'
`

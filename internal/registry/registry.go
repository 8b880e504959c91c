package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/illarion/walletvault/internal/account"
	"github.com/illarion/walletvault/internal/channel"
	"github.com/illarion/walletvault/internal/vault"
)

const (
	// Blockchain identifies this registry's chain in peer events
	Blockchain = "eth"

	// Version is sent with every addAddress announcement for peer-side
	// compatibility negotiation
	Version = 2

	// DefaultStoreName is the vault slot holding the account list
	DefaultStoreName = "eth-accounts"
)

// Event names exchanged with the peer
const (
	eventAddAddress           = "addAddress"
	eventRemoveAddress        = "removeAddress"
	eventAuthChallenge        = "addressAuthChallenge"
	eventAuthChallengeFailed  = "addressAuthChallengeFailed"
	eventAuthChallengeSuccess = "addressAuthChallengeSuccess"
	responseEventPrefix       = "response-"
)

// Status is the per-address liveness/authorization state. Absence from the
// status map means the address is not yet tracked.
type Status string

const (
	StatusAuthorizing  Status = "AUTHORIZING"
	StatusUnauthorized Status = "UNAUTHORIZED"
	StatusOnline       Status = "ONLINE"
)

var ErrAddressNotFound = errors.New("address not found")

// Factory creates an account from a stored private key. An empty key means
// a fresh random account.
type Factory func(privateKey string) (*account.Account, error)

// Registry keeps the encrypted account list and a per-address status map
// synchronized with a remote peer over an event channel.
type Registry struct {
	mu       sync.Mutex
	store    *vault.Store[[]*account.Account]
	ch       channel.Channel
	factory  Factory
	log      *slog.Logger
	statuses map[string]Status
}

// Open hydrates the registry from its vault slot, binds the peer event
// handlers and announces any account that is not yet tracked. A hydration
// failure (wrong password, corrupt blob) leaves the registry empty with the
// error available via LoadErr.
func Open(v *vault.Vault, name string, factory Factory, ch channel.Channel, log *slog.Logger) (*Registry, error) {
	if log == nil {
		log = slog.Default()
	}

	store, err := vault.Open(v, name, []*account.Account{}, keysCodec{factory: factory})
	if err != nil {
		return nil, err
	}

	r := &Registry{
		store:    store,
		ch:       ch,
		factory:  factory,
		log:      log,
		statuses: make(map[string]Status),
	}

	r.bind()

	// Catch up accounts that just came out of the decrypted blob
	r.mu.Lock()
	r.announceUntracked()
	r.mu.Unlock()

	return r, nil
}

// LoadErr reports the hydration failure recorded at Open, if any
func (r *Registry) LoadErr() error {
	return r.store.LoadErr()
}

// Accounts returns a copy of the account list
func (r *Registry) Accounts() []*account.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*account.Account(nil), r.store.Value()...)
}

// Statuses returns a copy of the status map, keyed by lower-cased address
func (r *Registry) Statuses() map[string]Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	statuses := make(map[string]Status, len(r.statuses))
	for addr, status := range r.statuses {
		statuses[addr] = status
	}
	return statuses
}

// Status returns the tracked status for an address, if any
func (r *Registry) Status(address string) (Status, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	status, ok := r.statuses[account.NormalizeAddress(address)]
	return status, ok
}

// CreateAddress generates a fresh account, appends it to the list and
// persists. The new address is announced to the peer as AUTHORIZING.
func (r *Registry) CreateAddress() (*account.Account, error) {
	acc, err := r.factory("")
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	err = r.store.Update(func(accounts *[]*account.Account) error {
		*accounts = append(*accounts, acc)
		return nil
	})
	r.announceUntracked()
	if err != nil {
		// In-memory list keeps the account, user is told the write failed
		return acc, err
	}
	return acc, nil
}

// RemoveAddress removes an account by address (case-insensitive). The peer
// is notified, the status entry dropped, the list persisted. Returns
// ErrAddressNotFound if no such account exists; the list stays unchanged.
func (r *Registry) RemoveAddress(address string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	normalized := account.NormalizeAddress(address)
	index := -1
	for i, acc := range r.store.Value() {
		if account.NormalizeAddress(acc.Address) == normalized {
			index = i
			break
		}
	}
	if index < 0 {
		return fmt.Errorf("%w: %s", ErrAddressNotFound, address)
	}

	if err := r.ch.Emit(eventRemoveAddress, removeAddressPayload{
		Blockchain: Blockchain,
		Address:    r.store.Value()[index].Address,
	}); err != nil {
		// Peer notification is best-effort; reconnect announces the
		// surviving set anyway
		r.log.Warn("failed to notify peer of removal", "address", address, "err", err)
	}

	delete(r.statuses, normalized)

	return r.store.Update(func(accounts *[]*account.Account) error {
		*accounts = append((*accounts)[:index], (*accounts)[index+1:]...)
		return nil
	})
}

// ReconnectAddress re-announces a single address as AUTHORIZING
func (r *Registry) ReconnectAddress(address string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	normalized := account.NormalizeAddress(address)
	for _, acc := range r.store.Value() {
		if account.NormalizeAddress(acc.Address) == normalized {
			r.announce(acc)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrAddressNotFound, address)
}

// ReconnectAll re-announces every known address as AUTHORIZING
func (r *Registry) ReconnectAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, acc := range r.store.Value() {
		r.announce(acc)
	}
}

// bind registers the peer event handlers. Transitions are driven entirely
// by inbound events; there is no local timeout for a stuck AUTHORIZING.
func (r *Registry) bind() {
	r.ch.On(channel.EventConnect, func(json.RawMessage) {
		r.ReconnectAll()
	})
	r.ch.On(channel.EventDisconnect, func(json.RawMessage) {
		r.clearStatuses()
	})
	r.ch.On(channel.EventConnectError, func(json.RawMessage) {
		r.clearStatuses()
	})
	r.ch.On(eventAuthChallenge, r.onChallenge)
	r.ch.On(eventAuthChallengeFailed, func(payload json.RawMessage) {
		r.setStatusFromEvent(payload, StatusUnauthorized)
	})
	r.ch.On(eventAuthChallengeSuccess, func(payload json.RawMessage) {
		r.setStatusFromEvent(payload, StatusOnline)
	})
}

func (r *Registry) clearStatuses() {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Every address becomes untracked until the next connect
	r.statuses = make(map[string]Status)
}

// announce marks an account AUTHORIZING and emits its addAddress event.
// Callers hold r.mu.
func (r *Registry) announce(acc *account.Account) {
	r.statuses[account.NormalizeAddress(acc.Address)] = StatusAuthorizing
	if err := r.ch.Emit(eventAddAddress, addAddressPayload{
		Blockchain: Blockchain,
		Address:    acc.Address,
		Version:    Version,
	}); err != nil {
		r.log.Warn("failed to announce address", "address", acc.Address, "err", err)
	}
}

// announceUntracked announces every account that has no status entry yet.
// Runs after every account-list mutation, which also catches accounts
// hydrated from the decrypted blob at open. Callers hold r.mu.
func (r *Registry) announceUntracked() {
	for _, acc := range r.store.Value() {
		if _, tracked := r.statuses[account.NormalizeAddress(acc.Address)]; !tracked {
			r.announce(acc)
		}
	}
}

func (r *Registry) onChallenge(payload json.RawMessage) {
	var ev authChallengeEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		r.log.Warn("malformed auth challenge", "err", err)
		return
	}
	if ev.Payload.Blockchain != Blockchain {
		return
	}

	r.mu.Lock()
	var challenged *account.Account
	normalized := account.NormalizeAddress(ev.Payload.Address)
	for _, acc := range r.store.Value() {
		if account.NormalizeAddress(acc.Address) == normalized {
			challenged = acc
			break
		}
	}
	r.mu.Unlock()

	responseEvent := responseEventPrefix + ev.MessageID

	if challenged == nil {
		r.log.Error("auth challenge for unknown address", "address", ev.Payload.Address)
		if err := r.ch.Emit(responseEvent, challengeResponse{Success: false}); err != nil {
			r.log.Warn("failed to send challenge response", "err", err)
		}
		return
	}

	signature, err := challenged.Sign([]byte(ev.Payload.DataToSign))
	if err != nil {
		r.log.Error("failed to sign auth challenge", "address", ev.Payload.Address, "err", err)
		if err := r.ch.Emit(responseEvent, challengeResponse{Success: false}); err != nil {
			r.log.Warn("failed to send challenge response", "err", err)
		}
		return
	}

	if err := r.ch.Emit(responseEvent, challengeResponse{Success: true, Signature: signature}); err != nil {
		r.log.Warn("failed to send challenge response", "err", err)
	}
}

func (r *Registry) setStatusFromEvent(payload json.RawMessage, status Status) {
	var ev addressEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		r.log.Warn("malformed address event", "err", err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[account.NormalizeAddress(ev.Payload.Address)] = status
}

package registry

import (
	"encoding/json"
	"fmt"

	"github.com/illarion/walletvault/internal/account"
)

// keysCodec persists the account list as a JSON array of private keys.
// Addresses and public keys are derivable, so only the keys are stored;
// decode rebuilds full accounts through the factory.
type keysCodec struct {
	factory Factory
}

func (c keysCodec) Encode(accounts []*account.Account) ([]byte, error) {
	keys := make([]string, len(accounts))
	for i, acc := range accounts {
		keys[i] = acc.PrivateKey()
	}
	return json.Marshal(keys)
}

func (c keysCodec) Decode(data []byte) ([]*account.Account, error) {
	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, err
	}

	accounts := make([]*account.Account, 0, len(keys))
	for i, key := range keys {
		acc, err := c.factory(key)
		if err != nil {
			return nil, fmt.Errorf("failed to restore account %d: %w", i, err)
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

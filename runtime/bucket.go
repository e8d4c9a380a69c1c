package runtime

import (
	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/errors"
)

const accountPrefix = "acct:"

// AccountKey returns the store key of the account at address.
func AccountKey(address swapvault.Pubkey) []byte {
	return append([]byte(accountPrefix), address[:]...)
}

// AccountBucket persists accounts under their address.
type AccountBucket struct{}

// Get returns the account at address, or nil if nothing is stored there.
func (AccountBucket) Get(db swapvault.ReadOnlyKVStore, address swapvault.Pubkey) (*swapvault.Account, error) {
	raw, err := db.Get(AccountKey(address))
	if err != nil {
		return nil, errors.Wrap(err, "load account")
	}
	if raw == nil {
		return nil, nil
	}
	var acct swapvault.Account
	if err := acct.Unmarshal(raw); err != nil {
		return nil, errors.Wrapf(err, "account %s", address)
	}
	return &acct, nil
}

// Save stores acct at address. An account without lamports cannot persist
// and is removed instead.
func (AccountBucket) Save(db swapvault.KVStore, address swapvault.Pubkey, acct *swapvault.Account) error {
	if acct.Lamports == 0 {
		return db.Delete(AccountKey(address))
	}
	raw, err := acct.Marshal()
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "marshal account %s: %s", address, err)
	}
	return db.Set(AccountKey(address), raw)
}

package runtime

import (
	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/errors"
	"github.com/iov-one/swapvault/gconf"
)

// GenesisAccount is an account created at chain start.
type GenesisAccount struct {
	Address    swapvault.Pubkey `json:"address"`
	Lamports   uint64           `json:"lamports"`
	Data       []byte           `json:"data,omitempty"`
	Owner      swapvault.Pubkey `json:"owner"`
	Executable bool             `json:"executable,omitempty"`
}

// Initializer loads the runtime configuration and the initial accounts
// from genesis.
type Initializer struct{}

var _ swapvault.Initializer = Initializer{}

// FromGenesis reads "conf.runtime" and "accounts". A missing runtime
// configuration stores the default one.
func (Initializer) FromGenesis(opts swapvault.Options, db swapvault.KVStore) error {
	var conf Configuration
	switch err := gconf.InitConfig(db, opts, configPkg, &conf); {
	case err == nil:
	case errors.ErrNotFound.Is(err):
		def := DefaultConfiguration()
		if err := gconf.Save(db, configPkg, &def); err != nil {
			return errors.Wrap(err, "save default runtime configuration")
		}
	default:
		return err
	}

	var accounts []GenesisAccount
	if err := opts.ReadOptions("accounts", &accounts); err != nil {
		return errors.Wrapf(errors.ErrInput, "accounts: %s", err)
	}
	var bucket AccountBucket
	for i, a := range accounts {
		if a.Lamports == 0 {
			return errors.Wrapf(errors.ErrInput, "genesis account %d (%s) without lamports", i, a.Address)
		}
		switch existing, err := bucket.Get(db, a.Address); {
		case err != nil:
			return err
		case existing != nil:
			return errors.Wrapf(errors.ErrDuplicate, "genesis account %s", a.Address)
		}
		acct := &swapvault.Account{
			Lamports:   a.Lamports,
			Data:       a.Data,
			Owner:      a.Owner,
			Executable: a.Executable,
		}
		if err := bucket.Save(db, a.Address, acct); err != nil {
			return errors.Wrapf(err, "genesis account %s", a.Address)
		}
	}
	return nil
}

package escrow

import (
	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/errors"
	"github.com/iov-one/swapvault/gconf"
	"github.com/iov-one/swapvault/x/delegation"
)

const configPkg = "escrow"

// Configuration of the escrow program.
type Configuration struct {
	// DelegationProgram is the only authority escrow accounts can be
	// delegated to.
	DelegationProgram swapvault.Pubkey `json:"delegation_program"`
}

var _ gconf.Validator = (*Configuration)(nil)

func (c *Configuration) Validate() error {
	if c.DelegationProgram.IsZero() {
		return errors.Wrap(errors.ErrInput, "delegation program is required")
	}
	return nil
}

// DefaultConfiguration delegates to the well known delegation program.
func DefaultConfiguration() Configuration {
	return Configuration{DelegationProgram: delegation.ProgramID}
}

func loadConfiguration(env swapvault.Env) (Configuration, error) {
	var conf Configuration
	switch err := env.LoadConfig(configPkg, &conf); {
	case err == nil:
		return conf, nil
	case errors.ErrNotFound.Is(err):
		return DefaultConfiguration(), nil
	default:
		return conf, errors.Wrap(err, "escrow configuration")
	}
}

// Initializer stores the escrow configuration found in genesis under
// "conf.escrow".
type Initializer struct{}

var _ swapvault.Initializer = Initializer{}

func (Initializer) FromGenesis(opts swapvault.Options, db swapvault.KVStore) error {
	var conf Configuration
	err := gconf.InitConfig(db, opts, configPkg, &conf)
	if errors.ErrNotFound.Is(err) {
		return nil
	}
	return err
}

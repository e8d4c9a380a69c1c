package runtime

import (
	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/errors"
	"github.com/iov-one/swapvault/gconf"
)

const (
	// configPkg is the gconf key of the runtime configuration.
	configPkg = "runtime"

	// DefaultMaxInvokeDepth bounds nested program calls, the top level
	// instruction included.
	DefaultMaxInvokeDepth = 4
)

// Configuration is the runtime part of the chain configuration.
type Configuration struct {
	Rent           swapvault.Rent `json:"rent"`
	MaxInvokeDepth uint32         `json:"max_invoke_depth"`
}

// DefaultConfiguration is used when genesis does not configure the runtime.
func DefaultConfiguration() Configuration {
	return Configuration{
		Rent:           swapvault.DefaultRent(),
		MaxInvokeDepth: DefaultMaxInvokeDepth,
	}
}

func (c *Configuration) Validate() error {
	if err := c.Rent.Validate(); err != nil {
		return errors.Wrap(err, "rent")
	}
	if c.MaxInvokeDepth == 0 {
		return errors.Wrap(errors.ErrInput, "max invoke depth must be positive")
	}
	return nil
}

// LoadConfiguration returns the stored configuration, or the default one if
// none was saved.
func LoadConfiguration(db gconf.ReadStore) (Configuration, error) {
	var conf Configuration
	switch err := gconf.Load(db, configPkg, &conf); {
	case err == nil:
		return conf, nil
	case errors.ErrNotFound.Is(err):
		return DefaultConfiguration(), nil
	default:
		return conf, err
	}
}

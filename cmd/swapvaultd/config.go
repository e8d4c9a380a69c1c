package main

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/iov-one/swapvault/errors"
)

const configFile = "swapvault.toml"

// Config is the node configuration.
type Config struct {
	// Bind is the address the abci server listens on.
	Bind string `toml:"bind"`
	// Transport is either "socket" or "grpc".
	Transport string `toml:"transport"`
	// DBDir holds the committed state.
	DBDir  string `toml:"db_dir"`
	DBName string `toml:"db_name"`
	// Debug returns error stack traces in abci responses.
	Debug    bool   `toml:"debug"`
	LogLevel string `toml:"log_level"`
}

// DefaultConfig returns the configuration of a node that keeps its state
// under home.
func DefaultConfig(home string) Config {
	return Config{
		Bind:      "tcp://localhost:26658",
		Transport: "socket",
		DBDir:     home,
		DBName:    "swapvault",
		LogLevel:  "info",
	}
}

// LoadConfig reads the TOML file at path over the defaults. A missing file
// leaves the defaults.
func LoadConfig(path, home string) (Config, error) {
	conf := DefaultConfig(home)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return conf, nil
	}

	var raw Config
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return conf, errors.Wrapf(errors.ErrInput, "load %s: %s", path, err)
	}
	if meta.IsDefined("bind") {
		conf.Bind = strings.TrimSpace(raw.Bind)
	}
	if meta.IsDefined("transport") {
		conf.Transport = strings.TrimSpace(raw.Transport)
	}
	if meta.IsDefined("db_dir") {
		conf.DBDir = strings.TrimSpace(raw.DBDir)
	}
	if meta.IsDefined("db_name") {
		conf.DBName = strings.TrimSpace(raw.DBName)
	}
	if meta.IsDefined("debug") {
		conf.Debug = raw.Debug
	}
	if meta.IsDefined("log_level") {
		conf.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	return conf, conf.Validate()
}

// Validate returns an error if the node cannot run with this configuration.
func (c Config) Validate() error {
	if c.Bind == "" {
		return errors.Wrap(errors.ErrInput, "bind address required")
	}
	switch c.Transport {
	case "socket", "grpc":
	default:
		return errors.Wrapf(errors.ErrInput, "transport %q", c.Transport)
	}
	if c.DBDir == "" || c.DBName == "" {
		return errors.Wrap(errors.ErrInput, "database location required")
	}
	return nil
}

// WriteConfig stores conf at path. It fails if the file exists.
func WriteConfig(path string, conf Config) error {
	fd, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "create %s: %s", path, err)
	}
	defer fd.Close()
	if err := toml.NewEncoder(fd).Encode(conf); err != nil {
		return errors.Wrapf(errors.ErrInput, "write %s: %s", path, err)
	}
	return fd.Close()
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strconv"
	"strings"

	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/errors"
	"github.com/iov-one/swapvault/runtime"
	"github.com/iov-one/swapvault/x/escrow"
	"github.com/spf13/pflag"
)

// InitCmd writes the default node configuration unless one exists. When a
// genesis file is given, its app_state is replaced with the initial accounts
// and the program configuration.
func InitCmd(out io.Writer, home, configPath string, args []string) error {
	fl := pflag.NewFlagSet("init", pflag.ContinueOnError)
	var (
		genesisFl  = fl.String("genesis", "", "tendermint genesis file to write the app state to")
		accountsFl = fl.StringSlice("account", nil, "initial system account as <base58 address>:<lamports>, can be repeated")
		delegFl    = fl.String("delegation-program", "", "base58 id of the delegation program (default built in)")
	)
	if err := fl.Parse(args); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}

	if err := os.MkdirAll(home, 0755); err != nil {
		return errors.Wrapf(errors.ErrInput, "create %s: %s", home, err)
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := WriteConfig(configPath, DefaultConfig(home)); err != nil {
			return err
		}
		fmt.Fprintf(out, "Generated node configuration %s\n", configPath)
	} else {
		fmt.Fprintf(out, "Found node configuration %s\n", configPath)
	}

	if *genesisFl == "" {
		return nil
	}
	state, err := GenAppState(*accountsFl, *delegFl)
	if err != nil {
		return err
	}
	if err := addGenesisOptions(*genesisFl, state); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote app state to %s\n", *genesisFl)
	return nil
}

// GenAppState builds the genesis app state from account definitions of the
// form <base58 address>:<lamports>.
func GenAppState(accounts []string, delegationProgram string) (json.RawMessage, error) {
	conf := escrow.DefaultConfiguration()
	if delegationProgram != "" {
		id, err := swapvault.ParsePubkey(delegationProgram)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "delegation program: %s", err)
		}
		conf.DelegationProgram = id
	}

	genesis := make([]runtime.GenesisAccount, 0, len(accounts))
	for _, def := range accounts {
		chunks := strings.SplitN(def, ":", 2)
		if len(chunks) != 2 {
			return nil, errors.Wrapf(errors.ErrInput, "account %q: want <address>:<lamports>", def)
		}
		address, err := swapvault.ParsePubkey(chunks[0])
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "account %q: %s", def, err)
		}
		lamports, err := strconv.ParseUint(chunks[1], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "account %q: %s", def, err)
		}
		genesis = append(genesis, runtime.GenesisAccount{
			Address:  address,
			Lamports: lamports,
			Owner:    swapvault.SystemProgramID,
		})
	}

	state := map[string]interface{}{
		"conf": map[string]interface{}{
			"runtime": runtime.DefaultConfiguration(),
			"escrow":  conf,
		},
		"accounts": genesis,
	}
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "app state: %s", err)
	}
	return raw, nil
}

// GenesisDoc involves some tendermint-specific structures we don't
// want to parse, so we just grab it into a raw object format,
// so we can add one line.
type GenesisDoc map[string]json.RawMessage

func addGenesisOptions(filename string, options json.RawMessage) error {
	bz, err := ioutil.ReadFile(filename)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "read genesis: %s", err)
	}

	var doc GenesisDoc
	if err := json.Unmarshal(bz, &doc); err != nil {
		return errors.Wrapf(errors.ErrDeserialization, "genesis: %s", err)
	}

	doc["app_state"] = options
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "genesis: %s", err)
	}
	return ioutil.WriteFile(filename, out, 0600)
}

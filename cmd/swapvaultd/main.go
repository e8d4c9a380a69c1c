package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iov-one/swapvault"
	"github.com/spf13/pflag"
	"github.com/tendermint/tendermint/libs/log"
)

var (
	flags   = pflag.NewFlagSet("swapvaultd", pflag.ContinueOnError)
	varHome = flags.String("home", filepath.Join(os.ExpandEnv("$HOME"), ".swapvault"),
		"directory to store files under")
	varConfig = flags.String("config", "", "node configuration file (default <home>/swapvault.toml)")
)

func helpMessage() {
	fmt.Fprintln(os.Stderr, "swapvaultd")
	fmt.Fprintln(os.Stderr, "          Escrow ledger node")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "help      Print this message")
	fmt.Fprintln(os.Stderr, "init      Write the node configuration and the genesis app state")
	fmt.Fprintln(os.Stderr, "start     Run the abci server")
	fmt.Fprintln(os.Stderr, "version   Print the app version")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, flags.FlagUsages())
}

func main() {
	flags.SetInterspersed(false)
	flags.Usage = helpMessage
	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}
	if flags.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Missing command:")
		helpMessage()
		os.Exit(1)
	}

	configPath := *varConfig
	if configPath == "" {
		configPath = filepath.Join(*varHome, configFile)
	}

	cmd := flags.Arg(0)
	rest := flags.Args()[1:]

	var err error
	switch cmd {
	case "help":
		helpMessage()
	case "init":
		err = InitCmd(os.Stdout, *varHome, configPath, rest)
	case "start":
		var conf Config
		conf, err = LoadConfig(configPath, *varHome)
		if err == nil {
			var logger log.Logger
			logger, err = newLogger(conf.LogLevel)
			if err == nil {
				err = StartCmd(logger, conf, rest)
			}
		}
	case "version":
		fmt.Println(swapvault.Version())
	default:
		err = fmt.Errorf("unknown command: %s", cmd)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n\n", err)
		helpMessage()
		os.Exit(1)
	}
}

func newLogger(level string) (log.Logger, error) {
	allow, err := log.AllowLevel(level)
	if err != nil {
		return nil, err
	}
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout)).With("module", "swapvault")
	return log.NewFilter(logger, allow), nil
}

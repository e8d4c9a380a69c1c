package main

import (
	"github.com/iov-one/swapvault/app"
	"github.com/iov-one/swapvault/errors"
	"github.com/iov-one/swapvault/store/iavl"
	"github.com/spf13/pflag"
	"github.com/tendermint/tendermint/abci/server"
	abci "github.com/tendermint/tendermint/abci/types"
	cmn "github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/libs/log"
)

func parseStartFlags(conf Config, args []string) (Config, error) {
	fl := pflag.NewFlagSet("start", pflag.ContinueOnError)
	fl.StringVar(&conf.Bind, "bind", conf.Bind, "address server listens on")
	fl.BoolVar(&conf.Debug, "debug", conf.Debug, "call stack returned on error")
	if err := fl.Parse(args); err != nil {
		return conf, errors.Wrap(errors.ErrInput, err.Error())
	}
	return conf, conf.Validate()
}

// GenerateApp opens the committed state described by conf and builds the
// application on top of it.
func GenerateApp(conf Config, logger log.Logger) (abci.Application, error) {
	store, err := iavl.NewCommitStore(conf.DBDir, conf.DBName)
	if err != nil {
		return nil, err
	}
	return app.GenerateApp(store, logger, conf.Debug), nil
}

// StartCmd runs the abci server until the process receives a signal.
func StartCmd(logger log.Logger, conf Config, args []string) error {
	conf, err := parseStartFlags(conf, args)
	if err != nil {
		return err
	}

	application, err := GenerateApp(conf, logger)
	if err != nil {
		return err
	}

	logger.Info("Starting ABCI app", "bind", conf.Bind, "transport", conf.Transport)

	svr, err := server.NewServer(conf.Bind, conf.Transport, application)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "creating listener: %s", err)
	}
	svr.SetLogger(logger.With("module", "abci-server"))
	if err := svr.Start(); err != nil {
		return errors.Wrapf(errors.ErrHuman, "start server: %s", err)
	}

	// Wait forever
	cmn.TrapSignal(func() {
		svr.Stop()
	})
	return nil
}

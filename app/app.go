package app

import (
	"context"

	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/runtime"
	"github.com/iov-one/swapvault/x/delegation"
	"github.com/iov-one/swapvault/x/escrow"
	"github.com/iov-one/swapvault/x/system"
	"github.com/iov-one/swapvault/x/token"
	"github.com/tendermint/tendermint/libs/log"
)

// Name is returned by abci.Info.
const Name = "swapvault"

// NewLedger returns a ledger with every program of the chain registered.
func NewLedger() *runtime.Ledger {
	l := runtime.NewLedger()
	system.RegisterProgram(l)
	token.RegisterProgram(l)
	delegation.RegisterProgram(l)
	escrow.RegisterProgram(l)
	return l
}

// Initializers reads the whole genesis state of the chain.
func Initializers() swapvault.Initializer {
	return swapvault.ChainInitializers(
		runtime.Initializer{},
		escrow.Initializer{},
	)
}

// GenerateApp builds the abci application on top of store.
func GenerateApp(store swapvault.CommitKVStore, logger log.Logger, debug bool) BaseApp {
	s := NewStoreApp(Name, store, NewQueryRouter(), context.Background()).
		WithInit(Initializers()).
		WithLogger(logger)
	return NewBaseApp(s, NewLedger(), debug)
}

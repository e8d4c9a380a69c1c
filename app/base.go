package app

import (
	"encoding/binary"

	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/errors"
	"github.com/iov-one/swapvault/runtime"
	abci "github.com/tendermint/tendermint/abci/types"
)

// BaseApp adds DeliverTx and CheckTx to the storage and query
// functionality of StoreApp. Transactions are executed by the ledger.
type BaseApp struct {
	*StoreApp
	ledger *runtime.Ledger
	debug  bool
}

var _ abci.Application = BaseApp{}

// NewBaseApp constructs a basic abci application
func NewBaseApp(store *StoreApp, ledger *runtime.Ledger, debug bool) BaseApp {
	return BaseApp{
		StoreApp: store,
		ledger:   ledger,
		debug:    debug,
	}
}

// DeliverTx - ABCI - executes the transaction on the deliver store
func (b BaseApp) DeliverTx(txBytes []byte) abci.ResponseDeliverTx {
	ctx := swapvault.WithLogInfo(b.BlockContext(), "call", "deliver_tx")
	if err := b.process(ctx, b.DeliverStore(), txBytes); err != nil {
		code, log := errors.ABCIInfo(err, b.debug)
		return abci.ResponseDeliverTx{Code: code, Log: log}
	}
	return abci.ResponseDeliverTx{}
}

// CheckTx - ABCI - executes the transaction on the check store
func (b BaseApp) CheckTx(txBytes []byte) abci.ResponseCheckTx {
	ctx := swapvault.WithLogInfo(b.BlockContext(), "call", "check_tx")
	if err := b.process(ctx, b.CheckStore(), txBytes); err != nil {
		code, log := errors.ABCIInfo(err, b.debug)
		return abci.ResponseCheckTx{Code: code, Log: log}
	}
	return abci.ResponseCheckTx{}
}

// process decodes, authenticates and executes a transaction. A transaction
// is executed at most once.
func (b BaseApp) process(ctx swapvault.Context, db swapvault.CacheableKVStore, txBytes []byte) (err error) {
	defer errors.Recover(&err)

	tx, err := UnmarshalTx(txBytes)
	if err != nil {
		return err
	}
	signers, err := tx.Verify(b.GetChainID())
	if err != nil {
		return err
	}
	id, err := tx.ID()
	if err != nil {
		return err
	}
	key := replayKey(id)
	switch seen, err := db.Has(key); {
	case err != nil:
		return errors.Wrap(err, "replay guard")
	case seen:
		return errors.Wrapf(errors.ErrDuplicate, "transaction %X", id)
	}

	ctx = swapvault.WithLogInfo(ctx, "tx", id)
	err = b.ledger.Execute(ctx, db, &runtime.Tx{
		Instructions: tx.Instructions,
		Signers:      signers,
	})
	if err != nil {
		return err
	}

	height := make([]byte, 8)
	binary.BigEndian.PutUint64(height, uint64(b.height))
	return db.Set(key, height)
}

// replayKey is where the height of an executed transaction is kept.
func replayKey(id []byte) []byte {
	return append([]byte("_sv:tx:"), id...)
}

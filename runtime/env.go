package runtime

import (
	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/errors"
	"github.com/iov-one/swapvault/gconf"
)

// env is what a running program sees of the ledger.
type env struct {
	ledger *Ledger
	db     swapvault.KVStore
	conf   Configuration
	frame  *frame
	depth  uint32
}

var _ swapvault.Env = (*env)(nil)

func (e *env) ProgramID() swapvault.Pubkey {
	return e.frame.program
}

func (e *env) Rent() swapvault.Rent {
	return e.conf.Rent
}

func (e *env) LoadConfig(pkg string, dst interface{}) error {
	return gconf.Load(e.db, pkg, dst)
}

// Invoke runs ix as a nested call of the current program.
func (e *env) Invoke(ctx swapvault.Context, ix swapvault.Instruction, signers ...swapvault.Authority) error {
	if e.depth >= e.conf.MaxInvokeDepth {
		return errors.Wrapf(errors.ErrInvalidState, "invoke depth %d exceeded", e.conf.MaxInvokeDepth)
	}
	granted := make(map[swapvault.Pubkey]bool, len(signers))
	for _, a := range signers {
		if err := a.VerifyFor(e.frame.program); err != nil {
			return err
		}
		granted[a.Address()] = true
	}
	if !e.frame.has(ix.ProgramID) {
		return errors.Wrapf(errors.ErrAccountShape, "program %s was not passed to %s", ix.ProgramID, e.frame.program)
	}

	infos := make([]*swapvault.AccountInfo, len(ix.Accounts))
	for i, m := range ix.Accounts {
		acct, ok := e.frame.accounts[m.Pubkey]
		if !ok {
			return errors.Wrapf(errors.ErrAccountShape, "account %s was not passed to %s", m.Pubkey, e.frame.program)
		}
		if m.IsWritable && !e.frame.writable[m.Pubkey] {
			return errors.Wrapf(errors.ErrUnauthorized, "account %s is not writable", m.Pubkey)
		}
		if m.IsSigner && !e.frame.signer[m.Pubkey] && !granted[m.Pubkey] {
			return errors.Wrapf(errors.ErrUnauthorized, "account %s did not sign", m.Pubkey)
		}
		infos[i] = swapvault.NewAccountInfo(m.Pubkey, m.IsSigner, m.IsWritable, acct)
	}

	// Changes made so far belong to the caller and are checked against
	// its ownership before the callee sees them.
	if err := e.frame.verify(); err != nil {
		return err
	}
	ctx = swapvault.WithLogInfo(ctx, "depth", e.depth+1)
	if err := e.ledger.call(ctx, e.db, e.conf, ix.ProgramID, infos, ix.Data, e.depth+1); err != nil {
		return err
	}
	e.frame.snapshot()
	return nil
}

package runtime

import (
	"bytes"
	"fmt"

	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/errors"
)

// Tx is a list of instructions executed as one atomic unit. Signers are the
// addresses whose signatures were verified by the caller of Execute.
type Tx struct {
	Instructions []swapvault.Instruction
	Signers      []swapvault.Pubkey
}

// Ledger executes transactions against the registered programs.
type Ledger struct {
	programs map[swapvault.Pubkey]swapvault.Program
	accounts AccountBucket
}

var _ swapvault.ProgramRegistry = (*Ledger)(nil)

// NewLedger returns a ledger without any program.
func NewLedger() *Ledger {
	return &Ledger{
		programs: make(map[swapvault.Pubkey]swapvault.Program),
	}
}

// Register makes p callable under id. Registering the same id twice is a
// programming error and panics.
func (l *Ledger) Register(id swapvault.Pubkey, p swapvault.Program) {
	if _, ok := l.programs[id]; ok {
		panic(fmt.Sprintf("program %s already registered", id))
	}
	l.programs[id] = p
}

// Account returns the persisted account at address, nil if there is none.
func (l *Ledger) Account(db swapvault.ReadOnlyKVStore, address swapvault.Pubkey) (*swapvault.Account, error) {
	return l.accounts.Get(db, address)
}

// SetAccount writes an account directly, bypassing every program. It is
// meant for genesis and tests.
func (l *Ledger) SetAccount(db swapvault.KVStore, address swapvault.Pubkey, acct *swapvault.Account) error {
	return l.accounts.Save(db, address, acct)
}

// Execute runs all instructions of tx in order. Either every change is
// written to db or, if any instruction fails, none is.
func (l *Ledger) Execute(ctx swapvault.Context, db swapvault.CacheableKVStore, tx *Tx) (err error) {
	cache := db.CacheWrap()
	defer func() {
		if err != nil {
			cache.Discard()
			return
		}
		err = cache.Write()
	}()
	defer errors.Recover(&err)

	if len(tx.Instructions) == 0 {
		return errors.Wrap(errors.ErrInput, "transaction without instructions")
	}
	conf, err := LoadConfiguration(cache)
	if err != nil {
		return errors.Wrap(err, "runtime configuration")
	}

	signed := make(map[swapvault.Pubkey]bool, len(tx.Signers))
	for _, s := range tx.Signers {
		signed[s] = true
	}

	state, err := l.load(cache, tx)
	if err != nil {
		return err
	}

	for i, ix := range tx.Instructions {
		infos := make([]*swapvault.AccountInfo, len(ix.Accounts))
		for j, m := range ix.Accounts {
			if m.IsSigner && !signed[m.Pubkey] {
				return errors.Wrapf(errors.ErrUnauthorized, "instruction %d: missing signature of %s", i, m.Pubkey)
			}
			infos[j] = swapvault.NewAccountInfo(m.Pubkey, m.IsSigner, m.IsWritable, state.accounts[m.Pubkey])
		}
		ictx := swapvault.WithLogInfo(ctx, "instruction", i, "program", ix.ProgramID.String())
		if err := l.call(ictx, cache, conf, ix.ProgramID, infos, ix.Data, 1); err != nil {
			return errors.Wrapf(err, "instruction %d", i)
		}
	}

	return l.store(cache, conf, state)
}

// call runs a single program frame and checks its changes.
func (l *Ledger) call(
	ctx swapvault.Context,
	db swapvault.KVStore,
	conf Configuration,
	program swapvault.Pubkey,
	infos []*swapvault.AccountInfo,
	data []byte,
	depth uint32,
) error {
	p, ok := l.programs[program]
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "program %s", program)
	}
	f := newFrame(program, infos)
	e := &env{ledger: l, db: db, conf: conf, frame: f, depth: depth}
	if err := p.Process(ctx, e, infos, data); err != nil {
		return err
	}
	return f.verify()
}

// txState holds every account a transaction touches.
type txState struct {
	keys     []swapvault.Pubkey
	accounts map[swapvault.Pubkey]*swapvault.Account
	original map[swapvault.Pubkey]*swapvault.Account
}

func (l *Ledger) load(db swapvault.ReadOnlyKVStore, tx *Tx) (*txState, error) {
	st := &txState{
		accounts: make(map[swapvault.Pubkey]*swapvault.Account),
		original: make(map[swapvault.Pubkey]*swapvault.Account),
	}
	for _, ix := range tx.Instructions {
		for _, m := range ix.Accounts {
			if _, ok := st.accounts[m.Pubkey]; ok {
				continue
			}
			acct, err := l.accounts.Get(db, m.Pubkey)
			if err != nil {
				return nil, err
			}
			if acct == nil {
				acct = &swapvault.Account{Owner: swapvault.SystemProgramID}
			}
			st.keys = append(st.keys, m.Pubkey)
			st.accounts[m.Pubkey] = acct
			st.original[m.Pubkey] = acct.Copy()
		}
	}
	return st, nil
}

// store persists every modified account. Accounts that keep a balance must
// be rent exempt.
func (l *Ledger) store(db swapvault.KVStore, conf Configuration, st *txState) error {
	for _, k := range st.keys {
		acct, orig := st.accounts[k], st.original[k]
		if unchanged(acct, orig) {
			continue
		}
		if acct.Lamports != 0 && !conf.Rent.IsExempt(acct.Lamports, len(acct.Data)) {
			return errors.Wrapf(errors.ErrInsufficientFunds,
				"account %s holds %d, rent exemption requires %d",
				k, acct.Lamports, conf.Rent.MinimumBalance(len(acct.Data)))
		}
		if err := l.accounts.Save(db, k, acct); err != nil {
			return err
		}
	}
	return nil
}

func unchanged(a, b *swapvault.Account) bool {
	return a.Lamports == b.Lamports &&
		a.Owner == b.Owner &&
		a.Executable == b.Executable &&
		bytes.Equal(a.Data, b.Data)
}

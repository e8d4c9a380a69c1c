package runtime

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/errors"
	"github.com/iov-one/swapvault/store"
	"github.com/iov-one/swapvault/vaulttest/assert"
)

const funds = 10000000

var (
	alice = swapvault.Pubkey{0xa1}
	bob   = swapvault.Pubkey{0xb0}
	owned = swapvault.Pubkey{0xc0}
	progA = swapvault.Pubkey{0x01, 0xaa}
	progB = swapvault.Pubkey{0x01, 0xbb}
)

func setup(t *testing.T) (*Ledger, swapvault.CacheableKVStore) {
	t.Helper()
	db := store.MemStore()
	l := NewLedger()
	for key, acct := range map[swapvault.Pubkey]*swapvault.Account{
		alice: {Lamports: funds, Owner: swapvault.SystemProgramID},
		bob:   {Lamports: funds, Owner: swapvault.SystemProgramID},
		owned: {Lamports: funds, Owner: progA, Data: []byte{1, 2, 3}},
	} {
		assert.Nil(t, l.SetAccount(db, key, acct))
	}
	return l, db
}

func lamports(t *testing.T, l *Ledger, db swapvault.ReadOnlyKVStore, key swapvault.Pubkey) uint64 {
	t.Helper()
	acct, err := l.Account(db, key)
	assert.Nil(t, err)
	if acct == nil {
		return 0
	}
	return acct.Lamports
}

func TestOwnershipRules(t *testing.T) {
	cases := map[string]struct {
		Accounts  []swapvault.AccountMeta
		Signers   []swapvault.Pubkey
		Program   swapvault.ProgramFunc
		WantErr   *errors.Error
		WantOwned uint64
		WantAlice uint64
	}{
		"owner debits its account": {
			Accounts: []swapvault.AccountMeta{swapvault.Writable(owned, false), swapvault.Writable(alice, false)},
			Program: func(ctx swapvault.Context, env swapvault.Env, accs []*swapvault.AccountInfo, data []byte) error {
				return swapvault.MoveLamports(accs[0], accs[1], 1000)
			},
			WantOwned: funds - 1000,
			WantAlice: funds + 1000,
		},
		"debit of a foreign account": {
			Accounts: []swapvault.AccountMeta{swapvault.Writable(alice, false), swapvault.Writable(owned, false)},
			Program: func(ctx swapvault.Context, env swapvault.Env, accs []*swapvault.AccountInfo, data []byte) error {
				return swapvault.MoveLamports(accs[0], accs[1], 1000)
			},
			WantErr: errors.ErrUnauthorized,
		},
		"lamports created": {
			Accounts: []swapvault.AccountMeta{swapvault.Writable(owned, false)},
			Program: func(ctx swapvault.Context, env swapvault.Env, accs []*swapvault.AccountInfo, data []byte) error {
				accs[0].SetLamports(accs[0].Lamports() + 1)
				return nil
			},
			WantErr: errors.ErrInvalidState,
		},
		"data of a foreign account": {
			Accounts: []swapvault.AccountMeta{swapvault.Writable(alice, false)},
			Program: func(ctx swapvault.Context, env swapvault.Env, accs []*swapvault.AccountInfo, data []byte) error {
				return accs[0].Realloc(1)
			},
			WantErr: errors.ErrUnauthorized,
		},
		"read-only account modified by its owner": {
			Accounts: []swapvault.AccountMeta{swapvault.ReadOnly(owned, false)},
			Program: func(ctx swapvault.Context, env swapvault.Env, accs []*swapvault.AccountInfo, data []byte) error {
				accs[0].Data()[0] = 9
				return nil
			},
			WantErr: errors.ErrUnauthorized,
		},
		"reassign with data": {
			Accounts: []swapvault.AccountMeta{swapvault.Writable(owned, false)},
			Program: func(ctx swapvault.Context, env swapvault.Env, accs []*swapvault.AccountInfo, data []byte) error {
				accs[0].Assign(progB)
				return nil
			},
			WantErr: errors.ErrUnauthorized,
		},
		"reassign zeroed data": {
			Accounts: []swapvault.AccountMeta{swapvault.Writable(owned, false)},
			Program: func(ctx swapvault.Context, env swapvault.Env, accs []*swapvault.AccountInfo, data []byte) error {
				copy(accs[0].Data(), []byte{0, 0, 0})
				accs[0].Assign(progB)
				return nil
			},
			WantOwned: funds,
			WantAlice: funds,
		},
		"missing signature": {
			Accounts: []swapvault.AccountMeta{swapvault.Writable(alice, true)},
			Program: func(ctx swapvault.Context, env swapvault.Env, accs []*swapvault.AccountInfo, data []byte) error {
				return nil
			},
			WantErr: errors.ErrUnauthorized,
		},
		"signed": {
			Accounts: []swapvault.AccountMeta{swapvault.Writable(alice, true)},
			Signers:  []swapvault.Pubkey{alice},
			Program: func(ctx swapvault.Context, env swapvault.Env, accs []*swapvault.AccountInfo, data []byte) error {
				if !accs[0].IsSigner {
					return errors.Wrap(errors.ErrHuman, "signer flag lost")
				}
				return nil
			},
			WantOwned: funds,
			WantAlice: funds,
		},
		"balance below rent exemption": {
			Accounts: []swapvault.AccountMeta{swapvault.Writable(owned, false), swapvault.Writable(alice, false)},
			Program: func(ctx swapvault.Context, env swapvault.Env, accs []*swapvault.AccountInfo, data []byte) error {
				return swapvault.MoveLamports(accs[0], accs[1], funds-1)
			},
			WantErr: errors.ErrInsufficientFunds,
		},
		"account closed": {
			Accounts: []swapvault.AccountMeta{swapvault.Writable(owned, false), swapvault.Writable(alice, false)},
			Program: func(ctx swapvault.Context, env swapvault.Env, accs []*swapvault.AccountInfo, data []byte) error {
				return swapvault.CloseAccount(accs[0], accs[1])
			},
			WantOwned: 0,
			WantAlice: 2 * funds,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			l, db := setup(t)
			l.Register(progA, tc.Program)

			tx := &Tx{
				Instructions: []swapvault.Instruction{{ProgramID: progA, Accounts: tc.Accounts}},
				Signers:      tc.Signers,
			}
			err := l.Execute(context.Background(), db, tx)
			assert.IsErr(t, tc.WantErr, err)
			if tc.WantErr != nil {
				assert.Equal(t, uint64(funds), lamports(t, l, db, owned))
				assert.Equal(t, uint64(funds), lamports(t, l, db, alice))
				return
			}
			assert.Equal(t, tc.WantOwned, lamports(t, l, db, owned))
			assert.Equal(t, tc.WantAlice, lamports(t, l, db, alice))
		})
	}
}

func TestUnknownProgram(t *testing.T) {
	l, db := setup(t)
	tx := &Tx{Instructions: []swapvault.Instruction{{ProgramID: progB}}}
	assert.IsErr(t, errors.ErrNotFound, l.Execute(context.Background(), db, tx))
	assert.IsErr(t, errors.ErrInput, l.Execute(context.Background(), db, &Tx{}))
}

func TestTransactionIsAtomic(t *testing.T) {
	l, db := setup(t)
	l.Register(progA, swapvault.ProgramFunc(func(ctx swapvault.Context, env swapvault.Env, accs []*swapvault.AccountInfo, data []byte) error {
		if len(data) != 0 {
			return errors.Wrap(errors.ErrInput, "fail on request")
		}
		return swapvault.MoveLamports(accs[0], accs[1], 500)
	}))

	pay := swapvault.Instruction{
		ProgramID: progA,
		Accounts:  []swapvault.AccountMeta{swapvault.Writable(owned, false), swapvault.Writable(bob, false)},
	}
	fail := pay
	fail.Data = []byte{1}

	err := l.Execute(context.Background(), db, &Tx{Instructions: []swapvault.Instruction{pay, pay, fail}})
	assert.IsErr(t, errors.ErrInput, err)
	assert.Equal(t, uint64(funds), lamports(t, l, db, bob))

	err = l.Execute(context.Background(), db, &Tx{Instructions: []swapvault.Instruction{pay, pay}})
	assert.Nil(t, err)
	assert.Equal(t, uint64(funds+1000), lamports(t, l, db, bob))
	assert.Equal(t, uint64(funds-1000), lamports(t, l, db, owned))
}

func TestInvoke(t *testing.T) {
	auth, err := swapvault.FindAuthority(progA, []byte("vault"))
	assert.Nil(t, err)
	foreign, err := swapvault.FindAuthority(progB, []byte("vault"))
	assert.Nil(t, err)
	pda := auth.Address()

	// progB moves lamports from its first account into the second one
	// and requires the first one to sign.
	callee := swapvault.ProgramFunc(func(ctx swapvault.Context, env swapvault.Env, accs []*swapvault.AccountInfo, data []byte) error {
		if !accs[0].IsSigner {
			return errors.Wrap(errors.ErrUnauthorized, "payer must sign")
		}
		if !accs[0].IsOwnedBy(env.ProgramID()) {
			return nil
		}
		return swapvault.MoveLamports(accs[0], accs[1], 100)
	})

	cases := map[string]struct {
		Accounts []swapvault.AccountMeta
		Signers  []swapvault.Pubkey
		Call     func(env swapvault.Env, ctx swapvault.Context) error
		WantErr  *errors.Error
	}{
		"forward a signature": {
			Accounts: []swapvault.AccountMeta{swapvault.Writable(alice, true), swapvault.Writable(bob, false), swapvault.ReadOnly(progB, false)},
			Signers:  []swapvault.Pubkey{alice},
			Call: func(env swapvault.Env, ctx swapvault.Context) error {
				return env.Invoke(ctx, swapvault.Instruction{
					ProgramID: progB,
					Accounts:  []swapvault.AccountMeta{swapvault.Writable(alice, true), swapvault.Writable(bob, false)},
				})
			},
		},
		"signature escalation": {
			Accounts: []swapvault.AccountMeta{swapvault.Writable(alice, false), swapvault.Writable(bob, false), swapvault.ReadOnly(progB, false)},
			Call: func(env swapvault.Env, ctx swapvault.Context) error {
				return env.Invoke(ctx, swapvault.Instruction{
					ProgramID: progB,
					Accounts:  []swapvault.AccountMeta{swapvault.Writable(alice, true), swapvault.Writable(bob, false)},
				})
			},
			WantErr: errors.ErrUnauthorized,
		},
		"writable escalation": {
			Accounts: []swapvault.AccountMeta{swapvault.Writable(alice, true), swapvault.ReadOnly(bob, false), swapvault.ReadOnly(progB, false)},
			Signers:  []swapvault.Pubkey{alice},
			Call: func(env swapvault.Env, ctx swapvault.Context) error {
				return env.Invoke(ctx, swapvault.Instruction{
					ProgramID: progB,
					Accounts:  []swapvault.AccountMeta{swapvault.Writable(alice, true), swapvault.Writable(bob, false)},
				})
			},
			WantErr: errors.ErrUnauthorized,
		},
		"derived address signs with its authority": {
			Accounts: []swapvault.AccountMeta{swapvault.Writable(pda, false), swapvault.Writable(bob, false), swapvault.ReadOnly(progB, false)},
			Call: func(env swapvault.Env, ctx swapvault.Context) error {
				return env.Invoke(ctx, swapvault.Instruction{
					ProgramID: progB,
					Accounts:  []swapvault.AccountMeta{swapvault.Writable(pda, true), swapvault.Writable(bob, false)},
				}, auth)
			},
		},
		"authority of another program": {
			Accounts: []swapvault.AccountMeta{swapvault.Writable(foreign.Address(), false), swapvault.Writable(bob, false), swapvault.ReadOnly(progB, false)},
			Call: func(env swapvault.Env, ctx swapvault.Context) error {
				return env.Invoke(ctx, swapvault.Instruction{
					ProgramID: progB,
					Accounts:  []swapvault.AccountMeta{swapvault.Writable(foreign.Address(), true), swapvault.Writable(bob, false)},
				}, foreign)
			},
			WantErr: errors.ErrUnauthorized,
		},
		"program not passed": {
			Accounts: []swapvault.AccountMeta{swapvault.Writable(alice, true), swapvault.Writable(bob, false)},
			Signers:  []swapvault.Pubkey{alice},
			Call: func(env swapvault.Env, ctx swapvault.Context) error {
				return env.Invoke(ctx, swapvault.Instruction{
					ProgramID: progB,
					Accounts:  []swapvault.AccountMeta{swapvault.Writable(alice, true), swapvault.Writable(bob, false)},
				})
			},
			WantErr: errors.ErrAccountShape,
		},
		"account not passed": {
			Accounts: []swapvault.AccountMeta{swapvault.Writable(alice, true), swapvault.ReadOnly(progB, false)},
			Signers:  []swapvault.Pubkey{alice},
			Call: func(env swapvault.Env, ctx swapvault.Context) error {
				return env.Invoke(ctx, swapvault.Instruction{
					ProgramID: progB,
					Accounts:  []swapvault.AccountMeta{swapvault.Writable(alice, true), swapvault.Writable(bob, false)},
				})
			},
			WantErr: errors.ErrAccountShape,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			l, db := setup(t)
			assert.Nil(t, l.SetAccount(db, pda, &swapvault.Account{Lamports: funds, Owner: progB}))
			assert.Nil(t, l.SetAccount(db, foreign.Address(), &swapvault.Account{Lamports: funds, Owner: progB}))
			l.Register(progB, callee)
			l.Register(progA, swapvault.ProgramFunc(func(ctx swapvault.Context, env swapvault.Env, accs []*swapvault.AccountInfo, data []byte) error {
				return tc.Call(env, ctx)
			}))
			tx := &Tx{
				Instructions: []swapvault.Instruction{{ProgramID: progA, Accounts: tc.Accounts}},
				Signers:      tc.Signers,
			}
			assert.IsErr(t, tc.WantErr, l.Execute(context.Background(), db, tx))
		})
	}
}

func TestInvokeCalleeChangesAreVisible(t *testing.T) {
	l, db := setup(t)
	auth, err := swapvault.FindAuthority(progA, []byte("vault"))
	assert.Nil(t, err)
	assert.Nil(t, l.SetAccount(db, auth.Address(), &swapvault.Account{Lamports: funds, Owner: progB}))

	l.Register(progB, swapvault.ProgramFunc(func(ctx swapvault.Context, env swapvault.Env, accs []*swapvault.AccountInfo, data []byte) error {
		return swapvault.MoveLamports(accs[0], accs[1], 700)
	}))
	l.Register(progA, swapvault.ProgramFunc(func(ctx swapvault.Context, env swapvault.Env, accs []*swapvault.AccountInfo, data []byte) error {
		before := accs[1].Lamports()
		err := env.Invoke(ctx, swapvault.Instruction{
			ProgramID: progB,
			Accounts:  []swapvault.AccountMeta{swapvault.Writable(accs[0].Key, true), swapvault.Writable(accs[1].Key, false)},
		}, auth)
		if err != nil {
			return err
		}
		if accs[1].Lamports() != before+700 {
			return errors.Wrap(errors.ErrHuman, "callee change not visible")
		}
		// progA owns this one and may spend the received lamports
		return swapvault.MoveLamports(accs[1], accs[2], 200)
	}))

	tx := &Tx{Instructions: []swapvault.Instruction{{
		ProgramID: progA,
		Accounts: []swapvault.AccountMeta{
			swapvault.Writable(auth.Address(), false),
			swapvault.Writable(owned, false),
			swapvault.Writable(bob, false),
			swapvault.ReadOnly(progB, false),
		},
	}}}
	assert.Nil(t, l.Execute(context.Background(), db, tx))
	assert.Equal(t, uint64(funds-700), lamports(t, l, db, auth.Address()))
	assert.Equal(t, uint64(funds+500), lamports(t, l, db, owned))
	assert.Equal(t, uint64(funds+200), lamports(t, l, db, bob))
}

func TestInvokeDepth(t *testing.T) {
	l, db := setup(t)
	opts := swapvault.Options{
		"conf": json.RawMessage(`{"runtime": {"rent": {"lamports_per_byte_year": 3480, "exemption_threshold": 2}, "max_invoke_depth": 2}}`),
	}
	assert.Nil(t, Initializer{}.FromGenesis(opts, db))

	var calls int
	l.Register(progA, swapvault.ProgramFunc(func(ctx swapvault.Context, env swapvault.Env, accs []*swapvault.AccountInfo, data []byte) error {
		calls++
		return env.Invoke(ctx, swapvault.Instruction{
			ProgramID: progA,
			Accounts:  []swapvault.AccountMeta{swapvault.ReadOnly(progA, false)},
		})
	}))
	tx := &Tx{Instructions: []swapvault.Instruction{{
		ProgramID: progA,
		Accounts:  []swapvault.AccountMeta{swapvault.ReadOnly(progA, false)},
	}}}
	assert.IsErr(t, errors.ErrInvalidState, l.Execute(context.Background(), db, tx))
	assert.Equal(t, 2, calls)
}

func TestGenesis(t *testing.T) {
	db := store.MemStore()
	opts := swapvault.Options{
		"accounts": json.RawMessage(`[
			{"address": "` + alice.String() + `", "lamports": 5000000},
			{"address": "` + owned.String() + `", "lamports": 7000000, "owner": "` + progA.String() + `", "data": "AQID"}
		]`),
	}
	assert.Nil(t, Initializer{}.FromGenesis(opts, db))

	conf, err := LoadConfiguration(db)
	assert.Nil(t, err)
	assert.Equal(t, DefaultConfiguration(), conf)

	l := NewLedger()
	acct, err := l.Account(db, owned)
	assert.Nil(t, err)
	assert.Equal(t, &swapvault.Account{Lamports: 7000000, Owner: progA, Data: []byte{1, 2, 3}}, acct)

	dup := swapvault.Options{
		"accounts": json.RawMessage(`[{"address": "` + alice.String() + `", "lamports": 1}]`),
	}
	assert.IsErr(t, errors.ErrDuplicate, Initializer{}.FromGenesis(dup, db))
}

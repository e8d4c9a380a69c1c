package delegation_test

import (
	"bytes"
	"testing"

	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/errors"
	"github.com/iov-one/swapvault/vaulttest"
	"github.com/iov-one/swapvault/vaulttest/assert"
	"github.com/iov-one/swapvault/x/delegation"
)

var ownerProgram = swapvault.Pubkey{0x0e, 0x0e}

// handoff is a chain where ownerProgram controls a derived subject
// account that was already recreated under the delegation authority.
type handoff struct {
	chain    *vaulttest.Chain
	payer    swapvault.Pubkey
	subject  swapvault.Authority
	buffer   swapvault.Pubkey
	record   swapvault.Pubkey
	metadata swapvault.Pubkey
	content  []byte
	args     delegation.DelegateArgs
}

const (
	opDelegate byte = iota
	opReturn
	opClose
)

func newHandoff(t *testing.T) *handoff {
	t.Helper()
	subject, err := swapvault.FindAuthority(ownerProgram, []byte("subject"))
	assert.Nil(t, err)

	h := &handoff{
		subject: subject,
		buffer:  vaulttest.RandomAddr(t),
		content: bytes.Repeat([]byte{0xab, 0xcd, 0x01}, 35),
		args: delegation.DelegateArgs{
			CommitFrequencyMs: 30000,
			Seeds:             [][]byte{[]byte("subject"), {subject.Bump()}},
		},
	}
	h.record, err = delegation.RecordAddress(subject.Address())
	assert.Nil(t, err)
	h.metadata, err = delegation.MetadataAddress(subject.Address())
	assert.Nil(t, err)

	h.chain = vaulttest.NewChain(t, delegation.RegisterProgram, func(r swapvault.ProgramRegistry) {
		r.Register(ownerProgram, swapvault.ProgramFunc(h.process))
	})
	h.payer = h.chain.NewWallet(10000000000).Pubkey

	rent := h.chain.Rent().MinimumBalance(len(h.content))
	assert.Nil(t, h.chain.Ledger.SetAccount(h.chain.DB, h.buffer, &swapvault.Account{
		Lamports: rent, Data: h.content, Owner: ownerProgram,
	}))
	assert.Nil(t, h.chain.Ledger.SetAccount(h.chain.DB, subject.Address(), &swapvault.Account{
		Lamports: rent, Data: make([]byte, len(h.content)), Owner: delegation.ProgramID,
	}))
	return h
}

func (h *handoff) process(ctx swapvault.Context, env swapvault.Env, accounts []*swapvault.AccountInfo, data []byte) error {
	subject := h.subject.Address()
	switch data[0] {
	case opDelegate:
		ix, err := delegation.Delegate(h.payer, subject, ownerProgram, h.buffer, h.record, h.metadata, &h.args)
		if err != nil {
			return err
		}
		return env.Invoke(ctx, ix, h.subject)
	case opReturn:
		return env.Invoke(ctx, delegation.Return(h.payer, subject, h.record), h.subject)
	default:
		return env.Invoke(ctx, delegation.Close(h.payer, subject, h.buffer, h.record, h.metadata), h.subject)
	}
}

func (h *handoff) exec(op byte) error {
	return h.chain.Exec([]swapvault.Pubkey{h.payer}, swapvault.Instruction{
		ProgramID: ownerProgram,
		Accounts: []swapvault.AccountMeta{
			swapvault.Writable(h.payer, true),
			swapvault.Writable(h.subject.Address(), false),
			swapvault.ReadOnly(ownerProgram, false),
			swapvault.ReadOnly(h.buffer, false),
			swapvault.Writable(h.record, false),
			swapvault.Writable(h.metadata, false),
			swapvault.ReadOnly(swapvault.SystemProgramID, false),
			swapvault.ReadOnly(delegation.ProgramID, false),
		},
		Data: []byte{op},
	})
}

func TestDelegationLifecycle(t *testing.T) {
	h := newHandoff(t)
	subject := h.subject.Address()
	subjectLamports := h.chain.Lamports(subject)

	assert.Nil(t, h.exec(opDelegate))

	acct := h.chain.Account(subject)
	assert.Equal(t, h.content, acct.Data)
	assert.Equal(t, delegation.ProgramID, acct.Owner)

	rec, err := delegation.DecodeRecord(h.chain.Account(h.record).Data)
	assert.Nil(t, err)
	assert.Equal(t, &delegation.Record{
		OwnerProgram:      ownerProgram,
		CommitFrequencyMs: 30000,
		Lamports:          subjectLamports,
	}, rec)
	meta, err := delegation.DecodeMetadata(h.chain.Account(h.metadata).Data)
	assert.Nil(t, err)
	assert.Equal(t, h.payer, meta.RentPayer)
	assert.Equal(t, h.args.Seeds, meta.Seeds)

	// a subject can be delegated only once
	assert.IsErr(t, errors.ErrAlreadyInitialized, h.exec(opDelegate))
	// bookkeeping stays while the subject is held by the authority
	assert.IsErr(t, errors.ErrInvalidState, h.exec(opClose))

	payerBefore := h.chain.Lamports(h.payer)
	assert.Nil(t, h.exec(opReturn))
	assert.Nil(t, h.chain.Account(subject))
	assert.Equal(t, payerBefore+subjectLamports, h.chain.Lamports(h.payer))

	// the owner program takes the subject back and drops its buffer
	assert.Nil(t, h.chain.Ledger.SetAccount(h.chain.DB, subject, &swapvault.Account{
		Lamports: subjectLamports, Data: h.content, Owner: ownerProgram,
	}))
	assert.Nil(t, h.chain.Ledger.SetAccount(h.chain.DB, h.buffer, &swapvault.Account{}))

	payerBefore = h.chain.Lamports(h.payer)
	bookkeeping := h.chain.Lamports(h.record) + h.chain.Lamports(h.metadata)
	assert.Nil(t, h.exec(opClose))
	assert.Nil(t, h.chain.Account(h.record))
	assert.Nil(t, h.chain.Account(h.metadata))
	assert.Equal(t, payerBefore+bookkeeping, h.chain.Lamports(h.payer))
}

func TestDelegateValidation(t *testing.T) {
	cases := map[string]struct {
		Mutate  func(h *handoff)
		WantErr *errors.Error
	}{
		"valid": {
			Mutate: func(h *handoff) {},
		},
		"seeds of another address": {
			Mutate: func(h *handoff) {
				h.args.Seeds = [][]byte{[]byte("other"), {h.subject.Bump()}}
			},
			WantErr: errors.ErrAddressMismatch,
		},
		"zero commit frequency": {
			Mutate: func(h *handoff) {
				h.args.CommitFrequencyMs = 0
			},
			WantErr: errors.ErrMalformedPayload,
		},
		"buffer of another program": {
			Mutate: func(h *handoff) {
				acct := h.chain.Account(h.buffer)
				acct.Owner = swapvault.Pubkey{1}
				_ = h.chain.Ledger.SetAccount(h.chain.DB, h.buffer, acct)
			},
			WantErr: errors.ErrInvalidState,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			h := newHandoff(t)
			tc.Mutate(h)
			assert.IsErr(t, tc.WantErr, h.exec(opDelegate))
		})
	}
}

func TestDelegateArgsEncoding(t *testing.T) {
	validator := swapvault.Pubkey{7, 7, 7}
	args := &delegation.DelegateArgs{
		CommitFrequencyMs: delegation.DefaultCommitFrequencyMs,
		Seeds:             [][]byte{[]byte("escrow"), {1, 2}},
		Validator:         &validator,
	}
	raw, err := args.Encode()
	assert.Nil(t, err)
	// u32 frequency, then a u32 counted list of u32 counted seeds
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff, 2, 0, 0, 0, 6, 0, 0, 0}, raw[:12])
	assert.Equal(t, 4+4+4+6+4+2+1+32, len(raw))

	back, err := delegation.DecodeDelegateArgs(raw)
	assert.Nil(t, err)
	assert.Equal(t, args, back)

	_, err = delegation.DecodeDelegateArgs(raw[:3])
	assert.IsErr(t, errors.ErrMalformedPayload, err)
}

package escrow

import (
	"bytes"

	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/errors"
	"github.com/iov-one/swapvault/x/custody"
	"github.com/iov-one/swapvault/x/delegation"
)

// DelegateHandler hands a dormant escrow account to the delegation
// authority. The escrow content is kept in a buffer account until
// Undelegate brings it back.
type DelegateHandler struct{}

var _ handler = DelegateHandler{}

type delegationAccounts struct {
	maker, escrow, buffer, record, metadata *swapvault.AccountInfo
	conf                                    Configuration
}

func (h DelegateHandler) Process(ctx swapvault.Context, env swapvault.Env, accounts []*swapvault.AccountInfo, payload []byte) error {
	a, args, auth, err := h.validate(env, accounts, payload)
	if err != nil {
		return err
	}
	handoff := &custody.Handoff{
		Payer:            a.maker,
		Subject:          a.escrow,
		Buffer:           a.buffer,
		SubjectAuthority: auth,
	}
	if err := custody.Evacuate(ctx, env, handoff, a.conf.DelegationProgram); err != nil {
		return err
	}

	ix, err := delegation.Delegate(a.maker.Key, a.escrow.Key, env.ProgramID(), a.buffer.Key, a.record.Key, a.metadata.Key, args)
	if err != nil {
		return err
	}
	ix.ProgramID = a.conf.DelegationProgram
	if err := env.Invoke(ctx, ix, auth); err != nil {
		return errors.Wrap(err, "delegate")
	}

	swapvault.GetLogger(ctx).Info("escrow delegated",
		"escrow", a.escrow.Key.String(),
		"authority", a.conf.DelegationProgram.String(),
		"commit_frequency_ms", args.CommitFrequencyMs)
	return nil
}

func (h DelegateHandler) validate(env swapvault.Env, accounts []*swapvault.AccountInfo, payload []byte) (*delegationAccounts, *delegation.DelegateArgs, swapvault.Authority, error) {
	var auth swapvault.Authority
	if err := expectAccounts(accounts, 8); err != nil {
		return nil, nil, auth, err
	}
	program := env.ProgramID()
	if accounts[2].Key != program {
		return nil, nil, auth, errors.Wrapf(errors.ErrUnauthorized, "%s is not the escrow program", accounts[2].Key)
	}
	a, err := delegationShape(env, accounts[0], accounts[1], accounts[3], accounts[4], accounts[5], accounts[6], accounts[7])
	if err != nil {
		return nil, nil, auth, err
	}
	args, err := delegation.DecodeDelegateArgs(payload)
	if err != nil {
		return nil, nil, auth, err
	}

	rec, err := loadRecord(env, a.escrow)
	if err != nil {
		return nil, nil, auth, err
	}
	if auth, err = rec.Authority(program, a.maker.Key, a.escrow.Key); err != nil {
		return nil, nil, auth, err
	}

	// The delegation authority recomputes the escrow address from the
	// full seed path, bump included.
	path := append(auth.Seeds(), []byte{auth.Bump()})
	switch {
	case len(args.Seeds) == 0:
		args.Seeds = path
	case !equalSeeds(args.Seeds, path):
		return nil, nil, auth, errors.Wrap(errors.ErrAddressMismatch, "seeds do not derive the escrow")
	}
	return a, args, auth, nil
}

// UndelegateHandler takes an escrow account back from the delegation
// authority and restores its content from the buffer.
type UndelegateHandler struct{}

var _ handler = UndelegateHandler{}

func (h UndelegateHandler) Process(ctx swapvault.Context, env swapvault.Env, accounts []*swapvault.AccountInfo, payload []byte) error {
	a, auth, err := h.validate(env, accounts, payload)
	if err != nil {
		return err
	}
	handoff := &custody.Handoff{
		Payer:            a.maker,
		Subject:          a.escrow,
		Buffer:           a.buffer,
		SubjectAuthority: auth,
	}
	release := func(ctx swapvault.Context, env swapvault.Env, h *custody.Handoff) error {
		ix := delegation.Return(h.Payer.Key, h.Subject.Key, a.record.Key)
		ix.ProgramID = a.conf.DelegationProgram
		return env.Invoke(ctx, ix, h.SubjectAuthority)
	}
	if err := custody.Repossess(ctx, env, handoff, custody.CustodianFunc(release)); err != nil {
		return err
	}

	ix := delegation.Close(a.maker.Key, a.escrow.Key, a.buffer.Key, a.record.Key, a.metadata.Key)
	ix.ProgramID = a.conf.DelegationProgram
	if err := env.Invoke(ctx, ix, auth); err != nil {
		return errors.Wrap(err, "close delegation")
	}

	swapvault.GetLogger(ctx).Info("escrow undelegated", "escrow", a.escrow.Key.String())
	return nil
}

func (h UndelegateHandler) validate(env swapvault.Env, accounts []*swapvault.AccountInfo, payload []byte) (*delegationAccounts, swapvault.Authority, error) {
	var auth swapvault.Authority
	if err := expectAccounts(accounts, 7); err != nil {
		return nil, auth, err
	}
	if err := expectEmpty(payload); err != nil {
		return nil, auth, err
	}
	a, err := delegationShape(env, accounts[0], accounts[1], accounts[2], accounts[3], accounts[4], accounts[5], accounts[6])
	if err != nil {
		return nil, auth, err
	}

	// While delegated the escrow account belongs to the authority, so the
	// maker is proven with the copy kept in the buffer.
	program := env.ProgramID()
	if !a.buffer.IsOwnedBy(program) {
		return nil, auth, errors.Wrapf(errors.ErrInvalidState, "escrow %s is not delegated", a.escrow.Key)
	}
	rec, err := ReadRecord(a.buffer.Data())
	if err != nil {
		return nil, auth, err
	}
	if auth, err = rec.Authority(program, a.maker.Key, a.escrow.Key); err != nil {
		return nil, auth, err
	}
	return a, auth, nil
}

func delegationShape(env swapvault.Env, maker, escrow, buffer, record, metadata, authority, sys *swapvault.AccountInfo) (*delegationAccounts, error) {
	if err := expectPrograms(sys, nil); err != nil {
		return nil, err
	}
	conf, err := loadConfiguration(env)
	if err != nil {
		return nil, err
	}
	if authority.Key != conf.DelegationProgram {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "%s is not the delegation program", authority.Key)
	}
	if !maker.IsSigner {
		return nil, errors.Wrap(errors.ErrUnauthorized, "maker must sign")
	}
	return &delegationAccounts{
		maker:    maker,
		escrow:   escrow,
		buffer:   buffer,
		record:   record,
		metadata: metadata,
		conf:     conf,
	}, nil
}

func equalSeeds(a, b [][]byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

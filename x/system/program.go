package system

import (
	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/errors"
)

// Program is the system program.
type Program struct{}

var _ swapvault.Program = Program{}

// RegisterProgram makes the system program callable.
func RegisterProgram(r swapvault.ProgramRegistry) {
	r.Register(ProgramID, Program{})
}

func (Program) Process(ctx swapvault.Context, env swapvault.Env, accounts []*swapvault.AccountInfo, data []byte) error {
	tag, payload, err := decodeTag(data)
	if err != nil {
		return err
	}
	switch tag {
	case TagCreateAccount:
		args, err := decodeCreateAccount(payload)
		if err != nil {
			return err
		}
		if len(accounts) != 2 {
			return errors.Wrapf(errors.ErrAccountShape, "create account takes 2 accounts, got %d", len(accounts))
		}
		return createAccount(ctx, accounts[0], accounts[1], args)
	case TagAssign:
		owner, err := decodeAssign(payload)
		if err != nil {
			return err
		}
		if len(accounts) != 1 {
			return errors.Wrapf(errors.ErrAccountShape, "assign takes 1 account, got %d", len(accounts))
		}
		return assign(accounts[0], owner)
	case TagTransfer:
		lamports, err := decodeTransfer(payload)
		if err != nil {
			return err
		}
		if len(accounts) != 2 {
			return errors.Wrapf(errors.ErrAccountShape, "transfer takes 2 accounts, got %d", len(accounts))
		}
		return transfer(accounts[0], accounts[1], lamports)
	default:
		return errors.Wrapf(errors.ErrMalformedPayload, "unknown system instruction %d", tag)
	}
}

func createAccount(ctx swapvault.Context, payer, acct *swapvault.AccountInfo, args createAccountArgs) error {
	if !payer.IsSigner || !acct.IsSigner {
		return errors.Wrap(errors.ErrUnauthorized, "payer and new account must sign")
	}
	if acct.Lamports() != 0 || acct.DataLen() != 0 || !acct.IsOwnedBy(ProgramID) {
		return errors.Wrapf(errors.ErrAlreadyInitialized, "address %s already in use", acct.Key)
	}
	if args.space > swapvault.MaxAccountDataLength {
		return errors.Wrapf(errors.ErrInput, "space %d", args.space)
	}
	if err := transfer(payer, acct, args.lamports); err != nil {
		return err
	}
	if err := acct.Realloc(int(args.space)); err != nil {
		return err
	}
	acct.Assign(args.owner)
	swapvault.GetLogger(ctx).Debug("account created",
		"account", acct.Key.String(), "owner", args.owner.String(), "space", args.space)
	return nil
}

func assign(acct *swapvault.AccountInfo, owner swapvault.Pubkey) error {
	if !acct.IsSigner {
		return errors.Wrap(errors.ErrUnauthorized, "account must sign")
	}
	if !acct.IsOwnedBy(ProgramID) {
		return errors.Wrapf(errors.ErrUnauthorized, "account %s is owned by %s", acct.Key, acct.Owner())
	}
	acct.Assign(owner)
	return nil
}

func transfer(from, to *swapvault.AccountInfo, lamports uint64) error {
	if !from.IsSigner {
		return errors.Wrap(errors.ErrUnauthorized, "sender must sign")
	}
	if !from.IsOwnedBy(ProgramID) || from.DataLen() != 0 {
		return errors.Wrapf(errors.ErrUnauthorized, "%s cannot be debited by the system program", from.Key)
	}
	return swapvault.MoveLamports(from, to, lamports)
}

package token

import (
	"math/bits"

	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/errors"
)

// Program is the token program.
type Program struct{}

var _ swapvault.Program = Program{}

// RegisterProgram makes the token program callable.
func RegisterProgram(r swapvault.ProgramRegistry) {
	r.Register(ProgramID, Program{})
}

func (Program) Process(ctx swapvault.Context, env swapvault.Env, accounts []*swapvault.AccountInfo, data []byte) error {
	if len(data) == 0 {
		return errors.Wrap(errors.ErrMalformedPayload, "empty token instruction")
	}
	payload := data[1:]
	switch data[0] {
	case TagInitializeMint:
		return initializeMint(accounts, payload)
	case TagInitializeAccount:
		return initializeAccount(accounts, payload)
	case TagTransfer:
		return transfer(ctx, accounts, payload)
	case TagMintTo:
		return mintTo(accounts, payload)
	case TagCloseAccount:
		return closeAccount(accounts, payload)
	default:
		return errors.Wrapf(errors.ErrMalformedPayload, "unknown token instruction %d", data[0])
	}
}

func expectAccounts(accounts []*swapvault.AccountInfo, n int, name string) error {
	if len(accounts) != n {
		return errors.Wrapf(errors.ErrAccountShape, "%s takes %d accounts, got %d", name, n, len(accounts))
	}
	return nil
}

func initializeMint(accounts []*swapvault.AccountInfo, payload []byte) error {
	if err := expectAccounts(accounts, 1, "initialize mint"); err != nil {
		return err
	}
	if len(payload) != 1+swapvault.PubkeyLength {
		return errors.Wrapf(errors.ErrMalformedPayload, "initialize mint payload of %d bytes", len(payload))
	}
	authority, err := decodePubkey(payload[1:])
	if err != nil {
		return err
	}
	info := accounts[0]
	if !info.IsOwnedBy(ProgramID) {
		return errors.Wrapf(errors.ErrAccountShape, "%s is not owned by the token program", info.Key)
	}
	m, err := DecodeMint(info.Data())
	if err != nil {
		return err
	}
	if m.Initialized {
		return errors.Wrapf(errors.ErrAlreadyInitialized, "mint %s", info.Key)
	}
	m = &Mint{Authority: &authority, Decimals: payload[0], Initialized: true}
	return m.Encode(info.Data())
}

func initializeAccount(accounts []*swapvault.AccountInfo, payload []byte) error {
	if err := expectAccounts(accounts, 2, "initialize account"); err != nil {
		return err
	}
	owner, err := decodePubkey(payload)
	if err != nil {
		return err
	}
	info, mintInfo := accounts[0], accounts[1]
	if !info.IsOwnedBy(ProgramID) {
		return errors.Wrapf(errors.ErrAccountShape, "%s is not owned by the token program", info.Key)
	}
	a, err := DecodeAccount(info.Data())
	if err != nil {
		return err
	}
	if a.State != Uninitialized {
		return errors.Wrapf(errors.ErrAlreadyInitialized, "token account %s", info.Key)
	}
	if _, err := LoadMint(mintInfo); err != nil {
		return err
	}
	a = &Account{Mint: mintInfo.Key, Owner: owner, State: Initialized}
	return a.Encode(info.Data())
}

func transfer(ctx swapvault.Context, accounts []*swapvault.AccountInfo, payload []byte) error {
	if err := expectAccounts(accounts, 3, "transfer"); err != nil {
		return err
	}
	amount, err := decodeAmount(payload)
	if err != nil {
		return err
	}
	srcInfo, dstInfo, authority := accounts[0], accounts[1], accounts[2]
	src, err := LoadAccount(srcInfo)
	if err != nil {
		return errors.Wrap(err, "source")
	}
	dst, err := LoadAccount(dstInfo)
	if err != nil {
		return errors.Wrap(err, "destination")
	}
	if src.Mint != dst.Mint {
		return errors.Wrapf(errors.ErrAddressMismatch, "source mint %s, destination mint %s", src.Mint, dst.Mint)
	}
	if err := authorize(src, authority); err != nil {
		return err
	}
	if src.Amount < amount {
		return errors.Wrapf(errors.ErrInsufficientFunds, "%s holds %d, need %d", srcInfo.Key, src.Amount, amount)
	}
	if srcInfo.Key == dstInfo.Key {
		return nil
	}
	sum, carry := bits.Add64(dst.Amount, amount, 0)
	if carry != 0 {
		return errors.Wrapf(errors.ErrOverflow, "crediting %s", dstInfo.Key)
	}
	src.Amount -= amount
	dst.Amount = sum
	if err := src.Encode(srcInfo.Data()); err != nil {
		return err
	}
	swapvault.GetLogger(ctx).Debug("token transfer",
		"from", srcInfo.Key.String(), "to", dstInfo.Key.String(), "amount", amount)
	return dst.Encode(dstInfo.Data())
}

func mintTo(accounts []*swapvault.AccountInfo, payload []byte) error {
	if err := expectAccounts(accounts, 3, "mint to"); err != nil {
		return err
	}
	amount, err := decodeAmount(payload)
	if err != nil {
		return err
	}
	mintInfo, dstInfo, authority := accounts[0], accounts[1], accounts[2]
	m, err := LoadMint(mintInfo)
	if err != nil {
		return err
	}
	dst, err := LoadAccount(dstInfo)
	if err != nil {
		return err
	}
	if dst.Mint != mintInfo.Key {
		return errors.Wrapf(errors.ErrAddressMismatch, "%s holds %s, not %s", dstInfo.Key, dst.Mint, mintInfo.Key)
	}
	if m.Authority == nil || *m.Authority != authority.Key || !authority.IsSigner {
		return errors.Wrapf(errors.ErrUnauthorized, "%s cannot mint %s", authority.Key, mintInfo.Key)
	}
	supply, carry := bits.Add64(m.Supply, amount, 0)
	if carry != 0 {
		return errors.Wrapf(errors.ErrOverflow, "supply of %s", mintInfo.Key)
	}
	m.Supply = supply
	dst.Amount += amount
	if err := m.Encode(mintInfo.Data()); err != nil {
		return err
	}
	return dst.Encode(dstInfo.Data())
}

func closeAccount(accounts []*swapvault.AccountInfo, payload []byte) error {
	if err := expectAccounts(accounts, 3, "close account"); err != nil {
		return err
	}
	if len(payload) != 0 {
		return errors.Wrapf(errors.ErrMalformedPayload, "close account payload of %d bytes", len(payload))
	}
	info, dest, authority := accounts[0], accounts[1], accounts[2]
	a, err := LoadAccount(info)
	if err != nil {
		return err
	}
	if err := authorize(a, authority); err != nil {
		return err
	}
	if a.Amount != 0 {
		return errors.Wrapf(errors.ErrInvalidState, "token account %s still holds %d", info.Key, a.Amount)
	}
	if info.Key == dest.Key {
		return errors.Wrap(errors.ErrInput, "cannot close an account into itself")
	}
	return swapvault.CloseAccount(info, dest)
}

// authorize checks that authority owns the token account and signed.
func authorize(a *Account, authority *swapvault.AccountInfo) error {
	if a.Owner != authority.Key {
		return errors.Wrapf(errors.ErrUnauthorized, "account owned by %s, not %s", a.Owner, authority.Key)
	}
	if !authority.IsSigner {
		return errors.Wrapf(errors.ErrUnauthorized, "%s did not sign", authority.Key)
	}
	return nil
}

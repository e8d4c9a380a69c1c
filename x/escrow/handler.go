package escrow

import (
	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/errors"
	"github.com/iov-one/swapvault/x/system"
	"github.com/iov-one/swapvault/x/token"
)

// handler processes a single instruction of the escrow program. Every
// handler validates all accounts before it changes any of them.
type handler interface {
	Process(ctx swapvault.Context, env swapvault.Env, accounts []*swapvault.AccountInfo, payload []byte) error
}

// MakeHandler opens an escrow and moves the offered tokens into its vault.
type MakeHandler struct{}

var _ handler = MakeHandler{}

type makeAccounts struct {
	maker, mintA, mintB, makerAtaA, vault, escrow *swapvault.AccountInfo
}

func (h MakeHandler) Process(ctx swapvault.Context, env swapvault.Env, accounts []*swapvault.AccountInfo, payload []byte) error {
	a, p, auth, err := h.validate(env, accounts, payload)
	if err != nil {
		return err
	}
	program := env.ProgramID()

	create := system.CreateAccount(a.maker.Key, a.escrow.Key, env.Rent().MinimumBalance(RecordLen), RecordLen, program)
	if err := env.Invoke(ctx, create, auth); err != nil {
		return errors.Wrap(err, "create escrow")
	}
	if err := Initialize(a.escrow.Data(), a.maker.Key, a.mintA.Key, a.mintB.Key, p.AmountB, p.Bump); err != nil {
		return err
	}
	deposit := token.Transfer(a.makerAtaA.Key, a.vault.Key, a.maker.Key, p.AmountA)
	if err := env.Invoke(ctx, deposit); err != nil {
		return errors.Wrap(err, "deposit")
	}

	swapvault.GetLogger(ctx).Info("escrow opened",
		"escrow", a.escrow.Key.String(),
		"maker", a.maker.Key.String(),
		"amount_a", p.AmountA,
		"amount_b", p.AmountB)
	return nil
}

func (h MakeHandler) validate(env swapvault.Env, accounts []*swapvault.AccountInfo, payload []byte) (*makeAccounts, *MakePayload, swapvault.Authority, error) {
	var auth swapvault.Authority
	if err := expectAccounts(accounts, 8); err != nil {
		return nil, nil, auth, err
	}
	a := makeAccounts{
		maker:     accounts[0],
		mintA:     accounts[1],
		mintB:     accounts[2],
		makerAtaA: accounts[3],
		vault:     accounts[4],
		escrow:    accounts[5],
	}
	if err := expectPrograms(accounts[6], accounts[7]); err != nil {
		return nil, nil, auth, err
	}
	p, err := DecodeMakePayload(payload)
	if err != nil {
		return nil, nil, auth, err
	}
	if !a.maker.IsSigner {
		return nil, nil, auth, errors.Wrap(errors.ErrUnauthorized, "maker must sign")
	}
	if p.AmountA == 0 || p.AmountB == 0 {
		return nil, nil, auth, errors.Wrap(errors.ErrMalformedPayload, "amounts must be positive")
	}
	for _, mint := range []*swapvault.AccountInfo{a.mintA, a.mintB} {
		if _, err := token.LoadMint(mint); err != nil {
			return nil, nil, auth, errors.Wrapf(err, "mint %s", mint.Key)
		}
	}

	program := env.ProgramID()
	auth, err = FindEscrow(program, a.maker.Key)
	if err != nil {
		return nil, nil, auth, err
	}
	// Only the canonical bump may be recorded.
	if p.Bump != auth.Bump() {
		return nil, nil, auth, errors.Wrapf(errors.ErrAddressMismatch, "bump %d is not canonical, want %d", p.Bump, auth.Bump())
	}
	if err := auth.Matches(a.escrow.Key); err != nil {
		return nil, nil, auth, errors.Wrap(err, "escrow")
	}
	vault, err := token.LoadAccount(a.vault)
	if err != nil {
		return nil, nil, auth, errors.Wrap(err, "vault")
	}
	if vault.Owner != a.escrow.Key {
		return nil, nil, auth, errors.Wrapf(errors.ErrAddressMismatch, "vault is held by %s", vault.Owner)
	}
	if vault.Mint != a.mintA.Key {
		return nil, nil, auth, errors.Wrapf(errors.ErrAddressMismatch, "vault holds %s", vault.Mint)
	}
	if a.escrow.IsOwnedBy(program) {
		return nil, nil, auth, errors.Wrapf(errors.ErrAlreadyInitialized, "escrow %s", a.escrow.Key)
	}
	return &a, p, auth, nil
}

// TakeHandler settles an escrow. The taker pays the maker before the vault
// is released; both happen in the same transaction.
type TakeHandler struct{}

var _ handler = TakeHandler{}

type takeAccounts struct {
	taker, maker, takerAtaA, takerAtaB, makerAtaB, vault, escrow *swapvault.AccountInfo
}

func (h TakeHandler) Process(ctx swapvault.Context, env swapvault.Env, accounts []*swapvault.AccountInfo, payload []byte) error {
	a, rec, auth, err := h.validate(env, accounts, payload)
	if err != nil {
		return err
	}

	payment := token.Transfer(a.takerAtaB.Key, a.makerAtaB.Key, a.taker.Key, rec.Amount)
	if err := env.Invoke(ctx, payment); err != nil {
		return errors.Wrap(err, "payment")
	}
	released, err := drainVault(ctx, env, a.vault, a.takerAtaA, a.maker, a.escrow, auth)
	if err != nil {
		return err
	}

	swapvault.GetLogger(ctx).Info("escrow taken",
		"escrow", a.escrow.Key.String(),
		"taker", a.taker.Key.String(),
		"paid", rec.Amount,
		"released", released)
	return nil
}

func (h TakeHandler) validate(env swapvault.Env, accounts []*swapvault.AccountInfo, payload []byte) (*takeAccounts, *Record, swapvault.Authority, error) {
	var auth swapvault.Authority
	if err := expectAccounts(accounts, 11); err != nil {
		return nil, nil, auth, err
	}
	if err := expectEmpty(payload); err != nil {
		return nil, nil, auth, err
	}
	a := takeAccounts{
		taker:     accounts[0],
		maker:     accounts[1],
		takerAtaA: accounts[4],
		takerAtaB: accounts[5],
		makerAtaB: accounts[6],
		vault:     accounts[7],
		escrow:    accounts[8],
	}
	mintA, mintB := accounts[2], accounts[3]
	if err := expectPrograms(accounts[10], accounts[9]); err != nil {
		return nil, nil, auth, err
	}
	if !a.taker.IsSigner {
		return nil, nil, auth, errors.Wrap(errors.ErrUnauthorized, "taker must sign")
	}

	rec, err := loadRecord(env, a.escrow)
	if err != nil {
		return nil, nil, auth, err
	}
	if rec.MintA != mintA.Key {
		return nil, nil, auth, errors.Wrapf(errors.ErrAddressMismatch, "escrow offers %s, got %s", rec.MintA, mintA.Key)
	}
	if rec.MintB != mintB.Key {
		return nil, nil, auth, errors.Wrapf(errors.ErrAddressMismatch, "escrow asks for %s, got %s", rec.MintB, mintB.Key)
	}
	auth, err = rec.Authority(env.ProgramID(), a.maker.Key, a.escrow.Key)
	if err != nil {
		return nil, nil, auth, err
	}

	makerAtaB, err := token.LoadAccount(a.makerAtaB)
	if err != nil {
		return nil, nil, auth, errors.Wrap(err, "maker ata b")
	}
	if makerAtaB.Mint != rec.MintB {
		return nil, nil, auth, errors.Wrapf(errors.ErrAddressMismatch, "maker ata b holds %s", makerAtaB.Mint)
	}
	if makerAtaB.Owner != rec.Maker {
		return nil, nil, auth, errors.Wrapf(errors.ErrAddressMismatch, "maker ata b is held by %s", makerAtaB.Owner)
	}
	takerAtaB, err := token.LoadAccount(a.takerAtaB)
	if err != nil {
		return nil, nil, auth, errors.Wrap(err, "taker ata b")
	}
	if takerAtaB.Mint != rec.MintB {
		return nil, nil, auth, errors.Wrapf(errors.ErrAddressMismatch, "taker ata b holds %s", takerAtaB.Mint)
	}
	return &a, rec, auth, nil
}

// RefundHandler cancels an escrow. The maker is proven by deriving the
// escrow address from the supplied maker and the recorded bump.
type RefundHandler struct{}

var _ handler = RefundHandler{}

type refundAccounts struct {
	maker, makerAtaA, vault, escrow *swapvault.AccountInfo
}

func (h RefundHandler) Process(ctx swapvault.Context, env swapvault.Env, accounts []*swapvault.AccountInfo, payload []byte) error {
	a, auth, err := h.validate(env, accounts, payload)
	if err != nil {
		return err
	}
	refunded, err := drainVault(ctx, env, a.vault, a.makerAtaA, a.maker, a.escrow, auth)
	if err != nil {
		return err
	}
	swapvault.GetLogger(ctx).Info("escrow refunded",
		"escrow", a.escrow.Key.String(),
		"refunded", refunded)
	return nil
}

func (h RefundHandler) validate(env swapvault.Env, accounts []*swapvault.AccountInfo, payload []byte) (*refundAccounts, swapvault.Authority, error) {
	var auth swapvault.Authority
	if err := expectAccounts(accounts, 7); err != nil {
		return nil, auth, err
	}
	if err := expectEmpty(payload); err != nil {
		return nil, auth, err
	}
	a := refundAccounts{
		maker:     accounts[0],
		makerAtaA: accounts[2],
		vault:     accounts[3],
		escrow:    accounts[4],
	}
	mintA := accounts[1]
	if err := expectPrograms(accounts[6], accounts[5]); err != nil {
		return nil, auth, err
	}
	if !a.maker.IsSigner {
		return nil, auth, errors.Wrap(errors.ErrUnauthorized, "maker must sign")
	}

	rec, err := loadRecord(env, a.escrow)
	if err != nil {
		return nil, auth, err
	}
	if rec.MintA != mintA.Key {
		return nil, auth, errors.Wrapf(errors.ErrAddressMismatch, "escrow offers %s, got %s", rec.MintA, mintA.Key)
	}
	auth, err = rec.Authority(env.ProgramID(), a.maker.Key, a.escrow.Key)
	if err != nil {
		return nil, auth, err
	}
	return &a, auth, nil
}

// drainVault moves the whole vault to dest, then closes the vault and the
// escrow account in favour of the maker. It returns the amount released.
func drainVault(
	ctx swapvault.Context,
	env swapvault.Env,
	vault, dest, maker, escrow *swapvault.AccountInfo,
	auth swapvault.Authority,
) (uint64, error) {
	v, err := token.LoadAccount(vault)
	if err != nil {
		return 0, errors.Wrap(err, "vault")
	}
	if err := env.Invoke(ctx, token.Transfer(vault.Key, dest.Key, escrow.Key, v.Amount), auth); err != nil {
		return 0, errors.Wrap(err, "release vault")
	}
	if err := env.Invoke(ctx, token.CloseAccount(vault.Key, maker.Key, escrow.Key), auth); err != nil {
		return 0, errors.Wrap(err, "close vault")
	}
	if err := swapvault.CloseAccount(escrow, maker); err != nil {
		return 0, errors.Wrap(err, "close escrow")
	}
	return v.Amount, nil
}

// loadRecord reads the record of an escrow account held by this program.
func loadRecord(env swapvault.Env, escrow *swapvault.AccountInfo) (*Record, error) {
	rec, err := ReadRecord(escrow.Data())
	if err != nil {
		return nil, err
	}
	if !escrow.IsOwnedBy(env.ProgramID()) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "escrow %s is held by %s", escrow.Key, escrow.Owner())
	}
	return rec, nil
}

func expectAccounts(accounts []*swapvault.AccountInfo, n int) error {
	if len(accounts) != n {
		return errors.Wrapf(errors.ErrAccountShape, "want %d accounts, got %d", n, len(accounts))
	}
	return nil
}

func expectEmpty(payload []byte) error {
	if len(payload) != 0 {
		return errors.Wrapf(errors.ErrMalformedPayload, "unexpected payload of %d bytes", len(payload))
	}
	return nil
}

// expectPrograms checks the keys of the collaborator program accounts. A
// nil account is not checked.
func expectPrograms(sys, tok *swapvault.AccountInfo) error {
	if sys != nil && sys.Key != system.ProgramID {
		return errors.Wrapf(errors.ErrUnauthorized, "%s is not the system program", sys.Key)
	}
	if tok != nil && tok.Key != token.ProgramID {
		return errors.Wrapf(errors.ErrUnauthorized, "%s is not the token program", tok.Key)
	}
	return nil
}

package custody

import (
	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/errors"
	"github.com/iov-one/swapvault/x/system"
)

// BufferSeed prefixes the seed path of every buffer account.
const BufferSeed = "buffer"

// Handoff names the accounts of a single custody transfer. All of them must
// be writable and Payer must sign.
type Handoff struct {
	// Payer funds the accounts created during the transfer and receives
	// the balance of every account closed by it.
	Payer   *swapvault.AccountInfo
	Subject *swapvault.AccountInfo
	Buffer  *swapvault.AccountInfo

	// SubjectAuthority signs for Subject whenever it is recreated.
	SubjectAuthority swapvault.Authority
}

// Custodian takes a subject back from its temporary owner. When Release
// returns the subject must be empty and owned by the system program.
type Custodian interface {
	Release(ctx swapvault.Context, env swapvault.Env, h *Handoff) error
}

// CustodianFunc adapts a function to the Custodian interface.
type CustodianFunc func(ctx swapvault.Context, env swapvault.Env, h *Handoff) error

func (fn CustodianFunc) Release(ctx swapvault.Context, env swapvault.Env, h *Handoff) error {
	return fn(ctx, env, h)
}

// BufferAuthority derives the buffer account of subject under program.
func BufferAuthority(program, subject swapvault.Pubkey) (swapvault.Authority, error) {
	return swapvault.FindAuthority(program, []byte(BufferSeed), subject[:])
}

// BufferAddress returns the address of the buffer account of subject.
func BufferAddress(program, subject swapvault.Pubkey) (swapvault.Pubkey, error) {
	auth, err := BufferAuthority(program, subject)
	return auth.Address(), err
}

// Evacuate copies the subject into its buffer and recreates the subject,
// empty and at the same size, under the custodian. The running program must
// own the subject.
func Evacuate(ctx swapvault.Context, env swapvault.Env, h *Handoff, custodian swapvault.Pubkey) error {
	program := env.ProgramID()
	bufAuth, err := h.check(program)
	if err != nil {
		return err
	}
	if !h.Subject.IsOwnedBy(program) {
		return errors.Wrapf(errors.ErrUnauthorized, "subject %s is owned by %s", h.Subject.Key, h.Subject.Owner())
	}
	if custodian == program || custodian == system.ProgramID {
		return errors.Wrapf(errors.ErrInput, "%s cannot hold custody", custodian)
	}

	size := h.Subject.DataLen()
	if err := h.prepareBuffer(ctx, env, bufAuth, size); err != nil {
		return errors.Wrap(err, "buffer")
	}
	copy(h.Buffer.Data(), h.Subject.Data())

	lamports := h.Subject.Lamports()
	if err := swapvault.CloseAccount(h.Subject, h.Payer); err != nil {
		return err
	}
	create := system.CreateAccount(h.Payer.Key, h.Subject.Key, env.Rent().MinimumBalance(size), uint64(size), custodian)
	if err := env.Invoke(ctx, create, h.SubjectAuthority); err != nil {
		return errors.Wrap(err, "recreate subject")
	}

	swapvault.GetLogger(ctx).Debug("subject evacuated",
		"subject", h.Subject.Key.String(),
		"buffer", h.Buffer.Key.String(),
		"custodian", custodian.String(),
		"size", size,
		"lamports", lamports)
	return nil
}

// prepareBuffer makes the buffer a program owned, rent exempt account of
// size bytes. A buffer the program already owns is reused as scratch space.
func (h *Handoff) prepareBuffer(ctx swapvault.Context, env swapvault.Env, auth swapvault.Authority, size int) error {
	program := env.ProgramID()
	need := env.Rent().MinimumBalance(size)

	switch {
	case h.Buffer.IsOwnedBy(program):
		if err := h.Buffer.Realloc(size); err != nil {
			return err
		}
		if h.Buffer.Lamports() < need {
			topUp := system.Transfer(h.Payer.Key, h.Buffer.Key, need-h.Buffer.Lamports())
			if err := env.Invoke(ctx, topUp); err != nil {
				return err
			}
		}
		return nil
	case h.Buffer.Lamports() == 0 && h.Buffer.DataLen() == 0:
		return env.Invoke(ctx, system.CreateAccount(h.Payer.Key, h.Buffer.Key, need, uint64(size), program), auth)
	default:
		return errors.Wrapf(errors.ErrAlreadyInitialized, "%s is owned by %s", h.Buffer.Key, h.Buffer.Owner())
	}
}

// Repossess asks the custodian to release the subject, recreates it under
// the running program with the content of the buffer and closes the buffer.
func Repossess(ctx swapvault.Context, env swapvault.Env, h *Handoff, c Custodian) error {
	program := env.ProgramID()
	if _, err := h.check(program); err != nil {
		return err
	}
	if !h.Buffer.IsOwnedBy(program) {
		return errors.Wrapf(errors.ErrInvalidState, "buffer %s holds no evacuated copy", h.Buffer.Key)
	}
	if h.Subject.IsOwnedBy(program) {
		return errors.Wrapf(errors.ErrInvalidState, "subject %s was not evacuated", h.Subject.Key)
	}

	if err := c.Release(ctx, env, h); err != nil {
		return errors.Wrap(err, "release subject")
	}
	if h.Subject.Lamports() != 0 || h.Subject.DataLen() != 0 || !h.Subject.IsOwnedBy(system.ProgramID) {
		return errors.Wrapf(errors.ErrInvalidState, "subject %s was not released", h.Subject.Key)
	}

	size := h.Buffer.DataLen()
	create := system.CreateAccount(h.Payer.Key, h.Subject.Key, env.Rent().MinimumBalance(size), uint64(size), program)
	if err := env.Invoke(ctx, create, h.SubjectAuthority); err != nil {
		return errors.Wrap(err, "recreate subject")
	}
	copy(h.Subject.Data(), h.Buffer.Data())
	if err := swapvault.CloseAccount(h.Buffer, h.Payer); err != nil {
		return err
	}

	swapvault.GetLogger(ctx).Debug("subject repossessed",
		"subject", h.Subject.Key.String(),
		"buffer", h.Buffer.Key.String(),
		"size", size)
	return nil
}

// check proves that the handoff accounts are the ones derived for program.
func (h *Handoff) check(program swapvault.Pubkey) (swapvault.Authority, error) {
	if h.Payer == nil || h.Subject == nil || h.Buffer == nil {
		return swapvault.Authority{}, errors.Wrap(errors.ErrHuman, "incomplete handoff")
	}
	if h.SubjectAuthority.Program() != program {
		return swapvault.Authority{}, errors.Wrapf(errors.ErrUnauthorized, "subject authority of %s", h.SubjectAuthority.Program())
	}
	if err := h.SubjectAuthority.Matches(h.Subject.Key); err != nil {
		return swapvault.Authority{}, errors.Wrap(err, "subject")
	}
	auth, err := BufferAuthority(program, h.Subject.Key)
	if err != nil {
		return swapvault.Authority{}, err
	}
	if err := auth.Matches(h.Buffer.Key); err != nil {
		return swapvault.Authority{}, errors.Wrap(err, "buffer")
	}
	if !h.Payer.IsSigner {
		return swapvault.Authority{}, errors.Wrapf(errors.ErrUnauthorized, "payer %s must sign", h.Payer.Key)
	}
	return auth, nil
}

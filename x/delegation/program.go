package delegation

import (
	"encoding/binary"

	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/errors"
	"github.com/iov-one/swapvault/x/system"
)

// Program is the delegation authority.
type Program struct{}

var _ swapvault.Program = Program{}

// RegisterProgram makes the delegation authority callable.
func RegisterProgram(r swapvault.ProgramRegistry) {
	r.Register(ProgramID, Program{})
}

func (Program) Process(ctx swapvault.Context, env swapvault.Env, accounts []*swapvault.AccountInfo, data []byte) error {
	if len(data) < discLen {
		return errors.Wrapf(errors.ErrMalformedPayload, "delegation instruction of %d bytes", len(data))
	}
	payload := data[discLen:]
	switch disc := binary.LittleEndian.Uint64(data); disc {
	case DiscDelegate:
		return delegate(ctx, env, accounts, payload)
	case DiscReturn:
		return release(ctx, accounts, payload)
	case DiscClose:
		return closeDelegation(ctx, accounts, payload)
	default:
		return errors.Wrapf(errors.ErrMalformedPayload, "unknown delegation instruction %d", disc)
	}
}

func delegate(ctx swapvault.Context, env swapvault.Env, accounts []*swapvault.AccountInfo, payload []byte) error {
	if len(accounts) != 7 {
		return errors.Wrapf(errors.ErrAccountShape, "delegate takes 7 accounts, got %d", len(accounts))
	}
	payer, subject, ownerProgram, buffer, record, metadata, sysProgram :=
		accounts[0], accounts[1], accounts[2], accounts[3], accounts[4], accounts[5], accounts[6]

	args, err := DecodeDelegateArgs(payload)
	if err != nil {
		return err
	}
	if args.CommitFrequencyMs == 0 {
		return errors.Wrap(errors.ErrMalformedPayload, "commit frequency must be positive")
	}
	if sysProgram.Key != system.ProgramID {
		return errors.Wrapf(errors.ErrUnauthorized, "%s is not the system program", sysProgram.Key)
	}
	if !payer.IsSigner || !subject.IsSigner {
		return errors.Wrap(errors.ErrUnauthorized, "payer and subject must sign")
	}
	if !subject.IsOwnedBy(ProgramID) {
		return errors.Wrapf(errors.ErrInvalidState, "subject %s is owned by %s", subject.Key, subject.Owner())
	}
	derived, err := swapvault.CreateProgramAddress(args.Seeds, ownerProgram.Key)
	if err != nil || derived != subject.Key {
		return errors.Wrapf(errors.ErrAddressMismatch, "seeds do not derive %s under %s", subject.Key, ownerProgram.Key)
	}
	if !buffer.IsOwnedBy(ownerProgram.Key) || buffer.DataLen() != subject.DataLen() {
		return errors.Wrapf(errors.ErrInvalidState, "buffer %s does not hold a copy of %s", buffer.Key, subject.Key)
	}

	recordAuth, err := recordAuthority(subject.Key)
	if err != nil {
		return err
	}
	if err := recordAuth.Matches(record.Key); err != nil {
		return errors.Wrap(err, "delegation record")
	}
	metaAuth, err := metadataAuthority(subject.Key)
	if err != nil {
		return err
	}
	if err := metaAuth.Matches(metadata.Key); err != nil {
		return errors.Wrap(err, "delegation metadata")
	}

	meta := Metadata{RentPayer: payer.Key, Seeds: args.Seeds}
	rawMeta, err := meta.Encode()
	if err != nil {
		return err
	}
	rent := env.Rent()
	err = env.Invoke(ctx, system.CreateAccount(payer.Key, record.Key, rent.MinimumBalance(RecordLen), RecordLen, ProgramID), recordAuth)
	if err != nil {
		return errors.Wrap(err, "create delegation record")
	}
	err = env.Invoke(ctx, system.CreateAccount(payer.Key, metadata.Key, rent.MinimumBalance(len(rawMeta)), uint64(len(rawMeta)), ProgramID), metaAuth)
	if err != nil {
		return errors.Wrap(err, "create delegation metadata")
	}

	rec := Record{
		OwnerProgram:      ownerProgram.Key,
		CommitFrequencyMs: args.CommitFrequencyMs,
		Validator:         args.Validator,
		Lamports:          subject.Lamports(),
	}
	if err := rec.Encode(record.Data()); err != nil {
		return err
	}
	copy(metadata.Data(), rawMeta)
	copy(subject.Data(), buffer.Data())

	swapvault.GetLogger(ctx).Info("account delegated",
		"subject", subject.Key.String(), "owner", ownerProgram.Key.String(), "commit_frequency_ms", args.CommitFrequencyMs)
	return nil
}

func release(ctx swapvault.Context, accounts []*swapvault.AccountInfo, payload []byte) error {
	if len(accounts) != 3 {
		return errors.Wrapf(errors.ErrAccountShape, "return takes 3 accounts, got %d", len(accounts))
	}
	if len(payload) != 0 {
		return errors.Wrapf(errors.ErrMalformedPayload, "return payload of %d bytes", len(payload))
	}
	payer, subject, record := accounts[0], accounts[1], accounts[2]
	if !subject.IsSigner {
		return errors.Wrap(errors.ErrUnauthorized, "subject must sign")
	}
	if !subject.IsOwnedBy(ProgramID) {
		return errors.Wrapf(errors.ErrInvalidState, "subject %s is not delegated", subject.Key)
	}
	if _, err := loadRecord(subject.Key, record); err != nil {
		return err
	}
	if err := swapvault.CloseAccount(subject, payer); err != nil {
		return err
	}
	swapvault.GetLogger(ctx).Info("account returned", "subject", subject.Key.String())
	return nil
}

func closeDelegation(ctx swapvault.Context, accounts []*swapvault.AccountInfo, payload []byte) error {
	if len(accounts) != 5 {
		return errors.Wrapf(errors.ErrAccountShape, "close takes 5 accounts, got %d", len(accounts))
	}
	if len(payload) != 0 {
		return errors.Wrapf(errors.ErrMalformedPayload, "close payload of %d bytes", len(payload))
	}
	payer, subject, buffer, record, metadata := accounts[0], accounts[1], accounts[2], accounts[3], accounts[4]
	if !subject.IsSigner {
		return errors.Wrap(errors.ErrUnauthorized, "subject must sign")
	}
	rec, err := loadRecord(subject.Key, record)
	if err != nil {
		return err
	}
	if !subject.IsOwnedBy(rec.OwnerProgram) {
		return errors.Wrapf(errors.ErrInvalidState, "subject %s is not back with %s", subject.Key, rec.OwnerProgram)
	}
	if buffer.Lamports() != 0 || buffer.DataLen() != 0 {
		return errors.Wrapf(errors.ErrInvalidState, "buffer %s was not emptied", buffer.Key)
	}

	metaAuth, err := metadataAuthority(subject.Key)
	if err != nil {
		return err
	}
	if err := metaAuth.Matches(metadata.Key); err != nil {
		return errors.Wrap(err, "delegation metadata")
	}
	if !metadata.IsOwnedBy(ProgramID) {
		return errors.Wrapf(errors.ErrNotFound, "delegation metadata of %s", subject.Key)
	}
	meta, err := DecodeMetadata(metadata.Data())
	if err != nil {
		return err
	}
	if meta.RentPayer != payer.Key {
		return errors.Wrapf(errors.ErrUnauthorized, "rent was paid by %s", meta.RentPayer)
	}

	if err := swapvault.CloseAccount(record, payer); err != nil {
		return err
	}
	if err := swapvault.CloseAccount(metadata, payer); err != nil {
		return err
	}
	swapvault.GetLogger(ctx).Info("delegation closed", "subject", subject.Key.String())
	return nil
}

func loadRecord(subject swapvault.Pubkey, record *swapvault.AccountInfo) (*Record, error) {
	auth, err := recordAuthority(subject)
	if err != nil {
		return nil, err
	}
	if err := auth.Matches(record.Key); err != nil {
		return nil, errors.Wrap(err, "delegation record")
	}
	if !record.IsOwnedBy(ProgramID) {
		return nil, errors.Wrapf(errors.ErrNotFound, "delegation record of %s", subject)
	}
	return DecodeRecord(record.Data())
}

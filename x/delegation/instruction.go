package delegation

import (
	"encoding/binary"
	"math"

	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/errors"
	"github.com/near/borsh-go"
)

// ProgramID is the well known address of the delegation authority.
var ProgramID = swapvault.MustParsePubkey("DELeGGvXpWV2fqJUhqcF5ZSYMS4JTLjteaAMARRSaeSh")

// Instruction discriminators, encoded as u64 little endian.
const (
	DiscDelegate uint64 = 0
	DiscReturn   uint64 = 1
	DiscClose    uint64 = 2
)

const discLen = 8

// DefaultCommitFrequencyMs means the subject state is never committed back
// while delegated.
const DefaultCommitFrequencyMs uint32 = math.MaxUint32

// DelegateArgs configures a delegation.
type DelegateArgs struct {
	CommitFrequencyMs uint32
	// Seeds is the full derivation path of the subject under its owner
	// program, bump included.
	Seeds [][]byte
	// Validator optionally pins the validator allowed to process the
	// subject while delegated.
	Validator *swapvault.Pubkey
}

// Encode returns the borsh form of the arguments.
func (a *DelegateArgs) Encode() ([]byte, error) {
	raw, err := borsh.Serialize(*a)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "serialize delegate args: %s", err)
	}
	return raw, nil
}

// DecodeDelegateArgs parses the borsh form of the arguments.
func DecodeDelegateArgs(raw []byte) (*DelegateArgs, error) {
	var a DelegateArgs
	if err := borsh.Deserialize(&a, raw); err != nil {
		return nil, errors.Wrapf(errors.ErrMalformedPayload, "delegate args: %s", err)
	}
	return &a, nil
}

// RecordAddress returns the delegation record address of subject.
func RecordAddress(subject swapvault.Pubkey) (swapvault.Pubkey, error) {
	auth, err := recordAuthority(subject)
	return auth.Address(), err
}

// MetadataAddress returns the delegation metadata address of subject.
func MetadataAddress(subject swapvault.Pubkey) (swapvault.Pubkey, error) {
	auth, err := metadataAuthority(subject)
	return auth.Address(), err
}

func recordAuthority(subject swapvault.Pubkey) (swapvault.Authority, error) {
	return swapvault.FindAuthority(ProgramID, []byte("delegation"), subject[:])
}

func metadataAuthority(subject swapvault.Pubkey) (swapvault.Authority, error) {
	return swapvault.FindAuthority(ProgramID, []byte("delegation-metadata"), subject[:])
}

func withDisc(disc uint64, payload []byte) []byte {
	data := make([]byte, discLen, discLen+len(payload))
	binary.LittleEndian.PutUint64(data, disc)
	return append(data, payload...)
}

// Delegate hands subject over to the authority. subject must already be
// owned by the authority and signed for by its owner program, and buffer
// must hold a copy of its data owned by ownerProgram.
func Delegate(payer, subject, ownerProgram, buffer, record, metadata swapvault.Pubkey, args *DelegateArgs) (swapvault.Instruction, error) {
	payload, err := args.Encode()
	if err != nil {
		return swapvault.Instruction{}, err
	}
	return swapvault.Instruction{
		ProgramID: ProgramID,
		Accounts: []swapvault.AccountMeta{
			swapvault.Writable(payer, true),
			swapvault.Writable(subject, true),
			swapvault.ReadOnly(ownerProgram, false),
			swapvault.ReadOnly(buffer, false),
			swapvault.Writable(record, false),
			swapvault.Writable(metadata, false),
			swapvault.ReadOnly(swapvault.SystemProgramID, false),
		},
		Data: withDisc(DiscDelegate, payload),
	}, nil
}

// Return releases subject to the system program. Its lamports go to payer.
func Return(payer, subject, record swapvault.Pubkey) swapvault.Instruction {
	return swapvault.Instruction{
		ProgramID: ProgramID,
		Accounts: []swapvault.AccountMeta{
			swapvault.Writable(payer, false),
			swapvault.Writable(subject, true),
			swapvault.ReadOnly(record, false),
		},
		Data: withDisc(DiscReturn, nil),
	}
}

// Close removes the delegation record and metadata of a subject that is
// owned by its original program again.
func Close(payer, subject, buffer, record, metadata swapvault.Pubkey) swapvault.Instruction {
	return swapvault.Instruction{
		ProgramID: ProgramID,
		Accounts: []swapvault.AccountMeta{
			swapvault.Writable(payer, true),
			swapvault.ReadOnly(subject, true),
			swapvault.ReadOnly(buffer, false),
			swapvault.Writable(record, false),
			swapvault.Writable(metadata, false),
		},
		Data: withDisc(DiscClose, nil),
	}
}

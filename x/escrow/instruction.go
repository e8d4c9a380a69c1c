package escrow

import (
	"encoding/binary"

	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/errors"
	"github.com/iov-one/swapvault/x/custody"
	"github.com/iov-one/swapvault/x/delegation"
	"github.com/iov-one/swapvault/x/system"
	"github.com/iov-one/swapvault/x/token"
)

// ProgramID is the id the escrow program is deployed under.
var ProgramID = swapvault.MustParsePubkey("A24MN2mj3aBpDLRhY6FonnbTuayv7oRqhva2R2hUuyqx")

// Instruction tags, the first byte of the instruction data.
const (
	TagMake       uint8 = 0
	TagTake       uint8 = 1
	TagRefund     uint8 = 2
	TagDelegate   uint8 = 3
	TagUndelegate uint8 = 4
)

// EscrowSeed prefixes the seed path of every escrow account.
const EscrowSeed = "escrow"

// DeriveEscrow recomputes the escrow authority of maker for a known bump.
func DeriveEscrow(program, maker swapvault.Pubkey, bump uint8) (swapvault.Authority, error) {
	return swapvault.DeriveAuthority(program, bump, []byte(EscrowSeed), maker[:])
}

// FindEscrow returns the escrow authority of maker with the canonical bump.
func FindEscrow(program, maker swapvault.Pubkey) (swapvault.Authority, error) {
	return swapvault.FindAuthority(program, []byte(EscrowSeed), maker[:])
}

// MakePayloadLen is the size of the Make instruction data, tag excluded.
const MakePayloadLen = 1 + 8 + 8

// MakePayload opens an escrow offering AmountA of mint a for AmountB of
// mint b.
type MakePayload struct {
	Bump    uint8
	AmountA uint64
	AmountB uint64
}

func (p MakePayload) encode() []byte {
	data := make([]byte, 1+MakePayloadLen)
	data[0] = TagMake
	data[1] = p.Bump
	binary.LittleEndian.PutUint64(data[2:10], p.AmountA)
	binary.LittleEndian.PutUint64(data[10:18], p.AmountB)
	return data
}

// DecodeMakePayload parses the Make instruction data that follows the tag.
func DecodeMakePayload(raw []byte) (*MakePayload, error) {
	if len(raw) != MakePayloadLen {
		return nil, errors.Wrapf(errors.ErrMalformedPayload, "make payload of %d bytes", len(raw))
	}
	return &MakePayload{
		Bump:    raw[0],
		AmountA: binary.LittleEndian.Uint64(raw[1:9]),
		AmountB: binary.LittleEndian.Uint64(raw[9:17]),
	}, nil
}

// MakeAccounts are the accounts of a Make instruction. The vault must be a
// token account of MintA held by Escrow.
type MakeAccounts struct {
	Maker     swapvault.Pubkey
	MintA     swapvault.Pubkey
	MintB     swapvault.Pubkey
	MakerAtaA swapvault.Pubkey
	Vault     swapvault.Pubkey
	Escrow    swapvault.Pubkey
}

// Make opens an escrow.
func Make(a MakeAccounts, p MakePayload) swapvault.Instruction {
	return swapvault.Instruction{
		ProgramID: ProgramID,
		Accounts: []swapvault.AccountMeta{
			swapvault.Writable(a.Maker, true),
			swapvault.ReadOnly(a.MintA, false),
			swapvault.ReadOnly(a.MintB, false),
			swapvault.Writable(a.MakerAtaA, false),
			swapvault.Writable(a.Vault, false),
			swapvault.Writable(a.Escrow, false),
			swapvault.ReadOnly(system.ProgramID, false),
			swapvault.ReadOnly(token.ProgramID, false),
		},
		Data: p.encode(),
	}
}

// TakeAccounts are the accounts of a Take instruction.
type TakeAccounts struct {
	Taker     swapvault.Pubkey
	Maker     swapvault.Pubkey
	MintA     swapvault.Pubkey
	MintB     swapvault.Pubkey
	TakerAtaA swapvault.Pubkey
	TakerAtaB swapvault.Pubkey
	MakerAtaB swapvault.Pubkey
	Vault     swapvault.Pubkey
	Escrow    swapvault.Pubkey
}

// Take settles an escrow: the taker pays the maker and receives the vault.
func Take(a TakeAccounts) swapvault.Instruction {
	return swapvault.Instruction{
		ProgramID: ProgramID,
		Accounts: []swapvault.AccountMeta{
			swapvault.Writable(a.Taker, true),
			swapvault.Writable(a.Maker, false),
			swapvault.ReadOnly(a.MintA, false),
			swapvault.ReadOnly(a.MintB, false),
			swapvault.Writable(a.TakerAtaA, false),
			swapvault.Writable(a.TakerAtaB, false),
			swapvault.Writable(a.MakerAtaB, false),
			swapvault.Writable(a.Vault, false),
			swapvault.Writable(a.Escrow, false),
			swapvault.ReadOnly(token.ProgramID, false),
			swapvault.ReadOnly(system.ProgramID, false),
		},
		Data: []byte{TagTake},
	}
}

// RefundAccounts are the accounts of a Refund instruction.
type RefundAccounts struct {
	Maker     swapvault.Pubkey
	MintA     swapvault.Pubkey
	MakerAtaA swapvault.Pubkey
	Vault     swapvault.Pubkey
	Escrow    swapvault.Pubkey
}

// Refund cancels an escrow and returns the vault content to the maker.
func Refund(a RefundAccounts) swapvault.Instruction {
	return swapvault.Instruction{
		ProgramID: ProgramID,
		Accounts: []swapvault.AccountMeta{
			swapvault.Writable(a.Maker, true),
			swapvault.ReadOnly(a.MintA, false),
			swapvault.Writable(a.MakerAtaA, false),
			swapvault.Writable(a.Vault, false),
			swapvault.Writable(a.Escrow, false),
			swapvault.ReadOnly(token.ProgramID, false),
			swapvault.ReadOnly(system.ProgramID, false),
		},
		Data: []byte{TagRefund},
	}
}

// DelegationAccounts are the accounts of Delegate and Undelegate.
type DelegationAccounts struct {
	Maker  swapvault.Pubkey
	Escrow swapvault.Pubkey
	// DelegationProgram defaults to delegation.ProgramID.
	DelegationProgram swapvault.Pubkey
}

func (a DelegationAccounts) derived() (buffer, record, metadata swapvault.Pubkey, err error) {
	if buffer, err = custody.BufferAddress(ProgramID, a.Escrow); err != nil {
		return
	}
	if record, err = delegation.RecordAddress(a.Escrow); err != nil {
		return
	}
	metadata, err = delegation.MetadataAddress(a.Escrow)
	return
}

func (a DelegationAccounts) program() swapvault.Pubkey {
	if a.DelegationProgram.IsZero() {
		return delegation.ProgramID
	}
	return a.DelegationProgram
}

// Delegate hands the escrow account to the delegation authority. The buffer
// and the delegation bookkeeping accounts are derived from the escrow.
func Delegate(a DelegationAccounts, args *delegation.DelegateArgs) (swapvault.Instruction, error) {
	buffer, record, metadata, err := a.derived()
	if err != nil {
		return swapvault.Instruction{}, err
	}
	payload, err := args.Encode()
	if err != nil {
		return swapvault.Instruction{}, err
	}
	return swapvault.Instruction{
		ProgramID: ProgramID,
		Accounts: []swapvault.AccountMeta{
			swapvault.Writable(a.Maker, true),
			swapvault.Writable(a.Escrow, false),
			swapvault.ReadOnly(ProgramID, false),
			swapvault.Writable(buffer, false),
			swapvault.Writable(record, false),
			swapvault.Writable(metadata, false),
			swapvault.ReadOnly(a.program(), false),
			swapvault.ReadOnly(system.ProgramID, false),
		},
		Data: append([]byte{TagDelegate}, payload...),
	}, nil
}

// Undelegate takes the escrow account back from the delegation authority.
func Undelegate(a DelegationAccounts) (swapvault.Instruction, error) {
	buffer, record, metadata, err := a.derived()
	if err != nil {
		return swapvault.Instruction{}, err
	}
	return swapvault.Instruction{
		ProgramID: ProgramID,
		Accounts: []swapvault.AccountMeta{
			swapvault.Writable(a.Maker, true),
			swapvault.Writable(a.Escrow, false),
			swapvault.Writable(buffer, false),
			swapvault.Writable(record, false),
			swapvault.Writable(metadata, false),
			swapvault.ReadOnly(a.program(), false),
			swapvault.ReadOnly(system.ProgramID, false),
		},
		Data: []byte{TagUndelegate},
	}, nil
}

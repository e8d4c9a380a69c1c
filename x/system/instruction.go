package system

import (
	"encoding/binary"

	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/errors"
)

// ProgramID is the id of the system program.
var ProgramID = swapvault.SystemProgramID

// Instruction tags, encoded as u32 little endian.
const (
	TagCreateAccount uint32 = 0
	TagAssign        uint32 = 1
	TagTransfer      uint32 = 2
)

// CreateAccount funds account with lamports taken from payer, allocates space
// bytes of zeroed data and assigns it to owner. Both payer and account must sign.
func CreateAccount(payer, account swapvault.Pubkey, lamports, space uint64, owner swapvault.Pubkey) swapvault.Instruction {
	data := make([]byte, 4+8+8+swapvault.PubkeyLength)
	binary.LittleEndian.PutUint32(data, TagCreateAccount)
	binary.LittleEndian.PutUint64(data[4:], lamports)
	binary.LittleEndian.PutUint64(data[12:], space)
	copy(data[20:], owner[:])
	return swapvault.Instruction{
		ProgramID: ProgramID,
		Accounts: []swapvault.AccountMeta{
			swapvault.Writable(payer, true),
			swapvault.Writable(account, true),
		},
		Data: data,
	}
}

// Assign hands a system owned account to owner.
func Assign(account, owner swapvault.Pubkey) swapvault.Instruction {
	data := make([]byte, 4+swapvault.PubkeyLength)
	binary.LittleEndian.PutUint32(data, TagAssign)
	copy(data[4:], owner[:])
	return swapvault.Instruction{
		ProgramID: ProgramID,
		Accounts:  []swapvault.AccountMeta{swapvault.Writable(account, true)},
		Data:      data,
	}
}

// Transfer moves lamports between two accounts. from must sign.
func Transfer(from, to swapvault.Pubkey, lamports uint64) swapvault.Instruction {
	data := make([]byte, 4+8)
	binary.LittleEndian.PutUint32(data, TagTransfer)
	binary.LittleEndian.PutUint64(data[4:], lamports)
	return swapvault.Instruction{
		ProgramID: ProgramID,
		Accounts: []swapvault.AccountMeta{
			swapvault.Writable(from, true),
			swapvault.Writable(to, false),
		},
		Data: data,
	}
}

type createAccountArgs struct {
	lamports uint64
	space    uint64
	owner    swapvault.Pubkey
}

func decodeTag(data []byte) (uint32, []byte, error) {
	if len(data) < 4 {
		return 0, nil, errors.Wrapf(errors.ErrMalformedPayload, "system instruction of %d bytes", len(data))
	}
	return binary.LittleEndian.Uint32(data), data[4:], nil
}

func decodeCreateAccount(raw []byte) (createAccountArgs, error) {
	var args createAccountArgs
	if len(raw) != 8+8+swapvault.PubkeyLength {
		return args, errors.Wrapf(errors.ErrMalformedPayload, "create account payload of %d bytes", len(raw))
	}
	args.lamports = binary.LittleEndian.Uint64(raw)
	args.space = binary.LittleEndian.Uint64(raw[8:])
	copy(args.owner[:], raw[16:])
	return args, nil
}

func decodeAssign(raw []byte) (swapvault.Pubkey, error) {
	if len(raw) != swapvault.PubkeyLength {
		return swapvault.Pubkey{}, errors.Wrapf(errors.ErrMalformedPayload, "assign payload of %d bytes", len(raw))
	}
	return swapvault.PubkeyFromBytes(raw)
}

func decodeTransfer(raw []byte) (uint64, error) {
	if len(raw) != 8 {
		return 0, errors.Wrapf(errors.ErrMalformedPayload, "transfer payload of %d bytes", len(raw))
	}
	return binary.LittleEndian.Uint64(raw), nil
}

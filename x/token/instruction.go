package token

import (
	"encoding/binary"

	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/errors"
)

// ProgramID is the id of the token program.
var ProgramID = swapvault.MustParsePubkey("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")

// Instruction tags. The numbering leaves room for the instructions of the
// full token program that are not supported here.
const (
	TagInitializeMint    uint8 = 0
	TagInitializeAccount uint8 = 1
	TagTransfer          uint8 = 3
	TagMintTo            uint8 = 7
	TagCloseAccount      uint8 = 9
)

// InitializeMint sets up a mint account already sized to MintLen and
// owned by the token program.
func InitializeMint(mint swapvault.Pubkey, decimals uint8, authority swapvault.Pubkey) swapvault.Instruction {
	data := make([]byte, 2+swapvault.PubkeyLength)
	data[0] = TagInitializeMint
	data[1] = decimals
	copy(data[2:], authority[:])
	return swapvault.Instruction{
		ProgramID: ProgramID,
		Accounts:  []swapvault.AccountMeta{swapvault.Writable(mint, false)},
		Data:      data,
	}
}

// InitializeAccount sets up a token account of mint held by owner.
func InitializeAccount(account, mint, owner swapvault.Pubkey) swapvault.Instruction {
	data := make([]byte, 1+swapvault.PubkeyLength)
	data[0] = TagInitializeAccount
	copy(data[1:], owner[:])
	return swapvault.Instruction{
		ProgramID: ProgramID,
		Accounts: []swapvault.AccountMeta{
			swapvault.Writable(account, false),
			swapvault.ReadOnly(mint, false),
		},
		Data: data,
	}
}

// Transfer moves amount tokens from source to dest. authority must own
// source.
func Transfer(source, dest, authority swapvault.Pubkey, amount uint64) swapvault.Instruction {
	return swapvault.Instruction{
		ProgramID: ProgramID,
		Accounts: []swapvault.AccountMeta{
			swapvault.Writable(source, false),
			swapvault.Writable(dest, false),
			swapvault.ReadOnly(authority, true),
		},
		Data: amountData(TagTransfer, amount),
	}
}

// MintTo creates amount new tokens in dest.
func MintTo(mint, dest, authority swapvault.Pubkey, amount uint64) swapvault.Instruction {
	return swapvault.Instruction{
		ProgramID: ProgramID,
		Accounts: []swapvault.AccountMeta{
			swapvault.Writable(mint, false),
			swapvault.Writable(dest, false),
			swapvault.ReadOnly(authority, true),
		},
		Data: amountData(TagMintTo, amount),
	}
}

// CloseAccount closes an empty token account and sends its lamports to
// dest.
func CloseAccount(account, dest, authority swapvault.Pubkey) swapvault.Instruction {
	return swapvault.Instruction{
		ProgramID: ProgramID,
		Accounts: []swapvault.AccountMeta{
			swapvault.Writable(account, false),
			swapvault.Writable(dest, false),
			swapvault.ReadOnly(authority, true),
		},
		Data: []byte{TagCloseAccount},
	}
}

func amountData(tag uint8, amount uint64) []byte {
	data := make([]byte, 9)
	data[0] = tag
	binary.LittleEndian.PutUint64(data[1:], amount)
	return data
}

func decodeAmount(raw []byte) (uint64, error) {
	if len(raw) != 8 {
		return 0, errors.Wrapf(errors.ErrMalformedPayload, "amount of %d bytes", len(raw))
	}
	return binary.LittleEndian.Uint64(raw), nil
}

func decodePubkey(raw []byte) (swapvault.Pubkey, error) {
	key, err := swapvault.PubkeyFromBytes(raw)
	if err != nil {
		return key, errors.Wrap(errors.ErrMalformedPayload, err.Error())
	}
	return key, nil
}

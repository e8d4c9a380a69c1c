package escrow

import (
	"encoding/binary"

	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/errors"
)

// RecordLen is the size of the escrow account data.
const RecordLen = 3*swapvault.PubkeyLength + 8 + 1

// Record is the state of an open escrow. It is stored at fixed offsets:
//
//	maker  [0:32]
//	mint_a [32:64]
//	mint_b [64:96]
//	amount [96:104] little endian
//	bump   [104]
type Record struct {
	Maker swapvault.Pubkey
	MintA swapvault.Pubkey
	MintB swapvault.Pubkey
	// Amount of MintB the maker wants for the content of the vault.
	Amount uint64
	Bump   uint8
}

// Initialize writes a record into buf.
func Initialize(buf []byte, maker, mintA, mintB swapvault.Pubkey, amount uint64, bump uint8) error {
	r := Record{Maker: maker, MintA: mintA, MintB: mintB, Amount: amount, Bump: bump}
	return r.Encode(buf)
}

// Encode writes the record into the first RecordLen bytes of buf.
func (r *Record) Encode(buf []byte) error {
	if len(buf) < RecordLen {
		return errors.Wrapf(errors.ErrAccountShape, "escrow account of %d bytes", len(buf))
	}
	copy(buf[0:32], r.Maker[:])
	copy(buf[32:64], r.MintA[:])
	copy(buf[64:96], r.MintB[:])
	binary.LittleEndian.PutUint64(buf[96:104], r.Amount)
	buf[104] = r.Bump
	return nil
}

// ReadRecord decodes the record stored in buf.
func ReadRecord(buf []byte) (*Record, error) {
	if len(buf) < RecordLen {
		return nil, errors.Wrapf(errors.ErrDeserialization, "escrow record of %d bytes", len(buf))
	}
	var r Record
	copy(r.Maker[:], buf[0:32])
	copy(r.MintA[:], buf[32:64])
	copy(r.MintB[:], buf[64:96])
	r.Amount = binary.LittleEndian.Uint64(buf[96:104])
	r.Bump = buf[104]
	return &r, nil
}

// Authority proves that escrow is the account of this record under program.
// The supplied maker must be the recorded one.
func (r *Record) Authority(program, maker, escrow swapvault.Pubkey) (swapvault.Authority, error) {
	auth, err := DeriveEscrow(program, maker, r.Bump)
	if err != nil {
		return auth, err
	}
	if err := auth.Matches(escrow); err != nil {
		return auth, errors.Wrap(err, "escrow")
	}
	if r.Maker != maker {
		return auth, errors.Wrapf(errors.ErrAddressMismatch, "escrow of %s, got maker %s", r.Maker, maker)
	}
	return auth, nil
}

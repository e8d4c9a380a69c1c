package delegation

import (
	"encoding/binary"

	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/errors"
	"github.com/near/borsh-go"
)

// RecordLen is the size of a serialized Record.
const RecordLen = 32 + 4 + 1 + 32 + 8

// Record describes a delegated account.
type Record struct {
	OwnerProgram      swapvault.Pubkey
	CommitFrequencyMs uint32
	Validator         *swapvault.Pubkey
	// Lamports is the balance of the subject when it was delegated.
	Lamports uint64
}

// Encode writes the record into dst, which must be RecordLen long.
func (r *Record) Encode(dst []byte) error {
	if len(dst) != RecordLen {
		return errors.Wrapf(errors.ErrAccountShape, "delegation record of %d bytes", len(dst))
	}
	copy(dst[0:32], r.OwnerProgram[:])
	binary.LittleEndian.PutUint32(dst[32:36], r.CommitFrequencyMs)
	if r.Validator != nil {
		dst[36] = 1
		copy(dst[37:69], r.Validator[:])
	} else {
		dst[36] = 0
		copy(dst[37:69], make([]byte, 32))
	}
	binary.LittleEndian.PutUint64(dst[69:77], r.Lamports)
	return nil
}

// DecodeRecord parses a delegation record.
func DecodeRecord(src []byte) (*Record, error) {
	if len(src) != RecordLen {
		return nil, errors.Wrapf(errors.ErrDeserialization, "delegation record of %d bytes", len(src))
	}
	r := Record{
		CommitFrequencyMs: binary.LittleEndian.Uint32(src[32:36]),
		Lamports:          binary.LittleEndian.Uint64(src[69:77]),
	}
	copy(r.OwnerProgram[:], src[0:32])
	switch src[36] {
	case 0:
	case 1:
		var v swapvault.Pubkey
		copy(v[:], src[37:69])
		r.Validator = &v
	default:
		return nil, errors.Wrapf(errors.ErrDeserialization, "validator option tag %d", src[36])
	}
	return &r, nil
}

// Metadata keeps what is needed to undo a delegation.
type Metadata struct {
	RentPayer swapvault.Pubkey
	Seeds     [][]byte
}

// Encode returns the serialized metadata.
func (m *Metadata) Encode() ([]byte, error) {
	seeds, err := borsh.Serialize(m.Seeds)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "serialize seeds: %s", err)
	}
	return append(append([]byte(nil), m.RentPayer[:]...), seeds...), nil
}

// DecodeMetadata parses delegation metadata.
func DecodeMetadata(src []byte) (*Metadata, error) {
	if len(src) < swapvault.PubkeyLength {
		return nil, errors.Wrapf(errors.ErrDeserialization, "delegation metadata of %d bytes", len(src))
	}
	var m Metadata
	copy(m.RentPayer[:], src)
	if err := borsh.Deserialize(&m.Seeds, src[swapvault.PubkeyLength:]); err != nil {
		return nil, errors.Wrapf(errors.ErrDeserialization, "delegation metadata seeds: %s", err)
	}
	return &m, nil
}

package swapvault

import (
	"math/bits"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/swapvault/errors"
)

// MaxAccountDataLength is the largest data region an account may hold.
const MaxAccountDataLength = 10 * 1024 * 1024

// Account is the persisted state behind an address.
type Account struct {
	Lamports   uint64
	Data       []byte
	Owner      Pubkey
	Executable bool
}

// Protobuf field tags of the persisted form.
const (
	tagLamports   = 1<<3 | 0
	tagData       = 2<<3 | 2
	tagOwner      = 3<<3 | 2
	tagExecutable = 4<<3 | 0
)

// Marshal encodes the account using the protobuf wire format.
func (a *Account) Marshal() ([]byte, error) {
	buf := proto.NewBuffer(make([]byte, 0, len(a.Data)+PubkeyLength+16))
	if a.Lamports != 0 {
		if err := buf.EncodeVarint(tagLamports); err != nil {
			return nil, err
		}
		if err := buf.EncodeVarint(a.Lamports); err != nil {
			return nil, err
		}
	}
	if len(a.Data) != 0 {
		if err := buf.EncodeVarint(tagData); err != nil {
			return nil, err
		}
		if err := buf.EncodeRawBytes(a.Data); err != nil {
			return nil, err
		}
	}
	if err := buf.EncodeVarint(tagOwner); err != nil {
		return nil, err
	}
	if err := buf.EncodeRawBytes(a.Owner[:]); err != nil {
		return nil, err
	}
	if a.Executable {
		if err := buf.EncodeVarint(tagExecutable); err != nil {
			return nil, err
		}
		if err := buf.EncodeVarint(1); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes what Marshal produced. Unknown fields are rejected.
func (a *Account) Unmarshal(raw []byte) error {
	*a = Account{}
	for len(raw) > 0 {
		tag, n := proto.DecodeVarint(raw)
		if n == 0 {
			return errors.Wrap(errors.ErrDeserialization, "account field tag")
		}
		raw = raw[n:]
		switch tag {
		case tagLamports, tagExecutable:
			v, n := proto.DecodeVarint(raw)
			if n == 0 {
				return errors.Wrap(errors.ErrDeserialization, "account varint")
			}
			raw = raw[n:]
			if tag == tagLamports {
				a.Lamports = v
			} else {
				a.Executable = v != 0
			}
		case tagData, tagOwner:
			size, n := proto.DecodeVarint(raw)
			if n == 0 || uint64(len(raw)-n) < size {
				return errors.Wrap(errors.ErrDeserialization, "account bytes")
			}
			field := raw[n : n+int(size)]
			raw = raw[n+int(size):]
			if tag == tagData {
				a.Data = append([]byte(nil), field...)
				continue
			}
			owner, err := PubkeyFromBytes(field)
			if err != nil {
				return errors.Wrap(errors.ErrDeserialization, err.Error())
			}
			a.Owner = owner
		default:
			return errors.Wrapf(errors.ErrDeserialization, "unknown account field %d", tag)
		}
	}
	return nil
}

// Copy returns a deep copy.
func (a *Account) Copy() *Account {
	return &Account{
		Lamports:   a.Lamports,
		Data:       append([]byte(nil), a.Data...),
		Owner:      a.Owner,
		Executable: a.Executable,
	}
}

// IsEmpty is true for an address nobody provisioned yet: no balance, no data
// and the neutral owner.
func (a *Account) IsEmpty() bool {
	return a.Lamports == 0 && len(a.Data) == 0 && a.Owner == SystemProgramID
}

// AccountInfo is the view of an account a program receives. Several infos
// may share the same Account when a nested call passes it along, so writes
// are visible to the caller once the nested call returns.
type AccountInfo struct {
	Key        Pubkey
	IsSigner   bool
	IsWritable bool

	acct *Account
}

// NewAccountInfo wraps acct. A nil acct is treated as an empty account.
func NewAccountInfo(key Pubkey, signer, writable bool, acct *Account) *AccountInfo {
	if acct == nil {
		acct = &Account{Owner: SystemProgramID}
	}
	return &AccountInfo{Key: key, IsSigner: signer, IsWritable: writable, acct: acct}
}

// Account returns the shared state. Only the host should need it.
func (a *AccountInfo) Account() *Account {
	return a.acct
}

func (a *AccountInfo) Lamports() uint64 {
	return a.acct.Lamports
}

func (a *AccountInfo) Owner() Pubkey {
	return a.acct.Owner
}

func (a *AccountInfo) Executable() bool {
	return a.acct.Executable
}

// Data returns the live data region. Writes through the returned slice
// modify the account.
func (a *AccountInfo) Data() []byte {
	return a.acct.Data
}

func (a *AccountInfo) DataLen() int {
	return len(a.acct.Data)
}

func (a *AccountInfo) IsOwnedBy(program Pubkey) bool {
	return a.acct.Owner == program
}

// SetLamports overwrites the balance. The host checks after every call
// that lamports were only debited by the owner and that none were created.
func (a *AccountInfo) SetLamports(v uint64) {
	a.acct.Lamports = v
}

// Realloc resizes the data region. New bytes are zero.
func (a *AccountInfo) Realloc(size int) error {
	if size < 0 || size > MaxAccountDataLength {
		return errors.Wrapf(errors.ErrInput, "data length %d", size)
	}
	switch cur := len(a.acct.Data); {
	case size <= cur:
		a.acct.Data = a.acct.Data[:size:size]
	default:
		grown := make([]byte, size)
		copy(grown, a.acct.Data)
		a.acct.Data = grown
	}
	return nil
}

// Assign hands the account to a new owner. The host only allows it when the
// current owner runs and the data is zeroed.
func (a *AccountInfo) Assign(owner Pubkey) {
	a.acct.Owner = owner
}

// MoveLamports moves amount from one account to another.
func MoveLamports(from, to *AccountInfo, amount uint64) error {
	if from.Lamports() < amount {
		return errors.Wrapf(errors.ErrInsufficientFunds, "%s holds %d, need %d", from.Key, from.Lamports(), amount)
	}
	if from.Key == to.Key {
		return nil
	}
	sum, carry := bits.Add64(to.Lamports(), amount, 0)
	if carry != 0 {
		return errors.Wrapf(errors.ErrOverflow, "crediting %s", to.Key)
	}
	from.SetLamports(from.Lamports() - amount)
	to.SetLamports(sum)
	return nil
}

// CloseAccount drains every lamport of acct into dest, truncates its data and
// hands it back to the system program. Only the owner may call it.
func CloseAccount(acct, dest *AccountInfo) error {
	if err := MoveLamports(acct, dest, acct.Lamports()); err != nil {
		return err
	}
	if err := acct.Realloc(0); err != nil {
		return err
	}
	acct.Assign(SystemProgramID)
	return nil
}

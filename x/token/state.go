package token

import (
	"encoding/binary"

	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/errors"
)

const (
	// MintLen is the size of a serialized Mint.
	MintLen = 82
	// AccountLen is the size of a serialized Account.
	AccountLen = 73
)

// Mint defines a token.
type Mint struct {
	// Authority may mint new tokens. No more tokens can be minted when
	// it is nil.
	Authority   *swapvault.Pubkey
	Supply      uint64
	Decimals    uint8
	Initialized bool
	// Freeze is kept for layout compatibility. Accounts cannot be frozen.
	Freeze *swapvault.Pubkey
}

// AccountState tells whether a token account is in use.
type AccountState uint8

const (
	Uninitialized AccountState = 0
	Initialized   AccountState = 1
)

// Account holds tokens of a single mint.
type Account struct {
	Mint   swapvault.Pubkey
	Owner  swapvault.Pubkey
	Amount uint64
	State  AccountState
}

func putOption(dst []byte, key *swapvault.Pubkey) {
	if key == nil {
		for i := range dst[:36] {
			dst[i] = 0
		}
		return
	}
	binary.LittleEndian.PutUint32(dst, 1)
	copy(dst[4:36], key[:])
}

func getOption(src []byte) (*swapvault.Pubkey, error) {
	switch tag := binary.LittleEndian.Uint32(src); tag {
	case 0:
		return nil, nil
	case 1:
		var key swapvault.Pubkey
		copy(key[:], src[4:36])
		return &key, nil
	default:
		return nil, errors.Wrapf(errors.ErrDeserialization, "option tag %d", tag)
	}
}

// Encode writes the mint into dst, which must be MintLen long.
func (m *Mint) Encode(dst []byte) error {
	if len(dst) != MintLen {
		return errors.Wrapf(errors.ErrAccountShape, "mint data of %d bytes", len(dst))
	}
	putOption(dst[0:36], m.Authority)
	binary.LittleEndian.PutUint64(dst[36:44], m.Supply)
	dst[44] = m.Decimals
	dst[45] = 0
	if m.Initialized {
		dst[45] = 1
	}
	putOption(dst[46:82], m.Freeze)
	return nil
}

// DecodeMint parses a mint from account data.
func DecodeMint(src []byte) (*Mint, error) {
	if len(src) != MintLen {
		return nil, errors.Wrapf(errors.ErrDeserialization, "mint data of %d bytes", len(src))
	}
	auth, err := getOption(src[0:36])
	if err != nil {
		return nil, err
	}
	freeze, err := getOption(src[46:82])
	if err != nil {
		return nil, err
	}
	return &Mint{
		Authority:   auth,
		Supply:      binary.LittleEndian.Uint64(src[36:44]),
		Decimals:    src[44],
		Initialized: src[45] == 1,
		Freeze:      freeze,
	}, nil
}

// Encode writes the account into dst, which must be AccountLen long.
func (a *Account) Encode(dst []byte) error {
	if len(dst) != AccountLen {
		return errors.Wrapf(errors.ErrAccountShape, "token account data of %d bytes", len(dst))
	}
	copy(dst[0:32], a.Mint[:])
	copy(dst[32:64], a.Owner[:])
	binary.LittleEndian.PutUint64(dst[64:72], a.Amount)
	dst[72] = byte(a.State)
	return nil
}

// DecodeAccount parses a token account from account data.
func DecodeAccount(src []byte) (*Account, error) {
	if len(src) != AccountLen {
		return nil, errors.Wrapf(errors.ErrDeserialization, "token account data of %d bytes", len(src))
	}
	var a Account
	copy(a.Mint[:], src[0:32])
	copy(a.Owner[:], src[32:64])
	a.Amount = binary.LittleEndian.Uint64(src[64:72])
	a.State = AccountState(src[72])
	if a.State > Initialized {
		return nil, errors.Wrapf(errors.ErrDeserialization, "account state %d", a.State)
	}
	return &a, nil
}

// LoadAccount reads an initialized token account owned by this program.
func LoadAccount(info *swapvault.AccountInfo) (*Account, error) {
	if !info.IsOwnedBy(ProgramID) {
		return nil, errors.Wrapf(errors.ErrAccountShape, "%s is not a token account", info.Key)
	}
	a, err := DecodeAccount(info.Data())
	if err != nil {
		return nil, errors.Wrapf(err, "token account %s", info.Key)
	}
	if a.State != Initialized {
		return nil, errors.Wrapf(errors.ErrInvalidState, "token account %s is not initialized", info.Key)
	}
	return a, nil
}

// LoadMint reads an initialized mint owned by this program.
func LoadMint(info *swapvault.AccountInfo) (*Mint, error) {
	if !info.IsOwnedBy(ProgramID) {
		return nil, errors.Wrapf(errors.ErrAccountShape, "%s is not a mint", info.Key)
	}
	m, err := DecodeMint(info.Data())
	if err != nil {
		return nil, errors.Wrapf(err, "mint %s", info.Key)
	}
	if !m.Initialized {
		return nil, errors.Wrapf(errors.ErrInvalidState, "mint %s is not initialized", info.Key)
	}
	return m, nil
}

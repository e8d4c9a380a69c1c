package swapvault

import (
	"bytes"
	"encoding/json"

	"github.com/btcsuite/btcutil/base58"
	"github.com/iov-one/swapvault/errors"
)

// PubkeyLength is the size of every account address.
const PubkeyLength = 32

// Pubkey is an account address. It is either an ed25519 public key or a
// program derived address.
type Pubkey [PubkeyLength]byte

// SystemProgramID is the neutral owner of every account that no program
// claimed yet. It accepts arbitrary reassignment.
var SystemProgramID = Pubkey{}

// PubkeyFromBytes copies raw into a Pubkey. It fails unless raw is exactly
// PubkeyLength long.
func PubkeyFromBytes(raw []byte) (Pubkey, error) {
	var p Pubkey
	if len(raw) != PubkeyLength {
		return p, errors.Wrapf(errors.ErrInput, "pubkey must be %d bytes, got %d", PubkeyLength, len(raw))
	}
	copy(p[:], raw)
	return p, nil
}

// ParsePubkey decodes the base58 text form of an address.
func ParsePubkey(s string) (Pubkey, error) {
	raw := base58.Decode(s)
	if len(raw) == 0 && len(s) != 0 {
		return Pubkey{}, errors.Wrapf(errors.ErrInput, "invalid base58 %q", s)
	}
	p, err := PubkeyFromBytes(raw)
	if err != nil {
		return p, errors.Wrapf(err, "address %q", s)
	}
	return p, nil
}

// MustParsePubkey is ParsePubkey that panics on failure. Use it only for
// well known constants.
func MustParsePubkey(s string) Pubkey {
	p, err := ParsePubkey(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the base58 text form.
func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

// Bytes returns a copy of the address bytes.
func (p Pubkey) Bytes() []byte {
	b := make([]byte, PubkeyLength)
	copy(b, p[:])
	return b
}

func (p Pubkey) IsZero() bool {
	return p == Pubkey{}
}

func (p Pubkey) Equals(o Pubkey) bool {
	return bytes.Equal(p[:], o[:])
}

func (p Pubkey) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Pubkey) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(errors.ErrInput, "pubkey must be a string")
	}
	key, err := ParsePubkey(s)
	if err != nil {
		return err
	}
	*p = key
	return nil
}

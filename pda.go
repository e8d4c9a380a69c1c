package swapvault

import (
	"crypto/sha256"

	"filippo.io/edwards25519"
	"github.com/iov-one/swapvault/errors"
)

const (
	// MaxSeeds is the maximum number of seeds, bump included, that can
	// form a derived address.
	MaxSeeds = 16
	// MaxSeedLength is the maximum length of a single seed.
	MaxSeedLength = 32

	pdaMarker = "ProgramDerivedAddress"
)

// CreateProgramAddress computes the address owned by program for the given
// seeds. The last seed is usually the bump. The result must not be a valid
// ed25519 point, so that no private key can ever sign for it.
func CreateProgramAddress(seeds [][]byte, program Pubkey) (Pubkey, error) {
	if len(seeds) > MaxSeeds {
		return Pubkey{}, errors.Wrapf(errors.ErrInput, "%d seeds, max %d", len(seeds), MaxSeeds)
	}
	h := sha256.New()
	for i, s := range seeds {
		if len(s) > MaxSeedLength {
			return Pubkey{}, errors.Wrapf(errors.ErrInput, "seed %d is %d bytes, max %d", i, len(s), MaxSeedLength)
		}
		h.Write(s)
	}
	h.Write(program[:])
	h.Write([]byte(pdaMarker))

	var addr Pubkey
	copy(addr[:], h.Sum(nil))
	if IsOnCurve(addr) {
		return Pubkey{}, errors.Wrap(errors.ErrInput, "derived address is on the ed25519 curve")
	}
	return addr, nil
}

// FindProgramAddress searches for the canonical bump: the highest value that
// yields an off-curve address for seeds ++ [bump].
func FindProgramAddress(seeds [][]byte, program Pubkey) (Pubkey, uint8, error) {
	if len(seeds) >= MaxSeeds {
		return Pubkey{}, 0, errors.Wrapf(errors.ErrInput, "%d seeds leave no room for a bump", len(seeds))
	}
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	bump := []byte{0}
	withBump[len(seeds)] = bump

	for b := 255; b >= 0; b-- {
		bump[0] = uint8(b)
		addr, err := CreateProgramAddress(withBump, program)
		if err == nil {
			return addr, uint8(b), nil
		}
		if !errors.ErrInput.Is(err) {
			return Pubkey{}, 0, err
		}
	}
	return Pubkey{}, 0, errors.Wrap(errors.ErrNotFound, "no viable bump")
}

// IsOnCurve returns true if p decodes to a point of the ed25519 curve.
func IsOnCurve(p Pubkey) bool {
	_, err := new(edwards25519.Point).SetBytes(p[:])
	return err == nil
}

// Authority is a verified (seed path, bump, address) triple. Only the program
// that derived it can use it to sign for the address: the host re-derives
// the address against the calling program before granting signer status.
//
// The zero value carries no authority.
type Authority struct {
	seeds   [][]byte
	bump    uint8
	address Pubkey
	program Pubkey
}

// DeriveAuthority recomputes the address for seeds ++ [bump] under program.
// This is the cheap, on-chain form of derivation: the bump usually comes
// from persisted state or from the caller.
func DeriveAuthority(program Pubkey, bump uint8, seeds ...[]byte) (Authority, error) {
	all := make([][]byte, 0, len(seeds)+1)
	all = append(all, seeds...)
	all = append(all, []byte{bump})
	addr, err := CreateProgramAddress(all, program)
	if err != nil {
		return Authority{}, errors.Wrap(errors.ErrAddressMismatch, err.Error())
	}
	return Authority{
		seeds:   copySeeds(seeds),
		bump:    bump,
		address: addr,
		program: program,
	}, nil
}

// FindAuthority derives the authority with the canonical bump.
func FindAuthority(program Pubkey, seeds ...[]byte) (Authority, error) {
	addr, bump, err := FindProgramAddress(seeds, program)
	if err != nil {
		return Authority{}, err
	}
	return Authority{
		seeds:   copySeeds(seeds),
		bump:    bump,
		address: addr,
		program: program,
	}, nil
}

// Address returns the derived address this authority signs for.
func (a Authority) Address() Pubkey {
	return a.address
}

func (a Authority) Bump() uint8 {
	return a.bump
}

func (a Authority) Program() Pubkey {
	return a.program
}

// Seeds returns a copy of the seed path, without the bump.
func (a Authority) Seeds() [][]byte {
	return copySeeds(a.seeds)
}

// Matches fails with ErrAddressMismatch unless key is the derived address.
func (a Authority) Matches(key Pubkey) error {
	if a.address.IsZero() || a.address != key {
		return errors.Wrapf(errors.ErrAddressMismatch, "derived %s, got %s", a.address, key)
	}
	return nil
}

// VerifyFor re-derives the address as if program had produced this
// authority. The host calls it before granting signer status.
func (a Authority) VerifyFor(program Pubkey) error {
	if a.address.IsZero() {
		return errors.Wrap(errors.ErrUnauthorized, "empty authority")
	}
	if a.program != program {
		return errors.Wrapf(errors.ErrUnauthorized, "authority of %s used by %s", a.program, program)
	}
	again, err := DeriveAuthority(program, a.bump, a.seeds...)
	if err != nil {
		return errors.Wrap(errors.ErrUnauthorized, err.Error())
	}
	if again.address != a.address {
		return errors.Wrap(errors.ErrUnauthorized, "authority does not derive its address")
	}
	return nil
}

func copySeeds(seeds [][]byte) [][]byte {
	out := make([][]byte, len(seeds))
	for i, s := range seeds {
		out[i] = append([]byte(nil), s...)
	}
	return out
}

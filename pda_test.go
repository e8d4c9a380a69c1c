package swapvault

import (
	"bytes"
	"testing"

	"github.com/iov-one/swapvault/errors"
	"github.com/iov-one/swapvault/vaulttest/assert"
	"golang.org/x/crypto/ed25519"
)

func TestFindProgramAddress(t *testing.T) {
	program := Pubkey{1, 2, 3}
	maker := Pubkey{9, 9, 9}
	seeds := [][]byte{[]byte("escrow"), maker[:]}

	addr, bump, err := FindProgramAddress(seeds, program)
	assert.Nil(t, err)
	assert.Equal(t, false, IsOnCurve(addr))

	again, err := CreateProgramAddress(append(seeds, []byte{bump}), program)
	assert.Nil(t, err)
	assert.Equal(t, addr, again)

	// canonical bump is the highest viable one
	for b := int(bump) + 1; b <= 255; b++ {
		_, err := CreateProgramAddress(append(seeds, []byte{uint8(b)}), program)
		assert.IsErr(t, errors.ErrInput, err)
	}

	other, _, err := FindProgramAddress(seeds, Pubkey{4, 5, 6})
	assert.Nil(t, err)
	if other == addr {
		t.Fatal("different programs must derive different addresses")
	}
}

func TestProgramAddressLimits(t *testing.T) {
	program := Pubkey{1}

	cases := map[string]struct {
		Seeds   [][]byte
		WantErr *errors.Error
	}{
		"single seed": {
			Seeds: [][]byte{[]byte("escrow")},
		},
		"longest seed": {
			Seeds: [][]byte{bytes.Repeat([]byte{7}, MaxSeedLength)},
		},
		"seed too long": {
			Seeds:   [][]byte{bytes.Repeat([]byte{7}, MaxSeedLength+1)},
			WantErr: errors.ErrInput,
		},
		"no room for bump": {
			Seeds:   make([][]byte, MaxSeeds),
			WantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			_, _, err := FindProgramAddress(tc.Seeds, program)
			assert.IsErr(t, tc.WantErr, err)
		})
	}
}

func TestIsOnCurve(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	assert.Nil(t, err)
	key, err := PubkeyFromBytes(pub)
	assert.Nil(t, err)
	assert.Equal(t, true, IsOnCurve(key))
}

func TestDeriveAuthority(t *testing.T) {
	program := Pubkey{7}
	seed := []byte("vault")

	var ok, rejected int
	for b := 0; b <= 255; b++ {
		auth, err := DeriveAuthority(program, uint8(b), seed)
		if err != nil {
			assert.IsErr(t, errors.ErrAddressMismatch, err)
			rejected++
			continue
		}
		ok++
		assert.Equal(t, false, IsOnCurve(auth.Address()))
		assert.Equal(t, uint8(b), auth.Bump())
		assert.Nil(t, auth.VerifyFor(program))
	}
	if ok == 0 || rejected == 0 {
		t.Fatalf("expected both viable and on-curve bumps, got %d and %d", ok, rejected)
	}
}

func TestAuthorityVerify(t *testing.T) {
	program := Pubkey{7}
	auth, err := FindAuthority(program, []byte("escrow"), []byte("maker"))
	assert.Nil(t, err)

	assert.Nil(t, auth.VerifyFor(program))
	assert.IsErr(t, errors.ErrUnauthorized, auth.VerifyFor(Pubkey{8}))
	assert.IsErr(t, errors.ErrUnauthorized, Authority{}.VerifyFor(program))

	assert.Nil(t, auth.Matches(auth.Address()))
	assert.IsErr(t, errors.ErrAddressMismatch, auth.Matches(Pubkey{1}))
	assert.IsErr(t, errors.ErrAddressMismatch, Authority{}.Matches(Pubkey{}))

	// returned seeds are a copy
	seeds := auth.Seeds()
	seeds[0][0] = 'X'
	assert.Nil(t, auth.VerifyFor(program))
	assert.Equal(t, []byte("escrow"), auth.Seeds()[0])
}

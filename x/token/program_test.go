package token_test

import (
	"testing"

	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/errors"
	"github.com/iov-one/swapvault/vaulttest"
	"github.com/iov-one/swapvault/vaulttest/assert"
	"github.com/iov-one/swapvault/x/token"
)

func TestTransfer(t *testing.T) {
	chain := vaulttest.NewChain(t)
	issuer := vaulttest.RandomAddr(t)
	alice := vaulttest.RandomAddr(t)
	bob := vaulttest.RandomAddr(t)
	mintX := chain.CreateMint(issuer, 6)
	mintY := chain.CreateMint(issuer, 6)

	cases := map[string]struct {
		Dest       func() swapvault.Pubkey
		Authority  swapvault.Pubkey
		Signers    []swapvault.Pubkey
		Amount     uint64
		WantErr    *errors.Error
		WantSource uint64
		WantDest   uint64
	}{
		"owner moves tokens": {
			Authority:  alice,
			Signers:    []swapvault.Pubkey{alice},
			Amount:     400,
			WantSource: 600,
			WantDest:   400,
		},
		"whole balance": {
			Authority:  alice,
			Signers:    []swapvault.Pubkey{alice},
			Amount:     1000,
			WantSource: 0,
			WantDest:   1000,
		},
		"insufficient funds": {
			Authority: alice,
			Signers:   []swapvault.Pubkey{alice},
			Amount:    1001,
			WantErr:   errors.ErrInsufficientFunds,
		},
		"not the owner": {
			Authority: bob,
			Signers:   []swapvault.Pubkey{bob},
			Amount:    1,
			WantErr:   errors.ErrUnauthorized,
		},
		"different mints": {
			Dest: func() swapvault.Pubkey {
				return chain.CreateTokenAccount(mintY, bob, 0)
			},
			Authority: alice,
			Signers:   []swapvault.Pubkey{alice},
			Amount:    1,
			WantErr:   errors.ErrAddressMismatch,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			src := chain.CreateTokenAccount(mintX, alice, 1000)
			dst := chain.CreateTokenAccount(mintX, bob, 0)
			if tc.Dest != nil {
				dst = tc.Dest()
			}
			err := chain.Exec(tc.Signers, token.Transfer(src, dst, tc.Authority, tc.Amount))
			assert.IsErr(t, tc.WantErr, err)
			if tc.WantErr != nil {
				assert.Equal(t, uint64(1000), chain.TokenBalance(src))
				assert.Equal(t, uint64(0), chain.TokenBalance(dst))
				return
			}
			assert.Equal(t, tc.WantSource, chain.TokenBalance(src))
			assert.Equal(t, tc.WantDest, chain.TokenBalance(dst))
		})
	}
}

func TestMintTo(t *testing.T) {
	chain := vaulttest.NewChain(t)
	issuer := vaulttest.RandomAddr(t)
	mint := chain.CreateMint(issuer, 0)
	holder := chain.CreateTokenAccount(mint, vaulttest.RandomAddr(t), 0)

	chain.MustExec([]swapvault.Pubkey{issuer}, token.MintTo(mint, holder, issuer, 77))
	assert.Equal(t, uint64(77), chain.TokenBalance(holder))

	m, err := token.DecodeMint(chain.Account(mint).Data)
	assert.Nil(t, err)
	assert.Equal(t, uint64(77), m.Supply)
	assert.Equal(t, issuer, *m.Authority)

	stranger := vaulttest.RandomAddr(t)
	err = chain.Exec([]swapvault.Pubkey{stranger}, token.MintTo(mint, holder, stranger, 1))
	assert.IsErr(t, errors.ErrUnauthorized, err)
}

func TestCloseAccount(t *testing.T) {
	chain := vaulttest.NewChain(t)
	issuer := vaulttest.RandomAddr(t)
	mint := chain.CreateMint(issuer, 0)
	owner := vaulttest.RandomAddr(t)
	dest := chain.NewWallet(5000000).Pubkey

	full := chain.CreateTokenAccount(mint, owner, 10)
	err := chain.Exec([]swapvault.Pubkey{owner}, token.CloseAccount(full, dest, owner))
	assert.IsErr(t, errors.ErrInvalidState, err)

	empty := chain.CreateTokenAccount(mint, owner, 0)
	rent := chain.Lamports(empty)
	err = chain.Exec([]swapvault.Pubkey{dest}, token.CloseAccount(empty, dest, dest))
	assert.IsErr(t, errors.ErrUnauthorized, err)

	chain.MustExec([]swapvault.Pubkey{owner}, token.CloseAccount(empty, dest, owner))
	assert.Nil(t, chain.Account(empty))
	assert.Equal(t, 5000000+rent, chain.Lamports(dest))
}

func TestInitializeTwice(t *testing.T) {
	chain := vaulttest.NewChain(t)
	issuer := vaulttest.RandomAddr(t)
	mint := chain.CreateMint(issuer, 0)
	err := chain.Exec(nil, token.InitializeMint(mint, 2, issuer))
	assert.IsErr(t, errors.ErrAlreadyInitialized, err)

	holder := chain.CreateTokenAccount(mint, issuer, 0)
	err = chain.Exec(nil, token.InitializeAccount(holder, mint, issuer))
	assert.IsErr(t, errors.ErrAlreadyInitialized, err)
}

func TestStateLayout(t *testing.T) {
	owner := swapvault.Pubkey{2}
	a := &token.Account{Mint: swapvault.Pubkey{1}, Owner: owner, Amount: 1000000, State: token.Initialized}
	raw := make([]byte, token.AccountLen)
	assert.Nil(t, a.Encode(raw))
	assert.Equal(t, byte(1), raw[0])
	assert.Equal(t, byte(2), raw[32])
	assert.Equal(t, []byte{0x40, 0x42, 0x0f, 0, 0, 0, 0, 0}, raw[64:72])
	back, err := token.DecodeAccount(raw)
	assert.Nil(t, err)
	assert.Equal(t, a, back)

	_, err = token.DecodeAccount(raw[:72])
	assert.IsErr(t, errors.ErrDeserialization, err)

	m := &token.Mint{Authority: &owner, Supply: 5, Decimals: 9, Initialized: true}
	mraw := make([]byte, token.MintLen)
	assert.Nil(t, m.Encode(mraw))
	assert.Equal(t, []byte{1, 0, 0, 0}, mraw[0:4])
	assert.Equal(t, byte(9), mraw[44])
	mback, err := token.DecodeMint(mraw)
	assert.Nil(t, err)
	assert.Equal(t, m, mback)
}

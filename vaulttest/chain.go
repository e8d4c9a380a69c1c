package vaulttest

import (
	"context"
	"testing"

	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/runtime"
	"github.com/iov-one/swapvault/store"
	"github.com/iov-one/swapvault/x/system"
	"github.com/iov-one/swapvault/x/token"
)

// FaucetLamports is the balance of the faucet every chain starts with.
const FaucetLamports = 1000000000000000

// Chain is an in-memory ledger with the system and token programs
// registered. It pays for every account it creates from a faucet.
type Chain struct {
	t      testing.TB
	Ledger *runtime.Ledger
	DB     swapvault.CacheableKVStore
	Faucet swapvault.Pubkey

	mintAuthority map[swapvault.Pubkey]swapvault.Pubkey
}

// NewChain returns a chain with the builtin programs and the given extra
// programs registered.
func NewChain(t testing.TB, programs ...func(swapvault.ProgramRegistry)) *Chain {
	t.Helper()
	c := &Chain{
		t:             t,
		Ledger:        runtime.NewLedger(),
		DB:            store.MemStore(),
		Faucet:        RandomAddr(t),
		mintAuthority: make(map[swapvault.Pubkey]swapvault.Pubkey),
	}
	system.RegisterProgram(c.Ledger)
	token.RegisterProgram(c.Ledger)
	for _, register := range programs {
		register(c.Ledger)
	}
	c.set(c.Faucet, &swapvault.Account{Lamports: FaucetLamports})
	return c
}

func (c *Chain) set(key swapvault.Pubkey, acct *swapvault.Account) {
	c.t.Helper()
	if err := c.Ledger.SetAccount(c.DB, key, acct); err != nil {
		c.t.Fatalf("cannot set account %s: %s", key, err)
	}
}

// Rent returns the rent parameters of the chain.
func (c *Chain) Rent() swapvault.Rent {
	c.t.Helper()
	conf, err := runtime.LoadConfiguration(c.DB)
	if err != nil {
		c.t.Fatalf("cannot load configuration: %s", err)
	}
	return conf.Rent
}

// Exec runs the instructions as a single transaction.
func (c *Chain) Exec(signers []swapvault.Pubkey, ixs ...swapvault.Instruction) error {
	return c.Ledger.Execute(context.Background(), c.DB, &runtime.Tx{
		Instructions: ixs,
		Signers:      signers,
	})
}

// MustExec is Exec that fails the test on error.
func (c *Chain) MustExec(signers []swapvault.Pubkey, ixs ...swapvault.Instruction) {
	c.t.Helper()
	if err := c.Exec(signers, ixs...); err != nil {
		c.t.Fatalf("transaction failed: %+v", err)
	}
}

// Fund moves lamports from the faucet to key.
func (c *Chain) Fund(key swapvault.Pubkey, lamports uint64) {
	c.t.Helper()
	c.MustExec([]swapvault.Pubkey{c.Faucet}, system.Transfer(c.Faucet, key, lamports))
}

// NewWallet returns a new funded system account.
func (c *Chain) NewWallet(lamports uint64) Key {
	c.t.Helper()
	k := NewKey(c.t)
	c.Fund(k.Pubkey, lamports)
	return k
}

// CreateMint creates and initializes a mint controlled by authority.
func (c *Chain) CreateMint(authority swapvault.Pubkey, decimals uint8) swapvault.Pubkey {
	c.t.Helper()
	mint := RandomAddr(c.t)
	c.MustExec([]swapvault.Pubkey{c.Faucet, mint},
		system.CreateAccount(c.Faucet, mint, c.Rent().MinimumBalance(token.MintLen), token.MintLen, token.ProgramID),
		token.InitializeMint(mint, decimals, authority),
	)
	c.mintAuthority[mint] = authority
	return mint
}

// CreateTokenAccount creates a token account of mint held by owner and
// mints amount tokens into it.
func (c *Chain) CreateTokenAccount(mint, owner swapvault.Pubkey, amount uint64) swapvault.Pubkey {
	c.t.Helper()
	acct := RandomAddr(c.t)
	signers := []swapvault.Pubkey{c.Faucet, acct}
	ixs := []swapvault.Instruction{
		system.CreateAccount(c.Faucet, acct, c.Rent().MinimumBalance(token.AccountLen), token.AccountLen, token.ProgramID),
		token.InitializeAccount(acct, mint, owner),
	}
	if amount > 0 {
		authority, ok := c.mintAuthority[mint]
		if !ok {
			c.t.Fatalf("mint %s was not created by this chain", mint)
		}
		signers = append(signers, authority)
		ixs = append(ixs, token.MintTo(mint, acct, authority, amount))
	}
	c.MustExec(signers, ixs...)
	return acct
}

// Account returns the stored account or nil.
func (c *Chain) Account(key swapvault.Pubkey) *swapvault.Account {
	c.t.Helper()
	acct, err := c.Ledger.Account(c.DB, key)
	if err != nil {
		c.t.Fatalf("cannot load account %s: %s", key, err)
	}
	return acct
}

// Lamports returns the balance of key, zero if the account does not exist.
func (c *Chain) Lamports(key swapvault.Pubkey) uint64 {
	c.t.Helper()
	if acct := c.Account(key); acct != nil {
		return acct.Lamports
	}
	return 0
}

// TokenBalance returns the amount held by a token account.
func (c *Chain) TokenBalance(key swapvault.Pubkey) uint64 {
	c.t.Helper()
	acct := c.Account(key)
	if acct == nil {
		c.t.Fatalf("token account %s does not exist", key)
	}
	a, err := token.DecodeAccount(acct.Data)
	if err != nil {
		c.t.Fatalf("cannot decode token account %s: %s", key, err)
	}
	return a.Amount
}

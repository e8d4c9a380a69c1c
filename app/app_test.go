package app

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/errors"
	"github.com/iov-one/swapvault/runtime"
	"github.com/iov-one/swapvault/store/iavl"
	"github.com/iov-one/swapvault/vaulttest"
	"github.com/iov-one/swapvault/x/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

const chainID = "swapvault-test"

func newTestApp(t *testing.T, funded ...vaulttest.Key) BaseApp {
	t.Helper()
	var accounts []runtime.GenesisAccount
	for _, k := range funded {
		accounts = append(accounts, runtime.GenesisAccount{
			Address:  k.Pubkey,
			Lamports: 10000000000,
			Owner:    swapvault.SystemProgramID,
		})
	}
	appState, err := json.Marshal(map[string]interface{}{"accounts": accounts})
	require.NoError(t, err)

	myApp := GenerateApp(iavl.MemCommitStore(), log.NewNopLogger(), true)
	myApp.InitChain(abci.RequestInitChain{ChainId: chainID, AppStateBytes: appState})
	myApp.Commit()
	return myApp
}

func signedTx(t *testing.T, nonce uint64, ix swapvault.Instruction, keys ...vaulttest.Key) *Tx {
	t.Helper()
	tx := &Tx{ChainID: chainID, Nonce: nonce, Instructions: []swapvault.Instruction{ix}}
	for _, k := range keys {
		require.NoError(t, tx.Sign(k.Private))
	}
	return tx
}

func marshal(t *testing.T, tx *Tx) []byte {
	t.Helper()
	raw, err := tx.Marshal()
	require.NoError(t, err)
	return raw
}

func queryLamports(t *testing.T, myApp BaseApp, key swapvault.Pubkey) uint64 {
	t.Helper()
	res := myApp.Query(abci.RequestQuery{Path: "/account", Data: []byte(key.String())})
	require.Equal(t, uint32(0), res.Code, res.Log)
	var acct swapvault.Account
	require.NoError(t, acct.Unmarshal(res.Value))
	return acct.Lamports
}

func TestDeliverAndQuery(t *testing.T) {
	alice, bob := vaulttest.NewKey(t), vaulttest.NewKey(t)
	myApp := newTestApp(t, alice)

	transfer := signedTx(t, 1, system.Transfer(alice.Pubkey, bob.Pubkey, 2000000), alice)
	raw := marshal(t, transfer)

	chres := myApp.CheckTx(raw)
	require.Equal(t, uint32(0), chres.Code, chres.Log)
	dres := myApp.DeliverTx(raw)
	require.Equal(t, uint32(0), dres.Code, dres.Log)

	// the same transaction is never executed twice
	dres = myApp.DeliverTx(raw)
	assert.Equal(t, errors.ErrDuplicate.ABCICode(), dres.Code)

	cres := myApp.Commit()
	assert.NotEmpty(t, cres.Data)
	info := myApp.Info(abci.RequestInfo{})
	assert.Equal(t, int64(2), info.LastBlockHeight)
	assert.Equal(t, cres.Data, info.LastBlockAppHash)

	assert.Equal(t, uint64(2000000), queryLamports(t, myApp, bob.Pubkey))
	assert.Equal(t, uint64(10000000000-2000000), queryLamports(t, myApp, alice.Pubkey))

	// a new nonce makes an otherwise identical transaction new
	raw = marshal(t, signedTx(t, 2, system.Transfer(alice.Pubkey, bob.Pubkey, 2000000), alice))
	dres = myApp.DeliverTx(raw)
	require.Equal(t, uint32(0), dres.Code, dres.Log)
	myApp.Commit()
	assert.Equal(t, uint64(4000000), queryLamports(t, myApp, bob.Pubkey))
}

func TestRejectedTransactions(t *testing.T) {
	alice, bob := vaulttest.NewKey(t), vaulttest.NewKey(t)
	myApp := newTestApp(t, alice)
	transfer := system.Transfer(alice.Pubkey, bob.Pubkey, 2000000)

	cases := map[string]struct {
		Raw      func(t *testing.T) []byte
		WantCode uint32
	}{
		"not a transaction": {
			Raw:      func(t *testing.T) []byte { return []byte{1, 2, 3} },
			WantCode: errors.ErrDeserialization.ABCICode(),
		},
		"signed by someone else": {
			Raw: func(t *testing.T) []byte {
				return marshal(t, signedTx(t, 1, transfer, bob))
			},
			WantCode: errors.ErrUnauthorized.ABCICode(),
		},
		"bad signature": {
			Raw: func(t *testing.T) []byte {
				tx := signedTx(t, 1, transfer, alice)
				tx.Signatures[0].Signature[0] ^= 0xff
				return marshal(t, tx)
			},
			WantCode: errors.ErrUnauthorized.ABCICode(),
		},
		"signature of another transaction": {
			Raw: func(t *testing.T) []byte {
				tx := signedTx(t, 1, transfer, alice)
				tx.Nonce = 2
				return marshal(t, tx)
			},
			WantCode: errors.ErrUnauthorized.ABCICode(),
		},
		"another chain": {
			Raw: func(t *testing.T) []byte {
				tx := signedTx(t, 1, transfer, alice)
				tx.ChainID = "other-chain"
				return marshal(t, tx)
			},
			WantCode: errors.ErrInput.ABCICode(),
		},
		"more than the balance": {
			Raw: func(t *testing.T) []byte {
				return marshal(t, signedTx(t, 1, system.Transfer(alice.Pubkey, bob.Pubkey, 20000000000), alice))
			},
			WantCode: errors.ErrInsufficientFunds.ABCICode(),
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			res := myApp.DeliverTx(tc.Raw(t))
			assert.Equal(t, tc.WantCode, res.Code, res.Log)
		})
	}

	myApp.Commit()
	assert.Equal(t, uint64(10000000000), queryLamports(t, myApp, alice.Pubkey))
}

func TestQueryErrors(t *testing.T) {
	myApp := newTestApp(t)

	res := myApp.Query(abci.RequestQuery{Path: "/wallets", Data: []byte("x")})
	assert.Equal(t, errors.ErrNotFound.ABCICode(), res.Code)

	res = myApp.Query(abci.RequestQuery{Path: "/account", Data: []byte(vaulttest.RandomAddr(t).String())})
	assert.Equal(t, errors.ErrNotFound.ABCICode(), res.Code)

	res = myApp.Query(abci.RequestQuery{Path: "/account", Data: []byte("not base58 0OIl")})
	assert.Equal(t, errors.ErrInput.ABCICode(), res.Code)
}

func TestInitChainOnce(t *testing.T) {
	myApp := newTestApp(t)
	assert.Equal(t, chainID, myApp.GetChainID())
	assert.Panics(t, func() {
		myApp.InitChain(abci.RequestInitChain{ChainId: chainID, AppStateBytes: []byte(`{}`)})
	})
}

func TestTxEncoding(t *testing.T) {
	alice := vaulttest.NewKey(t)
	tx := signedTx(t, 7, system.Transfer(alice.Pubkey, vaulttest.RandomAddr(t), 1), alice)

	back, err := UnmarshalTx(marshal(t, tx))
	require.NoError(t, err)
	assert.Equal(t, tx.ChainID, back.ChainID)
	assert.Equal(t, tx.Nonce, back.Nonce)
	assert.Equal(t, tx.Signatures, back.Signatures)
	assert.Equal(t, tx.Instructions[0].Data, back.Instructions[0].Data)
	assert.Equal(t, tx.Instructions[0].Accounts, back.Instructions[0].Accounts)

	signers, err := back.Verify(chainID)
	require.NoError(t, err)
	assert.Equal(t, []swapvault.Pubkey{alice.Pubkey}, signers)
}

package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"time"

	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/app"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/ed25519"
)

const txHeaderSize = 4

// writeTx serializes the transaction. The first bytes written contain the
// size of the serialized transaction, so that transactions can be streamed.
func writeTx(w io.Writer, tx *app.Tx) (int, error) {
	b, err := tx.Marshal()
	if err != nil {
		return 0, err
	}

	var size [txHeaderSize]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(b)))

	if n, err := w.Write(size[:]); err != nil {
		return n, err
	}
	if n, err := w.Write(b); err != nil {
		return n + txHeaderSize, err
	}
	return txHeaderSize + len(b), nil
}

func readTx(r io.Reader) (*app.Tx, error) {
	var size [txHeaderSize]byte
	if _, err := io.ReadFull(r, size[:]); err != nil {
		return nil, err
	}
	raw := make([]byte, binary.BigEndian.Uint32(size[:]))
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, err
	}
	return app.UnmarshalTx(raw)
}

// newTx returns an unsigned transaction carrying ix.
func newTx(chainID string, nonce uint64, ix swapvault.Instruction) *app.Tx {
	if nonce == 0 {
		nonce = uint64(time.Now().UnixNano())
	}
	return &app.Tx{
		ChainID:      chainID,
		Nonce:        nonce,
		Instructions: []swapvault.Instruction{ix},
	}
}

// txFlags registers the flags every transaction building command accepts.
func txFlags(fl *pflag.FlagSet) (chainID *string, nonce *uint64) {
	chainID = fl.String("chain-id", env("SWAPCLI_CHAIN_ID", ""),
		"Chain the transaction is meant for. You can use SWAPCLI_CHAIN_ID environment variable to set it.")
	nonce = fl.Uint64("nonce", 0, "Transaction nonce (default current time).")
	return chainID, nonce
}

func keyFlag(fl *pflag.FlagSet) *string {
	return fl.String("key", env("SWAPCLI_PRIV_KEY", os.Getenv("HOME")+"/.swapvault.priv.key"),
		"Path to the private key file. You can use SWAPCLI_PRIV_KEY environment variable to set it.")
}

func loadKey(path string) (ed25519.PrivateKey, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read private key file")
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid private key length: %d", len(raw))
	}
	return ed25519.PrivateKey(raw), nil
}

func publicKey(key ed25519.PrivateKey) swapvault.Pubkey {
	var p swapvault.Pubkey
	copy(p[:], key.Public().(ed25519.PublicKey))
	return p
}

// pubkeyValue is a pflag.Value of a base58 encoded key.
type pubkeyValue struct {
	p *swapvault.Pubkey
}

func (v pubkeyValue) String() string {
	if v.p == nil || v.p.IsZero() {
		return ""
	}
	return v.p.String()
}

func (v pubkeyValue) Set(raw string) error {
	p, err := swapvault.ParsePubkey(raw)
	if err != nil {
		return err
	}
	*v.p = p
	return nil
}

func (pubkeyValue) Type() string {
	return "pubkey"
}

// flPubkey returns a key set by a command line argument.
func flPubkey(fl *pflag.FlagSet, name, usage string) *swapvault.Pubkey {
	var p swapvault.Pubkey
	fl.Var(pubkeyValue{p: &p}, name, usage)
	return &p
}

// required returns an error naming the first flag left unset.
func required(fl *pflag.FlagSet, names ...string) error {
	for _, name := range names {
		if !fl.Changed(name) {
			return fmt.Errorf("--%s is required", name)
		}
	}
	return nil
}

// parseFlags parses args with a usage message that starts with doc.
func parseFlags(fl *pflag.FlagSet, doc string, args []string) error {
	fl.Usage = func() {
		fmt.Fprint(os.Stderr, doc)
		fmt.Fprintln(os.Stderr)
		fl.PrintDefaults()
	}
	return fl.Parse(args)
}

package vaulttest

import (
	"crypto/rand"
	"testing"

	"github.com/iov-one/swapvault"
	"golang.org/x/crypto/ed25519"
)

// Key is an ed25519 key pair.
type Key struct {
	Pubkey  swapvault.Pubkey
	Private ed25519.PrivateKey
}

// NewKey generates a random key pair.
func NewKey(t testing.TB) Key {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("cannot generate key: %s", err)
	}
	var k Key
	copy(k.Pubkey[:], pub)
	k.Private = priv
	return k
}

// Sign returns the signature of msg.
func (k Key) Sign(msg []byte) []byte {
	return ed25519.Sign(k.Private, msg)
}

// RandomAddr returns the public half of a new key.
func RandomAddr(t testing.TB) swapvault.Pubkey {
	t.Helper()
	return NewKey(t).Pubkey
}

package app

import (
	"crypto/sha256"

	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/errors"
	"github.com/near/borsh-go"
	"golang.org/x/crypto/ed25519"
)

// Tx is the wire form of a transaction. It is borsh encoded.
type Tx struct {
	ChainID string
	// Nonce makes otherwise identical transactions distinct. Every
	// transaction can be executed only once.
	Nonce        uint64
	Instructions []swapvault.Instruction
	Signatures   []Signature
}

// Signature is an ed25519 signature of the sign bytes of a transaction.
type Signature struct {
	Pubkey    swapvault.Pubkey
	Signature [ed25519.SignatureSize]byte
}

// SignBytes returns the bytes every signer signs: the transaction without
// its signatures.
func (tx *Tx) SignBytes() ([]byte, error) {
	unsigned := *tx
	unsigned.Signatures = nil
	raw, err := borsh.Serialize(unsigned)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "serialize transaction: %s", err)
	}
	return raw, nil
}

// ID identifies a transaction independently of its signatures.
func (tx *Tx) ID() ([]byte, error) {
	raw, err := tx.SignBytes()
	if err != nil {
		return nil, err
	}
	id := sha256.Sum256(raw)
	return id[:], nil
}

// Sign appends the signature of key.
func (tx *Tx) Sign(key ed25519.PrivateKey) error {
	msg, err := tx.SignBytes()
	if err != nil {
		return err
	}
	var sig Signature
	copy(sig.Pubkey[:], key.Public().(ed25519.PublicKey))
	copy(sig.Signature[:], ed25519.Sign(key, msg))
	tx.Signatures = append(tx.Signatures, sig)
	return nil
}

// Marshal returns the wire form of the transaction.
func (tx *Tx) Marshal() ([]byte, error) {
	raw, err := borsh.Serialize(*tx)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "serialize transaction: %s", err)
	}
	return raw, nil
}

// UnmarshalTx parses the wire form of a transaction.
func UnmarshalTx(raw []byte) (*Tx, error) {
	var tx Tx
	if err := borsh.Deserialize(&tx, raw); err != nil {
		return nil, errors.Wrapf(errors.ErrDeserialization, "transaction: %s", err)
	}
	return &tx, nil
}

// Verify checks the transaction against the chain it is sent to and returns
// the keys that signed it. Every account an instruction marks as signer
// must have a valid signature.
func (tx *Tx) Verify(chainID string) ([]swapvault.Pubkey, error) {
	if tx.ChainID != chainID {
		return nil, errors.Wrapf(errors.ErrInput, "transaction for chain %q", tx.ChainID)
	}
	if len(tx.Instructions) == 0 {
		return nil, errors.Wrap(errors.ErrInput, "transaction without instructions")
	}
	msg, err := tx.SignBytes()
	if err != nil {
		return nil, err
	}

	signed := make(map[swapvault.Pubkey]bool, len(tx.Signatures))
	signers := make([]swapvault.Pubkey, 0, len(tx.Signatures))
	for _, s := range tx.Signatures {
		if !ed25519.Verify(ed25519.PublicKey(s.Pubkey[:]), msg, s.Signature[:]) {
			return nil, errors.Wrapf(errors.ErrUnauthorized, "invalid signature of %s", s.Pubkey)
		}
		if !signed[s.Pubkey] {
			signed[s.Pubkey] = true
			signers = append(signers, s.Pubkey)
		}
	}
	for i, ix := range tx.Instructions {
		for _, m := range ix.Accounts {
			if m.IsSigner && !signed[m.Pubkey] {
				return nil, errors.Wrapf(errors.ErrUnauthorized, "instruction %d: missing signature of %s", i, m.Pubkey)
			}
		}
	}
	return signers, nil
}

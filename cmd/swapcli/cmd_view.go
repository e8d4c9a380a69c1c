package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/app"
	"github.com/spf13/pflag"
)

func cmdTransactionView(input io.Reader, output io.Writer, args []string) error {
	fl := pflag.NewFlagSet("view", pflag.ContinueOnError)
	err := parseFlags(fl, `
Read binary serialized transaction from standard input and print it out in
a human readable JSON form.
`, args)
	if err != nil {
		return err
	}

	tx, err := readTx(input)
	if err != nil {
		return fmt.Errorf("cannot read transaction: %s", err)
	}
	pretty, err := json.MarshalIndent(viewOf(tx), "", "\t")
	if err != nil {
		return fmt.Errorf("cannot JSON serialize: %s", err)
	}
	_, err = output.Write(append(pretty, '\n'))
	return err
}

type txView struct {
	ChainID      string             `json:"chain_id"`
	Nonce        uint64             `json:"nonce"`
	Instructions []instructionView  `json:"instructions"`
	SignedBy     []swapvault.Pubkey `json:"signed_by"`
}

type instructionView struct {
	Program  swapvault.Pubkey `json:"program"`
	Accounts []accountView    `json:"accounts"`
	Data     string           `json:"data"`
}

type accountView struct {
	Pubkey   swapvault.Pubkey `json:"pubkey"`
	Signer   bool             `json:"signer,omitempty"`
	Writable bool             `json:"writable,omitempty"`
}

func viewOf(tx *app.Tx) txView {
	v := txView{
		ChainID:  tx.ChainID,
		Nonce:    tx.Nonce,
		SignedBy: make([]swapvault.Pubkey, 0, len(tx.Signatures)),
	}
	for _, ix := range tx.Instructions {
		iv := instructionView{Program: ix.ProgramID, Data: hex.EncodeToString(ix.Data)}
		for _, m := range ix.Accounts {
			iv.Accounts = append(iv.Accounts, accountView{
				Pubkey:   m.Pubkey,
				Signer:   m.IsSigner,
				Writable: m.IsWritable,
			})
		}
		v.Instructions = append(v.Instructions, iv)
	}
	for _, s := range tx.Signatures {
		v.SignedBy = append(v.SignedBy, s.Pubkey)
	}
	return v
}

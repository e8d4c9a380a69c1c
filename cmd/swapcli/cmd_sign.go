package main

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"
)

func cmdSignTransaction(input io.Reader, output io.Writer, args []string) error {
	fl := pflag.NewFlagSet("sign", pflag.ContinueOnError)
	keyPathFl := keyFlag(fl)
	err := parseFlags(fl, `
Read binary serialized transaction from standard input, sign it with your
private key and write it to standard output.

Every account an instruction marks as signer must sign before the
transaction is submitted.
`, args)
	if err != nil {
		return err
	}

	key, err := loadKey(*keyPathFl)
	if err != nil {
		return err
	}
	tx, err := readTx(input)
	if err != nil {
		return fmt.Errorf("cannot read transaction: %s", err)
	}
	signer := publicKey(key)
	for _, s := range tx.Signatures {
		if s.Pubkey == signer {
			return fmt.Errorf("transaction already signed by %s", signer)
		}
	}
	if err := tx.Sign(key); err != nil {
		return fmt.Errorf("cannot sign transaction: %s", err)
	}
	_, err = writeTx(output, tx)
	return err
}

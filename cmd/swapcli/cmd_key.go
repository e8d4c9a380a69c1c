package main

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/crypto/ed25519"
)

func cmdKeygen(input io.Reader, output io.Writer, args []string) error {
	fl := pflag.NewFlagSet("keygen", pflag.ContinueOnError)
	keyPathFl := keyFlag(fl)
	err := parseFlags(fl, `
Generate a new private key.

When successful a new file with binary content containing private key is
created. This command fails if the private key file already exists.
`, args)
	if err != nil {
		return err
	}

	if _, err := os.Stat(*keyPathFl); !os.IsNotExist(err) {
		// Never overwrite an existing private key. It must be
		// deleted manually first.
		return fmt.Errorf("private key file %q already exists, delete this file and try again", *keyPathFl)
	}

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return fmt.Errorf("cannot generate ed25519 key: %s", err)
	}

	fd, err := os.OpenFile(*keyPathFl, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("cannot create private key file: %s", err)
	}
	defer fd.Close()

	if _, err := fd.Write(priv); err != nil {
		return fmt.Errorf("cannot write private key: %s", err)
	}
	if err := fd.Close(); err != nil {
		return fmt.Errorf("cannot close private key file: %s", err)
	}
	return nil
}

func cmdKeyaddr(input io.Reader, output io.Writer, args []string) error {
	fl := pflag.NewFlagSet("keyaddr", pflag.ContinueOnError)
	keyPathFl := keyFlag(fl)
	err := parseFlags(fl, `
Print out the base58 address of your private key.
`, args)
	if err != nil {
		return err
	}

	key, err := loadKey(*keyPathFl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(output, publicKey(key))
	return err
}

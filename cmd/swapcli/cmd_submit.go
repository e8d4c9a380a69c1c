package main

import (
	"fmt"
	"io"

	"github.com/iov-one/swapvault"
	"github.com/spf13/pflag"
	cmn "github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/rpc/client"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
	tmtypes "github.com/tendermint/tendermint/types"
)

// tendermintClient is the part of the tendermint rpc client used to talk to
// a node.
type tendermintClient interface {
	BroadcastTxCommit(tx tmtypes.Tx) (*ctypes.ResultBroadcastTxCommit, error)
	ABCIQuery(path string, data cmn.HexBytes) (*ctypes.ResultABCIQuery, error)
}

var newTendermintClient = func(addr string) tendermintClient {
	return client.NewHTTP(addr, "/websocket")
}

func tmAddrFlag(fl *pflag.FlagSet) *string {
	return fl.String("tm", env("SWAPCLI_TM_ADDR", "http://localhost:26657"),
		"Tendermint node address. You can use SWAPCLI_TM_ADDR environment variable to set it.")
}

func cmdSubmitTransaction(input io.Reader, output io.Writer, args []string) error {
	fl := pflag.NewFlagSet("submit", pflag.ContinueOnError)
	tmAddrFl := tmAddrFlag(fl)
	err := parseFlags(fl, `
Read binary serialized transaction from standard input and submit it. The
command waits until the transaction is included in a block.

Make sure to collect enough signatures before submitting the transaction.
`, args)
	if err != nil {
		return err
	}

	tx, err := readTx(input)
	if err != nil {
		return fmt.Errorf("cannot read transaction from input: %s", err)
	}
	raw, err := tx.Marshal()
	if err != nil {
		return fmt.Errorf("cannot serialize transaction: %s", err)
	}

	res, err := newTendermintClient(*tmAddrFl).BroadcastTxCommit(raw)
	if err != nil {
		return fmt.Errorf("cannot broadcast transaction: %s", err)
	}
	if res.CheckTx.IsErr() {
		return fmt.Errorf("transaction rejected (code %d): %s", res.CheckTx.Code, res.CheckTx.Log)
	}
	if res.DeliverTx.IsErr() {
		return fmt.Errorf("transaction failed (code %d): %s", res.DeliverTx.Code, res.DeliverTx.Log)
	}
	_, err = fmt.Fprintf(output, "%X %d\n", res.Hash, res.Height)
	return err
}

func cmdQueryAccount(input io.Reader, output io.Writer, args []string) error {
	fl := pflag.NewFlagSet("query-account", pflag.ContinueOnError)
	tmAddrFl := tmAddrFlag(fl)
	addressFl := flPubkey(fl, "address", "Address of the account.")
	err := parseFlags(fl, `
Print out the committed state of an account.
`, args)
	if err != nil {
		return err
	}
	if err := required(fl, "address"); err != nil {
		return err
	}

	res, err := newTendermintClient(*tmAddrFl).ABCIQuery("/account", []byte(addressFl.String()))
	if err != nil {
		return fmt.Errorf("cannot query: %s", err)
	}
	if res.Response.IsErr() {
		return fmt.Errorf("query failed (code %d): %s", res.Response.Code, res.Response.Log)
	}
	var acct swapvault.Account
	if err := acct.Unmarshal(res.Response.Value); err != nil {
		return fmt.Errorf("cannot decode account: %s", err)
	}
	_, err = fmt.Fprintf(output, "lamports:   %d\nowner:      %s\nexecutable: %t\ndata:       %X\n",
		acct.Lamports, acct.Owner, acct.Executable, acct.Data)
	return err
}

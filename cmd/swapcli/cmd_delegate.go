package main

import (
	"fmt"
	"io"

	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/x/delegation"
	"github.com/iov-one/swapvault/x/escrow"
	"github.com/spf13/pflag"
)

func cmdDelegate(input io.Reader, output io.Writer, args []string) error {
	fl := pflag.NewFlagSet("delegate", pflag.ContinueOnError)
	chainIDFl, nonceFl := txFlags(fl)
	var (
		makerFl     = flPubkey(fl, "maker", "Maker of the escrow. Must sign the transaction.")
		delegFl     = flPubkey(fl, "delegation-program", "Delegation program id (default built in).")
		validatorFl = flPubkey(fl, "validator", "Validator allowed to process the escrow while delegated.")
		frequencyFl = fl.Uint32("commit-frequency", delegation.DefaultCommitFrequencyMs, "Commit frequency in milliseconds.")
	)
	err := parseFlags(fl, `
Create a transaction that hands the escrow account over to the delegation
program. The escrow cannot be settled until it is undelegated.
`, args)
	if err != nil {
		return err
	}
	if err := required(fl, "maker"); err != nil {
		return err
	}

	accounts, err := delegationAccounts(*makerFl, *delegFl)
	if err != nil {
		return err
	}
	delegArgs := &delegation.DelegateArgs{CommitFrequencyMs: *frequencyFl}
	if fl.Changed("validator") {
		v := *validatorFl
		delegArgs.Validator = &v
	}
	ix, err := escrow.Delegate(accounts, delegArgs)
	if err != nil {
		return fmt.Errorf("cannot build instruction: %s", err)
	}
	_, err = writeTx(output, newTx(*chainIDFl, *nonceFl, ix))
	return err
}

func cmdUndelegate(input io.Reader, output io.Writer, args []string) error {
	fl := pflag.NewFlagSet("undelegate", pflag.ContinueOnError)
	chainIDFl, nonceFl := txFlags(fl)
	var (
		makerFl = flPubkey(fl, "maker", "Maker of the escrow. Must sign the transaction.")
		delegFl = flPubkey(fl, "delegation-program", "Delegation program id (default built in).")
	)
	err := parseFlags(fl, `
Create a transaction that returns a delegated escrow account to the escrow
program.
`, args)
	if err != nil {
		return err
	}
	if err := required(fl, "maker"); err != nil {
		return err
	}

	accounts, err := delegationAccounts(*makerFl, *delegFl)
	if err != nil {
		return err
	}
	ix, err := escrow.Undelegate(accounts)
	if err != nil {
		return fmt.Errorf("cannot build instruction: %s", err)
	}
	_, err = writeTx(output, newTx(*chainIDFl, *nonceFl, ix))
	return err
}

func delegationAccounts(maker, delegationProgram swapvault.Pubkey) (escrow.DelegationAccounts, error) {
	auth, err := escrow.FindEscrow(escrow.ProgramID, maker)
	if err != nil {
		return escrow.DelegationAccounts{}, fmt.Errorf("cannot derive escrow address: %s", err)
	}
	return escrow.DelegationAccounts{
		Maker:             maker,
		Escrow:            auth.Address(),
		DelegationProgram: delegationProgram,
	}, nil
}

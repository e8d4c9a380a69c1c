package main

import (
	"fmt"
	"io"

	"github.com/iov-one/swapvault/x/escrow"
	"github.com/spf13/pflag"
)

func cmdPDA(input io.Reader, output io.Writer, args []string) error {
	fl := pflag.NewFlagSet("pda", pflag.ContinueOnError)
	var (
		makerFl   = flPubkey(fl, "maker", "Maker of the escrow.")
		programFl = flPubkey(fl, "program", "Escrow program id (default built in).")
	)
	err := parseFlags(fl, `
Print the escrow address of a maker and its bump seed.

The vault of the escrow must be a token account of mint a owned by this
address.
`, args)
	if err != nil {
		return err
	}
	if err := required(fl, "maker"); err != nil {
		return err
	}
	program := escrow.ProgramID
	if fl.Changed("program") {
		program = *programFl
	}

	auth, err := escrow.FindEscrow(program, *makerFl)
	if err != nil {
		return fmt.Errorf("cannot derive escrow address: %s", err)
	}
	_, err = fmt.Fprintf(output, "%s %d\n", auth.Address(), auth.Bump())
	return err
}

func cmdMake(input io.Reader, output io.Writer, args []string) error {
	fl := pflag.NewFlagSet("make", pflag.ContinueOnError)
	chainIDFl, nonceFl := txFlags(fl)
	var (
		makerFl   = flPubkey(fl, "maker", "Maker of the offer. Must sign the transaction.")
		mintAFl   = flPubkey(fl, "mint-a", "Mint of the offered tokens.")
		mintBFl   = flPubkey(fl, "mint-b", "Mint of the requested tokens.")
		ataAFl    = flPubkey(fl, "maker-ata-a", "Maker token account of mint a the offer is funded from.")
		vaultFl   = flPubkey(fl, "vault", "Token account of mint a owned by the escrow address.")
		amountAFl = fl.Uint64("amount-a", 0, "Amount of mint a tokens offered.")
		amountBFl = fl.Uint64("amount-b", 0, "Amount of mint b tokens requested.")
	)
	err := parseFlags(fl, `
Create a transaction that opens an escrow offering tokens of mint a in
exchange for tokens of mint b.

The escrow address is derived from the maker. Use the pda command to learn
it before creating the vault.
`, args)
	if err != nil {
		return err
	}
	if err := required(fl, "maker", "mint-a", "mint-b", "maker-ata-a", "vault", "amount-a", "amount-b"); err != nil {
		return err
	}

	auth, err := escrow.FindEscrow(escrow.ProgramID, *makerFl)
	if err != nil {
		return fmt.Errorf("cannot derive escrow address: %s", err)
	}
	ix := escrow.Make(escrow.MakeAccounts{
		Maker:     *makerFl,
		MintA:     *mintAFl,
		MintB:     *mintBFl,
		MakerAtaA: *ataAFl,
		Vault:     *vaultFl,
		Escrow:    auth.Address(),
	}, escrow.MakePayload{
		Bump:    auth.Bump(),
		AmountA: *amountAFl,
		AmountB: *amountBFl,
	})
	_, err = writeTx(output, newTx(*chainIDFl, *nonceFl, ix))
	return err
}

func cmdTake(input io.Reader, output io.Writer, args []string) error {
	fl := pflag.NewFlagSet("take", pflag.ContinueOnError)
	chainIDFl, nonceFl := txFlags(fl)
	var (
		takerFl  = flPubkey(fl, "taker", "Taker of the offer. Must sign the transaction.")
		makerFl  = flPubkey(fl, "maker", "Maker of the offer.")
		mintAFl  = flPubkey(fl, "mint-a", "Mint of the offered tokens.")
		mintBFl  = flPubkey(fl, "mint-b", "Mint of the requested tokens.")
		takerAFl = flPubkey(fl, "taker-ata-a", "Taker token account of mint a receiving the vault.")
		takerBFl = flPubkey(fl, "taker-ata-b", "Taker token account of mint b paying the maker.")
		makerBFl = flPubkey(fl, "maker-ata-b", "Maker token account of mint b receiving the payment.")
		vaultFl  = flPubkey(fl, "vault", "Vault of the escrow.")
	)
	err := parseFlags(fl, `
Create a transaction that settles an open escrow. The taker pays the
requested amount to the maker and receives the vault content.
`, args)
	if err != nil {
		return err
	}
	if err := required(fl, "taker", "maker", "mint-a", "mint-b", "taker-ata-a", "taker-ata-b", "maker-ata-b", "vault"); err != nil {
		return err
	}

	auth, err := escrow.FindEscrow(escrow.ProgramID, *makerFl)
	if err != nil {
		return fmt.Errorf("cannot derive escrow address: %s", err)
	}
	ix := escrow.Take(escrow.TakeAccounts{
		Taker:     *takerFl,
		Maker:     *makerFl,
		MintA:     *mintAFl,
		MintB:     *mintBFl,
		TakerAtaA: *takerAFl,
		TakerAtaB: *takerBFl,
		MakerAtaB: *makerBFl,
		Vault:     *vaultFl,
		Escrow:    auth.Address(),
	})
	_, err = writeTx(output, newTx(*chainIDFl, *nonceFl, ix))
	return err
}

func cmdRefund(input io.Reader, output io.Writer, args []string) error {
	fl := pflag.NewFlagSet("refund", pflag.ContinueOnError)
	chainIDFl, nonceFl := txFlags(fl)
	var (
		makerFl = flPubkey(fl, "maker", "Maker of the offer. Must sign the transaction.")
		mintAFl = flPubkey(fl, "mint-a", "Mint of the offered tokens.")
		ataAFl  = flPubkey(fl, "maker-ata-a", "Maker token account of mint a receiving the vault.")
		vaultFl = flPubkey(fl, "vault", "Vault of the escrow.")
	)
	err := parseFlags(fl, `
Create a transaction that cancels an open escrow and returns the vault
content to the maker.
`, args)
	if err != nil {
		return err
	}
	if err := required(fl, "maker", "mint-a", "maker-ata-a", "vault"); err != nil {
		return err
	}

	auth, err := escrow.FindEscrow(escrow.ProgramID, *makerFl)
	if err != nil {
		return fmt.Errorf("cannot derive escrow address: %s", err)
	}
	ix := escrow.Refund(escrow.RefundAccounts{
		Maker:     *makerFl,
		MintA:     *mintAFl,
		MakerAtaA: *ataAFl,
		Vault:     *vaultFl,
		Escrow:    auth.Address(),
	})
	_, err = writeTx(output, newTx(*chainIDFl, *nonceFl, ix))
	return err
}

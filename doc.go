/*
Package swapvault defines the common interfaces of an account based execution
environment, together with the implementations that are too small to deserve
their own package.

An account is a balance (lamports), a byte buffer and an owner. Only the owner
program may change the bytes, debit the balance or hand the account over to a
new owner. Programs receive the accounts an instruction names, in order, and
may call into other programs synchronously through Env.Invoke.

Program derived addresses (see pda.go) are addresses no private key controls.
A program proves its control over such an address by handing an Authority to
Env.Invoke. The host re-derives the address against the calling program id
before treating the account as a signer.

We pass context through context.Context between the host and programs. There
should exist two functions for every XYZ of type T that we want to support in
Context:

  WithXYZ(Context, T) Context
  GetXYZ(Context) (val T, ok bool)
*/
package swapvault

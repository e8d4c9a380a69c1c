/*
Package runtime is the host that executes programs against accounts.

A transaction is a list of instructions. Each instruction names a program
and the accounts it may touch. The ledger loads those accounts from the
store, runs the programs and checks after every program call that the
ownership rules hold:

  - only the owner of an account may change its data or debit it
  - only the owner may reassign an account, and only when its data is zeroed
  - any writable account may be credited
  - read-only accounts are never modified
  - no lamports are created or destroyed

Programs call each other through Env.Invoke. A nested call may only use the
accounts its caller received and may not gain signer or writable privilege,
except for addresses one of the caller's authorities derives.

A transaction is atomic: all account changes are written at once, or none.
*/
package runtime

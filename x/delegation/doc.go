/*
Package delegation implements the delegation authority: a program that takes
temporary custody of accounts owned by other programs.

The owner program hands over an account by recreating it under this
program and calling Delegate. The authority records who the account belongs
to in a delegation record and a metadata account, both derived from the
subject address. Return gives the account back to the system program so the
owner can recreate it, and Close removes the bookkeeping once the owner has
the account again.
*/
package delegation

/*
Package token implements a fungible token program.

A Mint defines a token kind. An Account holds a balance of exactly one
mint on behalf of an owner, which may be a key or a derived address. Only
the owner can move or close a token account.

Mint and Account use the fixed little endian layouts of the widespread
token program, so that clients built for it can read the state.
*/
package token

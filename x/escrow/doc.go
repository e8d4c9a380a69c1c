/*
Package escrow implements a two party token swap.

A maker opens an escrow with Make: the offered tokens move into a vault
held by the escrow account, an address derived from the maker key. The
escrow account stores what the maker wants in exchange. A taker settles
the escrow with Take, paying the maker and receiving the vault content in
the same transaction. The maker can cancel with Refund.

A dormant escrow account can be handed to a delegation authority with
Delegate and taken back with Undelegate. Its content is kept in a buffer
account in the meantime, see package custody.
*/
package escrow

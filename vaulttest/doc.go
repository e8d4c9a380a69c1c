// Package vaulttest provides helpers to set up a ledger with the builtin
// programs, keys, mints and token accounts in tests.
package vaulttest

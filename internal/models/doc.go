// Package models defines the core domain models for the shared-expense ledger.
//
// # Ledger Models
//
//   - LedgerEntry: a posted expense or settlement inside one group
//   - Share: one member's integer-cent portion of an entry
//   - Group: a set of members who share entries
//   - Member / UnknownMember: who a member ID resolves to for display
//
// # Money
//
// Amounts are int64 minor currency units (cents). Floating point never
// carries money; percent inputs are decimal.Decimal values kept only to
// describe how percent-split shares were derived.
//
// # Derived Data
//
// Balances are not models: they are projections computed by the calculator
// package from entries and shares on every read.
package models

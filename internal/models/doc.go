// Package models defines the persisted records of splitgroup.
//
// Users register with an email and password and join groups through
// memberships. A group accumulates expenses, each split among some of its
// members, and payments recorded between members. Balances are never stored:
// they are recomputed from expenses and payments by the calculator package.
//
// Monetary amounts are decimal.Decimal and persisted as decimal strings.
// Relationships are expressed with ID strings, never pointers.
package models

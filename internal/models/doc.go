// Package models defines the core domain models for eventsplit.
//
// # Models
//
//   - Event: a shared-expense session identified by a short code
//   - Participant: a named party of one event (name is the natural key)
//   - Expense: one payment by one participant, split among all participants
//   - Debt: a derived, directed balance between two participants
//
// # Design Principles
//
// 1. **Integer money**: amounts are held in cents (see Money); no float math
// 2. **Natural keys**: participants are keyed by (event code, name), debts by
//    (event code, debtor, creditor)
// 3. **Derived debts**: debts are never edited except for the received flag;
//    they are regenerated from expenses on every relevant change
// 4. **Avoid circular references**: relationships use names and codes, not pointers
package models

// Package models defines the core domain models for CircleWallet.
//
// # Models
//
//   - Circle: a group that pools dues; identified by a shareable 6-digit code
//   - Member: an identity bound to a circle with a persisted role (admin or member)
//   - Event: a cost-sharing unit inside a circle; every circle owns one general fund event
//   - Participant: an event-scoped guest who is not a circle member
//   - Transaction: the atomic ledger entry recorded against one event
//
// # Design Principles
//
// 1. **Integer money**: every amount is an int64 count of whole currency units
// 2. **No stored totals**: balances are always derived from transactions, never persisted
// 3. **Avoid circular references**: relationships use ID strings instead of pointers
// 4. **Closed type set**: transaction types are a fixed enum dispatched through a table
//
// # Identifiers
//
// Circles use numeric join codes, the general fund event uses the fixed ID "general",
// and everything else uses prefixed TypeIDs (see id.go). Member and guest identities are
// opaque identity-provider ids and never collide with each other.
package models

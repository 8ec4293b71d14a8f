// Package ownership holds the ownership data model and the in-memory cache
// that serves all reads of tokenized-asset state.
//
// The cache is the only shared mutable resource in the system. It is written
// exclusively by the reconciliation engine and read by everyone else through
// snapshot copies, so readers never block writers and never observe a
// half-applied mutation.
//
// # Invariants
//
// For every cached asset:
//   - AvailableSupply = TotalSupply - sum of holder balances
//   - FundingPercent = (TotalSupply-AvailableSupply)/TotalSupply*100
//   - no holding with balance zero exists in the map
//   - transaction records are unique by id
//
// A transfer that would break these (a debit below zero) is rejected with
// InvariantViolationError and flags the asset as needing resync; the last
// known-good snapshot keeps serving reads until the next Sync replaces it.
//
// # History
//
// Each asset keeps its processed transactions in a fixed-capacity ring
// buffer. The ring doubles as the deduplication window: replaying an event
// whose id is still buffered is a no-op.
//
// Distribution statistics (top holders, mean/median ownership, concentration
// ratio) are computed by the pure Distribution function over a holdings
// snapshot and are never stored.
package ownership

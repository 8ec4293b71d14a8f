// Package reconcile implements the ownership reconciliation engine.
//
// The engine merges two sources of truth into the in-memory ownership
// cache: the append-only ledger, which is authoritative for balances and
// supply, and the mutable datastore, which carries business metadata such
// as pricing and the reserve address. Live feed events are applied
// incrementally in ledger sequence order; a periodic full sync rebuilds
// each asset from scratch and wins every disagreement.
//
// All cache writes go through the engine. Concurrent syncs of the same
// asset collapse into a single fetch, out-of-order feed events are parked
// until their predecessors arrive, and a sequence gap that outgrows the
// reorder window triggers a full resync instead of guessing at balances.
package reconcile

// Package assets is the HTTP surface over the reconciliation engine.
//
// All reads are served from the in-memory ownership cache and never touch
// the datastore or the ledger; a response may therefore be slightly stale,
// which the stale flag makes visible. Sync and drift endpoints reach out
// to the backing sources on demand.
package assets

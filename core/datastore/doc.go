// Package datastore reads asset metadata and historical holdings from the
// marketplace database, the mutable secondary source of truth next to the
// ledger.
//
// The reconciliation engine consumes the Store interface and never writes:
// persistence stays with the services owning the asset_listings and
// asset_holdings tables. GormStore is the MySQL implementation.
package datastore

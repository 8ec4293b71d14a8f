// Package utils provides common utility functions shared across the service.
// Its conversion helpers coerce loosely-typed values, primarily fields of
// ledger feed payloads, into concrete Go types without panicking.
package utils

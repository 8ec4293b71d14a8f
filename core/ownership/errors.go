package ownership

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an asset is not present in the cache.
var ErrNotFound = errors.New("asset not found")

// ErrNotTokenized is returned when an asset exists in the datastore but has
// no ledger-native identifier, so it cannot be monitored.
var ErrNotTokenized = errors.New("asset is not tokenized")

// ErrDuplicateTransaction is returned when a transaction id was already
// applied. Callers treat it as a no-op to keep event replay idempotent.
var ErrDuplicateTransaction = errors.New("transaction already applied")

// InvariantViolationError reports a transfer that would break the ownership
// invariants (a debit below zero). The cache never applies such a transfer;
// it flags the asset as needing resync instead.
type InvariantViolationError struct {
	// AssetID identifies the affected asset.
	AssetID string
	// Holder is the account whose debit would go negative.
	Holder string
	// Balance is the holder's current cached balance.
	Balance uint64
	// Debit is the requested debit amount.
	Debit uint64
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant violation on asset %s: debit %d exceeds balance %d of holder %s",
		e.AssetID, e.Debit, e.Balance, e.Holder)
}

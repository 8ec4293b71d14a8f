package ledger

import (
	"context"
	"time"
)

// Supply is the on-ledger supply description of one asset.
type Supply struct {
	// Total is the total number of base units ever created.
	Total uint64 `json:"total"`
	// Decimals is the display precision of the asset.
	Decimals uint32 `json:"decimals"`
}

// TransferEvent is a validated, strongly-typed ledger transfer notification.
// Malformed feed payloads never make it into this type.
type TransferEvent struct {
	// LedgerID is the ledger-native asset id the transfer belongs to.
	LedgerID uint64
	// TxID is the unique ledger transaction id.
	TxID string
	// From is the debited account, empty for pure mints.
	From string
	// To is the credited account.
	To string
	// Amount is the number of base units moved. Zero marks an opt-in.
	Amount uint64
	// Seq is the confirmation round, the authoritative ordering key.
	Seq uint64
	// Timestamp is the ledger time of the transaction.
	Timestamp time.Time
	// Confirmed indicates the ledger reported the transfer as final.
	Confirmed bool
}

// Client queries the authoritative ledger and opens live event feeds.
type Client interface {
	// AssetSupply returns the on-ledger supply of the asset.
	AssetSupply(ctx context.Context, ledgerID uint64) (Supply, error)

	// AccountBalance returns the holder's balance of the asset.
	AccountBalance(ctx context.Context, holder string, ledgerID uint64) (uint64, error)

	// Subscribe opens a live transfer feed filtered to the given asset ids.
	Subscribe(ctx context.Context, ledgerIDs []uint64) (Stream, error)
}

// Stream is one live subscription to the ledger's transfer feed.
type Stream interface {
	// Events returns the feed channel. It is closed when the stream dies;
	// Err then reports why.
	Events() <-chan TransferEvent

	// UpdateFilter replaces the set of asset ids the feed is filtered to.
	UpdateFilter(ledgerIDs []uint64) error

	// Err returns the terminal error after Events is closed, nil on a
	// clean Close.
	Err() error

	// Close tears the subscription down.
	Close() error
}

package ownership

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a processed ledger transaction relative to the
// asset's reserve address.
type TransactionType string

const (
	// TxIssuance moves shares from the reserve to a holder (primary sale).
	TxIssuance TransactionType = "issuance"
	// TxTransfer moves shares between two holders.
	TxTransfer TransactionType = "transfer"
	// TxRedemption returns shares from a holder to the reserve.
	TxRedemption TransactionType = "redemption"
	// TxOptIn is a zero-amount registration transaction. It touches no balances.
	TxOptIn TransactionType = "opt_in"
)

// Classify derives the transaction type from the endpoints' position
// relative to the asset's reserve address. Business-level classification
// (purchase, gift, escrow release) is left to higher layers.
func Classify(reserveAddress, from, to string, amount uint64) TransactionType {
	fromReserve := from == "" || from == reserveAddress
	toReserve := to == "" || to == reserveAddress
	switch {
	case amount == 0:
		return TxOptIn
	case fromReserve && toReserve:
		// The reserve shuffling its own shares is not an ownership change.
		return TxOptIn
	case fromReserve:
		return TxIssuance
	case toReserve:
		return TxRedemption
	default:
		return TxTransfer
	}
}

// AssetState is the cached ownership state of a single monitored asset.
// Snapshots returned by the cache are copies; mutating them has no effect.
type AssetState struct {
	// AssetID is the logical asset identifier used by the datastore.
	AssetID string `json:"asset_id"`

	// LedgerID is the ledger-native asset identifier.
	LedgerID uint64 `json:"ledger_id"`

	// ReserveAddress is the issuer account holding unsold shares.
	// Transfers out of it are issuances, transfers into it redemptions.
	ReserveAddress string `json:"reserve_address"`

	// TotalSupply is the fixed total number of shares.
	TotalSupply uint64 `json:"total_supply"`

	// AvailableSupply is TotalSupply minus the sum of all holder balances.
	AvailableSupply uint64 `json:"available_supply"`

	// UnitPrice is the price of a single share.
	UnitPrice decimal.Decimal `json:"unit_price"`

	// TotalValue is the valuation of the whole asset.
	TotalValue decimal.Decimal `json:"total_value"`

	// FundingPercent is (TotalSupply-AvailableSupply)/TotalSupply*100.
	FundingPercent float64 `json:"funding_percent"`

	// LastUpdated is when this state last changed (event or sync).
	LastUpdated time.Time `json:"last_updated"`

	// TxCount is the number of transactions processed since registration.
	TxCount uint64 `json:"tx_count"`

	// NeedsResync is set when an invariant violation was detected.
	// The last known-good state keeps serving reads until the next Sync.
	NeedsResync bool `json:"needs_resync"`
}

// Stale reports whether the state has not been refreshed within maxAge.
func (s AssetState) Stale(maxAge time.Duration) bool {
	if maxAge <= 0 {
		return false
	}
	return time.Since(s.LastUpdated) > maxAge
}

// Holding is the position of a single holder in one asset.
// A holding with balance zero never exists in the cache.
type Holding struct {
	// Address is the holder's ledger account address.
	Address string `json:"address"`

	// Balance is the number of shares held.
	Balance uint64 `json:"balance"`

	// Percent is Balance/TotalSupply*100.
	Percent float64 `json:"percent"`

	// AcquiredAt is when the holder first acquired a nonzero balance.
	AcquiredAt time.Time `json:"acquired_at"`

	// LastTxRef is the id of the last transaction touching this holding.
	LastTxRef string `json:"last_tx_ref"`
}

// TransactionRecord is a processed ledger transaction kept in the per-asset
// history ring. Records are unique by ID and ordered by ledger sequence.
type TransactionRecord struct {
	// ID is the ledger transaction id, used for deduplication.
	ID string `json:"id"`

	// Type classifies the transaction (issuance, transfer, redemption, opt_in).
	Type TransactionType `json:"type"`

	// From is the debited account. Empty for issuances from an unknown source.
	From string `json:"from"`

	// To is the credited account.
	To string `json:"to"`

	// Amount is the number of shares moved.
	Amount uint64 `json:"amount"`

	// Seq is the ledger sequence reference (confirmation round).
	Seq uint64 `json:"seq"`

	// Timestamp is the ledger time of the transaction.
	Timestamp time.Time `json:"timestamp"`

	// Confirmed indicates the ledger reported the transaction as final.
	Confirmed bool `json:"confirmed"`
}

// CacheStats summarizes the cache contents for monitoring endpoints.
type CacheStats struct {
	// Assets is the number of cached assets.
	Assets int `json:"assets"`

	// Holders is the total number of holdings across all assets.
	Holders int `json:"holders"`

	// BufferedTransactions is the total number of history entries retained.
	BufferedTransactions int `json:"buffered_transactions"`

	// NeedsResync lists asset ids currently flagged for resynchronization.
	NeedsResync []string `json:"needs_resync"`
}

package datastore

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetMeta is the datastore's view of one tokenized asset.
type AssetMeta struct {
	// AssetID is the logical asset identifier.
	AssetID string
	// LedgerID is the ledger-native asset id, zero when not tokenized.
	LedgerID uint64
	// ReserveAddress is the issuer account holding unsold shares.
	ReserveAddress string
	// TotalSupply is the fixed total number of shares.
	TotalSupply uint64
	// AvailableSupply is the datastore's last recorded unsold share count.
	AvailableSupply uint64
	// UnitPrice is the price of a single share.
	UnitPrice decimal.Decimal
	// TotalValue is the valuation of the whole asset.
	TotalValue decimal.Decimal
}

// HoldingRow is one holder's position as recorded by the datastore.
type HoldingRow struct {
	// Holder is the holder's ledger account address.
	Holder string
	// Balance is the number of shares held.
	Balance uint64
	// AcquiredAt is when the holder first acquired shares.
	AcquiredAt time.Time
}

// Page is one page of eligible asset ids.
type Page struct {
	// AssetIDs are the ids on this page.
	AssetIDs []string
	// Total is the overall number of eligible assets.
	Total int64
}

// assetListing maps the 'asset_listings' table.
type assetListing struct {
	ID              string          `gorm:"column:id;primaryKey"`
	LedgerAssetID   uint64          `gorm:"column:ledger_asset_id"`
	ReserveAddress  string          `gorm:"column:reserve_address"`
	TotalShares     uint64          `gorm:"column:total_shares"`
	AvailableShares uint64          `gorm:"column:available_shares"`
	SharePrice      decimal.Decimal `gorm:"column:share_price;type:decimal(20,4)"`
	TotalValue      decimal.Decimal `gorm:"column:total_value;type:decimal(20,4)"`
	Status          string          `gorm:"column:status"`
}

// TableName overrides the gorm table name.
func (assetListing) TableName() string {
	return "asset_listings"
}

func (l assetListing) toMeta() *AssetMeta {
	return &AssetMeta{
		AssetID:         l.ID,
		LedgerID:        l.LedgerAssetID,
		ReserveAddress:  l.ReserveAddress,
		TotalSupply:     l.TotalShares,
		AvailableSupply: l.AvailableShares,
		UnitPrice:       l.SharePrice,
		TotalValue:      l.TotalValue,
	}
}

// assetHolding maps the 'asset_holdings' table.
type assetHolding struct {
	AssetID       string    `gorm:"column:asset_id"`
	HolderAddress string    `gorm:"column:holder_address"`
	Shares        uint64    `gorm:"column:shares"`
	AcquiredAt    time.Time `gorm:"column:acquired_at"`
}

// TableName overrides the gorm table name.
func (assetHolding) TableName() string {
	return "asset_holdings"
}

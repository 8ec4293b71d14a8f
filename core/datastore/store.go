package datastore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/RawMal/AlgoEstate-sub000/core/ownership"
)

// Store is the read interface over the mutable secondary datastore.
// The reconciliation engine only ever reads from it; writes stay with the
// marketplace services that own the tables.
type Store interface {
	// FetchAssetMeta loads one asset's metadata.
	// Returns ownership.ErrNotFound for an unknown asset id.
	FetchAssetMeta(ctx context.Context, assetID string) (*AssetMeta, error)

	// FetchHoldings loads all holdings of one asset.
	FetchHoldings(ctx context.Context, assetID string) ([]HoldingRow, error)

	// ListEligibleAssets pages through active, tokenized asset ids.
	ListEligibleAssets(ctx context.Context, limit, offset int) (Page, error)
}

// GormStore is the MySQL-backed Store implementation.
type GormStore struct {
	db *gorm.DB
}

// New creates a Store over an open gorm connection.
func New(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// FetchAssetMeta implements Store.
func (s *GormStore) FetchAssetMeta(ctx context.Context, assetID string) (*AssetMeta, error) {
	var listing assetListing
	err := s.db.WithContext(ctx).Where("id = ?", assetID).First(&listing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("asset %s: %w", assetID, ownership.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch asset meta for %s: %w", assetID, err)
	}
	return listing.toMeta(), nil
}

// FetchHoldings implements Store. Zero-balance rows are filtered at the
// query level so the cache never sees them.
func (s *GormStore) FetchHoldings(ctx context.Context, assetID string) ([]HoldingRow, error) {
	var rows []assetHolding
	err := s.db.WithContext(ctx).
		Where("asset_id = ? AND shares > 0", assetID).
		Order("holder_address").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch holdings for %s: %w", assetID, err)
	}

	holdings := make([]HoldingRow, 0, len(rows))
	for _, r := range rows {
		holdings = append(holdings, HoldingRow{
			Holder:     r.HolderAddress,
			Balance:    r.Shares,
			AcquiredAt: r.AcquiredAt,
		})
	}
	return holdings, nil
}

// ListEligibleAssets implements Store. Eligible means active and tokenized.
func (s *GormStore) ListEligibleAssets(ctx context.Context, limit, offset int) (Page, error) {
	// The session makes the chain reusable for both the count and the page.
	base := s.db.WithContext(ctx).
		Model(&assetListing{}).
		Where("status = ? AND ledger_asset_id > 0", "active").
		Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return Page{}, fmt.Errorf("failed to count eligible assets: %w", err)
	}

	var ids []string
	err := base.Order("id").Limit(limit).Offset(offset).Pluck("id", &ids).Error
	if err != nil {
		return Page{}, fmt.Errorf("failed to list eligible assets: %w", err)
	}
	return Page{AssetIDs: ids, Total: total}, nil
}

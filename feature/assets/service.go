package assets

import (
	"context"

	"go.uber.org/zap"

	"github.com/RawMal/AlgoEstate-sub000/core/ownership"
	"github.com/RawMal/AlgoEstate-sub000/core/reconcile"
)

// AssetView is one asset's cached state together with its freshness.
type AssetView struct {
	ownership.AssetState
	// Stale indicates the snapshot missed at least two sync cycles.
	Stale bool `json:"stale"`
}

// Service exposes the reconciliation engine to the HTTP layer.
type Service struct {
	engine *reconcile.Engine
	logger *zap.Logger
}

// NewService creates a new assets service.
func NewService(engine *reconcile.Engine, logger *zap.Logger) *Service {
	return &Service{engine: engine, logger: logger}
}

// List returns the state of every monitored asset.
func (s *Service) List() []AssetView {
	ids := s.engine.MonitoredAssets()
	views := make([]AssetView, 0, len(ids))
	for _, id := range ids {
		state, err := s.engine.GetState(id)
		if err != nil {
			// Unregistered between the listing and the lookup.
			continue
		}
		views = append(views, s.view(state))
	}
	return views
}

// Get returns one asset's state.
func (s *Service) Get(assetID string) (AssetView, error) {
	state, err := s.engine.GetState(assetID)
	if err != nil {
		return AssetView{}, err
	}
	return s.view(state), nil
}

// Holdings returns the asset's holdings, largest first.
func (s *Service) Holdings(assetID string) ([]ownership.Holding, error) {
	return s.engine.GetHoldings(assetID)
}

// Distribution returns ownership statistics over the asset's holdings.
func (s *Service) Distribution(assetID string, topK int) (ownership.DistributionSnapshot, error) {
	return s.engine.GetDistribution(assetID, topK)
}

// Transactions returns up to limit recent transactions, newest first.
func (s *Service) Transactions(assetID string, limit int) ([]ownership.TransactionRecord, error) {
	return s.engine.RecentTransactions(assetID, limit)
}

// Sync forces a full resynchronization of the asset.
func (s *Service) Sync(ctx context.Context, assetID string) (AssetView, error) {
	state, err := s.engine.Sync(ctx, assetID)
	if err != nil {
		return AssetView{}, err
	}
	return s.view(state), nil
}

// Drift compares every cached holding against the ledger and returns the
// mismatches. The cache is left untouched.
func (s *Service) Drift(ctx context.Context, assetID string) ([]reconcile.Verification, error) {
	return s.engine.DetectDrift(ctx, assetID)
}

// Verify compares one holder's cached balance against the ledger.
func (s *Service) Verify(ctx context.Context, holder, assetID string) (reconcile.Verification, error) {
	return s.engine.VerifyOwnership(ctx, holder, assetID)
}

// Register adds the asset to the monitored set.
func (s *Service) Register(ctx context.Context, assetID string) (AssetView, error) {
	if err := s.engine.Register(ctx, assetID); err != nil {
		return AssetView{}, err
	}
	return s.Get(assetID)
}

// Unregister removes the asset from the monitored set.
func (s *Service) Unregister(assetID string) {
	s.engine.Unregister(assetID)
}

// Stats returns the engine-wide monitoring snapshot.
func (s *Service) Stats() reconcile.Stats {
	return s.engine.Stats()
}

func (s *Service) view(state ownership.AssetState) AssetView {
	return AssetView{AssetState: state, Stale: s.engine.Stale(state)}
}

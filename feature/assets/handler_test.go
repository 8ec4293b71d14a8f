package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/RawMal/AlgoEstate-sub000/core/datastore"
	"github.com/RawMal/AlgoEstate-sub000/core/ledger"
	"github.com/RawMal/AlgoEstate-sub000/core/ownership"
	"github.com/RawMal/AlgoEstate-sub000/core/reconcile"
)

const (
	testAsset   = "prop-1"
	testLedger  = uint64(101)
	testReserve = "RESERVE7ADDR"
)

type fakeStore struct {
	mu       sync.Mutex
	assets   map[string]datastore.AssetMeta
	holdings map[string][]datastore.HoldingRow
}

func (s *fakeStore) FetchAssetMeta(ctx context.Context, assetID string) (*datastore.AssetMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	meta, ok := s.assets[assetID]
	if !ok {
		return nil, fmt.Errorf("asset %s: %w", assetID, ownership.ErrNotFound)
	}
	return &meta, nil
}

func (s *fakeStore) FetchHoldings(ctx context.Context, assetID string) ([]datastore.HoldingRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]datastore.HoldingRow{}, s.holdings[assetID]...), nil
}

func (s *fakeStore) ListEligibleAssets(ctx context.Context, limit, offset int) (datastore.Page, error) {
	return datastore.Page{}, nil
}

type fakeLedgerClient struct {
	mu       sync.Mutex
	supplies map[uint64]ledger.Supply
	balances map[string]uint64
}

func balanceKey(holder string, ledgerID uint64) string {
	return fmt.Sprintf("%s/%d", holder, ledgerID)
}

func (c *fakeLedgerClient) AssetSupply(ctx context.Context, ledgerID uint64) (ledger.Supply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.supplies[ledgerID], nil
}

func (c *fakeLedgerClient) AccountBalance(ctx context.Context, holder string, ledgerID uint64) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balances[balanceKey(holder, ledgerID)], nil
}

func (c *fakeLedgerClient) Subscribe(ctx context.Context, ledgerIDs []uint64) (ledger.Stream, error) {
	return nil, fmt.Errorf("no feed in tests")
}

func setupTestApp(t *testing.T) (*fiber.App, *reconcile.Engine, *fakeStore, *fakeLedgerClient) {
	t.Helper()

	store := &fakeStore{
		assets: map[string]datastore.AssetMeta{
			testAsset: {
				AssetID:        testAsset,
				LedgerID:       testLedger,
				ReserveAddress: testReserve,
				TotalSupply:    10000,
			},
		},
		holdings: map[string][]datastore.HoldingRow{
			testAsset: {
				{Holder: "HOLDER1", Balance: 600, AcquiredAt: time.Now()},
				{Holder: "HOLDER2", Balance: 400, AcquiredAt: time.Now()},
			},
		},
	}
	lc := &fakeLedgerClient{
		supplies: map[uint64]ledger.Supply{testLedger: {Total: 10000}},
		balances: map[string]uint64{
			balanceKey("HOLDER1", testLedger): 600,
			balanceKey("HOLDER2", testLedger): 400,
		},
	}

	cfg := reconcile.Config{
		SyncIntervalSeconds: 300,
		HistoryCapacity:     64,
		RetryAttempts:       1,
		BatchSize:           4,
		ReorderWindow:       8,
		QueueSize:           32,
		TimeoutSeconds:      5,
	}
	engine, err := reconcile.New(cfg, store, lc, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, engine.Register(context.Background(), testAsset))

	app := fiber.New()
	handler := NewHandler(NewService(engine, zap.NewNop()))
	handler.RegisterRoutes(app)
	return app, engine, store, lc
}

func TestHandleList(t *testing.T) {
	app, _, _, _ := setupTestApp(t)

	req := httptest.NewRequest("GET", "/assets/", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body struct {
		Assets []AssetView `json:"assets"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Assets, 1)
	assert.Equal(t, testAsset, body.Assets[0].AssetID)
	assert.False(t, body.Assets[0].Stale)
}

func TestHandleGet(t *testing.T) {
	app, _, _, _ := setupTestApp(t)

	req := httptest.NewRequest("GET", "/assets/"+testAsset, nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var view AssetView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, uint64(10000), view.TotalSupply)
	assert.Equal(t, uint64(9000), view.AvailableSupply)
}

func TestHandleGetNotFound(t *testing.T) {
	app, _, _, _ := setupTestApp(t)

	req := httptest.NewRequest("GET", "/assets/nope", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestHandleHoldings(t *testing.T) {
	app, _, _, _ := setupTestApp(t)

	req := httptest.NewRequest("GET", "/assets/"+testAsset+"/holdings", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body struct {
		Holdings []ownership.Holding `json:"holdings"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Holdings, 2)
	assert.Equal(t, "HOLDER1", body.Holdings[0].Address)
	assert.Equal(t, uint64(600), body.Holdings[0].Balance)
}

func TestHandleVerify(t *testing.T) {
	app, _, _, _ := setupTestApp(t)

	req := httptest.NewRequest("GET", "/assets/"+testAsset+"/holdings/HOLDER1", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var v reconcile.Verification
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	assert.True(t, v.Matches)
	assert.Equal(t, uint64(600), v.LedgerBalance)
}

func TestHandleDistribution(t *testing.T) {
	app, _, _, _ := setupTestApp(t)

	req := httptest.NewRequest("GET", "/assets/"+testAsset+"/distribution?top=1", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var dist ownership.DistributionSnapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&dist))
	assert.Equal(t, 2, dist.HolderCount)
	require.Len(t, dist.TopHolders, 1)
	assert.Equal(t, "HOLDER1", dist.TopHolders[0].Address)
}

func TestHandleTransactions(t *testing.T) {
	app, engine, _, _ := setupTestApp(t)

	engine.HandleLedgerEvent(ledger.TransferEvent{
		LedgerID:  testLedger,
		TxID:      "tx-1",
		From:      testReserve,
		To:        "HOLDER1",
		Amount:    50,
		Seq:       7,
		Timestamp: time.Now(),
		Confirmed: true,
	})

	req := httptest.NewRequest("GET", "/assets/"+testAsset+"/transactions?limit=10", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body struct {
		Transactions []ownership.TransactionRecord `json:"transactions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Transactions, 1)
	assert.Equal(t, "tx-1", body.Transactions[0].ID)
	assert.Equal(t, ownership.TxIssuance, body.Transactions[0].Type)
}

func TestHandleTransactionsBadLimit(t *testing.T) {
	app, _, _, _ := setupTestApp(t)

	req := httptest.NewRequest("GET", "/assets/"+testAsset+"/transactions?limit=zero", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestHandleDrift(t *testing.T) {
	app, _, _, lc := setupTestApp(t)

	lc.mu.Lock()
	lc.balances[balanceKey("HOLDER2", testLedger)] = 150
	lc.mu.Unlock()

	req := httptest.NewRequest("GET", "/assets/"+testAsset+"/drift", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body struct {
		InSync     bool                     `json:"in_sync"`
		Mismatches []reconcile.Verification `json:"mismatches"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.InSync)
	require.Len(t, body.Mismatches, 1)
	assert.Equal(t, "HOLDER2", body.Mismatches[0].Holder)
}

func TestHandleSync(t *testing.T) {
	app, _, store, _ := setupTestApp(t)

	store.mu.Lock()
	store.holdings[testAsset] = append(store.holdings[testAsset],
		datastore.HoldingRow{Holder: "HOLDER3", Balance: 100, AcquiredAt: time.Now()})
	store.mu.Unlock()

	req := httptest.NewRequest("POST", "/assets/"+testAsset+"/sync", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var view AssetView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, uint64(8900), view.AvailableSupply)
}

func TestHandleRegisterAndUnregister(t *testing.T) {
	app, engine, store, lc := setupTestApp(t)

	store.mu.Lock()
	store.assets["prop-2"] = datastore.AssetMeta{
		AssetID:        "prop-2",
		LedgerID:       202,
		ReserveAddress: testReserve,
		TotalSupply:    500,
	}
	store.mu.Unlock()
	lc.mu.Lock()
	lc.supplies[202] = ledger.Supply{Total: 500}
	lc.mu.Unlock()

	req := httptest.NewRequest("PUT", "/assets/prop-2", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, engine.MonitoredAssets(), "prop-2")

	req = httptest.NewRequest("DELETE", "/assets/prop-2", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.NotContains(t, engine.MonitoredAssets(), "prop-2")
}

func TestHandleRegisterUnknown(t *testing.T) {
	app, _, _, _ := setupTestApp(t)

	req := httptest.NewRequest("PUT", "/assets/nope", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestHandleStats(t *testing.T) {
	app, _, _, _ := setupTestApp(t)

	req := httptest.NewRequest("GET", "/assets/stats", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var stats reconcile.Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, 1, stats.Assets)
	assert.Equal(t, 2, stats.Holders)
}

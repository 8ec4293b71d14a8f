package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/RawMal/AlgoEstate-sub000/core/bus"
	"github.com/RawMal/AlgoEstate-sub000/core/datastore"
	"github.com/RawMal/AlgoEstate-sub000/core/ledger"
	"github.com/RawMal/AlgoEstate-sub000/core/ownership"
)

// Verification is the result of checking one holder's cached balance
// against the ledger.
type Verification struct {
	// Holder is the verified account address.
	Holder string `json:"holder"`
	// LedgerBalance is the balance read directly from the ledger.
	LedgerBalance uint64 `json:"ledger_balance"`
	// CacheBalance is the balance currently cached.
	CacheBalance uint64 `json:"cache_balance"`
	// Matches indicates both balances agree.
	Matches bool `json:"matches"`
}

// SupplyComparison is the payload of a SupplyMismatch event.
type SupplyComparison struct {
	// DatastoreTotal is the total supply recorded by the datastore.
	DatastoreTotal uint64 `json:"datastore_total"`
	// LedgerTotal is the authoritative on-ledger total supply.
	LedgerTotal uint64 `json:"ledger_total"`
	// CachedTotal is the total supply the cache held before the sync.
	CachedTotal uint64 `json:"cached_total"`
}

// Stats is the engine-wide monitoring snapshot.
type Stats struct {
	ownership.CacheStats
	// DroppedEvents counts notifications lost on full subscriber queues.
	DroppedEvents uint64 `json:"dropped_events"`
	// Degraded indicates live ingestion is down and only periodic sync runs.
	Degraded bool `json:"degraded"`
	// LastSync holds the most recent successful sync time per asset.
	LastSync map[string]time.Time `json:"last_sync"`
}

// Engine reconciles the in-memory ownership cache against the ledger and
// the datastore. It is the sole writer of the cache: live feed events and
// sync cycles both funnel through it, linearized per asset.
type Engine struct {
	cfg      Config
	store    datastore.Store
	ledger   ledger.Client
	cache    *ownership.Cache
	registry *Registry
	bus      *bus.Bus
	logger   *zap.Logger

	// sf collapses concurrent Sync calls for the same asset into one fetch.
	sf singleflight.Group

	ordMu sync.Mutex
	ord   map[string]*orderTracker

	streamMu sync.Mutex
	stream   ledger.Stream

	syncMu   sync.Mutex
	lastSync map[string]time.Time

	cancel   context.CancelFunc
	wg       sync.WaitGroup
	started  atomic.Bool
	degraded atomic.Bool
}

// New creates an engine. The configuration is validated up front;
// configuration errors are fatal.
func New(cfg Config, store datastore.Store, lc ledger.Client, logger *zap.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:      cfg,
		store:    store,
		ledger:   lc,
		cache:    ownership.NewCache(cfg.HistoryCapacity),
		registry: NewRegistry(),
		bus:      bus.New(cfg.QueueSize),
		logger:   logger,
		ord:      make(map[string]*orderTracker),
		lastSync: make(map[string]time.Time),
	}, nil
}

// Initialize loads all eligible assets from the datastore in bounded
// batches, subscribes to the ledger feed and starts the periodic sync
// loop. It fails fast only when the datastore itself is unreachable;
// individual assets that fail to load are logged and skipped.
func (e *Engine) Initialize(ctx context.Context) error {
	if !e.started.CompareAndSwap(false, true) {
		return errors.New("engine already initialized")
	}

	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var page datastore.Page
		err := e.withRetry(ctx, "list eligible assets", func(ctx context.Context) error {
			var err error
			page, err = e.store.ListEligibleAssets(ctx, e.cfg.BatchSize, offset)
			return err
		})
		if err != nil {
			return fmt.Errorf("datastore unreachable: %w", err)
		}
		if len(page.AssetIDs) == 0 {
			break
		}

		var wg sync.WaitGroup
		for _, id := range page.AssetIDs {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				if err := e.Register(ctx, id); err != nil {
					e.logger.Warn("Skipping asset during initialization",
						zap.String("asset", id), zap.Error(err))
				}
			}(id)
		}
		wg.Wait()

		offset += len(page.AssetIDs)
		if int64(offset) >= page.Total {
			break
		}
	}

	runCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	if e.cfg.Realtime {
		stream, err := e.ledger.Subscribe(runCtx, e.registry.LedgerIDs())
		if err != nil {
			e.logger.Error("Live feed unavailable, starting degraded", zap.Error(err))
			e.degraded.Store(true)
			e.publish(bus.DegradedMode, "", err.Error())
		} else {
			e.setStream(stream)
			e.wg.Add(1)
			go e.ingestLoop(runCtx)
		}
	}

	e.wg.Add(1)
	go e.tickLoop(runCtx)

	e.logger.Info("Reconciliation engine initialized",
		zap.Int("assets", e.registry.Len()),
		zap.Bool("realtime", e.cfg.Realtime))
	return nil
}

// Shutdown stops the loops, closes the feed subscription and the event
// bus. In-flight per-asset operations finish before it returns; the
// context bounds how long to wait for them.
func (e *Engine) Shutdown(ctx context.Context) error {
	if e.cancel != nil {
		e.cancel()
	}
	e.streamMu.Lock()
	if e.stream != nil {
		_ = e.stream.Close()
		e.stream = nil
	}
	e.streamMu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	e.bus.Close()
	return err
}

// Register starts monitoring an asset: its state and holdings are loaded
// from the datastore and the feed filter is widened. Registering an
// already-monitored asset is a no-op.
func (e *Engine) Register(ctx context.Context, assetID string) error {
	if e.registry.Has(assetID) {
		return nil
	}

	var meta *datastore.AssetMeta
	err := e.withRetry(ctx, "fetch asset meta", func(ctx context.Context) error {
		var err error
		meta, err = e.store.FetchAssetMeta(ctx, assetID)
		return err
	})
	if err != nil {
		return err
	}
	if meta.LedgerID == 0 {
		return fmt.Errorf("asset %s: %w", assetID, ownership.ErrNotTokenized)
	}

	var rows []datastore.HoldingRow
	err = e.withRetry(ctx, "fetch holdings", func(ctx context.Context) error {
		var err error
		rows, err = e.store.FetchHoldings(ctx, assetID)
		return err
	})
	if err != nil {
		return err
	}

	state := stateFromMeta(meta)
	if !e.cache.Insert(assetID, state, holdingsFromRows(rows)) {
		// Lost a registration race; the winner owns the asset.
		return nil
	}
	e.registry.Add(assetID, meta.LedgerID)
	metricMonitoredAssets.Set(float64(e.registry.Len()))
	e.refreshFilter()

	snapshot, _ := e.cache.Get(assetID)
	e.publish(bus.AssetRegistered, assetID, snapshot)
	e.logger.Info("Asset registered",
		zap.String("asset", assetID), zap.Uint64("ledger_id", meta.LedgerID))
	return nil
}

// Unregister stops monitoring an asset and evicts its cache entry.
// Unregistering an unknown asset is a no-op.
func (e *Engine) Unregister(assetID string) {
	if !e.registry.Remove(assetID) {
		return
	}
	e.cache.Remove(assetID)
	e.dropTracker(assetID)
	e.syncMu.Lock()
	delete(e.lastSync, assetID)
	e.syncMu.Unlock()

	metricMonitoredAssets.Set(float64(e.registry.Len()))
	e.refreshFilter()
	e.publish(bus.AssetRemoved, assetID, nil)
	e.logger.Info("Asset unregistered", zap.String("asset", assetID))
}

// HandleLedgerEvent applies one validated feed event. Events are buffered
// and replayed in ledger sequence order; a gap that outgrows the reorder
// window forces a full resync of the asset instead of guessing. An event
// arriving after a higher sequence has already been applied goes through
// applyLate rather than being dropped.
func (e *Engine) HandleLedgerEvent(ev ledger.TransferEvent) {
	assetID, ok := e.registry.Resolve(ev.LedgerID)
	if !ok {
		metricEvents.WithLabelValues(resultUnmonitored).Inc()
		return
	}

	t := e.tracker(assetID)
	t.mu.Lock()
	defer t.mu.Unlock()

	if ev.Seq < t.lastSeq {
		e.applyLate(assetID, ev)
		return
	}

	t.park(ev)
	e.drain(assetID, t)

	if t.overflowing(e.cfg.ReorderWindow) {
		metricEvents.WithLabelValues(resultOverflow).Inc()
		t.reset()
		e.logger.Warn("Reorder window exceeded, forcing resync",
			zap.String("asset", assetID))
		e.publish(bus.Error, assetID, "event sequence gap exceeded reorder window")
		e.resync(assetID)
	}
}

// applyLate handles an event ordered before transactions already applied.
// The dedup window absorbs redeliveries; a genuinely unseen predecessor is
// applied directly, since balance arithmetic commutes once the invariant
// holds. A predecessor that cannot apply means the cache missed state it can
// no longer reconstruct, so the asset is rebuilt from the sources of truth.
// Callers must hold the tracker lock.
func (e *Engine) applyLate(assetID string, ev ledger.TransferEvent) {
	state, err := e.cache.ApplyTransfer(assetID, recordFromEvent(ev))
	switch {
	case err == nil:
		e.announceApplied(assetID, ev, state)

	case errors.Is(err, ownership.ErrDuplicateTransaction):
		metricEvents.WithLabelValues(resultStale).Inc()

	case errors.Is(err, ownership.ErrNotFound):

	default:
		metricEvents.WithLabelValues(resultStale).Inc()
		e.logger.Warn("Late event cannot be applied, forcing resync",
			zap.String("asset", assetID),
			zap.String("tx", ev.TxID),
			zap.Uint64("seq", ev.Seq))
		e.publish(bus.Error, assetID, "late event predates reconstructable state")
		e.resync(assetID)
	}
}

// resync schedules a full background sync of the asset.
func (e *Engine) resync(assetID string) {
	go func() {
		if _, err := e.Sync(context.Background(), assetID); err != nil {
			e.logger.Error("Forced resync failed",
				zap.String("asset", assetID), zap.Error(err))
		}
	}()
}

// announceApplied emits the per-transfer events after a successful apply.
func (e *Engine) announceApplied(assetID string, ev ledger.TransferEvent, state ownership.AssetState) {
	metricEvents.WithLabelValues(resultApplied).Inc()
	record := recordFromEvent(ev)
	record.Type = ownership.Classify(state.ReserveAddress, ev.From, ev.To, ev.Amount)
	e.publish(bus.TransferObserved, assetID, record)
	if ev.Amount > 0 {
		e.publish(bus.OwnershipUpdated, assetID, state)
	}
}

// drain applies pending events lowest sequence first until one cannot be
// applied yet. Callers must hold the tracker lock.
func (e *Engine) drain(assetID string, t *orderTracker) {
	for {
		ev, ok := t.next()
		if !ok {
			return
		}

		state, err := e.cache.ApplyTransfer(assetID, recordFromEvent(ev))
		switch {
		case err == nil:
			t.applied(ev)
			e.announceApplied(assetID, ev, state)

		case errors.Is(err, ownership.ErrDuplicateTransaction):
			t.applied(ev)
			metricEvents.WithLabelValues(resultDuplicate).Inc()

		case errors.Is(err, ownership.ErrNotFound):
			// Asset evicted concurrently; nothing left to order.
			t.drop(ev)
			return

		default:
			// Likely out of order: an earlier event has not arrived yet.
			// Leave it parked; replay happens when the gap fills.
			metricEvents.WithLabelValues(resultBuffered).Inc()
			return
		}
	}
}

// Sync re-reads the authoritative datastore snapshot and the on-ledger
// supply, then atomically replaces the cached state. Concurrent calls for
// the same asset share a single in-flight fetch.
func (e *Engine) Sync(ctx context.Context, assetID string) (ownership.AssetState, error) {
	if !e.registry.Has(assetID) {
		return ownership.AssetState{}, fmt.Errorf("asset %s: %w", assetID, ownership.ErrNotFound)
	}

	v, err, _ := e.sf.Do(assetID, func() (any, error) {
		return e.doSync(ctx, assetID)
	})
	if err != nil {
		return ownership.AssetState{}, err
	}
	return v.(ownership.AssetState), nil
}

func (e *Engine) doSync(ctx context.Context, assetID string) (ownership.AssetState, error) {
	ledgerID, ok := e.registry.LedgerID(assetID)
	if !ok {
		return ownership.AssetState{}, fmt.Errorf("asset %s: %w", assetID, ownership.ErrNotFound)
	}
	prior, _ := e.cache.Get(assetID)

	var meta *datastore.AssetMeta
	var rows []datastore.HoldingRow
	var supply ledger.Supply

	err := e.withRetry(ctx, "fetch asset meta", func(ctx context.Context) error {
		var err error
		meta, err = e.store.FetchAssetMeta(ctx, assetID)
		return err
	})
	if err == nil {
		err = e.withRetry(ctx, "fetch holdings", func(ctx context.Context) error {
			var err error
			rows, err = e.store.FetchHoldings(ctx, assetID)
			return err
		})
	}
	if err == nil {
		err = e.withRetry(ctx, "fetch ledger supply", func(ctx context.Context) error {
			var err error
			supply, err = e.ledger.AssetSupply(ctx, ledgerID)
			return err
		})
	}
	if err != nil {
		// Last known-good state keeps serving reads.
		metricSyncs.WithLabelValues(outcomeFailure).Inc()
		e.publish(bus.Error, assetID, err.Error())
		return ownership.AssetState{}, fmt.Errorf("sync of %s: %w", assetID, err)
	}

	if supply.Total != meta.TotalSupply || supply.Total != prior.TotalSupply {
		e.logger.Warn("Supply mismatch between sources",
			zap.String("asset", assetID),
			zap.Uint64("ledger", supply.Total),
			zap.Uint64("datastore", meta.TotalSupply),
			zap.Uint64("cached", prior.TotalSupply))
		e.publish(bus.SupplyMismatch, assetID, SupplyComparison{
			DatastoreTotal: meta.TotalSupply,
			LedgerTotal:    supply.Total,
			CachedTotal:    prior.TotalSupply,
		})
	}

	state := stateFromMeta(meta)
	// The ledger is authoritative for the supply itself.
	state.TotalSupply = supply.Total

	// An unregistration may have raced the fetches; a completed sync
	// against a gone asset is discarded without events.
	if !e.registry.Has(assetID) {
		return ownership.AssetState{}, fmt.Errorf("asset %s: %w", assetID, ownership.ErrNotFound)
	}

	newState, err := e.cache.Replace(assetID, state, holdingsFromRows(rows))
	if err != nil {
		return ownership.AssetState{}, err
	}
	e.resetTracker(assetID)

	e.syncMu.Lock()
	e.lastSync[assetID] = time.Now()
	e.syncMu.Unlock()

	metricSyncs.WithLabelValues(outcomeSuccess).Inc()
	e.publish(bus.SyncCompleted, assetID, newState)
	return newState, nil
}

// PeriodicTick syncs every monitored asset in bounded batches. Per-asset
// failures are collected, never aborting the rest of the batch. When the
// context is cancelled, in-flight syncs finish and no new ones start.
func (e *Engine) PeriodicTick(ctx context.Context) error {
	ids := e.registry.List()
	errCh := make(chan error, len(ids))

	for start := 0; start < len(ids); start += e.cfg.BatchSize {
		if ctx.Err() != nil {
			break
		}
		end := start + e.cfg.BatchSize
		if end > len(ids) {
			end = len(ids)
		}

		var wg sync.WaitGroup
		for _, id := range ids[start:end] {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				if _, err := e.Sync(ctx, id); err != nil && !errors.Is(err, ownership.ErrNotFound) {
					errCh <- fmt.Errorf("sync failed for %s: %w", id, err)
				}
			}(id)
		}
		wg.Wait()
	}
	close(errCh)

	metricDroppedEvents.Set(float64(e.bus.Dropped()))

	var errs []string
	for err := range errCh {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return fmt.Errorf("periodic sync had %d errors: %v", len(errs), errs)
	}
	return ctx.Err()
}

// VerifyOwnership compares one holder's cached balance with the ledger.
func (e *Engine) VerifyOwnership(ctx context.Context, holder, assetID string) (Verification, error) {
	ledgerID, ok := e.registry.LedgerID(assetID)
	if !ok {
		return Verification{}, fmt.Errorf("asset %s: %w", assetID, ownership.ErrNotFound)
	}

	holdings, err := e.cache.GetHoldings(assetID)
	if err != nil {
		return Verification{}, err
	}
	var cached uint64
	for _, h := range holdings {
		if h.Address == holder {
			cached = h.Balance
			break
		}
	}

	var onLedger uint64
	err = e.withRetry(ctx, "fetch account balance", func(ctx context.Context) error {
		var err error
		onLedger, err = e.ledger.AccountBalance(ctx, holder, ledgerID)
		return err
	})
	if err != nil {
		return Verification{}, err
	}

	return Verification{
		Holder:        holder,
		LedgerBalance: onLedger,
		CacheBalance:  cached,
		Matches:       onLedger == cached,
	}, nil
}

// DetectDrift verifies every holding of the asset against the ledger and
// returns the mismatches. It never corrects anything: callers decide
// whether to trust the ledger and invoke Sync.
func (e *Engine) DetectDrift(ctx context.Context, assetID string) ([]Verification, error) {
	ledgerID, ok := e.registry.LedgerID(assetID)
	if !ok {
		return nil, fmt.Errorf("asset %s: %w", assetID, ownership.ErrNotFound)
	}

	holdings, err := e.cache.GetHoldings(assetID)
	if err != nil {
		return nil, err
	}

	mismatches := []Verification{}
	for _, h := range holdings {
		var onLedger uint64
		err := e.withRetry(ctx, "fetch account balance", func(ctx context.Context) error {
			var err error
			onLedger, err = e.ledger.AccountBalance(ctx, h.Address, ledgerID)
			return err
		})
		if err != nil {
			return nil, err
		}
		if onLedger != h.Balance {
			metricDriftMismatches.Inc()
			mismatches = append(mismatches, Verification{
				Holder:        h.Address,
				LedgerBalance: onLedger,
				CacheBalance:  h.Balance,
			})
		}
	}
	return mismatches, nil
}

// GetState returns the cached state snapshot of one asset.
func (e *Engine) GetState(assetID string) (ownership.AssetState, error) {
	return e.cache.Get(assetID)
}

// GetHoldings returns the cached holdings of one asset, largest first.
func (e *Engine) GetHoldings(assetID string) ([]ownership.Holding, error) {
	return e.cache.GetHoldings(assetID)
}

// GetDistribution computes ownership statistics over the current holdings.
func (e *Engine) GetDistribution(assetID string, topK int) (ownership.DistributionSnapshot, error) {
	state, err := e.cache.Get(assetID)
	if err != nil {
		return ownership.DistributionSnapshot{}, err
	}
	holdings, err := e.cache.GetHoldings(assetID)
	if err != nil {
		return ownership.DistributionSnapshot{}, err
	}
	return ownership.Distribution(holdings, state.TotalSupply, topK), nil
}

// RecentTransactions returns up to limit processed transactions, newest
// first.
func (e *Engine) RecentTransactions(assetID string, limit int) ([]ownership.TransactionRecord, error) {
	return e.cache.RecentTransactions(assetID, limit)
}

// MonitoredAssets returns the sorted monitored asset ids.
func (e *Engine) MonitoredAssets() []string {
	return e.registry.List()
}

// Stale reports whether a snapshot is older than two sync cycles.
func (e *Engine) Stale(s ownership.AssetState) bool {
	return s.Stale(e.cfg.StaleAge())
}

// Stats returns the engine-wide monitoring snapshot.
func (e *Engine) Stats() Stats {
	e.syncMu.Lock()
	last := make(map[string]time.Time, len(e.lastSync))
	for id, ts := range e.lastSync {
		last[id] = ts
	}
	e.syncMu.Unlock()

	return Stats{
		CacheStats:    e.cache.Stats(),
		DroppedEvents: e.bus.Dropped(),
		Degraded:      e.degraded.Load(),
		LastSync:      last,
	}
}

// Subscribe registers an event listener, optionally filtered by type.
func (e *Engine) Subscribe(types ...bus.EventType) *bus.Subscription {
	return e.bus.Subscribe(types...)
}

// ingestLoop consumes the live feed and resubscribes with backoff when it
// dies. After the retry budget is exhausted the engine degrades to
// periodic sync only.
func (e *Engine) ingestLoop(ctx context.Context) {
	defer e.wg.Done()
	for {
		stream := e.currentStream()
		if stream == nil {
			return
		}
		if !e.consume(ctx, stream) {
			return
		}
		if ctx.Err() != nil {
			return
		}

		e.logger.Warn("Ledger feed lost", zap.Error(stream.Err()))
		if !e.resubscribe(ctx) {
			e.degraded.Store(true)
			e.publish(bus.DegradedMode, "", "live feed unavailable, periodic sync only")
			e.logger.Error("Resubscription failed, degraded to periodic sync")
			return
		}
	}
}

// consume pumps events until shutdown (false) or stream death (true).
func (e *Engine) consume(ctx context.Context, stream ledger.Stream) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-stream.Events():
			if !ok {
				return true
			}
			e.HandleLedgerEvent(ev)
		}
	}
}

func (e *Engine) resubscribe(ctx context.Context) bool {
	backoff := time.Second
	for attempt := 1; attempt <= e.cfg.RetryAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(backoff):
		}
		backoff *= 2

		stream, err := e.ledger.Subscribe(ctx, e.registry.LedgerIDs())
		if err == nil {
			e.setStream(stream)
			e.logger.Info("Ledger feed resubscribed", zap.Int("attempt", attempt))
			return true
		}
		e.logger.Warn("Resubscription attempt failed",
			zap.Int("attempt", attempt), zap.Error(err))
	}
	return false
}

// tickLoop drives the periodic sync cycle.
func (e *Engine) tickLoop(ctx context.Context) {
	defer e.wg.Done()
	ticker := time.NewTicker(e.cfg.SyncInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := e.PeriodicTick(ctx); err != nil && ctx.Err() == nil {
				e.logger.Warn("Periodic sync finished with errors", zap.Error(err))
			}
		}
	}
}

// withRetry runs fn with a per-call timeout and a bounded retry budget.
// Domain errors (not found, not tokenized) and context cancellation are
// never retried.
func (e *Engine) withRetry(ctx context.Context, op string, fn func(context.Context) error) error {
	backoff := 250 * time.Millisecond
	var err error
	for attempt := 1; attempt <= e.cfg.RetryAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout())
		err = fn(callCtx)
		cancel()
		if err == nil {
			return nil
		}
		if errors.Is(err, ownership.ErrNotFound) ||
			errors.Is(err, ownership.ErrNotTokenized) ||
			ctx.Err() != nil {
			return err
		}
		if attempt < e.cfg.RetryAttempts {
			e.logger.Warn("Retrying "+op,
				zap.Int("attempt", attempt), zap.Error(err))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff *= 2
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", op, e.cfg.RetryAttempts, err)
}

func (e *Engine) publish(t bus.EventType, assetID string, payload any) {
	e.bus.Publish(bus.Event{Type: t, AssetID: assetID, Payload: payload})
}

func (e *Engine) tracker(assetID string) *orderTracker {
	e.ordMu.Lock()
	defer e.ordMu.Unlock()
	t, ok := e.ord[assetID]
	if !ok {
		t = newOrderTracker()
		e.ord[assetID] = t
	}
	return t
}

func (e *Engine) dropTracker(assetID string) {
	e.ordMu.Lock()
	delete(e.ord, assetID)
	e.ordMu.Unlock()
}

func (e *Engine) resetTracker(assetID string) {
	t := e.tracker(assetID)
	t.mu.Lock()
	t.reset()
	t.mu.Unlock()
}

func (e *Engine) setStream(s ledger.Stream) {
	e.streamMu.Lock()
	e.stream = s
	e.streamMu.Unlock()
}

func (e *Engine) currentStream() ledger.Stream {
	e.streamMu.Lock()
	defer e.streamMu.Unlock()
	return e.stream
}

// refreshFilter narrows or widens the live feed to the monitored set.
func (e *Engine) refreshFilter() {
	e.streamMu.Lock()
	stream := e.stream
	e.streamMu.Unlock()
	if stream == nil {
		return
	}
	if err := stream.UpdateFilter(e.registry.LedgerIDs()); err != nil {
		e.logger.Warn("Failed to update feed filter", zap.Error(err))
	}
}

func stateFromMeta(meta *datastore.AssetMeta) ownership.AssetState {
	return ownership.AssetState{
		AssetID:         meta.AssetID,
		LedgerID:        meta.LedgerID,
		ReserveAddress:  meta.ReserveAddress,
		TotalSupply:     meta.TotalSupply,
		AvailableSupply: meta.AvailableSupply,
		UnitPrice:       meta.UnitPrice,
		TotalValue:      meta.TotalValue,
	}
}

func holdingsFromRows(rows []datastore.HoldingRow) []ownership.Holding {
	holdings := make([]ownership.Holding, 0, len(rows))
	for _, r := range rows {
		holdings = append(holdings, ownership.Holding{
			Address:    r.Holder,
			Balance:    r.Balance,
			AcquiredAt: r.AcquiredAt,
		})
	}
	return holdings
}

func recordFromEvent(ev ledger.TransferEvent) ownership.TransactionRecord {
	return ownership.TransactionRecord{
		ID:        ev.TxID,
		From:      ev.From,
		To:        ev.To,
		Amount:    ev.Amount,
		Seq:       ev.Seq,
		Timestamp: ev.Timestamp,
		Confirmed: ev.Confirmed,
	}
}

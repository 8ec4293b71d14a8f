package ownership

import (
	"sort"
	"sync"
	"time"
)

// Cache is the concurrency-safe in-memory store of per-asset ownership state.
// Each asset has its own entry lock, so mutations to one asset are linearized
// while different assets proceed fully in parallel. All query methods return
// copies; readers never observe a partially applied mutation.
type Cache struct {
	mu         sync.RWMutex
	assets     map[string]*assetEntry
	historyCap int
}

type assetEntry struct {
	mu       sync.Mutex
	state    AssetState
	holdings map[string]*Holding
	history  *txRing
	// seen holds the transaction ids currently in the history ring and is
	// the deduplication window for replayed events.
	seen map[string]struct{}
}

// NewCache creates a cache whose per-asset transaction history holds at most
// historyCap records.
func NewCache(historyCap int) *Cache {
	if historyCap <= 0 {
		historyCap = 256
	}
	return &Cache{
		assets:     make(map[string]*assetEntry),
		historyCap: historyCap,
	}
}

// Insert adds a new asset with its initial holdings. It reports false without
// touching the existing entry if the asset is already cached, which keeps
// registration idempotent.
func (c *Cache) Insert(assetID string, state AssetState, holdings []Holding) bool {
	entry := &assetEntry{
		state:    state,
		holdings: make(map[string]*Holding, len(holdings)),
		history:  newTxRing(c.historyCap),
		seen:     make(map[string]struct{}),
	}
	for _, h := range holdings {
		if h.Balance == 0 {
			continue
		}
		hc := h
		entry.holdings[h.Address] = &hc
	}
	entry.recompute()
	entry.state.LastUpdated = time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.assets[assetID]; exists {
		return false
	}
	c.assets[assetID] = entry
	return true
}

// Remove evicts an asset. Removing an absent asset is a no-op.
func (c *Cache) Remove(assetID string) {
	c.mu.Lock()
	delete(c.assets, assetID)
	c.mu.Unlock()
}

func (c *Cache) entry(assetID string) (*assetEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.assets[assetID]
	return e, ok
}

// Get returns a copy of the asset state.
func (c *Cache) Get(assetID string) (AssetState, error) {
	e, ok := c.entry(assetID)
	if !ok {
		return AssetState{}, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state, nil
}

// GetHoldings returns a copy of the asset's holdings, largest balance first.
func (c *Cache) GetHoldings(assetID string) ([]Holding, error) {
	e, ok := c.entry(assetID)
	if !ok {
		return nil, ErrNotFound
	}
	e.mu.Lock()
	out := make([]Holding, 0, len(e.holdings))
	for _, h := range e.holdings {
		out = append(out, *h)
	}
	e.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Balance != out[j].Balance {
			return out[i].Balance > out[j].Balance
		}
		return out[i].Address < out[j].Address
	})
	return out, nil
}

// RecentTransactions returns up to limit history entries, newest first.
func (c *Cache) RecentTransactions(assetID string, limit int) ([]TransactionRecord, error) {
	e, ok := c.entry(assetID)
	if !ok {
		return nil, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.newest(limit), nil
}

// ApplyTransfer atomically applies one transaction to the asset: it debits
// the source, credits the destination, removes zero-balance holdings,
// recomputes the derived supply figures and appends the record to the history
// ring. The transaction type is derived from the asset's reserve address.
//
// A debit that would go negative returns an InvariantViolationError, leaves
// all balances untouched and flags the asset as needing resync. A record
// whose id was already applied returns ErrDuplicateTransaction.
func (c *Cache) ApplyTransfer(assetID string, tx TransactionRecord) (AssetState, error) {
	e, ok := c.entry(assetID)
	if !ok {
		return AssetState{}, ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, dup := e.seen[tx.ID]; dup {
		return e.state, ErrDuplicateTransaction
	}

	reserve := e.state.ReserveAddress
	fromReserve := tx.From == "" || tx.From == reserve
	toReserve := tx.To == "" || tx.To == reserve
	tx.Type = Classify(reserve, tx.From, tx.To, tx.Amount)

	if tx.Amount > 0 && !fromReserve {
		h, held := e.holdings[tx.From]
		if !held || h.Balance < tx.Amount {
			var balance uint64
			if held {
				balance = h.Balance
			}
			e.state.NeedsResync = true
			return e.state, &InvariantViolationError{
				AssetID: assetID,
				Holder:  tx.From,
				Balance: balance,
				Debit:   tx.Amount,
			}
		}
		h.Balance -= tx.Amount
		h.LastTxRef = tx.ID
		if h.Balance == 0 {
			delete(e.holdings, tx.From)
		}
	}

	if tx.Amount > 0 && !toReserve {
		h, held := e.holdings[tx.To]
		if !held {
			h = &Holding{Address: tx.To, AcquiredAt: tx.Timestamp}
			e.holdings[tx.To] = h
		}
		h.Balance += tx.Amount
		h.LastTxRef = tx.ID
	}

	// A successful apply supersedes a transient violation caused by
	// out-of-order delivery; recompute re-flags real disagreements.
	e.state.NeedsResync = false
	e.recompute()
	e.record(tx)
	e.state.LastUpdated = time.Now()
	return e.state, nil
}

// Replace atomically swaps the asset's state and holdings with a freshly
// synced snapshot. The transaction history is preserved; the needs-resync
// flag is cleared. Replace is never partially applied.
func (c *Cache) Replace(assetID string, state AssetState, holdings []Holding) (AssetState, error) {
	e, ok := c.entry(assetID)
	if !ok {
		return AssetState{}, ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	state.TxCount = e.state.TxCount
	e.state = state
	e.state.NeedsResync = false
	e.holdings = make(map[string]*Holding, len(holdings))
	for _, h := range holdings {
		if h.Balance == 0 {
			continue
		}
		hc := h
		e.holdings[h.Address] = &hc
	}
	e.recompute()
	e.state.LastUpdated = time.Now()
	return e.state, nil
}

// Stats aggregates cache-wide counters.
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	entries := make(map[string]*assetEntry, len(c.assets))
	for id, e := range c.assets {
		entries[id] = e
	}
	c.mu.RUnlock()

	stats := CacheStats{Assets: len(entries), NeedsResync: []string{}}
	for id, e := range entries {
		e.mu.Lock()
		stats.Holders += len(e.holdings)
		stats.BufferedTransactions += e.history.len()
		if e.state.NeedsResync {
			stats.NeedsResync = append(stats.NeedsResync, id)
		}
		e.mu.Unlock()
	}
	sort.Strings(stats.NeedsResync)
	return stats
}

// recompute rebuilds the derived figures from holder balances:
// available supply, funding percentage and per-holding percentages.
// Callers must hold the entry lock.
func (e *assetEntry) recompute() {
	var held uint64
	for _, h := range e.holdings {
		held += h.Balance
	}
	if held > e.state.TotalSupply {
		// Sum of balances exceeding the supply means the sources disagree;
		// keep serving but flag for resync.
		e.state.NeedsResync = true
		e.state.AvailableSupply = 0
	} else {
		e.state.AvailableSupply = e.state.TotalSupply - held
	}
	if e.state.TotalSupply > 0 {
		e.state.FundingPercent = float64(e.state.TotalSupply-e.state.AvailableSupply) / float64(e.state.TotalSupply) * 100
		for _, h := range e.holdings {
			h.Percent = float64(h.Balance) / float64(e.state.TotalSupply) * 100
		}
	}
}

// record appends to the history ring and maintains the dedup window.
// Callers must hold the entry lock.
func (e *assetEntry) record(tx TransactionRecord) {
	if evicted, ok := e.history.push(tx); ok {
		delete(e.seen, evicted.ID)
	}
	e.seen[tx.ID] = struct{}{}
	e.state.TxCount++
}

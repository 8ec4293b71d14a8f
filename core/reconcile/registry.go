package reconcile

import (
	"sort"
	"sync"
)

// Registry tracks the monitored asset set and the bidirectional mapping
// between logical asset ids and ledger-native ids.
type Registry struct {
	mu       sync.RWMutex
	byAsset  map[string]uint64
	byLedger map[uint64]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byAsset:  make(map[string]uint64),
		byLedger: make(map[uint64]string),
	}
}

// Add registers the mapping. It reports false if the asset was already
// registered.
func (r *Registry) Add(assetID string, ledgerID uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byAsset[assetID]; exists {
		return false
	}
	r.byAsset[assetID] = ledgerID
	r.byLedger[ledgerID] = assetID
	return true
}

// Remove drops the asset from the monitored set. Removing an absent asset
// reports false.
func (r *Registry) Remove(assetID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	ledgerID, exists := r.byAsset[assetID]
	if !exists {
		return false
	}
	delete(r.byAsset, assetID)
	delete(r.byLedger, ledgerID)
	return true
}

// Has reports whether the asset is monitored.
func (r *Registry) Has(assetID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byAsset[assetID]
	return ok
}

// Resolve maps a ledger-native id back to the logical asset id.
func (r *Registry) Resolve(ledgerID uint64) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	assetID, ok := r.byLedger[ledgerID]
	return assetID, ok
}

// LedgerID returns the ledger-native id of a monitored asset.
func (r *Registry) LedgerID(assetID string) (uint64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ledgerID, ok := r.byAsset[assetID]
	return ledgerID, ok
}

// List returns a sorted snapshot of the monitored asset ids.
func (r *Registry) List() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.byAsset))
	for id := range r.byAsset {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// LedgerIDs returns a sorted snapshot of the monitored ledger-native ids,
// the filter for the live feed subscription.
func (r *Registry) LedgerIDs() []uint64 {
	r.mu.RLock()
	ids := make([]uint64, 0, len(r.byLedger))
	for id := range r.byLedger {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the monitored asset count.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byAsset)
}

package reconcile

import (
	"sort"
	"sync"

	"github.com/RawMal/AlgoEstate-sub000/core/ledger"
)

// orderTracker linearizes one asset's feed events into ledger sequence
// order. Events are parked in a pending buffer and drained lowest sequence
// first, so an event arriving before its predecessor waits instead of
// corrupting balances. The tracker's lock is the per-asset exclusivity for
// the event-ingestion path.
type orderTracker struct {
	mu sync.Mutex

	// lastSeq is the highest sequence successfully applied.
	lastSeq uint64
	// pending holds events not yet applied, keyed by transaction id to
	// absorb duplicate deliveries.
	pending map[string]ledger.TransferEvent
}

func newOrderTracker() *orderTracker {
	return &orderTracker{pending: make(map[string]ledger.TransferEvent)}
}

// park adds an event to the pending buffer. Re-delivery of a buffered
// transaction id is a no-op.
func (t *orderTracker) park(ev ledger.TransferEvent) {
	if _, dup := t.pending[ev.TxID]; dup {
		return
	}
	t.pending[ev.TxID] = ev
}

// next returns the lowest-sequence pending event.
func (t *orderTracker) next() (ledger.TransferEvent, bool) {
	if len(t.pending) == 0 {
		return ledger.TransferEvent{}, false
	}
	ids := make([]string, 0, len(t.pending))
	for id := range t.pending {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := t.pending[ids[i]], t.pending[ids[j]]
		if a.Seq != b.Seq {
			return a.Seq < b.Seq
		}
		return ids[i] < ids[j]
	})
	return t.pending[ids[0]], true
}

// applied marks an event as consumed and advances the sequence watermark.
func (t *orderTracker) applied(ev ledger.TransferEvent) {
	delete(t.pending, ev.TxID)
	if ev.Seq > t.lastSeq {
		t.lastSeq = ev.Seq
	}
}

// drop discards a pending event without advancing the watermark.
func (t *orderTracker) drop(ev ledger.TransferEvent) {
	delete(t.pending, ev.TxID)
}

// overflowing reports whether the pending buffer outgrew the window,
// meaning replay cannot restore order and a full resync is needed.
func (t *orderTracker) overflowing(window int) bool {
	return len(t.pending) > window
}

// reset clears all ordering state after a full resync.
func (t *orderTracker) reset() {
	t.lastSeq = 0
	t.pending = make(map[string]ledger.TransferEvent)
}

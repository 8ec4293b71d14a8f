package bus

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// EventType identifies the kind of state change an Event describes.
type EventType string

const (
	// AssetRegistered fires when an asset enters the monitored set.
	AssetRegistered EventType = "asset_registered"
	// AssetRemoved fires when an asset leaves the monitored set.
	AssetRemoved EventType = "asset_removed"
	// OwnershipUpdated fires after a transaction changed cached balances.
	OwnershipUpdated EventType = "ownership_updated"
	// TransferObserved fires for every accepted ledger transfer.
	TransferObserved EventType = "transfer_observed"
	// SyncCompleted fires after a successful full resync of one asset.
	SyncCompleted EventType = "sync_completed"
	// SupplyMismatch warns that ledger and datastore totals diverge.
	SupplyMismatch EventType = "supply_mismatch"
	// DegradedMode signals that live ingestion is down and the engine fell
	// back to periodic sync only.
	DegradedMode EventType = "degraded_mode"
	// Error carries a surfaced per-asset failure.
	Error EventType = "error"
)

// Event is a typed state-change notification.
type Event struct {
	// Type is the event kind.
	Type EventType `json:"type"`
	// AssetID is the affected asset, empty for engine-wide events.
	AssetID string `json:"asset_id,omitempty"`
	// Time is when the event was emitted.
	Time time.Time `json:"time"`
	// Payload carries type-specific data (a state snapshot, a transaction
	// record, an error message).
	Payload any `json:"payload,omitempty"`
}

// Subscription is one subscriber's bounded event queue.
type Subscription struct {
	id    string
	types map[EventType]struct{}
	bus   *Bus

	mu     sync.Mutex
	ch     chan Event
	closed bool
}

// Events returns the receive channel. It is closed when the subscription or
// the bus is closed.
func (s *Subscription) Events() <-chan Event { return s.ch }

// Close detaches the subscription from the bus and closes its channel.
func (s *Subscription) Close() {
	s.bus.remove(s.id)
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
	s.mu.Unlock()
}

func (s *Subscription) wants(t EventType) bool {
	if len(s.types) == 0 {
		return true
	}
	_, ok := s.types[t]
	return ok
}

// deliver enqueues without ever blocking: when the queue is full the oldest
// entry is dropped to make room, and the drop is counted.
func (s *Subscription) deliver(ev Event, dropped *atomic.Uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.ch <- ev:
			return
		default:
		}
		select {
		case <-s.ch:
			dropped.Add(1)
		default:
		}
	}
}

// Bus is a bounded, non-blocking fan-out of typed events. Each subscriber
// has its own queue; a slow subscriber loses its oldest events instead of
// stalling emission.
type Bus struct {
	mu        sync.RWMutex
	subs      map[string]*Subscription
	queueSize int
	closed    bool
	dropped   atomic.Uint64
}

// New creates a bus with the given per-subscriber queue size.
func New(queueSize int) *Bus {
	if queueSize <= 0 {
		queueSize = 128
	}
	return &Bus{
		subs:      make(map[string]*Subscription),
		queueSize: queueSize,
	}
}

// Subscribe registers a subscriber for the given event types.
// No types means all types.
func (b *Bus) Subscribe(types ...EventType) *Subscription {
	sub := &Subscription{
		id:    uuid.NewString(),
		types: make(map[EventType]struct{}, len(types)),
		ch:    make(chan Event, b.queueSize),
		bus:   b,
	}
	for _, t := range types {
		sub.types[t] = struct{}{}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(sub.ch)
		sub.closed = true
		return sub
	}
	b.subs[sub.id] = sub
	return sub
}

// Publish delivers the event to every interested subscriber in emission
// order. It never blocks.
func (b *Bus) Publish(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, sub := range b.subs {
		if sub.wants(ev.Type) {
			sub.deliver(ev, &b.dropped)
		}
	}
}

// Dropped returns the total number of events discarded because a
// subscriber's queue was full.
func (b *Bus) Dropped() uint64 { return b.dropped.Load() }

// Close shuts the bus down and closes all subscriber channels.
// Publishing or subscribing afterwards is a no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		sub.mu.Lock()
		if !sub.closed {
			sub.closed = true
			close(sub.ch)
		}
		sub.mu.Unlock()
		delete(b.subs, id)
	}
}

func (b *Bus) remove(id string) {
	b.mu.Lock()
	delete(b.subs, id)
	b.mu.Unlock()
}

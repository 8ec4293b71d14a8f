package ownership

// txRing is a fixed-capacity circular buffer of transaction records.
// When full, pushing a new record evicts the oldest one.
type txRing struct {
	buf  []TransactionRecord
	head int // index of the oldest entry
	size int
}

func newTxRing(capacity int) *txRing {
	if capacity <= 0 {
		capacity = 1
	}
	return &txRing{buf: make([]TransactionRecord, capacity)}
}

// push appends a record and returns the evicted one, if any.
func (r *txRing) push(tx TransactionRecord) (TransactionRecord, bool) {
	if r.size < len(r.buf) {
		r.buf[(r.head+r.size)%len(r.buf)] = tx
		r.size++
		return TransactionRecord{}, false
	}
	evicted := r.buf[r.head]
	r.buf[r.head] = tx
	r.head = (r.head + 1) % len(r.buf)
	return evicted, true
}

// newest returns up to limit records, most recent first.
func (r *txRing) newest(limit int) []TransactionRecord {
	if limit <= 0 || limit > r.size {
		limit = r.size
	}
	out := make([]TransactionRecord, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (r.head + r.size - 1 - i + len(r.buf)) % len(r.buf)
		out = append(out, r.buf[idx])
	}
	return out
}

func (r *txRing) len() int { return r.size }

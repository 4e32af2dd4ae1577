package webhook

import (
	"sync"
	"time"
)

// DedupWindow remembers recently seen transaction ids so at-least-once
// provider delivery becomes at-most-once processing. Entries older than the
// window are evicted; a redelivery later than that slips through, which is
// accepted — the reconciler's compare-and-set makes it a no-op anyway.
type DedupWindow struct {
	mu     sync.Mutex
	window time.Duration
	seen   map[string]time.Time
}

func NewDedupWindow(window time.Duration) *DedupWindow {
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &DedupWindow{
		window: window,
		seen:   make(map[string]time.Time),
	}
}

// Contains reports whether the transaction id was recorded within the
// window. Stale entries are evicted on the way through.
func (w *DedupWindow) Contains(transactionID string, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := now.Add(-w.window)
	for id, at := range w.seen {
		if at.Before(cutoff) {
			delete(w.seen, id)
		}
	}

	at, ok := w.seen[transactionID]
	return ok && !at.Before(cutoff)
}

// Record marks the transaction id as processed. Only applied events belong
// here: recording a delivery that was not applied would suppress the
// provider's redelivery of an event we still need.
func (w *DedupWindow) Record(transactionID string, now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seen[transactionID] = now
}

func (w *DedupWindow) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.seen)
}

package source

import "github.com/netboxlabs/netbox-sync-engine/pkg/objects"

// DeferredEntry is one IP-assignment attempt that primary-IP arbitration
// (sync.ArbitratePrimaryIP) could not resolve on the first pass because
// both the existing holder's interface and the candidate interface were
// enabled.
type DeferredEntry struct {
	Interface *objects.Entity
	Address   *objects.Entity
	Data      map[string]any
}

// DeferredIPQueue collects the entries recorded during one adapter's
// Apply() call. The adapters drain it at the end of Apply and log each
// entry as a warning; the entries are not re-evaluated.
type DeferredIPQueue struct {
	entries []DeferredEntry
}

// NewDeferredIPQueue returns an empty queue.
func NewDeferredIPQueue() *DeferredIPQueue {
	return &DeferredIPQueue{}
}

// Defer records an assignment attempt for the end-of-Apply drain.
func (q *DeferredIPQueue) Defer(iface, addr *objects.Entity, data map[string]any) {
	q.entries = append(q.entries, DeferredEntry{Interface: iface, Address: addr, Data: data})
}

// Drain returns every deferred entry and empties the queue; the adapters
// call it at the end of Apply.
func (q *DeferredIPQueue) Drain() []DeferredEntry {
	out := q.entries
	q.entries = nil
	return out
}

// Len reports how many entries are currently queued.
func (q *DeferredIPQueue) Len() int { return len(q.entries) }

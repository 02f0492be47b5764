// Package event defines the simulation's event type and a min-time
// priority queue over it, generalizing the teacher's single-purpose
// eventlist heap to the engine's two event kinds.
package event

import (
	"container/heap"

	"github.com/tamaroning/blocksim/internal/block"
)

// Kind discriminates an Event's payload.
type Kind int

const (
	BlockGeneration Kind = iota
	Propagation
)

// Event is (time, kind) plus the fields relevant to that kind. Events
// are consumed in non-decreasing Time order; ties are broken by
// insertion order (see Queue).
type Event struct {
	Time int64
	Kind Kind

	// BlockGeneration fields.
	Minter int

	// Propagation fields.
	From, To int

	// BlockID is the block the event carries: the candidate being mined
	// for BlockGeneration, the block being delivered for Propagation.
	BlockID block.ID
}

// Queue is a min-priority queue keyed by Time, with deterministic
// ordering of equal-time events by insertion sequence, and selective
// removal by predicate for cancelling stale mining events (§4.2).
type Queue struct {
	items []item
	seq   int
}

type item struct {
	ev  Event
	seq int
}

// Len implements heap.Interface.
func (q *Queue) Len() int { return len(q.items) }

// Less implements heap.Interface: earlier time wins; ties break by
// insertion order.
func (q *Queue) Less(i, j int) bool {
	if q.items[i].ev.Time != q.items[j].ev.Time {
		return q.items[i].ev.Time < q.items[j].ev.Time
	}
	return q.items[i].seq < q.items[j].seq
}

// Swap implements heap.Interface.
func (q *Queue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

// Push implements heap.Interface. Use Queue.Insert, not this directly.
func (q *Queue) Push(x interface{}) { q.items = append(q.items, x.(item)) }

// Pop implements heap.Interface. Use Queue.PopMin, not this directly.
func (q *Queue) Pop() interface{} {
	old := q.items
	n := len(old)
	it := old[n-1]
	q.items = old[:n-1]
	return it
}

// Insert adds ev to the queue in O(log n).
func (q *Queue) Insert(ev Event) {
	heap.Push(q, item{ev: ev, seq: q.seq})
	q.seq++
}

// PopMin removes and returns the earliest event, in O(log n). The
// second return is false if the queue is empty.
func (q *Queue) PopMin() (Event, bool) {
	if q.Len() == 0 {
		return Event{}, false
	}
	it := heap.Pop(q).(item)
	return it.ev, true
}

// Empty reports whether the queue has no events.
func (q *Queue) Empty() bool { return q.Len() == 0 }

// RemoveFunc deletes every event matching predicate, bounded by the
// number of outstanding events satisfying it (O(n) in queue size, but
// in practice O(1) per node per §4.2).
func (q *Queue) RemoveFunc(predicate func(Event) bool) {
	kept := q.items[:0]
	for _, it := range q.items {
		if !predicate(it.ev) {
			kept = append(kept, it)
		}
	}
	q.items = kept
	heap.Init(q)
}

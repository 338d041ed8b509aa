// Implements the EventHeap, the simulation timeline: a binary heap keyed by
// (time, insertion sequence) so that simultaneous events fire in FIFO order.

package sim

import "container/heap"

// EventHeap is a priority queue of pending events with deterministic
// ordering: earlier time first, and among equal times, earlier insertion
// first. Schedule stamps each event with a monotonic sequence number, so two
// events scheduled for the same instant pop in the order they were scheduled.
// Event kind never participates in the ordering.
type EventHeap struct {
	events  []Event
	nextSeq uint64
}

// NewEventHeap creates an empty timeline.
func NewEventHeap() *EventHeap {
	h := &EventHeap{
		events: make([]Event, 0),
	}
	heap.Init(h)
	return h
}

// Len implements heap.Interface
func (h *EventHeap) Len() int {
	return len(h.events)
}

// Less implements heap.Interface
// Order by: time → insertion sequence
func (h *EventHeap) Less(i, j int) bool {
	ei, ej := h.events[i], h.events[j]
	if ei.Time() != ej.Time() {
		return ei.Time() < ej.Time()
	}
	return ei.Seq() < ej.Seq()
}

// Swap implements heap.Interface
func (h *EventHeap) Swap(i, j int) {
	h.events[i], h.events[j] = h.events[j], h.events[i]
}

// Push implements heap.Interface
func (h *EventHeap) Push(x interface{}) {
	h.events = append(h.events, x.(Event))
}

// Pop implements heap.Interface
func (h *EventHeap) Pop() interface{} {
	old := h.events
	n := len(old)
	item := old[n-1]
	h.events = old[0 : n-1]
	return item
}

// Schedule stamps the event with the next insertion sequence and adds it to
// the heap.
func (h *EventHeap) Schedule(e Event) {
	e.stamp(h.nextSeq)
	h.nextSeq++
	heap.Push(h, e)
}

// PopNext removes and returns the earliest event, or nil when the timeline
// is empty.
func (h *EventHeap) PopNext() Event {
	if h.Len() == 0 {
		return nil
	}
	return heap.Pop(h).(Event)
}

// Peek returns the earliest event without removing it, or nil when the
// timeline is empty.
func (h *EventHeap) Peek() Event {
	if h.Len() == 0 {
		return nil
	}
	return h.events[0]
}

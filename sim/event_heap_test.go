package sim

import (
	"math/rand"
	"testing"
)

// TestEventHeap_TimeOrdering tests that events pop in time order regardless
// of insertion order.
func TestEventHeap_TimeOrdering(t *testing.T) {
	h := NewEventHeap()

	h.Schedule(NewArrivalEvent(10, 1, 0, true))
	h.Schedule(NewArrivalEvent(5, 2, 0, true))
	h.Schedule(NewArrivalEvent(15, 3, 0, true))

	for _, want := range []float64{5, 10, 15} {
		e := h.PopNext()
		if e == nil {
			t.Fatalf("PopNext returned nil, want event at t=%v", want)
		}
		if e.Time() != want {
			t.Errorf("popped event at t=%v, want %v", e.Time(), want)
		}
	}

	if h.Len() != 0 {
		t.Errorf("heap should be empty, len = %d", h.Len())
	}
}

// TestEventHeap_FIFOTieBreak tests that two events at the same instant pop
// in scheduling order, independent of event kind.
func TestEventHeap_FIFOTieBreak(t *testing.T) {
	h := NewEventHeap()

	// A departure scheduled first must pop before an arrival at the same
	// time: kind plays no role in the ordering.
	a := NewDepartureEvent(7, 1, 0)
	b := NewArrivalEvent(7, 2, 0, false)
	h.Schedule(a)
	h.Schedule(b)

	first := h.PopNext()
	if first.Kind() != KindDeparture {
		t.Errorf("first popped kind = %s, want %s", first.Kind(), KindDeparture)
	}
	second := h.PopNext()
	if second.Kind() != KindArrival {
		t.Errorf("second popped kind = %s, want %s", second.Kind(), KindArrival)
	}
}

// TestEventHeap_EmptyOps tests PopNext and Peek on an empty heap.
func TestEventHeap_EmptyOps(t *testing.T) {
	h := NewEventHeap()

	if e := h.PopNext(); e != nil {
		t.Errorf("PopNext on empty heap = %v, want nil", e)
	}
	if e := h.Peek(); e != nil {
		t.Errorf("Peek on empty heap = %v, want nil", e)
	}
}

// TestEventHeap_Peek tests that Peek returns the earliest event without
// removing it.
func TestEventHeap_Peek(t *testing.T) {
	h := NewEventHeap()
	h.Schedule(NewArrivalEvent(3, 1, 0, true))
	h.Schedule(NewArrivalEvent(1, 2, 0, true))

	if e := h.Peek(); e == nil || e.Time() != 1 {
		t.Fatalf("Peek = %v, want event at t=1", e)
	}
	if h.Len() != 2 {
		t.Errorf("Peek must not remove, len = %d, want 2", h.Len())
	}
	if e := h.PopNext(); e.Time() != 1 {
		t.Errorf("PopNext after Peek at t=%v, want 1", e.Time())
	}
}

// TestEventHeap_StableUnderLoad schedules many events with heavy time
// collisions in shuffled order and verifies pops are nondecreasing in time
// and FIFO within each time.
func TestEventHeap_StableUnderLoad(t *testing.T) {
	h := NewEventHeap()
	rng := rand.New(rand.NewSource(42))

	const n = 1000
	type label struct {
		time float64
		seq  uint64
	}
	for i := 0; i < n; i++ {
		// 10 distinct times forces ~100 collisions per time.
		tm := float64(rng.Intn(10))
		h.Schedule(NewArrivalEvent(tm, JobID(i), 0, true))
	}

	var prev label
	for i := 0; i < n; i++ {
		e := h.PopNext()
		if e == nil {
			t.Fatalf("heap empty after %d pops, want %d", i, n)
		}
		cur := label{time: e.Time(), seq: e.Seq()}
		if i > 0 {
			if cur.time < prev.time {
				t.Fatalf("pop %d went back in time: %v after %v", i, cur.time, prev.time)
			}
			if cur.time == prev.time && cur.seq < prev.seq {
				t.Fatalf("pop %d broke FIFO at t=%v: seq %d after %d", i, cur.time, cur.seq, prev.seq)
			}
		}
		prev = cur
	}
}

// TestEventHeap_InterleavedScheduling interleaves pops with later inserts
// and verifies time order still holds across the whole sequence.
func TestEventHeap_InterleavedScheduling(t *testing.T) {
	h := NewEventHeap()
	h.Schedule(NewArrivalEvent(1, 1, 0, true))
	h.Schedule(NewArrivalEvent(4, 2, 0, true))

	if e := h.PopNext(); e.Time() != 1 {
		t.Fatalf("first pop t=%v, want 1", e.Time())
	}

	// A later event between the two pending times must pop next.
	h.Schedule(NewDepartureEvent(2, 1, 0))

	if e := h.PopNext(); e.Time() != 2 {
		t.Errorf("second pop t=%v, want 2", e.Time())
	}
	if e := h.PopNext(); e.Time() != 4 {
		t.Errorf("third pop t=%v, want 4", e.Time())
	}
}

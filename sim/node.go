// Defines the Node, the per-queue state machine of the network. A node is a
// single server with a FIFO queue; it is either Idle or Busy, and accumulates
// busy time and per-job wait/service samples as the Simulator drives it.

package sim

import (
	"fmt"

	"github.com/sachd-vipu/queuesimulation/sim/dist"
)

// NodeID identifies a node in the network. Routing walks destinations in
// ascending NodeID order, so IDs double as the deterministic tie-break for
// probability accumulation.
type NodeID int

// Node models a single-server FIFO station.
//
// State machine:
//   - Idle --arrival--> Busy: the job starts service immediately.
//   - Busy --arrival--> Busy: the job waits at the tail of the queue.
//   - Busy --departure, queue non-empty--> Busy: the next head starts service.
//   - Busy --departure, queue empty--> Idle.
//
// All mutation happens on the Simulator goroutine during event processing;
// Node has no locking of its own.
type Node struct {
	ID      NodeID
	Service dist.Sampler

	// Queue holds every job at the node, the in-service head included.
	Queue JobQueue

	Busy          bool
	BusyChangedAt float64 // meaningful only while Busy
	TotalBusyTime float64

	Arrivals   uint64
	JobsServed uint64

	// Wait and service samples recorded after the warm-up boundary.
	WaitTimes    []float64
	ServiceTimes []float64
}

// NewNode creates an idle node with the given service-time sampler.
func NewNode(id NodeID, service dist.Sampler) *Node {
	return &Node{
		ID:      id,
		Service: service,
	}
}

// StartBusy marks the Idle -> Busy transition.
func (n *Node) StartBusy(now float64) {
	if n.Busy {
		panic(fmt.Sprintf("StartBusy: node %d is already busy", n.ID))
	}
	n.Busy = true
	n.BusyChangedAt = now
}

// AccrueBusy folds the elapsed busy interval into TotalBusyTime and restarts
// the interval at now. Called on a departure that leaves more jobs waiting.
func (n *Node) AccrueBusy(now float64) {
	n.TotalBusyTime += now - n.BusyChangedAt
	n.BusyChangedAt = now
}

// StopBusy folds the final busy interval and marks the Busy -> Idle
// transition.
func (n *Node) StopBusy(now float64) {
	if !n.Busy {
		panic(fmt.Sprintf("StopBusy: node %d is already idle", n.ID))
	}
	n.TotalBusyTime += now - n.BusyChangedAt
	n.Busy = false
	n.BusyChangedAt = 0
}

// BusyTime returns the accumulated busy time including the live interval of
// an in-progress service.
func (n *Node) BusyTime(now float64) float64 {
	if n.Busy {
		return n.TotalBusyTime + (now - n.BusyChangedAt)
	}
	return n.TotalBusyTime
}

// ResetBusyStats discards busy time accumulated before the given instant.
// The Simulator calls it once, at the first event on or after the warm-up
// boundary, so utilization measures the post-warm-up window only.
func (n *Node) ResetBusyStats(at float64) {
	n.TotalBusyTime = 0
	if n.Busy {
		n.BusyChangedAt = at
	}
}

// QueueLength returns the number of jobs at the node, in service included.
func (n *Node) QueueLength() int {
	return n.Queue.Len()
}

// String returns a human-readable representation of a Node.
func (n *Node) String() string {
	state := "idle"
	if n.Busy {
		state = "busy"
	}
	return fmt.Sprintf("Node: (ID: %d, State: %s, Queue: %s, Served: %d)", n.ID, state, n.Queue.String(), n.JobsServed)
}

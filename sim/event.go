// Defines the events that drive the simulation: job arrivals at a node
// (external or routed) and service-completion departures. Events are ordered
// by the EventHeap and executed by the Simulator.

package sim

import "github.com/sirupsen/logrus"

// EventKind labels the two event families the engine schedules.
type EventKind string

const (
	KindArrival   EventKind = "arrival"
	KindDeparture EventKind = "departure"
)

// Event is a pending state transition on the simulation timeline.
// Time is the simulated instant the event fires; Seq is the timeline
// insertion number that keeps simultaneous events in FIFO order.
type Event interface {
	Time() float64
	Seq() uint64
	Kind() EventKind
	Execute(sim *Simulator)

	// stamp records the insertion sequence. It is assigned by
	// EventHeap.Schedule; keeping it unexported seals the interface to
	// this package.
	stamp(seq uint64)
}

// BaseEvent carries the fields shared by every event.
type BaseEvent struct {
	time float64
	kind EventKind
	seq  uint64
}

// Time returns the simulated instant the event fires.
func (e *BaseEvent) Time() float64 { return e.time }

// Seq returns the timeline insertion sequence number.
func (e *BaseEvent) Seq() uint64 { return e.seq }

// Kind returns the event family.
func (e *BaseEvent) Kind() EventKind { return e.kind }

func (e *BaseEvent) stamp(seq uint64) { e.seq = seq }

// ArrivalEvent represents a job reaching a node, either from outside the
// network (External) or routed from an upstream departure.
type ArrivalEvent struct {
	BaseEvent
	Job      JobID
	Node     NodeID
	External bool
}

// NewArrivalEvent creates an arrival of job at node at the given time.
func NewArrivalEvent(time float64, job JobID, node NodeID, external bool) *ArrivalEvent {
	return &ArrivalEvent{
		BaseEvent: BaseEvent{time: time, kind: KindArrival},
		Job:       job,
		Node:      node,
		External:  external,
	}
}

// Execute enqueues the job at its node and starts service if the node is idle.
func (e *ArrivalEvent) Execute(sim *Simulator) {
	logrus.Debugf("<< Arrival: job %d at node %d, t=%.6f", e.Job, e.Node, e.time)
	sim.handleArrival(e)
}

// DepartureEvent represents a service completion at a node. The departing
// job is always the head of the node's queue.
type DepartureEvent struct {
	BaseEvent
	Job  JobID
	Node NodeID
}

// NewDepartureEvent creates a departure of job from node at the given time.
func NewDepartureEvent(time float64, job JobID, node NodeID) *DepartureEvent {
	return &DepartureEvent{
		BaseEvent: BaseEvent{time: time, kind: KindDeparture},
		Job:       job,
		Node:      node,
	}
}

// Execute completes service at the node and routes the job onward or out.
func (e *DepartureEvent) Execute(sim *Simulator) {
	logrus.Debugf(">> Departure: job %d from node %d, t=%.6f", e.Job, e.Node, e.time)
	sim.handleDeparture(e)
}

// Implements progress snapshots: self-contained value copies of run state
// pushed to an optional consumer while the simulation runs.

package sim

// ProgressFunc consumes progress snapshots during a run. The engine calls it
// synchronously between events, so implementations must be cheap; use
// NonBlocking to hand snapshots to a slow consumer through a channel.
type ProgressFunc func(ProgressSnapshot)

// ProgressSnapshot is a value copy of aggregate run state at one instant.
// It shares no memory with the engine: slices and maps are copied, so a
// consumer may retain or render it long after the run has moved on.
type ProgressSnapshot struct {
	Time            float64
	ProgressPercent float64
	ProcessedJobs   uint64
	MeanSojournTime float64
	SojournTimes    []float64
	Nodes           map[NodeID]NodeProgress
}

// NodeProgress is the per-node slice of a ProgressSnapshot.
type NodeProgress struct {
	Node        NodeID
	Busy        bool
	QueueLength int
	Arrivals    uint64
	Departures  uint64
	Utilization float64
}

// NonBlocking adapts a channel into a ProgressFunc that never stalls the
// engine: when the channel is full the snapshot is dropped. The engine keeps
// running at full speed regardless of how slowly the consumer drains.
func NonBlocking(ch chan<- ProgressSnapshot) ProgressFunc {
	return func(s ProgressSnapshot) {
		select {
		case ch <- s:
		default:
		}
	}
}

// buildSnapshot assembles a ProgressSnapshot by value-copying current state.
func (s *Simulator) buildSnapshot() ProgressSnapshot {
	sojourns := make([]float64, len(s.sojournTimes))
	copy(sojourns, s.sojournTimes)

	nodes := make(map[NodeID]NodeProgress, len(s.nodes))
	for id, n := range s.nodes {
		nodes[id] = NodeProgress{
			Node:        id,
			Busy:        n.Busy,
			QueueLength: n.QueueLength(),
			Arrivals:    n.Arrivals,
			Departures:  n.JobsServed,
			Utilization: s.utilization(n, s.clock),
		}
	}

	percent := 0.0
	if s.horizon > 0 {
		percent = 100 * s.clock / s.horizon
		if percent > 100 {
			percent = 100
		}
	}

	return ProgressSnapshot{
		Time:            s.clock,
		ProgressPercent: percent,
		ProcessedJobs:   s.processedJobs,
		MeanSojournTime: meanOrZero(sojourns),
		SojournTimes:    sojourns,
		Nodes:           nodes,
	}
}

// Package trace provides event and routing trace recording for run analysis.
// This package has no dependencies on sim/ and stores pure data types.
package trace

// EventRecord captures one processed simulation event.
type EventRecord struct {
	Seq   uint64
	Clock float64
	Kind  string
	Job   uint64
	Node  int
}

// RoutingRecord captures a single routing decision made when a job completed
// service and left its node.
type RoutingRecord struct {
	Job   uint64
	Clock float64
	From  int
	To    int // destination node; meaningful only when Exited is false
	// Exited reports that the job left the network instead of moving on.
	Exited bool
	// Draw is the uniform variate that drove the decision, kept so a
	// recorded run can be replayed against a routing table by hand.
	Draw float64
}

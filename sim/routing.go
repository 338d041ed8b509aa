// Implements probabilistic routing between nodes. A RoutingTable maps each
// source node to destination probabilities; any mass not assigned to a
// destination is the probability of leaving the network.

package sim

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// ErrInvalidRoutingTable reports a routing table that cannot drive a
// simulation: negative probabilities, a row summing past 1, an unknown
// destination, or an arrival node from which jobs can never exit.
var ErrInvalidRoutingTable = errors.New("invalid routing table")

// routingTolerance absorbs float accumulation error when checking that a
// row's probabilities do not exceed 1.
const routingTolerance = 1e-9

// RoutingTable maps source node -> destination node -> probability.
// A node with no row (or a row summing to 0) is an exit node; a row summing
// to s in (0, 1) sends the residual 1-s out of the network.
type RoutingTable map[NodeID]map[NodeID]float64

// Destination is the outcome of a routing decision: the next node, or the
// system exit when Exit is set.
type Destination struct {
	Exit bool
	Node NodeID
}

func (d Destination) String() string {
	if d.Exit {
		return "exit"
	}
	return fmt.Sprintf("node %d", d.Node)
}

// Route resolves the next destination for a job departing from the given
// node. u must be one uniform draw in [0, 1). Destinations are walked in
// ascending NodeID order accumulating probability; the first whose cumulative
// probability reaches u wins. Residual mass falls through to Exit.
// Route never fails on a table that passed Validate.
func (rt RoutingTable) Route(from NodeID, u float64) Destination {
	row := rt[from]
	if len(row) == 0 {
		return Destination{Exit: true}
	}

	dests := make([]NodeID, 0, len(row))
	for id := range row {
		dests = append(dests, id)
	}
	sort.Slice(dests, func(i, j int) bool { return dests[i] < dests[j] })

	cum := 0.0
	for _, id := range dests {
		p := row[id]
		if p <= 0 {
			continue
		}
		cum += p
		if cum >= u {
			return Destination{Node: id}
		}
	}
	return Destination{Exit: true}
}

// Validate checks the table against the node set. nodes is the full set of
// configured nodes; arrivalSources are the nodes receiving external arrivals.
// Checks, all reported as ErrInvalidRoutingTable:
//   - every probability is non-negative
//   - no row sums past 1 (within tolerance)
//   - every source and destination is a configured node
//   - from every arrival source, some exit is reachable through
//     positive-probability edges; otherwise injected jobs circulate forever
func (rt RoutingTable) Validate(nodes []NodeID, arrivalSources []NodeID) error {
	known := make(map[NodeID]bool, len(nodes))
	for _, id := range nodes {
		known[id] = true
	}

	for from, row := range rt {
		if !known[from] {
			return fmt.Errorf("%w: source %d is not a configured node", ErrInvalidRoutingTable, from)
		}
		sum := 0.0
		for to, p := range row {
			if !known[to] {
				return fmt.Errorf("%w: destination %d (from %d) is not a configured node", ErrInvalidRoutingTable, to, from)
			}
			if p < 0 {
				return fmt.Errorf("%w: probability %v (%d -> %d) is negative", ErrInvalidRoutingTable, p, from, to)
			}
			sum += p
		}
		if sum > 1+routingTolerance {
			return fmt.Errorf("%w: row %d sums to %v, exceeds 1", ErrInvalidRoutingTable, from, sum)
		}
	}

	return rt.validateExitReachability(nodes, arrivalSources)
}

// exitNodeID is the graph sentinel for the system exit. Config validation
// rejects negative node IDs, so -1 never collides with a real node.
const exitNodeID = -1

// validateExitReachability builds the directed routing graph and checks that
// every arrival source can reach the exit sentinel.
func (rt RoutingTable) validateExitReachability(nodes []NodeID, arrivalSources []NodeID) error {
	g := simple.NewDirectedGraph()
	for _, id := range nodes {
		if g.Node(int64(id)) == nil {
			g.AddNode(simple.Node(id))
		}
	}
	g.AddNode(simple.Node(exitNodeID))

	for _, id := range nodes {
		row := rt[id]
		sum := 0.0
		for to, p := range row {
			if p <= 0 {
				continue
			}
			sum += p
			// Self loops cannot change reachability and the graph
			// package rejects them.
			if to == id {
				continue
			}
			g.SetEdge(simple.Edge{F: simple.Node(id), T: simple.Node(to)})
		}
		// Residual mass is an edge to the exit sentinel.
		if sum < 1-routingTolerance {
			g.SetEdge(simple.Edge{F: simple.Node(id), T: simple.Node(exitNodeID)})
		}
	}

	for _, src := range arrivalSources {
		shortest := path.DijkstraFrom(g.Node(int64(src)), g)
		if _, weight := shortest.To(exitNodeID); math.IsInf(weight, 1) {
			return fmt.Errorf("%w: node %d receives arrivals but cannot reach an exit", ErrInvalidRoutingTable, src)
		}
	}
	return nil
}

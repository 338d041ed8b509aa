// Defines the immutable run configuration handed to New. The Simulator
// copies what it needs at construction and never mutates the caller's value.

package sim

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/sachd-vipu/queuesimulation/sim/dist"
	"github.com/sachd-vipu/queuesimulation/sim/trace"
)

// ErrInvalidConfig reports a configuration that cannot start a run.
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	// DefaultConfidenceLevel is used when Config.ConfidenceLevel is zero.
	DefaultConfidenceLevel = 0.95

	// DefaultProgressInterval is the minimum simulated time between
	// progress snapshots when Config.ProgressInterval is zero.
	DefaultProgressInterval = 0.01
)

// NodeConfig describes one service station of the network.
type NodeConfig struct {
	ID      NodeID    // non-negative, unique across the network
	Service dist.Spec // service-time distribution
}

// ArrivalConfig describes the external arrival process feeding one node.
// The arrival rate is implied by the inter-arrival distribution: rate =
// 1 / mean inter-arrival time.
type ArrivalConfig struct {
	Node         NodeID    // node receiving the arrivals
	Interarrival dist.Spec // inter-arrival time distribution
}

// Config is the full description of one simulation run.
type Config struct {
	Nodes    []NodeConfig
	Arrivals []ArrivalConfig
	Routing  RoutingTable

	// WarmupPeriod is the initial simulated interval excluded from all
	// statistics. Must be >= 0.
	WarmupPeriod float64

	// SimulationPeriod is the measured window after warm-up. The run
	// horizon is WarmupPeriod + SimulationPeriod. Must be > 0.
	SimulationPeriod float64

	// MaxJobs stops the run after this many jobs have left the network.
	// Zero means no job bound; the horizon alone ends the run.
	MaxJobs uint64

	// Seed is the master RNG seed. The same seed with the same Config
	// produces a bit-identical RunResult.
	Seed int64

	// ConfidenceLevel for interval half-widths, in (0, 1).
	// Zero selects DefaultConfidenceLevel.
	ConfidenceLevel float64

	// ProgressInterval is the minimum simulated time between progress
	// snapshots. Zero selects DefaultProgressInterval.
	ProgressInterval float64

	// Progress receives throttled snapshots during the run. Optional.
	// See NonBlocking for a channel handoff that never stalls the engine.
	Progress ProgressFunc

	// Trace collects event and routing records during the run when set.
	// Recording never consumes random draws, so a traced run is
	// bit-identical to an untraced one.
	Trace *trace.SimulationTrace
}

// withDefaults returns a copy with zero-valued optional fields filled in.
func (c Config) withDefaults() Config {
	if c.ConfidenceLevel == 0 {
		c.ConfidenceLevel = DefaultConfidenceLevel
	}
	if c.ProgressInterval == 0 {
		c.ProgressInterval = DefaultProgressInterval
	}
	return c
}

// NodeIDs returns the configured node IDs in ascending order.
func (c Config) NodeIDs() []NodeID {
	ids := make([]NodeID, 0, len(c.Nodes))
	for _, n := range c.Nodes {
		ids = append(ids, n.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ArrivalNodes returns the IDs of nodes with an external arrival process,
// in ascending order.
func (c Config) ArrivalNodes() []NodeID {
	ids := make([]NodeID, 0, len(c.Arrivals))
	for _, a := range c.Arrivals {
		ids = append(ids, a.Node)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ArrivalRates returns the external arrival rate per node, derived from the
// inter-arrival distributions (rate = 1/mean). Distributions with an
// undefined mean contribute rate 0.
func (c Config) ArrivalRates() (map[NodeID]float64, error) {
	rates := make(map[NodeID]float64, len(c.Arrivals))
	for _, a := range c.Arrivals {
		sampler, err := dist.New(a.Interarrival)
		if err != nil {
			return nil, err
		}
		mean := sampler.Mean()
		if mean > 0 && !math.IsInf(mean, 1) {
			rates[a.Node] = 1 / mean
		} else {
			rates[a.Node] = 0
		}
	}
	return rates, nil
}

// ServiceRates returns the service rate per node, derived from the service
// distributions (rate = 1/mean). Distributions with an undefined mean
// contribute rate 0.
func (c Config) ServiceRates() (map[NodeID]float64, error) {
	rates := make(map[NodeID]float64, len(c.Nodes))
	for _, n := range c.Nodes {
		sampler, err := dist.New(n.Service)
		if err != nil {
			return nil, err
		}
		mean := sampler.Mean()
		if mean > 0 && !math.IsInf(mean, 1) {
			rates[n.ID] = 1 / mean
		} else {
			rates[n.ID] = 0
		}
	}
	return rates, nil
}

// Validate checks the structural configuration: node identity, periods,
// confidence level, arrival references, and the routing table. Distribution
// parameters are validated separately when New builds the samplers.
func (c Config) Validate() error {
	if len(c.Nodes) == 0 {
		return fmt.Errorf("%w: at least one node is required", ErrInvalidConfig)
	}

	seen := make(map[NodeID]bool, len(c.Nodes))
	for _, n := range c.Nodes {
		if n.ID < 0 {
			return fmt.Errorf("%w: node ID %d is negative", ErrInvalidConfig, n.ID)
		}
		if seen[n.ID] {
			return fmt.Errorf("%w: duplicate node ID %d", ErrInvalidConfig, n.ID)
		}
		seen[n.ID] = true
	}

	arrivalSeen := make(map[NodeID]bool, len(c.Arrivals))
	for _, a := range c.Arrivals {
		if !seen[a.Node] {
			return fmt.Errorf("%w: arrival process references unknown node %d", ErrInvalidConfig, a.Node)
		}
		if arrivalSeen[a.Node] {
			return fmt.Errorf("%w: duplicate arrival process for node %d", ErrInvalidConfig, a.Node)
		}
		arrivalSeen[a.Node] = true
	}

	if c.WarmupPeriod < 0 {
		return fmt.Errorf("%w: WarmupPeriod must be >= 0, got %v", ErrInvalidConfig, c.WarmupPeriod)
	}
	if c.SimulationPeriod <= 0 {
		return fmt.Errorf("%w: SimulationPeriod must be > 0, got %v", ErrInvalidConfig, c.SimulationPeriod)
	}
	if c.ConfidenceLevel < 0 || c.ConfidenceLevel >= 1 {
		return fmt.Errorf("%w: ConfidenceLevel must be in (0, 1), got %v", ErrInvalidConfig, c.ConfidenceLevel)
	}
	if c.ProgressInterval < 0 {
		return fmt.Errorf("%w: ProgressInterval must be >= 0, got %v", ErrInvalidConfig, c.ProgressInterval)
	}

	if err := c.Routing.Validate(c.NodeIDs(), c.ArrivalNodes()); err != nil {
		return err
	}
	return nil
}

// Defines the YAML scenario format, the on-disk description of a simulation
// run consumed by the CLI. A Scenario is the serialized face of Config:
// LoadScenario parses and Config() maps; semantic validation happens when the
// resulting Config reaches New.

package sim

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sachd-vipu/queuesimulation/sim/dist"
)

// Scenario is the top-level YAML run description.
//
//	name: mm1
//	seed: 42
//	warmup_period: 10
//	simulation_period: 500
//	nodes:
//	  - id: 0
//	    service: {kind: exponential, params: {mean: 0.1}}
//	arrivals:
//	  - node: 0
//	    interarrival: {kind: exponential, params: {mean: 0.2}}
//	routing:
//	  0: {1: 0.6}
type Scenario struct {
	Name             string  `yaml:"name,omitempty"`
	Seed             int64   `yaml:"seed"`
	WarmupPeriod     float64 `yaml:"warmup_period"`
	SimulationPeriod float64 `yaml:"simulation_period"`
	MaxJobs          uint64  `yaml:"max_jobs,omitempty"`
	ConfidenceLevel  float64 `yaml:"confidence_level,omitempty"`

	Nodes    []ScenarioNode                `yaml:"nodes"`
	Arrivals []ScenarioArrival             `yaml:"arrivals"`
	Routing  map[NodeID]map[NodeID]float64 `yaml:"routing,omitempty"`
}

// ScenarioNode describes one service station.
type ScenarioNode struct {
	ID      NodeID    `yaml:"id"`
	Service dist.Spec `yaml:"service"`
}

// ScenarioArrival describes the external arrival process feeding one node.
type ScenarioArrival struct {
	Node         NodeID    `yaml:"node"`
	Interarrival dist.Spec `yaml:"interarrival"`
}

// LoadScenario reads and parses a YAML scenario file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	var sc Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	return &sc, nil
}

// Config assembles the engine configuration the scenario describes.
func (sc *Scenario) Config() Config {
	cfg := Config{
		Routing:          RoutingTable(sc.Routing),
		WarmupPeriod:     sc.WarmupPeriod,
		SimulationPeriod: sc.SimulationPeriod,
		MaxJobs:          sc.MaxJobs,
		Seed:             sc.Seed,
		ConfidenceLevel:  sc.ConfidenceLevel,
	}
	if cfg.Routing == nil {
		cfg.Routing = RoutingTable{}
	}
	for _, n := range sc.Nodes {
		cfg.Nodes = append(cfg.Nodes, NodeConfig{ID: n.ID, Service: n.Service})
	}
	for _, a := range sc.Arrivals {
		cfg.Arrivals = append(cfg.Arrivals, ArrivalConfig{Node: a.Node, Interarrival: a.Interarrival})
	}
	return cfg
}

package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sachd-vipu/queuesimulation/sim/dist"
)

func twoNodeConfig() Config {
	return Config{
		Nodes: []NodeConfig{
			{ID: 0, Service: dist.Spec{Kind: dist.Exp, Params: map[string]float64{"mean": 0.1}}},
			{ID: 1, Service: dist.Spec{Kind: dist.Exp, Params: map[string]float64{"mean": 0.2}}},
		},
		Arrivals: []ArrivalConfig{
			{Node: 0, Interarrival: dist.Spec{Kind: dist.Exp, Params: map[string]float64{"mean": 0.25}}},
		},
		Routing:          RoutingTable{0: {1: 1.0}},
		SimulationPeriod: 100,
	}
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := twoNodeConfig().withDefaults()
	assert.Equal(t, DefaultConfidenceLevel, cfg.ConfidenceLevel)
	assert.Equal(t, DefaultProgressInterval, cfg.ProgressInterval)

	// Explicit values survive.
	cfg = Config{ConfidenceLevel: 0.99, ProgressInterval: 0.5}.withDefaults()
	assert.Equal(t, 0.99, cfg.ConfidenceLevel)
	assert.Equal(t, 0.5, cfg.ProgressInterval)
}

func TestConfig_NodeIDs_Ascending(t *testing.T) {
	cfg := Config{Nodes: []NodeConfig{{ID: 7}, {ID: 0}, {ID: 3}}}
	assert.Equal(t, []NodeID{0, 3, 7}, cfg.NodeIDs())
}

func TestConfig_ArrivalNodes_Ascending(t *testing.T) {
	cfg := Config{Arrivals: []ArrivalConfig{{Node: 5}, {Node: 1}}}
	assert.Equal(t, []NodeID{1, 5}, cfg.ArrivalNodes())
}

func TestConfig_ArrivalRates_InverseOfMean(t *testing.T) {
	cfg := Config{
		Arrivals: []ArrivalConfig{
			{Node: 0, Interarrival: dist.Spec{Kind: dist.Exp, Params: map[string]float64{"mean": 0.25}}},
			{Node: 1, Interarrival: dist.Spec{Kind: dist.Det, Params: map[string]float64{"value": 0.5}}},
		},
	}
	rates, err := cfg.ArrivalRates()
	require.NoError(t, err)
	assert.InDelta(t, 4.0, rates[0], 1e-12)
	assert.InDelta(t, 2.0, rates[1], 1e-12)
}

func TestConfig_ArrivalRates_InvalidSpec(t *testing.T) {
	cfg := Config{
		Arrivals: []ArrivalConfig{
			{Node: 0, Interarrival: dist.Spec{Kind: dist.Exp, Params: map[string]float64{"mean": -1}}},
		},
	}
	_, err := cfg.ArrivalRates()
	assert.Error(t, err)
}

func TestConfig_ServiceRates_InverseOfMean(t *testing.T) {
	cfg := Config{
		Nodes: []NodeConfig{
			{ID: 0, Service: dist.Spec{Kind: dist.Exp, Params: map[string]float64{"mean": 0.125}}},
			{ID: 1, Service: dist.Spec{Kind: dist.Unif, Params: map[string]float64{"low": 1, "high": 3}}},
		},
	}
	rates, err := cfg.ServiceRates()
	require.NoError(t, err)
	assert.InDelta(t, 8.0, rates[0], 1e-12)
	assert.InDelta(t, 0.5, rates[1], 1e-12) // uniform mean 2
}

func TestConfig_Validate_Accepts(t *testing.T) {
	assert.NoError(t, twoNodeConfig().Validate())
}

func TestConfig_Validate_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			name:    "no nodes",
			mutate:  func(c *Config) { c.Nodes = nil },
			wantMsg: "at least one node",
		},
		{
			name:    "negative node ID",
			mutate:  func(c *Config) { c.Nodes[0].ID = -1 },
			wantMsg: "negative",
		},
		{
			name:    "duplicate node ID",
			mutate:  func(c *Config) { c.Nodes[1].ID = 0 },
			wantMsg: "duplicate node ID",
		},
		{
			name:    "arrival at unknown node",
			mutate:  func(c *Config) { c.Arrivals[0].Node = 9 },
			wantMsg: "unknown node",
		},
		{
			name: "duplicate arrival process",
			mutate: func(c *Config) {
				c.Arrivals = append(c.Arrivals, c.Arrivals[0])
			},
			wantMsg: "duplicate arrival process",
		},
		{
			name:    "negative warm-up",
			mutate:  func(c *Config) { c.WarmupPeriod = -1 },
			wantMsg: "WarmupPeriod",
		},
		{
			name:    "zero simulation period",
			mutate:  func(c *Config) { c.SimulationPeriod = 0 },
			wantMsg: "SimulationPeriod",
		},
		{
			name:    "confidence level out of range",
			mutate:  func(c *Config) { c.ConfidenceLevel = 1 },
			wantMsg: "ConfidenceLevel",
		},
		{
			name:    "negative progress interval",
			mutate:  func(c *Config) { c.ProgressInterval = -0.1 },
			wantMsg: "ProgressInterval",
		},
		{
			name:    "routing row over one",
			mutate:  func(c *Config) { c.Routing = RoutingTable{0: {1: 0.8, 0: 0.7}} },
			wantMsg: "exceeds 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := twoNodeConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestConfig_Validate_DoesNotCheckDistributions(t *testing.T) {
	// Distribution parameters are the sampler constructor's concern;
	// Validate only looks at network structure.
	cfg := twoNodeConfig()
	cfg.Nodes[0].Service = dist.Spec{Kind: dist.Exp, Params: map[string]float64{"mean": -5}}
	assert.NoError(t, cfg.Validate())
}

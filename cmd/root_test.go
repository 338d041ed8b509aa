package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sim "github.com/sachd-vipu/queuesimulation/sim"
	"github.com/sachd-vipu/queuesimulation/sim/dist"
	"github.com/sachd-vipu/queuesimulation/sim/trace"
)

// captureStdout runs fn with os.Stdout redirected to a pipe and returns
// everything fn wrote.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = old
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// mm1TestConfig builds a single-node M/M/1 run (lambda=5, mu=10).
func mm1TestConfig() sim.Config {
	return sim.Config{
		Nodes: []sim.NodeConfig{
			{ID: 0, Service: dist.Spec{Kind: dist.Exp, Params: map[string]float64{"mean": 0.1}}},
		},
		Arrivals: []sim.ArrivalConfig{
			{Node: 0, Interarrival: dist.Spec{Kind: dist.Exp, Params: map[string]float64{"mean": 0.2}}},
		},
		Routing:          sim.RoutingTable{},
		WarmupPeriod:     5,
		SimulationPeriod: 100,
		Seed:             7,
	}
}

func TestPrintResult_SummaryOnStdout(t *testing.T) {
	// GIVEN a completed run
	s, err := sim.New(mm1TestConfig())
	require.NoError(t, err)
	result := s.Run()

	// WHEN the summary is printed
	output := captureStdout(t, func() { printResult(result) })

	// THEN the result table appears on stdout
	assert.Contains(t, output, "Simulation Results")
	assert.Contains(t, output, "Processed Jobs")
	assert.Contains(t, output, "Mean Sojourn Time")
	assert.Contains(t, output, "Utilization")
}

func TestPrintValidation_AllThreeChecksOnStdout(t *testing.T) {
	// GIVEN a completed run
	cfg := mm1TestConfig()
	s, err := sim.New(cfg)
	require.NoError(t, err)
	result := s.Run()

	// WHEN the validation report is printed
	output := captureStdout(t, func() { printValidation(cfg, result, 50) })

	// THEN all three queueing-theory checks appear on stdout
	assert.Contains(t, output, "Batch Means")
	assert.Contains(t, output, "Little's Law")
	assert.Contains(t, output, "Jackson's Theorem")
	assert.Contains(t, output, "Grand Mean")
	assert.Contains(t, output, "Average Error")
}

func TestPrintTraceSummary_CountsOnStdout(t *testing.T) {
	ts := &trace.TraceSummary{
		EventCount:     10,
		ArrivalCount:   6,
		DepartureCount: 4,
		RoutingCount:   4,
		ExitCount:      3,
		ForwardCount:   1,
	}
	output := captureStdout(t, func() { printTraceSummary(ts) })

	assert.Contains(t, output, "Trace Summary")
	assert.Contains(t, output, "Events Recorded      : 10")
	assert.Contains(t, output, "Exits              : 3")
}

func TestRunCommand_EndToEnd(t *testing.T) {
	// GIVEN a scenario file on disk
	scenario := `name: smoke
seed: 7
warmup_period: 5
simulation_period: 50
nodes:
  - id: 0
    service: {kind: exponential, params: {mean: 0.1}}
arrivals:
  - node: 0
    interarrival: {kind: exponential, params: {mean: 0.2}}
`
	path := filepath.Join(t.TempDir(), "smoke.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenario), 0o644))

	// WHEN the run subcommand executes it with routing tracing enabled
	rootCmd.SetArgs([]string{"run", "--scenario", path, "--trace", "routing", "--log", "error"})
	output := captureStdout(t, func() {
		assert.NoError(t, rootCmd.Execute())
	})

	// THEN the results, the validation, and the trace summary all print
	assert.Contains(t, output, "Simulation Results")
	assert.Contains(t, output, "Jackson's Theorem")
	assert.Contains(t, output, "Trace Summary")
}

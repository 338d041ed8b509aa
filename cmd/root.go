package cmd

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/sachd-vipu/queuesimulation/sim"
	"github.com/sachd-vipu/queuesimulation/sim/stats"
	"github.com/sachd-vipu/queuesimulation/sim/trace"
)

var (
	scenarioPath string  // Path to the YAML scenario file
	logLevel     string  // Log verbosity level
	seed         int64   // Master RNG seed, overrides the scenario seed
	warmup       float64 // Warm-up period, overrides the scenario value
	period       float64 // Measured simulation period, overrides the scenario value
	maxJobs      uint64  // Job bound, overrides the scenario value
	confidence   float64 // Confidence level for interval half-widths
	batchSize    int     // Batch size for the batch-means analysis
	traceLevel   string  // Trace verbosity (none, routing, events)
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "queuesim",
	Short: "Discrete-event simulator for open networks of queues",
}

// runCmd executes one scenario and prints the results and the
// queueing-theory validation of the run.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation scenario",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if scenarioPath == "" {
			logrus.Fatalf("No scenario file provided (--scenario). Exiting simulation.")
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level %q (want none, routing, or events)", traceLevel)
		}

		sc, err := sim.LoadScenario(scenarioPath)
		if err != nil {
			logrus.Fatalf("Unable to load scenario: %v", err)
		}
		cfg := sc.Config()

		// CLI flags override scenario values only when explicitly set.
		flags := cmd.Flags()
		if flags.Changed("seed") {
			cfg.Seed = seed
		}
		if flags.Changed("warmup") {
			cfg.WarmupPeriod = warmup
		}
		if flags.Changed("period") {
			cfg.SimulationPeriod = period
		}
		if flags.Changed("max-jobs") {
			cfg.MaxJobs = maxJobs
		}
		if flags.Changed("confidence") {
			cfg.ConfidenceLevel = confidence
		}
		if traceLevel != string(trace.TraceLevelNone) {
			cfg.Trace = trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevel(traceLevel)})
		}

		logrus.Infof("Starting scenario %q: %d nodes, seed=%d, warmup=%v, period=%v",
			sc.Name, len(cfg.Nodes), cfg.Seed, cfg.WarmupPeriod, cfg.SimulationPeriod)

		s, err := sim.New(cfg)
		if err != nil {
			logrus.Fatalf("Invalid scenario: %v", err)
		}

		startTime := time.Now()
		result := s.Run()
		elapsed := time.Since(startTime)

		printResult(result)
		printValidation(cfg, result, batchSize)
		if cfg.Trace != nil {
			printTraceSummary(trace.Summarize(cfg.Trace))
		}

		logrus.Infof("Simulation complete in %v.", elapsed)
	},
}

// printResult writes the run summary table to stdout.
func printResult(r *sim.RunResult) {
	fmt.Println("=== Simulation Results ===")
	fmt.Printf("Processed Jobs       : %d\n", r.ProcessedJobs)
	fmt.Printf("Simulated Time       : %.4f\n", r.EndTime)
	fmt.Printf("Mean Sojourn Time    : %.4f +/- %.4f (%.0f%% CI)\n",
		r.MeanSojournTime, r.CIHalfWidth, r.ConfidenceLevel*100)
	fmt.Printf("Sojourn p50/p95/p99  : %.4f / %.4f / %.4f\n",
		r.Sojourn.P50, r.Sojourn.P95, r.Sojourn.P99)

	fmt.Printf("%-6s %10s %12s %12s %10s %12s\n",
		"Node", "Arrivals", "Departures", "Utilization", "MeanWait", "MeanService")
	for _, id := range sortedNodeIDs(r.Nodes) {
		ns := r.Nodes[id]
		fmt.Printf("%-6d %10d %12d %12.4f %10.4f %12.4f\n",
			ns.Node, ns.Arrivals, ns.Departures, ns.Utilization, ns.MeanWait, ns.MeanService)
	}
}

// printValidation runs and prints the three queueing-theory checks. Rate
// derivation can fail only for malformed distributions, which New has
// already rejected by this point.
func printValidation(cfg sim.Config, result *sim.RunResult, batchSize int) {
	arrivalRates, err := cfg.ArrivalRates()
	if err != nil {
		logrus.Errorf("Skipping validation, arrival rates unavailable: %v", err)
		return
	}
	serviceRates, err := cfg.ServiceRates()
	if err != nil {
		logrus.Errorf("Skipping validation, service rates unavailable: %v", err)
		return
	}

	bm := stats.BatchMeans(result.SojournTimes, batchSize, result.ConfidenceLevel)
	fmt.Println("=== Batch Means ===")
	fmt.Printf("Batch Size           : %d\n", bm.BatchSize)
	fmt.Printf("Batches              : %d\n", len(bm.Batches))
	fmt.Printf("Grand Mean           : %.4f +/- %.4f\n", bm.GrandMean, bm.HalfWidth)
	for _, b := range bm.Batches {
		logrus.Debugf("batch %d: mean=%.4f stddev=%.4f", b.Index, b.Mean, b.StdDev)
	}

	ll := stats.LittlesLaw(result, arrivalRates, result.MeanSojournTime, result.ConfidenceLevel)
	fmt.Println("=== Little's Law ===")
	fmt.Printf("Lambda * W           : %.4f\n", ll.LittleL)
	fmt.Printf("Simulated Average L  : %.4f\n", ll.SimulatedAverage)
	fmt.Printf("Ratio                : %.4f\n", ll.Ratio)
	fmt.Printf("Error                : %.2f%%\n", ll.PercentageError)

	jk := stats.JacksonsTheorem(result, serviceRates, arrivalRates, cfg.Routing)
	fmt.Println("=== Jackson's Theorem ===")
	fmt.Printf("%-6s %12s %12s %8s\n", "Node", "Theoretical", "Simulated", "Error%")
	ids := make([]sim.NodeID, 0, len(jk.Theoretical))
	for id := range jk.Theoretical {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		fmt.Printf("%-6d %12.4f %12.4f %8.2f\n", id, jk.Theoretical[id], jk.Simulated[id], jk.Errors[id])
	}
	fmt.Printf("Average Error        : %.2f%%\n", jk.AverageError)
	fmt.Printf("Max Error            : %.2f%%\n", jk.MaxError)
	fmt.Printf("Valid                : %v\n", jk.Valid)
	if !jk.Converged {
		fmt.Printf("Converged            : false (traffic equations stopped after %d iterations)\n", jk.Iterations)
	}
}

// printTraceSummary writes the aggregate trace counts to stdout.
func printTraceSummary(ts *trace.TraceSummary) {
	fmt.Println("=== Trace Summary ===")
	fmt.Printf("Events Recorded      : %d\n", ts.EventCount)
	fmt.Printf("  Arrivals           : %d\n", ts.ArrivalCount)
	fmt.Printf("  Departures         : %d\n", ts.DepartureCount)
	fmt.Printf("Routing Decisions    : %d\n", ts.RoutingCount)
	fmt.Printf("  Exits              : %d\n", ts.ExitCount)
	fmt.Printf("  Forwards           : %d\n", ts.ForwardCount)
	for node, count := range ts.ForwardsByNode {
		logrus.Debugf("forwards to node %d: %d", node, count)
	}
}

func sortedNodeIDs(nodes map[sim.NodeID]sim.NodeStats) []sim.NodeID {
	ids := make([]sim.NodeID, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Path to the YAML scenario file")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Master RNG seed (overrides the scenario seed)")
	runCmd.Flags().Float64Var(&warmup, "warmup", 0, "Warm-up period excluded from statistics (overrides the scenario value)")
	runCmd.Flags().Float64Var(&period, "period", 0, "Measured simulation period (overrides the scenario value)")
	runCmd.Flags().Uint64Var(&maxJobs, "max-jobs", 0, "Stop after this many jobs leave the network, 0 for no bound")
	runCmd.Flags().Float64Var(&confidence, "confidence", sim.DefaultConfidenceLevel, "Confidence level for interval half-widths")
	runCmd.Flags().IntVar(&batchSize, "batch-size", 100, "Batch size for the batch-means analysis")
	runCmd.Flags().StringVar(&traceLevel, "trace", "none", "Trace level (none, routing, events)")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}

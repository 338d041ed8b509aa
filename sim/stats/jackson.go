// Implements the Jackson's Theorem cross-check: solve the network traffic
// equations for the effective arrival rate at every node, derive the
// theoretical utilizations, and compare them against the simulated ones.

package stats

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/sachd-vipu/queuesimulation/sim"
)

const (
	// trafficTolerance is the max-absolute-change threshold that stops the
	// fixed-point iteration of the traffic equations.
	trafficTolerance = 1e-4

	// trafficMaxIterations bounds the fixed-point iteration. The solver
	// reports non-convergence past this budget instead of spinning.
	trafficMaxIterations = 100

	// validityThreshold is the average utilization error, in percent,
	// under which the network is considered to obey Jackson's Theorem.
	validityThreshold = 5.0
)

// JacksonResult compares theoretical per-node utilizations against the
// simulated ones.
type JacksonResult struct {
	// Theoretical holds rho_i = lambda_i / mu_i with lambda_i solved from
	// the traffic equations; Simulated holds the run's utilizations.
	Theoretical map[sim.NodeID]float64
	Simulated   map[sim.NodeID]float64

	// Errors is the per-node percentage error of the simulated
	// utilization relative to the theoretical one.
	Errors       map[sim.NodeID]float64
	AverageError float64
	MaxError     float64

	// Valid reports whether the average error stays under the 5%
	// threshold. Converged reports whether the traffic equations settled
	// within the iteration budget; when false, Theoretical holds the best
	// available estimate.
	Valid      bool
	Converged  bool
	Iterations int
}

// JacksonsTheorem solves the traffic equations
//
//	lambda_i = lambda_i^ext + sum_j lambda_j * p(j -> i)
//
// by fixed-point iteration from lambda = lambda^ext, derives theoretical
// utilizations rho_i = lambda_i/mu_i, and compares them with the utilizations
// the run measured. serviceRates maps node to mu_i, arrivalRates to
// lambda_i^ext; nodes absent from either map contribute rate 0.
func JacksonsTheorem(result *sim.RunResult, serviceRates, arrivalRates map[sim.NodeID]float64, table sim.RoutingTable) JacksonResult {
	ids := make([]sim.NodeID, 0, len(result.Nodes))
	for id := range result.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	lambda, iterations, converged := solveTrafficEquations(ids, arrivalRates, table)
	if !converged {
		logrus.Warnf("traffic equations did not converge within %d iterations; comparing against the last iterate",
			trafficMaxIterations)
	}

	out := JacksonResult{
		Theoretical: make(map[sim.NodeID]float64, len(ids)),
		Simulated:   make(map[sim.NodeID]float64, len(ids)),
		Errors:      make(map[sim.NodeID]float64, len(ids)),
		Converged:   converged,
		Iterations:  iterations,
	}

	for _, id := range ids {
		theo := 0.0
		if mu := serviceRates[id]; mu > 0 {
			theo = lambda[id] / mu
		}
		if theo >= 1 {
			logrus.Warnf("node %d: theoretical utilization %.4f >= 1, queue is unstable and has no steady state", id, theo)
		}
		simu := result.Nodes[id].Utilization

		out.Theoretical[id] = theo
		out.Simulated[id] = simu
		out.Errors[id] = utilizationError(theo, simu)
		out.AverageError += out.Errors[id]
		out.MaxError = math.Max(out.MaxError, out.Errors[id])
	}
	if len(ids) > 0 {
		out.AverageError /= float64(len(ids))
	}
	out.Valid = out.AverageError < validityThreshold
	return out
}

// utilizationError is the percentage error of the simulated utilization
// relative to the theoretical one. A node that theory predicts idle counts as
// exact when the simulation agrees and as fully wrong when it does not.
func utilizationError(theoretical, simulated float64) float64 {
	switch {
	case theoretical > 0:
		return math.Abs(theoretical-simulated) / theoretical * 100
	case simulated == 0:
		return 0
	default:
		return 100
	}
}

// solveTrafficEquations iterates the traffic equations to a fixed point.
// Returns the effective arrival rates, the number of iterations consumed, and
// whether the iteration converged within budget.
func solveTrafficEquations(ids []sim.NodeID, arrivalRates map[sim.NodeID]float64, table sim.RoutingTable) (map[sim.NodeID]float64, int, bool) {
	lambda := make(map[sim.NodeID]float64, len(ids))
	for _, id := range ids {
		lambda[id] = arrivalRates[id]
	}

	for iter := 1; iter <= trafficMaxIterations; iter++ {
		next := make(map[sim.NodeID]float64, len(ids))
		for _, id := range ids {
			next[id] = arrivalRates[id]
		}
		// Accumulate in ascending node order so the float sums, and with
		// them the reported rates, come out identical on every run.
		for _, from := range ids {
			row := table[from]
			dests := make([]sim.NodeID, 0, len(row))
			for to := range row {
				dests = append(dests, to)
			}
			sort.Slice(dests, func(i, j int) bool { return dests[i] < dests[j] })
			for _, to := range dests {
				next[to] += lambda[from] * row[to]
			}
		}

		maxChange := 0.0
		for _, id := range ids {
			maxChange = math.Max(maxChange, math.Abs(next[id]-lambda[id]))
		}
		lambda = next
		if maxChange < trafficTolerance {
			return lambda, iter, true
		}
	}
	return lambda, trafficMaxIterations, false
}

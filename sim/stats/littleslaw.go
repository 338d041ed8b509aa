// Implements the Little's Law cross-check L = lambda * W: the simulated
// time-averaged number of jobs in the system must match the product of the
// external arrival rate and the mean sojourn time.

package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/sachd-vipu/queuesimulation/sim"
)

// LittlesLawResult compares the Little's Law prediction against the
// simulation's own time-averaged job count.
type LittlesLawResult struct {
	// LittleL is lambda * W, the predicted average number in system.
	LittleL float64

	// SimulatedAverage is the time-weighted mean of the total
	// jobs-in-system series observed by the run.
	SimulatedAverage float64

	// Ratio is LittleL / SimulatedAverage; 1 means perfect agreement.
	Ratio float64

	// PercentageError is |LittleL - SimulatedAverage| relative to the
	// simulated average, in percent.
	PercentageError float64

	// HalfWidth is the confidence half-width of the LittleL prediction,
	// lambda times the half-width of the mean sojourn time.
	HalfWidth float64
}

// LittlesLaw checks L = lambda*W for a completed run. lambda is the sum of
// the external arrival rates, W the supplied mean sojourn time, and the
// simulated average is integrated from the per-node queue-length series.
// A run with no samples yields a zero-valued result.
func LittlesLaw(result *sim.RunResult, arrivalRates map[sim.NodeID]float64, meanSojourn, confidence float64) LittlesLawResult {
	lambda := 0.0
	for _, rate := range arrivalRates {
		lambda += rate
	}

	out := LittlesLawResult{
		LittleL: lambda * meanSojourn,
	}

	// The per-node series are sampled at the same event instants, so the
	// time-weighted mean of the summed series equals the sum of the
	// per-node time-weighted means.
	for _, ns := range result.Nodes {
		out.SimulatedAverage += timeWeightedMean(ns.Times, ns.QueueLengths, result.EndTime)
	}

	if out.SimulatedAverage > 0 {
		out.Ratio = out.LittleL / out.SimulatedAverage
		out.PercentageError = math.Abs(out.LittleL-out.SimulatedAverage) / out.SimulatedAverage * 100
	}

	if n := len(result.SojournTimes); n >= 2 {
		s := stat.StdDev(result.SojournTimes, nil)
		out.HalfWidth = lambda * zScore(confidence) * s / sqrtN(n)
	}
	return out
}

// timeWeightedMean integrates a piecewise-constant series: values[i] holds
// from times[i] until times[i+1] (the last value until end). An empty series
// contributes 0; a series whose span is zero degenerates to the arithmetic
// mean.
func timeWeightedMean(times, values []float64, end float64) float64 {
	if len(times) == 0 || len(times) != len(values) {
		return 0
	}
	span := end - times[0]
	if span <= 0 {
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		return sum / float64(len(values))
	}

	integral := 0.0
	for i, v := range values {
		right := end
		if i+1 < len(times) {
			right = times[i+1]
		}
		integral += v * (right - times[i])
	}
	return integral / span
}

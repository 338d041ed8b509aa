// Defines the result types produced by a run: per-node statistics, the
// run-level RunResult, and the Distribution summary used for sojourn times.

package sim

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Distribution captures a statistical summary of a metric.
type Distribution struct {
	Mean  float64
	P50   float64
	P95   float64
	P99   float64
	Min   float64
	Max   float64
	Count int
}

// NewDistribution computes a Distribution from raw values.
// Returns zero-value Distribution for empty input.
func NewDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}

	return Distribution{
		Mean:  sum / float64(len(sorted)),
		P50:   percentile(sorted, 50),
		P95:   percentile(sorted, 95),
		P99:   percentile(sorted, 99),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Count: len(sorted),
	}
}

// percentile computes the p-th percentile using linear interpolation.
// Input must be sorted.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100.0 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// NodeStats is the per-node slice of a RunResult.
// Times and QueueLengths form the queue-length series sampled on every
// event after warm-up: QueueLengths[i] is the number of jobs at the node
// (in service included) at Times[i].
type NodeStats struct {
	Node        NodeID
	Arrivals    uint64
	Departures  uint64
	Utilization float64

	Times        []float64
	QueueLengths []float64

	MeanWait     float64
	MeanService  float64
	WaitTimes    []float64
	ServiceTimes []float64
}

// RunResult is the engine's sole output artifact. It is built once when the
// event loop ends and never mutated afterwards.
type RunResult struct {
	// MeanSojournTime averages the completed post-warm-up sojourn times;
	// CIHalfWidth is the half-width of its confidence interval at
	// ConfidenceLevel.
	MeanSojournTime float64
	CIHalfWidth     float64

	// SojournTimes lists every completed sojourn in exit order; Sojourn
	// summarizes the same sample.
	SojournTimes []float64
	Sojourn      Distribution

	Nodes map[NodeID]NodeStats

	// ProcessedJobs counts every job that left the network, warm-up
	// included.
	ProcessedJobs uint64

	// WarmupPeriod and EndTime bound the observation window the
	// statistics cover.
	WarmupPeriod    float64
	EndTime         float64
	ConfidenceLevel float64
}

// zScore returns the two-sided standard-normal critical value for the given
// confidence level.
func zScore(confidence float64) float64 {
	return distuv.UnitNormal.Quantile((1 + confidence) / 2)
}

// confidenceHalfWidth returns z * s / sqrt(n) for the sample at the given
// confidence level, and 0 for samples too small to carry a deviation.
func confidenceHalfWidth(values []float64, confidence float64) float64 {
	if len(values) < 2 {
		return 0
	}
	s := stat.StdDev(values, nil)
	return zScore(confidence) * s / math.Sqrt(float64(len(values)))
}

// meanOrZero returns the arithmetic mean, or 0 for an empty sample.
func meanOrZero(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// Package stats validates simulation results against queueing theory: batch
// means confidence intervals, Little's Law, and Jackson's Theorem.
//
// Every function in this package is a pure computation over an immutable
// RunResult. Empty or undersized inputs yield zero-valued, NaN-free results
// rather than errors; the only advisory condition is the Jackson traffic
// solver running out of iterations, reported through the Converged flag.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Batch is one batch of the batch-means partition. Index is 1-based.
type Batch struct {
	Index     int
	Mean      float64
	StdDev    float64
	HalfWidth float64
}

// BatchMeansResult carries the batch-means analysis of a sample sequence.
type BatchMeansResult struct {
	BatchSize  int
	Confidence float64

	// Batches holds one entry per full batch, in sample order.
	Batches []Batch

	// GrandMean is the mean of the batch means; HalfWidth is the
	// confidence half-width built from their spread, the usual batch-means
	// interval for the steady-state mean.
	GrandMean float64
	HalfWidth float64
}

// BatchMeans partitions samples into consecutive batches of batchSize and
// computes per-batch means, sample standard deviations, and confidence
// half-widths z*s/sqrt(batchSize) at the given confidence level. A trailing
// partial batch is dropped. Fewer samples than one full batch (or a
// non-positive batch size) yields a result with zero batches.
func BatchMeans(samples []float64, batchSize int, confidence float64) BatchMeansResult {
	result := BatchMeansResult{
		BatchSize:  batchSize,
		Confidence: confidence,
	}
	if batchSize <= 0 || len(samples) < batchSize {
		return result
	}

	z := zScore(confidence)
	numBatches := len(samples) / batchSize
	result.Batches = make([]Batch, 0, numBatches)

	batchMeans := make([]float64, 0, numBatches)
	for i := 0; i < numBatches; i++ {
		batch := samples[i*batchSize : (i+1)*batchSize]
		mean := stat.Mean(batch, nil)
		stdDev := stat.StdDev(batch, nil)
		result.Batches = append(result.Batches, Batch{
			Index:     i + 1,
			Mean:      mean,
			StdDev:    stdDev,
			HalfWidth: z * stdDev / sqrtN(batchSize),
		})
		batchMeans = append(batchMeans, mean)
	}

	result.GrandMean = stat.Mean(batchMeans, nil)
	if len(batchMeans) >= 2 {
		result.HalfWidth = z * stat.StdDev(batchMeans, nil) / sqrtN(len(batchMeans))
	}
	return result
}

// zScore returns the two-sided standard-normal critical value for the given
// confidence level, e.g. 1.96 at 0.95.
func zScore(confidence float64) float64 {
	return distuv.UnitNormal.Quantile((1 + confidence) / 2)
}

func sqrtN(n int) float64 {
	return math.Sqrt(float64(n))
}

// Defines the Job record that tracks a single job flowing through the
// network. Records are created on first arrival, rewritten as the job moves
// between nodes, and deleted on system exit so live memory stays bounded by
// the number of jobs in flight.

package sim

import "fmt"

// JobID uniquely identifies a job for its lifetime in the network.
type JobID uint64

// Job tracks one in-flight job.
// FirstArrival never changes after creation and anchors the sojourn time
// (exit time - FirstArrival). NodeArrival is rewritten on every arrival and
// anchors the wait-time sample at the current node (service start -
// NodeArrival).
type Job struct {
	ID           JobID
	FirstArrival float64
	NodeArrival  float64
}

// String returns a human-readable representation of a Job.
func (j Job) String() string {
	return fmt.Sprintf("Job: (ID: %d, FirstArrival: %.6f, NodeArrival: %.6f)", j.ID, j.FirstArrival, j.NodeArrival)
}

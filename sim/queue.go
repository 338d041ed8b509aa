// Implements the JobQueue, which holds all jobs present at a node.
// Jobs are enqueued on arrival

package sim

import (
	"fmt"
	"strings"
)

// JobQueue represents a FIFO queue of job IDs at a single node.
// The job at the head of the queue is the one in service while the node is
// busy, so Len counts every job present at the node, in service included.
type JobQueue struct {
	jobs []JobID // FIFO queue of job IDs
}

// Enqueue adds a job to the back of the queue.
func (q *JobQueue) Enqueue(id JobID) {
	q.jobs = append(q.jobs, id)
}

// Dequeue removes and returns the job at the front of the queue.
// It panics on an empty queue: the engine only dequeues when processing a
// departure, and a departure at an empty node is a causality violation.
func (q *JobQueue) Dequeue() JobID {
	if len(q.jobs) == 0 {
		panic("Dequeue: queue is empty")
	}
	id := q.jobs[0]
	q.jobs = q.jobs[1:]
	return id
}

// Peek returns the job at the front of the queue without removing it.
// The second return value is false if the queue is empty.
func (q *JobQueue) Peek() (JobID, bool) {
	if len(q.jobs) == 0 {
		return 0, false
	}
	return q.jobs[0], true
}

// Len returns the number of jobs in the queue.
func (q *JobQueue) Len() int {
	return len(q.jobs)
}

func (q *JobQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, id := range q.jobs {
		sb.WriteString(fmt.Sprint(id))
		if i < len(q.jobs)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

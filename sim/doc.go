// Package sim provides a discrete-event simulation engine for open networks
// of queues (tandem and Jackson-style networks).
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - event.go: the two event families that drive the simulation (Arrival, Departure)
//   - event_heap.go: the timeline, a heap ordered by (time, insertion sequence)
//   - simulator.go: the event loop, node state transitions, and statistics accumulation
//
// Then the supporting state:
//   - node.go / queue.go: the per-station state machine and its FIFO
//   - routing.go: probabilistic routing between nodes and table validation
//   - job.go: the per-job record behind sojourn and wait times
//
// # Architecture
//
// The sim package owns the engine; the analysis and description layers live
// in sub-packages:
//   - sim/dist/: random variate generation (typed samplers behind one Spec)
//   - sim/stats/: validation against queueing theory (batch means, Little's
//     Law, Jackson's Theorem)
//   - sim/trace/: event and routing trace recording
//
// A run is configured with an immutable Config (or a YAML Scenario mapped
// through Scenario.Config), executed with New followed by Run, and summarized
// in an immutable RunResult. Progress during a run flows through value-copied
// ProgressSnapshots; see snapshot.go.
//
// # Determinism
//
// Every stochastic subsystem draws from its own stream derived from
// Config.Seed (see rng.go), and simultaneous events fire in scheduling order.
// The same Config therefore yields a bit-identical RunResult, a property the
// determinism tests pin down.
package sim

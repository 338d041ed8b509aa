// Implements the Simulator, the single-threaded event loop that drives the
// network: it pops events off the timeline, advances the logical clock,
// mutates node state, and accumulates the statistics that become RunResult.

package sim

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/sachd-vipu/queuesimulation/sim/dist"
	"github.com/sachd-vipu/queuesimulation/sim/trace"
)

// queueSeries is the (time, queue length) sample series for one node,
// appended on every post-warm-up event.
type queueSeries struct {
	times   []float64
	lengths []float64
}

// Simulator executes one simulation run. All state belongs to a single run:
// create a new Simulator for each run, and drive it from one goroutine.
// Stop is the only method safe to call concurrently.
type Simulator struct {
	cfg     Config
	routing RoutingTable

	clock   float64
	horizon float64

	events   *EventHeap
	nodes    map[NodeID]*Node
	nodeIDs  []NodeID
	arrivals map[NodeID]dist.Sampler
	rng      *PartitionedRNG

	jobs    map[JobID]*Job
	nextJob JobID

	sojournTimes  []float64
	series        map[NodeID]*queueSeries
	processedJobs uint64
	statsReset    bool
	lastSnapshot  float64

	stopped atomic.Bool
}

// New validates the configuration, builds every sampler, and preloads the
// first external arrival for each arrival node. All configuration errors
// surface here, before the event loop starts: a constructed Simulator
// cannot fail mid-run.
func New(cfg Config) (*Simulator, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Simulator{
		cfg:      cfg,
		routing:  cloneRoutingTable(cfg.Routing),
		horizon:  cfg.WarmupPeriod + cfg.SimulationPeriod,
		events:   NewEventHeap(),
		nodes:    make(map[NodeID]*Node, len(cfg.Nodes)),
		nodeIDs:  cfg.NodeIDs(),
		arrivals: make(map[NodeID]dist.Sampler, len(cfg.Arrivals)),
		jobs:     make(map[JobID]*Job),
		series:   make(map[NodeID]*queueSeries, len(cfg.Nodes)),
		rng:      NewPartitionedRNG(NewSimulationKey(cfg.Seed)),
	}

	for _, nc := range cfg.Nodes {
		sampler, err := dist.New(nc.Service)
		if err != nil {
			return nil, fmt.Errorf("node %d service distribution: %w", nc.ID, err)
		}
		s.nodes[nc.ID] = NewNode(nc.ID, sampler)
		s.series[nc.ID] = &queueSeries{}
	}
	for _, ac := range cfg.Arrivals {
		sampler, err := dist.New(ac.Interarrival)
		if err != nil {
			return nil, fmt.Errorf("node %d inter-arrival distribution: %w", ac.Node, err)
		}
		s.arrivals[ac.Node] = sampler
		s.warnIfUnstable(ac.Node, sampler)
	}

	// Preload one external arrival per arrival node. Each external arrival
	// re-arms the next, sustaining the stream for the whole run.
	for _, id := range cfg.ArrivalNodes() {
		delta := s.arrivals[id].Sample(s.rng.ForSubsystem(SubsystemArrivals(id)))
		s.events.Schedule(NewArrivalEvent(delta, s.newJobID(), id, true))
	}

	return s, nil
}

// warnIfUnstable flags a node whose external arrivals alone outpace its
// service rate; such a queue grows without bound.
func (s *Simulator) warnIfUnstable(id NodeID, interarrival dist.Sampler) {
	arrivalMean := interarrival.Mean()
	serviceMean := s.nodes[id].Service.Mean()
	if math.IsInf(arrivalMean, 1) || math.IsInf(serviceMean, 1) {
		return
	}
	if arrivalMean <= serviceMean {
		logrus.Warnf("node %d: external arrival rate %.4f >= service rate %.4f, queue is unstable",
			id, 1/arrivalMean, 1/serviceMean)
	}
}

func cloneRoutingTable(rt RoutingTable) RoutingTable {
	out := make(RoutingTable, len(rt))
	for from, row := range rt {
		cloned := make(map[NodeID]float64, len(row))
		for to, p := range row {
			cloned[to] = p
		}
		out[from] = cloned
	}
	return out
}

func (s *Simulator) newJobID() JobID {
	s.nextJob++
	return s.nextJob
}

// Stop requests termination at the next event boundary. It is safe to call
// from any goroutine; the run aborts between events, never mid-event, so
// node and timeline invariants survive.
func (s *Simulator) Stop() {
	s.stopped.Store(true)
}

// Run drives the simulation to completion and returns its result. The loop
// ends when the next event lies past the horizon (the event is discarded,
// not processed), when the timeline empties, when MaxJobs is reached, or
// when Stop was requested.
func (s *Simulator) Run() *RunResult {
	logrus.Infof("starting run: %d nodes, horizon %.4f, seed %d",
		len(s.nodes), s.horizon, int64(s.rng.Key()))

	end := s.clock
	for s.events.Len() > 0 {
		if s.stopped.Load() {
			logrus.Infof("stop requested at t=%.6f", s.clock)
			break
		}

		event := s.events.PopNext()

		// Horizon check: an event past the horizon ends the run without
		// being processed.
		if event.Time() > s.horizon {
			end = s.horizon
			break
		}

		if event.Time() < s.clock {
			panic(fmt.Sprintf("Clock went backwards: %f < %f", event.Time(), s.clock))
		}
		s.clock = event.Time()
		end = s.clock

		// Crossing the warm-up boundary discards transient busy time, so
		// utilization measures the post-warm-up window only.
		if !s.statsReset && s.clock >= s.cfg.WarmupPeriod {
			s.resetBusyStats()
		}

		event.Execute(s)

		if s.clock >= s.cfg.WarmupPeriod {
			s.sampleQueueLengths()
		}

		if s.cfg.Progress != nil && s.clock-s.lastSnapshot >= s.cfg.ProgressInterval {
			s.cfg.Progress(s.buildSnapshot())
			s.lastSnapshot = s.clock
		}

		if s.cfg.MaxJobs > 0 && s.processedJobs >= s.cfg.MaxJobs {
			logrus.Infof("job bound reached at t=%.6f: %d jobs processed", s.clock, s.processedJobs)
			break
		}
	}

	result := s.buildResult(end)
	logrus.Infof("run ended at t=%.6f: %d jobs processed, mean sojourn %.6f",
		end, result.ProcessedJobs, result.MeanSojournTime)
	return result
}

func (s *Simulator) resetBusyStats() {
	for _, id := range s.nodeIDs {
		s.nodes[id].ResetBusyStats(s.cfg.WarmupPeriod)
	}
	s.statsReset = true
}

// sampleQueueLengths appends a (time, length) sample for every node.
// Sampling on every event keeps the series dense enough for time-weighted
// statistics.
func (s *Simulator) sampleQueueLengths() {
	for _, id := range s.nodeIDs {
		ser := s.series[id]
		ser.times = append(ser.times, s.clock)
		ser.lengths = append(ser.lengths, float64(s.nodes[id].QueueLength()))
	}
}

// handleArrival processes a job reaching a node: the job record is created
// on first arrival, the job enqueues, an idle node starts serving it, and an
// external arrival re-arms the node's arrival stream.
func (s *Simulator) handleArrival(e *ArrivalEvent) {
	node := s.nodes[e.Node]
	now := e.Time()

	if s.cfg.Trace != nil && s.cfg.Trace.WantsEvents() {
		s.cfg.Trace.RecordEvent(trace.EventRecord{
			Seq:   e.Seq(),
			Clock: now,
			Kind:  string(KindArrival),
			Job:   uint64(e.Job),
			Node:  int(e.Node),
		})
	}

	job, ok := s.jobs[e.Job]
	if !ok {
		job = &Job{ID: e.Job, FirstArrival: now}
		s.jobs[e.Job] = job
	}
	job.NodeArrival = now

	node.Arrivals++
	node.Queue.Enqueue(e.Job)

	if !node.Busy {
		node.StartBusy(now)
		s.beginService(node, now)
	}

	if e.External {
		delta := s.arrivals[e.Node].Sample(s.rng.ForSubsystem(SubsystemArrivals(e.Node)))
		s.events.Schedule(NewArrivalEvent(now+delta, s.newJobID(), e.Node, true))
	}
}

// handleDeparture processes a service completion: the head job leaves the
// node, routes onward or exits the network, and the next job (if any)
// starts service.
func (s *Simulator) handleDeparture(e *DepartureEvent) {
	node := s.nodes[e.Node]
	now := e.Time()

	if s.cfg.Trace != nil && s.cfg.Trace.WantsEvents() {
		s.cfg.Trace.RecordEvent(trace.EventRecord{
			Seq:   e.Seq(),
			Clock: now,
			Kind:  string(KindDeparture),
			Job:   uint64(e.Job),
			Node:  int(e.Node),
		})
	}

	head := node.Queue.Dequeue()
	if head != e.Job {
		panic(fmt.Sprintf("departure for job %d but job %d heads node %d", e.Job, head, e.Node))
	}
	node.JobsServed++

	job := s.jobs[e.Job]
	u := s.rng.ForSubsystem(SubsystemRouting).Float64()
	dest := s.routing.Route(e.Node, u)
	if s.cfg.Trace != nil && s.cfg.Trace.WantsRouting() {
		s.cfg.Trace.RecordRouting(trace.RoutingRecord{
			Job:    uint64(e.Job),
			Clock:  now,
			From:   int(e.Node),
			To:     int(dest.Node),
			Exited: dest.Exit,
			Draw:   u,
		})
	}
	if dest.Exit {
		if now >= s.cfg.WarmupPeriod {
			s.sojournTimes = append(s.sojournTimes, now-job.FirstArrival)
		}
		s.processedJobs++
		delete(s.jobs, e.Job)
		logrus.Debugf("job %d exited the network at t=%.6f, sojourn %.6f", e.Job, now, now-job.FirstArrival)
	} else {
		// Routed jobs arrive at the next node at the same instant.
		s.events.Schedule(NewArrivalEvent(now, e.Job, dest.Node, false))
	}

	if node.Queue.Len() > 0 {
		node.AccrueBusy(now)
		s.beginService(node, now)
	} else {
		node.StopBusy(now)
	}
}

// beginService samples a service duration for the head job and schedules its
// departure. The caller has already put the node in the busy state.
func (s *Simulator) beginService(node *Node, now float64) {
	head, ok := node.Queue.Peek()
	if !ok {
		panic(fmt.Sprintf("beginService: node %d has no job to serve", node.ID))
	}

	job := s.jobs[head]
	wait := now - job.NodeArrival
	duration := node.Service.Sample(s.rng.ForSubsystem(SubsystemService(node.ID)))

	if now >= s.cfg.WarmupPeriod {
		node.WaitTimes = append(node.WaitTimes, wait)
		node.ServiceTimes = append(node.ServiceTimes, duration)
	}

	s.events.Schedule(NewDepartureEvent(now+duration, head, node.ID))
}

// utilization is the clipped busy time over the post-warm-up window.
func (s *Simulator) utilization(n *Node, end float64) float64 {
	window := end - s.cfg.WarmupPeriod
	if window <= 0 {
		return 0
	}
	return n.BusyTime(end) / window
}

// buildResult assembles the immutable RunResult from copies of run state.
func (s *Simulator) buildResult(end float64) *RunResult {
	// A run can end past the warm-up boundary without having processed an
	// event there; clip busy statistics now so utilization stays honest.
	if !s.statsReset && end >= s.cfg.WarmupPeriod {
		s.resetBusyStats()
	}

	sojourns := make([]float64, len(s.sojournTimes))
	copy(sojourns, s.sojournTimes)

	result := &RunResult{
		SojournTimes:    sojourns,
		Sojourn:         NewDistribution(sojourns),
		Nodes:           make(map[NodeID]NodeStats, len(s.nodes)),
		ProcessedJobs:   s.processedJobs,
		WarmupPeriod:    s.cfg.WarmupPeriod,
		EndTime:         end,
		ConfidenceLevel: s.cfg.ConfidenceLevel,
	}
	result.MeanSojournTime = result.Sojourn.Mean
	result.CIHalfWidth = confidenceHalfWidth(sojourns, s.cfg.ConfidenceLevel)

	for _, id := range s.nodeIDs {
		n := s.nodes[id]
		ser := s.series[id]

		times := make([]float64, len(ser.times))
		copy(times, ser.times)
		lengths := make([]float64, len(ser.lengths))
		copy(lengths, ser.lengths)
		waits := make([]float64, len(n.WaitTimes))
		copy(waits, n.WaitTimes)
		services := make([]float64, len(n.ServiceTimes))
		copy(services, n.ServiceTimes)

		result.Nodes[id] = NodeStats{
			Node:         id,
			Arrivals:     n.Arrivals,
			Departures:   n.JobsServed,
			Utilization:  s.utilization(n, end),
			Times:        times,
			QueueLengths: lengths,
			MeanWait:     meanOrZero(waits),
			MeanService:  meanOrZero(services),
			WaitTimes:    waits,
			ServiceTimes: services,
		}
	}

	return result
}

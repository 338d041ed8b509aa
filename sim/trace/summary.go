package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	EventCount     int
	ArrivalCount   int
	DepartureCount int

	RoutingCount int
	ExitCount    int
	ForwardCount int

	// ForwardsByNode counts, per destination node, how many routed jobs
	// it received.
	ForwardsByNode map[int]int
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		ForwardsByNode: make(map[int]int),
	}
	if st == nil {
		return summary
	}

	summary.EventCount = len(st.Events)
	for _, e := range st.Events {
		switch e.Kind {
		case "arrival":
			summary.ArrivalCount++
		case "departure":
			summary.DepartureCount++
		}
	}

	summary.RoutingCount = len(st.Routings)
	for _, r := range st.Routings {
		if r.Exited {
			summary.ExitCount++
		} else {
			summary.ForwardCount++
			summary.ForwardsByNode[r.To]++
		}
	}

	return summary
}

package trace

// TraceLevel controls the verbosity of run tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelRouting captures every routing decision.
	TraceLevelRouting TraceLevel = "routing"
	// TraceLevelEvents captures every processed event plus all routing
	// decisions.
	TraceLevelEvents TraceLevel = "events"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:    true,
	TraceLevelRouting: true,
	TraceLevelEvents:  true,
	"":                true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects event and routing records during a run.
type SimulationTrace struct {
	Config   TraceConfig
	Events   []EventRecord
	Routings []RoutingRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:   config,
		Events:   make([]EventRecord, 0),
		Routings: make([]RoutingRecord, 0),
	}
}

// WantsEvents reports whether per-event records should be collected.
func (st *SimulationTrace) WantsEvents() bool {
	return st.Config.Level == TraceLevelEvents
}

// WantsRouting reports whether routing decisions should be collected.
func (st *SimulationTrace) WantsRouting() bool {
	return st.Config.Level == TraceLevelRouting || st.Config.Level == TraceLevelEvents
}

// RecordEvent appends a processed-event record.
func (st *SimulationTrace) RecordEvent(record EventRecord) {
	st.Events = append(st.Events, record)
}

// RecordRouting appends a routing decision record.
func (st *SimulationTrace) RecordRouting(record RoutingRecord) {
	st.Routings = append(st.Routings, record)
}

package ingestion

import "go.uber.org/zap"

// State is a step of one interaction's ingestion
type State int

const (
	StateReceived State = iota
	StateValidated
	StateEnriched
	StateCommitted
	StateDispatched
	StateDone
	StateRejected
	StateFailed
)

var stateNames = [...]string{
	StateReceived:   "received",
	StateValidated:  "validated",
	StateEnriched:   "enriched",
	StateCommitted:  "committed",
	StateDispatched: "dispatched",
	StateDone:       "done",
	StateRejected:   "rejected",
	StateFailed:     "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

var transitions = map[State][]State{
	StateReceived:   {StateValidated, StateRejected},
	StateValidated:  {StateEnriched, StateRejected},
	StateEnriched:   {StateCommitted, StateFailed},
	StateCommitted:  {StateDispatched},
	StateDispatched: {StateDone},
}

// CanTransition reports whether to may follow s
func (s State) CanTransition(to State) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no state may follow s
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}

// Committed reports whether the interaction is durable in s
func (s State) Committed() bool {
	return s == StateCommitted || s == StateDispatched || s == StateDone
}

// run tracks the states one ingestion passes through
type run struct {
	state State
	trace []State
	log   *zap.Logger
}

func newRun(log *zap.Logger) *run {
	return &run{state: StateReceived, trace: []State{StateReceived}, log: log}
}

func (r *run) advance(to State) {
	if !r.state.CanTransition(to) {
		r.log.DPanic("Illegal ingestion state transition",
			zap.Stringer("from", r.state),
			zap.Stringer("to", to))
		return
	}
	r.state = to
	r.trace = append(r.trace, to)
}

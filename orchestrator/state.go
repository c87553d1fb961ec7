package orchestrator

// TurnState identifies where in the pipeline a turn currently is, or the
// terminal state it ended in.
type TurnState int

const (
	// StateReceived is the initial state before any check has run.
	StateReceived TurnState = iota
	// StateInputChecked means the input passed moderation.
	StateInputChecked
	// StateAnalyzed means all present modalities produced findings.
	StateAnalyzed
	// StateActionDecided means the action stage returned a decision.
	StateActionDecided
	// StateActionChecked means the decision passed (or was suppressed by)
	// the action check.
	StateActionChecked
	// StateResponded means the reply was synthesized.
	StateResponded
	// StateCommitted means the user and assistant turns were persisted.
	StateCommitted
	// StateRejected is the terminal failure state; nothing was persisted.
	StateRejected
)

// String returns the string representation of the state.
func (s TurnState) String() string {
	switch s {
	case StateReceived:
		return "received"
	case StateInputChecked:
		return "input_checked"
	case StateAnalyzed:
		return "analyzed"
	case StateActionDecided:
		return "action_decided"
	case StateActionChecked:
		return "action_checked"
	case StateResponded:
		return "responded"
	case StateCommitted:
		return "committed"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

package core

// ActionType enumerates the system actions the action stage may propose.
type ActionType int

const (
	// ActionNone proposes no action; it is the safe default.
	ActionNone ActionType = iota
	// ActionWebSearch proposes a web search with a "query" parameter.
	ActionWebSearch
	// ActionSaveData proposes persisting data with a "data" parameter.
	ActionSaveData
	// ActionScheduleMeeting proposes scheduling with a "details" parameter.
	ActionScheduleMeeting
	// ActionOther represents an action type outside the known set. It exists
	// so unrecognized proposals survive round-trips and can be rejected by
	// the guardrail rather than silently dropped.
	ActionOther
)

// String returns the string representation of the action type.
func (a ActionType) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionWebSearch:
		return "web_search"
	case ActionSaveData:
		return "save_data"
	case ActionScheduleMeeting:
		return "schedule_meeting"
	case ActionOther:
		return "other"
	default:
		return "unknown"
	}
}

// ParseActionType maps a string tag to its ActionType. Unknown tags map to
// ActionOther so the guardrail allow-list can reject them explicitly.
func ParseActionType(s string) ActionType {
	switch s {
	case "none":
		return ActionNone
	case "web_search":
		return ActionWebSearch
	case "save_data":
		return ActionSaveData
	case "schedule_meeting":
		return ActionScheduleMeeting
	default:
		return ActionOther
	}
}

// ActionDecision is a proposed-and-gated system action descriptor. It is
// produced by the action stage, gated by the guardrail's action check and
// consumed by the response stage. The decision is a record only; nothing in
// the core ever executes it.
type ActionDecision struct {
	Type       ActionType
	Parameters map[string]string
	Approved   bool
}

// NoAction returns an approved decision proposing nothing.
func NoAction() ActionDecision {
	return ActionDecision{Type: ActionNone, Approved: true}
}

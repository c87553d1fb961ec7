package core

// WorkingRecord aggregates everything produced during one turn: the raw
// input, moderation verdicts, analysis findings, the gated action decision
// and the synthesized reply. It is owned exclusively by the orchestrator for
// the lifetime of a single turn and discarded after the turn commits; no
// part of it reaches the ContextStore.
type WorkingRecord struct {
	ID            string
	Input         TurnInput
	InputVerdict  ModerationVerdict
	Findings      []AnalysisFinding
	Decision      ActionDecision
	ActionVerdict ModerationVerdict
	Reply         string
}

// NewWorkingRecord creates a working record for the given input.
func NewWorkingRecord(input TurnInput) WorkingRecord {
	return WorkingRecord{ID: NewID(), Input: input}
}

// FindingBySource returns the finding for the given source and whether one
// is present.
func (r WorkingRecord) FindingBySource(src FindingSource) (AnalysisFinding, bool) {
	for _, f := range r.Findings {
		if f.Source == src {
			return f, true
		}
	}
	return AnalysisFinding{}, false
}

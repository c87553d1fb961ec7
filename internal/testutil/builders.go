package testutil

import (
	"time"

	"github.com/hupe1980/turnguard/core"
)

// TurnBuilder helps construct turns with fluent chaining for tests.
// Example:
//
//	turn := NewTurnBuilder().Role(core.RoleUser).Content("hi").Build()
type TurnBuilder struct {
	turn core.Turn
}

// NewTurnBuilder creates a builder seeded with a fresh ID and timestamp.
func NewTurnBuilder() *TurnBuilder {
	return &TurnBuilder{turn: core.Turn{ID: core.NewID(), Role: core.RoleUser, Timestamp: time.Now().UTC()}}
}

// Role sets the turn role (chainable).
func (b *TurnBuilder) Role(r core.Role) *TurnBuilder {
	b.turn.Role = r
	return b
}

// Content sets the turn content (chainable).
func (b *TurnBuilder) Content(c string) *TurnBuilder {
	b.turn.Content = c
	return b
}

// Build returns the constructed turn.
func (b *TurnBuilder) Build() core.Turn { return b.turn }

// Conversation builds an alternating user/assistant history from the given
// contents, starting with a user turn.
func Conversation(contents ...string) []core.Turn {
	turns := make([]core.Turn, 0, len(contents))
	for i, c := range contents {
		role := core.RoleUser
		if i%2 == 1 {
			role = core.RoleAssistant
		}
		turns = append(turns, NewTurnBuilder().Role(role).Content(c).Build())
	}
	return turns
}

// RecordBuilder helps construct working records for tests.
type RecordBuilder struct {
	rec core.WorkingRecord
}

// NewRecordBuilder creates a builder for a record over the given input.
func NewRecordBuilder(input core.TurnInput) *RecordBuilder {
	return &RecordBuilder{rec: core.NewWorkingRecord(input)}
}

// Finding appends an analysis finding (chainable).
func (b *RecordBuilder) Finding(src core.FindingSource, summary string) *RecordBuilder {
	b.rec.Findings = append(b.rec.Findings, core.AnalysisFinding{Source: src, Summary: summary})
	return b
}

// Decision sets the action decision (chainable).
func (b *RecordBuilder) Decision(d core.ActionDecision) *RecordBuilder {
	b.rec.Decision = d
	return b
}

// Build returns the constructed record.
func (b *RecordBuilder) Build() core.WorkingRecord { return b.rec }

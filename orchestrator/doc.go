// Package orchestrator wires the guardrail, analysis, action and response
// stages into one per-turn state machine and owns error translation to the
// caller.
//
// A turn moves through Received → InputChecked → Analyzed → ActionDecided →
// ActionChecked → Responded → Committed, with Rejected as the only other
// terminal state. The machine is stateless across turns except through the
// ContextStore: each turn owns a private working record that is discarded
// after commit, and the user/assistant pair is appended atomically under a
// per-conversation lock. The lock is held only around the commit, never
// across remote model calls, so unrelated conversations proceed in parallel
// and a slow model cannot serialize the store.
package orchestrator

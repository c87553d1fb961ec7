// Package agent contains the modality analysis stages (TextAgent,
// ImageAgent), the deterministic action stage (ActionAgent) and the final
// response synthesis stage (ResponseAgent).
//
// The model-calling agents degrade gracefully on safety blocks: a blocked
// analysis yields a fixed fallback finding instead of failing the turn. Only
// exhausted retries and unavailability propagate, as *AnalysisError, so the
// orchestrator can reject the turn. The action stage is pure rule
// evaluation and never fails; keeping it off the model path keeps action
// semantics auditable.
package agent

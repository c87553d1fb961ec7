package agent

import (
	"context"
	"fmt"

	"github.com/hupe1980/turnguard/core"
	"github.com/hupe1980/turnguard/gateway"
)

// Caller is the slice of the gateway the model-calling agents need.
// *gateway.Gateway satisfies it.
type Caller interface {
	Generate(ctx context.Context, req gateway.Request) (string, error)
}

// AnalysisError wraps a gateway failure that prevented a modality stage from
// producing a finding. It is only raised for failures the stage cannot
// degrade around (exhausted retries, unavailability).
type AnalysisError struct {
	Source core.FindingSource
	Err    error
}

// Error implements the error interface.
func (e *AnalysisError) Error() string {
	return fmt.Sprintf("%s analysis failed: %v", e.Source, e.Err)
}

// Unwrap exposes the gateway error for errors.Is/As.
func (e *AnalysisError) Unwrap() error { return e.Err }

// historyWindow returns at most n trailing turns.
func historyWindow(history []core.Turn, n int) []core.Turn {
	if n <= 0 || len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

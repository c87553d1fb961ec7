package orchestrator

import (
	"errors"
	"fmt"

	"github.com/hupe1980/turnguard/core"
)

// User-visible reply texts. The internal error taxonomy stays richer than
// these; callers receive both the error and the neutral text.
const (
	// SafeRefusal is the fixed reply for turns rejected by input moderation.
	SafeRefusal = "I can't help with that request. Please rephrase your query."
	// GenericFailure is the fixed reply for turns rejected by processing
	// failures; the condition is retryable from the user's point of view.
	GenericFailure = "Something went wrong while processing your request. Please try again."
)

// ErrInvalidInput is returned when a turn carries neither text nor image.
var ErrInvalidInput = errors.New("no text or image input provided")

// ErrDeadlineExceeded is returned when the turn's overall deadline elapsed
// before a remote stage could run.
var ErrDeadlineExceeded = errors.New("turn deadline exceeded")

// UnsafeInputError reports that input moderation rejected the turn. The turn
// was not committed.
type UnsafeInputError struct {
	Verdict core.ModerationVerdict
}

// Error implements the error interface.
func (e *UnsafeInputError) Error() string {
	return fmt.Sprintf("input rejected: %s: %s", e.Verdict.Category, e.Verdict.Reason)
}

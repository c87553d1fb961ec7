package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/turnguard/core"
	"github.com/hupe1980/turnguard/gateway"
	"github.com/hupe1980/turnguard/logging"
)

// textFallbackSummary stands in for a finding when the remote blocks the
// analysis call on safety grounds. It keeps the turn alive without a second
// remote attempt.
const textFallbackSummary = "The text could not be analyzed in detail; treat it as a general statement from the user."

// TextAgentOptions configures a TextAgent.
type TextAgentOptions struct {
	// MaxHistoryTurns bounds the context window included in the prompt.
	MaxHistoryTurns int
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// TextAgent produces a normalized finding for the text modality of a turn.
type TextAgent struct {
	caller          Caller
	maxHistoryTurns int
	logger          logging.Logger
}

// NewTextAgent constructs a TextAgent delegating to the given caller.
func NewTextAgent(caller Caller, optFns ...func(o *TextAgentOptions)) *TextAgent {
	opts := TextAgentOptions{MaxHistoryTurns: 10, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &TextAgent{caller: caller, maxHistoryTurns: opts.MaxHistoryTurns, logger: opts.Logger}
}

// Analyze extracts the intent or key information of the user's text. Safety
// blocks degrade to a fixed fallback summary; exhausted retries and
// unavailability surface as *AnalysisError.
func (a *TextAgent) Analyze(ctx context.Context, text string, history []core.Turn) (core.AnalysisFinding, error) {
	prompt := fmt.Sprintf(
		"The user said: '%s'. Based on the conversation history, what is the main intent or key information in this statement? Keep it concise for internal processing.",
		text,
	)

	summary, err := a.caller.Generate(ctx, gateway.Request{
		Prompt:  prompt,
		History: historyWindow(history, a.maxHistoryTurns),
	})
	if err != nil {
		var gerr *gateway.Error
		if errors.As(err, &gerr) && gerr.Kind == gateway.KindSafetyBlocked {
			a.logger.Warn("text analysis blocked, using fallback summary", "detail", gerr.Message)
			return core.AnalysisFinding{Source: core.SourceText, Summary: textFallbackSummary}, nil
		}
		return core.AnalysisFinding{}, &AnalysisError{Source: core.SourceText, Err: err}
	}

	return core.AnalysisFinding{Source: core.SourceText, Summary: summary}, nil
}

package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/turnguard/core"
	"github.com/hupe1980/turnguard/gateway"
	"github.com/hupe1980/turnguard/logging"
)

// ResponseAgentOptions configures a ResponseAgent.
type ResponseAgentOptions struct {
	MaxHistoryTurns int
	Logger          logging.Logger
}

// ResponseAgent synthesizes the final user-facing reply from the findings,
// the gated action decision and a bounded window of prior turns. It is the
// only agent whose output is persisted verbatim.
type ResponseAgent struct {
	caller          Caller
	maxHistoryTurns int
	logger          logging.Logger
}

// NewResponseAgent constructs a ResponseAgent delegating to the given caller.
func NewResponseAgent(caller Caller, optFns ...func(o *ResponseAgentOptions)) *ResponseAgent {
	opts := ResponseAgentOptions{MaxHistoryTurns: 10, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ResponseAgent{caller: caller, maxHistoryTurns: opts.MaxHistoryTurns, logger: opts.Logger}
}

// Synthesize builds the reply prompt and delegates to the gateway. Gateway
// failures propagate untranslated; the orchestrator owns their mapping to
// user-visible behavior.
func (a *ResponseAgent) Synthesize(ctx context.Context, rec core.WorkingRecord, history []core.Turn) (string, error) {
	prompt := buildResponsePrompt(rec)
	reply, err := a.caller.Generate(ctx, gateway.Request{
		Prompt:  prompt,
		History: historyWindow(history, a.maxHistoryTurns),
	})
	if err != nil {
		return "", err
	}
	a.logger.Debug("response synthesized", "length", len(reply))
	return reply, nil
}

func buildResponsePrompt(rec core.WorkingRecord) string {
	var sb strings.Builder
	sb.WriteString("Based on the following analysis and the conversation history, generate a helpful and concise response to the user.\n\n")
	for _, f := range rec.Findings {
		fmt.Fprintf(&sb, "%s analysis: %s\n", f.Source, f.Summary)
	}
	sb.WriteString("\n")
	sb.WriteString(describeAction(rec.Decision))
	return sb.String()
}

// describeAction renders the action decision for the prompt. A suppressed
// action is stated as not performed so the reply cannot honestly claim
// otherwise.
func describeAction(d core.ActionDecision) string {
	switch {
	case d.Type == core.ActionNone:
		return "No system action was taken."
	case !d.Approved:
		return fmt.Sprintf(
			"A %s action was proposed but NOT approved and NOT performed. Do not claim it was carried out; if relevant, tell the user it could not be done.",
			d.Type,
		)
	default:
		return fmt.Sprintf("A %s action was recorded with parameters %v.", d.Type, d.Parameters)
	}
}

package agent

import (
	"strings"

	"github.com/hupe1980/turnguard/core"
	"github.com/hupe1980/turnguard/logging"
)

// ActionAgentOptions configures an ActionAgent.
type ActionAgentOptions struct {
	Logger logging.Logger
}

// ActionAgent decides whether a system action is warranted for a turn. The
// decision is deterministic rule evaluation over the aggregated findings; no
// model call is involved, which keeps action semantics auditable and policy
// driven. The agent never fails; ActionNone is the default.
type ActionAgent struct {
	logger logging.Logger
}

// NewActionAgent constructs an ActionAgent.
func NewActionAgent(optFns ...func(o *ActionAgentOptions)) *ActionAgent {
	opts := ActionAgentOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ActionAgent{logger: opts.Logger}
}

// Decide evaluates the findings and recent context and returns an action
// decision. Approved starts true and is only revoked by the guardrail's
// action check. Execution remains a recorded no-op in this core.
func (a *ActionAgent) Decide(findings []core.AnalysisFinding, history []core.Turn) core.ActionDecision {
	summary := aggregateSummary(findings)
	lower := strings.ToLower(summary)

	switch {
	case strings.Contains(lower, "search the web for"):
		query := strings.TrimSpace(lower[strings.Index(lower, "search the web for")+len("search the web for"):])
		a.logger.Info("action proposed", "action", core.ActionWebSearch.String(), "query", query)
		return core.ActionDecision{
			Type:       core.ActionWebSearch,
			Parameters: map[string]string{"query": query},
			Approved:   true,
		}
	case strings.Contains(lower, "save this information"):
		a.logger.Info("action proposed", "action", core.ActionSaveData.String())
		return core.ActionDecision{
			Type:       core.ActionSaveData,
			Parameters: map[string]string{"data": summary},
			Approved:   true,
		}
	case strings.Contains(lower, "schedule") && strings.Contains(lower, "meeting"):
		a.logger.Info("action proposed", "action", core.ActionScheduleMeeting.String())
		return core.ActionDecision{
			Type:       core.ActionScheduleMeeting,
			Parameters: map[string]string{"details": summary},
			Approved:   true,
		}
	default:
		a.logger.Debug("no action warranted")
		return core.NoAction()
	}
}

func aggregateSummary(findings []core.AnalysisFinding) string {
	var sb strings.Builder
	for i, f := range findings {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(f.Source.String())
		sb.WriteString(" analysis: ")
		sb.WriteString(f.Summary)
	}
	return sb.String()
}

// Package guardrail implements the two safety checks of the pipeline: input
// moderation of raw text/image before any analysis runs, and local
// validation of proposed actions before they are recorded.
//
// Both checks are stateless and share nothing. CheckInput combines a
// deterministic keyword scan (locally verifiable, cannot be bypassed by the
// remote) with a safety probe through the model gateway; either flagging the
// content makes the verdict unsafe. CheckAction is fully local and
// deterministic so it cannot be influenced by prompt manipulation.
package guardrail

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/hupe1980/turnguard/core"
	"github.com/hupe1980/turnguard/gateway"
	"github.com/hupe1980/turnguard/logging"
)

// RefusalMessage is the neutral text reported for denylist hits.
const RefusalMessage = "Your request contains content that violates our safety guidelines. Please rephrase your query."

// defaultDenylist seeds the keyword scan. Matching is case-insensitive
// substring matching over the raw input text.
var defaultDenylist = []string{
	"delete all files",
	"hacking",
	"format hard drive",
	"steal credit card",
	"harm yourself",
	"do something illegal",
	"make a bomb",
	"ignore all safety rules",
}

// defaultAllowedActions is the closed set of action types the action check
// permits. Everything else, including ActionOther, is rejected.
var defaultAllowedActions = []core.ActionType{
	core.ActionNone,
	core.ActionWebSearch,
	core.ActionSaveData,
	core.ActionScheduleMeeting,
}

// defaultGlobalParameterPatterns flag parameter values that are unacceptable
// for any action type.
var defaultGlobalParameterPatterns = []string{
	`delete all files`,
	`format hard drive`,
	`rm -rf`,
	`wipe the system`,
}

// defaultParameterPatterns flag parameter values resembling destructive or
// unauthorized operations, per action type. The global patterns above apply
// in addition to these.
var defaultParameterPatterns = map[core.ActionType][]string{
	core.ActionWebSearch: {
		`illegal drugs`, `violent acts`, `child exploitation`, `harmful chemicals`,
		`\bdelete\b`, `\bformat\b`,
	},
	core.ActionSaveData: {
		`credit card numbers`, `\bssn\b`, `passwords of others`,
	},
	core.ActionScheduleMeeting: {
		`bomb threat`, `illegal gathering`,
	},
}

// Caller is the slice of the gateway the input check needs. *gateway.Gateway
// satisfies it.
type Caller interface {
	Generate(ctx context.Context, req gateway.Request) (string, error)
}

// Options configures an Agent.
type Options struct {
	// Denylist replaces the default keyword denylist when non-nil.
	Denylist []string
	// AllowedActions replaces the default action allow-list when non-nil.
	AllowedActions []core.ActionType
	// ParameterPatterns replaces the default per-action parameter denylist
	// patterns when non-nil. Values are regular expressions; they are
	// compiled at construction and matched against lowercased parameters.
	ParameterPatterns map[core.ActionType][]string
	// GlobalParameterPatterns replaces the default action-independent
	// parameter patterns when non-nil. They are checked for every action
	// type, in addition to the per-action patterns.
	GlobalParameterPatterns []string
	// Safety is the configuration forwarded on probe calls.
	Safety gateway.SafetyConfig
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Agent performs input and action moderation. Both entry points are pure
// functions of their inputs and the fixed policy tables.
type Agent struct {
	caller         Caller
	denylist       []string
	allowedActions map[core.ActionType]bool
	paramPatterns  map[core.ActionType][]*regexp.Regexp
	globalPatterns []*regexp.Regexp
	safety         gateway.SafetyConfig
	logger         logging.Logger
}

// New constructs a guardrail Agent. The policy tables are fixed at
// construction; probes go through the supplied caller.
func New(caller Caller, optFns ...func(o *Options)) *Agent {
	opts := Options{
		Denylist:                defaultDenylist,
		AllowedActions:          defaultAllowedActions,
		ParameterPatterns:       defaultParameterPatterns,
		GlobalParameterPatterns: defaultGlobalParameterPatterns,
		Safety:                  gateway.DefaultSafetyConfig(),
		Logger:                  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	allowed := make(map[core.ActionType]bool, len(opts.AllowedActions))
	for _, a := range opts.AllowedActions {
		allowed[a] = true
	}
	patterns := make(map[core.ActionType][]*regexp.Regexp, len(opts.ParameterPatterns))
	for action, exprs := range opts.ParameterPatterns {
		for _, expr := range exprs {
			patterns[action] = append(patterns[action], regexp.MustCompile(expr))
		}
	}
	global := make([]*regexp.Regexp, 0, len(opts.GlobalParameterPatterns))
	for _, expr := range opts.GlobalParameterPatterns {
		global = append(global, regexp.MustCompile(expr))
	}

	lowered := make([]string, len(opts.Denylist))
	for i, kw := range opts.Denylist {
		lowered[i] = strings.ToLower(kw)
	}

	return &Agent{
		caller:         caller,
		denylist:       lowered,
		allowedActions: allowed,
		paramPatterns:  patterns,
		globalPatterns: global,
		safety:         opts.Safety.Clone(),
		logger:         opts.Logger,
	}
}

// CheckInput moderates the raw turn input. The keyword scan runs first and
// its reason takes precedence when both it and the remote probe fire, since
// it is locally verifiable without a remote call. Probe failures that are
// not safety blocks fail closed.
func (a *Agent) CheckInput(ctx context.Context, input core.TurnInput) core.ModerationVerdict {
	v := a.checkInput(ctx, input)
	if vl, ok := a.logger.(logging.VerdictLogger); ok {
		vl.LogVerdict("input", v.Allowed, v.Category.String(), v.Reason)
	}
	return v
}

func (a *Agent) checkInput(ctx context.Context, input core.TurnInput) core.ModerationVerdict {
	if input.HasText() {
		lowerText := strings.ToLower(input.Text)
		for _, kw := range a.denylist {
			if strings.Contains(lowerText, kw) {
				a.logger.Warn("input blocked by keyword scan", "keyword", kw)
				return core.UnsafeVerdict(core.CategoryUnsafeText, RefusalMessage)
			}
		}
	}

	if input.HasText() {
		if v := a.probe(ctx, gateway.Request{
			Prompt:      input.Text,
			Safety:      a.safety.Clone(),
			MaxTokens:   1,
			Temperature: 0,
		}, core.CategoryUnsafeText); !v.Allowed {
			return v
		}
	}

	if input.HasImage() {
		prompt := "Is this image safe? Describe any unsafe content if present."
		if input.HasText() {
			prompt += " Also consider: " + input.Text
		}
		if v := a.probe(ctx, gateway.Request{
			Prompt:      prompt,
			Image:       input.Image,
			ImageMIME:   input.ImageMIME,
			Safety:      a.safety.Clone(),
			MaxTokens:   1,
			Temperature: 0,
		}, core.CategoryUnsafeImage); !v.Allowed {
			return v
		}
	}

	return core.SafeVerdict()
}

// probe issues a minimal generation call solely to trigger the remote safety
// filter. The response text is discarded; only the failure kind matters.
func (a *Agent) probe(ctx context.Context, req gateway.Request, category core.VerdictCategory) core.ModerationVerdict {
	_, err := a.caller.Generate(ctx, req)
	if err == nil {
		return core.SafeVerdict()
	}

	var gerr *gateway.Error
	if errors.As(err, &gerr) && gerr.Kind == gateway.KindSafetyBlocked {
		a.logger.Warn("input blocked by remote safety filter", "category", category.String(), "detail", gerr.Message)
		return core.UnsafeVerdict(category, "Your request was blocked by safety filters. Please try a different query.")
	}

	// The check itself failed; allowing unverified content through is worse
	// than a spurious refusal.
	a.logger.Error("safety probe failed", "error", err.Error())
	return core.UnsafeVerdict(category, "An internal error occurred during the safety check. Please try again.")
}

// CheckAction validates a proposed action against the allow-list, the
// action-independent parameter patterns and the per-action parameter
// patterns. It never invokes the remote model.
func (a *Agent) CheckAction(decision core.ActionDecision) core.ModerationVerdict {
	v := a.checkAction(decision)
	if vl, ok := a.logger.(logging.VerdictLogger); ok {
		vl.LogVerdict("action", v.Allowed, v.Category.String(), v.Reason)
	}
	return v
}

func (a *Agent) checkAction(decision core.ActionDecision) core.ModerationVerdict {
	if !a.allowedActions[decision.Type] {
		a.logger.Warn("action blocked", "action", decision.Type.String(), "reason", "not on allow-list")
		return core.UnsafeVerdict(core.CategoryUnsafeAction,
			"Unsupported or unauthorized action: '"+decision.Type.String()+"'.")
	}

	for _, patterns := range [][]*regexp.Regexp{a.globalPatterns, a.paramPatterns[decision.Type]} {
		for _, pattern := range patterns {
			for key, value := range decision.Parameters {
				if pattern.MatchString(strings.ToLower(value)) {
					a.logger.Warn("action blocked", "action", decision.Type.String(), "parameter", key, "pattern", pattern.String())
					return core.UnsafeVerdict(core.CategoryUnsafeAction,
						"Cannot perform "+decision.Type.String()+" with the requested parameters.")
				}
			}
		}
	}

	return core.SafeVerdict()
}

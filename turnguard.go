// Package turnguard provides a high-level façade over the orchestration
// core: the guardrail checks, the modality analysis agents, the action and
// response stages and the context store, wired into one moderated
// request/response pipeline. Most applications interact with this package
// by:
//  1. Creating a TurnGuard via New() (optionally overriding the generator,
//     store or policy tables)
//  2. Handling turns with HandleTurn
//  3. Reading or clearing history via History / ClearHistory
//
// All defaults are safe for local development and testing: a mock generator,
// an in-memory store and a no-op logger. Production deployments supply a
// provider-backed generator (gateway/openai, gateway/anthropic), a durable
// store (store/sqlite) and a structured logger.
package turnguard

import (
	"context"
	"time"

	"github.com/hupe1980/turnguard/agent"
	"github.com/hupe1980/turnguard/core"
	"github.com/hupe1980/turnguard/gateway"
	"github.com/hupe1980/turnguard/guardrail"
	"github.com/hupe1980/turnguard/logging"
	"github.com/hupe1980/turnguard/orchestrator"
	"github.com/hupe1980/turnguard/store"
)

// Options configures a TurnGuard instance.
type Options struct {
	// Generator is the remote generation capability. Defaults to a mock
	// generator suitable for tests and demos.
	Generator gateway.Generator
	// ContextStore persists conversation histories. Defaults to in-memory.
	ContextStore core.ContextStore
	// Safety is the configuration forwarded on every generation call.
	Safety gateway.SafetyConfig
	// Denylist replaces the built-in keyword denylist when non-nil.
	Denylist []string
	// TurnTimeout is the overall per-turn deadline.
	TurnTimeout time.Duration
	// MaxHistoryTurns bounds the context window handed to the agents.
	MaxHistoryTurns int
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// TurnGuard aggregates the wired pipeline behind a small surface.
type TurnGuard struct {
	orch *orchestrator.Orchestrator
}

// New creates a TurnGuard with optional overrides. Any unset dependency is
// initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *TurnGuard {
	opts := Options{
		Generator:       gateway.NewMockGenerator(),
		ContextStore:    store.NewInMemoryStore(),
		Safety:          gateway.DefaultSafetyConfig(),
		TurnTimeout:     60 * time.Second,
		MaxHistoryTurns: 10,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	// TurnLogger callers get component-tagged derivatives; any other Logger
	// is shared as-is.
	componentLogger := func(name string) logging.Logger {
		if tl, ok := opts.Logger.(*logging.TurnLogger); ok {
			return tl.WithComponent(name)
		}
		return opts.Logger
	}

	gw := gateway.New(opts.Generator, func(o *gateway.Options) {
		o.Safety = opts.Safety
		o.Logger = componentLogger("gateway")
	})

	guard := guardrail.New(gw, func(o *guardrail.Options) {
		if opts.Denylist != nil {
			o.Denylist = opts.Denylist
		}
		o.Safety = opts.Safety
		o.Logger = componentLogger("guardrail")
	})

	agentLogger := componentLogger("agent")
	textAgent := agent.NewTextAgent(gw, func(o *agent.TextAgentOptions) {
		o.MaxHistoryTurns = opts.MaxHistoryTurns
		o.Logger = agentLogger
	})
	imageAgent := agent.NewImageAgent(gw, func(o *agent.ImageAgentOptions) {
		o.MaxHistoryTurns = opts.MaxHistoryTurns
		o.Logger = agentLogger
	})
	actionAgent := agent.NewActionAgent(func(o *agent.ActionAgentOptions) {
		o.Logger = agentLogger
	})
	responseAgent := agent.NewResponseAgent(gw, func(o *agent.ResponseAgentOptions) {
		o.MaxHistoryTurns = opts.MaxHistoryTurns
		o.Logger = agentLogger
	})

	orch := orchestrator.New(
		guard, guard, textAgent, imageAgent, actionAgent, responseAgent,
		opts.ContextStore,
		func(o *orchestrator.Options) {
			o.TurnTimeout = opts.TurnTimeout
			o.MaxHistoryTurns = opts.MaxHistoryTurns
			o.Logger = componentLogger("orchestrator")
		},
	)

	return &TurnGuard{orch: orch}
}

// Orchestrator exposes the underlying orchestrator, e.g. for mounting the
// HTTP collaborator.
func (t *TurnGuard) Orchestrator() *orchestrator.Orchestrator { return t.orch }

// HandleTurn runs one moderated request/response cycle.
func (t *TurnGuard) HandleTurn(ctx context.Context, conversationID string, input core.TurnInput) (orchestrator.Result, error) {
	return t.orch.HandleTurn(ctx, conversationID, input)
}

// History returns the conversation's committed turns.
func (t *TurnGuard) History(ctx context.Context, conversationID string, limit int) ([]core.Turn, error) {
	return t.orch.History(ctx, conversationID, limit)
}

// ClearHistory removes all turns for the conversation.
func (t *TurnGuard) ClearHistory(ctx context.Context, conversationID string) error {
	return t.orch.ClearHistory(ctx, conversationID)
}

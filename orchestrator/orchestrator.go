package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/turnguard/core"
	"github.com/hupe1980/turnguard/logging"
)

// InputChecker moderates raw turn input before any other stage runs.
// *guardrail.Agent satisfies it.
type InputChecker interface {
	CheckInput(ctx context.Context, input core.TurnInput) core.ModerationVerdict
}

// ActionChecker validates proposed actions. *guardrail.Agent satisfies it.
type ActionChecker interface {
	CheckAction(decision core.ActionDecision) core.ModerationVerdict
}

// TextAnalyzer produces a finding for the text modality. *agent.TextAgent
// satisfies it.
type TextAnalyzer interface {
	Analyze(ctx context.Context, text string, history []core.Turn) (core.AnalysisFinding, error)
}

// ImageAnalyzer produces a finding for the image modality. *agent.ImageAgent
// satisfies it.
type ImageAnalyzer interface {
	Analyze(ctx context.Context, image []byte, mime, question string, history []core.Turn) (core.AnalysisFinding, error)
}

// ActionDecider chooses a system action for the turn. *agent.ActionAgent
// satisfies it.
type ActionDecider interface {
	Decide(findings []core.AnalysisFinding, history []core.Turn) core.ActionDecision
}

// ResponseSynthesizer produces the final reply. *agent.ResponseAgent
// satisfies it.
type ResponseSynthesizer interface {
	Synthesize(ctx context.Context, rec core.WorkingRecord, history []core.Turn) (string, error)
}

// Options configures an Orchestrator.
type Options struct {
	// TurnTimeout is the overall deadline for one turn. It is checked before
	// each remote stage; once exceeded the turn is rejected.
	TurnTimeout time.Duration
	// MaxHistoryTurns bounds the context window handed to the agent stages.
	MaxHistoryTurns int
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Result is the terminal outcome of a handled turn. Record is returned for
// diagnostics; it is never persisted.
type Result struct {
	State  TurnState
	Reply  string
	Record core.WorkingRecord
}

// Orchestrator runs the per-turn state machine. It is safe for concurrent
// use; independent turns share nothing but the ContextStore and the
// per-conversation commit locks.
type Orchestrator struct {
	inputChecker  InputChecker
	actionChecker ActionChecker
	textAgent     TextAnalyzer
	imageAgent    ImageAnalyzer
	actionAgent   ActionDecider
	responseAgent ResponseSynthesizer
	store         core.ContextStore

	turnTimeout     time.Duration
	maxHistoryTurns int
	logger          logging.Logger

	commitLocks *keyedMutex
}

// New wires the pipeline stages into an Orchestrator.
func New(
	inputChecker InputChecker,
	actionChecker ActionChecker,
	textAgent TextAnalyzer,
	imageAgent ImageAnalyzer,
	actionAgent ActionDecider,
	responseAgent ResponseSynthesizer,
	store core.ContextStore,
	optFns ...func(o *Options),
) *Orchestrator {
	opts := Options{
		TurnTimeout:     60 * time.Second,
		MaxHistoryTurns: 10,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Orchestrator{
		inputChecker:    inputChecker,
		actionChecker:   actionChecker,
		textAgent:       textAgent,
		imageAgent:      imageAgent,
		actionAgent:     actionAgent,
		responseAgent:   responseAgent,
		store:           store,
		turnTimeout:     opts.TurnTimeout,
		maxHistoryTurns: opts.MaxHistoryTurns,
		logger:          opts.Logger,
		commitLocks:     newKeyedMutex(),
	}
}

// HandleTurn runs one full request/response cycle. On success the user and
// assistant turns are committed and the reply returned; on any failure the
// store is left untouched and the returned error carries the internal
// classification while Result.Reply carries the user-visible text.
func (o *Orchestrator) HandleTurn(ctx context.Context, conversationID string, input core.TurnInput) (result Result, err error) {
	start := time.Now()
	rec := core.NewWorkingRecord(input)

	logger := o.logger
	if tl, ok := logger.(*logging.TurnLogger); ok {
		logger = tl.WithTurn(conversationID, rec.ID)
	}
	defer func() {
		if tl, ok := logger.(logging.TurnEventLogger); ok {
			tl.LogTurn(result.State.String(), time.Since(start), err)
		}
	}()

	if input.Empty() {
		return Result{State: StateRejected, Reply: GenericFailure, Record: rec}, ErrInvalidInput
	}

	ctx, cancel := context.WithTimeout(ctx, o.turnTimeout)
	defer cancel()

	// Received → InputChecked. An unsafe verdict ends the turn before any
	// analysis call happens.
	rec.InputVerdict = o.inputChecker.CheckInput(ctx, input)
	if !rec.InputVerdict.Allowed {
		logger.Warn("turn rejected by input moderation",
			"conversation_id", conversationID,
			"category", rec.InputVerdict.Category.String(),
			"reason", rec.InputVerdict.Reason,
		)
		return Result{State: StateRejected, Reply: SafeRefusal, Record: rec}, &UnsafeInputError{Verdict: rec.InputVerdict}
	}

	history, err := o.store.List(ctx, conversationID, o.maxHistoryTurns)
	if err != nil {
		return Result{State: StateRejected, Reply: GenericFailure, Record: rec}, fmt.Errorf("failed to load history: %w", err)
	}

	// InputChecked → Analyzed. Modalities run concurrently; both must finish
	// before the action stage.
	if err := o.checkDeadline(ctx); err != nil {
		return Result{State: StateRejected, Reply: GenericFailure, Record: rec}, err
	}
	findings, err := o.analyze(ctx, input, history)
	if err != nil {
		logger.Warn("turn rejected by analysis failure", "conversation_id", conversationID, "error", err.Error())
		return Result{State: StateRejected, Reply: GenericFailure, Record: rec}, err
	}
	rec.Findings = findings

	// Analyzed → ActionDecided. Pure, non-failing.
	rec.Decision = o.actionAgent.Decide(rec.Findings, history)

	// ActionDecided → ActionChecked. An unsafe verdict suppresses the action
	// but the turn continues.
	rec.ActionVerdict = o.actionChecker.CheckAction(rec.Decision)
	if !rec.ActionVerdict.Allowed {
		logger.Warn("action suppressed",
			"conversation_id", conversationID,
			"action", rec.Decision.Type.String(),
			"reason", rec.ActionVerdict.Reason,
		)
		rec.Decision.Approved = false
	}

	// ActionChecked → Responded.
	if err := o.checkDeadline(ctx); err != nil {
		return Result{State: StateRejected, Reply: GenericFailure, Record: rec}, err
	}
	reply, err := o.responseAgent.Synthesize(ctx, rec, history)
	if err != nil {
		logger.Warn("turn rejected by response failure", "conversation_id", conversationID, "error", err.Error())
		return Result{State: StateRejected, Reply: GenericFailure, Record: rec}, err
	}
	rec.Reply = reply

	// Responded → Committed. The lock guards only the commit; it is never
	// held across model calls.
	if err := o.commit(ctx, conversationID, input, reply); err != nil {
		return Result{State: StateRejected, Reply: GenericFailure, Record: rec}, err
	}

	logger.Info("turn committed",
		"conversation_id", conversationID,
		"turn_id", rec.ID,
		"action", rec.Decision.Type.String(),
		"duration", time.Since(start),
	)
	return Result{State: StateCommitted, Reply: reply, Record: rec}, nil
}

// analyze runs the modality agents for whichever modalities are present.
// There is no ordering dependency between them; results land in fixed slots
// so the finding order (text, image) is deterministic regardless of
// completion order.
func (o *Orchestrator) analyze(ctx context.Context, input core.TurnInput, history []core.Turn) ([]core.AnalysisFinding, error) {
	var (
		wg          sync.WaitGroup
		textFinding core.AnalysisFinding
		imgFinding  core.AnalysisFinding
		ranText     bool
		ranImage    bool
	)
	errCh := make(chan error, 2)

	if input.HasText() {
		ranText = true
		wg.Add(1)
		go func() {
			defer wg.Done()
			f, err := o.textAgent.Analyze(ctx, input.Text, history)
			if err != nil {
				errCh <- err
				return
			}
			textFinding = f
		}()
	}
	if input.HasImage() {
		ranImage = true
		wg.Add(1)
		go func() {
			defer wg.Done()
			f, err := o.imageAgent.Analyze(ctx, input.Image, input.ImageMIME, input.Text, history)
			if err != nil {
				errCh <- err
				return
			}
			imgFinding = f
		}()
	}

	wg.Wait()
	close(errCh)
	if err := <-errCh; err != nil {
		return nil, err
	}

	var findings []core.AnalysisFinding
	if ranText {
		findings = append(findings, textFinding)
	}
	if ranImage {
		findings = append(findings, imgFinding)
	}
	return findings, nil
}

// commit appends the user and assistant turns as one atomic batch under the
// conversation's lock.
func (o *Orchestrator) commit(ctx context.Context, conversationID string, input core.TurnInput, reply string) error {
	lock := o.commitLocks.get(conversationID)
	lock.Lock()
	defer lock.Unlock()

	userTurn := core.NewTurn(core.RoleUser, input.UserContent())
	assistantTurn := core.NewTurn(core.RoleAssistant, reply)
	if err := o.store.Append(ctx, conversationID, userTurn, assistantTurn); err != nil {
		return fmt.Errorf("failed to commit turn: %w", err)
	}
	return nil
}

func (o *Orchestrator) checkDeadline(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrDeadlineExceeded, err)
	}
	return nil
}

// History returns the conversation's turns, delegating directly to the
// ContextStore. A limit <= 0 returns the full history.
func (o *Orchestrator) History(ctx context.Context, conversationID string, limit int) ([]core.Turn, error) {
	return o.store.List(ctx, conversationID, limit)
}

// ClearHistory removes all turns for the conversation.
func (o *Orchestrator) ClearHistory(ctx context.Context, conversationID string) error {
	return o.store.Clear(ctx, conversationID)
}

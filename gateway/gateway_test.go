package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/turnguard/logging"
)

func fastGateway(gen Generator) *Gateway {
	return New(gen, func(o *Options) {
		o.BaseDelay = time.Millisecond
		o.MaxDelay = 2 * time.Millisecond
	})
}

func TestGateway_Generate_Success(t *testing.T) {
	gen := NewMockGenerator()
	gen.AddResponse("hello", "world")

	text, err := fastGateway(gen).Generate(context.Background(), Request{Prompt: "hello"})

	require.NoError(t, err)
	assert.Equal(t, "world", text)
	assert.Equal(t, 1, gen.Calls())
}

func TestGateway_Generate_RetriesTransient(t *testing.T) {
	gen := NewMockGenerator()
	gen.QueueError(NewError(KindTransient, "flaky", nil))
	gen.AddResponse("hello", "world")

	text, err := fastGateway(gen).Generate(context.Background(), Request{Prompt: "hello"})

	require.NoError(t, err)
	assert.Equal(t, "world", text)
	assert.Equal(t, 2, gen.Calls())
}

func TestGateway_Generate_ExhaustsRetries(t *testing.T) {
	gen := NewMockGenerator()
	gen.QueueError(
		NewError(KindRateLimited, "slow down", nil),
		NewError(KindTransient, "flaky", nil),
		NewError(KindTransient, "flaky", nil),
	)

	_, err := fastGateway(gen).Generate(context.Background(), Request{Prompt: "hello"})

	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, KindTransientExhausted, gerr.Kind)
	assert.Equal(t, 3, gen.Calls())
}

func TestGateway_Generate_NoRetryOnSafetyBlock(t *testing.T) {
	gen := NewMockGenerator()
	gen.QueueError(&Error{
		Kind:             KindSafetyBlocked,
		Message:          "blocked",
		SafetyCategories: []SafetyCategory{SafetyDangerousContent},
	})

	_, err := fastGateway(gen).Generate(context.Background(), Request{Prompt: "hello"})

	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, KindSafetyBlocked, gerr.Kind)
	// Partial safety metadata must survive for diagnostic surfacing.
	assert.Equal(t, []SafetyCategory{SafetyDangerousContent}, gerr.SafetyCategories)
	assert.Equal(t, 1, gen.Calls())
}

func TestGateway_Generate_NoRetryOnInvalidRequest(t *testing.T) {
	gen := NewMockGenerator()
	gen.QueueError(NewError(KindInvalidRequest, "bad", nil))

	_, err := fastGateway(gen).Generate(context.Background(), Request{Prompt: "hello"})

	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, KindInvalidRequest, gerr.Kind)
	assert.Equal(t, 1, gen.Calls())
}

func TestGateway_Generate_UnclassifiedErrorIsUnavailable(t *testing.T) {
	gen := NewMockGenerator()
	gen.QueueError(errors.New("something odd"))

	_, err := fastGateway(gen).Generate(context.Background(), Request{Prompt: "hello"})

	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, KindUnavailable, gerr.Kind)
}

func TestGateway_Generate_DefaultSafetyApplied(t *testing.T) {
	var seen SafetyConfig
	gen := &capturingGenerator{capture: func(req Request) { seen = req.Safety }}

	_, err := fastGateway(gen).Generate(context.Background(), Request{Prompt: "hello"})

	require.NoError(t, err)
	assert.Equal(t, DefaultSafetyConfig(), seen)
}

func TestGateway_Generate_CallerSafetyPassedThroughUnmodified(t *testing.T) {
	var seen SafetyConfig
	gen := &capturingGenerator{capture: func(req Request) { seen = req.Safety }}
	custom := SafetyConfig{SafetyHarassment: BlockMost}

	_, err := fastGateway(gen).Generate(context.Background(), Request{Prompt: "hello", Safety: custom})

	require.NoError(t, err)
	assert.Equal(t, custom, seen)
}

func TestGateway_Generate_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fastGateway(NewMockGenerator()).Generate(ctx, Request{Prompt: "hello"})

	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, KindUnavailable, gerr.Kind)
}

func TestGateway_New_ClampsMaxAttempts(t *testing.T) {
	gen := NewMockGenerator()
	gen.AddResponse("hello", "world")
	gw := New(gen, func(o *Options) {
		o.MaxAttempts = 0
	})

	text, err := gw.Generate(context.Background(), Request{Prompt: "hello"})

	require.NoError(t, err)
	assert.Equal(t, "world", text)
	assert.Equal(t, 1, gen.Calls())
}

// modelCallRecorder records structured model call reports.
type modelCallRecorder struct {
	logging.NoOpLogger
	attempts []int
	errs     []error
}

func (r *modelCallRecorder) LogModelCall(_ string, attempt int, _ time.Duration, err error) {
	r.attempts = append(r.attempts, attempt)
	r.errs = append(r.errs, err)
}

func TestGateway_Generate_ReportsAttemptsToStructuredLogger(t *testing.T) {
	rec := &modelCallRecorder{}
	gen := NewMockGenerator()
	gen.QueueError(NewError(KindTransient, "flaky", nil))
	gen.AddResponse("hello", "world")
	gw := New(gen, func(o *Options) {
		o.BaseDelay = time.Millisecond
		o.Logger = rec
	})

	_, err := gw.Generate(context.Background(), Request{Prompt: "hello"})

	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, rec.attempts)
	assert.Error(t, rec.errs[0])
	assert.NoError(t, rec.errs[1])
}

type capturingGenerator struct {
	capture func(req Request)
}

func (c *capturingGenerator) Generate(_ context.Context, req Request) (string, error) {
	c.capture(req)
	return "ok", nil
}

func (c *capturingGenerator) Provider() string { return "capture" }

func TestSafetyConfig_Clone(t *testing.T) {
	cfg := DefaultSafetyConfig()
	clone := cfg.Clone()
	clone[SafetyHarassment] = BlockNone

	assert.Equal(t, BlockSome, cfg[SafetyHarassment])
	assert.Nil(t, SafetyConfig(nil).Clone())
}

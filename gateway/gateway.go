package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/hupe1980/turnguard/core"
	"github.com/hupe1980/turnguard/logging"
)

// Request captures one normalized generation call. History carries prior
// turns for conversational coherence; Image is optional and accompanies the
// prompt when present.
type Request struct {
	Prompt      string
	History     []core.Turn
	Image       []byte
	ImageMIME   string
	Safety      SafetyConfig
	MaxTokens   int64
	Temperature float64
}

// Generator is the opaque remote generation capability. Implementations must
// return *Error values so the Gateway can decide retry behavior; any other
// error is treated as KindUnavailable.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)

	// Provider returns a short provider identifier for logging.
	Provider() string
}

// Options configures a Gateway.
type Options struct {
	// MaxAttempts is the hard ceiling on calls per Generate, including the
	// first one.
	MaxAttempts int
	// BaseDelay is the backoff before the first retry; it doubles per retry.
	BaseDelay time.Duration
	// MaxDelay caps the backoff.
	MaxDelay time.Duration
	// Safety is applied to requests that carry no SafetyConfig of their own.
	Safety SafetyConfig
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Gateway wraps a Generator with bounded retry and failure classification.
// It holds no mutable state beyond configuration and is safe to call
// concurrently for independent turns.
type Gateway struct {
	gen         Generator
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	safety      SafetyConfig
	logger      logging.Logger
}

// New constructs a Gateway with optional overrides.
func New(gen Generator, optFns ...func(o *Options)) *Gateway {
	opts := Options{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		MaxDelay:    30 * time.Second,
		Safety:      DefaultSafetyConfig(),
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	return &Gateway{
		gen:         gen,
		maxAttempts: opts.MaxAttempts,
		baseDelay:   opts.BaseDelay,
		maxDelay:    opts.MaxDelay,
		safety:      opts.Safety.Clone(),
		logger:      opts.Logger,
	}
}

// Generate performs the remote call, retrying retryable failures with
// exponential backoff up to the attempt ceiling. The request's SafetyConfig
// is forwarded unmodified; when absent the gateway default is used.
func (g *Gateway) Generate(ctx context.Context, req Request) (string, error) {
	if req.Safety == nil {
		req.Safety = g.safety.Clone()
	}

	var last *Error
	delay := g.baseDelay
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", NewError(KindUnavailable, "context ended before call", err)
		}

		start := time.Now()
		text, err := g.gen.Generate(ctx, req)
		if err == nil {
			g.logCall(attempt, time.Since(start), nil)
			return text, nil
		}

		gerr := classify(err)
		g.logCall(attempt, time.Since(start), gerr)
		if !gerr.IsRetryable() {
			return "", gerr
		}
		last = gerr

		if attempt == g.maxAttempts {
			break
		}
		if err := sleep(ctx, delay); err != nil {
			return "", NewError(KindUnavailable, "context ended during backoff", err)
		}
		delay *= 2
		if delay > g.maxDelay {
			delay = g.maxDelay
		}
	}

	return "", &Error{
		Kind:    KindTransientExhausted,
		Message: "retries exhausted",
		Err:     last,
	}
}

// Provider returns the wrapped generator's provider identifier.
func (g *Gateway) Provider() string { return g.gen.Provider() }

// logCall reports one attempt's outcome, structured when the logger supports
// it.
func (g *Gateway) logCall(attempt int, dur time.Duration, gerr *Error) {
	if ml, ok := g.logger.(logging.ModelCallLogger); ok {
		var err error
		if gerr != nil {
			err = gerr
		}
		ml.LogModelCall(g.gen.Provider(), attempt, dur, err)
		return
	}
	if gerr == nil {
		g.logger.Debug("model call succeeded", "provider", g.gen.Provider(), "attempt", attempt, "duration", dur)
		return
	}
	g.logger.Warn("model call failed", "provider", g.gen.Provider(), "attempt", attempt, "kind", gerr.Kind.String(), "error", gerr.Error())
}

// classify normalizes a generator error into *Error. Unclassified errors are
// treated as unavailable so they surface terminally instead of looping.
func classify(err error) *Error {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr
	}
	return NewError(KindUnavailable, "unclassified generator failure", err)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

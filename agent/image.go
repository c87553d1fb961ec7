package agent

import (
	"context"
	"errors"

	"github.com/hupe1980/turnguard/core"
	"github.com/hupe1980/turnguard/gateway"
	"github.com/hupe1980/turnguard/logging"
)

const imageFallbackSummary = "The image could not be analyzed in detail; treat it as an attachment the user provided without further interpretation."

// ImageAgentOptions configures an ImageAgent.
type ImageAgentOptions struct {
	MaxHistoryTurns int
	Logger          logging.Logger
}

// ImageAgent produces a normalized finding for the image modality of a turn,
// optionally steered by a companion text question.
type ImageAgent struct {
	caller          Caller
	maxHistoryTurns int
	logger          logging.Logger
}

// NewImageAgent constructs an ImageAgent delegating to the given caller.
func NewImageAgent(caller Caller, optFns ...func(o *ImageAgentOptions)) *ImageAgent {
	opts := ImageAgentOptions{MaxHistoryTurns: 10, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ImageAgent{caller: caller, maxHistoryTurns: opts.MaxHistoryTurns, logger: opts.Logger}
}

// Analyze describes the image and answers the companion question when one is
// present. Degradation rules match TextAgent.Analyze.
func (a *ImageAgent) Analyze(ctx context.Context, image []byte, mime, question string, history []core.Turn) (core.AnalysisFinding, error) {
	prompt := "Analyze this image."
	if question != "" {
		prompt += " Specifically, " + question
	}

	summary, err := a.caller.Generate(ctx, gateway.Request{
		Prompt:    prompt,
		Image:     image,
		ImageMIME: mime,
		History:   historyWindow(history, a.maxHistoryTurns),
	})
	if err != nil {
		var gerr *gateway.Error
		if errors.As(err, &gerr) && gerr.Kind == gateway.KindSafetyBlocked {
			a.logger.Warn("image analysis blocked, using fallback summary", "detail", gerr.Message)
			return core.AnalysisFinding{Source: core.SourceImage, Summary: imageFallbackSummary}, nil
		}
		return core.AnalysisFinding{}, &AnalysisError{Source: core.SourceImage, Err: err}
	}

	return core.AnalysisFinding{Source: core.SourceImage, Summary: summary}, nil
}

// Package anthropic provides a gateway.Generator implementation backed by
// the Anthropic Messages API.
package anthropic

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hupe1980/turnguard/core"
	"github.com/hupe1980/turnguard/gateway"
)

// Options configure the Anthropic generator adapter (model id, temperature,
// max tokens, API key).
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Generator wraps the Anthropic Messages API behind gateway.Generator.
type Generator struct {
	client *anthropic.Client
	opts   Options
}

var _ gateway.Generator = (*Generator)(nil)

// NewGenerator creates a new Anthropic generator using the official client.
func NewGenerator(optFns ...func(o *Options)) *Generator {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Generator{client: &client, opts: opts}
}

// NewGeneratorFromClient creates a new Anthropic generator from an existing client.
func NewGeneratorFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Generator {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Generator{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
}

// Generate implements gateway.Generator with a non-streaming message call.
func (g *Generator) Generate(ctx context.Context, req gateway.Request) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       g.opts.Model,
		Messages:    buildMessages(req),
		MaxTokens:   g.opts.MaxTokens,
		Temperature: anthropic.Float(g.opts.Temperature),
		System:      []anthropic.TextBlockParam{{Text: safetyPreamble(req.Safety)}},
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = req.MaxTokens
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return "", classify(err)
	}
	if string(resp.StopReason) == "refusal" {
		return "", &gateway.Error{
			Kind:             gateway.KindSafetyBlocked,
			Message:          "anthropic refused the request",
			SafetyCategories: configuredCategories(req.Safety),
		}
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}
	return sb.String(), nil
}

// Provider implements gateway.Generator.
func (g *Generator) Provider() string { return "anthropic" }

// buildMessages converts prior turns and the current prompt (plus optional
// image block) into Anthropic messages.
func buildMessages(req gateway.Request) []anthropic.MessageParam {
	var messages []anthropic.MessageParam
	for _, turn := range req.History {
		switch turn.Role {
		case core.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(turn.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(turn.Content)))
		}
	}

	blocks := []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(req.Prompt)}
	if len(req.Image) > 0 {
		mime := req.ImageMIME
		if mime == "" {
			mime = "image/jpeg"
		}
		blocks = append(blocks, anthropic.NewImageBlockBase64(mime, base64.StdEncoding.EncodeToString(req.Image)))
	}
	return append(messages, anthropic.NewUserMessage(blocks...))
}

func safetyPreamble(cfg gateway.SafetyConfig) string {
	preamble := "Refuse to produce content in the following categories at or above the configured sensitivity:"
	for _, cat := range configuredCategories(cfg) {
		preamble += fmt.Sprintf(" %s(%s)", cat, cfg[cat])
	}
	return preamble
}

func configuredCategories(cfg gateway.SafetyConfig) []gateway.SafetyCategory {
	known := []gateway.SafetyCategory{
		gateway.SafetyHarassment,
		gateway.SafetyHateSpeech,
		gateway.SafetySexuallyExplicit,
		gateway.SafetyDangerousContent,
	}
	out := make([]gateway.SafetyCategory, 0, len(cfg))
	for _, cat := range known {
		if _, ok := cfg[cat]; ok {
			out = append(out, cat)
		}
	}
	return out
}

// classify maps Anthropic API failures onto gateway error kinds.
func classify(err error) *gateway.Error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		switch {
		case apierr.StatusCode == http.StatusTooManyRequests:
			return gateway.NewError(gateway.KindRateLimited, "anthropic rate limited", err)
		case apierr.StatusCode >= 500:
			return gateway.NewError(gateway.KindTransient, "anthropic server error", err)
		case apierr.StatusCode == http.StatusBadRequest:
			return gateway.NewError(gateway.KindInvalidRequest, "anthropic rejected request", err)
		default:
			return gateway.NewError(gateway.KindUnavailable, "anthropic api error", err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return gateway.NewError(gateway.KindUnavailable, "anthropic call aborted", err)
	}
	return gateway.NewError(gateway.KindTransient, "anthropic network error", err)
}

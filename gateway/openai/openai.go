// Package openai provides a gateway.Generator implementation backed by the
// OpenAI Chat Completions API. It adapts turnguard's normalized Request into
// the SDK's message format, renders the safety configuration into a system
// preamble and classifies API failures into gateway error kinds.
package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hupe1980/turnguard/core"
	"github.com/hupe1980/turnguard/gateway"
)

// Options configure the OpenAI generator adapter. Fields mirror a small
// subset of Chat Completion parameters; extend via functional options
// without breaking callers.
type Options struct {
	// APIKey overrides the key read from the environment when set.
	APIKey              string
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Generator wraps the OpenAI Chat Completions API behind gateway.Generator.
type Generator struct {
	client *openai.Client
	opts   Options
}

var _ gateway.Generator = (*Generator)(nil)

// NewGenerator creates a new OpenAI generator using the official client. The
// API key comes from the environment unless Options.APIKey is set.
func NewGenerator(optFns ...func(o *Options)) *Generator {
	opts := applyOptions(optFns)
	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := openai.NewClient(clientOpts...)
	return &Generator{client: &client, opts: opts}
}

// NewGeneratorFromClient creates a new OpenAI generator from an existing client.
func NewGeneratorFromClient(client *openai.Client, optFns ...func(o *Options)) *Generator {
	return &Generator{client: client, opts: applyOptions(optFns)}
}

func applyOptions(optFns []func(o *Options)) Options {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

// Generate implements gateway.Generator with a non-streaming completion.
func (g *Generator) Generate(ctx context.Context, req gateway.Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(req),
		Model:               g.opts.Model,
		Temperature:         openai.Float(g.opts.Temperature),
		MaxCompletionTokens: openai.Int(g.opts.MaxCompletionTokens),
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(req.MaxTokens)
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", gateway.NewError(gateway.KindUnavailable, "no choices returned", nil)
	}
	msg := resp.Choices[0].Message
	if msg.Refusal != "" {
		return "", &gateway.Error{
			Kind:             gateway.KindSafetyBlocked,
			Message:          msg.Refusal,
			SafetyCategories: categoriesFromConfig(req.Safety),
		}
	}
	return msg.Content, nil
}

// Provider implements gateway.Generator.
func (g *Generator) Provider() string { return "openai" }

// buildMessages converts the safety preamble, prior turns and the current
// prompt (plus optional image) into OpenAI chat messages.
func buildMessages(req gateway.Request) []openai.ChatCompletionMessageParamUnion {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(safetyPreamble(req.Safety)),
	}
	for _, turn := range req.History {
		switch turn.Role {
		case core.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(turn.Content))
		default:
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}
	if len(req.Image) > 0 {
		mime := req.ImageMIME
		if mime == "" {
			mime = "image/jpeg"
		}
		dataURI := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(req.Image))
		messages = append(messages, openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
			openai.TextContentPart(req.Prompt),
			openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURI}),
		}))
		return messages
	}
	return append(messages, openai.UserMessage(req.Prompt))
}

// safetyPreamble renders the caller's safety configuration into an
// instruction block. The configuration itself is never altered here; the
// preamble is how the categorical thresholds reach a provider that has no
// native per-category knobs.
func safetyPreamble(cfg gateway.SafetyConfig) string {
	preamble := "Refuse to produce content in the following categories at or above the configured sensitivity:"
	for _, cat := range orderedCategories(cfg) {
		preamble += fmt.Sprintf(" %s(%s)", cat, cfg[cat])
	}
	return preamble
}

func orderedCategories(cfg gateway.SafetyConfig) []gateway.SafetyCategory {
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

func categoriesFromConfig(cfg gateway.SafetyConfig) []gateway.SafetyCategory {
	return orderedCategories(cfg)
}

// classify maps OpenAI API failures onto gateway error kinds.
func classify(err error) *gateway.Error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch {
		case apierr.StatusCode == http.StatusTooManyRequests:
			return gateway.NewError(gateway.KindRateLimited, "openai rate limited", err)
		case apierr.StatusCode >= 500:
			return gateway.NewError(gateway.KindTransient, "openai server error", err)
		case apierr.StatusCode == http.StatusBadRequest:
			return gateway.NewError(gateway.KindInvalidRequest, "openai rejected request", err)
		default:
			return gateway.NewError(gateway.KindUnavailable, "openai api error", err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return gateway.NewError(gateway.KindUnavailable, "openai call aborted", err)
	}
	// Anything non-HTTP (DNS, connection reset) is worth one more try.
	return gateway.NewError(gateway.KindTransient, "openai network error", err)
}

package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/turnguard/core"
	"github.com/hupe1980/turnguard/gateway"
	"github.com/hupe1980/turnguard/internal/testutil"
)

// capturingCaller records the last request and replays a scripted result.
type capturingCaller struct {
	lastReq gateway.Request
	resp    string
	err     error
}

func (c *capturingCaller) Generate(_ context.Context, req gateway.Request) (string, error) {
	c.lastReq = req
	return c.resp, c.err
}

func TestTextAgentAnalyze(t *testing.T) {
	caller := &capturingCaller{resp: "The user wants a summary of the weather."}
	agent := NewTextAgent(caller)

	finding, err := agent.Analyze(context.Background(), "What's the weather like?", nil)

	require.NoError(t, err)
	assert.Equal(t, core.SourceText, finding.Source)
	assert.Equal(t, "The user wants a summary of the weather.", finding.Summary)
	assert.Contains(t, caller.lastReq.Prompt, "The user said: 'What's the weather like?'")
}

func TestTextAgentAnalyze_SafetyBlockFallsBack(t *testing.T) {
	caller := &capturingCaller{err: gateway.NewError(gateway.KindSafetyBlocked, "blocked", nil)}
	agent := NewTextAgent(caller)

	finding, err := agent.Analyze(context.Background(), "borderline text", nil)

	require.NoError(t, err)
	assert.Equal(t, core.SourceText, finding.Source)
	assert.Equal(t, textFallbackSummary, finding.Summary)
}

func TestTextAgentAnalyze_FailurePropagates(t *testing.T) {
	caller := &capturingCaller{err: gateway.NewError(gateway.KindTransientExhausted, "gave up", nil)}
	agent := NewTextAgent(caller)

	_, err := agent.Analyze(context.Background(), "hello", nil)

	var aerr *AnalysisError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, core.SourceText, aerr.Source)

	var gerr *gateway.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, gateway.KindTransientExhausted, gerr.Kind)
}

func TestTextAgentAnalyze_HistoryWindow(t *testing.T) {
	caller := &capturingCaller{resp: "ok"}
	agent := NewTextAgent(caller, func(o *TextAgentOptions) {
		o.MaxHistoryTurns = 2
	})
	history := testutil.Conversation("one", "two", "three", "four")

	_, err := agent.Analyze(context.Background(), "hello", history)

	require.NoError(t, err)
	require.Len(t, caller.lastReq.History, 2)
	assert.Equal(t, "three", caller.lastReq.History[0].Content)
	assert.Equal(t, "four", caller.lastReq.History[1].Content)
}

func TestImageAgentAnalyze(t *testing.T) {
	caller := &capturingCaller{resp: "A photo of a red bicycle."}
	agent := NewImageAgent(caller)

	finding, err := agent.Analyze(context.Background(), []byte{0x89, 0x50}, "image/png", "what color is it?", nil)

	require.NoError(t, err)
	assert.Equal(t, core.SourceImage, finding.Source)
	assert.Equal(t, "A photo of a red bicycle.", finding.Summary)
	assert.Equal(t, "Analyze this image. Specifically, what color is it?", caller.lastReq.Prompt)
	assert.Equal(t, []byte{0x89, 0x50}, caller.lastReq.Image)
	assert.Equal(t, "image/png", caller.lastReq.ImageMIME)
}

func TestImageAgentAnalyze_NoQuestion(t *testing.T) {
	caller := &capturingCaller{resp: "ok"}
	agent := NewImageAgent(caller)

	_, err := agent.Analyze(context.Background(), []byte{0x01}, "image/jpeg", "", nil)

	require.NoError(t, err)
	assert.Equal(t, "Analyze this image.", caller.lastReq.Prompt)
}

func TestImageAgentAnalyze_SafetyBlockFallsBack(t *testing.T) {
	caller := &capturingCaller{err: gateway.NewError(gateway.KindSafetyBlocked, "blocked", nil)}
	agent := NewImageAgent(caller)

	finding, err := agent.Analyze(context.Background(), []byte{0x01}, "image/png", "", nil)

	require.NoError(t, err)
	assert.Equal(t, imageFallbackSummary, finding.Summary)
}

func TestActionAgentDecide(t *testing.T) {
	agent := NewActionAgent()

	tests := []struct {
		name     string
		summary  string
		expected core.ActionType
	}{
		{
			name:     "web search phrase",
			summary:  "The user wants to search the web for cheap flights",
			expected: core.ActionWebSearch,
		},
		{
			name:     "save data phrase",
			summary:  "The user asked to save this information for later",
			expected: core.ActionSaveData,
		},
		{
			name:     "schedule meeting phrase",
			summary:  "The user wants to schedule a team meeting on Friday",
			expected: core.ActionScheduleMeeting,
		},
		{
			name:     "no trigger",
			summary:  "The user is making small talk",
			expected: core.ActionNone,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := agent.Decide([]core.AnalysisFinding{
				{Source: core.SourceText, Summary: tt.summary},
			}, nil)
			assert.Equal(t, tt.expected, decision.Type)
		})
	}
}

func TestActionAgentDecide_WebSearchQueryExtraction(t *testing.T) {
	agent := NewActionAgent()

	decision := agent.Decide([]core.AnalysisFinding{
		{Source: core.SourceText, Summary: "Search the web for the capital of France"},
	}, nil)

	require.Equal(t, core.ActionWebSearch, decision.Type)
	assert.True(t, decision.Approved)
	assert.Equal(t, "the capital of france", decision.Parameters["query"])
}

func TestActionAgentDecide_CombinesFindings(t *testing.T) {
	agent := NewActionAgent()

	// The trigger phrase appears in the image finding only.
	decision := agent.Decide([]core.AnalysisFinding{
		{Source: core.SourceText, Summary: "General chatter"},
		{Source: core.SourceImage, Summary: "A flyer suggesting to schedule a project meeting"},
	}, nil)

	assert.Equal(t, core.ActionScheduleMeeting, decision.Type)
}

func TestResponseAgentSynthesize(t *testing.T) {
	caller := &capturingCaller{resp: "Here is your answer."}
	agent := NewResponseAgent(caller)

	rec := testutil.NewRecordBuilder(core.TurnInput{Text: "hi"}).
		Finding(core.SourceText, "user greeted").
		Decision(core.NoAction()).
		Build()

	reply, err := agent.Synthesize(context.Background(), rec, nil)

	require.NoError(t, err)
	assert.Equal(t, "Here is your answer.", reply)
	assert.Contains(t, caller.lastReq.Prompt, "text analysis: user greeted")
	assert.Contains(t, caller.lastReq.Prompt, "No system action was taken.")
}

func TestResponseAgentSynthesize_SuppressedActionDisclosed(t *testing.T) {
	caller := &capturingCaller{resp: "ok"}
	agent := NewResponseAgent(caller)

	rec := testutil.NewRecordBuilder(core.TurnInput{Text: "risky"}).
		Finding(core.SourceText, "risky request").
		Decision(core.ActionDecision{
			Type:       core.ActionWebSearch,
			Parameters: map[string]string{"query": "delete everything"},
			Approved:   false,
		}).
		Build()

	_, err := agent.Synthesize(context.Background(), rec, nil)

	require.NoError(t, err)
	assert.Contains(t, caller.lastReq.Prompt, "NOT approved and NOT performed")
	assert.NotContains(t, caller.lastReq.Prompt, "was recorded with parameters")
}

func TestResponseAgentSynthesize_FailurePropagates(t *testing.T) {
	wantErr := gateway.NewError(gateway.KindUnavailable, "down", nil)
	caller := &capturingCaller{err: wantErr}
	agent := NewResponseAgent(caller)

	_, err := agent.Synthesize(context.Background(), core.WorkingRecord{}, nil)

	assert.True(t, errors.Is(err, wantErr) || strings.Contains(err.Error(), "down"))
}

func TestAnalysisErrorFormat(t *testing.T) {
	err := &AnalysisError{Source: core.SourceImage, Err: fmt.Errorf("boom")}
	assert.Equal(t, "image analysis failed: boom", err.Error())
}

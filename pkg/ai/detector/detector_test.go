package detector

import (
	"context"
	"errors"
	"testing"

	"decision-ledger-be/internal/pkg/logger"
	"decision-ledger-be/pkg/ai"
	"decision-ledger-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	reply   string
	err     error
	history []llm.Message
	opts    *llm.Options
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.history = history
	f.opts = llm.Apply(llm.Options{}, options...)
	return f.reply, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

var thread = []ai.Turn{
	{Speaker: "U1", Timestamp: "1700000000.000100", Text: "Should we move sessions to Redis?"},
	{Speaker: "U2", Timestamp: "1700000010.000100", Text: "Yes, let's do it. I'll own the migration."},
}

func TestDetectParsesFencedJSON(t *testing.T) {
	provider := &fakeLLM{reply: "```json\n{\"is_decision\": true, \"confidence\": 0.92, \"reasoning\": \"explicit agreement\"}\n```"}
	d := New(provider, logger.NewNopLogger())

	got := d.Detect(context.Background(), thread)

	assert.True(t, got.IsDecision)
	assert.InDelta(t, 0.92, got.Confidence, 1e-9)
	assert.Equal(t, "explicit agreement", got.Reasoning)

	require.Len(t, provider.history, 1)
	assert.Contains(t, provider.history[0].Content, "[1700000000.000100] U1: Should we move sessions to Redis?")
	assert.Equal(t, systemPrompt, provider.opts.System)
}

func TestDetectClampsConfidence(t *testing.T) {
	d := New(&fakeLLM{reply: `{"is_decision": "true", "confidence": 3}`}, logger.NewNopLogger())
	got := d.Detect(context.Background(), thread)
	assert.True(t, got.IsDecision)
	assert.Equal(t, 1.0, got.Confidence)

	d = New(&fakeLLM{reply: `{"is_decision": true, "confidence": -0.5}`}, logger.NewNopLogger())
	assert.Equal(t, 0.0, d.Detect(context.Background(), thread).Confidence)
}

func TestDetectDegradesToNoDecision(t *testing.T) {
	tests := []struct {
		name    string
		llm     *fakeLLM
		turns   []ai.Turn
		wantMsg string
	}{
		{"empty conversation", &fakeLLM{}, nil, "No messages provided"},
		{"provider error", &fakeLLM{err: errors.New("timeout")}, thread, "Error: timeout"},
		{"prose answer", &fakeLLM{reply: "I think so!"}, thread, "Failed to parse response"},
		{"nan confidence", &fakeLLM{reply: `{"is_decision": true, "confidence": "NaN"}`}, thread, "Invalid confidence"},
		{"infinite confidence", &fakeLLM{reply: `{"is_decision": true, "confidence": "+Inf"}`}, thread, "Invalid confidence"},
		{"missing confidence", &fakeLLM{reply: `{"is_decision": true}`}, thread, "Invalid confidence"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.llm, logger.NewNopLogger()).Detect(context.Background(), tt.turns)
			assert.False(t, got.IsDecision)
			assert.Zero(t, got.Confidence)
			assert.Contains(t, got.Reasoning, tt.wantMsg)
		})
	}
}

func TestDetectWithHuddlePrompt(t *testing.T) {
	provider := &fakeLLM{reply: `{"is_decision": false, "confidence": 0.1}`}
	New(provider, logger.NewNopLogger()).DetectWithPrompt(context.Background(), thread, HuddlePrompt)
	assert.Equal(t, HuddlePrompt, provider.opts.System)
}

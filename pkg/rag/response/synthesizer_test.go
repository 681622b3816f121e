package response

import (
	"context"
	"errors"
	"testing"

	"decision-ledger-be/internal/pkg/logger"
	"decision-ledger-be/pkg/llm"
	"decision-ledger-be/pkg/rag/prompt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	reply   string
	err     error
	history []llm.Message
	system  string
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.history = history
	f.system = llm.Apply(llm.Options{}, options...).System
	return f.reply, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, p string, options ...llm.Option) (string, error) {
	return f.reply, f.err
}

func TestSynthesize(t *testing.T) {
	provider := &fakeLLM{reply: "  We chose *Redis* for sessions.  "}
	s := NewSynthesizer(provider, logger.NewNopLogger())

	got := s.Synthesize(context.Background(), "why redis?", []prompt.DecisionContext{{Title: "Move sessions to Redis"}})

	assert.Equal(t, "We chose *Redis* for sessions.", got)
	assert.Equal(t, prompt.SynthesisSystemPrompt, provider.system)
	require.Len(t, provider.history, 1)
	assert.Contains(t, provider.history[0].Content, "Decision #1: Move sessions to Redis")
	assert.Contains(t, provider.history[0].Content, "Question: why redis?")
}

func TestSynthesizeApologizes(t *testing.T) {
	for name, provider := range map[string]*fakeLLM{
		"provider error":   {err: errors.New("503")},
		"empty completion": {reply: "   "},
	} {
		t.Run(name, func(t *testing.T) {
			got := NewSynthesizer(provider, logger.NewNopLogger()).Synthesize(context.Background(), "q", nil)
			assert.Equal(t, Apology, got)
		})
	}
}

package response

import (
	"context"
	"strings"
	"time"

	"decision-ledger-be/internal/pkg/logger"
	"decision-ledger-be/pkg/llm"
	"decision-ledger-be/pkg/rag/prompt"
)

const Apology = "Sorry, I encountered an error while searching decisions. Please try again."

type ISynthesizer interface {
	Synthesize(ctx context.Context, query string, decisions []prompt.DecisionContext) string
}

// Synthesizer answers a question from retrieved decisions
type Synthesizer struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
	timeout     time.Duration
}

func NewSynthesizer(llmProvider llm.LLMProvider, log logger.ILogger) *Synthesizer {
	return &Synthesizer{llmProvider: llmProvider, logger: log, timeout: llm.DefaultTimeout}
}

func (s *Synthesizer) Synthesize(ctx context.Context, query string, decisions []prompt.DecisionContext) string {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	userMessage := prompt.NewDecisionBuilder(query, decisions).Build()
	answer, err := s.llmProvider.Chat(ctx,
		[]llm.Message{{Role: "user", Content: userMessage}},
		llm.WithSystem(prompt.SynthesisSystemPrompt),
		llm.WithMaxTokens(1024),
	)
	if err != nil {
		s.logger.Error("SYNTHESIZER", "Answer generation failed", map[string]interface{}{"error": err.Error()})
		return Apology
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		s.logger.Warn("SYNTHESIZER", "Empty completion", nil)
		return Apology
	}
	return answer
}

// Package detector classifies whether a conversation contains a committed
// engineering decision.
package detector

import (
	"context"
	"fmt"
	"time"

	"decision-ledger-be/internal/pkg/logger"
	"decision-ledger-be/pkg/ai"
	"decision-ledger-be/pkg/llm"
)

type Result struct {
	IsDecision bool    `json:"is_decision"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

type IDetector interface {
	Detect(ctx context.Context, turns []ai.Turn) Result
	DetectWithPrompt(ctx context.Context, turns []ai.Turn, prompt string) Result
}

type Detector struct {
	provider llm.LLMProvider
	logger   logger.ILogger
	timeout  time.Duration
}

func New(provider llm.LLMProvider, log logger.ILogger) *Detector {
	return &Detector{provider: provider, logger: log, timeout: llm.DefaultTimeout}
}

func noDecision(reason string) Result {
	return Result{IsDecision: false, Confidence: 0, Reasoning: reason}
}

func (d *Detector) Detect(ctx context.Context, turns []ai.Turn) Result {
	return d.DetectWithPrompt(ctx, turns, systemPrompt)
}

// DetectWithPrompt never fails; any provider or parse problem yields the
// no-decision shape with the cause in Reasoning.
func (d *Detector) DetectWithPrompt(ctx context.Context, turns []ai.Turn, prompt string) Result {
	if len(turns) == 0 {
		return noDecision("No messages provided")
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	raw, err := d.provider.Chat(ctx,
		[]llm.Message{{Role: "user", Content: ai.FormatConversation(turns)}},
		llm.WithSystem(prompt),
		llm.WithMaxTokens(512),
		llm.WithTemperature(0),
	)
	if err != nil {
		d.logger.Error("DETECTOR", "Detection call failed", map[string]interface{}{"error": err.Error()})
		return noDecision(fmt.Sprintf("Error: %v", err))
	}

	obj, err := ai.DecodeObject(raw)
	if err != nil {
		d.logger.Warn("DETECTOR", "Unparseable detection response", map[string]interface{}{
			"raw": ai.Truncate(raw, 200),
		})
		return noDecision(fmt.Sprintf("Failed to parse response: %s", ai.Truncate(raw, 100)))
	}

	confidence, ok := ai.Number(obj, "confidence")
	if !ok {
		d.logger.Warn("DETECTOR", "Detection response has no usable confidence", map[string]interface{}{
			"raw": ai.Truncate(raw, 200),
		})
		return noDecision("Invalid confidence in response")
	}

	reasoning := ""
	if r := ai.String(obj, "reasoning"); r != nil {
		reasoning = *r
	}
	return Result{
		IsDecision: ai.Bool(obj, "is_decision"),
		Confidence: clamp(confidence),
		Reasoning:  reasoning,
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

package factory

import (
	"fmt"
	"log"
	"time"

	"decision-ledger-be/pkg/llm"
	"decision-ledger-be/pkg/llm/anthropic"
	"decision-ledger-be/pkg/llm/huggingface"
	"decision-ledger-be/pkg/llm/ollama"
	"decision-ledger-be/pkg/retry"
)

type Config struct {
	Provider      string
	Model         string
	BaseURL       string
	APIKey        string
	RatePerSecond float64
}

// NewLLMProvider builds the configured backend wrapped in the shared
// rate limiter and retry policy.
func NewLLMProvider(cfg Config) (llm.LLMProvider, error) {
	var base llm.LLMProvider
	switch cfg.Provider {
	case "anthropic", "":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic provider requires an API key")
		}
		base = anthropic.NewProvider(cfg.APIKey, cfg.BaseURL, cfg.Model)
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		base = ollama.NewOllamaProvider(baseURL, cfg.Model)
	case "huggingface":
		base = huggingface.NewHuggingFaceProvider(cfg.APIKey, cfg.BaseURL, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}

	if cfg.RatePerSecond > 0 {
		base = llm.NewLimited(base, cfg.RatePerSecond, 1)
	}
	return llm.NewRetrying(base, retry.DefaultPolicy(), func(err error, wait time.Duration) {
		log.Printf("[WARN] LLM call failed, retrying in %s: %v", wait, err)
	}), nil
}

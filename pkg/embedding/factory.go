package embedding

import "fmt"

type FactoryConfig struct {
	Provider      string
	Model         string
	VoyageKey     string
	GeminiKey     string
	JinaKey       string
	OllamaBaseURL string
}

// NewProvider picks the configured backend.
func NewProvider(cfg FactoryConfig) (EmbeddingProvider, error) {
	switch cfg.Provider {
	case "voyage", "":
		if cfg.VoyageKey == "" {
			return nil, fmt.Errorf("voyage embedding provider requires an API key")
		}
		return NewVoyageProvider(cfg.VoyageKey, cfg.Model), nil
	case "gemini":
		return NewGeminiProvider(cfg.GeminiKey), nil
	case "jina":
		return NewJinaProvider(cfg.JinaKey), nil
	case "ollama":
		return NewOllamaProvider(cfg.OllamaBaseURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

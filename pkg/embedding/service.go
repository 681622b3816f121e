package embedding

import (
	"context"
	"time"

	"decision-ledger-be/internal/pkg/logger"
	"decision-ledger-be/pkg/retry"
)

const embedTimeout = 30 * time.Second

// Embedder is what the pipeline and the retrieval engine depend on.
type Embedder interface {
	EmbedDocument(ctx context.Context, text string) []float32
	EmbedQuery(ctx context.Context, text string) []float32
}

// Service never fails: provider errors are logged and an empty slice is
// returned so callers can skip the dependent step.
type Service struct {
	provider EmbeddingProvider
	policy   retry.Policy
	logger   logger.ILogger
}

func NewService(provider EmbeddingProvider, policy retry.Policy, log logger.ILogger) *Service {
	return &Service{provider: provider, policy: policy, logger: log}
}

func (s *Service) EmbedDocument(ctx context.Context, text string) []float32 {
	return s.embed(ctx, text, IntentDocument)
}

func (s *Service) EmbedQuery(ctx context.Context, text string) []float32 {
	return s.embed(ctx, text, IntentQuery)
}

func (s *Service) embed(ctx context.Context, text string, intent Intent) []float32 {
	if text == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, embedTimeout)
	defer cancel()

	vec, err := retry.Do(ctx, s.policy, func() ([]float32, error) {
		return s.provider.Generate(ctx, text, intent)
	}, nil)
	if err != nil {
		s.logger.Error("EMBEDDING", "Embedding generation failed", map[string]interface{}{
			"intent": string(intent),
			"error":  err.Error(),
		})
		return nil
	}
	return vec
}

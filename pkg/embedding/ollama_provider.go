package embedding

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// OllamaProvider implements EmbeddingProvider for local Ollama models (e.g., nomic-embed-text)
type OllamaProvider struct {
	BaseURL string
	Model   string
	client  *http.Client
}

func NewOllamaProvider(baseURL string, model string) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	return &OllamaProvider{
		BaseURL: baseURL,
		Model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type ollamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Generate ignores intent. The vector is normalized because pgvector's
// cosine operator is used for ranking.
func (p *OllamaProvider) Generate(ctx context.Context, text string, _ Intent) ([]float32, error) {
	var out ollamaEmbeddingResponse
	err := postJSON(ctx, p.client, "ollama", fmt.Sprintf("%s/api/embeddings", p.BaseURL), nil,
		ollamaEmbeddingRequest{Model: p.Model, Prompt: text},
		&out,
	)
	if err != nil {
		return nil, err
	}

	values := make([]float32, len(out.Embedding))
	for i, v := range out.Embedding {
		values[i] = float32(v)
	}
	return normalizeVector(values), nil
}

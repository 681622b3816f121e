package embedding

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

type GeminiProvider struct {
	ApiKey string
	Model  string
	client *http.Client
}

func NewGeminiProvider(apiKey string) *GeminiProvider {
	return &GeminiProvider{
		ApiKey: apiKey,
		Model:  "text-embedding-004",
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Model    string        `json:"model"`
	Content  geminiContent `json:"content"`
	TaskType string        `json:"task_type,omitempty"`
}

type geminiResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

func (p *GeminiProvider) Generate(ctx context.Context, text string, intent Intent) ([]float32, error) {
	taskType := "RETRIEVAL_DOCUMENT"
	if intent == IntentQuery {
		taskType = "RETRIEVAL_QUERY"
	}

	endpoint := fmt.Sprintf(
		"https://generativelanguage.googleapis.com/v1/models/%s:embedContent",
		p.Model,
	)

	var out geminiResponse
	err := postJSON(ctx, p.client, "gemini", endpoint,
		map[string]string{"x-goog-api-key": p.ApiKey},
		geminiRequest{
			Model:    p.Model,
			Content:  geminiContent{Parts: []geminiPart{{Text: text}}},
			TaskType: taskType,
		},
		&out,
	)
	if err != nil {
		return nil, err
	}
	return out.Embedding.Values, nil
}

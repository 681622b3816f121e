package embedding

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const voyageEndpoint = "https://api.voyageai.com/v1/embeddings"

type VoyageProvider struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

func NewVoyageProvider(apiKey, model string) *VoyageProvider {
	if model == "" {
		model = "voyage-3"
	}
	return &VoyageProvider{
		apiKey:   apiKey,
		model:    model,
		endpoint: voyageEndpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// WithEndpoint points the provider at another base, used by tests.
func (p *VoyageProvider) WithEndpoint(url string) *VoyageProvider {
	p.endpoint = url
	return p
}

type voyageRequest struct {
	Input     []string `json:"input"`
	Model     string   `json:"model"`
	InputType string   `json:"input_type"`
}

type voyageResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

func (p *VoyageProvider) Generate(ctx context.Context, text string, intent Intent) ([]float32, error) {
	inputType := "document"
	if intent == IntentQuery {
		inputType = "query"
	}

	var out voyageResponse
	err := postJSON(ctx, p.client, "voyage", p.endpoint,
		map[string]string{"Authorization": "Bearer " + p.apiKey},
		voyageRequest{Input: []string{text}, Model: p.model, InputType: inputType},
		&out,
	)
	if err != nil {
		return nil, err
	}
	if len(out.Data) == 0 {
		return nil, fmt.Errorf("empty embeddings from voyage api")
	}
	return out.Data[0].Embedding, nil
}

package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"decision-ledger-be/pkg/retry"
)

// postJSON sends payload and decodes a 2xx body into out. Non-2xx answers
// come back classified for the retry loop.
func postJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return retry.Permanent(fmt.Errorf("marshal %s request: %w", provider, err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return retry.Permanent(fmt.Errorf("create %s request: %w", provider, err))
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", provider, err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", provider, err)
	}
	if err := retry.ClassifyResponse(provider, res, resBody); err != nil {
		return err
	}
	if err := json.Unmarshal(resBody, out); err != nil {
		return retry.Permanent(fmt.Errorf("decode %s response: %w", provider, err))
	}
	return nil
}

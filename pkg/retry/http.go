package retry

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// StatusError is a non-2xx HTTP answer from a provider.
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Code, e.Body)
}

// ClassifyResponse turns a provider response into nil, a retriable error,
// a rate-limit wait or a permanent error.
func ClassifyResponse(provider string, resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	text := string(body)
	if len(text) > 300 {
		text = text[:300]
	}
	statusErr := &StatusError{Provider: provider, Code: resp.StatusCode, Body: text}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", statusErr, After(ParseRetryAfter(resp.Header.Get("Retry-After"), time.Second)))
	case resp.StatusCode >= 500:
		return statusErr
	default:
		return Permanent(statusErr)
	}
}

// ParseRetryAfter reads the delta-seconds form of Retry-After.
func ParseRetryAfter(header string, fallback time.Duration) time.Duration {
	if header == "" {
		return fallback
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}

package llm

import (
	"context"
	"fmt"
	"time"

	"decision-ledger-be/pkg/retry"

	"golang.org/x/time/rate"
)

// Limited throttles calls through a token bucket before they reach the
// wrapped provider.
type Limited struct {
	next    LLMProvider
	limiter *rate.Limiter
}

func NewLimited(next LLMProvider, perSecond float64, burst int) *Limited {
	if burst <= 0 {
		burst = 1
	}
	return &Limited{next: next, limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (l *Limited) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter error: %w", err)
	}
	return l.next.Chat(ctx, history, options...)
}

func (l *Limited) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	return l.Chat(ctx, []Message{{Role: "user", Content: prompt}}, options...)
}

// Retrying applies the shared retry policy around every call.
type Retrying struct {
	next    LLMProvider
	policy  retry.Policy
	onRetry retry.Notify
}

func NewRetrying(next LLMProvider, policy retry.Policy, onRetry retry.Notify) *Retrying {
	return &Retrying{next: next, policy: policy, onRetry: onRetry}
}

func (r *Retrying) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	return retry.Do(ctx, r.policy, func() (string, error) {
		return r.next.Chat(ctx, history, options...)
	}, r.onRetry)
}

func (r *Retrying) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	return r.Chat(ctx, []Message{{Role: "user", Content: prompt}}, options...)
}

// DefaultTimeout bounds a single AI call.
const DefaultTimeout = 30 * time.Second

package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"decision-ledger-be/pkg/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedProvider struct {
	errs  []error
	calls int
	last  []Message
}

func (p *scriptedProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	p.calls++
	p.last = history
	if len(p.errs) > 0 {
		err := p.errs[0]
		p.errs = p.errs[1:]
		return "", err
	}
	return "done", nil
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	return p.Chat(ctx, []Message{{Role: "user", Content: prompt}}, options...)
}

var fastPolicy = retry.Policy{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}

func TestRetryingRecoversFromTransientErrors(t *testing.T) {
	next := &scriptedProvider{errs: []error{errors.New("reset"), errors.New("reset")}}
	var waits int
	p := NewRetrying(next, fastPolicy, func(error, time.Duration) { waits++ })

	out, err := p.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "done", out)
	assert.Equal(t, 3, next.calls)
	assert.Equal(t, 2, waits)
}

func TestRetryingStopsOnPermanentError(t *testing.T) {
	next := &scriptedProvider{errs: []error{retry.Permanent(errors.New("invalid model"))}}
	p := NewRetrying(next, fastPolicy, nil)

	_, err := p.Generate(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid model")
	assert.Equal(t, 1, next.calls)
}

func TestLimitedHonoursContext(t *testing.T) {
	next := &scriptedProvider{}
	p := NewLimited(next, 0.001, 1)

	_, err := p.Generate(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = p.Generate(ctx, "second")
	require.Error(t, err)
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, []Message{{Role: "user", Content: "first"}}, next.last)
}

func TestWithSystemMessage(t *testing.T) {
	history := []Message{{Role: "user", Content: "q"}}
	assert.Equal(t, history, WithSystemMessage(history, ""))
	assert.Equal(t, []Message{{Role: "system", Content: "s"}, {Role: "user", Content: "q"}}, WithSystemMessage(history, "s"))
}

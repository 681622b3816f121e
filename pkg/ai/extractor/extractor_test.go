package extractor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"decision-ledger-be/internal/pkg/logger"
	"decision-ledger-be/pkg/ai"
	"decision-ledger-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	reply string
	err   error
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return f.reply, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.reply, f.err
}

var thread = []ai.Turn{{Speaker: "U1", Timestamp: "1.0", Text: "We'll go with Postgres for the audit log, see PLAT-42"}}

func TestExtractNormalizesFields(t *testing.T) {
	reply := `{
		"title": "Store audit log in Postgres",
		"summary": "Audit events go to a partitioned Postgres table.",
		"rationale": "  ",
		"owner_slack_id": "U1",
		"owner_name": null,
		"tags": ["Postgres", "audit", "postgres", ""],
		"category": "Schema",
		"impact_area": ["Compliance"],
		"referenced_tickets": ["PLAT-42"],
		"referenced_prs": [],
		"referenced_urls": ["https://wiki.example.com/audit"]
	}`
	got := New(&fakeLLM{reply: reply}, logger.NewNopLogger()).Extract(context.Background(), thread)

	assert.Equal(t, "Store audit log in Postgres", got.Title)
	require.NotNil(t, got.Summary)
	assert.Nil(t, got.Rationale)
	require.NotNil(t, got.OwnerID)
	assert.Equal(t, "U1", *got.OwnerID)
	assert.Nil(t, got.OwnerName)
	assert.Equal(t, []string{"postgres", "audit"}, got.Tags)
	require.NotNil(t, got.Category)
	assert.Equal(t, "schema", *got.Category)
	assert.Equal(t, []string{"compliance"}, got.ImpactAreas)
	assert.Equal(t, []string{"PLAT-42"}, got.ReferencedTickets)
	assert.Empty(t, got.ReferencedPRs)
	assert.Equal(t, []string{"https://wiki.example.com/audit"}, got.ReferencedURLs)
}

func TestExtractDropsUnknownCategoryAndTruncatesTitle(t *testing.T) {
	long := strings.Repeat("x", 250)
	got := New(&fakeLLM{reply: `{"title": "` + long + `", "category": "vibes"}`}, logger.NewNopLogger()).
		Extract(context.Background(), thread)

	assert.Len(t, got.Title, maxTitleLength)
	assert.Nil(t, got.Category)
	assert.NotNil(t, got.Tags)
}

func TestExtractFallsBackToEmpty(t *testing.T) {
	for name, provider := range map[string]*fakeLLM{
		"provider error": {err: errors.New("overloaded")},
		"bad json":       {reply: "Sure! Here's the decision."},
	} {
		t.Run(name, func(t *testing.T) {
			got := New(provider, logger.NewNopLogger()).Extract(context.Background(), thread)
			assert.Equal(t, Empty(), got)
			assert.Equal(t, DefaultTitle, got.Title)
		})
	}

	assert.Equal(t, Empty(), New(&fakeLLM{}, logger.NewNopLogger()).Extract(context.Background(), nil))
}

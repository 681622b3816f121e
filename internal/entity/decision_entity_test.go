package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecisionStatusTransitions(t *testing.T) {
	tests := []struct {
		from DecisionStatus
		to   DecisionStatus
		want bool
	}{
		{DecisionStatusPending, DecisionStatusActive, true},
		{DecisionStatusPending, DecisionStatusIgnored, true},
		{DecisionStatusPending, DecisionStatusExpired, true},
		{DecisionStatusPending, DecisionStatusDeleted, false},
		{DecisionStatusActive, DecisionStatusDeleted, true},
		{DecisionStatusActive, DecisionStatusIgnored, false},
		{DecisionStatusIgnored, DecisionStatusActive, false},
		{DecisionStatusExpired, DecisionStatusActive, false},
		{DecisionStatusDeleted, DecisionStatusActive, false},
		{DecisionStatusDeleted, DecisionStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestSourcesFor(t *testing.T) {
	assert.ElementsMatch(t,
		[]DecisionStatus{DecisionStatusActive, DecisionStatusIgnored, DecisionStatusExpired},
		SourcesFor(DecisionStatusDeleted),
	)
	assert.Equal(t, []DecisionStatus{DecisionStatusPending}, SourcesFor(DecisionStatusActive))
	assert.Empty(t, SourcesFor(DecisionStatusPending))
}

func TestParseCategory(t *testing.T) {
	got := ParseCategory("  Architecture ")
	if assert.NotNil(t, got) {
		assert.Equal(t, "architecture", *got)
	}
	assert.Nil(t, ParseCategory("gossip"))
	assert.Nil(t, ParseCategory(""))
}

func TestNormalizeLabels(t *testing.T) {
	got := NormalizeLabels([]string{" Postgres", "postgres", "", "Auth ", "AUTH", "cache"})
	assert.Equal(t, []string{"postgres", "auth", "cache"}, got)
}

func TestDecisionEmbeddingText(t *testing.T) {
	summary := "Use pgvector for search"
	empty := ""
	d := &Decision{Title: "Adopt pgvector", Summary: &summary, Rationale: &empty}
	assert.Equal(t, "Adopt pgvector\nUse pgvector for search", d.EmbeddingText())

	assert.Equal(t, "Only title", (&Decision{Title: "Only title"}).EmbeddingText())
}

func TestDecisionHasTag(t *testing.T) {
	d := &Decision{Tags: []string{"postgres", "search"}}
	assert.True(t, d.HasTag("Postgres"))
	assert.False(t, d.HasTag("redis"))
}

func TestRawMessageAnchorTs(t *testing.T) {
	thread := "1700000000.000100"
	reply := &RawMessage{MessageTs: "1700000050.000200", ThreadTs: &thread}
	assert.Equal(t, thread, reply.AnchorTs())

	root := &RawMessage{MessageTs: "1700000000.000100"}
	assert.Equal(t, "1700000000.000100", root.AnchorTs())
}

package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJiraKeys(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"none", "we agreed to ship it", []string{}},
		{"single", "tracked in PLAT-123.", []string{"PLAT-123"}},
		{"dedup keeps order", "OPS-9 then PLAT-1 and OPS-9 again", []string{"OPS-9", "PLAT-1"}},
		{"lowercase ignored", "see plat-12", []string{}},
		{"digits in project", "S3-44 migration", []string{"S3-44"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJiraKeys(tt.text))
		})
	}
}

func TestExtractPRRefs(t *testing.T) {
	text := "See https://github.com/acme/api/pull/42 and #7, also #7 and (#9)"
	refs := ExtractPRRefs(text)

	assert.Equal(t, []PRRef{
		{Owner: "acme", Repo: "api", Number: 42, URL: "https://github.com/acme/api/pull/42"},
		{Number: 7},
		{Number: 9},
	}, refs)
	assert.Equal(t, "acme/api#42", refs[0].Key())
	assert.Equal(t, "#7", refs[1].Key())
}

func TestExtractPRRefsIgnoresAnchors(t *testing.T) {
	assert.Empty(t, ExtractPRRefs("docs at https://wiki.example.com/page#12"))
}

func TestIsPullRequestURL(t *testing.T) {
	assert.True(t, IsPullRequestURL("https://github.com/acme/api/pull/42"))
	assert.False(t, IsPullRequestURL("https://github.com/acme/api/issues/42"))
	assert.False(t, IsPullRequestURL("https://example.com"))
}

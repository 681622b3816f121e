package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatConversation(t *testing.T) {
	got := FormatConversation([]Turn{
		{Speaker: "U1", Timestamp: "1.0", Text: "hello"},
		{Timestamp: "2.0", Text: "anyone?"},
	})
	assert.Equal(t, "[1.0] U1: hello\n[2.0] unknown: anyone?", got)
}

func TestDecodeObject(t *testing.T) {
	obj, err := DecodeObject("```json\n{\"a\": 1}\n```")
	require.NoError(t, err)
	assert.Equal(t, 1.0, obj["a"])

	_, err = DecodeObject("[1, 2]")
	assert.Error(t, err)

	_, err = DecodeObject("null")
	assert.Error(t, err)
}

func TestLooseCoercion(t *testing.T) {
	obj := map[string]interface{}{
		"flag":   "true",
		"num":    "0.75",
		"blank":  "   ",
		"number": 42.0,
		"list":   []interface{}{" a ", "", 3.0, nil},
	}

	assert.True(t, Bool(obj, "flag"))
	assert.False(t, Bool(obj, "missing"))
	assert.Equal(t, 0.75, Float(obj, "num"))
	for _, raw := range []interface{}{"NaN", "-Inf", "abc", true} {
		f, ok := Number(map[string]interface{}{"v": raw}, "v")
		assert.False(t, ok, "%v", raw)
		assert.Zero(t, f)
	}
	assert.Nil(t, String(obj, "blank"))
	if s := String(obj, "number"); assert.NotNil(t, s) {
		assert.Equal(t, "42", *s)
	}
	assert.Equal(t, []string{"a", "3"}, Strings(obj, "list"))
	assert.Equal(t, []string{}, Strings(obj, "missing"))
}

func TestTruncateCountsRunes(t *testing.T) {
	assert.Equal(t, "héll", Truncate("héllo", 4))
	assert.Equal(t, "hi", Truncate("hi", 10))
}

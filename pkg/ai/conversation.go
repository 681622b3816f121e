// Package ai holds the model-facing helpers shared by detection and
// extraction.
package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Turn is one message of a conversation handed to a model.
type Turn struct {
	Speaker   string
	Timestamp string
	Text      string
}

// FormatConversation renders turns as "[ts] speaker: text" lines.
func FormatConversation(turns []Turn) string {
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		speaker := t.Speaker
		if speaker == "" {
			speaker = "unknown"
		}
		lines = append(lines, fmt.Sprintf("[%s] %s: %s", t.Timestamp, speaker, t.Text))
	}
	return strings.Join(lines, "\n")
}

var fencePattern = regexp.MustCompile("(?s)^```(?:json)?\\s*\\n?(.*?)\\n?```$")

// StripCodeFence removes a surrounding markdown fence if the model added one.
func StripCodeFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if m := fencePattern.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return raw
}

// DecodeObject parses a model completion into a loose JSON object.
func DecodeObject(raw string) (map[string]interface{}, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(StripCodeFence(raw)), &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("response is not a JSON object")
	}
	return obj, nil
}

func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// The helpers below coerce loosely typed model output.

func Bool(obj map[string]interface{}, key string) bool {
	switch v := obj[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	case float64:
		return v != 0
	}
	return false
}

func Float(obj map[string]interface{}, key string) float64 {
	f, _ := Number(obj, key)
	return f
}

// Number is Float that also reports whether key held a finite number.
// NaN and infinities count as absent.
func Number(obj map[string]interface{}, key string) (float64, bool) {
	var f float64
	switch v := obj[key].(type) {
	case float64:
		f = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// String returns nil for missing, null or blank values.
func String(obj map[string]interface{}, key string) *string {
	v, ok := obj[key]
	if !ok || v == nil {
		return nil
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(t)
	default:
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func Strings(obj map[string]interface{}, key string) []string {
	items, ok := obj[key].([]interface{})
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch t := item.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				out = append(out, s)
			}
		case float64:
			out = append(out, strconv.FormatFloat(t, 'f', -1, 64))
		}
	}
	return out
}

package slack

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostMessageSendsJSON(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = w.Write([]byte(`{"ok": true, "channel": "C1", "ts": "1700000000.000200"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	resp, err := c.PostMessage(context.Background(), "xoxb-test", "C1", "hello", []Block{section("hi")})

	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, "1700000000.000200", resp.TS)
	assert.Equal(t, "/chat.postMessage", gotPath)
	assert.Equal(t, "Bearer xoxb-test", gotAuth)
	assert.Equal(t, "C1", gotBody["channel"])
	assert.Len(t, gotBody["blocks"], 1)
}

func TestConversationHistoryQuery(t *testing.T) {
	var query map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = map[string]string{
			"channel": r.URL.Query().Get("channel"),
			"oldest":  r.URL.Query().Get("oldest"),
			"cursor":  r.URL.Query().Get("cursor"),
			"limit":   r.URL.Query().Get("limit"),
		}
		_, _ = w.Write([]byte(`{
			"ok": true,
			"messages": [{"user": "U1", "text": "hi", "ts": "1.0", "reply_count": 2}, {"bot_id": "B1", "text": "beep", "ts": "2.0"}],
			"has_more": true,
			"response_metadata": {"next_cursor": "dXNlcjpVMDYxTkZUVDI="}
		}`))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL, nil).ConversationHistory(context.Background(), "t", "C1", "1690000000.000000", "abc", 200)

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"channel": "C1", "oldest": "1690000000.000000", "cursor": "abc", "limit": "200"}, query)
	require.Len(t, resp.Messages, 2)
	assert.True(t, resp.Messages[0].IsHuman())
	assert.Equal(t, 2, resp.Messages[0].ReplyCount)
	assert.False(t, resp.Messages[1].IsHuman())
	assert.Equal(t, "dXNlcjpVMDYxTkZUVDI=", resp.ResponseMetadata.NextCursor)
}

func TestAPIErrorIsNotAGoError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok": false, "error": "channel_not_found"}`))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL, nil).UpdateMessage(context.Background(), "t", "C404", "1.0", "x", nil)
	require.NoError(t, err)
	assert.False(t, resp.OK)
	assert.Equal(t, "channel_not_found", resp.Error)
}

func TestRateLimitedRetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL, nil).ConversationReplies(context.Background(), "t", "C1", "1.0", 50)
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestRateLimitedGivesUp(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL, nil).ConversationReplies(context.Background(), "t", "C1", "1.0", 50)
	require.NoError(t, err)
	assert.False(t, resp.OK)
	assert.Equal(t, ErrMaxRetries, resp.Error)
	assert.Equal(t, int32(rateLimitedRetries+1), atomic.LoadInt32(&calls))
}

func TestRespondToURL(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := NewClient("", nil).RespondToURL(context.Background(), srv.URL, map[string]interface{}{"response_type": "ephemeral", "text": "done"})
	require.NoError(t, err)
	assert.Equal(t, "ephemeral", got["response_type"])

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer failing.Close()
	assert.Error(t, NewClient("", nil).RespondToURL(context.Background(), failing.URL, map[string]string{}))
}

type logEntry struct {
	level, message string
	details        map[string]interface{}
}

type recordingLogger struct {
	entries []logEntry
}

func (l *recordingLogger) record(level, message string, details map[string]interface{}) {
	l.entries = append(l.entries, logEntry{level: level, message: message, details: details})
}

func (l *recordingLogger) Debug(_, message string, details map[string]interface{}) {
	l.record("debug", message, details)
}
func (l *recordingLogger) Info(_, message string, details map[string]interface{}) {
	l.record("info", message, details)
}
func (l *recordingLogger) Warn(_, message string, details map[string]interface{}) {
	l.record("warn", message, details)
}
func (l *recordingLogger) Error(_, message string, details map[string]interface{}) {
	l.record("error", message, details)
}
func (l *recordingLogger) Sync() error { return nil }

func TestClientLogsThroughInjectedLogger(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"ok": false, "error": "not_in_channel"}`))
	}))
	defer srv.Close()

	rec := &recordingLogger{}
	resp, err := NewClient(srv.URL, rec).PostMessage(context.Background(), "t", "C1", "hi", nil)
	require.NoError(t, err)
	assert.False(t, resp.OK)

	require.Len(t, rec.entries, 2)
	assert.Equal(t, "warn", rec.entries[0].level)
	assert.Equal(t, "chat.postMessage", rec.entries[0].details["method"])
	assert.Equal(t, "0s", rec.entries[0].details["retry_after"])
	assert.Equal(t, "error", rec.entries[1].level)
	assert.Equal(t, "not_in_channel", rec.entries[1].details["error"])
}

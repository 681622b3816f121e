// Package slack is a small Web API client for the calls the ledger makes.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"decision-ledger-be/internal/pkg/logger"
	"decision-ledger-be/pkg/retry"
)

const (
	DefaultBaseURL     = "https://slack.com/api"
	ErrMaxRetries      = "max_retries_exceeded"
	defaultRetryAfter  = time.Second
	requestTimeout     = 10 * time.Second
	rateLimitedRetries = 3
)

type Message struct {
	Type        string `json:"type"`
	User        string `json:"user"`
	BotID       string `json:"bot_id,omitempty"`
	Subtype     string `json:"subtype,omitempty"`
	Text        string `json:"text"`
	TS          string `json:"ts"`
	ThreadTS    string `json:"thread_ts,omitempty"`
	ReplyCount  int    `json:"reply_count,omitempty"`
	ClientMsgID string `json:"client_msg_id,omitempty"`
}

// IsHuman is false for bot posts and system subtypes (joins, edits...).
func (m Message) IsHuman() bool {
	return m.BotID == "" && m.Subtype == ""
}

type Response struct {
	OK               bool      `json:"ok"`
	Error            string    `json:"error,omitempty"`
	Channel          string    `json:"channel,omitempty"`
	TS               string    `json:"ts,omitempty"`
	Messages         []Message `json:"messages,omitempty"`
	HasMore          bool      `json:"has_more,omitempty"`
	ResponseMetadata struct {
		NextCursor string `json:"next_cursor"`
	} `json:"response_metadata"`
	User *struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		RealName string `json:"real_name"`
	} `json:"user,omitempty"`
}

// IClient is the messaging capability the pipeline depends on.
type IClient interface {
	PostMessage(ctx context.Context, token, channel, text string, blocks []Block) (*Response, error)
	UpdateMessage(ctx context.Context, token, channel, ts, text string, blocks []Block) (*Response, error)
	ConversationHistory(ctx context.Context, token, channel, oldest, cursor string, limit int) (*Response, error)
	ConversationReplies(ctx context.Context, token, channel, ts string, limit int) (*Response, error)
	OpenModal(ctx context.Context, token, triggerID string, view View) (*Response, error)
	RespondToURL(ctx context.Context, responseURL string, payload interface{}) error
}

type Client struct {
	baseURL string
	http    *http.Client
	policy  retry.Policy
	logger  logger.ILogger
}

var _ IClient = &Client{}

func NewClient(baseURL string, log logger.ILogger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Client{
		logger:  log,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
		policy: retry.Policy{
			MaxAttempts: rateLimitedRetries + 1,
		},
	}
}

// call sends one Web API request. A 429 sleeps for Retry-After and is tried
// again; once the budget is spent the caller gets ok=false with
// max_retries_exceeded instead of an error.
func (c *Client) call(ctx context.Context, method, token string, query url.Values, body interface{}) (*Response, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("marshal %s: %w", method, err)
		}
	}

	endpoint := c.baseURL + "/" + method
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	resp, err := retry.Do(ctx, c.policy, func() (*Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, retry.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		if body != nil {
			req.Header.Set("Content-Type", "application/json; charset=utf-8")
		}

		res, err := c.http.Do(req)
		if err != nil {
			return nil, retry.Permanent(fmt.Errorf("slack %s: %w", method, err))
		}
		defer res.Body.Close()

		raw, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, retry.Permanent(fmt.Errorf("read slack %s: %w", method, err))
		}

		if res.StatusCode == http.StatusTooManyRequests {
			wait := retry.ParseRetryAfter(res.Header.Get("Retry-After"), defaultRetryAfter)
			c.logger.Warn("SLACK", "Rate limited, retrying", map[string]interface{}{
				"method":      method,
				"retry_after": wait.String(),
			})
			return nil, fmt.Errorf("slack %s rate limited: %w", method, retry.After(wait))
		}

		var out Response
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, retry.Permanent(fmt.Errorf("decode slack %s (status %d): %w", method, res.StatusCode, err))
		}
		return &out, nil
	}, nil)
	if err != nil {
		if retry.IsRetryAfter(err) {
			return &Response{OK: false, Error: ErrMaxRetries}, nil
		}
		return nil, err
	}

	if !resp.OK {
		c.logger.Error("SLACK", "API error", map[string]interface{}{
			"method": method,
			"error":  resp.Error,
		})
	}
	return resp, nil
}

func (c *Client) PostMessage(ctx context.Context, token, channel, text string, blocks []Block) (*Response, error) {
	body := map[string]interface{}{"channel": channel, "text": text}
	if blocks != nil {
		body["blocks"] = blocks
	}
	return c.call(ctx, "chat.postMessage", token, nil, body)
}

func (c *Client) UpdateMessage(ctx context.Context, token, channel, ts, text string, blocks []Block) (*Response, error) {
	body := map[string]interface{}{"channel": channel, "ts": ts, "text": text}
	if blocks != nil {
		body["blocks"] = blocks
	}
	return c.call(ctx, "chat.update", token, nil, body)
}

func (c *Client) ConversationHistory(ctx context.Context, token, channel, oldest, cursor string, limit int) (*Response, error) {
	q := url.Values{}
	q.Set("channel", channel)
	q.Set("limit", strconv.Itoa(limit))
	if oldest != "" {
		q.Set("oldest", oldest)
	}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	return c.call(ctx, "conversations.history", token, q, nil)
}

func (c *Client) ConversationReplies(ctx context.Context, token, channel, ts string, limit int) (*Response, error) {
	q := url.Values{}
	q.Set("channel", channel)
	q.Set("ts", ts)
	q.Set("limit", strconv.Itoa(limit))
	return c.call(ctx, "conversations.replies", token, q, nil)
}

func (c *Client) UserInfo(ctx context.Context, token, userID string) (*Response, error) {
	q := url.Values{}
	q.Set("user", userID)
	return c.call(ctx, "users.info", token, q, nil)
}

func (c *Client) OpenModal(ctx context.Context, token, triggerID string, view View) (*Response, error) {
	return c.call(ctx, "views.open", token, nil, map[string]interface{}{
		"trigger_id": triggerID,
		"view":       view,
	})
}

// RespondToURL posts a delayed reply to a slash command's response_url.
func (c *Client) RespondToURL(ctx context.Context, responseURL string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, responseURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("respond to url: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return fmt.Errorf("respond to url: status %d", res.StatusCode)
	}
	return nil
}

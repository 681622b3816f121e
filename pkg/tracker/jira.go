package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"decision-ledger-be/pkg/retry"
)

type JiraIssue struct {
	Key      string
	Title    string
	Status   string
	Assignee string
	Project  string
	Type     string
	URL      string
}

type JiraClient struct {
	domain string
	email  string
	token  string
	scheme string
	client *http.Client
	policy retry.Policy
}

// NewJiraClient accepts a bare domain ("acme.atlassian.net") or one with
// an explicit scheme.
func NewJiraClient(domain, email, apiToken string) *JiraClient {
	scheme := "https"
	if strings.HasPrefix(domain, "http://") {
		scheme = "http"
	}
	domain = strings.TrimPrefix(strings.TrimPrefix(domain, "https://"), "http://")
	return &JiraClient{
		domain: strings.TrimSuffix(domain, "/"),
		email:  email,
		token:  apiToken,
		scheme: scheme,
		client: &http.Client{Timeout: 10 * time.Second},
		policy: retry.DefaultPolicy(),
	}
}

type jiraIssueResponse struct {
	Key    string `json:"key"`
	Fields struct {
		Summary string `json:"summary"`
		Status  *struct {
			Name string `json:"name"`
		} `json:"status"`
		Assignee *struct {
			DisplayName string `json:"displayName"`
		} `json:"assignee"`
		Project *struct {
			Key string `json:"key"`
		} `json:"project"`
		IssueType *struct {
			Name string `json:"name"`
		} `json:"issuetype"`
	} `json:"fields"`
}

// GetIssue fetches one issue. A 404 or other client error is permanent.
func (c *JiraClient) GetIssue(ctx context.Context, key string) (*JiraIssue, error) {
	endpoint := fmt.Sprintf("%s://%s/rest/api/3/issue/%s", c.scheme, c.domain, url.PathEscape(key))

	return retry.Do(ctx, c.policy, func() (*JiraIssue, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, retry.Permanent(err)
		}
		req.SetBasicAuth(c.email, c.token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("jira request failed: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if err := retry.ClassifyResponse("jira", resp, body); err != nil {
			return nil, err
		}

		var data jiraIssueResponse
		if err := json.Unmarshal(body, &data); err != nil {
			return nil, retry.Permanent(fmt.Errorf("decode jira issue: %w", err))
		}

		issue := &JiraIssue{
			Key:   data.Key,
			Title: data.Fields.Summary,
			URL:   fmt.Sprintf("%s://%s/browse/%s", c.scheme, c.domain, key),
		}
		if data.Fields.Status != nil {
			issue.Status = data.Fields.Status.Name
		}
		if data.Fields.Assignee != nil {
			issue.Assignee = data.Fields.Assignee.DisplayName
		}
		if data.Fields.Project != nil {
			issue.Project = data.Fields.Project.Key
		}
		if data.Fields.IssueType != nil {
			issue.Type = data.Fields.IssueType.Name
		}
		return issue, nil
	}, nil)
}

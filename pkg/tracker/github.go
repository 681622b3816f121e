package tracker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"decision-ledger-be/pkg/retry"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

type PullRequest struct {
	Number     int
	Title      string
	State      string
	Author     string
	URL        string
	Merged     bool
	BaseBranch string
}

type GitHubClient struct {
	gh     *github.Client
	policy retry.Policy
}

func NewGitHubClient(ctx context.Context, token string) (*GitHubClient, error) {
	if token == "" {
		return nil, fmt.Errorf("GitHub token not set")
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = 10 * time.Second
	return &GitHubClient{gh: github.NewClient(tc), policy: retry.DefaultPolicy()}, nil
}

// NewGitHubClientWith wraps an existing client, e.g. one pointed at a test server.
func NewGitHubClientWith(gh *github.Client) *GitHubClient {
	return &GitHubClient{gh: gh, policy: retry.DefaultPolicy()}
}

func (c *GitHubClient) GetPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error) {
	pr, err := retry.Do(ctx, c.policy, func() (*github.PullRequest, error) {
		pr, _, err := c.gh.PullRequests.Get(ctx, owner, repo, number)
		if err != nil {
			return nil, classifyGitHubError(err)
		}
		return pr, nil
	}, nil)
	if err != nil {
		return nil, err
	}

	out := &PullRequest{
		Number: pr.GetNumber(),
		Title:  pr.GetTitle(),
		State:  pr.GetState(),
		URL:    pr.GetHTMLURL(),
		Merged: pr.GetMerged(),
	}
	if pr.User != nil {
		out.Author = pr.User.GetLogin()
	}
	if pr.Base != nil {
		out.BaseBranch = pr.Base.GetRef()
	}
	return out, nil
}

func classifyGitHubError(err error) error {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		wait := time.Until(rateErr.Rate.Reset.Time)
		return fmt.Errorf("%w: %w", err, retry.After(wait))
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return fmt.Errorf("%w: %w", err, retry.After(abuseErr.GetRetryAfter()))
	}
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil && respErr.Response.StatusCode < http.StatusInternalServerError {
		return retry.Permanent(err)
	}
	return err
}

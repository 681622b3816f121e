package tracker

import "context"

type IssueLookup interface {
	GetIssue(ctx context.Context, key string) (*JiraIssue, error)
}

type PullRequestLookup interface {
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error)
}

// Factory builds per-workspace clients from that workspace's credentials.
type Factory interface {
	Jira(domain, email, token string) IssueLookup
	GitHub(ctx context.Context, token string) (PullRequestLookup, error)
}

type DefaultFactory struct{}

func (DefaultFactory) Jira(domain, email, token string) IssueLookup {
	return NewJiraClient(domain, email, token)
}

func (DefaultFactory) GitHub(ctx context.Context, token string) (PullRequestLookup, error) {
	return NewGitHubClient(ctx, token)
}

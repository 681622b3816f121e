package service

import (
	"context"
	"fmt"
	"strings"

	"decision-ledger-be/internal/entity"
	"decision-ledger-be/internal/repository/specification"
	"decision-ledger-be/pkg/tracker"

	"github.com/google/uuid"
)

func enrichmentText(d *entity.Decision) string {
	var parts []string
	if d.Summary != nil {
		parts = append(parts, *d.Summary)
	}
	if d.Rationale != nil {
		parts = append(parts, *d.Rationale)
	}
	if d.RawContext != nil {
		for _, m := range d.RawContext.Messages {
			parts = append(parts, m.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// EnrichDecision attaches tracker and URL links to an active decision.
// Lookups that fail are skipped; URLs already attached are not re-added.
func (s *pipelineService) EnrichDecision(ctx context.Context, decisionID uuid.UUID) error {
	uow := s.UowFactory.NewUnitOfWork(ctx)

	decision, err := uow.DecisionRepository().FindOne(ctx, specification.ByID{ID: decisionID})
	if err != nil {
		return fmt.Errorf("load decision: %w", err)
	}
	if decision == nil || decision.Status != entity.DecisionStatusActive {
		return nil
	}
	workspace, err := uow.WorkspaceRepository().FindOne(ctx, specification.ByID{ID: decision.WorkspaceId})
	if err != nil {
		return fmt.Errorf("load workspace: %w", err)
	}
	if workspace == nil {
		return nil
	}

	existing, err := uow.DecisionLinkRepository().FindAll(ctx, specification.ByDecisionID{DecisionID: decisionID})
	if err != nil {
		return fmt.Errorf("load links: %w", err)
	}
	attached := make(map[string]struct{}, len(existing))
	for _, l := range existing {
		attached[l.URL] = struct{}{}
	}

	text := enrichmentText(decision)
	var referenced struct{ tickets, prs, urls []string }
	if decision.RawContext != nil {
		referenced.tickets = decision.RawContext.ReferencedTickets
		referenced.prs = decision.RawContext.ReferencedPRs
		referenced.urls = decision.RawContext.ReferencedURLs
	}

	added := 0
	add := func(link *entity.DecisionLink) {
		if _, dup := attached[link.URL]; dup {
			return
		}
		link.Id = uuid.New()
		link.DecisionId = decisionID
		if err := uow.DecisionLinkRepository().Create(ctx, link); err != nil {
			s.Logger.Error("ENRICH", "Failed to store link", map[string]interface{}{
				"decision_id": decisionID.String(),
				"url":         link.URL,
				"error":       err.Error(),
			})
			return
		}
		attached[link.URL] = struct{}{}
		added++
		s.Metrics.LinksAttached.WithLabelValues(string(link.LinkType)).Inc()
	}

	keys := tracker.ExtractJiraKeys(text + "\n" + strings.Join(referenced.tickets, " "))
	if len(keys) > 0 {
		s.attachJiraLinks(ctx, workspace, keys, add)
	}

	refs := tracker.ExtractPRRefs(text + "\n" + strings.Join(referenced.prs, " "))
	if len(refs) > 0 {
		s.attachPRLinks(ctx, workspace, refs, add)
	}

	for _, u := range referenced.urls {
		u = strings.TrimSpace(u)
		if u == "" || tracker.IsPullRequestURL(u) {
			continue
		}
		add(&entity.DecisionLink{LinkType: entity.LinkTypeURL, URL: u})
	}

	s.Logger.Info("ENRICH", "Decision enriched", map[string]interface{}{
		"decision_id": decisionID.String(),
		"links_added": added,
	})
	return nil
}

func (s *pipelineService) openSecret(sealed *string) string {
	if sealed == nil || *sealed == "" {
		return ""
	}
	plain, err := s.Secrets.Open(*sealed)
	if err != nil {
		s.Logger.Error("ENRICH", "Failed to decrypt tracker token", map[string]interface{}{"error": err.Error()})
		return ""
	}
	return plain
}

func (s *pipelineService) attachJiraLinks(ctx context.Context, ws *entity.Workspace, keys []string, add func(*entity.DecisionLink)) {
	token := s.openSecret(ws.JiraAPIToken)
	if ws.JiraDomain == nil || ws.JiraEmail == nil || token == "" {
		s.Logger.Debug("ENRICH", "Jira not configured, skipping tickets", map[string]interface{}{
			"workspace_id": ws.Id.String(),
			"keys":         keys,
		})
		return
	}

	client := s.Trackers.Jira(*ws.JiraDomain, *ws.JiraEmail, token)
	for _, key := range keys {
		issue, err := client.GetIssue(ctx, key)
		if err != nil || issue == nil {
			s.Logger.Warn("ENRICH", "Jira lookup failed", map[string]interface{}{
				"key":   key,
				"error": fmt.Sprint(err),
			})
			continue
		}
		title := fmt.Sprintf("%s: %s", issue.Key, issue.Title)
		add(&entity.DecisionLink{
			LinkType: entity.LinkTypeJira,
			URL:      issue.URL,
			Title:    &title,
			Metadata: map[string]interface{}{
				"key":      issue.Key,
				"status":   issue.Status,
				"assignee": issue.Assignee,
				"project":  issue.Project,
				"type":     issue.Type,
			},
		})
	}
}

func (s *pipelineService) attachPRLinks(ctx context.Context, ws *entity.Workspace, refs []tracker.PRRef, add func(*entity.DecisionLink)) {
	token := s.openSecret(ws.GithubToken)
	if token == "" {
		s.Logger.Debug("ENRICH", "GitHub not configured, skipping pull requests", map[string]interface{}{
			"workspace_id": ws.Id.String(),
		})
		return
	}

	client, err := s.Trackers.GitHub(ctx, token)
	if err != nil {
		s.Logger.Warn("ENRICH", "GitHub client unavailable", map[string]interface{}{"error": err.Error()})
		return
	}

	for _, ref := range refs {
		owner, repo := ref.Owner, ref.Repo
		if owner == "" {
			if ws.GithubOrg == nil || ws.GithubRepo == nil {
				continue
			}
			owner, repo = *ws.GithubOrg, *ws.GithubRepo
		}
		pr, err := client.GetPullRequest(ctx, owner, repo, ref.Number)
		if err != nil || pr == nil {
			s.Logger.Warn("ENRICH", "Pull request lookup failed", map[string]interface{}{
				"ref":   ref.Key(),
				"error": fmt.Sprint(err),
			})
			continue
		}
		title := fmt.Sprintf("#%d: %s", pr.Number, pr.Title)
		add(&entity.DecisionLink{
			LinkType: entity.LinkTypeGithubPR,
			URL:      pr.URL,
			Title:    &title,
			Metadata: map[string]interface{}{
				"number":      pr.Number,
				"state":       pr.State,
				"author":      pr.Author,
				"merged":      pr.Merged,
				"base_branch": pr.BaseBranch,
			},
		})
	}
}

// FILE: internal/service/query_service.go
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"decision-ledger-be/internal/entity"
	"decision-ledger-be/internal/metrics"
	"decision-ledger-be/internal/pkg/logger"
	"decision-ledger-be/internal/repository/specification"
	"decision-ledger-be/internal/repository/unitofwork"
	"decision-ledger-be/pkg/rag/prompt"
	"decision-ledger-be/pkg/rag/response"
	"decision-ledger-be/pkg/rag/search"
	"decision-ledger-be/pkg/slack"

	"github.com/google/uuid"
)

type QueryAnswer struct {
	Answer         string
	Results        []search.Result
	Links          map[uuid.UUID][]*entity.DecisionLink
	ResponseTimeMs int
	QueryLogID     uuid.UUID
}

// Decisions returns the ranked decisions without their scores.
func (a *QueryAnswer) Decisions() []*entity.Decision {
	out := make([]*entity.Decision, len(a.Results))
	for i, r := range a.Results {
		out[i] = r.Decision
	}
	return out
}

type IQueryService interface {
	HandleQuery(ctx context.Context, workspaceID uuid.UUID, text string, filters search.Filters, requesterID *string, source string) (*QueryAnswer, error)
	MarkHelpful(ctx context.Context, workspaceID, queryLogID uuid.UUID, helpful bool) error
	ProcessSlackQuery(ctx context.Context, workspaceID uuid.UUID, text, requesterID, responseURL string) error
}

type queryService struct {
	uowFactory  unitofwork.RepositoryFactory
	engine      *search.Engine
	synthesizer response.ISynthesizer
	slack       slack.IClient
	metrics     *metrics.Metrics
	logger      logger.ILogger
}

func NewQueryService(
	uowFactory unitofwork.RepositoryFactory,
	engine *search.Engine,
	synthesizer response.ISynthesizer,
	slackClient slack.IClient,
	m *metrics.Metrics,
	log logger.ILogger,
) IQueryService {
	if m == nil {
		m = metrics.New()
	}
	return &queryService{
		uowFactory:  uowFactory,
		engine:      engine,
		synthesizer: synthesizer,
		slack:       slackClient,
		metrics:     m,
		logger:      log,
	}
}

func (s *queryService) HandleQuery(
	ctx context.Context,
	workspaceID uuid.UUID,
	text string,
	filters search.Filters,
	requesterID *string,
	source string,
) (*QueryAnswer, error) {
	start := time.Now()
	text = strings.TrimSpace(text)

	results, err := s.engine.Query(ctx, workspaceID, text, filters, search.DefaultLimit)
	if err != nil {
		return nil, fmt.Errorf("search decisions: %w", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	ids := make([]uuid.UUID, len(results))
	for i, r := range results {
		ids[i] = r.Decision.Id
	}
	links, err := uow.DecisionLinkRepository().FindByDecisionIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load links: %w", err)
	}

	contexts := make([]prompt.DecisionContext, len(results))
	for i, r := range results {
		contexts[i] = toDecisionContext(r.Decision, links[r.Decision.Id])
	}
	answer := s.synthesizer.Synthesize(ctx, text, contexts)

	elapsed := time.Since(start)
	s.metrics.QueryDuration.Observe(elapsed.Seconds())
	s.metrics.QueryResults.Observe(float64(len(results)))

	log := &entity.QueryLog{
		Id:             uuid.New(),
		WorkspaceId:    workspaceID,
		RequesterId:    requesterID,
		QueryText:      text,
		ResultsCount:   len(results),
		ResponseTimeMs: int(elapsed.Milliseconds()),
		Source:         source,
	}
	if err := uow.QueryLogRepository().Create(ctx, log); err != nil {
		return nil, fmt.Errorf("write query log: %w", err)
	}

	s.logger.Info("QUERY", "Query answered", map[string]interface{}{
		"workspace_id": workspaceID.String(),
		"results":      len(results),
		"elapsed_ms":   log.ResponseTimeMs,
		"source":       source,
	})

	return &QueryAnswer{
		Answer:         answer,
		Results:        results,
		Links:          links,
		ResponseTimeMs: log.ResponseTimeMs,
		QueryLogID:     log.Id,
	}, nil
}

func toDecisionContext(d *entity.Decision, links []*entity.DecisionLink) prompt.DecisionContext {
	c := prompt.DecisionContext{
		Title:          d.Title,
		DecisionMadeAt: d.DecisionMadeAt,
	}
	if d.Summary != nil {
		c.Summary = *d.Summary
	}
	if d.Rationale != nil {
		c.Rationale = *d.Rationale
	}
	if d.OwnerName != nil {
		c.OwnerName = *d.OwnerName
	}
	if d.SourceURL != nil {
		c.SourceURL = *d.SourceURL
	}
	for _, l := range links {
		label := l.URL
		if l.Title != nil && *l.Title != "" {
			label = *l.Title
		}
		switch l.LinkType {
		case entity.LinkTypeJira:
			c.Tickets = append(c.Tickets, label)
		case entity.LinkTypeGithubPR:
			c.PRs = append(c.PRs, label)
		default:
			c.URLs = append(c.URLs, label)
		}
	}
	return c
}

func (s *queryService) MarkHelpful(ctx context.Context, workspaceID, queryLogID uuid.UUID, helpful bool) error {
	ok, err := s.uowFactory.NewUnitOfWork(ctx).QueryLogRepository().SetHelpful(ctx, workspaceID, queryLogID, helpful)
	if err != nil {
		return err
	}
	if !ok {
		return ErrQueryLogNotFound
	}
	return nil
}

// ProcessSlackQuery answers a slash command asynchronously through its
// response URL.
func (s *queryService) ProcessSlackQuery(ctx context.Context, workspaceID uuid.UUID, text, requesterID, responseURL string) error {
	var requester *string
	if requesterID != "" {
		requester = &requesterID
	}

	answer, err := s.HandleQuery(ctx, workspaceID, text, search.Filters{}, requester, entity.QuerySourceSlack)
	if err != nil {
		return err
	}
	if responseURL == "" {
		return nil
	}

	payload := map[string]interface{}{
		"response_type": "ephemeral",
		"text":          answer.Answer,
		"blocks":        slack.SearchResultBlocks(answer.Answer, answer.Decisions()),
	}
	if err := s.slack.RespondToURL(ctx, responseURL, payload); err != nil {
		s.logger.Warn("QUERY", "Failed to deliver slash command answer", map[string]interface{}{
			"workspace_id": workspaceID.String(),
			"error":        err.Error(),
		})
	}
	return nil
}

// loadWorkspace is shared by the services that resolve a tenant first.
func loadWorkspace(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID) (*entity.Workspace, error) {
	ws, err := uow.WorkspaceRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if ws == nil {
		return nil, ErrWorkspaceNotFound
	}
	return ws, nil
}

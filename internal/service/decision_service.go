// FILE: internal/service/decision_service.go
package service

import (
	"context"
	"fmt"
	"strings"

	"decision-ledger-be/internal/dto"
	"decision-ledger-be/internal/entity"
	"decision-ledger-be/internal/pkg/logger"
	"decision-ledger-be/internal/repository/specification"
	"decision-ledger-be/internal/repository/unitofwork"
	"decision-ledger-be/pkg/slack"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const defaultListLimit = 20

// ModalEdit is what the edit modal submits.
type ModalEdit struct {
	Title     string
	Summary   string
	Rationale string
	Tags      string
}

type IDecisionService interface {
	List(ctx context.Context, workspaceId uuid.UUID, req *dto.ListDecisionsRequest) (*dto.ListDecisionsResponse, error)
	Show(ctx context.Context, workspaceId uuid.UUID, id uuid.UUID) (*dto.DecisionResponse, error)
	Update(ctx context.Context, workspaceId uuid.UUID, req *dto.UpdateDecisionRequest) (*dto.DecisionResponse, error)
	Delete(ctx context.Context, workspaceId uuid.UUID, id uuid.UUID) error
	Confirm(ctx context.Context, workspaceId uuid.UUID, id uuid.UUID, actorId string) (*dto.ResolveDecisionResponse, error)
	Ignore(ctx context.Context, workspaceId uuid.UUID, id uuid.UUID, actorId string) (*dto.ResolveDecisionResponse, error)
	OpenEditModal(ctx context.Context, workspaceId uuid.UUID, id uuid.UUID, triggerId string) error
	ApplyModalEdit(ctx context.Context, workspaceId uuid.UUID, id uuid.UUID, edit ModalEdit) error
}

type decisionService struct {
	uowFactory       unitofwork.RepositoryFactory
	pipelineService  IPipelineService
	publisherService IPublisherService
	slack            slack.IClient
	logger           logger.ILogger
}

func NewDecisionService(
	uowFactory unitofwork.RepositoryFactory,
	pipelineService IPipelineService,
	publisherService IPublisherService,
	slackClient slack.IClient,
	log logger.ILogger,
) IDecisionService {
	return &decisionService{
		uowFactory:       uowFactory,
		pipelineService:  pipelineService,
		publisherService: publisherService,
		slack:            slackClient,
		logger:           log,
	}
}

func (s *decisionService) List(ctx context.Context, workspaceId uuid.UUID, req *dto.ListDecisionsRequest) (*dto.ListDecisionsResponse, error) {
	specs := []specification.Specification{specification.ByWorkspaceID{WorkspaceID: workspaceId}}
	if req.Status != "" {
		specs = append(specs, specification.ByDecisionStatus{Status: entity.DecisionStatus(req.Status)})
	} else {
		specs = append(specs, specification.NotDeletedDecision{})
	}
	if req.Category != "" {
		specs = append(specs, specification.ByCategory{Category: strings.ToLower(req.Category)})
	}
	if req.OwnerId != "" {
		specs = append(specs, specification.ByOwner{OwnerID: req.OwnerId})
	}
	if req.Tag != "" {
		specs = append(specs, specification.HasTag{Tag: strings.ToLower(req.Tag)})
	}
	if req.ChannelId != "" {
		specs = append(specs, specification.BySourceChannel{ChannelID: req.ChannelId})
	}
	if req.DateFrom != nil {
		specs = append(specs, specification.CreatedSince{Since: *req.DateFrom})
	}
	if req.DateTo != nil {
		specs = append(specs, specification.CreatedUntil{Until: *req.DateTo})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	total, err := uow.DecisionRepository().Count(ctx, specs...)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	pageSpecs := append(specs,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: req.Offset},
	)
	decisions, err := uow.DecisionRepository().FindAll(ctx, pageSpecs...)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.DecisionResponse, len(decisions))
	for i, d := range decisions {
		items[i] = ToDecisionResponse(d, nil)
	}
	return &dto.ListDecisionsResponse{Items: items, Total: total}, nil
}

func (s *decisionService) find(ctx context.Context, uow unitofwork.UnitOfWork, workspaceId, id uuid.UUID) (*entity.Decision, error) {
	decision, err := uow.DecisionRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ByWorkspaceID{WorkspaceID: workspaceId},
	)
	if err != nil {
		return nil, err
	}
	if decision == nil {
		return nil, ErrDecisionNotFound
	}
	return decision, nil
}

func (s *decisionService) Show(ctx context.Context, workspaceId uuid.UUID, id uuid.UUID) (*dto.DecisionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	decision, err := s.find(ctx, uow, workspaceId, id)
	if err != nil {
		return nil, err
	}
	links, err := uow.DecisionLinkRepository().FindAll(ctx,
		specification.ByDecisionID{DecisionID: id},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}
	return ToDecisionResponse(decision, links), nil
}

func (s *decisionService) Update(ctx context.Context, workspaceId uuid.UUID, req *dto.UpdateDecisionRequest) (*dto.DecisionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	decision, err := s.find(ctx, uow, workspaceId, req.Id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title != "" {
			fields["title"] = title
		}
	}
	if req.Summary != nil {
		fields["summary"] = *req.Summary
	}
	if req.Rationale != nil {
		fields["rationale"] = *req.Rationale
	}
	if req.Tags != nil {
		fields["tags"] = datatypes.JSONSlice[string](entity.NormalizeLabels(req.Tags))
	}
	if req.Category != nil {
		if strings.TrimSpace(*req.Category) == "" {
			fields["category"] = nil
		} else {
			category := entity.ParseCategory(*req.Category)
			if category == nil {
				return nil, ErrInvalidCategory
			}
			fields["category"] = *category
		}
	}

	if len(fields) > 0 {
		ok, err := uow.DecisionRepository().UpdateFields(ctx, decision.Id, fields)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrDecisionNotFound
		}
		s.reembed(ctx, decision, fields)
	}

	return s.Show(ctx, workspaceId, decision.Id)
}

// reembed schedules a fresh embedding when the embedded text of an active
// decision changed.
func (s *decisionService) reembed(ctx context.Context, decision *entity.Decision, fields map[string]interface{}) {
	if decision.Status != entity.DecisionStatusActive {
		return
	}
	_, title := fields["title"]
	_, summary := fields["summary"]
	_, rationale := fields["rationale"]
	if !title && !summary && !rationale {
		return
	}
	if err := s.publisherService.Enqueue(ctx, JobGenerateEmbedding, map[string]interface{}{
		"decision_id": decision.Id.String(),
	}); err != nil {
		s.logger.Warn("DECISION", "Failed to schedule re-embedding", map[string]interface{}{
			"decision_id": decision.Id.String(),
			"error":       err.Error(),
		})
	}
}

func (s *decisionService) Delete(ctx context.Context, workspaceId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	decision, err := s.find(ctx, uow, workspaceId, id)
	if err != nil {
		return err
	}
	if !decision.Status.CanTransitionTo(entity.DecisionStatusDeleted) {
		return ErrInvalidTransition
	}
	applied, err := uow.DecisionRepository().TransitionStatus(ctx, id,
		entity.SourcesFor(entity.DecisionStatusDeleted), entity.DecisionStatusDeleted, nil)
	if err != nil {
		return err
	}
	if !applied {
		return ErrInvalidTransition
	}
	s.logger.Info("DECISION", "Decision deleted", map[string]interface{}{"decision_id": id.String()})
	return nil
}

func (s *decisionService) resolve(ctx context.Context, workspaceId, id uuid.UUID, actorId string, action ConfirmationAction) (*dto.ResolveDecisionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.find(ctx, uow, workspaceId, id); err != nil {
		return nil, err
	}

	applied, err := s.pipelineService.ResolveConfirmation(ctx, ResolveRequest{
		WorkspaceID: workspaceId,
		DecisionID:  id,
		Action:      action,
		ActorID:     actorId,
	})
	if err != nil {
		return nil, err
	}

	current, err := s.find(ctx, uow, workspaceId, id)
	if err != nil {
		return nil, err
	}
	return &dto.ResolveDecisionResponse{Id: id, Status: string(current.Status), Applied: applied}, nil
}

func (s *decisionService) Confirm(ctx context.Context, workspaceId uuid.UUID, id uuid.UUID, actorId string) (*dto.ResolveDecisionResponse, error) {
	return s.resolve(ctx, workspaceId, id, actorId, ActionConfirm)
}

func (s *decisionService) Ignore(ctx context.Context, workspaceId uuid.UUID, id uuid.UUID, actorId string) (*dto.ResolveDecisionResponse, error) {
	return s.resolve(ctx, workspaceId, id, actorId, ActionIgnore)
}

func (s *decisionService) OpenEditModal(ctx context.Context, workspaceId uuid.UUID, id uuid.UUID, triggerId string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	workspace, err := loadWorkspace(ctx, uow, workspaceId)
	if err != nil {
		return err
	}
	decision, err := s.find(ctx, uow, workspaceId, id)
	if err != nil {
		return err
	}
	if !workspace.HasBotToken() {
		return fmt.Errorf("workspace %s has no bot token", workspaceId)
	}

	resp, err := s.slack.OpenModal(ctx, *workspace.BotToken, triggerId, slack.EditModal(decision))
	if err != nil {
		return err
	}
	if !resp.OK {
		s.logger.Warn("DECISION", "Edit modal rejected", map[string]interface{}{
			"decision_id": id.String(),
			"error":       resp.Error,
		})
	}
	return nil
}

func (s *decisionService) ApplyModalEdit(ctx context.Context, workspaceId uuid.UUID, id uuid.UUID, edit ModalEdit) error {
	req := &dto.UpdateDecisionRequest{Id: id}
	if title := strings.TrimSpace(edit.Title); title != "" {
		req.Title = &title
	}
	summary := strings.TrimSpace(edit.Summary)
	req.Summary = &summary
	rationale := strings.TrimSpace(edit.Rationale)
	req.Rationale = &rationale
	req.Tags = strings.Split(edit.Tags, ",")

	_, err := s.Update(ctx, workspaceId, req)
	return err
}

func ToDecisionResponse(d *entity.Decision, links []*entity.DecisionLink) *dto.DecisionResponse {
	res := &dto.DecisionResponse{
		Id:                d.Id,
		Title:             d.Title,
		Summary:           d.Summary,
		Rationale:         d.Rationale,
		OwnerId:           d.OwnerId,
		OwnerName:         d.OwnerName,
		Category:          d.Category,
		Tags:              nonNil(d.Tags),
		ImpactAreas:       nonNil(d.ImpactAreas),
		Participants:      nonNil(d.Participants),
		Confidence:        d.Confidence,
		Status:            string(d.Status),
		SourceType:        d.SourceType,
		SourceURL:         d.SourceURL,
		SourceChannelId:   d.SourceChannelId,
		SourceChannelName: d.SourceChannelName,
		DecisionMadeAt:    d.DecisionMadeAt,
		ConfirmedAt:       d.ConfirmedAt,
		ConfirmedBy:       d.ConfirmedBy,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
	for _, l := range links {
		res.Links = append(res.Links, dto.DecisionLinkResponse{
			Id:       l.Id,
			Type:     string(l.LinkType),
			URL:      l.URL,
			Title:    l.Title,
			Metadata: l.Metadata,
		})
	}
	return res
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

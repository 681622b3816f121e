// FILE: internal/service/workspace_service.go
package service

import (
	"context"
	"math"
	"strings"
	"time"

	"decision-ledger-be/internal/dto"
	"decision-ledger-be/internal/entity"
	"decision-ledger-be/internal/pkg/logger"
	"decision-ledger-be/internal/pkg/secret"
	"decision-ledger-be/internal/repository/lease"
	"decision-ledger-be/internal/repository/specification"
	"decision-ledger-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const analyticsTopN = 5

type IWorkspaceService interface {
	Create(ctx context.Context, req *dto.CreateWorkspaceRequest) (*dto.WorkspaceResponse, error)
	FindByTeamID(ctx context.Context, teamId string) (*entity.Workspace, error)
	IsMonitored(ctx context.Context, workspaceId uuid.UUID, channelId string) (bool, error)

	AddChannel(ctx context.Context, workspaceId uuid.UUID, req *dto.AddChannelRequest) (*dto.ChannelResponse, error)
	ListChannels(ctx context.Context, workspaceId uuid.UUID) ([]*dto.ChannelResponse, error)
	ToggleChannel(ctx context.Context, workspaceId uuid.UUID, channelId string, enabled bool) (*dto.ChannelResponse, error)

	GetTrackerSettings(ctx context.Context, workspaceId uuid.UUID) (*dto.TrackerSettingsResponse, error)
	UpdateTrackerSettings(ctx context.Context, workspaceId uuid.UUID, req *dto.TrackerSettingsRequest) (*dto.TrackerSettingsResponse, error)

	StartBackfill(ctx context.Context, workspaceId uuid.UUID, windowDays int) (*dto.BackfillStatusResponse, error)
	CancelBackfill(ctx context.Context, workspaceId uuid.UUID) (*dto.BackfillStatusResponse, error)
	BackfillStatus(ctx context.Context, workspaceId uuid.UUID) (*dto.BackfillStatusResponse, error)

	Analytics(ctx context.Context, workspaceId uuid.UUID) (*dto.AnalyticsOverviewResponse, error)
}

type workspaceService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	secrets          secret.Codec
	locker           lease.Locker
	logger           logger.ILogger
	now              func() time.Time
}

func NewWorkspaceService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	secrets secret.Codec,
	locker lease.Locker,
	log logger.ILogger,
) IWorkspaceService {
	if secrets == nil {
		secrets = secret.Plaintext{}
	}
	if locker == nil {
		locker = lease.NewLocalLocker()
	}
	return &workspaceService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		secrets:          secrets,
		locker:           locker,
		logger:           log,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *workspaceService) Create(ctx context.Context, req *dto.CreateWorkspaceRequest) (*dto.WorkspaceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.WorkspaceRepository().FindOne(ctx, specification.ByTeamID{TeamID: req.ExternalTeamId})
	if err != nil {
		return nil, err
	}

	workspace := existing
	if workspace == nil {
		workspace = &entity.Workspace{Id: uuid.New(), ExternalTeamId: req.ExternalTeamId}
	}
	workspace.TeamName = req.TeamName
	if req.BotToken != "" {
		token := req.BotToken
		workspace.BotToken = &token
	}

	if existing == nil {
		err = uow.WorkspaceRepository().Create(ctx, workspace)
	} else {
		err = uow.WorkspaceRepository().Update(ctx, workspace)
	}
	if err != nil {
		return nil, err
	}

	return &dto.WorkspaceResponse{
		Id:             workspace.Id,
		ExternalTeamId: workspace.ExternalTeamId,
		TeamName:       workspace.TeamName,
		Installed:      workspace.HasBotToken(),
		BackfillStatus: string(workspace.BackfillStatus),
		CreatedAt:      workspace.CreatedAt,
	}, nil
}

// FindByTeamID returns nil without error for an unknown team.
func (s *workspaceService) FindByTeamID(ctx context.Context, teamId string) (*entity.Workspace, error) {
	return s.uowFactory.NewUnitOfWork(ctx).WorkspaceRepository().FindOne(ctx, specification.ByTeamID{TeamID: teamId})
}

func (s *workspaceService) IsMonitored(ctx context.Context, workspaceId uuid.UUID, channelId string) (bool, error) {
	channel, err := s.uowFactory.NewUnitOfWork(ctx).MonitoredChannelRepository().FindOne(ctx,
		specification.ByWorkspaceID{WorkspaceID: workspaceId},
		specification.ByChannelID{ChannelID: channelId},
		specification.EnabledChannels{},
	)
	if err != nil {
		return false, err
	}
	return channel != nil, nil
}

func toChannelResponse(c *entity.MonitoredChannel) *dto.ChannelResponse {
	return &dto.ChannelResponse{
		Id:          c.Id,
		ChannelId:   c.ChannelId,
		ChannelName: c.ChannelName,
		Enabled:     c.Enabled,
		CreatedAt:   c.CreatedAt,
	}
}

func (s *workspaceService) AddChannel(ctx context.Context, workspaceId uuid.UUID, req *dto.AddChannelRequest) (*dto.ChannelResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := loadWorkspace(ctx, uow, workspaceId); err != nil {
		return nil, err
	}

	existing, err := uow.MonitoredChannelRepository().FindOne(ctx,
		specification.ByWorkspaceID{WorkspaceID: workspaceId},
		specification.ByChannelID{ChannelID: req.ChannelId},
	)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Enabled {
			return nil, ErrChannelExists
		}
		existing.Enabled = true
		if req.ChannelName != nil {
			existing.ChannelName = req.ChannelName
		}
		if err := uow.MonitoredChannelRepository().Update(ctx, existing); err != nil {
			return nil, err
		}
		return toChannelResponse(existing), nil
	}

	channel := &entity.MonitoredChannel{
		Id:          uuid.New(),
		WorkspaceId: workspaceId,
		ChannelId:   req.ChannelId,
		ChannelName: req.ChannelName,
		Enabled:     true,
	}
	if err := uow.MonitoredChannelRepository().Create(ctx, channel); err != nil {
		return nil, err
	}
	s.logger.Info("WORKSPACE", "Channel monitored", map[string]interface{}{
		"workspace_id": workspaceId.String(),
		"channel_id":   req.ChannelId,
	})
	return toChannelResponse(channel), nil
}

func (s *workspaceService) ListChannels(ctx context.Context, workspaceId uuid.UUID) ([]*dto.ChannelResponse, error) {
	channels, err := s.uowFactory.NewUnitOfWork(ctx).MonitoredChannelRepository().FindAll(ctx,
		specification.ByWorkspaceID{WorkspaceID: workspaceId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.ChannelResponse, len(channels))
	for i, c := range channels {
		res[i] = toChannelResponse(c)
	}
	return res, nil
}

func (s *workspaceService) ToggleChannel(ctx context.Context, workspaceId uuid.UUID, channelId string, enabled bool) (*dto.ChannelResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	channel, err := uow.MonitoredChannelRepository().FindOne(ctx,
		specification.ByWorkspaceID{WorkspaceID: workspaceId},
		specification.ByChannelID{ChannelID: channelId},
	)
	if err != nil {
		return nil, err
	}
	if channel == nil {
		return nil, ErrChannelNotFound
	}
	channel.Enabled = enabled
	if err := uow.MonitoredChannelRepository().Update(ctx, channel); err != nil {
		return nil, err
	}
	return toChannelResponse(channel), nil
}

func trackerSettings(ws *entity.Workspace) *dto.TrackerSettingsResponse {
	return &dto.TrackerSettingsResponse{
		JiraDomain:      ws.JiraDomain,
		JiraEmail:       ws.JiraEmail,
		JiraConfigured:  ws.JiraDomain != nil && ws.JiraEmail != nil && ws.JiraAPIToken != nil && *ws.JiraAPIToken != "",
		GithubOrg:       ws.GithubOrg,
		GithubRepo:      ws.GithubRepo,
		GithubConnected: ws.GithubToken != nil && *ws.GithubToken != "",
	}
}

func (s *workspaceService) GetTrackerSettings(ctx context.Context, workspaceId uuid.UUID) (*dto.TrackerSettingsResponse, error) {
	ws, err := loadWorkspace(ctx, s.uowFactory.NewUnitOfWork(ctx), workspaceId)
	if err != nil {
		return nil, err
	}
	return trackerSettings(ws), nil
}

func optional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (s *workspaceService) UpdateTrackerSettings(ctx context.Context, workspaceId uuid.UUID, req *dto.TrackerSettingsRequest) (*dto.TrackerSettingsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	ws, err := loadWorkspace(ctx, uow, workspaceId)
	if err != nil {
		return nil, err
	}

	if req.JiraDomain != nil {
		ws.JiraDomain = optional(req.JiraDomain)
	}
	if req.JiraEmail != nil {
		ws.JiraEmail = optional(req.JiraEmail)
	}
	if req.GithubOrg != nil {
		ws.GithubOrg = optional(req.GithubOrg)
	}
	if req.GithubRepo != nil {
		ws.GithubRepo = optional(req.GithubRepo)
	}
	if token := optional(req.JiraAPIToken); token != nil {
		sealed, err := s.secrets.Seal(*token)
		if err != nil {
			return nil, err
		}
		ws.JiraAPIToken = &sealed
	}
	if token := optional(req.GithubToken); token != nil {
		sealed, err := s.secrets.Seal(*token)
		if err != nil {
			return nil, err
		}
		ws.GithubToken = &sealed
	}

	if err := uow.WorkspaceRepository().Update(ctx, ws); err != nil {
		return nil, err
	}
	return trackerSettings(ws), nil
}

func (s *workspaceService) StartBackfill(ctx context.Context, workspaceId uuid.UUID, windowDays int) (*dto.BackfillStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	ws, err := loadWorkspace(ctx, uow, workspaceId)
	if err != nil {
		return nil, err
	}
	if ws.BackfillStatus == entity.BackfillStatusInProgress {
		stale, err := s.backfillStale(ctx, ws)
		if err != nil {
			return nil, err
		}
		if !stale {
			return nil, ErrBackfillRunning
		}
		s.logger.Warn("WORKSPACE", "Taking over abandoned backfill", map[string]interface{}{
			"workspace_id":  workspaceId.String(),
			"last_progress": ws.UpdatedAt,
		})
	}
	if windowDays <= 0 {
		windowDays = DefaultBackfillDays
	}

	// A failed, cancelled or abandoned run picks up where it stopped.
	var cursor *string
	if ws.BackfillStatus != entity.BackfillStatusComplete {
		cursor = ws.BackfillCursor
	}
	if err := uow.WorkspaceRepository().SaveBackfillState(ctx, workspaceId, entity.BackfillStatusInProgress, cursor); err != nil {
		return nil, err
	}

	if err := s.publisherService.Enqueue(ctx, JobBackfillHistory, map[string]interface{}{
		"workspace_id": workspaceId.String(),
		"window_days":  windowDays,
	}); err != nil {
		_ = uow.WorkspaceRepository().SaveBackfillState(ctx, workspaceId, entity.BackfillStatusFailed, cursor)
		return nil, err
	}

	return &dto.BackfillStatusResponse{Status: string(entity.BackfillStatusInProgress), Cursor: cursor}, nil
}

// backfillStale reports whether an in_progress run has died: nobody holds
// its lease and the cursor has not moved recently.
func (s *workspaceService) backfillStale(ctx context.Context, ws *entity.Workspace) (bool, error) {
	held, err := s.locker.Held(ctx, BackfillLeaseKey(ws.Id))
	if err != nil {
		return false, err
	}
	if held {
		return false, nil
	}
	return s.now().Sub(ws.UpdatedAt) > backfillStaleAfter, nil
}

func (s *workspaceService) CancelBackfill(ctx context.Context, workspaceId uuid.UUID) (*dto.BackfillStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	ws, err := loadWorkspace(ctx, uow, workspaceId)
	if err != nil {
		return nil, err
	}
	if ws.BackfillStatus != entity.BackfillStatusInProgress {
		return nil, ErrBackfillNotRunning
	}
	if err := uow.WorkspaceRepository().SaveBackfillState(ctx, workspaceId, entity.BackfillStatusCancelled, ws.BackfillCursor); err != nil {
		return nil, err
	}
	s.logger.Info("WORKSPACE", "Backfill cancel requested", map[string]interface{}{"workspace_id": workspaceId.String()})
	return &dto.BackfillStatusResponse{Status: string(entity.BackfillStatusCancelled), Cursor: ws.BackfillCursor}, nil
}

func (s *workspaceService) BackfillStatus(ctx context.Context, workspaceId uuid.UUID) (*dto.BackfillStatusResponse, error) {
	ws, err := loadWorkspace(ctx, s.uowFactory.NewUnitOfWork(ctx), workspaceId)
	if err != nil {
		return nil, err
	}
	return &dto.BackfillStatusResponse{Status: string(ws.BackfillStatus), Cursor: ws.BackfillCursor}, nil
}

func (s *workspaceService) Analytics(ctx context.Context, workspaceId uuid.UUID) (*dto.AnalyticsOverviewResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	decisions := uow.DecisionRepository()
	inWorkspace := specification.ByWorkspaceID{WorkspaceID: workspaceId}
	weekAgo := s.now().AddDate(0, 0, -7)

	countByStatus := func(status entity.DecisionStatus) (int64, error) {
		return decisions.Count(ctx, inWorkspace, specification.ByDecisionStatus{Status: status})
	}

	active, err := countByStatus(entity.DecisionStatusActive)
	if err != nil {
		return nil, err
	}
	ignored, err := countByStatus(entity.DecisionStatusIgnored)
	if err != nil {
		return nil, err
	}
	pending, err := countByStatus(entity.DecisionStatusPending)
	if err != nil {
		return nil, err
	}
	thisWeek, err := decisions.Count(ctx, inWorkspace, specification.CreatedSince{Since: weekAgo})
	if err != nil {
		return nil, err
	}
	queries, err := uow.QueryLogRepository().Count(ctx, inWorkspace, specification.CreatedSince{Since: weekAgo})
	if err != nil {
		return nil, err
	}

	rate := 0.0
	if reviewed := active + ignored; reviewed > 0 {
		rate = math.Round(float64(active)/float64(reviewed)*1000) / 1000
	}

	categories, err := decisions.CategoryCounts(ctx, workspaceId, analyticsTopN)
	if err != nil {
		return nil, err
	}
	owners, err := decisions.TopOwners(ctx, workspaceId, analyticsTopN)
	if err != nil {
		return nil, err
	}

	res := &dto.AnalyticsOverviewResponse{
		ActiveDecisions:   active,
		DecisionsThisWeek: thisWeek,
		QueriesThisWeek:   queries,
		PendingReviews:    pending,
		ConfirmationRate:  rate,
		TopCategories:     make([]dto.CategoryCountResponse, len(categories)),
		TopOwners:         make([]dto.OwnerCountResponse, len(owners)),
	}
	for i, c := range categories {
		res.TopCategories[i] = dto.CategoryCountResponse{Category: c.Category, Count: c.Count}
	}
	for i, o := range owners {
		res.TopOwners[i] = dto.OwnerCountResponse{OwnerId: o.OwnerID, OwnerName: o.OwnerName, Count: o.Count}
	}
	return res, nil
}

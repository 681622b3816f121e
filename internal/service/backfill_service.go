// FILE: internal/service/backfill_service.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"decision-ledger-be/internal/entity"
	"decision-ledger-be/internal/metrics"
	"decision-ledger-be/internal/pkg/logger"
	"decision-ledger-be/internal/repository/lease"
	"decision-ledger-be/internal/repository/specification"
	"decision-ledger-be/internal/repository/unitofwork"
	"decision-ledger-be/pkg/ai/detector"
	"decision-ledger-be/pkg/ai/extractor"
	"decision-ledger-be/pkg/embedding"
	"decision-ledger-be/pkg/slack"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	DefaultBackfillDays = 90
	backfillPageSize    = 200
	backfillLeaseTTL    = 2 * time.Hour
	// An in_progress run with no lease holder and no progress for this long
	// is considered dead and may be restarted.
	backfillStaleAfter = 15 * time.Minute
)

// BackfillLeaseKey names the lease held for the length of a workspace's run.
func BackfillLeaseKey(workspaceID uuid.UUID) string {
	return "backfill:" + workspaceID.String()
}

// backfillCursor is persisted on the workspace after every page. An empty
// Cursor means ChannelID has been fully read.
type backfillCursor struct {
	ChannelID string `json:"channel_id"`
	Cursor    string `json:"cursor"`
}

func decodeCursor(raw *string) *backfillCursor {
	if raw == nil || *raw == "" {
		return nil
	}
	var c backfillCursor
	if err := json.Unmarshal([]byte(*raw), &c); err != nil || c.ChannelID == "" {
		return nil
	}
	return &c
}

func (c backfillCursor) encode() *string {
	b, _ := json.Marshal(c)
	s := string(b)
	return &s
}

type IBackfillService interface {
	RunBackfill(ctx context.Context, workspaceID uuid.UUID, windowDays int) error
}

type BackfillDeps struct {
	UowFactory unitofwork.RepositoryFactory
	Slack      slack.IClient
	Detector   detector.IDetector
	Extractor  extractor.IExtractor
	Embedder   embedding.Embedder
	Locker     lease.Locker
	Limiter    *rate.Limiter
	Metrics    *metrics.Metrics
	Logger     logger.ILogger
	Now        func() time.Time
}

type backfillService struct {
	BackfillDeps
}

func NewBackfillService(deps BackfillDeps) IBackfillService {
	if deps.Limiter == nil {
		deps.Limiter = rate.NewLimiter(rate.Limit(1), 1)
	}
	if deps.Locker == nil {
		deps.Locker = lease.NewLocalLocker()
	}
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	return &backfillService{BackfillDeps: deps}
}

var errBackfillCancelled = errors.New("backfill cancelled")

func (s *backfillService) RunBackfill(ctx context.Context, workspaceID uuid.UUID, windowDays int) error {
	if windowDays <= 0 {
		windowDays = DefaultBackfillDays
	}

	release, acquired, err := s.Locker.Acquire(ctx, BackfillLeaseKey(workspaceID), backfillLeaseTTL)
	if err != nil {
		return err
	}
	if !acquired {
		s.Logger.Info("BACKFILL", "Backfill already running elsewhere", map[string]interface{}{
			"workspace_id": workspaceID.String(),
		})
		return nil
	}
	defer release()

	uow := s.UowFactory.NewUnitOfWork(ctx)
	workspace, err := uow.WorkspaceRepository().FindOne(ctx, specification.ByID{ID: workspaceID})
	if err != nil {
		return fmt.Errorf("load workspace: %w", err)
	}
	if workspace == nil || !workspace.HasBotToken() {
		s.Logger.Warn("BACKFILL", "Workspace missing or not installed", map[string]interface{}{
			"workspace_id": workspaceID.String(),
		})
		return nil
	}
	if workspace.BackfillStatus == entity.BackfillStatusCancelled {
		return nil
	}

	var resume *backfillCursor
	if workspace.BackfillStatus == entity.BackfillStatusInProgress {
		resume = decodeCursor(workspace.BackfillCursor)
	}
	if err := uow.WorkspaceRepository().SaveBackfillState(ctx, workspaceID, entity.BackfillStatusInProgress, workspace.BackfillCursor); err != nil {
		return fmt.Errorf("mark backfill started: %w", err)
	}

	channels, err := uow.MonitoredChannelRepository().FindAll(ctx,
		specification.ByWorkspaceID{WorkspaceID: workspaceID},
		specification.EnabledChannels{},
		specification.OrderBy{Field: "channel_id"},
	)
	if err != nil {
		return fmt.Errorf("load channels: %w", err)
	}

	oldest := strconv.FormatInt(s.Now().AddDate(0, 0, -windowDays).Unix(), 10) + ".000000"
	token := *workspace.BotToken
	created := 0

	s.Logger.Info("BACKFILL", "Backfill started", map[string]interface{}{
		"workspace_id": workspaceID.String(),
		"channels":     len(channels),
		"window_days":  windowDays,
		"resuming":     resume != nil,
	})

	for _, channel := range channels {
		startCursor := ""
		if resume != nil {
			if channel.ChannelId < resume.ChannelID {
				continue
			}
			if channel.ChannelId == resume.ChannelID {
				if resume.Cursor == "" {
					resume = nil
					continue
				}
				startCursor = resume.Cursor
			}
			resume = nil
		}

		n, err := s.backfillChannel(ctx, workspace, channel, token, oldest, startCursor)
		created += n
		if errors.Is(err, errBackfillCancelled) {
			s.Logger.Info("BACKFILL", "Backfill cancelled", map[string]interface{}{
				"workspace_id": workspaceID.String(),
				"created":      created,
			})
			return nil
		}
		if err != nil {
			s.Logger.Error("BACKFILL", "Backfill failed", map[string]interface{}{
				"workspace_id": workspaceID.String(),
				"channel_id":   channel.ChannelId,
				"error":        err.Error(),
			})
			current := s.currentCursor(ctx, workspaceID)
			if saveErr := s.UowFactory.NewUnitOfWork(ctx).WorkspaceRepository().
				SaveBackfillState(ctx, workspaceID, entity.BackfillStatusFailed, current); saveErr != nil {
				return saveErr
			}
			return nil
		}
	}

	if err := s.UowFactory.NewUnitOfWork(ctx).WorkspaceRepository().
		SaveBackfillState(ctx, workspaceID, entity.BackfillStatusComplete, nil); err != nil {
		return fmt.Errorf("mark backfill complete: %w", err)
	}
	s.Logger.Info("BACKFILL", "Backfill complete", map[string]interface{}{
		"workspace_id": workspaceID.String(),
		"created":      created,
	})
	return nil
}

func (s *backfillService) currentCursor(ctx context.Context, workspaceID uuid.UUID) *string {
	ws, err := s.UowFactory.NewUnitOfWork(ctx).WorkspaceRepository().FindOne(ctx, specification.ByID{ID: workspaceID})
	if err != nil || ws == nil {
		return nil
	}
	return ws.BackfillCursor
}

// cancelled re-reads the workspace so a REST cancel is seen at the next page.
func (s *backfillService) cancelled(ctx context.Context, workspaceID uuid.UUID) (bool, error) {
	ws, err := s.UowFactory.NewUnitOfWork(ctx).WorkspaceRepository().FindOne(ctx, specification.ByID{ID: workspaceID})
	if err != nil {
		return false, err
	}
	return ws == nil || ws.BackfillStatus == entity.BackfillStatusCancelled, nil
}

func (s *backfillService) backfillChannel(
	ctx context.Context,
	workspace *entity.Workspace,
	channel *entity.MonitoredChannel,
	token, oldest, cursor string,
) (int, error) {
	created := 0
	for {
		stop, err := s.cancelled(ctx, workspace.Id)
		if err != nil {
			return created, err
		}
		if stop {
			return created, errBackfillCancelled
		}

		if err := s.Limiter.Wait(ctx); err != nil {
			return created, err
		}
		page, err := s.Slack.ConversationHistory(ctx, token, channel.ChannelId, oldest, cursor, backfillPageSize)
		if err != nil {
			return created, err
		}
		if page == nil || !page.OK {
			return created, fmt.Errorf("conversations.history: %s", errString(nil, page))
		}

		for _, m := range page.Messages {
			if !m.IsHuman() {
				continue
			}
			ok, err := s.processAnchor(ctx, workspace, channel, token, m)
			if err != nil {
				return created, err
			}
			if ok {
				created++
			}
		}

		next := ""
		if page.HasMore {
			next = page.ResponseMetadata.NextCursor
		}
		state := backfillCursor{ChannelID: channel.ChannelId, Cursor: next}
		if err := s.UowFactory.NewUnitOfWork(ctx).WorkspaceRepository().
			SaveBackfillState(ctx, workspace.Id, entity.BackfillStatusInProgress, state.encode()); err != nil {
			return created, fmt.Errorf("persist cursor: %w", err)
		}
		if next == "" {
			return created, nil
		}
		cursor = next
	}
}

// processAnchor stores one history message and, when it reads as a decision,
// records it as active. Returns whether a decision was created.
func (s *backfillService) processAnchor(
	ctx context.Context,
	workspace *entity.Workspace,
	channel *entity.MonitoredChannel,
	token string,
	m slack.Message,
) (bool, error) {
	hint := entity.SourceHintBackfill
	raw := &entity.RawMessage{
		Id:          uuid.New(),
		WorkspaceId: workspace.Id,
		ChannelId:   channel.ChannelId,
		Text:        m.Text,
		MessageTs:   m.TS,
		SourceHint:  &hint,
	}
	if m.User != "" {
		user := m.User
		raw.UserId = &user
	}
	if m.ThreadTS != "" {
		thread := m.ThreadTS
		raw.ThreadTs = &thread
	}
	if m.ClientMsgID != "" {
		id := m.ClientMsgID
		raw.ExternalMessageId = &id
	}

	uow := s.UowFactory.NewUnitOfWork(ctx)
	inserted, err := uow.RawMessageRepository().CreateIfAbsent(ctx, raw)
	if err != nil {
		return false, fmt.Errorf("store message: %w", err)
	}
	if inserted {
		s.Metrics.MessagesIngested.WithLabelValues(entity.SourceHintBackfill).Inc()
	} else {
		// A run that died between the insert and the decision leaves the row
		// unprocessed; pick it up again instead of skipping it.
		existing, err := uow.RawMessageRepository().FindOne(ctx, specification.ByMessageKey{
			WorkspaceID: workspace.Id,
			ChannelID:   channel.ChannelId,
			MessageTs:   m.TS,
		})
		if err != nil {
			return false, fmt.Errorf("load message: %w", err)
		}
		if existing == nil || existing.Processed {
			return false, nil
		}
		raw = existing
	}

	thread := []slack.Message{m}
	if m.ReplyCount > 0 {
		if err := s.Limiter.Wait(ctx); err != nil {
			return false, err
		}
		resp, err := s.Slack.ConversationReplies(ctx, token, channel.ChannelId, m.TS, threadReplyLimit)
		if err == nil && resp != nil && resp.OK && len(resp.Messages) > 0 {
			thread = resp.Messages
		}
	}
	turns := toTurns(thread)

	detection := s.Detector.Detect(ctx, turns)
	if detection.Confidence < ConfidenceThreshold {
		s.Metrics.DetectionOutcomes.WithLabelValues("below_threshold").Inc()
		_, err := uow.RawMessageRepository().MarkProcessed(ctx, raw.Id, nil)
		return false, err
	}
	s.Metrics.DetectionOutcomes.WithLabelValues("accepted").Inc()

	extraction := s.Extractor.Extract(ctx, turns)
	now := s.Now()
	decision := buildDecision(workspace.Id, extraction, detection.Confidence, thread, now)
	decision.Status = entity.DecisionStatusActive
	decision.SourceType = entity.SourceTypeBackfill
	decision.SourceChannelId = &channel.ChannelId
	decision.SourceChannelName = channel.ChannelName
	anchor := m.TS
	decision.SourceThreadTs = &anchor
	if ts, err := strconv.ParseFloat(m.TS, 64); err == nil {
		madeAt := time.Unix(int64(ts), 0).UTC()
		decision.DecisionMadeAt = &madeAt
	}

	decision.Embedding = s.Embedder.EmbedDocument(ctx, decision.EmbeddingText())
	if len(decision.Embedding) == 0 {
		decision.Embedding = nil
		s.Logger.Warn("BACKFILL", "Embedding unavailable, decision left unindexed", map[string]interface{}{
			"decision_id": decision.Id.String(),
		})
	}

	if err := uow.Begin(ctx); err != nil {
		return false, err
	}
	defer uow.Rollback()

	claimed, err := uow.RawMessageRepository().MarkProcessed(ctx, raw.Id, &decision.Id)
	if err != nil {
		return false, err
	}
	if !claimed {
		return false, nil
	}
	if err := uow.DecisionRepository().Create(ctx, decision); err != nil {
		return false, fmt.Errorf("create decision: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return false, err
	}

	s.Metrics.DecisionsCreated.WithLabelValues(entity.SourceTypeBackfill).Inc()
	if len(decision.Embedding) > 0 {
		s.Metrics.EmbeddingsStored.Inc()
	}
	return true, nil
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"decision-ledger-be/internal/entity"
	"decision-ledger-be/internal/metrics"
	"decision-ledger-be/internal/pkg/logger"
	"decision-ledger-be/internal/pkg/secret"
	"decision-ledger-be/internal/repository/specification"
	"decision-ledger-be/internal/repository/unitofwork"
	"decision-ledger-be/pkg/ai"
	"decision-ledger-be/pkg/ai/detector"
	"decision-ledger-be/pkg/ai/extractor"
	"decision-ledger-be/pkg/embedding"
	"decision-ledger-be/pkg/slack"
	"decision-ledger-be/pkg/tracker"

	"github.com/google/uuid"
)

const (
	ConfidenceThreshold = 0.7
	MaxDailyDetections  = 5
	ConfirmationTTL     = 48 * time.Hour
	threadReplyLimit    = 50
)

type ConfirmationAction string

const (
	ActionConfirm ConfirmationAction = "confirm"
	ActionIgnore  ConfirmationAction = "ignore"
)

// ResolveRequest carries a person's answer to a confirmation prompt.
// ChannelID/MessageTs locate the prompt when the stored reference is missing.
type ResolveRequest struct {
	WorkspaceID uuid.UUID
	DecisionID  uuid.UUID
	Action     ConfirmationAction
	ActorID    string
	ChannelID  string
	MessageTs  string
}

type IPipelineService interface {
	StoreMessage(ctx context.Context, message *entity.RawMessage) (bool, error)
	IngestMessage(ctx context.Context, messageID uuid.UUID) error
	ResolveConfirmation(ctx context.Context, req ResolveRequest) (bool, error)
	SweepExpired(ctx context.Context, now time.Time) (int, error)
	EnrichDecision(ctx context.Context, decisionID uuid.UUID) error
	EmbedDecision(ctx context.Context, decisionID uuid.UUID) error
}

type PipelineDeps struct {
	UowFactory unitofwork.RepositoryFactory
	Slack      slack.IClient
	Detector   detector.IDetector
	Extractor  extractor.IExtractor
	Embedder   embedding.Embedder
	Publisher  IPublisherService
	Feed       DecisionFeed
	Trackers   tracker.Factory
	Secrets    secret.Codec
	Metrics    *metrics.Metrics
	Logger     logger.ILogger
	Now        func() time.Time
}

type pipelineService struct {
	PipelineDeps
}

func NewPipelineService(deps PipelineDeps) IPipelineService {
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	if deps.Trackers == nil {
		deps.Trackers = tracker.DefaultFactory{}
	}
	if deps.Feed == nil {
		deps.Feed = nopFeed{}
	}
	if deps.Secrets == nil {
		deps.Secrets = secret.Plaintext{}
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	return &pipelineService{PipelineDeps: deps}
}

// StoreMessage inserts the message unless it was already seen and enqueues
// processing for a fresh row. A redelivered message whose row is still
// unprocessed is enqueued again, so a failed enqueue is recovered by the
// platform's retry. Reports whether a new row was written.
func (s *pipelineService) StoreMessage(ctx context.Context, message *entity.RawMessage) (bool, error) {
	if message.Id == uuid.Nil {
		message.Id = uuid.New()
	}
	message.Processed = false

	uow := s.UowFactory.NewUnitOfWork(ctx)
	inserted, err := uow.RawMessageRepository().CreateIfAbsent(ctx, message)
	if err != nil {
		return false, fmt.Errorf("store message: %w", err)
	}
	if !inserted {
		existing, err := uow.RawMessageRepository().FindOne(ctx, specification.ByMessageKey{
			WorkspaceID: message.WorkspaceId,
			ChannelID:   message.ChannelId,
			MessageTs:   message.MessageTs,
		})
		if err != nil {
			return false, fmt.Errorf("load message: %w", err)
		}
		if existing == nil || existing.Processed {
			s.Logger.Debug("PIPELINE", "Duplicate message ignored", map[string]interface{}{
				"channel_id": message.ChannelId,
				"message_ts": message.MessageTs,
			})
			return false, nil
		}
		s.Logger.Info("PIPELINE", "Re-enqueueing unprocessed duplicate", map[string]interface{}{
			"message_id": existing.Id.String(),
		})
		return false, s.Publisher.Enqueue(ctx, JobProcessMessage, map[string]interface{}{
			"message_id": existing.Id.String(),
		})
	}

	source := entity.SourceHintLive
	if message.SourceHint != nil {
		source = *message.SourceHint
	}
	s.Metrics.MessagesIngested.WithLabelValues(source).Inc()

	if err := s.Publisher.Enqueue(ctx, JobProcessMessage, map[string]interface{}{
		"message_id": message.Id.String(),
	}); err != nil {
		return true, err
	}
	return true, nil
}

func (s *pipelineService) markProcessed(ctx context.Context, uow unitofwork.UnitOfWork, messageID uuid.UUID) error {
	if _, err := uow.RawMessageRepository().MarkProcessed(ctx, messageID, nil); err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	return nil
}

func (s *pipelineService) IngestMessage(ctx context.Context, messageID uuid.UUID) error {
	uow := s.UowFactory.NewUnitOfWork(ctx)

	message, err := uow.RawMessageRepository().FindOne(ctx, specification.ByID{ID: messageID})
	if err != nil {
		return fmt.Errorf("load message: %w", err)
	}
	if message == nil {
		s.Logger.Warn("PIPELINE", "Message not found", map[string]interface{}{"message_id": messageID.String()})
		return nil
	}
	if message.Processed {
		return nil
	}

	workspace, err := uow.WorkspaceRepository().FindOne(ctx, specification.ByID{ID: message.WorkspaceId})
	if err != nil {
		return fmt.Errorf("load workspace: %w", err)
	}
	if workspace == nil || !workspace.HasBotToken() {
		return s.markProcessed(ctx, uow, message.Id)
	}

	channel, err := uow.MonitoredChannelRepository().FindOne(ctx,
		specification.ByWorkspaceID{WorkspaceID: workspace.Id},
		specification.ByChannelID{ChannelID: message.ChannelId},
		specification.EnabledChannels{},
	)
	if err != nil {
		return fmt.Errorf("load channel: %w", err)
	}
	if channel == nil {
		return s.markProcessed(ctx, uow, message.Id)
	}

	token := *workspace.BotToken
	thread := s.fetchThread(ctx, token, message)
	turns := toTurns(thread)

	var detection detector.Result
	if message.SourceHint != nil && *message.SourceHint == entity.SourceHintHuddleTranscript {
		detection = s.Detector.DetectWithPrompt(ctx, turns, detector.HuddlePrompt)
	} else {
		detection = s.Detector.Detect(ctx, turns)
	}

	if detection.Confidence < ConfidenceThreshold {
		s.Metrics.DetectionOutcomes.WithLabelValues("below_threshold").Inc()
		s.Logger.Info("PIPELINE", "Message below confidence threshold", map[string]interface{}{
			"message_id": message.Id.String(),
			"confidence": detection.Confidence,
		})
		return s.markProcessed(ctx, uow, message.Id)
	}

	now := s.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	todayCount, err := uow.DecisionRepository().Count(ctx,
		specification.ByWorkspaceID{WorkspaceID: workspace.Id},
		specification.CreatedSince{Since: dayStart},
	)
	if err != nil {
		return fmt.Errorf("count daily decisions: %w", err)
	}
	if todayCount >= MaxDailyDetections {
		s.Metrics.DetectionOutcomes.WithLabelValues("daily_cap").Inc()
		s.Logger.Warn("PIPELINE", "Daily detection limit reached", map[string]interface{}{
			"workspace_id": workspace.Id.String(),
			"count":        todayCount,
		})
		return s.markProcessed(ctx, uow, message.Id)
	}

	extraction := s.Extractor.Extract(ctx, turns)
	s.Metrics.DetectionOutcomes.WithLabelValues("accepted").Inc()

	anchor := message.AnchorTs()
	decision := buildDecision(workspace.Id, extraction, detection.Confidence, thread, now)
	decision.Status = entity.DecisionStatusPending
	decision.SourceType = entity.SourceTypeSlack
	decision.SourceChannelId = &message.ChannelId
	decision.SourceChannelName = channel.ChannelName
	decision.SourceThreadTs = &anchor

	confirmation := &entity.PendingConfirmation{
		Id:               uuid.New(),
		WorkspaceId:      workspace.Id,
		DecisionId:       decision.Id,
		ChannelId:        &message.ChannelId,
		TargetReviewerId: extraction.OwnerID,
		ExpiresAt:        now.Add(ConfirmationTTL),
		Status:           entity.ConfirmationStatusPending,
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	claimed, err := uow.RawMessageRepository().MarkProcessed(ctx, message.Id, &decision.Id)
	if err != nil {
		return fmt.Errorf("claim message: %w", err)
	}
	if !claimed {
		s.Logger.Info("PIPELINE", "Message already processed by another worker", map[string]interface{}{
			"message_id": message.Id.String(),
		})
		return nil
	}
	if err := uow.DecisionRepository().Create(ctx, decision); err != nil {
		return fmt.Errorf("create decision: %w", err)
	}
	if err := uow.PendingConfirmationRepository().Create(ctx, confirmation); err != nil {
		return fmt.Errorf("create confirmation: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("commit decision: %w", err)
	}

	s.Metrics.DecisionsCreated.WithLabelValues(entity.SourceTypeSlack).Inc()
	s.Logger.Info("PIPELINE", "Decision created", map[string]interface{}{
		"decision_id": decision.Id.String(),
		"title":       decision.Title,
		"confidence":  detection.Confidence,
	})
	s.Feed.Publish(workspace.Id, FeedDecisionDetected, decision)

	resp, err := s.Slack.PostMessage(ctx, token, message.ChannelId,
		fmt.Sprintf("Decision detected: %s", decision.Title),
		slack.ConfirmationBlocks(decision),
	)
	if err != nil || resp == nil || !resp.OK {
		s.Logger.Warn("PIPELINE", "Confirmation prompt not posted", map[string]interface{}{
			"decision_id": decision.Id.String(),
			"error":       errString(err, resp),
		})
		return nil
	}

	promptChannel := resp.Channel
	if promptChannel == "" {
		promptChannel = message.ChannelId
	}
	if err := s.UowFactory.NewUnitOfWork(ctx).PendingConfirmationRepository().
		SetPromptMessage(ctx, confirmation.Id, promptChannel, resp.TS); err != nil {
		s.Logger.Error("PIPELINE", "Failed to record prompt message", map[string]interface{}{
			"confirmation_id": confirmation.Id.String(),
			"error":           err.Error(),
		})
	}
	return nil
}

// fetchThread returns the thread around the message, or the message alone
// when replies cannot be loaded.
func (s *pipelineService) fetchThread(ctx context.Context, token string, message *entity.RawMessage) []slack.Message {
	resp, err := s.Slack.ConversationReplies(ctx, token, message.ChannelId, message.AnchorTs(), threadReplyLimit)
	if err == nil && resp != nil && resp.OK && len(resp.Messages) > 0 {
		return resp.Messages
	}
	if err != nil {
		s.Logger.Warn("PIPELINE", "Thread fetch failed, using message alone", map[string]interface{}{
			"message_id": message.Id.String(),
			"error":      err.Error(),
		})
	}

	user := ""
	if message.UserId != nil {
		user = *message.UserId
	}
	return []slack.Message{{User: user, Text: message.Text, TS: message.MessageTs}}
}

func toTurns(messages []slack.Message) []ai.Turn {
	turns := make([]ai.Turn, len(messages))
	for i, m := range messages {
		turns[i] = ai.Turn{Speaker: m.User, Timestamp: m.TS, Text: m.Text}
	}
	return turns
}

func buildDecision(workspaceID uuid.UUID, ex extractor.Result, confidence float64, thread []slack.Message, now time.Time) *entity.Decision {
	raw := &entity.RawContext{
		Messages:          make([]entity.ContextMessage, 0, len(thread)),
		ReferencedTickets: ex.ReferencedTickets,
		ReferencedPRs:     ex.ReferencedPRs,
		ReferencedURLs:    ex.ReferencedURLs,
	}
	participants := []string{}
	seen := map[string]struct{}{}
	for _, m := range thread {
		raw.Messages = append(raw.Messages, entity.ContextMessage{UserID: m.User, Text: m.Text, Timestamp: m.TS})
		if m.User == "" {
			continue
		}
		if _, dup := seen[m.User]; !dup {
			seen[m.User] = struct{}{}
			participants = append(participants, m.User)
		}
	}

	madeAt := now
	return &entity.Decision{
		Id:             uuid.New(),
		WorkspaceId:    workspaceID,
		Title:          ex.Title,
		Summary:        ex.Summary,
		Rationale:      ex.Rationale,
		OwnerId:        ex.OwnerID,
		OwnerName:      ex.OwnerName,
		Category:       ex.Category,
		Tags:           ex.Tags,
		ImpactAreas:    ex.ImpactAreas,
		Participants:   participants,
		Confidence:     confidence,
		RawContext:     raw,
		DecisionMadeAt: &madeAt,
	}
}

func (s *pipelineService) ResolveConfirmation(ctx context.Context, req ResolveRequest) (bool, error) {
	var (
		confirmationTarget entity.ConfirmationStatus
		decisionTarget     entity.DecisionStatus
	)
	switch req.Action {
	case ActionConfirm:
		confirmationTarget, decisionTarget = entity.ConfirmationStatusConfirmed, entity.DecisionStatusActive
	case ActionIgnore:
		confirmationTarget, decisionTarget = entity.ConfirmationStatusIgnored, entity.DecisionStatusIgnored
	default:
		return false, ErrInvalidAction
	}

	specs := []specification.Specification{specification.ByID{ID: req.DecisionID}}
	if req.WorkspaceID != uuid.Nil {
		specs = append(specs, specification.ByWorkspaceID{WorkspaceID: req.WorkspaceID})
	}

	uow := s.UowFactory.NewUnitOfWork(ctx)
	decision, err := uow.DecisionRepository().FindOne(ctx, specs...)
	if err != nil {
		return false, fmt.Errorf("load decision: %w", err)
	}
	if decision == nil {
		s.Logger.Warn("PIPELINE", "Decision not found on resolution, treating as resolved", map[string]interface{}{
			"decision_id": req.DecisionID.String(),
			"action":      string(req.Action),
		})
		return false, nil
	}

	now := s.Now()
	fields := map[string]interface{}{}
	if req.Action == ActionConfirm {
		fields["confirmed_at"] = now
		fields["confirmed_by"] = req.ActorID
	}

	if err := uow.Begin(ctx); err != nil {
		return false, err
	}
	defer uow.Rollback()

	confirmation, err := uow.PendingConfirmationRepository().FindOne(ctx,
		specification.ByDecisionID{DecisionID: decision.Id},
		specification.ByConfirmationStatus{Status: entity.ConfirmationStatusPending},
	)
	if err != nil {
		return false, fmt.Errorf("load confirmation: %w", err)
	}
	if confirmation != nil {
		moved, err := uow.PendingConfirmationRepository().TransitionStatus(ctx, confirmation.Id, entity.ConfirmationStatusPending, confirmationTarget)
		if err != nil {
			return false, fmt.Errorf("resolve confirmation: %w", err)
		}
		if !moved {
			s.Logger.Info("PIPELINE", "Confirmation already resolved", map[string]interface{}{"decision_id": decision.Id.String()})
			return false, nil
		}
	}

	applied, err := uow.DecisionRepository().TransitionStatus(ctx, decision.Id,
		[]entity.DecisionStatus{entity.DecisionStatusPending}, decisionTarget, fields)
	if err != nil {
		return false, fmt.Errorf("transition decision: %w", err)
	}
	if !applied {
		s.Metrics.Resolutions.WithLabelValues(string(req.Action), "false").Inc()
		s.Logger.Info("PIPELINE", "Decision no longer pending, resolution ignored", map[string]interface{}{
			"decision_id": decision.Id.String(),
			"status":      string(decision.Status),
		})
		return false, nil
	}
	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("commit resolution: %w", err)
	}

	s.Metrics.Resolutions.WithLabelValues(string(req.Action), "true").Inc()
	decision.Status = decisionTarget
	if req.Action == ActionConfirm {
		decision.ConfirmedAt = &now
		actor := req.ActorID
		decision.ConfirmedBy = &actor
	}
	s.Logger.Info("PIPELINE", "Decision resolved", map[string]interface{}{
		"decision_id": decision.Id.String(),
		"action":      string(req.Action),
		"actor":       req.ActorID,
	})

	channelID, messageTs := req.ChannelID, req.MessageTs
	if confirmation != nil && confirmation.ChannelId != nil && confirmation.MessageTs != nil {
		channelID, messageTs = *confirmation.ChannelId, *confirmation.MessageTs
	}
	if req.Action == ActionConfirm {
		s.Feed.Publish(decision.WorkspaceId, FeedDecisionConfirmed, decision)
		s.updatePrompt(ctx, decision, channelID, messageTs, "Decision confirmed: "+decision.Title, slack.ConfirmedBlocks(decision))
		s.scheduleFollowUps(ctx, decision.Id)
	} else {
		s.Feed.Publish(decision.WorkspaceId, FeedDecisionIgnored, decision)
		s.updatePrompt(ctx, decision, channelID, messageTs, "Decision ignored: "+decision.Title, slack.IgnoredBlocks(decision))
	}
	return true, nil
}

func (s *pipelineService) scheduleFollowUps(ctx context.Context, decisionID uuid.UUID) {
	payload := map[string]interface{}{"decision_id": decisionID.String()}
	for _, job := range []string{JobEnrichDecision, JobGenerateEmbedding} {
		if err := s.Publisher.Enqueue(ctx, job, payload); err != nil {
			s.Logger.Error("PIPELINE", "Failed to schedule follow-up job", map[string]interface{}{
				"decision_id": decisionID.String(),
				"job":         job,
				"error":       err.Error(),
			})
		}
	}
}

// updatePrompt rewrites the original confirmation message in place. Any
// failure is logged and swallowed.
func (s *pipelineService) updatePrompt(ctx context.Context, decision *entity.Decision, channelID, messageTs, text string, blocks []slack.Block) {
	if channelID == "" || messageTs == "" {
		return
	}
	workspace, err := s.UowFactory.NewUnitOfWork(ctx).WorkspaceRepository().FindOne(ctx, specification.ByID{ID: decision.WorkspaceId})
	if err != nil || workspace == nil || !workspace.HasBotToken() {
		return
	}
	resp, err := s.Slack.UpdateMessage(ctx, *workspace.BotToken, channelID, messageTs, text, blocks)
	if err != nil || resp == nil || !resp.OK {
		s.Logger.Warn("PIPELINE", "Prompt update failed", map[string]interface{}{
			"decision_id": decision.Id.String(),
			"error":       errString(err, resp),
		})
	}
}

// SweepExpired expires overdue confirmations one transaction each, in the
// same lock order as ResolveConfirmation.
func (s *pipelineService) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	overdue, err := s.UowFactory.NewUnitOfWork(ctx).PendingConfirmationRepository().FindAll(ctx,
		specification.ByConfirmationStatus{Status: entity.ConfirmationStatusPending},
		specification.ExpiresBefore{Cutoff: now},
	)
	if err != nil {
		return 0, fmt.Errorf("find overdue confirmations: %w", err)
	}

	expired := 0
	for _, confirmation := range overdue {
		applied, err := s.expireOne(ctx, confirmation)
		if err != nil {
			return expired, err
		}
		if !applied {
			continue
		}
		expired++

		decision, err := s.UowFactory.NewUnitOfWork(ctx).DecisionRepository().FindOne(ctx, specification.ByID{ID: confirmation.DecisionId})
		if err != nil || decision == nil || decision.Status != entity.DecisionStatusExpired {
			continue
		}
		s.Feed.Publish(decision.WorkspaceId, FeedDecisionExpired, decision)
		if confirmation.ChannelId != nil && confirmation.MessageTs != nil {
			s.updatePrompt(ctx, decision, *confirmation.ChannelId, *confirmation.MessageTs,
				"Decision expired: "+decision.Title, slack.ExpiredBlocks(decision))
		}
	}

	if expired > 0 {
		s.Metrics.Expired.Add(float64(expired))
		s.Logger.Info("PIPELINE", "Confirmations expired", map[string]interface{}{"count": expired})
	}
	return expired, nil
}

func (s *pipelineService) expireOne(ctx context.Context, confirmation *entity.PendingConfirmation) (bool, error) {
	uow := s.UowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}
	defer uow.Rollback()

	moved, err := uow.PendingConfirmationRepository().TransitionStatus(ctx, confirmation.Id,
		entity.ConfirmationStatusPending, entity.ConfirmationStatusExpired)
	if err != nil {
		return false, fmt.Errorf("expire confirmation: %w", err)
	}
	if !moved {
		return false, nil
	}
	if _, err := uow.DecisionRepository().TransitionStatus(ctx, confirmation.DecisionId,
		[]entity.DecisionStatus{entity.DecisionStatusPending}, entity.DecisionStatusExpired, nil); err != nil {
		return false, fmt.Errorf("expire decision: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (s *pipelineService) EmbedDecision(ctx context.Context, decisionID uuid.UUID) error {
	uow := s.UowFactory.NewUnitOfWork(ctx)
	decision, err := uow.DecisionRepository().FindOne(ctx, specification.ByID{ID: decisionID})
	if err != nil {
		return fmt.Errorf("load decision: %w", err)
	}
	if decision == nil || decision.Status != entity.DecisionStatusActive {
		return nil
	}

	text := decision.EmbeddingText()
	if strings.TrimSpace(text) == "" {
		return nil
	}
	vector := s.Embedder.EmbedDocument(ctx, text)
	if len(vector) == 0 {
		s.Logger.Warn("PIPELINE", "Empty embedding, decision left unindexed", map[string]interface{}{
			"decision_id": decisionID.String(),
		})
		return nil
	}

	stored, err := uow.DecisionRepository().SetEmbedding(ctx, decisionID, vector)
	if err != nil {
		return fmt.Errorf("store embedding: %w", err)
	}
	if stored {
		s.Metrics.EmbeddingsStored.Inc()
		s.Logger.Info("PIPELINE", "Embedding generated", map[string]interface{}{"decision_id": decisionID.String()})
	}
	return nil
}

func errString(err error, resp *slack.Response) string {
	if err != nil {
		return err.Error()
	}
	if resp != nil {
		return resp.Error
	}
	return "no response"
}

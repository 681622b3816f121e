// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"decision-ledger-be/internal/metrics"
	"decision-ledger-be/internal/pkg/logger"
	"decision-ledger-be/pkg/events"

	"github.com/google/uuid"
)

const backfillJobTimeout = 2 * time.Hour

type IConsumerService interface {
	Consume(ctx context.Context) error
	Handle(ctx context.Context, event events.BaseEvent) error
}

type consumerService struct {
	subscriber      events.Subscriber
	pipelineService IPipelineService
	backfillService IBackfillService
	queryService    IQueryService
	metrics         *metrics.Metrics
	logger          logger.ILogger
	jobTimeout      time.Duration
	windowDays      int
}

func NewConsumerService(
	subscriber events.Subscriber,
	pipelineService IPipelineService,
	backfillService IBackfillService,
	queryService IQueryService,
	m *metrics.Metrics,
	log logger.ILogger,
	jobTimeout time.Duration,
	windowDays int,
) IConsumerService {
	if jobTimeout <= 0 {
		jobTimeout = 60 * time.Second
	}
	if m == nil {
		m = metrics.New()
	}
	return &consumerService{
		subscriber:      subscriber,
		pipelineService: pipelineService,
		backfillService: backfillService,
		queryService:    queryService,
		metrics:         m,
		logger:          log,
		jobTimeout:      jobTimeout,
		windowDays:      windowDays,
	}
}

// Consume subscribes one durable consumer per job.
func (cs *consumerService) Consume(ctx context.Context) error {
	for _, job := range AllJobs {
		if err := cs.subscriber.Subscribe(events.Subject(job), "worker_"+job, cs.Handle); err != nil {
			return fmt.Errorf("subscribe %s: %w", job, err)
		}
	}
	cs.logger.Info("WORKER", "Consuming jobs", map[string]interface{}{"jobs": AllJobs})
	return nil
}

func (cs *consumerService) idArg(event events.BaseEvent, key string) (uuid.UUID, bool) {
	id, err := uuid.Parse(event.String(key))
	if err != nil {
		cs.logger.Error("WORKER", "Malformed job payload, dropping", map[string]interface{}{
			"job": event.Type,
			"key": key,
		})
		return uuid.Nil, false
	}
	return id, true
}

// Handle runs one job. Only infrastructure failures are returned, so the
// bus redelivers them; domain outcomes are recorded in row state.
func (cs *consumerService) Handle(ctx context.Context, event events.BaseEvent) error {
	timeout := cs.jobTimeout
	if event.Type == JobBackfillHistory {
		timeout = backfillJobTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := cs.dispatch(ctx, event)

	result := "ok"
	if err != nil {
		result = "error"
		cs.logger.Error("WORKER", "Job failed", map[string]interface{}{
			"job":   event.Type,
			"error": err.Error(),
		})
	}
	cs.metrics.JobsHandled.WithLabelValues(event.Type, result).Inc()
	return err
}

func (cs *consumerService) dispatch(ctx context.Context, event events.BaseEvent) error {
	switch event.Type {
	case JobProcessMessage:
		id, ok := cs.idArg(event, "message_id")
		if !ok {
			return nil
		}
		return cs.pipelineService.IngestMessage(ctx, id)

	case JobResolveConfirmation:
		id, ok := cs.idArg(event, "decision_id")
		if !ok {
			return nil
		}
		req := ResolveRequest{
			DecisionID: id,
			Action:     ConfirmationAction(event.String("action")),
			ActorID:    event.String("actor_id"),
			ChannelID:  event.String("channel_id"),
			MessageTs:  event.String("message_ts"),
		}
		if event.String("workspace_id") != "" {
			if req.WorkspaceID, ok = cs.idArg(event, "workspace_id"); !ok {
				return nil
			}
		}
		_, err := cs.pipelineService.ResolveConfirmation(ctx, req)
		if errors.Is(err, ErrInvalidAction) {
			cs.logger.Warn("WORKER", "Unknown confirmation action", map[string]interface{}{"action": event.String("action")})
			return nil
		}
		return err

	case JobEnrichDecision:
		id, ok := cs.idArg(event, "decision_id")
		if !ok {
			return nil
		}
		return cs.pipelineService.EnrichDecision(ctx, id)

	case JobGenerateEmbedding:
		id, ok := cs.idArg(event, "decision_id")
		if !ok {
			return nil
		}
		return cs.pipelineService.EmbedDecision(ctx, id)

	case JobExpireConfirmations:
		_, err := cs.pipelineService.SweepExpired(ctx, time.Now().UTC())
		return err

	case JobBackfillHistory:
		id, ok := cs.idArg(event, "workspace_id")
		if !ok {
			return nil
		}
		return cs.backfillService.RunBackfill(ctx, id, event.Int("window_days", cs.windowDays))

	case JobProcessQuery:
		id, ok := cs.idArg(event, "workspace_id")
		if !ok {
			return nil
		}
		return cs.queryService.ProcessSlackQuery(ctx, id,
			event.String("text"), event.String("requester_id"), event.String("response_url"))
	}

	cs.logger.Warn("WORKER", "Unknown job, dropping", map[string]interface{}{"job": event.Type})
	return nil
}

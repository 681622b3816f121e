package service

import (
	"context"
	"time"

	"decision-ledger-be/internal/pkg/logger"

	"github.com/robfig/cron"
)

type ISchedulerService interface {
	Start() error
	Stop()
}

// schedulerService only enqueues; the sweep itself runs on a worker.
type schedulerService struct {
	cron             *cron.Cron
	schedule         string
	publisherService IPublisherService
	logger           logger.ILogger
}

func NewSchedulerService(schedule string, publisherService IPublisherService, log logger.ILogger) ISchedulerService {
	if schedule == "" {
		schedule = "@hourly"
	}
	return &schedulerService{
		cron:             cron.New(),
		schedule:         schedule,
		publisherService: publisherService,
		logger:           log,
	}
}

func (s *schedulerService) Start() error {
	err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.publisherService.Enqueue(ctx, JobExpireConfirmations, nil); err != nil {
			s.logger.Error("SCHEDULER", "Failed to enqueue expiry sweep", map[string]interface{}{"error": err.Error()})
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("SCHEDULER", "Expiry sweep scheduled", map[string]interface{}{"schedule": s.schedule})
	return nil
}

func (s *schedulerService) Stop() {
	s.cron.Stop()
}

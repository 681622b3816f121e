package service

import (
	"context"
	"fmt"

	"decision-ledger-be/pkg/events"
)

type IPublisherService interface {
	Enqueue(ctx context.Context, job string, data map[string]interface{}) error
}

type publisherService struct {
	publisher events.Publisher
}

func NewPublisherService(publisher events.Publisher) IPublisherService {
	return &publisherService{publisher: publisher}
}

func (s *publisherService) Enqueue(ctx context.Context, job string, data map[string]interface{}) error {
	if data == nil {
		data = map[string]interface{}{}
	}
	if err := s.publisher.Publish(ctx, events.NewEvent(job, data)); err != nil {
		return fmt.Errorf("enqueue %s: %w", job, err)
	}
	return nil
}

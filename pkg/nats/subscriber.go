package nats

import (
	"context"
	"fmt"
	"log"
	"time"

	"decision-ledger-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

type SubscriberOptions struct {
	// MaxInFlight bounds concurrently running handlers per subscription.
	MaxInFlight int
	// AckWait is the redelivery deadline; running handlers extend it every
	// AckWait/2.
	AckWait    time.Duration
	MaxDeliver int
}

// Subscriber pulls jobs through durable JetStream consumers.
type Subscriber struct {
	nc       *nats.Conn
	js       jetstream.JetStream
	opts     SubscriberOptions
	contexts []jetstream.ConsumeContext
}

func NewSubscriber(url string, opts SubscriberOptions) (*Subscriber, error) {
	nc, js, err := connect(url)
	if err != nil {
		return nil, err
	}
	if opts.MaxInFlight <= 0 {
		opts.MaxInFlight = 10
	}
	if opts.AckWait <= 0 {
		opts.AckWait = 90 * time.Second
	}
	if opts.MaxDeliver <= 0 {
		opts.MaxDeliver = 5
	}
	return &Subscriber{nc: nc, js: js, opts: opts}, nil
}

// Subscribe registers a handler for one job subject. Messages are acked
// after the handler succeeds and nak'ed for redelivery otherwise.
func (s *Subscriber) Subscribe(subject string, durableName string, handler events.Handler) error {
	ctx := context.Background()

	consumer, err := s.js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		Durable:       durableName,
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       s.opts.AckWait,
		MaxDeliver:    s.opts.MaxDeliver,
		MaxAckPending: s.opts.MaxInFlight,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	slots := make(chan struct{}, s.opts.MaxInFlight)
	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		event, err := events.Unmarshal(msg.Data())
		if err != nil {
			log.Printf("Error unmarshalling job on %s: %v", msg.Subject(), err)
			// Poison message, redelivery cannot fix it.
			_ = msg.Term()
			return
		}

		slots <- struct{}{}
		go func() {
			defer func() { <-slots }()

			// Jobs such as backfill outlive AckWait; keep them from being
			// redelivered while the handler is still running.
			done := make(chan struct{})
			go keepAlive(s.opts.AckWait/2, done, msg.InProgress)
			err := handler(context.Background(), event)
			close(done)

			if err != nil {
				log.Printf("Handler failed for job %s: %v", msg.Subject(), err)
				_ = msg.Nak()
				return
			}
			_ = msg.Ack()
		}()
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}
	s.contexts = append(s.contexts, cc)

	log.Printf("Subscribed to %s with durable %s", subject, durableName)
	return nil
}

// keepAlive calls touch every interval until done is closed.
func keepAlive(interval time.Duration, done <-chan struct{}, touch func() error) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := touch(); err != nil {
				log.Printf("Failed to extend ack deadline: %v", err)
			}
		}
	}
}

func (s *Subscriber) Close() {
	for _, cc := range s.contexts {
		cc.Stop()
	}
	if s.nc != nil {
		s.nc.Close()
	}
}

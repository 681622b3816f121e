package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// ChannelBus is the in-process bus used when no NATS server is available
// and in tests. Messages are lost on restart.
type ChannelBus struct {
	pubSub *gochannel.GoChannel
	ctx    context.Context
	cancel context.CancelFunc
}

func NewChannelBus() *ChannelBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &ChannelBus{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 256},
			watermill.NewStdLogger(false, false),
		),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (b *ChannelBus) Publish(ctx context.Context, event Event) error {
	data, err := Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	return b.pubSub.Publish(Subject(event.EventType()), msg)
}

// Subscribe ignores durableName; gochannel has no consumer state.
func (b *ChannelBus) Subscribe(subject string, durableName string, handler Handler) error {
	messages, err := b.pubSub.Subscribe(b.ctx, subject)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			event, err := Unmarshal(msg.Payload)
			if err != nil {
				// Undecodable payloads would loop forever on Nack.
				msg.Ack()
				continue
			}
			if err := handler(msg.Context(), event); err != nil {
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}()
	return nil
}

func (b *ChannelBus) Close() {
	b.cancel()
	_ = b.pubSub.Close()
}

package events

import (
	"context"
	"encoding/json"
	"time"
)

// Event defines the contract for everything that travels over the job bus.
type Event interface {
	// EventType returns the job name, e.g. "process_message".
	EventType() string

	// Payload returns the job arguments.
	Payload() map[string]interface{}

	// Timestamp returns when the event was produced.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func NewEvent(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now().UTC()}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// String returns the payload value for key, or "" when absent.
func (e BaseEvent) String(key string) string {
	if v, ok := e.Data[key].(string); ok {
		return v
	}
	return ""
}

// Int returns the payload value for key. JSON numbers decode as float64.
func (e BaseEvent) Int(key string, fallback int) int {
	switch v := e.Data[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return fallback
}

type envelope struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// Marshal encodes an event so the receiving side can rebuild its type.
func Marshal(e Event) ([]byte, error) {
	return json.Marshal(envelope{Type: e.EventType(), Data: e.Payload(), OccurredAt: e.Timestamp()})
}

func Unmarshal(data []byte) (BaseEvent, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return BaseEvent{}, err
	}
	return BaseEvent{Type: env.Type, Data: env.Data, OccurredAt: env.OccurredAt}, nil
}

// Subject maps a job name onto the bus subject space.
func Subject(eventType string) string {
	return "jobs." + eventType
}

// Handler processes one event. A non-nil error asks for redelivery.
type Handler func(ctx context.Context, event BaseEvent) error

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}

type Subscriber interface {
	Subscribe(subject string, durableName string, handler Handler) error
	Close()
}

package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"decision-ledger-be/internal/entity"
	"decision-ledger-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "ledger:feed"

// FeedMessage is the JSON frame delivered to dashboard clients.
type FeedMessage struct {
	Type       string    `json:"type"`
	DecisionId uuid.UUID `json:"decision_id"`
	Title      string    `json:"title"`
	Status     string    `json:"status"`
	Category   *string   `json:"category,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type clusterEnvelope struct {
	WorkspaceId string          `json:"workspace_id"`
	Origin      string          `json:"origin"`
	Message     json.RawMessage `json:"message"`
}

// Hub fans decision events out to the clients of one workspace. With Redis
// configured, events also reach clients connected to other instances.
type Hub struct {
	// Registered clients: WorkspaceID -> connections (one per open dashboard)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb    *redis.Client
	origin string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		origin:     uuid.NewString(),
		logger:     log,
	}
}

// Run serves register/unregister requests until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.WorkspaceID] = append(h.clients[client.WorkspaceID], client)
			h.mu.Unlock()
			h.logger.Info("FEED", "Client registered", map[string]interface{}{"workspace_id": client.WorkspaceID.String()})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.WorkspaceID]
	if !ok {
		return
	}
	for i, c := range clients {
		if c == client {
			h.clients[client.WorkspaceID] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.WorkspaceID]) == 0 {
		delete(h.clients, client.WorkspaceID)
		h.logger.Info("FEED", "Workspace has no live clients", map[string]interface{}{"workspace_id": client.WorkspaceID.String()})
	}
}

// Publish delivers a decision event to local clients and, when Redis is
// available, to the other instances.
func (h *Hub) Publish(workspaceID uuid.UUID, event string, decision *entity.Decision) {
	data, err := json.Marshal(FeedMessage{
		Type:       event,
		DecisionId: decision.Id,
		Title:      decision.Title,
		Status:     string(decision.Status),
		Category:   decision.Category,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return
	}

	h.deliver(workspaceID, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(clusterEnvelope{
			WorkspaceId: workspaceID.String(),
			Origin:      h.origin,
			Message:     data,
		})
		if err := h.rdb.Publish(context.Background(), clusterChannel, payload).Err(); err != nil {
			h.logger.Warn("FEED", "Cluster publish failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

// deliver never blocks: a client whose buffer is full is dropped.
func (h *Hub) deliver(workspaceID uuid.UUID, data []byte) {
	// Held across sends: remove closes Send under the write lock.
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients[workspaceID] {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("FEED", "Client send buffer full, dropping connection", map[string]interface{}{
				"workspace_id": workspaceID.String(),
			})
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

// ClientCount reports the live connections for a workspace.
func (h *Hub) ClientCount(workspaceID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[workspaceID])
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env clusterEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				h.logger.Warn("FEED", "Cluster message parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			// Our own events were already delivered locally.
			if env.Origin == h.origin {
				continue
			}
			workspaceID, err := uuid.Parse(env.WorkspaceId)
			if err != nil {
				continue
			}
			h.deliver(workspaceID, env.Message)
		}
	}
}

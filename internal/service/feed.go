package service

import (
	"decision-ledger-be/internal/entity"

	"github.com/google/uuid"
)

// Live feed event types pushed to dashboard subscribers.
const (
	FeedDecisionDetected  = "decision.detected"
	FeedDecisionConfirmed = "decision.confirmed"
	FeedDecisionIgnored   = "decision.ignored"
	FeedDecisionExpired   = "decision.expired"
)

// DecisionFeed receives decision lifecycle changes after they are committed.
// Implementations must not block.
type DecisionFeed interface {
	Publish(workspaceID uuid.UUID, event string, decision *entity.Decision)
}

type nopFeed struct{}

func (nopFeed) Publish(uuid.UUID, string, *entity.Decision) {}

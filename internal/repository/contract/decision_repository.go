package contract

import (
	"context"

	"decision-ledger-be/internal/entity"
	"decision-ledger-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredDecision wraps a Decision with one retrieval signal.
type ScoredDecision struct {
	Decision *entity.Decision
	Score    float64
}

type CategoryCount struct {
	Category string
	Count    int64
}

type OwnerCount struct {
	OwnerID   *string
	OwnerName *string
	Count     int64
}

type DecisionRepository interface {
	Create(ctx context.Context, decision *entity.Decision) error
	Update(ctx context.Context, decision *entity.Decision) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Decision, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Decision, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// TransitionStatus moves the decision to `to` only while its current
	// status is one of `from`. The bool reports whether the row changed.
	TransitionStatus(ctx context.Context, id uuid.UUID, from []entity.DecisionStatus, to entity.DecisionStatus, fields map[string]interface{}) (bool, error)
	// UpdateFields edits columns of a decision that has not been deleted.
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (bool, error)
	// SetEmbedding writes the vector only while the decision is active.
	SetEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) (bool, error)

	VectorCandidates(ctx context.Context, workspaceID uuid.UUID, embedding []float32, k int) ([]ScoredDecision, error)
	KeywordCandidates(ctx context.Context, workspaceID uuid.UUID, query string, k int) ([]ScoredDecision, error)

	CategoryCounts(ctx context.Context, workspaceID uuid.UUID, limit int) ([]CategoryCount, error)
	TopOwners(ctx context.Context, workspaceID uuid.UUID, limit int) ([]OwnerCount, error)
}

type DecisionLinkRepository interface {
	Create(ctx context.Context, link *entity.DecisionLink) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DecisionLink, error)
	FindByDecisionIDs(ctx context.Context, decisionIDs []uuid.UUID) (map[uuid.UUID][]*entity.DecisionLink, error)
}

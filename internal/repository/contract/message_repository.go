package contract

import (
	"context"

	"decision-ledger-be/internal/entity"
	"decision-ledger-be/internal/repository/specification"

	"github.com/google/uuid"
)

type RawMessageRepository interface {
	// CreateIfAbsent inserts unless (workspace, channel, message_ts) already
	// exists. It reports whether a new row was written.
	CreateIfAbsent(ctx context.Context, message *entity.RawMessage) (bool, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RawMessage, error)
	// MarkProcessed flips processed from false to true, linking decisionID
	// when given. Reports false when another worker already did it.
	MarkProcessed(ctx context.Context, id uuid.UUID, decisionID *uuid.UUID) (bool, error)
}

type PendingConfirmationRepository interface {
	Create(ctx context.Context, confirmation *entity.PendingConfirmation) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PendingConfirmation, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PendingConfirmation, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from entity.ConfirmationStatus, to entity.ConfirmationStatus) (bool, error)
	SetPromptMessage(ctx context.Context, id uuid.UUID, channelID, messageTs string) error
}

type QueryLogRepository interface {
	Create(ctx context.Context, log *entity.QueryLog) error
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	SetHelpful(ctx context.Context, workspaceID, id uuid.UUID, helpful bool) (bool, error)
}

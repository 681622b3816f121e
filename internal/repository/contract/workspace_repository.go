package contract

import (
	"context"

	"decision-ledger-be/internal/entity"
	"decision-ledger-be/internal/repository/specification"

	"github.com/google/uuid"
)

type WorkspaceRepository interface {
	Create(ctx context.Context, workspace *entity.Workspace) error
	Update(ctx context.Context, workspace *entity.Workspace) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Workspace, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Workspace, error)
	// SaveBackfillState persists status and cursor without touching other columns.
	SaveBackfillState(ctx context.Context, id uuid.UUID, status entity.BackfillStatus, cursor *string) error
}

type MonitoredChannelRepository interface {
	Create(ctx context.Context, channel *entity.MonitoredChannel) error
	Update(ctx context.Context, channel *entity.MonitoredChannel) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.MonitoredChannel, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MonitoredChannel, error)
}

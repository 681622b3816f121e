package unitofwork

import (
	"context"

	"decision-ledger-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	WorkspaceRepository() contract.WorkspaceRepository
	MonitoredChannelRepository() contract.MonitoredChannelRepository
	RawMessageRepository() contract.RawMessageRepository
	DecisionRepository() contract.DecisionRepository
	DecisionLinkRepository() contract.DecisionLinkRepository
	PendingConfirmationRepository() contract.PendingConfirmationRepository
	QueryLogRepository() contract.QueryLogRepository
}

package implementation

import (
	"context"
	"errors"

	"decision-ledger-be/internal/entity"
	"decision-ledger-be/internal/mapper"
	"decision-ledger-be/internal/model"
	"decision-ledger-be/internal/repository/contract"
	"decision-ledger-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WorkspaceRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.WorkspaceMapper
}

func NewWorkspaceRepository(db *gorm.DB) contract.WorkspaceRepository {
	return &WorkspaceRepositoryImpl{
		db:     db,
		mapper: mapper.NewWorkspaceMapper(),
	}
}

func (r *WorkspaceRepositoryImpl) Create(ctx context.Context, workspace *entity.Workspace) error {
	m := r.mapper.ToModel(workspace)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*workspace = *r.mapper.ToEntity(m)
	return nil
}

func (r *WorkspaceRepositoryImpl) Update(ctx context.Context, workspace *entity.Workspace) error {
	m := r.mapper.ToModel(workspace)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*workspace = *r.mapper.ToEntity(m)
	return nil
}

func (r *WorkspaceRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Workspace, error) {
	var m model.Workspace
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *WorkspaceRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Workspace, error) {
	var models []*model.Workspace
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	workspaces := make([]*entity.Workspace, len(models))
	for i, m := range models {
		workspaces[i] = r.mapper.ToEntity(m)
	}
	return workspaces, nil
}

func (r *WorkspaceRepositoryImpl) SaveBackfillState(ctx context.Context, id uuid.UUID, status entity.BackfillStatus, cursor *string) error {
	return r.db.WithContext(ctx).
		Model(&model.Workspace{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"backfill_status": string(status),
			"backfill_cursor": cursor,
		}).Error
}

type MonitoredChannelRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MonitoredChannelMapper
}

func NewMonitoredChannelRepository(db *gorm.DB) contract.MonitoredChannelRepository {
	return &MonitoredChannelRepositoryImpl{
		db:     db,
		mapper: mapper.NewMonitoredChannelMapper(),
	}
}

func (r *MonitoredChannelRepositoryImpl) Create(ctx context.Context, channel *entity.MonitoredChannel) error {
	m := r.mapper.ToModel(channel)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*channel = *r.mapper.ToEntity(m)
	return nil
}

func (r *MonitoredChannelRepositoryImpl) Update(ctx context.Context, channel *entity.MonitoredChannel) error {
	m := r.mapper.ToModel(channel)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*channel = *r.mapper.ToEntity(m)
	return nil
}

func (r *MonitoredChannelRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.MonitoredChannel, error) {
	var m model.MonitoredChannel
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *MonitoredChannelRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MonitoredChannel, error) {
	var models []*model.MonitoredChannel
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

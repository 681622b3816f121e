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
	"gorm.io/gorm/clause"
)

type RawMessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RawMessageMapper
}

func NewRawMessageRepository(db *gorm.DB) contract.RawMessageRepository {
	return &RawMessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewRawMessageMapper(),
	}
}

func (r *RawMessageRepositoryImpl) CreateIfAbsent(ctx context.Context, message *entity.RawMessage) (bool, error) {
	m := r.mapper.ToModel(message)
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(m)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	*message = *r.mapper.ToEntity(m)
	return true, nil
}

func (r *RawMessageRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RawMessage, error) {
	var m model.RawMessage
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

func (r *RawMessageRepositoryImpl) MarkProcessed(ctx context.Context, id uuid.UUID, decisionID *uuid.UUID) (bool, error) {
	updates := map[string]interface{}{"processed": true}
	if decisionID != nil {
		updates["decision_id"] = *decisionID
	}
	res := r.db.WithContext(ctx).
		Model(&model.RawMessage{}).
		Where("id = ? AND processed = ?", id, false).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

type PendingConfirmationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PendingConfirmationMapper
}

func NewPendingConfirmationRepository(db *gorm.DB) contract.PendingConfirmationRepository {
	return &PendingConfirmationRepositoryImpl{
		db:     db,
		mapper: mapper.NewPendingConfirmationMapper(),
	}
}

func (r *PendingConfirmationRepositoryImpl) Create(ctx context.Context, confirmation *entity.PendingConfirmation) error {
	m := r.mapper.ToModel(confirmation)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*confirmation = *r.mapper.ToEntity(m)
	return nil
}

func (r *PendingConfirmationRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PendingConfirmation, error) {
	var m model.PendingConfirmation
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

func (r *PendingConfirmationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PendingConfirmation, error) {
	var models []*model.PendingConfirmation
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *PendingConfirmationRepositoryImpl) TransitionStatus(ctx context.Context, id uuid.UUID, from, to entity.ConfirmationStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.PendingConfirmation{}).
		Where("id = ? AND status = ?", id, string(from)).
		Update("status", string(to))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PendingConfirmationRepositoryImpl) SetPromptMessage(ctx context.Context, id uuid.UUID, channelID, messageTs string) error {
	return r.db.WithContext(ctx).
		Model(&model.PendingConfirmation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"slack_channel_id": channelID,
			"slack_message_ts": messageTs,
		}).Error
}

type QueryLogRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.QueryLogMapper
}

func NewQueryLogRepository(db *gorm.DB) contract.QueryLogRepository {
	return &QueryLogRepositoryImpl{
		db:     db,
		mapper: mapper.NewQueryLogMapper(),
	}
}

func (r *QueryLogRepositoryImpl) Create(ctx context.Context, log *entity.QueryLog) error {
	m := r.mapper.ToModel(log)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*log = *r.mapper.ToEntity(m)
	return nil
}

func (r *QueryLogRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&model.QueryLog{})
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *QueryLogRepositoryImpl) SetHelpful(ctx context.Context, workspaceID, id uuid.UUID, helpful bool) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.QueryLog{}).
		Where("id = ? AND workspace_id = ?", id, workspaceID).
		Update("helpful", helpful)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

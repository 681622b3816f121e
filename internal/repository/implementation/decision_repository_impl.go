package implementation

import (
	"context"
	"errors"
	"time"

	"decision-ledger-be/internal/entity"
	"decision-ledger-be/internal/mapper"
	"decision-ledger-be/internal/model"
	"decision-ledger-be/internal/repository/contract"
	"decision-ledger-be/internal/repository/scope"
	"decision-ledger-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type DecisionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DecisionMapper
}

func NewDecisionRepository(db *gorm.DB) contract.DecisionRepository {
	return &DecisionRepositoryImpl{
		db:     db,
		mapper: mapper.NewDecisionMapper(),
	}
}

func (r *DecisionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DecisionRepositoryImpl) Create(ctx context.Context, decision *entity.Decision) error {
	m := r.mapper.ToModel(decision)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*decision = *r.mapper.ToEntity(m)
	return nil
}

func (r *DecisionRepositoryImpl) Update(ctx context.Context, decision *entity.Decision) error {
	m := r.mapper.ToModel(decision)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*decision = *r.mapper.ToEntity(m)
	return nil
}

func (r *DecisionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Decision, error) {
	var m model.Decision
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *DecisionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Decision, error) {
	var models []*model.Decision
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *DecisionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Decision{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *DecisionRepositoryImpl) TransitionStatus(
	ctx context.Context,
	id uuid.UUID,
	from []entity.DecisionStatus,
	to entity.DecisionStatus,
	fields map[string]interface{},
) (bool, error) {
	if len(from) == 0 {
		return false, nil
	}
	sources := make([]string, len(from))
	for i, s := range from {
		sources[i] = string(s)
	}

	updates := map[string]interface{}{
		"status":     string(to),
		"updated_at": time.Now().UTC(),
	}
	for k, v := range fields {
		updates[k] = v
	}

	res := r.db.WithContext(ctx).
		Model(&model.Decision{}).
		Where("id = ? AND status IN ?", id, sources).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *DecisionRepositoryImpl) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{"updated_at": time.Now().UTC()}
	for k, v := range fields {
		updates[k] = v
	}
	res := r.db.WithContext(ctx).
		Model(&model.Decision{}).
		Scopes(scope.NotDeleted).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *DecisionRepositoryImpl) SetEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Decision{}).
		Scopes(scope.ActiveDecisions).
		Where("id = ?", id).
		Update("embedding", pgvector.NewVector(embedding))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

type scoredDecisionRow struct {
	model.Decision
	Score float64
}

func (r *DecisionRepositoryImpl) toScored(rows []scoredDecisionRow) []contract.ScoredDecision {
	scored := make([]contract.ScoredDecision, len(rows))
	for i := range rows {
		scored[i] = contract.ScoredDecision{
			Decision: r.mapper.ToEntity(&rows[i].Decision),
			Score:    rows[i].Score,
		}
	}
	return scored
}

// VectorCandidates ranks active decisions by cosine similarity, nearest first.
func (r *DecisionRepositoryImpl) VectorCandidates(ctx context.Context, workspaceID uuid.UUID, embedding []float32, k int) ([]contract.ScoredDecision, error) {
	if len(embedding) == 0 || k <= 0 {
		return nil, nil
	}
	queryVector := pgvector.NewVector(embedding)

	var rows []scoredDecisionRow
	err := r.db.WithContext(ctx).
		Table("decisions").
		Select("decisions.*, 1 - (embedding <=> ?) AS score", queryVector).
		Scopes(scope.InWorkspace(workspaceID), scope.ActiveDecisions).
		Where("embedding IS NOT NULL").
		Order(gorm.Expr("embedding <=> ?", queryVector)).
		Limit(k).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return r.toScored(rows), nil
}

// KeywordCandidates ranks active decisions by full-text rank over
// title, summary and rationale.
func (r *DecisionRepositoryImpl) KeywordCandidates(ctx context.Context, workspaceID uuid.UUID, query string, k int) ([]contract.ScoredDecision, error) {
	if query == "" || k <= 0 {
		return nil, nil
	}

	var rows []scoredDecisionRow
	err := r.db.WithContext(ctx).
		Table("decisions").
		Select("decisions.*, ts_rank(search_vector, plainto_tsquery('english', ?)) AS score", query).
		Scopes(scope.InWorkspace(workspaceID), scope.ActiveDecisions).
		Where("search_vector @@ plainto_tsquery('english', ?)", query).
		Order("score DESC").
		Limit(k).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return r.toScored(rows), nil
}

func (r *DecisionRepositoryImpl) CategoryCounts(ctx context.Context, workspaceID uuid.UUID, limit int) ([]contract.CategoryCount, error) {
	var rows []contract.CategoryCount
	err := r.db.WithContext(ctx).
		Model(&model.Decision{}).
		Select("category, COUNT(*) AS count").
		Scopes(scope.InWorkspace(workspaceID), scope.ActiveDecisions).
		Where("category IS NOT NULL").
		Group("category").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *DecisionRepositoryImpl) TopOwners(ctx context.Context, workspaceID uuid.UUID, limit int) ([]contract.OwnerCount, error) {
	var rows []contract.OwnerCount
	err := r.db.WithContext(ctx).
		Model(&model.Decision{}).
		Select("owner_slack_id AS owner_id, owner_name, COUNT(*) AS count").
		Scopes(scope.InWorkspace(workspaceID), scope.ActiveDecisions).
		Group("owner_slack_id, owner_name").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

type DecisionLinkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DecisionLinkMapper
}

func NewDecisionLinkRepository(db *gorm.DB) contract.DecisionLinkRepository {
	return &DecisionLinkRepositoryImpl{
		db:     db,
		mapper: mapper.NewDecisionLinkMapper(),
	}
}

func (r *DecisionLinkRepositoryImpl) Create(ctx context.Context, link *entity.DecisionLink) error {
	m := r.mapper.ToModel(link)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*link = *r.mapper.ToEntity(m)
	return nil
}

func (r *DecisionLinkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DecisionLink, error) {
	var models []*model.DecisionLink
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *DecisionLinkRepositoryImpl) FindByDecisionIDs(ctx context.Context, decisionIDs []uuid.UUID) (map[uuid.UUID][]*entity.DecisionLink, error) {
	grouped := make(map[uuid.UUID][]*entity.DecisionLink)
	if len(decisionIDs) == 0 {
		return grouped, nil
	}
	var models []*model.DecisionLink
	err := r.db.WithContext(ctx).
		Where("decision_id IN ?", decisionIDs).
		Scopes(scope.OrderByCreatedAsc).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	for _, m := range models {
		grouped[m.DecisionId] = append(grouped[m.DecisionId], r.mapper.ToEntity(m))
	}
	return grouped, nil
}

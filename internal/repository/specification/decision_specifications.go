package specification

import (
	"decision-ledger-be/internal/entity"
	"decision-ledger-be/internal/repository/scope"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByDecisionStatus struct {
	Status entity.DecisionStatus
}

func (s ByDecisionStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", string(s.Status))
}

// NotDeletedDecision hides decisions that reached the terminal deleted state.
type NotDeletedDecision struct{}

func (s NotDeletedDecision) Apply(db *gorm.DB) *gorm.DB {
	return scope.NotDeleted(db)
}

type ByCategory struct {
	Category string
}

func (s ByCategory) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("category = ?", s.Category)
}

type ByOwner struct {
	OwnerID string
}

func (s ByOwner) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("owner_slack_id = ?", s.OwnerID)
}

type BySourceChannel struct {
	ChannelID string
}

func (s BySourceChannel) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("source_channel_id = ?", s.ChannelID)
}

// HasTag matches the serialized JSON array, so it works on both jsonb and
// sqlite's text JSON.
type HasTag struct {
	Tag string
}

func (s HasTag) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("CAST(tags AS TEXT) LIKE ?", `%"`+s.Tag+`"%`)
}

type ByDecisionID struct {
	DecisionID uuid.UUID
}

func (s ByDecisionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("decision_id = ?", s.DecisionID)
}

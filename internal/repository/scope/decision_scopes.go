package scope

import (
	"decision-ledger-be/internal/entity"

	"gorm.io/gorm"
)

// ActiveDecisions keeps only confirmed decisions: the set search and
// analytics operate on.
func ActiveDecisions(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", string(entity.DecisionStatusActive))
}

// NotDeleted is the decision equivalent of a soft-delete filter. Deleted
// decisions keep their row with status "deleted".
func NotDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("status <> ?", string(entity.DecisionStatusDeleted))
}

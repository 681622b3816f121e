package scope

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func OrderByCreatedAsc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

// InWorkspace limits a query to one tenant.
func InWorkspace(workspaceID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("workspace_id = ?", workspaceID)
	}
}

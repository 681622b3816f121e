package migration

import (
	"fmt"
	"log"

	"decision-ledger-be/internal/model"

	"gorm.io/gorm"
)

// Models lists every table the ledger owns, in creation order.
func Models() []interface{} {
	return []interface{}{
		&model.Workspace{},
		&model.MonitoredChannel{},
		&model.RawMessage{},
		&model.Decision{},
		&model.DecisionLink{},
		&model.PendingConfirmation{},
		&model.QueryLog{},
	}
}

// Run migrates a postgres database. Extensions and the search columns are
// created with raw SQL since AutoMigrate cannot express them.
func Run(db *gorm.DB, embeddingDimensions int) error {
	log.Println("Step 1: Setting up Extensions...")
	for _, sql := range []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	} {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	log.Printf("Step 2: Running AutoMigrate for %d Tables...", len(Models()))
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	log.Println("Step 3: Creating search columns and indexes...")
	post := []string{
		`ALTER TABLE decisions ADD COLUMN IF NOT EXISTS search_vector tsvector
			GENERATED ALWAYS AS (
				setweight(to_tsvector('english', coalesce(title, '')), 'A') ||
				setweight(to_tsvector('english', coalesce(summary, '')), 'B') ||
				setweight(to_tsvector('english', coalesce(rationale, '')), 'C')
			) STORED;`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_search_vector ON decisions USING GIN (search_vector);`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_workspace_status ON decisions (workspace_id, status);`,
		`CREATE INDEX IF NOT EXISTS idx_pending_confirmations_status_expires ON pending_confirmations (status, expires_at);`,
	}
	if embeddingDimensions > 0 {
		post = append(post,
			fmt.Sprintf(`ALTER TABLE decisions ALTER COLUMN embedding TYPE vector(%d);`, embeddingDimensions),
			`CREATE INDEX IF NOT EXISTS idx_decisions_embedding_hnsw ON decisions USING hnsw (embedding vector_cosine_ops);`,
		)
	}
	for _, sql := range post {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("post-migrate %q: %w", firstLine(sql), err)
		}
	}

	log.Println("✅ Migration complete")
	return nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}

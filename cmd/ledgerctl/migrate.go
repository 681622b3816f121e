package main

import (
	"decision-ledger-be/internal/config"
	"decision-ledger-be/internal/migration"

	"github.com/spf13/cobra"
)

var embeddingDimensions int

func init() {
	migrateCmd.Flags().IntVar(&embeddingDimensions, "dimensions", 1024, "Embedding vector dimensions (0 skips the HNSW index)")
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the ledger schema",
	Long: `Create or update the ledger schema: tables, the full-text search column
and its GIN index, and the HNSW index over decision embeddings.

Examples:
  # Migrate with the default voyage-3 dimensions
  ledgerctl migrate

  # Migrate for a 768-dimension embedding model
  ledgerctl migrate --dimensions=768`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(config.Load())
		if err != nil {
			return err
		}
		if err := migration.Run(db, embeddingDimensions); err != nil {
			return err
		}
		okColor.Fprintln(cmd.OutOrStdout(), "Migration complete")
		return nil
	},
}

// Package main implements ledgerctl, the operator CLI for the decision ledger.
package main

import (
	"fmt"
	"os"

	"decision-ledger-be/internal/bootstrap"
	"decision-ledger-be/internal/config"
	"decision-ledger-be/internal/pkg/logger"
	"decision-ledger-be/internal/pkg/secret"
	"decision-ledger-be/internal/repository/lease"
	"decision-ledger-be/internal/repository/unitofwork"
	"decision-ledger-be/internal/service"
	"decision-ledger-be/pkg/database"
	"decision-ledger-be/pkg/events"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var version = "dev"

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	failColor = color.New(color.FgRed, color.Bold)
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Operator commands for the decision ledger",
	Long: `ledgerctl runs maintenance tasks against the decision ledger database:
schema migration, history backfill, confirmation sweeps, workspace and
channel registration, and API token issuance.

Configuration is read from the environment (or a .env file), the same way
the API server reads it.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(backfillCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(workspaceCmd)
	rootCmd.AddCommand(channelCmd)
	rootCmd.AddCommand(tokenCmd)
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	if cfg.Database.Connection == "" {
		return nil, fmt.Errorf("DB_CONNECTION_STRING is not set")
	}
	db, err := database.Open(cfg.Database.Connection, cfg.Database.Options())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// openContainer wires the full service graph. Commands that call the AI
// providers need it.
func openContainer() (*bootstrap.Container, error) {
	cfg := config.Load()
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	return bootstrap.NewContainer(db, cfg), nil
}

// openWorkspaceService skips the AI providers and the job queue. Nothing it
// is used for here enqueues jobs.
func openWorkspaceService() (service.IWorkspaceService, func(), error) {
	cfg := config.Load()
	db, err := openDB(cfg)
	if err != nil {
		return nil, nil, err
	}

	var secrets secret.Codec = secret.Plaintext{}
	if cfg.App.EncryptionKey != "" {
		box, err := secret.NewBox(cfg.App.EncryptionKey)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize secret box: %w", err)
		}
		secrets = box
	}

	bus := events.NewChannelBus()
	log := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	svc := service.NewWorkspaceService(
		unitofwork.NewRepositoryFactory(db),
		service.NewPublisherService(bus),
		secrets,
		lease.NewLocalLocker(),
		log,
	)
	return svc, func() {
		bus.Close()
		_ = log.Sync()
	}, nil
}

func parseWorkspaceID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid workspace id %q: %w", raw, err)
	}
	return id, nil
}

package main

import (
	"context"
	"fmt"

	"decision-ledger-be/internal/entity"

	"github.com/spf13/cobra"
)

var backfillDays int

func init() {
	backfillCmd.Flags().IntVar(&backfillDays, "days", 90, "How many days of history to scan")
}

var backfillCmd = &cobra.Command{
	Use:   "backfill <workspace-id>",
	Short: "Scan channel history for past decisions",
	Long: `Scan the history of every enabled channel of a workspace and record past
decisions as active without asking for confirmation. The run resumes from
the stored cursor when a previous run was interrupted.

Examples:
  ledgerctl backfill 6f1c2d9e-0b7a-4c1e-9d51-3a2b8c7d6e5f --days=30`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workspaceID, err := parseWorkspaceID(args[0])
		if err != nil {
			return err
		}
		if backfillDays < 1 || backfillDays > 365 {
			return fmt.Errorf("--days must be between 1 and 365")
		}

		c, err := openContainer()
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.BackfillService.RunBackfill(context.Background(), workspaceID, backfillDays); err != nil {
			return fmt.Errorf("backfill failed: %w", err)
		}
		status, err := c.WorkspaceService.BackfillStatus(context.Background(), workspaceID)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		switch entity.BackfillStatus(status.Status) {
		case entity.BackfillStatusComplete:
			okColor.Fprintf(out, "Backfill complete for workspace %s\n", workspaceID)
		case entity.BackfillStatusFailed:
			failColor.Fprintf(out, "Backfill failed for workspace %s; rerun to resume\n", workspaceID)
		default:
			warnColor.Fprintf(out, "Backfill for workspace %s stopped with status %s\n", workspaceID, status.Status)
		}
		return nil
	},
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Expire confirmations past their deadline",
	Long: `Expire every pending confirmation whose deadline has passed and mark the
Slack prompt as expired. The scheduler runs the same sweep on its own
schedule; this command runs it once, now.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openContainer()
		if err != nil {
			return err
		}
		defer c.Close()

		n, err := c.PipelineService.SweepExpired(context.Background(), time.Now().UTC())
		if err != nil {
			return fmt.Errorf("sweep failed: %w", err)
		}
		okColor.Fprintf(cmd.OutOrStdout(), "Expired %d confirmation(s)\n", n)
		return nil
	},
}

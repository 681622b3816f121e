package main

import (
	"context"
	"fmt"

	"decision-ledger-be/internal/config"
	"decision-ledger-be/internal/dto"
	"decision-ledger-be/internal/pkg/serverutils"

	"github.com/spf13/cobra"
)

var (
	workspaceBotToken string

	channelName string

	tokenUserID string
	tokenSecret string
)

func init() {
	workspaceAddCmd.Flags().StringVar(&workspaceBotToken, "bot-token", "", "Slack bot token (xoxb-...)")
	workspaceCmd.AddCommand(workspaceAddCmd)

	channelAddCmd.Flags().StringVar(&channelName, "name", "", "Human readable channel name")
	channelCmd.AddCommand(channelAddCmd)

	tokenCmd.Flags().StringVar(&tokenUserID, "user", "ledgerctl", "user_id claim")
	tokenCmd.Flags().StringVar(&tokenSecret, "secret", "", "Signing secret (defaults to JWT_SECRET)")
}

var workspaceCmd = &cobra.Command{
	Use:   "workspace",
	Short: "Manage workspaces",
}

var workspaceAddCmd = &cobra.Command{
	Use:   "add <team-id> <team-name>",
	Short: "Register a Slack workspace, or update its name and token",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := openWorkspaceService()
		if err != nil {
			return err
		}
		defer closeFn()

		res, err := svc.Create(context.Background(), &dto.CreateWorkspaceRequest{
			ExternalTeamId: args[0],
			TeamName:       args[1],
			BotToken:       workspaceBotToken,
		})
		if err != nil {
			return err
		}
		okColor.Fprintf(cmd.OutOrStdout(), "Workspace %s (%s) id=%s installed=%t\n", res.TeamName, res.ExternalTeamId, res.Id, res.Installed)
		return nil
	},
}

var channelCmd = &cobra.Command{
	Use:   "channel",
	Short: "Manage monitored channels",
}

var channelAddCmd = &cobra.Command{
	Use:   "add <workspace-id> <channel-id>",
	Short: "Start monitoring a channel",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		workspaceID, err := parseWorkspaceID(args[0])
		if err != nil {
			return err
		}
		svc, closeFn, err := openWorkspaceService()
		if err != nil {
			return err
		}
		defer closeFn()

		req := &dto.AddChannelRequest{ChannelId: args[1]}
		if channelName != "" {
			req.ChannelName = &channelName
		}
		res, err := svc.AddChannel(context.Background(), workspaceID, req)
		if err != nil {
			return err
		}
		okColor.Fprintf(cmd.OutOrStdout(), "Monitoring channel %s (enabled=%t)\n", res.ChannelId, res.Enabled)
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token <workspace-id>",
	Short: "Issue an API token scoped to one workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workspaceID, err := parseWorkspaceID(args[0])
		if err != nil {
			return err
		}
		secret := tokenSecret
		if secret == "" {
			secret = config.Load().App.JwtSecret
		}
		if secret == "" {
			return fmt.Errorf("no signing secret: pass --secret or set JWT_SECRET")
		}
		token, err := serverutils.IssueToken(secret, workspaceID, tokenUserID)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

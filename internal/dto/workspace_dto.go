package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateWorkspaceRequest struct {
	ExternalTeamId string `json:"external_team_id" validate:"required"`
	TeamName       string `json:"team_name" validate:"required"`
	BotToken       string `json:"bot_token"`
}

type WorkspaceResponse struct {
	Id             uuid.UUID `json:"id"`
	ExternalTeamId string    `json:"external_team_id"`
	TeamName       string    `json:"team_name"`
	Installed      bool      `json:"installed"`
	BackfillStatus string    `json:"backfill_status"`
	CreatedAt      time.Time `json:"created_at"`
}

type AddChannelRequest struct {
	ChannelId   string  `json:"channel_id" validate:"required"`
	ChannelName *string `json:"channel_name"`
}

type ToggleChannelRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

type ChannelResponse struct {
	Id          uuid.UUID `json:"id"`
	ChannelId   string    `json:"channel_id"`
	ChannelName *string   `json:"channel_name"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"created_at"`
}

// Empty token fields leave the stored value untouched.
type TrackerSettingsRequest struct {
	JiraDomain   *string `json:"jira_domain"`
	JiraEmail    *string `json:"jira_email" validate:"omitempty,email"`
	JiraAPIToken *string `json:"jira_api_token"`
	GithubOrg    *string `json:"github_org"`
	GithubRepo   *string `json:"github_repo"`
	GithubToken  *string `json:"github_token"`
}

type TrackerSettingsResponse struct {
	JiraDomain      *string `json:"jira_domain"`
	JiraEmail       *string `json:"jira_email"`
	JiraConfigured  bool    `json:"jira_configured"`
	GithubOrg       *string `json:"github_org"`
	GithubRepo      *string `json:"github_repo"`
	GithubConnected bool    `json:"github_connected"`
}

type StartBackfillRequest struct {
	WindowDays int `json:"window_days" validate:"omitempty,min=1,max=365"`
}

type BackfillStatusResponse struct {
	Status string  `json:"status"`
	Cursor *string `json:"cursor"`
}

type CategoryCountResponse struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type OwnerCountResponse struct {
	OwnerId   *string `json:"owner_id"`
	OwnerName *string `json:"owner_name"`
	Count     int64   `json:"count"`
}

type AnalyticsOverviewResponse struct {
	ActiveDecisions   int64                   `json:"active_decisions"`
	DecisionsThisWeek int64                   `json:"decisions_this_week"`
	QueriesThisWeek   int64                   `json:"queries_this_week"`
	PendingReviews    int64                   `json:"pending_reviews"`
	ConfirmationRate  float64                 `json:"confirmation_rate"`
	TopCategories     []CategoryCountResponse `json:"top_categories"`
	TopOwners         []OwnerCountResponse    `json:"top_owners"`
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

type BackfillStatus string

const (
	BackfillStatusNone       BackfillStatus = ""
	BackfillStatusInProgress BackfillStatus = "in_progress"
	BackfillStatusComplete   BackfillStatus = "complete"
	BackfillStatusCancelled  BackfillStatus = "cancelled"
	BackfillStatusFailed     BackfillStatus = "failed"
)

type Workspace struct {
	Id             uuid.UUID
	ExternalTeamId string
	TeamName       string
	BotToken       *string
	JiraDomain     *string
	JiraEmail      *string
	// Sealed with the configured encryption key, never plaintext.
	JiraAPIToken   *string
	GithubOrg      *string
	GithubRepo     *string
	GithubToken    *string
	BackfillStatus BackfillStatus
	BackfillCursor *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (w *Workspace) HasBotToken() bool {
	return w.BotToken != nil && *w.BotToken != ""
}

type MonitoredChannel struct {
	Id          uuid.UUID
	WorkspaceId uuid.UUID
	ChannelId   string
	ChannelName *string
	Enabled     bool
	CreatedAt   time.Time
}

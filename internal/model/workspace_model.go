package model

import (
	"time"

	"github.com/google/uuid"
)

type Workspace struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	SlackTeamId    string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	TeamName       string    `gorm:"type:varchar(255);not null"`
	BotAccessToken *string   `gorm:"type:text"`
	JiraDomain     *string   `gorm:"type:varchar(255)"`
	JiraEmail      *string   `gorm:"type:varchar(255)"`
	JiraAPIToken   *string   `gorm:"column:jira_api_token;type:text"`
	GithubOrg      *string   `gorm:"type:varchar(255)"`
	GithubRepo     *string   `gorm:"type:varchar(255)"`
	GithubToken    *string   `gorm:"type:text"`
	BackfillStatus string    `gorm:"type:varchar(20)"`
	BackfillCursor *string   `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (Workspace) TableName() string {
	return "workspaces"
}

type MonitoredChannel struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	WorkspaceId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_monitored_channels_workspace_channel"`
	ChannelId   string    `gorm:"type:varchar(64);not null;uniqueIndex:uq_monitored_channels_workspace_channel"`
	ChannelName *string   `gorm:"type:varchar(255)"`
	Enabled     bool      `gorm:"not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (MonitoredChannel) TableName() string {
	return "monitored_channels"
}

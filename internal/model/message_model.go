package model

import (
	"time"

	"github.com/google/uuid"
)

type RawMessage struct {
	Id             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	WorkspaceId    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_raw_messages_workspace_channel_ts"`
	SlackMessageId *string    `gorm:"type:varchar(128)"`
	ChannelId      string     `gorm:"type:varchar(64);not null;uniqueIndex:uq_raw_messages_workspace_channel_ts"`
	ThreadTs       *string    `gorm:"type:varchar(64)"`
	UserSlackId    *string    `gorm:"type:varchar(64)"`
	Text           string     `gorm:"type:text"`
	MessageTs      string     `gorm:"type:varchar(64);not null;uniqueIndex:uq_raw_messages_workspace_channel_ts"`
	SourceHint     *string    `gorm:"type:varchar(32)"`
	Processed      bool       `gorm:"not null;default:false"`
	DecisionId     *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt      time.Time  `gorm:"autoCreateTime"`
}

func (RawMessage) TableName() string {
	return "raw_messages"
}

type PendingConfirmation struct {
	Id                uuid.UUID `gorm:"type:uuid;primaryKey"`
	WorkspaceId       uuid.UUID `gorm:"type:uuid;not null;index"`
	DecisionId        uuid.UUID `gorm:"type:uuid;not null;index"`
	SlackChannelId    *string   `gorm:"type:varchar(64)"`
	SlackMessageTs    *string   `gorm:"type:varchar(64)"`
	TargetUserSlackId *string   `gorm:"type:varchar(64)"`
	ExpiresAt         time.Time `gorm:"not null;index"`
	Status            string    `gorm:"type:varchar(20);not null;index"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
}

func (PendingConfirmation) TableName() string {
	return "pending_confirmations"
}

type QueryLog struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	WorkspaceId    uuid.UUID `gorm:"type:uuid;not null;index"`
	UserSlackId    *string   `gorm:"type:varchar(64)"`
	QueryText      string    `gorm:"type:text"`
	ResultsCount   int
	ResponseTimeMs int
	Source         string    `gorm:"type:varchar(16)"`
	Helpful        *bool
	CreatedAt      time.Time `gorm:"not null;index"`
}

func (QueryLog) TableName() string {
	return "query_logs"
}

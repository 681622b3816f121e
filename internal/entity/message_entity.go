package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	SourceHintLive             = "live"
	SourceHintBackfill         = "backfill"
	SourceHintHuddleTranscript = "huddle_transcript"
)

// RawMessage is one chat message as ingested. (WorkspaceId, ChannelId,
// MessageTs) identifies it.
type RawMessage struct {
	Id                uuid.UUID
	WorkspaceId       uuid.UUID
	ExternalMessageId *string
	ChannelId         string
	ThreadTs          *string
	UserId            *string
	Text              string
	MessageTs         string
	SourceHint        *string
	Processed         bool
	DecisionId        *uuid.UUID
	CreatedAt         time.Time
}

// AnchorTs is the thread root for reply lookups.
func (m *RawMessage) AnchorTs() string {
	if m.ThreadTs != nil && *m.ThreadTs != "" {
		return *m.ThreadTs
	}
	return m.MessageTs
}

type ConfirmationStatus string

const (
	ConfirmationStatusPending   ConfirmationStatus = "pending"
	ConfirmationStatusConfirmed ConfirmationStatus = "confirmed"
	ConfirmationStatusIgnored   ConfirmationStatus = "ignored"
	ConfirmationStatusExpired   ConfirmationStatus = "expired"
)

type PendingConfirmation struct {
	Id               uuid.UUID
	WorkspaceId      uuid.UUID
	DecisionId       uuid.UUID
	ChannelId        *string
	MessageTs        *string
	TargetReviewerId *string
	ExpiresAt        time.Time
	Status           ConfirmationStatus
	CreatedAt        time.Time
}

const (
	QuerySourceSlack = "slack"
	QuerySourceWeb   = "web"
	QuerySourceAPI   = "api"
)

type QueryLog struct {
	Id             uuid.UUID
	WorkspaceId    uuid.UUID
	RequesterId    *string
	QueryText      string
	ResultsCount   int
	ResponseTimeMs int
	Source         string
	Helpful        *bool
	CreatedAt      time.Time
}

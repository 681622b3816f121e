package specification

import (
	"time"

	"decision-ledger-be/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByMessageKey matches the raw message dedup key.
type ByMessageKey struct {
	WorkspaceID uuid.UUID
	ChannelID   string
	MessageTs   string
}

func (s ByMessageKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("workspace_id = ? AND channel_id = ? AND message_ts = ?", s.WorkspaceID, s.ChannelID, s.MessageTs)
}

type ByChannelID struct {
	ChannelID string
}

func (s ByChannelID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("channel_id = ?", s.ChannelID)
}

type EnabledChannels struct{}

func (s EnabledChannels) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("enabled = ?", true)
}

type ByConfirmationStatus struct {
	Status entity.ConfirmationStatus
}

func (s ByConfirmationStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", string(s.Status))
}

type ExpiresBefore struct {
	Cutoff time.Time
}

func (s ExpiresBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("expires_at < ?", s.Cutoff)
}

type ByTeamID struct {
	TeamID string
}

func (s ByTeamID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("slack_team_id = ?", s.TeamID)
}

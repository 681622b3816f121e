package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// Decision also carries a generated search_vector tsvector column on
// postgres. It is created by cmd/migrate and never written by gorm.
type Decision struct {
	Id                uuid.UUID                   `gorm:"type:uuid;primaryKey"`
	WorkspaceId       uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Title             string                      `gorm:"type:text;not null"`
	Summary           *string                     `gorm:"type:text"`
	Rationale         *string                     `gorm:"type:text"`
	OwnerSlackId      *string                     `gorm:"type:varchar(64);index"`
	OwnerName         *string                     `gorm:"type:varchar(255)"`
	Category          *string                     `gorm:"type:varchar(32)"`
	Tags              datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	ImpactArea        datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Participants      datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Confidence        float64                     `gorm:"not null;default:0"`
	Embedding         *pgvector.Vector            `gorm:"type:vector"`
	Status            string                      `gorm:"type:varchar(20);not null;index"`
	SourceType        string                      `gorm:"type:varchar(20)"`
	SourceURL         *string                     `gorm:"type:text"`
	SourceChannelId   *string                     `gorm:"type:varchar(64)"`
	SourceChannelName *string                     `gorm:"type:varchar(255)"`
	SourceThreadTs    *string                     `gorm:"type:varchar(64)"`
	RawContext        datatypes.JSON              `gorm:"type:jsonb"`
	DecisionMadeAt    *time.Time
	ConfirmedAt       *time.Time
	ConfirmedBy       *string   `gorm:"type:varchar(64)"`
	CreatedAt         time.Time `gorm:"not null;index"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

func (Decision) TableName() string {
	return "decisions"
}

type DecisionLink struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	DecisionId   uuid.UUID      `gorm:"type:uuid;not null;index"`
	LinkType     string         `gorm:"type:varchar(20);not null"`
	LinkURL      string         `gorm:"column:link_url;type:text;not null"`
	LinkTitle    *string        `gorm:"type:varchar(512)"`
	LinkMetadata datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
}

func (DecisionLink) TableName() string {
	return "decision_links"
}

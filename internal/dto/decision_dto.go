package dto

import (
	"time"

	"github.com/google/uuid"
)

type ListDecisionsRequest struct {
	Status    string     `query:"status" validate:"omitempty,oneof=pending active ignored expired deleted"`
	Category  string     `query:"category"`
	OwnerId   string     `query:"owner_id"`
	Tag       string     `query:"tag"`
	ChannelId string     `query:"channel_id"`
	DateFrom  *time.Time `query:"date_from"`
	DateTo    *time.Time `query:"date_to"`
	Limit     int        `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset    int        `query:"offset" validate:"omitempty,min=0"`
}

type DecisionLinkResponse struct {
	Id       uuid.UUID              `json:"id"`
	Type     string                 `json:"type"`
	URL      string                 `json:"url"`
	Title    *string                `json:"title"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type DecisionResponse struct {
	Id                uuid.UUID              `json:"id"`
	Title             string                 `json:"title"`
	Summary           *string                `json:"summary"`
	Rationale         *string                `json:"rationale"`
	OwnerId           *string                `json:"owner_id"`
	OwnerName         *string                `json:"owner_name"`
	Category          *string                `json:"category"`
	Tags              []string               `json:"tags"`
	ImpactAreas       []string               `json:"impact_areas"`
	Participants      []string               `json:"participants"`
	Confidence        float64                `json:"confidence"`
	Status            string                 `json:"status"`
	SourceType        string                 `json:"source_type"`
	SourceURL         *string                `json:"source_url"`
	SourceChannelId   *string                `json:"source_channel_id"`
	SourceChannelName *string                `json:"source_channel_name"`
	DecisionMadeAt    *time.Time             `json:"decision_made_at"`
	ConfirmedAt       *time.Time             `json:"confirmed_at"`
	ConfirmedBy       *string                `json:"confirmed_by"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
	Links             []DecisionLinkResponse `json:"links,omitempty"`
}

type ListDecisionsResponse struct {
	Items []*DecisionResponse `json:"items"`
	Total int64               `json:"total"`
}

type UpdateDecisionRequest struct {
	Id        uuid.UUID
	Title     *string  `json:"title" validate:"omitempty,min=1,max=100"`
	Summary   *string  `json:"summary"`
	Rationale *string  `json:"rationale"`
	Tags      []string `json:"tags"`
	Category  *string  `json:"category"`
}

type ResolveDecisionResponse struct {
	Id      uuid.UUID `json:"id"`
	Status  string    `json:"status"`
	Applied bool      `json:"applied"`
}

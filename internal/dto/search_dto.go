package dto

import (
	"time"

	"github.com/google/uuid"
)

type SearchRequest struct {
	Query      string     `json:"query" validate:"required,max=1000"`
	DateFrom   *time.Time `json:"date_from"`
	DateTo     *time.Time `json:"date_to"`
	OwnerId    *string    `json:"owner_id"`
	Categories []string   `json:"categories"`
	Tags       []string   `json:"tags"`
}

type SearchResultItem struct {
	Decision     *DecisionResponse `json:"decision"`
	Score        float64           `json:"score"`
	VectorScore  float64           `json:"vector_score"`
	KeywordScore float64           `json:"keyword_score"`
	TagBonus     float64           `json:"tag_bonus"`
}

type SearchResponse struct {
	Answer         string             `json:"answer"`
	Results        []SearchResultItem `json:"results"`
	ResponseTimeMs int                `json:"response_time_ms"`
	QueryLogId     uuid.UUID          `json:"query_log_id"`
}

type SearchFeedbackRequest struct {
	QueryLogId uuid.UUID `json:"query_log_id" validate:"required"`
	Helpful    *bool     `json:"helpful" validate:"required"`
}

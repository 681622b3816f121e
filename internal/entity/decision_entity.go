package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type DecisionStatus string

const (
	DecisionStatusPending DecisionStatus = "pending"
	DecisionStatusActive  DecisionStatus = "active"
	DecisionStatusIgnored DecisionStatus = "ignored"
	DecisionStatusExpired DecisionStatus = "expired"
	DecisionStatusDeleted DecisionStatus = "deleted"
)

var decisionTransitions = map[DecisionStatus][]DecisionStatus{
	DecisionStatusPending: {DecisionStatusActive, DecisionStatusIgnored, DecisionStatusExpired},
	DecisionStatusActive:  {DecisionStatusDeleted},
	DecisionStatusIgnored: {DecisionStatusDeleted},
	DecisionStatusExpired: {DecisionStatusDeleted},
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
// Nothing leaves deleted.
func (s DecisionStatus) CanTransitionTo(next DecisionStatus) bool {
	for _, allowed := range decisionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// SourcesFor lists every status that may legally move to target.
func SourcesFor(target DecisionStatus) []DecisionStatus {
	var sources []DecisionStatus
	for _, from := range []DecisionStatus{
		DecisionStatusPending, DecisionStatusActive, DecisionStatusIgnored, DecisionStatusExpired, DecisionStatusDeleted,
	} {
		if from.CanTransitionTo(target) {
			sources = append(sources, from)
		}
	}
	return sources
}

const (
	SourceTypeSlack    = "slack"
	SourceTypeBackfill = "backfill"
)

var validCategories = map[string]struct{}{
	"architecture":   {},
	"schema":         {},
	"api":            {},
	"infrastructure": {},
	"deprecation":    {},
	"dependency":     {},
	"naming":         {},
	"process":        {},
	"security":       {},
	"performance":    {},
	"tooling":        {},
}

// ParseCategory returns nil for anything outside the closed category set.
func ParseCategory(raw string) *string {
	c := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := validCategories[c]; !ok {
		return nil
	}
	return &c
}

func IsValidCategory(raw string) bool {
	_, ok := validCategories[raw]
	return ok
}

// NormalizeLabels lowercases, trims and de-duplicates while keeping order.
func NormalizeLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		l = strings.ToLower(strings.TrimSpace(l))
		if l == "" {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

type ContextMessage struct {
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name,omitempty"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// RawContext is the snapshot of the conversation a decision was mined from.
type RawContext struct {
	Messages          []ContextMessage `json:"messages"`
	ReferencedTickets []string         `json:"referenced_tickets"`
	ReferencedPRs     []string         `json:"referenced_prs"`
	ReferencedURLs    []string         `json:"referenced_urls"`
}

type Decision struct {
	Id                uuid.UUID
	WorkspaceId       uuid.UUID
	Title             string
	Summary           *string
	Rationale         *string
	OwnerId           *string
	OwnerName         *string
	Category          *string
	Tags              []string
	ImpactAreas       []string
	Participants      []string
	Confidence        float64
	Embedding         []float32
	Status            DecisionStatus
	SourceType        string
	SourceURL         *string
	SourceChannelId   *string
	SourceChannelName *string
	SourceThreadTs    *string
	RawContext        *RawContext
	DecisionMadeAt    *time.Time
	ConfirmedAt       *time.Time
	ConfirmedBy       *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// EmbeddingText is what gets embedded for retrieval.
func (d *Decision) EmbeddingText() string {
	parts := []string{d.Title}
	if d.Summary != nil && *d.Summary != "" {
		parts = append(parts, *d.Summary)
	}
	if d.Rationale != nil && *d.Rationale != "" {
		parts = append(parts, *d.Rationale)
	}
	return strings.Join(parts, "\n")
}

func (d *Decision) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

type LinkType string

const (
	LinkTypeJira     LinkType = "jira"
	LinkTypeGithubPR LinkType = "github_pr"
	LinkTypeURL      LinkType = "url"
)

type DecisionLink struct {
	Id         uuid.UUID
	DecisionId uuid.UUID
	LinkType   LinkType
	URL        string
	Title      *string
	Metadata   map[string]interface{}
	CreatedAt  time.Time
}

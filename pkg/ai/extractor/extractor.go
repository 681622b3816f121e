// Package extractor turns a decision conversation into structured fields.
package extractor

import (
	"context"
	"time"

	"decision-ledger-be/internal/entity"
	"decision-ledger-be/internal/pkg/logger"
	"decision-ledger-be/pkg/ai"
	"decision-ledger-be/pkg/llm"
)

const (
	DefaultTitle   = "Untitled Decision"
	maxTitleLength = 100
)

type Result struct {
	Title             string
	Summary           *string
	Rationale         *string
	OwnerID           *string
	OwnerName         *string
	Tags              []string
	Category          *string
	ImpactAreas       []string
	ReferencedTickets []string
	ReferencedPRs     []string
	ReferencedURLs    []string
}

// Empty is the safe shape returned whenever extraction cannot be trusted.
func Empty() Result {
	return Result{
		Title:             DefaultTitle,
		Tags:              []string{},
		ImpactAreas:       []string{},
		ReferencedTickets: []string{},
		ReferencedPRs:     []string{},
		ReferencedURLs:    []string{},
	}
}

type IExtractor interface {
	Extract(ctx context.Context, turns []ai.Turn) Result
}

type Extractor struct {
	provider llm.LLMProvider
	logger   logger.ILogger
	timeout  time.Duration
}

func New(provider llm.LLMProvider, log logger.ILogger) *Extractor {
	return &Extractor{provider: provider, logger: log, timeout: llm.DefaultTimeout}
}

func (e *Extractor) Extract(ctx context.Context, turns []ai.Turn) Result {
	if len(turns) == 0 {
		return Empty()
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.provider.Chat(ctx,
		[]llm.Message{{Role: "user", Content: ai.FormatConversation(turns)}},
		llm.WithSystem(systemPrompt),
		llm.WithMaxTokens(1024),
		llm.WithTemperature(0),
	)
	if err != nil {
		e.logger.Error("EXTRACTOR", "Extraction call failed", map[string]interface{}{"error": err.Error()})
		return Empty()
	}

	obj, err := ai.DecodeObject(raw)
	if err != nil {
		e.logger.Warn("EXTRACTOR", "Unparseable extraction response", map[string]interface{}{
			"raw": ai.Truncate(raw, 200),
		})
		return Empty()
	}

	title := DefaultTitle
	if t := ai.String(obj, "title"); t != nil {
		title = ai.Truncate(*t, maxTitleLength)
	}

	var category *string
	if c := ai.String(obj, "category"); c != nil {
		category = entity.ParseCategory(*c)
	}

	return Result{
		Title:             title,
		Summary:           ai.String(obj, "summary"),
		Rationale:         ai.String(obj, "rationale"),
		OwnerID:           ai.String(obj, "owner_slack_id"),
		OwnerName:         ai.String(obj, "owner_name"),
		Tags:              entity.NormalizeLabels(ai.Strings(obj, "tags")),
		Category:          category,
		ImpactAreas:       entity.NormalizeLabels(ai.Strings(obj, "impact_area")),
		ReferencedTickets: ai.Strings(obj, "referenced_tickets"),
		ReferencedPRs:     ai.Strings(obj, "referenced_prs"),
		ReferencedURLs:    ai.Strings(obj, "referenced_urls"),
	}
}

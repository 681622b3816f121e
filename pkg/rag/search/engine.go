// Package search implements hybrid decision retrieval: vector similarity
// and full-text rank fused into one score.
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"decision-ledger-be/internal/entity"
	"decision-ledger-be/internal/repository/contract"

	"github.com/google/uuid"
)

const (
	CandidatePoolSize = 20
	DefaultLimit      = 5

	vectorWeight  = 0.6
	keywordWeight = 0.3
	tagWeight     = 0.1
)

// CandidateSource runs the two independent top-K searches.
type CandidateSource interface {
	VectorCandidates(ctx context.Context, workspaceID uuid.UUID, embedding []float32, k int) ([]contract.ScoredDecision, error)
	KeywordCandidates(ctx context.Context, workspaceID uuid.UUID, query string, k int) ([]contract.ScoredDecision, error)
}

type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) []float32
}

type Filters struct {
	DateFrom   *time.Time
	DateTo     *time.Time
	OwnerID    *string
	Categories []string
	Tags       []string
}

// Match applies the optional predicates to a fused candidate.
func (f Filters) Match(d *entity.Decision) bool {
	if f.DateFrom != nil && d.CreatedAt.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && d.CreatedAt.After(*f.DateTo) {
		return false
	}
	if f.OwnerID != nil && (d.OwnerId == nil || *d.OwnerId != *f.OwnerID) {
		return false
	}
	if len(f.Categories) > 0 {
		if d.Category == nil || !contains(f.Categories, *d.Category) {
			return false
		}
	}
	if len(f.Tags) > 0 {
		overlap := false
		for _, t := range f.Tags {
			if d.HasTag(t) {
				overlap = true
				break
			}
		}
		if !overlap {
			return false
		}
	}
	return true
}

type Result struct {
	Decision     *entity.Decision
	VectorScore  float64
	KeywordScore float64
	TagBonus     float64
	Score        float64
}

// QueryTokens splits on whitespace and keeps lowercased tokens longer than
// two characters.
func QueryTokens(text string) []string {
	tokens := []string{}
	for _, t := range strings.Fields(text) {
		t = strings.ToLower(strings.TrimSpace(t))
		if len([]rune(t)) > 2 {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// Fuse unions both candidate lists by decision id and computes the
// weighted score. Output is sorted by score, ties broken by id.
func Fuse(vector, keyword []contract.ScoredDecision, tokens []string) []Result {
	byID := make(map[uuid.UUID]*Result, len(vector)+len(keyword))
	order := make([]uuid.UUID, 0, len(vector)+len(keyword))

	get := func(d *entity.Decision) *Result {
		if r, ok := byID[d.Id]; ok {
			return r
		}
		r := &Result{Decision: d}
		byID[d.Id] = r
		order = append(order, d.Id)
		return r
	}
	for _, c := range vector {
		get(c.Decision).VectorScore = c.Score
	}
	for _, c := range keyword {
		get(c.Decision).KeywordScore = c.Score
	}

	results := make([]Result, 0, len(order))
	for _, id := range order {
		r := byID[id]
		for _, t := range tokens {
			if r.Decision.HasTag(t) {
				r.TagBonus = 1
				break
			}
		}
		r.Score = vectorWeight*r.VectorScore + keywordWeight*r.KeywordScore + tagWeight*r.TagBonus
		results = append(results, *r)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Decision.Id.String() < results[j].Decision.Id.String()
	})
	return results
}

type Engine struct {
	source   CandidateSource
	embedder QueryEmbedder
}

func NewEngine(source CandidateSource, embedder QueryEmbedder) *Engine {
	return &Engine{source: source, embedder: embedder}
}

// Query returns at most limit fused results. An empty query embedding
// yields no results rather than a keyword-only ranking.
func (e *Engine) Query(ctx context.Context, workspaceID uuid.UUID, text string, filters Filters, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	embedding := e.embedder.EmbedQuery(ctx, text)
	if len(embedding) == 0 {
		return []Result{}, nil
	}

	vector, err := e.source.VectorCandidates(ctx, workspaceID, embedding, CandidatePoolSize)
	if err != nil {
		return nil, fmt.Errorf("vector candidates: %w", err)
	}
	keyword, err := e.source.KeywordCandidates(ctx, workspaceID, text, CandidatePoolSize)
	if err != nil {
		return nil, fmt.Errorf("keyword candidates: %w", err)
	}

	fused := Fuse(vector, keyword, QueryTokens(text))
	out := make([]Result, 0, limit)
	for _, r := range fused {
		if !filters.Match(r.Decision) {
			continue
		}
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

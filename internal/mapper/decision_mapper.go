package mapper

import (
	"encoding/json"

	"decision-ledger-be/internal/entity"
	"decision-ledger-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type DecisionMapper struct{}

func NewDecisionMapper() *DecisionMapper {
	return &DecisionMapper{}
}

func (m *DecisionMapper) ToEntity(d *model.Decision) *entity.Decision {
	if d == nil {
		return nil
	}

	var embedding []float32
	if d.Embedding != nil {
		embedding = d.Embedding.Slice()
	}

	var rawContext *entity.RawContext
	if len(d.RawContext) > 0 {
		var rc entity.RawContext
		if err := json.Unmarshal(d.RawContext, &rc); err == nil {
			rawContext = &rc
		}
	}

	return &entity.Decision{
		Id:                d.Id,
		WorkspaceId:       d.WorkspaceId,
		Title:             d.Title,
		Summary:           d.Summary,
		Rationale:         d.Rationale,
		OwnerId:           d.OwnerSlackId,
		OwnerName:         d.OwnerName,
		Category:          d.Category,
		Tags:              []string(d.Tags),
		ImpactAreas:       []string(d.ImpactArea),
		Participants:      []string(d.Participants),
		Confidence:        d.Confidence,
		Embedding:         embedding,
		Status:            entity.DecisionStatus(d.Status),
		SourceType:        d.SourceType,
		SourceURL:         d.SourceURL,
		SourceChannelId:   d.SourceChannelId,
		SourceChannelName: d.SourceChannelName,
		SourceThreadTs:    d.SourceThreadTs,
		RawContext:        rawContext,
		DecisionMadeAt:    d.DecisionMadeAt,
		ConfirmedAt:       d.ConfirmedAt,
		ConfirmedBy:       d.ConfirmedBy,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func (m *DecisionMapper) ToModel(d *entity.Decision) *model.Decision {
	if d == nil {
		return nil
	}

	var embedding *pgvector.Vector
	if len(d.Embedding) > 0 {
		v := pgvector.NewVector(d.Embedding)
		embedding = &v
	}

	var rawContext datatypes.JSON
	if d.RawContext != nil {
		if b, err := json.Marshal(d.RawContext); err == nil {
			rawContext = datatypes.JSON(b)
		}
	}

	return &model.Decision{
		Id:                d.Id,
		WorkspaceId:       d.WorkspaceId,
		Title:             d.Title,
		Summary:           d.Summary,
		Rationale:         d.Rationale,
		OwnerSlackId:      d.OwnerId,
		OwnerName:         d.OwnerName,
		Category:          d.Category,
		Tags:              datatypes.JSONSlice[string](nonNil(d.Tags)),
		ImpactArea:        datatypes.JSONSlice[string](nonNil(d.ImpactAreas)),
		Participants:      datatypes.JSONSlice[string](nonNil(d.Participants)),
		Confidence:        d.Confidence,
		Embedding:         embedding,
		Status:            string(d.Status),
		SourceType:        d.SourceType,
		SourceURL:         d.SourceURL,
		SourceChannelId:   d.SourceChannelId,
		SourceChannelName: d.SourceChannelName,
		SourceThreadTs:    d.SourceThreadTs,
		RawContext:        rawContext,
		DecisionMadeAt:    d.DecisionMadeAt,
		ConfirmedAt:       d.ConfirmedAt,
		ConfirmedBy:       d.ConfirmedBy,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func (m *DecisionMapper) ToEntities(decisions []*model.Decision) []*entity.Decision {
	entities := make([]*entity.Decision, len(decisions))
	for i, d := range decisions {
		entities[i] = m.ToEntity(d)
	}
	return entities
}

type DecisionLinkMapper struct{}

func NewDecisionLinkMapper() *DecisionLinkMapper {
	return &DecisionLinkMapper{}
}

func (m *DecisionLinkMapper) ToEntity(l *model.DecisionLink) *entity.DecisionLink {
	if l == nil {
		return nil
	}
	var metadata map[string]interface{}
	if len(l.LinkMetadata) > 0 {
		_ = json.Unmarshal(l.LinkMetadata, &metadata)
	}
	return &entity.DecisionLink{
		Id:         l.Id,
		DecisionId: l.DecisionId,
		LinkType:   entity.LinkType(l.LinkType),
		URL:        l.LinkURL,
		Title:      l.LinkTitle,
		Metadata:   metadata,
		CreatedAt:  l.CreatedAt,
	}
}

func (m *DecisionLinkMapper) ToModel(l *entity.DecisionLink) *model.DecisionLink {
	if l == nil {
		return nil
	}
	var metadata datatypes.JSON
	if l.Metadata != nil {
		if b, err := json.Marshal(l.Metadata); err == nil {
			metadata = datatypes.JSON(b)
		}
	}
	return &model.DecisionLink{
		Id:           l.Id,
		DecisionId:   l.DecisionId,
		LinkType:     string(l.LinkType),
		LinkURL:      l.URL,
		LinkTitle:    l.Title,
		LinkMetadata: metadata,
		CreatedAt:    l.CreatedAt,
	}
}

func (m *DecisionLinkMapper) ToEntities(links []*model.DecisionLink) []*entity.DecisionLink {
	entities := make([]*entity.DecisionLink, len(links))
	for i, l := range links {
		entities[i] = m.ToEntity(l)
	}
	return entities
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

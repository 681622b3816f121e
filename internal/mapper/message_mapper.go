package mapper

import (
	"decision-ledger-be/internal/entity"
	"decision-ledger-be/internal/model"
)

type RawMessageMapper struct{}

func NewRawMessageMapper() *RawMessageMapper {
	return &RawMessageMapper{}
}

func (m *RawMessageMapper) ToEntity(r *model.RawMessage) *entity.RawMessage {
	if r == nil {
		return nil
	}
	return &entity.RawMessage{
		Id:                r.Id,
		WorkspaceId:       r.WorkspaceId,
		ExternalMessageId: r.SlackMessageId,
		ChannelId:         r.ChannelId,
		ThreadTs:          r.ThreadTs,
		UserId:            r.UserSlackId,
		Text:              r.Text,
		MessageTs:         r.MessageTs,
		SourceHint:        r.SourceHint,
		Processed:         r.Processed,
		DecisionId:        r.DecisionId,
		CreatedAt:         r.CreatedAt,
	}
}

func (m *RawMessageMapper) ToModel(r *entity.RawMessage) *model.RawMessage {
	if r == nil {
		return nil
	}
	return &model.RawMessage{
		Id:             r.Id,
		WorkspaceId:    r.WorkspaceId,
		SlackMessageId: r.ExternalMessageId,
		ChannelId:      r.ChannelId,
		ThreadTs:       r.ThreadTs,
		UserSlackId:    r.UserId,
		Text:           r.Text,
		MessageTs:      r.MessageTs,
		SourceHint:     r.SourceHint,
		Processed:      r.Processed,
		DecisionId:     r.DecisionId,
		CreatedAt:      r.CreatedAt,
	}
}

type PendingConfirmationMapper struct{}

func NewPendingConfirmationMapper() *PendingConfirmationMapper {
	return &PendingConfirmationMapper{}
}

func (m *PendingConfirmationMapper) ToEntity(p *model.PendingConfirmation) *entity.PendingConfirmation {
	if p == nil {
		return nil
	}
	return &entity.PendingConfirmation{
		Id:               p.Id,
		WorkspaceId:      p.WorkspaceId,
		DecisionId:       p.DecisionId,
		ChannelId:        p.SlackChannelId,
		MessageTs:        p.SlackMessageTs,
		TargetReviewerId: p.TargetUserSlackId,
		ExpiresAt:        p.ExpiresAt,
		Status:           entity.ConfirmationStatus(p.Status),
		CreatedAt:        p.CreatedAt,
	}
}

func (m *PendingConfirmationMapper) ToModel(p *entity.PendingConfirmation) *model.PendingConfirmation {
	if p == nil {
		return nil
	}
	return &model.PendingConfirmation{
		Id:                p.Id,
		WorkspaceId:       p.WorkspaceId,
		DecisionId:        p.DecisionId,
		SlackChannelId:    p.ChannelId,
		SlackMessageTs:    p.MessageTs,
		TargetUserSlackId: p.TargetReviewerId,
		ExpiresAt:         p.ExpiresAt,
		Status:            string(p.Status),
		CreatedAt:         p.CreatedAt,
	}
}

func (m *PendingConfirmationMapper) ToEntities(items []*model.PendingConfirmation) []*entity.PendingConfirmation {
	entities := make([]*entity.PendingConfirmation, len(items))
	for i, p := range items {
		entities[i] = m.ToEntity(p)
	}
	return entities
}

type QueryLogMapper struct{}

func NewQueryLogMapper() *QueryLogMapper {
	return &QueryLogMapper{}
}

func (m *QueryLogMapper) ToEntity(q *model.QueryLog) *entity.QueryLog {
	if q == nil {
		return nil
	}
	return &entity.QueryLog{
		Id:             q.Id,
		WorkspaceId:    q.WorkspaceId,
		RequesterId:    q.UserSlackId,
		QueryText:      q.QueryText,
		ResultsCount:   q.ResultsCount,
		ResponseTimeMs: q.ResponseTimeMs,
		Source:         q.Source,
		Helpful:        q.Helpful,
		CreatedAt:      q.CreatedAt,
	}
}

func (m *QueryLogMapper) ToModel(q *entity.QueryLog) *model.QueryLog {
	if q == nil {
		return nil
	}
	return &model.QueryLog{
		Id:             q.Id,
		WorkspaceId:    q.WorkspaceId,
		UserSlackId:    q.RequesterId,
		QueryText:      q.QueryText,
		ResultsCount:   q.ResultsCount,
		ResponseTimeMs: q.ResponseTimeMs,
		Source:         q.Source,
		Helpful:        q.Helpful,
		CreatedAt:      q.CreatedAt,
	}
}

package mapper

import (
	"decision-ledger-be/internal/entity"
	"decision-ledger-be/internal/model"
)

type WorkspaceMapper struct{}

func NewWorkspaceMapper() *WorkspaceMapper {
	return &WorkspaceMapper{}
}

func (m *WorkspaceMapper) ToEntity(w *model.Workspace) *entity.Workspace {
	if w == nil {
		return nil
	}
	return &entity.Workspace{
		Id:             w.Id,
		ExternalTeamId: w.SlackTeamId,
		TeamName:       w.TeamName,
		BotToken:       w.BotAccessToken,
		JiraDomain:     w.JiraDomain,
		JiraEmail:      w.JiraEmail,
		JiraAPIToken:   w.JiraAPIToken,
		GithubOrg:      w.GithubOrg,
		GithubRepo:     w.GithubRepo,
		GithubToken:    w.GithubToken,
		BackfillStatus: entity.BackfillStatus(w.BackfillStatus),
		BackfillCursor: w.BackfillCursor,
		CreatedAt:      w.CreatedAt,
		UpdatedAt:      w.UpdatedAt,
	}
}

func (m *WorkspaceMapper) ToModel(w *entity.Workspace) *model.Workspace {
	if w == nil {
		return nil
	}
	return &model.Workspace{
		Id:             w.Id,
		SlackTeamId:    w.ExternalTeamId,
		TeamName:       w.TeamName,
		BotAccessToken: w.BotToken,
		JiraDomain:     w.JiraDomain,
		JiraEmail:      w.JiraEmail,
		JiraAPIToken:   w.JiraAPIToken,
		GithubOrg:      w.GithubOrg,
		GithubRepo:     w.GithubRepo,
		GithubToken:    w.GithubToken,
		BackfillStatus: string(w.BackfillStatus),
		BackfillCursor: w.BackfillCursor,
		CreatedAt:      w.CreatedAt,
		UpdatedAt:      w.UpdatedAt,
	}
}

type MonitoredChannelMapper struct{}

func NewMonitoredChannelMapper() *MonitoredChannelMapper {
	return &MonitoredChannelMapper{}
}

func (m *MonitoredChannelMapper) ToEntity(c *model.MonitoredChannel) *entity.MonitoredChannel {
	if c == nil {
		return nil
	}
	return &entity.MonitoredChannel{
		Id:          c.Id,
		WorkspaceId: c.WorkspaceId,
		ChannelId:   c.ChannelId,
		ChannelName: c.ChannelName,
		Enabled:     c.Enabled,
		CreatedAt:   c.CreatedAt,
	}
}

func (m *MonitoredChannelMapper) ToModel(c *entity.MonitoredChannel) *model.MonitoredChannel {
	if c == nil {
		return nil
	}
	return &model.MonitoredChannel{
		Id:          c.Id,
		WorkspaceId: c.WorkspaceId,
		ChannelId:   c.ChannelId,
		ChannelName: c.ChannelName,
		Enabled:     c.Enabled,
		CreatedAt:   c.CreatedAt,
	}
}

func (m *MonitoredChannelMapper) ToEntities(channels []*model.MonitoredChannel) []*entity.MonitoredChannel {
	entities := make([]*entity.MonitoredChannel, len(channels))
	for i, c := range channels {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

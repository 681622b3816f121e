package implementation

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"decision-ledger-be/internal/entity"
	"decision-ledger-be/internal/migration"
	"decision-ledger-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory sqlite database. Vector and full-text
// candidate queries need postgres and are not covered here.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(migration.Models()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func strPtr(s string) *string { return &s }

func seedDecision(t *testing.T, repo *DecisionRepositoryImpl, workspaceID uuid.UUID, status entity.DecisionStatus, category, owner string) *entity.Decision {
	t.Helper()
	d := &entity.Decision{
		Id:          uuid.New(),
		WorkspaceId: workspaceID,
		Title:       "Adopt " + category,
		Status:      status,
		SourceType:  entity.SourceTypeSlack,
		Confidence:  0.9,
		Tags:        []string{"postgres", category},
		CreatedAt:   time.Now().UTC(),
	}
	if category != "" {
		d.Category = strPtr(category)
	}
	if owner != "" {
		d.OwnerId = strPtr(owner)
		d.OwnerName = strPtr(strings.ToUpper(owner))
	}
	require.NoError(t, repo.Create(context.Background(), d))
	return d
}

func TestRawMessageCreateIfAbsentDeduplicates(t *testing.T) {
	db := newTestDB(t)
	repo := NewRawMessageRepository(db)
	ctx := context.Background()
	workspaceID := uuid.New()

	first := &entity.RawMessage{Id: uuid.New(), WorkspaceId: workspaceID, ChannelId: "C1", MessageTs: "1700000000.000100", Text: "let's use postgres"}
	created, err := repo.CreateIfAbsent(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)

	dup := &entity.RawMessage{Id: uuid.New(), WorkspaceId: workspaceID, ChannelId: "C1", MessageTs: "1700000000.000100", Text: "edited"}
	created, err = repo.CreateIfAbsent(ctx, dup)
	require.NoError(t, err)
	assert.False(t, created)

	otherChannel := &entity.RawMessage{Id: uuid.New(), WorkspaceId: workspaceID, ChannelId: "C2", MessageTs: "1700000000.000100"}
	created, err = repo.CreateIfAbsent(ctx, otherChannel)
	require.NoError(t, err)
	assert.True(t, created)

	stored, err := repo.FindOne(ctx, specification.ByID{ID: first.Id})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "let's use postgres", stored.Text)
}

func TestRawMessageMarkProcessedOnlyOnce(t *testing.T) {
	db := newTestDB(t)
	repo := NewRawMessageRepository(db)
	ctx := context.Background()

	msg := &entity.RawMessage{Id: uuid.New(), WorkspaceId: uuid.New(), ChannelId: "C1", MessageTs: "1.1"}
	_, err := repo.CreateIfAbsent(ctx, msg)
	require.NoError(t, err)

	decisionID := uuid.New()
	ok, err := repo.MarkProcessed(ctx, msg.Id, &decisionID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkProcessed(ctx, msg.Id, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := repo.FindOne(ctx, specification.ByID{ID: msg.Id})
	require.NoError(t, err)
	assert.True(t, stored.Processed)
	require.NotNil(t, stored.DecisionId)
	assert.Equal(t, decisionID, *stored.DecisionId)
}

func TestDecisionTransitionStatus(t *testing.T) {
	db := newTestDB(t)
	repo := NewDecisionRepository(db).(*DecisionRepositoryImpl)
	ctx := context.Background()
	d := seedDecision(t, repo, uuid.New(), entity.DecisionStatusPending, "schema", "U1")

	now := time.Now().UTC()
	ok, err := repo.TransitionStatus(ctx, d.Id, entity.SourcesFor(entity.DecisionStatusActive), entity.DecisionStatusActive,
		map[string]interface{}{"confirmed_at": now, "confirmed_by": "U1"})
	require.NoError(t, err)
	assert.True(t, ok)

	// A second confirm finds no pending row.
	ok, err = repo.TransitionStatus(ctx, d.Id, entity.SourcesFor(entity.DecisionStatusActive), entity.DecisionStatusActive, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.TransitionStatus(ctx, d.Id, entity.SourcesFor(entity.DecisionStatusIgnored), entity.DecisionStatusIgnored, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := repo.FindOne(ctx, specification.ByID{ID: d.Id})
	require.NoError(t, err)
	assert.Equal(t, entity.DecisionStatusActive, stored.Status)
	require.NotNil(t, stored.ConfirmedBy)
	assert.Equal(t, "U1", *stored.ConfirmedBy)

	ok, err = repo.TransitionStatus(ctx, d.Id, nil, entity.DecisionStatusDeleted, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDecisionUpdateFieldsSkipsDeleted(t *testing.T) {
	db := newTestDB(t)
	repo := NewDecisionRepository(db).(*DecisionRepositoryImpl)
	ctx := context.Background()
	workspaceID := uuid.New()
	live := seedDecision(t, repo, workspaceID, entity.DecisionStatusActive, "api", "U1")
	gone := seedDecision(t, repo, workspaceID, entity.DecisionStatusDeleted, "api", "U1")

	ok, err := repo.UpdateFields(ctx, live.Id, map[string]interface{}{"title": "Version the public API"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.UpdateFields(ctx, gone.Id, map[string]interface{}{"title": "resurrected"})
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := repo.FindOne(ctx, specification.ByID{ID: live.Id})
	require.NoError(t, err)
	assert.Equal(t, "Version the public API", stored.Title)

	visible, err := repo.Count(ctx, specification.ByWorkspaceID{WorkspaceID: workspaceID}, specification.NotDeletedDecision{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), visible)
}

func TestDecisionSetEmbeddingOnlyWhenActive(t *testing.T) {
	db := newTestDB(t)
	repo := NewDecisionRepository(db).(*DecisionRepositoryImpl)
	ctx := context.Background()
	workspaceID := uuid.New()
	active := seedDecision(t, repo, workspaceID, entity.DecisionStatusActive, "naming", "")
	pending := seedDecision(t, repo, workspaceID, entity.DecisionStatusPending, "naming", "")

	ok, err := repo.SetEmbedding(ctx, active.Id, []float32{0.1, 0.2, 0.3})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.SetEmbedding(ctx, pending.Id, []float32{0.1, 0.2, 0.3})
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := repo.FindOne(ctx, specification.ByID{ID: active.Id})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0.1, 0.2, 0.3}, stored.Embedding, 1e-6)
}

func TestDecisionFindAllFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewDecisionRepository(db).(*DecisionRepositoryImpl)
	ctx := context.Background()
	workspaceID := uuid.New()
	seedDecision(t, repo, workspaceID, entity.DecisionStatusActive, "schema", "U1")
	seedDecision(t, repo, workspaceID, entity.DecisionStatusActive, "security", "U2")
	seedDecision(t, repo, uuid.New(), entity.DecisionStatusActive, "schema", "U1")

	found, err := repo.FindAll(ctx,
		specification.ByWorkspaceID{WorkspaceID: workspaceID},
		specification.ByCategory{Category: "schema"},
	)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, []string{"postgres", "schema"}, found[0].Tags)

	tagged, err := repo.FindAll(ctx,
		specification.ByWorkspaceID{WorkspaceID: workspaceID},
		specification.HasTag{Tag: "security"},
	)
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	require.NotNil(t, tagged[0].OwnerId)
	assert.Equal(t, "U2", *tagged[0].OwnerId)
}

func TestDecisionAggregates(t *testing.T) {
	db := newTestDB(t)
	repo := NewDecisionRepository(db).(*DecisionRepositoryImpl)
	ctx := context.Background()
	workspaceID := uuid.New()
	seedDecision(t, repo, workspaceID, entity.DecisionStatusActive, "schema", "U1")
	seedDecision(t, repo, workspaceID, entity.DecisionStatusActive, "schema", "U1")
	seedDecision(t, repo, workspaceID, entity.DecisionStatusActive, "api", "U2")
	seedDecision(t, repo, workspaceID, entity.DecisionStatusPending, "api", "U2")
	seedDecision(t, repo, workspaceID, entity.DecisionStatusActive, "", "")

	categories, err := repo.CategoryCounts(ctx, workspaceID, 10)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "schema", categories[0].Category)
	assert.Equal(t, int64(2), categories[0].Count)
	assert.Equal(t, "api", categories[1].Category)
	assert.Equal(t, int64(1), categories[1].Count)

	owners, err := repo.TopOwners(ctx, workspaceID, 1)
	require.NoError(t, err)
	require.Len(t, owners, 1)
	require.NotNil(t, owners[0].OwnerID)
	assert.Equal(t, "U1", *owners[0].OwnerID)
	assert.Equal(t, int64(2), owners[0].Count)
}

func TestDecisionLinksGroupedByDecision(t *testing.T) {
	db := newTestDB(t)
	repo := NewDecisionLinkRepository(db)
	ctx := context.Background()
	first, second := uuid.New(), uuid.New()

	for _, link := range []*entity.DecisionLink{
		{Id: uuid.New(), DecisionId: first, LinkType: entity.LinkTypeJira, URL: "https://acme.atlassian.net/browse/ENG-1", Metadata: map[string]interface{}{"status": "Done"}},
		{Id: uuid.New(), DecisionId: first, LinkType: entity.LinkTypeURL, URL: "https://example.com/rfc"},
		{Id: uuid.New(), DecisionId: second, LinkType: entity.LinkTypeGithubPR, URL: "https://github.com/acme/api/pull/7", Title: strPtr("Add index")},
	} {
		require.NoError(t, repo.Create(ctx, link))
	}

	grouped, err := repo.FindByDecisionIDs(ctx, []uuid.UUID{first, second, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, grouped[first], 2)
	require.Len(t, grouped[second], 1)
	assert.Equal(t, entity.LinkTypeGithubPR, grouped[second][0].LinkType)

	empty, err := repo.FindByDecisionIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPendingConfirmationLifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewPendingConfirmationRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	stale := &entity.PendingConfirmation{
		Id: uuid.New(), WorkspaceId: uuid.New(), DecisionId: uuid.New(),
		TargetReviewerId: strPtr("U1"), ExpiresAt: now.Add(-time.Hour), Status: entity.ConfirmationStatusPending,
	}
	fresh := &entity.PendingConfirmation{
		Id: uuid.New(), WorkspaceId: stale.WorkspaceId, DecisionId: uuid.New(),
		ExpiresAt: now.Add(time.Hour), Status: entity.ConfirmationStatusPending,
	}
	require.NoError(t, repo.Create(ctx, stale))
	require.NoError(t, repo.Create(ctx, fresh))

	require.NoError(t, repo.SetPromptMessage(ctx, stale.Id, "D123", "1700000000.000100"))

	expired, err := repo.FindAll(ctx,
		specification.ByConfirmationStatus{Status: entity.ConfirmationStatusPending},
		specification.ExpiresBefore{Cutoff: now},
	)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, stale.Id, expired[0].Id)
	require.NotNil(t, expired[0].ChannelId)
	assert.Equal(t, "D123", *expired[0].ChannelId)

	ok, err := repo.TransitionStatus(ctx, stale.Id, entity.ConfirmationStatusPending, entity.ConfirmationStatusExpired)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.TransitionStatus(ctx, stale.Id, entity.ConfirmationStatusPending, entity.ConfirmationStatusConfirmed)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQueryLogSetHelpfulScopedToWorkspace(t *testing.T) {
	db := newTestDB(t)
	repo := NewQueryLogRepository(db)
	ctx := context.Background()
	workspaceID := uuid.New()

	entry := &entity.QueryLog{
		Id: uuid.New(), WorkspaceId: workspaceID, RequesterId: strPtr("U1"),
		QueryText: "why postgres", ResultsCount: 2, Source: entity.QuerySourceSlack, CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, entry))

	ok, err := repo.SetHelpful(ctx, uuid.New(), entry.Id, true)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.SetHelpful(ctx, workspaceID, entry.Id, true)
	require.NoError(t, err)
	assert.True(t, ok)

	count, err := repo.Count(ctx, specification.ByWorkspaceID{WorkspaceID: workspaceID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestWorkspaceSaveBackfillState(t *testing.T) {
	db := newTestDB(t)
	repo := NewWorkspaceRepository(db)
	ctx := context.Background()

	ws := &entity.Workspace{Id: uuid.New(), ExternalTeamId: "T1", TeamName: "Acme", BotToken: strPtr("sealed")}
	require.NoError(t, repo.Create(ctx, ws))

	cursor := "1700000000.000100"
	require.NoError(t, repo.SaveBackfillState(ctx, ws.Id, entity.BackfillStatusInProgress, &cursor))

	stored, err := repo.FindOne(ctx, specification.ByTeamID{TeamID: "T1"})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, entity.BackfillStatusInProgress, stored.BackfillStatus)
	require.NotNil(t, stored.BackfillCursor)
	assert.Equal(t, cursor, *stored.BackfillCursor)
	assert.Equal(t, "Acme", stored.TeamName)
	assert.True(t, stored.HasBotToken())

	missing, err := repo.FindOne(ctx, specification.ByTeamID{TeamID: "T404"})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMonitoredChannelsEnabledFilter(t *testing.T) {
	db := newTestDB(t)
	repo := NewMonitoredChannelRepository(db)
	ctx := context.Background()
	workspaceID := uuid.New()

	require.NoError(t, repo.Create(ctx, &entity.MonitoredChannel{Id: uuid.New(), WorkspaceId: workspaceID, ChannelId: "C1", Enabled: true}))
	off := &entity.MonitoredChannel{Id: uuid.New(), WorkspaceId: workspaceID, ChannelId: "C2", Enabled: true}
	require.NoError(t, repo.Create(ctx, off))
	off.Enabled = false
	require.NoError(t, repo.Update(ctx, off))

	enabled, err := repo.FindAll(ctx, specification.ByWorkspaceID{WorkspaceID: workspaceID}, specification.EnabledChannels{})
	require.NoError(t, err)
	require.Len(t, enabled, 1)
	assert.Equal(t, "C1", enabled[0].ChannelId)
}

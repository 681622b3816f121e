package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"decision-ledger-be/internal/entity"
	"decision-ledger-be/internal/repository/specification"
	"decision-ledger-be/pkg/ai/detector"
	"decision-ledger-be/pkg/ai/extractor"
	"decision-ledger-be/pkg/slack"
	"decision-ledger-be/pkg/tracker"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const threadRootTs = "1700000000.000100"

type pipelineHarness struct {
	*fixture
	svc       IPipelineService
	slack     *fakeSlack
	detector  *fakeDetector
	extractor *fakeExtractor
	embedder  *fakeEmbedder
	publisher *fakePublisher
	trackers  *fakeTrackers
	feed      *recordingFeed
}

func newPipelineHarness(t *testing.T) *pipelineHarness {
	t.Helper()
	h := &pipelineHarness{
		fixture:  newFixture(t),
		slack:    newFakeSlack(),
		detector: &fakeDetector{result: detector.Result{IsDecision: true, Confidence: 0.92}},
		extractor: &fakeExtractor{result: extractor.Result{
			Title:     "Use Postgres for the ledger",
			Summary:   ptr("Postgres with pgvector backs decision search"),
			OwnerID:   ptr("U2"),
			OwnerName: ptr("Dana"),
			Category:  ptr("architecture"),
			Tags:      []string{"postgres"},
		}},
		embedder:  &fakeEmbedder{vector: []float32{0.1, 0.2, 0.3}},
		publisher: &fakePublisher{},
		trackers:  &fakeTrackers{},
		feed:      &recordingFeed{},
	}
	h.slack.replies[threadRootTs] = []slack.Message{
		{User: "U1", Text: "should we keep mongo or move to postgres?", TS: threadRootTs},
		{User: "U2", Text: "postgres, pgvector covers search", TS: "1700000010.000100"},
		{User: "U1", Text: "agreed, let's go with it", TS: "1700000020.000100"},
	}
	h.svc = NewPipelineService(PipelineDeps{
		UowFactory: h.uow,
		Slack:      h.slack,
		Detector:   h.detector,
		Extractor:  h.extractor,
		Embedder:   h.embedder,
		Publisher:  h.publisher,
		Trackers:   h.trackers,
		Feed:       h.feed,
		Logger:     nopLogger(),
		Now:        fixedNow,
	})
	return h
}

func (h *pipelineHarness) store(t *testing.T, channel, ts string, hint *string) *entity.RawMessage {
	t.Helper()
	msg := &entity.RawMessage{
		WorkspaceId: h.workspace.Id,
		ChannelId:   channel,
		UserId:      ptr("U1"),
		Text:        "agreed, let's go with it",
		MessageTs:   ts,
		SourceHint:  hint,
	}
	stored, err := h.svc.StoreMessage(context.Background(), msg)
	require.NoError(t, err)
	require.True(t, stored)
	return msg
}

// ingestOne runs a message through detection and returns the pending decision.
func (h *pipelineHarness) ingestOne(t *testing.T) *entity.Decision {
	t.Helper()
	msg := h.store(t, "C1", threadRootTs, nil)
	require.NoError(t, h.svc.IngestMessage(context.Background(), msg.Id))

	decisions, err := h.uow.NewUnitOfWork(context.Background()).DecisionRepository().FindAll(context.Background(),
		specification.ByWorkspaceID{WorkspaceID: h.workspace.Id})
	require.NoError(t, err)
	require.Len(t, decisions, 1)
	return decisions[0]
}

func (h *pipelineHarness) decision(t *testing.T, id uuid.UUID) *entity.Decision {
	t.Helper()
	d, err := h.uow.NewUnitOfWork(context.Background()).DecisionRepository().FindOne(context.Background(), specification.ByID{ID: id})
	require.NoError(t, err)
	require.NotNil(t, d)
	return d
}

func (h *pipelineHarness) confirmation(t *testing.T, decisionID uuid.UUID) *entity.PendingConfirmation {
	t.Helper()
	c, err := h.uow.NewUnitOfWork(context.Background()).PendingConfirmationRepository().FindOne(context.Background(),
		specification.ByDecisionID{DecisionID: decisionID})
	require.NoError(t, err)
	require.NotNil(t, c)
	return c
}

func (h *pipelineHarness) message(t *testing.T, id uuid.UUID) *entity.RawMessage {
	t.Helper()
	m, err := h.uow.NewUnitOfWork(context.Background()).RawMessageRepository().FindOne(context.Background(), specification.ByID{ID: id})
	require.NoError(t, err)
	require.NotNil(t, m)
	return m
}

func (h *pipelineHarness) decisionCount(t *testing.T) int64 {
	t.Helper()
	n, err := h.uow.NewUnitOfWork(context.Background()).DecisionRepository().Count(context.Background(),
		specification.ByWorkspaceID{WorkspaceID: h.workspace.Id})
	require.NoError(t, err)
	return n
}

func (h *pipelineHarness) processJobs() []string {
	var ids []string
	for _, j := range h.publisher.jobs {
		if j.Job == JobProcessMessage {
			ids = append(ids, j.Data["message_id"].(string))
		}
	}
	return ids
}

func TestStoreMessageDeduplicatesProcessedMessages(t *testing.T) {
	h := newPipelineHarness(t)
	ctx := context.Background()

	first := h.store(t, "C1", threadRootTs, nil)
	require.NoError(t, h.svc.IngestMessage(ctx, first.Id))

	again, err := h.svc.StoreMessage(ctx, &entity.RawMessage{
		WorkspaceId: h.workspace.Id, ChannelId: "C1", MessageTs: threadRootTs, Text: "redelivered",
	})
	require.NoError(t, err)
	assert.False(t, again)
	assert.Equal(t, []string{first.Id.String()}, h.processJobs())
}

func TestStoreMessageRetryRecoversFailedEnqueue(t *testing.T) {
	h := newPipelineHarness(t)
	ctx := context.Background()

	h.publisher.err = errors.New("nats: no responders")
	msg := &entity.RawMessage{WorkspaceId: h.workspace.Id, ChannelId: "C1", MessageTs: threadRootTs, Text: "postgres it is"}
	stored, err := h.svc.StoreMessage(ctx, msg)
	require.Error(t, err)
	assert.True(t, stored)
	assert.Empty(t, h.processJobs())

	h.publisher.err = nil
	again, err := h.svc.StoreMessage(ctx, &entity.RawMessage{
		WorkspaceId: h.workspace.Id, ChannelId: "C1", MessageTs: threadRootTs, Text: "postgres it is",
	})
	require.NoError(t, err)
	assert.False(t, again)
	assert.Equal(t, []string{msg.Id.String()}, h.processJobs())
	assert.False(t, h.message(t, msg.Id).Processed)
}

func TestIngestMessageCreatesPendingDecisionAndPrompt(t *testing.T) {
	h := newPipelineHarness(t)
	d := h.ingestOne(t)

	assert.Equal(t, entity.DecisionStatusPending, d.Status)
	assert.Equal(t, "Use Postgres for the ledger", d.Title)
	assert.InDelta(t, 0.92, d.Confidence, 1e-9)
	assert.Equal(t, entity.SourceTypeSlack, d.SourceType)
	require.NotNil(t, d.SourceChannelId)
	assert.Equal(t, "C1", *d.SourceChannelId)
	require.NotNil(t, d.SourceChannelName)
	assert.Equal(t, "eng-decisions", *d.SourceChannelName)
	require.NotNil(t, d.SourceThreadTs)
	assert.Equal(t, threadRootTs, *d.SourceThreadTs)
	assert.Equal(t, []string{"U1", "U2"}, d.Participants)
	require.NotNil(t, d.RawContext)
	assert.Len(t, d.RawContext.Messages, 3)
	assert.Empty(t, d.Embedding)

	c := h.confirmation(t, d.Id)
	assert.Equal(t, entity.ConfirmationStatusPending, c.Status)
	assert.True(t, c.ExpiresAt.Equal(testNow.Add(ConfirmationTTL)))
	require.NotNil(t, c.TargetReviewerId)
	assert.Equal(t, "U2", *c.TargetReviewerId)
	require.NotNil(t, c.MessageTs)
	assert.Equal(t, "1700009999.000100", *c.MessageTs)

	posts := h.slack.callsTo("chat.postMessage")
	require.Len(t, posts, 1)
	assert.Equal(t, "C1", posts[0].Channel)
	assert.Contains(t, posts[0].Text, "Use Postgres for the ledger")
	assert.Equal(t, 1, h.extractor.calls)
}

func TestIngestMessageLinksRawMessage(t *testing.T) {
	h := newPipelineHarness(t)
	msg := h.store(t, "C1", threadRootTs, nil)
	require.NoError(t, h.svc.IngestMessage(context.Background(), msg.Id))

	stored := h.message(t, msg.Id)
	assert.True(t, stored.Processed)
	require.NotNil(t, stored.DecisionId)

	// A redelivered job finds the message already processed.
	require.NoError(t, h.svc.IngestMessage(context.Background(), msg.Id))
	assert.Equal(t, 1, h.detector.calls)
	assert.Equal(t, int64(1), h.decisionCount(t))
}

func TestIngestMessageBelowThreshold(t *testing.T) {
	h := newPipelineHarness(t)
	h.detector.result = detector.Result{IsDecision: true, Confidence: ConfidenceThreshold - 0.01}

	msg := h.store(t, "C1", threadRootTs, nil)
	require.NoError(t, h.svc.IngestMessage(context.Background(), msg.Id))

	assert.Equal(t, int64(0), h.decisionCount(t))
	assert.True(t, h.message(t, msg.Id).Processed)
	assert.Nil(t, h.message(t, msg.Id).DecisionId)
	assert.Equal(t, 0, h.extractor.calls)
	assert.Empty(t, h.slack.callsTo("chat.postMessage"))
}

func TestIngestMessageRespectsDailyCap(t *testing.T) {
	h := newPipelineHarness(t)
	for i := 0; i < MaxDailyDetections; i++ {
		h.seedDecision(t, entity.DecisionStatusActive, testNow.Add(-time.Duration(i)*time.Minute))
	}

	msg := h.store(t, "C1", threadRootTs, nil)
	require.NoError(t, h.svc.IngestMessage(context.Background(), msg.Id))

	assert.Equal(t, int64(MaxDailyDetections), h.decisionCount(t))
	assert.True(t, h.message(t, msg.Id).Processed)
	assert.Equal(t, 0, h.extractor.calls)
}

func TestIngestMessageCapCountsOnlyToday(t *testing.T) {
	h := newPipelineHarness(t)
	for i := 0; i < MaxDailyDetections; i++ {
		h.seedDecision(t, entity.DecisionStatusActive, testNow.AddDate(0, 0, -1))
	}

	msg := h.store(t, "C1", threadRootTs, nil)
	require.NoError(t, h.svc.IngestMessage(context.Background(), msg.Id))

	assert.Equal(t, int64(MaxDailyDetections+1), h.decisionCount(t))
}

func TestIngestMessageSkipsUnmonitoredChannel(t *testing.T) {
	h := newPipelineHarness(t)
	msg := h.store(t, "C9", threadRootTs, nil)
	require.NoError(t, h.svc.IngestMessage(context.Background(), msg.Id))

	assert.Equal(t, 0, h.detector.calls)
	assert.True(t, h.message(t, msg.Id).Processed)
}

func TestIngestMessageSkipsUninstalledWorkspace(t *testing.T) {
	h := newPipelineHarness(t)
	ctx := context.Background()
	bare := &entity.Workspace{Id: uuid.New(), ExternalTeamId: "T2", TeamName: "No bot"}
	require.NoError(t, h.uow.NewUnitOfWork(ctx).WorkspaceRepository().Create(ctx, bare))

	msg := &entity.RawMessage{WorkspaceId: bare.Id, ChannelId: "C1", MessageTs: threadRootTs}
	_, err := h.svc.StoreMessage(ctx, msg)
	require.NoError(t, err)
	require.NoError(t, h.svc.IngestMessage(ctx, msg.Id))

	assert.Equal(t, 0, h.detector.calls)
	assert.True(t, h.message(t, msg.Id).Processed)
}

func TestIngestMessageUsesHuddlePrompt(t *testing.T) {
	h := newPipelineHarness(t)
	msg := h.store(t, "C1", threadRootTs, ptr(entity.SourceHintHuddleTranscript))
	require.NoError(t, h.svc.IngestMessage(context.Background(), msg.Id))

	require.Len(t, h.detector.prompts, 1)
	assert.Equal(t, detector.HuddlePrompt, h.detector.prompts[0])
}

func TestIngestMessageFallsBackToSingleMessage(t *testing.T) {
	h := newPipelineHarness(t)
	msg := h.store(t, "C1", "1700000500.000100", nil)
	require.NoError(t, h.svc.IngestMessage(context.Background(), msg.Id))

	decisions, err := h.uow.NewUnitOfWork(context.Background()).DecisionRepository().FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, decisions, 1)
	require.NotNil(t, decisions[0].RawContext)
	require.Len(t, decisions[0].RawContext.Messages, 1)
	assert.Equal(t, "U1", decisions[0].RawContext.Messages[0].UserID)
}

func TestIngestMessageKeepsDecisionWhenPromptFails(t *testing.T) {
	h := newPipelineHarness(t)
	h.slack.postResp = &slack.Response{OK: false, Error: "channel_not_found"}

	d := h.ingestOne(t)
	c := h.confirmation(t, d.Id)
	assert.Nil(t, c.MessageTs)
	assert.Equal(t, entity.ConfirmationStatusPending, c.Status)
}

func TestResolveConfirmationConfirm(t *testing.T) {
	h := newPipelineHarness(t)
	d := h.ingestOne(t)
	ctx := context.Background()

	applied, err := h.svc.ResolveConfirmation(ctx, ResolveRequest{DecisionID: d.Id, Action: ActionConfirm, ActorID: "U2"})
	require.NoError(t, err)
	assert.True(t, applied)

	got := h.decision(t, d.Id)
	assert.Equal(t, entity.DecisionStatusActive, got.Status)
	require.NotNil(t, got.ConfirmedBy)
	assert.Equal(t, "U2", *got.ConfirmedBy)
	assert.NotNil(t, got.ConfirmedAt)
	assert.Equal(t, entity.ConfirmationStatusConfirmed, h.confirmation(t, d.Id).Status)

	updates := h.slack.callsTo("chat.update")
	require.Len(t, updates, 1)
	assert.Equal(t, "1700009999.000100", updates[0].TS)
	assert.Contains(t, updates[0].Text, "confirmed")

	assert.Equal(t, []string{JobProcessMessage, JobEnrichDecision, JobGenerateEmbedding}, h.publisher.names())

	// Double clicks and late ignores are no-ops.
	applied, err = h.svc.ResolveConfirmation(ctx, ResolveRequest{DecisionID: d.Id, Action: ActionConfirm, ActorID: "U2"})
	require.NoError(t, err)
	assert.False(t, applied)
	applied, err = h.svc.ResolveConfirmation(ctx, ResolveRequest{DecisionID: d.Id, Action: ActionIgnore, ActorID: "U3"})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, entity.DecisionStatusActive, h.decision(t, d.Id).Status)
	assert.Len(t, h.slack.callsTo("chat.update"), 1)
}

func TestResolveConfirmationIgnore(t *testing.T) {
	h := newPipelineHarness(t)
	d := h.ingestOne(t)

	applied, err := h.svc.ResolveConfirmation(context.Background(), ResolveRequest{DecisionID: d.Id, Action: ActionIgnore, ActorID: "U1"})
	require.NoError(t, err)
	assert.True(t, applied)

	got := h.decision(t, d.Id)
	assert.Equal(t, entity.DecisionStatusIgnored, got.Status)
	assert.Nil(t, got.ConfirmedAt)
	assert.Equal(t, entity.ConfirmationStatusIgnored, h.confirmation(t, d.Id).Status)
	assert.Equal(t, []string{JobProcessMessage}, h.publisher.names())
}

func TestResolveConfirmationEdgeCases(t *testing.T) {
	h := newPipelineHarness(t)
	ctx := context.Background()

	_, err := h.svc.ResolveConfirmation(ctx, ResolveRequest{DecisionID: uuid.New(), Action: "approve"})
	assert.ErrorIs(t, err, ErrInvalidAction)

	applied, err := h.svc.ResolveConfirmation(ctx, ResolveRequest{DecisionID: uuid.New(), Action: ActionConfirm})
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestResolveConfirmationScopedToWorkspace(t *testing.T) {
	h := newPipelineHarness(t)
	d := h.ingestOne(t)
	ctx := context.Background()

	applied, err := h.svc.ResolveConfirmation(ctx, ResolveRequest{WorkspaceID: uuid.New(), DecisionID: d.Id, Action: ActionConfirm, ActorID: "U9"})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, entity.DecisionStatusPending, h.decision(t, d.Id).Status)

	applied, err = h.svc.ResolveConfirmation(ctx, ResolveRequest{WorkspaceID: d.WorkspaceId, DecisionID: d.Id, Action: ActionConfirm, ActorID: "U1"})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, entity.DecisionStatusActive, h.decision(t, d.Id).Status)
}

func TestSweepExpired(t *testing.T) {
	h := newPipelineHarness(t)
	d := h.ingestOne(t)
	ctx := context.Background()

	n, err := h.svc.SweepExpired(ctx, testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = h.svc.SweepExpired(ctx, testNow.Add(ConfirmationTTL+time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, entity.DecisionStatusExpired, h.decision(t, d.Id).Status)
	assert.Equal(t, entity.ConfirmationStatusExpired, h.confirmation(t, d.Id).Status)
	updates := h.slack.callsTo("chat.update")
	require.Len(t, updates, 1)
	assert.Contains(t, updates[0].Text, "expired")

	n, err = h.svc.SweepExpired(ctx, testNow.Add(ConfirmationTTL+time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// A click that arrives after the sweep changes nothing.
	applied, err := h.svc.ResolveConfirmation(ctx, ResolveRequest{DecisionID: d.Id, Action: ActionConfirm, ActorID: "U2"})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, entity.DecisionStatusExpired, h.decision(t, d.Id).Status)
}

func TestSweepSkipsResolvedDecision(t *testing.T) {
	h := newPipelineHarness(t)
	d := h.ingestOne(t)
	ctx := context.Background()

	_, err := h.svc.ResolveConfirmation(ctx, ResolveRequest{DecisionID: d.Id, Action: ActionConfirm, ActorID: "U2"})
	require.NoError(t, err)

	n, err := h.svc.SweepExpired(ctx, testNow.Add(ConfirmationTTL+time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, entity.DecisionStatusActive, h.decision(t, d.Id).Status)
}

func TestPipelinePublishesFeedEvents(t *testing.T) {
	h := newPipelineHarness(t)
	ctx := context.Background()

	confirmed := h.ingestOne(t)
	_, err := h.svc.ResolveConfirmation(ctx, ResolveRequest{DecisionID: confirmed.Id, Action: ActionConfirm, ActorID: "U2"})
	require.NoError(t, err)

	msg := h.store(t, "C1", "1700000500.000100", nil)
	require.NoError(t, h.svc.IngestMessage(ctx, msg.Id))
	_, err = h.svc.SweepExpired(ctx, testNow.Add(ConfirmationTTL+time.Minute))
	require.NoError(t, err)

	assert.Equal(t, []string{
		FeedDecisionDetected,
		FeedDecisionConfirmed,
		FeedDecisionDetected,
		FeedDecisionExpired,
	}, h.feed.types())
	assert.Equal(t, h.workspace.Id, h.feed.events[0].Workspace)
	assert.Equal(t, confirmed.Id, h.feed.events[1].Decision)
}

func TestEmbedDecision(t *testing.T) {
	h := newPipelineHarness(t)
	ctx := context.Background()
	active := h.seedDecision(t, entity.DecisionStatusActive, testNow)
	pending := h.seedDecision(t, entity.DecisionStatusPending, testNow)

	require.NoError(t, h.svc.EmbedDecision(ctx, active.Id))
	require.NoError(t, h.svc.EmbedDecision(ctx, pending.Id))
	require.NoError(t, h.svc.EmbedDecision(ctx, uuid.New()))

	assert.InDeltaSlice(t, []float32{0.1, 0.2, 0.3}, h.decision(t, active.Id).Embedding, 1e-6)
	assert.Empty(t, h.decision(t, pending.Id).Embedding)
}

func TestEmbedDecisionLeavesUnindexedOnEmptyVector(t *testing.T) {
	h := newPipelineHarness(t)
	h.embedder.vector = nil
	active := h.seedDecision(t, entity.DecisionStatusActive, testNow)

	require.NoError(t, h.svc.EmbedDecision(context.Background(), active.Id))
	assert.Empty(t, h.decision(t, active.Id).Embedding)
}

func TestEnrichDecisionAttachesLinksOnce(t *testing.T) {
	h := newPipelineHarness(t)
	ctx := context.Background()

	h.workspace.JiraDomain = ptr("acme.atlassian.net")
	h.workspace.JiraEmail = ptr("bot@acme.io")
	h.workspace.JiraAPIToken = ptr("jira-token")
	h.workspace.GithubToken = ptr("gh-token")
	require.NoError(t, h.uow.NewUnitOfWork(ctx).WorkspaceRepository().Update(ctx, h.workspace))

	h.trackers.issues = map[string]*tracker.JiraIssue{
		"ENG-12": {Key: "ENG-12", Title: "Migrate to Postgres", Status: "In Progress", URL: "https://acme.atlassian.net/browse/ENG-12"},
	}
	h.trackers.prs = map[int]*tracker.PullRequest{
		7: {Number: 7, Title: "Add pgvector", State: "open", URL: "https://github.com/acme/api/pull/7"},
	}

	d := &entity.Decision{
		Id:          uuid.New(),
		WorkspaceId: h.workspace.Id,
		Title:       "Use Postgres",
		Status:      entity.DecisionStatusActive,
		SourceType:  entity.SourceTypeSlack,
		RawContext: &entity.RawContext{
			Messages: []entity.ContextMessage{
				{UserID: "U1", Text: "tracking this in ENG-12 and ENG-404"},
				{UserID: "U2", Text: "schema change is https://github.com/acme/api/pull/7"},
			},
			ReferencedURLs: []string{"https://example.com/rfc", "https://github.com/acme/api/pull/7"},
		},
		CreatedAt: testNow,
	}
	require.NoError(t, h.uow.NewUnitOfWork(ctx).DecisionRepository().Create(ctx, d))

	require.NoError(t, h.svc.EnrichDecision(ctx, d.Id))
	require.NoError(t, h.svc.EnrichDecision(ctx, d.Id))

	links, err := h.uow.NewUnitOfWork(ctx).DecisionLinkRepository().FindAll(ctx, specification.ByDecisionID{DecisionID: d.Id})
	require.NoError(t, err)
	require.Len(t, links, 3)

	byType := map[entity.LinkType]*entity.DecisionLink{}
	for _, l := range links {
		byType[l.LinkType] = l
	}
	require.Contains(t, byType, entity.LinkTypeJira)
	assert.Equal(t, "https://acme.atlassian.net/browse/ENG-12", byType[entity.LinkTypeJira].URL)
	require.Contains(t, byType, entity.LinkTypeGithubPR)
	require.NotNil(t, byType[entity.LinkTypeGithubPR].Title)
	assert.Equal(t, "#7: Add pgvector", *byType[entity.LinkTypeGithubPR].Title)
	require.Contains(t, byType, entity.LinkTypeURL)
	assert.Equal(t, "https://example.com/rfc", byType[entity.LinkTypeURL].URL)

	assert.Contains(t, h.trackers.jira, "acme.atlassian.net|bot@acme.io|jira-token")
}

func TestEnrichDecisionSkipsInactive(t *testing.T) {
	h := newPipelineHarness(t)
	pending := h.seedDecision(t, entity.DecisionStatusPending, testNow)

	require.NoError(t, h.svc.EnrichDecision(context.Background(), pending.Id))
	links, err := h.uow.NewUnitOfWork(context.Background()).DecisionLinkRepository().FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, links)
}

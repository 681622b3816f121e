package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"decision-ledger-be/internal/entity"
	"decision-ledger-be/internal/migration"
	"decision-ledger-be/internal/pkg/logger"
	"decision-ledger-be/internal/repository/unitofwork"
	"decision-ledger-be/pkg/ai"
	"decision-ledger-be/pkg/ai/detector"
	"decision-ledger-be/pkg/ai/extractor"
	"decision-ledger-be/pkg/slack"
	"decision-ledger-be/pkg/tracker"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func ptr[T any](v T) *T { return &v }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "ledger.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(migration.Models()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type fixture struct {
	db        *gorm.DB
	uow       unitofwork.RepositoryFactory
	workspace *entity.Workspace
	channel   *entity.MonitoredChannel
}

// newFixture seeds one installed workspace monitoring channel C1.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{db: db, uow: unitofwork.NewRepositoryFactory(db)}
	ctx := context.Background()
	repos := f.uow.NewUnitOfWork(ctx)

	f.workspace = &entity.Workspace{
		Id:             uuid.New(),
		ExternalTeamId: "T1",
		TeamName:       "Acme",
		BotToken:       ptr("xoxb-test"),
	}
	require.NoError(t, repos.WorkspaceRepository().Create(ctx, f.workspace))

	f.channel = &entity.MonitoredChannel{
		Id:          uuid.New(),
		WorkspaceId: f.workspace.Id,
		ChannelId:   "C1",
		ChannelName: ptr("eng-decisions"),
		Enabled:     true,
	}
	require.NoError(t, repos.MonitoredChannelRepository().Create(ctx, f.channel))
	return f
}

func (f *fixture) seedDecision(t *testing.T, status entity.DecisionStatus, createdAt time.Time) *entity.Decision {
	t.Helper()
	d := &entity.Decision{
		Id:          uuid.New(),
		WorkspaceId: f.workspace.Id,
		Title:       "Adopt pgvector",
		Summary:     ptr("Use pgvector for semantic search"),
		Status:      status,
		SourceType:  entity.SourceTypeSlack,
		Confidence:  0.9,
		CreatedAt:   createdAt,
	}
	require.NoError(t, f.uow.NewUnitOfWork(context.Background()).DecisionRepository().Create(context.Background(), d))
	return d
}

type slackCall struct {
	Method  string
	Channel string
	TS      string
	Text    string
}

type fakeSlack struct {
	mu        sync.Mutex
	calls     []slackCall
	replies   map[string][]slack.Message
	history   map[string][]*slack.Response
	postResp  *slack.Response
	postErr   error
	responded []interface{}
	onReplies func()
}

func newFakeSlack() *fakeSlack {
	return &fakeSlack{
		replies:  map[string][]slack.Message{},
		history:  map[string][]*slack.Response{},
		postResp: &slack.Response{OK: true, Channel: "C1", TS: "1700009999.000100"},
	}
}

func (f *fakeSlack) record(c slackCall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeSlack) callsTo(method string) []slackCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []slackCall
	for _, c := range f.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeSlack) PostMessage(ctx context.Context, token, channel, text string, blocks []slack.Block) (*slack.Response, error) {
	f.record(slackCall{Method: "chat.postMessage", Channel: channel, Text: text})
	return f.postResp, f.postErr
}

func (f *fakeSlack) UpdateMessage(ctx context.Context, token, channel, ts, text string, blocks []slack.Block) (*slack.Response, error) {
	f.record(slackCall{Method: "chat.update", Channel: channel, TS: ts, Text: text})
	return &slack.Response{OK: true}, nil
}

func (f *fakeSlack) ConversationHistory(ctx context.Context, token, channel, oldest, cursor string, limit int) (*slack.Response, error) {
	f.record(slackCall{Method: "conversations.history", Channel: channel, TS: cursor})
	f.mu.Lock()
	defer f.mu.Unlock()
	pages := f.history[channel]
	if len(pages) == 0 {
		return &slack.Response{OK: true}, nil
	}
	f.history[channel] = pages[1:]
	return pages[0], nil
}

func (f *fakeSlack) ConversationReplies(ctx context.Context, token, channel, ts string, limit int) (*slack.Response, error) {
	f.record(slackCall{Method: "conversations.replies", Channel: channel, TS: ts})
	if f.onReplies != nil {
		f.onReplies()
	}
	msgs, ok := f.replies[ts]
	if !ok {
		return &slack.Response{OK: false, Error: "thread_not_found"}, nil
	}
	return &slack.Response{OK: true, Messages: msgs}, nil
}

func (f *fakeSlack) OpenModal(ctx context.Context, token, triggerID string, view slack.View) (*slack.Response, error) {
	f.record(slackCall{Method: "views.open"})
	return &slack.Response{OK: true}, nil
}

func (f *fakeSlack) RespondToURL(ctx context.Context, responseURL string, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responded = append(f.responded, payload)
	return nil
}

type fakeDetector struct {
	mu      sync.Mutex
	result  detector.Result
	calls   int
	prompts []string
}

func (f *fakeDetector) Detect(ctx context.Context, turns []ai.Turn) detector.Result {
	return f.DetectWithPrompt(ctx, turns, "")
}

func (f *fakeDetector) DetectWithPrompt(ctx context.Context, turns []ai.Turn, prompt string) detector.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	return f.result
}

type fakeExtractor struct {
	result extractor.Result
	calls  int
}

func (f *fakeExtractor) Extract(ctx context.Context, turns []ai.Turn) extractor.Result {
	f.calls++
	return f.result
}

type fakeEmbedder struct {
	vector  []float32
	queries []string
}

func (f *fakeEmbedder) EmbedDocument(ctx context.Context, text string) []float32 {
	return f.vector
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) []float32 {
	f.queries = append(f.queries, text)
	return f.vector
}

type enqueued struct {
	Job  string
	Data map[string]interface{}
}

type fakePublisher struct {
	mu   sync.Mutex
	jobs []enqueued
	err  error
}

func (f *fakePublisher) Enqueue(ctx context.Context, job string, data map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, enqueued{Job: job, Data: data})
	return nil
}

func (f *fakePublisher) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.jobs))
	for i, j := range f.jobs {
		out[i] = j.Job
	}
	return out
}

type fakeTrackers struct {
	issues map[string]*tracker.JiraIssue
	prs    map[int]*tracker.PullRequest
	jira   []string
}

func (f *fakeTrackers) Jira(domain, email, token string) tracker.IssueLookup {
	f.jira = append(f.jira, domain+"|"+email+"|"+token)
	return f
}

func (f *fakeTrackers) GitHub(ctx context.Context, token string) (tracker.PullRequestLookup, error) {
	if token == "" {
		return nil, errors.New("empty token")
	}
	return f, nil
}

func (f *fakeTrackers) GetIssue(ctx context.Context, key string) (*tracker.JiraIssue, error) {
	issue, ok := f.issues[key]
	if !ok {
		return nil, errors.New("issue not found")
	}
	return issue, nil
}

func (f *fakeTrackers) GetPullRequest(ctx context.Context, owner, repo string, number int) (*tracker.PullRequest, error) {
	pr, ok := f.prs[number]
	if !ok {
		return nil, errors.New("pull request not found")
	}
	return pr, nil
}

type feedEvent struct {
	Workspace uuid.UUID
	Event     string
	Decision  uuid.UUID
}

type recordingFeed struct {
	mu     sync.Mutex
	events []feedEvent
}

func (f *recordingFeed) Publish(workspaceID uuid.UUID, event string, decision *entity.Decision) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, feedEvent{Workspace: workspaceID, Event: event, Decision: decision.Id})
}

func (f *recordingFeed) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.Event
	}
	return out
}

func nopLogger() logger.ILogger { return logger.NewNopLogger() }

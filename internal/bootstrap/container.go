package bootstrap

import (
	"context"
	"log"
	"time"

	"decision-ledger-be/internal/config"
	"decision-ledger-be/internal/controller"
	"decision-ledger-be/internal/handler"
	"decision-ledger-be/internal/metrics"
	"decision-ledger-be/internal/pkg/logger"
	"decision-ledger-be/internal/pkg/secret"
	"decision-ledger-be/internal/repository/lease"
	"decision-ledger-be/internal/repository/memory"
	"decision-ledger-be/internal/repository/unitofwork"
	"decision-ledger-be/internal/service"
	"decision-ledger-be/internal/websocket"
	"decision-ledger-be/pkg/ai/detector"
	"decision-ledger-be/pkg/ai/extractor"
	"decision-ledger-be/pkg/embedding"
	"decision-ledger-be/pkg/events"
	"decision-ledger-be/pkg/llm/factory"
	"decision-ledger-be/pkg/rag/response"
	"decision-ledger-be/pkg/rag/search"
	"decision-ledger-be/pkg/retry"
	"decision-ledger-be/pkg/slack"
	"decision-ledger-be/pkg/tracker"

	pktNats "decision-ledger-be/pkg/nats"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const queryEmbeddingTTL = 10 * time.Minute

type Container struct {
	// Controllers
	SlackController     controller.ISlackController
	DecisionController  controller.IDecisionController
	SearchController    controller.ISearchController
	WorkspaceController controller.IWorkspaceController

	// Live decision feed
	FeedHandler  *handler.FeedHandler
	WebSocketHub *websocket.Hub

	// Background Services (Exposed for main.go to run)
	ConsumerService  service.IConsumerService
	SchedulerService service.ISchedulerService

	// Used directly by the ledgerctl commands
	PipelineService  service.IPipelineService
	BackfillService  service.IBackfillService
	WorkspaceService service.IWorkspaceService
	PublisherService service.IPublisherService

	Metrics *metrics.Metrics
	Logger  logger.ILogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	m := metrics.New()

	var secrets secret.Codec = secret.Plaintext{}
	if cfg.App.EncryptionKey != "" {
		box, err := secret.NewBox(cfg.App.EncryptionKey)
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize secret box: %v", err)
		}
		secrets = box
	} else {
		log.Printf("[WARN] ENCRYPTION_KEY is empty, tracker tokens are stored as plaintext")
	}

	// 2. Job Queue
	var (
		publisher  events.Publisher
		subscriber events.Subscriber
		closers    []func()
	)
	if cfg.Worker.QueueDriver == "nats" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		}
		natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, pktNats.SubscriberOptions{
			MaxInFlight: cfg.Worker.MaxJobs,
			AckWait:     cfg.Worker.JobTimeout + 30*time.Second,
		})
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		}
		if natsPub != nil && natsSub != nil {
			publisher, subscriber = natsPub, natsSub
			closers = append(closers, natsPub.Close, natsSub.Close)
			log.Printf("[INFO] Using Job Queue: NATS JetStream (%s)", cfg.App.NatsURL)
		} else {
			if natsPub != nil {
				natsPub.Close()
			}
			if natsSub != nil {
				natsSub.Close()
			}
		}
	}
	if publisher == nil {
		bus := events.NewChannelBus()
		publisher, subscriber = bus, bus
		closers = append(closers, bus.Close)
		log.Printf("[INFO] Using Job Queue: in-process channel bus")
	}

	// Redis
	var locker lease.Locker = lease.NewLocalLocker()
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Backfill leases and feed fan-out disabled", err)
		_ = rdb.Close()
		rdb = nil
	} else {
		locker = lease.NewRedisLocker(rdb, "ledger:lease")
		closers = append(closers, func() { _ = rdb.Close() })
	}

	// WebSocket Hub
	hubCtx, stopHub := context.WithCancel(context.Background())
	wsHub := websocket.NewHub(rdb, sysLogger)
	go wsHub.Run(hubCtx)
	closers = append(closers, stopHub)

	// 3. AI Providers
	embeddingProvider, err := embedding.NewProvider(embedding.FactoryConfig{
		Provider:      cfg.Ai.EmbeddingProvider,
		Model:         cfg.Ai.EmbeddingModel,
		VoyageKey:     cfg.Keys.Voyage,
		GeminiKey:     cfg.Keys.GoogleGemini,
		JinaKey:       cfg.Keys.Jina,
		OllamaBaseURL: cfg.Ai.OllamaBaseURL,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Embedding Provider: %v", err)
	}
	log.Printf("[INFO] Using Embedding Provider: %s (%s)", cfg.Ai.EmbeddingProvider, cfg.Ai.EmbeddingModel)
	embedder := embedding.NewService(embeddingProvider, retry.DefaultPolicy(), sysLogger)

	llmKey := cfg.Keys.Anthropic
	llmBaseURL := ""
	switch cfg.Ai.LLMProvider {
	case "huggingface":
		llmKey = cfg.Keys.HuggingFace
	case "ollama":
		llmBaseURL = cfg.Ai.OllamaBaseURL
	}
	llmProvider, err := factory.NewLLMProvider(factory.Config{
		Provider:      cfg.Ai.LLMProvider,
		Model:         cfg.Ai.LLMModel,
		BaseURL:       llmBaseURL,
		APIKey:        llmKey,
		RatePerSecond: cfg.Ai.LLMRatePerSecond,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	decisionDetector := detector.New(llmProvider, sysLogger)
	decisionExtractor := extractor.New(llmProvider, sysLogger)
	synthesizer := response.NewSynthesizer(llmProvider, sysLogger)

	engine := search.NewEngine(
		service.NewDecisionCandidateSource(uowFactory),
		search.NewCachedEmbedder(embedder, memory.NewEmbeddingCache(queryEmbeddingTTL)),
	)

	slackClient := slack.NewClient(cfg.Slack.BaseURL, sysLogger)

	// 4. Services
	publisherService := service.NewPublisherService(publisher)

	pipelineService := service.NewPipelineService(service.PipelineDeps{
		UowFactory: uowFactory,
		Slack:      slackClient,
		Detector:   decisionDetector,
		Extractor:  decisionExtractor,
		Embedder:   embedder,
		Publisher:  publisherService,
		Feed:       wsHub,
		Trackers:   tracker.DefaultFactory{},
		Secrets:    secrets,
		Metrics:    m,
		Logger:     sysLogger,
	})
	backfillService := service.NewBackfillService(service.BackfillDeps{
		UowFactory: uowFactory,
		Slack:      slackClient,
		Detector:   decisionDetector,
		Extractor:  decisionExtractor,
		Embedder:   embedder,
		Locker:     locker,
		Limiter:    rate.NewLimiter(rate.Limit(1), 1),
		Metrics:    m,
		Logger:     sysLogger,
	})
	queryService := service.NewQueryService(uowFactory, engine, synthesizer, slackClient, m, sysLogger)
	decisionService := service.NewDecisionService(uowFactory, pipelineService, publisherService, slackClient, sysLogger)
	workspaceService := service.NewWorkspaceService(uowFactory, publisherService, secrets, locker, sysLogger)

	consumerService := service.NewConsumerService(
		subscriber,
		pipelineService,
		backfillService,
		queryService,
		m,
		sysLogger,
		cfg.Worker.JobTimeout,
		cfg.Worker.BackfillWindowDays,
	)
	schedulerService := service.NewSchedulerService(cfg.Worker.SweepSchedule, publisherService, sysLogger)

	// 5. Controllers
	return &Container{
		SlackController: controller.NewSlackController(
			cfg.Slack.SigningSecret,
			workspaceService,
			pipelineService,
			decisionService,
			publisherService,
		),
		DecisionController:  controller.NewDecisionController(decisionService),
		SearchController:    controller.NewSearchController(queryService),
		WorkspaceController: controller.NewWorkspaceController(workspaceService),

		FeedHandler:  handler.NewFeedHandler(wsHub, sysLogger),
		WebSocketHub: wsHub,

		ConsumerService:  consumerService,
		SchedulerService: schedulerService,

		PipelineService:  pipelineService,
		BackfillService:  backfillService,
		WorkspaceService: workspaceService,
		PublisherService: publisherService,

		Metrics: m,
		Logger:  sysLogger,

		closers: closers,
	}
}

// Close releases the queue and Redis connections and flushes the logger.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

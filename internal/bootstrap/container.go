package bootstrap

import (
	"context"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"rag-chat-be/internal/config"
	"rag-chat-be/internal/controller"
	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/internal/repository/implementation"
	"rag-chat-be/internal/service"
	"rag-chat-be/internal/websocket"
	"rag-chat-be/pkg/embedding"
	"rag-chat-be/pkg/events"
	"rag-chat-be/pkg/ingest"
	"rag-chat-be/pkg/llm/factory"
	pktNats "rag-chat-be/pkg/nats"
	"rag-chat-be/pkg/rag/citation"
	"rag-chat-be/pkg/rag/memory"
	"rag-chat-be/pkg/rag/orchestrator"
	"rag-chat-be/pkg/rag/planner"
	"rag-chat-be/pkg/rag/response"
	"rag-chat-be/pkg/rag/retrieval"
	"rag-chat-be/pkg/store"
)

type Container struct {
	// Controllers
	ChatController   controller.IChatController
	IngestController controller.IIngestController

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & events
	WebSocketHub   *websocket.Hub
	EventPublisher *pktNats.Publisher

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// Session store: Redis when configured, in-process otherwise.
	var sessionStore store.SessionStore
	if cfg.App.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Invalid REDIS_URL, falling back to in-memory sessions: %v", err)
			sessionStore = store.NewMemoryStore()
		} else {
			sessionStore = store.NewRedisStore(redis.NewClient(opts))
			log.Printf("[INFO] Using Redis session store")
		}
	} else {
		sessionStore = store.NewMemoryStore()
		log.Printf("[INFO] Using in-memory session store")
	}

	// Event bus for background indexing.
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)

	embeddingProvider := embedding.NewOllamaProvider(
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OllamaEmbedModel,
	)
	log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaEmbedModel)

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.LLMBaseURL,
		cfg.Ai.LLMAPIKey,
	)
	if err != nil {
		log.Panicf("Unable to initialize LLM provider: %v", err)
	}

	chunkRepo := implementation.NewChunkRepository(db)

	retriever := retrieval.NewHybridRetriever(
		embeddingProvider,
		chunkRepo,
		chunkRepo,
		retrieval.Config{
			TopK:     cfg.Retrieval.TopK,
			DenseK:   cfg.Retrieval.DenseK,
			LexicalK: cfg.Retrieval.LexicalK,
		},
		sysLogger,
	)

	memoryManager := memory.NewManager(sessionStore, memory.Config{
		TTL:             cfg.Memory.TTL,
		MaxMessages:     cfg.Memory.MaxMessages,
		SummaryMaxChars: cfg.Memory.SummaryMaxChars,
	}, sysLogger)

	turnOrchestrator := orchestrator.NewOrchestrator(
		planner.NewPlanner(llmProvider, sysLogger),
		retriever,
		response.NewGenerator(llmProvider, sysLogger),
		citation.NewValidator(llmProvider, sysLogger),
		memoryManager,
		sysLogger,
	)
	turnOrchestrator.HistoryInjectThreshold = cfg.Memory.HistoryInjectThreshold

	indexer := ingest.NewIndexer(chunkRepo, embeddingProvider, ingest.Config{
		ChunkSize:    cfg.Ingest.ChunkSize,
		ChunkOverlap: cfg.Ingest.ChunkOverlap,
	}, sysLogger)

	// NATS is optional; indexing still works without cross-service events.
	var eventPublisher *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		eventPublisher, err = pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			log.Printf("[WARN] NATS unavailable, indexing events disabled: %v", err)
			eventPublisher = nil
		}
	}

	hub := websocket.NewHub(sysLogger)

	// Fan indexing events out to websocket watchers.
	if eventPublisher != nil {
		subscriber, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
		if err != nil {
			log.Printf("[WARN] NATS subscriber unavailable: %v", err)
		} else if err := subscriber.Subscribe("events.>", "ws-fanout", func(ctx context.Context, event events.Event) error {
			hub.BroadcastEvent(event)
			return nil
		}); err != nil {
			log.Printf("[WARN] Failed to subscribe to indexing events: %v", err)
		}
	}

	chatService := service.NewChatService(turnOrchestrator, sysLogger)
	ingestService := service.NewIngestService(indexer, chunkRepo, pubSub, cfg.Ingest.IndexTopic, sysLogger)

	var publisher service.EventPublisher
	if eventPublisher != nil {
		publisher = eventPublisher
	}
	consumerService := service.NewConsumerService(pubSub, cfg.Ingest.IndexTopic, indexer, publisher, sysLogger)

	return &Container{
		ChatController:   controller.NewChatController(chatService),
		IngestController: controller.NewIngestController(ingestService),
		ConsumerService:  consumerService,
		WebSocketHub:     hub,
		EventPublisher:   eventPublisher,
		Logger:           sysLogger,
	}
}

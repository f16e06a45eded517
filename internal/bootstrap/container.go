package bootstrap

import (
	"context"
	"fmt"
	"time"

	"cybot-be/internal/config"
	"cybot-be/internal/controller"
	"cybot-be/internal/handler"
	"cybot-be/internal/pkg/logger"
	"cybot-be/internal/pkg/mailer"
	"cybot-be/internal/pkg/serverutils"
	"cybot-be/internal/repository/implementation"
	"cybot-be/internal/repository/memory"
	"cybot-be/internal/service"
	"cybot-be/internal/websocket"
	"cybot-be/pkg/complaint/dialogue"
	"cybot-be/pkg/complaint/intent"
	"cybot-be/pkg/complaint/state"
	"cybot-be/pkg/embedding"
	"cybot-be/pkg/llm"
	"cybot-be/pkg/llm/factory"
	pktNats "cybot-be/pkg/nats"
	"cybot-be/pkg/rag"
	"cybot-be/pkg/ticketing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const cleanupInterval = 10 * time.Minute

type Container struct {
	// Controllers
	ChatbotController  controller.IChatbotController
	DocumentController controller.IDocumentController
	HealthController   controller.IHealthController
	ChatSocketHandler  *handler.ChatSocketHandler

	// Guards /chat and /document routes; a no-op without API_JWT_SECRET.
	Guard fiber.Handler

	ChatbotService      service.IChatbotService
	IndexerService      service.IIndexerService
	PublisherService    service.IPublisherService
	ConsumerService     service.IConsumerService
	NotificationService *service.NotificationService
	DocumentWatcher     *service.DocumentWatcher
	WebSocketHub        *websocket.Hub
	Classifier          *intent.Classifier

	Logger logger.ILogger

	closers []func()
}

// NewClassifier builds the intent classifier from config. It is separate
// from the container so the CLI can classify without any backing service.
func NewClassifier(cfg *config.Config, log logger.ILogger) *intent.Classifier {
	opts := []intent.Option{intent.WithThreshold(cfg.Complaint.FuzzyThreshold)}
	if cfg.Ai.NLPLanguage != "" {
		analyzer, err := intent.NewSnowballAnalyzer(cfg.Ai.NLPLanguage)
		if err != nil {
			log.Warn("INTENT", "Keyword signal disabled", map[string]interface{}{"error": err.Error()})
		} else {
			opts = append(opts, intent.WithAnalyzer(analyzer))
		}
	}
	return intent.NewClassifier(opts...)
}

func newEmbeddingProvider(cfg *config.Config) (embedding.EmbeddingProvider, error) {
	switch cfg.Ai.EmbeddingProvider {
	case "ollama", "":
		return embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Ai.EmbeddingProvider)
	}
}

func newLLMProvider(cfg *config.Config) (llm.LLMProvider, error) {
	baseURL := cfg.Ai.LLMBaseURL
	if baseURL == "" && cfg.Ai.LLMProvider == "ollama" {
		baseURL = cfg.Ai.OllamaBaseURL
	}
	return factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, baseURL, cfg.Ai.LLMApiKey)
}

func newRedis(ctx context.Context, url string, log logger.ILogger) *redis.Client {
	if url == "" {
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("APP", "Failed to parse Redis URL, using it as address", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("APP", "Redis unreachable, running without it", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return nil
	}
	return rdb
}

func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Logging
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	promptLogger := logger.NewIsolatedLogger(cfg.App.PromptLogFilePath)

	c := &Container{Logger: sysLogger}

	// 2. AI providers
	embeddingProvider, err := newEmbeddingProvider(cfg)
	if err != nil {
		return nil, err
	}
	sysLogger.Info("APP", "Embedding provider ready", map[string]interface{}{"provider": cfg.Ai.EmbeddingProvider, "model": cfg.Ai.OllamaModel})

	llmProvider, err := newLLMProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("init llm provider: %w", err)
	}
	sysLogger.Info("APP", "LLM provider ready", map[string]interface{}{"provider": cfg.Ai.LLMProvider, "model": cfg.Ai.LLMModel})

	// 3. Infrastructure
	rdb := newRedis(context.Background(), cfg.App.RedisURL, sysLogger)
	if rdb != nil {
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	var publisher service.EventPublisher
	var subscriber service.EventSubscriber
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("EVENTS", "NATS publisher unavailable, events stay in-process", map[string]interface{}{"error": err.Error()})
		} else {
			publisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
		natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("EVENTS", "NATS subscriber unavailable", map[string]interface{}{"error": err.Error()})
		} else {
			subscriber = natsSub
			c.closers = append(c.closers, natsSub.Close)
		}
	}

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	c.WebSocketHub = websocket.NewHub(rdb, sysLogger)

	// 4. Documents
	chunkRepo := implementation.NewDocumentChunkRepository(db)
	c.IndexerService = service.NewIndexerService(
		cfg.Documents.Dir,
		cfg.Documents.ChunkSize,
		cfg.Documents.ChunkOverlap,
		chunkRepo,
		embeddingProvider,
		c.WebSocketHub,
		sysLogger,
	)
	c.PublisherService = service.NewPublisherService(cfg.Documents.Topic, pubSub)
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.Documents.Topic, c.IndexerService, sysLogger)
	if cfg.Documents.Watch {
		c.DocumentWatcher = service.NewDocumentWatcher(cfg.Documents.Dir, c.PublisherService, sysLogger)
	}

	// 5. Complaints
	var tickets ticketing.Service = ticketing.NewClient(cfg.Complaint.APIBaseURL, cfg.Complaint.RequestTimeout)
	if rdb != nil && cfg.Complaint.LookupCacheTTL > 0 {
		tickets = ticketing.NewCachedClient(tickets, ticketing.NewRedisKV(rdb), cfg.Complaint.LookupCacheTTL, sysLogger)
	}

	var mail mailer.IEmailService
	if cfg.Complaint.ConfirmationMail {
		if cfg.SMTP.Host == "" {
			sysLogger.Warn("MAILER", "Confirmation mail enabled but SMTP_HOST is empty", nil)
		} else {
			mail = mailer.NewEmailService(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Email, cfg.SMTP.Password, cfg.SMTP.SenderName, sysLogger)
		}
	}

	c.NotificationService = service.NewNotificationService(publisher, subscriber, mail, c.WebSocketHub, sysLogger)
	c.Classifier = NewClassifier(cfg, sysLogger)

	// 6. Chat
	sessions := memory.NewSessionRepository(cfg.Chat.SessionTTL, cleanupInterval, cfg.Chat.MemoryWindow)
	retriever := rag.NewRetriever(embeddingProvider, chunkRepo, cfg.Documents.TopK, sysLogger)
	answerer := rag.NewAnswerer(llmProvider, retriever, sessions, sysLogger, promptLogger)

	orchestrator := dialogue.NewOrchestrator(
		state.NewStore(cfg.Complaint.DraftTTL, cleanupInterval),
		c.Classifier,
		tickets,
		answerer,
		sysLogger,
		dialogue.WithFilingListener(c.NotificationService),
	)

	var refiner service.QueryRefiner
	if cfg.Ai.RefineQuery {
		refiner = rag.NewRefiner(llmProvider)
	}
	c.ChatbotService = service.NewChatbotService(sessions, orchestrator, refiner, sysLogger)

	// 7. HTTP surface
	c.Guard = serverutils.NewJwtMiddleware(cfg.App.JWTSecret)
	c.ChatbotController = controller.NewChatbotController(c.ChatbotService)
	c.DocumentController = controller.NewDocumentController(c.IndexerService, c.PublisherService)
	c.ChatSocketHandler = handler.NewChatSocketHandler(c.ChatbotService, c.WebSocketHub, sysLogger)

	checks := map[string]controller.HealthCheck{
		"database": func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Ping()
		},
	}
	if rdb != nil {
		checks["redis"] = func() error { return rdb.Ping(context.Background()).Err() }
	}
	c.HealthController = controller.NewHealthController(checks)

	c.closers = append(c.closers, func() {
		c.NotificationService.Wait()
		_ = promptLogger.Sync()
		_ = sysLogger.Sync()
	})
	return c, nil
}

// Start runs the background workers until ctx is done.
func (c *Container) Start(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)

	if err := c.ConsumerService.Consume(ctx); err != nil {
		return fmt.Errorf("start index consumer: %w", err)
	}
	if err := c.NotificationService.Start(ctx); err != nil {
		return fmt.Errorf("start notification consumers: %w", err)
	}
	if c.DocumentWatcher != nil {
		go func() {
			if err := c.DocumentWatcher.Run(ctx); err != nil {
				c.Logger.Error("INDEXER", "Document watcher stopped", map[string]interface{}{"error": err.Error()})
			}
		}()
	}
	return nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

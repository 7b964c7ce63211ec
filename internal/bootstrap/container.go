package bootstrap

import (
	"context"
	"log"

	"ereader-be/internal/config"
	"ereader-be/internal/controller"
	"ereader-be/internal/handler"
	"ereader-be/internal/pkg/logger"
	"ereader-be/internal/repository/memory"
	"ereader-be/internal/repository/unitofwork"
	"ereader-be/internal/service"
	"ereader-be/internal/websocket"
	"ereader-be/pkg/events"
	"ereader-be/pkg/speech"

	pktNats "ereader-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	DocumentController   controller.IDocumentController
	AnnotationController controller.IAnnotationController
	ReaderController     controller.IReaderController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	SessionHandler *handler.SessionHandler
	WebSocketHub   *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Durable audit trail of everything flowing over the reader bus
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	} else {
		err := natsSub.Subscribe("reader.>", "reader-audit", func(ctx context.Context, evt events.Event) error {
			sysLogger.Info("Audit", evt.EventType(), evt.Payload())
			return nil
		})
		if err != nil {
			log.Printf("[WARN] Failed to subscribe to reader events: %v", err)
		}
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/session.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// In-memory registry of live reading sessions
	sessionRegistry := memory.NewSessionRegistry()

	// 3. Services
	publisherService := service.NewPublisherService(cfg.App.PersistTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.PersistTopic,
		uowFactory,
	)

	persister := service.NewAnnotationPersister(publisherService, sysLogger)

	// The paced engine narrates headlessly at the estimation pace; a real
	// TTS engine slots in behind the same interface.
	var engine speech.Engine = speech.NewPacedEngine()

	documentService := service.NewDocumentService(uowFactory, natsPub, cfg.Upload.MaxSizeMB)
	annotationService := service.NewAnnotationService(uowFactory)
	readerService := service.NewReaderService(
		uowFactory,
		annotationService,
		sessionRegistry,
		persister,
		engine,
		wsHub,
		natsPub,
		sysLogger,
	)

	// Handler
	sessionHandler := handler.NewSessionHandler(sessionRegistry, wsHub, wsLogger)

	// 4. Controllers
	return &Container{
		SessionHandler: sessionHandler,
		WebSocketHub:   wsHub,

		DocumentController:   controller.NewDocumentController(documentService),
		AnnotationController: controller.NewAnnotationController(annotationService),
		ReaderController:     controller.NewReaderController(readerService),

		ConsumerService: consumerService,
	}
}

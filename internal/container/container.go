package container

import (
	"context"
	"fmt"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/go-redis/redis/v8"
	"github.com/joshua-takyi/tryfield/internal/config"
	"github.com/joshua-takyi/tryfield/internal/helpers"
	"github.com/joshua-takyi/tryfield/internal/i18n"
	"github.com/joshua-takyi/tryfield/internal/live"
	"github.com/joshua-takyi/tryfield/internal/middleware"
	"github.com/joshua-takyi/tryfield/internal/models"
	"github.com/joshua-takyi/tryfield/internal/push"
	"github.com/joshua-takyi/tryfield/internal/services"
	"github.com/joshua-takyi/tryfield/internal/storage"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
)

// Clients are the external connections the container is built from.
type Clients struct {
	Supabase   *supabase.Client
	MongoDB    *mongo.Client
	Redis      *redis.Client
	Cloudinary *cloudinary.Cloudinary
	Firebase   *firebase.App
}

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *slog.Logger
	Mongo  *models.MongodbRepo

	Tokens      *helpers.TokenValidator
	MessageRate *middleware.RateLimiter

	UserService          *services.UserService
	PrivacyService       *services.PrivacyService
	TryService           *services.TryService
	ParticipationService *services.ParticipationService
	NotificationService  *services.NotificationService
	ChatService          *services.ChatService
	DMService            *services.DMService
	ReviewService        *services.ReviewService
	CommentService       *services.CommentService
	DraftService         *services.DraftService
	UploadService        *services.UploadService

	Outbox  *services.OutboxWorker
	Hub     *live.Hub
	Watcher *live.Watcher
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, clients Clients, tokens *helpers.TokenValidator) (*Container, error) {
	supa := models.SupabaseNewRepo(clients.Supabase, cfg.SupabaseURL, cfg.SupabaseAnonKey)
	mongoRepo := models.MongodbNewRepo(clients.MongoDB, cfg.MongoDBDatabase)
	redisRepo := models.RedisNewRepo(clients.Redis)

	var objects services.ObjectStore
	switch cfg.StorageProvider {
	case "cloudinary":
		objects = storage.NewCloudinaryStore(clients.Cloudinary, "tryfield")
	default:
		objects = storage.NewSupabaseStore(clients.Supabase.Storage, cfg.StorageBucket)
	}

	var pusher services.Pusher
	if clients.Firebase != nil {
		fcm, err := push.NewFCMPusher(ctx, clients.Firebase, mongoRepo, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to set up push delivery: %w", err)
		}
		pusher = fcm
	} else {
		logger.Warn("Firebase credentials not set, push delivery disabled")
	}

	translator := i18n.NewTranslator(cfg.DefaultLocale, logger)
	notifier := services.NewNotificationService(mongoRepo, mongoRepo, translator, cfg.DefaultLocale, pusher, logger)
	participations := services.NewParticipationService(mongoRepo, mongoRepo, notifier, logger)
	hub := live.NewHub(logger)

	return &Container{
		Config:      cfg,
		Logger:      logger,
		Mongo:       mongoRepo,
		Tokens:      tokens,
		MessageRate: middleware.NewRateLimiter(cfg.MessageRatePerSecond, cfg.MessageRateBurst),

		UserService:          services.NewUserService(mongoRepo, supa, mongoRepo, logger),
		PrivacyService:       services.NewPrivacyService(mongoRepo),
		TryService:           services.NewTryService(mongoRepo, mongoRepo, redisRepo, notifier, logger),
		ParticipationService: participations,
		NotificationService:  notifier,
		ChatService:          services.NewChatService(mongoRepo, mongoRepo, mongoRepo, notifier, logger),
		DMService:            services.NewDMService(mongoRepo, mongoRepo),
		ReviewService:        services.NewReviewService(mongoRepo, mongoRepo, mongoRepo, mongoRepo, notifier, logger),
		CommentService:       services.NewCommentService(mongoRepo, mongoRepo),
		DraftService:         services.NewDraftService(redisRepo, cfg.DraftTTL),
		UploadService:        services.NewUploadService(objects),

		Outbox:  services.NewOutboxWorker(mongoRepo, mongoRepo, pusher, logger, cfg.OutboxPollInterval, cfg.OutboxMaxAttempts, notifier.Wake()),
		Hub:     hub,
		Watcher: live.NewWatcher(mongoRepo, mongoRepo, participations, hub, logger),
	}, nil
}

// Start launches the outbox worker and the live change-stream watcher. Both stop with ctx.
func (c *Container) Start(ctx context.Context) {
	go c.Outbox.Run(ctx)
	go c.Watcher.Run(ctx)
}

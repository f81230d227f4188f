package router

import (
	"context"
	"log"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/minired/backend/internal/chat"
	"github.com/anonto42/minired/backend/internal/feed"
	"github.com/anonto42/minired/backend/internal/handlers"
	"github.com/anonto42/minired/backend/internal/identity"
	"github.com/anonto42/minired/backend/internal/middleware"
	"github.com/anonto42/minired/backend/internal/notifications"
	"github.com/anonto42/minired/backend/internal/presence"
	"github.com/anonto42/minired/backend/internal/relationship"
	"github.com/anonto42/minired/backend/internal/repositories"
	"github.com/anonto42/minired/backend/pkg/config"
	"github.com/anonto42/minired/backend/pkg/storage"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies.
// firebaseAuthClient and the Redis client inside db may be nil; the routes
// that depend on them degrade rather than fail.
func SetupRoutes(e *echo.Echo, db *config.DB, firebaseAuthClient *auth.Client, blobs storage.BlobStore, cfg *config.Config) {
	mongoDB := db.Mongo.Database(cfg.MongoDatabase)

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"message": "Hello, World!"})
	})

	// --- Initialize Repositories ---
	userRepo := repositories.NewMongoUserRepository(mongoDB)
	postRepo := repositories.NewMongoPostRepository(mongoDB)
	notificationRepo := repositories.NewMongoNotificationRepository(mongoDB)
	chatRepo := repositories.NewMongoChatRepository(mongoDB)

	// --- Initialize Services ---
	var publisher notifications.Publisher
	var redisPublisher *notifications.RedisPublisher
	if db.Redis != nil {
		redisPublisher = notifications.NewRedisPublisher(db.Redis)
		publisher = redisPublisher
	}
	emitter := notifications.NewEmitter(notificationRepo, publisher)
	hub := notifications.NewHub()
	tracker := presence.NewTracker(userRepo, db.Redis, time.Duration(cfg.PresenceTTLMinutes)*time.Minute)
	relationshipManager := relationship.NewManager(userRepo, emitter)
	resolver := identity.NewResolver(userRepo)
	feedService := feed.NewService(postRepo, resolver, emitter, blobs)
	chatService := chat.NewService(chatRepo, emitter)

	// Pushed notifications fan out from Redis to the websocket hub.
	if redisPublisher != nil {
		if err := redisPublisher.StartSubscriber(context.Background(), hub.Broadcast); err != nil {
			log.Printf("Failed to start notification subscriber: %v\n", err)
		} else {
			log.Println("Notification subscriber started.")
		}
	}

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient, tracker)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	// Session routes (presence sign-off)
	authHandler.RegisterSessionRoutes(api)
	log.Println("Session routes configured.")

	// User profile routes
	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterProfileRoutes(api)
	log.Println("User profile routes configured.")

	// Friendship routes
	friendshipHandler := handlers.NewFriendshipHandler(relationshipManager)
	friendshipHandler.RegisterFriendshipRoutes(api)
	log.Println("Friendship routes configured.")

	// Feed routes
	feedHandler := handlers.NewFeedHandler(feedService)
	feedHandler.RegisterFeedRoutes(api)
	log.Println("Feed routes configured.")

	// Chat routes
	chatHandler := handlers.NewChatHandler(chatService, userRepo)
	chatHandler.RegisterChatRoutes(api)
	log.Println("Chat routes configured.")

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	// Notification stream routes
	streamHandler := handlers.NewStreamHandler(hub, tracker)
	streamHandler.RegisterStreamRoutes(api)
	log.Println("Notification stream routes configured.")

	log.Println("All routes configured.")
}

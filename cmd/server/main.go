package main

import (
	"context" // context package is needed for Redis operations
	"log"     // log package is needed for logging

	"pawapay_webhook/internal/api"        // Custom package for API handlers
	"pawapay_webhook/internal/config"     // Custom package for configuration
	"pawapay_webhook/internal/ledger"     // Custom package for the ledger store
	"pawapay_webhook/internal/middleware" // Custom package for middleware
	"pawapay_webhook/internal/webhook"    // Custom package for webhook processing

	// For loading .env files
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	// TranslateError maps duplicate-key violations to gorm.ErrDuplicatedKey,
	// which the ledger store relies on for refund idempotence
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Explicitly constructed collaborators, injected into the handlers
	store := ledger.NewMySQLStore(db)                    // Ledger store over GORM
	cache := webhook.NewRedisProcessedCache(redisClient) // Duplicate fast-path over Redis

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin with a recovery handler that answers panics with JSON 500,
	// so the gateway sees a retryable response instead of a dropped connection
	r := gin.New() // Gin router instance
	r.Use(gin.Logger(), gin.CustomRecovery(api.RecoveryHandler))

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Gateway-facing routes
	r.GET("/health", api.HealthHandler())                                 // Liveness probe
	r.POST("/api/pawapay/webhook", api.WebhookHandler(store, cache, cfg)) // PawaPay callback receiver

	// Ops routes (protected by JWT, operators only)
	r.POST("/ops/login", api.LoginHandler(cfg)) // Ops login endpoint
	opsGroup := r.Group("/ops")
	// Protect ops routes with JWT and operator-role middleware
	opsGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.OpsOnlyMiddleware())
	opsGroup.GET("/reviews", api.ListReviewItemsHandler(store, redisClient)) // Refunds awaiting manual review
	opsGroup.GET("/events", api.ListEventsHandler(store, redisClient))       // Recent webhook events

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}

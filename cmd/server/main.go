package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fashion-ai-backend/internal/config"
	"fashion-ai-backend/internal/handlers"
	"fashion-ai-backend/internal/inference"
	"fashion-ai-backend/internal/middleware"
	"fashion-ai-backend/internal/mongodb"
	"fashion-ai-backend/internal/services"
	"fashion-ai-backend/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	store, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		logger.Fatal("failed to connect to mongodb", zap.Error(err))
	}
	defer store.Close(ctx)

	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Fatal("failed to create indexes", zap.Error(err))
	}

	blobStore, err := storage.NewS3Store(ctx, cfg.AWSRegion, cfg.S3Bucket)
	if err != nil {
		logger.Fatal("failed to initialize s3 store", zap.Error(err))
	}

	aiClient := inference.NewClient(cfg.AIServiceBaseURL, cfg.AIServiceTimeout, inference.RetryPolicy{
		MaxAttempts:  cfg.AIRetryMaxAttempts,
		InitialDelay: cfg.AIRetryInitialDelay,
	}, logger)

	fashionService := services.NewFashionService(store, blobStore, aiClient, logger)
	fashionHandler := handlers.NewFashionHandler(fashionService)

	go reclaimExpiredRecommendations(store, logger)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.GET("/health", handlers.HealthHandler)
	router.GET("/api/fashion/health", fashionHandler.AIHealth)

	api := router.Group("/api/fashion")
	api.Use(middleware.AuthMiddleware(cfg))

	api.POST("/tryon", fashionHandler.TryOn)
	api.POST("/feedback", fashionHandler.Feedback)
	api.POST("/recommend", fashionHandler.Recommend)

	api.GET("/tryon/history", fashionHandler.TryOnHistory)
	api.GET("/feedback/history", fashionHandler.FeedbackHistory)
	api.GET("/recommend/history", fashionHandler.RecommendationHistory)

	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// reclaimExpiredRecommendations garbage-collects expired recommendation
// records once a day. Workflows never read expired records, so timing here is
// not critical.
func reclaimExpiredRecommendations(store *mongodb.Store, logger *zap.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		deleted, err := store.DeleteExpiredRecommendations(ctx, time.Now())
		cancel()
		if err != nil {
			logger.Error("failed to reclaim expired recommendations", zap.Error(err))
			continue
		}
		if deleted > 0 {
			logger.Info("reclaimed expired recommendations", zap.Int64("deleted", deleted))
		}
	}
}

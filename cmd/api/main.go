package main

import (
	"context"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/frello-ai/backend/config"
	"github.com/frello-ai/backend/internal/ai"
	"github.com/frello-ai/backend/internal/api"
	"github.com/frello-ai/backend/internal/database"
	"github.com/frello-ai/backend/internal/logger"
	"github.com/frello-ai/backend/internal/middleware"
	"github.com/frello-ai/backend/internal/router"
	"github.com/frello-ai/backend/internal/server"
	"github.com/frello-ai/backend/internal/service"
)

func main() {
	// Local development reads variables from .env; other environments
	// provide them directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(config.GetEnvironment())
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := database.New(cfg)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.RunMigrations(db); err != nil {
		zapLogger.Fatal("failed to run migrations", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		zapLogger.Fatal("failed to connect to redis", zap.Error(err))
	}

	gateway := ai.NewGateway(ai.GatewayConfig{
		APIKey:      cfg.AIAPIKey,
		BaseURL:     cfg.AIBaseURL,
		Endpoint:    cfg.AIEndpoint,
		Model:       cfg.AIModel,
		Temperature: cfg.AITemperature,
		MaxTokens:   cfg.AIMaxTokens,
		Timeout:     cfg.AITimeout,
	}, zapLogger)

	chatService := service.NewChatService(db)
	dishService := service.NewDishService(db)
	planService := service.NewPlanService(db)
	settingsService := service.NewSettingsService(db)
	quotaService := service.NewQuotaService(redisClient, cfg.AssistantDailyQuota)
	tokenService := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	motivator := ai.NewMotivator(rand.NewSource(time.Now().UnixNano()))

	assistantService := service.NewAssistantService(
		gateway, chatService, dishService, planService,
		settingsService, quotaService, motivator, zapLogger,
	)

	limiter := middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
		Window:    time.Minute,
		Limit:     cfg.RateLimitPerMinute,
		KeyPrefix: "assistant:burst",
	})

	engine := router.SetupRouter(router.Handlers{
		Assistant: api.NewAssistantHandler(assistantService, quotaService),
		Chat:      api.NewChatHandler(chatService),
		Settings:  api.NewSettingsHandler(settingsService),
		Plan:      api.NewPlanHandler(planService, dishService),
	}, tokenService, limiter, cfg.CORSAllowedOrigins)

	srv := server.New(engine, cfg.ServerHost, cfg.ServerPort, zapLogger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	case sig := <-quit:
		zapLogger.Info("received signal", zap.String("signal", sig.String()))
	}

	zapLogger.Info("shutting down server")
	if err := srv.Shutdown(context.Background()); err != nil {
		zapLogger.Fatal("server shutdown error", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}

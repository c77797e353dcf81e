package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"scheme-saathi/internal/api"
	"scheme-saathi/internal/api/handlers"
	"scheme-saathi/internal/embedding"
	"scheme-saathi/internal/embedding/openai"
	"scheme-saathi/internal/embedding/tfidf"
	"scheme-saathi/internal/repository"
	"scheme-saathi/internal/service"
	"scheme-saathi/internal/vectorstore/memory"
	"scheme-saathi/pkg/auth"
	"scheme-saathi/pkg/config"
	"scheme-saathi/pkg/logger"
	"scheme-saathi/pkg/postgres"

	"go.uber.org/zap"
)

// @title Scheme Saathi API
// @version 1.0
// @description Conversational discovery service for Indian government welfare schemes

// @contact.name API Support
// @contact.email support@scheme-saathi.in

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting Scheme Saathi service")

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db, appLogger)
	schemeRepo := repository.NewSchemeRepository(db, appLogger)
	chatRepo := repository.NewChatRepository(db, appLogger)

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)
	authService := service.NewAuthService(userRepo, jwtManager, appLogger)

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize embedder", zap.Error(err))
	}

	retrievalService := service.NewRetrievalService(schemeRepo, embedder, memory.NewStore(), cfg, appLogger)
	if err := retrievalService.BuildIndex(ctx); err != nil {
		// The service still answers in gathering mode; retrieval
		// reports itself unavailable until a rebuild succeeds.
		appLogger.Error("Failed to build scheme index", zap.Error(err))
	}

	llmService, err := service.NewLLMService(&cfg.GigaChat, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize LLM service", zap.Error(err))
	}
	defer llmService.Close()

	extractor := service.NewProfileExtractor(appLogger)
	filterService := service.NewFilterService(cfg.Retrieval.TopK, appLogger)
	chatService := service.NewChatService(extractor, retrievalService, filterService, llmService, chatRepo, cfg, appLogger)

	authHandler := handlers.NewAuthHandler(authService, appLogger)
	chatHandler := handlers.NewChatHandler(chatService, appLogger)
	schemeHandler := handlers.NewSchemeHandler(retrievalService, appLogger)
	healthHandler := handlers.NewHealthHandler(retrievalService, llmService)

	app := api.SetupRouter(authHandler, chatHandler, schemeHandler, healthHandler, jwtManager, appLogger)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}

func buildEmbedder(cfg *config.Config) (embedding.Embedder, error) {
	switch cfg.Embedder.Type {
	case "openai":
		return openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedder.BaseURL,
			APIKeyEnv: cfg.Embedder.APIKeyEnv,
			Model:     cfg.Embedder.Model,
			Timeout:   cfg.Embedder.Timeout,
		})
	case "", "tfidf":
		return tfidf.NewEmbedder(), nil
	default:
		return nil, fmt.Errorf("unknown embedder type %q", cfg.Embedder.Type)
	}
}

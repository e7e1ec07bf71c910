package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"doccompliance/internal/api"
	"doccompliance/internal/config"
	"doccompliance/internal/extract"
	"doccompliance/internal/logging"
	"doccompliance/internal/redis"
	"doccompliance/internal/service/ai"
	"doccompliance/internal/service/assistant"
	"doccompliance/internal/service/compliance"
	"doccompliance/internal/storage"
)

func main() {
	cfgPath := os.Getenv("DOCCOMPLIANCE_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rdb *redis.Client
	if strings.EqualFold(cfg.Storage.Backend, "redis") {
		rdb, err = redis.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Fatal("create redis client", zap.Error(err))
		}
		defer rdb.Close()
	}

	store, err := storage.Open(cfg.Storage, cfg.Redis, rdb)
	if err != nil {
		logger.Fatal("open session store", zap.Error(err))
	}

	extractor, err := extract.NewExtractor(ctx, logger.Named("extract"))
	if err != nil {
		logger.Fatal("init extractor", zap.Error(err))
	}
	if cfg.AI.APIKey == config.DefaultAPIKey {
		logger.Warn("AI_API_KEY is not set; upstream calls will be rejected")
	}
	client, err := ai.NewClient(ctx, cfg.AI, logger.Named("ai"))
	if err != nil {
		logger.Fatal("init ai client", zap.Error(err))
	}
	checker := compliance.NewChecker(client, logger.Named("compliance"))

	assistantService, err := assistant.NewService(store, extractor, checker, cfg.Storage.UploadDir, logger.Named("assistant"))
	if err != nil {
		logger.Fatal("init assistant service", zap.Error(err))
	}
	if assistantService.StartSessionCleaner(ctx, cfg.Storage.SessionTTL, cfg.Storage.CleanupInterval) {
		logger.Info("session cleaner started",
			zap.Duration("ttl", cfg.Storage.SessionTTL),
			zap.Duration("interval", cfg.Storage.CleanupInterval),
		)
	}

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	handlers := api.NewHandler(assistantService, cfg.Server.MaxUploadBytes, logger.Named("http"))
	router := api.NewRouter(handlers)

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("server listening",
			zap.String("addr", cfg.Server.Address),
			zap.String("provider", cfg.AI.Provider),
			zap.String("model", cfg.AI.Model),
			zap.String("session_backend", cfg.Storage.Backend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

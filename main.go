package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mypetsvoice/backend/internal/ai"
	"mypetsvoice/backend/internal/session"
	"mypetsvoice/backend/internal/ws"
	"mypetsvoice/backend/pkg/config"
	"mypetsvoice/backend/pkg/errors"
	"mypetsvoice/backend/pkg/health"
	"mypetsvoice/backend/pkg/logger"
	"mypetsvoice/backend/pkg/middleware"
	"mypetsvoice/backend/pkg/secrets"
	"mypetsvoice/backend/shared/observability"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Missing .env just means the environment is already set
	_ = godotenv.Load()

	cfg := config.Get()

	log := logger.New(logger.Config{
		Level: cfg.Logging.Level,
		JSON:  cfg.Logging.Format == "json",
	})
	logger.SetGlobal(log)

	if err := secrets.Init(log); err != nil {
		log.Error("failed to initialize secrets manager", "error", err)
		os.Exit(1)
	}

	if cfg.Observability.Enabled {
		shutdownTracing := observability.SetupTracing("pet-chat-realtime", log)
		defer shutdownTracing()
		observability.SetupPrometheusMetrics(cfg.Observability.MetricsAddr, log)
	}

	store, storePing := buildSessionStore(cfg, log)

	apiKey := secrets.GetSecretWithDefault(context.Background(), "OPENAI_API_KEY", cfg.LLM.APIKey)
	generator := ai.NewClient(ai.Options{
		APIKey:      apiKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
		Logger:      log,
	})

	pool := ws.NewPool(cfg.Chat.WorkerCount, cfg.Chat.WorkerQueueSize, generator, log)
	pool.Start()

	hub := ws.NewHub(store, pool, log)
	go hub.Run()

	checker := health.NewChecker(log, 30*time.Second)
	checker.RegisterSessionStoreCheck(storePing)
	checker.Start()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(logger.Middleware(log))
	router.Use(errors.RecoveryWithLogger())

	ws.NewHandler(hub, store, log).RegisterRoutes(router)
	router.GET("/healthz", gin.WrapF(checker.HTTPHandler()))

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("realtime server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
	pool.Stop()
	log.Info("shutdown complete")
}

// buildSessionStore picks Redis when SESSION_STORE=redis, otherwise the
// in-process store. The second return value is the health check ping.
func buildSessionStore(cfg *config.Config, log *logger.Logger) (session.Store, func() error) {
	if os.Getenv("SESSION_STORE") != "redis" {
		log.Info("using in-memory session store")
		return session.NewMemoryStore(), func() error { return nil }
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	log.Info("using redis session store", "addr", cfg.Redis.Addr)

	return session.NewRedisStore(client, cfg.Redis.SessionTTL), func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return client.Ping(ctx).Err()
	}
}

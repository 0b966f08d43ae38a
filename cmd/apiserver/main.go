package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mypetsvoice/backend/internal/ai"
	"mypetsvoice/backend/internal/api"
	"mypetsvoice/backend/internal/models"
	"mypetsvoice/backend/internal/repository"
	"mypetsvoice/backend/internal/service"
	"mypetsvoice/backend/pkg/cache"
	"mypetsvoice/backend/pkg/config"
	"mypetsvoice/backend/pkg/health"
	"mypetsvoice/backend/pkg/jwt"
	"mypetsvoice/backend/pkg/logger"
	"mypetsvoice/backend/pkg/secrets"
	"mypetsvoice/backend/shared/observability"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
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
		shutdownTracing := observability.SetupTracing("pet-chat-api", log)
		defer shutdownTracing()
		observability.SetupPrometheusMetrics(cfg.Observability.MetricsAddr, log)
	}

	db, err := setupDatabase(cfg)
	if err != nil {
		log.Error("failed to setup database", "error", err)
		os.Exit(1)
	}

	jwtSecret := secrets.GetSecretWithDefault(context.Background(), "JWT_SECRET", cfg.JWT.Secret)
	jwtService := jwt.NewService(jwtSecret, cfg.JWT.Expiry)

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

	personaCache := cache.New(5*time.Minute, 10*time.Minute)
	petService := service.NewPetService(repository.NewGormPetRepository(db), personaCache)
	chatService := service.NewChatService(petService, repository.NewGormChatRepository(db), generator, log)

	checker := health.NewChecker(log, 30*time.Second)
	checker.RegisterDatabaseCheck(func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Ping()
	})
	checker.Start()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.Deps{
		Users:      repository.NewGormUserRepository(db),
		Pets:       petService,
		Chats:      chatService,
		JWTService: jwtService,
		Health:     checker,
		Logger:     log,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("api server listening", "addr", server.Addr)
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
	log.Info("shutdown complete")
}

func setupDatabase(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Pet{},
		&models.ChatSession{},
		&models.ChatMessage{},
	); err != nil {
		return nil, err
	}

	return db, nil
}

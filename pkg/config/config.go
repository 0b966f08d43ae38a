package config

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server struct {
		Port    string
		Env     string
		Timeout time.Duration
	}

	// Database configuration (API variant persistence)
	Database struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
		MaxConns int
	}

	// Redis configuration (realtime variant session store)
	Redis struct {
		Addr       string
		Password   string
		DB         int
		SessionTTL time.Duration
	}

	// JWT configuration
	JWT struct {
		Secret string
		Expiry time.Duration
	}

	// LLM configuration
	LLM struct {
		APIKey      string
		BaseURL     string
		Model       string
		Temperature float64
		MaxTokens   int
		Timeout     time.Duration
	}

	// Chat limits
	Chat struct {
		// History window passed to the prompt builder
		RealtimeHistoryWindow int
		APIHistoryWindow      int
		MaxMessageLen         int
		MaxPetNameLen         int
		MaxSpeciesLen         int
		// Realtime generation worker pool
		WorkerCount     int
		WorkerQueueSize int
	}

	// Logging configuration
	Logging struct {
		Level  string
		Format string
	}

	// Observability configuration
	Observability struct {
		Enabled     bool
		MetricsAddr string
	}
}

var (
	instance *Config
	once     sync.Once
)

// New creates a new Config instance with values from environment variables.
// Uses singleton pattern to ensure only one instance exists.
func New() *Config {
	once.Do(func() {
		// Load .env file if exists
		godotenv.Load()

		instance = &Config{}

		// Server config
		instance.Server.Port = getEnvString("PORT", "8081")
		instance.Server.Env = getEnvString("APP_ENV", "development")
		instance.Server.Timeout = getEnvDuration("SERVER_TIMEOUT", 30*time.Second)

		// Database config
		instance.Database.Host = getEnvString("DB_HOST", "localhost")
		instance.Database.Port = getEnvString("DB_PORT", "5432")
		instance.Database.User = getEnvString("DB_USER", "postgres")
		instance.Database.Password = getEnvString("DB_PASSWORD", "postgres")
		instance.Database.Name = getEnvString("DB_NAME", "pet_chatbot")
		instance.Database.SSLMode = getEnvString("DB_SSL_MODE", "disable")
		instance.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 20)

		// Redis config
		instance.Redis.Addr = getEnvString("REDIS_URL", "localhost:6379")
		instance.Redis.Password = getEnvString("REDIS_PASSWORD", "")
		instance.Redis.DB = getEnvInt("REDIS_DB", 0)
		instance.Redis.SessionTTL = getEnvDuration("SESSION_TTL", 24*time.Hour)

		// JWT config
		instance.JWT.Secret = getEnvString("JWT_SECRET", "devJwtSecretDoNotUseInProduction")
		instance.JWT.Expiry = getEnvDuration("JWT_EXPIRY", 24*time.Hour)

		// LLM config
		instance.LLM.APIKey = getEnvString("OPENAI_API_KEY", "")
		instance.LLM.BaseURL = getEnvString("OPENAI_BASE_URL", "https://api.openai.com/v1")
		instance.LLM.Model = getEnvString("OPENAI_MODEL", "gpt-4o-mini")
		instance.LLM.Temperature = getEnvFloat("OPENAI_TEMPERATURE", 0.8)
		instance.LLM.MaxTokens = getEnvInt("OPENAI_MAX_TOKENS", 500)
		instance.LLM.Timeout = getEnvDuration("OPENAI_TIMEOUT", 30*time.Second)

		// Chat limits
		instance.Chat.RealtimeHistoryWindow = getEnvInt("REALTIME_HISTORY_WINDOW", 10)
		instance.Chat.APIHistoryWindow = getEnvInt("API_HISTORY_WINDOW", 20)
		instance.Chat.MaxMessageLen = getEnvInt("MAX_MESSAGE_LEN", 500)
		instance.Chat.MaxPetNameLen = getEnvInt("MAX_PET_NAME_LEN", 50)
		instance.Chat.MaxSpeciesLen = getEnvInt("MAX_SPECIES_LEN", 30)
		instance.Chat.WorkerCount = getEnvInt("CHAT_WORKER_COUNT", 4)
		instance.Chat.WorkerQueueSize = getEnvInt("CHAT_WORKER_QUEUE_SIZE", 64)

		// Logging config
		instance.Logging.Level = getEnvString("LOG_LEVEL", "info")
		instance.Logging.Format = getEnvString("LOG_FORMAT", "json")

		// Observability config
		instance.Observability.Enabled = getEnvBool("OBSERVABILITY_ENABLED", true)
		instance.Observability.MetricsAddr = getEnvString("METRICS_ADDR", ":2112")
	})

	return instance
}

// Get returns the singleton Config instance
func Get() *Config {
	if instance == nil {
		return New()
	}
	return instance
}

// Helper functions to read environment variables with default values

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"decision-ledger-be/pkg/database"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Slack    SlackConfig
	Keys     APIKeys
	Ai       AIConfig
	Worker   WorkerConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
	// EncryptionKey seals tracker tokens at rest.
	EncryptionKey string
}

type DatabaseConfig struct {
	Connection      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        string
}

type SlackConfig struct {
	SigningSecret string
	BaseURL       string
}

type APIKeys struct {
	Anthropic    string
	Voyage       string
	GoogleGemini string
	Jina         string
	HuggingFace  string
}

type AIConfig struct {
	EmbeddingProvider string // "voyage", "gemini", "jina" or "ollama"
	EmbeddingModel    string
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "anthropic", "ollama" or "huggingface"
	LLMModel          string
	LLMRatePerSecond  float64
}

type WorkerConfig struct {
	// QueueDriver selects "nats" (durable) or "memory" (watermill gochannel).
	QueueDriver        string
	MaxJobs            int
	JobTimeout         time.Duration
	SweepSchedule      string
	BackfillWindowDays int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3001"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			EncryptionKey:      getEnv("ENCRYPTION_KEY", ""),
		},
		Database: DatabaseConfig{
			Connection:      getEnv("DB_CONNECTION_STRING", ""),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			LogLevel:        getEnv("DB_LOG_LEVEL", "warn"),
		},
		Slack: SlackConfig{
			SigningSecret: getEnv("SLACK_SIGNING_SECRET", ""),
			BaseURL:       getEnv("SLACK_API_BASE_URL", "https://slack.com/api"),
		},
		Keys: APIKeys{
			Anthropic:    getEnv("ANTHROPIC_API_KEY", ""),
			Voyage:       getEnv("VOYAGE_API_KEY", ""),
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Jina:         getEnv("JINA_API_KEY", ""),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "voyage"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "voyage-3"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "anthropic"),
			LLMModel:          getEnv("LLM_MODEL", "claude-sonnet-4-5-20250929"),
			LLMRatePerSecond:  getEnvAsFloat("LLM_RATE_PER_SECOND", 5),
		},
		Worker: WorkerConfig{
			QueueDriver:        getEnv("QUEUE_DRIVER", "nats"),
			MaxJobs:            getEnvAsInt("WORKER_MAX_JOBS", 10),
			JobTimeout:         getEnvAsDuration("WORKER_JOB_TIMEOUT", 60*time.Second),
			SweepSchedule:      getEnv("SWEEP_SCHEDULE", "@hourly"),
			BackfillWindowDays: getEnvAsInt("BACKFILL_WINDOW_DAYS", 90),
		},
	}
}

// Options maps the database section onto the connection pool settings.
func (d DatabaseConfig) Options() database.Options {
	return database.Options{
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
		LogLevel:        d.LogLevel,
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

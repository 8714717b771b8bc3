package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	pkgRetry "github.com/Hkishore1/ClaimsRAG/internal/pkg/retry"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8080"`

	// History database configuration
	DBPath string `env:"DB_PATH" envDefault:"agent_history.db"`

	// Corpus configuration
	DataDir      string `env:"DATA_DIR" envDefault:"data/"`
	ChunkSize    int    `env:"CHUNK_SIZE" envDefault:"300"`
	ChunkOverlap int    `env:"CHUNK_OVERLAP" envDefault:"50"`
	TopKDefault  int    `env:"TOP_K_DEFAULT" envDefault:"3"`
	TopKMax      int    `env:"TOP_K_MAX" envDefault:"6"`

	// Embedding configuration
	EmbeddingCfg EmbeddingConfig `envPrefix:"EMBEDDING_"`

	// Vector index configuration
	IndexCfg IndexConfig `envPrefix:"HNSW_"`

	// LLM configuration
	LLMCfg LLMConfig `envPrefix:"LLM_"`

	// Retrieval cache configuration
	CacheCfg CacheConfig `envPrefix:"CACHE_"`

	// Conversation configuration
	HistoryContextTurns int `env:"HISTORY_CONTEXT_TURNS" envDefault:"5"`
	HistoryFetchLimit   int `env:"HISTORY_FETCH_LIMIT" envDefault:"20"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Telegram bot configuration (only needed by cmd/telegram-bot)
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Environment (set from flag, not from env var)
	Environment string
}

// EmbeddingConfig configures the embedding collaborator.
type EmbeddingConfig struct {
	Model     string               `env:"MODEL" envDefault:"text-embedding-3-small"`
	Dimension int                  `env:"DIMENSION" envDefault:"768"`
	BatchSize int                  `env:"BATCH_SIZE" envDefault:"64"`
	APIKey    string               `env:"API_KEY"`
	Retry     pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// IndexConfig fixes the HNSW build and search parameters. They are set
// once at index build time and reported through the health endpoint.
type IndexConfig struct {
	M              int `env:"M" envDefault:"32"`
	EfConstruction int `env:"EF_CONSTRUCTION" envDefault:"40"`
	EfSearch       int `env:"EF_SEARCH" envDefault:"16"`
}

// LLMConfig configures the text-completion collaborator.
type LLMConfig struct {
	Model          string        `env:"MODEL" envDefault:"gpt-4o-mini"`
	Temperature    float64       `env:"TEMPERATURE" envDefault:"0"`
	MaxTokens      int           `env:"MAX_TOKENS" envDefault:"1000"`
	APIKey         string        `env:"API_KEY"`
	RequestTimeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

// CacheConfig configures the query-embedding cache.
type CacheConfig struct {
	TTL             time.Duration `env:"TTL" envDefault:"5m"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"10m"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken           string `env:"BOT_TOKEN"`
	UpdateTimeout      int    `env:"UPDATE_TIMEOUT" envDefault:"30"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`
	RateLimitBurst     int    `env:"RATE_LIMIT_BURST" envDefault:"5"`
	ShutdownTimeout    int    `env:"SHUTDOWN_TIMEOUT" envDefault:"15"` // seconds
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	if cfg.ChunkSize < 1 {
		errors = append(errors, fmt.Sprintf("CHUNK_SIZE must be positive, got %d", cfg.ChunkSize))
	}

	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		errors = append(errors, fmt.Sprintf("CHUNK_OVERLAP must be between 0 and CHUNK_SIZE(%d), got %d", cfg.ChunkSize, cfg.ChunkOverlap))
	}

	if cfg.TopKDefault < 1 || cfg.TopKDefault > cfg.TopKMax {
		errors = append(errors, fmt.Sprintf("TOP_K_DEFAULT must be between 1 and TOP_K_MAX(%d), got %d", cfg.TopKMax, cfg.TopKDefault))
	}

	if cfg.EmbeddingCfg.Dimension < 1 {
		errors = append(errors, fmt.Sprintf("EMBEDDING_DIMENSION must be positive, got %d", cfg.EmbeddingCfg.Dimension))
	}

	if cfg.IndexCfg.M < 2 {
		errors = append(errors, fmt.Sprintf("HNSW_M must be at least 2, got %d", cfg.IndexCfg.M))
	}

	if cfg.IndexCfg.EfConstruction < cfg.IndexCfg.M {
		errors = append(errors, fmt.Sprintf("HNSW_EF_CONSTRUCTION must be at least HNSW_M(%d), got %d", cfg.IndexCfg.M, cfg.IndexCfg.EfConstruction))
	}

	if cfg.IndexCfg.EfSearch < 1 {
		errors = append(errors, fmt.Sprintf("HNSW_EF_SEARCH must be positive, got %d", cfg.IndexCfg.EfSearch))
	}

	if cfg.HistoryContextTurns < 1 {
		errors = append(errors, fmt.Sprintf("HISTORY_CONTEXT_TURNS must be positive, got %d", cfg.HistoryContextTurns))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}

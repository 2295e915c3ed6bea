package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Auth
	APIKey      string
	CORSOrigins []string

	// Storage
	DataDir        string
	DBPath         string
	MaxUploadBytes int64

	// Segmenter windows
	ChunkSize    int
	ChunkOverlap int

	// Learn jobs
	WorkerCount  int
	MaxQueueSize int
	JobTTL       time.Duration

	// Embeddings (OpenAI-compatible /v1/embeddings)
	EmbeddingBaseURL string
	EmbeddingAPIKey  string
	EmbeddingModel   string
	EmbeddingSize    int
	EmbedBatchSize   int

	// Vector index
	QdrantURL        string
	QdrantCollection string

	// Claude answers
	AnthropicAPIKey     string
	AnthropicModel      string
	QATopK              int
	MaxConcurrentAnswer int

	// PDF
	PDFFallbackPdftotext bool

	// Logging
	LogLevel  slog.Level
	LogFormat string
}

// Load reads .env from the working directory when present, then the
// process environment. Variables already set in the environment win.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey:      os.Getenv("LAWGEST_API_KEY"),
		CORSOrigins: envList("CORS_ORIGINS", []string{"*"}),

		DataDir:        envOr("DATA_DIR", "data"),
		DBPath:         envOr("DB_PATH", "data/lawgest.db"),
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		ChunkSize:    envInt("CHUNK_SIZE", 500),
		ChunkOverlap: envInt("CHUNK_OVERLAP", 200),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),
		JobTTL:       envDuration("JOB_TTL", 1*time.Hour),

		EmbeddingBaseURL: envOr("EMBEDDING_BASE_URL", "http://localhost:11434"),
		EmbeddingAPIKey:  os.Getenv("EMBEDDING_API_KEY"),
		EmbeddingModel:   envOr("EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingSize:    envInt("EMBEDDING_SIZE", 1536),
		EmbedBatchSize:   envInt("EMBED_BATCH_SIZE", 32),

		QdrantURL:        envOr("QDRANT_URL", "http://localhost:6334"),
		QdrantCollection: envOr("QDRANT_COLLECTION", "lawgest_chunks"),

		AnthropicAPIKey:     os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:      envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
		QATopK:              envInt("QA_TOP_K", 5),
		MaxConcurrentAnswer: envInt("MAX_CONCURRENT_ANSWER", 4),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		LogLevel:  envLevel("LOG_LEVEL", slog.LevelInfo),
		LogFormat: envOr("LOG_FORMAT", "json"),
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 500
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = 200
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.EmbeddingSize <= 0 {
		cfg.EmbeddingSize = 1536
	}
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = 32
	}
	if cfg.QATopK <= 0 {
		cfg.QATopK = 5
	}
	if cfg.MaxConcurrentAnswer <= 0 {
		cfg.MaxConcurrentAnswer = 4
	}

	return cfg
}

// Validate reports every missing required key at once.
func (c Config) Validate() error {
	var errs []error
	if c.APIKey == "" {
		errs = append(errs, fmt.Errorf("LAWGEST_API_KEY is required"))
	}
	if c.AnthropicAPIKey == "" {
		errs = append(errs, fmt.Errorf("ANTHROPIC_API_KEY is required"))
	}
	if c.ChunkOverlap >= c.ChunkSize {
		errs = append(errs, fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", c.ChunkOverlap, c.ChunkSize))
	}
	return errors.Join(errs...)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList splits a comma-separated value, dropping empty entries.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func envLevel(key string, fallback slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(v)); err != nil {
		return fallback
	}
	return lvl
}

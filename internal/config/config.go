package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	SeolensAPIKey string

	// Claude generation
	AnthropicAPIKey    string
	AnthropicModel     string
	AnthropicBaseURL   string
	AnthropicMaxTokens int
	AnthropicRPS       float64

	// Worker pool
	WorkerCount        int
	MaxQueueSize       int
	MaxConcurrentStore int

	// Upload limits
	MaxUploadBytes int64

	// Source chunking
	DefaultChunkSize    int
	DefaultChunkOverlap int
	SourceTokenBudget   int

	// Job state
	MaxJobs int
	JobTTL  time.Duration

	// PDF
	PDFFallbackPdftotext bool

	// Report store (optional)
	ReportstoreURL    string
	ReportstoreAPIKey string
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		SeolensAPIKey: os.Getenv("SEOLENS_API_KEY"),

		AnthropicAPIKey:    os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:     envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
		AnthropicBaseURL:   envOr("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
		AnthropicMaxTokens: envInt("ANTHROPIC_MAX_TOKENS", 8192),
		AnthropicRPS:       envFloat("ANTHROPIC_RPS", 2),

		WorkerCount:        envInt("WORKER_COUNT", 4),
		MaxQueueSize:       envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentStore: envInt("MAX_CONCURRENT_STORE", 10),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 20971520), // 20MB

		DefaultChunkSize:    envInt("DEFAULT_CHUNK_SIZE", 800),
		DefaultChunkOverlap: envInt("DEFAULT_CHUNK_OVERLAP", 80),
		SourceTokenBudget:   envInt("SOURCE_TOKEN_BUDGET", 12000),

		MaxJobs: envInt("MAX_JOBS", 1000),
		JobTTL:  envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		ReportstoreURL:    os.Getenv("REPORTSTORE_URL"),
		ReportstoreAPIKey: os.Getenv("REPORTSTORE_API_KEY"),
	}

	if cfg.AnthropicMaxTokens <= 0 {
		cfg.AnthropicMaxTokens = 8192
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentStore <= 0 {
		cfg.MaxConcurrentStore = 10
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20971520
	}
	if cfg.DefaultChunkSize <= 0 {
		cfg.DefaultChunkSize = 800
	}
	if cfg.DefaultChunkOverlap < 0 {
		cfg.DefaultChunkOverlap = 80
	}
	if cfg.MaxJobs <= 0 {
		cfg.MaxJobs = 1000
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.SeolensAPIKey == "" {
		return fmt.Errorf("SEOLENS_API_KEY is required")
	}
	if c.AnthropicAPIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	if c.ReportstoreURL != "" && c.ReportstoreAPIKey == "" {
		return fmt.Errorf("REPORTSTORE_API_KEY is required when REPORTSTORE_URL is set")
	}
	return nil
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

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
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

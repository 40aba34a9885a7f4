package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/braindler/braindler-multimodal/internal/configs/env"
	"github.com/braindler/braindler-multimodal/internal/plagiarism"
)

// NarratorConfig selects the language model that turns a verdict into a
// written conclusion.
type NarratorConfig struct {
	Provider string // none, openai, ollama, claude, gemini
	Model    string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
}

// Config holds all configuration for the application
type Config struct {
	// MongoDB
	MongoURI    string
	MongoDBName string

	// Redis
	RedisHost               string
	RedisPassword           string
	RedisStreamKey          string
	RedisConsumerGroup      string
	RedisDeadLetterKey      string
	StreamRetentionDuration time.Duration
	MaxRetries              int

	// Text source (extraction service)
	TextSourceBaseURL string
	TextSourceAPIKey  string
	TextSourceTimeout time.Duration

	// JWT
	JWTSecret string
	JWTIssuer string

	// Rate Limiting
	RateLimitRPS float64

	// Concurrency
	Workers               int // 0 sizes the worker pool from the CPU count
	MaxConcurrentAnalyses int

	// Computation
	AnalysisTimeout time.Duration
	Analysis        plagiarism.Options

	Narrator NarratorConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Server
	ServerPort  string
	MetricsPort string
}

func Load() (*Config, error) {
	cfg := &Config{}

	// MongoDB
	cfg.MongoURI = env.GetEnv("MONGO_URI", "")
	cfg.MongoDBName = env.GetEnv("MONGO_DB_NAME", "")

	// Redis
	cfg.RedisHost = env.GetEnv("REDIS_HOST", "localhost:6379")
	cfg.RedisPassword = env.GetEnv("REDIS_PASSWORD", "")
	cfg.RedisStreamKey = env.GetEnv("REDIS_STREAM_KEY", "copydetect:stream")
	cfg.RedisConsumerGroup = env.GetEnv("REDIS_CONSUMER_GROUP", "copydetect:group")
	cfg.RedisDeadLetterKey = env.GetEnv("REDIS_DEAD_LETTER_KEY", "copydetect:dlq")
	retentionHours := env.GetEnvInt("STREAM_RETENTION_DURATION", 24)
	cfg.StreamRetentionDuration = time.Duration(retentionHours) * time.Hour
	cfg.MaxRetries = env.GetEnvInt("STREAM_MAX_RETRIES", 3)

	// Text source
	cfg.TextSourceBaseURL = env.GetEnv("TEXT_SOURCE_BASE_URL", "")
	cfg.TextSourceAPIKey = env.GetEnv("TEXT_SOURCE_API_KEY", "")
	cfg.TextSourceTimeout = env.GetEnvDuration("TEXT_SOURCE_TIMEOUT", 2*time.Minute)

	// JWT
	cfg.JWTSecret = env.GetEnv("JWT_SECRET", "")
	cfg.JWTIssuer = env.GetEnv("JWT_ISSUER", "copydetect")

	// Rate Limiting
	cfg.RateLimitRPS = env.GetEnvFloat("RATE_LIMIT_RPS", 10.0)

	// Concurrency
	cfg.Workers = env.GetEnvInt("ANALYSIS_WORKERS", 0)
	cfg.MaxConcurrentAnalyses = env.GetEnvInt("MAX_CONCURRENT_ANALYSES", 4)

	// Computation
	timeoutMinutes := env.GetEnvInt("ANALYSIS_TIMEOUT_MINUTES", 10)
	cfg.AnalysisTimeout = time.Duration(timeoutMinutes) * time.Minute

	opts, err := LoadAnalysisOptions(env.GetEnv("ANALYSIS_CONFIG_PATH", ""))
	if err != nil {
		return nil, err
	}
	cfg.Analysis = opts

	// Narrator
	cfg.Narrator = NarratorConfig{
		Provider: strings.ToLower(env.GetEnv("NARRATOR_PROVIDER", "none")),
		Model:    env.GetEnv("NARRATOR_MODEL", ""),
		BaseURL:  env.GetEnv("NARRATOR_BASE_URL", ""),
		APIKey:   env.GetEnv("NARRATOR_API_KEY", ""),
		Timeout:  env.GetEnvDuration("NARRATOR_TIMEOUT", 60*time.Second),
	}

	// Logging
	cfg.LogLevel = env.GetEnv("LOG_LEVEL", "info")
	cfg.LogFormat = env.GetEnv("LOG_FORMAT", "json")

	// Server
	cfg.ServerPort = env.GetEnv("SERVER_PORT", "8080")
	cfg.MetricsPort = env.GetEnv("METRICS_PORT", "2112")

	return cfg, nil
}

// LoadAnalysisOptions starts from the stock options, applies ANALYSIS_*
// environment overrides and then overlays the YAML file at path, if any.
func LoadAnalysisOptions(path string) (plagiarism.Options, error) {
	opts := plagiarism.DefaultOptions()

	opts.BlockSize = env.GetEnvInt("ANALYSIS_BLOCK_SIZE", opts.BlockSize)
	opts.IdenticalThreshold = env.GetEnvFloat("ANALYSIS_IDENTICAL_THRESHOLD", opts.IdenticalThreshold)
	opts.SuspiciousThreshold = env.GetEnvFloat("ANALYSIS_SUSPICIOUS_THRESHOLD", opts.SuspiciousThreshold)
	opts.Weights.Sequence = env.GetEnvFloat("ANALYSIS_WEIGHT_SEQUENCE", opts.Weights.Sequence)
	opts.Weights.EditDistance = env.GetEnvFloat("ANALYSIS_WEIGHT_EDIT_DISTANCE", opts.Weights.EditDistance)
	opts.Weights.TokenSort = env.GetEnvFloat("ANALYSIS_WEIGHT_TOKEN_SORT", opts.Weights.TokenSort)
	opts.LevenshteinGuard = env.GetEnvInt("ANALYSIS_LEVENSHTEIN_GUARD", opts.LevenshteinGuard)
	opts.AutoJunk = env.GetEnvBool("ANALYSIS_AUTO_JUNK", opts.AutoJunk)
	opts.CommonPhraseMinLength = env.GetEnvInt("ANALYSIS_COMMON_PHRASE_MIN_LENGTH", opts.CommonPhraseMinLength)
	opts.CommonPhraseAlertCount = env.GetEnvInt("ANALYSIS_COMMON_PHRASE_ALERT_COUNT", opts.CommonPhraseAlertCount)
	opts.StructuralRatio = env.GetEnvFloat("ANALYSIS_STRUCTURAL_RATIO", opts.StructuralRatio)
	opts.MaxBlockPairs = env.GetEnvInt("ANALYSIS_MAX_BLOCK_PAIRS", opts.MaxBlockPairs)

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return opts, fmt.Errorf("failed to read analysis config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &opts); err != nil {
			return opts, fmt.Errorf("failed to parse analysis config %s: %w", path, err)
		}
	}

	return opts, nil
}

func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.MongoDBName == "" {
		return fmt.Errorf("MONGO_DB_NAME is required")
	}
	if c.RedisHost == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be greater than 0")
	}
	if c.Workers < 0 {
		return fmt.Errorf("ANALYSIS_WORKERS must not be negative")
	}
	if c.MaxConcurrentAnalyses <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_ANALYSES must be greater than 0")
	}
	if c.StreamRetentionDuration <= 0 {
		return fmt.Errorf("STREAM_RETENTION_DURATION must be greater than 0")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("STREAM_MAX_RETRIES must not be negative")
	}
	if c.AnalysisTimeout <= 0 {
		return fmt.Errorf("ANALYSIS_TIMEOUT_MINUTES must be greater than 0")
	}
	switch c.Narrator.Provider {
	case "", "none", "static", "ollama":
	case "openai", "claude", "gemini":
		if c.Narrator.APIKey == "" {
			return fmt.Errorf("NARRATOR_API_KEY is required for provider %s", c.Narrator.Provider)
		}
	default:
		return fmt.Errorf("unsupported NARRATOR_PROVIDER: %s", c.Narrator.Provider)
	}
	if err := c.Analysis.Validate(); err != nil {
		return err
	}
	return nil
}

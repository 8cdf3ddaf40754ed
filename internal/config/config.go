package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	Upload    UploadConfig
	Pipeline  PipelineConfig
	STT       STTConfig
	Grammar   GrammarConfig
	Sentiment SentimentConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type UploadConfig struct {
	BaseDir     string
	MaxMemoryMB int64
	BatchTTLHrs int
}

type PipelineConfig struct {
	Workers        int
	AdapterTimeout int // seconds
}

type STTConfig struct {
	Backend       string // "openai" or "local"
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
	LocalBaseURL  string // default: "http://localhost:8178"
}

type GrammarConfig struct {
	Backend         string // "languagetool" or "openai"
	LanguageToolURL string // default: "http://localhost:8010"
	Language        string
	OpenAIKey       string
	OpenAIModel     string
}

type SentimentConfig struct {
	Backend        string // "openai", "anthropic" or "none"
	OpenAIKey      string
	OpenAIModel    string
	AnthropicKey   string
	AnthropicModel string
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxMemMB, err := getEnvInt("UPLOAD_MAX_MEMORY_MB", 32)
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_MAX_MEMORY_MB: %w", err)
	}

	batchTTL, err := getEnvInt("BATCH_TTL_HOURS", 24)
	if err != nil {
		return nil, fmt.Errorf("invalid BATCH_TTL_HOURS: %w", err)
	}

	workers, err := getEnvInt("PIPELINE_WORKERS", 4)
	if err != nil {
		return nil, fmt.Errorf("invalid PIPELINE_WORKERS: %w", err)
	}

	adapterTimeout, err := getEnvInt("ADAPTER_TIMEOUT_SECONDS", 120)
	if err != nil {
		return nil, fmt.Errorf("invalid ADAPTER_TIMEOUT_SECONDS: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Upload: UploadConfig{
			BaseDir:     getEnv("UPLOAD_DIR", ""),
			MaxMemoryMB: int64(maxMemMB),
			BatchTTLHrs: batchTTL,
		},
		Pipeline: PipelineConfig{
			Workers:        workers,
			AdapterTimeout: adapterTimeout,
		},
		STT: STTConfig{
			Backend:       getEnv("STT_BACKEND", "openai"),
			OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("STT_OPENAI_BASE_URL", ""),
			OpenAIModel:   getEnv("STT_OPENAI_MODEL", ""),
			LocalBaseURL:  getEnv("STT_LOCAL_BASE_URL", "http://localhost:8178"),
		},
		Grammar: GrammarConfig{
			Backend:         getEnv("GRAMMAR_BACKEND", "languagetool"),
			LanguageToolURL: getEnv("LANGUAGETOOL_URL", "http://localhost:8010"),
			Language:        getEnv("GRAMMAR_LANGUAGE", "en-US"),
			OpenAIKey:       getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:     getEnv("GRAMMAR_OPENAI_MODEL", ""),
		},
		Sentiment: SentimentConfig{
			Backend:        getEnv("SENTIMENT_BACKEND", "none"),
			OpenAIKey:      getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:    getEnv("SENTIMENT_OPENAI_MODEL", ""),
			AnthropicKey:   getEnv("ANTHROPIC_API_KEY", ""),
			AnthropicModel: getEnv("SENTIMENT_ANTHROPIC_MODEL", ""),
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var missing []string
	if c.STT.Backend == "openai" && c.STT.OpenAIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if c.Sentiment.Backend == "anthropic" && c.Sentiment.AnthropicKey == "" {
		missing = append(missing, "ANTHROPIC_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

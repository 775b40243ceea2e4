package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	Server      ServerConfig
	VQA         VQAConfig
	OpenAI      OpenAIConfig
	Gemini      GeminiConfig
	RedisConfig RedisConfig
	CacheEnable bool `env:"CACHE_ENABLE"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR" envDefault:"redis:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	TTL      time.Duration `env:"REDIS_TTL" envDefault:"10m"`
}

type ServerConfig struct {
	Port            string        `env:"SERVER_PORT" envDefault:"3000"`
	Timeout         time.Duration `env:"SERVER_TIMEOUT" envDefault:"2m"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	ThrottleLimit   int           `env:"SERVER_THROTTLE_LIMIT" envDefault:"50"`
	MaxUploadBytes  int64         `env:"SERVER_MAX_UPLOAD_BYTES" envDefault:"20971520"`
}

type VQAConfig struct {
	Provider       string `env:"VQA_PROVIDER" envDefault:"openai"`
	JPEGQuality    int    `env:"VQA_JPEG_QUALITY" envDefault:"90"`
	MaxAnswerWords int    `env:"VQA_MAX_ANSWER_WORDS" envDefault:"5"`
	MaxPixels      int64  `env:"VQA_MAX_PIXELS" envDefault:"89478485"`
}

type OpenAIConfig struct {
	APIKey     string `env:"OPENAI_API_KEY"`
	BaseURL    string `env:"OPENAI_BASE_URL" envDefault:"http://localhost:8000/v1"`
	Model      string `env:"OPENAI_MODEL" envDefault:"default"`
	MaxRetries int    `env:"OPENAI_MAX_RETRIES" envDefault:"2"`
}

type GeminiConfig struct {
	APIKey string `env:"GEMINI_API_KEY"`
	Model  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.VQA.Provider {
	case ProviderOpenAI:
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for provider %q", ProviderGemini)
		}
	default:
		return fmt.Errorf("unknown VQA_PROVIDER %q", c.VQA.Provider)
	}
	if c.VQA.JPEGQuality < 1 || c.VQA.JPEGQuality > 100 {
		return fmt.Errorf("VQA_JPEG_QUALITY must be in [1, 100], got %d", c.VQA.JPEGQuality)
	}
	if c.VQA.MaxPixels <= 0 {
		return fmt.Errorf("VQA_MAX_PIXELS must be positive, got %d", c.VQA.MaxPixels)
	}
	return nil
}

// ClientConfig drives cmd/client and cmd/benchmark.
type ClientConfig struct {
	Endpoint string        `env:"VQA_ENDPOINT" envDefault:"http://localhost:3000/vqa" yaml:"endpoint"`
	Timeout  time.Duration `env:"VQA_CLIENT_TIMEOUT" yaml:"timeout"`
	LogFile  string        `env:"VQA_CLIENT_LOG" yaml:"log_file"`
}

// LoadClient reads the client settings from the environment, then lets the
// YAML profile at path (if any) override them.
func LoadClient(path string) (*ClientConfig, error) {
	cfg := &ClientConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return cfg, nil
}

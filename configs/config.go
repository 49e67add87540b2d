package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type R2 struct {
	AccountID  string `mapstructure:"R2_ACCOUNT_ID"`
	AccessKey  string `mapstructure:"R2_ACCESS_KEY"`
	SecretKey  string `mapstructure:"R2_SECRET_KEY"`
	BucketName string `mapstructure:"R2_BUCKET_NAME"`
	PublicURL  string `mapstructure:"R2_PUBLIC_URL"`
}

type OpenAI struct {
	APIKey        string        `mapstructure:"OPENAI_API_KEY"`
	BaseURL       string        `mapstructure:"OPENAI_BASE_URL"`
	StrategyModel string        `mapstructure:"STRATEGY_MODEL"`
	CopyModel     string        `mapstructure:"COPY_MODEL"`
	ImageModel    string        `mapstructure:"IMAGE_MODEL"`
	ImageSize     string        `mapstructure:"IMAGE_SIZE"`
	LLMTimeout    time.Duration `mapstructure:"LLM_TIMEOUT"`
	ImageTimeout  time.Duration `mapstructure:"IMAGE_TIMEOUT"`
	ImageRPM      int           `mapstructure:"IMAGE_REQUESTS_PER_MINUTE"`
}

type Config struct {
	Port                string        `mapstructure:"PORT"`
	Env                 string        `mapstructure:"APP_ENV"`
	PostgresURI         string        `mapstructure:"POSTGRES_URI"`
	RedisURI            string        `mapstructure:"REDIS_URI"`
	JWTSecret           string        `mapstructure:"JWT_SECRET"`
	JWKSURL             string        `mapstructure:"JWKS_URL"`
	AllowedOrigins      string        `mapstructure:"ALLOWED_ORIGINS"`
	StorageTimeout      time.Duration `mapstructure:"STORAGE_TIMEOUT"`
	UsageFailPolicy     string        `mapstructure:"USAGE_FAIL_POLICY"`
	GenerationRateLimit int           `mapstructure:"GENERATION_RATE_LIMIT"`
	StaleBriefAfter     time.Duration `mapstructure:"STALE_BRIEF_AFTER"`
	QueueConcurrency    int           `mapstructure:"QUEUE_CONCURRENCY"`
	IdempotencyTTL      time.Duration `mapstructure:"IDEMPOTENCY_TTL"`
	TracingEnabled      bool          `mapstructure:"TRACING_ENABLED"`
	OTLPEndpoint        string        `mapstructure:"OTLP_ENDPOINT"`
	OpenAI              OpenAI        `mapstructure:",squash"`
	R2                  R2            `mapstructure:",squash"`
}

var defaults = map[string]any{
	"PORT":                      "3000",
	"APP_ENV":                   "development",
	"REDIS_URI":                 "localhost:6379",
	"ALLOWED_ORIGINS":           "*",
	"OPENAI_BASE_URL":           "https://api.openai.com/v1",
	"STRATEGY_MODEL":            "gpt-4o-mini",
	"COPY_MODEL":                "gpt-4o",
	"IMAGE_MODEL":               "dall-e-3",
	"IMAGE_SIZE":                "1024x1024",
	"LLM_TIMEOUT":               "60s",
	"IMAGE_TIMEOUT":             "120s",
	"IMAGE_REQUESTS_PER_MINUTE": 5,
	"STORAGE_TIMEOUT":           "30s",
	"USAGE_FAIL_POLICY":         "open",
	"GENERATION_RATE_LIMIT":     10,
	"STALE_BRIEF_AFTER":         "15m",
	"QUEUE_CONCURRENCY":         5,
	"IDEMPOTENCY_TTL":           "24h",
	"TRACING_ENABLED":           false,
	"OTLP_ENDPOINT":             "localhost:4318",
}

// keys without a default still have to be bound, otherwise Unmarshal never sees them.
var envOnly = []string{
	"POSTGRES_URI",
	"JWT_SECRET",
	"JWKS_URL",
	"OPENAI_API_KEY",
	"R2_ACCOUNT_ID",
	"R2_ACCESS_KEY",
	"R2_SECRET_KEY",
	"R2_BUCKET_NAME",
	"R2_PUBLIC_URL",
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AutomaticEnv()

	// The config file is optional; the environment is the primary source.
	_ = v.ReadInConfig()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for _, key := range envOnly {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	cfg.UsageFailPolicy = strings.ToLower(strings.TrimSpace(cfg.UsageFailPolicy))
	cfg.R2.PublicURL = strings.TrimRight(cfg.R2.PublicURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.PostgresURI == "" {
		return errors.New("POSTGRES_URI is required")
	}
	if c.JWTSecret == "" && c.JWKSURL == "" {
		return errors.New("one of JWT_SECRET or JWKS_URL is required")
	}
	if c.OpenAI.APIKey == "" {
		return errors.New("OPENAI_API_KEY is required")
	}
	if c.UsageFailPolicy != "open" && c.UsageFailPolicy != "closed" {
		return fmt.Errorf("USAGE_FAIL_POLICY must be open or closed, got %q", c.UsageFailPolicy)
	}
	if c.R2.BucketName == "" || c.R2.PublicURL == "" {
		log.Println("WARNING: R2_BUCKET_NAME or R2_PUBLIC_URL not set, generated images cannot be stored")
	}
	if c.IsProduction() && c.AllowedOrigins == "*" {
		log.Println("WARNING: ALLOWED_ORIGINS is '*' in production")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// StorageConfigured reports whether generated images can be uploaded.
func (c *Config) StorageConfigured() bool {
	return c.R2.BucketName != "" && c.R2.PublicURL != "" && c.R2.AccessKey != ""
}

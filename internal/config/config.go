// Package config loads the application configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the configuration for the application.
type Config struct {
	Port     string
	Address  string
	Env      string
	LogLevel string

	DatabasePath    string
	PlanStoragePath string

	GeminiAPIKey string
	GroqAPIKey   string
	GroqModel    string

	// Diet backend
	DietAPIURL string
	DietAPIKey string

	IngredientTablePath  string
	MetricsRetentionDays int
	PlanRetentionDays    int

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64
}

// NewFromEnv creates a new Config object from environment variables. A .env
// file in the working directory is loaded first when present.
func NewFromEnv() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnvWithDefault("PORT", "8080"),
		Address:             getEnvWithDefault("ADDRESS", "127.0.0.1"),
		Env:                 strings.ToLower(getEnvWithDefault("ENV", "dev")),
		LogLevel:            strings.ToLower(getEnvWithDefault("LOG_LEVEL", "info")),
		DatabasePath:        getEnvWithDefault("DATABASE_PATH", "data/db/diet_planner.db"),
		PlanStoragePath:     getEnvWithDefault("PLAN_STORAGE_PATH", "data/plans"),
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		GroqAPIKey:          os.Getenv("GROQ_API_KEY"),
		GroqModel:           getEnvWithDefault("GROQ_MODEL", "llama-3.3-70b-versatile"),
		DietAPIURL:          strings.TrimRight(os.Getenv("DIET_API_URL"), "/"),
		DietAPIKey:          os.Getenv("DIET_API_KEY"),
		IngredientTablePath: os.Getenv("INGREDIENT_TABLE_PATH"),
		TelegramBotToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:  os.Getenv("TELEGRAM_WEBHOOK_URL"),
	}

	var err error
	if cfg.MetricsRetentionDays, err = getIntEnvWithDefault("METRICS_RETENTION_DAYS", 30); err != nil {
		return nil, fmt.Errorf("invalid METRICS_RETENTION_DAYS: %w", err)
	}
	if cfg.PlanRetentionDays, err = getIntEnvWithDefault("PLAN_RETENTION_DAYS", 90); err != nil {
		return nil, fmt.Errorf("invalid PLAN_RETENTION_DAYS: %w", err)
	}
	if cfg.TelegramAllowedUserIDs, err = parseIDList(os.Getenv("TELEGRAM_ALLOWED_USER_IDS")); err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS: %w", err)
	}
	if v := os.Getenv("ADMIN_TELEGRAM_ID"); v != "" {
		if cfg.AdminTelegramID, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GenerationEnabled reports whether at least one LLM provider is configured.
func (c *Config) GenerationEnabled() bool {
	return c.GeminiAPIKey != "" || c.GroqAPIKey != ""
}

// BackendEnabled reports whether the diet backend client can be built.
func (c *Config) BackendEnabled() bool {
	return c.DietAPIURL != "" && c.DietAPIKey != ""
}

// IsProduction reports whether the app runs with ENV=prod.
func (c *Config) IsProduction() bool {
	return c.Env == "prod"
}

func validate(cfg *Config) error {
	if err := validatePort(cfg.Port); err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}
	if cfg.Address == "" {
		return fmt.Errorf("invalid ADDRESS: ADDRESS cannot be empty")
	}
	if err := oneOf(cfg.Env, "dev", "staging", "prod", "test"); err != nil {
		return fmt.Errorf("invalid ENV: %w", err)
	}
	if err := oneOf(cfg.LogLevel, "debug", "info", "warn", "error"); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	if cfg.DietAPIURL != "" {
		if _, err := url.ParseRequestURI(cfg.DietAPIURL); err != nil {
			return fmt.Errorf("invalid DIET_API_URL: %w", err)
		}
		if cfg.DietAPIKey == "" {
			return fmt.Errorf("DIET_API_KEY environment variable not set")
		}
	}
	if cfg.DietAPIKey != "" {
		if id, secret, ok := strings.Cut(cfg.DietAPIKey, ":"); !ok || id == "" || secret == "" {
			return fmt.Errorf("invalid DIET_API_KEY: expected format {id}:{secret}")
		}
	}
	if cfg.TelegramWebhookURL != "" && cfg.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	if cfg.MetricsRetentionDays <= 0 {
		return fmt.Errorf("invalid METRICS_RETENTION_DAYS: must be positive, got: %d", cfg.MetricsRetentionDays)
	}
	if cfg.PlanRetentionDays <= 0 {
		return fmt.Errorf("invalid PLAN_RETENTION_DAYS: must be positive, got: %d", cfg.PlanRetentionDays)
	}
	return nil
}

func validatePort(port string) error {
	n, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid number: %w", err)
	}
	if n < 1 || n > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	return nil
}

func oneOf(v string, valid ...string) error {
	for _, s := range valid {
		if v == s {
			return nil
		}
	}
	return fmt.Errorf("must be one of: %v, got: %s", valid, v)
}

func getEnvWithDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntEnvWithDefault(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func parseIDList(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

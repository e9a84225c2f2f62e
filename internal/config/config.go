package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port            string
	SupabaseURL     string
	SupabaseAnonKey string
	MongoDBURI      string
	MongoDBPassword string
	Environment     string
	LogLevel        string
	FrontendURL     string

	// Realtime change feed; when disabled the dashboard only reloads on mutations and manual refresh.
	RealtimeEnabled   bool
	HeartbeatInterval time.Duration

	AuthEnabled bool

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	TelegramBotToken string
	TelegramChatID   int64

	LoginRateLimit float64
	LoginBurst     int
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:                getEnvWithDefault("PORT", "8080"),
		SupabaseURL:         os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey:     os.Getenv("SUPABASE_URL_ANON_KEY"),
		MongoDBURI:          os.Getenv("MONGODB_URI"),
		MongoDBPassword:     os.Getenv("MONGODB_PASSWORD"),
		Environment:         getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:            getEnvWithDefault("LOG_LEVEL", "info"),
		FrontendURL:         getEnvWithDefault("FRONTEND_URL", "http://localhost:3000"),
		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		TelegramBotToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
	}

	var err error
	if cfg.RealtimeEnabled, err = getBoolWithDefault("REALTIME_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.AuthEnabled, err = getBoolWithDefault("AUTH_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.HeartbeatInterval, err = getDurationWithDefault("REALTIME_HEARTBEAT", 30*time.Second); err != nil {
		return nil, err
	}
	if raw := os.Getenv("TELEGRAM_CHAT_ID"); raw != "" {
		cfg.TelegramChatID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_CHAT_ID must be an integer: %w", err)
		}
	}
	if cfg.LoginRateLimit, err = strconv.ParseFloat(getEnvWithDefault("LOGIN_RATE_LIMIT", "1"), 64); err != nil {
		return nil, fmt.Errorf("LOGIN_RATE_LIMIT must be a number: %w", err)
	}
	if cfg.LoginBurst, err = strconv.Atoi(getEnvWithDefault("LOGIN_BURST", "5")); err != nil {
		return nil, fmt.Errorf("LOGIN_BURST must be an integer: %w", err)
	}

	// Validate required fields
	if cfg.SupabaseURL == "" {
		return nil, fmt.Errorf("SUPABASE_URL is required")
	}
	if cfg.SupabaseAnonKey == "" {
		return nil, fmt.Errorf("SUPABASE_URL_ANON_KEY is required")
	}
	if cfg.HeartbeatInterval <= 0 {
		return nil, fmt.Errorf("REALTIME_HEARTBEAT must be positive")
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolWithDefault(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}

func getDurationWithDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// MongoEnabled reports whether the audit trail store is configured.
func (c *Config) MongoEnabled() bool {
	return c.MongoDBURI != ""
}

func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config is the full service configuration, loaded from the environment
// with INK_-prefixed variables.
type Config struct {
	Env       string `mapstructure:"INK_ENV"`
	HTTPAddr  string `mapstructure:"INK_HTTP_ADDR"`
	PublicURL string `mapstructure:"INK_PUBLIC_ORIGIN"`

	Database DBConfig       `mapstructure:",squash"`
	Cache    CacheConfig    `mapstructure:",squash"`
	Auth     AuthConfig     `mapstructure:",squash"`
	Media    MediaConfig    `mapstructure:",squash"`
	API      APIConfig      `mapstructure:",squash"`
	Security SecurityConfig `mapstructure:",squash"`
}

type DBConfig struct {
	Type        string `mapstructure:"INK_DB_TYPE"` // "memory" or "postgres"
	PostgresDSN string `mapstructure:"INK_POSTGRES_DSN"`
}

type CacheConfig struct {
	RedisAddr string `mapstructure:"INK_REDIS_ADDR"`
}

type AuthConfig struct {
	SessionTTL        time.Duration `mapstructure:"INK_SESSION_TTL"`
	PasswordMinLength int           `mapstructure:"INK_PASSWORD_MIN_LENGTH"`
}

type MediaConfig struct {
	Dir           string        `mapstructure:"INK_MEDIA_DIR"`
	SweepInterval time.Duration `mapstructure:"INK_MEDIA_SWEEP_INTERVAL"`
}

type APIConfig struct {
	PageSize int `mapstructure:"INK_PAGE_SIZE"`
}

type SecurityConfig struct {
	RateLimitRPM       int      `mapstructure:"INK_RATE_LIMIT_RPM"`
	CORSAllowedOrigins []string `mapstructure:"INK_CORS_ALLOWED_ORIGINS"`
}

func loadDotEnvFiles() {
	candidates := []string{
		".env",
		filepath.Join("..", ".env"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			_ = gotenv.Load(path) // env vars already set take precedence
		}
	}
}

// Load reads configuration from .env files and the environment
func Load() (*Config, error) {
	loadDotEnvFiles()

	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("INK_ENV", "dev")
	viper.SetDefault("INK_HTTP_ADDR", ":8080")
	viper.SetDefault("INK_PUBLIC_ORIGIN", "http://localhost:3000")
	viper.SetDefault("INK_DB_TYPE", "memory")
	viper.SetDefault("INK_POSTGRES_DSN", "")
	viper.SetDefault("INK_REDIS_ADDR", "")
	viper.SetDefault("INK_SESSION_TTL", "24h")
	viper.SetDefault("INK_PASSWORD_MIN_LENGTH", 8)
	viper.SetDefault("INK_MEDIA_DIR", "media")
	viper.SetDefault("INK_MEDIA_SWEEP_INTERVAL", "1h")
	viper.SetDefault("INK_PAGE_SIZE", 4)
	viper.SetDefault("INK_RATE_LIMIT_RPM", 120)
	viper.SetDefault("INK_CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")

	if origins := viper.GetString("INK_CORS_ALLOWED_ORIGINS"); origins != "" {
		viper.Set("INK_CORS_ALLOWED_ORIGINS", strings.Split(origins, ","))
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Type {
	case "memory":
	case "postgres":
		if c.Database.PostgresDSN == "" {
			return fmt.Errorf("INK_POSTGRES_DSN is required when INK_DB_TYPE is postgres")
		}
	default:
		return fmt.Errorf("invalid INK_DB_TYPE %q (must be memory or postgres)", c.Database.Type)
	}

	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("INK_SESSION_TTL must be positive")
	}
	if c.Auth.PasswordMinLength < 1 {
		return fmt.Errorf("INK_PASSWORD_MIN_LENGTH must be positive")
	}
	if c.API.PageSize < 1 {
		return fmt.Errorf("INK_PAGE_SIZE must be positive")
	}
	if c.Media.Dir == "" {
		return fmt.Errorf("INK_MEDIA_DIR is required")
	}

	return nil
}

// IsDev reports whether the service runs in the dev environment
func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

// IsProd reports whether the service runs in the prod environment
func (c *Config) IsProd() bool {
	return c.Env == "prod"
}

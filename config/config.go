package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yeremiapane/site-engineer-app/utils"
)

const devSessionSecret = "dev-session-secret-change-me"

type Config struct {
	Port     string
	GinMode  string
	DB       DBConfig
	Session  SessionConfig
	Redis    RedisConfig
	SMTP     SMTPConfig
	Notify   NotifyConfig
	HTTP     HTTPConfig
	SeedUser SeedConfig
}

type DBConfig struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

type SessionConfig struct {
	Secret string
	TTL    time.Duration
	// Store is "memory" or "redis".
	Store string
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
	TLS      bool
}

// Enabled is false when no SMTP host is configured; mail is then only logged.
func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

type NotifyConfig struct {
	Recipients []string
	Locale     string
	Workers    int
	QueueSize  int
}

type HTTPConfig struct {
	CORSOrigin     string
	RateLimit      string
	LoginRateLimit int
}

type SeedConfig struct {
	Email    string
	Password string
}

// LoadEnvFile loads .env when present. Missing files are not an error.
func LoadEnvFile() {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Debug("No .env file found, using environment variables")
	}
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),
		DB: DBConfig{
			Driver:       strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			DSN:          getEnv("DB_DSN", "site_engineer.db"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
		},
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", ""),
			TTL:    getEnvDuration("SESSION_TTL", 24*time.Hour),
			Store:  strings.ToLower(getEnv("SESSION_STORE", "memory")),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "no-reply@site-engineer.local"),
			FromName: getEnv("SMTP_FROM_NAME", "Site Engineer"),
			TLS:      getEnvBool("SMTP_TLS", false),
		},
		Notify: NotifyConfig{
			Recipients: splitList(getEnv("NOTIFY_EMAILS", "")),
			Locale:     getEnv("MAIL_LOCALE", "en"),
			Workers:    getEnvInt("NOTIFY_WORKERS", 2),
			QueueSize:  getEnvInt("NOTIFY_QUEUE_SIZE", 100),
		},
		HTTP: HTTPConfig{
			CORSOrigin:     getEnv("CORS_ORIGIN", "*"),
			RateLimit:      getEnv("RATE_LIMIT", "300-M"),
			LoginRateLimit: getEnvInt("LOGIN_RATE_LIMIT", 10),
		},
		SeedUser: SeedConfig{
			Email:    getEnv("SEED_ADMIN_EMAIL", ""),
			Password: getEnv("SEED_ADMIN_PASSWORD", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DB.Driver)
	}

	switch c.Session.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", c.Session.Store)
	}

	if c.Session.Secret == "" {
		if c.IsRelease() {
			return fmt.Errorf("SESSION_SECRET is required in release mode")
		}
		utils.InfoLogger.Warn("SESSION_SECRET not set, using development secret")
		c.Session.Secret = devSessionSecret
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.Notify.Workers <= 0 {
		return fmt.Errorf("NOTIFY_WORKERS must be positive")
	}
	if c.Notify.QueueSize <= 0 {
		return fmt.Errorf("NOTIFY_QUEUE_SIZE must be positive")
	}
	if c.HTTP.LoginRateLimit <= 0 {
		return fmt.Errorf("LOGIN_RATE_LIMIT must be positive")
	}
	if (c.SeedUser.Email == "") != (c.SeedUser.Password == "") {
		return fmt.Errorf("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD must be set together")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Store        StoreConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Discord      DiscordConfig
	Auth         AuthConfig
	Notification NotificationConfig
}

// AppConfig controls the dashboard server.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	RequestTimeoutSeconds int
}

// StoreConfig selects the document store backend.
type StoreConfig struct {
	Driver   string // file, redis or postgres
	FilePath string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// DiscordConfig holds the bot identity and ticket behavior knobs.
type DiscordConfig struct {
	Token              string
	StaffRoleID        string
	QRISImagePath      string
	DeleteDelaySeconds int
}

// AuthConfig defines the optional dashboard admin login. Leaving
// AdminPasswordHash empty disables authentication entirely.
type AuthConfig struct {
	AdminPasswordHash     string
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// NotificationConfig holds the optional lifecycle webhook endpoint.
type NotificationConfig struct {
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults
// where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "ticket-bot"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "3000"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Store: StoreConfig{
			Driver:   getEnv("STORE_DRIVER", "file"),
			FilePath: getEnv("STORE_FILE_PATH", "data/database.json"),
		},
		Postgres: PostgresConfig{
			DSN:            getEnv("POSTGRES_DSN", ""),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Discord: DiscordConfig{
			Token:              getEnv("DISCORD_TOKEN", ""),
			StaffRoleID:        getEnv("DISCORD_STAFF_ROLE_ID", ""),
			QRISImagePath:      getEnv("QRIS_IMAGE_PATH", "qris.png"),
			DeleteDelaySeconds: getEnvAsInt("TICKET_DELETE_DELAY_SECONDS", 5),
		},
		Auth: AuthConfig{
			AdminPasswordHash:     getEnv("AUTH_ADMIN_PASSWORD_HASH", ""),
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Notification: NotificationConfig{
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// DeleteDelay returns the deferred channel deletion delay.
func (d DiscordConfig) DeleteDelay() time.Duration {
	if d.DeleteDelaySeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(d.DeleteDelaySeconds) * time.Second
}

// Enabled reports whether dashboard authentication is turned on.
func (a AuthConfig) Enabled() bool {
	return a.AdminPasswordHash != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

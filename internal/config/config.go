package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQL    = "sql"
	BackendBolt   = "bolt"
	BackendS3     = "s3"
)

type Config struct {
	Addr string `env:"ADDR" envDefault:":8080"`

	StoreBackend string `env:"STORE_BACKEND" envDefault:"sql"`
	DataDir      string `env:"DATA_DIR" envDefault:"data"`
	DBDriver     string `env:"DB_DRIVER" envDefault:"sqlite3"`
	DBDSN        string `env:"DB_DSN" envDefault:"bracket.db"`

	S3Bucket          string `env:"S3_BUCKET"`
	S3Prefix          string `env:"S3_PREFIX"`
	S3Region          string `env:"S3_REGION" envDefault:"auto"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`

	SessionLifetime time.Duration `env:"SESSION_LIFETIME" envDefault:"24h"`
	RequireAuth     bool          `env:"REQUIRE_AUTH" envDefault:"false"`
	AllowGuest      bool          `env:"ALLOW_GUEST" envDefault:"false"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`

	DiscordKey         string `env:"DISCORD_KEY"`
	DiscordSecret      string `env:"DISCORD_SECRET"`
	DiscordCallbackURL string `env:"DISCORD_CALLBACK_URL"`
	GoogleKey          string `env:"GOOGLE_KEY"`
	GoogleSecret       string `env:"GOOGLE_SECRET"`
	GoogleCallbackURL  string `env:"GOOGLE_CALLBACK_URL"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads a .env file when there is one, then parses the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory, BackendFile, BackendSQL, BackendBolt:
	case BackendS3:
		if c.S3Bucket == "" {
			return errors.New("invalid configuration: S3_BUCKET is required for the s3 backend")
		}
	default:
		return fmt.Errorf("invalid configuration: unknown STORE_BACKEND %q", c.StoreBackend)
	}

	if c.StoreBackend == BackendSQL && c.DBDriver != "sqlite3" && c.DBDriver != "postgres" {
		return fmt.Errorf("invalid configuration: unknown DB_DRIVER %q", c.DBDriver)
	}
	if c.SessionLifetime <= 0 {
		return errors.New("invalid configuration: SESSION_LIFETIME must be positive")
	}
	return nil
}

func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger. LOG_FORMAT=text is meant for local runs.
func (c Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if strings.EqualFold(c.LogFormat, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"aeye-server/internal/logging"

	"github.com/joho/godotenv"
)

type Config struct {
	Port       string
	ServerName string
	AppVersion string

	// SaveImages enables writing every received frame to UploadsDir.
	SaveImages bool
	UploadsDir string

	// RedisAddr is optional; usage is counted in memory without it.
	RedisAddr   string
	RedisPrefix string

	LogLevel  string
	LogFormat string

	BodyLimitMB      int
	ShutdownTimeout  time.Duration
	CORSAllowOrigins string
}

// Load reads .env.dev when present and then the process environment.
func Load() *Config {
	if err := godotenv.Load(".env.dev"); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not load .env.dev, using system environment variables", "error", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the environment only.
func FromEnv() *Config {
	return &Config{
		Port:       getEnv("PORT", "3000"),
		ServerName: getEnv("SERVER_NAME", "Mock AI Analysis Server"),
		AppVersion: getEnv("APP_VERSION", "1.0.0"),

		SaveImages: getEnv("SAVE_IMAGES", "false") == "true",
		UploadsDir: getEnv("UPLOADS_DIR", "uploads"),

		RedisAddr:   getEnv("REDIS_ADDR", ""),
		RedisPrefix: getEnv("REDIS_PREFIX", "aeye"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		BodyLimitMB:      getEnvInt("BODY_LIMIT_MB", 10),
		ShutdownTimeout:  getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		CORSAllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),
	}
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	port, err := strconv.Atoi(c.Port)
	if err != nil || port <= 0 || port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %q", c.Port))
	}
	if c.SaveImages && strings.TrimSpace(c.UploadsDir) == "" {
		errs = append(errs, errors.New("UPLOADS_DIR is required when SAVE_IMAGES=true"))
	}
	if c.BodyLimitMB <= 0 {
		errs = append(errs, fmt.Errorf("BODY_LIMIT_MB must be positive, got %d", c.BodyLimitMB))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}

	return errors.Join(errs...)
}

// BodyLimit is the request size limit in bytes.
func (c *Config) BodyLimit() int {
	return c.BodyLimitMB * 1024 * 1024
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

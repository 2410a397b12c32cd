package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultServerPort           = 8080
	defaultStandingsConcurrency = 8
	defaultSMTPPort             = 587
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL    string
	JWTSecretKey   string
	ServerPort     int
	LogLevel       slog.Level
	AutoMigrate    bool
	AllowedOrigins []string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string

	// StandingsConcurrency bounds parallel points lookups per standings read.
	StandingsConcurrency int

	// Tier movement mail is sent only when SMTPHost is set.
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string
}

func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != ""
}

// R2Configured reports whether any R2 setting is present. Load guarantees
// that either all required ones are set or none.
func (c *Config) R2Configured() bool {
	return c.R2AccountID != ""
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv without touching .env files.
func FromEnv(getenv func(string) string) (*Config, error) {
	dbURL := getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intVar(getenv, "SERVER_PORT", defaultServerPort)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	level, err := parseLogLevel(getenv("LOG_LEVEL"))
	if err != nil {
		return nil, err
	}

	autoMigrate := false
	if raw := getenv("AUTO_MIGRATE"); raw != "" {
		autoMigrate, err = strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid AUTO_MIGRATE environment variable: %w", err)
		}
	}

	concurrency, err := intVar(getenv, "STANDINGS_CONCURRENCY", defaultStandingsConcurrency)
	if err != nil {
		return nil, err
	}
	if concurrency < 1 {
		return nil, fmt.Errorf("STANDINGS_CONCURRENCY must be positive, got %d", concurrency)
	}

	smtpPort, err := intVar(getenv, "SMTP_PORT", defaultSMTPPort)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:          dbURL,
		JWTSecretKey:         jwtKey,
		ServerPort:           port,
		LogLevel:             level,
		AutoMigrate:          autoMigrate,
		AllowedOrigins:       splitList(getenv("CORS_ALLOWED_ORIGINS"), []string{"*"}),
		R2AccountID:          getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:        getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:    getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:         getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:      getenv("R2_PUBLIC_BASE_URL"),
		StandingsConcurrency: concurrency,
		SMTPHost:             getenv("SMTP_HOST"),
		SMTPPort:             smtpPort,
		SMTPUser:             getenv("SMTP_USER"),
		SMTPPass:             getenv("SMTP_PASS"),
		SMTPFrom:             getenv("SMTP_FROM"),
	}

	if err := cfg.checkR2(); err != nil {
		return nil, err
	}
	if cfg.SMTPConfigured() && cfg.SMTPFrom == "" {
		return nil, fmt.Errorf("SMTP_FROM environment variable is required when SMTP_HOST is set")
	}
	return cfg, nil
}

func (c *Config) checkR2() error {
	required := map[string]string{
		"R2_ACCOUNT_ID":        c.R2AccountID,
		"R2_ACCESS_KEY_ID":     c.R2AccessKeyID,
		"R2_SECRET_ACCESS_KEY": c.R2SecretAccessKey,
		"R2_BUCKET_NAME":       c.R2BucketName,
	}
	var set, missing []string
	for _, name := range []string{"R2_ACCOUNT_ID", "R2_ACCESS_KEY_ID", "R2_SECRET_ACCESS_KEY", "R2_BUCKET_NAME"} {
		if required[name] == "" {
			missing = append(missing, name)
		} else {
			set = append(set, name)
		}
	}
	if len(set) > 0 && len(missing) > 0 {
		return fmt.Errorf("incomplete R2 configuration: missing %s", strings.Join(missing, ", "))
	}
	if len(set) == 0 && c.R2PublicBaseURL != "" {
		return fmt.Errorf("R2_PUBLIC_BASE_URL is set but the R2 bucket is not configured")
	}
	return nil
}

func intVar(getenv func(string) string, name string, def int) (int, error) {
	raw := getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	return v, nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	if raw == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
	}
	return level, nil
}

func splitList(raw string, def []string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	TMDB     TMDBConfig
	Database DatabaseConfig
	Session  SessionConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	ListenAddr  string
	CORSOrigins []string
}

// BackendConfig holds the recommendation API configuration
type BackendConfig struct {
	URL string
}

// TMDBConfig holds the movie catalog API configuration
type TMDBConfig struct {
	APIKey       string
	BaseURL      string
	ImageBaseURL string
}

// DatabaseConfig holds the session database configuration
type DatabaseConfig struct {
	URL string
}

// SessionConfig holds session cookie and retention configuration
type SessionConfig struct {
	Secret        string
	TTL           time.Duration
	PruneSchedule string
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	cfg := &Config{
		Server: ServerConfig{
			ListenAddr:  envOr("LISTEN_ADDR", ":3000"),
			CORSOrigins: splitList(os.Getenv("CORS_ORIGINS")),
		},
		Backend: BackendConfig{
			URL: envOr("BACKEND_URL", "http://127.0.0.1:8000"),
		},
		TMDB: TMDBConfig{
			APIKey:       os.Getenv("TMDB_API_KEY"),
			BaseURL:      envOr("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
			ImageBaseURL: envOr("TMDB_IMAGE_BASE_URL", "https://image.tmdb.org/t/p"),
		},
		Database: DatabaseConfig{
			URL: envOr("DATABASE_URL", "cinematch.sqlite"),
		},
		Session: SessionConfig{
			Secret:        os.Getenv("SESSION_SECRET"),
			PruneSchedule: envOr("SESSION_PRUNE_SCHEDULE", "0 * * * *"),
		},
		Logging: LoggingConfig{
			Level:  envOr("LOG_LEVEL", "info"),
			Format: envOr("LOG_FORMAT", "console"),
		},
	}

	if cfg.TMDB.APIKey == "" {
		return nil, fmt.Errorf("TMDB_API_KEY is not set")
	}
	if cfg.Session.Secret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is not set")
	}

	// Sessions idle beyond the TTL are pruned, logging their users out
	ttl := envOr("SESSION_TTL", "720h")
	d, err := time.ParseDuration(ttl)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL %q: %w", ttl, err)
	}
	cfg.Session.TTL = d

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

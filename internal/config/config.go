// Package config loads server configuration from flags and environment
// variables. Flags win over env vars; secrets are env-only in production but
// accepted as flags for local development.
package config

import (
	"errors"
	"flag"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs to start.
type Config struct {
	Port    int
	DBPath  string
	BaseURL string

	// AuthSecret signs session tokens and salts invite token hashes.
	AuthSecret    string
	TokenDuration time.Duration

	SMTP SMTPConfig
}

// SMTPConfig configures outbound invite email. An empty Host disables real
// delivery (invites are logged instead).
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Load parses args, falling back to environment variables. A .env file in the
// working directory is loaded first if present.
func Load(args []string) (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	var cfg Config
	var tokenDuration string

	fs := flag.NewFlagSet("budbudbud", flag.ContinueOnError)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DBPath, "d", "", "SQLite database path")
	fs.StringVar(&cfg.BaseURL, "base-url", "", "Public base URL used in invite links")
	fs.StringVar(&cfg.AuthSecret, "auth-secret", "", "Auth secret (prefer env)")
	fs.StringVar(&tokenDuration, "token-duration", "", "Session token lifetime, e.g. 720h")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 8080
		}
	}
	if cfg.DBPath == "" {
		cfg.DBPath = os.Getenv("DB_PATH")
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./data/budbudbud.db"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv("BASE_URL")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:3000"
	}

	// Secrets - MUST be provided
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = os.Getenv("AUTH_SECRET")
	}
	if cfg.AuthSecret == "" {
		return Config{}, errors.New("AUTH_SECRET required")
	}

	if tokenDuration == "" {
		tokenDuration = os.Getenv("TOKEN_DURATION")
	}
	if tokenDuration == "" {
		cfg.TokenDuration = 720 * time.Hour
	} else {
		d, err := time.ParseDuration(tokenDuration)
		if err != nil {
			return Config{}, errors.New("invalid TOKEN_DURATION")
		}
		cfg.TokenDuration = d
	}

	cfg.SMTP = SMTPConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Username: os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, errors.New("invalid SMTP_PORT env variable")
		}
		cfg.SMTP.Port = port
	} else {
		cfg.SMTP.Port = 587
	}
	if cfg.SMTP.From == "" {
		cfg.SMTP.From = "Budbudbud <ops@scorrilo.com>"
	}

	return cfg, nil
}

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// config is read once at startup from the environment (and .env when present).
type config struct {
	DBURL         string
	Addr          string
	LogLevel      string
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
	CORSOrigins   []string
}

// loadConfig reads the environment. A missing .env file is fine: in production
// the variables come from the host.
func loadConfig() config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
	}
	cfg := config{
		DBURL:         os.Getenv("DB_URL"),
		Addr:          envOr("ADDR", "localhost:3000"),
		LogLevel:      envOr("LOG_LEVEL", "info"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: envOr("OPENAI_BASE_URL", "https://api.openai.com"),
		OpenAIModel:   envOr("OPENAI_MODEL", "gpt-4o-mini"),
	}
	for _, origin := range strings.Split(envOr("CORS_ORIGINS", "*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// initLogger points the global zerolog logger at a console writer on stderr.
// An unparseable level falls back to info.
func initLogger(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()
}

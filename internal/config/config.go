package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/sanitize"
)

// Config holds all environment-driven settings.
type Config struct {
	Addr          string
	DBPath        string
	AdminToken    string
	Model         string
	MaxInputChars int
	SerperAPIKey  string
	SerperBaseURL string
}

// Load reads configuration from the environment and an optional .env file.
// ANTHROPIC_API_KEY is read by the SDK itself and is not captured here.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Addr:          getenv("TRIP_SAFETY_ADDR", ":8080"),
		DBPath:        getenv("TRIP_SAFETY_DB", "./trip-safety.db"),
		AdminToken:    getenv("TRIP_SAFETY_ADMIN_TOKEN", ""),
		Model:         getenv("TRIP_SAFETY_LLM_MODEL", ""),
		MaxInputChars: getenvInt("TRIP_SAFETY_MAX_INPUT", sanitize.DefaultMaxLen),
		SerperAPIKey:  getenv("SERPER_API_KEY", ""),
		SerperBaseURL: getenv("SERPER_BASE_URL", ""),
	}
	if cfg.MaxInputChars < 1 {
		cfg.MaxInputChars = sanitize.DefaultMaxLen
	}

	log.Printf("trip-config loaded addr=%s db=%s max_input=%d admin_token_set=%t serper_key_set=%t",
		cfg.Addr, cfg.DBPath, cfg.MaxInputChars, cfg.AdminToken != "", cfg.SerperAPIKey != "")
	return cfg
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

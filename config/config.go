package config

import (
	"os"
	"strings"
)

// Config carries all runtime settings. Every field comes from the
// environment; godotenv loads a .env file into the environment in main
// before Load is called.
type Config struct {
	Port             string
	ChatFile         string
	ChatClearCommand string
	DatabaseURL      string
	JWTSecret        string
}

func Load() Config {
	cfg := Config{
		Port:             getenv("PORT", "3000"),
		ChatFile:         getenv("CHAT_FILE", "chat_history.json"),
		ChatClearCommand: getenv("CHAT_CLEAR_COMMAND", "/clearchat"),
		DatabaseURL:      getenv("DATABASE_URL", ""),
		JWTSecret:        getenv("JWT_SECRET", ""),
	}
	return cfg
}

func getenv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	ProjectRoot           string
	ProjectFile           string
	DefaultLanguage       string
	ActiveLanguage        string
	WorkerCount           int
	DatabaseURL           string
	SQLitePath            string
	AssetBaseURL          string
	AssetTimeout          time.Duration
	BaseStringsFile       string
	AllowPlaceholderPaths bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	return &Config{
		ProjectRoot:           getEnv("PROJECT_ROOT", "."),
		ProjectFile:           getEnv("PROJECT_FILE", "localization.json"),
		DefaultLanguage:       getEnv("DEFAULT_LANGUAGE", "en"),
		ActiveLanguage:        getEnv("ACTIVE_LANGUAGE", ""),
		WorkerCount:           getEnvInt("WORKER_COUNT", 8),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		SQLitePath:            getEnv("SQLITE_PATH", ""),
		AssetBaseURL:          getEnv("ASSET_BASE_URL", ""),
		AssetTimeout:          time.Duration(getEnvInt("ASSET_TIMEOUT_SECONDS", 10)) * time.Second,
		BaseStringsFile:       getEnv("BASE_STRINGS_FILE", ""),
		AllowPlaceholderPaths: getEnvBool("ALLOW_PLACEHOLDER_PATHS", true),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

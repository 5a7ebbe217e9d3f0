package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	VaultPath   string // file slot location
	SlotName    string // persistence slot key
	DatabaseURL string // when set, the slot lives in Postgres instead
	FoldersFile string // optional JSON folder registry override

	MaxFileSize   int64
	SessionTTL    time.Duration
	SweepInterval time.Duration

	GeminiAPIKey   string
	GeminiModel    string
	GeminiBaseURL  string
	SummaryTimeout time.Duration

	RateLimitRPS   float64
	RateLimitBurst int
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		VaultPath:   getEnv("VAULT_PATH", "./storage/vault.json"),
		SlotName:    getEnv("VAULT_SLOT", "vault_files"),
		DatabaseURL: getEnv("VAULT_DATABASE_URL", ""),
		FoldersFile: getEnv("VAULT_FOLDERS_FILE", ""),

		MaxFileSize:   getEnvInt64("VAULT_MAX_FILE_SIZE", 25*1024*1024), // 25MB
		SessionTTL:    getEnvDuration("VAULT_SESSION_TTL_MINUTES", 12*time.Hour, time.Minute),
		SweepInterval: getEnvDuration("VAULT_SWEEP_INTERVAL_MINUTES", 15*time.Minute, time.Minute),

		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", ""),
		GeminiBaseURL:  getEnv("GEMINI_BASE_URL", ""),
		SummaryTimeout: getEnvDuration("SUMMARY_TIMEOUT_SECONDS", 30*time.Second, time.Second),

		RateLimitRPS:   getEnvFloat64("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 20),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat64(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration, unit time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.ParseFloat(val, 64); err == nil {
			return time.Duration(n * float64(unit))
		}
	}
	return fallback
}

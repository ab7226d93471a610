package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	DataDir         string
	ExportsDir      string
	SettingsPath    string
	BackupKeep      int
	WkhtmltopdfPath string
	Env             string
}

// Load loads configuration from environment with sensible defaults.
// Precedence: explicit env var > .env file (if loaded by caller) > default.
func Load() Config {
	cfg := Config{}
	cfg.DataDir = getEnv("BACKOFFICE_DATA_DIR", "data")
	cfg.ExportsDir = getEnv("BACKOFFICE_EXPORTS_DIR", "exports")
	cfg.SettingsPath = getEnv("BACKOFFICE_SETTINGS", cfg.DataDir+"/settings.json")
	cfg.BackupKeep = getEnvInt("BACKOFFICE_BACKUP_KEEP", 5)
	cfg.WkhtmltopdfPath = getEnv("WKHTMLTOPDF", "")
	cfg.Env = getEnv("APP_ENV", "development")
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid integer for %s: %s", key, v)
			return def
		}
		return n
	}
	return def
}

package config

import (
	"os"
	"strings"
)

// Older deployments used the Python service's variable names.
func applyAliases(cfg *Config) {
	if value := getEnvOrDefault("MONGO_URI", ""); value == "" {
		cfg.MongoURI = getEnvOrDefault("MONGODB_URL", cfg.MongoURI)
	}
	if value := getEnvOrDefault("DB_NAME", ""); value == "" {
		cfg.DBName = getEnvOrDefault("DATABASE_NAME", cfg.DBName)
	}
	cfg.SequenceBackend = strings.ToLower(strings.TrimSpace(cfg.SequenceBackend))
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	cfg.S3PublicBaseURL = strings.TrimRight(cfg.S3PublicBaseURL, "/")
	cfg.Fast2SMSBaseURL = strings.TrimRight(cfg.Fast2SMSBaseURL, "/")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

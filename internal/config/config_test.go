package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SEQUENCE_BACKEND", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != 8000 || cfg.Address() != ":8000" {
		t.Fatalf("expected default port 8000, got %d", cfg.Port)
	}
	if cfg.SequenceBackend != "mongo" {
		t.Fatalf("expected mongo sequence backend, got %q", cfg.SequenceBackend)
	}
	if cfg.Fast2SMSTemplateID != "2576" {
		t.Fatalf("expected default template id, got %q", cfg.Fast2SMSTemplateID)
	}
	if AppEnv.DBName != cfg.DBName {
		t.Fatalf("expected AppEnv to be published")
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9100")
	t.Setenv("MONGO_URI", "")
	t.Setenv("MONGODB_URL", "mongodb://legacy:27017")
	t.Setenv("DB_NAME", "")
	t.Setenv("DATABASE_NAME", "shop")
	t.Setenv("PUBLIC_BASE_URL", "https://pos.example.com/")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("SEQUENCE_BACKEND", "Scan")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != 9100 {
		t.Fatalf("expected port 9100, got %d", cfg.Port)
	}
	if cfg.MongoURI != "mongodb://legacy:27017" || cfg.DBName != "shop" {
		t.Fatalf("expected legacy aliases to apply, got %q %q", cfg.MongoURI, cfg.DBName)
	}
	if cfg.PublicBaseURL != "https://pos.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.PublicBaseURL)
	}
	if origins := cfg.AllowedOrigins(); len(origins) != 2 || origins[1] != "https://b.example.com" {
		t.Fatalf("unexpected origins %v", origins)
	}
	if cfg.SequenceBackend != "scan" {
		t.Fatalf("expected scan backend, got %q", cfg.SequenceBackend)
	}
}

func TestLoadRejectsRedisWithoutAddress(t *testing.T) {
	t.Setenv("SEQUENCE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when redis backend has no address")
	}
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// AppEnv is the configuration loaded by the last successful Load call.
var AppEnv Config

type Config struct {
	Port           int    `mapstructure:"port"`
	RequestTimeout int    `mapstructure:"request_timeout"`
	MongoURI       string `mapstructure:"mongo_uri"`
	DBName         string `mapstructure:"db_name"`
	Transactions   bool   `mapstructure:"mongo_transactions"`

	SequenceBackend string `mapstructure:"sequence_backend"`
	RedisAddr       string `mapstructure:"redis_addr"`
	RedisPassword   string `mapstructure:"redis_password"`
	RedisDB         int    `mapstructure:"redis_db"`

	JWTSecret   string `mapstructure:"jwt_secret"`
	CORSOrigins string `mapstructure:"cors_origins"`

	StaticDir     string `mapstructure:"static_dir"`
	PublicBaseURL string `mapstructure:"public_base_url"`

	S3Bucket        string `mapstructure:"s3_bucket"`
	S3Region        string `mapstructure:"s3_region"`
	S3Endpoint      string `mapstructure:"s3_endpoint"`
	S3AccessKey     string `mapstructure:"s3_access_key"`
	S3SecretKey     string `mapstructure:"s3_secret_key"`
	S3PublicBaseURL string `mapstructure:"s3_public_base_url"`

	Fast2SMSAPIKey     string `mapstructure:"fast2sms_api_key"`
	Fast2SMSSenderID   string `mapstructure:"fast2sms_sender_id"`
	Fast2SMSTemplateID string `mapstructure:"fast2sms_template_id"`
	Fast2SMSBaseURL    string `mapstructure:"fast2sms_base_url"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

var defaults = map[string]any{
	"port":                 8000,
	"request_timeout":      5,
	"mongo_uri":            "mongodb://localhost:27017",
	"db_name":              "pos",
	"mongo_transactions":   true,
	"sequence_backend":     "mongo",
	"redis_addr":           "",
	"redis_password":       "",
	"redis_db":             0,
	"jwt_secret":           "",
	"cors_origins":         "*",
	"static_dir":           "static",
	"public_base_url":      "http://localhost:8000",
	"s3_bucket":            "",
	"s3_region":            "auto",
	"s3_endpoint":          "",
	"s3_access_key":        "",
	"s3_secret_key":        "",
	"s3_public_base_url":   "",
	"fast2sms_api_key":     "",
	"fast2sms_sender_id":   "TEPOS",
	"fast2sms_template_id": "2576",
	"fast2sms_base_url":    "https://www.fast2sms.com/dev",
	"log_level":            "info",
	"log_format":           "console",
}

// Load reads .env, the optional configs/config.yaml and the environment, in
// increasing order of precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg(".env not loaded")
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile("configs/config.yaml")
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		log.Debug().Msg("no config file found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal: %w", err)
	}
	applyAliases(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	AppEnv = cfg
	return &cfg, nil
}

// Address is the listen address for the HTTP server.
func (c Config) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Timeout bounds a single store operation.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// AllowedOrigins splits CORS_ORIGINS.
func (c Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CORSOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %d", c.RequestTimeout)
	}
	switch c.SequenceBackend {
	case "mongo", "scan":
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("SEQUENCE_BACKEND=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unknown SEQUENCE_BACKEND %q", c.SequenceBackend)
	}
	return nil
}

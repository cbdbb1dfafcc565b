package config

import (
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/sirupsen/logrus"
)

type Config struct {
	DBPath            string
	ServerPort        string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ExecuteTimeout    time.Duration
	RateLimit         int
	RateLimitInterval time.Duration
	MaxBodyBytes      int64

	// Outbound Innertube client.
	ClientRateLimit         int
	ClientRateLimitInterval time.Duration
	ClientTimeout           time.Duration
	TranscriptLang          string
	InnertubeBaseURL        string

	LogDir    string
	LogLevel  string
	LogFormat string

	Spaces SpacesConfig
}

// SpacesConfig configures the optional S3-compatible transcript archive.
type SpacesConfig struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// Enabled reports whether transcripts should be archived.
func (s SpacesConfig) Enabled() bool {
	return s.Bucket != ""
}

func LoadConfig() *Config {
	return &Config{
		DBPath:            GetEnv("DB_PATH", "./data/runs.db"),
		ServerPort:        GetEnv("SERVER_PORT", "8080"),
		ReadTimeout:       getEnvAsDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:      getEnvAsDuration("WRITE_TIMEOUT", 2*time.Minute),
		IdleTimeout:       getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
		ExecuteTimeout:    getEnvAsDuration("EXECUTE_TIMEOUT", 90*time.Second),
		RateLimit:         getEnvAsInt("RATE_LIMIT", 5),
		RateLimitInterval: getEnvAsDuration("RATE_LIMIT_INTERVAL", 1*time.Second),
		MaxBodyBytes:      int64(getEnvAsInt("MAX_BODY_BYTES", 1<<20)),

		ClientRateLimit:         getEnvAsInt("CLIENT_RATE_LIMIT", 2),
		ClientRateLimitInterval: getEnvAsDuration("CLIENT_RATE_LIMIT_INTERVAL", 1*time.Second),
		ClientTimeout:           getEnvAsDuration("CLIENT_TIMEOUT", 15*time.Second),
		TranscriptLang:          GetEnv("TRANSCRIPT_LANG", "en"),
		InnertubeBaseURL:        GetEnv("INNERTUBE_BASE_URL", "https://www.youtube.com"),

		LogDir:    GetEnv("LOG_DIR", "./logs"),
		LogLevel:  GetEnv("LOG_LEVEL", "info"),
		LogFormat: GetEnv("LOG_FORMAT", "json"),

		Spaces: SpacesConfig{
			Endpoint:  GetEnv("SPACES_ENDPOINT", ""),
			Region:    GetEnv("SPACES_REGION", "us-east-1"),
			Bucket:    GetEnv("SPACES_BUCKET", ""),
			AccessKey: GetEnv("SPACES_ACCESS_KEY", ""),
			SecretKey: GetEnv("SPACES_SECRET_KEY", ""),
		},
	}
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid duration, using default")
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid integer, using default")
	}
	return defaultValue
}

func ValidateConfig(cfg *Config) error {
	if cfg.ServerPort == "" {
		return errors.New("server port is required")
	}
	if cfg.DBPath == "" {
		return errors.New("database path is required")
	}
	if cfg.ExecuteTimeout <= 0 {
		return errors.New("execute timeout must be greater than 0")
	}
	if cfg.ReadTimeout <= 0 {
		return errors.New("read timeout must be greater than 0")
	}
	if cfg.WriteTimeout <= 0 {
		return errors.New("write timeout must be greater than 0")
	}
	if cfg.IdleTimeout <= 0 {
		return errors.New("idle timeout must be greater than 0")
	}
	if cfg.RateLimit <= 0 || cfg.RateLimitInterval <= 0 {
		return errors.New("rate limit and interval must be greater than 0")
	}
	if cfg.ClientRateLimit <= 0 || cfg.ClientRateLimitInterval <= 0 {
		return errors.New("client rate limit and interval must be greater than 0")
	}
	if cfg.ClientTimeout <= 0 {
		return errors.New("client timeout must be greater than 0")
	}
	if cfg.MaxBodyBytes <= 0 {
		return errors.New("max body bytes must be greater than 0")
	}
	if cfg.InnertubeBaseURL == "" {
		return errors.New("innertube base URL is required")
	}
	if cfg.Spaces.Enabled() && (cfg.Spaces.AccessKey == "" || cfg.Spaces.SecretKey == "") {
		return errors.Wrap(errors.New("access and secret keys are required"), "spaces bucket "+cfg.Spaces.Bucket)
	}
	return nil
}

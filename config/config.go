// Package config provides configuration settings for the URL shortener service.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Short ID length bounds accepted by the configuration.
const (
	minShortIDLength = 1
	maxShortIDLength = 16
)

// Config holds the configuration settings for the application.
type Config struct {
	ServerPort     string        `yaml:"server_port" env:"SERVER_PORT" env-default:":8080"`
	BaseURL        string        `yaml:"base_url" env:"BASE_URL"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT" env-default:"5s"`
	GinMode        string        `yaml:"gin_mode" env:"GIN_MODE" env-default:"release"`
	AllowedOrigins []string      `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" env-default:"*"`
	MaxUploadMB    int64         `yaml:"max_upload_mb" env:"MAX_UPLOAD_MB" env-default:"32"`

	DatabaseURI     string `yaml:"database_uri" env:"DATABASE_URI" env-default:"sqlite://yacut.db"`
	StorageCapacity int    `yaml:"storage_capacity" env:"STORAGE_CAPACITY" env-default:"1000000"`
	SecretKey       string `yaml:"secret_key" env:"SECRET_KEY"`

	ShortIDLength   int `yaml:"short_id_length" env:"SHORT_ID_LENGTH" env-default:"6"`
	ShortIDAttempts int `yaml:"short_id_attempts" env:"SHORT_ID_ATTEMPTS" env-default:"100"`

	DiskToken   string        `yaml:"disk_token" env:"DISK_TOKEN"`
	DiskAPIURL  string        `yaml:"disk_api_url" env:"DISK_API_URL" env-default:"https://cloud-api.yandex.net"`
	DiskRoot    string        `yaml:"disk_root" env:"DISK_ROOT" env-default:"disk:/yacut"`
	DiskTimeout time.Duration `yaml:"disk_timeout" env:"DISK_TIMEOUT" env-default:"10s"`
	DiskAPIRPS  float64       `yaml:"disk_api_rps" env:"DISK_API_RPS" env-default:"5"`

	LogLevel      string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogPath       string `yaml:"log_path" env:"LOG_PATH"`
	LogMaxSizeMB  int    `yaml:"log_max_size_mb" env:"LOG_MAX_SIZE_MB" env-default:"100"`
	LogMaxBackups int    `yaml:"log_max_backups" env:"LOG_MAX_BACKUPS" env-default:"3"`
	LogMaxAgeDays int    `yaml:"log_max_age_days" env:"LOG_MAX_AGE_DAYS" env-default:"7"`
	LogCompress   bool   `yaml:"log_compress" env:"LOG_COMPRESS"`
}

// DefaultConfig returns the default configuration settings.
func DefaultConfig() *Config {
	return &Config{
		ServerPort:      ":8080",
		RequestTimeout:  5 * time.Second,
		GinMode:         "release",
		AllowedOrigins:  []string{"*"},
		MaxUploadMB:     32,
		DatabaseURI:     "sqlite://yacut.db",
		StorageCapacity: 1000000,
		ShortIDLength:   6,
		ShortIDAttempts: 100,
		DiskAPIURL:      "https://cloud-api.yandex.net",
		DiskRoot:        "disk:/yacut",
		DiskTimeout:     10 * time.Second,
		DiskAPIRPS:      5,
		LogLevel:        "info",
		LogMaxSizeMB:    100,
		LogMaxBackups:   3,
		LogMaxAgeDays:   7,
	}
}

// Load reads the configuration from the YAML file at path, if given, and then
// from environment variables, which take precedence.
func Load(path string) (*Config, error) {
	var cfg Config
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports settings the application cannot start with.
func (c *Config) Validate() error {
	if c.ShortIDLength < minShortIDLength || c.ShortIDLength > maxShortIDLength {
		return fmt.Errorf("short id length must be within [%d, %d], got %d",
			minShortIDLength, maxShortIDLength, c.ShortIDLength)
	}
	if c.ShortIDAttempts <= 0 {
		return errors.New("short id attempts must be positive")
	}
	if c.RequestTimeout <= 0 || c.DiskTimeout <= 0 {
		return errors.New("timeouts must be positive")
	}
	if c.DatabaseURI == "" {
		return errors.New("database uri cannot be empty")
	}
	if c.MaxUploadMB <= 0 {
		return errors.New("max upload size must be positive")
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unknown gin mode %q", c.GinMode)
	}
	return nil
}

// MaxUploadBytes is the multipart memory limit derived from MaxUploadMB.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AppName string `yaml:"app_name"`
	Env     string `yaml:"env"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`

	StoreDriver string         `yaml:"store_driver"`
	SQLitePath  string         `yaml:"sqlite_path"`
	Postgres    PostgresConfig `yaml:"postgres"`

	JWTSecret          string   `yaml:"jwt_secret"`
	AccessTokenMinutes int      `yaml:"access_token_minutes"`
	EncryptKey         string   `yaml:"encryption_key"`
	LegacyEncryptKeys  []string `yaml:"legacy_encryption_keys"`
	BcryptCost         int      `yaml:"bcrypt_cost"`

	UploadDir   string   `yaml:"upload_dir"`
	CORSOrigins []string `yaml:"cors_origins"`
	LogLevel    string   `yaml:"log_level"`
	LogFormat   string   `yaml:"log_format"`

	MaxMessageLength int `yaml:"max_message_length"`
	DefaultPageLimit int `yaml:"default_page_limit"`
	MaxPageLimit     int `yaml:"max_page_limit"`

	AuthRatePerMinute int `yaml:"auth_rate_per_minute"`
	AuthRateBurst     int `yaml:"auth_rate_burst"`

	WS WSConfig `yaml:"ws"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DB       string `yaml:"db"`
}

// WSConfig tunes the realtime gateway.
type WSConfig struct {
	SendBuffer      int           `yaml:"send_buffer"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	PongWait        time.Duration `yaml:"pong_wait"`
	MaxMessageBytes int64         `yaml:"max_message_bytes"`
}

func defaults() *Config {
	return &Config{
		AppName:     "Rideshare Go API",
		Env:         "development",
		Host:        "0.0.0.0",
		Port:        3000,
		StoreDriver: "sqlite",
		SQLitePath:  "rideshare.db",
		Postgres: PostgresConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Password: "postgres",
			DB:       "rideshare",
		},
		AccessTokenMinutes: 7 * 24 * 60,
		BcryptCost:         10,
		UploadDir:          "uploads",
		CORSOrigins:        []string{"http://localhost:3000", "http://localhost:5173"},
		LogLevel:           "info",
		LogFormat:          "text",
		MaxMessageLength:   1000,
		DefaultPageLimit:   50,
		MaxPageLimit:       100,
		AuthRatePerMinute:  30,
		AuthRateBurst:      10,
		WS: WSConfig{
			SendBuffer:      64,
			WriteTimeout:    10 * time.Second,
			PongWait:        60 * time.Second,
			MaxMessageBytes: 64 << 10,
		},
	}
}

// Option overrides a loaded value. Options run after the environment is
// applied and before validation.
type Option func(*Config)

// WithStoreDriver forces the store driver when d is not empty.
func WithStoreDriver(d string) Option {
	return func(c *Config) {
		if d != "" {
			c.StoreDriver = d
		}
	}
}

// Load builds the configuration from defaults, an optional YAML file, the
// environment and opts, in increasing order of precedence. An empty path
// falls back to CONFIG_FILE.
func Load(path string, opts ...Option) (*Config, error) {
	cfg := defaults()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.AppName = getEnv("APP_NAME", c.AppName)
	c.Env = getEnv("APP_ENV", c.Env)
	c.Host = getEnv("HTTP_HOST", c.Host)
	c.Port = getEnvAsInt("HTTP_PORT", c.Port)

	c.StoreDriver = getEnv("STORE_DRIVER", c.StoreDriver)
	c.SQLitePath = getEnv("SQLITE_PATH", c.SQLitePath)
	c.Postgres.Host = getEnv("POSTGRES_HOST", c.Postgres.Host)
	c.Postgres.Port = getEnv("POSTGRES_PORT", c.Postgres.Port)
	c.Postgres.User = getEnv("POSTGRES_USER", c.Postgres.User)
	c.Postgres.Password = getEnv("POSTGRES_PASSWORD", c.Postgres.Password)
	c.Postgres.DB = getEnv("POSTGRES_DB", c.Postgres.DB)

	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.AccessTokenMinutes = getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", c.AccessTokenMinutes)
	c.EncryptKey = getEnv("ENCRYPTION_KEY", c.EncryptKey)
	if legacy := getEnv("LEGACY_ENCRYPTION_KEYS", ""); legacy != "" {
		c.LegacyEncryptKeys = splitList(legacy)
	}
	c.BcryptCost = getEnvAsInt("BCRYPT_COST", c.BcryptCost)

	c.UploadDir = getEnv("UPLOAD_DIR", c.UploadDir)
	if cors := getEnv("CORS_ORIGINS", ""); cors != "" {
		c.CORSOrigins = splitList(cors)
	}
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	if getEnvAsBool("DEBUG", false) {
		c.LogLevel = "debug"
	}

	c.MaxMessageLength = getEnvAsInt("MAX_MESSAGE_LENGTH", c.MaxMessageLength)
	c.DefaultPageLimit = getEnvAsInt("DEFAULT_PAGE_LIMIT", c.DefaultPageLimit)
	c.MaxPageLimit = getEnvAsInt("MAX_PAGE_LIMIT", c.MaxPageLimit)
	c.AuthRatePerMinute = getEnvAsInt("AUTH_RATE_PER_MINUTE", c.AuthRatePerMinute)
	c.AuthRateBurst = getEnvAsInt("AUTH_RATE_BURST", c.AuthRateBurst)

	c.WS.SendBuffer = getEnvAsInt("WS_SEND_BUFFER", c.WS.SendBuffer)
	c.WS.WriteTimeout = getEnvAsDuration("WS_WRITE_TIMEOUT", c.WS.WriteTimeout)
	c.WS.PongWait = getEnvAsDuration("WS_PONG_WAIT", c.WS.PongWait)
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.EncryptKey == "" {
		return errors.New("ENCRYPTION_KEY is required")
	}
	switch c.StoreDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported store driver %q", c.StoreDriver)
	}
	if c.MaxPageLimit <= 0 || c.DefaultPageLimit <= 0 || c.DefaultPageLimit > c.MaxPageLimit {
		return fmt.Errorf("invalid page limits: default %d, max %d", c.DefaultPageLimit, c.MaxPageLimit)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("bcrypt cost must be between 4 and 31, got %d", c.BcryptCost)
	}
	if c.WS.SendBuffer <= 0 {
		return fmt.Errorf("ws send buffer must be positive")
	}
	return nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DSN returns the data source name for the configured store driver.
func (c *Config) DSN() string {
	if c.StoreDriver == "sqlite" {
		return c.SQLitePath
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Postgres.User, c.Postgres.Password),
		Host:     fmt.Sprintf("%s:%s", c.Postgres.Host, c.Postgres.Port),
		Path:     c.Postgres.DB,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenMinutes) * time.Minute
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvAsInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvAsBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getEnvAsDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

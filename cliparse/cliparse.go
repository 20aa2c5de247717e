package cliparse

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/danielhkuo/onlyfringe/idempotency"
)

// Defaults
const (
	DefaultPort              = 5000
	DefaultDatabaseURL       = "file:onlyfringe.db"
	DefaultDatabaseType      = "sqlite"
	DefaultMinSources        = 2
	DefaultMinArgumentLength = 100
	DefaultMaxArgumentLength = 5000
	DefaultApprovalThreshold = 70
	DefaultAIModel           = "gpt-4"
	DefaultAITemperature     = 0.3
	DefaultAITimeout         = 30 * time.Second
	DefaultKeyFile           = ".hexstrike_api_keys"
	DefaultSubmitBurst       = 5
	DefaultLogLevel          = "info"
)

// MaxAITimeout keeps a judged request inside its idempotency reservation
const MaxAITimeout = idempotency.PendingTTL - 30*time.Second

// APIKeyName is the key looked up in the key file and the environment
const APIKeyName = "OPENAI_API_KEY"

type Config struct {
	Port         int    `yaml:"port"`
	DatabaseURL  string `yaml:"database_url"`
	DatabaseType string `yaml:"database_type"`

	MinSources        int `yaml:"min_sources"`
	MinArgumentLength int `yaml:"min_argument_length"`
	MaxArgumentLength int `yaml:"max_argument_length"`
	ApprovalThreshold int `yaml:"approval_threshold"`

	AIModel       string        `yaml:"ai_model"`
	AITemperature float64       `yaml:"ai_temperature"`
	AITimeout     time.Duration `yaml:"ai_timeout"`
	AIBaseURL     string        `yaml:"ai_base_url,omitempty"`
	APIKey        string        `yaml:"api_key"`
	KeyFile       string        `yaml:"key_file"`

	RedisURL    string  `yaml:"redis_url,omitempty"`
	SubmitRate  float64 `yaml:"submit_rate"`
	SubmitBurst int     `yaml:"submit_burst"`

	LogLevel string `yaml:"log_level"`
}

// AIEnabled reports whether a fact-check key is configured
func (c Config) AIEnabled() bool {
	return c.APIKey != ""
}

// Redacted returns a copy safe to print
func (c Config) Redacted() Config {
	if c.APIKey != "" {
		c.APIKey = "********"
	}
	return c
}

// settings maps viper keys (the long flag names) to their environment variables.
// api-key has no flag so it never shows up in shell history.
var settings = map[string]string{
	"port":               "PORT",
	"database-url":       "DATABASE_URL",
	"database-type":      "DATABASE_TYPE",
	"min-sources":        "MIN_SOURCES_REQUIRED",
	"min-length":         "MIN_ARGUMENT_LENGTH",
	"max-length":         "MAX_ARGUMENT_LENGTH",
	"approval-threshold": "APPROVAL_THRESHOLD",
	"ai-model":           "AI_MODEL",
	"ai-temperature":     "AI_TEMPERATURE",
	"ai-timeout":         "AI_TIMEOUT",
	"ai-base-url":        "OPENAI_BASE_URL",
	"key-file":           "API_KEY_FILE",
	"redis-url":          "REDIS_URL",
	"submit-rate":        "SUBMIT_RATE",
	"submit-burst":       "SUBMIT_BURST",
	"log-level":          "LOG_LEVEL",
	"api-key":            APIKeyName,
}

// BindFlags registers every configuration flag on fs
func BindFlags(fs *pflag.FlagSet) {
	// Network and storage
	fs.IntP("port", "p", DefaultPort, "Server port")
	fs.StringP("database-url", "d", DefaultDatabaseURL, "Database URL")
	fs.StringP("database-type", "t", DefaultDatabaseType, "Database type (sqlite or postgres)")

	// Submission rules
	fs.Int("min-sources", DefaultMinSources, "Minimum sources per argument or rebuttal")
	fs.Int("min-length", DefaultMinArgumentLength, "Minimum argument length in characters")
	fs.Int("max-length", DefaultMaxArgumentLength, "Maximum argument length in characters")
	fs.Int("approval-threshold", DefaultApprovalThreshold, "Minimum fact-check score for approval")

	// Fact-check judge
	fs.String("ai-model", DefaultAIModel, "Fact-check model")
	fs.Float64("ai-temperature", DefaultAITemperature, "Fact-check sampling temperature")
	fs.Duration("ai-timeout", DefaultAITimeout, "Fact-check request timeout")
	fs.String("ai-base-url", "", "OpenAI-compatible API base URL")
	fs.String("key-file", DefaultKeyFile, "File with KEY=VALUE API keys")

	// Submission protection
	fs.String("redis-url", "", "Redis URL for idempotency records (in-memory when empty)")
	fs.Float64("submit-rate", 0, "Submissions per second per client IP (0 disables)")
	fs.Int("submit-burst", DefaultSubmitBurst, "Submission burst per client IP")

	fs.String("log-level", DefaultLogLevel, "Log level (debug, info, warn, error)")
}

// Resolve reads the configuration from parsed flags, falling back to the
// environment. Flags set on the command line win.
func Resolve(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	for key, env := range settings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", env, err)
		}
		if f := fs.Lookup(key); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return Config{}, fmt.Errorf("bind --%s: %w", key, err)
			}
		}
	}

	cfg := Config{
		Port:              v.GetInt("port"),
		DatabaseURL:       v.GetString("database-url"),
		DatabaseType:      strings.ToLower(v.GetString("database-type")),
		MinSources:        v.GetInt("min-sources"),
		MinArgumentLength: v.GetInt("min-length"),
		MaxArgumentLength: v.GetInt("max-length"),
		ApprovalThreshold: v.GetInt("approval-threshold"),
		AIModel:           v.GetString("ai-model"),
		AITemperature:     v.GetFloat64("ai-temperature"),
		AITimeout:         v.GetDuration("ai-timeout"),
		AIBaseURL:         v.GetString("ai-base-url"),
		KeyFile:           v.GetString("key-file"),
		RedisURL:          v.GetString("redis-url"),
		SubmitRate:        v.GetFloat64("submit-rate"),
		SubmitBurst:       v.GetInt("submit-burst"),
		LogLevel:          strings.ToLower(v.GetString("log-level")),
	}

	key, err := LoadKeyFile(cfg.KeyFile)
	if err != nil {
		return Config{}, err
	}
	if key == "" {
		key = v.GetString("api-key")
	}
	cfg.APIKey = key

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseFlags parses args and resolves the configuration
func ParseFlags(args []string) (Config, error) {
	fs := pflag.NewFlagSet("onlyfringe", pflag.ContinueOnError)
	BindFlags(fs)

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return Resolve(fs)
}

// LoadKeyFile returns the API key from a KEY=VALUE file.
// A missing file is not an error.
func LoadKeyFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	keys, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read key file %s: %w", path, err)
	}
	return strings.TrimSpace(keys[APIKeyName]), nil
}

// Validate checks ranges and required values
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DatabaseURL == "" {
		return errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if c.DatabaseType != "sqlite" && c.DatabaseType != "postgres" {
		return fmt.Errorf("unsupported database type %q (use sqlite or postgres)", c.DatabaseType)
	}
	if c.MinSources < 0 {
		return errors.New("min sources must not be negative")
	}
	if c.MinArgumentLength < 0 || c.MaxArgumentLength < c.MinArgumentLength {
		return fmt.Errorf("invalid argument length range %d-%d", c.MinArgumentLength, c.MaxArgumentLength)
	}
	if c.ApprovalThreshold < 0 || c.ApprovalThreshold > 100 {
		return fmt.Errorf("approval threshold must be within 0-100, got %d", c.ApprovalThreshold)
	}
	if c.AITimeout <= 0 {
		return errors.New("AI timeout must be positive")
	}
	if c.AITimeout > MaxAITimeout {
		return fmt.Errorf("AI timeout %s exceeds the %s limit", c.AITimeout, MaxAITimeout)
	}
	if c.SubmitRate < 0 {
		return errors.New("submit rate must not be negative")
	}
	if c.SubmitRate > 0 && c.SubmitBurst <= 0 {
		return errors.New("submit burst must be positive when rate limiting is enabled")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}

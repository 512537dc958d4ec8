package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Directory DirectoryConfig `yaml:"directory" mapstructure:"directory"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Matching  MatchingConfig  `yaml:"matching" mapstructure:"matching"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// DirectoryConfig holds credentials and tuning for the technician directory.
type DirectoryConfig struct {
	BaseURL            string `yaml:"base_url" mapstructure:"base_url"`
	BaseID             string `yaml:"base_id" mapstructure:"base_id"`
	APIKey             string `yaml:"api_key" mapstructure:"api_key"`
	TechnicianTable    string `yaml:"technician_table" mapstructure:"technician_table"`
	AvailabilityTable  string `yaml:"availability_table" mapstructure:"availability_table"`
	RateLimitRequests  int    `yaml:"rate_limit_requests" mapstructure:"rate_limit_requests"`
	RateLimitWindowSec int    `yaml:"rate_limit_window_secs" mapstructure:"rate_limit_window_secs"`
	CooldownSecs       int    `yaml:"cooldown_secs" mapstructure:"cooldown_secs"`
	MaxAttempts        int    `yaml:"max_attempts" mapstructure:"max_attempts"`
	TimeoutSecs        int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// AnthropicConfig holds reasoning-service settings. An empty Key forces the
// deterministic fallback path for the whole process lifetime.
type AnthropicConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	Model     string  `yaml:"model" mapstructure:"model"`
	MaxTokens int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	RateRPS   float64 `yaml:"rate_rps" mapstructure:"rate_rps"`
	RateBurst int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// MatchingConfig tunes team composition and analysis.
type MatchingConfig struct {
	SpecialistThreshold int    `yaml:"specialist_threshold" mapstructure:"specialist_threshold"`
	MaxAlternativeTeams int    `yaml:"max_alternative_teams" mapstructure:"max_alternative_teams"`
	KeywordFile         string `yaml:"keyword_file" mapstructure:"keyword_file"`
}

// StoreConfig selects the match-history backend. RetentionDays of zero keeps
// history forever; anything positive prunes older analyses at startup.
type StoreConfig struct {
	Driver        string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL   string `yaml:"database_url" mapstructure:"database_url"`
	HistorySize   int    `yaml:"history_size" mapstructure:"history_size"`
	RetentionDays int    `yaml:"retention_days" mapstructure:"retention_days"`
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("JOBPILOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Keys with no natural default still get an empty one so
	// AutomaticEnv-only values survive Unmarshal.
	v.SetDefault("directory.base_url", "https://api.airtable.com/v0")
	v.SetDefault("directory.base_id", "")
	v.SetDefault("directory.api_key", "")
	v.SetDefault("directory.technician_table", "")
	v.SetDefault("directory.availability_table", "")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("matching.keyword_file", "")
	v.SetDefault("store.database_url", "")
	v.SetDefault("directory.rate_limit_requests", 300)
	v.SetDefault("directory.rate_limit_window_secs", 60)
	v.SetDefault("directory.cooldown_secs", 30)
	v.SetDefault("directory.max_attempts", 3)
	v.SetDefault("directory.timeout_secs", 30)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("anthropic.rate_rps", 2)
	v.SetDefault("anthropic.rate_burst", 4)
	v.SetDefault("matching.specialist_threshold", 70)
	v.SetDefault("matching.max_alternative_teams", 2)
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.history_size", 100)
	v.SetDefault("store.retention_days", 0)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

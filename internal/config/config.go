package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Suppression SuppressionConfig `mapstructure:"suppression"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Path           string `mapstructure:"path"`
	MigrationsPath string `mapstructure:"migrations_path"`
	MaxConnections int    `mapstructure:"max_connections"`
	AutoMigrate    bool   `mapstructure:"auto_migrate"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SuppressionConfig exposes every threshold the decision pipeline uses.
// All of them ship with defaults matching the engine's intended behavior;
// none are hardcoded in the evaluation path.
type SuppressionConfig struct {
	// HistoryWindow bounds the trailing alert history the context builder
	// loads for duplicate, rate-limit and threshold checks.
	HistoryWindow time.Duration `mapstructure:"history_window"`

	// Duplicate detection.
	DuplicateWindow   time.Duration `mapstructure:"duplicate_window"`
	ValueTolerance    float64       `mapstructure:"value_tolerance"`
	ContextMatchRatio float64       `mapstructure:"context_match_ratio"`

	// Alert grouping.
	GroupingWindow       time.Duration `mapstructure:"grouping_window"`
	GroupMemberThreshold int           `mapstructure:"group_member_threshold"`
	GroupRetention       time.Duration `mapstructure:"group_retention"`

	// Severity-threshold suppression.
	SeverityFloodCount  int           `mapstructure:"severity_flood_count"`
	SeverityFloodWindow time.Duration `mapstructure:"severity_flood_window"`

	// Decision cache.
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
	CacheKeyBucket time.Duration `mapstructure:"cache_key_bucket"`

	// Housekeeping sweep.
	HousekeepingInterval time.Duration `mapstructure:"housekeeping_interval"`

	// Store access and audit sink.
	StoreTimeout    time.Duration `mapstructure:"store_timeout"`
	AuditBufferSize int           `mapstructure:"audit_buffer_size"`
	AuditMaxRetries int           `mapstructure:"audit_max_retries"`
	AuditRetryDelay time.Duration `mapstructure:"audit_retry_delay"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()

	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("database.path", "DATABASE_PATH")
	viper.BindEnv("logging.level", "LOG_LEVEL")
	viper.BindEnv("server.mode", "ALERTGATE_MODE")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration for completeness and correctness
func (c *Config) Validate() error {
	var errors []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errors = append(errors, "server.port must be between 1 and 65535")
	}
	if c.Server.Host == "" {
		errors = append(errors, "server.host is required")
	}
	if c.Database.Path == "" {
		errors = append(errors, "database.path is required")
	}

	s := c.Suppression
	if s.ValueTolerance < 0 || s.ValueTolerance > 1 {
		errors = append(errors, "suppression.value_tolerance must be between 0 and 1")
	}
	if s.ContextMatchRatio < 0 || s.ContextMatchRatio > 1 {
		errors = append(errors, "suppression.context_match_ratio must be between 0 and 1")
	}
	if s.GroupMemberThreshold < 1 {
		errors = append(errors, "suppression.group_member_threshold must be at least 1")
	}
	if s.HistoryWindow <= 0 {
		errors = append(errors, "suppression.history_window must be positive")
	}
	if s.DuplicateWindow <= 0 {
		errors = append(errors, "suppression.duplicate_window must be positive")
	}
	if s.DuplicateWindow > s.HistoryWindow {
		errors = append(errors, "suppression.duplicate_window cannot exceed suppression.history_window")
	}
	if s.GroupingWindow <= 0 {
		errors = append(errors, "suppression.grouping_window must be positive")
	}
	if s.GroupRetention <= 0 {
		errors = append(errors, "suppression.group_retention must be positive")
	}
	if s.SeverityFloodWindow <= 0 {
		errors = append(errors, "suppression.severity_flood_window must be positive")
	}
	if s.CacheTTL <= 0 {
		errors = append(errors, "suppression.cache_ttl must be positive")
	}
	if s.CacheKeyBucket <= 0 {
		errors = append(errors, "suppression.cache_key_bucket must be positive")
	}
	if s.HousekeepingInterval <= 0 {
		errors = append(errors, "suppression.housekeeping_interval must be positive")
	}
	if s.AuditBufferSize < 1 {
		errors = append(errors, "suppression.audit_buffer_size must be at least 1")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", 3002)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.mode", "development")

	// Database defaults
	viper.SetDefault("database.path", "./data/alertgate.db")
	viper.SetDefault("database.migrations_path", "./migrations")
	viper.SetDefault("database.max_connections", 25)
	viper.SetDefault("database.auto_migrate", true)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	// Suppression defaults
	viper.SetDefault("suppression.history_window", "2h")
	viper.SetDefault("suppression.duplicate_window", "30m")
	viper.SetDefault("suppression.value_tolerance", 0.05)
	viper.SetDefault("suppression.context_match_ratio", 0.8)
	viper.SetDefault("suppression.grouping_window", "15m")
	viper.SetDefault("suppression.group_member_threshold", 3)
	viper.SetDefault("suppression.group_retention", "2h")
	viper.SetDefault("suppression.severity_flood_count", 5)
	viper.SetDefault("suppression.severity_flood_window", "30m")
	viper.SetDefault("suppression.cache_ttl", "5m")
	viper.SetDefault("suppression.cache_key_bucket", "1m")
	viper.SetDefault("suppression.housekeeping_interval", "10m")
	viper.SetDefault("suppression.store_timeout", "5s")
	viper.SetDefault("suppression.audit_buffer_size", 256)
	viper.SetDefault("suppression.audit_max_retries", 3)
	viper.SetDefault("suppression.audit_retry_delay", "500ms")

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")
}

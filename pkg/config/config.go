package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the bridge coordinator configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Bridge     BridgeConfig     `mapstructure:"bridge"`
	Compliance ComplianceConfig `mapstructure:"compliance"`
	Admin      AdminConfig      `mapstructure:"admin"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Sweeper    SweeperConfig    `mapstructure:"sweeper"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// BridgeConfig contains bridge protocol settings
type BridgeConfig struct {
	// SupportedChains is the destination chain allow-list. Chain identifiers
	// are opaque; the coordinator only checks membership.
	SupportedChains      []string      `mapstructure:"supported_chains"`
	MinSignatures        int           `mapstructure:"min_signatures"`
	MaxSignatures        int           `mapstructure:"max_signatures"`
	DefaultTimeoutBlocks uint64        `mapstructure:"default_timeout_blocks"`
	BlockTime            time.Duration `mapstructure:"block_time"`
	GasLimitPerBridge    uint64        `mapstructure:"gas_limit_per_bridge"`
	EmergencyPause       bool          `mapstructure:"emergency_pause"`
}

// ComplianceConfig contains settings for the external compliance predicate
type ComplianceConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	URL            string        `mapstructure:"url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// AdminConfig contains admin authentication settings
type AdminConfig struct {
	// JWTSecret signs and verifies bearer tokens for admin-gated endpoints
	// (operator registry mutation, pause, assisted recovery).
	JWTSecret string `mapstructure:"jwt_secret"`
}

// MonitoringConfig contains monitoring and metrics settings
type MonitoringConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// SweeperConfig contains background expiry sweeper settings
type SweeperConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// Timeout converts a block count into a wall-clock duration using the
// configured block time. A zero block count falls back to the default.
func (c *BridgeConfig) Timeout(blocks uint64) time.Duration {
	if blocks == 0 {
		blocks = c.DefaultTimeoutBlocks
	}
	return time.Duration(blocks) * c.BlockTime
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")
	viper.SetDefault("server.idle_timeout", "60s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.database", "bridge_coordinator")

	// Bridge defaults
	viper.SetDefault("bridge.min_signatures", 1)
	viper.SetDefault("bridge.max_signatures", 5)
	viper.SetDefault("bridge.default_timeout_blocks", 100)
	viper.SetDefault("bridge.block_time", "6s")
	viper.SetDefault("bridge.gas_limit_per_bridge", 500000)
	viper.SetDefault("bridge.emergency_pause", false)

	// Compliance defaults
	viper.SetDefault("compliance.enabled", false)
	viper.SetDefault("compliance.request_timeout", "10s")

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)

	// Sweeper defaults
	viper.SetDefault("sweeper.interval", "1m")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output_path", "stdout")
}

func validate(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if len(config.Bridge.SupportedChains) == 0 {
		return fmt.Errorf("bridge.supported_chains is required")
	}
	if config.Bridge.MinSignatures < 1 {
		return fmt.Errorf("bridge.min_signatures must be at least 1")
	}
	if config.Bridge.MaxSignatures < config.Bridge.MinSignatures {
		return fmt.Errorf("bridge.max_signatures must be >= bridge.min_signatures")
	}
	if config.Bridge.BlockTime <= 0 {
		return fmt.Errorf("bridge.block_time must be positive")
	}
	if config.Compliance.Enabled && config.Compliance.URL == "" {
		return fmt.Errorf("compliance.url is required when compliance is enabled")
	}
	if config.Admin.JWTSecret == "" {
		return fmt.Errorf("admin.jwt_secret is required")
	}
	return nil
}

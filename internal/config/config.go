// Package config loads the service configuration from file and
// environment.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Engine     EngineConfig     `mapstructure:"engine"`
	Catalogs   CatalogsConfig   `mapstructure:"catalogs"`
	Uploads    UploadsConfig    `mapstructure:"uploads"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	HTTPPort int    `mapstructure:"http_port"`
	Host     string `mapstructure:"host"`
	Timeout  int    `mapstructure:"timeout"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"ssl_mode"`
	PoolSize int    `mapstructure:"pool_size"`
}

// EngineConfig contains the rule engine parameters: the finding cap, the
// heuristic thresholds and the diagnosis coding transition calendar.
type EngineConfig struct {
	MaxFindings           int     `mapstructure:"max_findings"`
	DuplicateWindowDays   int     `mapstructure:"duplicate_window_days"`
	DailyVolumeThreshold  int     `mapstructure:"daily_volume_threshold"`
	VariabilityFloor      float64 `mapstructure:"variability_floor"`
	VariabilityMinRecords int     `mapstructure:"variability_min_records"`
	CIE11Start            string  `mapstructure:"cie11_start"`
	CoexistenceEnd        string  `mapstructure:"coexistence_end"`
}

// CatalogsConfig points at the CSV catalog exports loaded on startup.
// Empty paths leave the corresponding catalog in format-fallback mode.
type CatalogsConfig struct {
	CIE10Path          string `mapstructure:"cie10_path"`
	CIE11Path          string `mapstructure:"cie11_path"`
	CUPSPath           string `mapstructure:"cups_path"`
	CorrespondencePath string `mapstructure:"correspondence_path"`
}

// UploadsConfig contains the upload handling settings
type UploadsConfig struct {
	Directory    string `mapstructure:"directory"`
	MaxSizeBytes int64  `mapstructure:"max_size_bytes"`
}

// MonitoringConfig contains metrics settings
type MonitoringConfig struct {
	EnableMetrics bool   `mapstructure:"enable_metrics"`
	MetricsPath   string `mapstructure:"metrics_path"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// A missing file is fine; defaults plus environment apply.
		if _, statErr := os.Stat(configPath); statErr == nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.timeout", 30)

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.database", "rips")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.pool_size", 25)

	// Engine defaults
	viper.SetDefault("engine.max_findings", 100)
	viper.SetDefault("engine.duplicate_window_days", 7)
	viper.SetDefault("engine.daily_volume_threshold", 50)
	viper.SetDefault("engine.variability_floor", 0.1)
	viper.SetDefault("engine.variability_min_records", 10)
	viper.SetDefault("engine.cie11_start", "2024-08-14")
	viper.SetDefault("engine.coexistence_end", "2027-08-14")

	// Upload defaults
	viper.SetDefault("uploads.directory", "uploads")
	viper.SetDefault("uploads.max_size_bytes", 50*1024*1024)

	// Monitoring defaults
	viper.SetDefault("monitoring.enable_metrics", true)
	viper.SetDefault("monitoring.metrics_path", "/metrics")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Engine.MaxFindings <= 0 {
		return fmt.Errorf("invalid finding cap: %d", c.Engine.MaxFindings)
	}

	if c.Engine.DuplicateWindowDays < 0 {
		return fmt.Errorf("invalid duplicate window: %d", c.Engine.DuplicateWindowDays)
	}

	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.Username,
		c.Database.Password,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// InitLogger initializes the logger based on configuration
func (c *Config) InitLogger() (*zap.Logger, error) {
	var config zap.Config

	if c.Server.Host == "0.0.0.0" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return logger, nil
}

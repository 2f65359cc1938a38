// Package config provides configuration management for the coretree service.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Build    BuildConfig    `mapstructure:"build"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Query    QueryConfig    `mapstructure:"query"`
	Log      LogConfig      `mapstructure:"log"`
}

// BuildConfig holds parameters for the five-stage index build pipeline.
type BuildConfig struct {
	DataDir       string `mapstructure:"data_dir"`
	Width         int    `mapstructure:"width"`          // W: tree-decomposition peeling degree threshold
	Roots         int    `mapstructure:"roots"`          // R: number of bit-parallel BFS roots (spec default 4)
	DistanceCap   int    `mapstructure:"distance_cap"`   // MAXD: unreachable sentinel distance (spec default 120)
	BPThreads     int    `mapstructure:"bp_threads"`     // MAX_BP_THREADS (spec default 8)
	CoreThreads   int    `mapstructure:"core_threads"`   // worker count for core-label construction
	ReduceThreads int    `mapstructure:"reduce_threads"` // worker count for reduce/peel contraction fan-out
}

// DatabaseConfig holds database connection configuration for the build catalog.
type DatabaseConfig struct {
	Type     string `mapstructure:"type"` // postgres, mysql, or sqlite
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	MaxConns int    `mapstructure:"max_conns"`
}

// StorageConfig holds object storage configuration for label artifacts.
type StorageConfig struct {
	Type      string `mapstructure:"type"` // cos or local
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	SecretID  string `mapstructure:"secret_id"`
	SecretKey string `mapstructure:"secret_key"`
	Domain    string `mapstructure:"domain"`     // e.g., "myqcloud.com"
	Scheme    string `mapstructure:"scheme"`     // e.g., "https" or "http"
	LocalPath string `mapstructure:"local_path"` // for local storage
	Compress  bool   `mapstructure:"compress"`   // gzip-wrap artifacts in flight
}

// QueryConfig holds the distance-query service's listener configuration.
type QueryConfig struct {
	GRPCAddr      string `mapstructure:"grpc_addr"`
	MaxConcurrent int    `mapstructure:"max_concurrent"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"` // json or text
}

// Load reads configuration from the specified file path.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/coretree")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("Config file not found, using defaults")
		} else if os.IsNotExist(err) {
			fmt.Printf("Config file %s not found, using defaults\n", configPath)
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadFromReader loads configuration from raw bytes (useful for testing).
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("build.data_dir", "./data")
	v.SetDefault("build.width", 20)
	v.SetDefault("build.roots", 4)
	v.SetDefault("build.distance_cap", 120)
	v.SetDefault("build.bp_threads", 8)
	v.SetDefault("build.core_threads", 8)
	v.SetDefault("build.reduce_threads", 4)

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.database", "./data/catalog.db")
	v.SetDefault("database.max_conns", 10)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "./data/artifacts")

	v.SetDefault("query.grpc_addr", ":7070")
	v.SetDefault("query.max_concurrent", 64)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.output_path", "./logs")
	v.SetDefault("log.format", "text")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Build.Width <= 0 {
		return fmt.Errorf("build width (W) must be positive")
	}
	if c.Build.Roots <= 0 || c.Build.Roots > 64 {
		return fmt.Errorf("build roots must be in (0, 64], got %d", c.Build.Roots)
	}
	if c.Build.DistanceCap <= 0 {
		return fmt.Errorf("build distance cap must be positive")
	}
	if c.Build.BPThreads <= 0 {
		return fmt.Errorf("bp_threads must be at least 1")
	}

	switch c.Database.Type {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}

	return nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *Config) EnsureDataDir() error {
	if c.Build.DataDir == "" {
		return nil
	}
	return os.MkdirAll(c.Build.DataDir, 0755)
}

// GraphDir returns the data directory for a named graph's build artifacts.
func (c *Config) GraphDir(graphName string) string {
	return filepath.Join(c.Build.DataDir, graphName)
}

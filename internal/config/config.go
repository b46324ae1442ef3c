// Package config loads funcseg settings from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory.
const FileName = "funcseg.yaml"

// Config holds all configuration for funcseg.
type Config struct {
	Discover DiscoverConfig `yaml:"discover"`
	Segment  SegmentConfig  `yaml:"segment"`
	Output   OutputConfig   `yaml:"output"`
	Cache    CacheConfig    `yaml:"cache"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DiscoverConfig controls how directory arguments expand into files.
type DiscoverConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// SegmentConfig controls per-file processing.
type SegmentConfig struct {
	Workers     int   `yaml:"workers"`       // 0 = GOMAXPROCS
	MaxFileSize int64 `yaml:"max_file_size"` // bytes
	Normalize   bool  `yaml:"normalize"`
}

// OutputConfig selects the segment encoding.
type OutputConfig struct {
	Format string `yaml:"format"` // "text", "toon", "json", "yaml"
}

// CacheConfig enables the on-disk segment cache.
type CacheConfig struct {
	Path string `yaml:"path"` // empty disables caching
}

// ServerConfig holds settings for the serve command.
type ServerConfig struct {
	Addr           string `yaml:"addr"`
	MaxRequestSize int64  `yaml:"max_request_size"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Discover: DiscoverConfig{
			Includes: []string{"**/*.py", "**/*.pyi"},
			Excludes: []string{"**/site-packages/**", "**/*_pb2.py"},
		},
		Segment: SegmentConfig{
			Workers:     0,
			MaxFileSize: 1_000_000,
			Normalize:   true,
		},
		Output: OutputConfig{
			Format: "text",
		},
		Server: ServerConfig{
			Addr:           ":8095",
			MaxRequestSize: 4 << 20,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

// LoadFromDir looks for funcseg.yaml, then .funcseg/config.yaml, in dir.
func LoadFromDir(dir string) (*Config, error) {
	for _, path := range []string{
		filepath.Join(dir, FileName),
		filepath.Join(dir, ".funcseg", "config.yaml"),
	} {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return DefaultConfig(), nil
}

// Validate rejects settings the tool cannot honor.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "text", "toon", "json", "yaml":
	default:
		return fmt.Errorf("unsupported output format %q", c.Output.Format)
	}
	if c.Segment.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Segment.Workers)
	}
	if c.Segment.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be positive, got %d", c.Segment.MaxFileSize)
	}
	return nil
}

// WorkerCount resolves the configured worker count against GOMAXPROCS.
func (c *Config) WorkerCount() int {
	if c.Segment.Workers > 0 {
		return c.Segment.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

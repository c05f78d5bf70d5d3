package src

import (
	"errors"
	"fmt"

	"redis_backup/internal/config"
	"redis_backup/src/model"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	LogConfig    model.LogConfig    `envconfig:"" yaml:"log"`
	RedisConfig  model.RedisConfig  `envconfig:"" yaml:"redis"`
	ExportConfig model.ExportConfig `envconfig:"" yaml:"export"`
}

// DefaultConfig returns the configuration used when no file or environment overrides exist
func DefaultConfig() *Config {
	return &Config{
		LogConfig:    model.DefaultLogConfig(),
		RedisConfig:  model.DefaultRedisConfig(),
		ExportConfig: model.DefaultExportConfig(),
	}
}

// LoadConfig layers the optional YAML file at path and then the environment over the defaults
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := config.LoadYAML(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("error processing environment configuration: %w", err)
	}

	return cfg, nil
}

// Validate rejects settings the exporter cannot run with
func (c *Config) Validate() error {
	var errs []error

	if c.RedisConfig.URL == "" {
		if c.RedisConfig.Host == "" {
			errs = append(errs, errors.New("redis host must not be empty"))
		}
		if c.RedisConfig.Port < 1 || c.RedisConfig.Port > 65535 {
			errs = append(errs, fmt.Errorf("redis port %d out of range 1-65535", c.RedisConfig.Port))
		}
		if c.RedisConfig.DB < 0 {
			errs = append(errs, fmt.Errorf("redis db %d must not be negative", c.RedisConfig.DB))
		}
	}
	if c.ExportConfig.Output == "" {
		errs = append(errs, errors.New("output path must not be empty"))
	}
	if c.ExportConfig.ScanCount <= 0 {
		errs = append(errs, fmt.Errorf("scan count %d must be positive", c.ExportConfig.ScanCount))
	}
	if c.ExportConfig.ReadRetries < 0 {
		errs = append(errs, fmt.Errorf("read retries %d must not be negative", c.ExportConfig.ReadRetries))
	}

	return errors.Join(errs...)
}

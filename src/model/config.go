package model

import "time"

// ----------------------------------------------------
// ================ Config ================

// LogConfig holds configuration for the global logger
type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" yaml:"level"`
	Format     string `envconfig:"LOG_FORMAT" yaml:"format"` // console or json
	Output     string `envconfig:"LOG_OUTPUT" yaml:"output"` // stdout, stderr or file
	TimeFormat string `envconfig:"LOG_TIME_FORMAT" yaml:"time_format"`
	FilePath   string `envconfig:"LOG_FILE_PATH" yaml:"file_path"`
}

// RedisConfig describes how to reach the store being exported.
// When URL is set it takes precedence over Host, Port and DB.
type RedisConfig struct {
	URL         string        `envconfig:"REDIS_URL" yaml:"url"`
	Host        string        `envconfig:"REDIS_HOST" yaml:"host"`
	Port        int           `envconfig:"REDIS_PORT" yaml:"port"`
	DB          int           `envconfig:"REDIS_DB" yaml:"db"`
	Username    string        `envconfig:"REDIS_USERNAME" yaml:"username"`
	Password    string        `envconfig:"REDIS_PASSWORD" yaml:"password"`
	DialTimeout time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" yaml:"dial_timeout"`
}

// ExportConfig controls the key scan and the output file
type ExportConfig struct {
	Output      string `envconfig:"EXPORT_OUTPUT" yaml:"output"`
	Match       string `envconfig:"EXPORT_MATCH" yaml:"match"`
	ScanCount   int64  `envconfig:"EXPORT_SCAN_COUNT" yaml:"scan_count"`
	ReadRetries int    `envconfig:"EXPORT_READ_RETRIES" yaml:"read_retries"`
	Indent      string `envconfig:"EXPORT_INDENT" yaml:"indent"`
}

// DefaultLogConfig returns the logger settings used when nothing is configured
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:      "info",
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "rfc3339",
		FilePath:   "logs/redis_backup.log",
	}
}

// DefaultRedisConfig points at a local store, database 0
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host:        "localhost",
		Port:        6379,
		DB:          0,
		DialTimeout: 5 * time.Second,
	}
}

// DefaultExportConfig scans every key and writes backup_redis.json in the working directory
func DefaultExportConfig() ExportConfig {
	return ExportConfig{
		Output:      "backup_redis.json",
		Match:       "*",
		ScanCount:   100,
		ReadRetries: 2,
		Indent:      "  ",
	}
}

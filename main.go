package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"redis_backup/src"
	"redis_backup/src/export"
	"redis_backup/src/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Exit codes, one per failing stage
const (
	exitOK      = 0
	exitConfig  = 2
	exitConnect = 3
	exitScan    = 4
	exitWrite   = 5
)

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

type flagValues struct {
	configPath string
	url        string
	host       string
	port       int
	db         int
	output     string
	match      string
	scanCount  int64
	retries    int
	logLevel   string
}

func newRootCmd() *cobra.Command {
	var fv flagValues
	defaults := src.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "redis_backup",
		Short: "Export every key of a Redis database to a JSON file",
		Long: `redis_backup scans one logical Redis database, reads each string, hash,
list, set and sorted set key, and writes the result as a single
pretty-printed JSON object. Keys of other types are skipped.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, fv)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&fv.configPath, "config", "c", "", "optional YAML config file")
	f.StringVar(&fv.url, "url", "", "Redis URL, overrides host, port and db")
	f.StringVar(&fv.host, "host", defaults.RedisConfig.Host, "Redis host")
	f.IntVarP(&fv.port, "port", "p", defaults.RedisConfig.Port, "Redis port")
	f.IntVarP(&fv.db, "db", "n", defaults.RedisConfig.DB, "logical database index")
	f.StringVarP(&fv.output, "output", "o", defaults.ExportConfig.Output, "output JSON file")
	f.StringVar(&fv.match, "match", defaults.ExportConfig.Match, "SCAN MATCH pattern")
	f.Int64Var(&fv.scanCount, "scan-count", defaults.ExportConfig.ScanCount, "SCAN COUNT hint")
	f.IntVar(&fv.retries, "retries", defaults.ExportConfig.ReadRetries, "retries per key read on transient errors")
	f.StringVar(&fv.logLevel, "log-level", defaults.LogConfig.Level, "log level (debug, info, warn, error)")

	return cmd
}

// applyFlags copies explicitly set flags over the loaded configuration
func applyFlags(cmd *cobra.Command, fv flagValues, cfg *src.Config) {
	changed := cmd.Flags().Changed
	if changed("url") {
		cfg.RedisConfig.URL = fv.url
	}
	if changed("host") {
		cfg.RedisConfig.Host = fv.host
	}
	if changed("port") {
		cfg.RedisConfig.Port = fv.port
	}
	if changed("db") {
		cfg.RedisConfig.DB = fv.db
	}
	if changed("output") {
		cfg.ExportConfig.Output = fv.output
	}
	if changed("match") {
		cfg.ExportConfig.Match = fv.match
	}
	if changed("scan-count") {
		cfg.ExportConfig.ScanCount = fv.scanCount
	}
	if changed("retries") {
		cfg.ExportConfig.ReadRetries = fv.retries
	}
	if changed("log-level") {
		cfg.LogConfig.Level = fv.logLevel
	}
}

func runExport(cmd *cobra.Command, fv flagValues) error {
	// Load environment variables from .env file
	envErr := godotenv.Load()

	cfg, err := src.LoadConfig(fv.configPath)
	if err != nil {
		return &exitError{code: exitConfig, err: err}
	}
	applyFlags(cmd, fv, cfg)
	if err := cfg.Validate(); err != nil {
		return &exitError{code: exitConfig, err: fmt.Errorf("invalid configuration: %w", err)}
	}

	if err := logger.InitLoggerWithOutput(cfg.LogConfig, cmd.OutOrStdout(), cmd.ErrOrStderr()); err != nil {
		return &exitError{code: exitConfig, err: err}
	}
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		logger.Warn().Err(envErr).Msg("Error loading .env file")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := export.Connect(ctx, cfg.RedisConfig)
	if err != nil {
		return stageExit(err)
	}
	defer store.Close()

	logger.Info().
		Str("addr", store.Addr()).
		Int("db", store.DB()).
		Str("match", cfg.ExportConfig.Match).
		Msg("Connected to Redis, exporting keys")

	result, err := export.NewExporter(store, cfg.ExportConfig, *logger.GetLogger()).Export(ctx)
	if err != nil {
		return stageExit(err)
	}

	logger.Info().
		Str("path", result.Path).
		Int("keys", result.Keys).
		Int("vanished", result.Vanished).
		Int("unsupported", result.Unsupported).
		Int("binary", result.Binary).
		Dur("elapsed", result.Elapsed).
		Msg("Export finished")
	fmt.Fprintf(cmd.OutOrStdout(), "Export completed in %s\n", result.Path)

	return nil
}

func stageExit(err error) error {
	stage, _ := export.StageOf(err)
	switch stage {
	case export.StageConnect:
		return &exitError{code: exitConnect, err: err}
	case export.StageWrite:
		return &exitError{code: exitWrite, err: err}
	default:
		return &exitError{code: exitScan, err: err}
	}
}

// execute runs the root command with args and returns the process exit code
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var ee *exitError
	if !errors.As(err, &ee) {
		// flag parsing and other cobra errors
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return exitConfig
	}

	stage, ok := export.StageOf(err)
	if ok {
		logger.Error().Err(err).Str("stage", string(stage)).Msg("Export failed")
	} else {
		logger.Error().Err(err).Msg("Export failed")
	}
	// the logger may not be initialised yet for configuration errors
	if ee.code == exitConfig {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
	}
	return ee.code
}

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/aleister1102/hashwatch/internal/config"
	"github.com/aleister1102/hashwatch/internal/datastore"
	"github.com/aleister1102/hashwatch/internal/httpclient"
	"github.com/aleister1102/hashwatch/internal/logger"
	"github.com/aleister1102/hashwatch/internal/metrics"
	"github.com/aleister1102/hashwatch/internal/monitor"
	"github.com/aleister1102/hashwatch/internal/notifier"
	"github.com/aleister1102/hashwatch/internal/storage"
)

const defaultEnvFile = ".env"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

// run performs one monitoring run and returns the process exit code: 0 when the run
// completed (even with failed URLs), 1 on configuration or baseline errors.
func run(ctx context.Context, args []string, stderr io.Writer) int {
	bootstrap := zerolog.New(logger.NewTextWriter(stderr)).With().Timestamp().Logger()

	flags, err := ParseFlags(args, stderr)
	if err != nil {
		return 1
	}

	if err := loadEnvFile(flags.EnvFile); err != nil {
		bootstrap.WithLevel(zerolog.FatalLevel).Err(err).Str("path", flags.EnvFile).Msg("Failed to load env file")
		return 1
	}
	lookup := config.OSLookup

	settingsPath := config.GetConfigPath(flags.ConfigFile, lookup)
	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		bootstrap.WithLevel(zerolog.FatalLevel).Err(err).Str("path", settingsPath).Msg("Failed to load configuration file")
		return 1
	}

	appLogger, err := logger.NewLoggerBuilder().
		WithConfig(config.LoadLogConfig(lookup, settings.Log)).
		WithConsoleOutput(stderr).
		Build()
	if err != nil {
		bootstrap.WithLevel(zerolog.FatalLevel).Err(err).Msg("Failed to initialize logger")
		return 1
	}
	zLogger := *appLogger.GetZerolog()

	runCfg, err := config.LoadRunConfig(lookup, settings, zLogger)
	if err != nil {
		var cfgErr *config.ConfigError
		if errors.As(err, &cfgErr) {
			zLogger.WithLevel(zerolog.FatalLevel).Str("field", cfgErr.Field).Err(err).Msg("Invalid configuration")
		} else {
			zLogger.WithLevel(zerolog.FatalLevel).Err(err).Msg("Failed to load configuration")
		}
		return 1
	}

	return execute(ctx, runCfg, zLogger)
}

func execute(ctx context.Context, runCfg *config.RunConfig, zLogger zerolog.Logger) int {
	notificationHelper := notifier.NewNotificationHelperFromConfig(runCfg, nil, zLogger)

	httpClient, err := httpclient.NewHTTPClientBuilder(zLogger).WithFetchConfig(runCfg.Fetch).Build()
	if err != nil {
		zLogger.WithLevel(zerolog.FatalLevel).Err(err).Msg("Failed to create HTTP client")
		return 1
	}

	bucket, err := storage.Open(ctx, runCfg.Location, runCfg.Storage, zLogger)
	if err != nil {
		zLogger.WithLevel(zerolog.FatalLevel).Err(err).Str("location", runCfg.Location.String()).Msg("Failed to open storage")
		_ = notificationHelper.NotifyCritical(ctx, "storage", err)
		return 1
	}
	defer bucket.Close()

	keys := datastore.NewObjectKeyBuilder(runCfg.HashPathPrefix, runCfg.DataPathPrefix)
	recorder := metrics.NewRecorder()

	service, err := monitor.NewMonitoringService(runCfg, monitor.Dependencies{
		Fetcher:  httpClient,
		Hashes:   datastore.NewHashStore(bucket, keys, zLogger),
		Payloads: datastore.NewPayloadStore(bucket, keys, zLogger),
		Notifier: notificationHelper,
		History:  datastore.NewHistoryStore(bucket, keys, runCfg.Storage.CompressionCodec, zLogger),
		Metrics:  recorder,
	}, zLogger)
	if err != nil {
		zLogger.WithLevel(zerolog.FatalLevel).Err(err).Msg("Failed to create monitoring service")
		return 1
	}

	report, err := service.Run(ctx)
	if err != nil {
		zLogger.WithLevel(zerolog.FatalLevel).Err(err).Msg("Run aborted")
		_ = notificationHelper.NotifyCritical(ctx, "HashStore", err)
		return 1
	}

	if path := runCfg.Metrics.TextfilePath; path != "" {
		if err := recorder.WriteTextfile(path); err != nil {
			zLogger.Warn().Err(err).Str("path", path).Msg("Failed to write metrics textfile")
		}
	}

	zLogger.Info().
		Str("run_id", report.RunID).
		Str("status", string(report.Status)).
		Int("total", report.Total()).
		Int("changed", report.Changed).
		Int("unchanged", report.Unchanged).
		Int("failed", report.Failed).
		Dur("duration", report.Duration()).
		Msgf("Run %s: %d changed, %d unchanged, %d failed", report.Status, report.Changed, report.Unchanged, report.Failed)
	return 0
}

// loadEnvFile loads path into the process environment without overriding variables
// that are already set. An empty path loads ./.env when it exists.
func loadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(defaultEnvFile); err != nil {
			return nil
		}
		path = defaultEnvFile
	}
	return godotenv.Load(path)
}

// Package server hosts the process-management and long-running orchestration
// code for flowcache: PID file tracking, launchd service installation, and
// the Run loop that opens the stores, starts the inspector API, and blocks
// until a shutdown signal arrives.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/allaspectsdev/flowcache/internal/config"
	"github.com/allaspectsdev/flowcache/internal/inspector"
	"github.com/allaspectsdev/flowcache/internal/resultstore"
	"github.com/allaspectsdev/flowcache/internal/store"
	"github.com/allaspectsdev/flowcache/internal/tracing"
	"github.com/allaspectsdev/flowcache/internal/version"
)

// Run opens the Metadata Store and Result Store, starts the inspector HTTP
// API, and blocks until SIGINT/SIGTERM or the parent context is canceled.
// It is the orchestrator behind `flowcache serve`.
func Run(ctx context.Context, cfg *config.Config, foreground bool) error {
	dataDir := expandHome(cfg.Cache.DataDir)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory %s: %w", dataDir, err)
	}

	logLevel := parseLogLevel(cfg.Server.LogLevel)
	zerolog.SetGlobalLevel(logLevel)

	var writers []io.Writer

	logPath := filepath.Join(dataDir, "flowcache.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file %s: %w", logPath, err)
	}
	defer logFile.Close()
	writers = append(writers, logFile)

	if foreground {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		})
	}

	multi := zerolog.MultiLevelWriter(writers...)
	log.Logger = zerolog.New(multi).With().Timestamp().Str("service", "flowcache").Logger()

	log.Info().
		Str("version", version.Version).
		Str("data_dir", dataDir).
		Bool("foreground", foreground).
		Msg("flowcache starting")

	if IsRunning(dataDir) {
		return fmt.Errorf("flowcache is already running (PID file exists at %s)", filepath.Join(dataDir, pidFilename))
	}

	meta, err := store.Open(cfg.Cache.MetadataDBPath())
	if err != nil {
		return fmt.Errorf("opening metadata store: %w", err)
	}
	defer meta.Close()
	log.Info().Str("db_path", cfg.Cache.MetadataDBPath()).Msg("metadata store opened")

	results, err := resultstore.NewSQLiteStore(cfg.Cache.ResultDBPath(), cfg.Cache.SideChannelPath(), cfg.Cache.MaxMemoryEntries)
	if err != nil {
		return fmt.Errorf("opening result store: %w", err)
	}
	defer results.Close()
	log.Info().Str("db_path", cfg.Cache.ResultDBPath()).Msg("result store opened")

	if err := WritePID(dataDir); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer func() {
		if err := RemovePID(dataDir); err != nil {
			log.Error().Err(err).Msg("failed to remove PID file")
		}
	}()
	log.Info().Int("pid", os.Getpid()).Msg("PID file written")

	configFile := config.ConfigFilePath()
	if configFile == "" {
		configFile = filepath.Join(dataDir, config.DefaultConfigFilename)
	}

	if _, statErr := os.Stat(configFile); statErr == nil {
		watcher, watchErr := config.Watch(configFile)
		if watchErr != nil {
			log.Warn().Err(watchErr).Msg("failed to start config watcher; continuing without hot-reload")
		} else {
			defer watcher.Close()
			watcher.OnChange(func(_, newCfg *config.Config) {
				log.Info().Msg("configuration reloaded")
				zerolog.SetGlobalLevel(parseLogLevel(newCfg.Server.LogLevel))
			})
			log.Info().Str("file", configFile).Msg("config watcher started")
		}
	}

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.Init(ctx, cfg.Tracing.ServiceName, version.Version, cfg.Tracing.Exporter, cfg.Tracing.Endpoint, cfg.Tracing.SampleRate, cfg.Tracing.Insecure)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize tracing; continuing without it")
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("tracing shutdown failed")
				}
			}()
		}
	}

	insp := inspector.NewServer(meta, cfg.Server.InspectorAddr)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- insp.Start()
	}()
	log.Info().Str("addr", cfg.Server.InspectorAddr).Msg("inspector server listening")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down")
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("inspector server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := insp.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("inspector server shutdown error")
	}

	log.Info().Msg("flowcache stopped")
	return nil
}

// parseLogLevel converts a string log level to a zerolog.Level.
func parseLogLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

package config

import (
	"fmt"
	"strings"
)

// validate checks the Config for invalid or out-of-range values.
// It returns a combined error if any checks fail.
func validate(cfg *Config) error {
	var errs []string

	// Server validation
	if !isValidEnum(cfg.Server.LogLevel, ValidLogLevels) {
		errs = append(errs, fmt.Sprintf("server.log_level must be one of %v, got %q", ValidLogLevels, cfg.Server.LogLevel))
	}
	if cfg.Server.InspectorAddr == "" {
		errs = append(errs, "server.inspector_addr must not be empty")
	}
	if cfg.Server.ReadTimeout < 0 {
		errs = append(errs, fmt.Sprintf("server.read_timeout must be non-negative, got %d", cfg.Server.ReadTimeout))
	}
	if cfg.Server.WriteTimeout < 0 {
		errs = append(errs, fmt.Sprintf("server.write_timeout must be non-negative, got %d", cfg.Server.WriteTimeout))
	}
	if cfg.Server.IdleTimeout < 0 {
		errs = append(errs, fmt.Sprintf("server.idle_timeout must be non-negative, got %d", cfg.Server.IdleTimeout))
	}

	// Cache validation
	if cfg.Cache.DataDir == "" {
		errs = append(errs, "cache.data_dir must not be empty")
	}
	if cfg.Cache.MetadataDBFile == "" {
		errs = append(errs, "cache.metadata_db_file must not be empty")
	}
	if cfg.Cache.ResultDBFile == "" {
		errs = append(errs, "cache.result_db_file must not be empty")
	}
	if cfg.Cache.MetadataDBFile == cfg.Cache.ResultDBFile {
		errs = append(errs, fmt.Sprintf("cache.metadata_db_file and cache.result_db_file must differ, both are %q", cfg.Cache.MetadataDBFile))
	}
	if cfg.Cache.SideChannelDir == "" {
		errs = append(errs, "cache.side_channel_dir must not be empty")
	}
	if !isValidEnum(cfg.Cache.DefaultSaverFormat, ValidSaverFormats) {
		errs = append(errs, fmt.Sprintf("cache.default_saver_format must be one of %v, got %q", ValidSaverFormats, cfg.Cache.DefaultSaverFormat))
	}
	if cfg.Cache.MaxMemoryEntries < 0 {
		errs = append(errs, fmt.Sprintf("cache.max_memory_entries must be non-negative, got %d", cfg.Cache.MaxMemoryEntries))
	}
	if cfg.Cache.BusyTimeoutMs < 0 {
		errs = append(errs, fmt.Sprintf("cache.busy_timeout_ms must be non-negative, got %d", cfg.Cache.BusyTimeoutMs))
	}

	// Tracing validation
	if cfg.Tracing.Enabled {
		validExporters := []string{"stdout", "otlp-grpc", "otlp-http"}
		if !isValidEnum(cfg.Tracing.Exporter, validExporters) {
			errs = append(errs, fmt.Sprintf("tracing.exporter must be one of %v, got %q", validExporters, cfg.Tracing.Exporter))
		}
		if cfg.Tracing.ServiceName == "" {
			errs = append(errs, "tracing.service_name must not be empty when tracing is enabled")
		}
	}
	if cfg.Tracing.SampleRate < 0 || cfg.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Sprintf("tracing.sample_rate must be between 0 and 1, got %f", cfg.Tracing.SampleRate))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// isValidEnum returns true if val is in the allowed list (case-insensitive).
func isValidEnum(val string, allowed []string) bool {
	lower := strings.ToLower(val)
	for _, a := range allowed {
		if strings.ToLower(a) == lower {
			return true
		}
	}
	return false
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// configPtr holds the current config for thread-safe access.
var configPtr atomic.Pointer[Config]

// loadedConfigFile stores the path of the config file used by the last successful Load.
var loadedConfigFile atomic.Value

// Get returns the current Config. It is safe for concurrent use.
// If no config has been loaded yet, it returns the default config.
func Get() *Config {
	if c := configPtr.Load(); c != nil {
		return c
	}
	d := DefaultConfig()
	configPtr.Store(d)
	return d
}

// set stores a new Config atomically.
func set(cfg *Config) {
	configPtr.Store(cfg)
}

// Config is the top-level configuration for flowcache.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"  toml:"server"`
	Cache   CacheConfig   `mapstructure:"cache"   toml:"cache"`
	Tracing TracingConfig `mapstructure:"tracing" toml:"tracing"`
}

// ServerConfig holds the log level and the inspector HTTP server settings.
// The inspector does not read the timeout fields: it runs with fixed 5s
// read, 10s write and 30s idle timeouts.
type ServerConfig struct {
	LogLevel      string `mapstructure:"log_level"      toml:"log_level"`
	InspectorAddr string `mapstructure:"inspector_addr" toml:"inspector_addr"`
	ReadTimeout   int    `mapstructure:"read_timeout"   toml:"read_timeout"`
	WriteTimeout  int    `mapstructure:"write_timeout"  toml:"write_timeout"`
	IdleTimeout   int    `mapstructure:"idle_timeout"   toml:"idle_timeout"`
}

// CacheConfig holds settings for the Result Store, Metadata Store, and
// fingerprinting/side-channel behaviour.
type CacheConfig struct {
	DataDir            string `mapstructure:"data_dir"              toml:"data_dir"`
	MetadataDBFile     string `mapstructure:"metadata_db_file"      toml:"metadata_db_file"`
	ResultDBFile       string `mapstructure:"result_db_file"        toml:"result_db_file"`
	SideChannelDir     string `mapstructure:"side_channel_dir"      toml:"side_channel_dir"`
	DefaultSaverFormat string `mapstructure:"default_saver_format"  toml:"default_saver_format"`
	MaxMemoryEntries   int    `mapstructure:"max_memory_entries"    toml:"max_memory_entries"`
	BusyTimeoutMs      int    `mapstructure:"busy_timeout_ms"       toml:"busy_timeout_ms"`
	ResumeFrom         string `mapstructure:"resume_from"           toml:"resume_from"`
}

// TracingConfig controls OpenTelemetry distributed tracing around the
// Cache Coordinator's lifecycle hooks.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"      toml:"enabled"`
	Exporter    string  `mapstructure:"exporter"     toml:"exporter"`     // "stdout", "otlp-grpc", "otlp-http"
	Endpoint    string  `mapstructure:"endpoint"     toml:"endpoint"`     // e.g. "localhost:4317"
	ServiceName string  `mapstructure:"service_name" toml:"service_name"` // defaults to "flowcache"
	SampleRate  float64 `mapstructure:"sample_rate"  toml:"sample_rate"`  // 0.0 to 1.0
	Insecure    bool    `mapstructure:"insecure"     toml:"insecure"`     // skip TLS for dev
}

// MetadataDBPath returns the resolved absolute path to the metadata SQLite file.
func (c CacheConfig) MetadataDBPath() string {
	return filepath.Join(c.DataDir, c.MetadataDBFile)
}

// ResultDBPath returns the resolved absolute path to the result SQLite file.
func (c CacheConfig) ResultDBPath() string {
	return filepath.Join(c.DataDir, c.ResultDBFile)
}

// SideChannelPath returns the resolved absolute path to the side-channel
// directory where non-inline saver formats write their files.
func (c CacheConfig) SideChannelPath() string {
	if filepath.IsAbs(c.SideChannelDir) {
		return c.SideChannelDir
	}
	return filepath.Join(c.DataDir, c.SideChannelDir)
}

// Load reads configuration from disk with the following precedence:
//  1. Environment variables (FLOWCACHE_ prefix, _ as separator)
//  2. The file at explicitPath if non-empty
//  3. ~/.flowcache/flowcache.toml
//  4. ./flowcache.toml
//  5. Built-in defaults
//
// The loaded config is validated and stored in the global atomic pointer.
func Load(explicitPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")

	// Set all defaults from the default config so viper knows every key.
	setViperDefaults(v)

	// Environment variable overlay: FLOWCACHE_SERVER_LOG_LEVEL etc.
	v.SetEnvPrefix("FLOWCACHE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Determine which file(s) to read.
	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
	} else {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".flowcache"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("flowcache")
	}

	if err := v.ReadInConfig(); err != nil {
		// If no config file exists we still proceed with defaults + env.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Store the resolved config file path.
	if cf := v.ConfigFileUsed(); cf != "" {
		loadedConfigFile.Store(cf)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	)); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Expand ~ in data_dir.
	cfg.Cache.DataDir = expandHome(cfg.Cache.DataDir)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	set(cfg)
	return cfg, nil
}

// InitConfig writes the default configuration file to ~/.flowcache/flowcache.toml.
// If the file already exists it is not overwritten.
func InitConfig() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("determining home directory: %w", err)
	}

	dir := filepath.Join(homeDir, ".flowcache")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	path := filepath.Join(dir, DefaultConfigFilename)
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Config already exists: %s\n", path)
		return nil
	}

	cfg := DefaultConfig()
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling default config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Config written to %s\n", path)
	return nil
}

// ExportConfig writes the current config to the given path in TOML format.
func ExportConfig(path string) error {
	cfg := Get()
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ImportConfig reads a TOML config file over the defaults and replaces the
// current config with the result: fields absent from the file take their
// default values, not their current ones.
// The imported config is also persisted to the active config file so changes
// survive restarts.
func ImportConfig(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	if err := validate(cfg); err != nil {
		return err
	}
	set(cfg)

	// Persist to the active config file so changes survive restart.
	if dest := ConfigFilePath(); dest != "" {
		out, err := toml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshalling config for persistence: %w", err)
		}
		if err := os.WriteFile(dest, out, 0o600); err != nil {
			return fmt.Errorf("persisting imported config: %w", err)
		}
	}

	return nil
}

// ConfigFilePath returns the path of the config file that was loaded, or
// empty if no file was found.
func ConfigFilePath() string {
	if v, ok := loadedConfigFile.Load().(string); ok {
		return v
	}
	return ""
}

// setViperDefaults registers every known key with viper so that env var binding
// works for all fields even when no config file is present.
func setViperDefaults(v *viper.Viper) {
	d := DefaultConfig()

	// Server
	v.SetDefault("server.log_level", d.Server.LogLevel)
	v.SetDefault("server.inspector_addr", d.Server.InspectorAddr)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout", d.Server.IdleTimeout)

	// Cache
	v.SetDefault("cache.data_dir", d.Cache.DataDir)
	v.SetDefault("cache.metadata_db_file", d.Cache.MetadataDBFile)
	v.SetDefault("cache.result_db_file", d.Cache.ResultDBFile)
	v.SetDefault("cache.side_channel_dir", d.Cache.SideChannelDir)
	v.SetDefault("cache.default_saver_format", d.Cache.DefaultSaverFormat)
	v.SetDefault("cache.max_memory_entries", d.Cache.MaxMemoryEntries)
	v.SetDefault("cache.busy_timeout_ms", d.Cache.BusyTimeoutMs)
	v.SetDefault("cache.resume_from", d.Cache.ResumeFrom)

	// Tracing
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.endpoint", d.Tracing.Endpoint)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.insecure", d.Tracing.Insecure)
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
	return filepath.Join(home, path[1:])
}

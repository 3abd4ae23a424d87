package config

// DefaultInspectorAddr is the default bind address for the inspector HTTP
// API (localhost only; this API has no auth and is meant for local dev).
const DefaultInspectorAddr = "127.0.0.1:7799"

// DefaultLogLevel is the default log level.
const DefaultLogLevel = "info"

// DefaultDataDir is the default data directory (before tilde expansion).
const DefaultDataDir = "~/.flowcache"

// DefaultConfigFilename is the name of the config file.
const DefaultConfigFilename = "flowcache.toml"

// DefaultMetadataDBFile is the default filename for the Metadata Store's
// SQLite database, relative to DataDir.
const DefaultMetadataDBFile = "metadata.db"

// DefaultResultDBFile is the default filename for the Result Store's SQLite
// database, relative to DataDir.
const DefaultResultDBFile = "results.db"

// DefaultSideChannelDir is the default directory for side-channel saver
// output, relative to DataDir.
const DefaultSideChannelDir = "blobs"

// DefaultSaverFormat is the default value of cache.default_saver_format. The
// setting is validated but not read elsewhere: a node whose cache tag names
// no format has its result stored inline as gob.
const DefaultSaverFormat = "gob"

// DefaultMaxMemoryEntries is the default capacity of the Result Store's
// in-memory LRU tier.
const DefaultMaxMemoryEntries = 512

// DefaultBusyTimeoutMs is the default value of cache.busy_timeout_ms. Neither
// store reads the setting: both open their SQLite connections with a fixed
// busy_timeout of 5000 ms, the same as this default.
const DefaultBusyTimeoutMs = 5000

// DefaultReadTimeout is the default HTTP server read timeout in seconds.
const DefaultReadTimeout = 5

// DefaultWriteTimeout is the default HTTP server write timeout in seconds.
const DefaultWriteTimeout = 10

// DefaultIdleTimeout is the default HTTP server idle timeout in seconds.
const DefaultIdleTimeout = 30

// DefaultTracingExporter is the default tracing exporter type.
const DefaultTracingExporter = "stdout"

// DefaultTracingEndpoint is the default OTLP collector endpoint.
const DefaultTracingEndpoint = "localhost:4317"

// DefaultTracingServiceName is the default service name for traces.
const DefaultTracingServiceName = "flowcache"

// DefaultTracingSampleRate is the default sampling rate (1.0 = 100%).
const DefaultTracingSampleRate = 1.0

// ValidLogLevels lists the allowed log level values.
var ValidLogLevels = []string{"trace", "debug", "info", "warn", "error", "fatal"}

// ValidSaverFormats lists the serializer formats registered by default, and
// the only values validation accepts for cache.default_saver_format; formats
// registered at runtime are not added to it.
var ValidSaverFormats = []string{"json", "gob"}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			LogLevel:      DefaultLogLevel,
			InspectorAddr: DefaultInspectorAddr,
			ReadTimeout:   DefaultReadTimeout,
			WriteTimeout:  DefaultWriteTimeout,
			IdleTimeout:   DefaultIdleTimeout,
		},
		Cache: CacheConfig{
			DataDir:            DefaultDataDir,
			MetadataDBFile:     DefaultMetadataDBFile,
			ResultDBFile:       DefaultResultDBFile,
			SideChannelDir:     DefaultSideChannelDir,
			DefaultSaverFormat: DefaultSaverFormat,
			MaxMemoryEntries:   DefaultMaxMemoryEntries,
			BusyTimeoutMs:      DefaultBusyTimeoutMs,
			ResumeFrom:         "",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			Exporter:    DefaultTracingExporter,
			Endpoint:    DefaultTracingEndpoint,
			ServiceName: DefaultTracingServiceName,
			SampleRate:  DefaultTracingSampleRate,
			Insecure:    false,
		},
	}
}

package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Cache.DataDir = "/tmp/test"
	return cfg
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := validConfig()
	if err := validate(cfg); err != nil {
		t.Fatalf("validate valid config: %v", err)
	}
}

func TestValidate_BadLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Server.LogLevel = "verbose"

	err := validate(cfg)
	if err == nil {
		t.Fatal("expected error for invalid log level")
	}
	if !strings.Contains(err.Error(), "log_level") {
		t.Errorf("error should mention log_level: %v", err)
	}
}

func TestValidate_EmptyInspectorAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Server.InspectorAddr = ""

	err := validate(cfg)
	if err == nil {
		t.Fatal("expected error for empty inspector_addr")
	}
}

func TestValidate_NegativeReadTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.Server.ReadTimeout = -1

	err := validate(cfg)
	if err == nil {
		t.Fatal("expected error for negative read_timeout")
	}
}

func TestValidate_EmptyDataDir(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.DataDir = ""

	err := validate(cfg)
	if err == nil {
		t.Fatal("expected error for empty data_dir")
	}
}

func TestValidate_SameDBFiles(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.MetadataDBFile = "shared.db"
	cfg.Cache.ResultDBFile = "shared.db"

	err := validate(cfg)
	if err == nil {
		t.Fatal("expected error for identical metadata/result db filenames")
	}
}

func TestValidate_EmptySideChannelDir(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.SideChannelDir = ""

	err := validate(cfg)
	if err == nil {
		t.Fatal("expected error for empty side_channel_dir")
	}
}

func TestValidate_BadSaverFormat(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.DefaultSaverFormat = "pickle"

	err := validate(cfg)
	if err == nil {
		t.Fatal("expected error for unregistered default saver format")
	}
	if !strings.Contains(err.Error(), "default_saver_format") {
		t.Errorf("error should mention default_saver_format: %v", err)
	}
}

func TestValidate_NegativeMaxMemoryEntries(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.MaxMemoryEntries = -1

	err := validate(cfg)
	if err == nil {
		t.Fatal("expected error for negative max_memory_entries")
	}
}

func TestValidate_NegativeBusyTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.BusyTimeoutMs = -1

	err := validate(cfg)
	if err == nil {
		t.Fatal("expected error for negative busy_timeout_ms")
	}
}

func TestValidate_Tracing_BadExporter(t *testing.T) {
	cfg := validConfig()
	cfg.Tracing.Enabled = true
	cfg.Tracing.Exporter = "carrier-pigeon"

	err := validate(cfg)
	if err == nil {
		t.Fatal("expected error for invalid tracing exporter")
	}
}

func TestValidate_Tracing_EmptyServiceName(t *testing.T) {
	cfg := validConfig()
	cfg.Tracing.Enabled = true
	cfg.Tracing.ServiceName = ""

	err := validate(cfg)
	if err == nil {
		t.Fatal("expected error for empty tracing service_name when enabled")
	}
}

func TestValidate_Tracing_SampleRateOutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.Tracing.SampleRate = 1.5

	err := validate(cfg)
	if err == nil {
		t.Fatal("expected error for sample_rate > 1")
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.LogLevel = "bad"
	cfg.Cache.DataDir = ""

	err := validate(cfg)
	if err == nil {
		t.Fatal("expected multiple validation errors")
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "log_level") || !strings.Contains(errStr, "data_dir") {
		t.Errorf("error should mention multiple fields: %v", err)
	}
}

func TestIsValidEnum(t *testing.T) {
	if !isValidEnum("INFO", ValidLogLevels) {
		t.Error("INFO should be valid (case-insensitive)")
	}
	if isValidEnum("verbose", ValidLogLevels) {
		t.Error("verbose should not be valid")
	}
}

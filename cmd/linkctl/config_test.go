package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/elrstools/crsflink/internal/crsf"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadRuntimeConfigEmptyPathUsesDefaults(t *testing.T) {
	cfg, logLevel, err := loadRuntimeConfig("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if logLevel != "info" {
		t.Fatalf("unexpected log level: %q", logLevel)
	}
	if cfg.Port != "/dev/ttyS0" || cfg.Baud != 420000 {
		t.Fatalf("unexpected serial defaults: %q %d", cfg.Port, cfg.Baud)
	}
	if cfg.SyncByte != 0xC8 {
		t.Fatalf("unexpected sync byte: %#02x", cfg.SyncByte)
	}
	if cfg.LinkTimeout != time.Second {
		t.Fatalf("unexpected link timeout: %v", cfg.LinkTimeout)
	}
}

func TestLoadRuntimeConfigSparseOverride(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"

[serial]
port = "/dev/ttyUSB0"

[protocol]
link_timeout = "750ms"
decode_types = ["rc_channels", "link_statistics"]
`)

	cfg, logLevel, err := loadRuntimeConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if logLevel != "debug" {
		t.Fatalf("unexpected log level: %q", logLevel)
	}
	if cfg.Port != "/dev/ttyUSB0" {
		t.Fatalf("unexpected port: %q", cfg.Port)
	}
	if cfg.Baud != 420000 {
		t.Fatalf("expected default baud, got %d", cfg.Baud)
	}
	if cfg.LinkTimeout != 750*time.Millisecond {
		t.Fatalf("unexpected link timeout: %v", cfg.LinkTimeout)
	}
	if len(cfg.DecodeTypes) != 2 ||
		cfg.DecodeTypes[0] != crsf.TypeChannels ||
		cfg.DecodeTypes[1] != crsf.TypeLinkStatistics {
		t.Fatalf("unexpected decode types: %v", cfg.DecodeTypes)
	}
}

func TestLoadRuntimeConfigBadDuration(t *testing.T) {
	path := writeConfig(t, `
[protocol]
link_timeout = "soon"
`)
	if _, _, err := loadRuntimeConfig(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadRuntimeConfigMQTTNeedsBroker(t *testing.T) {
	path := writeConfig(t, `
[mqtt]
enabled = true
`)
	if _, _, err := loadRuntimeConfig(path); err == nil {
		t.Fatalf("expected broker error")
	}
}

func TestLoadRuntimeConfigTelemetryBounds(t *testing.T) {
	path := writeConfig(t, `
[telemetry]
remaining_percent = 150
`)
	if _, _, err := loadRuntimeConfig(path); err == nil {
		t.Fatalf("expected range error")
	}
}

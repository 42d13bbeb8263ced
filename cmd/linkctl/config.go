package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/elrstools/crsflink/internal/crsf"
	"github.com/elrstools/crsflink/internal/receiver"
)

type fileConfig struct {
	LogLevel string `toml:"log_level"`
	Serial   struct {
		Port string `toml:"port"`
		Baud int    `toml:"baud"`
	} `toml:"serial"`
	Protocol struct {
		SyncByte    int      `toml:"sync_byte"`
		MaxBuffer   int      `toml:"max_buffer"`
		LinkTimeout string   `toml:"link_timeout"`
		DecodeTypes []string `toml:"decode_types"`
	} `toml:"protocol"`
	HTTP struct {
		Addr string `toml:"addr"`
	} `toml:"http"`
	MQTT struct {
		Enabled     bool   `toml:"enabled"`
		Broker      string `toml:"broker"`
		ClientID    string `toml:"client_id"`
		TopicPrefix string `toml:"topic_prefix"`
	} `toml:"mqtt"`
	Telemetry struct {
		BatteryEnabled bool    `toml:"battery_enabled"`
		Interval       string  `toml:"interval"`
		Voltage        float64 `toml:"voltage"`
		Current        float64 `toml:"current"`
		Consumed       int     `toml:"consumed_mah"`
		Remaining      int     `toml:"remaining_percent"`
	} `toml:"telemetry"`
}

// loadRuntimeConfig layers the config file over the built-in defaults.
// Only keys the file actually defines override, so a sparse config stays
// sparse. An empty path means defaults only.
func loadRuntimeConfig(path string) (receiver.Config, string, error) {
	cfg := receiver.DefaultConfig()
	logLevel := "info"
	if path == "" {
		return cfg, logLevel, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return receiver.Config{}, "", fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("log_level") {
		if lvl := strings.TrimSpace(raw.LogLevel); lvl != "" {
			logLevel = lvl
		}
	}

	if meta.IsDefined("serial", "port") {
		cfg.Port = strings.TrimSpace(raw.Serial.Port)
	}
	if meta.IsDefined("serial", "baud") {
		if raw.Serial.Baud <= 0 {
			return receiver.Config{}, "", fmt.Errorf("invalid baud: %d", raw.Serial.Baud)
		}
		cfg.Baud = raw.Serial.Baud
	}

	if meta.IsDefined("protocol", "sync_byte") {
		if raw.Protocol.SyncByte < 1 || raw.Protocol.SyncByte > 255 {
			return receiver.Config{}, "", fmt.Errorf("sync_byte outside [1,255]: %d", raw.Protocol.SyncByte)
		}
		cfg.SyncByte = byte(raw.Protocol.SyncByte)
	}
	if meta.IsDefined("protocol", "max_buffer") {
		cfg.MaxBuffer = raw.Protocol.MaxBuffer
	}
	if meta.IsDefined("protocol", "link_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Protocol.LinkTimeout))
		if err != nil || d <= 0 {
			return receiver.Config{}, "", fmt.Errorf("invalid link_timeout %q", raw.Protocol.LinkTimeout)
		}
		cfg.LinkTimeout = d
	}
	if meta.IsDefined("protocol", "decode_types") {
		types := make([]crsf.FrameType, 0, len(raw.Protocol.DecodeTypes))
		for _, name := range raw.Protocol.DecodeTypes {
			t, ok := crsf.ParseFrameType(strings.TrimSpace(name))
			if !ok {
				return receiver.Config{}, "", fmt.Errorf("unknown frame type %q", name)
			}
			types = append(types, t)
		}
		cfg.DecodeTypes = types
	}

	if meta.IsDefined("http", "addr") {
		cfg.HTTPAddr = strings.TrimSpace(raw.HTTP.Addr)
	}

	if meta.IsDefined("mqtt", "enabled") {
		cfg.MQTT.Enabled = raw.MQTT.Enabled
	}
	if meta.IsDefined("mqtt", "broker") {
		cfg.MQTT.Broker = strings.TrimSpace(raw.MQTT.Broker)
	}
	if meta.IsDefined("mqtt", "client_id") {
		cfg.MQTT.ClientID = strings.TrimSpace(raw.MQTT.ClientID)
	}
	if meta.IsDefined("mqtt", "topic_prefix") {
		cfg.MQTT.TopicPrefix = strings.TrimSpace(raw.MQTT.TopicPrefix)
	}
	if cfg.MQTT.Enabled && cfg.MQTT.Broker == "" {
		return receiver.Config{}, "", fmt.Errorf("mqtt enabled without broker")
	}

	if meta.IsDefined("telemetry", "battery_enabled") {
		cfg.Battery.Enabled = raw.Telemetry.BatteryEnabled
	}
	if meta.IsDefined("telemetry", "interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Telemetry.Interval))
		if err != nil || d <= 0 {
			return receiver.Config{}, "", fmt.Errorf("invalid telemetry interval %q", raw.Telemetry.Interval)
		}
		cfg.Battery.Interval = d
	}
	if meta.IsDefined("telemetry", "voltage") {
		cfg.Battery.Voltage = raw.Telemetry.Voltage
	}
	if meta.IsDefined("telemetry", "current") {
		cfg.Battery.Current = raw.Telemetry.Current
	}
	if meta.IsDefined("telemetry", "consumed_mah") {
		if raw.Telemetry.Consumed < 0 || raw.Telemetry.Consumed > 0xFFFF {
			return receiver.Config{}, "", fmt.Errorf("consumed_mah out of range: %d", raw.Telemetry.Consumed)
		}
		cfg.Battery.Consumed = uint16(raw.Telemetry.Consumed)
	}
	if meta.IsDefined("telemetry", "remaining_percent") {
		if raw.Telemetry.Remaining < 0 || raw.Telemetry.Remaining > 100 {
			return receiver.Config{}, "", fmt.Errorf("remaining_percent out of range: %d", raw.Telemetry.Remaining)
		}
		cfg.Battery.Remaining = uint8(raw.Telemetry.Remaining)
	}

	return cfg, logLevel, nil
}

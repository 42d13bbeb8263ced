// Package config loads and validates the daemon TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/elrstools/crsflink/internal/crsf"
)

var (
	ErrInvalidBaud       = errors.New("config: invalid baud rate")
	ErrInvalidSyncByte   = errors.New("config: sync byte outside [1,255]")
	ErrInvalidTimeout    = errors.New("config: invalid link timeout")
	ErrUnknownFrameType  = errors.New("config: unknown frame type name")
	ErrMissingSerialPort = errors.New("config: missing serial port")
	ErrMissingMQTTBroker = errors.New("config: mqtt enabled without broker")
	ErrInvalidTelemetry  = errors.New("config: invalid telemetry settings")
)

type Config struct {
	LogLevel  string          `toml:"log_level"`
	Serial    SerialConfig    `toml:"serial"`
	Protocol  ProtocolConfig  `toml:"protocol"`
	HTTP      HTTPConfig      `toml:"http"`
	MQTT      MQTTConfig      `toml:"mqtt"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

type SerialConfig struct {
	Port string `toml:"port"`
	Baud int    `toml:"baud"`
}

type ProtocolConfig struct {
	SyncByte    int      `toml:"sync_byte"`
	MaxBuffer   int      `toml:"max_buffer"`
	LinkTimeout string   `toml:"link_timeout"`
	DecodeTypes []string `toml:"decode_types"`
}

type HTTPConfig struct {
	Addr string `toml:"addr"`
}

type MQTTConfig struct {
	Enabled     bool   `toml:"enabled"`
	Broker      string `toml:"broker"`
	ClientID    string `toml:"client_id"`
	TopicPrefix string `toml:"topic_prefix"`
}

// TelemetryConfig drives the optional battery telemetry uplink: a battery
// sensor frame sent back to the transmitter at a fixed interval.
type TelemetryConfig struct {
	BatteryEnabled bool    `toml:"battery_enabled"`
	Interval       string  `toml:"interval"`
	Voltage        float64 `toml:"voltage"`
	Current        float64 `toml:"current"`
	Consumed       int     `toml:"consumed_mah"`
	Remaining      int     `toml:"remaining_percent"`
}

func Default() Config {
	return Config{
		LogLevel: "info",
		Serial:   SerialConfig{Port: "/dev/ttyS0", Baud: 420000},
		Protocol: ProtocolConfig{
			SyncByte:    0xC8,
			MaxBuffer:   64,
			LinkTimeout: "1s",
		},
		HTTP: HTTPConfig{Addr: ":9870"},
		MQTT: MQTTConfig{
			ClientID:    "crsflink",
			TopicPrefix: "crsflink",
		},
		Telemetry: TelemetryConfig{
			Interval:  "1s",
			Remaining: 100,
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if cfg.Serial.Port == "" {
		return ErrMissingSerialPort
	}
	if cfg.Serial.Baud <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBaud, cfg.Serial.Baud)
	}
	if cfg.Protocol.SyncByte < 1 || cfg.Protocol.SyncByte > 255 {
		return fmt.Errorf("%w: %d", ErrInvalidSyncByte, cfg.Protocol.SyncByte)
	}
	if _, err := cfg.Protocol.Timeout(); err != nil {
		return err
	}
	if _, err := cfg.Protocol.FrameTypes(); err != nil {
		return err
	}
	if cfg.MQTT.Enabled && cfg.MQTT.Broker == "" {
		return ErrMissingMQTTBroker
	}
	if cfg.Telemetry.BatteryEnabled {
		if _, err := cfg.Telemetry.SendInterval(); err != nil {
			return err
		}
		if cfg.Telemetry.Remaining < 0 || cfg.Telemetry.Remaining > 100 {
			return fmt.Errorf("%w: remaining_percent %d", ErrInvalidTelemetry, cfg.Telemetry.Remaining)
		}
	}
	return nil
}

// Timeout parses the link freshness window.
func (p ProtocolConfig) Timeout() (time.Duration, error) {
	if p.LinkTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(p.LinkTimeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeout, p.LinkTimeout)
	}
	return d, nil
}

// FrameTypes resolves the decode_types names. An empty list means decode
// everything known.
func (p ProtocolConfig) FrameTypes() ([]crsf.FrameType, error) {
	if len(p.DecodeTypes) == 0 {
		return nil, nil
	}
	out := make([]crsf.FrameType, 0, len(p.DecodeTypes))
	for _, name := range p.DecodeTypes {
		t, ok := crsf.ParseFrameType(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFrameType, name)
		}
		out = append(out, t)
	}
	return out, nil
}

// SendInterval parses the telemetry uplink cadence.
func (t TelemetryConfig) SendInterval() (time.Duration, error) {
	d, err := time.ParseDuration(t.Interval)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: interval %q", ErrInvalidTelemetry, t.Interval)
	}
	return d, nil
}

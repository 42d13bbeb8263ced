// Package receiver runs the per-link daemon service: it feeds serial bytes
// through the decoder and fans decoded events out to logs, metrics, the
// HTTP status surface and the optional MQTT publisher.
package receiver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/tarm/serial"

	"github.com/elrstools/crsflink/internal/crsf"
	"github.com/elrstools/crsflink/internal/crsf/frame"
	"github.com/elrstools/crsflink/internal/link"
	"github.com/elrstools/crsflink/internal/observability"
)

var ErrNoSerialPort = errors.New("receiver: no serial port configured")

// Config is the resolved runtime configuration for one link.
type Config struct {
	Port        string
	Baud        int
	SyncByte    byte
	MaxBuffer   int
	LinkTimeout time.Duration
	DecodeTypes []crsf.FrameType
	HTTPAddr    string
	MQTT        MQTTConfig
	Battery     BatteryConfig
}

// MQTTConfig enables the telemetry publisher.
type MQTTConfig struct {
	Enabled     bool
	Broker      string
	ClientID    string
	TopicPrefix string
}

// BatteryConfig drives the periodic battery telemetry uplink.
type BatteryConfig struct {
	Enabled   bool
	Interval  time.Duration
	Voltage   float64
	Current   float64
	Consumed  uint16
	Remaining uint8
}

// DefaultConfig returns the runtime defaults for an ExpressLRS receiver on
// the primary UART.
func DefaultConfig() Config {
	return Config{
		Port:        "/dev/ttyS0",
		Baud:        420000,
		SyncByte:    frame.Sync,
		MaxBuffer:   frame.MaxFrameSize,
		LinkTimeout: link.DefaultTimeout,
		HTTPAddr:    ":9870",
		MQTT: MQTTConfig{
			ClientID:    "crsflink",
			TopicPrefix: "crsflink",
		},
		Battery: BatteryConfig{
			Interval:  time.Second,
			Remaining: 100,
		},
	}
}

// Snapshot is the latest-value view served over HTTP. Channels default to
// the 1500us midpoint until the first channel frame arrives.
type Snapshot struct {
	State       string                `json:"state"`
	ChannelsUs  [crsf.NumChannels]int `json:"channels_us"`
	LinkStats   *crsf.LinkStatistics  `json:"link_stats,omitempty"`
	GPS         *crsf.GPS             `json:"gps,omitempty"`
	Battery     *crsf.Battery         `json:"battery,omitempty"`
	Attitude    *crsf.Attitude        `json:"attitude,omitempty"`
	FlightMode  string                `json:"flight_mode,omitempty"`
	LastFrameAt time.Time             `json:"last_frame_at,omitzero"`
	Stream      frame.Stats           `json:"stream"`
}

// Service owns one serial link end to end.
type Service struct {
	cfg Config
	log zerolog.Logger
	dec *crsf.Decoder
	pub *publisher
	now func() time.Time

	mu        sync.RWMutex
	snap      Snapshot
	prevStats frame.Stats
}

func New(cfg Config, logger zerolog.Logger) *Service {
	s := &Service{
		cfg: cfg,
		log: logger.With().Str("port", cfg.Port).Logger(),
		dec: crsf.NewDecoder(crsf.Config{
			SyncByte:    cfg.SyncByte,
			MaxBuffer:   cfg.MaxBuffer,
			LinkTimeout: cfg.LinkTimeout,
			DecodeTypes: cfg.DecodeTypes,
		}),
		now: time.Now,
	}
	s.snap.State = link.StateSearching.String()
	for i := range s.snap.ChannelsUs {
		s.snap.ChannelsUs[i] = 1500
	}
	return s
}

// Run opens the serial port and drives the read loop until ctx is
// canceled. The HTTP status server and MQTT publisher run alongside when
// configured.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Port == "" {
		return ErrNoSerialPort
	}
	port, err := serial.OpenPort(&serial.Config{
		Name:        s.cfg.Port,
		Baud:        s.cfg.Baud,
		ReadTimeout: 20 * time.Millisecond,
	})
	if err != nil {
		return fmt.Errorf("receiver: open %s: %w", s.cfg.Port, err)
	}
	defer port.Close()

	if s.cfg.MQTT.Enabled {
		pub, err := newPublisher(s.cfg.MQTT, s.log)
		if err != nil {
			return err
		}
		defer pub.close()
		s.pub = pub
	}

	if s.cfg.HTTPAddr != "" {
		srv := s.newStatusServer()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.log.Error().Err(err).Msg("status server stopped")
			}
		}()
	}

	s.log.Info().Int("baud", s.cfg.Baud).Msg("link up, decoding")
	return s.loop(ctx, port)
}

// loop is the cooperative read/decode cycle. The port read times out
// regularly so link-loss detection keeps running through silence.
func (s *Service) loop(ctx context.Context, rw io.ReadWriter) error {
	buf := make([]byte, 256)
	lastTelemetry := s.now()

	for {
		if err := ctx.Err(); err != nil {
			s.log.Info().Msg("shutting down")
			return nil
		}

		n, err := rw.Read(buf)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("receiver: serial read: %w", err)
		}

		var events []crsf.Event
		if n > 0 {
			events = s.dec.Push(buf[:n])
		} else {
			events = s.dec.Poll()
		}
		s.handleEvents(events)

		if s.cfg.Battery.Enabled && s.now().Sub(lastTelemetry) >= s.cfg.Battery.Interval {
			lastTelemetry = s.now()
			if err := s.sendBattery(rw); err != nil {
				s.log.Warn().Err(err).Msg("battery telemetry send failed")
			}
		}
	}
}

// sendBattery writes one battery sensor frame back to the transmitter.
func (s *Service) sendBattery(w io.Writer) error {
	wire, err := s.dec.Marshal(crsf.Battery{
		Voltage:   s.cfg.Battery.Voltage,
		Current:   s.cfg.Battery.Current,
		Consumed:  s.cfg.Battery.Consumed,
		Remaining: s.cfg.Battery.Remaining,
	})
	if err != nil {
		return err
	}
	_, err = w.Write(wire)
	return err
}

// handleEvents folds decoder output into the snapshot. It runs on every
// read cycle, events or not, so discard and CRC counters stay current
// through sustained noise.
func (s *Service) handleEvents(events []crsf.Event) {
	s.mu.Lock()
	for _, ev := range events {
		switch e := ev.(type) {
		case crsf.FrameEvent:
			s.applyRecord(e.Record)
		case crsf.StateEvent:
			s.snap.State = e.To.String()
			observability.RecordLinkTransition(s.cfg.Port, e.To.String(), e.To == link.StateConnected)
			s.log.Info().
				Str("from", e.From.String()).
				Str("to", e.To.String()).
				Msg("link state changed")
		}
	}
	stats := s.dec.Stats()
	observability.RecordStreamStats(s.cfg.Port, s.prevStats, stats)
	s.prevStats = stats
	s.snap.Stream = stats
	s.mu.Unlock()

	if s.pub != nil {
		for _, ev := range events {
			if fe, ok := ev.(crsf.FrameEvent); ok {
				s.pub.publish(fe.Record)
			}
		}
	}
}

// applyRecord folds one decoded record into the latest-value snapshot.
// Callers hold s.mu.
func (s *Service) applyRecord(rec crsf.Record) {
	s.snap.LastFrameAt = s.now()
	observability.RecordFrame(s.cfg.Port, rec.Type().String())

	switch r := rec.(type) {
	case crsf.Channels:
		for i, v := range r.Ch {
			s.snap.ChannelsUs[i] = crsf.TicksToUs(v)
		}
	case crsf.LinkStatistics:
		s.snap.LinkStats = &r
		s.log.Debug().
			Int("rssi", r.UplinkRSSI1).
			Uint8("lq", r.UplinkQuality).
			Int8("snr", r.UplinkSNR).
			Msg("link statistics")
	case crsf.GPS:
		s.snap.GPS = &r
	case crsf.Battery:
		s.snap.Battery = &r
	case crsf.Attitude:
		s.snap.Attitude = &r
	case crsf.FlightMode:
		s.snap.FlightMode = r.Mode
	case crsf.Unknown:
		s.log.Debug().
			Str("type", r.FrameType.String()).
			Int("bytes", len(r.Data)).
			Msg("unhandled frame type")
	}
}

// Snapshot returns a copy of the latest-value view.
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

package receiver

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/elrstools/crsflink/internal/crsf"
	"github.com/elrstools/crsflink/internal/crsf/frame"
	"github.com/elrstools/crsflink/internal/link"
	"github.com/elrstools/crsflink/internal/testutil/testlog"
)

// fakePort scripts serial reads chunk by chunk and captures writes. When
// the script is drained it cancels the loop context so Run-style loops
// terminate deterministically.
type fakePort struct {
	mu     sync.Mutex
	chunks [][]byte
	wrote  []byte
	cancel context.CancelFunc
}

func (f *fakePort) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.chunks) == 0 {
		if f.cancel != nil {
			f.cancel()
		}
		return 0, nil
	}
	n := copy(p, f.chunks[0])
	f.chunks = f.chunks[1:]
	return n, nil
}

func (f *fakePort) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wrote = append(f.wrote, p...)
	return len(p), nil
}

func (f *fakePort) written() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]byte, len(f.wrote))
	copy(out, f.wrote)
	return out
}

func testService(t *testing.T, cfg Config) *Service {
	t.Helper()
	if cfg.SyncByte == 0 {
		cfg.SyncByte = frame.Sync
	}
	if cfg.Port == "" {
		cfg.Port = "fake0"
	}
	if cfg.LinkTimeout == 0 {
		cfg.LinkTimeout = link.DefaultTimeout
	}
	return New(cfg, testlog.Start(t))
}

func runLoop(t *testing.T, s *Service, port *fakePort) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	port.cancel = cancel
	require.NoError(t, s.loop(ctx, port))
}

func TestSnapshotDefaultsToMidpoint(t *testing.T) {
	s := testService(t, Config{})
	snap := s.Snapshot()
	require.Equal(t, "searching", snap.State)
	for i, us := range snap.ChannelsUs {
		require.Equalf(t, 1500, us, "channel %d", i)
	}
}

func TestLoopDecodesChannelFrames(t *testing.T) {
	var ch crsf.Channels
	for i := range ch.Ch {
		ch.Ch[i] = 992
	}
	ch.Ch[0] = 1792 // 2000us
	wire, err := crsf.Marshal(frame.Sync, ch)
	require.NoError(t, err)

	port := &fakePort{chunks: [][]byte{wire[:5], wire[5:]}}
	s := testService(t, Config{})
	runLoop(t, s, port)

	snap := s.Snapshot()
	require.Equal(t, "connected", snap.State)
	require.Equal(t, 2000, snap.ChannelsUs[0])
	require.Equal(t, 1500, snap.ChannelsUs[1])
	require.EqualValues(t, 1, snap.Stream.FramesYielded)
	require.False(t, snap.LastFrameAt.IsZero())
}

func TestLoopTracksTelemetryRecords(t *testing.T) {
	bat, err := crsf.Marshal(frame.Sync, crsf.Battery{Voltage: 11.8, Remaining: 73})
	require.NoError(t, err)
	fm, err := crsf.Marshal(frame.Sync, crsf.FlightMode{Mode: "ANGL"})
	require.NoError(t, err)

	port := &fakePort{chunks: [][]byte{bat, fm}}
	s := testService(t, Config{})
	runLoop(t, s, port)

	snap := s.Snapshot()
	require.NotNil(t, snap.Battery)
	require.InDelta(t, 11.8, snap.Battery.Voltage, 1e-9)
	require.EqualValues(t, 73, snap.Battery.Remaining)
	require.Equal(t, "ANGL", snap.FlightMode)
}

func TestLoopSurvivesGarbage(t *testing.T) {
	wire, err := crsf.Marshal(frame.Sync, crsf.Heartbeat{Origin: 0xEE})
	require.NoError(t, err)
	stream := append([]byte{0x00, 0x13, 0x37}, wire...)

	port := &fakePort{chunks: [][]byte{stream}}
	s := testService(t, Config{})
	runLoop(t, s, port)

	snap := s.Snapshot()
	require.EqualValues(t, 1, snap.Stream.FramesYielded)
	require.EqualValues(t, 3, snap.Stream.BytesDiscarded)
}

func TestLoopReportsNoiseDiagnostics(t *testing.T) {
	// Pure noise produces no events, but the snapshot diagnostics must
	// still move so discard counters do not lag during sustained noise.
	port := &fakePort{chunks: [][]byte{{0x00, 0x13, 0x37}}}
	s := testService(t, Config{})
	runLoop(t, s, port)

	snap := s.Snapshot()
	require.EqualValues(t, 0, snap.Stream.FramesYielded)
	require.EqualValues(t, 3, snap.Stream.BytesDiscarded)
	require.Equal(t, "searching", snap.State)
}

func TestLoopSendsBatteryTelemetry(t *testing.T) {
	port := &fakePort{chunks: [][]byte{nil}}
	s := testService(t, Config{
		Battery: BatteryConfig{
			Enabled:   true,
			Interval:  time.Nanosecond,
			Voltage:   11.8,
			Remaining: 100,
		},
	})
	runLoop(t, s, port)

	wrote := port.written()
	require.NotEmpty(t, wrote)

	dec := crsf.NewDecoder(crsf.Config{})
	events := dec.Push(wrote)
	var got *crsf.Battery
	for _, ev := range events {
		if fe, ok := ev.(crsf.FrameEvent); ok {
			if b, ok := fe.Record.(crsf.Battery); ok {
				got = &b
				break
			}
		}
	}
	require.NotNil(t, got, "no battery frame on the wire")
	require.InDelta(t, 11.8, got.Voltage, 1e-9)
	require.EqualValues(t, 100, got.Remaining)
}

package crsf

import (
	"bytes"
	"errors"
	"testing"

	"github.com/elrstools/crsflink/internal/crsf/frame"
)

func roundTrip(t *testing.T, rec Record) Record {
	t.Helper()
	payload, err := Encode(rec)
	if err != nil {
		t.Fatalf("encode %T: %v", rec, err)
	}
	out, err := Decode(rec.Type(), payload)
	if err != nil {
		t.Fatalf("decode %T: %v", rec, err)
	}
	return out
}

func TestLinkStatisticsRoundTrip(t *testing.T) {
	in := LinkStatistics{
		UplinkRSSI1:     -72,
		UplinkRSSI2:     -88,
		UplinkQuality:   99,
		UplinkSNR:       -4,
		ActiveAntenna:   1,
		RFMode:          2,
		TXPower:         3,
		DownlinkRSSI:    -80,
		DownlinkQuality: 97,
		DownlinkSNR:     6,
	}
	if out := roundTrip(t, in); out != in {
		t.Fatalf("round trip mismatch:\n in=%+v\nout=%+v", in, out)
	}
	if in.TXPower.Milliwatts() != 100 {
		t.Fatalf("tx power = %v, want 100mW", in.TXPower)
	}
}

func TestGPSRoundTrip(t *testing.T) {
	in := GPS{
		Latitude:    51.5007324,
		Longitude:   -0.1272051,
		GroundSpeed: 12.3,
		Heading:     274.56,
		Altitude:    137,
		Satellites:  14,
	}
	if out := roundTrip(t, in); out != in {
		t.Fatalf("round trip mismatch:\n in=%+v\nout=%+v", in, out)
	}
}

func TestBatteryRoundTrip(t *testing.T) {
	in := Battery{Voltage: 11.8, Current: 24.5, Consumed: 1450, Remaining: 63}
	if out := roundTrip(t, in); out != in {
		t.Fatalf("round trip mismatch:\n in=%+v\nout=%+v", in, out)
	}
}

func TestBatteryPayloadMatchesSenderLayout(t *testing.T) {
	payload, err := Encode(Battery{Voltage: 11.8, Current: 0, Consumed: 0, Remaining: 100})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := []byte{0x00, 0x76, 0x00, 0x00, 0x00, 0x00, 0x64}
	if !bytes.Equal(payload, want) {
		t.Fatalf("payload = %x, want %x", payload, want)
	}
}

func TestVarioRoundTrip(t *testing.T) {
	for _, in := range []Vario{{VerticalSpeed: 0}, {VerticalSpeed: 3.21}, {VerticalSpeed: -12.05}} {
		if out := roundTrip(t, in); out != in {
			t.Fatalf("round trip mismatch: in=%+v out=%+v", in, out)
		}
	}
}

func TestBaroAltitudeRoundTrip(t *testing.T) {
	for _, in := range []BaroAltitude{{Altitude: 0}, {Altitude: 123.4}, {Altitude: -50.0}} {
		if out := roundTrip(t, in); out != in {
			t.Fatalf("round trip mismatch: in=%+v out=%+v", in, out)
		}
	}
}

func TestHeartbeatRoundTrip(t *testing.T) {
	in := Heartbeat{Origin: -0x11}
	if out := roundTrip(t, in); out != in {
		t.Fatalf("round trip mismatch: in=%+v out=%+v", in, out)
	}
}

func TestAttitudeRoundTrip(t *testing.T) {
	in := Attitude{Pitch: 0.1234, Roll: -1.5707, Yaw: 3.1415}
	if out := roundTrip(t, in); out != in {
		t.Fatalf("round trip mismatch:\n in=%+v\nout=%+v", in, out)
	}
}

func TestFlightModeRoundTrip(t *testing.T) {
	in := FlightMode{Mode: "ANGL"}
	payload, err := Encode(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if payload[len(payload)-1] != 0 {
		t.Fatalf("flight mode payload not NUL terminated: %x", payload)
	}
	out, err := Decode(TypeFlightMode, payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: in=%+v out=%+v", in, out)
	}
}

func TestUnknownTypePreservesBytes(t *testing.T) {
	raw := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	rec, err := Decode(TypeDeviceInfo, raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	u, ok := rec.(Unknown)
	if !ok {
		t.Fatalf("expected Unknown, got %T", rec)
	}
	if u.FrameType != TypeDeviceInfo || !bytes.Equal(u.Data, raw) {
		t.Fatalf("unknown mismatch: %+v", u)
	}
	payload, err := Encode(u)
	if err != nil {
		t.Fatalf("encode unknown: %v", err)
	}
	if !bytes.Equal(payload, raw) {
		t.Fatalf("unknown re-encode mismatch: %x", payload)
	}
}

func TestDecodeRejectsShortKnownPayload(t *testing.T) {
	if _, err := Decode(TypeGPS, make([]byte, 4)); !errors.Is(err, ErrShortPayload) {
		t.Fatalf("expected ErrShortPayload, got %v", err)
	}
}

func TestEncodeRejectsOutOfRangeRSSI(t *testing.T) {
	in := LinkStatistics{UplinkRSSI1: 7}
	if _, err := Encode(in); !errors.Is(err, ErrValueRange) {
		t.Fatalf("expected ErrValueRange, got %v", err)
	}
}

// The worked example from the protocol description: a channels frame
// carrying values 0..15 decodes and re-encodes to the identical bytes.
func TestChannelsFrameWireExample(t *testing.T) {
	var in Channels
	for i := range in.Ch {
		in.Ch[i] = uint16(i)
	}
	wire, err := Marshal(frame.Sync, in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if wire[0] != 0xC8 || wire[1] != 0x18 || wire[2] != 0x16 {
		t.Fatalf("frame header = %x", wire[:3])
	}

	d := frame.NewDeframer(frame.Sync, 0)
	d.Push(wire)
	f, ok := d.Next()
	if !ok {
		t.Fatalf("frame not recovered")
	}
	rec, err := Decode(FrameType(f.Type), f.Payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	out, ok := rec.(Channels)
	if !ok {
		t.Fatalf("expected Channels, got %T", rec)
	}
	for i, v := range out.Ch {
		if v != uint16(i) {
			t.Fatalf("channel %d = %d, want %d", i, v, i)
		}
	}

	again, err := Marshal(frame.Sync, out)
	if err != nil {
		t.Fatalf("re-marshal: %v", err)
	}
	if !bytes.Equal(again, wire) {
		t.Fatalf("re-encoded frame differs:\n got %x\nwant %x", again, wire)
	}
}

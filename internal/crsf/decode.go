package crsf

import (
	"encoding/binary"
	"fmt"
)

// Payload sizes for the fixed-layout frame types.
const (
	gpsPayloadLen       = 15
	varioPayloadLen     = 2
	batteryPayloadLen   = 7
	baroAltPayloadLen   = 2
	heartbeatPayloadLen = 2
	linkStatsPayloadLen = 10
	attitudePayloadLen  = 6
)

// Decode converts a payload into its typed record. Unrecognized frame
// types return Unknown rather than an error; only a known type with a
// payload that cannot hold its layout fails.
func Decode(typ FrameType, payload []byte) (Record, error) {
	var rec Record
	var err error
	switch typ {
	case TypeChannels:
		rec, err = UnpackChannels(payload)
	case TypeLinkStatistics:
		rec, err = decodeLinkStatistics(payload)
	case TypeGPS:
		rec, err = decodeGPS(payload)
	case TypeVario:
		rec, err = decodeVario(payload)
	case TypeBattery:
		rec, err = decodeBattery(payload)
	case TypeBaroAltitude:
		rec, err = decodeBaroAltitude(payload)
	case TypeHeartbeat:
		rec, err = decodeHeartbeat(payload)
	case TypeAttitude:
		rec, err = decodeAttitude(payload)
	case TypeFlightMode:
		rec, err = decodeFlightMode(payload)
	default:
		rec = Unknown{FrameType: typ, Data: cloneBytes(payload)}
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func decodeLinkStatistics(p []byte) (LinkStatistics, error) {
	if len(p) < linkStatsPayloadLen {
		return LinkStatistics{}, shortPayload(TypeLinkStatistics, len(p), linkStatsPayloadLen)
	}
	return LinkStatistics{
		UplinkRSSI1:     -int(p[0]),
		UplinkRSSI2:     -int(p[1]),
		UplinkQuality:   p[2],
		UplinkSNR:       int8(p[3]),
		ActiveAntenna:   p[4],
		RFMode:          p[5],
		TXPower:         TXPower(p[6]),
		DownlinkRSSI:    -int(p[7]),
		DownlinkQuality: p[8],
		DownlinkSNR:     int8(p[9]),
	}, nil
}

func decodeGPS(p []byte) (GPS, error) {
	if len(p) < gpsPayloadLen {
		return GPS{}, shortPayload(TypeGPS, len(p), gpsPayloadLen)
	}
	return GPS{
		Latitude:    float64(int32(binary.BigEndian.Uint32(p[0:4]))) / 1e7,
		Longitude:   float64(int32(binary.BigEndian.Uint32(p[4:8]))) / 1e7,
		GroundSpeed: float64(binary.BigEndian.Uint16(p[8:10])) / 10,
		Heading:     float64(binary.BigEndian.Uint16(p[10:12])) / 100,
		Altitude:    int(binary.BigEndian.Uint16(p[12:14])) - 1000,
		Satellites:  p[14],
	}, nil
}

func decodeVario(p []byte) (Vario, error) {
	if len(p) < varioPayloadLen {
		return Vario{}, shortPayload(TypeVario, len(p), varioPayloadLen)
	}
	return Vario{
		VerticalSpeed: float64(int16(binary.BigEndian.Uint16(p[0:2]))) / 100,
	}, nil
}

func decodeBattery(p []byte) (Battery, error) {
	if len(p) < batteryPayloadLen {
		return Battery{}, shortPayload(TypeBattery, len(p), batteryPayloadLen)
	}
	return Battery{
		Voltage:   float64(binary.BigEndian.Uint16(p[0:2])) / 10,
		Current:   float64(binary.BigEndian.Uint16(p[2:4])) / 10,
		Consumed:  binary.BigEndian.Uint16(p[4:6]),
		Remaining: p[6],
	}, nil
}

func decodeBaroAltitude(p []byte) (BaroAltitude, error) {
	if len(p) < baroAltPayloadLen {
		return BaroAltitude{}, shortPayload(TypeBaroAltitude, len(p), baroAltPayloadLen)
	}
	return BaroAltitude{
		Altitude: (float64(binary.BigEndian.Uint16(p[0:2])) - 10000) / 10,
	}, nil
}

func decodeHeartbeat(p []byte) (Heartbeat, error) {
	if len(p) < heartbeatPayloadLen {
		return Heartbeat{}, shortPayload(TypeHeartbeat, len(p), heartbeatPayloadLen)
	}
	return Heartbeat{
		Origin: int16(binary.BigEndian.Uint16(p[0:2])),
	}, nil
}

func decodeAttitude(p []byte) (Attitude, error) {
	if len(p) < attitudePayloadLen {
		return Attitude{}, shortPayload(TypeAttitude, len(p), attitudePayloadLen)
	}
	return Attitude{
		Pitch: float64(int16(binary.BigEndian.Uint16(p[0:2]))) / 1e4,
		Roll:  float64(int16(binary.BigEndian.Uint16(p[2:4]))) / 1e4,
		Yaw:   float64(int16(binary.BigEndian.Uint16(p[4:6]))) / 1e4,
	}, nil
}

func decodeFlightMode(p []byte) (FlightMode, error) {
	end := len(p)
	for i, b := range p {
		if b == 0 {
			end = i
			break
		}
	}
	return FlightMode{Mode: string(p[:end])}, nil
}

func shortPayload(typ FrameType, got, want int) error {
	return fmt.Errorf("%w: %s needs %d bytes, got %d", ErrShortPayload, typ, want, got)
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

package crsf

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/elrstools/crsflink/internal/crsf/frame"
)

// Encode converts a typed record to its payload bytes. It mirrors Decode
// exactly: Decode(rec.Type(), Encode(rec)) returns rec for every known
// type, up to the documented scale-factor rounding on fractional fields.
func Encode(rec Record) ([]byte, error) {
	switch r := rec.(type) {
	case Channels:
		return PackChannels(r)
	case LinkStatistics:
		return encodeLinkStatistics(r)
	case GPS:
		return encodeGPS(r)
	case Vario:
		return encodeVario(r)
	case Battery:
		return encodeBattery(r)
	case BaroAltitude:
		return encodeBaroAltitude(r)
	case Heartbeat:
		return encodeHeartbeat(r)
	case Attitude:
		return encodeAttitude(r)
	case FlightMode:
		return encodeFlightMode(r)
	case Unknown:
		return cloneBytes(r.Data), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnencodable, rec)
	}
}

// Marshal encodes a record and wraps it in a complete wire frame using the
// given sync byte.
func Marshal(sync byte, rec Record) ([]byte, error) {
	payload, err := Encode(rec)
	if err != nil {
		return nil, err
	}
	return frame.Encode(sync, byte(rec.Type()), payload)
}

func encodeLinkStatistics(r LinkStatistics) ([]byte, error) {
	p := make([]byte, linkStatsPayloadLen)
	rssi1, err := negatedRSSI(r.UplinkRSSI1)
	if err != nil {
		return nil, err
	}
	rssi2, err := negatedRSSI(r.UplinkRSSI2)
	if err != nil {
		return nil, err
	}
	dlRSSI, err := negatedRSSI(r.DownlinkRSSI)
	if err != nil {
		return nil, err
	}
	p[0] = rssi1
	p[1] = rssi2
	p[2] = r.UplinkQuality
	p[3] = byte(r.UplinkSNR)
	p[4] = r.ActiveAntenna
	p[5] = r.RFMode
	p[6] = byte(r.TXPower)
	p[7] = dlRSSI
	p[8] = r.DownlinkQuality
	p[9] = byte(r.DownlinkSNR)
	return p, nil
}

func encodeGPS(r GPS) ([]byte, error) {
	lat := math.Round(r.Latitude * 1e7)
	lon := math.Round(r.Longitude * 1e7)
	if lat < math.MinInt32 || lat > math.MaxInt32 || lon < math.MinInt32 || lon > math.MaxInt32 {
		return nil, fmt.Errorf("%w: gps coordinates", ErrValueRange)
	}
	speed, err := scaledU16(r.GroundSpeed, 10, "gps groundspeed")
	if err != nil {
		return nil, err
	}
	heading, err := scaledU16(r.Heading, 100, "gps heading")
	if err != nil {
		return nil, err
	}
	alt := r.Altitude + 1000
	if alt < 0 || alt > math.MaxUint16 {
		return nil, fmt.Errorf("%w: gps altitude", ErrValueRange)
	}
	p := make([]byte, gpsPayloadLen)
	binary.BigEndian.PutUint32(p[0:4], uint32(int32(lat)))
	binary.BigEndian.PutUint32(p[4:8], uint32(int32(lon)))
	binary.BigEndian.PutUint16(p[8:10], speed)
	binary.BigEndian.PutUint16(p[10:12], heading)
	binary.BigEndian.PutUint16(p[12:14], uint16(alt))
	p[14] = r.Satellites
	return p, nil
}

func encodeVario(r Vario) ([]byte, error) {
	v := math.Round(r.VerticalSpeed * 100)
	if v < math.MinInt16 || v > math.MaxInt16 {
		return nil, fmt.Errorf("%w: vario vertical speed", ErrValueRange)
	}
	p := make([]byte, varioPayloadLen)
	binary.BigEndian.PutUint16(p[0:2], uint16(int16(v)))
	return p, nil
}

func encodeBattery(r Battery) ([]byte, error) {
	voltage, err := scaledU16(r.Voltage, 10, "battery voltage")
	if err != nil {
		return nil, err
	}
	current, err := scaledU16(r.Current, 10, "battery current")
	if err != nil {
		return nil, err
	}
	p := make([]byte, batteryPayloadLen)
	binary.BigEndian.PutUint16(p[0:2], voltage)
	binary.BigEndian.PutUint16(p[2:4], current)
	binary.BigEndian.PutUint16(p[4:6], r.Consumed)
	p[6] = r.Remaining
	return p, nil
}

func encodeBaroAltitude(r BaroAltitude) ([]byte, error) {
	raw := math.Round(r.Altitude*10 + 10000)
	if raw < 0 || raw > math.MaxUint16 {
		return nil, fmt.Errorf("%w: baro altitude", ErrValueRange)
	}
	p := make([]byte, baroAltPayloadLen)
	binary.BigEndian.PutUint16(p[0:2], uint16(raw))
	return p, nil
}

func encodeHeartbeat(r Heartbeat) ([]byte, error) {
	p := make([]byte, heartbeatPayloadLen)
	binary.BigEndian.PutUint16(p[0:2], uint16(r.Origin))
	return p, nil
}

func encodeAttitude(r Attitude) ([]byte, error) {
	p := make([]byte, attitudePayloadLen)
	for i, v := range []float64{r.Pitch, r.Roll, r.Yaw} {
		raw := math.Round(v * 1e4)
		if raw < math.MinInt16 || raw > math.MaxInt16 {
			return nil, fmt.Errorf("%w: attitude angle", ErrValueRange)
		}
		binary.BigEndian.PutUint16(p[i*2:i*2+2], uint16(int16(raw)))
	}
	return p, nil
}

func encodeFlightMode(r FlightMode) ([]byte, error) {
	// Label plus NUL terminator must fit the frame payload budget.
	if len(r.Mode)+1 > frame.MaxPayload {
		return nil, fmt.Errorf("%w: %d bytes", ErrFlightModeSize, len(r.Mode))
	}
	p := make([]byte, len(r.Mode)+1)
	copy(p, r.Mode)
	return p, nil
}

func negatedRSSI(dbm int) (byte, error) {
	if dbm > 0 || dbm < -255 {
		return 0, fmt.Errorf("%w: rssi %d dBm", ErrValueRange, dbm)
	}
	return byte(-dbm), nil
}

func scaledU16(v float64, scale float64, field string) (uint16, error) {
	raw := math.Round(v * scale)
	if raw < 0 || raw > math.MaxUint16 {
		return 0, fmt.Errorf("%w: %s", ErrValueRange, field)
	}
	return uint16(raw), nil
}

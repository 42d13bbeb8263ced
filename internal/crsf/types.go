package crsf

import "fmt"

// FrameType discriminates the payload variant of a frame.
type FrameType byte

// Frame types understood by the codec. VideoTransmitter and DeviceInfo are
// listed for identification but decode as Unknown: both carry
// variable-length extended-header payloads.
const (
	TypeGPS              FrameType = 0x02
	TypeVario            FrameType = 0x07
	TypeBattery          FrameType = 0x08
	TypeBaroAltitude     FrameType = 0x09
	TypeHeartbeat        FrameType = 0x0B
	TypeVideoTransmitter FrameType = 0x0F
	TypeLinkStatistics   FrameType = 0x14
	TypeChannels         FrameType = 0x16
	TypeAttitude         FrameType = 0x1E
	TypeFlightMode       FrameType = 0x21
	TypeDeviceInfo       FrameType = 0x29
)

func (t FrameType) String() string {
	switch t {
	case TypeGPS:
		return "gps"
	case TypeVario:
		return "vario"
	case TypeBattery:
		return "battery"
	case TypeBaroAltitude:
		return "baro_altitude"
	case TypeHeartbeat:
		return "heartbeat"
	case TypeVideoTransmitter:
		return "video_transmitter"
	case TypeLinkStatistics:
		return "link_statistics"
	case TypeChannels:
		return "rc_channels"
	case TypeAttitude:
		return "attitude"
	case TypeFlightMode:
		return "flight_mode"
	case TypeDeviceInfo:
		return "device_info"
	default:
		return fmt.Sprintf("0x%02X", byte(t))
	}
}

// ParseFrameType resolves a frame type from its configuration name, as
// produced by FrameType.String.
func ParseFrameType(name string) (FrameType, bool) {
	for _, t := range []FrameType{
		TypeGPS, TypeVario, TypeBattery, TypeBaroAltitude, TypeHeartbeat,
		TypeVideoTransmitter, TypeLinkStatistics, TypeChannels,
		TypeAttitude, TypeFlightMode, TypeDeviceInfo,
	} {
		if t.String() == name {
			return t, true
		}
	}
	return 0, false
}

// Record is one decoded payload. The variant set is closed: every known
// frame type maps to exactly one concrete type below, and anything else
// surfaces as Unknown.
type Record interface {
	Type() FrameType
}

// NumChannels is the channel count of an RC channels frame.
const NumChannels = 16

// MaxChannel is the largest representable channel value (11 bits).
const MaxChannel = 0x7FF

// Channels is one RC channels frame: 16 values, 11 bits each.
type Channels struct {
	Ch [NumChannels]uint16
}

func (Channels) Type() FrameType { return TypeChannels }

// LinkStatistics carries per-frame radio link quality metrics. RSSI values
// are in dBm (negative), link quality in percent.
type LinkStatistics struct {
	UplinkRSSI1     int
	UplinkRSSI2     int
	UplinkQuality   uint8
	UplinkSNR       int8
	ActiveAntenna   uint8
	RFMode          uint8
	TXPower         TXPower
	DownlinkRSSI    int
	DownlinkQuality uint8
	DownlinkSNR     int8
}

func (LinkStatistics) Type() FrameType { return TypeLinkStatistics }

// TXPower is the transmitter power enum carried in link statistics.
type TXPower uint8

var txPowerMilliwatts = [...]int{0, 10, 25, 100, 500, 1000, 2000, 250, 50}

// Milliwatts returns the power level in mW, or -1 for values outside the
// defined enum.
func (p TXPower) Milliwatts() int {
	if int(p) < len(txPowerMilliwatts) {
		return txPowerMilliwatts[p]
	}
	return -1
}

func (p TXPower) String() string {
	if mw := p.Milliwatts(); mw >= 0 {
		return fmt.Sprintf("%dmW", mw)
	}
	return fmt.Sprintf("tx_power(%d)", uint8(p))
}

// GPS is a position fix. Latitude and longitude are in degrees,
// groundspeed in km/h, heading in degrees, altitude in meters.
type GPS struct {
	Latitude    float64
	Longitude   float64
	GroundSpeed float64
	Heading     float64
	Altitude    int
	Satellites  uint8
}

func (GPS) Type() FrameType { return TypeGPS }

// Vario is barometric vertical speed in m/s.
type Vario struct {
	VerticalSpeed float64
}

func (Vario) Type() FrameType { return TypeVario }

// Battery is a battery sensor reading: volts, amps, consumed mAh and
// remaining percent.
type Battery struct {
	Voltage   float64
	Current   float64
	Consumed  uint16
	Remaining uint8
}

func (Battery) Type() FrameType { return TypeBattery }

// BaroAltitude is barometric altitude in meters.
type BaroAltitude struct {
	Altitude float64
}

func (BaroAltitude) Type() FrameType { return TypeBaroAltitude }

// Heartbeat carries the originating device address.
type Heartbeat struct {
	Origin int16
}

func (Heartbeat) Type() FrameType { return TypeHeartbeat }

// Attitude is vehicle orientation in radians.
type Attitude struct {
	Pitch float64
	Roll  float64
	Yaw   float64
}

func (Attitude) Type() FrameType { return TypeAttitude }

// FlightMode is the textual flight mode label.
type FlightMode struct {
	Mode string
}

func (FlightMode) Type() FrameType { return TypeFlightMode }

// Unknown preserves the raw payload of an unrecognized or filtered frame
// type so consumers can handle it themselves.
type Unknown struct {
	FrameType FrameType
	Data      []byte
}

func (u Unknown) Type() FrameType { return u.FrameType }

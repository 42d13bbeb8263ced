package crsf

import "fmt"

// ChannelsPayloadLen is the packed size of 16 x 11-bit channel values.
const ChannelsPayloadLen = 22

// UnpackChannels recovers 16 channel values from a 22-byte payload.
// Values are packed contiguously, least-significant-bit first within each
// byte.
func UnpackChannels(payload []byte) (Channels, error) {
	if len(payload) != ChannelsPayloadLen {
		return Channels{}, fmt.Errorf("%w: got %d, want %d", ErrPayloadLength, len(payload), ChannelsPayloadLen)
	}
	var c Channels
	for i := 0; i < NumChannels; i++ {
		bitPos := i * 11
		byteIdx := bitPos / 8
		bitIdx := uint(bitPos % 8)

		raw := uint32(payload[byteIdx])
		if byteIdx+1 < ChannelsPayloadLen {
			raw |= uint32(payload[byteIdx+1]) << 8
		}
		if byteIdx+2 < ChannelsPayloadLen {
			raw |= uint32(payload[byteIdx+2]) << 16
		}
		c.Ch[i] = uint16((raw >> bitIdx) & MaxChannel)
	}
	return c, nil
}

// PackChannels packs 16 channel values into the 22-byte wire form. It is
// the exact inverse of UnpackChannels for all values in [0, MaxChannel].
func PackChannels(c Channels) ([]byte, error) {
	payload := make([]byte, ChannelsPayloadLen)
	for i, v := range c.Ch {
		if v > MaxChannel {
			return nil, fmt.Errorf("%w: channel %d = %d", ErrChannelRange, i, v)
		}
		bitPos := i * 11
		byteIdx := bitPos / 8
		bitIdx := uint(bitPos % 8)

		raw := uint32(v) << bitIdx
		payload[byteIdx] |= byte(raw)
		if byteIdx+1 < ChannelsPayloadLen {
			payload[byteIdx+1] |= byte(raw >> 8)
		}
		if byteIdx+2 < ChannelsPayloadLen {
			payload[byteIdx+2] |= byte(raw >> 16)
		}
	}
	return payload, nil
}

// TicksToUs converts a raw channel value to the conventional servo pulse
// width in microseconds, using the transmitter's 5/8 scaling: 992 ticks is
// the 1500us center, 172 and 1811 are the nominal endpoints.
func TicksToUs(ticks uint16) int {
	return int(ticks)*5/8 + 880
}

// UsToTicks converts a pulse width back to raw ticks, clamped to the
// representable range. The 5/8 scaling is narrowing, so the conversion is
// approximate to within one tick.
func UsToTicks(us int) uint16 {
	v := (us - 880) * 8 / 5
	if v < 0 {
		v = 0
	}
	if v > MaxChannel {
		v = MaxChannel
	}
	return uint16(v)
}

package frame

import (
	"errors"
	"fmt"
)

const (
	// Sync is the default frame sync byte for CRSF-family links.
	Sync byte = 0xC8

	// MinLength and MaxLength bound the wire length byte, which counts
	// type + payload + crc.
	MinLength = 2
	MaxLength = 62

	// MaxFrameSize is the largest complete frame on the wire:
	// sync + length byte + MaxLength.
	MaxFrameSize = MaxLength + 2

	// MaxPayload is the largest payload a frame can carry.
	MaxPayload = MaxLength - 2
)

var (
	ErrPayloadTooLarge = errors.New("frame: payload too large")
	ErrBadLength       = errors.New("frame: length outside protocol bounds")
	ErrChecksum        = errors.New("frame: checksum mismatch")
)

// Frame is one complete, validated protocol frame. Instances are transient:
// built per decode attempt and discarded after dispatch.
type Frame struct {
	Type    byte
	Payload []byte
}

// Encode assembles the full wire form of a frame: sync, length, type,
// payload, crc. Every frame it produces passes Validate.
func Encode(sync byte, typ byte, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(payload))
	}
	buf := make([]byte, 0, len(payload)+4)
	buf = append(buf, sync, byte(len(payload)+2), typ)
	buf = append(buf, payload...)
	buf = append(buf, Checksum(buf[2:]))
	return buf, nil
}

// Validate checks a candidate frame body (type + payload + crc, as counted
// by the length byte) against its trailing checksum.
func Validate(body []byte) error {
	if len(body) < MinLength {
		return ErrBadLength
	}
	if Checksum(body[:len(body)-1]) != body[len(body)-1] {
		return ErrChecksum
	}
	return nil
}

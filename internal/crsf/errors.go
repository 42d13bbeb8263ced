package crsf

import "errors"

var (
	ErrShortPayload   = errors.New("crsf: payload shorter than frame type requires")
	ErrPayloadLength  = errors.New("crsf: payload length mismatch")
	ErrChannelRange   = errors.New("crsf: channel value exceeds 11 bits")
	ErrUnencodable    = errors.New("crsf: record type cannot be encoded")
	ErrValueRange     = errors.New("crsf: field value outside wire range")
	ErrFlightModeSize = errors.New("crsf: flight mode label too long")
)

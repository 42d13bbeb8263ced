// Package crsf decodes and encodes the CRSF-family serial link protocol
// spoken by ExpressLRS and Crossfire compatible receivers.
//
// The wire format is byte-oriented and length-prefixed: every frame is
// sync + length + type + payload + crc8, where the length byte counts
// type, payload and crc. Frames carry RC channel data, link quality
// statistics and sensor telemetry.
//
// The package is split in two layers. The frame subpackage handles
// framing only: checksum, frame assembly and resynchronization on a noisy
// byte stream. This package maps validated frames to typed records and
// back, and bundles the full receive pipeline in Decoder, a pure
// push-based decode step that any I/O model can drive.
package crsf

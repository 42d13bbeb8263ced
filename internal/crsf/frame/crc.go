package frame

// CRC-8/DVB-S2, polynomial 0xD5, init 0, no reflection. Computed over the
// type byte and payload of a frame; the sync and length bytes are excluded.

var crcTable [256]byte

func init() {
	for i := range crcTable {
		crc := byte(i)
		for bit := 0; bit < 8; bit++ {
			if crc&0x80 != 0 {
				crc = (crc << 1) ^ 0xD5
			} else {
				crc <<= 1
			}
		}
		crcTable[i] = crc
	}
}

// Checksum returns the CRC-8/DVB-S2 of data.
func Checksum(data []byte) byte {
	var crc byte
	for _, b := range data {
		crc = crcTable[crc^b]
	}
	return crc
}

// Package checksum implements the CRC-32 used by both the stored-ZIP writer
// and the PNG chunk framing.
//
// The polynomial is the IEEE 802.3 one (reflected form 0xEDB88320), computed
// byte-wise against a precomputed 256-entry table. Both consumers need the
// exact same algorithm, so it lives here rather than in either of them.
package checksum

// crcTable is the lookup table for the reflected IEEE polynomial.
var crcTable = makeTable()

func makeTable() [256]uint32 {
	var table [256]uint32
	for i := 0; i < 256; i++ {
		crc := uint32(i)
		for j := 0; j < 8; j++ {
			if crc&1 == 1 {
				crc = (crc >> 1) ^ 0xedb88320
			} else {
				crc >>= 1
			}
		}
		table[i] = crc
	}
	return table
}

// CRC32 returns the IEEE CRC-32 of data. The register starts at all-ones and
// the result is complemented, matching ZIP and PNG.
func CRC32(data []byte) uint32 {
	crc := uint32(0xffffffff)
	for _, b := range data {
		crc = crcTable[byte(crc)^b] ^ (crc >> 8)
	}
	return ^crc
}

// Update continues a CRC-32 computation, allowing a checksum to be built
// from multiple buffers without concatenating them. Pass the result of a
// previous CRC32 or Update call as crc.
func Update(crc uint32, data []byte) uint32 {
	crc = ^crc
	for _, b := range data {
		crc = crcTable[byte(crc)^b] ^ (crc >> 8)
	}
	return ^crc
}

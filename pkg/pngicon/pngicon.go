// Package pngicon synthesizes a flat-colour square PNG.
//
// Wallet passes must ship an icon, but not every tenant uploads one. Rather
// than failing pass generation, the assembler falls back to a solid tile in
// the pass background colour. Only the minimal subset of PNG needed for
// that is implemented: 8-bit RGB, no interlacing, one IDAT chunk.
package pngicon

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"

	"github.com/feralclo/walletpass/pkg/checksum"
)

// pngSignature is the fixed 8-byte file header.
var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// Flat returns a size x size PNG filled with the given RGB colour.
func Flat(r, g, b uint8, size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid icon size %d", size)
	}

	var buf bytes.Buffer
	buf.Write(pngSignature)

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(size))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(size))
	ihdr[8] = 8  // bit depth
	ihdr[9] = 2  // colour type: truecolour RGB
	// compression, filter and interlace methods stay zero
	writeChunk(&buf, "IHDR", ihdr)

	// Every scanline starts with the "no filter" byte, then size RGB pixels.
	raw := make([]byte, 0, size*(1+size*3))
	row := make([]byte, 1+size*3)
	for x := 0; x < size; x++ {
		row[1+x*3] = r
		row[2+x*3] = g
		row[3+x*3] = b
	}
	for y := 0; y < size; y++ {
		raw = append(raw, row...)
	}

	var idat bytes.Buffer
	zw := zlib.NewWriter(&idat)
	if _, err := zw.Write(raw); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	writeChunk(&buf, "IDAT", idat.Bytes())

	writeChunk(&buf, "IEND", nil)
	return buf.Bytes(), nil
}

// writeChunk frames a chunk: 4-byte big-endian payload length, the type
// tag, the payload, then a CRC-32 over type+payload. The CRC is the same
// algorithm ZIP uses, which is why it comes from the checksum package.
func writeChunk(buf *bytes.Buffer, typ string, payload []byte) {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(payload)))
	buf.Write(length[:])
	buf.WriteString(typ)
	buf.Write(payload)

	crc := checksum.CRC32([]byte(typ))
	crc = checksum.Update(crc, payload)
	var crcb [4]byte
	binary.BigEndian.PutUint32(crcb[:], crc)
	buf.Write(crcb[:])
}

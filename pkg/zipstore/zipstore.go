// Package zipstore writes ZIP archives in which every entry uses the
// "stored" method, i.e. no compression at all.
//
// Apple Wallet validates a .pkpass archive structurally and the files inside
// are signed byte-for-byte, so the archive is written by hand here rather
// than through archive/zip: this guarantees stored entries, zeroed
// timestamps and no extra fields, independent of library defaults.
package zipstore

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/feralclo/walletpass/pkg/checksum"
)

const (
	localHeaderSignature     = 0x04034b50
	centralDirSignature      = 0x02014b50
	endOfCentralDirSignature = 0x06054b50

	// Version 2.0: the minimum that understands stored entries.
	zipVersion = 20
)

// Entry is a single named member of an archive. Name is archive-relative
// and must not contain directories.
type Entry struct {
	Name string
	Data []byte
}

type localHeader struct {
	Signature        uint32
	ReaderVersion    uint16
	Flags            uint16
	Method           uint16
	ModifiedTime     uint16
	ModifiedDate     uint16
	CRC32            uint32
	CompressedSize   uint32
	UncompressedSize uint32
	FilenameLen      uint16
	ExtraLen         uint16
}

type centralDirHeader struct {
	Signature        uint32
	CreatorVersion   uint16
	ReaderVersion    uint16
	Flags            uint16
	Method           uint16
	ModifiedTime     uint16
	ModifiedDate     uint16
	CRC32            uint32
	CompressedSize   uint32
	UncompressedSize uint32
	FilenameLen      uint16
	ExtraLen         uint16
	CommentLen       uint16
	DiskNumber       uint16
	InternalAttrs    uint16
	ExternalAttrs    uint32
	Offset           uint32
}

type endOfCentralDir struct {
	Signature  uint32
	DiskNumber uint16
	DirDisk    uint16
	DiskCount  uint16 // entries on this disk
	TotalCount uint16
	DirSize    uint32
	DirOffset  uint32
	CommentLen uint16
}

// Archive builds a stored-only ZIP from entries, preserving their order.
// Entry names are written as UTF-8 and timestamps are zeroed so the output
// is deterministic for a given input.
func Archive(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	offsets := make([]uint32, len(entries))
	crcs := make([]uint32, len(entries))

	for i, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("entry %d has an empty name", i)
		}
		if uint64(len(e.Data)) > math.MaxUint32 {
			return nil, fmt.Errorf("entry %q exceeds the 32-bit ZIP size limit", e.Name)
		}
		offsets[i] = uint32(buf.Len())
		crcs[i] = checksum.CRC32(e.Data)

		hdr := localHeader{
			Signature:        localHeaderSignature,
			ReaderVersion:    zipVersion,
			CRC32:            crcs[i],
			CompressedSize:   uint32(len(e.Data)),
			UncompressedSize: uint32(len(e.Data)),
			FilenameLen:      uint16(len(e.Name)),
		}
		if err := binary.Write(&buf, binary.LittleEndian, hdr); err != nil {
			return nil, err
		}
		buf.WriteString(e.Name)
		buf.Write(e.Data)
	}

	dirOffset := uint32(buf.Len())
	for i, e := range entries {
		hdr := centralDirHeader{
			Signature:        centralDirSignature,
			CreatorVersion:   zipVersion,
			ReaderVersion:    zipVersion,
			CRC32:            crcs[i],
			CompressedSize:   uint32(len(e.Data)),
			UncompressedSize: uint32(len(e.Data)),
			FilenameLen:      uint16(len(e.Name)),
			Offset:           offsets[i],
		}
		if err := binary.Write(&buf, binary.LittleEndian, hdr); err != nil {
			return nil, err
		}
		buf.WriteString(e.Name)
	}
	dirSize := uint32(buf.Len()) - dirOffset

	end := endOfCentralDir{
		Signature:  endOfCentralDirSignature,
		TotalCount: uint16(len(entries)),
		DirSize:    dirSize,
		DirOffset:  dirOffset,
	}
	end.DiskCount = end.TotalCount
	if err := binary.Write(&buf, binary.LittleEndian, end); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

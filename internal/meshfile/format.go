// Package meshfile reads and writes binary snapshots of unstructured grids.
//
// A snapshot is written through a memory map into a preallocated file and
// read back by mapping it read-only; the arrays of an opened snapshot alias
// the mapping.
//
// File layout (all integers little-endian, every section 8-byte aligned):
//
//	[Header 64B][Points][Offsets][Connectivity][Types][CellGhosts?][Footer 32B]
package meshfile

import (
	"encoding/binary"

	skinerrors "github.com/tamirms/meshskin/errors"
	"github.com/tamirms/meshskin/internal/encoding"
)

const (
	// magic is "MSKN" in little-endian.
	magic = uint32(0x4E4B534D)

	// version is the current format version.
	version = uint16(0x0001)

	headerSize = 64
	footerSize = 32

	// minFileSize is a header, the single offset of an empty grid and a
	// footer.
	minFileSize = headerSize + 8 + footerSize
)

// Header flags.
const (
	flagCellGhosts = 1 << 0
	flagFloat32    = 1 << 1
)

// header is the 64-byte file header.
//
// Layout:
//
//	Offset  Size  Field             Type
//	0       4     Magic             0x4E4B534D ("MSKN")
//	4       2     Version           0x0001
//	6       2     Flags             uint16_le (1=cell ghosts, 2=float32 points)
//	8       8     NumPoints         uint64_le
//	16      8     NumCells          uint64_le
//	24      8     ConnectivitySize  uint64_le
//	32      32    Reserved          [32]byte (zero)
type header struct {
	Magic            uint32
	Version          uint16
	Flags            uint16
	NumPoints        uint64
	NumCells         uint64
	ConnectivitySize uint64
	Reserved         [32]byte
}

func (h *header) encodeTo(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	binary.LittleEndian.PutUint16(buf[6:8], h.Flags)
	binary.LittleEndian.PutUint64(buf[8:16], h.NumPoints)
	binary.LittleEndian.PutUint64(buf[16:24], h.NumCells)
	binary.LittleEndian.PutUint64(buf[24:32], h.ConnectivitySize)
	copy(buf[32:64], h.Reserved[:])
}

func decodeHeader(buf []byte) (*header, error) {
	if len(buf) < headerSize {
		return nil, skinerrors.ErrTruncatedFile
	}
	h := &header{
		Magic:            binary.LittleEndian.Uint32(buf[0:4]),
		Version:          binary.LittleEndian.Uint16(buf[4:6]),
		Flags:            binary.LittleEndian.Uint16(buf[6:8]),
		NumPoints:        binary.LittleEndian.Uint64(buf[8:16]),
		NumCells:         binary.LittleEndian.Uint64(buf[16:24]),
		ConnectivitySize: binary.LittleEndian.Uint64(buf[24:32]),
	}
	copy(h.Reserved[:], buf[32:64])

	if h.Magic != magic {
		return nil, skinerrors.ErrInvalidMagic
	}
	if h.Version != version {
		return nil, skinerrors.ErrInvalidVersion
	}
	if h.Flags&^(flagCellGhosts|flagFloat32) != 0 {
		return nil, skinerrors.ErrCorruptedFile
	}
	// Counts beyond 2^40 cannot describe a mappable file and would overflow
	// the section arithmetic.
	const maxCount = uint64(1) << 40
	if h.NumPoints > maxCount || h.NumCells > maxCount || h.ConnectivitySize > maxCount {
		return nil, skinerrors.ErrCorruptedFile
	}
	return h, nil
}

// layout holds the absolute section offsets implied by a header.
type layout struct {
	points, offsets, conn, types, ghosts, footer, size uint64
}

func (h *header) layout() layout {
	var l layout
	pointBytes := 3 * h.NumPoints * 8
	if h.Flags&flagFloat32 != 0 {
		pointBytes = 3 * h.NumPoints * 4
	}
	l.points = headerSize
	l.offsets = l.points + encoding.Align8(pointBytes)
	l.conn = l.offsets + 8*(h.NumCells+1)
	l.types = l.conn + 8*h.ConnectivitySize
	l.ghosts = l.types + encoding.Align8(h.NumCells)
	l.footer = l.ghosts
	if h.Flags&flagCellGhosts != 0 {
		l.footer += encoding.Align8(h.NumCells)
	}
	l.size = l.footer + footerSize
	return l
}

// footer is the 32-byte file footer.
//
// Layout:
//
//	Offset  Size  Field     Type
//	0       8     BodyHash  uint64_le (xxHash64 of everything before the footer)
//	8       24    Reserved  [24]byte (zero)
type footer struct {
	BodyHash uint64
	Reserved [24]byte
}

func (f *footer) encodeTo(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], f.BodyHash)
	copy(buf[8:32], f.Reserved[:])
}

func decodeFooter(buf []byte) (*footer, error) {
	if len(buf) < footerSize {
		return nil, skinerrors.ErrTruncatedFile
	}
	f := &footer{BodyHash: binary.LittleEndian.Uint64(buf[0:8])}
	copy(f.Reserved[:], buf[8:32])
	return f, nil
}

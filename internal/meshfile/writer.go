package meshfile

import (
	"errors"
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"

	skinerrors "github.com/tamirms/meshskin/errors"
	"github.com/tamirms/meshskin/internal/encoding"
)

// Mesh is the content of a snapshot: an unstructured grid in flat arrays.
// Exactly one of Points64 and Points32 holds the interleaved xyz
// coordinates. CellGhosts is optional.
type Mesh struct {
	Points64     []float64
	Points32     []float32
	Offsets      []int64
	Connectivity []int64
	Types        []uint8
	CellGhosts   []uint8
}

// NumberOfPoints returns the number of points.
func (m *Mesh) NumberOfPoints() int {
	if m.Points32 != nil && m.Points64 == nil {
		return len(m.Points32) / 3
	}
	return len(m.Points64) / 3
}

func (m *Mesh) header() (*header, error) {
	numCells := uint64(len(m.Types))
	if uint64(len(m.Offsets)) != numCells+1 {
		return nil, fmt.Errorf("%w: %d offsets for %d cells", skinerrors.ErrInvalidInput, len(m.Offsets), numCells)
	}
	if m.CellGhosts != nil && len(m.CellGhosts) != len(m.Types) {
		return nil, fmt.Errorf("%w: %d cell ghosts for %d cells", skinerrors.ErrInvalidInput, len(m.CellGhosts), numCells)
	}
	h := &header{
		Magic:            magic,
		Version:          version,
		NumPoints:        uint64(m.NumberOfPoints()),
		NumCells:         numCells,
		ConnectivitySize: uint64(len(m.Connectivity)),
	}
	if m.CellGhosts != nil {
		h.Flags |= flagCellGhosts
	}
	if m.Points32 != nil && m.Points64 == nil {
		h.Flags |= flagFloat32
	}
	return h, nil
}

// Write stores m at path. The file is preallocated to its final size and
// filled through a writable mapping; on failure it is removed.
func Write(path string, m *Mesh) (err error) {
	h, err := m.header()
	if err != nil {
		return err
	}
	l := h.layout()

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create mesh file: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, os.Remove(path))
		}
	}()

	// Reserve the blocks up front so a full disk fails here instead of
	// raising SIGBUS on a mapped write.
	if err := fallocateFile(file, int64(l.size)); err != nil {
		primaryErr := fmt.Errorf("allocate mesh file: %w", err)
		return errors.Join(primaryErr, file.Close())
	}
	mm, err := mmap.MapRegion(file, int(l.size), mmap.RDWR, 0, 0)
	if err != nil {
		primaryErr := fmt.Errorf("mmap mesh file: %w", err)
		return errors.Join(primaryErr, file.Close())
	}
	data := []byte(mm)
	prefaultRegion(data)

	h.encodeTo(data[:headerSize])
	if h.Flags&flagFloat32 != 0 {
		encoding.PutFloat32s(data[l.points:], m.Points32)
	} else {
		encoding.PutFloat64s(data[l.points:], m.Points64)
	}
	encoding.PutInt64s(data[l.offsets:], m.Offsets)
	encoding.PutInt64s(data[l.conn:], m.Connectivity)
	copy(data[l.types:], m.Types)
	if m.CellGhosts != nil {
		copy(data[l.ghosts:], m.CellGhosts)
	}

	f := footer{BodyHash: xxhash.Sum64(data[:l.footer])}
	f.encodeTo(data[l.footer:])

	if err := mm.Flush(); err != nil {
		primaryErr := fmt.Errorf("flush mesh file: %w", err)
		return errors.Join(primaryErr, mm.Unmap(), file.Close())
	}
	if err := mm.Unmap(); err != nil {
		primaryErr := fmt.Errorf("unmap mesh file: %w", err)
		return errors.Join(primaryErr, file.Close())
	}
	if err := file.Sync(); err != nil {
		primaryErr := fmt.Errorf("sync mesh file: %w", err)
		return errors.Join(primaryErr, file.Close())
	}
	return file.Close()
}

package meshfile

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"

	skinerrors "github.com/tamirms/meshskin/errors"
	"github.com/tamirms/meshskin/internal/encoding"
)

// File is an opened snapshot.
//
// Thread Safety:
//   - Mesh and Verify are safe for concurrent use
//   - Close must only be called after every user of the Mesh arrays is done;
//     the arrays alias the mapping
type File struct {
	mmap mmap.MMap
	data []byte

	header *header
	layout layout
	mesh   Mesh

	closed atomic.Bool
}

// Open maps the snapshot at path read-only. The file descriptor is closed
// before Open returns.
func Open(path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mesh file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat mesh file: %w", err)
	}
	if stat.Size() < minFileSize {
		return nil, skinerrors.ErrTruncatedFile
	}
	fadviseSequential(int(file.Fd()), 0, stat.Size())

	mm, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap mesh file: %w", err)
	}
	f := &File{mmap: mm, data: []byte(mm)}
	if err := f.init(); err != nil {
		return nil, errors.Join(err, f.Close())
	}
	return f, nil
}

// OpenBytes reads a snapshot held in memory. Close is a no-op. data must
// not be modified while the File is in use.
func OpenBytes(data []byte) (*File, error) {
	if len(data) < minFileSize {
		return nil, skinerrors.ErrTruncatedFile
	}
	f := &File{data: data}
	if err := f.init(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) init() error {
	h, err := decodeHeader(f.data[:headerSize])
	if err != nil {
		return err
	}
	l := h.layout()
	switch size := uint64(len(f.data)); {
	case size < l.size:
		return skinerrors.ErrTruncatedFile
	case size > l.size:
		return fmt.Errorf("%w: %d trailing bytes", skinerrors.ErrCorruptedFile, size-l.size)
	}
	f.header, f.layout = h, l

	m := &f.mesh
	if h.Flags&flagFloat32 != 0 {
		m.Points32 = encoding.Float32s(f.data[l.points : l.points+12*h.NumPoints])
	} else {
		m.Points64 = encoding.Float64s(f.data[l.points : l.points+24*h.NumPoints])
	}
	m.Offsets = encoding.Int64s(f.data[l.offsets:l.conn])
	m.Connectivity = encoding.Int64s(f.data[l.conn:l.types])
	m.Types = f.data[l.types : l.types+h.NumCells]
	if h.Flags&flagCellGhosts != 0 {
		m.CellGhosts = f.data[l.ghosts : l.ghosts+h.NumCells]
	}

	if m.Offsets[0] != 0 || m.Offsets[h.NumCells] != int64(h.ConnectivitySize) {
		return fmt.Errorf("%w: offsets span [%d,%d], want [0,%d]",
			skinerrors.ErrCorruptedFile, m.Offsets[0], m.Offsets[h.NumCells], h.ConnectivitySize)
	}
	return nil
}

// Mesh returns the snapshot arrays. They alias the mapping and are only
// valid until Close.
func (f *File) Mesh() (*Mesh, error) {
	if f.closed.Load() {
		return nil, skinerrors.ErrFileClosed
	}
	m := f.mesh
	return &m, nil
}

// Size returns the size of the snapshot in bytes.
func (f *File) Size() int64 {
	return int64(len(f.data))
}

// Verify checks the body checksum. It reads the whole file.
func (f *File) Verify() error {
	if f.closed.Load() {
		return skinerrors.ErrFileClosed
	}
	ft, err := decodeFooter(f.data[f.layout.footer:])
	if err != nil {
		return err
	}
	if xxhash.Sum64(f.data[:f.layout.footer]) != ft.BodyHash {
		return skinerrors.ErrChecksumFailed
	}
	return nil
}

// Close unmaps the file. It is idempotent.
func (f *File) Close() error {
	if f.closed.Swap(true) {
		return nil
	}
	f.data = nil
	f.mesh = Mesh{}
	if f.mmap == nil {
		return nil
	}
	err := f.mmap.Unmap()
	f.mmap = nil
	return err
}

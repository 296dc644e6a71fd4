// Package synth generates synthetic volumetric meshes for the tools and
// benchmarks.
package synth

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/spaolacci/murmur3"

	"github.com/tamirms/meshskin"
	"github.com/tamirms/meshskin/internal/meshfile"
)

// Block is an NX x NY x NZ block of unit hexahedra. A BlankRatio above zero
// hides a pseudo-random share of the cells, chosen by hashing the cell id
// with Seed.
type Block struct {
	NX, NY, NZ int
	BlankRatio float64
	Seed       uint32
}

// NumberOfCells returns the number of hexahedra in the block.
func (b Block) NumberOfCells() int {
	return b.NX * b.NY * b.NZ
}

// Blanked reports whether cell is hidden.
func (b Block) Blanked(cell int64) bool {
	if b.BlankRatio <= 0 {
		return false
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(cell))
	h := murmur3.Sum32WithSeed(buf[:], b.Seed)
	return float64(h) < b.BlankRatio*float64(math.MaxUint32)
}

func (b Block) ghosts() []uint8 {
	if b.BlankRatio <= 0 {
		return nil
	}
	g := make([]uint8, b.NumberOfCells())
	for c := range g {
		if b.Blanked(int64(c)) {
			g[c] = meshskin.HiddenCell
		}
	}
	return g
}

// Mesh returns the block as an unstructured snapshot of hexahedra.
func (b Block) Mesh() *meshfile.Mesh {
	px, py, pz := b.NX+1, b.NY+1, b.NZ+1
	m := &meshfile.Mesh{
		Points64:     make([]float64, 0, 3*px*py*pz),
		Offsets:      make([]int64, 0, b.NumberOfCells()+1),
		Connectivity: make([]int64, 0, 8*b.NumberOfCells()),
		Types:        make([]uint8, b.NumberOfCells()),
		CellGhosts:   b.ghosts(),
	}
	for k := range pz {
		for j := range py {
			for i := range px {
				m.Points64 = append(m.Points64, float64(i), float64(j), float64(k))
			}
		}
	}
	id := func(i, j, k int) int64 {
		return int64(i + px*(j+py*k))
	}
	m.Offsets = append(m.Offsets, 0)
	for k := range b.NZ {
		for j := range b.NY {
			for i := range b.NX {
				m.Connectivity = append(m.Connectivity,
					id(i, j, k), id(i+1, j, k), id(i+1, j+1, k), id(i, j+1, k),
					id(i, j, k+1), id(i+1, j, k+1), id(i+1, j+1, k+1), id(i, j+1, k+1))
				m.Offsets = append(m.Offsets, int64(len(m.Connectivity)))
			}
		}
	}
	for c := range m.Types {
		m.Types[c] = uint8(meshskin.Hexahedron)
	}
	return m
}

// Structured returns the block as image data with unit spacing.
func (b Block) Structured() *meshskin.StructuredGrid {
	return &meshskin.StructuredGrid{
		Kind:           meshskin.ImageData,
		Extent:         [6]int{0, b.NX, 0, b.NY, 0, b.NZ},
		Spacing:        [3]float64{1, 1, 1},
		CellGhostFlags: b.ghosts(),
	}
}

// UnstructuredGrid wraps snapshot arrays without copying them.
func UnstructuredGrid(m *meshfile.Mesh) *meshskin.UnstructuredGrid {
	ug := &meshskin.UnstructuredGrid{
		Offsets:        m.Offsets,
		Connectivity:   m.Connectivity,
		CellGhostFlags: m.CellGhosts,
	}
	if m.Points32 != nil && m.Points64 == nil {
		ug.Points = meshskin.NewPoints32(m.Points32)
	} else {
		ug.Points = meshskin.NewPoints64(m.Points64)
	}
	if len(m.Types) > 0 {
		// CellType is a uint8.
		ug.Types = unsafe.Slice((*meshskin.CellType)(unsafe.Pointer(&m.Types[0])), len(m.Types))
	} else {
		ug.Types = []meshskin.CellType{}
	}
	return ug
}

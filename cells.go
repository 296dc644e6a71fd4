package meshskin

import "unsafe"

// Index is the integer type used for offsets and connectivity.
type Index interface {
	~int32 | ~int64
}

// Cells is a topology block: cell i uses
// Connectivity[Offsets[i]:Offsets[i+1]]. Offsets[0] is 0 and offsets never
// decrease. An empty block may have nil Offsets.
type Cells[T Index] struct {
	Offsets      []T
	Connectivity []T
}

// CellArray is the width-independent view of a topology block.
// It is implemented by *Cells[int32] and *Cells[int64].
type CellArray interface {
	// NumberOfCells returns the number of cells in the block.
	NumberOfCells() int
	// ConnectivitySize returns the total number of point references.
	ConnectivitySize() int
	// CellSize returns the number of points of cell i.
	CellSize(i int) int
	// AppendCell appends the point ids of cell i to dst.
	AppendCell(dst []int64, i int) []int64
	// Is64Bit reports whether ids are stored as int64.
	Is64Bit() bool
}

// NewCells builds a block from per-cell point lists.
func NewCells[T Index](cells ...[]int64) *Cells[T] {
	c := &Cells[T]{Offsets: make([]T, 1, len(cells)+1)}
	for _, pts := range cells {
		for _, id := range pts {
			c.Connectivity = append(c.Connectivity, T(id))
		}
		c.Offsets = append(c.Offsets, T(len(c.Connectivity)))
	}
	return c
}

func (c *Cells[T]) NumberOfCells() int {
	if c == nil || len(c.Offsets) == 0 {
		return 0
	}
	return len(c.Offsets) - 1
}

func (c *Cells[T]) ConnectivitySize() int {
	if c == nil {
		return 0
	}
	return len(c.Connectivity)
}

func (c *Cells[T]) CellSize(i int) int {
	return int(c.Offsets[i+1] - c.Offsets[i])
}

func (c *Cells[T]) AppendCell(dst []int64, i int) []int64 {
	for _, id := range c.Connectivity[c.Offsets[i]:c.Offsets[i+1]] {
		dst = append(dst, int64(id))
	}
	return dst
}

func (c *Cells[T]) Is64Bit() bool {
	var zero T
	return unsafe.Sizeof(zero) == 8
}

// numberOfCells tolerates nil blocks.
func numberOfCells(c CellArray) int {
	if c == nil {
		return 0
	}
	return c.NumberOfCells()
}

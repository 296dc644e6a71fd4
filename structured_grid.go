package meshskin

import (
	"fmt"

	skinerrors "github.com/tamirms/meshskin/errors"
)

// StructuredKind tells how a structured grid stores its coordinates.
type StructuredKind uint8

const (
	// ImageData has implicit coordinates Origin + Spacing*index.
	ImageData StructuredKind = iota
	// RectilinearGrid has one coordinate array per axis.
	RectilinearGrid
	// CurvilinearGrid has an explicit point per grid node.
	CurvilinearGrid
)

// String returns the kind name.
func (k StructuredKind) String() string {
	switch k {
	case ImageData:
		return "image"
	case RectilinearGrid:
		return "rectilinear"
	case CurvilinearGrid:
		return "curvilinear"
	default:
		return "unknown"
	}
}

// StructuredGrid is a topologically regular grid over the inclusive
// index-space Extent {imin, imax, jmin, jmax, kmin, kmax}. Points are
// numbered with i fastest, then j, then k; cells likewise over the cell
// dimensions, where a flat axis counts as one cell layer.
type StructuredGrid struct {
	Kind   StructuredKind
	Extent [6]int

	// ImageData
	Origin  [3]float64
	Spacing [3]float64

	// RectilinearGrid: one coordinate per node along each axis.
	XCoords []float64
	YCoords []float64
	ZCoords []float64

	// CurvilinearGrid
	Points *Points

	PointAttributes *Attributes
	CellAttributes  *Attributes
	// CellGhostFlags marks blanked cells with HiddenCell.
	CellGhostFlags  []uint8
	PointGhostFlags []uint8
}

// Dimensions returns the number of points along each axis.
func (sg *StructuredGrid) Dimensions() [3]int {
	var d [3]int
	for a := range 3 {
		d[a] = max(sg.Extent[2*a+1]-sg.Extent[2*a]+1, 0)
	}
	return d
}

// cellDimensions returns the number of cells along each axis; a flat axis
// counts as one.
func (sg *StructuredGrid) cellDimensions() [3]int {
	d := sg.Dimensions()
	var c [3]int
	for a := range 3 {
		c[a] = max(d[a]-1, 1)
	}
	return c
}

// DataDimension returns the number of axes with more than one point.
func (sg *StructuredGrid) DataDimension() int {
	n := 0
	for _, d := range sg.Dimensions() {
		if d > 1 {
			n++
		}
	}
	return n
}

func (sg *StructuredGrid) empty() bool {
	d := sg.Dimensions()
	return d[0] == 0 || d[1] == 0 || d[2] == 0
}

func (sg *StructuredGrid) NumberOfPoints() int {
	d := sg.Dimensions()
	return d[0] * d[1] * d[2]
}

func (sg *StructuredGrid) NumberOfCells() int {
	if sg.empty() {
		return 0
	}
	c := sg.cellDimensions()
	return c[0] * c[1] * c[2]
}

// pointID returns the id of the node at local index (i, j, k).
func (sg *StructuredGrid) pointID(i, j, k int) int64 {
	d := sg.Dimensions()
	return int64(i) + int64(j)*int64(d[0]) + int64(k)*int64(d[0])*int64(d[1])
}

// cellID returns the id of the cell at local index (i, j, k).
func (sg *StructuredGrid) cellID(i, j, k int) int64 {
	c := sg.cellDimensions()
	return int64(i) + int64(j)*int64(c[0]) + int64(k)*int64(c[0])*int64(c[1])
}

func (sg *StructuredGrid) cellIJK(cellID int) [3]int {
	c := sg.cellDimensions()
	return [3]int{cellID % c[0], (cellID / c[0]) % c[1], cellID / (c[0] * c[1])}
}

// axes returns the non-flat axes in ascending order.
func (sg *StructuredGrid) axes() []int {
	d := sg.Dimensions()
	var out []int
	for a := range 3 {
		if d[a] > 1 {
			out = append(out, a)
		}
	}
	return out
}

func (sg *StructuredGrid) CellType(cellID int) CellType {
	implicit := sg.Kind != CurvilinearGrid
	switch sg.DataDimension() {
	case 3:
		if implicit {
			return Voxel
		}
		return Hexahedron
	case 2:
		if implicit {
			return Pixel
		}
		return Quad
	case 1:
		return Line
	default:
		return Vertex
	}
}

func (sg *StructuredGrid) CellPoints(cellID int, dst []int64) []int64 {
	base := sg.cellIJK(cellID)
	node := func(offsets ...[2]int) int64 {
		ijk := base
		for _, o := range offsets {
			ijk[o[0]] += o[1]
		}
		return sg.pointID(ijk[0], ijk[1], ijk[2])
	}

	axes := sg.axes()
	switch len(axes) {
	case 3:
		x, y, z := [2]int{0, 1}, [2]int{1, 1}, [2]int{2, 1}
		if sg.Kind != CurvilinearGrid {
			return append(dst,
				node(), node(x), node(y), node(x, y),
				node(z), node(x, z), node(y, z), node(x, y, z))
		}
		return append(dst,
			node(), node(x), node(x, y), node(y),
			node(z), node(x, z), node(x, y, z), node(y, z))
	case 2:
		a, b := [2]int{axes[0], 1}, [2]int{axes[1], 1}
		if sg.Kind != CurvilinearGrid {
			return append(dst, node(), node(a), node(b), node(a, b))
		}
		return append(dst, node(), node(a), node(a, b), node(b))
	case 1:
		return append(dst, node(), node([2]int{axes[0], 1}))
	default:
		return append(dst, node())
	}
}

func (sg *StructuredGrid) Point(pointID int) [3]float64 {
	if sg.Kind == CurvilinearGrid {
		return sg.Points.Point(pointID)
	}
	d := sg.Dimensions()
	ijk := [3]int{pointID % d[0], (pointID / d[0]) % d[1], pointID / (d[0] * d[1])}
	if sg.Kind == RectilinearGrid {
		return [3]float64{sg.XCoords[ijk[0]], sg.YCoords[ijk[1]], sg.ZCoords[ijk[2]]}
	}
	var p [3]float64
	for a := range 3 {
		p[a] = sg.Origin[a] + sg.Spacing[a]*float64(sg.Extent[2*a]+ijk[a])
	}
	return p
}

func (sg *StructuredGrid) PointData() *Attributes { return sg.PointAttributes }
func (sg *StructuredGrid) CellData() *Attributes  { return sg.CellAttributes }
func (sg *StructuredGrid) CellGhosts() []uint8    { return sg.CellGhostFlags }
func (sg *StructuredGrid) PointGhosts() []uint8   { return sg.PointGhostFlags }

func (sg *StructuredGrid) validate() error {
	for a := range 3 {
		if sg.Extent[2*a+1] < sg.Extent[2*a] {
			// An inverted extent denotes an empty grid.
			return nil
		}
	}
	d := sg.Dimensions()
	switch sg.Kind {
	case ImageData:
	case RectilinearGrid:
		if len(sg.XCoords) != d[0] || len(sg.YCoords) != d[1] || len(sg.ZCoords) != d[2] {
			return fmt.Errorf("%w: rectilinear coordinates %d/%d/%d for dimensions %v",
				skinerrors.ErrInvalidInput, len(sg.XCoords), len(sg.YCoords), len(sg.ZCoords), d)
		}
	case CurvilinearGrid:
		if sg.Points.Len() != sg.NumberOfPoints() {
			return fmt.Errorf("%w: %d points for dimensions %v", skinerrors.ErrInvalidInput, sg.Points.Len(), d)
		}
	default:
		return fmt.Errorf("%w: structured kind %d", skinerrors.ErrInvalidInput, sg.Kind)
	}
	return validateGhosts(sg.CellGhostFlags, sg.NumberOfCells(), sg.PointGhostFlags, sg.NumberOfPoints())
}

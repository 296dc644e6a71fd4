package meshskin

import (
	"fmt"

	skinerrors "github.com/tamirms/meshskin/errors"
)

// Cell ghost flags.
const (
	DuplicateCell        uint8 = 1
	HighConnectivityCell uint8 = 2
	LowConnectivityCell  uint8 = 4
	RefinedCell          uint8 = 8
	ExteriorCell         uint8 = 16
	HiddenCell           uint8 = 32
)

// Point ghost flags.
const (
	DuplicatePoint uint8 = 1
	HiddenPoint    uint8 = 2
)

// Dataset is the read-only contract every input implements. The generic
// extraction path works against this interface alone; the concrete types
// below get dedicated fast paths.
//
// Implementations must be safe for concurrent reads.
type Dataset interface {
	NumberOfPoints() int
	NumberOfCells() int
	CellType(cellID int) CellType
	// CellPoints appends the point ids of cellID to dst.
	CellPoints(cellID int, dst []int64) []int64
	Point(pointID int) [3]float64
	PointData() *Attributes
	CellData() *Attributes
	// CellGhosts returns one ghost byte per cell, or nil.
	CellGhosts() []uint8
	// PointGhosts returns one ghost byte per point, or nil.
	PointGhosts() []uint8
}

// polyhedralDataset is implemented by datasets that can hold polyhedra.
type polyhedralDataset interface {
	NumberOfCellFaces(cellID int) int
	AppendCellFace(cellID, face int, dst []int64) []int64
}

// PolyData is a polygonal mesh: vertices, lines, polygons and triangle
// strips over a shared point array. It is also the output type.
// Cell ids number the verts first, then lines, polys and strips.
type PolyData struct {
	Points          *Points
	Verts           CellArray
	Lines           CellArray
	Polys           CellArray
	Strips          CellArray
	PointAttributes *Attributes
	CellAttributes  *Attributes
	CellGhostFlags  []uint8
	PointGhostFlags []uint8
}

// Blocks returns the four topology blocks in output order.
func (pd *PolyData) Blocks() [numKinds]CellArray {
	return [numKinds]CellArray{pd.Verts, pd.Lines, pd.Polys, pd.Strips}
}

func (pd *PolyData) NumberOfPoints() int { return pd.Points.Len() }

func (pd *PolyData) NumberOfCells() int {
	n := 0
	for _, b := range pd.Blocks() {
		n += numberOfCells(b)
	}
	return n
}

// locate maps a polydata cell id to its block and local index.
func (pd *PolyData) locate(cellID int) (kind, int) {
	for k, b := range pd.Blocks() {
		n := numberOfCells(b)
		if cellID < n {
			return kind(k), cellID
		}
		cellID -= n
	}
	panic(fmt.Sprintf("meshskin: polydata cell id out of range: %d", cellID))
}

func (pd *PolyData) CellType(cellID int) CellType {
	k, i := pd.locate(cellID)
	n := pd.Blocks()[k].CellSize(i)
	switch k {
	case kindVerts:
		if n == 1 {
			return Vertex
		}
		return PolyVertex
	case kindLines:
		if n == 2 {
			return Line
		}
		return PolyLine
	case kindPolys:
		switch n {
		case 3:
			return Triangle
		case 4:
			return Quad
		}
		return Polygon
	default:
		return TriangleStrip
	}
}

func (pd *PolyData) CellPoints(cellID int, dst []int64) []int64 {
	k, i := pd.locate(cellID)
	return pd.Blocks()[k].AppendCell(dst, i)
}

func (pd *PolyData) Point(pointID int) [3]float64 { return pd.Points.Point(pointID) }
func (pd *PolyData) PointData() *Attributes       { return pd.PointAttributes }
func (pd *PolyData) CellData() *Attributes        { return pd.CellAttributes }
func (pd *PolyData) CellGhosts() []uint8          { return pd.CellGhostFlags }
func (pd *PolyData) PointGhosts() []uint8         { return pd.PointGhostFlags }

func (pd *PolyData) validate() error {
	numPoints := int64(pd.NumberOfPoints())
	var pts []int64
	for k, b := range pd.Blocks() {
		n := numberOfCells(b)
		for i := range n {
			if b.CellSize(i) < 0 {
				return fmt.Errorf("%w: %s offsets decrease at %d", skinerrors.ErrInvalidInput, kind(k), i)
			}
			pts = b.AppendCell(pts[:0], i)
			for _, p := range pts {
				if p < 0 || p >= numPoints {
					return fmt.Errorf("%w: %s cell %d uses point %d outside [0,%d)",
						skinerrors.ErrInvalidInput, kind(k), i, p, numPoints)
				}
			}
		}
	}
	return validateGhosts(pd.CellGhostFlags, pd.NumberOfCells(), pd.PointGhostFlags, int(numPoints))
}

// Polyhedra stores the explicit faces of polyhedral cells. Cell c owns
// faces FaceLocations[c]..FaceLocations[c+1]; face f uses point ids
// FaceConnectivity[FaceOffsets[f]:FaceOffsets[f+1]].
type Polyhedra struct {
	FaceLocations    []int64
	FaceOffsets      []int64
	FaceConnectivity []int64
}

// UnstructuredGrid is an explicit list of cells of arbitrary type.
// Cell i has type Types[i] and uses Connectivity[Offsets[i]:Offsets[i+1]].
type UnstructuredGrid struct {
	Points          *Points
	Offsets         []int64
	Connectivity    []int64
	Types           []CellType
	Polyhedra       *Polyhedra
	PointAttributes *Attributes
	CellAttributes  *Attributes
	CellGhostFlags  []uint8
	PointGhostFlags []uint8
}

func (ug *UnstructuredGrid) NumberOfPoints() int { return ug.Points.Len() }
func (ug *UnstructuredGrid) NumberOfCells() int  { return len(ug.Types) }

func (ug *UnstructuredGrid) CellType(cellID int) CellType { return ug.Types[cellID] }

func (ug *UnstructuredGrid) CellPoints(cellID int, dst []int64) []int64 {
	return append(dst, ug.Connectivity[ug.Offsets[cellID]:ug.Offsets[cellID+1]]...)
}

// cellPoints returns the point ids of cellID without copying.
func (ug *UnstructuredGrid) cellPoints(cellID int64) []int64 {
	return ug.Connectivity[ug.Offsets[cellID]:ug.Offsets[cellID+1]]
}

func (ug *UnstructuredGrid) Point(pointID int) [3]float64 { return ug.Points.Point(pointID) }
func (ug *UnstructuredGrid) PointData() *Attributes       { return ug.PointAttributes }
func (ug *UnstructuredGrid) CellData() *Attributes        { return ug.CellAttributes }
func (ug *UnstructuredGrid) CellGhosts() []uint8          { return ug.CellGhostFlags }
func (ug *UnstructuredGrid) PointGhosts() []uint8         { return ug.PointGhostFlags }

func (ug *UnstructuredGrid) NumberOfCellFaces(cellID int) int {
	if ug.Polyhedra == nil || ug.Types[cellID] != Polyhedron {
		return 0
	}
	return int(ug.Polyhedra.FaceLocations[cellID+1] - ug.Polyhedra.FaceLocations[cellID])
}

func (ug *UnstructuredGrid) AppendCellFace(cellID, face int, dst []int64) []int64 {
	return append(dst, ug.polyhedronFace(int64(cellID), face)...)
}

func (ug *UnstructuredGrid) polyhedronFace(cellID int64, face int) []int64 {
	ph := ug.Polyhedra
	f := ph.FaceLocations[cellID] + int64(face)
	return ph.FaceConnectivity[ph.FaceOffsets[f]:ph.FaceOffsets[f+1]]
}

// validate checks the structural consistency of the grid.
func (ug *UnstructuredGrid) validate() error {
	numCells := len(ug.Types)
	numPoints := int64(ug.NumberOfPoints())
	if len(ug.Offsets) != numCells+1 && !(numCells == 0 && len(ug.Offsets) == 0) {
		return fmt.Errorf("%w: %d offsets for %d cells", skinerrors.ErrInvalidInput, len(ug.Offsets), numCells)
	}
	if err := validateOffsets(ug.Offsets, len(ug.Connectivity)); err != nil {
		return err
	}
	for i, id := range ug.Connectivity {
		if id < 0 || id >= numPoints {
			return fmt.Errorf("%w: connectivity[%d]=%d outside [0,%d)", skinerrors.ErrInvalidInput, i, id, numPoints)
		}
	}
	if err := validateGhosts(ug.CellGhostFlags, numCells, ug.PointGhostFlags, int(numPoints)); err != nil {
		return err
	}
	if ph := ug.Polyhedra; ph != nil {
		if len(ph.FaceLocations) != numCells+1 {
			return fmt.Errorf("%w: %d polyhedron face locations for %d cells", skinerrors.ErrInvalidInput, len(ph.FaceLocations), numCells)
		}
		numFaces := len(ph.FaceOffsets) - 1
		if err := validateOffsets(ph.FaceLocations, max(numFaces, 0)); err != nil {
			return err
		}
		if err := validateOffsets(ph.FaceOffsets, len(ph.FaceConnectivity)); err != nil {
			return err
		}
		for i, id := range ph.FaceConnectivity {
			if id < 0 || id >= numPoints {
				return fmt.Errorf("%w: face connectivity[%d]=%d outside [0,%d)", skinerrors.ErrInvalidInput, i, id, numPoints)
			}
		}
	}
	for i, t := range ug.Types {
		if t == Polyhedron && (ug.Polyhedra == nil) {
			return fmt.Errorf("%w: polyhedron cell %d without face data", skinerrors.ErrInvalidInput, i)
		}
		if err := checkCellSize(int64(i), t, int(ug.Offsets[i+1]-ug.Offsets[i])); err != nil {
			return err
		}
	}
	return nil
}

func validateOffsets(offsets []int64, size int) error {
	if len(offsets) == 0 {
		if size != 0 {
			return fmt.Errorf("%w: missing offsets for %d entries", skinerrors.ErrInvalidInput, size)
		}
		return nil
	}
	if offsets[0] != 0 {
		return fmt.Errorf("%w: offsets[0]=%d, want 0", skinerrors.ErrInvalidInput, offsets[0])
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return fmt.Errorf("%w: offsets decrease at %d", skinerrors.ErrInvalidInput, i)
		}
	}
	if last := offsets[len(offsets)-1]; last != int64(size) {
		return fmt.Errorf("%w: last offset %d, want %d", skinerrors.ErrInvalidInput, last, size)
	}
	return nil
}

func validateGhosts(cellGhosts []uint8, numCells int, pointGhosts []uint8, numPoints int) error {
	if cellGhosts != nil && len(cellGhosts) != numCells {
		return fmt.Errorf("%w: %d cell ghost flags for %d cells", skinerrors.ErrInvalidInput, len(cellGhosts), numCells)
	}
	if pointGhosts != nil && len(pointGhosts) != numPoints {
		return fmt.Errorf("%w: %d point ghost flags for %d points", skinerrors.ErrInvalidInput, len(pointGhosts), numPoints)
	}
	return nil
}

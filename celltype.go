package meshskin

import (
	"fmt"
	"strconv"

	skinerrors "github.com/tamirms/meshskin/errors"
)

// CellType identifies the shape of a cell. Values follow the VTK numbering
// so that cell type arrays can be exchanged without translation.
type CellType uint8

const (
	EmptyCell       CellType = 0
	Vertex          CellType = 1
	PolyVertex      CellType = 2
	Line            CellType = 3
	PolyLine        CellType = 4
	Triangle        CellType = 5
	TriangleStrip   CellType = 6
	Polygon         CellType = 7
	Pixel           CellType = 8
	Quad            CellType = 9
	Tetra           CellType = 10
	Voxel           CellType = 11
	Hexahedron      CellType = 12
	Wedge           CellType = 13
	Pyramid         CellType = 14
	PentagonalPrism CellType = 15
	HexagonalPrism  CellType = 16

	QuadraticEdge                  CellType = 21
	QuadraticTriangle              CellType = 22
	QuadraticQuad                  CellType = 23
	QuadraticTetra                 CellType = 24
	QuadraticHexahedron            CellType = 25
	QuadraticWedge                 CellType = 26
	QuadraticPyramid               CellType = 27
	BiQuadraticQuad                CellType = 28
	TriQuadraticHexahedron         CellType = 29
	QuadraticLinearQuad            CellType = 30
	QuadraticLinearWedge           CellType = 31
	BiQuadraticQuadraticWedge      CellType = 32
	BiQuadraticQuadraticHexahedron CellType = 33
	BiQuadraticTriangle            CellType = 34
	CubicLine                      CellType = 35
	QuadraticPolygon               CellType = 36
	TriQuadraticPyramid            CellType = 37

	ConvexPointSet CellType = 41
	Polyhedron     CellType = 42

	LagrangeCurve         CellType = 68
	LagrangeTriangle      CellType = 69
	LagrangeQuadrilateral CellType = 70
	LagrangeTetrahedron   CellType = 71
	LagrangeHexahedron    CellType = 72
	LagrangeWedge         CellType = 73
	LagrangePyramid       CellType = 74
	BezierCurve           CellType = 75
	BezierTriangle        CellType = 76
	BezierQuadrilateral   CellType = 77
	BezierTetrahedron     CellType = 78
	BezierHexahedron      CellType = 79
	BezierWedge           CellType = 80
	BezierPyramid         CellType = 81
)

// IsLinear reports whether the cell can be handled without subdivision.
// Polyhedra are linear; convex point sets need triangulation and are not.
func (c CellType) IsLinear() bool {
	return c <= HexagonalPrism || c == Polyhedron
}

// Dimension returns the topological dimension of the cell (0..3).
// Empty cells report 0.
func (c CellType) Dimension() int {
	switch c {
	case EmptyCell, Vertex, PolyVertex:
		return 0
	case Line, PolyLine, QuadraticEdge, CubicLine, LagrangeCurve, BezierCurve:
		return 1
	case Triangle, TriangleStrip, Polygon, Pixel, Quad,
		QuadraticTriangle, QuadraticQuad, BiQuadraticQuad, QuadraticLinearQuad,
		BiQuadraticTriangle, QuadraticPolygon,
		LagrangeTriangle, LagrangeQuadrilateral, BezierTriangle, BezierQuadrilateral:
		return 2
	default:
		return 3
	}
}

// String returns the cell type name.
func (c CellType) String() string {
	switch c {
	case EmptyCell:
		return "empty"
	case Vertex:
		return "vertex"
	case PolyVertex:
		return "polyvertex"
	case Line:
		return "line"
	case PolyLine:
		return "polyline"
	case Triangle:
		return "triangle"
	case TriangleStrip:
		return "trianglestrip"
	case Polygon:
		return "polygon"
	case Pixel:
		return "pixel"
	case Quad:
		return "quad"
	case Tetra:
		return "tetra"
	case Voxel:
		return "voxel"
	case Hexahedron:
		return "hexahedron"
	case Wedge:
		return "wedge"
	case Pyramid:
		return "pyramid"
	case PentagonalPrism:
		return "pentagonalprism"
	case HexagonalPrism:
		return "hexagonalprism"
	case ConvexPointSet:
		return "convexpointset"
	case Polyhedron:
		return "polyhedron"
	}
	if !c.IsLinear() {
		return "nonlinear(" + strconv.Itoa(int(c)) + ")"
	}
	return "unknown(" + strconv.Itoa(int(c)) + ")"
}

// Local face tables of the linear 3D cells, as indices into the cell's
// point list. Faces are wound so their normals point out of the cell.
var (
	tetraFaces = [][]int{
		{0, 1, 3}, {1, 2, 3}, {2, 0, 3}, {0, 2, 1},
	}
	voxelFaces = [][]int{
		{0, 4, 6, 2}, {1, 3, 7, 5}, {0, 1, 5, 4},
		{2, 6, 7, 3}, {0, 2, 3, 1}, {4, 5, 7, 6},
	}
	hexahedronFaces = [][]int{
		{0, 4, 7, 3}, {1, 2, 6, 5}, {0, 1, 5, 4},
		{3, 7, 6, 2}, {0, 3, 2, 1}, {4, 5, 6, 7},
	}
	wedgeFaces = [][]int{
		{0, 1, 2}, {3, 5, 4}, {0, 3, 4, 1}, {1, 4, 5, 2}, {2, 5, 3, 0},
	}
	pyramidFaces = [][]int{
		{0, 3, 2, 1}, {0, 1, 4}, {1, 2, 4}, {2, 3, 4}, {3, 0, 4},
	}
	pentagonalPrismFaces = [][]int{
		{0, 4, 3, 2, 1}, {5, 6, 7, 8, 9},
		{0, 1, 6, 5}, {1, 2, 7, 6}, {2, 3, 8, 7}, {3, 4, 9, 8}, {4, 0, 5, 9},
	}
	hexagonalPrismFaces = [][]int{
		{0, 5, 4, 3, 2, 1}, {6, 7, 8, 9, 10, 11},
		{0, 1, 7, 6}, {1, 2, 8, 7}, {2, 3, 9, 8}, {3, 4, 10, 9}, {4, 5, 11, 10}, {5, 0, 6, 11},
	}
)

// faceTable returns the local face table of a linear 3D cell type, or nil
// for polyhedra and every other type.
func faceTable(c CellType) [][]int {
	switch c {
	case Tetra:
		return tetraFaces
	case Voxel:
		return voxelFaces
	case Hexahedron:
		return hexahedronFaces
	case Wedge:
		return wedgeFaces
	case Pyramid:
		return pyramidFaces
	case PentagonalPrism:
		return pentagonalPrismFaces
	case HexagonalPrism:
		return hexagonalPrismFaces
	}
	return nil
}

// cellSize returns the number of points a cell of type c must have, or 0
// when the type allows any count. Face tables and the pixel reordering
// index into cells of these types without bounds checks.
func cellSize(c CellType) int {
	switch c {
	case Tetra, Pixel:
		return 4
	case Voxel, Hexahedron:
		return 8
	case Wedge:
		return 6
	case Pyramid:
		return 5
	case PentagonalPrism:
		return 10
	case HexagonalPrism:
		return 12
	}
	return 0
}

// checkCellSize reports a cell whose point count does not fit its type.
func checkCellSize(cellID int64, c CellType, numPoints int) error {
	if want := cellSize(c); want != 0 && numPoints != want {
		return fmt.Errorf("%w: %s cell %d has %d points, want %d",
			skinerrors.ErrInvalidInput, c, cellID, numPoints, want)
	}
	return nil
}

// primitiveKind returns the output block a lower-dimensional cell belongs to.
func primitiveKind(c CellType) (kind, bool) {
	switch c {
	case Vertex, PolyVertex:
		return kindVerts, true
	case Line, PolyLine:
		return kindLines, true
	case Triangle, Polygon, Pixel, Quad:
		return kindPolys, true
	case TriangleStrip:
		return kindStrips, true
	}
	return 0, false
}

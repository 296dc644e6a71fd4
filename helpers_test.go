package meshskin

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

// newTestRNG returns a generator seeded from the test name so every test
// sees its own reproducible sequence.
func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return rand.New(rand.NewPCG(testSeed1^s1, testSeed2^s2))
}

// hexBlock builds an nx x ny x nz block of unit hexahedra. Points and cells
// are numbered i fastest, matching imageBlock.
func hexBlock(nx, ny, nz int) *UnstructuredGrid {
	px, py, pz := nx+1, ny+1, nz+1
	xyz := make([]float64, 0, 3*px*py*pz)
	for k := range pz {
		for j := range py {
			for i := range px {
				xyz = append(xyz, float64(i), float64(j), float64(k))
			}
		}
	}
	id := func(i, j, k int) int64 {
		return int64(i + px*(j+py*k))
	}
	ug := &UnstructuredGrid{
		Points:  NewPoints64(xyz),
		Offsets: []int64{0},
	}
	for k := range nz {
		for j := range ny {
			for i := range nx {
				ug.Connectivity = append(ug.Connectivity,
					id(i, j, k), id(i+1, j, k), id(i+1, j+1, k), id(i, j+1, k),
					id(i, j, k+1), id(i+1, j, k+1), id(i+1, j+1, k+1), id(i, j+1, k+1))
				ug.Offsets = append(ug.Offsets, int64(len(ug.Connectivity)))
				ug.Types = append(ug.Types, Hexahedron)
			}
		}
	}
	return ug
}

// imageBlock builds image data with nx x ny x nz unit cells.
func imageBlock(nx, ny, nz int) *StructuredGrid {
	return &StructuredGrid{
		Kind:    ImageData,
		Extent:  [6]int{0, nx, 0, ny, 0, nz},
		Spacing: [3]float64{1, 1, 1},
	}
}

// randomBlanking hides roughly ratio of numCells cells.
func randomBlanking(rng *rand.Rand, numCells int, ratio float64) []uint8 {
	g := make([]uint8, numCells)
	for c := range g {
		if rng.Float64() < ratio {
			g[c] = HiddenCell
		}
	}
	return g
}

// opaque hides the concrete dataset type so Extract takes the generic path.
type opaque struct {
	Dataset
}

func extractT(t *testing.T, input Dataset, opts ...Option) *PolyData {
	t.Helper()
	out, err := Extract(context.Background(), input, opts...)
	require.NoError(t, err)
	require.NotNil(t, out)
	return out
}

// sortedFaces returns every polygon of pd as its sorted input point ids,
// in lexicographic order. Output ids are mapped back through the original
// point ids array when one is attached.
func sortedFaces(pd *PolyData) [][]int64 {
	origin := pd.PointAttributes.IdArray(DefaultOriginalPointIdsName)
	var faces [][]int64
	for i := range numberOfCells(pd.Polys) {
		f := pd.Polys.AppendCell(nil, i)
		if origin != nil {
			for j, id := range f {
				f[j] = origin.Ids[id]
			}
		}
		slices.Sort(f)
		faces = append(faces, f)
	}
	slices.SortFunc(faces, slices.Compare[[]int64])
	return faces
}

// cellsOf returns the point ids of every cell of block b.
func cellsOf(b CellArray) [][]int64 {
	var out [][]int64
	for i := range numberOfCells(b) {
		out = append(out, b.AppendCell(nil, i))
	}
	return out
}

// outwardFacing reports whether the polygon normal of face points away
// from center. The face is assumed planar and convex.
func outwardFacing(pd *PolyData, face []int64, center [3]float64) bool {
	p0, p1, p2 := pd.Points.Point(int(face[0])), pd.Points.Point(int(face[1])), pd.Points.Point(int(face[2]))
	u := [3]float64{p1[0] - p0[0], p1[1] - p0[1], p1[2] - p0[2]}
	v := [3]float64{p2[0] - p0[0], p2[1] - p0[1], p2[2] - p0[2]}
	n := [3]float64{u[1]*v[2] - u[2]*v[1], u[2]*v[0] - u[0]*v[2], u[0]*v[1] - u[1]*v[0]}

	var c [3]float64
	for _, id := range face {
		p := pd.Points.Point(int(id))
		for a := range 3 {
			c[a] += p[a] / float64(len(face))
		}
	}
	return n[0]*(c[0]-center[0])+n[1]*(c[1]-center[1])+n[2]*(c[2]-center[2]) > 0
}

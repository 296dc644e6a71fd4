package meshskin

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	skinerrors "github.com/tamirms/meshskin/errors"
)

func TestCellRoles(t *testing.T) {
	ug := hexBlock(4, 1, 1)
	ug.CellGhostFlags = []uint8{0, DuplicateCell, HiddenCell, RefinedCell | DuplicateCell}

	tests := []struct {
		name string
		opts []Option
		want []role
	}{
		{"Default", nil, []role{roleOwned, roleGhost, roleSkip, roleSkip}},
		{"KeepInterfaces", []Option{WithRemoveGhostInterfaces(false)}, []role{roleOwned, roleSkip, roleSkip, roleSkip}},
		{"CellClipping", []Option{WithCellClipping(1, 3)}, []role{roleSkip, roleGhost, roleSkip, roleSkip}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := newConfig(tt.opts)
			require.NoError(t, err)
			f := newCellFilter(cfg, ug)
			assert.True(t, f.masksCells())
			roles, err := f.roles(context.Background(), 2, func(c int64, dst []int64) []int64 {
				return append(dst, ug.cellPoints(c)...)
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, roles)
		})
	}

	t.Run("Unmasked", func(t *testing.T) {
		cfg, err := newConfig(nil)
		require.NoError(t, err)
		plain := hexBlock(2, 1, 1)
		plain.CellGhostFlags = []uint8{ExteriorCell, HighConnectivityCell}
		assert.False(t, newCellFilter(cfg, plain).masksCells())
	})
}

func TestHashLinks(t *testing.T) {
	// Two hexahedra plus a triangle on the free x=2 face.
	ug := hexBlock(2, 1, 1)
	ug.Connectivity = append(ug.Connectivity, 2, 5, 11)
	ug.Offsets = append(ug.Offsets, int64(len(ug.Connectivity)))
	ug.Types = append(ug.Types, Triangle)

	roles := []role{roleOwned, roleOwned, roleOwned}
	links, err := buildHashLinks(context.Background(), ug, roles, 2)
	require.NoError(t, err)

	total := 0
	for b := range int64(12) {
		total += links.NumberOfFacesInHash(b)
		for i, c := range links.CellIdsOfFacesInHash(b) {
			face := ug.appendFace(nil, c, int(links.FaceIdsOfFacesInHash(b)[i]))
			assert.Equal(t, b, minID(face), "face keyed on its minimum point")
		}
	}
	assert.Equal(t, 12, total)
	assert.Equal(t, []int64{2}, links.sentinel())

	// Bucket 1 holds the shared face from both sides.
	assert.Equal(t, []int64{0, 1, 1, 1}, links.CellIdsOfFacesInHash(1))

	roles[1] = roleSkip
	links, err = buildHashLinks(context.Background(), ug, roles, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{0}, links.CellIdsOfFacesInHash(1))
}

func TestBoxWalkerItems(t *testing.T) {
	sg := imageBlock(4, 3, 2)
	bw := newBoxWalker(sg, nil, false, false)
	assert.Equal(t, int64(2*(3*2+2*4+4*3)), bw.numItems())

	seen := map[[3]int]int{}
	for it := range bw.numItems() {
		a, side, n := bw.item(it)
		require.Zero(t, n[a])
		require.Less(t, n[(a+1)%3], bw.cells[(a+1)%3])
		require.Less(t, n[(a+2)%3], bw.cells[(a+2)%3])
		seen[[3]int{a, side, int(bw.cellID(n))}]++
	}
	for k, v := range seen {
		assert.Equal(t, 1, v, "item %v decoded twice", k)
	}
	assert.Len(t, seen, int(bw.numItems()))
}

func TestAccumulator(t *testing.T) {
	acc := newAccumulators(1, nil)[0]
	acc.appendPrimitive(Pixel, []int64{0, 1, 2, 3}, 7)
	acc.appendPrimitive(Line, []int64{4, 5}, 8)
	acc.appendPrimitive(Tetra, []int64{0, 1, 2, 3}, 9)
	acc.AppendFace([]int64{6, 7, 8}, 10)

	polys := &acc.streams[kindPolys]
	assert.Equal(t, int64(2), polys.numCells())
	assert.Equal(t, int64(7), polys.conn)
	assert.Equal(t, []int64{7, 10}, polys.origins)

	var got [][]int64
	polys.each(func(_ int64, ids []int64) {
		got = append(got, append([]int64(nil), ids...))
	})
	assert.Equal(t, [][]int64{{0, 1, 3, 2}, {6, 7, 8}}, got)
	assert.Equal(t, int64(1), acc.streams[kindLines].numCells())
	assert.Zero(t, acc.streams[kindVerts].numCells())
}

func TestExcludedFacesLookup(t *testing.T) {
	faces := &PolyData{Polys: NewCells[int32]([]int64{5, 2, 9}, []int64{1, 3, 4, 0})}
	ex, err := buildExcludedFaces(context.Background(), faces, 10, 2)
	require.NoError(t, err)

	var buf []int64
	for _, tc := range []struct {
		ids  []int64
		want bool
	}{
		{[]int64{2, 9, 5}, true},
		{[]int64{9, 2, 5}, true},
		{[]int64{0, 1, 3, 4}, true},
		{[]int64{4, 3, 1, 0}, true},
		{[]int64{0, 1, 4, 3}, false},
		{[]int64{2, 9}, false},
		{[]int64{6, 7, 8}, false},
	} {
		var found bool
		found, buf = ex.contains(tc.ids, buf)
		assert.Equal(t, tc.want, found, "%v", tc.ids)
	}

	acc := newAccumulators(1, ex)[0]
	acc.AppendFace([]int64{9, 5, 2}, 0)
	acc.AppendFace([]int64{6, 7, 8}, 1)
	assert.Equal(t, []int64{1}, acc.streams[kindPolys].origins)

	none, err := buildExcludedFaces(context.Background(), &PolyData{}, 10, 2)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestPointMap(t *testing.T) {
	accs := newAccumulators(2, nil)
	accs[0].appendCell(kindPolys, []int64{8, 3, 5}, 0)
	accs[1].appendCell(kindLines, []int64{5, 1}, 1)
	accs[1].appendCell(kindVerts, []int64{8}, 2)

	pm, err := buildPointMap(context.Background(), accs, 10, 2)
	require.NoError(t, err)
	assert.False(t, pm.identity())
	assert.Equal(t, int64(4), pm.n)
	assert.Equal(t, []int64{1, 3, 5, 8}, pm.inverse)
	for i, id := range pm.inverse {
		assert.Equal(t, int64(i), pm.remap(id))
		assert.Equal(t, id, pm.origin(int64(i)))
	}
	assert.Equal(t, int64(-1), pm.remap(0))

	id := identityPointMap(4)
	assert.True(t, id.identity())
	assert.Equal(t, int64(3), id.remap(3))
	assert.Equal(t, int64(2), id.origin(2))
}

func TestCompositor(t *testing.T) {
	accs := newAccumulators(2, nil)
	accs[0].appendCell(kindPolys, []int64{0, 1, 2}, 10)
	accs[0].appendCell(kindVerts, []int64{4}, 11)
	accs[1].appendCell(kindPolys, []int64{2, 3, 4, 5}, 12)
	accs[1].appendCell(kindLines, []int64{1, 5}, 13)

	l := reduce(accs)
	assert.Equal(t, int64(4), l.totalCells())
	assert.Equal(t, int64(10), l.totalConn())
	assert.Equal(t, [numKinds]int64{0, 1, 2, 4}, l.base)
	assert.Equal(t, []int64{0, 1}, l.cellStart[kindPolys])
	assert.Equal(t, []int64{0, 3}, l.connStart[kindPolys])

	input := &UnstructuredGrid{
		Points:         NewPoints64(make([]float64, 18)),
		Types:          make([]CellType, 14),
		CellGhostFlags: make([]uint8, 14),
	}
	input.CellGhostFlags[12] = ExteriorCell

	c, err := composite[int32](context.Background(), input, accs, l, identityPointMap(6))
	require.NoError(t, err)
	assert.Equal(t, []int64{11, 13, 10, 12}, c.origins)
	assert.Equal(t, []int32{0, 3, 7}, c.blocks[kindPolys].Offsets)
	assert.Equal(t, []int32{0, 1, 2, 2, 3, 4, 5}, c.blocks[kindPolys].Connectivity)
	assert.Equal(t, 0, c.blocks[kindStrips].NumberOfCells())
	assert.Equal(t, []uint8{0, 0, 0, ExteriorCell}, c.cellGhosts)
}

func TestChooseIDWidth(t *testing.T) {
	tests := []struct {
		name                string
		requested           IDWidth
		conn, cells, points int64
		want                IDWidth
	}{
		{"AutoSmall", IDWidthAuto, 100, 10, 10, IDWidth32},
		{"AutoWideConnectivity", IDWidthAuto, math.MaxInt32 + 1, 10, 10, IDWidth64},
		{"AutoWideCells", IDWidthAuto, 100, math.MaxInt32, 10, IDWidth64},
		{"AutoWidePoints", IDWidthAuto, 100, 10, math.MaxInt32 + 1, IDWidth64},
		{"Forced64", IDWidth64, 1, 1, 1, IDWidth64},
		{"Forced32", IDWidth32, math.MaxInt32, 1, 1, IDWidth32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := chooseIDWidth(tt.requested, tt.conn, tt.cells, tt.points)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("Forced32Overflow", func(t *testing.T) {
		for _, sizes := range [][3]int64{
			{math.MaxInt32 + 1, 1, 1},
			{1, math.MaxInt32, 1},
			{1, 1, math.MaxInt32 + 1},
		} {
			_, err := chooseIDWidth(IDWidth32, sizes[0], sizes[1], sizes[2])
			assert.ErrorIs(t, err, skinerrors.ErrInvalidOption, "%v", sizes)
		}
	})
}

package synth

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamirms/meshskin"
	"github.com/tamirms/meshskin/internal/meshfile"
)

func TestBlanking(t *testing.T) {
	b := Block{NX: 20, NY: 20, NZ: 20, BlankRatio: 0.25, Seed: 7}
	hidden := 0
	for c := range int64(b.NumberOfCells()) {
		if b.Blanked(c) {
			hidden++
		}
		require.Equal(t, b.Blanked(c), b.Blanked(c))
	}
	ratio := float64(hidden) / float64(b.NumberOfCells())
	assert.InDelta(t, 0.25, ratio, 0.05)

	other := b
	other.Seed = 8
	differs := false
	for c := range int64(b.NumberOfCells()) {
		if b.Blanked(c) != other.Blanked(c) {
			differs = true
			break
		}
	}
	assert.True(t, differs, "seed changes the blanking")

	assert.False(t, Block{NX: 2, NY: 2, NZ: 2}.Blanked(0))
	assert.Nil(t, Block{NX: 2, NY: 2, NZ: 2}.Mesh().CellGhosts)
}

func TestMeshAndStructuredAgree(t *testing.T) {
	b := Block{NX: 6, NY: 5, NZ: 4, BlankRatio: 0.3, Seed: 42}
	ctx := context.Background()

	m := b.Mesh()
	assert.Len(t, m.Types, b.NumberOfCells())
	assert.Equal(t, 7*6*5, m.NumberOfPoints())

	fromMesh, err := meshskin.Extract(ctx, UnstructuredGrid(m), meshskin.WithWorkers(1))
	require.NoError(t, err)
	fromGrid, err := meshskin.Extract(ctx, b.Structured(), meshskin.WithWorkers(1))
	require.NoError(t, err)
	assert.Equal(t, fromMesh.Polys.NumberOfCells(), fromGrid.Polys.NumberOfCells())
	assert.Equal(t, fromMesh.NumberOfPoints(), fromGrid.NumberOfPoints())
}

func TestSnapshotRoundTrip(t *testing.T) {
	b := Block{NX: 8, NY: 8, NZ: 8, BlankRatio: 0.1, Seed: 3}
	path := filepath.Join(t.TempDir(), "block.mskn")
	require.NoError(t, meshfile.Write(path, b.Mesh()))

	f, err := meshfile.Open(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, f.Verify())
	m, err := f.Mesh()
	require.NoError(t, err)

	ctx := context.Background()
	want, err := meshskin.Extract(ctx, UnstructuredGrid(b.Mesh()), meshskin.WithMergePoints(true))
	require.NoError(t, err)
	got, err := meshskin.Extract(ctx, UnstructuredGrid(m), meshskin.WithMergePoints(true))
	require.NoError(t, err)
	assert.Equal(t, want.Digest(), got.Digest())
}

package facepool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collectSink struct {
	faces [][]int64
	cells []int64
}

func (s *collectSink) AppendFace(ids []int64, cellID int64) {
	s.faces = append(s.faces, append([]int64(nil), ids...))
	s.cells = append(s.cells, cellID)
}

func TestPoolAllocateGrowsChunks(t *testing.T) {
	p := NewPool(minChunkWords)
	var refs []Ref
	for i := range 100 {
		r, err := p.Allocate(4)
		require.NoError(t, err)
		p.SetOwner(r, int64(i), i%2 == 0)
		copy(p.IDs(r), []int64{int64(i), 1, 2, 3})
		refs = append(refs, r)
	}
	require.Greater(t, p.NumChunks(), 1)

	// Records stay intact across chunk growth.
	for i, r := range refs {
		assert.Equal(t, int64(i), p.CellID(r))
		assert.Equal(t, i%2 == 0, p.Ghost(r))
		assert.Equal(t, []int64{int64(i), 1, 2, 3}, p.IDs(r))
		assert.Equal(t, NoRef, p.Next(r))
	}
}

func TestPoolResetReusesChunks(t *testing.T) {
	p := NewPool(minChunkWords)
	for range 50 {
		_, err := p.Allocate(8)
		require.NoError(t, err)
	}
	chunks := p.NumChunks()

	p.ResetIndices()
	for range 50 {
		_, err := p.Allocate(8)
		require.NoError(t, err)
	}
	assert.Equal(t, chunks, p.NumChunks(), "reset must reuse chunks instead of growing")
}

func TestPoolOversizedRecord(t *testing.T) {
	p := NewPool(minChunkWords)
	_, err := p.Allocate(3)
	require.NoError(t, err)

	big := make([]int64, 5*minChunkWords)
	for i := range big {
		big[i] = int64(i)
	}
	r, err := p.Allocate(len(big))
	require.NoError(t, err)
	copy(p.IDs(r), big)
	assert.Equal(t, big, p.IDs(r))

	// After a rewind, a small first chunk is still followed by room for
	// the big record.
	p.ResetIndices()
	_, err = p.Allocate(3)
	require.NoError(t, err)
	r, err = p.Allocate(len(big))
	require.NoError(t, err)
	assert.Len(t, p.IDs(r), len(big))
}

func TestPoolRejectsNegative(t *testing.T) {
	_, err := NewPool(0).Allocate(-1)
	require.Error(t, err)
}

func TestListInsertCancel(t *testing.T) {
	l := NewList(NewPool(0))

	added, err := l.Insert([]int64{4, 7, 9, 5}, 0, false)
	require.NoError(t, err)
	assert.True(t, added)

	// Same face seen from the neighbor: reversed winding, different rotation.
	added, err = l.Insert([]int64{9, 7, 4, 5}, 1, false)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Zero(t, l.Len())

	// A third reference re-exposes the face.
	added, err = l.Insert([]int64{5, 4, 7, 9}, 2, false)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, 1, l.Len())
}

func TestListDistinctFacesSurvive(t *testing.T) {
	l := NewList(NewPool(0))
	faces := [][]int64{
		{3, 8, 6},
		{3, 6, 9},
		{3, 9, 8, 10},
		{3, 6, 8}, // cancels the first
	}
	for i, f := range faces {
		_, err := l.Insert(f, int64(i), false)
		require.NoError(t, err)
	}

	var sink collectSink
	l.PopulateCellArray(&sink)
	assert.Equal(t, [][]int64{{3, 6, 9}, {3, 9, 8, 10}}, sink.faces)
	assert.Equal(t, []int64{1, 2}, sink.cells)
}

func TestListGhostFacesCancelButAreNotEmitted(t *testing.T) {
	l := NewList(NewPool(0))
	_, err := l.Insert([]int64{1, 2, 3}, 0, false)
	require.NoError(t, err)
	_, err = l.Insert([]int64{3, 2, 1}, 1, true)
	require.NoError(t, err)
	_, err = l.Insert([]int64{1, 4, 5}, 1, true)
	require.NoError(t, err)

	var sink collectSink
	l.PopulateCellArray(&sink)
	assert.Empty(t, sink.faces)
	assert.Equal(t, 1, l.Len())
}

func TestListResetThenReuse(t *testing.T) {
	l := NewList(NewPool(minChunkWords))
	for bucket := range 20 {
		l.Reset()
		for f := range 10 {
			_, err := l.Insert([]int64{int64(bucket), int64(100 + f), int64(200 + f)}, int64(f), false)
			require.NoError(t, err)
		}
		var sink collectSink
		l.PopulateCellArray(&sink)
		require.Len(t, sink.faces, 10)
		for f, face := range sink.faces {
			require.Equal(t, []int64{int64(bucket), int64(100 + f), int64(200 + f)}, face)
		}
	}
}

func TestListTailAfterCancel(t *testing.T) {
	l := NewList(NewPool(0))
	_, _ = l.Insert([]int64{1, 2, 3}, 0, false)
	_, _ = l.Insert([]int64{1, 5, 6}, 1, false)
	_, _ = l.Insert([]int64{1, 6, 5}, 2, false) // removes the tail
	_, _ = l.Insert([]int64{1, 7, 8}, 3, false)

	var sink collectSink
	l.PopulateCellArray(&sink)
	assert.Equal(t, [][]int64{{1, 2, 3}, {1, 7, 8}}, sink.faces)
}

func TestCanonicalizeAndEqual(t *testing.T) {
	a := Canonicalize(nil, []int64{7, 9, 2, 4})
	assert.Equal(t, []int64{2, 4, 7, 9}, a)

	b := Canonicalize(nil, []int64{4, 2, 9, 7})
	assert.Equal(t, []int64{2, 9, 7, 4}, b)
	assert.True(t, Equal(a, b), "reversed winding must match")

	c := Canonicalize(nil, []int64{2, 7, 4, 9})
	assert.False(t, Equal(a, c), "different vertex order is a different face")

	assert.False(t, Equal(a, []int64{2, 4, 7}))
}

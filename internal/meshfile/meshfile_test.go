package meshfile

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	skinerrors "github.com/tamirms/meshskin/errors"
)

const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return rand.New(rand.NewPCG(testSeed1^s1, testSeed2^s2))
}

// randomMesh builds a tetrahedral soup with numCells cells.
func randomMesh(rng *rand.Rand, numPoints, numCells int, ghosts bool) *Mesh {
	m := &Mesh{
		Points64: make([]float64, 3*numPoints),
		Offsets:  make([]int64, 1, numCells+1),
		Types:    make([]uint8, numCells),
	}
	for i := range m.Points64 {
		m.Points64[i] = rng.Float64()
	}
	for c := range numCells {
		for range 4 {
			m.Connectivity = append(m.Connectivity, rng.Int64N(int64(numPoints)))
		}
		m.Offsets = append(m.Offsets, int64(len(m.Connectivity)))
		m.Types[c] = 10
	}
	if ghosts {
		m.CellGhosts = make([]uint8, numCells)
		for c := range m.CellGhosts {
			m.CellGhosts[c] = uint8(rng.IntN(2))
		}
	}
	return m
}

func writeTemp(t *testing.T, m *Mesh) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mesh.mskn")
	require.NoError(t, Write(path, m))
	return path
}

func TestWriteOpenRoundTrip(t *testing.T) {
	for _, ghosts := range []bool{false, true} {
		t.Run(map[bool]string{false: "NoGhosts", true: "Ghosts"}[ghosts], func(t *testing.T) {
			rng := newTestRNG(t)
			want := randomMesh(rng, 97, 211, ghosts)
			path := writeTemp(t, want)

			f, err := Open(path)
			require.NoError(t, err)
			defer f.Close()
			require.NoError(t, f.Verify())

			got, err := f.Mesh()
			require.NoError(t, err)
			assert.Equal(t, want.Points64, got.Points64)
			assert.Equal(t, want.Offsets, got.Offsets)
			assert.Equal(t, want.Connectivity, got.Connectivity)
			assert.Equal(t, want.Types, got.Types)
			assert.Equal(t, want.CellGhosts, got.CellGhosts)
			assert.Nil(t, got.Points32)
		})
	}
}

func TestFloat32Points(t *testing.T) {
	want := &Mesh{
		Points32:     []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Offsets:      []int64{0, 3},
		Connectivity: []int64{0, 1, 2},
		Types:        []uint8{5},
	}
	data, err := os.ReadFile(writeTemp(t, want))
	require.NoError(t, err)

	f, err := OpenBytes(data)
	require.NoError(t, err)
	got, err := f.Mesh()
	require.NoError(t, err)
	assert.Equal(t, want.Points32, got.Points32)
	assert.Equal(t, 3, got.NumberOfPoints())
	assert.Nil(t, got.Points64)
}

func TestEmptyMesh(t *testing.T) {
	path := writeTemp(t, &Mesh{Offsets: []int64{0}})
	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, int64(minFileSize), f.Size())
	require.NoError(t, f.Verify())
}

func TestWriteRejectsInconsistentMesh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.mskn")
	err := Write(path, &Mesh{Offsets: []int64{0}, Types: []uint8{12}})
	require.ErrorIs(t, err, skinerrors.ErrInvalidInput)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "nothing is created for an invalid mesh")
}

func TestCorruptionDetection(t *testing.T) {
	rng := newTestRNG(t)
	valid, err := os.ReadFile(writeTemp(t, randomMesh(rng, 50, 80, true)))
	require.NoError(t, err)

	corrupt := func(edit func([]byte) []byte) []byte {
		b := make([]byte, len(valid))
		copy(b, valid)
		return edit(b)
	}

	t.Run("BodyByte", func(t *testing.T) {
		f, err := OpenBytes(corrupt(func(b []byte) []byte {
			b[headerSize+5] ^= 0xFF
			return b
		}))
		require.NoError(t, err)
		assert.ErrorIs(t, f.Verify(), skinerrors.ErrChecksumFailed)
	})

	t.Run("FooterHash", func(t *testing.T) {
		f, err := OpenBytes(corrupt(func(b []byte) []byte {
			b[len(b)-footerSize] ^= 0x01
			return b
		}))
		require.NoError(t, err)
		assert.ErrorIs(t, f.Verify(), skinerrors.ErrChecksumFailed)
	})

	t.Run("Magic", func(t *testing.T) {
		_, err := OpenBytes(corrupt(func(b []byte) []byte {
			b[0] ^= 0xFF
			return b
		}))
		assert.ErrorIs(t, err, skinerrors.ErrInvalidMagic)
	})

	t.Run("Version", func(t *testing.T) {
		_, err := OpenBytes(corrupt(func(b []byte) []byte {
			binary.LittleEndian.PutUint16(b[4:6], version+1)
			return b
		}))
		assert.ErrorIs(t, err, skinerrors.ErrInvalidVersion)
	})

	t.Run("Truncated", func(t *testing.T) {
		_, err := OpenBytes(valid[:len(valid)-8])
		assert.ErrorIs(t, err, skinerrors.ErrTruncatedFile)
	})

	t.Run("TrailingBytes", func(t *testing.T) {
		_, err := OpenBytes(append(corrupt(func(b []byte) []byte { return b }), make([]byte, 8)...))
		assert.ErrorIs(t, err, skinerrors.ErrCorruptedFile)
	})

	t.Run("UnknownFlag", func(t *testing.T) {
		_, err := OpenBytes(corrupt(func(b []byte) []byte {
			binary.LittleEndian.PutUint16(b[6:8], 0x80)
			return b
		}))
		assert.ErrorIs(t, err, skinerrors.ErrCorruptedFile)
	})
}

func TestClosedFile(t *testing.T) {
	f, err := Open(writeTemp(t, &Mesh{Offsets: []int64{0}}))
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.NoError(t, f.Close(), "Close is idempotent")

	_, err = f.Mesh()
	assert.ErrorIs(t, err, skinerrors.ErrFileClosed)
	assert.ErrorIs(t, f.Verify(), skinerrors.ErrFileClosed)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.mskn"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

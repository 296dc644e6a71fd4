package encoding

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Named seeds for deterministic reproduction.
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

// alignedBuf returns n bytes starting on an 8-byte boundary.
func alignedBuf(n int) []byte {
	words := make([]uint64, (n+7)/8+1)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), 8*len(words))
	return b[:n]
}

func TestAlign8(t *testing.T) {
	for n, want := range map[uint64]uint64{0: 0, 1: 8, 7: 8, 8: 8, 9: 16, 64: 64} {
		assert.Equal(t, want, Align8(n), "Align8(%d)", n)
	}
}

func TestInt64sRoundTripAligned(t *testing.T) {
	rng := newTestRNG(t)
	v := make([]int64, 257)
	for i := range v {
		v[i] = int64(rng.Uint64())
	}
	buf := alignedBuf(8 * len(v))
	require.Equal(t, len(buf), PutInt64s(buf, v))

	view, ok := ViewInt64s(buf)
	require.True(t, ok)
	assert.Equal(t, v, view)

	// The view aliases the buffer.
	binary.LittleEndian.PutUint64(buf, 42)
	assert.Equal(t, int64(42), view[0])
}

func TestMisalignedFallsBackToCopy(t *testing.T) {
	v := []float64{1.5, -2.25, math.Inf(1), 0}
	buf := alignedBuf(8*len(v) + 1)[1:]
	PutFloat64s(buf, v)

	_, ok := ViewFloat64s(buf)
	assert.False(t, ok)
	assert.Equal(t, v, Float64s(buf))
}

func TestFloat32sRoundTrip(t *testing.T) {
	rng := newTestRNG(t)
	v := make([]float32, 99)
	for i := range v {
		v[i] = rng.Float32()
	}
	buf := alignedBuf(4 * len(v))
	require.Equal(t, len(buf), PutFloat32s(buf, v))
	assert.Equal(t, v, Float32s(buf))
	assert.Equal(t, v, DecodeFloat32s(buf))
}

func TestViewRejectsPartialElements(t *testing.T) {
	_, ok := ViewInt64s(alignedBuf(12))
	assert.False(t, ok)
}

func TestEmptySections(t *testing.T) {
	v, ok := ViewInt64s(nil)
	require.True(t, ok)
	assert.Empty(t, v)
	assert.Empty(t, Float64s(nil))
}

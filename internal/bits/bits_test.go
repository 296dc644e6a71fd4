package bits

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"testing"

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

// TestSplitRangeCovers verifies that the parts of a split tile [0, n)
// contiguously and in order, with lengths differing by at most one.
func TestSplitRangeCovers(t *testing.T) {
	rng := newTestRNG(t)
	const iterations = 2000

	for i := 0; i < iterations; i++ {
		n := rng.Int64N(100_000)
		parts := rng.IntN(64) + 1

		var next int64
		minLen, maxLen := int64(math.MaxInt64), int64(0)
		for p := range parts {
			begin, end := SplitRange(n, parts, p)
			require.Equal(t, next, begin, "iter %d part %d: gap or overlap", i, p)
			require.LessOrEqual(t, begin, end)
			minLen = min(minLen, end-begin)
			maxLen = max(maxLen, end-begin)
			next = end
		}
		require.Equal(t, n, next, "iter %d: split does not end at n", i)
		require.LessOrEqual(t, maxLen-minLen, int64(1))
	}
}

// TestSplitRangeLarge checks that huge ranges do not overflow.
func TestSplitRangeLarge(t *testing.T) {
	n := int64(math.MaxInt64)
	begin, end := SplitRange(n, 7, 6)
	require.Equal(t, n, end)
	require.Less(t, begin, end)

	begin, end = SplitRange(0, 4, 2)
	require.Zero(t, begin)
	require.Zero(t, end)
}

func TestExclusiveScan(t *testing.T) {
	counts := []int64{3, 0, 2, 5}
	total := ExclusiveScan(counts)
	require.Equal(t, int64(10), total)
	require.Equal(t, []int64{0, 3, 3, 5}, counts)

	require.Zero(t, ExclusiveScan(nil))
}

func TestFitsInt32(t *testing.T) {
	require.True(t, FitsInt32(0))
	require.True(t, FitsInt32(math.MaxInt32))
	require.False(t, FitsInt32(math.MaxInt32+1))
	require.True(t, FitsInt32(math.MinInt32))
	require.False(t, FitsInt32(math.MinInt32-1))
}

func TestCheckInterval(t *testing.T) {
	require.Equal(t, int64(1), CheckInterval(0))
	require.Equal(t, int64(1), CheckInterval(5))
	require.Equal(t, int64(50), CheckInterval(500))
	require.Equal(t, int64(1000), CheckInterval(1_000_000))
}

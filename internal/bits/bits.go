// Package bits provides low-level range and prefix-sum primitives shared by
// the extraction passes.
package bits

import (
	"math"
	"math/bits"
)

// SplitRange returns the half-open sub-range [begin, end) of [0, n) assigned
// to part i of parts. Ranges are contiguous, ordered by i, and differ in
// length by at most one.
// Uses a 128-bit multiply so i*n cannot overflow for any int64 n.
func SplitRange(n int64, parts, i int) (int64, int64) {
	if parts <= 0 || n <= 0 {
		return 0, 0
	}
	return scaled(n, parts, i), scaled(n, parts, i+1)
}

func scaled(n int64, parts, i int) int64 {
	hi, lo := bits.Mul64(uint64(n), uint64(i))
	q, _ := bits.Div64(hi, lo, uint64(parts))
	return int64(q)
}

// ExclusiveScan replaces counts with their exclusive prefix sum and returns
// the total. counts[0] becomes 0.
func ExclusiveScan(counts []int64) int64 {
	var sum int64
	for i, c := range counts {
		counts[i] = sum
		sum += c
	}
	return sum
}

// FitsInt32 reports whether v can be stored as an int32 id.
func FitsInt32(v int64) bool {
	return v >= math.MinInt32 && v <= math.MaxInt32
}

// CheckInterval returns how many iterations of a length-n range may run
// between cancellation checks: every 1000 iterations or 10% of the range,
// whichever is smaller, and at least 1.
func CheckInterval(n int64) int64 {
	const maxInterval = 1000
	interval := n / 10
	if interval > maxInterval {
		interval = maxInterval
	}
	if interval < 1 {
		interval = 1
	}
	return interval
}

// Package encoding converts between typed slices and little-endian byte
// sections of mesh files.
//
// The View functions reinterpret the bytes in place and are only correct on
// little-endian architectures (amd64, arm64). They return ok=false when the
// section is not aligned for the element type; callers then fall back to the
// copying Decode functions.
package encoding

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// Align8 rounds n up to a multiple of 8.
func Align8(n uint64) uint64 {
	return (n + 7) &^ 7
}

func aligned(b []byte, size uintptr) bool {
	return len(b) == 0 || uintptr(unsafe.Pointer(&b[0]))%size == 0
}

// ViewInt64s reinterprets b as int64 values without copying.
func ViewInt64s(b []byte) ([]int64, bool) {
	if len(b)%8 != 0 || !aligned(b, 8) {
		return nil, false
	}
	if len(b) == 0 {
		return []int64{}, true
	}
	return unsafe.Slice((*int64)(unsafe.Pointer(&b[0])), len(b)/8), true
}

// ViewFloat64s reinterprets b as float64 values without copying.
func ViewFloat64s(b []byte) ([]float64, bool) {
	if len(b)%8 != 0 || !aligned(b, 8) {
		return nil, false
	}
	if len(b) == 0 {
		return []float64{}, true
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(&b[0])), len(b)/8), true
}

// ViewFloat32s reinterprets b as float32 values without copying.
func ViewFloat32s(b []byte) ([]float32, bool) {
	if len(b)%4 != 0 || !aligned(b, 4) {
		return nil, false
	}
	if len(b) == 0 {
		return []float32{}, true
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&b[0])), len(b)/4), true
}

// DecodeInt64s copies little-endian int64 values out of b.
func DecodeInt64s(b []byte) []int64 {
	out := make([]int64, len(b)/8)
	for i := range out {
		out[i] = int64(binary.LittleEndian.Uint64(b[8*i:]))
	}
	return out
}

// DecodeFloat64s copies little-endian float64 values out of b.
func DecodeFloat64s(b []byte) []float64 {
	out := make([]float64, len(b)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[8*i:]))
	}
	return out
}

// DecodeFloat32s copies little-endian float32 values out of b.
func DecodeFloat32s(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return out
}

// Int64s returns b viewed as int64 values, copying only when b is
// misaligned.
func Int64s(b []byte) []int64 {
	if v, ok := ViewInt64s(b); ok {
		return v
	}
	return DecodeInt64s(b)
}

// Float64s returns b viewed as float64 values, copying only when b is
// misaligned.
func Float64s(b []byte) []float64 {
	if v, ok := ViewFloat64s(b); ok {
		return v
	}
	return DecodeFloat64s(b)
}

// Float32s returns b viewed as float32 values, copying only when b is
// misaligned.
func Float32s(b []byte) []float32 {
	if v, ok := ViewFloat32s(b); ok {
		return v
	}
	return DecodeFloat32s(b)
}

// PutInt64s writes v little-endian into dst and returns the bytes written.
func PutInt64s(dst []byte, v []int64) int {
	for i, x := range v {
		binary.LittleEndian.PutUint64(dst[8*i:], uint64(x))
	}
	return 8 * len(v)
}

// PutFloat64s writes v little-endian into dst and returns the bytes written.
func PutFloat64s(dst []byte, v []float64) int {
	for i, x := range v {
		binary.LittleEndian.PutUint64(dst[8*i:], math.Float64bits(x))
	}
	return 8 * len(v)
}

// PutFloat32s writes v little-endian into dst and returns the bytes written.
func PutFloat32s(dst []byte, v []float32) int {
	for i, x := range v {
		binary.LittleEndian.PutUint32(dst[4*i:], math.Float32bits(x))
	}
	return 4 * len(v)
}

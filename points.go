package meshskin

// Precision selects the storage type of output coordinates.
type Precision uint8

const (
	// PrecisionNative keeps the input's coordinate type. Implicit
	// coordinates (image and rectilinear grids) are generated as float64.
	PrecisionNative Precision = iota
	PrecisionFloat32
	PrecisionFloat64
)

// String returns the precision name.
func (p Precision) String() string {
	switch p {
	case PrecisionNative:
		return "native"
	case PrecisionFloat32:
		return "float32"
	case PrecisionFloat64:
		return "float64"
	default:
		return "unknown"
	}
}

// Points holds interleaved xyz coordinates. Exactly one of Float32 and
// Float64 is in use; Float64 wins when both are set.
type Points struct {
	Float32 []float32
	Float64 []float64
}

// NewPoints64 wraps interleaved float64 coordinates.
func NewPoints64(xyz []float64) *Points {
	return &Points{Float64: xyz}
}

// NewPoints32 wraps interleaved float32 coordinates.
func NewPoints32(xyz []float32) *Points {
	return &Points{Float32: xyz}
}

// Len returns the number of points.
func (p *Points) Len() int {
	if p == nil {
		return 0
	}
	if p.Float64 != nil {
		return len(p.Float64) / 3
	}
	return len(p.Float32) / 3
}

// Precision returns the storage precision of the coordinates.
func (p *Points) Precision() Precision {
	if p != nil && p.Float64 == nil && p.Float32 != nil {
		return PrecisionFloat32
	}
	return PrecisionFloat64
}

// Point returns the coordinates of point i.
func (p *Points) Point(i int) [3]float64 {
	if p.Float64 != nil {
		x := p.Float64[3*i : 3*i+3 : 3*i+3]
		return [3]float64{x[0], x[1], x[2]}
	}
	x := p.Float32[3*i : 3*i+3 : 3*i+3]
	return [3]float64{float64(x[0]), float64(x[1]), float64(x[2])}
}

// newPointsLike allocates n points of the resolved output precision.
func newPointsLike(prec Precision, n int) *Points {
	if prec == PrecisionFloat32 {
		return &Points{Float32: make([]float32, 3*n)}
	}
	return &Points{Float64: make([]float64, 3*n)}
}

// set stores point i.
func (p *Points) set(i int, x [3]float64) {
	if p.Float64 != nil {
		copy(p.Float64[3*i:3*i+3], x[:])
		return
	}
	p.Float32[3*i] = float32(x[0])
	p.Float32[3*i+1] = float32(x[1])
	p.Float32[3*i+2] = float32(x[2])
}

// resolvePrecision maps PrecisionNative onto the input precision.
func resolvePrecision(requested, native Precision) Precision {
	if requested == PrecisionNative {
		return native
	}
	return requested
}

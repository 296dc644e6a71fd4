package meshskin

import (
	"encoding/binary"
	"math"

	"github.com/zeebo/xxh3"
)

// Digest returns a 128-bit fingerprint of the mesh content: points, the
// four topology blocks and the origin id arrays. Two extractions of the same
// input with the same options and worker count have equal digests. The id
// width of the topology does not affect the digest.
func (pd *PolyData) Digest() xxh3.Uint128 {
	h := xxh3.New()
	var buf [8]byte
	word := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = h.Write(buf[:])
	}

	n := pd.NumberOfPoints()
	word(uint64(n))
	for i := range n {
		for _, x := range pd.Points.Point(i) {
			word(math.Float64bits(x))
		}
	}

	var ids []int64
	for _, b := range pd.Blocks() {
		cells := numberOfCells(b)
		word(uint64(cells))
		for i := range cells {
			ids = b.AppendCell(ids[:0], i)
			word(uint64(len(ids)))
			for _, id := range ids {
				word(uint64(id))
			}
		}
	}

	for _, attrs := range []*Attributes{pd.PointAttributes, pd.CellAttributes} {
		if attrs == nil {
			word(0)
			continue
		}
		word(uint64(len(attrs.IdArrays)))
		for _, a := range attrs.IdArrays {
			_, _ = h.WriteString(a.Name)
			word(uint64(len(a.Ids)))
			for _, id := range a.Ids {
				word(uint64(id))
			}
		}
	}
	return h.Sum128()
}

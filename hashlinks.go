package meshskin

import (
	"context"

	"github.com/tamirms/meshskin/internal/csr"
)

// hashLinks buckets the faces of an unstructured grid by their minimum
// point id. Bucket numPoints is the sentinel bucket holding every
// participating 0D/1D/2D cell; their face id is unused.
type hashLinks struct {
	table     *csr.Table
	numPoints int64
}

// buildHashLinks indexes the faces of every participating cell of ug.
func buildHashLinks(ctx context.Context, ug *UnstructuredGrid, roles []role, workers int) (*hashLinks, error) {
	numPoints := int64(ug.NumberOfPoints())
	t, err := csr.Build(ctx, numPoints+1, int64(len(ug.Types)), workers, func(c int64, yield func(int64, int32)) {
		if roles[c] == roleSkip {
			return
		}
		ct := ug.Types[c]
		switch {
		case ct == EmptyCell:
		case ct == Polyhedron:
			for f := range ug.NumberOfCellFaces(int(c)) {
				if face := ug.polyhedronFace(c, f); len(face) > 0 {
					yield(minID(face), int32(f))
				}
			}
		case ct.Dimension() == 3:
			pts := ug.cellPoints(c)
			for f, local := range faceTable(ct) {
				m := pts[local[0]]
				for _, l := range local[1:] {
					m = min(m, pts[l])
				}
				yield(m, int32(f))
			}
		default:
			yield(numPoints, 0)
		}
	})
	if err != nil {
		return nil, err
	}
	return &hashLinks{table: t, numPoints: numPoints}, nil
}

// NumberOfFacesInHash returns the number of faces keyed on bucket b.
func (h *hashLinks) NumberOfFacesInHash(b int64) int {
	return h.table.Len(b)
}

// CellIdsOfFacesInHash returns the owning cells of the faces in bucket b.
func (h *hashLinks) CellIdsOfFacesInHash(b int64) []int64 {
	return h.table.BucketSources(b)
}

// FaceIdsOfFacesInHash returns the local face ids of the faces in bucket b.
func (h *hashLinks) FaceIdsOfFacesInHash(b int64) []int32 {
	return h.table.BucketTags(b)
}

// sentinel returns the cells of the sentinel bucket.
func (h *hashLinks) sentinel() []int64 {
	return h.table.BucketSources(h.numPoints)
}

func minID(ids []int64) int64 {
	m := ids[0]
	for _, id := range ids[1:] {
		m = min(m, id)
	}
	return m
}

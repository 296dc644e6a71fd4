package meshskin

import (
	"context"
	"fmt"

	skinerrors "github.com/tamirms/meshskin/errors"
	"github.com/tamirms/meshskin/internal/csr"
	"github.com/tamirms/meshskin/internal/facepool"
	"github.com/tamirms/meshskin/internal/parallel"
)

// excludedFaces is a read-only lookup of faces that must not be emitted.
// Faces are stored canonicalized and bucketed by their minimum point id.
type excludedFaces struct {
	offsets []int64
	canon   []int64
	table   *csr.Table
}

// checkExcludedFaces validates faces against an input with numPoints points.
func checkExcludedFaces(faces *PolyData, numPoints int) error {
	if faces == nil {
		return nil
	}
	if n := numberOfCells(faces.Verts) + numberOfCells(faces.Lines) + numberOfCells(faces.Strips); n > 0 {
		return fmt.Errorf("%w: %d non-polygon cells", skinerrors.ErrExcludedFacesMismatch, n)
	}
	if faces.Points != nil && faces.Points.Len() != numPoints {
		return fmt.Errorf("%w: %d points, input has %d",
			skinerrors.ErrExcludedFacesMismatch, faces.Points.Len(), numPoints)
	}
	polys := faces.Polys
	var pts []int64
	for i := range numberOfCells(polys) {
		pts = polys.AppendCell(pts[:0], i)
		for _, p := range pts {
			if p < 0 || p >= int64(numPoints) {
				return fmt.Errorf("%w: polygon %d uses point %d outside [0,%d)",
					skinerrors.ErrExcludedFacesMismatch, i, p, numPoints)
			}
		}
	}
	return nil
}

// buildExcludedFaces indexes the polygons of faces. It returns nil when
// there is nothing to exclude.
func buildExcludedFaces(ctx context.Context, faces *PolyData, numPoints int64, workers int) (*excludedFaces, error) {
	if faces == nil || numberOfCells(faces.Polys) == 0 {
		return nil, nil
	}
	polys := faces.Polys
	n := numberOfCells(polys)

	ex := &excludedFaces{offsets: make([]int64, n+1)}
	for i := range n {
		ex.offsets[i+1] = ex.offsets[i] + int64(polys.CellSize(i))
	}
	ex.canon = make([]int64, ex.offsets[n])

	workers = parallel.Workers(workers, int64(n))
	err := parallel.For(ctx, int64(n), workers, func(ctx context.Context, _ int, begin, end int64) error {
		check := parallel.NewChecker(ctx, end-begin)
		var pts []int64
		for i := begin; i < end; i++ {
			if err := check.Tick(); err != nil {
				return err
			}
			pts = polys.AppendCell(pts[:0], int(i))
			facepool.Canonicalize(ex.canon[ex.offsets[i]:ex.offsets[i]:ex.offsets[i+1]], pts)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ex.table, err = csr.Build(ctx, numPoints, int64(n), workers, func(src int64, yield func(int64, int32)) {
		if f := ex.face(src); len(f) > 0 {
			yield(f[0], 0)
		}
	})
	if err != nil {
		return nil, err
	}
	return ex, nil
}

func (ex *excludedFaces) face(i int64) []int64 {
	return ex.canon[ex.offsets[i]:ex.offsets[i+1]]
}

// contains reports whether ids matches an excluded face in any rotation or
// winding. buf is scratch space and is returned for reuse.
func (ex *excludedFaces) contains(ids, buf []int64) (bool, []int64) {
	if len(ids) == 0 {
		return false, buf
	}
	buf = facepool.Canonicalize(buf[:0], ids)
	b := buf[0]
	if b < 0 || b >= ex.table.NumBuckets() {
		return false, buf
	}
	for _, src := range ex.table.BucketSources(b) {
		if facepool.Equal(ex.face(src), buf) {
			return true, buf
		}
	}
	return false, buf
}

package meshskin

import (
	"context"
	"fmt"

	skinerrors "github.com/tamirms/meshskin/errors"
	intbits "github.com/tamirms/meshskin/internal/bits"
	"github.com/tamirms/meshskin/internal/csr"
	"github.com/tamirms/meshskin/internal/parallel"
)

// flatCells is a snapshot of the connectivity of a Dataset.
type flatCells struct {
	offsets []int64
	conn    []int64
}

func (fc *flatCells) cell(c int64) []int64 {
	return fc.conn[fc.offsets[c]:fc.offsets[c+1]]
}

// flatten copies the connectivity of input in two parallel passes.
func flatten(ctx context.Context, input Dataset, workers int) (*flatCells, error) {
	n := int64(input.NumberOfCells())
	workers = parallel.Workers(workers, n)
	fc := &flatCells{offsets: make([]int64, n+1)}

	err := parallel.For(ctx, n, workers, func(ctx context.Context, _ int, begin, end int64) error {
		check := parallel.NewChecker(ctx, end-begin)
		var pts []int64
		for c := begin; c < end; c++ {
			if err := check.Tick(); err != nil {
				return err
			}
			pts = input.CellPoints(int(c), pts[:0])
			if err := checkCellSize(c, input.CellType(int(c)), len(pts)); err != nil {
				return err
			}
			fc.offsets[c] = int64(len(pts))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	total := intbits.ExclusiveScan(fc.offsets[:n])
	fc.offsets[n] = total
	fc.conn = make([]int64, total)

	err = parallel.For(ctx, n, workers, func(ctx context.Context, _ int, begin, end int64) error {
		check := parallel.NewChecker(ctx, end-begin)
		for c := begin; c < end; c++ {
			if err := check.Tick(); err != nil {
				return err
			}
			dst := fc.conn[fc.offsets[c]:fc.offsets[c]:fc.offsets[c+1]]
			input.CellPoints(int(c), dst)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// extractGeneric handles any Dataset cell by cell. A face of a 3D cell is
// on the boundary when no other participating 3D cell uses all of its
// points.
func extractGeneric(ctx context.Context, input Dataset, cfg *config, ex *excludedFaces) ([]*accumulator, error) {
	numCells := int64(input.NumberOfCells())
	numPoints := int64(input.NumberOfPoints())
	for c := range int(numCells) {
		if t := input.CellType(c); !t.IsLinear() {
			return nil, fmt.Errorf("%w: cell %d is %s", skinerrors.ErrNonLinearCell, c, t)
		}
	}

	fc, err := flatten(ctx, input, cfg.workers)
	if err != nil {
		return nil, err
	}
	filter := newCellFilter(cfg, input)
	roles, err := filter.roles(ctx, cfg.workers, func(c int64, dst []int64) []int64 {
		return append(dst, fc.cell(c)...)
	})
	if err != nil {
		return nil, err
	}

	// Point to cell links over the participating 3D cells only; lower
	// dimensional cells never hide a face.
	types := make([]CellType, numCells)
	for c := range types {
		types[c] = input.CellType(c)
	}
	links, err := csr.Build(ctx, numPoints, numCells, cfg.workers, func(c int64, yield func(int64, int32)) {
		if roles[c] == roleSkip || types[c].Dimension() != 3 {
			return
		}
		for i, p := range fc.cell(c) {
			yield(p, int32(i))
		}
	})
	if err != nil {
		return nil, err
	}

	poly, _ := input.(polyhedralDataset)
	workers := parallel.Workers(cfg.workers, numCells)
	accs := newAccumulators(workers, ex)

	err = parallel.For(ctx, numCells, workers, func(ctx context.Context, w int, begin, end int64) error {
		acc := accs[w]
		check := parallel.NewChecker(ctx, end-begin)
		var face []int64

		emit := func(c int64, face []int64) {
			if len(face) == 0 || hasNeighbour(links, fc, c, face) {
				return
			}
			acc.AppendFace(face, c)
		}

		for c := begin; c < end; c++ {
			if err := check.Tick(); err != nil {
				return err
			}
			if roles[c] != roleOwned {
				continue
			}
			t := types[c]
			pts := fc.cell(c)
			switch {
			case t == EmptyCell:
			case t == Polyhedron:
				if poly == nil {
					return fmt.Errorf("%w: polyhedron cell %d without face data", skinerrors.ErrInvalidInput, c)
				}
				for f := range poly.NumberOfCellFaces(int(c)) {
					face = poly.AppendCellFace(int(c), f, face[:0])
					emit(c, face)
				}
			case t.Dimension() == 3:
				for _, local := range faceTable(t) {
					face = face[:0]
					for _, l := range local {
						face = append(face, pts[l])
					}
					emit(c, face)
				}
			default:
				acc.appendPrimitive(t, pts, c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accs, nil
}

// hasNeighbour reports whether a linked cell other than c uses every point
// of face. Candidates come from the shortest link list among
// the face's points.
func hasNeighbour(links *csr.Table, fc *flatCells, c int64, face []int64) bool {
	pivot := face[0]
	for _, p := range face[1:] {
		if links.Len(p) < links.Len(pivot) {
			pivot = p
		}
	}
	var last int64 = -1
	for _, d := range links.BucketSources(pivot) {
		// Buckets are sorted by cell, so repeated points of a degenerate
		// cell show up back to back.
		if d == c || d == last {
			continue
		}
		last = d
		if containsAll(fc.cell(d), face) {
			return true
		}
	}
	return false
}

func containsAll(cell, face []int64) bool {
	for _, p := range face {
		found := false
		for _, q := range cell {
			if p == q {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

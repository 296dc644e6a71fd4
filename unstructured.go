package meshskin

import (
	"context"
	"fmt"

	skinerrors "github.com/tamirms/meshskin/errors"
	"github.com/tamirms/meshskin/internal/facepool"
	"github.com/tamirms/meshskin/internal/parallel"
)

// appendFace appends the point ids of local face f of a 3D cell.
func (ug *UnstructuredGrid) appendFace(dst []int64, cellID int64, f int) []int64 {
	if ug.Types[cellID] == Polyhedron {
		return append(dst, ug.polyhedronFace(cellID, f)...)
	}
	pts := ug.cellPoints(cellID)
	for _, l := range faceTable(ug.Types[cellID])[f] {
		dst = append(dst, pts[l])
	}
	return dst
}

// extractUnstructured runs the hash path over a grid of linear cells.
//
// The work items are the point buckets [0, numPoints) followed by the
// entries of the sentinel bucket. A point bucket is resolved with a
// worker-owned face list; a sentinel entry is a lower-dimensional cell
// copied to its block.
func extractUnstructured(ctx context.Context, ug *UnstructuredGrid, cfg *config, ex *excludedFaces) ([]*accumulator, error) {
	for c, t := range ug.Types {
		if !t.IsLinear() {
			return nil, fmt.Errorf("%w: cell %d is %s", skinerrors.ErrNonLinearCell, c, t)
		}
	}

	filter := newCellFilter(cfg, ug)
	roles, err := filter.roles(ctx, cfg.workers, func(c int64, dst []int64) []int64 {
		return append(dst, ug.cellPoints(c)...)
	})
	if err != nil {
		return nil, err
	}

	links, err := buildHashLinks(ctx, ug, roles, cfg.workers)
	if err != nil {
		return nil, err
	}

	numPoints := links.numPoints
	sentinel := links.sentinel()
	n := numPoints + int64(len(sentinel))
	workers := parallel.Workers(cfg.workers, n)
	accs := newAccumulators(workers, ex)

	err = parallel.For(ctx, n, workers, func(ctx context.Context, w int, begin, end int64) error {
		acc := accs[w]
		list := facepool.NewList(facepool.NewPool(cfg.poolChunkWords))
		check := parallel.NewChecker(ctx, end-begin)
		var face []int64

		for item := begin; item < end; item++ {
			if err := check.Tick(); err != nil {
				return err
			}
			if item >= numPoints {
				c := sentinel[item-numPoints]
				if roles[c] == roleGhost {
					continue
				}
				acc.appendPrimitive(ug.Types[c], ug.cellPoints(c), c)
				continue
			}

			if links.NumberOfFacesInHash(item) == 0 {
				continue
			}
			list.Reset()
			cells := links.CellIdsOfFacesInHash(item)
			faces := links.FaceIdsOfFacesInHash(item)
			for i, c := range cells {
				face = ug.appendFace(face[:0], c, int(faces[i]))
				if _, err := list.Insert(face, c, roles[c] == roleGhost); err != nil {
					return err
				}
			}
			list.PopulateCellArray(acc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accs, nil
}

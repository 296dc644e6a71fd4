package meshskin

import (
	"context"

	"github.com/tamirms/meshskin/internal/parallel"
)

// role is how a cell takes part in an extraction.
type role uint8

const (
	// roleSkip cells are invisible: they neither emit nor hide faces.
	roleSkip role = iota
	// roleOwned cells emit their boundary.
	roleOwned
	// roleGhost cells hide the faces they share with owned cells but never
	// emit anything themselves.
	roleGhost
)

// cellFilter decides the role of every input cell from ghost flags and the
// clipping options.
type cellFilter struct {
	cfg         *config
	input       Dataset
	cellGhosts  []uint8
	pointGhosts []uint8
}

func newCellFilter(cfg *config, input Dataset) *cellFilter {
	return &cellFilter{
		cfg:         cfg,
		input:       input,
		cellGhosts:  input.CellGhosts(),
		pointGhosts: input.PointGhosts(),
	}
}

// masksCells reports whether any cell can end up as anything but owned.
func (f *cellFilter) masksCells() bool {
	if f.cfg.clipping() {
		return true
	}
	for _, g := range f.cellGhosts {
		if g&(HiddenCell|RefinedCell|DuplicateCell) != 0 {
			return true
		}
	}
	for _, g := range f.pointGhosts {
		if g&(HiddenPoint|DuplicatePoint) != 0 {
			return true
		}
	}
	return false
}

// role classifies cellID whose point ids are pts.
func (f *cellFilter) role(cellID int64, pts []int64) role {
	cfg := f.cfg
	if cfg.cellClipping && (cellID < cfg.cellMin || cellID > cfg.cellMax) {
		return roleSkip
	}
	r := roleOwned
	if f.cellGhosts != nil {
		g := f.cellGhosts[cellID]
		if g&(HiddenCell|RefinedCell) != 0 {
			return roleSkip
		}
		if g&DuplicateCell != 0 {
			if !cfg.removeGhostIfces {
				return roleSkip
			}
			r = roleGhost
		}
	}

	allDuplicate := f.pointGhosts != nil && len(pts) > 0
	for _, p := range pts {
		if f.pointGhosts != nil {
			g := f.pointGhosts[p]
			if g&HiddenPoint != 0 {
				return roleSkip
			}
			if g&DuplicatePoint == 0 {
				allDuplicate = false
			}
		}
		if cfg.pointClipping && (p < cfg.pointMin || p > cfg.pointMax) {
			return roleSkip
		}
		if cfg.extentClipping && !f.insideExtent(f.input.Point(int(p))) {
			return roleSkip
		}
	}
	if allDuplicate {
		// A cell made only of duplicate points belongs to a neighbour
		// partition.
		if !cfg.removeGhostIfces {
			return roleSkip
		}
		r = roleGhost
	}
	return r
}

func (f *cellFilter) insideExtent(x [3]float64) bool {
	e := &f.cfg.extent
	return x[0] >= e[0] && x[0] <= e[1] &&
		x[1] >= e[2] && x[1] <= e[3] &&
		x[2] >= e[4] && x[2] <= e[5]
}

// roles classifies every cell of the input in parallel. points fetches the
// point ids of a cell into a worker-owned buffer.
func (f *cellFilter) roles(ctx context.Context, workers int, points func(cellID int64, dst []int64) []int64) ([]role, error) {
	n := int64(f.input.NumberOfCells())
	out := make([]role, n)
	workers = parallel.Workers(workers, n)
	err := parallel.For(ctx, n, workers, func(ctx context.Context, _ int, begin, end int64) error {
		check := parallel.NewChecker(ctx, end-begin)
		var pts []int64
		for c := begin; c < end; c++ {
			if err := check.Tick(); err != nil {
				return err
			}
			pts = points(c, pts[:0])
			out[c] = f.role(c, pts)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

package meshskin

import (
	"context"

	"github.com/tamirms/meshskin/internal/parallel"
)

// boxWalker extracts the skin of a structured grid from extent arithmetic.
type boxWalker struct {
	sg    *StructuredGrid
	dims  [3]int
	cells [3]int
	// roles is nil when every cell is owned.
	roles []role
	fast  bool
	// strips emits one triangle strip per face row. Only valid without
	// roles.
	strips bool
	// cols[a] is the number of items per side of axis a: cell columns
	// running along a, or face rows when emitting strips.
	cols [3]int64
}

func newBoxWalker(sg *StructuredGrid, roles []role, fast, strips bool) *boxWalker {
	bw := &boxWalker{
		sg:     sg,
		dims:   sg.Dimensions(),
		cells:  sg.cellDimensions(),
		roles:  roles,
		fast:   fast,
		strips: strips && roles == nil,
	}
	for a := range 3 {
		if bw.strips {
			bw.cols[a] = int64(bw.cells[(a+2)%3])
		} else {
			bw.cols[a] = int64(bw.cells[(a+1)%3]) * int64(bw.cells[(a+2)%3])
		}
	}
	return bw
}

func (bw *boxWalker) pointID(n [3]int) int64 {
	return int64(n[0]) + int64(bw.dims[0])*(int64(n[1])+int64(bw.dims[1])*int64(n[2]))
}

func (bw *boxWalker) cellID(n [3]int) int64 {
	return int64(n[0]) + int64(bw.cells[0])*(int64(n[1])+int64(bw.cells[1])*int64(n[2]))
}

func (bw *boxWalker) role(n [3]int) role {
	if bw.roles == nil {
		return roleOwned
	}
	return bw.roles[bw.cellID(n)]
}

// numItems returns the size of the (axis, side, column) item space.
func (bw *boxWalker) numItems() int64 {
	return 2 * (bw.cols[0] + bw.cols[1] + bw.cols[2])
}

// item decodes an item into axis, side (0 min, 1 max) and column cell
// with the axis coordinate left at zero. For strips the cell is the first
// of its row.
func (bw *boxWalker) item(it int64) (int, int, [3]int) {
	a := 0
	for ; it >= 2*bw.cols[a]; a++ {
		it -= 2 * bw.cols[a]
	}
	side := int(it / bw.cols[a])
	col := it % bw.cols[a]
	b, c := (a+1)%3, (a+2)%3
	var n [3]int
	if bw.strips {
		n[c] = int(col)
		return a, side, n
	}
	n[b] = int(col % int64(bw.cells[b]))
	n[c] = int(col / int64(bw.cells[b]))
	return a, side, n
}

// appendQuad appends the face of cell n on the given side of axis a, wound
// so that its normal points out of the cell.
func (bw *boxWalker) appendQuad(dst []int64, n [3]int, a, side int) []int64 {
	b, c := (a+1)%3, (a+2)%3
	n[a] += side
	p := func(db, dc int) int64 {
		m := n
		m[b] += db
		m[c] += dc
		return bw.pointID(m)
	}
	if side == 1 {
		return append(dst, p(0, 0), p(1, 0), p(1, 1), p(0, 1))
	}
	return append(dst, p(0, 0), p(0, 1), p(1, 1), p(1, 0))
}

// strip emits the row of faces starting at cell n on the given side of
// axis a as one triangle strip, wound like appendQuad.
func (bw *boxWalker) strip(acc *accumulator, ids []int64, n [3]int, a, side int) []int64 {
	b, c := (a+1)%3, (a+2)%3
	n[a] = (bw.cells[a] - 1) * side
	origin := bw.cellID(n)

	m := n
	m[a] += side
	lo, hi := 0, 1
	if side == 1 {
		lo, hi = 1, 0
	}
	ids = ids[:0]
	for i := range bw.cells[b] + 1 {
		m[b] = i
		m[c] = n[c] + lo
		ids = append(ids, bw.pointID(m))
		m[c] = n[c] + hi
		ids = append(ids, bw.pointID(m))
	}
	acc.appendCell(kindStrips, ids, origin)
	return ids
}

// column emits the exposed faces of one column on one side.
//
// Without blanking only the end cell is exposed. Otherwise the column is
// swept from the side's end: exact mode emits a face at every transition
// from an absent to a present cell, fast mode stops at the first present
// cell. Ghost cells are present but emit nothing.
func (bw *boxWalker) column(acc *accumulator, quad []int64, n [3]int, a, side int) []int64 {
	last := bw.cells[a] - 1
	emit := func(t int) {
		n[a] = t
		if bw.role(n) != roleOwned {
			return
		}
		quad = bw.appendQuad(quad[:0], n, a, side)
		acc.AppendFace(quad, bw.cellID(n))
	}

	if bw.roles == nil {
		emit(last * side)
		return quad
	}

	step, t := 1, 0
	if side == 1 {
		step, t = -1, last
	}
	prevPresent := false
	for ; t >= 0 && t <= last; t += step {
		n[a] = t
		present := bw.role(n) != roleSkip
		if present && !prevPresent {
			emit(t)
			if bw.fast {
				break
			}
		}
		prevPresent = present
	}
	return quad
}

// extractStructured walks sg. Volumetric grids emit their exposed faces;
// lower-dimensional grids emit one primitive per owned cell.
func extractStructured(ctx context.Context, sg *StructuredGrid, cfg *config, ex *excludedFaces) ([]*accumulator, error) {
	var roles []role
	filter := newCellFilter(cfg, sg)
	if filter.masksCells() {
		var err error
		roles, err = filter.roles(ctx, cfg.workers, func(c int64, dst []int64) []int64 {
			return sg.CellPoints(int(c), dst)
		})
		if err != nil {
			return nil, err
		}
	}

	if sg.DataDimension() < 3 {
		return extractStructuredCells(ctx, sg, roles, cfg, ex)
	}

	bw := newBoxWalker(sg, roles, cfg.fastMode, cfg.strips && ex == nil)
	n := bw.numItems()
	workers := parallel.Workers(cfg.workers, n)
	accs := newAccumulators(workers, ex)

	err := parallel.For(ctx, n, workers, func(ctx context.Context, w int, begin, end int64) error {
		acc := accs[w]
		check := parallel.NewChecker(ctx, end-begin)
		var quad []int64
		for it := begin; it < end; it++ {
			if err := check.Tick(); err != nil {
				return err
			}
			a, side, cell := bw.item(it)
			if bw.strips {
				quad = bw.strip(acc, quad, cell, a, side)
				continue
			}
			quad = bw.column(acc, quad, cell, a, side)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accs, nil
}

// extractStructuredCells copies every owned cell of a flat grid.
func extractStructuredCells(ctx context.Context, sg *StructuredGrid, roles []role, cfg *config, ex *excludedFaces) ([]*accumulator, error) {
	n := int64(sg.NumberOfCells())
	workers := parallel.Workers(cfg.workers, n)
	accs := newAccumulators(workers, ex)
	t := sg.CellType(0)

	err := parallel.For(ctx, n, workers, func(ctx context.Context, w int, begin, end int64) error {
		acc := accs[w]
		check := parallel.NewChecker(ctx, end-begin)
		var pts []int64
		for c := begin; c < end; c++ {
			if err := check.Tick(); err != nil {
				return err
			}
			if roles != nil && roles[c] != roleOwned {
				continue
			}
			pts = sg.CellPoints(int(c), pts[:0])
			acc.appendPrimitive(t, pts, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accs, nil
}

package meshskin

import (
	"context"

	"github.com/tamirms/meshskin/internal/parallel"
)

// layout places every worker's streams in the output. It is computed
// serially from the stream sizes.
type layout struct {
	// cellStart[k][w] and connStart[k][w] are where worker w's block k
	// records begin.
	cellStart [numKinds][]int64
	connStart [numKinds][]int64
	cells     [numKinds]int64
	conn      [numKinds]int64
	// base[k] is the output cell id of the first cell of block k.
	base [numKinds]int64
}

func (l *layout) totalCells() int64 {
	return l.base[numKinds-1] + l.cells[numKinds-1]
}

func (l *layout) totalConn() int64 {
	var n int64
	for _, c := range l.conn {
		n += c
	}
	return n
}

// reduce computes the layout with prefix sums over workers in index order.
func reduce(accs []*accumulator) *layout {
	l := &layout{}
	var base int64
	for k := range numKinds {
		l.cellStart[k] = make([]int64, len(accs))
		l.connStart[k] = make([]int64, len(accs))
		for w, acc := range accs {
			s := &acc.streams[k]
			l.cellStart[k][w] = l.cells[k]
			l.connStart[k][w] = l.conn[k]
			l.cells[k] += s.numCells()
			l.conn[k] += s.conn
		}
		l.base[k] = base
		base += l.cells[k]
	}
	return l
}

// composed is the topology and cell data of an extraction.
type composed[T Index] struct {
	blocks [numKinds]*Cells[T]
	// origins holds the input cell id of every output cell.
	origins    []int64
	cellAttrs  *Attributes
	cellGhosts []uint8
}

// composite copies every worker's streams into the final arrays in
// parallel, remapping point ids through pm.
func composite[T Index](ctx context.Context, input Dataset, accs []*accumulator, l *layout, pm *pointMap) (*composed[T], error) {
	out := &composed[T]{origins: make([]int64, l.totalCells())}
	for k := range numKinds {
		out.blocks[k] = &Cells[T]{
			Offsets:      make([]T, l.cells[k]+1),
			Connectivity: make([]T, l.conn[k]),
		}
	}
	srcAttrs := input.CellData()
	if !srcAttrs.empty() {
		out.cellAttrs = gatherLayout(srcAttrs, int(l.totalCells()))
	}
	srcGhosts := input.CellGhosts()
	if srcGhosts != nil {
		out.cellGhosts = make([]uint8, l.totalCells())
	}

	err := parallel.For(ctx, int64(len(accs)), len(accs), func(ctx context.Context, _ int, begin, end int64) error {
		for w := begin; w < end; w++ {
			for k := range numKinds {
				s := &accs[w].streams[k]
				blk := out.blocks[k]
				cell := l.cellStart[k][w]
				conn := l.connStart[k][w]
				check := parallel.NewChecker(ctx, s.numCells())
				var err error
				s.each(func(i int64, ids []int64) {
					if err != nil {
						return
					}
					err = check.Tick()
					for _, id := range ids {
						blk.Connectivity[conn] = T(pm.remap(id))
						conn++
					}
					blk.Offsets[cell+i+1] = T(conn)

					origin := s.origins[i]
					dst := l.base[k] + cell + i
					out.origins[dst] = origin
					if out.cellAttrs != nil {
						gatherTuple(out.cellAttrs, srcAttrs, int(dst), int(origin))
					}
					if out.cellGhosts != nil {
						out.cellGhosts[dst] = srcGhosts[origin]
					}
				})
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

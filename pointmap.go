package meshskin

import (
	"context"
	"sync/atomic"

	"github.com/tamirms/meshskin/internal/parallel"
)

// pointMap renumbers input points into output points. A nil forward map is
// the identity over n points.
type pointMap struct {
	// forward maps an input id to its output id, or -1 when unused.
	forward []int64
	// inverse maps an output id back to its input id.
	inverse []int64
	n       int64
}

func identityPointMap(numPoints int64) *pointMap {
	return &pointMap{n: numPoints}
}

func (m *pointMap) identity() bool {
	return m.forward == nil
}

func (m *pointMap) remap(id int64) int64 {
	if m.forward == nil {
		return id
	}
	return m.forward[id]
}

// origin returns the input id of output point i.
func (m *pointMap) origin(i int64) int64 {
	if m.inverse == nil {
		return i
	}
	return m.inverse[i]
}

// buildPointMap compacts the points referenced by accs to [0, K) keeping
// input order.
func buildPointMap(ctx context.Context, accs []*accumulator, numPoints int64, workers int) (*pointMap, error) {
	marks := make([]uint32, numPoints)

	// Pass 1: every worker marks the points of its own streams.
	err := parallel.For(ctx, int64(len(accs)), len(accs), func(ctx context.Context, _ int, begin, end int64) error {
		for w := begin; w < end; w++ {
			for k := range accs[w].streams {
				s := &accs[w].streams[k]
				check := parallel.NewChecker(ctx, s.numCells())
				var err error
				s.each(func(_ int64, ids []int64) {
					if err != nil {
						return
					}
					err = check.Tick()
					for _, id := range ids {
						atomic.StoreUint32(&marks[id], 1)
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

	// Pass 2: serial order-preserving compaction.
	m := &pointMap{forward: make([]int64, numPoints)}
	for id, mark := range marks {
		if mark == 0 {
			m.forward[id] = -1
			continue
		}
		m.forward[id] = m.n
		m.inverse = append(m.inverse, int64(id))
		m.n++
	}
	if err := parallel.Check(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// outputPoints are the coordinates and point data of an extraction.
type outputPoints struct {
	points *Points
	attrs  *Attributes
	ghosts []uint8
}

// explicitPoints returns the stored point array of input, or nil when its
// coordinates are implicit.
func explicitPoints(input Dataset) *Points {
	switch in := input.(type) {
	case *PolyData:
		return in.Points
	case *UnstructuredGrid:
		return in.Points
	case *StructuredGrid:
		if in.Kind == CurvilinearGrid {
			return in.Points
		}
	}
	return nil
}

// nativePrecision returns the coordinate precision of input.
func nativePrecision(input Dataset) Precision {
	if p := explicitPoints(input); p != nil {
		return p.Precision()
	}
	return PrecisionFloat64
}

// gatherPoints builds the output points through m. With an identity map
// over an explicit array of the requested precision the input arrays are
// returned by reference.
func gatherPoints(ctx context.Context, input Dataset, m *pointMap, prec Precision, workers int) (*outputPoints, error) {
	explicit := explicitPoints(input)
	prec = resolvePrecision(prec, nativePrecision(input))
	if m.identity() && explicit != nil && explicit.Precision() == prec {
		return &outputPoints{
			points: explicit,
			attrs:  input.PointData(),
			ghosts: input.PointGhosts(),
		}, nil
	}

	out := &outputPoints{points: newPointsLike(prec, int(m.n))}
	src := input.PointData()
	if !src.empty() {
		out.attrs = gatherLayout(src, int(m.n))
	}
	srcGhosts := input.PointGhosts()
	if srcGhosts != nil {
		out.ghosts = make([]uint8, m.n)
	}

	workers = parallel.Workers(workers, m.n)
	err := parallel.For(ctx, m.n, workers, func(ctx context.Context, _ int, begin, end int64) error {
		check := parallel.NewChecker(ctx, end-begin)
		for i := begin; i < end; i++ {
			if err := check.Tick(); err != nil {
				return err
			}
			from := int(m.origin(i))
			out.points.set(int(i), input.Point(from))
			if out.attrs != nil {
				gatherTuple(out.attrs, src, int(i), from)
			}
			if out.ghosts != nil {
				out.ghosts[i] = srcGhosts[from]
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

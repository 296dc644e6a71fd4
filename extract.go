package meshskin

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	skinerrors "github.com/tamirms/meshskin/errors"
	"github.com/tamirms/meshskin/internal/parallel"
)

func newConfig(opts []Option) (*config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Extract computes the polygonal skin of input: every 0D, 1D and 2D cell
// plus every face of a 3D cell that no other cell shares.
//
// Usage:
//
//	skin, err := meshskin.Extract(ctx, grid,
//	    meshskin.WithMergePoints(true),
//	    meshskin.WithPassThroughCellIds(""))
//	if err != nil { return err }
//
// The output cells are ordered verts, lines, polys, strips; within a block
// by worker then discovery order. The order is deterministic for a fixed
// worker count. Input arrays are never modified, but the output may share
// them: pass-through topology and unmerged explicit points are returned by
// reference.
//
// Configuration errors are reported before any parallel work starts. A
// cancelled ctx surfaces as ErrAborted and no partial output is returned.
func Extract(ctx context.Context, input Dataset, opts ...Option) (*PolyData, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	path, err := classify(input, cfg)
	if err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := checkExcludedFaces(cfg.excluded, input.NumberOfPoints()); err != nil {
		return nil, err
	}
	if err := parallel.Check(ctx); err != nil {
		return nil, err
	}

	log := cfg.log()
	start := time.Now()
	log.Debug().
		Stringer("path", path).
		Int("points", input.NumberOfPoints()).
		Int("cells", input.NumberOfCells()).
		Int("workers", cfg.workers).
		Msg("extracting surface")

	out, err := extract(ctx, input, path, cfg, opts, log)
	if err != nil {
		if errors.Is(err, skinerrors.ErrAborted) {
			log.Warn().Err(err).Stringer("path", path).Dur("elapsed", time.Since(start)).Msg("extraction aborted")
		}
		return nil, err
	}
	log.Debug().
		Stringer("path", path).
		Int("points", out.NumberOfPoints()).
		Int("cells", out.NumberOfCells()).
		Dur("elapsed", time.Since(start)).
		Msg("surface extracted")
	return out, nil
}

func extract(ctx context.Context, input Dataset, path Path, cfg *config, opts []Option, log *zerolog.Logger) (*PolyData, error) {
	if input.NumberOfPoints() == 0 || input.NumberOfCells() == 0 {
		return assemble(ctx, input, nil, cfg, log)
	}

	switch path {
	case PathPassThrough:
		return passThrough(ctx, input.(*PolyData), cfg)
	case PathDelegate:
		out, err := cfg.delegate.ExtractSurface(ctx, input.(*UnstructuredGrid), opts...)
		if err != nil {
			return nil, fmt.Errorf("non-linear delegate: %w", err)
		}
		return out, nil
	}

	phase := time.Now()
	ex, err := buildExcludedFaces(ctx, cfg.excluded, int64(input.NumberOfPoints()), cfg.workers)
	if err != nil {
		return nil, err
	}

	var accs []*accumulator
	switch path {
	case PathStructured:
		accs, err = extractStructured(ctx, input.(*StructuredGrid), cfg, ex)
	case PathUnstructured:
		accs, err = extractUnstructured(ctx, input.(*UnstructuredGrid), cfg, ex)
	default:
		accs, err = extractGeneric(ctx, input, cfg, ex)
	}
	if err != nil {
		return nil, err
	}
	log.Debug().Dur("elapsed", time.Since(phase)).Int("accumulators", len(accs)).Msg("cells collected")

	return assemble(ctx, input, accs, cfg, log)
}

// assemble reduces the worker accumulators into the output dataset.
func assemble(ctx context.Context, input Dataset, accs []*accumulator, cfg *config, log *zerolog.Logger) (*PolyData, error) {
	phase := time.Now()
	l := reduce(accs)

	pm := identityPointMap(int64(input.NumberOfPoints()))
	if cfg.mergePoints {
		var err error
		if pm, err = buildPointMap(ctx, accs, int64(input.NumberOfPoints()), cfg.workers); err != nil {
			return nil, err
		}
	}

	width, err := chooseIDWidth(cfg.idWidth, l.totalConn(), l.totalCells(), pm.n)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Stringer("idWidth", width).
		Int64("cells", l.totalCells()).
		Int64("connectivity", l.totalConn()).
		Int64("points", pm.n).
		Msg("output sized")

	pts, err := gatherPoints(ctx, input, pm, cfg.precision, cfg.workers)
	if err != nil {
		return nil, err
	}
	out := &PolyData{
		Points:          pts.points,
		PointAttributes: pts.attrs,
		PointGhostFlags: pts.ghosts,
	}

	var origins []int64
	if width == IDWidth32 {
		origins, err = fill[int32](ctx, out, input, accs, l, pm)
	} else {
		origins, err = fill[int64](ctx, out, input, accs, l, pm)
	}
	if err != nil {
		return nil, err
	}

	if cfg.passCellIds {
		out.CellAttributes = withIdArray(out.CellAttributes, &IdArray{Name: cfg.cellIdsName, Ids: origins})
	}
	if cfg.passPointIds {
		ids := make([]int64, pm.n)
		for i := range ids {
			ids[i] = pm.origin(int64(i))
		}
		out.PointAttributes = withIdArray(out.PointAttributes, &IdArray{Name: cfg.pointIdsName, Ids: ids})
	}
	log.Debug().Dur("elapsed", time.Since(phase)).Msg("output composed")
	return out, nil
}

// fill composes the topology of out with T-wide ids and returns the input
// cell id of every output cell.
func fill[T Index](ctx context.Context, out *PolyData, input Dataset, accs []*accumulator, l *layout, pm *pointMap) ([]int64, error) {
	c, err := composite[T](ctx, input, accs, l, pm)
	if err != nil {
		return nil, err
	}
	out.Verts = c.blocks[kindVerts]
	out.Lines = c.blocks[kindLines]
	out.Polys = c.blocks[kindPolys]
	out.Strips = c.blocks[kindStrips]
	out.CellAttributes = c.cellAttrs
	out.CellGhostFlags = c.cellGhosts
	return c.origins, nil
}

// passThrough returns pd with its topology shared by reference. Only the
// points are copied, and only for a precision change.
func passThrough(ctx context.Context, pd *PolyData, cfg *config) (*PolyData, error) {
	pts, err := gatherPoints(ctx, pd, identityPointMap(int64(pd.NumberOfPoints())), cfg.precision, cfg.workers)
	if err != nil {
		return nil, err
	}
	out := *pd
	out.Points = pts.points
	out.PointAttributes = pts.attrs
	out.PointGhostFlags = pts.ghosts
	if cfg.passCellIds {
		out.CellAttributes = withIdArray(pd.CellAttributes, &IdArray{Name: cfg.cellIdsName, Ids: sequence(pd.NumberOfCells())})
	}
	if cfg.passPointIds {
		out.PointAttributes = withIdArray(out.PointAttributes, &IdArray{Name: cfg.pointIdsName, Ids: sequence(pd.NumberOfPoints())})
	}
	return &out, nil
}

func sequence(n int) []int64 {
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = int64(i)
	}
	return ids
}

// withIdArray returns attrs plus arr without modifying attrs, which may
// belong to the input.
func withIdArray(attrs *Attributes, arr *IdArray) *Attributes {
	out := &Attributes{}
	if attrs != nil {
		out.Arrays = attrs.Arrays
		out.IdArrays = slices.Clone(attrs.IdArrays)
	}
	out.IdArrays = append(out.IdArrays, arr)
	return out
}

// validateInput checks the structural consistency of the concrete inputs.
func validateInput(input Dataset) error {
	var err error
	switch in := input.(type) {
	case *UnstructuredGrid:
		err = in.validate()
	case *StructuredGrid:
		err = in.validate()
	case *PolyData:
		err = in.validate()
	default:
		err = validateGhosts(input.CellGhosts(), input.NumberOfCells(), input.PointGhosts(), input.NumberOfPoints())
	}
	if err != nil {
		return err
	}
	if err := input.PointData().validate(input.NumberOfPoints(), "point"); err != nil {
		return err
	}
	return input.CellData().validate(input.NumberOfCells(), "cell")
}

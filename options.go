package meshskin

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rs/zerolog"

	skinerrors "github.com/tamirms/meshskin/errors"
	"github.com/tamirms/meshskin/internal/facepool"
)

// IDWidth selects the integer width of the output topology.
type IDWidth uint8

const (
	// IDWidthAuto uses 32-bit ids when every offset, id and count fits.
	IDWidthAuto IDWidth = iota
	IDWidth32
	IDWidth64
)

// String returns the width name.
func (w IDWidth) String() string {
	switch w {
	case IDWidthAuto:
		return "auto"
	case IDWidth32:
		return "int32"
	case IDWidth64:
		return "int64"
	default:
		return "unknown"
	}
}

// NonLinearDelegate extracts the surface of an unstructured grid that holds
// non-linear cells, typically by subdividing them first.
type NonLinearDelegate interface {
	ExtractSurface(ctx context.Context, grid *UnstructuredGrid, opts ...Option) (*PolyData, error)
}

// Option is a functional option for configuring an extraction.
type Option func(*config)

type config struct {
	workers int

	mergePoints bool

	passCellIds      bool
	cellIdsName      string
	passPointIds     bool
	pointIdsName     string
	pointClipping    bool
	pointMin         int64
	pointMax         int64
	cellClipping     bool
	cellMin          int64
	cellMax          int64
	extentClipping   bool
	extent           [6]float64
	fastMode         bool
	strips           bool
	removeGhostIfces bool
	precision        Precision
	idWidth          IDWidth
	poolChunkWords   int

	excluded   *PolyData
	delegate   NonLinearDelegate
	delegation bool

	logger *zerolog.Logger
}

func defaultConfig() *config {
	return &config{
		workers:          runtime.GOMAXPROCS(0),
		cellIdsName:      DefaultOriginalCellIdsName,
		pointIdsName:     DefaultOriginalPointIdsName,
		removeGhostIfces: true,
		delegation:       true,
		poolChunkWords:   facepool.DefaultChunkWords,
	}
}

// clipping reports whether any clipping option is active.
func (c *config) clipping() bool {
	return c.pointClipping || c.cellClipping || c.extentClipping
}

func (c *config) validate() error {
	if c.pointClipping && c.pointMin > c.pointMax {
		return fmt.Errorf("%w: point clipping range [%d,%d]", skinerrors.ErrInvalidOption, c.pointMin, c.pointMax)
	}
	if c.cellClipping && c.cellMin > c.cellMax {
		return fmt.Errorf("%w: cell clipping range [%d,%d]", skinerrors.ErrInvalidOption, c.cellMin, c.cellMax)
	}
	if c.extentClipping {
		for a := range 3 {
			if c.extent[2*a] > c.extent[2*a+1] {
				return fmt.Errorf("%w: extent clipping %v", skinerrors.ErrInvalidOption, c.extent)
			}
		}
	}
	if c.passCellIds && c.cellIdsName == "" {
		return fmt.Errorf("%w: empty original cell ids name", skinerrors.ErrInvalidOption)
	}
	if c.passPointIds && c.pointIdsName == "" {
		return fmt.Errorf("%w: empty original point ids name", skinerrors.ErrInvalidOption)
	}
	if c.precision > PrecisionFloat64 {
		return fmt.Errorf("%w: precision %d", skinerrors.ErrInvalidOption, c.precision)
	}
	if c.idWidth > IDWidth64 {
		return fmt.Errorf("%w: id width %d", skinerrors.ErrInvalidOption, c.idWidth)
	}
	return nil
}

// WithWorkers sets the number of parallel workers. Values below 1 select
// runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(c *config) {
		if n < 1 {
			n = runtime.GOMAXPROCS(0)
		}
		c.workers = n
	}
}

// WithMergePoints compacts the output points to those used by the output
// cells, preserving input order.
func WithMergePoints(merge bool) Option {
	return func(c *config) {
		c.mergePoints = merge
	}
}

// WithPassThroughCellIds attaches the originating cell id of every output
// cell as an id array. An empty name keeps the default name.
func WithPassThroughCellIds(name string) Option {
	return func(c *config) {
		c.passCellIds = true
		if name != "" {
			c.cellIdsName = name
		}
	}
}

// WithPassThroughPointIds attaches the originating point id of every output
// point as an id array. An empty name keeps the default name.
func WithPassThroughPointIds(name string) Option {
	return func(c *config) {
		c.passPointIds = true
		if name != "" {
			c.pointIdsName = name
		}
	}
}

// WithPointClipping drops every cell that uses a point id outside
// [minID, maxID].
func WithPointClipping(minID, maxID int64) Option {
	return func(c *config) {
		c.pointClipping = true
		c.pointMin, c.pointMax = minID, maxID
	}
}

// WithCellClipping drops every cell whose id is outside [minID, maxID].
func WithCellClipping(minID, maxID int64) Option {
	return func(c *config) {
		c.cellClipping = true
		c.cellMin, c.cellMax = minID, maxID
	}
}

// WithExtentClipping drops every cell with a point outside the box
// {xmin, xmax, ymin, ymax, zmin, zmax}.
func WithExtentClipping(extent [6]float64) Option {
	return func(c *config) {
		c.extentClipping = true
		c.extent = extent
	}
}

// WithFastMode makes the blanked structured sweep emit only the outermost
// faces of each column, skipping interior cavity walls.
func WithFastMode(fast bool) Option {
	return func(c *config) {
		c.fastMode = fast
	}
}

// WithStrips makes an unblanked volumetric structured grid emit each row
// of boundary faces as one triangle strip instead of one quad per cell.
// The strip's origin is the first cell of its row. Blanked or clipped
// grids, grids with excluded faces and every other path still emit quads.
func WithStrips(strips bool) Option {
	return func(c *config) {
		c.strips = strips
	}
}

// WithRemoveGhostInterfaces controls duplicate ghost cells. When on (the
// default), ghost cells take part in adjacency so faces between owned and
// ghost cells cancel. When off, ghost cells are ignored and those interface
// faces are emitted.
func WithRemoveGhostInterfaces(remove bool) Option {
	return func(c *config) {
		c.removeGhostIfces = remove
	}
}

// WithOutputPrecision sets the output coordinate precision.
func WithOutputPrecision(p Precision) Option {
	return func(c *config) {
		c.precision = p
	}
}

// WithIDWidth forces the output id width. Default is IDWidthAuto.
func WithIDWidth(w IDWidth) Option {
	return func(c *config) {
		c.idWidth = w
	}
}

// WithExcludedFaces suppresses boundary faces that match a polygon of
// faces, compared by vertex ids in any rotation or winding. faces must
// index the input's points and hold polygons only.
func WithExcludedFaces(faces *PolyData) Option {
	return func(c *config) {
		c.excluded = faces
	}
}

// WithNonLinearDelegate sets the filter that handles unstructured grids
// with non-linear cells.
func WithNonLinearDelegate(d NonLinearDelegate) Option {
	return func(c *config) {
		c.delegate = d
	}
}

// WithDelegation enables or disables delegation of non-linear grids. With
// delegation off such grids fail with ErrNonLinearCell.
func WithDelegation(enabled bool) Option {
	return func(c *config) {
		c.delegation = enabled
	}
}

// WithPoolChunkSize sets the face pool chunk size in int64 words.
func WithPoolChunkSize(words int) Option {
	return func(c *config) {
		c.poolChunkWords = words
	}
}

// WithLogger overrides the package logger for one extraction.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) {
		c.logger = &l
	}
}

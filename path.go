package meshskin

import (
	"fmt"

	skinerrors "github.com/tamirms/meshskin/errors"
)

// Path identifies the extraction strategy chosen for an input.
type Path uint8

const (
	// PathPassThrough returns polygonal input unchanged.
	PathPassThrough Path = iota

	// PathStructured walks the extent of a structured grid.
	PathStructured

	// PathUnstructured resolves faces through the face hash.
	PathUnstructured

	// PathDelegate hands grids with non-linear cells to the configured
	// NonLinearDelegate.
	PathDelegate

	// PathGeneric extracts any Dataset cell by cell.
	PathGeneric
)

// String returns the path name.
func (p Path) String() string {
	switch p {
	case PathPassThrough:
		return "passthrough"
	case PathStructured:
		return "structured"
	case PathUnstructured:
		return "unstructured"
	case PathDelegate:
		return "delegate"
	case PathGeneric:
		return "generic"
	default:
		return "unknown"
	}
}

// Classify reports the path Extract would take for input with opts,
// without extracting anything.
func Classify(input Dataset, opts ...Option) (Path, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return 0, err
	}
	return classify(input, cfg)
}

// classify routes input:
//
//   - polydata without clipping or masking ghosts passes through
//   - structured grids without clipping are walked
//   - unstructured grids of linear cells go through the face hash
//   - unstructured grids with non-linear cells are delegated when a
//     delegate is set and delegation is on
//   - everything else goes cell by cell
func classify(input Dataset, cfg *config) (Path, error) {
	switch in := input.(type) {
	case nil:
		return 0, fmt.Errorf("%w: nil input", skinerrors.ErrUnsupportedDataset)
	case *PolyData:
		if in == nil {
			return 0, fmt.Errorf("%w: nil polydata", skinerrors.ErrUnsupportedDataset)
		}
		if !newCellFilter(cfg, in).masksCells() {
			return PathPassThrough, nil
		}
	case *StructuredGrid:
		if in == nil {
			return 0, fmt.Errorf("%w: nil structured grid", skinerrors.ErrUnsupportedDataset)
		}
		if !cfg.clipping() {
			return PathStructured, nil
		}
	case *UnstructuredGrid:
		if in == nil {
			return 0, fmt.Errorf("%w: nil unstructured grid", skinerrors.ErrUnsupportedDataset)
		}
		for _, t := range in.Types {
			if !t.IsLinear() {
				if cfg.delegation && cfg.delegate != nil {
					return PathDelegate, nil
				}
				return 0, fmt.Errorf("%w: %s cell with delegation unavailable", skinerrors.ErrNonLinearCell, t)
			}
		}
		return PathUnstructured, nil
	}
	return PathGeneric, nil
}

package meshskin

import (
	"fmt"

	skinerrors "github.com/tamirms/meshskin/errors"
)

// Default names of the origin id arrays.
const (
	DefaultOriginalCellIdsName  = "vtkOriginalCellIds"
	DefaultOriginalPointIdsName = "vtkOriginalPointIds"
)

// DataArray is a named attribute with Components values per tuple.
type DataArray struct {
	Name       string
	Components int
	Values     []float64
}

// NumberOfTuples returns the number of tuples stored.
func (a *DataArray) NumberOfTuples() int {
	if a.Components <= 0 {
		return 0
	}
	return len(a.Values) / a.Components
}

// IdArray is a named integer attribute with one id per tuple.
type IdArray struct {
	Name string
	Ids  []int64
}

// Attributes is the set of arrays attached to points or cells.
type Attributes struct {
	Arrays   []*DataArray
	IdArrays []*IdArray
}

// Array returns the data array with the given name, or nil.
func (a *Attributes) Array(name string) *DataArray {
	if a == nil {
		return nil
	}
	for _, arr := range a.Arrays {
		if arr.Name == name {
			return arr
		}
	}
	return nil
}

// IdArray returns the id array with the given name, or nil.
func (a *Attributes) IdArray(name string) *IdArray {
	if a == nil {
		return nil
	}
	for _, arr := range a.IdArrays {
		if arr.Name == name {
			return arr
		}
	}
	return nil
}

// validate checks that every array holds exactly n tuples.
func (a *Attributes) validate(n int, what string) error {
	if a == nil {
		return nil
	}
	for _, arr := range a.Arrays {
		if arr.Components <= 0 || len(arr.Values) != n*arr.Components {
			return fmt.Errorf("%w: %s array %q has %d values with %d components for %d tuples",
				skinerrors.ErrInvalidInput, what, arr.Name, len(arr.Values), arr.Components, n)
		}
	}
	for _, arr := range a.IdArrays {
		if len(arr.Ids) != n {
			return fmt.Errorf("%w: %s id array %q has %d ids for %d tuples",
				skinerrors.ErrInvalidInput, what, arr.Name, len(arr.Ids), n)
		}
	}
	return nil
}

// empty reports whether no arrays are attached.
func (a *Attributes) empty() bool {
	return a == nil || (len(a.Arrays) == 0 && len(a.IdArrays) == 0)
}

// gatherLayout allocates arrays shaped like src for n tuples.
func gatherLayout(src *Attributes, n int) *Attributes {
	dst := &Attributes{}
	if src == nil {
		return dst
	}
	for _, a := range src.Arrays {
		dst.Arrays = append(dst.Arrays, &DataArray{
			Name:       a.Name,
			Components: a.Components,
			Values:     make([]float64, n*a.Components),
		})
	}
	for _, a := range src.IdArrays {
		dst.IdArrays = append(dst.IdArrays, &IdArray{Name: a.Name, Ids: make([]int64, n)})
	}
	return dst
}

// gatherTuple copies tuple from of src into tuple to of dst. dst must have
// been created by gatherLayout(src, ...).
func gatherTuple(dst, src *Attributes, to, from int) {
	for i, a := range src.Arrays {
		c := a.Components
		copy(dst.Arrays[i].Values[to*c:(to+1)*c], a.Values[from*c:(from+1)*c])
	}
	for i, a := range src.IdArrays {
		dst.IdArrays[i].Ids[to] = a.Ids[from]
	}
}

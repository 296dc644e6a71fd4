// Package meshskin extracts the polygonal boundary ("skin") of volumetric
// and mixed-dimensional meshes.
//
// The skin of a dataset is every vertex, line and polygon cell it holds plus
// every face of a 3D cell that is referenced by exactly one cell. Points can
// be compacted to those the skin uses, the originating cell and point ids
// can be attached as id arrays, and ghost flags and id/extent clipping
// decide which cells take part.
//
// # Basic Usage
//
//	grid := &meshskin.UnstructuredGrid{
//	    Points:       meshskin.NewPoints64(xyz),
//	    Offsets:      offsets,
//	    Connectivity: conn,
//	    Types:        types,
//	}
//	skin, err := meshskin.Extract(ctx, grid, meshskin.WithMergePoints(true))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(skin.NumberOfCells(), skin.Digest())
//
// # Paths
//
// Extract picks one strategy per input (see Classify):
//
//   - PathPassThrough: polygonal input is returned with its topology shared
//   - PathStructured: structured grids are walked with extent arithmetic,
//     with a column sweep when cells are blanked
//   - PathUnstructured: faces are bucketed by their minimum point id and
//     resolved with insert/cancel lists, one bucket at a time
//   - PathDelegate: grids with non-linear cells go to a NonLinearDelegate
//   - PathGeneric: any Dataset, using point to cell links
//
// All paths run as fork-join passes over contiguous ranges, one accumulator
// per worker, followed by a serial prefix-sum reduction and a parallel
// composition pass. The output id width (int32 or int64) is chosen once the
// output size is known.
//
// # Package Structure
//
//   - Public API: extract.go (Extract), path.go (Path, Classify), options.go
//   - Data model: dataset.go, structured_grid.go, cells.go, celltype.go,
//     points.go, attributes.go
//   - Extraction: unstructured.go, hashlinks.go, generic.go, structured.go,
//     filter.go (cell roles), excluded.go
//   - Composition: accumulator.go, pointmap.go, compositor.go, idwidth.go
//   - Internals: internal/facepool (face records and lists), internal/csr
//     (parallel counting sort), internal/parallel (fork-join),
//     internal/meshfile (mesh snapshots), internal/synth (synthetic blocks
//     for the tools and benchmarks)
package meshskin

package meshskin

// kind is an output topology block.
type kind uint8

const (
	kindVerts kind = iota
	kindLines
	kindPolys
	kindStrips
	numKinds
)

func (k kind) String() string {
	switch k {
	case kindVerts:
		return "verts"
	case kindLines:
		return "lines"
	case kindPolys:
		return "polys"
	case kindStrips:
		return "strips"
	default:
		return "unknown"
	}
}

// cellStream is one worker's output for one block. cells holds
// (count, id...) records; origins holds one input cell id per record.
type cellStream struct {
	cells   []int64
	origins []int64
	// conn counts point ids, excluding the count words.
	conn int64
}

func (s *cellStream) numCells() int64 {
	return int64(len(s.origins))
}

// each calls fn for every record in discovery order.
func (s *cellStream) each(fn func(i int64, ids []int64)) {
	pos := 0
	for i := range s.origins {
		n := int(s.cells[pos])
		fn(int64(i), s.cells[pos+1:pos+1+n])
		pos += 1 + n
	}
}

// accumulator collects everything one worker emits. It is owned by a single
// worker and needs no synchronization.
type accumulator struct {
	streams  [numKinds]cellStream
	excluded *excludedFaces
	// scratch buffers reused across cells
	ids   []int64
	canon []int64
}

func newAccumulators(workers int, excluded *excludedFaces) []*accumulator {
	accs := make([]*accumulator, workers)
	for w := range accs {
		accs[w] = &accumulator{excluded: excluded}
	}
	return accs
}

// appendCell records a cell verbatim.
func (a *accumulator) appendCell(k kind, ids []int64, origin int64) {
	s := &a.streams[k]
	s.cells = append(s.cells, int64(len(ids)))
	s.cells = append(s.cells, ids...)
	s.origins = append(s.origins, origin)
	s.conn += int64(len(ids))
}

// AppendFace records a boundary polygon unless it is an excluded face.
func (a *accumulator) AppendFace(ids []int64, cellID int64) {
	if a.excluded != nil {
		var found bool
		found, a.canon = a.excluded.contains(ids, a.canon[:0])
		if found {
			return
		}
	}
	a.appendCell(kindPolys, ids, cellID)
}

// appendPrimitive copies a 0D/1D/2D cell into its block. Pixels are
// reordered into quads.
func (a *accumulator) appendPrimitive(t CellType, ids []int64, origin int64) {
	k, ok := primitiveKind(t)
	if !ok {
		return
	}
	if t == Pixel && len(ids) == 4 {
		a.ids = append(a.ids[:0], ids[0], ids[1], ids[3], ids[2])
		ids = a.ids
	}
	a.appendCell(k, ids, origin)
}

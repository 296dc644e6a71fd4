package facepool

// Sink receives the faces that survive insert/cancel.
type Sink interface {
	AppendFace(ids []int64, cellID int64)
}

// List is a forward-linked list of face records for one hash bucket.
// Inserting a face equal to one already present cancels both: a face seen by
// two cells is interior.
//
// A List is NOT safe for concurrent use.
type List struct {
	pool *Pool
	head Ref
	tail Ref
	size int
}

// NewList creates an empty list backed by pool.
func NewList(pool *Pool) *List {
	return &List{pool: pool, head: NoRef, tail: NoRef}
}

// Len returns the number of faces currently in the list.
func (l *List) Len() int {
	return l.size
}

// Reset empties the list and rewinds its pool. Records handed out since the
// previous Reset become invalid.
func (l *List) Reset() {
	l.head, l.tail, l.size = NoRef, NoRef, 0
	l.pool.ResetIndices()
}

// Insert adds the face ids owned by cellID. If an equal face (any rotation,
// either winding) is already in the list, that face is removed instead and
// Insert reports false. ids is not retained.
func (l *List) Insert(ids []int64, cellID int64, ghost bool) (bool, error) {
	start := minIndex(ids)

	prev := NoRef
	for r := l.head; r != NoRef; r = l.pool.Next(r) {
		if equalRotated(l.pool.IDs(r), ids, start) {
			l.unlink(prev, r)
			return false, nil
		}
		prev = r
	}

	r, err := l.pool.Allocate(len(ids))
	if err != nil {
		return false, err
	}
	l.pool.SetOwner(r, cellID, ghost)
	rotateInto(l.pool.IDs(r), ids, start)

	if l.tail == NoRef {
		l.head = r
	} else {
		l.pool.SetNext(l.tail, r)
	}
	l.tail = r
	l.size++
	return true, nil
}

func (l *List) unlink(prev, r Ref) {
	next := l.pool.Next(r)
	if prev == NoRef {
		l.head = next
	} else {
		l.pool.SetNext(prev, next)
	}
	if l.tail == r {
		l.tail = prev
	}
	l.size--
}

// PopulateCellArray hands every surviving non-ghost face to sink in
// insertion order. The list is left unchanged.
func (l *List) PopulateCellArray(sink Sink) {
	for r := l.head; r != NoRef; r = l.pool.Next(r) {
		if l.pool.Ghost(r) {
			continue
		}
		sink.AppendFace(l.pool.IDs(r), l.pool.CellID(r))
	}
}

// Canonicalize writes ids rotated so that the first occurrence of the
// minimum id leads, appending to dst.
func Canonicalize(dst, ids []int64) []int64 {
	n := len(dst)
	dst = append(dst, ids...)
	rotateInto(dst[n:], ids, minIndex(ids))
	return dst
}

// Equal reports whether two canonicalized faces describe the same face,
// allowing the reversed winding.
func Equal(a, b []int64) bool {
	return equalRotated(a, b, 0)
}

func minIndex(ids []int64) int {
	m := 0
	for i := 1; i < len(ids); i++ {
		if ids[i] < ids[m] {
			m = i
		}
	}
	return m
}

func rotateInto(dst, ids []int64, start int) {
	n := copy(dst, ids[start:])
	copy(dst[n:], ids[:start])
}

// equalRotated compares canonical face c against ids read from position
// start, forward and then reversed.
func equalRotated(c, ids []int64, start int) bool {
	n := len(ids)
	if len(c) != n || n == 0 || c[0] != ids[start] {
		return false
	}
	forward := true
	for i := 1; i < n; i++ {
		if c[i] != ids[(start+i)%n] {
			forward = false
			break
		}
	}
	if forward {
		return true
	}
	for i := 1; i < n; i++ {
		if c[i] != ids[(start-i+n)%n] {
			return false
		}
	}
	return true
}

// Package facepool provides the chunked face record pool and the
// insert/cancel face list used to find boundary faces inside one hash bucket.
//
// # Record layout
//
// A face record is a run of int64 words inside a pool chunk:
//
//	[0]        next record (Ref, NoRef when last)
//	[1]        owning cell id
//	[2]        point count (low 32 bits) | ghost flag (bit 32)
//	[3:3+n]    canonicalized vertex ids
//
// Records are addressed by Ref (chunk index << 32 | word offset) instead of
// pointers, so a Ref stays valid for as long as the pool is not rewound.
package facepool

import (
	"fmt"
	"math"
	"slices"

	skinerrors "github.com/tamirms/meshskin/errors"
)

const (
	headerWords = 3
	ghostBit    = int64(1) << 32

	// DefaultChunkWords is the default chunk size in int64 words (512 KiB).
	DefaultChunkWords = 1 << 16

	// minChunkWords keeps tiny configured chunks from degenerating into one
	// chunk per record.
	minChunkWords = 64

	maxChunks = math.MaxInt32
)

// Ref addresses a record in a Pool.
type Ref uint64

// NoRef marks the end of a list.
const NoRef = Ref(math.MaxUint64)

// Pool is a bump allocator over a growable list of fixed-size chunks.
// Chunks are never freed or moved; ResetIndices rewinds the bump pointer so
// the same chunks serve the next batch of records.
//
// A Pool is NOT safe for concurrent use. Each worker owns its own pool.
type Pool struct {
	chunkWords int
	chunks     [][]int64
	chunk      int // index of the chunk currently bump-allocated from
	used       int // words used in chunks[chunk]
}

// NewPool creates a pool whose chunks hold chunkWords int64 words.
// chunkWords <= 0 selects DefaultChunkWords.
func NewPool(chunkWords int) *Pool {
	if chunkWords <= 0 {
		chunkWords = DefaultChunkWords
	}
	chunkWords = max(chunkWords, minChunkWords)
	return &Pool{
		chunkWords: chunkWords,
		chunks:     [][]int64{make([]int64, chunkWords)},
	}
}

// Allocate carves a record for numPoints vertex ids out of the current
// chunk. When the chunk is exhausted the next chunk is used, appending one
// if needed; records larger than a chunk get a dedicated oversized chunk.
// The record's header is zeroed except for the point count and next=NoRef.
func (p *Pool) Allocate(numPoints int) (Ref, error) {
	if numPoints < 0 || numPoints > math.MaxInt32 {
		return NoRef, fmt.Errorf("%w: record with %d points", skinerrors.ErrPoolExhausted, numPoints)
	}
	need := headerWords + numPoints
	if p.used+need > len(p.chunks[p.chunk]) {
		if err := p.advance(need); err != nil {
			return NoRef, err
		}
	}

	c := p.chunks[p.chunk]
	off := p.used
	p.used += need
	c[off] = -1 // NoRef
	c[off+1] = 0
	c[off+2] = int64(numPoints)
	return Ref(uint64(p.chunk)<<32 | uint64(off)), nil
}

// advance moves the bump pointer to a chunk that can hold need words.
// Chunks after the current one hold no live records, so a chunk that is too
// small is bypassed by inserting a larger one in front of it.
func (p *Pool) advance(need int) error {
	next := p.chunk + 1
	if next < len(p.chunks) && len(p.chunks[next]) >= need {
		p.chunk, p.used = next, 0
		return nil
	}
	if len(p.chunks) >= maxChunks {
		return fmt.Errorf("%w: %d chunks in use", skinerrors.ErrPoolExhausted, len(p.chunks))
	}
	p.chunks = slices.Insert(p.chunks, next, make([]int64, max(p.chunkWords, need)))
	p.chunk, p.used = next, 0
	return nil
}

// ResetIndices rewinds the pool to its first chunk. All outstanding Refs
// become invalid; the chunks themselves are retained.
func (p *Pool) ResetIndices() {
	p.chunk = 0
	p.used = 0
}

// NumChunks returns the number of chunks the pool has grown to.
func (p *Pool) NumChunks() int {
	return len(p.chunks)
}

func (p *Pool) words(r Ref) []int64 {
	return p.chunks[r>>32][uint32(r):]
}

// Next returns the record linked after r.
func (p *Pool) Next(r Ref) Ref {
	return Ref(p.words(r)[0])
}

// SetNext links next after r.
func (p *Pool) SetNext(r, next Ref) {
	p.words(r)[0] = int64(next)
}

// CellID returns the owning cell of record r.
func (p *Pool) CellID(r Ref) int64 {
	return p.words(r)[1]
}

// Ghost reports whether record r belongs to a ghost cell.
func (p *Pool) Ghost(r Ref) bool {
	return p.words(r)[2]&ghostBit != 0
}

// SetOwner records the owning cell and ghost flag of r.
func (p *Pool) SetOwner(r Ref, cellID int64, ghost bool) {
	w := p.words(r)
	w[1] = cellID
	meta := w[2] &^ ghostBit
	if ghost {
		meta |= ghostBit
	}
	w[2] = meta
}

// IDs returns the vertex id storage of record r. The slice aliases the pool.
func (p *Pool) IDs(r Ref) []int64 {
	w := p.words(r)
	n := int(uint32(w[2]))
	return w[headerWords : headerWords+n : headerWords+n]
}

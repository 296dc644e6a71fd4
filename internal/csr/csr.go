// Package csr builds static bucketed tables with a parallel counting sort.
//
// Construction runs in four passes over the sources:
//
//  1. histogram: every source emits its (bucket, tag) pairs and the bucket
//     sizes are counted with atomic adds
//  2. prefix sum: bucket sizes become bucket offsets (serial)
//  3. scatter: sources emit again and each pair is written at an atomically
//     claimed slot of its bucket
//  4. bucket sort: each bucket is sorted by (source, tag) so the table
//     content does not depend on scheduling
//
// The emit function is called exactly twice per source and must yield the
// same pairs in both passes.
package csr

import (
	"context"
	"slices"
	"sync/atomic"

	intbits "github.com/tamirms/meshskin/internal/bits"
	"github.com/tamirms/meshskin/internal/parallel"
)

// Table maps a bucket to the (source, tag) pairs that landed in it.
// Bucket b holds Sources[Offsets[b]:Offsets[b+1]] and the parallel Tags.
type Table struct {
	Offsets []int64
	Sources []int64
	Tags    []int32
}

// EmitFunc yields the (bucket, tag) pairs of source src.
type EmitFunc func(src int64, yield func(bucket int64, tag int32))

// Build constructs a table with numBuckets buckets from numSources sources.
func Build(ctx context.Context, numBuckets, numSources int64, workers int, emit EmitFunc) (*Table, error) {
	workers = parallel.Workers(workers, numSources)
	counts := make([]int64, numBuckets+1)

	err := parallel.For(ctx, numSources, workers, func(ctx context.Context, _ int, begin, end int64) error {
		check := parallel.NewChecker(ctx, end-begin)
		count := func(bucket int64, _ int32) {
			atomic.AddInt64(&counts[bucket], 1)
		}
		for src := begin; src < end; src++ {
			if err := check.Tick(); err != nil {
				return err
			}
			emit(src, count)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	total := intbits.ExclusiveScan(counts[:numBuckets])
	counts[numBuckets] = total

	t := &Table{
		Offsets: counts,
		Sources: make([]int64, total),
		Tags:    make([]int32, total),
	}
	cursor := slices.Clone(counts[:numBuckets])

	err = parallel.For(ctx, numSources, workers, func(ctx context.Context, _ int, begin, end int64) error {
		check := parallel.NewChecker(ctx, end-begin)
		for src := begin; src < end; src++ {
			if err := check.Tick(); err != nil {
				return err
			}
			emit(src, func(bucket int64, tag int32) {
				pos := atomic.AddInt64(&cursor[bucket], 1) - 1
				t.Sources[pos] = src
				t.Tags[pos] = tag
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = parallel.For(ctx, numBuckets, parallel.Workers(workers, numBuckets), func(ctx context.Context, _ int, begin, end int64) error {
		check := parallel.NewChecker(ctx, end-begin)
		for b := begin; b < end; b++ {
			if err := check.Tick(); err != nil {
				return err
			}
			t.sortBucket(b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// NumBuckets returns the number of buckets.
func (t *Table) NumBuckets() int64 {
	return int64(len(t.Offsets) - 1)
}

// Len returns the number of pairs in bucket b.
func (t *Table) Len(b int64) int {
	return int(t.Offsets[b+1] - t.Offsets[b])
}

// BucketSources returns the sources of bucket b. The slice aliases the table.
func (t *Table) BucketSources(b int64) []int64 {
	return t.Sources[t.Offsets[b]:t.Offsets[b+1]]
}

// BucketTags returns the tags of bucket b. The slice aliases the table.
func (t *Table) BucketTags(b int64) []int32 {
	return t.Tags[t.Offsets[b]:t.Offsets[b+1]]
}

// insertionSortMax is the bucket size up to which buckets are insertion
// sorted in place.
const insertionSortMax = 32

func (t *Table) sortBucket(b int64) {
	src := t.BucketSources(b)
	tags := t.BucketTags(b)
	n := len(src)
	if n < 2 {
		return
	}
	if n <= insertionSortMax {
		for i := 1; i < n; i++ {
			s, g := src[i], tags[i]
			j := i
			for ; j > 0 && (src[j-1] > s || (src[j-1] == s && tags[j-1] > g)); j-- {
				src[j], tags[j] = src[j-1], tags[j-1]
			}
			src[j], tags[j] = s, g
		}
		return
	}

	type pair struct {
		src int64
		tag int32
	}
	pairs := make([]pair, n)
	for i := range pairs {
		pairs[i] = pair{src[i], tags[i]}
	}
	slices.SortFunc(pairs, func(a, b pair) int {
		if a.src != b.src {
			if a.src < b.src {
				return -1
			}
			return 1
		}
		return int(a.tag) - int(b.tag)
	})
	for i, p := range pairs {
		src[i], tags[i] = p.src, p.tag
	}
}

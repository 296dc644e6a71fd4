package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	skinerrors "github.com/tamirms/meshskin/errors"
)

func TestWorkers(t *testing.T) {
	assert.Equal(t, 1, Workers(0, 100))
	assert.Equal(t, 1, Workers(-3, 100))
	assert.Equal(t, 4, Workers(4, 100))
	assert.Equal(t, 3, Workers(8, 3))
	assert.Equal(t, 1, Workers(8, 0))
}

func TestForCoversRangeInOrder(t *testing.T) {
	const n = 10_007
	for _, workers := range []int{1, 2, 3, 8, 16} {
		seen := make([]int32, n)
		owner := make([]int, n)
		err := For(context.Background(), n, workers, func(_ context.Context, w int, begin, end int64) error {
			for i := begin; i < end; i++ {
				atomic.AddInt32(&seen[i], 1)
				owner[i] = w
			}
			return nil
		})
		require.NoError(t, err)
		for i := range n {
			require.Equal(t, int32(1), seen[i], "workers=%d index %d", workers, i)
			if i > 0 {
				require.LessOrEqual(t, owner[i-1], owner[i], "ranges must be ordered by worker")
			}
		}
	}
}

func TestForPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	err := For(context.Background(), 100, 4, func(_ context.Context, w int, _, _ int64) error {
		if w == 2 {
			return boom
		}
		return nil
	})
	require.ErrorIs(t, err, boom)
}

func TestCheckerAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewChecker(ctx, 50)
	var err error
	for range 50 {
		if err = c.Tick(); err != nil {
			break
		}
	}
	require.ErrorIs(t, err, skinerrors.ErrAborted)
	require.ErrorIs(t, err, context.Canceled)
}

func TestForCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := For(ctx, 10, 1, func(context.Context, int, int64, int64) error { return nil })
	require.ErrorIs(t, err, skinerrors.ErrAborted)
}

package worker_test

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locline/internal/worker"
)

func TestRunKeepsInputOrder(t *testing.T) {
	pool := worker.NewPool(4, func(_ context.Context, n int) (string, error) {
		return strconv.Itoa(n * 2), nil
	})

	outcomes := pool.Run(context.Background(), []int{1, 2, 3, 4, 5})
	require.Len(t, outcomes, 5)
	for i, o := range outcomes {
		require.NoError(t, o.Err)
		assert.Equal(t, i+1, o.Input)
		assert.Equal(t, strconv.Itoa((i+1)*2), o.Result)
	}
}

func TestRunRecordsPerInputErrors(t *testing.T) {
	boom := errors.New("boom")
	pool := worker.NewPool(2, func(_ context.Context, n int) (int, error) {
		if n%2 == 0 {
			return 0, boom
		}
		return n, nil
	})

	outcomes := pool.Run(context.Background(), []int{1, 2, 3})
	require.Len(t, outcomes, 3)
	assert.NoError(t, outcomes[0].Err)
	assert.ErrorIs(t, outcomes[1].Err, boom)
	assert.NoError(t, outcomes[2].Err)
}

func TestRunEmptyInput(t *testing.T) {
	pool := worker.NewPool(2, func(_ context.Context, n int) (int, error) { return n, nil })
	assert.Empty(t, pool.Run(context.Background(), nil))
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var processed atomic.Int32
	pool := worker.NewPool(1, func(ctx context.Context, n int) (int, error) {
		if processed.Add(1) == 1 {
			cancel()
		}
		return n, nil
	})

	inputs := make([]int, 100)
	outcomes := pool.Run(ctx, inputs)
	require.Len(t, outcomes, 100)

	var unprocessed int
	for _, o := range outcomes {
		if errors.Is(o.Err, context.Canceled) {
			unprocessed++
		}
	}
	assert.Positive(t, unprocessed)
}

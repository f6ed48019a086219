package fanout

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_PreservesInputOrder(t *testing.T) {
	// Later tasks finish first; results must still match input order.
	tasks := make([]Task[int], 8)
	for i := range tasks {
		i := i
		tasks[i] = func(ctx context.Context) (int, error) {
			time.Sleep(time.Duration(len(tasks)-i) * time.Millisecond)
			return i * 10, nil
		}
	}

	results := Run(context.Background(), 4, tasks)

	require.Len(t, results, 8)
	for i, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, i*10, *r)
	}
}

func TestRun_NeverExceedsLimit(t *testing.T) {
	const limit = 10
	const n = 12

	var active, peak atomic.Int32

	tasks := make([]Task[string], n)
	for i := range tasks {
		i := i
		tasks[i] = func(ctx context.Context) (string, error) {
			cur := active.Add(1)
			for {
				p := peak.Load()
				if cur <= p || peak.CompareAndSwap(p, cur) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			active.Add(-1)
			return fmt.Sprintf("member-%d", i), nil
		}
	}

	results := Run(context.Background(), limit, tasks)

	require.Len(t, results, n)
	assert.LessOrEqual(t, peak.Load(), int32(limit))
}

func TestRun_FailuresYieldAbsentEntries(t *testing.T) {
	tasks := []Task[string]{
		func(ctx context.Context) (string, error) { return "a", nil },
		func(ctx context.Context) (string, error) { return "", fmt.Errorf("unreachable") },
		func(ctx context.Context) (string, error) { return "c", nil },
		func(ctx context.Context) (string, error) { return "", fmt.Errorf("unreachable") },
	}

	results := Run(context.Background(), 2, tasks)

	require.Len(t, results, 4)
	require.NotNil(t, results[0])
	assert.Equal(t, "a", *results[0])
	assert.Nil(t, results[1])
	require.NotNil(t, results[2])
	assert.Equal(t, "c", *results[2])
	assert.Nil(t, results[3])
}

func TestRun_EmptyInput(t *testing.T) {
	results := Run[int](context.Background(), 3, nil)
	assert.Empty(t, results)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tasks := []Task[int]{
		func(ctx context.Context) (int, error) { return 1, nil },
	}

	results := Run(ctx, 1, tasks)
	require.Len(t, results, 1)
	assert.Nil(t, results[0], "cancelled batch leaves entries absent")
}

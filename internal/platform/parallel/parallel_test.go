package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartial_CollectsAllResults(t *testing.T) {
	boom := errors.New("boom")

	results := Partial(context.Background(),
		func(context.Context) (int, error) { return 1, nil },
		func(context.Context) (int, error) { return 0, boom },
		func(context.Context) (int, error) { return 3, nil },
	)

	require.Len(t, results, 3)
	assert.Equal(t, 1, results[0].Value)
	assert.ErrorIs(t, results[1].Err, boom)
	assert.Equal(t, 3, results[2].Value)
}

func TestPartial_DoesNotCancelOnError(t *testing.T) {
	var completed atomic.Int32

	fns := make([]func(context.Context) (struct{}, error), 10)
	for i := range fns {
		fail := i == 0
		fns[i] = func(context.Context) (struct{}, error) {
			if fail {
				return struct{}{}, errors.New("first fails")
			}
			completed.Add(1)
			return struct{}{}, nil
		}
	}

	Partial(context.Background(), fns...)
	assert.Equal(t, int32(9), completed.Load())
}

func TestPartialLimit_BoundsConcurrency(t *testing.T) {
	const limit = 2

	var active, maxActive atomic.Int32

	fns := make([]func(context.Context) (struct{}, error), 8)
	for i := range fns {
		fns[i] = func(context.Context) (struct{}, error) {
			n := active.Add(1)
			for {
				m := maxActive.Load()
				if n <= m || maxActive.CompareAndSwap(m, n) {
					break
				}
			}
			active.Add(-1)
			return struct{}{}, nil
		}
	}

	results := PartialLimit(context.Background(), limit, fns...)

	require.Len(t, results, 8)
	assert.LessOrEqual(t, maxActive.Load(), int32(limit))
}

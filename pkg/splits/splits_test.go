package splits_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/labelsync/pkg/errors"
	"github.com/agentstation/labelsync/pkg/logging"
	"github.com/agentstation/labelsync/pkg/splits"
)

func TestRunPreservesSplitOrder(t *testing.T) {
	names := []string{"train", "val", "test"}
	delays := map[string]time.Duration{"train": 30 * time.Millisecond, "val": 10 * time.Millisecond, "test": 0}

	results := splits.Run(context.Background(), names, 3, func(ctx context.Context, split string) (string, error) {
		time.Sleep(delays[split])
		return "done:" + split, nil
	})

	require.Len(t, results, 3)
	for i, name := range names {
		assert.Equal(t, name, results[i].Split)
		assert.Equal(t, "done:"+name, results[i].Value)
		assert.NoError(t, results[i].Err)
	}
	assert.Empty(t, splits.Errors(results))
}

func TestRunBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	names := make([]string, 8)
	for i := range names {
		names[i] = fmt.Sprintf("split%d", i)
	}

	splits.Run(context.Background(), names, 2, func(ctx context.Context, split string) (struct{}, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return struct{}{}, nil
	})

	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.GreaterOrEqual(t, peak.Load(), int32(1))
}

func TestRunCollectsErrorsPerSplit(t *testing.T) {
	boom := errors.New("boom")
	results := splits.Run(context.Background(), []string{"train", "val"}, 0, func(ctx context.Context, split string) (int, error) {
		if split == "val" {
			return 0, boom
		}
		return 1, nil
	})

	assert.NoError(t, results[0].Err)
	assert.Equal(t, 1, results[0].Value)
	assert.ErrorIs(t, results[1].Err, boom)
	assert.Equal(t, []error{boom}, splits.Errors(results))
}

func TestRunTagsLoggerWithSplit(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	splits.Run(ctx, []string{"val"}, 1, func(ctx context.Context, split string) (struct{}, error) {
		logging.FromContext(ctx).Info().Msg("working")
		return struct{}{}, nil
	})

	tl.AssertContains(t, `"split":"val"`)
}

package feed

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chartdesk/apperror"
	"chartdesk/model"
	"chartdesk/utils/pointer"
)

var key = model.NewSeriesKey("AAPL", model.Timeframe1D)

func rows(n int) []model.Quote {
	out := make([]model.Quote, n)
	for i := range out {
		out[i] = model.Quote{
			Time:  time.Date(2024, time.January, i+1, 0, 0, 0, 0, time.UTC),
			Close: pointer.Create(float64(i)),
		}
	}
	return out
}

func passThrough(quotes []model.Quote) ([]model.Quote, error) { return quotes, nil }

func TestRunSuccess(t *testing.T) {
	c := NewFetchCoordinator()
	var committed []model.Quote

	out, err := c.Run(context.Background(), key,
		func(ctx context.Context) ([]model.Quote, error) { return rows(5), nil },
		func(quotes []model.Quote) ([]model.Quote, error) {
			committed = quotes
			return quotes, nil
		})

	require.NoError(t, err)
	assert.Len(t, out, 5)
	assert.Len(t, committed, 5)
	assert.False(t, c.Failed(key))
	assert.Equal(t, 0, c.InFlight())
}

func TestRunInsufficientData(t *testing.T) {
	c := NewFetchCoordinator()
	commitCalled := false

	_, err := c.Run(context.Background(), key,
		func(ctx context.Context) ([]model.Quote, error) { return rows(3), nil },
		func(quotes []model.Quote) ([]model.Quote, error) {
			commitCalled = true
			return quotes, nil
		})

	assert.ErrorIs(t, err, apperror.ErrInsufficientData)
	assert.False(t, commitCalled)
	assert.True(t, c.Failed(key))
	assert.Equal(t, []string{"AAPL_1D"}, c.FailedKeys())
}

func TestRunTimeout(t *testing.T) {
	c := NewFetchCoordinator(WithTimeout(50 * time.Millisecond))
	commitCalled := atomic.Bool{}
	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	_, err := c.Run(context.Background(), key,
		func(ctx context.Context) ([]model.Quote, error) {
			// ctx 를 무시하는 느린 fetch
			<-release
			return rows(10), nil
		},
		func(quotes []model.Quote) ([]model.Quote, error) {
			commitCalled.Store(true)
			return quotes, nil
		})

	assert.ErrorIs(t, err, apperror.ErrTimeout)
	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, c.Failed(key))
	assert.False(t, commitCalled.Load())
}

func TestRunNetworkErrorNotMarkedFailed(t *testing.T) {
	c := NewFetchCoordinator()

	_, err := c.Run(context.Background(), key,
		func(ctx context.Context) ([]model.Quote, error) { return nil, errors.New("connection refused") },
		passThrough)

	assert.ErrorIs(t, err, apperror.ErrNetwork)
	assert.False(t, c.Failed(key))
}

func TestSuccessClearsFailedMark(t *testing.T) {
	c := NewFetchCoordinator()
	_, err := c.Run(context.Background(), key,
		func(ctx context.Context) ([]model.Quote, error) { return rows(1), nil }, passThrough)
	require.Error(t, err)
	require.True(t, c.Failed(key))

	_, err = c.Run(context.Background(), key,
		func(ctx context.Context) ([]model.Quote, error) { return rows(6), nil }, passThrough)
	require.NoError(t, err)
	assert.False(t, c.Failed(key))
	assert.Empty(t, c.FailedKeys())
}

func TestRunSerializesSameKey(t *testing.T) {
	c := NewFetchCoordinator()
	var active, maxActive atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Run(context.Background(), key,
				func(ctx context.Context) ([]model.Quote, error) {
					n := active.Add(1)
					for {
						m := maxActive.Load()
						if n <= m || maxActive.CompareAndSwap(m, n) {
							break
						}
					}
					time.Sleep(5 * time.Millisecond)
					active.Add(-1)
					return rows(5), nil
				}, passThrough)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxActive.Load())
}

func TestRunDifferentKeysInParallel(t *testing.T) {
	c := NewFetchCoordinator(WithTimeout(time.Second))
	other := model.NewSeriesKey("GOOGL", model.Timeframe1D)
	started := make(chan struct{}, 2)
	proceed := make(chan struct{})

	fetch := func(ctx context.Context) ([]model.Quote, error) {
		started <- struct{}{}
		<-proceed
		return rows(5), nil
	}

	var wg sync.WaitGroup
	for _, k := range []model.SeriesKey{key, other} {
		wg.Add(1)
		go func(k model.SeriesKey) {
			defer wg.Done()
			_, err := c.Run(context.Background(), k, fetch, passThrough)
			assert.NoError(t, err)
		}(k)
	}

	// 두 key 의 fetch 가 동시에 시작되어야 함
	<-started
	<-started
	assert.Equal(t, 2, c.InFlight())
	close(proceed)
	wg.Wait()
}

func TestAcquireHonoursContext(t *testing.T) {
	c := NewFetchCoordinator()
	release, err := c.Acquire(context.Background(), key)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = c.Acquire(ctx, key)
	assert.ErrorIs(t, err, apperror.ErrLockFailure)
}

func TestForgetSymbol(t *testing.T) {
	c := NewFetchCoordinator()
	fail := func(ctx context.Context) ([]model.Quote, error) { return rows(0), nil }

	aapl1H := model.NewSeriesKey("AAPL", model.Timeframe1H)
	msft := model.NewSeriesKey("MSFT", model.Timeframe1D)
	for _, k := range []model.SeriesKey{key, aapl1H, msft} {
		_, err := c.Run(context.Background(), k, fail, passThrough)
		require.ErrorIs(t, err, apperror.ErrInsufficientData)
	}
	require.Len(t, c.FailedKeys(), 3)

	c.ForgetSymbol("aapl")
	assert.Equal(t, []string{"MSFT_1D"}, c.FailedKeys())
	assert.False(t, c.Failed(key))
	assert.False(t, c.Failed(aapl1H))

	c.ForgetSymbol("TSLA")
	assert.Equal(t, []string{"MSFT_1D"}, c.FailedKeys())
}

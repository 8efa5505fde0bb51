package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chartdesk/apperror"
	"chartdesk/model"
	"chartdesk/utils/pointer"
)

var fixedNow = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

func newTestStore() *SeriesStore {
	return NewSeriesStore(WithClock(func() time.Time { return fixedNow }))
}

func quote(d int, close float64) model.Quote {
	c := pointer.Create(close)
	return model.Quote{
		Time:  time.Date(2024, time.February, d, 0, 0, 0, 0, time.UTC),
		Open:  c,
		High:  c,
		Low:   c,
		Close: c,
	}
}

func TestRegister(t *testing.T) {
	s := newTestStore()

	require.True(t, s.Register("aapl"))
	require.False(t, s.Register("AAPL"))
	assert.Equal(t, []string{"AAPL"}, s.Symbols())

	for _, tf := range model.Timeframes {
		key := model.NewSeriesKey("AAPL", tf)
		w, ok := s.ReadWindow(key)
		require.True(t, ok, tf)
		assert.Equal(t, model.DefaultWindow(tf, fixedNow), w)

		quotes, ok := s.Read(key)
		require.True(t, ok)
		assert.Empty(t, quotes)
	}
}

func TestRegisterKeepsExistingData(t *testing.T) {
	s := newTestStore()
	key := model.NewSeriesKey("AAPL", model.Timeframe1D)
	s.Register("AAPL")
	_, err := s.Merge(key, []model.Quote{quote(1, 10)})
	require.NoError(t, err)

	s.Register("AAPL")

	quotes, _ := s.Read(key)
	assert.Len(t, quotes, 1)
}

func TestSymbolsKeepRegistrationOrder(t *testing.T) {
	s := newTestStore()
	s.Register("MSFT")
	s.Register("AAPL")
	s.Register("GOOGL")
	require.True(t, s.Unregister("AAPL"))
	require.False(t, s.Unregister("AAPL"))

	assert.Equal(t, []string{"MSFT", "GOOGL"}, s.Symbols())
	_, ok := s.Read(model.NewSeriesKey("AAPL", model.Timeframe1D))
	assert.False(t, ok)
}

func TestUnknownKey(t *testing.T) {
	s := newTestStore()
	key := model.NewSeriesKey("AAPL", model.Timeframe1D)

	_, ok := s.Read(key)
	assert.False(t, ok)
	_, ok = s.ReadWindow(key)
	assert.False(t, ok)

	_, err := s.Merge(key, []model.Quote{quote(1, 1)})
	assert.ErrorIs(t, err, apperror.ErrUnknownKey)
	_, err = s.RemoveAt(key, fixedNow)
	assert.ErrorIs(t, err, apperror.ErrUnknownKey)
	assert.ErrorIs(t, s.SetWindow(key, fixedNow, fixedNow), apperror.ErrUnknownKey)
	assert.ErrorIs(t, s.Replace(key, nil), apperror.ErrUnknownKey)
	_, _, err = s.FillAndGrow(key, model.Window{}, nil)
	assert.ErrorIs(t, err, apperror.ErrUnknownKey)
}

func TestMerge(t *testing.T) {
	key := model.NewSeriesKey("AAPL", model.Timeframe1D)

	t.Run("idempotent", func(t *testing.T) {
		s := newTestStore()
		s.Register("AAPL")
		batch := []model.Quote{quote(3, 12), quote(1, 10), quote(2, 11)}

		accepted, err := s.Merge(key, batch)
		require.NoError(t, err)
		assert.Len(t, accepted, 3)
		once, _ := s.Read(key)

		accepted, err = s.Merge(key, batch)
		require.NoError(t, err)
		assert.Empty(t, accepted)
		twice, _ := s.Read(key)

		assert.Equal(t, once, twice)
	})

	t.Run("sorted by time", func(t *testing.T) {
		s := newTestStore()
		s.Register("AAPL")
		_, _ = s.Merge(key, []model.Quote{quote(5, 15), quote(6, 16)})
		_, _ = s.Merge(key, []model.Quote{quote(2, 12), quote(4, 14)})

		quotes, _ := s.Read(key)
		require.Len(t, quotes, 4)
		for i := 1; i < len(quotes); i++ {
			assert.True(t, quotes[i-1].Time.Before(quotes[i].Time))
		}
	})

	t.Run("same time different fields kept", func(t *testing.T) {
		s := newTestStore()
		s.Register("AAPL")
		_, _ = s.Merge(key, []model.Quote{quote(1, 10)})
		accepted, _ := s.Merge(key, []model.Quote{quote(1, 11)})

		assert.Len(t, accepted, 1)
		quotes, _ := s.Read(key)
		assert.Len(t, quotes, 2)
	})
}

func TestRemoveAt(t *testing.T) {
	s := newTestStore()
	s.Register("AAPL")
	key := model.NewSeriesKey("AAPL", model.Timeframe1D)
	_, _ = s.Merge(key, []model.Quote{quote(1, 10), quote(1, 11), quote(2, 12)})

	removed, err := s.RemoveAt(key, quote(1, 0).Time)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	quotes, _ := s.Read(key)
	require.Len(t, quotes, 1)
	assert.Equal(t, 12.0, quotes[0].CloseValue())
}

func TestSetWindow(t *testing.T) {
	s := newTestStore()
	s.Register("AAPL")
	key := model.NewSeriesKey("AAPL", model.Timeframe1D)
	from := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.SetWindow(key, from, fixedNow))
	w, _ := s.ReadWindow(key)
	assert.Equal(t, model.Window{From: from, To: fixedNow}, w)

	err := s.SetWindow(key, fixedNow, from)
	assert.ErrorIs(t, err, apperror.ErrInvalidParameters)
}

func TestReplace(t *testing.T) {
	s := newTestStore()
	s.Register("AAPL")
	key := model.NewSeriesKey("AAPL", model.Timeframe1D)
	_, _ = s.Merge(key, []model.Quote{quote(1, 10), quote(2, 11)})

	require.NoError(t, s.Replace(key, []model.Quote{quote(9, 19), quote(8, 18)}))

	quotes, _ := s.Read(key)
	require.Len(t, quotes, 2)
	assert.Equal(t, 18.0, quotes[0].CloseValue())
	assert.Equal(t, 19.0, quotes[1].CloseValue())
}

func TestFillAndGrow(t *testing.T) {
	key := model.NewSeriesKey("AAPL", model.Timeframe1M)

	t.Run("window grows by growth step", func(t *testing.T) {
		s := newTestStore()
		s.Register("AAPL")
		prev, _ := s.ReadWindow(key)

		quotes, w, err := s.FillAndGrow(key, prev, []model.Quote{quote(27, 10), quote(28, 11)})
		require.NoError(t, err)

		assert.Len(t, quotes, 2)
		assert.Equal(t, prev.From.Add(-5*24*time.Hour), w.From)
		assert.Equal(t, quote(26, 0).Time, w.To)
		assert.False(t, w.From.After(prev.From))
		stored, _ := s.ReadWindow(key)
		assert.Equal(t, w, stored)
	})

	t.Run("no accepted quotes falls back to previous from", func(t *testing.T) {
		s := newTestStore()
		s.Register("AAPL")
		prev, _ := s.ReadWindow(key)

		_, w, err := s.FillAndGrow(key, prev, nil)
		require.NoError(t, err)
		assert.Equal(t, prev.From, w.To)
		assert.True(t, w.Valid())
	})

	t.Run("clamped to floor", func(t *testing.T) {
		s := newTestStore()
		s.Register("AAPL")
		prev := model.Window{From: model.FloorDate.Add(24 * time.Hour), To: fixedNow}

		_, w, err := s.FillAndGrow(key, prev, nil)
		require.NoError(t, err)
		assert.Equal(t, model.FloorDate, w.From)
	})

	t.Run("monotonic over repeated fetches", func(t *testing.T) {
		s := newTestStore()
		s.Register("AAPL")
		for i := 1; i <= 5; i++ {
			prev, _ := s.ReadWindow(key)
			_, w, err := s.FillAndGrow(key, prev, []model.Quote{quote(i, float64(i))})
			require.NoError(t, err)
			assert.False(t, w.From.After(prev.From))
			assert.True(t, w.Valid())
		}
	})

	t.Run("from lowered to to when earliest quote precedes grown from", func(t *testing.T) {
		s := newTestStore()
		s.Register("AAPL")
		prev, _ := s.ReadWindow(key)

		_, w, err := s.FillAndGrow(key, prev, []model.Quote{quote(10, 10), quote(11, 11)})
		require.NoError(t, err)

		assert.Equal(t, quote(9, 0).Time, w.To)
		assert.Equal(t, w.To, w.From)
		assert.True(t, w.From.Before(prev.From.Add(-5*24*time.Hour)))
	})

	t.Run("duplicate timestamps dropped entirely", func(t *testing.T) {
		s := newTestStore()
		s.Register("AAPL")
		_, _ = s.Merge(key, []model.Quote{quote(1, 10), quote(2, 11)})
		prev, _ := s.ReadWindow(key)

		quotes, _, err := s.FillAndGrow(key, prev, []model.Quote{quote(2, 99), quote(3, 12)})
		require.NoError(t, err)

		require.Len(t, quotes, 2)
		assert.Equal(t, 10.0, quotes[0].CloseValue())
		assert.Equal(t, 12.0, quotes[1].CloseValue())
		stored, _ := s.Read(key)
		assert.Equal(t, quotes, stored)
	})
}

func TestConcurrentAccess(t *testing.T) {
	s := newTestStore()
	symbols := []string{"AAPL", "GOOGL", "AMZN"}
	for _, symbol := range symbols {
		s.Register(symbol)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := model.NewSeriesKey(symbols[i%len(symbols)], model.Timeframe1D)
			prev, _ := s.ReadWindow(key)
			_, _, err := s.FillAndGrow(key, prev, []model.Quote{quote(i%28+1, float64(i))})
			assert.NoError(t, err)
			_, _ = s.Read(key)
		}(i)
	}
	wg.Wait()

	for _, symbol := range symbols {
		quotes, _ := s.Read(model.NewSeriesKey(symbol, model.Timeframe1D))
		seen := map[int64]bool{}
		for _, q := range quotes {
			require.False(t, seen[q.Time.UnixNano()], fmt.Sprintf("%s duplicate %s", symbol, q.Time))
			seen[q.Time.UnixNano()] = true
		}
	}
}

package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chartdesk/apperror"
	"chartdesk/model"
	"chartdesk/utils/pointer"
)

func quotes(closes ...float64) []model.Quote {
	out := make([]model.Quote, len(closes))
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		out[i] = model.Quote{Time: start.AddDate(0, 0, i), Close: pointer.Create(c)}
	}
	return out
}

func rising(n int) []model.Quote {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = float64(10 + i)
	}
	return quotes(closes...)
}

func falling(n int) []model.Quote {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = float64(100 - i)
	}
	return quotes(closes...)
}

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{
		"alligator":  KindAlligator,
		"MACD":       KindMACD,
		"three_ema":  KindThreeEMA,
		"Triple EMA": KindThreeEMA,
	}
	for input, want := range cases {
		got, err := ParseKind(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got)
	}

	_, err := ParseKind("turtle")
	assert.ErrorIs(t, err, apperror.ErrInvalidParameters)
}

func TestNewValidatesParams(t *testing.T) {
	_, err := New(KindMACD, []int{12, 26})
	assert.ErrorIs(t, err, apperror.ErrInvalidParameters)

	_, err = New(KindAlligator, []int{13, 0, 5})
	assert.ErrorIs(t, err, apperror.ErrInvalidParameters)

	_, err = New(Kind("grid"), []int{1, 2, 3})
	assert.ErrorIs(t, err, apperror.ErrInvalidParameters)

	s, err := New(KindThreeEMA, []int{5, 10, 20})
	require.NoError(t, err)
	assert.Equal(t, "three_ema(5,10,20)", s.Name())
}

func TestSignalsShape(t *testing.T) {
	for _, kind := range []Kind{KindAlligator, KindMACD, KindThreeEMA} {
		t.Run(string(kind), func(t *testing.T) {
			qs := rising(30)
			signals, err := Signals(kind, "AAPL", qs, []int{3, 5, 8})
			require.NoError(t, err)
			require.Len(t, signals, len(qs))
			assert.Equal(t, model.SignalHold, signals[0])
		})
	}

	signals, err := Signals(KindThreeEMA, "AAPL", nil, []int{3, 5, 8})
	require.NoError(t, err)
	assert.Empty(t, signals)
}

func TestThreeEMA(t *testing.T) {
	t.Run("uptrend buys", func(t *testing.T) {
		signals, err := Signals(KindThreeEMA, "AAPL", rising(20), []int{3, 6, 12})
		require.NoError(t, err)
		for _, s := range signals[1:] {
			assert.Equal(t, model.SignalBuy, s)
		}
	})

	t.Run("downtrend sells", func(t *testing.T) {
		signals, err := Signals(KindThreeEMA, "AAPL", falling(20), []int{3, 6, 12})
		require.NoError(t, err)
		for _, s := range signals[1:] {
			assert.Equal(t, model.SignalSell, s)
		}
	})
}

func TestAlligator(t *testing.T) {
	// jaw=8, teeth=5, lips=3
	signals, err := Signals(KindAlligator, "AAPL", rising(20), []int{8, 5, 3})
	require.NoError(t, err)
	assert.Equal(t, model.SignalBuy, signals[len(signals)-1])

	signals, err = Signals(KindAlligator, "AAPL", falling(20), []int{8, 5, 3})
	require.NoError(t, err)
	assert.Equal(t, model.SignalSell, signals[len(signals)-1])
}

func TestMACDCross(t *testing.T) {
	t.Run("crosses", func(t *testing.T) {
		closes := []float64{10, 11, 12, 13, 14, 13, 11, 9, 7, 6, 7, 9, 11, 13, 15}
		signals, err := Signals(KindMACD, "AAPL", quotes(closes...), []int{2, 4, 3})
		require.NoError(t, err)

		assert.Equal(t, model.SignalBuy, signals[1])
		sell := indexOf(signals, model.SignalSell)
		require.Greater(t, sell, 1)
		assert.Contains(t, signals[sell+1:], model.SignalBuy)
	})

	t.Run("flat series never crosses", func(t *testing.T) {
		signals, err := Signals(KindMACD, "AAPL", quotes(10, 10, 10, 10, 10, 10), []int{2, 4, 3})
		require.NoError(t, err)
		for _, s := range signals {
			assert.Equal(t, model.SignalHold, s)
		}
	})
}

func indexOf(signals []model.Signal, target model.Signal) int {
	for i, s := range signals {
		if s == target {
			return i
		}
	}
	return -1
}

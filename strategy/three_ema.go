package strategy

import (
	"fmt"

	"chartdesk/indicator"
	"chartdesk/model"
)

// ThreeEMA : fast > mid > slow 이면 buy, fast < mid < slow 이면 sell
type ThreeEMA struct {
	Fast, Mid, Slow int
}

func (e ThreeEMA) Name() string {
	return fmt.Sprintf("three_ema(%d,%d,%d)", e.Fast, e.Mid, e.Slow)
}

func (e ThreeEMA) Indicators(df *model.Dataframe) {
	df.Metadata["fast"] = indicator.EMAValues(df.Close, e.Fast)
	df.Metadata["mid"] = indicator.EMAValues(df.Close, e.Mid)
	df.Metadata["slow"] = indicator.EMAValues(df.Close, e.Slow)
}

func (e ThreeEMA) OnCandle(df *model.Dataframe) model.Signal {
	fast := df.Metadata["fast"].Last(0)
	mid := df.Metadata["mid"].Last(0)
	slow := df.Metadata["slow"].Last(0)

	return stacked(fast, mid, slow)
}

// stacked : a > b > c 이면 buy, a < b < c 이면 sell
func stacked(a, b, c float64) model.Signal {
	switch {
	case a > b && b > c:
		return model.SignalBuy
	case a < b && b < c:
		return model.SignalSell
	default:
		return model.SignalHold
	}
}

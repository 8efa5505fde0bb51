package strategy

import (
	"fmt"

	"chartdesk/indicator"
	"chartdesk/model"
)

// MACDCross : MACD line 이 signal line 을 상향 돌파하면 buy, 하향 돌파하면 sell
type MACDCross struct {
	Short, Long, Signal int
}

func (m MACDCross) Name() string {
	return fmt.Sprintf("macd(%d,%d,%d)", m.Short, m.Long, m.Signal)
}

func (m MACDCross) Indicators(df *model.Dataframe) {
	line := indicator.MACDLineValues(df.Close, m.Short, m.Long)
	df.Metadata["macd"] = line
	df.Metadata["signal"] = indicator.EMAValues(line, m.Signal)
}

func (m MACDCross) OnCandle(df *model.Dataframe) model.Signal {
	line, signal := df.Metadata["macd"], df.Metadata["signal"]

	switch {
	case line.Crossover(signal):
		return model.SignalBuy
	case line.Crossunder(signal):
		return model.SignalSell
	default:
		return model.SignalHold
	}
}

package backtest

import (
	"time"

	"chartdesk/model"
)

// Trade : 청산까지 끝난 한 번의 거래
type Trade struct {
	Side       model.PositionSide `json:"side"`
	EntryTime  time.Time          `json:"entry_time"`
	ExitTime   time.Time          `json:"exit_time"`
	EntryPrice float64            `json:"entry_price"`
	ExitPrice  float64            `json:"exit_price"`
	Profit     float64            `json:"profit"`
}

// Broker : 고정 lot 하나짜리 long/short 포지션 회계
// short 도 진입 시 lot*price 를 지불하는 대칭 모델
type Broker struct {
	Capital    float64
	LotSize    float64
	Commission float64

	Position   float64 // 0 또는 LotSize
	Side       model.PositionSide
	EntryPrice float64
	EntryTime  time.Time

	Winning     int
	Losing      int
	GrossProfit float64
	GrossLoss   float64
	Trades      []Trade
}

func NewBacktestBroker(opts Options) *Broker {
	return &Broker{
		Capital:    opts.InitialCapital,
		LotSize:    opts.LotSize,
		Commission: opts.Commission,
		Side:       model.SideNone,
	}
}

func (b *Broker) Flat() bool {
	return b.Position == 0
}

// Open : lot*price + commission 지불
func (b *Broker) Open(side model.PositionSide, t time.Time, price float64) {
	b.Position = b.LotSize
	b.Side = side
	b.EntryPrice = price
	b.EntryTime = t
	b.Capital -= b.Position*price + b.Commission
}

// Close : lot*price - commission 수령
// 실현 손익은 직전 봉 종가 대비로 계산 (진입가 아님)
func (b *Broker) Close(t time.Time, price, prevPrice float64) Trade {
	b.Capital += b.Position*price - b.Commission

	var profit float64
	if b.Side == model.SideLong {
		profit = b.Position*(price-prevPrice) - 2*b.Commission
	} else {
		profit = b.Position*(prevPrice-price) - 2*b.Commission
	}

	if profit > 0 {
		b.Winning++
		b.GrossProfit += profit
	} else {
		b.Losing++
		b.GrossLoss -= profit
	}

	trade := Trade{
		Side:       b.Side,
		EntryTime:  b.EntryTime,
		ExitTime:   t,
		EntryPrice: b.EntryPrice,
		ExitPrice:  price,
		Profit:     profit,
	}
	b.Trades = append(b.Trades, trade)

	b.Position = 0
	b.Side = model.SideNone
	b.EntryPrice = 0
	b.EntryTime = time.Time{}
	return trade
}

// OnSignal : 전이 규칙 적용. 해당하지 않는 조합은 무시
func (b *Broker) OnSignal(signal model.Signal, t time.Time, price, prevPrice float64) {
	switch {
	case signal == model.SignalBuy && b.Flat():
		b.Open(model.SideLong, t, price)
	case signal == model.SignalSell && b.Flat():
		b.Open(model.SideShort, t, price)
	case signal == model.SignalSell && b.Side == model.SideLong:
		b.Close(t, price, prevPrice)
	case signal == model.SignalBuy && b.Side == model.SideShort:
		b.Close(t, price, prevPrice)
	}
}

// FinalCapital : 열린 포지션이 있으면 마지막 종가로 평가 (commission 1회)
func (b *Broker) FinalCapital(lastPrice float64) float64 {
	if b.Flat() {
		return b.Capital
	}
	return b.Capital + b.Position*lastPrice - b.Commission
}

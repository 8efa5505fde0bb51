package model

type Signal string

const (
	SignalBuy  Signal = "buy"
	SignalSell Signal = "sell"
	SignalHold Signal = "hold"
)

// PositionSide : 백테스트 포지션 방향
type PositionSide string

const (
	SideNone  PositionSide = "none"
	SideLong  PositionSide = "long"
	SideShort PositionSide = "short"
)

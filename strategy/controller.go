package strategy

import (
	"strings"

	"chartdesk/apperror"
	"chartdesk/interfaces"
	"chartdesk/model"
	"chartdesk/utils/log"
)

type Kind string

const (
	KindAlligator Kind = "alligator"
	KindMACD      Kind = "macd"
	KindThreeEMA  Kind = "three_ema"
)

// ParseKind : UI 의 표시 이름("Triple EMA", "MACD" 등)도 허용
func ParseKind(s string) (Kind, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)

	switch normalized {
	case "alligator":
		return KindAlligator, nil
	case "macd":
		return KindMACD, nil
	case "three_ema", "triple_ema":
		return KindThreeEMA, nil
	default:
		return "", apperror.New(apperror.KindInvalidParameters, "unknown strategy %q", s)
	}
}

// New : 세 개의 양수 파라미터로 전략 생성
func New(kind Kind, params []int) (interfaces.Strategy, error) {
	if len(params) != 3 {
		return nil, apperror.New(apperror.KindInvalidParameters,
			"%s requires exactly 3 parameters, got %d", kind, len(params))
	}
	for _, p := range params {
		if p <= 0 {
			return nil, apperror.New(apperror.KindInvalidParameters, "%s parameters must be positive, got %v", kind, params)
		}
	}

	switch kind {
	case KindAlligator:
		return Alligator{Jaw: params[0], Teeth: params[1], Lips: params[2]}, nil
	case KindMACD:
		return MACDCross{Short: params[0], Long: params[1], Signal: params[2]}, nil
	case KindThreeEMA:
		return ThreeEMA{Fast: params[0], Mid: params[1], Slow: params[2]}, nil
	}
	return nil, apperror.New(apperror.KindInvalidParameters, "unknown strategy %q", kind)
}

// Controller : quote 를 한 봉씩 재생하며 전략의 signal 을 수집
type Controller struct {
	Strategy  interfaces.Strategy
	Dataframe *model.Dataframe
}

func NewStrategyController(symbol string, strategy interfaces.Strategy, quotes []model.Quote) *Controller {
	df := model.NewDataframe(symbol, quotes)
	strategy.Indicators(df)
	return &Controller{
		Strategy:  strategy,
		Dataframe: df,
	}
}

// Signals : 봉마다 하나의 signal. 첫 봉은 항상 hold
func (c *Controller) Signals() []model.Signal {
	n := c.Dataframe.Length()
	signals := make([]model.Signal, n)
	for i := 0; i < n; i++ {
		if i == 0 {
			signals[i] = model.SignalHold
			continue
		}
		signals[i] = c.Strategy.OnCandle(c.Dataframe.Until(i))
	}
	log.Debugf("[BACKTEST] %s %s produced %d signals", c.Dataframe.Symbol, c.Strategy.Name(), n)
	return signals
}

// Signals : kind/params 검증 후 quote 전체에 대한 signal 생성
func Signals(kind Kind, symbol string, quotes []model.Quote, params []int) ([]model.Signal, error) {
	strat, err := New(kind, params)
	if err != nil {
		return nil, err
	}
	return NewStrategyController(symbol, strat, quotes).Signals(), nil
}

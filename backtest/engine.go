package backtest

import (
	"time"

	"github.com/google/uuid"

	"chartdesk/apperror"
	"chartdesk/model"
	"chartdesk/utils/log"
)

const (
	DefaultInitialCapital = 100000.0
	DefaultLotSize        = 20.0
	DefaultCommission     = 0.5
)

type Options struct {
	InitialCapital float64 `json:"initial_capital" yaml:"initial_capital"`
	LotSize        float64 `json:"lot_size" yaml:"lot_size"`
	Commission     float64 `json:"commission" yaml:"commission"`
}

func DefaultOptions() Options {
	return Options{
		InitialCapital: DefaultInitialCapital,
		LotSize:        DefaultLotSize,
		Commission:     DefaultCommission,
	}
}

func (o Options) Validate() error {
	if o.InitialCapital <= 0 || o.LotSize <= 0 || o.Commission < 0 {
		return apperror.New(apperror.KindInvalidParameters,
			"invalid backtest options: capital=%v lot=%v commission=%v", o.InitialCapital, o.LotSize, o.Commission)
	}
	return nil
}

type Result struct {
	RunID                 string         `json:"run_id"`
	Signals               []model.Signal `json:"signals"`
	Dates                 []time.Time    `json:"dates"`
	NumTrades             int            `json:"num_trades"`
	WinningTrades         int            `json:"winning_trades"`
	LosingTrades          int            `json:"losing_trades"`
	WinningPercentage     float64        `json:"winning_percentage"`
	ProfitFactor          float64        `json:"profit_factor"`
	FinalCapital          float64        `json:"final_capital"`
	TotalReturnPercentage float64        `json:"total_return_percentage"`
	Trades                []Trade        `json:"trades"`
}

// Run : signal 을 quote 에 맞춰 재생. 두 번째 봉부터 평가
// 거래 수는 청산된 거래 기준 (num_trades = winning + losing)
func Run(quotes []model.Quote, signals []model.Signal, opts Options) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	if len(quotes) != len(signals) {
		return Result{}, apperror.New(apperror.KindInvalidParameters,
			"signals (%d) and quotes (%d) must have the same length", len(signals), len(quotes))
	}

	broker := NewBacktestBroker(opts)
	for i := 1; i < len(signals); i++ {
		broker.OnSignal(signals[i], quotes[i].Time, quotes[i].CloseValue(), quotes[i-1].CloseValue())
	}

	lastPrice := 0.0
	if len(quotes) > 0 {
		lastPrice = quotes[len(quotes)-1].CloseValue()
	}
	finalCapital := broker.FinalCapital(lastPrice)

	numTrades := broker.Winning + broker.Losing
	winningPercentage := 0.0
	if numTrades > 0 {
		winningPercentage = float64(broker.Winning) / float64(numTrades) * 100
	}
	profitFactor := broker.GrossProfit
	if broker.GrossLoss > 0 {
		profitFactor = broker.GrossProfit / broker.GrossLoss
	}

	result := Result{
		RunID:                 uuid.NewString(),
		Signals:               append([]model.Signal{}, signals...),
		Dates:                 model.Times(quotes),
		NumTrades:             numTrades,
		WinningTrades:         broker.Winning,
		LosingTrades:          broker.Losing,
		WinningPercentage:     winningPercentage,
		ProfitFactor:          profitFactor,
		FinalCapital:          finalCapital,
		TotalReturnPercentage: (finalCapital/opts.InitialCapital - 1) * 100,
		Trades:                append([]Trade{}, broker.Trades...),
	}

	log.WithFields(log.Fields{
		"run_id":       result.RunID,
		"bars":         len(quotes),
		"trades":       numTrades,
		"final":        finalCapital,
		"return_pct":   result.TotalReturnPercentage,
		"open_at_exit": !broker.Flat(),
	}).Info("[BACKTEST] finished")

	return result, nil
}

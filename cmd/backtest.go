package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"chartdesk/desk"
	"chartdesk/model"
	"chartdesk/strategy"
	"chartdesk/utils/log"
	"chartdesk/utils/tools"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a strategy backtest against the quote provider",
	Long: `Backtest fetches [from, to] for one symbol straight from the provider,
runs the strategy and prints the result as JSON.

Supported strategies:
  - alligator: SMA jaw, teeth, lips
  - macd: short EMA, long EMA, signal EMA
  - three_ema: fast, mid, slow EMA

Example:
  chartdesk backtest -s AAPL -t 1D --from 2023-01-01 --to 2024-01-01 --strategy macd --params 12,26,9`,
	RunE: runBacktest,
}

var (
	btSymbol    string
	btTimeframe string
	btFrom      string
	btTo        string
	btStrategy  string
	btParams    string
	btSummary   bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btSymbol, "symbol", "s", "", "symbol (required)")
	backtestCmd.Flags().StringVarP(&btTimeframe, "timeframe", "t", string(model.Timeframe1D), "timeframe (1M, 1H, 1D, 1WK)")
	backtestCmd.Flags().StringVar(&btFrom, "from", "", "range start, YYYY-MM-DD or RFC3339 (required)")
	backtestCmd.Flags().StringVar(&btTo, "to", "", "range end, YYYY-MM-DD or RFC3339 (required)")
	backtestCmd.Flags().StringVar(&btStrategy, "strategy", string(strategy.KindMACD), "strategy (alligator, macd, three_ema)")
	backtestCmd.Flags().StringVar(&btParams, "params", "12,26,9", "three comma separated strategy lengths")
	backtestCmd.Flags().BoolVar(&btSummary, "summary", false, "omit per-bar signals and dates from the output")

	_ = backtestCmd.MarkFlagRequired("symbol")
	_ = backtestCmd.MarkFlagRequired("from")
	_ = backtestCmd.MarkFlagRequired("to")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	from, err := tools.ParseDate(btFrom)
	if err != nil {
		return err
	}
	to, err := tools.ParseDate(btTo)
	if err != nil {
		return err
	}
	params, err := tools.ParseInts(btParams, ",")
	if err != nil {
		return fmt.Errorf("params: %w", err)
	}

	d := newDesk(cfg)
	result, err := d.RunBacktest(cmd.Context(), desk.BacktestRequest{
		Symbol:    btSymbol,
		Timeframe: model.Timeframe(btTimeframe),
		From:      from,
		To:        to,
		Strategy:  strategy.Kind(btStrategy),
		Params:    params,
	})
	if err != nil {
		return err
	}

	log.Infof("[BACKTEST] %s %s: trades=%d win=%.2f%% final=%.2f return=%.2f%%",
		btSymbol, btTimeframe, result.NumTrades, result.WinningPercentage, result.FinalCapital, result.TotalReturnPercentage)

	if btSummary {
		result.Signals, result.Dates = nil, nil
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

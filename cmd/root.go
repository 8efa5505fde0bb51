package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"chartdesk/config"
	"chartdesk/desk"
	"chartdesk/exchange"
	"chartdesk/feed"
	"chartdesk/utils/log"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "chartdesk",
	Short: "Market data cache, indicator and backtest service",
	Long: `Chartdesk keeps per-symbol, per-timeframe quote series fetched from an
upstream quote provider, computes indicators over them, runs strategy
backtests and renders chart pages.

Commands:
  - serve: start the HTTP command surface
  - backtest: run one backtest against the provider and print the result
  - search: search provider symbols`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.Path()
		}
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		if err := log.SetLevel(loaded.Log.Level); err != nil {
			return fmt.Errorf("invalid log level %q: %w", loaded.Log.Level, err)
		}
		cfg = loaded
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $CONFIG_PATH or configs/config.yaml)")
}

// newDesk : config 기준으로 provider, coordinator, desk 구성
func newDesk(c *config.Config) *desk.Desk {
	providerOpts := []exchange.ProviderOption{
		exchange.WithRequestTimeout(c.Provider.Timeout),
		exchange.WithRetryCount(c.Provider.Retry),
	}
	if c.Provider.Trace {
		providerOpts = append(providerOpts, exchange.WithTrace())
	}
	provider := exchange.NewQuoteProvider(c.Provider.BaseURL, providerOpts...)

	coordinator := feed.NewFetchCoordinator(
		feed.WithTimeout(c.Fetch.Timeout),
		feed.WithMinRows(c.Fetch.MinRows),
	)
	return desk.NewDesk(provider,
		desk.WithCoordinator(coordinator),
		desk.WithBacktestOptions(c.Backtest),
		desk.WithBootstrapConcurrency(c.BootstrapConcurrency),
	)
}

package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"chartdesk/utils/log"
	"chartdesk/webserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP command surface",
	Long: `Serve registers the configured symbols, populates every timeframe in the
background (unless --no-bootstrap) and serves the command surface until
SIGINT/SIGTERM.

Example:
  chartdesk serve --port :8080`,
	RunE: runServe,
}

var (
	servePort        string
	serveNoBootstrap bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "listen address (overrides server.port)")
	serveCmd.Flags().BoolVar(&serveNoBootstrap, "no-bootstrap", false, "skip initial population of the configured symbols")
}

func runServe(cmd *cobra.Command, args []string) error {
	port := cfg.Server.Port
	if servePort != "" {
		port = servePort
	}

	d := newDesk(cfg)
	log.Infof("[SETUP] provider=%s symbols=%v", cfg.Provider.BaseURL, cfg.Symbols)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.BootstrapEnabled() && !serveNoBootstrap {
		go func() {
			if err := d.Bootstrap(ctx, cfg.Symbols); err != nil {
				log.Errorf("[SETUP] bootstrap failed: %v", err)
				return
			}
			log.Infof("[SETUP] bootstrap done, failed keys: %v", d.FailedKeys())
		}()
	} else {
		for _, symbol := range cfg.Symbols {
			if err := d.AddSymbol(symbol); err != nil {
				return err
			}
		}
	}

	return webserver.NewWebServer(d).Start(port)
}

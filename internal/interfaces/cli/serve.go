package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemPrep/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/turtacn/ChemPrep/internal/interfaces/http"
	"github.com/turtacn/ChemPrep/internal/interfaces/http/handlers"
)

func newServeCommand() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chemprep HTTP API",
		Long: `Serve exposes the canonicalize, similarity and neighbors operations as a
JSON API, along with /healthz and Prometheus metrics under /metrics. The
server shuts down gracefully on SIGINT or SIGTERM.`,
		Example: `  chemprep serve
  chemprep serve --port 9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromCommand(cmd)
			if err != nil {
				return err
			}
			cfg := app.Config.Server
			if cmd.Flags().Changed("host") {
				cfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			metrics := prometheus.New()
			api := handlers.New(app.Curation, app.Matching, app.Engine, metrics, app.Logger)
			server := httpserver.New(cfg, api, metrics, app.Logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen address override")
	cmd.Flags().IntVar(&port, "port", 0, "listen port override")
	return cmd
}

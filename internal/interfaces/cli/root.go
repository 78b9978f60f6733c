// Package cli implements the chemprep command-line interface. The root
// command wires configuration, logging and the application services; the
// subcommands expose dataset curation, similarity matrices, nearest-neighbor
// matching, directory watching and the HTTP server.
package cli

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/turtacn/ChemPrep/internal/application/curation"
	"github.com/turtacn/ChemPrep/internal/application/matching"
	"github.com/turtacn/ChemPrep/internal/config"
	"github.com/turtacn/ChemPrep/internal/domain/similarity"
	"github.com/turtacn/ChemPrep/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemPrep/pkg/errors"
)

// App aggregates everything a subcommand needs. It is assembled once in the
// root command's PersistentPreRunE and travels down via the command context.
type App struct {
	Config   *config.Config
	Logger   logging.Logger
	Engine   *similarity.Engine
	Curation *curation.Service
	Matching *matching.Service
}

type appCtxKey struct{}

// appFromCommand retrieves the App placed in the command context by the root
// command.
func appFromCommand(cmd *cobra.Command) (*App, error) {
	app, ok := cmd.Context().Value(appCtxKey{}).(*App)
	if !ok || app == nil {
		return nil, errors.Internal("application context not initialised")
	}
	return app, nil
}

// rootOptions holds the persistent flags shared by all subcommands.
type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

// NewRootCommand builds the chemprep command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "chemprep",
		Short: "Molecular dataset curation and similarity toolkit",
		Long: `chemprep curates SMILES datasets and computes molecular similarities.

It canonicalizes SMILES columns in CSV files (with optional salt stripping
and removal of disconnected structures), computes pairwise similarity
matrices (Tanimoto, Tversky, MCS), and annotates datasets with their nearest
neighbors in a reference set.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// version must work even with a broken configuration.
			if cmd.Name() == "version" {
				return nil
			}
			app, err := buildApp(opts)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(context.WithValue(ctx, appCtxKey{}, app))
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to the configuration file")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format override (json, console)")

	cmd.AddCommand(
		newCanonicalizeCommand(),
		newSimilarityCommand(),
		newNeighborsCommand(),
		newWatchCommand(),
		newServeCommand(),
		newVersionCommand(),
	)
	return cmd
}

// buildApp loads configuration, constructs the logger and assembles the
// application services.
func buildApp(opts *rootOptions) (*App, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Log.Format = opts.logFormat
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	// Every invocation carries a run id so log lines from concurrent runs
	// can be told apart in aggregated output.
	logger = logger.With(logging.String("run_id", uuid.NewString()))
	logging.SetDefault(logger)

	engine := similarity.NewEngine(similarity.NewRegistry(logger), logger, cfg.Similarity.Workers)
	prepOpts := similarity.PrepareOptions{
		Radius: cfg.Similarity.FingerprintRadius,
		NBits:  cfg.Similarity.FingerprintBits,
	}
	return &App{
		Config:   cfg,
		Logger:   logger.Named("cli"),
		Engine:   engine,
		Curation: curation.NewService(logger),
		Matching: matching.NewService(engine, prepOpts, logger),
	}, nil
}

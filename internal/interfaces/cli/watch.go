package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/turtacn/ChemPrep/internal/application/curation"
	"github.com/turtacn/ChemPrep/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemPrep/pkg/errors"
)

func newWatchCommand() *cobra.Command {
	var (
		inputDir           string
		outputDir          string
		smilesColumn       string
		removeSalts        bool
		removeDisconnected bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a directory and canonicalize CSV files as they appear",
		Long: `Watch observes a drop directory and curates every new or modified CSV file
into the output directory using the canonicalize pipeline. A file is picked
up once it has stayed unchanged for the configured settle delay, so partially
written files are not processed. The command runs until interrupted.`,
		Example: `  chemprep watch --input-dir /data/incoming --output-dir /data/curated
  chemprep watch --input-dir in --output-dir out --remove-salts --remove-disconnected`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromCommand(cmd)
			if err != nil {
				return err
			}
			wc := app.Config.Watch

			// Flags override configuration only when given explicitly.
			if !cmd.Flags().Changed("input-dir") {
				inputDir = wc.InputDir
			}
			if !cmd.Flags().Changed("output-dir") {
				outputDir = wc.OutputDir
			}
			if !cmd.Flags().Changed("smiles-column") {
				smilesColumn = wc.SMILESColumn
			}
			if !cmd.Flags().Changed("remove-salts") {
				removeSalts = wc.RemoveSalts
			}
			if !cmd.Flags().Changed("remove-disconnected") {
				removeDisconnected = wc.RemoveDisconnected
			}
			if inputDir == "" || outputDir == "" {
				return errors.InvalidParam("watch requires both an input and an output directory")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := &dirWatcher{
				curation: app.Curation,
				logger:   app.Logger.Named("watch"),
				opts: curation.Options{
					SMILESColumn:       smilesColumn,
					RemoveSalts:        removeSalts,
					RemoveDisconnected: removeDisconnected,
				},
				inputDir:  inputDir,
				outputDir: outputDir,
				settle:    wc.SettleDelay,
				timers:    map[string]*time.Timer{},
			}
			return w.run(ctx)
		},
	}

	cmd.Flags().StringVar(&inputDir, "input-dir", "", "directory to watch for CSV files")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory receiving curated copies")
	cmd.Flags().StringVar(&smilesColumn, "smiles-column", "smiles", "name of the SMILES column")
	cmd.Flags().BoolVar(&removeSalts, "remove-salts", false, "strip salt and solvent fragments")
	cmd.Flags().BoolVar(&removeDisconnected, "remove-disconnected", false,
		"drop molecules that are still disconnected after curation")
	return cmd
}

// dirWatcher curates CSV files dropped into a directory.
type dirWatcher struct {
	curation  *curation.Service
	logger    logging.Logger
	opts      curation.Options
	inputDir  string
	outputDir string
	settle    time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func (w *dirWatcher) run(ctx context.Context) error {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatasetIO, "failed to create output directory")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create filesystem watcher")
	}
	defer watcher.Close()
	if err := watcher.Add(w.inputDir); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to watch "+w.inputDir)
	}

	w.logger.Info("watching for CSV files",
		logging.String("input_dir", w.inputDir),
		logging.String("output_dir", w.outputDir),
		logging.Duration("settle_delay", w.settle),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopping")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".csv") {
				continue
			}
			w.schedule(event.Name)
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", logging.Err(werr))
		}
	}
}

// schedule (re)arms the settle timer for a file. Each write pushes the
// processing deadline out, so a file is curated once it goes quiet.
func (w *dirWatcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Reset(w.settle)
		return
	}
	w.timers[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		w.process(path)
	})
}

func (w *dirWatcher) process(path string) {
	out := filepath.Join(w.outputDir, filepath.Base(path))
	res, err := w.curation.CurateFile(path, out, w.opts)
	if err != nil {
		w.logger.Error("failed to curate file",
			logging.String("path", path),
			logging.Err(err),
		)
		return
	}
	w.logger.Info("file curated",
		logging.String("input", path),
		logging.String("output", out),
		logging.Int("total", res.Total),
		logging.Int("invalid", res.Invalid),
		logging.Int("disconnected", res.Disconnected),
	)
}

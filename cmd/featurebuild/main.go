package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/riskibarqy/fantasy-forecast/internal/app"
	"github.com/riskibarqy/fantasy-forecast/internal/config"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/dataset"
	"github.com/riskibarqy/fantasy-forecast/internal/observability"
	"github.com/riskibarqy/fantasy-forecast/internal/platform/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		logging.Default().Error("featurebuild failed", "error", err)
		_ = logging.Default().Sync()
		os.Exit(1)
	}
}

// cmdEnv is the state shared by every subcommand once config is loaded.
type cmdEnv struct {
	cfg    config.Config
	logger *logging.Logger
	app    *app.App
}

func newRootCommand() *cobra.Command {
	var (
		season string
		format string
		outDir string
	)

	root := &cobra.Command{
		Use:           "featurebuild",
		Short:         "Build leakage-free features, labels and split plans for a season",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&season, "season", "", "season to process (default SEASON)")
	root.PersistentFlags().StringVar(&format, "format", "", "export format csv|json (default OUTPUT_FORMAT)")
	root.PersistentFlags().StringVar(&outDir, "out", "", "export directory (default OUTPUT_DIR)")

	withEnv := func(fn func(ctx context.Context, rt *cmdEnv, season string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg = applyFlags(cfg, season, format, outDir)

			logger := logging.NewJSON(cfg.LogLevel).With("service", cfg.ServiceName, "command", cmd.Name())
			logging.SetDefault(logger)
			defer func() {
				_ = logger.Sync()
			}()

			shutdown, err := observability.Start(cfg, logger)
			if err != nil {
				return err
			}
			defer shutdown(context.WithoutCancel(cmd.Context()))

			a, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			return fn(cmd.Context(), &cmdEnv{cfg: cfg, logger: logger, app: a}, cfg.Season)
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "build",
			Short: "Run the pipeline and export features, labels, splits and snapshot",
			Args:  cobra.NoArgs,
			RunE: withEnv(func(ctx context.Context, rt *cmdEnv, season string) error {
				run, paths, err := rt.app.BuildAndExport(ctx, season)
				if err != nil {
					return err
				}
				rt.logger.InfoContext(ctx, "build completed",
					"run_id", run.ID,
					"season", season,
					"max_finished_gw", run.MaxFinishedGW,
					"files", paths,
				)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "snapshot",
			Short: "Run the pipeline and export only the latest snapshot",
			Args:  cobra.NoArgs,
			RunE: withEnv(func(ctx context.Context, rt *cmdEnv, season string) error {
				return runAndWrite(ctx, rt, season, rt.app.Exporter.WriteSnapshot)
			}),
		},
		&cobra.Command{
			Use:   "splits",
			Short: "Run the pipeline and export only the split plans and their label rows",
			Args:  cobra.NoArgs,
			RunE: withEnv(func(ctx context.Context, rt *cmdEnv, season string) error {
				return runAndWrite(ctx, rt, season, func(ctx context.Context, run dataset.Run) (string, error) {
					if _, err := rt.app.Exporter.WriteSplits(ctx, run); err != nil {
						return "", err
					}
					return rt.app.Exporter.WriteSplitRows(ctx, run)
				})
			}),
		},
		&cobra.Command{
			Use:   "import",
			Short: "Copy a season from the CSV directory into Postgres",
			Args:  cobra.NoArgs,
			RunE: withEnv(func(ctx context.Context, rt *cmdEnv, season string) error {
				return rt.app.ImportSeason(ctx, season)
			}),
		},
	)

	return root
}

func runAndWrite(ctx context.Context, rt *cmdEnv, season string, write func(context.Context, dataset.Run) (string, error)) error {
	run, err := rt.app.Pipeline.Run(ctx, season)
	if err != nil {
		return err
	}
	path, err := write(ctx, run)
	if err != nil {
		return err
	}
	rt.logger.InfoContext(ctx, "export completed", "run_id", run.ID, "season", season, "path", path)
	return nil
}

func applyFlags(cfg config.Config, season, format, outDir string) config.Config {
	if season != "" {
		cfg.Season = season
	}
	if format != "" {
		cfg.OutputFormat = format
	}
	if outDir != "" {
		cfg.OutputDir = outDir
	}
	return cfg
}

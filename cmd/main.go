// Command skinalyze serves and renders the dermatology dashboard views.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/skinalyze/internal/adapters/repository"
	app "github.com/okian/skinalyze/internal/app"
	"github.com/okian/skinalyze/internal/config"
	"github.com/okian/skinalyze/internal/domain/presentation"
	"github.com/okian/skinalyze/pkg/logger"
	"github.com/okian/skinalyze/pkg/metrics"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cliState carries the loaded configuration from the root pre-run hook to
// the subcommands.
type cliState struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	st := &cliState{}

	root := &cobra.Command{
		Use:   "skinalyze",
		Short: "Dermatology dashboard presentation service",
		Long: `skinalyze turns patient skin-analysis records into display-ready views:
diagnosis history, treatment progress and the patient page.

Configuration is read from an optional YAML file, an optional dotenv file
and SKINALYZE_* environment variables, in that order.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return st.init(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&st.configPath, "config", "c", "", "Path to a YAML config file (overrides SKINALYZE_CONFIG)")

	root.AddCommand(newServeCmd(st), newRenderCmd(st), newPatientsCmd(st), newImportCmd(st))
	return root
}

// init loads configuration and initializes logging. Logs go to stderr so
// command output on stdout stays machine-readable.
func (st *cliState) init(cmd *cobra.Command) error {
	if st.configPath != "" {
		if err := os.Setenv(config.EnvConfig, st.configPath); err != nil {
			return fmt.Errorf("set config path: %w", err)
		}
	}

	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}
	st.cfg = cfg

	if err := logger.Init(
		logger.WithFormat(logger.Format(cfg.LogFormat)),
		logger.WithWriter(cmd.ErrOrStderr()),
	); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.Configure(
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithHistogramBuckets(cfg.MetricsBuckets),
		metrics.WithCustomLabels(cfg.MetricsLabels),
	)
	return nil
}

// newService builds and starts the dashboard service for cfg. The returned
// stop function releases the service and any store it was given.
func newService(ctx context.Context, cfg *config.Config) (*app.Service, func(), error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, fmt.Errorf("resolve timezone: %w", err)
	}
	lang, err := cfg.Language()
	if err != nil {
		return nil, nil, fmt.Errorf("resolve locale: %w", err)
	}

	opts := []app.Option{
		app.WithLogger(logger.Get()),
		app.WithMaxPatientList(cfg.MaxPatientList),
		app.WithMapperOptions(
			presentation.WithLocation(loc),
			presentation.WithLanguage(lang),
			presentation.WithHour24(cfg.Hour24),
			presentation.WithFallbackProgress(cfg.FallbackProgress),
		),
	}

	var closeStore func()
	switch cfg.Store {
	case config.StorePostgres:
		store, err := openPGStore(ctx, cfg, loc)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, app.WithStore(store))
		closeStore = func() { _ = store.Close() }
	default:
		opts = append(opts, app.WithFixturesPath(cfg.FixturesPath))
	}

	svc := app.New(opts...)
	if err := svc.Start(ctx); err != nil {
		if closeStore != nil {
			closeStore()
		}
		return nil, nil, err
	}

	return svc, func() {
		svc.Stop()
		if closeStore != nil {
			closeStore()
		}
	}, nil
}

// openPGStore connects to the configured database and applies the schema.
func openPGStore(ctx context.Context, cfg *config.Config, loc *time.Location) (*repository.PGStore, error) {
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return nil, err
	}
	store := repository.NewPGStore(pool, repository.WithLocation(loc))
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

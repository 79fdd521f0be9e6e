package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/mrovalidate/internal/config"
	"github.com/JonMunkholm/mrovalidate/internal/core"
	"github.com/JonMunkholm/mrovalidate/internal/logging"
	"github.com/JonMunkholm/mrovalidate/internal/metrics"
	"github.com/JonMunkholm/mrovalidate/internal/report"
	"github.com/JonMunkholm/mrovalidate/internal/store"
	"github.com/JonMunkholm/mrovalidate/internal/watch"
	"github.com/JonMunkholm/mrovalidate/internal/web"
)

func serveCmd(g *globalFlags) *cobra.Command {
	var (
		watchChanges bool
		format       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the validation API, dashboard and metrics over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			history, closeHistory, err := openHistory(ctx, cfg)
			if err != nil {
				return &exitError{code: exitFault, err: err}
			}
			defer closeHistory()

			validator := core.NewValidator(core.WithConcurrency(cfg.Validation.Concurrency))
			recorder := metrics.NewRecorder()

			deps := web.Deps{
				Validator:  validator,
				Sources:    sources(cfg),
				Metrics:    recorder,
				Config:     cfg.Server,
				RunTimeout: cfg.Validation.Timeout,
			}
			if history != nil {
				deps.History = history
			}
			server := web.NewServer(deps)

			slog.Info("tables registered", "count", core.TableCount())

			if watchChanges {
				f, err := reportFormat(cfg, format, cmd.Flags().Changed("format"))
				if err != nil {
					return &exitError{code: exitFault, err: err}
				}
				logger := logging.WithFields(ctx, "template_dir", cfg.Paths.TemplateDir)
				w, err := watch.New(watchDirs(cfg), watch.Config{
					Debounce: cfg.Watch.Debounce,
					Patterns: cfg.Watch.Patterns,
					Ignore:   []string{cfg.Paths.Report},
				}, logger)
				if err != nil {
					return &exitError{code: exitFault, err: err}
				}
				rerun := &backgroundRun{
					cfg:       cfg,
					format:    f,
					validator: validator,
					metrics:   recorder,
					server:    server,
					history:   history,
				}
				go func() {
					if err := w.Run(ctx, rerun.run); err != nil {
						logger.Error("watcher stopped", "error", err)
					}
				}()
				logger.Info("watching for changes")
			}

			// Graceful shutdown
			go func() {
				<-ctx.Done()
				slog.Info("shutting down...")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("shutdown error", "error", err)
				}
			}()

			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return &exitError{code: exitFault, err: err}
			}
			slog.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&watchChanges, "watch", false, "Re-validate and rewrite the report whenever a template changes")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Report format for --watch (tsv, json, yaml)")
	return cmd
}

// backgroundRun re-validates after a template change. Each run rewrites the
// report file and becomes the server's last report.
type backgroundRun struct {
	cfg       *config.Config
	format    report.Format
	validator *core.Validator
	metrics   *metrics.Recorder
	server    *web.Server
	history   *store.Store
}

func (b *backgroundRun) run(ctx context.Context, changed []string) {
	logger := logging.WithFields(ctx, "changed", len(changed))

	ctx, cancel := context.WithTimeout(ctx, b.cfg.Validation.Timeout)
	defer cancel()

	rep, err := b.validator.Run(ctx, sources(b.cfg))
	if err != nil {
		b.metrics.ObserveFault(err)
		logger.Error("validation failed", "error", err, "code", core.MapError(err).Code)
		return
	}
	b.metrics.Observe(rep)
	b.server.SetLastReport(rep)

	if err := report.WriteFile(b.cfg.Paths.Report, b.format, rep); err != nil {
		logger.Error("failed to write report", "path", b.cfg.Paths.Report, "error", err)
	} else {
		logger.Info("report written", "path", b.cfg.Paths.Report, "violations", rep.ViolationCount())
	}

	if b.history != nil {
		if err := b.history.SaveRun(ctx, rep); err != nil {
			logger.Warn("failed to save run history", "run_id", rep.RunID.String(), "error", err)
		}
	}
}

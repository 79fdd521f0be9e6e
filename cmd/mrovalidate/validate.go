package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/mrovalidate/internal/config"
	"github.com/JonMunkholm/mrovalidate/internal/core"
	"github.com/JonMunkholm/mrovalidate/internal/report"
	"github.com/JonMunkholm/mrovalidate/internal/store"
)

type validateFlags struct {
	format      string
	concurrency int
}

func validateCmd(g *globalFlags, stdout io.Writer) *cobra.Command {
	f := &validateFlags{}

	cmd := &cobra.Command{
		Use:   "validate [INDEX IEDB TEMPLATE_DIR REPORT]",
		Short: "Validate the template tables and write the error report",
		Long: `Validate loads the label index, the IEDB table and every template table in
TEMPLATE_DIR, runs all rule sets and writes the error report to REPORT.

Paths default to the configuration when no arguments are given. The report is
always written, with only a header row when validation is clean.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 4 {
				return &exitError{code: exitFault, err: fmt.Errorf("expected 0 or 4 arguments (INDEX IEDB TEMPLATE_DIR REPORT), got %d", len(args))}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if len(args) == 4 {
				cfg.Paths.Index = args[0]
				cfg.Paths.IEDB = args[1]
				cfg.Paths.TemplateDir = args[2]
				cfg.Paths.Report = args[3]
			}
			if f.concurrency > 0 {
				cfg.Validation.Concurrency = f.concurrency
			}

			format, err := reportFormat(cfg, f.format, cmd.Flags().Changed("format"))
			if err != nil {
				return &exitError{code: exitFault, err: err}
			}
			return runValidate(cmd.Context(), cfg, format, stdout)
		},
	}

	cmd.Flags().StringVarP(&f.format, "format", "f", "", "Report format (tsv, json, yaml); defaults to the report file extension")
	cmd.Flags().IntVarP(&f.concurrency, "concurrency", "j", 0, "Tables validated at once within a stage")

	return cmd
}

// reportFormat resolves the report format: the flag wins, then a .json or
// .yaml report extension, then the configured format.
func reportFormat(cfg *config.Config, flag string, flagSet bool) (report.Format, error) {
	if flagSet {
		return report.ParseFormat(flag)
	}
	if byExt := report.FormatForPath(cfg.Paths.Report); byExt != report.FormatTSV {
		return byExt, nil
	}
	return report.ParseFormat(cfg.Validation.Format)
}

func sources(cfg *config.Config) core.Sources {
	return core.Sources{
		IndexPath:   cfg.Paths.Index,
		IEDBPath:    cfg.Paths.IEDB,
		TemplateDir: cfg.Paths.TemplateDir,
	}
}

// validateOnce runs one validation and writes its report.
func validateOnce(ctx context.Context, cfg *config.Config, format report.Format, history *store.Store) (*core.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Validation.Timeout)
	defer cancel()

	v := core.NewValidator(core.WithConcurrency(cfg.Validation.Concurrency))
	rep, err := v.Run(ctx, sources(cfg))
	if err != nil {
		return nil, err
	}

	if err := report.WriteFile(cfg.Paths.Report, format, rep); err != nil {
		return nil, err
	}
	slog.Info("report written", "path", cfg.Paths.Report, "format", string(format))

	if history != nil {
		if err := history.SaveRun(ctx, rep); err != nil {
			slog.Warn("failed to save run history", "run_id", rep.RunID.String(), "error", err)
		}
	}
	return rep, nil
}

func runValidate(ctx context.Context, cfg *config.Config, format report.Format, stdout io.Writer) error {
	history, closeHistory, err := openHistory(ctx, cfg)
	if err != nil {
		return &exitError{code: exitFault, err: err}
	}
	defer closeHistory()

	rep, err := validateOnce(ctx, cfg, format, history)
	if err != nil {
		return &exitError{code: exitFault, err: err}
	}

	if !rep.Clean() {
		fmt.Fprintf(stdout, "ERROR: Validation failed with %d error(s)\n", rep.ViolationCount())
		return &exitError{code: exitViolations}
	}
	return nil
}

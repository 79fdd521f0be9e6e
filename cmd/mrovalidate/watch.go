package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/mrovalidate/internal/config"
	"github.com/JonMunkholm/mrovalidate/internal/core"
	"github.com/JonMunkholm/mrovalidate/internal/logging"
	"github.com/JonMunkholm/mrovalidate/internal/watch"
)

func watchCmd(g *globalFlags, stdout io.Writer) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-validate and rewrite the report whenever a template changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			f, err := reportFormat(cfg, format, cmd.Flags().Changed("format"))
			if err != nil {
				return &exitError{code: exitFault, err: err}
			}

			history, closeHistory, err := openHistory(cmd.Context(), cfg)
			if err != nil {
				return &exitError{code: exitFault, err: err}
			}
			defer closeHistory()

			onChange := func(ctx context.Context, changed []string) {
				rep, err := validateOnce(ctx, cfg, f, history)
				if err != nil {
					printFault(stdout, err)
					return
				}
				printSummary(stdout, rep)
			}

			logger := logging.WithFields(cmd.Context(), "template_dir", cfg.Paths.TemplateDir)
			w, err := watch.New(watchDirs(cfg), watch.Config{
				Debounce: cfg.Watch.Debounce,
				Patterns: cfg.Watch.Patterns,
				Ignore:   []string{cfg.Paths.Report},
			}, logger)
			if err != nil {
				return &exitError{code: exitFault, err: err}
			}

			onChange(cmd.Context(), nil)
			logger.Info("watching for changes")
			return w.Run(cmd.Context(), onChange)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Report format (tsv, json, yaml)")
	return cmd
}

// watchDirs lists the directories holding the validation inputs.
func watchDirs(cfg *config.Config) []string {
	dirs := []string{cfg.Paths.TemplateDir, filepath.Dir(cfg.Paths.Index)}
	if cfg.Paths.IEDB != "" {
		dirs = append(dirs, filepath.Dir(cfg.Paths.IEDB))
	}
	return dirs
}

func printSummary(w io.Writer, rep *core.Report) {
	if rep.Clean() {
		fmt.Fprintf(w, "OK: %d table(s) validated, no errors\n", len(rep.Tables))
		return
	}
	fmt.Fprintf(w, "ERROR: Validation failed with %d error(s)\n", rep.ViolationCount())
}

// Command mrovalidate checks the MHC Restriction Ontology template tables for
// referential integrity and writes an error report.
//
// Exit status is 0 when validation is clean, 1 when violations were found and
// 2 when validation could not run.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/mrovalidate/internal/config"
	"github.com/JonMunkholm/mrovalidate/internal/core"
	_ "github.com/JonMunkholm/mrovalidate/internal/core/tables" // Register all tables
	"github.com/JonMunkholm/mrovalidate/internal/logging"
)

// Version is set at build time.
var Version = "dev"

const appName = "mrovalidate"

// Exit codes.
const (
	exitClean      = 0
	exitViolations = 1
	exitFault      = 2
)

// exitError carries a process exit code through cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(exitFault)
		}
	}()

	// Variables already in the environment win over .env
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the command line and maps its outcome to an exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := rootCmd(stdout, stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitClean
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			printFault(stderr, ee.err)
		}
		return ee.code
	}
	printFault(stderr, err)
	return exitFault
}

func printFault(w io.Writer, err error) {
	if core.IsUserFacing(err) {
		fmt.Fprintf(w, "Error: %s\n  %v\n", core.FormatUserError(err), err)
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func rootCmd(stdout, stderr io.Writer) *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Validate MHC Restriction Ontology template tables",
		Long: `mrovalidate checks that every row of every MRO template table references
only labels that are defined, correctly shaped and consistent with the tables
it depends on, and writes one error report covering all tables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "Log format (text, json)")

	validate := validateCmd(g, stdout)
	cmd.AddCommand(
		validate,
		tablesCmd(stdout),
		serveCmd(g),
		watchCmd(g, stdout),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(stdout, "%s version %s\n", appName, Version)
			},
		},
	)

	// Without a subcommand the root behaves like validate, so the binary is a
	// drop-in for pipelines that call it with four positional arguments.
	cmd.Args = validate.Args
	cmd.Flags().AddFlagSet(validate.Flags())
	cmd.RunE = validate.RunE

	return cmd
}

// loadConfig reads the config file and environment, then applies the
// global flags.
func (g *globalFlags) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFile(g.configPath)
	if err != nil {
		return nil, &exitError{code: exitFault, err: err}
	}
	if g.logLevel != "" {
		cfg.Logging.Level = g.logLevel
	}
	if g.logFormat != "" {
		cfg.Logging.Format = g.logFormat
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "config", cfg.String())
	return cfg, nil
}

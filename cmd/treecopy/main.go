package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bamsammich/treecopy/internal/config"
	"github.com/bamsammich/treecopy/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	quiet      bool
	verbose    bool
	noProgress bool
	logFile    string
}

// app carries per-invocation state from the root command into subcommands.
type app struct {
	flags   globalFlags
	cfg     config.Config
	logFile io.Closer
}

func run(args []string) int {
	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)

	err := root.Execute()
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
	if err == nil {
		return 0
	}
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 2
}

func newRootCmd(a *app) *cobra.Command {
	var showVersion bool

	rootCmd := &cobra.Command{
		Use:           "treecopy",
		Short:         "Copy and move files and directory trees with live progress",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showVersion {
				fmt.Fprintf(cmd.OutOrStdout(), "treecopy %s\n", version)
				return nil
			}
			return cmd.Help()
		},
	}

	rootCmd.Flags().BoolVar(&showVersion, "version", false, "print version and exit")

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&a.flags.quiet, "quiet", "q", false, "suppress all output except errors")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "verbose output")
	pf.BoolVar(&a.flags.noProgress, "no-progress", false, "disable progress display")
	pf.StringVar(&a.flags.logFile, "log", "", "write structured JSON log to FILE")
	rootCmd.MarkFlagsMutuallyExclusive("quiet", "verbose")

	rootCmd.AddCommand(newCpCmd(a))
	rootCmd.AddCommand(newMvCmd(a))
	rootCmd.AddCommand(newScanCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newDocsCmd())

	return rootCmd
}

// setup loads the config file, applies its theme and installs the default
// logger.
func (a *app) setup(_ *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		// A broken config file should not block a copy.
		slog.Warn("failed to load config", "path", config.Path(), "error", err)
	}
	a.cfg = cfg
	ui.ApplyTheme(cfg.Theme)

	logLevel := slog.LevelWarn
	switch {
	case a.flags.verbose:
		logLevel = slog.LevelDebug
	case a.flags.quiet:
		logLevel = slog.LevelError
	}
	textHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	var logHandler slog.Handler = textHandler
	if a.flags.logFile != "" {
		lf, lfErr := os.Create(a.flags.logFile)
		if lfErr != nil {
			return fmt.Errorf("open log file: %w", lfErr)
		}
		a.logFile = lf
		jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{Level: slog.LevelDebug})
		logHandler = ui.NewMultiHandler(textHandler, jsonHandler)
	}
	slog.SetDefault(slog.New(logHandler))
	return nil
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

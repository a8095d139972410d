package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bamsammich/treecopy/internal/engine"
	"github.com/bamsammich/treecopy/internal/filter"
	"github.com/bamsammich/treecopy/internal/pathkind"
	"github.com/bamsammich/treecopy/internal/ui"
)

func newScanCmd(a *app) *cobra.Command {
	var (
		followSymlinks bool
		maxDepth       int
		totalsOnly     bool
	)
	chain := filter.NewChain()

	cmd := &cobra.Command{
		Use:   "scan [flags] <directory>",
		Short: "List the entries a recursive copy would transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("follow-symlinks") && a.cfg.Defaults.FollowSymlinks != nil {
				followSymlinks = *a.cfg.Defaults.FollowSymlinks
			}
			for _, pattern := range a.cfg.Defaults.Exclude {
				if err := chain.AddExclude(pattern); err != nil {
					return fmt.Errorf("config exclude: %w", err)
				}
			}
			opts := engine.ScanOptions{
				FollowSymlinks: followSymlinks,
				MaxDepth:       maxDepth,
			}
			if !chain.Empty() {
				opts.Filter = chain
			}

			ctx, stop := signalContext()
			defer stop()

			plan, err := engine.Scan(ctx, args[0], opts)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if !totalsOnly {
				printPlan(w, plan)
			}
			fmt.Fprintf(w, "%s entries  %s\n", ui.FormatCount(plan.TotalEntries), ui.FormatBytes(plan.TotalBytes))
			return nil
		},
	}

	fs := cmd.Flags()
	fs.BoolVarP(&followSymlinks, "follow-symlinks", "L", false, "descend into symlinked directories")
	fs.IntVar(&maxDepth, "max-depth", 0, "descend at most N levels (0 = unlimited)")
	fs.BoolVar(&totalsOnly, "totals", false, "print only the entry and byte totals")
	fs.Var(&filterFlag{chain: chain}, "exclude", "exclude entries matching PATTERN (repeatable)")
	fs.Var(&filterFlag{chain: chain, include: true}, "include", "include entries matching PATTERN (repeatable)")

	return cmd
}

// printPlan writes one line per entry in plan order.
func printPlan(w io.Writer, plan engine.Plan) {
	for _, e := range plan.Entries {
		switch {
		case e.Kind == pathkind.File:
			fmt.Fprintf(w, "%-17s %10s  %s\n", e.Kind, ui.FormatBytes(e.Size), e.RelPath)
		case e.Kind.IsSymlink():
			fmt.Fprintf(w, "%-17s %10s  %s -> %s\n", e.Kind, "", e.RelPath, e.LinkTarget)
		default:
			fmt.Fprintf(w, "%-17s %10s  %s/\n", e.Kind, "", e.RelPath)
		}
	}
}

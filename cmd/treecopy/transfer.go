package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bamsammich/treecopy/internal/config"
	"github.com/bamsammich/treecopy/internal/engine"
	"github.com/bamsammich/treecopy/internal/filter"
	"github.com/bamsammich/treecopy/internal/pathkind"
	"github.com/bamsammich/treecopy/internal/progress"
	"github.com/bamsammich/treecopy/internal/stats"
	"github.com/bamsammich/treecopy/internal/ui"
)

// filterFlag is a pflag.Value that preserves CLI ordering of --exclude and
// --include rules by appending to a shared filter.Chain.
type filterFlag struct {
	chain   *filter.Chain
	include bool
}

func (*filterFlag) String() string { return "" }
func (*filterFlag) Type() string   { return "pattern" }

func (f *filterFlag) Set(val string) error {
	if f.include {
		return f.chain.AddInclude(val)
	}
	return f.chain.AddExclude(val)
}

// policyFlags resolve to one conflict policy.
type policyFlags struct {
	policy    string
	noClobber bool
	force     bool
}

func (p *policyFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&p.policy, "policy", "", "conflict policy: abort, skip or overwrite (default abort)")
	fs.BoolVarP(&p.noClobber, "no-clobber", "n", false, "skip entries that already exist (--policy skip)")
	fs.BoolVarP(&p.force, "force", "f", false, "replace entries that already exist (--policy overwrite)")
}

func (p *policyFlags) resolve(defaults config.DefaultsConfig) (engine.ConflictPolicy, error) {
	switch {
	case p.noClobber:
		return engine.Skip, nil
	case p.force:
		return engine.Overwrite, nil
	case p.policy != "":
		return config.ParsePolicy(p.policy)
	case defaults.Policy != nil:
		return config.ParsePolicy(*defaults.Policy)
	default:
		return engine.Abort, nil
	}
}

// copyFlags are the flags of the cp command.
type copyFlags struct {
	policyFlags
	recursive      bool
	archive        bool
	followSymlinks bool
	maxDepth       int
	filterFile     string
	minSize        string
	maxSize        string
	preserveTimes  bool
	preserveOwner  bool
	preserveXattrs bool
	verify         bool
	bwLimit        string
	chain          *filter.Chain
}

func newCpCmd(a *app) *cobra.Command {
	f := &copyFlags{chain: filter.NewChain()}

	cmd := &cobra.Command{
		Use:   "cp [flags] <source> <destination>",
		Short: "Copy a file or directory tree",
		Long: `Copy a file, or with -r a directory tree, to a destination.

When the destination is an existing directory the source is placed inside it.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCopy(cmd, f, args[0], args[1])
		},
	}

	fs := cmd.Flags()
	f.register(fs)
	fs.BoolVarP(&f.recursive, "recursive", "r", false, "copy directories recursively")
	fs.BoolVarP(&f.archive, "archive", "a", false, "archive mode (recursive + preserve all)")
	fs.BoolVarP(&f.followSymlinks, "follow-symlinks", "L", false, "copy what symlinks point to instead of the links")
	fs.IntVar(&f.maxDepth, "max-depth", 0, "descend at most N levels below the source (0 = unlimited)")
	fs.Var(&filterFlag{chain: f.chain}, "exclude", "exclude entries matching PATTERN (repeatable)")
	fs.Var(&filterFlag{chain: f.chain, include: true}, "include", "include entries matching PATTERN (repeatable)")
	fs.StringVar(&f.filterFile, "filter", "", "read filter rules from FILE")
	fs.StringVar(&f.minSize, "min-size", "", "skip files smaller than SIZE (e.g. 1M, 100K)")
	fs.StringVar(&f.maxSize, "max-size", "", "skip files larger than SIZE (e.g. 1G, 500M)")
	fs.BoolVar(&f.preserveTimes, "preserve-times", false, "preserve access and modification times")
	fs.BoolVar(&f.preserveOwner, "preserve-owner", false, "preserve owner and group (needs privilege)")
	fs.BoolVar(&f.preserveXattrs, "preserve-xattrs", false, "preserve extended attributes")
	fs.BoolVar(&f.verify, "verify", false, "verify checksums after copy (BLAKE3)")
	fs.StringVar(&f.bwLimit, "bwlimit", "", "bandwidth limit (e.g. 100M, 1G)")
	cmd.MarkFlagsMutuallyExclusive("policy", "no-clobber", "force")

	return cmd
}

func newMvCmd(a *app) *cobra.Command {
	var (
		pf      policyFlags
		bwLimit string
	)

	cmd := &cobra.Command{
		Use:   "mv [flags] <source> <destination>",
		Short: "Move a file or directory tree, across filesystems if needed",
		Long: `Move a file or directory tree. A rename is tried first; across
filesystems the tree is copied and the source removed.

When the destination is an existing directory the source is placed inside it.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMove(cmd, &pf, bwLimit, args[0], args[1])
		},
	}

	pf.register(cmd.Flags())
	cmd.Flags().StringVar(&bwLimit, "bwlimit", "", "bandwidth limit for cross-device copies (e.g. 100M)")
	cmd.MarkFlagsMutuallyExclusive("policy", "no-clobber", "force")

	return cmd
}

// applyConfigDefaults applies config file defaults for flags not explicitly
// set on the CLI.
func (f *copyFlags) applyConfigDefaults(cmd *cobra.Command, defaults config.DefaultsConfig) error {
	flags := cmd.Flags()
	if !flags.Changed("verify") && defaults.Verify != nil {
		f.verify = *defaults.Verify
	}
	if !flags.Changed("archive") && defaults.Archive != nil {
		f.archive = *defaults.Archive
	}
	if !flags.Changed("follow-symlinks") && defaults.FollowSymlinks != nil {
		f.followSymlinks = *defaults.FollowSymlinks
	}
	if !flags.Changed("bwlimit") && defaults.BWLimit != nil {
		f.bwLimit = *defaults.BWLimit
	}
	// Config excludes come after CLI rules, so the CLI wins on overlap.
	for _, pattern := range defaults.Exclude {
		if err := f.chain.AddExclude(pattern); err != nil {
			return fmt.Errorf("config exclude: %w", err)
		}
	}
	return nil
}

// options builds engine options from the parsed flags.
func (f *copyFlags) options(defaults config.DefaultsConfig) (engine.Options, error) {
	var opts engine.Options

	policy, err := f.resolve(defaults)
	if err != nil {
		return opts, err
	}
	opts.Policy = policy

	if f.filterFile != "" {
		if err := f.chain.LoadFile(f.filterFile); err != nil {
			return opts, fmt.Errorf("load filter file: %w", err)
		}
	}
	if f.minSize != "" {
		n, err := filter.ParseSize(f.minSize)
		if err != nil {
			return opts, fmt.Errorf("invalid --min-size: %w", err)
		}
		f.chain.SetMinSize(n)
	}
	if f.maxSize != "" {
		n, err := filter.ParseSize(f.maxSize)
		if err != nil {
			return opts, fmt.Errorf("invalid --max-size: %w", err)
		}
		f.chain.SetMaxSize(n)
	}
	if !f.chain.Empty() {
		opts.Filter = f.chain
	}
	if f.maxDepth < 0 {
		return opts, fmt.Errorf("invalid --max-depth %d", f.maxDepth)
	}
	opts.MaxDepth = f.maxDepth
	opts.FollowSymlinks = f.followSymlinks

	opts.Preserve = engine.Preserve{
		Times:  f.archive || f.preserveTimes,
		Owner:  f.archive || f.preserveOwner,
		Xattrs: f.archive || f.preserveXattrs,
	}

	if opts.BWLimit, err = parseBWLimit(f.bwLimit); err != nil {
		return opts, err
	}
	return opts, nil
}

func parseBWLimit(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	n, err := filter.ParseSize(s)
	if err != nil {
		return 0, fmt.Errorf("invalid --bwlimit: %w", err)
	}
	return n, nil
}

// resolveDestination places src inside dst when dst is an existing directory.
func resolveDestination(src, dst string) (string, error) {
	kind, err := pathkind.Classify(dst)
	if err != nil {
		return "", err
	}
	if kind.IsDirLike() {
		return filepath.Join(dst, filepath.Base(filepath.Clean(src))), nil
	}
	return dst, nil
}

// session wires a presenter and collector around one operation.
type session struct {
	collector *stats.Collector
	presenter ui.Presenter
	quiet     bool
	copied    []string // files written, for --verify
}

func (a *app) newSession() *session {
	collector := stats.NewCollector()
	return &session{
		collector: collector,
		quiet:     a.flags.quiet,
		presenter: ui.NewPresenter(ui.Config{
			Writer:     os.Stdout,
			ErrWriter:  os.Stderr,
			Stats:      collector,
			Width:      ui.TermWidth(os.Stderr),
			IsTTY:      ui.IsTTY(os.Stderr),
			Quiet:      a.flags.quiet,
			Verbose:    a.flags.verbose,
			NoProgress: a.flags.noProgress,
		}),
	}
}

func (s *session) bind(opts *engine.Options) {
	opts.OnProgress = s.handle
	opts.Stats = s.collector
	opts.Logger = slog.Default()
}

func (s *session) handle(r progress.Report) {
	if r.Kind == progress.EntryCompleted && r.EntryKind == pathkind.File {
		s.copied = append(s.copied, r.Path)
	}
	s.presenter.Handle(r)
}

// finish clears the progress display, prints the summary and maps err to
// an exit code.
func (s *session) finish(ctx context.Context, err error) error {
	s.presenter.Finish()
	if ctx.Err() != nil {
		engine.CleanupTmpFiles()
	}
	if !s.quiet {
		if summary := s.presenter.Summary(); summary != "" {
			fmt.Fprintln(os.Stderr, summary)
		}
	}
	if err == nil {
		return nil
	}
	slog.Error("transfer failed", "error", err)
	return &exitError{code: exitCode(err, s.collector.Snapshot())}
}

// exitCode is 1 when something was transferred before err, 2 otherwise.
func exitCode(err error, snap stats.Snapshot) int {
	if errors.Is(err, engine.ErrValidation) {
		return 2
	}
	if snap.FilesCopied+snap.DirsCreated+snap.SymlinksCreated+snap.SourceRemoved > 0 {
		return 1
	}
	return 2
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func (a *app) runCopy(cmd *cobra.Command, f *copyFlags, rawSrc, rawDst string) error {
	if err := f.applyConfigDefaults(cmd, a.cfg.Defaults); err != nil {
		return err
	}
	opts, err := f.options(a.cfg.Defaults)
	if err != nil {
		return err
	}

	srcKind, err := pathkind.Classify(rawSrc)
	if err != nil {
		return err
	}
	isDir := srcKind.IsDirLike()
	if isDir && !f.recursive && !f.archive {
		return fmt.Errorf("%s is a directory (use -r)", rawSrc)
	}
	dst, err := resolveDestination(rawSrc, rawDst)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	s := a.newSession()
	s.bind(&opts)

	slog.Debug("starting copy",
		"src", rawSrc, "dst", dst,
		"policy", opts.Policy, "recursive", isDir,
		"preserve", opts.Preserve, "bwlimit", opts.BWLimit,
	)

	if isDir {
		_, err = engine.CopyDirectory(ctx, rawSrc, dst, opts)
	} else {
		_, err = engine.CopyFile(ctx, rawSrc, dst, opts)
	}
	if err == nil && f.verify {
		err = s.verifyCopy(ctx, rawSrc, dst, isDir)
	}
	return s.finish(ctx, err)
}

// verifyCopy hashes every file the copy wrote against its source. Entries
// skipped by the conflict policy are not compared.
func (s *session) verifyCopy(ctx context.Context, src, dst string, isDir bool) error {
	if !isDir {
		if len(s.copied) == 0 {
			return nil
		}
		srcHash, err := engine.HashFile(src)
		if err != nil {
			return err
		}
		dstHash, err := engine.HashFile(dst)
		if err != nil {
			return err
		}
		if srcHash != dstHash {
			s.collector.AddVerifyFailed(1)
			return fmt.Errorf("verify %s: checksum mismatch", dst)
		}
		s.collector.AddFilesVerified(1)
		return nil
	}

	plan := engine.Plan{Root: src}
	for _, rel := range s.copied {
		plan.Entries = append(plan.Entries, engine.TreeEntry{RelPath: rel, Kind: pathkind.File})
	}
	res, err := engine.Verify(ctx, plan, dst, s.collector)
	if err != nil {
		return err
	}
	for _, ve := range res.Errors {
		slog.Error("verify failed", "path", ve.Path, "src", ve.SrcHash, "dst", ve.DstHash, "error", ve.Err)
	}
	if !res.OK() {
		return fmt.Errorf("verify: %d of %d files differ", res.Failed, res.Failed+res.Verified)
	}
	return nil
}

func (a *app) runMove(cmd *cobra.Command, pf *policyFlags, bwLimit, rawSrc, rawDst string) error {
	if !cmd.Flags().Changed("bwlimit") && a.cfg.Defaults.BWLimit != nil {
		bwLimit = *a.cfg.Defaults.BWLimit
	}
	var opts engine.Options
	var err error
	if opts.Policy, err = pf.resolve(a.cfg.Defaults); err != nil {
		return err
	}
	if opts.BWLimit, err = parseBWLimit(bwLimit); err != nil {
		return err
	}

	srcKind, err := pathkind.Classify(rawSrc)
	if err != nil {
		return err
	}
	dst, err := resolveDestination(rawSrc, rawDst)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	s := a.newSession()
	s.bind(&opts)

	var outcome engine.MoveOutcome
	if srcKind == pathkind.Directory {
		outcome, err = engine.MoveDirectory(ctx, rawSrc, dst, opts)
	} else {
		outcome, err = engine.MoveFile(ctx, rawSrc, dst, opts)
	}
	if err == nil {
		slog.Debug("move finished", "src", rawSrc, "dst", dst, "outcome", outcome)
	}
	var te *engine.TransferError
	if errors.As(err, &te) && errors.Is(err, engine.ErrCrossDeviceFallback) && !te.SourceRemoved {
		slog.Warn("source left intact after failed cross-device move", "src", rawSrc)
	}
	return s.finish(ctx, err)
}

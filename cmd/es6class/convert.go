package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/es6class/internal/cache"
	"github.com/panbanda/es6class/internal/fileproc"
	"github.com/panbanda/es6class/internal/output"
	"github.com/panbanda/es6class/internal/progress"
	"github.com/panbanda/es6class/internal/scanner"
	"github.com/panbanda/es6class/pkg/config"
	"github.com/panbanda/es6class/pkg/models"
	"github.com/panbanda/es6class/pkg/rewrite"
)

// rewriteFlags override the transform section of the config.
func rewriteFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Files converted in parallel (0 = 2x CPUs)",
		},
		&cli.BoolFlag{
			Name:  "plain",
			Usage: "Assign instance fields in the constructor instead of a preInit method",
		},
		&cli.StringFlag{
			Name:  "preinit-name",
			Usage: "Name of the generated field initialization method",
		},
		&cli.StringFlag{
			Name:  "implicit-parent-init",
			Usage: "Where inherited initialization runs when the constructor never calls it: first or last",
		},
		&cli.BoolFlag{
			Name:  "anchor-roots",
			Usage: "Give every root class a preInit method for subclasses converted in other files",
		},
	}
}

// reportFlags control how a batch run is reported.
func reportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, json, markdown, toon (default from config)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the report to file",
		},
		&cli.BoolFlag{
			Name:  "diff",
			Usage: "Print unified diffs of the changes (implies --dry-run)",
		},
		&cli.BoolFlag{
			Name:  "no-cache",
			Usage: "Disable caching",
		},
	}
}

func convertFlags() []cli.Flag {
	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Report what would change without writing files",
		},
	}
	flags = append(flags, reportFlags()...)
	return append(flags, rewriteFlags()...)
}

func convertCmd() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "Convert factory declarations to ES6 classes in place",
		ArgsUsage: "[path...]",
		Flags:     convertFlags(),
		Action:    runConvertCmd,
	}
}

func checkCmd() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Fail when any file still contains convertible declarations",
		ArgsUsage: "[path...]",
		Description: `Runs the conversion without writing and exits with status 1 when any
file would change. Use it in CI to keep new factory declarations out.`,
		Flags:  append(reportFlags(), rewriteFlags()...),
		Action: runCheckCmd,
	}
}

// loadConfig loads the config file named by --config (or the first one
// found) and applies command-line overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	var opts []config.LoadOption
	if path := c.String("config"); path != "" {
		opts = append(opts, config.WithPath(path))
	}
	result, err := config.LoadConfig(opts...)
	if err != nil {
		return nil, err
	}
	if result.Source != "" {
		slog.Debug("loaded config", "path", result.Source)
	}

	cfg := result.Config
	if c.Bool("plain") {
		cfg.Transform.DeferredInit = false
	}
	if c.IsSet("preinit-name") {
		cfg.Transform.PreInitName = c.String("preinit-name")
	}
	if c.IsSet("implicit-parent-init") {
		cfg.Transform.ImplicitParentInit = c.String("implicit-parent-init")
	}
	if c.Bool("anchor-roots") {
		cfg.Transform.AnchorRoots = true
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.Bool("no-cache") {
		cfg.Cache.Enabled = false
	}
	if c.IsSet("format") {
		cfg.Output.Format = c.String("format")
	}
	if c.Bool("verbose") {
		cfg.Output.Verbose = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openCache opens the result cache. Entries are salted with the version
// and the rewrite options so changing either starts from scratch.
func openCache(cfg *config.Config) (*cache.Cache, error) {
	salt := cache.Fingerprint(struct {
		Version string
		Options rewrite.Options
	}{version, cfg.RewriteOptions()})
	return cache.New(cfg.Cache.Dir, cfg.Cache.TTL, cfg.Cache.Enabled, salt)
}

func newSpinner(c *cli.Context, label string) *progress.Tracker {
	if c.Bool("quiet") {
		return progress.NewSilent(label, -1)
	}
	return progress.NewSpinner(label)
}

func newTracker(c *cli.Context, label string, total int) *progress.Tracker {
	if c.Bool("quiet") {
		return progress.NewSilent(label, total)
	}
	return progress.NewTracker(label, total)
}

func runConvertCmd(c *cli.Context) error {
	dryRun := c.Bool("dry-run") || c.Bool("diff")
	_, err := convertPaths(c, dryRun)
	return err
}

func runCheckCmd(c *cli.Context) error {
	result, err := convertPaths(c, true)
	if err != nil {
		return err
	}
	if n := result.Summary.ChangedFiles; n > 0 {
		return fmt.Errorf("%w: %d", errWouldChange, n)
	}
	return nil
}

// convertPaths scans the positional paths, converts every file and
// renders the batch report.
func convertPaths(c *cli.Context, dryRun bool) (*models.BatchResult, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	status := output.NewWriterFormatter(output.FormatText, c.App.ErrWriter, cfg.Output.Color)

	scan := scanner.NewScanner(cfg)
	spinner := newSpinner(c, "Scanning files...")
	files, err := scan.ScanPaths(getPaths(c))
	if err != nil {
		spinner.FinishError(err)
		return nil, err
	}
	if len(files) == 0 {
		spinner.FinishSkipped("no source files")
		status.Warning("No source files found")
		return &models.BatchResult{DryRun: dryRun}, nil
	}
	spinner.FinishSuccess()
	for lang, group := range scan.GroupByLanguage(files) {
		slog.Debug("scanned", "language", string(lang), "files", len(group))
	}

	resultCache, err := openCache(cfg)
	if err != nil {
		return nil, err
	}

	proc := fileproc.NewProcessor(rewrite.New(cfg.RewriteOptions()), resultCache, fileproc.Options{
		DryRun:  dryRun,
		Diff:    c.Bool("diff"),
		Workers: cfg.Workers,
		Logger:  slog.Default(),
	})

	ctx, stop := signal.NotifyContext(contextOf(c), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracker := newTracker(c, "Converting classes...", len(files))
	result, errs := proc.Run(ctx, files, tracker.Tick)
	if ctx.Err() != nil {
		tracker.FinishError(ctx.Err())
	} else {
		tracker.FinishSuccess()
	}

	format := output.ParseFormat(cfg.Output.Format)
	colored := cfg.Output.Color && c.String("output") == ""
	formatter, err := output.NewFormatter(format, c.String("output"), colored)
	if err != nil {
		return nil, err
	}
	defer formatter.Close()

	if err := formatter.Output(output.NewBatchReport(result, cfg.Output.Verbose, c.Bool("diff"))); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}

	if errs.HasErrors() {
		for _, e := range errs.Sorted() {
			status.Error("%s", e.Error())
		}
		return result, fmt.Errorf("%w: %d of %d", errFilesFailed, len(errs.Errors), len(files))
	}
	return result, nil
}

func contextOf(c *cli.Context) context.Context {
	if c.Context != nil {
		return c.Context
	}
	return context.Background()
}

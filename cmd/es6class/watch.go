package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/es6class/internal/fileproc"
	"github.com/panbanda/es6class/internal/output"
	"github.com/panbanda/es6class/pkg/models"
	"github.com/panbanda/es6class/pkg/rewrite"
	"github.com/panbanda/es6class/pkg/watch"
)

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Convert files as they are saved",
		ArgsUsage: "[path]",
		Flags: append([]cli.Flag{
			&cli.DurationFlag{
				Name:  "debounce",
				Value: 500 * time.Millisecond,
				Usage: "Wait until a file is unchanged for this long",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Report what would change without writing files",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable caching",
			},
		}, rewriteFlags()...),
		Action: runWatchCmd,
	}
}

func runWatchCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	absPath, err := filepath.Abs(getPaths(c)[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	resultCache, err := openCache(cfg)
	if err != nil {
		return err
	}
	proc := fileproc.NewProcessor(rewrite.New(cfg.RewriteOptions()), resultCache, fileproc.Options{
		DryRun: c.Bool("dry-run"),
		Logger: slog.Default(),
	})

	watcher, err := watch.NewWatcher(absPath, cfg, c.Duration("debounce"))
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Stop()
	watcher.SetOutput(c.App.Writer)
	status := output.NewWriterFormatter(output.FormatText, c.App.Writer, cfg.Output.Color)

	ctx, stop := signal.NotifyContext(contextOf(c), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher.SetCallback(func(changedPath string) {
		res, err := proc.ConvertFile(ctx, changedPath)
		if err != nil {
			status.Error("Conversion failed: %v", err)
			return
		}
		printWatchResult(status, res)
	})

	err = watcher.Start(ctx)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func printWatchResult(status *output.Formatter, res models.FileResult) {
	for _, d := range res.Diagnostics {
		if d.Severity == models.SeverityWarning {
			status.Warning("%s", d.String())
		}
	}
	switch {
	case res.Written:
		status.Success("Converted %d classes", len(res.Classes))
	case res.Changed:
		status.Info("%d classes would be converted", len(res.Classes))
	default:
		fmt.Fprintln(status.Writer(), "No convertible declarations")
	}
}

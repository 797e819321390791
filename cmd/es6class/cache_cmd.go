package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/es6class/internal/cache"
)

func cacheCmd() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or clear the conversion cache",
		Subcommands: []*cli.Command{
			{
				Name:   "clear",
				Usage:  "Remove every cached result",
				Action: runCacheClearCmd,
			},
			{
				Name:   "stats",
				Usage:  "Show the number and size of cached results",
				Action: runCacheStatsCmd,
			},
		},
	}
}

// openCacheDir opens the configured cache directory regardless of the
// enabled setting.
func openCacheDir(c *cli.Context) (*cache.Cache, string, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, "", err
	}
	cc, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, true, "")
	return cc, cfg.Cache.Dir, err
}

func runCacheClearCmd(c *cli.Context) error {
	cc, dir, err := openCacheDir(c)
	if err != nil {
		return err
	}
	if err := cc.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	color.Green("Cleared %s", dir)
	return nil
}

func runCacheStatsCmd(c *cli.Context) error {
	cc, dir, err := openCacheDir(c)
	if err != nil {
		return err
	}
	stats, err := cc.GetStats()
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Cache:   %s\n", dir)
	fmt.Fprintf(w, "Entries: %d\n", stats.Entries)
	fmt.Fprintf(w, "Size:    %d bytes\n", stats.TotalSize)
	if stats.Entries > 0 {
		fmt.Fprintf(w, "Oldest:  %s\n", stats.OldestAge.Round(time.Second))
		fmt.Fprintf(w, "Newest:  %s\n", stats.NewestAge.Round(time.Second))
	}
	return nil
}

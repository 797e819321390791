package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

var (
	errFilesFailed = errors.New("some files could not be converted")
	errWouldChange = errors.New("files would be changed by conversion")
)

// getPaths returns paths from positional args, defaulting to ["."]
func getPaths(c *cli.Context) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	return []string{"."}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "es6class",
		Usage:   "Convert defineClass factory declarations to ES6 classes",
		Version: version,
		Description: `es6class rewrites legacy defineClass(name, {members}) declarations in
JavaScript and TypeScript files into native class syntax, in place.

Running es6class with no command converts the given paths (default ".").`,
		Flags: append(globalFlags(), convertFlags()...),
		Before: func(c *cli.Context) error {
			slog.SetDefault(newLogger(c.Bool("verbose")))
			return nil
		},
		Action: runConvertCmd,
		Commands: []*cli.Command{
			convertCmd(),
			checkCmd(),
			watchCmd(),
			mcpCmd(),
			initCmd(),
			configCmd(),
			cacheCmd(),
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to config file (TOML, YAML, or JSON)",
			EnvVars: []string{"ES6CLASS_CONFIG"},
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable verbose output",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Hide progress bars",
		},
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

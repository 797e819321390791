package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/panbanda/es6class/pkg/config"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Subcommands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "Validate a configuration file",
				Description: `Validates an es6class configuration file for syntax errors and invalid values.

Examples:
  es6class config validate                  # Validates default config locations
  es6class -c es6class.toml config validate # Validates specific file`,
				Action: runConfigValidateCmd,
			},
			{
				Name:  "show",
				Usage: "Show the effective configuration",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Value: "toml",
						Usage: "Output format: toml, yaml, json",
					},
				},
				Action: runConfigShowCmd,
			},
		},
	}
}

func configOptions(c *cli.Context) []config.LoadOption {
	if path := c.String("config"); path != "" {
		return []config.LoadOption{config.WithPath(path)}
	}
	return nil
}

func runConfigValidateCmd(c *cli.Context) error {
	result, err := config.LoadConfig(configOptions(c)...)
	if err != nil {
		color.Red("Configuration validation failed:")
		fmt.Fprintf(c.App.Writer, "  - %s\n", err)
		return err
	}

	if result.Source != "" {
		color.Green("Configuration valid: %s", result.Source)
	} else {
		color.Yellow("No config file found. Default configuration is valid.")
	}
	return nil
}

func runConfigShowCmd(c *cli.Context) error {
	result, err := config.LoadConfig(configOptions(c)...)
	if err != nil {
		return err
	}

	content, err := marshalConfig(result.Config, c.String("format"))
	if err != nil {
		return err
	}

	w := c.App.Writer
	if c.String("format") != "json" {
		if result.Source != "" {
			fmt.Fprintf(w, "# Configuration from: %s\n\n", result.Source)
		} else {
			fmt.Fprintln(w, "# Default configuration (no config file found)")
		}
	}
	fmt.Fprint(w, string(content))
	return nil
}

func marshalConfig(cfg *config.Config, format string) ([]byte, error) {
	var (
		content []byte
		err     error
	)
	switch format {
	case "toml", "":
		content, err = toml.Marshal(cfg)
	case "yaml", "yml":
		content, err = yaml.Marshal(cfg)
	case "json":
		content, err = json.MarshalIndent(cfg, "", "  ")
		content = append(content, '\n')
	default:
		return nil, fmt.Errorf("unknown config format %q (want toml, yaml or json)", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return content, nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/panbanda/es6class/pkg/ast"
	"github.com/panbanda/es6class/pkg/matcher"
	"github.com/panbanda/es6class/pkg/rewrite"
	"github.com/panbanda/es6class/pkg/transform"
)

// AlwaysExcludedDirs are dependency directories that are never processed,
// whatever the configuration says.
var AlwaysExcludedDirs = []string{
	"node_modules",
	"bower_components",
	"jspm_packages",
	"vendor",
}

// Config holds all configuration options for es6class.
type Config struct {
	// Factory-call pattern recognized in sources
	Factory FactoryConfig `koanf:"factory" toml:"factory" yaml:"factory" json:"factory"`

	// Rewrite rules
	Transform TransformConfig `koanf:"transform" toml:"transform" yaml:"transform" json:"transform"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude" yaml:"exclude" json:"exclude"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache" yaml:"cache" json:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output" yaml:"output" json:"output"`

	// Workers bounds parallel file processing; 0 means 2×NumCPU.
	Workers int `koanf:"workers" toml:"workers" yaml:"workers" json:"workers"`
}

// FactoryConfig names the markers of the legacy pattern.
type FactoryConfig struct {
	Names       []string `koanf:"names" toml:"names" yaml:"names" json:"names"`
	ExtendsKey  string   `koanf:"extends_key" toml:"extends_key" yaml:"extends_key" json:"extends_key"`
	StaticKey   string   `koanf:"static_key" toml:"static_key" yaml:"static_key" json:"static_key"`
	SuperMarker string   `koanf:"super_marker" toml:"super_marker" yaml:"super_marker" json:"super_marker"`
}

// TransformConfig controls the constructor rewrite.
type TransformConfig struct {
	DeferredInit       bool   `koanf:"deferred_init" toml:"deferred_init" yaml:"deferred_init" json:"deferred_init"`
	PreInitName        string `koanf:"preinit_name" toml:"preinit_name" yaml:"preinit_name" json:"preinit_name"`
	ImplicitParentInit string `koanf:"implicit_parent_init" toml:"implicit_parent_init" yaml:"implicit_parent_init" json:"implicit_parent_init"` // first, last
	Indent             string `koanf:"indent" toml:"indent" yaml:"indent" json:"indent"`                                                         // empty: detect
	AnchorRoots        bool   `koanf:"anchor_roots" toml:"anchor_roots" yaml:"anchor_roots" json:"anchor_roots"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns" yaml:"patterns" json:"patterns"`
	Dirs      []string `koanf:"dirs" toml:"dirs" yaml:"dirs" json:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore" yaml:"gitignore" json:"gitignore"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled" yaml:"enabled" json:"enabled"`
	Dir     string `koanf:"dir" toml:"dir" yaml:"dir" json:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl" yaml:"ttl" json:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format" toml:"format" yaml:"format" json:"format"` // text, json, markdown, toon
	Color   bool   `koanf:"color" toml:"color" yaml:"color" json:"color"`
	Verbose bool   `koanf:"verbose" toml:"verbose" yaml:"verbose" json:"verbose"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	mo := matcher.DefaultOptions()
	to := transform.DefaultOptions()
	return &Config{
		Factory: FactoryConfig{
			Names:       mo.FactoryNames,
			ExtendsKey:  mo.ExtendsKey,
			StaticKey:   mo.StaticKey,
			SuperMarker: to.SuperMarker,
		},
		Transform: TransformConfig{
			DeferredInit:       to.DeferredInit,
			PreInitName:        to.PreInitName,
			ImplicitParentInit: string(to.ImplicitParentInit),
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.min.js",
				"*.bundle.js",
			},
			Dirs: []string{
				".git",
				".es6class",
				"dist",
				"build",
				"coverage",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".es6class/cache",
			TTL:     24 * 7,
		},
		Output: OutputConfig{
			Format:  "text",
			Color:   true,
			Verbose: false,
		},
	}
}

// ConfigNames are the file names searched for, in order.
var ConfigNames = []string{
	"es6class.toml",
	"es6class.yaml",
	"es6class.yml",
	"es6class.json",
	".es6class.toml",
	".es6class.yaml",
	".es6class.yml",
	".es6class.json",
}

// SearchDirs are the directories searched for a config file.
var SearchDirs = []string{".", ".es6class"}

// Load loads configuration from a file on top of the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	if err := ValidateRaw(k.Raw()); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// LoadResult is a loaded configuration and where it came from.
type LoadResult struct {
	Config *Config
	// Source is the file the config was read from; empty for defaults.
	Source string
}

type loadOptions struct {
	path string
	dir  string
}

// LoadOption configures LoadConfig.
type LoadOption func(*loadOptions)

// WithPath loads the given file instead of searching.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// WithDir searches relative to dir instead of the working directory.
func WithDir(dir string) LoadOption {
	return func(o *loadOptions) {
		o.dir = dir
	}
}

// LoadConfig loads an explicit config file, or the first one found in the
// standard locations, or the defaults.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	o := loadOptions{dir: "."}
	for _, opt := range opts {
		opt(&o)
	}

	if o.path != "" {
		cfg, err := Load(o.path)
		if err != nil {
			return nil, err
		}
		return &LoadResult{Config: cfg, Source: o.path}, nil
	}

	if path := Find(o.dir); path != "" {
		cfg, err := Load(path)
		if err != nil {
			return nil, err
		}
		return &LoadResult{Config: cfg, Source: path}, nil
	}

	return &LoadResult{Config: DefaultConfig()}, nil
}

// Find returns the first config file in the standard locations under dir.
func Find(dir string) string {
	for _, sub := range SearchDirs {
		for _, name := range ConfigNames {
			path := filepath.Join(dir, sub, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Factory.Names) == 0 {
		errs = append(errs, errors.New("factory.names must not be empty"))
	}
	for _, name := range c.Factory.Names {
		if !ast.IsIdentifierName(name) {
			errs = append(errs, fmt.Errorf("factory.names: %q is not an identifier", name))
		}
	}
	for key, value := range map[string]string{
		"factory.extends_key":    c.Factory.ExtendsKey,
		"factory.static_key":     c.Factory.StaticKey,
		"factory.super_marker":   c.Factory.SuperMarker,
		"transform.preinit_name": c.Transform.PreInitName,
	} {
		if !ast.IsIdentifierName(value) {
			errs = append(errs, fmt.Errorf("%s: %q is not an identifier", key, value))
		}
	}

	switch transform.Placement(c.Transform.ImplicitParentInit) {
	case transform.PlaceFirst, transform.PlaceLast:
	default:
		errs = append(errs, fmt.Errorf("transform.implicit_parent_init: %q must be first or last", c.Transform.ImplicitParentInit))
	}
	if strings.Trim(c.Transform.Indent, " \t") != "" {
		errs = append(errs, fmt.Errorf("transform.indent: %q must contain only spaces or tabs", c.Transform.Indent))
	}

	switch c.Output.Format {
	case "text", "json", "markdown", "toon":
	default:
		errs = append(errs, fmt.Errorf("output.format: %q must be text, json, markdown or toon", c.Output.Format))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers: %d must not be negative", c.Workers))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, fmt.Errorf("cache.ttl: %d must not be negative", c.Cache.TTL))
	}
	for _, pattern := range c.Exclude.Patterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			errs = append(errs, fmt.Errorf("exclude.patterns: %q: %w", pattern, err))
		}
	}

	return errors.Join(errs...)
}

// RewriteOptions maps the config onto the rewriter.
func (c *Config) RewriteOptions() rewrite.Options {
	return rewrite.Options{
		Matcher: matcher.Options{
			FactoryNames: c.Factory.Names,
			ExtendsKey:   c.Factory.ExtendsKey,
			StaticKey:    c.Factory.StaticKey,
		},
		Transform: transform.Options{
			SuperMarker:        c.Factory.SuperMarker,
			DeferredInit:       c.Transform.DeferredInit,
			PreInitName:        c.Transform.PreInitName,
			ImplicitParentInit: transform.Placement(c.Transform.ImplicitParentInit),
		},
		Indent:      c.Transform.Indent,
		AnchorRoots: c.Transform.AnchorRoots,
	}
}

// ShouldExclude checks if a path should be excluded from conversion.
func (c *Config) ShouldExclude(path string) bool {
	path = filepath.ToSlash(path)
	segments := strings.Split(path, "/")

	// Check directory exclusions
	for _, seg := range segments[:len(segments)-1] {
		if c.ShouldExcludeDir(seg) {
			return true
		}
	}

	// Check pattern exclusions against the base name and the whole path
	base := segments[len(segments)-1]
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, path); matched {
			return true
		}
	}

	return false
}

// ShouldExcludeDir reports whether a directory with the given name is
// skipped entirely.
func (c *Config) ShouldExcludeDir(name string) bool {
	for _, dir := range AlwaysExcludedDirs {
		if name == dir {
			return true
		}
	}
	for _, dir := range c.Exclude.Dirs {
		if name == dir {
			return true
		}
	}
	return false
}

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/es6class/internal/output"
	"github.com/panbanda/es6class/pkg/config"
	"github.com/panbanda/es6class/pkg/models"
)

const legacySource = `var Base = defineClass('Base', {
    hello: function () {
        return 1;
    }
});
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf
	app.ErrWriter = &buf
	err := app.Run(append([]string{"es6class"}, args...))
	return buf.String(), err
}

// TestGetPaths verifies path handling from CLI arguments.
func TestGetPaths(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{"no args defaults to current dir", []string{}, []string{"."}},
		{"single path", []string{"/foo/bar"}, []string{"/foo/bar"}},
		{"multiple paths", []string{"/foo", "/bar"}, []string{"/foo", "/bar"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			app := &cli.App{
				Action: func(c *cli.Context) error {
					got = getPaths(c)
					return nil
				},
			}
			require.NoError(t, app.Run(append([]string{"es6class"}, tt.args...)))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	var cfg *config.Config
	app := newApp()
	app.Action = func(c *cli.Context) error {
		var err error
		cfg, err = loadConfig(c)
		return err
	}

	err := app.Run([]string{"es6class", "--plain", "--preinit-name", "setup",
		"--implicit-parent-init", "last", "--workers", "3", "--no-cache", "--format", "json"})
	require.NoError(t, err)

	assert.False(t, cfg.Transform.DeferredInit)
	assert.Equal(t, "setup", cfg.Transform.PreInitName)
	assert.Equal(t, "last", cfg.Transform.ImplicitParentInit)
	assert.Equal(t, 3, cfg.Workers)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestLoadConfigRejectsInvalidOverride(t *testing.T) {
	app := newApp()
	app.Action = func(c *cli.Context) error {
		_, err := loadConfig(c)
		return err
	}
	err := app.Run([]string{"es6class", "--implicit-parent-init", "middle"})
	assert.Error(t, err)
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "src/base.js", legacySource)
	writeFile(t, dir, "node_modules/lib/index.js", legacySource)
	report := filepath.Join(t.TempDir(), "report.json")

	_, err := run(t, "-q", "convert", "--no-cache", "-f", "json", "-o", report, dir)
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(got), "class Base {")
	assert.NotContains(t, string(got), "defineClass")

	vendored, err := os.ReadFile(filepath.Join(dir, "node_modules/lib/index.js"))
	require.NoError(t, err)
	assert.Equal(t, legacySource, string(vendored), "dependency directories are never converted")

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	var batch models.BatchResult
	require.NoError(t, json.Unmarshal(data, &batch))
	assert.Equal(t, 1, batch.Summary.TotalFiles)
	assert.Equal(t, 1, batch.Summary.ChangedFiles)
	assert.True(t, batch.Files[0].Written)
}

func TestConvertIsDefaultAction(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "base.js", legacySource)

	_, err := run(t, "-q", "--no-cache", "-o", filepath.Join(t.TempDir(), "out.txt"), dir)
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(got), "class Base {")
}

func TestConvertDiffIsDryRun(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "base.js", legacySource)
	report := filepath.Join(t.TempDir(), "report.txt")

	_, err := run(t, "-q", "convert", "--no-cache", "--diff", "-o", report, dir)
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, legacySource, string(got))

	text, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(text), "+class Base {")
	assert.Contains(t, string(text), "-var Base = defineClass('Base', {")
}

func TestConvertReportsFailures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ok.js", legacySource)
	broken := writeFile(t, dir, "broken.js", "var A = defineClass('A', {\n    run: function () { this.x = 1 +; }\n});\n")

	_, err := run(t, "-q", "convert", "--no-cache", "-o", filepath.Join(t.TempDir(), "out.txt"), dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errFilesFailed))

	got, readErr := os.ReadFile(broken)
	require.NoError(t, readErr)
	assert.Contains(t, string(got), "defineClass")

	ok, readErr := os.ReadFile(filepath.Join(dir, "ok.js"))
	require.NoError(t, readErr)
	assert.Contains(t, string(ok), "class Base {", "one failure does not stop other files")
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "base.js", legacySource)
	out := filepath.Join(t.TempDir(), "out.txt")

	_, err := run(t, "-q", "check", "--no-cache", "-o", out, dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, errWouldChange)

	got, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, legacySource, string(got), "check never writes")

	_, err = run(t, "-q", "convert", "--no-cache", "-o", out, dir)
	require.NoError(t, err)

	_, err = run(t, "-q", "check", "--no-cache", "-o", out, dir)
	assert.NoError(t, err, "converted output is stable")
}

func TestNoSourceFiles(t *testing.T) {
	out, err := run(t, "-q", "convert", "--no-cache", t.TempDir())
	assert.NoError(t, err)
	assert.Contains(t, out, "No source files found")
}

func TestGenerateDefaultConfig(t *testing.T) {
	content, err := generateDefaultConfig()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(content, "# es6class configuration"))

	path := writeFile(t, t.TempDir(), "es6class.toml", content)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	def := config.DefaultConfig()
	assert.Equal(t, def.Factory, cfg.Factory)
	assert.Equal(t, def.Transform, cfg.Transform)
	assert.Equal(t, def.Cache, cfg.Cache)
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".es6class", "es6class.toml")

	_, err := run(t, "init", "-o", path)
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = run(t, "init", "-o", path)
	assert.Error(t, err, "existing files are not overwritten")

	_, err = run(t, "init", "-o", path, "--force")
	assert.NoError(t, err)
}

func TestMarshalConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	for _, format := range []string{"toml", "yaml", "json"} {
		t.Run(format, func(t *testing.T) {
			content, err := marshalConfig(cfg, format)
			require.NoError(t, err)
			assert.Contains(t, string(content), "preinit_name")
		})
	}

	_, err := marshalConfig(cfg, "ini")
	assert.Error(t, err)
}

func TestConfigShow(t *testing.T) {
	path := writeFile(t, t.TempDir(), "es6class.toml", "[transform]\npreinit_name = \"setup\"\n")

	out, err := run(t, "-c", path, "config", "show", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "# Configuration from: "+path)
	assert.Contains(t, out, "preinit_name: setup")
}

func TestConfigValidate(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.toml", "workers = 2\n")
	bad := writeFile(t, dir, "bad.toml", "[transform]\nimplicit_parent_init = \"middle\"\n")

	_, err := run(t, "-c", good, "config", "validate")
	assert.NoError(t, err)

	_, err = run(t, "-c", bad, "config", "validate")
	assert.Error(t, err)
}

func TestMCPManifestCommand(t *testing.T) {
	out, err := run(t, "mcp", "manifest")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "io.github.panbanda/es6class"`)
}

func TestCacheCommands(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	cfgPath := writeFile(t, dir, "es6class.toml", "[cache]\ndir = \""+filepath.ToSlash(cacheDir)+"\"\n")
	writeFile(t, cacheDir, "0000000000000001.json", "{}")

	out, err := run(t, "-c", cfgPath, "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Entries: 1")

	_, err = run(t, "-c", cfgPath, "cache", "clear")
	require.NoError(t, err)
	assert.NoDirExists(t, cacheDir)
}

func TestPrintWatchResult(t *testing.T) {
	tests := []struct {
		name string
		res  models.FileResult
		want []string
	}{
		{
			name: "written",
			res:  models.FileResult{Changed: true, Written: true, Classes: []models.ClassSummary{{Name: "A"}}},
			want: []string{"Converted 1 classes"},
		},
		{
			name: "dry run",
			res:  models.FileResult{Changed: true, Classes: []models.ClassSummary{{Name: "A"}, {Name: "B"}}},
			want: []string{"2 classes would be converted"},
		},
		{
			name: "unchanged with warning",
			res:  models.FileResult{Diagnostics: []models.Diagnostic{models.Warn(3, "A", "spread")}},
			want: []string{"WARNING: ", "spread", "No convertible declarations"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printWatchResult(output.NewWriterFormatter(output.FormatText, &buf, false), tt.res)
			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/es6class/internal/fileproc"
	"github.com/panbanda/es6class/internal/output"
	"github.com/panbanda/es6class/internal/scanner"
	"github.com/panbanda/es6class/pkg/models"
	"github.com/panbanda/es6class/pkg/rewrite"
)

// ConvertSourceInput is the input of convert_source.
type ConvertSourceInput struct {
	Source string `json:"source" jsonschema:"JavaScript or TypeScript source text to convert."`
	Path   string `json:"path,omitempty" jsonschema:"File name used to pick the grammar (.js, .ts, .tsx). Defaults to JavaScript."`
	Plain  bool   `json:"plain,omitempty" jsonschema:"Convert constructors directly instead of staging instance fields in a preInit method."`
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// ConvertPathsInput is the input of convert_paths.
type ConvertPathsInput struct {
	Paths  []string `json:"paths,omitempty" jsonschema:"Files or directories to convert. Defaults to current directory if empty."`
	DryRun bool     `json:"dry_run,omitempty" jsonschema:"Report what would change without writing files."`
	Format string   `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// ConvertSourceOutput is the result of convert_source.
type ConvertSourceOutput struct {
	Source      string                `json:"source" toon:"source"`
	Changed     bool                  `json:"changed" toon:"changed"`
	Skipped     models.SkipReason     `json:"skipped,omitempty" toon:"skipped,omitempty"`
	Classes     []models.ClassSummary `json:"classes,omitempty" toon:"classes,omitempty"`
	Diagnostics []models.Diagnostic   `json:"diagnostics,omitempty" toon:"diagnostics,omitempty"`
}

func getPaths(paths []string) []string {
	if len(paths) == 0 {
		return []string{"."}
	}
	return paths
}

func getFormat(format string) output.Format {
	switch format {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func formatOutput(data any, format output.Format) (string, error) {
	switch format {
	case output.FormatJSON:
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out), nil
	case output.FormatMarkdown:
		out, err := output.MarshalTOON(data)
		if err != nil {
			return "", err
		}
		return "```\n" + out + "\n```", nil
	default:
		return output.MarshalTOON(data)
	}
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func (s *Server) rewriter(plain bool) *rewrite.Rewriter {
	opts := s.config.RewriteOptions()
	if plain {
		opts.Transform.DeferredInit = false
	}
	return rewrite.New(opts)
}

func (s *Server) handleConvertSource(ctx context.Context, req *mcp.CallToolRequest, input ConvertSourceInput) (*mcp.CallToolResult, any, error) {
	if input.Source == "" {
		return toolError("source is empty")
	}

	res, err := s.rewriter(input.Plain).Rewrite(ctx, []byte(input.Source), input.Path)
	if err != nil {
		return toolError(err.Error())
	}

	return toolResult(ConvertSourceOutput{
		Source:      string(res.Source),
		Changed:     res.Changed,
		Skipped:     res.Skipped,
		Classes:     res.Classes,
		Diagnostics: res.Diagnostics,
	}, getFormat(input.Format))
}

func (s *Server) handleConvertPaths(ctx context.Context, req *mcp.CallToolRequest, input ConvertPathsInput) (*mcp.CallToolResult, any, error) {
	files, err := scanner.NewScanner(s.config).ScanPaths(getPaths(input.Paths))
	if err != nil {
		return toolError(err.Error())
	}
	if len(files) == 0 {
		return toolError("no source files found")
	}

	proc := fileproc.NewProcessor(s.rewriter(false), nil, fileproc.Options{
		DryRun:  input.DryRun,
		Workers: s.config.Workers,
	})
	result, _ := proc.Run(ctx, files, nil)

	return toolResult(result, getFormat(input.Format))
}

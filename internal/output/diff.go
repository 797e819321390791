package output

import (
	"strings"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
)

// DiffContext is the number of unchanged lines shown around each hunk.
const DiffContext = 3

// UnifiedDiff returns a unified diff between the original and converted
// text of path, or "" when they are equal.
func UnifiedDiff(path string, before, after []byte) (string, error) {
	if string(before) == string(after) {
		return "", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  DiffContext,
	})
}

// ColorizeDiff colors added lines green, removed lines red and hunk
// headers cyan.
func ColorizeDiff(diff string) string {
	var sb strings.Builder
	for _, line := range strings.SplitAfter(diff, "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			sb.WriteString(color.New(color.Bold).Sprint(line))
		case strings.HasPrefix(line, "@@"):
			sb.WriteString(color.CyanString(line))
		case strings.HasPrefix(line, "+"):
			sb.WriteString(color.GreenString(line))
		case strings.HasPrefix(line, "-"):
			sb.WriteString(color.RedString(line))
		default:
			sb.WriteString(line)
		}
	}
	return sb.String()
}

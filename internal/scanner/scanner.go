package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/panbanda/es6class/pkg/config"
	"github.com/panbanda/es6class/pkg/parser"
)

// Scanner finds convertible source files.
type Scanner struct {
	config *config.Config

	// patterns holds config exclude patterns, matched relative to the scan root.
	patterns gitignore.Matcher
	// ignored holds .gitignore rules, matched relative to gitRoot.
	ignored gitignore.Matcher
	gitRoot string
}

// NewScanner creates a new file scanner.
func NewScanner(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{config: cfg}
}

// findGitRoot finds the root of the git repository by looking for .git directory.
// Returns empty string if not in a git repository.
func findGitRoot(start string) string {
	dir, err := filepath.Abs(start)
	if err != nil {
		return ""
	}
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadExcludePatterns parses config exclude patterns as gitignore patterns and
// reads every .gitignore of the enclosing repository.
func (s *Scanner) loadExcludePatterns(root string) {
	var patterns []gitignore.Pattern
	for _, pattern := range s.config.Exclude.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(pattern, nil))
	}
	s.patterns = gitignore.NewMatcher(patterns)

	s.ignored, s.gitRoot = nil, ""
	if !s.config.Exclude.Gitignore {
		return
	}
	gitRoot := findGitRoot(root)
	if gitRoot == "" {
		return
	}
	gitPatterns, err := gitignore.ReadPatterns(osfs.New(gitRoot), nil)
	if err != nil || len(gitPatterns) == 0 {
		return
	}
	s.ignored = gitignore.NewMatcher(gitPatterns)
	s.gitRoot = gitRoot
}

// isExcluded checks a path relative to root against every exclusion rule.
func (s *Scanner) isExcluded(root, relPath string, isDir bool) bool {
	if relPath == "." {
		return false
	}
	if isDir {
		if s.config.ShouldExcludeDir(filepath.Base(relPath)) {
			return true
		}
	} else if s.config.ShouldExclude(relPath) {
		return true
	}

	if s.patterns != nil && s.patterns.Match(splitPath(relPath), isDir) {
		return true
	}

	if s.ignored != nil {
		abs, err := filepath.Abs(filepath.Join(root, relPath))
		if err != nil {
			return false
		}
		rel, err := filepath.Rel(s.gitRoot, abs)
		if err != nil || strings.HasPrefix(rel, "..") {
			return false
		}
		return s.ignored.Match(splitPath(rel), isDir)
	}
	return false
}

func splitPath(path string) []string {
	return strings.Split(filepath.ToSlash(path), "/")
}

// ScanDir recursively scans a directory for JavaScript and TypeScript files.
// Symlinks that resolve outside the root are skipped.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	files := make([]string, 0, 256)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	s.loadExcludePatterns(root)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		relPath, _ := filepath.Rel(root, path)

		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				return nil
			}
		}

		if d.IsDir() {
			if s.isExcluded(root, relPath, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.isExcluded(root, relPath, false) {
			return nil
		}
		if parser.DetectLanguage(path) != parser.LangUnknown {
			files = append(files, path)
		}

		return nil
	})

	return files, walkErr
}

// isWithinRoot checks if a path is contained within the root directory.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)

	// Add separator to prevent "/root2" matching "/root"
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}

// ScanFile checks if a single, explicitly named file should be converted.
// Files under dependency or excluded directories are never converted, even
// when named directly, since shell globs expand into them.
func (s *Scanner) ScanFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}

	if s.config.ShouldExclude(filepath.Clean(path)) {
		return false, nil
	}

	if s.patterns == nil {
		s.loadExcludePatterns(filepath.Dir(path))
	}
	if s.isExcluded(filepath.Dir(path), filepath.Base(path), false) {
		return false, nil
	}

	return parser.DetectLanguage(path) != parser.LangUnknown, nil
}

// ScanPaths expands files and directories into a sorted, de-duplicated list
// of source files.
func (s *Scanner) ScanPaths(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	add := func(path string) {
		clean := filepath.Clean(path)
		if !seen[clean] {
			seen[clean] = true
			files = append(files, clean)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", path, err)
		}

		if !info.IsDir() {
			ok, err := s.ScanFile(path)
			if err != nil {
				return nil, fmt.Errorf("scan %s: %w", path, err)
			}
			if ok {
				add(path)
			}
			continue
		}

		found, err := s.ScanDir(path)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", path, err)
		}
		for _, f := range found {
			add(f)
		}
	}

	sort.Strings(files)
	return files, nil
}

// GroupByLanguage groups files by their detected grammar.
func (s *Scanner) GroupByLanguage(files []string) map[parser.Language][]string {
	groups := make(map[parser.Language][]string)
	for _, f := range files {
		lang := parser.DetectLanguage(f)
		if lang != parser.LangUnknown {
			groups[lang] = append(groups[lang], f)
		}
	}
	return groups
}
